package postgres

// SQL queries for saved object storage. Every value is bound as a parameter.

const (
	// querySelectObject reads one record by (application_id, raw id).
	querySelectObject = `
		SELECT id, seq_no, primary_term, attributes, namespaces, updated_at
		FROM saved_objects
		WHERE application_id = $1 AND id = $2
	`

	// queryInsertObject creates a record. ON CONFLICT DO NOTHING returns no rows
	// (sql.ErrNoRows) when the raw id already exists.
	queryInsertObject = `
		INSERT INTO saved_objects (
			application_id, id, type, seq_no, primary_term,
			attributes, reference, migration_version, namespaces, origin_id, updated_at
		)
		VALUES ($1, $2, $3, 1, 1, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (application_id, id) DO NOTHING
		RETURNING seq_no, primary_term
	`

	// queryUpsertObject creates or replaces a record, bumping seq_no on replace.
	queryUpsertObject = `
		INSERT INTO saved_objects (
			application_id, id, type, seq_no, primary_term,
			attributes, reference, migration_version, namespaces, origin_id, updated_at
		)
		VALUES ($1, $2, $3, 1, 1, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (application_id, id) DO UPDATE SET
			type              = EXCLUDED.type,
			seq_no            = saved_objects.seq_no + 1,
			attributes        = EXCLUDED.attributes,
			reference         = EXCLUDED.reference,
			migration_version = EXCLUDED.migration_version,
			namespaces        = EXCLUDED.namespaces,
			origin_id         = EXCLUDED.origin_id,
			updated_at        = EXCLUDED.updated_at
		RETURNING seq_no, primary_term
	`

	// queryReplaceObject rewrites a record only if it is still at the expected
	// seq_no/primary_term. No rows means a concurrent write or a stale version.
	queryReplaceObject = `
		UPDATE saved_objects
		SET attributes        = $3,
		    reference         = $4,
		    migration_version = $5,
		    namespaces        = $6,
		    origin_id         = $7,
		    updated_at        = $8,
		    seq_no            = seq_no + 1
		WHERE application_id = $1 AND id = $2
		  AND seq_no = $9 AND primary_term = $10
		RETURNING seq_no, primary_term
	`

	queryDeleteObject = `
		DELETE FROM saved_objects
		WHERE application_id = $1 AND id = $2
	`

	// queryRemoveNamespace strips one namespace from every record carrying it and
	// keeps the encoded source in step with the column.
	queryRemoveNamespace = `
		UPDATE saved_objects
		SET namespaces = array_remove(namespaces, $2),
		    attributes = CASE
		        WHEN attributes ? 'namespaces'
		        THEN jsonb_set(attributes, '{namespaces}', to_jsonb(array_remove(namespaces, $2)))
		        ELSE attributes
		    END,
		    updated_at = $3,
		    seq_no     = seq_no + 1
		WHERE application_id = $1 AND $2 = ANY(namespaces)
		RETURNING id, cardinality(namespaces)
	`

	// queryDeleteEmptied deletes the records DeleteByNamespace left without namespaces.
	queryDeleteEmptied = `
		DELETE FROM saved_objects
		WHERE application_id = $1 AND id = ANY($2) AND cardinality(namespaces) = 0
	`

	queryValidateSchema = `
		SELECT EXISTS (
			SELECT FROM information_schema.tables
			WHERE table_name = 'saved_objects'
		)
	`

	// findColumns is the projection shared by the dynamic find query and querySelectObject.
	findColumns = `id, seq_no, primary_term, attributes, namespaces, updated_at`
)
