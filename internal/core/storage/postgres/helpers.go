package postgres

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aevon-lab/metastore/internal/core/savedobject"
	"github.com/aevon-lab/metastore/internal/core/serializer"
	"github.com/lib/pq"
)

// objectRow holds the column values written for one raw document.
type objectRow struct {
	attributes       []byte
	references       []byte
	migrationVersion []byte
	namespaces       []string
	originID         sql.NullString
	updatedAt        time.Time
}

// encodeRow marshals raw into column values.
//
// The attributes column stores the full encoded raw source; reference and
// migration_version duplicate it for querying. Nil migration versions produce
// SQL NULL.
func (r *Repository) encodeRow(raw serializer.RawDoc) (objectRow, error) {
	attributes, err := serializer.MarshalSource(raw.Source)
	if err != nil {
		return objectRow{}, err
	}

	refs := raw.Source.References
	if refs == nil {
		refs = []savedobject.Reference{}
	}
	references, err := json.Marshal(refs)
	if err != nil {
		return objectRow{}, fmt.Errorf("failed to marshal references: %w", err)
	}

	var migrationVersion []byte
	if len(raw.Source.MigrationVersion) > 0 {
		migrationVersion, err = json.Marshal(raw.Source.MigrationVersion)
		if err != nil {
			return objectRow{}, fmt.Errorf("failed to marshal migration version: %w", err)
		}
	}

	updatedAt, err := savedobject.ParseTime(raw.Source.UpdatedAt)
	if err != nil {
		return objectRow{}, fmt.Errorf("invalid updated_at %q: %w", raw.Source.UpdatedAt, err)
	}

	return objectRow{
		attributes:       attributes,
		references:       references,
		migrationVersion: migrationVersion,
		namespaces:       r.base.PersistedNamespaces(raw.Source),
		originID:         sql.NullString{String: raw.Source.OriginID, Valid: raw.Source.OriginID != ""},
		updatedAt:        updatedAt,
	}, nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

// scanObjectRow scans findColumns into a raw document. The namespaces and
// updated_at columns are authoritative over the copies inside the source.
// Compatible with both sql.Row (single) and sql.Rows (multiple).
func (r *Repository) scanObjectRow(row scanner) (serializer.RawDoc, error) {
	var (
		raw        serializer.RawDoc
		attributes []byte
		namespaces []string
		updatedAt  time.Time
	)
	err := row.Scan(
		&raw.ID,
		&raw.SeqNo,
		&raw.PrimaryTerm,
		&attributes,
		pq.Array(&namespaces),
		&updatedAt,
	)
	if err != nil {
		return serializer.RawDoc{}, err
	}

	raw.Source, err = serializer.UnmarshalSource(attributes)
	if err != nil {
		return serializer.RawDoc{}, err
	}
	if r.base.Registry().IsMultiNamespace(raw.Source.Type) {
		if namespaces == nil {
			namespaces = []string{}
		}
		raw.Source.Namespaces = namespaces
	}
	if !updatedAt.IsZero() {
		raw.Source.UpdatedAt = savedobject.FormatTime(updatedAt)
	}
	return raw, nil
}
