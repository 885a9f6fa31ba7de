package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/aevon-lab/metastore/internal/core/namespace"
	"github.com/aevon-lab/metastore/internal/core/repository"
	"github.com/aevon-lab/metastore/internal/core/savedobject"
	"github.com/aevon-lab/metastore/internal/core/serializer"
	"github.com/lib/pq"
)

// findQuery is the SQL built for one Find call. The count query binds a prefix
// of the select arguments.
type findQuery struct {
	selectSQL  string
	selectArgs []any
	countSQL   string
	countArgs  []any
}

// sqlBuilder numbers placeholders as arguments are bound.
type sqlBuilder struct {
	args []any
}

func (b *sqlBuilder) bind(v any) string {
	b.args = append(b.args, v)
	return fmt.Sprintf("$%d", len(b.args))
}

// buildFindQuery translates plan into parameterized select and count queries.
func buildFindQuery(appID string, plan *repository.FindPlan) findQuery {
	b := &sqlBuilder{}
	where := []string{"application_id = " + b.bind(appID)}

	scopes := make([]string, 0, len(plan.Scopes))
	for _, s := range plan.Scopes {
		clause := "type = " + b.bind(s.Type)
		if !slices.Contains(s.Namespaces, namespace.AllNamespacesString) {
			clause += fmt.Sprintf(" AND (cardinality(namespaces) = 0 OR '*' = ANY(namespaces) OR namespaces && %s::text[])",
				b.bind(pq.Array(s.Namespaces)))
		}
		scopes = append(scopes, "("+clause+")")
	}
	where = append(where, "("+strings.Join(scopes, " OR ")+")")

	if plan.Search != "" {
		pattern := b.bind("%" + escapeLike(plan.Search) + "%")
		matches := make([]string, 0, len(plan.SearchFields))
		for _, f := range plan.SearchFields {
			matches = append(matches, fmt.Sprintf("%s ILIKE %s", scalarText(b.bind(f)), pattern))
		}
		where = append(where, "("+strings.Join(matches, " OR ")+")")
	}

	whereSQL := strings.Join(where, " AND ")
	q := findQuery{
		countSQL:  "SELECT COUNT(*) FROM saved_objects WHERE " + whereSQL,
		countArgs: slices.Clone(b.args),
	}

	direction := "ASC"
	if plan.SortOrder == savedobject.SortDesc {
		direction = "DESC"
	}
	var orderBy string
	switch plan.SortField {
	case "", "id":
		orderBy = "id " + direction
	case "type", "updated_at":
		orderBy = fmt.Sprintf("%s %s, id %s", plan.SortField, direction, direction)
	default:
		orderBy = fmt.Sprintf("NULLIF(attributes -> type -> %s::text, 'null'::jsonb) %s, id %s", b.bind(plan.SortField), direction, direction)
	}

	q.selectSQL = fmt.Sprintf("SELECT %s FROM saved_objects WHERE %s ORDER BY %s LIMIT %s OFFSET %s",
		findColumns, whereSQL, orderBy, b.bind(plan.PerPage), b.bind(plan.Offset()))
	q.selectArgs = b.args
	return q
}

// escapeLike escapes the LIKE wildcards in s.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// Find runs a parameterized select over the type/namespace scopes of opts and
// returns the requested page with the total match count.
func (r *Repository) Find(ctx context.Context, opts savedobject.FindOptions) (*savedobject.FindResponse, error) {
	plan, err := r.base.PlanFind(opts)
	if err != nil {
		return nil, err
	}
	if plan == nil {
		return savedobject.EmptyFindResponse(opts), nil
	}

	q := buildFindQuery(r.appID, plan)

	var total int
	if err := r.db.QueryRowContext(ctx, q.countSQL, q.countArgs...).Scan(&total); err != nil {
		return nil, storageError("failed to count saved objects", err)
	}

	rows, err := r.db.QueryContext(ctx, q.selectSQL, q.selectArgs...)
	if err != nil {
		return nil, storageError("failed to find saved objects", err)
	}
	defer rows.Close()

	page := make([]serializer.RawDoc, 0, plan.PerPage)
	for rows.Next() {
		raw, err := r.scanObjectRow(rows)
		if err != nil {
			return nil, storageError("failed to scan saved object", err)
		}
		page = append(page, raw)
	}
	if err := rows.Err(); err != nil {
		return nil, storageError("failed to iterate saved objects", err)
	}

	slog.Debug("[Postgres] Find", "types", plan.Types(), "total", total, "page", plan.Page)
	return r.base.FindResponse(plan, page, total), nil
}

// scalarText renders the attribute bound at param as text when it is a JSON
// string, number or boolean, and NULL otherwise.
func scalarText(param string) string {
	return fmt.Sprintf("(CASE WHEN jsonb_typeof(attributes -> type -> %[1]s::text) IN ('string', 'number', 'boolean') "+
		"THEN attributes -> type ->> %[1]s::text END)", param)
}
