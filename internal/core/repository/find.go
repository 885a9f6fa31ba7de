package repository

import (
	"cmp"
	"encoding/json"
	"fmt"
	"maps"
	"math"
	"slices"
	"strings"

	"github.com/aevon-lab/metastore/internal/core/namespace"
	"github.com/aevon-lab/metastore/internal/core/savedobject"
	"github.com/aevon-lab/metastore/internal/core/serializer"
)

// DefaultSearchFields are matched by Find when the caller supplies none.
var DefaultSearchFields = []string{"title", "description"}

// FindScope selects one type and the namespaces it is searched in. Namespaces
// holds public namespace strings; "*" matches every namespace.
type FindScope struct {
	Type       string
	Namespaces []string
}

// FindPlan is a validated Find request with the type set already filtered
// against the allow-list.
type FindPlan struct {
	Scopes       []FindScope
	Search       string
	SearchFields []string
	Fields       []string
	Page         int
	PerPage      int
	SortField    string
	SortOrder    savedobject.SortOrder
}

// Types returns the scoped types in plan order.
func (p *FindPlan) Types() []string {
	out := make([]string, len(p.Scopes))
	for i, s := range p.Scopes {
		out[i] = s.Type
	}
	return out
}

// Offset is the number of matches skipped before the requested page.
func (p *FindPlan) Offset() int {
	return (p.Page - 1) * p.PerPage
}

// ValidateFindOptions rejects malformed type/namespace combinations.
func (b *Base) ValidateFindOptions(opts savedobject.FindOptions) error {
	hasType := len(opts.Type) > 0
	hasMap := len(opts.TypeToNamespacesMap) > 0

	switch {
	case !hasType && !hasMap:
		return savedobject.NewBadRequest("options.type must be a string or an array of strings")
	case opts.Namespaces != nil && len(opts.Namespaces) == 0 && !hasMap:
		return savedobject.NewBadRequest("options.namespaces cannot be an empty array")
	case hasType && hasMap:
		return savedobject.NewBadRequest("options.type must be an empty string when options.typeToNamespacesMap is used")
	case len(opts.Namespaces) > 0 && hasMap:
		return savedobject.NewBadRequest("options.namespaces must be an empty array when options.typeToNamespacesMap is used")
	}

	if slices.Contains(opts.SearchFields, "") {
		return savedobject.NewBadRequest("options.searchFields must be an array")
	}
	if slices.Contains(opts.Fields, "") {
		return savedobject.NewBadRequest("options.fields must be an array")
	}
	if opts.SortOrder != "" && opts.SortOrder != savedobject.SortAsc && opts.SortOrder != savedobject.SortDesc {
		return savedobject.NewBadRequest("options.sortOrder must be either asc or desc")
	}
	return validatePaging(opts)
}

// validatePaging keeps FindPlan.Offset representable.
func validatePaging(opts savedobject.FindOptions) error {
	if opts.Page < 0 {
		return savedobject.NewBadRequest("options.page must be a positive integer")
	}
	if opts.PerPage < 0 {
		return savedobject.NewBadRequest("options.perPage must be a positive integer")
	}
	if opts.PerPage > savedobject.MaxPerPage {
		return savedobject.NewBadRequest("options.perPage must not exceed %d", savedobject.MaxPerPage)
	}
	page, perPage := opts.Paging()
	if page-1 > (math.MaxInt-perPage)/perPage {
		return savedobject.NewBadRequest("options.page is too large")
	}
	return nil
}

// AllowedFindTypes returns the requested types that are allow-listed.
func (b *Base) AllowedFindTypes(opts savedobject.FindOptions) []string {
	types := opts.Type
	if len(types) == 0 {
		types = slices.Sorted(maps.Keys(opts.TypeToNamespacesMap))
	}
	var out []string
	for _, t := range types {
		if slices.Contains(b.allowedTypes, t) && !slices.Contains(out, t) {
			out = append(out, t)
		}
	}
	return out
}

// PlanFind validates opts and resolves the scopes to search. A nil plan with
// a nil error means no requested type is allowed and storage must not be
// queried.
func (b *Base) PlanFind(opts savedobject.FindOptions) (*FindPlan, error) {
	if err := b.ValidateFindOptions(opts); err != nil {
		return nil, err
	}
	types := b.AllowedFindTypes(opts)
	if len(types) == 0 {
		return nil, nil
	}

	namespaces := opts.Namespaces
	if namespaces == nil {
		namespaces = []string{namespace.DefaultNamespaceString}
	}

	plan := &FindPlan{
		Search:    SanitizeSearch(opts.Search),
		Fields:    slices.Clone(opts.Fields),
		SortField: opts.SortField,
		SortOrder: opts.SortOrder,
	}
	plan.Page, plan.PerPage = opts.Paging()
	if plan.SortOrder == "" {
		plan.SortOrder = savedobject.SortAsc
	}
	plan.SearchFields = searchFieldNames(opts.SearchFields)

	for _, t := range types {
		scope := FindScope{Type: t, Namespaces: slices.Clone(namespaces)}
		if opts.TypeToNamespacesMap != nil {
			scope.Namespaces = slices.Clone(opts.TypeToNamespacesMap[t])
			if len(scope.Namespaces) == 0 {
				scope.Namespaces = []string{namespace.DefaultNamespaceString}
			}
		}
		plan.Scopes = append(plan.Scopes, scope)
	}
	return plan, nil
}

// SanitizeSearch strips the quote and wildcard characters of simple query
// string syntax; Find matches the remainder as a substring.
func SanitizeSearch(search string) string {
	return strings.TrimSpace(strings.NewReplacer(`"`, "", "*", "").Replace(search))
}

// searchFieldNames drops "^boost" suffixes and falls back to the defaults.
func searchFieldNames(fields []string) []string {
	if len(fields) == 0 {
		return slices.Clone(DefaultSearchFields)
	}
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		name, _, _ := strings.Cut(f, "^")
		if name != "" && !slices.Contains(out, name) {
			out = append(out, name)
		}
	}
	return out
}

// NamespaceVisible reports whether a record persisted with stored namespaces
// is visible from any of want. Empty stored sets belong to namespace-agnostic
// types and are visible everywhere.
func NamespaceVisible(stored, want []string) bool {
	if len(stored) == 0 || slices.Contains(stored, namespace.AllNamespacesString) {
		return true
	}
	for _, ns := range want {
		if ns == namespace.AllNamespacesString || slices.Contains(stored, ns) {
			return true
		}
	}
	return false
}

// MatchesScope reports whether a record of typ persisted with stored
// namespaces falls in one of the plan's scopes.
func (p *FindPlan) MatchesScope(typ string, stored []string) bool {
	for _, s := range p.Scopes {
		if s.Type == typ && NamespaceVisible(stored, s.Namespaces) {
			return true
		}
	}
	return false
}

// MatchesSearch reports whether any search field of attrs contains the
// search term, ignoring case. An empty term matches everything. Only scalar
// values are searched; numbers and booleans match their JSON text.
func (p *FindPlan) MatchesSearch(attrs savedobject.Attributes) bool {
	if p.Search == "" {
		return true
	}
	needle := strings.ToLower(p.Search)
	for _, f := range p.SearchFields {
		text, ok := searchText(attrs[f])
		if ok && strings.Contains(strings.ToLower(text), needle) {
			return true
		}
	}
	return false
}

func searchText(v any) (string, bool) {
	switch tv := v.(type) {
	case string:
		return tv, true
	case float64, int, int64, bool, json.Number:
		b, err := json.Marshal(tv)
		if err != nil {
			return "", false
		}
		return string(b), true
	default:
		return "", false
	}
}

// SortRawDocs orders docs in place by the plan's sort field; ties and the
// default order fall back to the raw id.
func (p *FindPlan) SortRawDocs(docs []serializer.RawDoc) {
	slices.SortStableFunc(docs, func(a, b serializer.RawDoc) int {
		c := compareSortValues(sortValue(a, p.SortField), sortValue(b, p.SortField))
		if c == 0 {
			c = cmp.Compare(a.ID, b.ID)
		}
		if p.SortOrder == savedobject.SortDesc {
			return -c
		}
		return c
	})
}

func sortValue(doc serializer.RawDoc, field string) any {
	switch field {
	case "", "id":
		return doc.ID
	case "type":
		return doc.Source.Type
	case "updated_at":
		return doc.Source.UpdatedAt
	default:
		return doc.Source.Attributes[field]
	}
}

// compareSortValues orders attribute values the way jsonb does: strings,
// then numbers, then booleans, then arrays, then objects. Missing values
// sort last.
func compareSortValues(a, b any) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	}
	if ra, rb := jsonRank(a), jsonRank(b); ra != rb {
		return cmp.Compare(ra, rb)
	}
	switch av := a.(type) {
	case string:
		return cmp.Compare(av, b.(string))
	case float64:
		return cmp.Compare(av, b.(float64))
	case bool:
		return compareBools(av, b.(bool))
	case []any:
		bv := b.([]any)
		if c := cmp.Compare(len(av), len(bv)); c != 0 {
			return c
		}
		for i := range av {
			if c := compareSortValues(av[i], bv[i]); c != 0 {
				return c
			}
		}
		return 0
	case map[string]any:
		if c := cmp.Compare(len(av), len(b.(map[string]any))); c != 0 {
			return c
		}
	}
	return cmp.Compare(fmt.Sprint(a), fmt.Sprint(b))
}

func jsonRank(v any) int {
	switch v.(type) {
	case string:
		return 1
	case float64:
		return 2
	case bool:
		return 3
	case []any:
		return 4
	case map[string]any:
		return 5
	default:
		return 0
	}
}

func compareBools(a, b bool) int {
	switch {
	case a == b:
		return 0
	case !a:
		return -1
	default:
		return 1
	}
}

// Paginate returns the page of items selected by page/perPage.
func Paginate[T any](items []T, page, perPage int) []T {
	start := (page - 1) * perPage
	if start >= len(items) || start < 0 {
		return []T{}
	}
	end := min(start+perPage, len(items))
	return items[start:end]
}

// ProjectFields keeps only the listed attribute keys. Nil fields keeps all.
func ProjectFields(attrs savedobject.Attributes, fields []string) savedobject.Attributes {
	if len(fields) == 0 {
		return attrs
	}
	out := make(savedobject.Attributes, len(fields))
	for _, f := range fields {
		if v, ok := attrs[f]; ok {
			out[f] = v
		}
	}
	return out
}

// FindResponse builds the response for a page of raw documents.
func (b *Base) FindResponse(plan *FindPlan, page []serializer.RawDoc, total int) *savedobject.FindResponse {
	resp := &savedobject.FindResponse{
		Page:         plan.Page,
		PerPage:      plan.PerPage,
		Total:        total,
		SavedObjects: make([]savedobject.FindResult, 0, len(page)),
	}
	for _, raw := range page {
		obj := b.SavedObjectFromRaw(raw)
		obj.Attributes = ProjectFields(obj.Attributes, plan.Fields)
		resp.SavedObjects = append(resp.SavedObjects, savedobject.FindResult{SavedObject: *obj})
	}
	return resp
}
