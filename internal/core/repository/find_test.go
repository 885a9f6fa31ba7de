package repository

import (
	"math"
	"testing"

	"github.com/aevon-lab/metastore/internal/core/savedobject"
	"github.com/aevon-lab/metastore/internal/core/serializer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeSearch(t *testing.T) {
	assert.Equal(t, "sales", SanitizeSearch(` "sales*" `))
	assert.Equal(t, "", SanitizeSearch("*"))
}

func TestSearchFieldNames(t *testing.T) {
	assert.Equal(t, []string{"title", "description"}, searchFieldNames([]string{"title^3", "description", "title"}))
	assert.Equal(t, DefaultSearchFields, searchFieldNames(nil))
}

func TestNamespaceVisible(t *testing.T) {
	tests := []struct {
		name   string
		stored []string
		want   []string
		ok     bool
	}{
		{"agnostic record", nil, []string{"sales"}, true},
		{"shared everywhere", []string{"*"}, []string{"sales"}, true},
		{"member", []string{"default", "sales"}, []string{"sales"}, true},
		{"all namespaces wanted", []string{"sales"}, []string{"*"}, true},
		{"not a member", []string{"sales"}, []string{"marketing"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.ok, NamespaceVisible(tt.stored, tt.want))
		})
	}
}

func TestPaginate(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}

	assert.Equal(t, []int{1, 2}, Paginate(items, 1, 2))
	assert.Equal(t, []int{5}, Paginate(items, 3, 2))
	assert.Equal(t, []int{}, Paginate(items, 4, 2))
	assert.Equal(t, []int{}, Paginate(items, 0, 2))
}

func TestProjectFields(t *testing.T) {
	attrs := savedobject.Attributes{"title": "Sales", "panels": 3}

	assert.Equal(t, attrs, ProjectFields(attrs, nil))
	assert.Equal(t, savedobject.Attributes{"title": "Sales"}, ProjectFields(attrs, []string{"title", "missing"}))
}

func TestFindPlan_MatchesSearch(t *testing.T) {
	plan := &FindPlan{Search: "sal", SearchFields: []string{"title", "views"}}

	assert.True(t, plan.MatchesSearch(savedobject.Attributes{"title": "Q3 SALES"}))
	assert.False(t, plan.MatchesSearch(savedobject.Attributes{"title": "Marketing", "description": "sales"}))

	numeric := &FindPlan{Search: "42", SearchFields: []string{"views"}}
	assert.True(t, numeric.MatchesSearch(savedobject.Attributes{"views": float64(1420)}))

	flag := &FindPlan{Search: "TRUE", SearchFields: []string{"pinned"}}
	assert.True(t, flag.MatchesSearch(savedobject.Attributes{"pinned": true}))

	nested := &FindPlan{Search: "q1", SearchFields: []string{"tags", "owner"}}
	assert.False(t, nested.MatchesSearch(savedobject.Attributes{
		"tags":  []any{"q1"},
		"owner": map[string]any{"name": "q1"},
	}))

	assert.True(t, (&FindPlan{}).MatchesSearch(savedobject.Attributes{}))
}

func TestFindPlan_SortRawDocs(t *testing.T) {
	docs := []serializer.RawDoc{
		{ID: "dashboard:c", Source: serializer.RawDocSource{Attributes: savedobject.Attributes{"rank": float64(2)}}},
		{ID: "dashboard:a", Source: serializer.RawDocSource{Attributes: savedobject.Attributes{}}},
		{ID: "dashboard:b", Source: serializer.RawDocSource{Attributes: savedobject.Attributes{"rank": float64(1)}}},
	}

	(&FindPlan{SortField: "rank"}).SortRawDocs(docs)
	assert.Equal(t, []string{"dashboard:b", "dashboard:c", "dashboard:a"}, rawIDs(docs))

	(&FindPlan{SortOrder: savedobject.SortDesc}).SortRawDocs(docs)
	assert.Equal(t, []string{"dashboard:c", "dashboard:b", "dashboard:a"}, rawIDs(docs))
}

func TestFindPlan_SortRawDocs_MixedTypes(t *testing.T) {
	doc := func(id string, rank any) serializer.RawDoc {
		attrs := savedobject.Attributes{}
		if rank != nil {
			attrs["rank"] = rank
		}
		return serializer.RawDoc{ID: "dashboard:" + id, Source: serializer.RawDocSource{Attributes: attrs}}
	}
	docs := []serializer.RawDoc{
		doc("none", nil),
		doc("obj", map[string]any{"a": float64(1)}),
		doc("ten", float64(10)),
		doc("yes", true),
		doc("long", []any{float64(1), float64(2)}),
		doc("str", "b"),
		doc("nine", float64(9)),
		doc("no", false),
		doc("short", []any{float64(5)}),
	}

	(&FindPlan{SortField: "rank"}).SortRawDocs(docs)
	assert.Equal(t, []string{
		"dashboard:str", "dashboard:nine", "dashboard:ten", "dashboard:no", "dashboard:yes",
		"dashboard:short", "dashboard:long", "dashboard:obj", "dashboard:none",
	}, rawIDs(docs))
}

func TestValidateFindOptions_Paging(t *testing.T) {
	base := &Base{}
	dashboards := []string{"dashboard"}

	tests := []struct {
		name    string
		page    int
		perPage int
		wantErr bool
	}{
		{"defaults", 0, 0, false},
		{"largest page size", 1, savedobject.MaxPerPage, false},
		{"deep page", 1 << 20, savedobject.MaxPerPage, false},
		{"negative page", -1, 10, true},
		{"negative page size", 1, -1, true},
		{"page size over limit", 1, savedobject.MaxPerPage + 1, true},
		{"offset overflows", math.MaxInt, 1000, true},
		{"offset overflows with default page size", math.MaxInt / 10, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := base.ValidateFindOptions(savedobject.FindOptions{Type: dashboards, Page: tt.page, PerPage: tt.perPage})
			if !tt.wantErr {
				require.NoError(t, err)
				return
			}
			require.True(t, savedobject.IsBadRequest(err), "got %v", err)
		})
	}
}

func TestFindPlan_OffsetAtLimit(t *testing.T) {
	plan := &FindPlan{Page: math.MaxInt / savedobject.MaxPerPage, PerPage: savedobject.MaxPerPage}
	require.NoError(t, (&Base{}).ValidateFindOptions(savedobject.FindOptions{Type: []string{"dashboard"}, Page: plan.Page, PerPage: plan.PerPage}))
	assert.Positive(t, plan.Offset())
}

func rawIDs(docs []serializer.RawDoc) []string {
	ids := make([]string, len(docs))
	for i, d := range docs {
		ids[i] = d.ID
	}
	return ids
}
