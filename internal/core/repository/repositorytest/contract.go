// Package repositorytest holds the behavioural test suite every repository
// backend must pass.
package repositorytest

import (
	"context"
	"fmt"
	"math"
	"testing"

	"github.com/aevon-lab/metastore/internal/core/repository"
	"github.com/aevon-lab/metastore/internal/core/savedobject"
	"github.com/aevon-lab/metastore/internal/core/serializer"
	"github.com/aevon-lab/metastore/internal/core/typeregistry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Factory opens an empty repository backed by base.
type Factory func(t *testing.T, base *repository.Base) repository.Repository

// Types is the registry the suite runs against. "secret" is hidden and not
// allow-listed.
func Types(t *testing.T) *typeregistry.Registry {
	t.Helper()
	reg, err := typeregistry.New(
		typeregistry.Type{Name: "dashboard"},
		typeregistry.Type{Name: "visualization"},
		typeregistry.Type{Name: "index-pattern", NamespaceType: typeregistry.NamespaceMultiple},
		typeregistry.Type{Name: "config", NamespaceType: typeregistry.NamespaceAgnostic},
		typeregistry.Type{Name: "secret", Hidden: true},
	)
	require.NoError(t, err)
	return reg
}

// NewBase builds the Base used by the suite.
func NewBase(t *testing.T) *repository.Base {
	t.Helper()
	reg := Types(t)
	allowed, err := typeregistry.AllowedTypes(reg, nil)
	require.NoError(t, err)
	base, err := repository.NewBase(repository.Options{
		Registry:       reg,
		AllowedTypes:   allowed,
		MaxConcurrency: 4,
	})
	require.NoError(t, err)
	return base
}

// Run executes the suite. Every subtest gets a fresh repository.
func Run(t *testing.T, factory Factory) {
	tests := []struct {
		name string
		fn   func(t *testing.T, repo repository.Repository)
	}{
		{"create get conflict", testCreateGetConflict},
		{"create without id", testCreateWithoutID},
		{"create version needs overwrite", testCreateVersionNeedsOverwrite},
		{"type isolation", testTypeIsolation},
		{"single namespace isolation", testSingleNamespaceIsolation},
		{"wildcard namespace rejected", testWildcardNamespaceRejected},
		{"unsupported type", testUnsupportedType},
		{"idempotent delete", testIdempotentDelete},
		{"update merges attributes", testUpdate},
		{"update missing object", testUpdateMissing},
		{"increment counter", testIncrementCounter},
		{"bulk create partial failure", testBulkCreatePartialFailure},
		{"bulk get partial failure", testBulkGetPartialFailure},
		{"bulk update partial failure", testBulkUpdatePartialFailure},
		{"check conflicts", testCheckConflicts},
		{"namespace monotonicity", testNamespaceMonotonicity},
		{"multi namespace overwrite preflight", testMultiNamespaceOverwrite},
		{"initial namespaces validation", testInitialNamespacesValidation},
		{"delete by namespace", testDeleteByNamespace},
		{"find pagination", testFindPagination},
		{"find search", testFindSearch},
		{"find typed attributes", testFindTypedAttributes},
		{"find namespaces", testFindNamespaces},
		{"find validation", testFindValidation},
		{"find disallowed types", testFindDisallowedTypes},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			repo := factory(t, NewBase(t))
			t.Cleanup(func() { _ = repo.Close() })
			tc.fn(t, repo)
		})
	}
}

func testCreateGetConflict(t *testing.T, repo repository.Repository) {
	ctx := context.Background()

	created, err := repo.Create(ctx, "dashboard", savedobject.Attributes{"title": "Sales"}, savedobject.CreateOptions{ID: "d1"})
	require.NoError(t, err)
	assert.Equal(t, "d1", created.ID)
	assert.Equal(t, []string{"default"}, created.Namespaces)
	assert.NotEmpty(t, created.Version)
	assert.NotEmpty(t, created.UpdatedAt)
	assert.Equal(t, []savedobject.Reference{}, created.References)

	got, err := repo.Get(ctx, "dashboard", "d1", savedobject.BaseOptions{})
	require.NoError(t, err)
	assert.Equal(t, savedobject.Attributes{"title": "Sales"}, got.Attributes)
	assert.Equal(t, []string{"default"}, got.Namespaces)
	assert.Equal(t, created.Version, got.Version)

	_, err = repo.Create(ctx, "dashboard", savedobject.Attributes{"title": "Other"}, savedobject.CreateOptions{ID: "d1"})
	require.True(t, savedobject.IsConflict(err), "got %v", err)

	overwritten, err := repo.Create(ctx, "dashboard", savedobject.Attributes{"title": "Other"}, savedobject.CreateOptions{ID: "d1", Overwrite: true})
	require.NoError(t, err)
	assert.Equal(t, savedobject.Attributes{"title": "Other"}, overwritten.Attributes)
	assert.NotEqual(t, created.Version, overwritten.Version)

	_, err = repo.Create(ctx, "dashboard", savedobject.Attributes{}, savedobject.CreateOptions{ID: "d1", Overwrite: true, Version: created.Version})
	require.True(t, savedobject.IsConflict(err), "stale version must conflict, got %v", err)
}

func testCreateVersionNeedsOverwrite(t *testing.T, repo repository.Repository) {
	ctx := context.Background()
	version := serializer.EncodeVersion(1, 1)

	created, err := repo.Create(ctx, "dashboard", savedobject.Attributes{"title": "Sales"}, savedobject.CreateOptions{ID: "d1", Version: version})
	require.NoError(t, err, "version is ignored without overwrite")
	assert.Equal(t, "d1", created.ID)

	results, err := repo.BulkCreate(ctx, []savedobject.BulkCreateObject{
		{Type: "dashboard", ID: "d2", Version: version, Attributes: savedobject.Attributes{}},
	}, savedobject.CreateOptions{})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.False(t, results[0].IsError(), "got %v", results[0].Err)

	_, err = repo.Create(ctx, "dashboard", savedobject.Attributes{}, savedobject.CreateOptions{ID: "missing", Overwrite: true, Version: version})
	require.True(t, savedobject.IsConflict(err), "overwrite with a version needs an existing object, got %v", err)
}

func testCreateWithoutID(t *testing.T, repo repository.Repository) {
	ctx := context.Background()

	created, err := repo.Create(ctx, "config", savedobject.Attributes{"buildNum": "1"}, savedobject.CreateOptions{})
	require.NoError(t, err)
	require.Len(t, created.ID, 36)
	assert.Nil(t, created.Namespaces)

	got, err := repo.Get(ctx, "config", created.ID, savedobject.BaseOptions{Namespace: "sales"})
	require.NoError(t, err, "namespace-agnostic objects are visible from every namespace")
	assert.Equal(t, "1", got.Attributes["buildNum"])
}

func testTypeIsolation(t *testing.T, repo repository.Repository) {
	ctx := context.Background()

	_, err := repo.Create(ctx, "dashboard", savedobject.Attributes{"title": "dash"}, savedobject.CreateOptions{ID: "x"})
	require.NoError(t, err)
	_, err = repo.Create(ctx, "visualization", savedobject.Attributes{"title": "vis"}, savedobject.CreateOptions{ID: "x"})
	require.NoError(t, err)

	dash, err := repo.Get(ctx, "dashboard", "x", savedobject.BaseOptions{})
	require.NoError(t, err)
	vis, err := repo.Get(ctx, "visualization", "x", savedobject.BaseOptions{})
	require.NoError(t, err)

	assert.Equal(t, "dash", dash.Attributes["title"])
	assert.Equal(t, "vis", vis.Attributes["title"])
}

func testSingleNamespaceIsolation(t *testing.T, repo repository.Repository) {
	ctx := context.Background()

	created, err := repo.Create(ctx, "dashboard", savedobject.Attributes{"title": "Sales"}, savedobject.CreateOptions{ID: "d1", Namespace: "sales"})
	require.NoError(t, err)
	assert.Equal(t, []string{"sales"}, created.Namespaces)

	_, err = repo.Get(ctx, "dashboard", "d1", savedobject.BaseOptions{})
	require.True(t, savedobject.IsNotFound(err))

	got, err := repo.Get(ctx, "dashboard", "d1", savedobject.BaseOptions{Namespace: "sales"})
	require.NoError(t, err)
	assert.Equal(t, []string{"sales"}, got.Namespaces)

	// "default" and "" address the same namespace
	_, err = repo.Create(ctx, "dashboard", savedobject.Attributes{}, savedobject.CreateOptions{ID: "d2", Namespace: "default"})
	require.NoError(t, err)
	_, err = repo.Get(ctx, "dashboard", "d2", savedobject.BaseOptions{})
	require.NoError(t, err)
}

func testWildcardNamespaceRejected(t *testing.T, repo repository.Repository) {
	ctx := context.Background()

	_, err := repo.Create(ctx, "dashboard", savedobject.Attributes{}, savedobject.CreateOptions{Namespace: "*"})
	require.True(t, savedobject.IsBadRequest(err))

	_, err = repo.Get(ctx, "dashboard", "d1", savedobject.BaseOptions{Namespace: "*"})
	require.True(t, savedobject.IsBadRequest(err))

	_, err = repo.BulkGet(ctx, []savedobject.BulkGetObject{{Type: "dashboard", ID: "d1"}}, savedobject.BaseOptions{Namespace: "*"})
	require.True(t, savedobject.IsBadRequest(err))
}

func testUnsupportedType(t *testing.T, repo repository.Repository) {
	ctx := context.Background()

	_, err := repo.Create(ctx, "secret", savedobject.Attributes{}, savedobject.CreateOptions{})
	require.True(t, savedobject.IsUnsupportedType(err))
	require.EqualError(t, err, "Unsupported saved object type: 'secret'")

	_, err = repo.Get(ctx, "unknown", "1", savedobject.BaseOptions{})
	require.True(t, savedobject.IsUnsupportedType(err))

	_, err = repo.Update(ctx, "secret", "1", savedobject.Attributes{}, savedobject.UpdateOptions{})
	require.True(t, savedobject.IsUnsupportedType(err))

	_, err = repo.IncrementCounter(ctx, "secret", "1", "count", savedobject.IncrementCounterOptions{})
	require.True(t, savedobject.IsUnsupportedType(err))
}

func testIdempotentDelete(t *testing.T, repo repository.Repository) {
	ctx := context.Background()

	require.NoError(t, repo.Delete(ctx, "dashboard", "missing", savedobject.DeleteOptions{}))

	_, err := repo.Create(ctx, "dashboard", savedobject.Attributes{}, savedobject.CreateOptions{ID: "d1"})
	require.NoError(t, err)
	require.NoError(t, repo.Delete(ctx, "dashboard", "d1", savedobject.DeleteOptions{}))
	require.NoError(t, repo.Delete(ctx, "dashboard", "d1", savedobject.DeleteOptions{}))

	_, err = repo.Get(ctx, "dashboard", "d1", savedobject.BaseOptions{})
	require.True(t, savedobject.IsNotFound(err))
	require.EqualError(t, err, "Saved object [dashboard/d1] not found")
}

func testUpdate(t *testing.T, repo repository.Repository) {
	ctx := context.Background()

	created, err := repo.Create(ctx, "dashboard", savedobject.Attributes{"title": "Sales", "panels": "[]"}, savedobject.CreateOptions{
		ID:         "d1",
		References: []savedobject.Reference{{Name: "panel_0", Type: "visualization", ID: "v1"}},
	})
	require.NoError(t, err)

	updated, err := repo.Update(ctx, "dashboard", "d1", savedobject.Attributes{"title": "Sales 2024", "description": "yearly"}, savedobject.UpdateOptions{Version: created.Version})
	require.NoError(t, err)
	assert.Equal(t, savedobject.Attributes{"title": "Sales 2024", "panels": "[]", "description": "yearly"}, updated.Attributes)
	assert.Len(t, updated.References, 1, "nil references keep the stored ones")
	assert.NotEqual(t, created.Version, updated.Version)

	got, err := repo.Get(ctx, "dashboard", "d1", savedobject.BaseOptions{})
	require.NoError(t, err)
	assert.Equal(t, updated.Attributes, got.Attributes)
	assert.Equal(t, updated.Version, got.Version)

	_, err = repo.Update(ctx, "dashboard", "d1", savedobject.Attributes{"title": "stale"}, savedobject.UpdateOptions{Version: created.Version})
	require.True(t, savedobject.IsConflict(err))

	cleared, err := repo.Update(ctx, "dashboard", "d1", savedobject.Attributes{}, savedobject.UpdateOptions{References: []savedobject.Reference{}})
	require.NoError(t, err)
	assert.Empty(t, cleared.References)
}

func testUpdateMissing(t *testing.T, repo repository.Repository) {
	_, err := repo.Update(context.Background(), "dashboard", "missing", savedobject.Attributes{"title": "x"}, savedobject.UpdateOptions{})
	require.True(t, savedobject.IsNotFound(err))
}

func testIncrementCounter(t *testing.T, repo repository.Repository) {
	ctx := context.Background()

	first, err := repo.IncrementCounter(ctx, "dashboard", "d1", "viewCount", savedobject.IncrementCounterOptions{})
	require.NoError(t, err)
	assert.EqualValues(t, 1, first.Attributes["viewCount"])

	second, err := repo.IncrementCounter(ctx, "dashboard", "d1", "viewCount", savedobject.IncrementCounterOptions{})
	require.NoError(t, err)
	assert.EqualValues(t, 2, second.Attributes["viewCount"])

	_, err = repo.Create(ctx, "dashboard", savedobject.Attributes{"title": "Sales"}, savedobject.CreateOptions{ID: "d2"})
	require.NoError(t, err)
	counted, err := repo.IncrementCounter(ctx, "dashboard", "d2", "viewCount", savedobject.IncrementCounterOptions{})
	require.NoError(t, err)
	assert.EqualValues(t, 1, counted.Attributes["viewCount"])
	assert.Equal(t, "Sales", counted.Attributes["title"])

	_, err = repo.IncrementCounter(ctx, "dashboard", "d2", "", savedobject.IncrementCounterOptions{})
	require.True(t, savedobject.IsBadRequest(err))
}

func testBulkCreatePartialFailure(t *testing.T, repo repository.Repository) {
	ctx := context.Background()

	_, err := repo.Create(ctx, "dashboard", savedobject.Attributes{}, savedobject.CreateOptions{ID: "taken"})
	require.NoError(t, err)

	results, err := repo.BulkCreate(ctx, []savedobject.BulkCreateObject{
		{Type: "dashboard", ID: "a", Attributes: savedobject.Attributes{"title": "a"}},
		{Type: "secret", ID: "b", Attributes: savedobject.Attributes{}},
		{Type: "visualization", ID: "c", Attributes: savedobject.Attributes{"title": "c"}},
		{Type: "dashboard", ID: "taken", Attributes: savedobject.Attributes{}},
	}, savedobject.CreateOptions{})
	require.NoError(t, err)
	require.Len(t, results, 4)

	require.False(t, results[0].IsError())
	assert.Equal(t, "a", results[0].Object.ID)

	require.True(t, results[1].IsError())
	assert.Equal(t, savedobject.KindUnsupportedType, results[1].Err.Kind)
	assert.Equal(t, "b", results[1].ID)

	require.False(t, results[2].IsError())
	assert.Equal(t, "visualization", results[2].Object.Type)

	require.True(t, results[3].IsError())
	assert.Equal(t, savedobject.KindConflict, results[3].Err.Kind)
}

func testBulkGetPartialFailure(t *testing.T, repo repository.Repository) {
	ctx := context.Background()

	_, err := repo.Create(ctx, "dashboard", savedobject.Attributes{"title": "a", "description": "long"}, savedobject.CreateOptions{ID: "a"})
	require.NoError(t, err)

	results, err := repo.BulkGet(ctx, []savedobject.BulkGetObject{
		{Type: "dashboard", ID: "a", Fields: []string{"title"}},
		{Type: "dashboard", ID: "missing"},
		{Type: "secret", ID: "x"},
	}, savedobject.BaseOptions{})
	require.NoError(t, err)
	require.Len(t, results, 3)

	require.False(t, results[0].IsError())
	assert.Equal(t, savedobject.Attributes{"title": "a"}, results[0].Object.Attributes)
	require.True(t, results[1].IsError())
	assert.Equal(t, savedobject.KindNotFound, results[1].Err.Kind)
	require.True(t, results[2].IsError())
	assert.Equal(t, savedobject.KindUnsupportedType, results[2].Err.Kind)

	empty, err := repo.BulkGet(ctx, nil, savedobject.BaseOptions{})
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func testBulkUpdatePartialFailure(t *testing.T, repo repository.Repository) {
	ctx := context.Background()

	_, err := repo.Create(ctx, "dashboard", savedobject.Attributes{"title": "a"}, savedobject.CreateOptions{ID: "a"})
	require.NoError(t, err)
	_, err = repo.Create(ctx, "dashboard", savedobject.Attributes{"title": "s"}, savedobject.CreateOptions{ID: "s", Namespace: "sales"})
	require.NoError(t, err)

	results, err := repo.BulkUpdate(ctx, []savedobject.BulkUpdateObject{
		{Type: "dashboard", ID: "a", Attributes: savedobject.Attributes{"title": "a2"}},
		{Type: "dashboard", ID: "missing", Attributes: savedobject.Attributes{"title": "x"}},
		{Type: "dashboard", ID: "s", Attributes: savedobject.Attributes{"title": "s2"}, Namespace: "sales"},
	}, savedobject.BaseOptions{})
	require.NoError(t, err)
	require.Len(t, results, 3)

	require.False(t, results[0].IsError())
	assert.Equal(t, "a2", results[0].Object.Attributes["title"])
	require.True(t, results[1].IsError())
	assert.Equal(t, savedobject.KindNotFound, results[1].Err.Kind)
	require.False(t, results[2].IsError())
	assert.Equal(t, "s2", results[2].Object.Attributes["title"])
}

func testCheckConflicts(t *testing.T, repo repository.Repository) {
	ctx := context.Background()

	_, err := repo.Create(ctx, "dashboard", savedobject.Attributes{}, savedobject.CreateOptions{ID: "d1"})
	require.NoError(t, err)
	_, err = repo.Create(ctx, "index-pattern", savedobject.Attributes{}, savedobject.CreateOptions{ID: "p1", Namespace: "sales"})
	require.NoError(t, err)

	resp, err := repo.CheckConflicts(ctx, []savedobject.CheckConflictsObject{
		{Type: "dashboard", ID: "d1"},
		{Type: "dashboard", ID: "free"},
		{Type: "secret", ID: "s1"},
		{Type: "index-pattern", ID: "p1"},
	}, savedobject.BaseOptions{})
	require.NoError(t, err)
	require.Len(t, resp.Errors, 3)

	assert.Equal(t, "d1", resp.Errors[0].ID)
	assert.Equal(t, savedobject.KindConflict, resp.Errors[0].Error.Kind)
	assert.False(t, resp.Errors[0].Error.NotOverwritable)

	assert.Equal(t, savedobject.KindUnsupportedType, resp.Errors[1].Error.Kind)

	assert.Equal(t, "p1", resp.Errors[2].ID)
	assert.Equal(t, savedobject.KindConflict, resp.Errors[2].Error.Kind)
	assert.True(t, resp.Errors[2].Error.NotOverwritable)
}

func testNamespaceMonotonicity(t *testing.T, repo repository.Repository) {
	ctx := context.Background()

	created, err := repo.Create(ctx, "index-pattern", savedobject.Attributes{"title": "logs-*"}, savedobject.CreateOptions{
		ID:                "p1",
		InitialNamespaces: []string{"default", "sales", "sales"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"default", "sales"}, created.Namespaces)

	added, err := repo.AddToNamespaces(ctx, "index-pattern", "p1", []string{"sales", "marketing"}, savedobject.NamespacesOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{"default", "sales", "marketing"}, added.Namespaces)

	got, err := repo.Get(ctx, "index-pattern", "p1", savedobject.BaseOptions{Namespace: "marketing"})
	require.NoError(t, err)
	assert.Equal(t, []string{"default", "sales", "marketing"}, got.Namespaces)

	shrunk, err := repo.DeleteFromNamespaces(ctx, "index-pattern", "p1", []string{"sales"}, savedobject.NamespacesOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{"default", "marketing"}, shrunk.Namespaces)

	_, err = repo.Get(ctx, "index-pattern", "p1", savedobject.BaseOptions{Namespace: "sales"})
	require.True(t, savedobject.IsNotFound(err))

	_, err = repo.DeleteFromNamespaces(ctx, "index-pattern", "p1", []string{"default", "marketing"}, savedobject.NamespacesOptions{})
	require.True(t, savedobject.IsNotFound(err))
	require.True(t, savedobject.IsObjectRemoved(err))

	_, err = repo.Get(ctx, "index-pattern", "p1", savedobject.BaseOptions{})
	require.True(t, savedobject.IsNotFound(err))
	require.False(t, savedobject.IsObjectRemoved(err))

	_, err = repo.AddToNamespaces(ctx, "dashboard", "d1", []string{"sales"}, savedobject.NamespacesOptions{})
	require.True(t, savedobject.IsBadRequest(err))
	_, err = repo.AddToNamespaces(ctx, "index-pattern", "p1", nil, savedobject.NamespacesOptions{})
	require.True(t, savedobject.IsBadRequest(err))
	_, err = repo.AddToNamespaces(ctx, "index-pattern", "missing", []string{"sales"}, savedobject.NamespacesOptions{})
	require.True(t, savedobject.IsNotFound(err))
}

func testMultiNamespaceOverwrite(t *testing.T, repo repository.Repository) {
	ctx := context.Background()

	_, err := repo.Create(ctx, "index-pattern", savedobject.Attributes{"title": "v1"}, savedobject.CreateOptions{
		ID:                "p1",
		InitialNamespaces: []string{"sales", "marketing"},
	})
	require.NoError(t, err)

	_, err = repo.Create(ctx, "index-pattern", savedobject.Attributes{"title": "v2"}, savedobject.CreateOptions{ID: "p1", Overwrite: true})
	require.True(t, savedobject.IsConflict(err), "object lives outside the default namespace, got %v", err)

	overwritten, err := repo.Create(ctx, "index-pattern", savedobject.Attributes{"title": "v2"}, savedobject.CreateOptions{
		ID:        "p1",
		Overwrite: true,
		Namespace: "sales",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"sales", "marketing"}, overwritten.Namespaces)
	assert.Equal(t, "v2", overwritten.Attributes["title"])

	_, err = repo.IncrementCounter(ctx, "index-pattern", "p1", "hits", savedobject.IncrementCounterOptions{})
	require.True(t, savedobject.IsConflict(err))

	counted, err := repo.IncrementCounter(ctx, "index-pattern", "p1", "hits", savedobject.IncrementCounterOptions{Namespace: "marketing"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, counted.Attributes["hits"])
}

func testInitialNamespacesValidation(t *testing.T, repo repository.Repository) {
	ctx := context.Background()

	_, err := repo.Create(ctx, "dashboard", savedobject.Attributes{}, savedobject.CreateOptions{InitialNamespaces: []string{"sales"}})
	require.True(t, savedobject.IsBadRequest(err))

	_, err = repo.Create(ctx, "index-pattern", savedobject.Attributes{}, savedobject.CreateOptions{InitialNamespaces: []string{}})
	require.True(t, savedobject.IsBadRequest(err))
}

func testDeleteByNamespace(t *testing.T, repo repository.Repository) {
	ctx := context.Background()

	_, err := repo.Create(ctx, "dashboard", savedobject.Attributes{}, savedobject.CreateOptions{ID: "s1", Namespace: "sales"})
	require.NoError(t, err)
	_, err = repo.Create(ctx, "dashboard", savedobject.Attributes{}, savedobject.CreateOptions{ID: "d1"})
	require.NoError(t, err)
	_, err = repo.Create(ctx, "index-pattern", savedobject.Attributes{}, savedobject.CreateOptions{ID: "p1", InitialNamespaces: []string{"default", "sales"}})
	require.NoError(t, err)
	_, err = repo.Create(ctx, "config", savedobject.Attributes{}, savedobject.CreateOptions{ID: "c1"})
	require.NoError(t, err)

	_, err = repo.DeleteByNamespace(ctx, "")
	require.True(t, savedobject.IsBadRequest(err))
	_, err = repo.DeleteByNamespace(ctx, "*")
	require.True(t, savedobject.IsBadRequest(err))

	touched, err := repo.DeleteByNamespace(ctx, "sales")
	require.NoError(t, err)
	assert.Equal(t, 2, touched)

	_, err = repo.Get(ctx, "dashboard", "s1", savedobject.BaseOptions{Namespace: "sales"})
	require.True(t, savedobject.IsNotFound(err))

	p1, err := repo.Get(ctx, "index-pattern", "p1", savedobject.BaseOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{"default"}, p1.Namespaces)

	_, err = repo.Get(ctx, "dashboard", "d1", savedobject.BaseOptions{})
	require.NoError(t, err)
	_, err = repo.Get(ctx, "config", "c1", savedobject.BaseOptions{})
	require.NoError(t, err)
}

func testFindPagination(t *testing.T, repo repository.Repository) {
	ctx := context.Background()

	for i := 0; i < 25; i++ {
		_, err := repo.Create(ctx, "dashboard", savedobject.Attributes{"title": fmt.Sprintf("dash %02d", i)}, savedobject.CreateOptions{
			ID: fmt.Sprintf("d%02d", i),
		})
		require.NoError(t, err)
	}
	_, err := repo.Create(ctx, "visualization", savedobject.Attributes{"title": "vis"}, savedobject.CreateOptions{ID: "v1"})
	require.NoError(t, err)

	resp, err := repo.Find(ctx, savedobject.FindOptions{Type: []string{"dashboard"}, Page: 2, PerPage: 10})
	require.NoError(t, err)
	assert.Equal(t, 25, resp.Total)
	assert.Equal(t, 2, resp.Page)
	assert.Equal(t, 10, resp.PerPage)
	require.Len(t, resp.SavedObjects, 10)
	assert.Equal(t, "d10", resp.SavedObjects[0].ID)
	assert.Equal(t, "d19", resp.SavedObjects[9].ID)

	last, err := repo.Find(ctx, savedobject.FindOptions{Type: []string{"dashboard"}, Page: 3, PerPage: 10})
	require.NoError(t, err)
	assert.Len(t, last.SavedObjects, 5)

	defaults, err := repo.Find(ctx, savedobject.FindOptions{Type: []string{"dashboard", "visualization"}})
	require.NoError(t, err)
	assert.Equal(t, 26, defaults.Total)
	assert.Equal(t, savedobject.DefaultPage, defaults.Page)
	assert.Equal(t, savedobject.DefaultPerPage, defaults.PerPage)
	assert.Len(t, defaults.SavedObjects, savedobject.DefaultPerPage)

	desc, err := repo.Find(ctx, savedobject.FindOptions{
		Type:      []string{"dashboard"},
		PerPage:   1,
		SortField: "title",
		SortOrder: savedobject.SortDesc,
		Fields:    []string{"title"},
	})
	require.NoError(t, err)
	require.Len(t, desc.SavedObjects, 1)
	assert.Equal(t, savedobject.Attributes{"title": "dash 24"}, desc.SavedObjects[0].Attributes)
}

func testFindSearch(t *testing.T, repo repository.Repository) {
	ctx := context.Background()

	seed := []struct {
		id    string
		attrs savedobject.Attributes
	}{
		{"d1", savedobject.Attributes{"title": "Sales overview"}},
		{"d2", savedobject.Attributes{"title": "Marketing", "description": "quarterly SALES numbers"}},
		{"d3", savedobject.Attributes{"title": "Ops"}},
		{"d4", savedobject.Attributes{"title": "Ops", "owner": "sales team"}},
	}
	for _, s := range seed {
		_, err := repo.Create(ctx, "dashboard", s.attrs, savedobject.CreateOptions{ID: s.id})
		require.NoError(t, err)
	}

	resp, err := repo.Find(ctx, savedobject.FindOptions{Type: []string{"dashboard"}, Search: `"sales*"`})
	require.NoError(t, err)
	assert.Equal(t, 2, resp.Total)
	assert.Equal(t, "d1", resp.SavedObjects[0].ID)
	assert.Equal(t, "d2", resp.SavedObjects[1].ID)

	byOwner, err := repo.Find(ctx, savedobject.FindOptions{Type: []string{"dashboard"}, Search: "sales", SearchFields: []string{"owner^2"}})
	require.NoError(t, err)
	require.Equal(t, 1, byOwner.Total)
	assert.Equal(t, "d4", byOwner.SavedObjects[0].ID)

	regexLike, err := repo.Find(ctx, savedobject.FindOptions{Type: []string{"dashboard"}, Search: "s.les"})
	require.NoError(t, err)
	assert.Equal(t, 0, regexLike.Total, "search terms are literal")
}

func testFindTypedAttributes(t *testing.T, repo repository.Repository) {
	ctx := context.Background()

	seed := []struct {
		id    string
		attrs savedobject.Attributes
	}{
		{"d1", savedobject.Attributes{"rank": 10, "views": 1420}},
		{"d2", savedobject.Attributes{"rank": 9, "tags": []any{"q1", "sales"}}},
		{"d3", savedobject.Attributes{"rank": "b", "pinned": true}},
		{"d4", savedobject.Attributes{"rank": true, "owner": map[string]any{"name": "q1"}}},
		{"d5", savedobject.Attributes{}},
	}
	for _, s := range seed {
		_, err := repo.Create(ctx, "dashboard", s.attrs, savedobject.CreateOptions{ID: s.id})
		require.NoError(t, err)
	}

	asc, err := repo.Find(ctx, savedobject.FindOptions{Type: []string{"dashboard"}, SortField: "rank"})
	require.NoError(t, err)
	assert.Equal(t, []string{"d3", "d2", "d1", "d4", "d5"}, objectIDs(asc.SavedObjects))

	desc, err := repo.Find(ctx, savedobject.FindOptions{Type: []string{"dashboard"}, SortField: "rank", SortOrder: savedobject.SortDesc})
	require.NoError(t, err)
	assert.Equal(t, []string{"d5", "d4", "d1", "d2", "d3"}, objectIDs(desc.SavedObjects))

	tests := []struct {
		search string
		fields []string
		want   []string
	}{
		{"42", []string{"views"}, []string{"d1"}},
		{"true", []string{"pinned"}, []string{"d3"}},
		{"q1", []string{"tags", "owner"}, nil},
	}
	for _, tt := range tests {
		resp, err := repo.Find(ctx, savedobject.FindOptions{Type: []string{"dashboard"}, Search: tt.search, SearchFields: tt.fields})
		require.NoError(t, err)
		assert.Equal(t, len(tt.want), resp.Total, "search %q", tt.search)
		if len(tt.want) > 0 {
			assert.Equal(t, tt.want, objectIDs(resp.SavedObjects), "search %q", tt.search)
		}
	}
}

func objectIDs(objects []savedobject.FindResult) []string {
	ids := make([]string, len(objects))
	for i, o := range objects {
		ids[i] = o.ID
	}
	return ids
}

func testFindNamespaces(t *testing.T, repo repository.Repository) {
	ctx := context.Background()

	_, err := repo.Create(ctx, "dashboard", savedobject.Attributes{}, savedobject.CreateOptions{ID: "def"})
	require.NoError(t, err)
	_, err = repo.Create(ctx, "dashboard", savedobject.Attributes{}, savedobject.CreateOptions{ID: "sal", Namespace: "sales"})
	require.NoError(t, err)
	_, err = repo.Create(ctx, "index-pattern", savedobject.Attributes{}, savedobject.CreateOptions{ID: "shared", InitialNamespaces: []string{"*"}})
	require.NoError(t, err)
	_, err = repo.Create(ctx, "config", savedobject.Attributes{}, savedobject.CreateOptions{ID: "global"})
	require.NoError(t, err)

	ids := func(resp *savedobject.FindResponse) []string {
		out := make([]string, 0, len(resp.SavedObjects))
		for _, o := range resp.SavedObjects {
			out = append(out, o.ID)
		}
		return out
	}

	all := []string{"dashboard", "index-pattern", "config"}

	resp, err := repo.Find(ctx, savedobject.FindOptions{Type: all, SortField: "id"})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"def", "shared", "global"}, ids(resp))

	resp, err = repo.Find(ctx, savedobject.FindOptions{Type: all, Namespaces: []string{"sales"}})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"sal", "shared", "global"}, ids(resp))

	resp, err = repo.Find(ctx, savedobject.FindOptions{Type: []string{"dashboard"}, Namespaces: []string{"*"}})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"def", "sal"}, ids(resp))

	resp, err = repo.Find(ctx, savedobject.FindOptions{TypeToNamespacesMap: map[string][]string{
		"dashboard": {"sales"},
		"config":    nil,
	}})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"sal", "global"}, ids(resp))
}

func testFindValidation(t *testing.T, repo repository.Repository) {
	ctx := context.Background()

	cases := []savedobject.FindOptions{
		{},
		{Type: []string{"dashboard"}, Namespaces: []string{}},
		{Type: []string{"dashboard"}, TypeToNamespacesMap: map[string][]string{"dashboard": nil}},
		{TypeToNamespacesMap: map[string][]string{"dashboard": nil}, Namespaces: []string{"sales"}},
		{Type: []string{"dashboard"}, SearchFields: []string{""}},
		{Type: []string{"dashboard"}, Fields: []string{""}},
		{Type: []string{"dashboard"}, SortOrder: "sideways"},
		{Type: []string{"dashboard"}, Page: -1},
		{Type: []string{"dashboard"}, PerPage: -5},
		{Type: []string{"dashboard"}, PerPage: savedobject.MaxPerPage + 1},
		{Type: []string{"dashboard"}, Page: math.MaxInt, PerPage: 1000},
	}
	for i, opts := range cases {
		_, err := repo.Find(ctx, opts)
		require.True(t, savedobject.IsBadRequest(err), "case %d: got %v", i, err)
	}
}

func testFindDisallowedTypes(t *testing.T, repo repository.Repository) {
	resp, err := repo.Find(context.Background(), savedobject.FindOptions{Type: []string{"secret", "unknown"}, Page: 3, PerPage: 5})
	require.NoError(t, err)
	assert.Equal(t, 0, resp.Total)
	assert.Equal(t, 3, resp.Page)
	assert.Equal(t, 5, resp.PerPage)
	assert.Empty(t, resp.SavedObjects)
}
