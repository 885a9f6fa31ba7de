package repository

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"testing"

	"github.com/aevon-lab/metastore/internal/core/savedobject"
	"github.com/aevon-lab/metastore/internal/core/serializer"
	"github.com/aevon-lab/metastore/internal/core/typeregistry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMergeAttributes_DoesNotMutateInputs(t *testing.T) {
	existing := savedobject.Attributes{"title": "Old", "panels": 3}
	update := savedobject.Attributes{"title": "New"}

	merged := MergeAttributes(existing, update)

	assert.Equal(t, savedobject.Attributes{"title": "New", "panels": 3}, merged)
	assert.Equal(t, "Old", existing["title"])
}

func TestIncrementField(t *testing.T) {
	tests := []struct {
		name  string
		attrs savedobject.Attributes
		want  any
	}{
		{"missing field", savedobject.Attributes{}, int64(1)},
		{"null field", savedobject.Attributes{"hits": nil}, int64(1)},
		{"float from JSON", savedobject.Attributes{"hits": float64(41)}, int64(42)},
		{"json number", savedobject.Attributes{"hits": json.Number("9")}, int64(10)},
		{"numeric string", savedobject.Attributes{"hits": "2"}, int64(3)},
		{"fractional", savedobject.Attributes{"hits": 0.5}, 1.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := IncrementField(tt.attrs, "hits")
			require.NoError(t, err)
			assert.Equal(t, tt.want, out["hits"])
		})
	}
}

func TestIncrementField_NonNumeric(t *testing.T) {
	_, err := IncrementField(savedobject.Attributes{"hits": []string{"x"}}, "hits")
	require.True(t, savedobject.IsBadRequest(err))

	_, err = IncrementField(savedobject.Attributes{"hits": "many"}, "hits")
	require.True(t, savedobject.IsBadRequest(err))
}

func TestApplyUpdate_KeepsReferencesWhenNil(t *testing.T) {
	refs := []savedobject.Reference{{Name: "ref_0", Type: "index-pattern", ID: "p1"}}
	existing := serializer.RawDoc{
		ID: "dashboard:d1",
		Source: serializer.RawDocSource{
			Type:       "dashboard",
			Attributes: savedobject.Attributes{"title": "Old"},
			References: refs,
			UpdatedAt:  "2020-01-01T00:00:00.000Z",
		},
	}

	kept := ApplyUpdate(existing, savedobject.Attributes{"title": "New"}, nil)
	assert.Equal(t, refs, kept.Source.References)
	assert.Equal(t, "New", kept.Source.Attributes["title"])
	assert.NotEqual(t, existing.Source.UpdatedAt, kept.Source.UpdatedAt)

	cleared := ApplyUpdate(existing, savedobject.Attributes{}, []savedobject.Reference{})
	assert.Empty(t, cleared.Source.References)
	assert.Equal(t, "Old", cleared.Source.Attributes["title"])
}

func TestCheckVersion(t *testing.T) {
	existing := serializer.RawDoc{ID: "dashboard:d1", SeqNo: 4, PrimaryTerm: 1}

	require.NoError(t, CheckVersion("dashboard", "d1", existing, ""))
	require.NoError(t, CheckVersion("dashboard", "d1", existing, serializer.EncodeVersion(4, 1)))

	err := CheckVersion("dashboard", "d1", existing, serializer.EncodeVersion(3, 1))
	require.True(t, savedobject.IsConflict(err))

	err = CheckVersion("dashboard", "d1", existing, "not-a-version")
	require.True(t, savedobject.IsBadRequest(err))
}

func TestAddNamespaces_Union(t *testing.T) {
	current := []string{"default", "sales"}
	out := AddNamespaces(current, []string{"sales", "marketing"})

	assert.Equal(t, []string{"default", "sales", "marketing"}, out)
	assert.Equal(t, []string{"default", "sales"}, current)
}

func TestFanOut_RunsEveryItem(t *testing.T) {
	reg, err := typeregistry.New(typeregistry.Type{Name: "dashboard"})
	require.NoError(t, err)
	base, err := NewBase(Options{Registry: reg, MaxConcurrency: 2})
	require.NoError(t, err)
	defer base.Release()

	var seen [10]atomic.Bool
	base.FanOut(context.Background(), len(seen), func(_ context.Context, i int) {
		seen[i].Store(true)
	})

	for i := range seen {
		assert.True(t, seen[i].Load(), "item %d did not run", i)
	}
}
