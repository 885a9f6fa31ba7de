package storage

import (
	"context"
	"testing"

	corecfg "github.com/aevon-lab/metastore/internal/core/config"
	"github.com/aevon-lab/metastore/internal/core/savedobject"
	"github.com/aevon-lab/metastore/internal/core/typeregistry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRegistry(t *testing.T) *typeregistry.Registry {
	t.Helper()
	reg, err := typeregistry.New(
		typeregistry.Type{
			Name: "dashboard",
			Migrations: map[string]typeregistry.MigrationSpec{
				"7.0.0": {Rename: map[string]string{"name": "title"}},
			},
		},
		typeregistry.Type{Name: "secret", Hidden: true},
	)
	require.NoError(t, err)
	return reg
}

func TestOpen_KVInMemory(t *testing.T) {
	cfg := &corecfg.Config{
		Storage:  corecfg.StorageConfig{Kind: corecfg.StorageKV, ApplicationID: "app", MaxConcurrency: 2},
		KV:       corecfg.KVConfig{InMemory: true},
		Registry: testRegistry(t),
	}

	backend, err := Open(context.Background(), cfg)
	require.NoError(t, err)
	defer backend.Close()

	require.NoError(t, backend.Ping(context.Background()))

	obj, err := backend.Create(context.Background(), "dashboard", savedobject.Attributes{"name": "Sales"}, savedobject.CreateOptions{ID: "d1"})
	require.NoError(t, err)
	assert.Equal(t, "Sales", obj.Attributes["title"])
	assert.NotContains(t, obj.Attributes, "name")
	assert.Equal(t, map[string]string{"dashboard": "7.0.0"}, obj.MigrationVersion)

	_, err = backend.Get(context.Background(), "secret", "s1", savedobject.BaseOptions{})
	assert.True(t, savedobject.IsUnsupportedType(err))
}

func TestOpen_IncludedHiddenTypes(t *testing.T) {
	cfg := &corecfg.Config{
		Storage:  corecfg.StorageConfig{Kind: corecfg.StorageKV, ApplicationID: "app", MaxConcurrency: 1},
		KV:       corecfg.KVConfig{InMemory: true},
		Types:    corecfg.TypesConfig{IncludedHidden: []string{"secret"}},
		Registry: testRegistry(t),
	}

	backend, err := Open(context.Background(), cfg)
	require.NoError(t, err)
	defer backend.Close()

	_, err = backend.Create(context.Background(), "secret", savedobject.Attributes{"value": "x"}, savedobject.CreateOptions{ID: "s1"})
	require.NoError(t, err)
}

func TestOpen_UnsupportedKind(t *testing.T) {
	cfg := &corecfg.Config{
		Storage:  corecfg.StorageConfig{Kind: "dynamo", ApplicationID: "app"},
		Registry: testRegistry(t),
	}

	_, err := Open(context.Background(), cfg)
	require.ErrorContains(t, err, `unsupported storage kind "dynamo"`)
}

func TestNewBase_UnknownHiddenType(t *testing.T) {
	_, err := NewBase(testRegistry(t), []string{"missing"}, 1)
	require.ErrorContains(t, err, "Missing mappings for saved objects types: 'missing'")
}
