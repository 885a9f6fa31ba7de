// Package repository defines the saved object repository contract implemented by
// every storage backend, plus the helpers the backends share.
package repository

import (
	"context"

	"github.com/aevon-lab/metastore/internal/core/savedobject"
)

// Repository is the saved object CRUD/query API. Every backend must be
// behaviourally interchangeable behind it.
//
// Errors are *savedobject.Error values; use the savedobject.Is* helpers to
// classify them. Bulk operations report per-item failures in their results and
// only return an error when the whole call is malformed.
type Repository interface {
	Create(ctx context.Context, typ string, attributes savedobject.Attributes, opts savedobject.CreateOptions) (*savedobject.SavedObject, error)
	BulkCreate(ctx context.Context, objects []savedobject.BulkCreateObject, opts savedobject.CreateOptions) ([]savedobject.BulkResult, error)
	CheckConflicts(ctx context.Context, objects []savedobject.CheckConflictsObject, opts savedobject.BaseOptions) (*savedobject.CheckConflictsResponse, error)

	Delete(ctx context.Context, typ, id string, opts savedobject.DeleteOptions) error
	// DeleteByNamespace removes namespace from every record that carries it and
	// returns the number of records touched.
	DeleteByNamespace(ctx context.Context, namespace string) (int, error)

	Find(ctx context.Context, opts savedobject.FindOptions) (*savedobject.FindResponse, error)
	BulkGet(ctx context.Context, objects []savedobject.BulkGetObject, opts savedobject.BaseOptions) ([]savedobject.BulkResult, error)
	Get(ctx context.Context, typ, id string, opts savedobject.BaseOptions) (*savedobject.SavedObject, error)

	Update(ctx context.Context, typ, id string, attributes savedobject.Attributes, opts savedobject.UpdateOptions) (*savedobject.SavedObject, error)
	BulkUpdate(ctx context.Context, objects []savedobject.BulkUpdateObject, opts savedobject.BaseOptions) ([]savedobject.BulkResult, error)

	AddToNamespaces(ctx context.Context, typ, id string, namespaces []string, opts savedobject.NamespacesOptions) (*savedobject.NamespacesResponse, error)
	// DeleteFromNamespaces deletes the record once its namespace set becomes
	// empty and then returns a NotFound error with Removed set.
	DeleteFromNamespaces(ctx context.Context, typ, id string, namespaces []string, opts savedobject.NamespacesOptions) (*savedobject.NamespacesResponse, error)

	IncrementCounter(ctx context.Context, typ, id, counterField string, opts savedobject.IncrementCounterOptions) (*savedobject.SavedObject, error)

	Close() error
}
