package repository

import (
	"context"

	"github.com/aevon-lab/metastore/internal/core/savedobject"
	"github.com/aevon-lab/metastore/internal/core/serializer"
)

type (
	CreateFunc func(ctx context.Context, typ string, attributes savedobject.Attributes, opts savedobject.CreateOptions) (*savedobject.SavedObject, error)
	GetFunc    func(ctx context.Context, typ, id string, opts savedobject.BaseOptions) (*savedobject.SavedObject, error)
	UpdateFunc func(ctx context.Context, typ, id string, attributes savedobject.Attributes, opts savedobject.UpdateOptions) (*savedobject.SavedObject, error)
)

// BulkCreate runs create for every object concurrently. Results are aligned
// with objects; a failing object only affects its own entry.
func (b *Base) BulkCreate(ctx context.Context, objects []savedobject.BulkCreateObject, opts savedobject.CreateOptions, create CreateFunc) ([]savedobject.BulkResult, error) {
	if _, err := b.NormalizeNamespace(opts.Namespace); err != nil {
		return nil, err
	}

	results := make([]savedobject.BulkResult, len(objects))
	b.FanOut(ctx, len(objects), func(ctx context.Context, i int) {
		obj := objects[i]
		created, err := create(ctx, obj.Type, obj.Attributes, savedobject.CreateOptions{
			Namespace:         opts.Namespace,
			ID:                obj.ID,
			Overwrite:         opts.Overwrite,
			Version:           obj.Version,
			MigrationVersion:  obj.MigrationVersion,
			References:        obj.References,
			OriginID:          obj.OriginID,
			InitialNamespaces: obj.InitialNamespaces,
		})
		if err != nil {
			results[i] = savedobject.Failure(obj.Type, obj.ID, err)
			return
		}
		results[i] = savedobject.Success(created)
	})
	return results, nil
}

// BulkGet runs get for every object concurrently and projects the requested
// fields of each hit.
func (b *Base) BulkGet(ctx context.Context, objects []savedobject.BulkGetObject, opts savedobject.BaseOptions, get GetFunc) ([]savedobject.BulkResult, error) {
	if _, err := b.NormalizeNamespace(opts.Namespace); err != nil {
		return nil, err
	}

	results := make([]savedobject.BulkResult, len(objects))
	b.FanOut(ctx, len(objects), func(ctx context.Context, i int) {
		obj := objects[i]
		found, err := get(ctx, obj.Type, obj.ID, opts)
		if err != nil {
			results[i] = savedobject.Failure(obj.Type, obj.ID, err)
			return
		}
		found.Attributes = ProjectFields(found.Attributes, obj.Fields)
		results[i] = savedobject.Success(found)
	})
	return results, nil
}

// BulkUpdate runs update for every object concurrently. A per-object
// Namespace overrides opts.Namespace.
func (b *Base) BulkUpdate(ctx context.Context, objects []savedobject.BulkUpdateObject, opts savedobject.BaseOptions, update UpdateFunc) ([]savedobject.BulkResult, error) {
	if _, err := b.NormalizeNamespace(opts.Namespace); err != nil {
		return nil, err
	}

	results := make([]savedobject.BulkResult, len(objects))
	b.FanOut(ctx, len(objects), func(ctx context.Context, i int) {
		obj := objects[i]
		ns := opts.Namespace
		if obj.Namespace != "" {
			ns = obj.Namespace
		}
		updated, err := update(ctx, obj.Type, obj.ID, obj.Attributes, savedobject.UpdateOptions{
			Namespace:  ns,
			Version:    obj.Version,
			References: obj.References,
		})
		if err != nil {
			results[i] = savedobject.Failure(obj.Type, obj.ID, err)
			return
		}
		results[i] = savedobject.Success(updated)
	})
	return results, nil
}

// LookupFunc reads a raw document by raw id. found is false when no record
// exists; err is only set for storage failures.
type LookupFunc func(ctx context.Context, rawID string) (raw serializer.RawDoc, found bool, err error)

// CheckConflicts reports, per object, UnsupportedType for types that are not
// allow-listed and Conflict for ids that already exist. Conflicts on objects
// outside the caller namespace are marked not overwritable.
func (b *Base) CheckConflicts(ctx context.Context, objects []savedobject.CheckConflictsObject, opts savedobject.BaseOptions, lookup LookupFunc) (*savedobject.CheckConflictsResponse, error) {
	ns, err := b.NormalizeNamespace(opts.Namespace)
	if err != nil {
		return nil, err
	}

	resp := &savedobject.CheckConflictsResponse{Errors: []savedobject.ConflictError{}}
	for _, obj := range objects {
		if err := b.ValidateType(obj.Type); err != nil {
			resp.Errors = append(resp.Errors, savedobject.ConflictError{ID: obj.ID, Type: obj.Type, Error: savedobject.AsError(err)})
			continue
		}
		raw, found, err := lookup(ctx, b.RawID(ns, obj.Type, obj.ID))
		if err != nil {
			return nil, err
		}
		if !found {
			continue
		}
		conflict := savedobject.NewConflict(obj.Type, obj.ID)
		conflict.NotOverwritable = !b.RawDocExistsInNamespace(raw, ns)
		resp.Errors = append(resp.Errors, savedobject.ConflictError{ID: obj.ID, Type: obj.Type, Error: conflict})
	}
	return resp, nil
}
