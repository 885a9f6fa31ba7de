package kv

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/aevon-lab/metastore/internal/core/namespace"
	"github.com/aevon-lab/metastore/internal/core/repository"
	"github.com/aevon-lab/metastore/internal/core/savedobject"
	"github.com/aevon-lab/metastore/internal/core/serializer"
	"github.com/dgraph-io/badger/v4"
	"golang.org/x/sync/errgroup"
)

// Repository implements repository.Repository on BadgerDB.
type Repository struct {
	db             *badger.DB
	base           *repository.Base
	appID          string
	partition      []byte
	maxConcurrency int
}

var _ repository.Repository = (*Repository)(nil)

// Open opens the store described by cfg. The repository takes ownership of
// base and releases it on Close.
func Open(cfg Config, base *repository.Base, maxConcurrency int) (*Repository, error) {
	if cfg.ApplicationID == "" {
		return nil, fmt.Errorf("application id is required")
	}
	db, err := openDB(cfg)
	if err != nil {
		return nil, err
	}
	if maxConcurrency <= 0 {
		maxConcurrency = 1
	}

	slog.Info("[KV] Store opened",
		"path", cfg.Path,
		"in_memory", cfg.InMemory,
		"application_id", cfg.ApplicationID)

	return &Repository{
		db:             db,
		base:           base,
		appID:          cfg.ApplicationID,
		partition:      partitionKey(cfg.ApplicationID),
		maxConcurrency: maxConcurrency,
	}, nil
}

// Create persists a new saved object. Without Overwrite an existing raw id is
// a Conflict.
func (r *Repository) Create(ctx context.Context, typ string, attributes savedobject.Attributes, opts savedobject.CreateOptions) (*savedobject.SavedObject, error) {
	ns, err := r.base.NormalizeNamespace(opts.Namespace)
	if err != nil {
		return nil, err
	}
	if err := r.base.ValidateBeforeCreate(typ, opts.InitialNamespaces); err != nil {
		return nil, err
	}

	var existingNamespaces []string
	if opts.ID != "" && opts.Overwrite && r.base.Registry().IsMultiNamespace(typ) {
		existing, found, err := r.lookupOnce(ctx, r.base.RawID(ns, typ, opts.ID))
		if err != nil {
			return nil, err
		}
		var current *serializer.RawDoc
		if found {
			current = &existing
		}
		if existingNamespaces, err = r.base.PreflightGetNamespaces(typ, opts.ID, ns, current); err != nil {
			return nil, err
		}
	}

	raw, err := r.base.BuildRawDoc(typ, attributes, opts, ns, existingNamespaces)
	if err != nil {
		return nil, err
	}

	var written serializer.RawDoc
	err = r.db.Update(func(txn *badger.Txn) error {
		current, found, err := r.lookup(txn, raw.ID)
		if err != nil {
			return err
		}
		var prevSeqNo int64
		switch {
		case found && !opts.Overwrite:
			return savedobject.NewConflict(typ, opts.ID)
		case found:
			if err := repository.CheckVersion(typ, opts.ID, current, opts.Version); err != nil {
				return err
			}
			prevSeqNo = current.SeqNo
		case opts.Overwrite && opts.Version != "":
			return savedobject.NewConflict(typ, opts.ID)
		}
		written, err = r.put(txn, raw, prevSeqNo)
		return err
	})
	if err != nil {
		return nil, storageError("failed to create saved object", err)
	}

	slog.Debug("[KV] Created saved object", "type", typ, "raw_id", written.ID, "seq_no", written.SeqNo)
	return r.base.SavedObjectFromRaw(written), nil
}

func (r *Repository) BulkCreate(ctx context.Context, objects []savedobject.BulkCreateObject, opts savedobject.CreateOptions) ([]savedobject.BulkResult, error) {
	return r.base.BulkCreate(ctx, objects, opts, r.Create)
}

func (r *Repository) CheckConflicts(ctx context.Context, objects []savedobject.CheckConflictsObject, opts savedobject.BaseOptions) (*savedobject.CheckConflictsResponse, error) {
	return r.base.CheckConflicts(ctx, objects, opts, r.lookupOnce)
}

// Delete removes the record without checking that it exists.
func (r *Repository) Delete(ctx context.Context, typ, id string, opts savedobject.DeleteOptions) error {
	ns, err := r.base.NormalizeNamespace(opts.Namespace)
	if err != nil {
		return err
	}
	if err := r.base.ValidateType(typ); err != nil {
		return err
	}

	rawID := r.base.RawID(ns, typ, id)
	err = r.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(r.key(rawID))
	})
	if err != nil {
		return storageError("failed to delete saved object", err)
	}
	slog.Debug("[KV] Deleted saved object", "raw_id", rawID)
	return nil
}

// DeleteByNamespace strips ns from every record of the partition, deleting
// the records left without namespaces. Records are rewritten independently.
func (r *Repository) DeleteByNamespace(ctx context.Context, ns string) (int, error) {
	if err := namespace.ValidateDeleteTarget(ns); err != nil {
		return 0, err
	}
	target := namespace.IDToString(namespace.StringToID(ns))

	var rawIDs []string
	err := r.scan(func(rec record, _ serializer.RawDoc) error {
		for _, stored := range rec.Namespaces {
			if stored == target {
				rawIDs = append(rawIDs, rec.ID)
				break
			}
		}
		return nil
	})
	if err != nil {
		return 0, storageError("failed to scan namespace", err)
	}

	var touched atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.maxConcurrency)
	for _, rawID := range rawIDs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			changed, err := r.removeNamespace(rawID, target)
			if err != nil {
				return err
			}
			if changed {
				touched.Add(1)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return int(touched.Load()), storageError("failed to delete namespace", err)
	}

	slog.Info("[KV] Deleted namespace", "namespace", target, "records", touched.Load())
	return int(touched.Load()), nil
}

func (r *Repository) removeNamespace(rawID, target string) (bool, error) {
	changed := false
	err := r.db.Update(func(txn *badger.Txn) error {
		current, found, err := r.lookup(txn, rawID)
		if err != nil || !found {
			return err
		}
		stored := r.base.PersistedNamespaces(current.Source)
		remaining := namespace.Remove(stored, target)
		if len(remaining) == len(stored) {
			return nil
		}
		changed = true
		if len(remaining) == 0 {
			return txn.Delete(r.key(rawID))
		}
		current.Source.Namespaces = remaining
		current.Source.UpdatedAt = savedobject.Now()
		_, err = r.put(txn, current, current.SeqNo)
		return err
	})
	return changed, err
}

// Find scans the partition, keeps records matching the search term and the
// requested type/namespace scopes, and returns the requested page.
func (r *Repository) Find(ctx context.Context, opts savedobject.FindOptions) (*savedobject.FindResponse, error) {
	plan, err := r.base.PlanFind(opts)
	if err != nil {
		return nil, err
	}
	if plan == nil {
		return savedobject.EmptyFindResponse(opts), nil
	}

	var hits []serializer.RawDoc
	err = r.scan(func(rec record, raw serializer.RawDoc) error {
		if !plan.MatchesSearch(raw.Source.Attributes) {
			return nil
		}
		if !plan.MatchesScope(rec.Type, rec.Namespaces) {
			return nil
		}
		hits = append(hits, raw)
		return nil
	})
	if err != nil {
		return nil, storageError("failed to find saved objects", err)
	}

	plan.SortRawDocs(hits)
	page := repository.Paginate(hits, plan.Page, plan.PerPage)

	slog.Debug("[KV] Find", "types", plan.Types(), "total", len(hits), "page", plan.Page)
	return r.base.FindResponse(plan, page, len(hits)), nil
}

func (r *Repository) BulkGet(ctx context.Context, objects []savedobject.BulkGetObject, opts savedobject.BaseOptions) ([]savedobject.BulkResult, error) {
	return r.base.BulkGet(ctx, objects, opts, r.Get)
}

// Get returns the saved object, or NotFound when it is missing or not visible
// from the caller namespace.
func (r *Repository) Get(ctx context.Context, typ, id string, opts savedobject.BaseOptions) (*savedobject.SavedObject, error) {
	ns, err := r.base.NormalizeNamespace(opts.Namespace)
	if err != nil {
		return nil, err
	}
	if err := r.base.ValidateType(typ); err != nil {
		return nil, err
	}

	raw, found, err := r.lookupOnce(ctx, r.base.RawID(ns, typ, id))
	if err != nil {
		return nil, err
	}
	if !found || !r.base.RawDocExistsInNamespace(raw, ns) {
		return nil, savedobject.NewNotFound(typ, id)
	}
	return r.base.SavedObjectFromRaw(raw), nil
}

// Update merges attributes into the stored object.
func (r *Repository) Update(ctx context.Context, typ, id string, attributes savedobject.Attributes, opts savedobject.UpdateOptions) (*savedobject.SavedObject, error) {
	ns, err := r.base.NormalizeNamespace(opts.Namespace)
	if err != nil {
		return nil, err
	}
	if err := r.base.ValidateType(typ); err != nil {
		return nil, err
	}

	var written serializer.RawDoc
	err = r.db.Update(func(txn *badger.Txn) error {
		current, found, err := r.lookup(txn, r.base.RawID(ns, typ, id))
		if err != nil {
			return err
		}
		if !found || !r.base.RawDocExistsInNamespace(current, ns) {
			return savedobject.NewNotFound(typ, id)
		}
		if err := repository.CheckVersion(typ, id, current, opts.Version); err != nil {
			return err
		}
		written, err = r.put(txn, repository.ApplyUpdate(current, attributes, opts.References), current.SeqNo)
		return err
	})
	if err != nil {
		return nil, storageError("failed to update saved object", err)
	}
	return r.base.SavedObjectFromRaw(written), nil
}

func (r *Repository) BulkUpdate(ctx context.Context, objects []savedobject.BulkUpdateObject, opts savedobject.BaseOptions) ([]savedobject.BulkResult, error) {
	return r.base.BulkUpdate(ctx, objects, opts, r.Update)
}

// AddToNamespaces grows the namespace set of a multi-namespace object.
func (r *Repository) AddToNamespaces(ctx context.Context, typ, id string, namespaces []string, opts savedobject.NamespacesOptions) (*savedobject.NamespacesResponse, error) {
	if err := r.base.ValidateNamespacesUpdate(typ, namespaces); err != nil {
		return nil, err
	}
	ns, err := r.base.NormalizeNamespace(opts.Namespace)
	if err != nil {
		return nil, err
	}

	var result []string
	err = r.db.Update(func(txn *badger.Txn) error {
		current, found, err := r.lookup(txn, r.base.RawID(ns, typ, id))
		if err != nil {
			return err
		}
		if !found {
			return savedobject.NewNotFound(typ, id)
		}
		existing, err := r.base.PreflightGetNamespaces(typ, id, ns, &current)
		if err != nil {
			return err
		}
		current.Source.Namespaces = repository.AddNamespaces(existing, namespaces)
		current.Source.UpdatedAt = savedobject.Now()
		if _, err := r.put(txn, current, current.SeqNo); err != nil {
			return err
		}
		result = current.Source.Namespaces
		return nil
	})
	if err != nil {
		return nil, storageError("failed to add namespaces", err)
	}
	return &savedobject.NamespacesResponse{Namespaces: result}, nil
}

// DeleteFromNamespaces shrinks the namespace set of a multi-namespace object.
// When the set becomes empty the object is deleted and a NotFound error with
// Removed set is returned.
func (r *Repository) DeleteFromNamespaces(ctx context.Context, typ, id string, namespaces []string, opts savedobject.NamespacesOptions) (*savedobject.NamespacesResponse, error) {
	if err := r.base.ValidateNamespacesUpdate(typ, namespaces); err != nil {
		return nil, err
	}
	ns, err := r.base.NormalizeNamespace(opts.Namespace)
	if err != nil {
		return nil, err
	}

	var (
		result  []string
		removed bool
	)
	err = r.db.Update(func(txn *badger.Txn) error {
		rawID := r.base.RawID(ns, typ, id)
		current, found, err := r.lookup(txn, rawID)
		if err != nil {
			return err
		}
		if !found {
			return savedobject.NewNotFound(typ, id)
		}
		existing, err := r.base.PreflightGetNamespaces(typ, id, ns, &current)
		if err != nil {
			return err
		}
		remaining := namespace.Remove(existing, namespaces...)
		if len(remaining) == 0 {
			removed = true
			return txn.Delete(r.key(rawID))
		}
		current.Source.Namespaces = remaining
		current.Source.UpdatedAt = savedobject.Now()
		if _, err := r.put(txn, current, current.SeqNo); err != nil {
			return err
		}
		result = remaining
		return nil
	})
	if err != nil {
		return nil, storageError("failed to delete namespaces", err)
	}
	if removed {
		notFound := savedobject.NewNotFound(typ, id)
		notFound.Removed = true
		return nil, notFound
	}
	return &savedobject.NamespacesResponse{Namespaces: result}, nil
}

// IncrementCounter adds one to counterField, creating the object with the
// counter at 1 when it does not exist.
func (r *Repository) IncrementCounter(ctx context.Context, typ, id, counterField string, opts savedobject.IncrementCounterOptions) (*savedobject.SavedObject, error) {
	if counterField == "" {
		return nil, savedobject.NewBadRequest("counterFieldName must be a non-empty string")
	}
	if id == "" {
		return nil, savedobject.NewBadRequest("id is required")
	}
	if err := r.base.ValidateType(typ); err != nil {
		return nil, err
	}
	ns, err := r.base.NormalizeNamespace(opts.Namespace)
	if err != nil {
		return nil, err
	}
	rawID := r.base.RawID(ns, typ, id)

	var written serializer.RawDoc
	err = r.db.Update(func(txn *badger.Txn) error {
		current, found, err := r.lookup(txn, rawID)
		if err != nil {
			return err
		}

		var existingNamespaces []string
		if r.base.Registry().IsMultiNamespace(typ) {
			var preflight *serializer.RawDoc
			if found {
				preflight = &current
			}
			if existingNamespaces, err = r.base.PreflightGetNamespaces(typ, id, ns, preflight); err != nil {
				return err
			}
		}

		if !found {
			raw, err := r.base.BuildRawDoc(typ, savedobject.Attributes{counterField: int64(1)}, savedobject.CreateOptions{
				ID:               id,
				Overwrite:        true,
				MigrationVersion: opts.MigrationVersion,
			}, ns, existingNamespaces)
			if err != nil {
				return err
			}
			written, err = r.put(txn, raw, 0)
			return err
		}

		attrs, err := repository.IncrementField(current.Source.Attributes, counterField)
		if err != nil {
			return err
		}
		current.Source.Attributes = attrs
		current.Source.UpdatedAt = savedobject.Now()
		written, err = r.put(txn, current, current.SeqNo)
		return err
	})
	if err != nil {
		return nil, storageError("failed to increment counter", err)
	}
	return r.base.SavedObjectFromRaw(written), nil
}

// Close releases the worker pool and closes the database.
func (r *Repository) Close() error {
	r.base.Release()
	if err := r.db.Close(); err != nil {
		return fmt.Errorf("failed to close badger database: %w", err)
	}
	slog.Info("[KV] Store closed gracefully")
	return nil
}

func (r *Repository) lookupOnce(_ context.Context, rawID string) (serializer.RawDoc, bool, error) {
	var (
		raw   serializer.RawDoc
		found bool
	)
	err := r.db.View(func(txn *badger.Txn) error {
		var err error
		raw, found, err = r.lookup(txn, rawID)
		return err
	})
	if err != nil {
		return serializer.RawDoc{}, false, storageError("failed to read saved object", err)
	}
	return raw, found, nil
}

// Ping reports whether the store is still open.
func (r *Repository) Ping(_ context.Context) error {
	if r.db.IsClosed() {
		return fmt.Errorf("badger database is closed")
	}
	return nil
}
