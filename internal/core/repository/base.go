package repository

import (
	"fmt"
	"log/slog"
	"runtime"
	"slices"

	"github.com/aevon-lab/metastore/internal/core/migration"
	"github.com/aevon-lab/metastore/internal/core/namespace"
	"github.com/aevon-lab/metastore/internal/core/savedobject"
	"github.com/aevon-lab/metastore/internal/core/serializer"
	"github.com/aevon-lab/metastore/internal/core/typeregistry"
	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"
)

// Options configures the behaviour shared by every backend.
type Options struct {
	Registry     *typeregistry.Registry
	Migrator     migration.Migrator
	AllowedTypes []string
	// MaxConcurrency bounds per-item fan-out in bulk operations.
	// Zero means runtime.NumCPU().
	MaxConcurrency int
}

// Base holds the collaborators and helper algorithms every backend reuses:
// allow-listing, namespace preflight, raw document construction and decoding.
type Base struct {
	registry     *typeregistry.Registry
	serializer   *serializer.Serializer
	migrator     migration.Migrator
	allowedTypes []string
	pool         *ants.Pool
}

// NewBase validates opts and creates the bulk worker pool.
func NewBase(opts Options) (*Base, error) {
	if opts.Registry == nil {
		return nil, fmt.Errorf("type registry is required")
	}
	migrator := opts.Migrator
	if migrator == nil {
		migrator = migration.NoopMigrator{}
	}

	size := opts.MaxConcurrency
	if size <= 0 {
		size = runtime.NumCPU()
	}
	pool, err := ants.NewPool(size)
	if err != nil {
		return nil, fmt.Errorf("failed to create bulk worker pool: %w", err)
	}

	slog.Debug("[Repository] Base initialized",
		"allowed_types", opts.AllowedTypes,
		"max_concurrency", size)

	return &Base{
		registry:     opts.Registry,
		serializer:   serializer.New(opts.Registry),
		migrator:     migrator,
		allowedTypes: slices.Clone(opts.AllowedTypes),
		pool:         pool,
	}, nil
}

// Release stops the bulk worker pool.
func (b *Base) Release() {
	b.pool.Release()
}

func (b *Base) Registry() *typeregistry.Registry    { return b.registry }
func (b *Base) Serializer() *serializer.Serializer { return b.serializer }

// AllowedTypes returns a copy of the allow-list.
func (b *Base) AllowedTypes() []string {
	return slices.Clone(b.allowedTypes)
}

// NormalizeNamespace converts an input namespace to its internal id.
func (b *Base) NormalizeNamespace(ns string) (string, error) {
	return namespace.Normalize(ns)
}

// ValidateType returns an UnsupportedType error when typ is not allow-listed.
func (b *Base) ValidateType(typ string) error {
	if !slices.Contains(b.allowedTypes, typ) {
		return savedobject.NewUnsupportedType(typ)
	}
	return nil
}

// ValidateBeforeCreate checks initialNamespaces against the type capabilities
// and then the allow-list.
func (b *Base) ValidateBeforeCreate(typ string, initialNamespaces []string) error {
	if initialNamespaces != nil {
		if !b.registry.IsMultiNamespace(typ) {
			return savedobject.NewBadRequest(`"options.initialNamespaces" can only be used on multi-namespace types`)
		}
		if len(initialNamespaces) == 0 {
			return savedobject.NewBadRequest(`"options.initialNamespaces" must be a non-empty array of strings`)
		}
	}
	return b.ValidateType(typ)
}

// RawID returns the composite id of (namespace, typ, id).
func (b *Base) RawID(namespaceID, typ, id string) string {
	return b.serializer.GenerateRawID(namespaceID, typ, id)
}

// BuildRawDoc constructs the raw document written by create paths. The
// document goes through the migrator before encoding. The returned document
// carries no version; backends assign seq_no when they persist it.
//
// existingNamespaces is the preflight result for multi-namespace overwrites.
func (b *Base) BuildRawDoc(
	typ string,
	attributes savedobject.Attributes,
	opts savedobject.CreateOptions,
	namespaceID string,
	existingNamespaces []string,
) (serializer.RawDoc, error) {
	if err := b.ValidateBeforeCreate(typ, opts.InitialNamespaces); err != nil {
		return serializer.RawDoc{}, err
	}

	doc := savedobject.SanitizedDoc{
		ID:               opts.ID,
		Type:             typ,
		OriginID:         opts.OriginID,
		UpdatedAt:        savedobject.Now(),
		Attributes:       attributes,
		References:       slices.Clone(opts.References),
		MigrationVersion: opts.MigrationVersion,
	}
	if doc.Attributes == nil {
		doc.Attributes = savedobject.Attributes{}
	}
	if doc.References == nil {
		doc.References = []savedobject.Reference{}
	}

	switch {
	case b.registry.IsSingleNamespace(typ):
		doc.Namespace = namespaceID
	case b.registry.IsMultiNamespace(typ):
		switch {
		case opts.InitialNamespaces != nil:
			doc.Namespaces = namespace.Unique(opts.InitialNamespaces)
		case opts.ID != "" && opts.Overwrite && existingNamespaces != nil:
			doc.Namespaces = slices.Clone(existingNamespaces)
		default:
			doc.Namespaces = []string{namespace.IDToString(namespaceID)}
		}
	}

	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}

	migrated, err := b.migrator.MigrateDocument(doc)
	if err != nil {
		return serializer.RawDoc{}, err
	}
	return b.serializer.SavedObjectToRaw(migrated), nil
}

// RawDocExistsInNamespace reports whether raw is visible from namespaceID.
// Only multi-namespace documents need the check; for the other types the raw
// id already encodes the namespace.
func (b *Base) RawDocExistsInNamespace(raw serializer.RawDoc, namespaceID string) bool {
	if !b.registry.IsMultiNamespace(raw.Source.Type) {
		return true
	}
	return namespace.Includes(raw.Source.Namespaces, namespaceID)
}

// PreflightGetNamespaces returns the namespaces an existing multi-namespace
// object includes, or the namespaces a new object would get when existing is
// nil. It fails with Conflict when the object exists outside namespaceID.
func (b *Base) PreflightGetNamespaces(typ, id, namespaceID string, existing *serializer.RawDoc) ([]string, error) {
	if !b.registry.IsMultiNamespace(typ) {
		return nil, savedobject.NewBadRequest("Cannot make preflight get request for non-multi-namespace type '%s'.", typ)
	}
	if existing == nil {
		return []string{namespace.IDToString(namespaceID)}, nil
	}
	if !b.RawDocExistsInNamespace(*existing, namespaceID) {
		return nil, savedobject.NewConflict(typ, id)
	}
	return b.storedNamespaces(existing.Source, namespaceID), nil
}

func (b *Base) storedNamespaces(src serializer.RawDocSource, namespaceID string) []string {
	if src.Namespaces != nil {
		return slices.Clone(src.Namespaces)
	}
	return []string{namespace.IDToString(namespaceID)}
}

// SavedObjectFromRaw decodes raw into the public shape. Single-namespace
// objects report their namespace as a one-element Namespaces slice.
func (b *Base) SavedObjectFromRaw(raw serializer.RawDoc) *savedobject.SavedObject {
	doc := b.serializer.RawToSavedObject(raw)
	obj := &savedobject.SavedObject{
		ID:               doc.ID,
		Type:             doc.Type,
		Namespaces:       doc.Namespaces,
		OriginID:         doc.OriginID,
		UpdatedAt:        doc.UpdatedAt,
		Version:          doc.Version,
		Attributes:       doc.Attributes,
		References:       doc.References,
		MigrationVersion: doc.MigrationVersion,
	}
	if obj.Attributes == nil {
		obj.Attributes = savedobject.Attributes{}
	}
	if obj.Namespaces == nil && !b.registry.IsNamespaceAgnostic(doc.Type) {
		obj.Namespaces = []string{namespace.IDToString(doc.Namespace)}
	}
	return obj
}

// PersistedNamespaces is the namespaces column/field stored next to a raw
// document: the set for multi-namespace types, the single namespace for
// single-namespace types and empty for namespace-agnostic types.
func (b *Base) PersistedNamespaces(src serializer.RawDocSource) []string {
	switch {
	case b.registry.IsNamespaceAgnostic(src.Type):
		return []string{}
	case b.registry.IsMultiNamespace(src.Type):
		if src.Namespaces == nil {
			return []string{}
		}
		return slices.Clone(src.Namespaces)
	default:
		return []string{namespace.IDToString(src.Namespace)}
	}
}

// ValidateNamespacesUpdate checks the arguments of AddToNamespaces and
// DeleteFromNamespaces.
func (b *Base) ValidateNamespacesUpdate(typ string, namespaces []string) error {
	if err := b.ValidateType(typ); err != nil {
		return err
	}
	if !b.registry.IsMultiNamespace(typ) {
		return savedobject.NewBadRequest("%s doesn't support multiple namespaces", typ)
	}
	if len(namespaces) == 0 {
		return savedobject.NewBadRequest("namespaces must be a non-empty array of strings")
	}
	return nil
}
