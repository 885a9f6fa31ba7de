// Package typeregistry holds the saved object types known to the process and
// their namespace capabilities.
package typeregistry

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// NamespaceType describes how a type is scoped to namespaces.
type NamespaceType string

const (
	// NamespaceSingle types live in exactly one namespace, encoded in the raw id.
	NamespaceSingle NamespaceType = "single"
	// NamespaceMultiple types carry a namespace set that can grow and shrink.
	NamespaceMultiple NamespaceType = "multiple"
	// NamespaceAgnostic types are global and ignore namespaces.
	NamespaceAgnostic NamespaceType = "agnostic"
)

// Valid reports whether t is a known namespace type.
func (t NamespaceType) Valid() bool {
	switch t {
	case NamespaceSingle, NamespaceMultiple, NamespaceAgnostic:
		return true
	}
	return false
}

// MigrationSpec is a declarative attribute transform applied when a document is
// older than the version it is registered under.
type MigrationSpec struct {
	Rename   map[string]string `yaml:"rename"`
	Defaults map[string]any    `yaml:"defaults"`
	Remove   []string          `yaml:"remove"`
}

// Type is a registered saved object type.
type Type struct {
	Name          string
	Hidden        bool
	NamespaceType NamespaceType
	// Migrations are keyed by semantic version ("1.2.0").
	Migrations map[string]MigrationSpec
}

var ErrDuplicateType = errors.New("type already registered")

// Registry is the set of known types. Safe for concurrent use.
type Registry struct {
	mu    sync.RWMutex
	types map[string]Type
}

// New creates a registry pre-populated with types.
func New(types ...Type) (*Registry, error) {
	r := &Registry{types: make(map[string]Type)}
	for _, t := range types {
		if err := r.Register(t); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register adds a type. Types without a namespace type default to single-namespace.
func (r *Registry) Register(t Type) error {
	if strings.TrimSpace(t.Name) == "" {
		return errors.New("type name is required")
	}
	if t.NamespaceType == "" {
		t.NamespaceType = NamespaceSingle
	}
	if !t.NamespaceType.Valid() {
		return fmt.Errorf("type %q: unsupported namespace_type %q", t.Name, t.NamespaceType)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.types[t.Name]; exists {
		return fmt.Errorf("type %q: %w", t.Name, ErrDuplicateType)
	}
	r.types[t.Name] = t
	return nil
}

// GetType returns the type registered under name.
func (r *Registry) GetType(name string) (Type, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.types[name]
	return t, ok
}

// GetAllTypes returns every registered type sorted by name.
func (r *Registry) GetAllTypes() []Type {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Type, 0, len(r.types))
	for _, t := range r.types {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (r *Registry) IsHidden(name string) bool {
	t, ok := r.GetType(name)
	return ok && t.Hidden
}

// IsSingleNamespace is true for registered single-namespace types and for unknown types.
func (r *Registry) IsSingleNamespace(name string) bool {
	t, ok := r.GetType(name)
	return !ok || t.NamespaceType == NamespaceSingle
}

func (r *Registry) IsMultiNamespace(name string) bool {
	t, ok := r.GetType(name)
	return ok && t.NamespaceType == NamespaceMultiple
}

func (r *Registry) IsNamespaceAgnostic(name string) bool {
	t, ok := r.GetType(name)
	return ok && t.NamespaceType == NamespaceAgnostic
}

// AllowedTypes returns the visible types plus the requested hidden ones.
func AllowedTypes(r *Registry, includedHiddenTypes []string) ([]string, error) {
	var visible []string
	for _, t := range r.GetAllTypes() {
		if !t.Hidden {
			visible = append(visible, t.Name)
		}
	}

	var missing []string
	for _, name := range includedHiddenTypes {
		if _, ok := r.GetType(name); !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("Missing mappings for saved objects types: '%s'", strings.Join(missing, ", "))
	}

	allowed := append([]string{}, visible...)
	for _, name := range includedHiddenTypes {
		if !contains(allowed, name) {
			allowed = append(allowed, name)
		}
	}
	return allowed, nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
