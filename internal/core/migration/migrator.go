// Package migration upgrades saved object documents to the latest version
// declared for their type before they are written.
package migration

import (
	"fmt"
	"maps"
	"sort"
	"strings"

	"github.com/aevon-lab/metastore/internal/core/savedobject"
	"github.com/aevon-lab/metastore/internal/core/typeregistry"
	"golang.org/x/mod/semver"
)

// Migrator transforms a document into the shape expected by the current version
// of its type. Implementations must not mutate the input.
type Migrator interface {
	MigrateDocument(doc savedobject.SanitizedDoc) (savedobject.SanitizedDoc, error)
}

// NoopMigrator returns documents unchanged.
type NoopMigrator struct{}

func (NoopMigrator) MigrateDocument(doc savedobject.SanitizedDoc) (savedobject.SanitizedDoc, error) {
	return doc, nil
}

type step struct {
	version string // canonical, "v" prefixed
	spec    typeregistry.MigrationSpec
}

// VersionedMigrator applies the declarative migrations registered per type in
// ascending semantic version order.
type VersionedMigrator struct {
	steps map[string][]step
}

// NewVersioned builds a migrator from every type in the registry.
func NewVersioned(registry *typeregistry.Registry) (*VersionedMigrator, error) {
	m := &VersionedMigrator{steps: make(map[string][]step)}
	for _, t := range registry.GetAllTypes() {
		if len(t.Migrations) == 0 {
			continue
		}
		steps := make([]step, 0, len(t.Migrations))
		for version, spec := range t.Migrations {
			v := canonical(version)
			if v == "" {
				return nil, fmt.Errorf("type %q: invalid migration version %q", t.Name, version)
			}
			steps = append(steps, step{version: v, spec: spec})
		}
		sort.Slice(steps, func(i, j int) bool {
			return semver.Compare(steps[i].version, steps[j].version) < 0
		})
		m.steps[t.Name] = steps
	}
	return m, nil
}

// LatestVersion returns the newest migration version declared for typ, or "".
func (m *VersionedMigrator) LatestVersion(typ string) string {
	steps := m.steps[typ]
	if len(steps) == 0 {
		return ""
	}
	return strings.TrimPrefix(steps[len(steps)-1].version, "v")
}

// MigrateDocument applies every step newer than doc.MigrationVersion[doc.Type]
// and stamps the latest version.
func (m *VersionedMigrator) MigrateDocument(doc savedobject.SanitizedDoc) (savedobject.SanitizedDoc, error) {
	steps := m.steps[doc.Type]
	if len(steps) == 0 {
		return doc, nil
	}

	current := ""
	if raw, ok := doc.MigrationVersion[doc.Type]; ok && raw != "" {
		current = canonical(raw)
		if current == "" {
			return doc, savedobject.NewBadRequest("Invalid migrationVersion [%s] for type %s", raw, doc.Type)
		}
	}

	latest := steps[len(steps)-1].version
	if current != "" && semver.Compare(current, latest) > 0 {
		return doc, savedobject.NewBadRequest(
			"Document %q has property %q which belongs to a more recent version [%s]. The last known version is [%s]",
			doc.ID, doc.Type, strings.TrimPrefix(current, "v"), strings.TrimPrefix(latest, "v"))
	}

	out := doc
	out.Attributes = maps.Clone(doc.Attributes)
	if out.Attributes == nil {
		out.Attributes = savedobject.Attributes{}
	}
	for _, s := range steps {
		if current != "" && semver.Compare(s.version, current) <= 0 {
			continue
		}
		apply(out.Attributes, s.spec)
	}

	out.MigrationVersion = maps.Clone(doc.MigrationVersion)
	if out.MigrationVersion == nil {
		out.MigrationVersion = make(map[string]string, 1)
	}
	out.MigrationVersion[doc.Type] = strings.TrimPrefix(latest, "v")
	return out, nil
}

func apply(attrs savedobject.Attributes, spec typeregistry.MigrationSpec) {
	for from, to := range spec.Rename {
		v, ok := attrs[from]
		if !ok {
			continue
		}
		if _, taken := attrs[to]; !taken {
			attrs[to] = v
		}
		delete(attrs, from)
	}
	for k, v := range spec.Defaults {
		if _, ok := attrs[k]; !ok {
			attrs[k] = v
		}
	}
	for _, k := range spec.Remove {
		delete(attrs, k)
	}
}

func canonical(version string) string {
	if !strings.HasPrefix(version, "v") {
		version = "v" + version
	}
	if !semver.IsValid(version) {
		return ""
	}
	return semver.Canonical(version)
}
