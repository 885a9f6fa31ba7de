package typeregistry

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// rawType is the on-disk YAML shape of a type definition.
type rawType struct {
	Name          string                   `yaml:"name"`
	Hidden        bool                     `yaml:"hidden"`
	NamespaceType string                   `yaml:"namespace_type"`
	Migrations    map[string]MigrationSpec `yaml:"migrations"`
}

// LoadDirectory reads every *.yaml / *.yml file in dir as one type definition and
// registers it. A missing directory yields an empty registry.
func LoadDirectory(dir string) (*Registry, error) {
	r, _ := New()

	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return r, nil
	}
	if err != nil {
		return nil, fmt.Errorf("type definition dir: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("type definition path %q is not a directory", dir)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading type definition dir: %w", err)
	}

	for _, e := range entries {
		if e.IsDir() || (!strings.HasSuffix(e.Name(), ".yaml") && !strings.HasSuffix(e.Name(), ".yml")) {
			continue
		}

		path := filepath.Join(dir, e.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading type file %s: %w", path, err)
		}

		t, ok, err := parseType(data)
		if err != nil {
			return nil, fmt.Errorf("parsing type file %s: %w", path, err)
		}
		if !ok {
			continue // empty / comment-only file
		}
		if err := r.Register(t); err != nil {
			return nil, fmt.Errorf("type file %s: %w", path, err)
		}
	}
	return r, nil
}

func parseType(data []byte) (Type, bool, error) {
	var raw rawType
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return Type{}, false, err
	}
	if raw.Name == "" {
		return Type{}, false, nil
	}
	return Type{
		Name:          raw.Name,
		Hidden:        raw.Hidden,
		NamespaceType: NamespaceType(raw.NamespaceType),
		Migrations:    raw.Migrations,
	}, true, nil
}
