package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/aevon-lab/metastore/internal/core/typeregistry"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix is the prefix of environment overrides. "__" separates nesting
// levels: METASTORE_RELATIONAL__DSN sets relational.dsn.
const EnvPrefix = "METASTORE_"

// Storage backend kinds.
const (
	StorageKV         = "kv"
	StorageRelational = "relational"
)

// Config represents the top-level application config plus the resolved type registry.
type Config struct {
	Server     ServerConfig     `koanf:"server"`
	Storage    StorageConfig    `koanf:"storage"`
	Relational RelationalConfig `koanf:"relational"`
	KV         KVConfig         `koanf:"kv"`
	Types      TypesConfig      `koanf:"types"`

	// Registry is populated by Load from Types.ConfigDir.
	Registry *typeregistry.Registry `koanf:"-"`
}

type ServerConfig struct {
	Port          int    `koanf:"port"`
	Host          string `koanf:"host"`
	MaxBodySizeMB int    `koanf:"max_body_size_mb"`
	Mode          string `koanf:"mode"` // debug | release
}

// StorageConfig selects the backend shared by every request.
type StorageConfig struct {
	Kind           string `koanf:"kind"` // kv | relational
	ApplicationID  string `koanf:"application_id"`
	MaxConcurrency int    `koanf:"max_concurrency"`
}

// RelationalConfig configures the PostgreSQL backend. DSN wins over the
// discrete connection fields when both are set.
type RelationalConfig struct {
	DSN             string `koanf:"dsn"`
	Host            string `koanf:"host"`
	Port            int    `koanf:"port"`
	User            string `koanf:"user"`
	Password        string `koanf:"password"`
	Database        string `koanf:"database"`
	SSLMode         string `koanf:"sslmode"`
	MaxOpenConns    int    `koanf:"max_open_conns"`
	MaxIdleConns    int    `koanf:"max_idle_conns"`
	IdleTimeout     string `koanf:"idle_timeout"`      // parsed and validated on startup
	ConnMaxLifetime string `koanf:"conn_max_lifetime"` // parsed and validated on startup
	AutoMigrate     bool   `koanf:"auto_migrate"`
}

type KVConfig struct {
	Path     string `koanf:"path"`
	InMemory bool   `koanf:"in_memory"`
}

type TypesConfig struct {
	ConfigDir      string   `koanf:"config_dir"`
	IncludedHidden []string `koanf:"included_hidden"`
}

// ConnectionString returns the DSN, building one from the discrete fields
// when no DSN is configured.
func (c RelationalConfig) ConnectionString() string {
	if strings.TrimSpace(c.DSN) != "" {
		return c.DSN
	}
	u := url.URL{
		Scheme: "postgres",
		Host:   c.Host + ":" + strconv.Itoa(c.Port),
		Path:   "/" + c.Database,
	}
	if c.User != "" {
		u.User = url.UserPassword(c.User, c.Password)
	}
	if c.SSLMode != "" {
		u.RawQuery = url.Values{"sslmode": []string{c.SSLMode}}.Encode()
	}
	return u.String()
}

func (c RelationalConfig) IdleTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.IdleTimeout)
	return d
}

func (c RelationalConfig) ConnMaxLifetimeDuration() time.Duration {
	d, _ := time.ParseDuration(c.ConnMaxLifetime)
	return d
}

func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server.port %d (must be 1-65535)", c.Server.Port)
	}
	if strings.TrimSpace(c.Server.Host) == "" {
		return fmt.Errorf("server.host is required")
	}
	if c.Server.MaxBodySizeMB <= 0 {
		return fmt.Errorf("server.max_body_size_mb must be > 0")
	}
	if c.Server.Mode != "debug" && c.Server.Mode != "release" {
		return fmt.Errorf("invalid server.mode %q (must be debug or release)", c.Server.Mode)
	}

	if strings.TrimSpace(c.Storage.ApplicationID) == "" {
		return fmt.Errorf("storage.application_id is required")
	}
	if c.Storage.MaxConcurrency <= 0 {
		return fmt.Errorf("storage.max_concurrency must be > 0")
	}

	switch c.Storage.Kind {
	case StorageKV:
		if !c.KV.InMemory && strings.TrimSpace(c.KV.Path) == "" {
			return fmt.Errorf("kv.path is required unless kv.in_memory is set")
		}
	case StorageRelational:
		if err := c.Relational.validate(); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unsupported storage.kind %q (must be %s or %s)", c.Storage.Kind, StorageKV, StorageRelational)
	}

	if strings.TrimSpace(c.Types.ConfigDir) == "" {
		return fmt.Errorf("types.config_dir is required")
	}
	if _, err := os.Stat(c.Types.ConfigDir); err != nil {
		return fmt.Errorf("types.config_dir %q is not accessible: %w", c.Types.ConfigDir, err)
	}

	return nil
}

func (c RelationalConfig) validate() error {
	if strings.TrimSpace(c.DSN) == "" {
		if strings.TrimSpace(c.Host) == "" || strings.TrimSpace(c.Database) == "" {
			return fmt.Errorf("relational.dsn or relational.host and relational.database are required")
		}
		if c.Port <= 0 || c.Port > 65535 {
			return fmt.Errorf("invalid relational.port %d (must be 1-65535)", c.Port)
		}
	}
	if c.MaxOpenConns <= 0 {
		return fmt.Errorf("relational.max_open_conns must be > 0")
	}
	if c.MaxIdleConns < 0 {
		return fmt.Errorf("relational.max_idle_conns must be >= 0")
	}
	for key, value := range map[string]string{
		"relational.idle_timeout":      c.IdleTimeout,
		"relational.conn_max_lifetime": c.ConnMaxLifetime,
	} {
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", key, value, err)
		}
		if d < 0 {
			return fmt.Errorf("%s must be >= 0", key)
		}
	}
	return nil
}

// Load parses config from file + env, validates it, then loads the saved
// object type definitions.
func Load(configPath string) (*Config, error) {
	k := koanf.New(".")

	defaults := map[string]interface{}{
		"server.port":                  8080,
		"server.host":                  "0.0.0.0",
		"server.max_body_size_mb":      1,
		"server.mode":                  "release",
		"storage.kind":                 StorageKV,
		"storage.application_id":       "metastore",
		"storage.max_concurrency":      16,
		"relational.host":              "localhost",
		"relational.port":              5432,
		"relational.database":          "metastore",
		"relational.sslmode":           "disable",
		"relational.max_open_conns":    25,
		"relational.max_idle_conns":    25,
		"relational.idle_timeout":      "10s",
		"relational.conn_max_lifetime": "5m",
		"relational.auto_migrate":      true,
		"kv.path":                      "./data/kv",
		"kv.in_memory":                 false,
		"types.config_dir":             "./config/types",
	}
	for key, value := range defaults {
		k.Set(key, value)
	}

	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.Replace(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "__", ".", -1)
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	registry, err := typeregistry.LoadDirectory(cfg.Types.ConfigDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load saved object types: %w", err)
	}
	if len(registry.GetAllTypes()) == 0 {
		return nil, fmt.Errorf("no saved object types found in %q", cfg.Types.ConfigDir)
	}
	if _, err := typeregistry.AllowedTypes(registry, cfg.Types.IncludedHidden); err != nil {
		return nil, fmt.Errorf("invalid types.included_hidden: %w", err)
	}
	cfg.Registry = registry

	return &cfg, nil
}
