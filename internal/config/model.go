// internal/config/model.go
//
// Typed configuration model for the CRM service.
//
// Context
// -------
// These structs define the shape of the configuration tree that
// `internal/config/loader.go` builds from three overlay layers:
//
//   • optional `.env`                       – dotenv values,
//   • `conf/crm.yaml`                       – primary static file,
//   • `CRM_`-prefixed environment overrides – highest precedence.
//
// Any value whose string begins with the prefix `vault:` is resolved
// through the Vault client *before* unmarshalling, so the model never
// stores Vault URIs, only plain strings.
//
// Notes
// -----
//   • Struct tags use `koanf:"…"`, not `yaml:"…"`.
//   • The `Paths` block is filled at runtime; YAML must not try to set it.
//   • Oxford commas, two spaces after periods.

package config

import "time"

//
// HTTP section
//

// HTTP holds web-server tunables.
type HTTP struct {
	ListenAddr string `koanf:"listen_addr" validate:"required,hostname_port"`
	ForceHTTPS bool   `koanf:"force_https"`
}

//
// Database section
//

// Database holds the DSN template and its secret.
//
// The DSN stays in YAML so operators can tweak host, port, or flags without
// touching Vault.  The password is usually a `vault:` reference and is
// injected into the DSN at connect time.
type Database struct {
	DSN      string `koanf:"dsn"      validate:"required"`
	Password string `koanf:"password"`
	MaxOpen  int    `koanf:"max_open" validate:"gte=0"`
	MaxIdle  int    `koanf:"max_idle" validate:"gte=0"`
	Migrate  bool   `koanf:"migrate"`
}

// CSRF holds the base64url HMAC key for form tokens.  Empty means an
// ephemeral per-process key.
type CSRF struct {
	Key string `koanf:"key"`
}

// Log controls the file logger.
type Log struct {
	Dir   string `koanf:"dir"`
	Level string `koanf:"level" validate:"omitempty,oneof=debug info warn error"`
}

// Lookup sizes the municipality cache.
type Lookup struct {
	CacheSize int           `koanf:"cache_size" validate:"gte=1"`
	TTL       time.Duration `koanf:"ttl"        validate:"gte=0"`
}

//
// Paths section (runtime only)
//

// Paths is resolved at runtime, never set in YAML or env.
type Paths struct {
	Root string // CRM_ROOT or discovered parent
}

//
// Root aggregate
//

// Config is the immutable aggregate returned by Load() and cached in an
// atomic.Pointer for lock-free reads throughout the app lifetime.
type Config struct {
	HTTP     HTTP     `koanf:"http"`
	Database Database `koanf:"database"`
	CSRF     CSRF     `koanf:"csrf"`
	Log      Log      `koanf:"log"`
	Lookup   Lookup   `koanf:"lookup"`
	Paths    Paths    `koanf:"-"`
}

// applyDefaults fills zero values the YAML may omit.
func applyDefaults(c *Config) {
	if c.HTTP.ListenAddr == "" {
		c.HTTP.ListenAddr = ":8080"
	}
	if c.Database.MaxOpen == 0 {
		c.Database.MaxOpen = 10
	}
	if c.Database.MaxIdle == 0 {
		c.Database.MaxIdle = 5
	}
	if c.Log.Dir == "" {
		c.Log.Dir = "logs"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Lookup.CacheSize == 0 {
		c.Lookup.CacheSize = 256
	}
	if c.Lookup.TTL == 0 {
		c.Lookup.TTL = 5 * time.Minute
	}
}
