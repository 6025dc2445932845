// Package config loads Charon's AppConfig from layered sources: built-in
// defaults, a flat TOML configuration file, a bbolt key/value override
// store named by --db, and environment variables, in that precedence
// order (each layer overrides the one before it).
package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/styxlabs/charon/internal/dns/forwarder"
)

// AppConfig holds every runtime setting the CLI and the Engine consume.
type AppConfig struct {
	Env       string `koanf:"env" validate:"required,oneof=dev prod"`
	LogLevel  string `koanf:"log_level" validate:"required,oneof=debug info warn error"`
	LogFormat string `koanf:"log_format" validate:"required,oneof=json console"`

	ListenPort        int    `koanf:"listen_port" validate:"required,gte=1,lt=65536"`
	ListenAddr        string `koanf:"listen_addr" validate:"required"`
	Upstream          string `koanf:"upstream" validate:"required,oneof=quad9 cloudflare"`
	UpstreamTimeoutMS int    `koanf:"upstream_timeout_ms" validate:"required,gte=1"`
	ZoneFile          string `koanf:"zone_file"`
	ControlSocket     string `koanf:"control_socket" validate:"required"`
	CacheTTL          int    `koanf:"cache_ttl" validate:"gte=0"`
	MaxCacheEntries   int    `koanf:"max_cache_entries" validate:"gte=0"`
	Verbose           bool   `koanf:"verbose"`

	BlocklistDir      string `koanf:"blocklist_dir"`
	BlocklistDB       string `koanf:"blocklist_db"`
	BlocklistStrategy string `koanf:"blocklist_strategy" validate:"omitempty,oneof=nxdomain refused"`
}

// Defaults mirrors the teacher's DEFAULT_APP_CONFIG pattern: a value every
// field falls back to before any layer is applied.
var Defaults = AppConfig{
	Env:       "prod",
	LogLevel:  "info",
	LogFormat: "json",

	ListenPort:        53,
	ListenAddr:        "0.0.0.0",
	Upstream:          "cloudflare",
	UpstreamTimeoutMS: 3000,
	ControlSocket:     "/run/charon.sock",
	CacheTTL:          300,
	MaxCacheEntries:   4096,
	Verbose:           false,

	BlocklistStrategy: "nxdomain",
}

// envPrefix matches the environment-variable override layer described in
// the external interfaces design: CHARON_LISTEN_PORT, CHARON_UPSTREAM, etc.
const envPrefix = "CHARON_"

var envLoader = func(k *koanf.Koanf) error {
	return k.Load(env.Provider(".", env.Opt{
		Prefix: envPrefix,
		TransformFunc: func(key, value string) (string, any) {
			return strings.ToLower(strings.TrimPrefix(key, envPrefix)), strings.TrimSpace(value)
		},
	}), nil)
}

var defaultLoader = func(k *koanf.Koanf) error {
	return k.Load(structs.Provider(Defaults, "koanf"), nil)
}

// Load builds an AppConfig from defaults, an optional flat TOML file at
// configPath (skipped if empty), an optional bbolt override store at
// dbPath (skipped if empty), and CHARON_ environment variables, then
// validates the result.
func Load(configPath, dbPath string) (*AppConfig, error) {
	k := koanf.New(".")

	if err := defaultLoader(k); err != nil {
		return nil, fmt.Errorf("config: loading defaults: %w", err)
	}

	if configPath != "" {
		if err := k.Load(file.Provider(configPath), toml.Parser()); err != nil {
			return nil, fmt.Errorf("config: loading file %s: %w", configPath, err)
		}
	}

	if dbPath != "" {
		overrides, err := LoadSettingsDB(dbPath)
		if err != nil {
			return nil, fmt.Errorf("config: loading --db overrides %s: %w", dbPath, err)
		}
		for key, raw := range overrides {
			val, err := coerce(key, raw)
			if err != nil {
				return nil, fmt.Errorf("config: applying --db override for %s: %w", key, err)
			}
			k.Set(key, val)
		}
	}

	if err := envLoader(k); err != nil {
		return nil, fmt.Errorf("config: loading environment: %w", err)
	}

	var cfg AppConfig
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshalling: %w", err)
	}

	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("config: validation failed: %w", err)
	}

	return &cfg, nil
}

// UpstreamAddrs resolves the configured upstream preset name into its
// primary/secondary address pair.
func (c *AppConfig) UpstreamAddrs() (primary, secondary string, err error) {
	primary, secondary, ok := forwarder.Preset(c.Upstream)
	if !ok {
		return "", "", fmt.Errorf("config: unknown upstream preset %q", c.Upstream)
	}
	return primary, secondary, nil
}

// knownIntKeys lists the AppConfig keys whose bbolt-stored override value
// must be parsed as an integer rather than left as a string, since bbolt
// values are always stored as raw bytes.
var knownIntKeys = map[string]bool{
	"listen_port":         true,
	"upstream_timeout_ms": true,
	"cache_ttl":           true,
	"max_cache_entries":   true,
}

var knownBoolKeys = map[string]bool{
	"verbose": true,
}

// coerce converts a raw string value read from the settings database into
// the Go type Unmarshal expects for key, since koanf.Set bypasses the
// string-to-type coercion the env and file providers perform automatically.
func coerce(key, value string) (any, error) {
	switch {
	case knownIntKeys[key]:
		n, err := strconv.Atoi(value)
		if err != nil {
			return nil, fmt.Errorf("expected integer for %s, got %q", key, value)
		}
		return n, nil
	case knownBoolKeys[key]:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return nil, fmt.Errorf("expected boolean for %s, got %q", key, value)
		}
		return b, nil
	default:
		return value, nil
	}
}
