package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config represents the top-level application config.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Handlers HandlersConfig `koanf:"handlers"`
	Dispatch DispatchConfig `koanf:"dispatch"`
	Log      LogConfig      `koanf:"log"`
}

type ServerConfig struct {
	Port          int    `koanf:"port"`
	Host          string `koanf:"host"`
	MaxBodySizeMB int    `koanf:"max_body_size_mb"`
	Mode          string `koanf:"mode"` // debug | release

	// Optional basic auth for the webhook routes; both empty disables it.
	WebhooksUser     string `koanf:"webhooks_user"`
	WebhooksPassword string `koanf:"webhooks_password"`
}

type HandlersConfig struct {
	Dir           string        `koanf:"dir"`
	NamedSubdir   string        `koanf:"named_subdir"`
	IgnorePrefix  string        `koanf:"ignore_prefix"`
	Watch         bool          `koanf:"watch"`
	WatchDebounce time.Duration `koanf:"watch_debounce"`
}

type DispatchConfig struct {
	InternalTimeout  time.Duration `koanf:"internal_timeout"` // 0 = unbounded
	ExternalTimeout  time.Duration `koanf:"external_timeout"` // 0 = never kill
	MaxExternalProcs int64         `koanf:"max_external_procs"`
}

type LogConfig struct {
	Level   string `koanf:"level"`  // debug | info | warn | error
	Format  string `koanf:"format"` // text | json
	File    string `koanf:"file"`
	MaxMegs int    `koanf:"max_megs"`
	Keep    int    `koanf:"keep"`
}

// String keeps the webhook password out of logs.
func (c ServerConfig) String() string {
	pw := ""
	if c.WebhooksPassword != "" {
		pw = "***"
	}
	return fmt.Sprintf("{Host:%s Port:%d Mode:%s MaxBodySizeMB:%d WebhooksUser:%s WebhooksPassword:%s}",
		c.Host, c.Port, c.Mode, c.MaxBodySizeMB, c.WebhooksUser, pw)
}

// Addr returns the listen address.
func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
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
	if (c.Server.WebhooksUser == "") != (c.Server.WebhooksPassword == "") {
		return fmt.Errorf("server.webhooks_user and server.webhooks_password must be set together")
	}

	if strings.TrimSpace(c.Handlers.Dir) == "" {
		return fmt.Errorf("handlers.dir is required")
	}
	if strings.TrimSpace(c.Handlers.NamedSubdir) == "" || strings.ContainsAny(c.Handlers.NamedSubdir, `/\`) {
		return fmt.Errorf("invalid handlers.named_subdir %q (must be a plain directory name)", c.Handlers.NamedSubdir)
	}
	if c.Handlers.WatchDebounce < 0 {
		return fmt.Errorf("handlers.watch_debounce must be >= 0")
	}

	if c.Dispatch.InternalTimeout < 0 {
		return fmt.Errorf("dispatch.internal_timeout must be >= 0")
	}
	if c.Dispatch.ExternalTimeout < 0 {
		return fmt.Errorf("dispatch.external_timeout must be >= 0")
	}
	if c.Dispatch.MaxExternalProcs <= 0 {
		return fmt.Errorf("dispatch.max_external_procs must be > 0")
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log.level %q (must be debug, info, warn or error)", c.Log.Level)
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		return fmt.Errorf("invalid log.format %q (must be text or json)", c.Log.Format)
	}
	if c.Log.File != "" && (c.Log.MaxMegs <= 0 || c.Log.Keep < 0) {
		return fmt.Errorf("log.max_megs must be > 0 and log.keep >= 0 when log.file is set")
	}

	return nil
}

// Load parses config from defaults, an optional YAML file and CHOOK_ env
// vars, then validates it.
func Load(configPath string) (*Config, error) {
	k := koanf.New(".")

	defaults := map[string]interface{}{
		"server.port":                 8080,
		"server.host":                 "0.0.0.0",
		"server.max_body_size_mb":     1,
		"server.mode":                 "release",
		"server.webhooks_user":        "",
		"server.webhooks_password":    "",
		"handlers.dir":                "./handlers",
		"handlers.named_subdir":       "NamedHandlers",
		"handlers.ignore_prefix":      "Ignore-",
		"handlers.watch":              false,
		"handlers.watch_debounce":     "500ms",
		"dispatch.internal_timeout":   "30s",
		"dispatch.external_timeout":   "0s",
		"dispatch.max_external_procs": 64,
		"log.level":                   "info",
		"log.format":                  "text",
		"log.file":                    "",
		"log.max_megs":                10,
		"log.keep":                    10,
	}
	for key, value := range defaults {
		k.Set(key, value)
	}

	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	}

	if err := k.Load(env.Provider("CHOOK_", ".", func(s string) string {
		return strings.Replace(strings.ToLower(strings.TrimPrefix(s, "CHOOK_")), "__", ".", -1)
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

	return &cfg, nil
}
