// Package config handles configuration loading and defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Default values.
const (
	DefaultAddr       = "127.0.0.1:7420"
	DefaultStoreKind  = "sqlite"
	DefaultLogLevel   = "info"
	DefaultLogFormat  = "text"
	DefaultTheme      = "classic"
	DefaultConfigFile = "tada.toml"
	appDir            = "tada"
)

// Config holds the full configuration for tada.
type Config struct {
	Client ClientConfig `toml:"client" yaml:"client"`
	Server ServerConfig `toml:"server" yaml:"server"`
	Store  StoreConfig  `toml:"store" yaml:"store"`
	Log    LogConfig    `toml:"log" yaml:"log"`
	UI     UIConfig     `toml:"ui" yaml:"ui"`

	// File the config was read from, empty when only defaults apply.
	Source string `toml:"-" yaml:"-"`
}

// ClientConfig points the view at a backend.
type ClientConfig struct {
	Addr    string        `toml:"addr" yaml:"addr"`
	Timeout time.Duration `toml:"timeout" yaml:"timeout"` // 0 = wait forever
}

// ServerConfig configures `tada serve`.
type ServerConfig struct {
	Addr  string `toml:"addr" yaml:"addr"`
	Token string `toml:"token" yaml:"token"` // empty disables auth
}

type StoreConfig struct {
	Kind string `toml:"kind" yaml:"kind"` // sqlite | json
	Path string `toml:"path" yaml:"path"`
}

type LogConfig struct {
	Level  string `toml:"level" yaml:"level"`
	Format string `toml:"format" yaml:"format"` // text | json | logfmt
	File   string `toml:"file" yaml:"file"`
}

type UIConfig struct {
	Theme string `toml:"theme" yaml:"theme"` // classic | neon | mono
	Color string `toml:"color" yaml:"color"` // auto | always | never
}

// Default returns a config with every field set.
func Default() *Config {
	return &Config{
		Client: ClientConfig{Addr: "http://" + DefaultAddr},
		Server: ServerConfig{Addr: DefaultAddr},
		Store: StoreConfig{
			Kind: DefaultStoreKind,
			Path: filepath.Join(dataDir(), "db.sqlite"),
		},
		Log: LogConfig{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
			File:   filepath.Join(cacheDir(), "tada.log"),
		},
		UI: UIConfig{Theme: DefaultTheme, Color: "auto"},
	}
}

// Load applies, in order: defaults, the config file, environment.
// path may be empty; then $TADA_CONFIG and ./tada.toml are tried, and a
// missing implicit file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = os.Getenv("TADA_CONFIG")
		explicit = path != ""
	}
	if !explicit {
		path = DefaultConfigFile
	}

	if err := loadFile(cfg, path); err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			path = ""
		} else {
			return nil, fmt.Errorf("loading config file %s: %w", path, err)
		}
	}
	cfg.Source = path

	if err := loadFromEnv(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadFile(cfg *Config, path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, cfg); err != nil {
			return fmt.Errorf("yaml: %w", err)
		}
	default:
		if _, err := toml.Decode(string(b), cfg); err != nil {
			return fmt.Errorf("toml: %w", err)
		}
	}
	return nil
}

// loadFromEnv overrides config from TADA_* environment variables.
func loadFromEnv(cfg *Config) error {
	set := func(key string, dst *string) {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			*dst = v
		}
	}
	set("TADA_ADDR", &cfg.Client.Addr)
	set("TADA_LISTEN", &cfg.Server.Addr)
	set("TADA_SERVER_TOKEN", &cfg.Server.Token)
	set("TADA_STORE", &cfg.Store.Kind)
	set("TADA_DB", &cfg.Store.Path)
	set("TADA_LOG_LEVEL", &cfg.Log.Level)
	set("TADA_LOG_FORMAT", &cfg.Log.Format)
	set("TADA_LOG_FILE", &cfg.Log.File)
	set("TADA_THEME", &cfg.UI.Theme)

	if v := strings.TrimSpace(os.Getenv("TADA_TIMEOUT")); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			// bare integers are seconds
			n, nerr := strconv.Atoi(v)
			if nerr != nil {
				return fmt.Errorf("TADA_TIMEOUT: %w", err)
			}
			d = time.Duration(n) * time.Second
		}
		cfg.Client.Timeout = d
	}
	return nil
}

// Validate rejects values no component can act on.
func (c *Config) Validate() error {
	switch strings.ToLower(c.Store.Kind) {
	case "sqlite", "json":
	default:
		return fmt.Errorf("store.kind: unsupported %q (want sqlite or json)", c.Store.Kind)
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json", "logfmt":
	default:
		return fmt.Errorf("log.format: unsupported %q", c.Log.Format)
	}
	switch strings.ToLower(c.UI.Color) {
	case "auto", "always", "never":
	default:
		return fmt.Errorf("ui.color: unsupported %q", c.UI.Color)
	}
	if c.Client.Timeout < 0 {
		return fmt.Errorf("client.timeout: must not be negative")
	}
	if strings.TrimSpace(c.Client.Addr) == "" {
		return fmt.Errorf("client.addr: empty")
	}
	return nil
}

// ClientBase returns Client.Addr with a scheme.
func (c *Config) ClientBase() string {
	addr := strings.TrimRight(c.Client.Addr, "/")
	if !strings.Contains(addr, "://") {
		addr = "http://" + addr
	}
	return addr
}

func dataDir() string {
	if d, err := os.UserConfigDir(); err == nil {
		return filepath.Join(d, appDir)
	}
	return "."
}

func cacheDir() string {
	if d, err := os.UserCacheDir(); err == nil {
		return filepath.Join(d, appDir)
	}
	return "."
}
