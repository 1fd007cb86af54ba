// Package config provides configuration types, defaults, and persistence for skins.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
	"go.uber.org/multierr"

	"github.com/zjrosen/skins/internal/flags"
	"github.com/zjrosen/skins/internal/log"
	"github.com/zjrosen/skins/internal/skin"
	"github.com/zjrosen/skins/internal/tracing"
	"github.com/zjrosen/skins/internal/variant"
)

// KeyDelimiter separates nested viper keys. Variant selectors contain dots,
// so the default "." delimiter would split them.
const KeyDelimiter = "::"

// slot marks where a long-form variant injects its rules.
const slot = "@slot"

// DefaultPath is where a config file is created when none is found.
var DefaultPath = filepath.Join(".skins", "config.yaml")

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("invalid config")

// ThemesConfig selects where themes come from and which one is active.
type ThemesConfig struct {
	// Dir holds user theme files loaded after the built-in themes.
	// Empty loads only the built-ins.
	Dir string `mapstructure:"dir"`

	// Active is the theme activated at startup.
	Active string `mapstructure:"active"`
}

// CacheConfig controls resolution memoization.
type CacheConfig struct {
	TTL time.Duration `mapstructure:"ttl"`
}

// BaselineConfig locates the baseline database.
type BaselineConfig struct {
	// Path of the sqlite file. Empty places it next to the config file.
	Path string `mapstructure:"path"`
}

// LogConfig controls the debug log.
type LogConfig struct {
	Debug bool   `mapstructure:"debug"`
	Path  string `mapstructure:"path"`
	Level string `mapstructure:"level"`
}

// Config holds all skins configuration.
type Config struct {
	Themes ThemesConfig `mapstructure:"themes"`

	// Defaults are process-wide hook values used when no theme rule applies.
	Defaults map[string]string `mapstructure:"defaults"`

	// Inherits lists hooks a child skin point takes from its ancestors when
	// the theme has no rule for it.
	Inherits []string `mapstructure:"inherits"`

	// Variants declares custom variants. Each value is either a selector
	// string or a nested selector mapping with an "@slot" marker.
	Variants map[string]any `mapstructure:"variants"`

	Cache    CacheConfig     `mapstructure:"cache"`
	Baseline BaselineConfig  `mapstructure:"baseline"`
	Tracing  tracing.Config  `mapstructure:"tracing"`
	Log      LogConfig       `mapstructure:"log"`
	Flags    map[string]bool `mapstructure:"flags"`
}

// Defaults returns a Config with sensible default values.
func Defaults() Config {
	return Config{
		Themes: ThemesConfig{
			Active: "light",
		},
		Defaults: map[string]string{},
		Variants: map[string]any{},
		Cache: CacheConfig{
			TTL: 5 * time.Minute,
		},
		Tracing: tracing.DefaultConfig(),
		Log: LogConfig{
			Path:  "debug.log",
			Level: "debug",
		},
		Flags: flags.Defaults(),
	}
}

// SetDefaults registers every default on v.
func SetDefaults(v *viper.Viper) {
	d := Defaults()
	set := func(key string, val any) { v.SetDefault(strings.ReplaceAll(key, ".", KeyDelimiter), val) }
	set("themes.dir", d.Themes.Dir)
	set("themes.active", d.Themes.Active)
	set("cache.ttl", d.Cache.TTL)
	set("baseline.path", d.Baseline.Path)
	set("tracing.enabled", d.Tracing.Enabled)
	set("tracing.exporter", d.Tracing.Exporter)
	set("tracing.file_path", d.Tracing.FilePath)
	set("tracing.otlp_endpoint", d.Tracing.OTLPEndpoint)
	set("tracing.sample_rate", d.Tracing.SampleRate)
	set("tracing.service_name", d.Tracing.ServiceName)
	set("log.debug", d.Log.Debug)
	set("log.path", d.Log.Path)
	set("log.level", d.Log.Level)
	for name, on := range d.Flags {
		set("flags."+name, on)
	}
}

// New returns a viper instance using the skins key delimiter with defaults
// registered.
func New() *viper.Viper {
	v := viper.NewWithOptions(viper.KeyDelimiter(KeyDelimiter))
	SetDefaults(v)
	return v
}

// Load reads configuration. An explicit path must exist. Otherwise the
// lookup order is .skins/config.yaml, then ~/.config/skins/config.yaml; when
// neither exists a commented default file is written to DefaultPath. The
// returned path is the file actually used, or DefaultPath when writing failed.
func Load(path string) (Config, string, error) {
	v := New()
	if path != "" {
		v.SetConfigFile(path)
	} else if _, err := os.Stat(DefaultPath); err == nil {
		v.SetConfigFile(DefaultPath)
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "skins"))
		}
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return Config{}, "", fmt.Errorf("reading config: %w", err)
		}
		if writeErr := WriteDefaultConfig(DefaultPath); writeErr == nil {
			v.SetConfigFile(DefaultPath)
			if err := v.ReadInConfig(); err != nil {
				return Config{}, "", fmt.Errorf("reading config: %w", err)
			}
		}
	}

	cfg, err := Decode(v)
	if err != nil {
		return Config{}, "", err
	}
	used := v.ConfigFileUsed()
	if used == "" {
		used = DefaultPath
	}
	log.Debug(log.CatConfig, "Loaded config", "path", used)
	return cfg, used, nil
}

// Decode unmarshals v into a Config. Unset maps are filled from Defaults.
func Decode(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decoding config: %w", err)
	}
	if cfg.Defaults == nil {
		cfg.Defaults = map[string]string{}
	}
	if cfg.Variants == nil {
		cfg.Variants = map[string]any{}
	}
	return cfg, nil
}

// BaselinePath returns the baseline database location, placing it next to
// configPath when unset.
func (c Config) BaselinePath(configPath string) string {
	if c.Baseline.Path != "" {
		return c.Baseline.Path
	}
	return filepath.Join(filepath.Dir(configPath), "baseline.db")
}

// VariantDecls converts the configured variants into declarations, ordered by
// name.
func (c Config) VariantDecls() ([]variant.Declaration, error) {
	names := sortedKeys(c.Variants)

	var errs error
	out := make([]variant.Declaration, 0, len(names))
	for _, name := range names {
		d := variant.Declaration{Name: name}
		switch raw := c.Variants[name].(type) {
		case string:
			d.Selector = raw
		case map[string]any:
			blocks, err := decodeBlocks(raw)
			if err != nil {
				errs = multierr.Append(errs, fmt.Errorf("variants::%s: %w", name, err))
				continue
			}
			d.Blocks = blocks
		default:
			errs = multierr.Append(errs, fmt.Errorf("variants::%s: must be a selector or a nested mapping, got %T", name, raw))
			continue
		}
		out = append(out, d)
	}
	return out, errs
}

// decodeBlocks walks a nested selector mapping. A selector whose value is
// "@slot", or an "@slot" key inside it, marks the injection point.
func decodeBlocks(m map[string]any) ([]variant.Block, error) {
	var out []variant.Block
	for _, k := range sortedKeys(m) {
		if k == slot {
			out = append(out, variant.Block{Slot: true})
			continue
		}
		b := variant.Block{Selector: k}
		var nested map[string]any
		switch val := m[k].(type) {
		case string:
			b.Slot = val == slot
		case map[string]any:
			nested = val
		default:
			// Anything else must still decode as a mapping.
			if err := mapstructure.Decode(val, &nested); err != nil {
				return nil, fmt.Errorf("selector %q: %w", k, err)
			}
		}
		if nested != nil {
			children, err := decodeBlocks(nested)
			if err != nil {
				return nil, err
			}
			for _, c := range children {
				if c.Selector == "" && c.Slot && len(c.Children) == 0 {
					b.Slot = true
					continue
				}
				b.Children = append(b.Children, c)
			}
		}
		out = append(out, b)
	}
	return out, nil
}

// Validate checks the configuration and returns every problem found.
func (c Config) Validate() error {
	var errs error
	for _, hook := range sortedKeys(c.Defaults) {
		if !skin.IsHook(hook) {
			errs = multierr.Append(errs, fmt.Errorf("%w: defaults::%s: unknown hook", ErrInvalid, hook))
		}
	}
	if decls, err := c.VariantDecls(); err != nil {
		errs = multierr.Append(errs, fmt.Errorf("%w: %w", ErrInvalid, err))
	} else if _, err := variant.NewResolver(decls...); err != nil {
		errs = multierr.Append(errs, fmt.Errorf("%w: variants: %w", ErrInvalid, err))
	}
	for _, hook := range c.Inherits {
		if !skin.IsHook(hook) {
			errs = multierr.Append(errs, fmt.Errorf("%w: inherits: unknown hook %q", ErrInvalid, hook))
		}
	}
	for _, name := range sortedKeys(c.Flags) {
		if !flags.IsKnown(name) {
			errs = multierr.Append(errs, fmt.Errorf("%w: flags::%s: unknown flag", ErrInvalid, name))
		}
	}
	if c.Cache.TTL < 0 {
		errs = multierr.Append(errs, fmt.Errorf("%w: cache::ttl must not be negative, got %s", ErrInvalid, c.Cache.TTL))
	}
	if err := ValidateTracing(c.Tracing); err != nil {
		errs = multierr.Append(errs, fmt.Errorf("%w: %w", ErrInvalid, err))
	}
	switch strings.ToLower(c.Log.Level) {
	case "", "debug", "info", "warn", "error":
	default:
		errs = multierr.Append(errs, fmt.Errorf("%w: log::level must be debug, info, warn or error, got %q", ErrInvalid, c.Log.Level))
	}
	return errs
}

// ValidateTracing checks tracing configuration for errors.
// Returns nil if the configuration is valid (empty values use defaults).
func ValidateTracing(tc tracing.Config) error {
	if tc.SampleRate < 0.0 || tc.SampleRate > 1.0 {
		return fmt.Errorf("tracing::sample_rate must be between 0.0 and 1.0, got %v", tc.SampleRate)
	}

	if tc.Exporter != "" {
		switch tc.Exporter {
		case "none", "file", "stdout", "otlp":
		default:
			return fmt.Errorf("tracing::exporter must be \"none\", \"file\", \"stdout\", or \"otlp\", got %q", tc.Exporter)
		}
	}

	// Only validate path requirements when tracing is enabled
	if tc.Enabled {
		if tc.Exporter == "file" && tc.FilePath == "" {
			return fmt.Errorf("tracing::file_path is required when exporter is \"file\"")
		}
		if tc.Exporter == "otlp" && tc.OTLPEndpoint == "" {
			return fmt.Errorf("tracing::otlp_endpoint is required when exporter is \"otlp\"")
		}
	}
	return nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// DefaultConfigTemplate returns the default config as a YAML string with comments.
func DefaultConfigTemplate() string {
	return `# Skins Configuration

# Theme sources
themes:
  # Directory of theme files loaded after the built-in themes. Each entry is
  # a .css or .yaml file, or a directory with an index.css / index.yaml.
  # dir: ./themes

  # Theme activated at startup (run 'skins themes' to list them)
  active: light

# Process-wide hook defaults, used when no theme rule applies
# defaults:
#   bg: transparent
#   text: "#111827"

# Hooks a child skin point takes from its parent when no rule themes it
# inherits: [text]

# Custom variants. A variant is either a selector, or a nested mapping of
# selectors with an "@slot" marker where the variant's rules apply.
# variants:
#   compact: '&[data-density="compact"]'
#   inverted:
#     ".inverted &": "@slot"
#     "&.inverted": "@slot"

# Resolution cache
cache:
  ttl: 5m

# Baseline database used by 'skins baseline save|check'
# baseline:
#   path: .skins/baseline.db   # default: next to this file

# Debug log (also enabled with --debug or SKINS_DEBUG=1)
log:
  debug: false
  path: debug.log
  level: debug   # debug, info, warn, error

# Feature flags
flags:
  strict-defaults: false   # a hook falling back to its default fails the theme load
  resolve-cache: true      # memoize resolved styles

# Distributed tracing
# tracing:
#   enabled: false                 # Enable/disable tracing (default: false)
#   exporter: file                 # Export backend: none, file, stdout, otlp (default: file)
#   file_path: .skins/traces.jsonl # Output file for file exporter
#   otlp_endpoint: localhost:4317  # OTLP collector endpoint (for otlp exporter)
#   sample_rate: 1.0               # Trace sampling rate 0.0-1.0 (default: 1.0)
`
}

// WriteDefaultConfig creates a config file at the given path with default settings and comments.
// Creates the parent directory if it doesn't exist.
func WriteDefaultConfig(configPath string) error {
	log.Debug(log.CatConfig, "Writing default config", "path", configPath)

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to create config directory", err, "dir", dir)
		return fmt.Errorf("creating config directory: %w", err)
	}

	if err := os.WriteFile(configPath, []byte(DefaultConfigTemplate()), 0o600); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to write config file", err, "path", configPath)
		return fmt.Errorf("writing config file: %w", err)
	}

	log.Info(log.CatConfig, "Created default config", "path", configPath)
	return nil
}
