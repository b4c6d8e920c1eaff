// Package config provides configuration types and defaults for runestream.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/zjrosen/runestream/internal/charstream"
	"github.com/zjrosen/runestream/internal/log"
	"github.com/zjrosen/runestream/internal/tracing"
)

// Config holds all configuration options for runestream.
type Config struct {
	Input   InputConfig    `mapstructure:"input" yaml:"input"`
	Cache   CacheConfig    `mapstructure:"cache" yaml:"cache"`
	Watch   WatchConfig    `mapstructure:"watch" yaml:"watch"`
	Tracing tracing.Config `mapstructure:"tracing" yaml:"tracing"`
	Log     LogConfig      `mapstructure:"log" yaml:"log"`
}

// InputConfig controls how source files are decoded.
type InputConfig struct {
	// Encoding is the default label passed to the decoder. Empty means UTF-8.
	Encoding string `mapstructure:"encoding" yaml:"encoding"`

	// SourceName overrides the name reported by streams built from stdin.
	SourceName string `mapstructure:"source_name" yaml:"source_name,omitempty"`
}

// CacheConfig controls the decoded source cache used by the lex command.
type CacheConfig struct {
	Enabled bool          `mapstructure:"enabled" yaml:"enabled"`
	TTL     time.Duration `mapstructure:"ttl" yaml:"ttl"`
}

// WatchConfig controls file watching for lex --watch.
type WatchConfig struct {
	Debounce time.Duration `mapstructure:"debounce" yaml:"debounce"`
}

// LogConfig controls the debug log.
type LogConfig struct {
	Debug bool   `mapstructure:"debug" yaml:"debug"`
	Path  string `mapstructure:"path" yaml:"path,omitempty"`
	Level string `mapstructure:"level" yaml:"level"`
}

// Defaults returns a Config with default values.
func Defaults() Config {
	return Config{
		Input: InputConfig{
			Encoding: "utf-8",
		},
		Cache: CacheConfig{
			Enabled: true,
			TTL:     10 * time.Minute,
		},
		Watch: WatchConfig{
			Debounce: 200 * time.Millisecond,
		},
		Tracing: tracing.DefaultConfig(),
		Log: LogConfig{
			Level: "debug",
		},
	}
}

// Validate checks the configuration for errors.
// Empty values fall back to defaults and are accepted.
func (c Config) Validate() error {
	if c.Input.Encoding != "" {
		if _, err := charstream.ResolveEncoding(c.Input.Encoding); err != nil {
			return fmt.Errorf("input.encoding: %w", err)
		}
	}
	if c.Cache.TTL < 0 {
		return fmt.Errorf("cache.ttl must not be negative, got %s", c.Cache.TTL)
	}
	if c.Watch.Debounce < 0 {
		return fmt.Errorf("watch.debounce must not be negative, got %s", c.Watch.Debounce)
	}
	if err := ValidateTracing(c.Tracing); err != nil {
		return err
	}
	if c.Log.Level != "" {
		if _, err := log.ParseLevel(c.Log.Level); err != nil {
			return fmt.Errorf("log.level: %w", err)
		}
	}
	return nil
}

// ValidateTracing checks tracing configuration for errors.
func ValidateTracing(t tracing.Config) error {
	if t.SampleRate < 0.0 || t.SampleRate > 1.0 {
		return fmt.Errorf("tracing.sample_rate must be between 0.0 and 1.0, got %v", t.SampleRate)
	}

	switch t.Exporter {
	case "", "none", "file", "stdout":
	default:
		return fmt.Errorf("tracing.exporter must be \"none\", \"file\", or \"stdout\", got %q", t.Exporter)
	}

	if t.Enabled && t.Exporter == "file" && t.FilePath == "" {
		return fmt.Errorf("tracing.file_path is required when exporter is \"file\"")
	}
	return nil
}

// DefaultConfigTemplate returns the commented YAML written by `config init`.
func DefaultConfigTemplate() string {
	return `# runestream configuration

input:
  # Default encoding label for input files (utf-8, utf-16le, utf-16be,
  # latin1, windows-1252, ...). Overridden by --encoding.
  encoding: utf-8

cache:
  # Keep decoded sources in memory while lexing and watching.
  enabled: true
  ttl: 10m

watch:
  # Quiet period before re-lexing after a file change.
  debounce: 200ms

tracing:
  enabled: false
  # none, file, or stdout
  exporter: stdout
  # file_path: /tmp/runestream-traces.jsonl
  sample_rate: 1.0

log:
  # Same as --debug; writes to path or stderr.
  debug: false
  # path: debug.log
  # debug, info, warn, error
  level: debug
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
