package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/zjrosen/runestream/internal/charstream"
	"github.com/zjrosen/runestream/internal/tracing"
)

func TestDefaults_Valid(t *testing.T) {
	cfg := Defaults()
	require.NoError(t, cfg.Validate())
	require.Equal(t, "utf-8", cfg.Input.Encoding)
	require.True(t, cfg.Cache.Enabled)
	require.Equal(t, 200*time.Millisecond, cfg.Watch.Debounce)
	require.False(t, cfg.Tracing.Enabled)
}

func TestValidate_EmptyIsValid(t *testing.T) {
	require.NoError(t, Config{}.Validate(), "empty values fall back to defaults")
}

func TestValidate_UnknownEncoding(t *testing.T) {
	cfg := Defaults()
	cfg.Input.Encoding = "klingon-8"
	err := cfg.Validate()
	require.ErrorIs(t, err, charstream.ErrUnknownEncoding)
	require.Contains(t, err.Error(), "input.encoding")
}

func TestValidate_EncodingAliases(t *testing.T) {
	for _, label := range []string{"UTF-8", "latin1", "utf-16le", "windows-1252"} {
		cfg := Defaults()
		cfg.Input.Encoding = label
		require.NoError(t, cfg.Validate(), label)
	}
}

func TestValidate_NegativeDurations(t *testing.T) {
	cfg := Defaults()
	cfg.Cache.TTL = -time.Second
	require.ErrorContains(t, cfg.Validate(), "cache.ttl")

	cfg = Defaults()
	cfg.Watch.Debounce = -time.Millisecond
	require.ErrorContains(t, cfg.Validate(), "watch.debounce")
}

func TestValidate_LogLevel(t *testing.T) {
	cfg := Defaults()
	cfg.Log.Level = "chatty"
	require.ErrorContains(t, cfg.Validate(), "log.level")

	cfg.Log.Level = "WARN"
	require.NoError(t, cfg.Validate())
}

func TestValidateTracing(t *testing.T) {
	tests := []struct {
		name    string
		cfg     tracing.Config
		wantErr string
	}{
		{name: "defaults", cfg: tracing.DefaultConfig()},
		{name: "sample rate too high", cfg: tracing.Config{SampleRate: 1.5}, wantErr: "sample_rate"},
		{name: "sample rate negative", cfg: tracing.Config{SampleRate: -0.1}, wantErr: "sample_rate"},
		{name: "otlp unsupported", cfg: tracing.Config{Exporter: "otlp"}, wantErr: "exporter must be"},
		{name: "file without path", cfg: tracing.Config{Enabled: true, Exporter: "file"}, wantErr: "file_path is required"},
		{name: "file without path disabled", cfg: tracing.Config{Enabled: false, Exporter: "file"}},
		{name: "file with path", cfg: tracing.Config{Enabled: true, Exporter: "file", FilePath: "/tmp/t.jsonl"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTracing(tt.cfg)
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestDefaultConfigTemplate_MatchesDefaults(t *testing.T) {
	var parsed struct {
		Input struct {
			Encoding string `yaml:"encoding"`
		} `yaml:"input"`
		Cache struct {
			Enabled bool   `yaml:"enabled"`
			TTL     string `yaml:"ttl"`
		} `yaml:"cache"`
		Watch struct {
			Debounce string `yaml:"debounce"`
		} `yaml:"watch"`
		Tracing struct {
			Enabled  bool   `yaml:"enabled"`
			Exporter string `yaml:"exporter"`
		} `yaml:"tracing"`
	}
	require.NoError(t, yaml.Unmarshal([]byte(DefaultConfigTemplate()), &parsed))

	d := Defaults()
	require.Equal(t, d.Input.Encoding, parsed.Input.Encoding)
	require.Equal(t, d.Cache.Enabled, parsed.Cache.Enabled)

	ttl, err := time.ParseDuration(parsed.Cache.TTL)
	require.NoError(t, err)
	require.Equal(t, d.Cache.TTL, ttl)

	debounce, err := time.ParseDuration(parsed.Watch.Debounce)
	require.NoError(t, err)
	require.Equal(t, d.Watch.Debounce, debounce)

	require.Equal(t, d.Tracing.Enabled, parsed.Tracing.Enabled)
	require.Equal(t, d.Tracing.Exporter, parsed.Tracing.Exporter)
}

func TestWriteDefaultConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", ".runestream", "config.yaml")

	require.NoError(t, WriteDefaultConfig(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, DefaultConfigTemplate(), string(data))
}
