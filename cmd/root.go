// Package cmd implements the runestream command line.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/zjrosen/runestream/internal/charstream"
	"github.com/zjrosen/runestream/internal/config"
	"github.com/zjrosen/runestream/internal/log"
	"github.com/zjrosen/runestream/internal/tracing"
)

const (
	defaultConfigPath = ".runestream/config.yaml"
	stdinName         = "<stdin>"

	// allowMissingConfig marks commands that create the --config file.
	allowMissingConfig = "allow-missing-config"
)

var (
	version = "dev"
	cfgFile string
	cfg     config.Config

	// appFs is where input files are read from; tests swap in a MemMapFs.
	appFs afero.Fs = afero.NewOsFs()

	tracer     trace.Tracer = noop.NewTracerProvider().Tracer("noop")
	provider   *tracing.Provider
	closeLog   = func() {}
	configUsed string
	configErr  error
)

var rootCmd = &cobra.Command{
	Use:   "runestream",
	Short: "Code-point indexed character streams for lexers",
	Long: `runestream loads text in any supported encoding into a character stream
addressed by Unicode code point, and exposes the stream operations a lexer
needs: lookahead, seek, marks and text extraction by interval.`,
	Version:            version,
	SilenceUsage:       true,
	PersistentPreRunE:  setup,
	PersistentPostRunE: teardown,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "",
		"config file (default: .runestream/config.yaml or ~/.config/runestream/config.yaml)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false,
		"write debug logs (to log.path or stderr)")
	rootCmd.PersistentFlags().StringP("encoding", "e", "",
		"input encoding label, e.g. utf-8, utf-16le, latin1")
	rootCmd.PersistentFlags().Bool("trace", false,
		"record OpenTelemetry spans with the configured exporter")

	bindFlags()
}

// bindFlags ties persistent flags to their viper keys.
func bindFlags() {
	_ = viper.BindPFlag("log.debug", rootCmd.PersistentFlags().Lookup("debug"))
	_ = viper.BindPFlag("input.encoding", rootCmd.PersistentFlags().Lookup("encoding"))
	_ = viper.BindPFlag("tracing.enabled", rootCmd.PersistentFlags().Lookup("trace"))
}

func initConfig() {
	defaults := config.Defaults()
	viper.SetDefault("input.encoding", defaults.Input.Encoding)
	viper.SetDefault("cache.enabled", defaults.Cache.Enabled)
	viper.SetDefault("cache.ttl", defaults.Cache.TTL)
	viper.SetDefault("watch.debounce", defaults.Watch.Debounce)
	viper.SetDefault("tracing.enabled", defaults.Tracing.Enabled)
	viper.SetDefault("tracing.exporter", defaults.Tracing.Exporter)
	viper.SetDefault("tracing.sample_rate", defaults.Tracing.SampleRate)
	viper.SetDefault("tracing.service_name", defaults.Tracing.ServiceName)
	viper.SetDefault("log.level", defaults.Log.Level)

	viper.SetEnvPrefix("RUNESTREAM")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		// Config lookup order:
		// 1. .runestream/config.yaml (current directory)
		// 2. ~/.config/runestream/config.yaml (user config)
		if _, err := os.Stat(defaultConfigPath); err == nil {
			viper.SetConfigFile(defaultConfigPath)
		} else {
			home, _ := os.UserHomeDir()
			viper.AddConfigPath(filepath.Join(home, ".config", "runestream"))
			viper.SetConfigName("config")
			viper.SetConfigType("yaml")
		}
	}

	// A missing config file is fine; defaults apply. Anything else,
	// including an explicit --config that does not exist, surfaces in setup.
	configUsed, configErr = "", nil
	if cfgFile != "" {
		if _, err := os.Stat(cfgFile); err != nil {
			configErr = err
		}
	}
	if configErr == nil {
		if err := viper.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				configErr = err
			}
		} else {
			configUsed = viper.ConfigFileUsed()
		}
	}

	cfg = config.Config{}
	if err := viper.Unmarshal(&cfg); err != nil && configErr == nil {
		configErr = err
	}
}

func setup(cmd *cobra.Command, args []string) error {
	if configErr != nil {
		missingOK := cmd.Annotations[allowMissingConfig] == "true" && errors.Is(configErr, fs.ErrNotExist)
		if !missingOK {
			return fmt.Errorf("reading config: %w", configErr)
		}
	}

	if cfg.Log.Debug {
		if err := initLogging(cmd.ErrOrStderr()); err != nil {
			return err
		}
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	p, err := tracing.NewProvider(cfg.Tracing)
	if err != nil {
		return fmt.Errorf("starting tracing: %w", err)
	}
	provider = p
	tracer = p.Tracer()

	log.Debug(log.CatCLI, "Command starting", "cmd", cmd.CommandPath(), "args", strings.Join(args, " "),
		"config", configUsed, "encoding", cfg.Input.Encoding)
	return nil
}

func initLogging(stderr io.Writer) error {
	if cfg.Log.Path != "" {
		cleanup, err := log.Init(cfg.Log.Path)
		if err != nil {
			return err
		}
		closeLog = cleanup
	} else {
		log.InitWriter(stderr)
	}
	level, err := log.ParseLevel(cfg.Log.Level)
	if err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	log.SetMinLevel(level)
	return nil
}

func teardown(cmd *cobra.Command, args []string) error {
	defer func() {
		closeLog()
		closeLog = func() {}
	}()
	if provider == nil {
		return nil
	}
	err := provider.Shutdown(context.Background())
	provider = nil
	return err
}

// openStream loads path as a stream using the configured encoding.
// "-" reads standard input.
func openStream(cmd *cobra.Command, path string) (*charstream.CharStream, error) {
	if path == "-" {
		name := cfg.Input.SourceName
		if name == "" {
			name = stdinName
		}
		return charstream.FromReader(cmd.InOrStdin(), cfg.Input.Encoding, charstream.WithSourceName(name))
	}
	return charstream.FromFile(appFs, path, cfg.Input.Encoding)
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// SetVersion sets the version string (called from main with ldflags)
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}
