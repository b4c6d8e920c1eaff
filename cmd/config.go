package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/zjrosen/runestream/internal/config"
)

var configForce bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the runestream config file",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a commented default config file",
	Long: `Write the default config to --config, or to .runestream/config.yaml when
no config file is given. An existing file is left alone unless --force is set.`,
	Args:        cobra.NoArgs,
	Annotations: map[string]string{allowMissingConfig: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		path := targetConfigPath()
		if _, err := os.Stat(path); err == nil && !configForce {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}
		if err := config.WriteDefaultConfig(path); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Long:  `Print the configuration after merging defaults, the config file, RUNESTREAM_* environment variables and flags.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		enc := yaml.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent(2)
		if err := enc.Encode(cfg); err != nil {
			return fmt.Errorf("encoding config: %w", err)
		}
		return enc.Close()
	},
}

var configSaveCmd = &cobra.Command{
	Use:   "save",
	Short: "Persist the effective configuration",
	Long: `Write the effective configuration back to the config file in use, keeping
comments and unrelated keys. Combine with flags to persist them, e.g.
"runestream config save --encoding utf-16le".`,
	Args:        cobra.NoArgs,
	Annotations: map[string]string{allowMissingConfig: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		path := targetConfigPath()
		if err := config.Save(path, cfg); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "saved %s\n", path)
		return nil
	},
}

func init() {
	configInitCmd.Flags().BoolVar(&configForce, "force", false, "overwrite an existing config file")
	configCmd.AddCommand(configInitCmd, configShowCmd, configSaveCmd)
	rootCmd.AddCommand(configCmd)
}

// targetConfigPath is the file config commands write to: --config, else the
// file that was loaded, else the project default.
func targetConfigPath() string {
	switch {
	case cfgFile != "":
		return cfgFile
	case configUsed != "":
		return configUsed
	default:
		return defaultConfigPath
	}
}
