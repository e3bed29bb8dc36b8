package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/pricelens/pricelens/internal/config"
)

// starterConfig is the file written by `config init`. The session id is left
// out on purpose; it belongs in the environment.
type starterConfig struct {
	League string              `yaml:"league"`
	Items  []config.ItemConfig `yaml:"items"`
	Output struct {
		Format string `yaml:"format"`
	} `yaml:"output"`
	Exchange struct {
		MaxAge string `yaml:"max_age"`
	} `yaml:"exchange"`
}

func newStarterConfig() starterConfig {
	cfg := starterConfig{
		League: "Standard",
		Items: []config.ItemConfig{
			{
				Name:  "Mageblood",
				Query: `{"query":{"status":{"option":"online"},"name":"Mageblood","type":"Heavy Belt"},"sort":{"price":"asc"}}`,
			},
			{
				Name:  "Headhunter",
				Query: `{"query":{"status":{"option":"online"},"name":"Headhunter","type":"Leather Belt"},"sort":{"price":"asc"}}`,
			},
		},
	}
	cfg.Output.Format = "table"
	cfg.Exchange.MaxAge = "24h"
	return cfg
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the pricelens config file",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a starter config file",
	Long: `Write a starter config.yaml with example item queries.

The file goes to --config when given, otherwise to the XDG config directory.
An existing file is only replaced with --force.`,
	Args: cobra.NoArgs,
	RunE: runConfigInit,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file in use",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := configFileInUse()
		if path == "" {
			return errors.New("no config file found")
		}
		_, err := fmt.Fprintln(cmd.OutOrStdout(), path)
		return err
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configPathCmd)

	configInitCmd.Flags().Bool("force", false, "Overwrite an existing config file")
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	force, err := cmd.Flags().GetBool("force")
	if err != nil {
		return err
	}

	path := strings.TrimSpace(cfgFile)
	if path == "" {
		path = config.DefaultConfigPath()
	}
	if path == "" {
		return errors.New("could not resolve a config directory; pass --config")
	}

	if err := writeStarterConfig(path, force); err != nil {
		return err
	}

	_, err = fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\nSet %s before running `%s prices`.\n", path, config.SessionEnv, config.AppName)
	return err
}

func writeStarterConfig(path string, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	} else if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}

	data, err := yaml.Marshal(newStarterConfig())
	if err != nil {
		return fmt.Errorf("encode starter config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	return os.WriteFile(path, data, 0o600)
}
