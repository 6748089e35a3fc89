package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/SURENDHAR-1925/Job-Track/internal/config"
	"github.com/SURENDHAR-1925/Job-Track/internal/scraper/registry"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration with secrets redacted",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		out, err := yaml.Marshal(cfg.Redacted())
		if err != nil {
			return fmt.Errorf("encode config: %w", err)
		}
		fmt.Fprint(cmd.OutOrStdout(), string(out))

		_, skipped, err := registry.Build(cfg)
		if err != nil {
			return err
		}
		for name, reason := range skipped {
			fmt.Fprintf(cmd.ErrOrStderr(), "# source %s will be skipped: %s\n", name, reason)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		path = config.DefaultPath
	}
	return config.Load(path)
}
