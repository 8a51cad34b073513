// Package app implements the main application commands.
package app

import (
	"github.com/spf13/cobra"

	"github.com/campusdesk/campusdesk/internal/config"
	"github.com/campusdesk/campusdesk/internal/logger"
)

var (
	cfg        config.Config
	configPath string // directory holding main.toml
	devMode    bool
)

var rootCmd = &cobra.Command{
	Use:   "campusdesk",
	Short: "campusdesk manages roles and feature access for school staff",
	Long: `campusdesk keeps the feature catalog, the roles built from it and the
role assignments of every staff account, and answers "may this user do X".`,
	Args: cobra.OnlyValidArgs,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		var err error
		if cfg, err = config.ReadConfig(configPath); err != nil {
			return err
		}

		if devMode {
			cfg.DevMode = true
		}

		return logger.Init(cfg.Log)
	},
	SilenceUsage: true,
}

func init() { //nolint: gochecknoinits
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "./etc/", "Directory containing main.toml")
	rootCmd.PersistentFlags().BoolVar(&devMode, "dev", false, "Enable dev mode")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
