package app

import (
	"github.com/spf13/cobra"

	"github.com/campusdesk/campusdesk/internal/authz"
	"github.com/campusdesk/campusdesk/internal/daemon"
)

func init() { //nolint: gochecknoinits
	rootCmd.AddCommand(seedCmd)
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create the feature catalog, the system roles and the bootstrap admin",
	RunE: func(cmd *cobra.Command, _ []string) error {
		db, err := daemon.Open(&cfg)
		if err != nil {
			return err
		}

		svc, err := authz.NewService(db, nil, authz.OptionsFromConfig(cfg.Authz))
		if err != nil {
			return err
		}

		return daemon.Seed(cmd.Context(), &cfg, db, svc)
	},
}
