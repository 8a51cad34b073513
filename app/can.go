package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/campusdesk/campusdesk/internal/authz"
	"github.com/campusdesk/campusdesk/internal/daemon"
)

var (
	canUser    string
	canFeature string
)

func init() { //nolint: gochecknoinits
	canCmd.Flags().StringVar(&canUser, "user", "", "Username to check")
	canCmd.Flags().StringVar(&canFeature, "feature", "", "Feature name to check")
	_ = canCmd.MarkFlagRequired("user")
	_ = canCmd.MarkFlagRequired("feature")

	rootCmd.AddCommand(canCmd)
}

var canCmd = &cobra.Command{
	Use:   "can",
	Short: "Report whether a user currently holds a feature",
	RunE: func(cmd *cobra.Command, _ []string) error {
		db, err := daemon.Open(&cfg)
		if err != nil {
			return err
		}

		svc, err := authz.NewService(db, nil, authz.OptionsFromConfig(cfg.Authz))
		if err != nil {
			return err
		}

		gd, ok := svc.Directory().(*authz.GormDirectory)
		if !ok {
			return fmt.Errorf("directory does not support username lookup")
		}

		user, err := gd.LookupUsername(cmd.Context(), canUser)
		if err != nil {
			return err
		}

		allowed, err := svc.UserHasFeatureNamed(cmd.Context(), user.ID, canFeature)
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "%s %s: %t\n", user.DisplayName, canFeature, allowed)

		if !allowed {
			return fmt.Errorf("%s lacks %s", canUser, canFeature)
		}

		return nil
	},
}
