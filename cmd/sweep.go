package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newSweepCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Delete expired blacklist entries once and exit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			appInstance, err := resolveApp(cmd.Context())
			if err != nil {
				return err
			}
			deleted, err := appInstance.Sweeper().SweepOnce(cmd.Context())
			if err != nil {
				return fmt.Errorf("sweep: %w", err)
			}
			appInstance.Logger().Info("sweep finished", zap.Int64("deleted", deleted))
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %d expired blacklist entries\n", deleted)
			return nil
		},
	}
}
