package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"NewsPoster/internal/app"
)

func newRunCmd(flags *rootFlags) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "run",
		Args:  cobra.NoArgs,
		Short: "Execute a single posting run",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd.Context(), cmd, flags, app.Options{DryRun: dryRun})
			if err != nil {
				return err
			}
			defer s.close()

			report, err := s.app.RunOnce(cmd.Context())
			if err != nil {
				// Run failures are logged; only configuration errors change the exit code.
				s.logger.Error("run failed", "run_id", report.RunID, "status", report.Status, "error", err)
				return nil
			}

			if report.Article != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "%s: %s (%d attempts)\n", report.Status, report.Article.URL, report.Attempts)
			} else {
				fmt.Fprintf(cmd.ErrOrStderr(), "%s (%d attempts)\n", report.Status, report.Attempts)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "print the post instead of publishing it")
	return cmd
}
