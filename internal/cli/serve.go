package cli

import (
	"github.com/spf13/cobra"

	"NewsPoster/internal/app"
)

func newServeCmd(flags *rootFlags) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "serve",
		Args:  cobra.NoArgs,
		Short: "Run on the configured interval until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd.Context(), cmd, flags, app.Options{DryRun: dryRun})
			if err != nil {
				return err
			}
			defer s.close()

			if err := s.app.Serve(cmd.Context()); err != nil {
				s.logger.Error("scheduler stopped", "error", err)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "print posts instead of publishing them")
	return cmd
}
