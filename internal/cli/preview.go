package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"NewsPoster/internal/app"
)

func newPreviewCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "preview",
		Args:  cobra.NoArgs,
		Short: "Select and compose a post without publishing or recording it",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd.Context(), cmd, flags, app.Options{})
			if err != nil {
				return err
			}
			defer s.close()

			article, post, err := s.app.Preview(cmd.Context())
			if err != nil {
				s.logger.Error("preview failed", "error", err)
				return nil
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "source:   %s\n", article.Source)
			fmt.Fprintf(out, "template: %s (truncated=%t, minimal=%t)\n\n", post.Template, post.Truncated, post.Minimal)
			fmt.Fprintln(out, post.Body)
			return nil
		},
	}
}
