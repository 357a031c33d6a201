package cli

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"NewsPoster/internal/app"
)

func newHistoryCmd(flags *rootFlags) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "history",
		Args:  cobra.NoArgs,
		Short: "List previously published articles, oldest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd.Context(), cmd, flags, app.Options{})
			if err != nil {
				return err
			}
			defer s.close()

			entries, err := s.app.History(cmd.Context())
			if err != nil {
				return fmt.Errorf("load history: %w", err)
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(entries)
			}
			for _, e := range entries {
				posted := "-"
				if !e.PostedAt.IsZero() {
					posted = e.PostedAt.In(s.cfg.Scheduler.Location()).Format(time.RFC3339)
				}
				fmt.Fprintf(out, "%s  %s\n", posted, e.URL)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print entries as JSON")
	return cmd
}
