package main

import (
	"context"
	"fmt"
	"linkexpander/internal/config"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

// historyCommand constructs the 'history' subcommand group that lists and
// clears recent expansions.
func historyCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Shows or clears recent expansions",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "Lists recent expansions, newest first",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			ctx := context.Background()
			hist, closeHistory := getHistory(ctx, cfg)
			defer closeHistory()

			entries := hist.List()
			if len(entries) == 0 {
				cmd.Println("No history yet")

				return
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			_, _ = fmt.Fprintln(tw, "DATE\tSAFE\tORIGINAL\tEXPANDED")
			for _, e := range entries {
				_, _ = fmt.Fprintf(tw, "%s\t%t\t%s\t%s\n", e.Date, e.Safe, e.Original, e.Expanded)
			}
			_ = tw.Flush()
		},
	}, &cobra.Command{
		Use:   "clear",
		Short: "Removes every history entry",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			hist, closeHistory := getHistory(ctx, cfg)
			defer closeHistory()

			if err := hist.Clear(ctx); err != nil {
				return fmt.Errorf("could not clear history: %w", err)
			}
			cmd.Println("History cleared")

			return nil
		},
	})

	return cmd
}
