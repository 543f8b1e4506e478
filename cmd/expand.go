package main

import (
	"context"
	"errors"
	"fmt"
	"linkexpander/internal/config"
	"linkexpander/pkg/domain"
	"linkexpander/pkg/logger"
	"linkexpander/pkg/preview"
	"linkexpander/pkg/serrors"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// expandCommand constructs the 'expand' subcommand that runs the pipeline for
// one URL, prints the result and records it in the history.
func expandCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "expand <url>",
		Short: "Expands a URL and prints its destination, metadata and trust score",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			noHistory, _ := cmd.Flags().GetBool("no-history")
			noPreview, _ := cmd.Flags().GetBool("no-preview")

			res, err := getPipeline(ctx, cfg, nil).Run(ctx, args[0])
			if err != nil {
				if errors.Is(err, serrors.ErrInvalidInput) {
					return errors.New("URL is required")
				}
				logger.Debug(ctx, "expansion failed", zap.Error(err))

				return errors.New("Failed to expand URL") //nolint: stylecheck
			}

			var screenshot string
			if !noPreview {
				b, err := preview.New(cfg.Screenshot.BaseURL)
				if err != nil {
					return fmt.Errorf("could not build preview link: %w", err)
				}
				screenshot = b.ScreenshotURL(res.ExpandedURL)
			}
			printResult(cmd, res, screenshot)

			if !noHistory {
				hist, closeHistory := getHistory(ctx, cfg)
				defer closeHistory()

				if err := hist.Append(ctx, domain.NewHistoryEntry(res, time.Now())); err != nil {
					logger.Warn(ctx, "could not append history entry", zap.Error(err))
				}
			}

			return nil
		},
	}

	cmd.Flags().Bool("no-history", false, "Do not record the result in the history")
	cmd.Flags().Bool("no-preview", false, "Do not print the screenshot preview link")

	return cmd
}

func printResult(cmd *cobra.Command, res *domain.ExpansionResult, screenshot string) {
	safety := "safe"
	if !res.IsSafe {
		safety = "UNSAFE"
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(tw, "Original\t%s\n", res.OriginalURL)
	_, _ = fmt.Fprintf(tw, "Expanded\t%s\n", res.ExpandedURL)
	_, _ = fmt.Fprintf(tw, "Title\t%s\n", res.Title)
	_, _ = fmt.Fprintf(tw, "Description\t%s\n", res.Description)
	_, _ = fmt.Fprintf(tw, "Trust score\t%d (%s)\n", res.TrustScore, safety)
	if screenshot != "" {
		_, _ = fmt.Fprintf(tw, "Screenshot\t%s\n", screenshot)
	}
	_ = tw.Flush()
}
