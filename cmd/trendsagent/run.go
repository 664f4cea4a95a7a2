package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"TrendsAgent/internal/config"
	"TrendsAgent/internal/textutil"
)

func runCmd() *cobra.Command {
	var (
		batch  int
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Execute one pipeline run and print the summary",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			application, _, _, err := bootstrap(ctx, func(c *config.Config) {
				if batch > 0 {
					c.Pipeline.BatchSize = batch
				}
			})
			if err != nil {
				return err
			}
			defer application.Close()

			summary, err := application.RunOnce(ctx)
			if err != nil {
				return fmt.Errorf("run pipeline: %w", err)
			}

			if asJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(summary)
			}

			fmt.Printf("Processed: %d  Relevant: %d  Skipped: %d  Errors: %d  Saved: %d\n",
				summary.Processed, summary.Relevant, summary.Skipped, summary.Errors, summary.Saved)
			for _, o := range summary.Outcomes {
				line := fmt.Sprintf("  %-7s %-16s %s", o.Kind, o.Label, textutil.Truncate(o.Trend, 60))
				if o.Error != "" {
					line += "  (" + o.Error + ")"
				}
				fmt.Println(line)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&batch, "batch", "n", 0, "trends to process (overrides pipeline.batchSize)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the summary as JSON")

	return cmd
}
