package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"TrendsAgent/internal/domain"
	"TrendsAgent/internal/textutil"
)

func statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show record counts by status and category",
		RunE: func(cmd *cobra.Command, args []string) error {
			application, _, _, err := bootstrap(cmd.Context())
			if err != nil {
				return err
			}
			defer application.Close()

			stats, err := application.Records().Stats(cmd.Context())
			if err != nil {
				return err
			}

			fmt.Println("Trend records")
			fmt.Println(strings.Repeat("=", 40))
			fmt.Printf("  Total:    %d\n", stats.Total)
			fmt.Printf("  Pending:  %d\n", stats.Pending)
			fmt.Printf("  Approved: %d\n", stats.Approved)
			fmt.Printf("  Rejected: %d\n", stats.Rejected)

			fmt.Println("\nBy category:")
			categories := make([]string, 0, len(stats.ByCategory))
			for label := range stats.ByCategory {
				categories = append(categories, string(label))
			}
			sort.Strings(categories)
			for _, name := range categories {
				fmt.Printf("  %-18s %d\n", name, stats.ByCategory[domain.Label(name)])
			}

			if len(stats.RecentUpdates) > 0 {
				fmt.Println("\nMost recent:")
				for _, rec := range stats.RecentUpdates {
					fmt.Printf("  %s  %-14s %s\n", rec.Timestamp.Format("2006-01-02 15:04"), rec.Status, textutil.Truncate(rec.TrendText, 50))
				}
			}
			return nil
		},
	}
}
