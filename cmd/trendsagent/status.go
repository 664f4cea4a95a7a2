package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status <trend> <status>",
		Short: "Set the review status of a stored trend",
		Long: `Set the review status of a stored trend.

Status is one of: "Pending Review", "Approved", "Rejected" (case-insensitive).

Example:
  trendsagent status "SSC CGL 2025 notification out - apply online" approved`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			application, _, _, err := bootstrap(cmd.Context())
			if err != nil {
				return err
			}
			defer application.Close()

			status, err := application.Records().UpdateStatus(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			fmt.Printf("Status updated to %s\n", status)
			return nil
		},
	}
}
