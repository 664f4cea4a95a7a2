package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"TrendsAgent/internal/infrastructure/storage"
)

func exportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export [file]",
		Short: "Export all stored records as JSON (\"-\" writes to stdout)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			application, cfg, _, err := bootstrap(cmd.Context())
			if err != nil {
				return err
			}
			defer application.Close()

			path := cfg.Storage.ExportPath
			if len(args) == 1 {
				path = args[0]
			}

			if path == "-" {
				_, err := storage.ExportJSON(cmd.Context(), application.Store(), os.Stdout)
				return err
			}

			n, err := storage.ExportJSONFile(cmd.Context(), application.Store(), path)
			if err != nil {
				return err
			}
			fmt.Printf("Exported %d records to %s\n", n, path)
			return nil
		},
	}
}
