package main

import (
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"TrendsAgent/internal/config"
)

func serveCmd() *cobra.Command {
	var (
		addr     string
		interval time.Duration
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API and the optional run scheduler",
		Long: `Start the workflow trigger API.

Examples:
  trendsagent serve
  trendsagent serve --addr :8080 --interval 6h`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			application, cfg, _, err := bootstrap(ctx, func(c *config.Config) {
				if addr != "" {
					c.Server.Addr = addr
				}
				if interval > 0 {
					c.Scheduler.Interval = interval
				}
			})
			if err != nil {
				return err
			}
			defer application.Close()

			if !strings.EqualFold(cfg.Logging.Level, "debug") {
				gin.SetMode(gin.ReleaseMode)
			}
			return application.Serve(ctx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides server.addr and PORT)")
	cmd.Flags().DurationVar(&interval, "interval", 0, "run the pipeline on this interval (overrides scheduler.interval)")

	return cmd
}
