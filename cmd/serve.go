package cmd

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"profile-server/di"

	"github.com/spf13/cobra"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start HTTP API server",
	Long: `Start an HTTP server that provides REST API endpoints for:
  - /v1/region         - Read (GET) or move (PUT) the rectangle
  - /v1/profile        - Current elevation profile
  - /v1/chart          - Elevation profile chart (HTML)
  - /v1/profiles/nearby - Previously sampled profiles around a point
  - /metrics           - Prometheus metrics`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig(cmd)
		if addr, _ := cmd.Flags().GetString("addr"); cmd.Flags().Changed("addr") {
			cfg.Server.Addr = addr
		}

		container, err := di.NewContainer(cfg)
		if err != nil {
			return err
		}
		defer container.Close()

		if err := container.ProfileService.Restore(cfg.Seed.Path); err != nil {
			log.Printf("[serve] No profile restored, chart starts empty: %v", err)
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		container.ProfileRefresherService.StartPeriodicJob(ctx, cfg.Refresher.Interval)
		return container.ProfileHttpServer.Start(ctx)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("addr", "a", ":8080", "Address to listen on")
}
