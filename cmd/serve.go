package cmd

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/huangsam/grouppulse/internal/api"
	"github.com/spf13/cobra"
)

// serveCmd runs the HTTP API.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve health reports over HTTP",
	Long: `Start the GroupPulse HTTP API.

Routes:
  GET  /health
  GET  /api/v1/groups
  GET  /api/v1/reports?group=&granularity=&start=&end=&rank=&limit=
  GET  /api/v1/reports/:id
  GET  /api/v1/groups/:group/reports/:date   (date may be 'latest')
  GET  /api/v1/groups/:group/trend?end=&lookback=&metric=
  POST /api/v1/score
  GET|PUT /api/v1/thresholds
  GET|PUT /api/v1/scoring-config

Threshold and participation updates apply to every later request.

Examples:
  grouppulse serve --addr :9090 --rate-limit 5 --cors-origins https://dash.example.com`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
		ctx, stop := signal.NotifyContext(rootCtx, os.Interrupt, syscall.SIGTERM)
		defer stop()
		return api.NewServer(cfg, storeManager, logger).Run(ctx)
	},
}
