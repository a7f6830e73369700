package bootstrap

import (
	"log/slog"

	"github.com/parlo-app/parlo-ui-api/config"
	"github.com/parlo-app/parlo-ui-api/internal/observability/statsd"
)

// BuildMetrics creates the StatsD client, or a disabled one when metrics
// are off. The disabled client is still a valid Sink that drops everything.
func BuildMetrics(cfg config.ObservabilityMetricsConfig, logger *slog.Logger) (*statsd.Client, error) {
	return statsd.NewClient(statsd.Config{
		Enabled: cfg.IsEnabled(),
		Address: cfg.StatsdAddress,
		Prefix:  "parlo.ui_api",
		Logger:  logger,
	})
}
