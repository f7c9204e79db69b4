// Package metrics exposes the process counters in Prometheus text format and
// optionally pushes them to a VictoriaMetrics endpoint.
package metrics

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/VictoriaMetrics/metrics"

	"tradefy/internal/config"
)

func Setup(cfg config.Metrics, logger *slog.Logger) {
	if cfg.URL == "" {
		return
	}

	interval := time.Duration(cfg.IntervalMs) * time.Millisecond
	if interval <= 0 {
		interval = 10 * time.Second
	}

	err := metrics.InitPush(cfg.URL, interval, cfg.CommonLabels, true)
	if err != nil {
		logger.Error("Error initializing metrics push", "error", err)
	}
}

// Write renders every registered metric, including Go runtime metrics.
func Write(w io.Writer) {
	metrics.WritePrometheus(w, true)
}

// WebhookOutcome counts webhook deliveries by final outcome.
func WebhookOutcome(outcome string) *metrics.Counter {
	return metrics.GetOrCreateCounter(fmt.Sprintf(`webhook_deliveries_total{outcome=%q}`, outcome))
}

var (
	WebhookDuration = metrics.GetOrCreateHistogram(`webhook_handle_duration_seconds`)

	SessionsCreated       = metrics.GetOrCreateCounter(`payment_sessions_total{result="created"}`)
	SessionsProviderError = metrics.GetOrCreateCounter(`payment_sessions_total{result="provider_error"}`)
	SessionsStoreError    = metrics.GetOrCreateCounter(`payment_sessions_total{result="store_error"}`)

	PayoutsSucceeded = metrics.GetOrCreateCounter(`payouts_total{result="success"}`)
	PayoutsFailed    = metrics.GetOrCreateCounter(`payouts_total{result="failed"}`)

	EventsPublished     = metrics.GetOrCreateCounter(`settlement_events_total{result="published"}`)
	EventsPublishFailed = metrics.GetOrCreateCounter(`settlement_events_total{result="publish_failed"}`)
)
