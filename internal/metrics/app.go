package metrics

import (
	"time"

	"github.com/pricelens/pricelens/internal/observability"
)

// Application-level metrics following Prometheus conventions
var (
	// Trade dispatcher metrics
	TradeRequestsTotal   = "trade_requests_total"
	TradeRequestDuration = "trade_request_duration_ms"
	TradeGateWaitsTotal  = "trade_gate_waits_total"
	TradeGateWait        = "trade_gate_wait_ms"
	TradeThrottledTotal  = "trade_throttled_total"

	// Exchange ratio metrics
	ExchangeRatio         = "exchange_ratio_chaos_per_divine"
	ExchangeRefreshTotal  = "exchange_refresh_total"
	PriceRunItemsTotal    = "price_run_items_total"
	PriceRunDuration      = "price_run_duration_ms"
	SnapshotFailuresTotal = "price_snapshot_failures_total"
	HealthCheckTotal      = "app_health_check_total"
	HealthCheckDurationMs = "app_health_check_duration_ms"
)

// RecordTradeRequest records one trade API round trip.
func RecordTradeRequest(endpoint string, status string, duration time.Duration) {
	if observability.TelemetrySystem == nil {
		return
	}

	tags := map[string]string{
		"endpoint": endpoint,
		"status":   status,
	}
	_ = observability.TelemetrySystem.Counter(TradeRequestsTotal, 1, tags)
	_ = observability.TelemetrySystem.Histogram(TradeRequestDuration, duration, tags)
}

// RecordGateWait records a caller waiting on a quota gate.
func RecordGateWait(endpoint string, wait time.Duration) {
	if observability.TelemetrySystem == nil {
		return
	}

	tags := map[string]string{"endpoint": endpoint}
	_ = observability.TelemetrySystem.Counter(TradeGateWaitsTotal, 1, tags)
	_ = observability.TelemetrySystem.Histogram(TradeGateWait, wait, tags)
}

// RecordThrottled records a 429 answer from the trade API.
func RecordThrottled(endpoint string) {
	if observability.TelemetrySystem != nil {
		_ = observability.TelemetrySystem.Counter(
			TradeThrottledTotal,
			1,
			map[string]string{"endpoint": endpoint},
		)
	}
}

// RecordExchangeRatio records the ratio in use and whether it was refreshed.
func RecordExchangeRatio(league string, ratio float64, refreshed bool) {
	if observability.TelemetrySystem == nil {
		return
	}

	_ = observability.TelemetrySystem.Gauge(ExchangeRatio, ratio, map[string]string{"league": league})
	if refreshed {
		_ = observability.TelemetrySystem.Counter(ExchangeRefreshTotal, 1, map[string]string{"league": league})
	}
}

// RecordPriceItem records one priced item within a run.
func RecordPriceItem(league string, success bool) {
	status := "success"
	if !success {
		status = "failure"
	}

	if observability.TelemetrySystem != nil {
		_ = observability.TelemetrySystem.Counter(
			PriceRunItemsTotal,
			1,
			map[string]string{
				"league": league,
				"status": status,
			},
		)
	}
}

// RecordPriceRun records the duration of a completed aggregation run.
func RecordPriceRun(duration time.Duration) {
	if observability.TelemetrySystem != nil {
		_ = observability.TelemetrySystem.Histogram(PriceRunDuration, duration, nil)
	}
}

// RecordSnapshotFailure records a price snapshot that could not be stored.
func RecordSnapshotFailure() {
	if observability.TelemetrySystem != nil {
		_ = observability.TelemetrySystem.Counter(SnapshotFailuresTotal, 1, nil)
	}
}

// RecordHealthCheck records a health check execution
func RecordHealthCheck(checkName string, healthy bool, duration time.Duration) {
	status := "healthy"
	if !healthy {
		status = "unhealthy"
	}

	if observability.TelemetrySystem != nil {
		_ = observability.TelemetrySystem.Counter(
			HealthCheckTotal,
			1,
			map[string]string{
				"check":  checkName,
				"status": status,
			},
		)

		_ = observability.TelemetrySystem.Histogram(
			HealthCheckDurationMs,
			duration,
			map[string]string{
				"check": checkName,
			},
		)
	}
}
