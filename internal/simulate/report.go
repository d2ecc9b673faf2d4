package simulate

import (
	"context"

	"github.com/okian/rondo/pkg/logger"
	"github.com/okian/rondo/pkg/metrics"
)

// reportSnapshot logs one aggregated line per action kind that has seen
// traffic: request count, running average latency, error count.
func reportSnapshot(ctx context.Context, log logger.Logger, snap map[Action]Bucket) {
	for _, action := range Actions() {
		b := snap[action]
		if b.Count == 0 {
			continue
		}
		log.Info(ctx, "metrics",
			logger.String("action", action.String()),
			logger.Uint64("requests", b.Count),
			logger.Duration("avgLatency", b.AvgLatency()),
			logger.Uint64("errors", b.Errors))
	}
	metrics.RecordReport()
}

// finalReport prints the closing snapshot plus run totals.
func finalReport(log logger.Logger, runID string, m *Metrics) {
	// The run context is already cancelled at this point.
	ctx := context.Background()

	snap := m.Snapshot()
	reportSnapshot(ctx, log, snap)

	var total, errors uint64
	for _, b := range snap {
		total += b.Count
		errors += b.Errors
	}

	elapsed := m.Uptime()
	var perSecond float64
	if elapsed > 0 {
		perSecond = float64(total) / elapsed.Seconds()
	}

	log.Info(ctx, "simulation complete",
		logger.String("runID", runID),
		logger.Uint64("requests", total),
		logger.Uint64("errors", errors),
		logger.Uint64("iterations", m.Iterations()),
		logger.Duration("elapsed", elapsed),
		logger.Float64("requestsPerSecond", perSecond))
}
