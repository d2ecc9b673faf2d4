package simulate

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/okian/rondo/pkg/logger"
	"github.com/okian/rondo/pkg/metrics"
)

// Run drives the load simulation until the context is cancelled or every
// worker finishes its bounded iteration budget, then prints a final report
// exactly once. Worker-level request failures never surface here; the only
// fault that reaches this loop is cancellation.
func Run(ctx context.Context, cfg *Config) error {
	if err := validateRunConfig(cfg); err != nil {
		return err
	}

	log := logger.Get().Named("simulate")
	runID := uuid.New().String()

	log.Info(ctx, "starting leaderboard load simulation",
		logger.String("runID", runID),
		logger.String("target", cfg.BaseURL),
		logger.Int("workers", cfg.Workers),
		logger.Int("maxUsers", cfg.MaxUsers),
		logger.Duration("baseInterval", cfg.BaseInterval),
		logger.Int("maxIterations", cfg.MaxIterations),
		logger.Duration("timeout", cfg.Timeout))

	client := NewClient(cfg.BaseURL, cfg.Timeout)

	// A dead target is not fatal: the run proceeds and accumulates errors
	// until the operator stops it.
	if err := client.Probe(ctx); err != nil {
		log.Warn(ctx, "target not reachable, continuing anyway", logger.Error(err))
	}

	selector := cfg.Selector
	if selector == nil {
		selector = WeightedSelector
	}
	profile := cfg.Profile
	if profile.Max == 0 {
		profile = ScaledProfile(cfg.BaseInterval)
	}

	m := NewMetrics()
	progress := make(chan uint64, cfg.Workers)
	notify := func(ctx context.Context, total uint64) {
		select {
		case progress <- total:
		case <-ctx.Done():
		}
	}

	var wg sync.WaitGroup
	for i := 0; i < cfg.Workers; i++ {
		w := NewWorker(client, m,
			WithName("worker-"+strconv.Itoa(i)),
			WithSelector(selector),
			WithSleepProfile(profile),
			WithUserRange(cfg.MaxUsers),
			WithMaxIterations(cfg.MaxIterations),
			WithSeed(time.Now().UnixNano()+int64(i)),
			WithProgress(notify),
		)
		wg.Add(1)
		go func() {
			defer wg.Done()
			w.Run(ctx)
		}()
	}
	metrics.UpdateActiveWorkers(cfg.Workers)

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	// Reporting loop: a periodic ticker plus iteration milestones for
	// bounded runs. Draining progress keeps workers from blocking on the
	// notify channel.
	var tick <-chan time.Time
	if cfg.ReportPeriod > 0 {
		ticker := time.NewTicker(cfg.ReportPeriod)
		defer ticker.Stop()
		tick = ticker.C
	}

	running := true
	for running {
		select {
		case <-ctx.Done():
			log.Info(ctx, "stopping simulation", logger.String("runID", runID))
			running = false
		case <-done:
			running = false
		case <-tick:
			reportSnapshot(ctx, log, m.Snapshot())
		case total := <-progress:
			if cfg.ReportEvery > 0 && total%uint64(cfg.ReportEvery) == 0 {
				reportSnapshot(ctx, log, m.Snapshot())
			}
		}
	}

	// Workers observe cancellation at the loop top and inside the sleep,
	// so this wait is bounded by one maximum sleep interval.
	<-done
	metrics.UpdateActiveWorkers(0)

	finalReport(log, runID, m)
	return nil
}

func validateRunConfig(cfg *Config) error {
	if cfg.BaseURL == "" {
		return fmt.Errorf("%w: base URL must not be empty", ErrInvalidRunConfig)
	}
	if cfg.Workers < 1 {
		return fmt.Errorf("%w: at least one worker required", ErrInvalidRunConfig)
	}
	if cfg.MaxUsers < 1 {
		return fmt.Errorf("%w: user range must be at least 1", ErrInvalidRunConfig)
	}
	if cfg.Profile.Max == 0 && cfg.BaseInterval <= 0 {
		return fmt.Errorf("%w: base interval must be positive", ErrInvalidRunConfig)
	}
	return nil
}
