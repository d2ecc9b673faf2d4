package simulate

import (
	"context"
	"math/rand"
	"time"

	"github.com/okian/rondo/pkg/logger"
)

// Score range for submissions, matching the seeded backend data.
const (
	scoreMin = 100
	scoreMax = 10000
)

// SleepProfile bounds the randomized think time between a worker's requests.
type SleepProfile struct {
	Min time.Duration
	Max time.Duration
}

// ScaledProfile derives think-time bounds from the base interval:
// [0.5 * base, 2 * base].
func ScaledProfile(base time.Duration) SleepProfile {
	return SleepProfile{Min: base / 2, Max: 2 * base}
}

// FixedProfile ignores the base interval and pauses between 100ms and 1s,
// matching the simpler simulator variant.
func FixedProfile() SleepProfile {
	return SleepProfile{Min: 100 * time.Millisecond, Max: time.Second}
}

// Worker is one independent simulated-user loop. It repeatedly draws a
// user, picks an action, executes it, records the outcome, and pauses for
// a randomized think time until the context is cancelled or its iteration
// budget runs out.
type Worker struct {
	name          string
	client        *Client
	metrics       *Metrics
	selector      Selector
	profile       SleepProfile
	maxUsers      int
	maxIterations int
	rng           *rand.Rand
	progress      func(ctx context.Context, total uint64)
	log           logger.Logger
}

// WorkerOption applies a configuration option to the Worker.
type WorkerOption func(*Worker)

// WithName sets the worker name for identification and logging.
func WithName(name string) WorkerOption {
	return func(w *Worker) {
		if name != "" {
			w.name = name
		}
	}
}

// WithLogger sets a custom logger for the worker.
func WithLogger(log logger.Logger) WorkerOption {
	return func(w *Worker) {
		if log != nil {
			w.log = log
		}
	}
}

// WithSelector overrides the action selection policy.
func WithSelector(selector Selector) WorkerOption {
	return func(w *Worker) {
		if selector != nil {
			w.selector = selector
		}
	}
}

// WithSleepProfile sets the think-time bounds.
func WithSleepProfile(profile SleepProfile) WorkerOption {
	return func(w *Worker) {
		if profile.Min > 0 && profile.Max >= profile.Min {
			w.profile = profile
		}
	}
}

// WithUserRange bounds the random user ID range [1, maxUsers].
func WithUserRange(maxUsers int) WorkerOption {
	return func(w *Worker) {
		if maxUsers > 0 {
			w.maxUsers = maxUsers
		}
	}
}

// WithMaxIterations bounds the loop; 0 runs until cancelled.
func WithMaxIterations(n int) WorkerOption {
	return func(w *Worker) {
		if n >= 0 {
			w.maxIterations = n
		}
	}
}

// WithSeed seeds the worker's private random source.
func WithSeed(seed int64) WorkerOption {
	return func(w *Worker) {
		w.rng = rand.New(rand.NewSource(seed)) //nolint:gosec // statistical pacing, not security
	}
}

// WithProgress registers a callback invoked after every recorded iteration
// with the process-wide iteration total.
func WithProgress(fn func(ctx context.Context, total uint64)) WorkerOption {
	return func(w *Worker) {
		w.progress = fn
	}
}

// NewWorker creates a worker bound to the shared client and metrics.
func NewWorker(client *Client, m *Metrics, opts ...WorkerOption) *Worker {
	w := &Worker{
		name:     "worker",
		client:   client,
		metrics:  m,
		selector: WeightedSelector,
		profile:  ScaledProfile(time.Second),
		maxUsers: 1_000_000,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())), //nolint:gosec // statistical pacing, not security
		log:      logger.Get().Named("worker"),
	}

	for _, opt := range opts {
		opt(w)
	}

	if w.name != "worker" {
		w.log = logger.Get().Named(w.name)
	}

	return w
}

// Run executes the worker loop until the context is cancelled or the
// iteration budget is exhausted. Request failures are absorbed into
// metrics; nothing propagates out of the loop.
func (w *Worker) Run(ctx context.Context) {
	w.log.Debug(ctx, "worker started")
	defer w.log.Debug(ctx, "worker stopped")

	for iteration := 0; ; {
		select {
		case <-ctx.Done():
			return
		default:
		}

		userID := w.rng.Intn(w.maxUsers) + 1
		action := w.selector(w.rng)
		outcome := w.execute(ctx, action, userID)
		w.metrics.Record(action, outcome)

		if outcome.Failed() {
			w.log.Warn(ctx, "request failed",
				logger.String("action", action.String()),
				logger.String("cause", outcome.Diagnostic))
		}

		total := w.metrics.AddIteration()
		if w.progress != nil {
			w.progress(ctx, total)
		}

		iteration++
		if w.maxIterations > 0 && iteration >= w.maxIterations {
			return
		}

		if !w.sleep(ctx) {
			return
		}
	}
}

// execute dispatches one request for the chosen action. SubmitScore and
// FetchRank take the drawn user ID; FetchTop needs none.
func (w *Worker) execute(ctx context.Context, action Action, userID int) Outcome {
	switch action {
	case ActionSubmit:
		score := w.rng.Intn(scoreMax-scoreMin+1) + scoreMin
		return w.client.SubmitScore(ctx, userID, score)
	case ActionTop:
		return w.client.FetchTop(ctx)
	case ActionRank:
		return w.client.FetchRank(ctx, userID)
	default:
		return Outcome{Status: OutcomeFailure, Diagnostic: "unknown action"}
	}
}

// sleep pauses for a uniform random duration within the profile bounds.
// The wait is interruptible so shutdown latency is bounded by one sleep
// interval. Returns false when the context was cancelled.
func (w *Worker) sleep(ctx context.Context) bool {
	d := w.profile.Min
	if span := w.profile.Max - w.profile.Min; span > 0 {
		d += time.Duration(w.rng.Int63n(int64(span)))
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
