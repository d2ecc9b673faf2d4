package simulate

import "time"

// Config holds configuration for one simulation run.
type Config struct {
	BaseURL       string        // Leaderboard API endpoint under test
	Workers       int           // Number of concurrent simulated users
	MaxUsers      int           // Random user ID range upper bound
	BaseInterval  time.Duration // Base think time between requests
	MaxIterations int           // Per-worker iteration budget; 0 = unbounded
	ReportPeriod  time.Duration // Periodic report interval; 0 disables
	ReportEvery   int           // Report every N iterations; 0 disables
	Timeout       time.Duration // HTTP request timeout
	Profile       SleepProfile  // Think-time bounds; zero value derives from BaseInterval
	Selector      Selector      // Action policy; nil defaults to WeightedSelector
}
