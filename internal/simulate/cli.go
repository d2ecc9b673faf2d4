package simulate

import "os"

// ShowHelp prints usage information for the load simulator.
func ShowHelp() {
	os.Stdout.WriteString(`Rondo Leaderboard Load Simulator
================================

Drives a leaderboard service with concurrent randomized traffic: score
submissions (80%), top-player queries (10%) and rank lookups (10%),
collecting latency and error statistics per request kind.

Usage:
  rondo [options]

Options:
  -url string
        Base URL of the leaderboard API (default "http://localhost:8000/api/leaderboard")
  -workers int
        Number of concurrent simulated users (default 10)
  -users int
        Upper bound of the random user ID range (default 1000000)
  -interval duration
        Base think time between a worker's requests (default 1s)
  -iterations int
        Per-worker iteration budget, 0 = run until interrupted (default 0)
  -report duration
        Interval between periodic metrics reports (default 5s)
  -report-every int
        Additionally report every N completed iterations, 0 = off (default 0)
  -timeout duration
        HTTP request timeout (default 10s)
  -profile string
        Think-time profile: scaled ([0.5x, 2x] of interval) or fixed ([100ms, 1s]) (default "scaled")
  -metrics string
        Listen address for Prometheus metrics, empty = disabled (default "")
  -verbose
        Enable verbose logging
  -help
        Show this help message

Configuration may also come from a YAML file named by RONDO_CONFIG and from
RONDO_* environment variables (RONDO_BASE_URL, RONDO_WORKERS, ...); flags
take precedence.

Examples:
  # Run against a local service until Ctrl+C
  rondo

  # Heavier load with faster pacing
  rondo -workers 50 -interval 250ms

  # Bounded smoke run with iteration-based reporting
  rondo -iterations 100 -report-every 10

  # Simpler pacing variant with fixed 100ms-1s think time
  rondo -profile fixed
`)
}
