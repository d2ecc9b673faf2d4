package simulate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/okian/rondo/pkg/logger"
)

// Diagnostic truncation limits, matching what fits on one report line.
const (
	maxDiagnosticLen = 80
	maxBodySnippet   = 100
)

// OutcomeStatus classifies how a simulated request completed.
type OutcomeStatus int

// Outcome statuses.
const (
	// OutcomeSuccess is a completed request the service answered as expected.
	OutcomeSuccess OutcomeStatus = iota
	// OutcomeExpectedAbsence is a rank query for a user with no recorded
	// score. The service answers 404 by contract; it is not a failure.
	OutcomeExpectedAbsence
	// OutcomeFailure covers transport errors, timeouts, malformed responses
	// and unexpected status codes.
	OutcomeFailure
)

func (s OutcomeStatus) String() string {
	switch s {
	case OutcomeSuccess:
		return "success"
	case OutcomeExpectedAbsence:
		return "expected_absence"
	case OutcomeFailure:
		return "error"
	default:
		return "unknown"
	}
}

// Outcome is the result of one executed request.
type Outcome struct {
	Status     OutcomeStatus
	Elapsed    time.Duration
	Diagnostic string
}

// Failed reports whether the outcome counts as an error.
func (o Outcome) Failed() bool {
	return o.Status == OutcomeFailure
}

// Leaderboard API payloads.
type submitRequest struct {
	UserID int `json:"user_id"`
	Score  int `json:"score"`
}

type playerEntry struct {
	Username   string `json:"username"`
	TotalScore int    `json:"total_score"`
}

type topResponse struct {
	Source string        `json:"source"`
	Data   []playerEntry `json:"data"`
}

type rankEntry struct {
	Rank       int `json:"rank"`
	TotalScore int `json:"total_score"`
}

type rankResponse struct {
	Source string    `json:"source"`
	Data   rankEntry `json:"data"`
}

// Client executes single leaderboard requests and classifies their outcomes.
// Every call path terminates in exactly one Outcome; no request failure
// escapes as an error or panic.
type Client struct {
	client  *http.Client
	baseURL string
	log     logger.Logger
}

// NewClient creates a client for the leaderboard API with a per-request timeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		client:  &http.Client{Timeout: timeout},
		baseURL: strings.TrimRight(baseURL, "/"),
		log:     logger.Get().Named("client"),
	}
}

// Probe checks whether the target answers at all. Used by the supervisor
// before a run starts; any HTTP response counts as reachable.
func (c *Client) Probe(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/top", nil)
	if err != nil {
		return fmt.Errorf("failed to create probe request: %w", err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrTargetUnreachable, err)
	}
	drainBody(resp)
	return nil
}

// SubmitScore posts a score for the user. Any 2xx status counts as success;
// the two backend variants answer 200 and 201 respectively.
func (c *Client) SubmitScore(ctx context.Context, userID, score int) Outcome {
	body, err := json.Marshal(submitRequest{UserID: userID, Score: score})
	if err != nil {
		return Outcome{Status: OutcomeFailure, Diagnostic: shorten("marshal: " + err.Error())}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/submit", bytes.NewReader(body))
	if err != nil {
		return Outcome{Status: OutcomeFailure, Diagnostic: shorten(err.Error())}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, payload, outcome := c.timedCall(req)
	if outcome.Failed() {
		return outcome
	}

	if resp.StatusCode >= http.StatusOK && resp.StatusCode < http.StatusMultipleChoices {
		c.log.Debug(ctx, "score submitted",
			logger.Int("userID", userID),
			logger.Int("score", score),
			logger.Duration("elapsed", outcome.Elapsed))
		return outcome
	}

	outcome.Status = OutcomeFailure
	outcome.Diagnostic = statusDiagnostic(resp.StatusCode, payload)
	return outcome
}

// FetchTop queries the top players. The first entry is logged for operator
// feedback but not otherwise consumed.
func (c *Client) FetchTop(ctx context.Context) Outcome {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/top", nil)
	if err != nil {
		return Outcome{Status: OutcomeFailure, Diagnostic: shorten(err.Error())}
	}

	resp, payload, outcome := c.timedCall(req)
	if outcome.Failed() {
		return outcome
	}

	if resp.StatusCode != http.StatusOK {
		outcome.Status = OutcomeFailure
		outcome.Diagnostic = statusDiagnostic(resp.StatusCode, payload)
		return outcome
	}

	var top topResponse
	if err := json.Unmarshal(payload, &top); err != nil {
		outcome.Status = OutcomeFailure
		outcome.Diagnostic = shorten("malformed response: " + err.Error())
		return outcome
	}

	if len(top.Data) > 0 {
		c.log.Debug(ctx, "top entry",
			logger.String("username", top.Data[0].Username),
			logger.Int("totalScore", top.Data[0].TotalScore),
			logger.String("cacheSource", top.Source),
			logger.Duration("elapsed", outcome.Elapsed))
	}
	return outcome
}

// FetchRank queries one user's rank. 404 means the user has no recorded
// score yet, a valid outcome of the query rather than a failure.
func (c *Client) FetchRank(ctx context.Context, userID int) Outcome {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/rank/"+strconv.Itoa(userID), nil)
	if err != nil {
		return Outcome{Status: OutcomeFailure, Diagnostic: shorten(err.Error())}
	}

	resp, payload, outcome := c.timedCall(req)
	if outcome.Failed() {
		return outcome
	}

	switch resp.StatusCode {
	case http.StatusOK:
		var rank rankResponse
		if err := json.Unmarshal(payload, &rank); err != nil {
			outcome.Status = OutcomeFailure
			outcome.Diagnostic = shorten("malformed response: " + err.Error())
			return outcome
		}
		c.log.Debug(ctx, "rank fetched",
			logger.Int("userID", userID),
			logger.Int("rank", rank.Data.Rank),
			logger.Int("totalScore", rank.Data.TotalScore),
			logger.String("cacheSource", rank.Source),
			logger.Duration("elapsed", outcome.Elapsed))
		return outcome
	case http.StatusNotFound:
		outcome.Status = OutcomeExpectedAbsence
		c.log.Debug(ctx, "rank not found",
			logger.Int("userID", userID),
			logger.Duration("elapsed", outcome.Elapsed))
		return outcome
	default:
		outcome.Status = OutcomeFailure
		outcome.Diagnostic = statusDiagnostic(resp.StatusCode, payload)
		return outcome
	}
}

// timedCall performs the request and measures wall-clock time around the
// call and body read only. On transport failure the returned outcome is
// already a classified failure and resp is nil.
func (c *Client) timedCall(req *http.Request) (*http.Response, []byte, Outcome) {
	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, nil, Outcome{
			Status:     OutcomeFailure,
			Elapsed:    time.Since(start),
			Diagnostic: shorten(err.Error()),
		}
	}

	payload, err := readResponseBody(resp)
	elapsed := time.Since(start)
	if err != nil {
		return nil, nil, Outcome{
			Status:     OutcomeFailure,
			Elapsed:    elapsed,
			Diagnostic: shorten("read body: " + err.Error()),
		}
	}

	return resp, payload, Outcome{Status: OutcomeSuccess, Elapsed: elapsed}
}

// readResponseBody reads and closes the response body.
func readResponseBody(resp *http.Response) ([]byte, error) {
	defer func() { _ = resp.Body.Close() }()
	return io.ReadAll(resp.Body)
}

// drainBody discards and closes the response body so the connection can be reused.
func drainBody(resp *http.Response) {
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
}

func statusDiagnostic(status int, payload []byte) string {
	snippet := string(payload)
	if len(snippet) > maxBodySnippet {
		snippet = snippet[:maxBodySnippet]
	}
	return "unexpected status " + strconv.Itoa(status) + ": " + snippet
}

func shorten(s string) string {
	if len(s) > maxDiagnosticLen {
		return s[:maxDiagnosticLen]
	}
	return s
}
