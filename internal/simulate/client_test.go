package simulate_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/okian/rondo/internal/simulate"
	"github.com/smartystreets/goconvey/convey"
)

const testTimeout = 2 * time.Second

func TestClientSubmitScore(t *testing.T) {
	convey.Convey("Given a submit endpoint", t, func() {
		ctx := context.Background()

		convey.Convey("When the service answers 201", func() {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodPost || r.URL.Path != "/submit" {
					w.WriteHeader(http.StatusNotFound)
					return
				}
				w.WriteHeader(http.StatusCreated)
			}))
			defer srv.Close()

			client := simulate.NewClient(srv.URL, testTimeout)
			outcome := client.SubmitScore(ctx, 7, 5000)

			convey.Convey("Then the outcome should be a success", func() {
				convey.So(outcome.Status, convey.ShouldEqual, simulate.OutcomeSuccess)
				convey.So(outcome.Failed(), convey.ShouldBeFalse)
				convey.So(outcome.Elapsed, convey.ShouldBeGreaterThan, 0)
			})
		})

		convey.Convey("When the service answers 200", func() {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusOK)
			}))
			defer srv.Close()

			client := simulate.NewClient(srv.URL, testTimeout)
			outcome := client.SubmitScore(ctx, 7, 5000)

			convey.Convey("Then the outcome should still be a success", func() {
				convey.So(outcome.Status, convey.ShouldEqual, simulate.OutcomeSuccess)
			})
		})

		convey.Convey("When the service answers 500", func() {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				http.Error(w, "boom", http.StatusInternalServerError)
			}))
			defer srv.Close()

			client := simulate.NewClient(srv.URL, testTimeout)
			outcome := client.SubmitScore(ctx, 7, 5000)

			convey.Convey("Then the outcome should be a failure with a diagnostic", func() {
				convey.So(outcome.Status, convey.ShouldEqual, simulate.OutcomeFailure)
				convey.So(outcome.Diagnostic, convey.ShouldContainSubstring, "500")
			})
		})
	})
}

func TestClientFetchTop(t *testing.T) {
	convey.Convey("Given a top-players endpoint", t, func() {
		ctx := context.Background()

		convey.Convey("When the service answers 200 with entries", func() {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(`{"source":"cache","data":[{"username":"alice","total_score":9001}]}`))
			}))
			defer srv.Close()

			client := simulate.NewClient(srv.URL, testTimeout)
			outcome := client.FetchTop(ctx)

			convey.Convey("Then the outcome should be a success", func() {
				convey.So(outcome.Status, convey.ShouldEqual, simulate.OutcomeSuccess)
			})
		})

		convey.Convey("When the service answers 200 with a malformed body", func() {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(`{"data": [`))
			}))
			defer srv.Close()

			client := simulate.NewClient(srv.URL, testTimeout)
			outcome := client.FetchTop(ctx)

			convey.Convey("Then the outcome should be a failure", func() {
				convey.So(outcome.Status, convey.ShouldEqual, simulate.OutcomeFailure)
				convey.So(outcome.Diagnostic, convey.ShouldContainSubstring, "malformed")
			})
		})

		convey.Convey("When the service answers 503", func() {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusServiceUnavailable)
			}))
			defer srv.Close()

			client := simulate.NewClient(srv.URL, testTimeout)
			outcome := client.FetchTop(ctx)

			convey.Convey("Then the outcome should be a failure", func() {
				convey.So(outcome.Status, convey.ShouldEqual, simulate.OutcomeFailure)
			})
		})
	})
}

func TestClientFetchRank(t *testing.T) {
	convey.Convey("Given a rank endpoint", t, func() {
		ctx := context.Background()

		convey.Convey("When the user has a recorded score", func() {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/rank/42" {
					w.WriteHeader(http.StatusNotFound)
					return
				}
				_, _ = w.Write([]byte(`{"source":"db","data":{"rank":3,"total_score":7500}}`))
			}))
			defer srv.Close()

			client := simulate.NewClient(srv.URL, testTimeout)
			outcome := client.FetchRank(ctx, 42)

			convey.Convey("Then the outcome should be a success", func() {
				convey.So(outcome.Status, convey.ShouldEqual, simulate.OutcomeSuccess)
			})
		})

		convey.Convey("When the user has no recorded score", func() {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusNotFound)
			}))
			defer srv.Close()

			client := simulate.NewClient(srv.URL, testTimeout)
			outcome := client.FetchRank(ctx, 42)

			convey.Convey("Then the outcome should be an expected absence, not an error", func() {
				convey.So(outcome.Status, convey.ShouldEqual, simulate.OutcomeExpectedAbsence)
				convey.So(outcome.Failed(), convey.ShouldBeFalse)
			})
		})

		convey.Convey("When the service answers 500", func() {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			}))
			defer srv.Close()

			client := simulate.NewClient(srv.URL, testTimeout)
			outcome := client.FetchRank(ctx, 42)

			convey.Convey("Then the outcome should be a failure", func() {
				convey.So(outcome.Status, convey.ShouldEqual, simulate.OutcomeFailure)
			})
		})
	})
}

func TestClientTransportFailures(t *testing.T) {
	convey.Convey("Given an unreachable target", t, func() {
		ctx := context.Background()

		// Grab an address nothing listens on.
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {}))
		deadURL := srv.URL
		srv.Close()

		client := simulate.NewClient(deadURL, testTimeout)

		convey.Convey("Then every request kind should classify as a failure", func() {
			submit := client.SubmitScore(ctx, 1, 100)
			top := client.FetchTop(ctx)
			rank := client.FetchRank(ctx, 1)

			convey.So(submit.Status, convey.ShouldEqual, simulate.OutcomeFailure)
			convey.So(submit.Diagnostic, convey.ShouldNotBeEmpty)
			convey.So(top.Status, convey.ShouldEqual, simulate.OutcomeFailure)
			convey.So(rank.Status, convey.ShouldEqual, simulate.OutcomeFailure)
		})

		convey.Convey("And the probe should report the target unreachable", func() {
			err := client.Probe(ctx)
			convey.So(err, convey.ShouldNotBeNil)
			convey.So(err, convey.ShouldWrap, simulate.ErrTargetUnreachable)
		})
	})

	convey.Convey("Given a target slower than the request timeout", t, func() {
		ctx := context.Background()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			time.Sleep(200 * time.Millisecond)
		}))
		defer srv.Close()

		client := simulate.NewClient(srv.URL, 50*time.Millisecond)
		outcome := client.FetchTop(ctx)

		convey.Convey("Then the timed-out request should count as a failure", func() {
			convey.So(outcome.Status, convey.ShouldEqual, simulate.OutcomeFailure)
			convey.So(outcome.Elapsed, convey.ShouldBeGreaterThanOrEqualTo, 50*time.Millisecond)
		})
	})
}

func TestClientTiming(t *testing.T) {
	convey.Convey("Given a backend with a known latency", t, func() {
		ctx := context.Background()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			time.Sleep(50 * time.Millisecond)
			w.WriteHeader(http.StatusCreated)
		}))
		defer srv.Close()

		client := simulate.NewClient(srv.URL, testTimeout)
		outcome := client.SubmitScore(ctx, 1, 100)

		convey.Convey("Then the measured elapsed time should cover the call", func() {
			convey.So(outcome.Status, convey.ShouldEqual, simulate.OutcomeSuccess)
			convey.So(outcome.Elapsed, convey.ShouldBeGreaterThanOrEqualTo, 50*time.Millisecond)
			convey.So(outcome.Elapsed, convey.ShouldBeLessThan, time.Second)
		})
	})
}
