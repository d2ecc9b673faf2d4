package simulate_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/okian/rondo/internal/simulate"
	"github.com/smartystreets/goconvey/convey"
)

func TestRunValidation(t *testing.T) {
	convey.Convey("Given an invalid run configuration", t, func() {
		ctx := context.Background()

		cases := []*simulate.Config{
			{Workers: 1, MaxUsers: 1, BaseInterval: time.Second},
			{BaseURL: "http://x", MaxUsers: 1, BaseInterval: time.Second},
			{BaseURL: "http://x", Workers: 1, BaseInterval: time.Second},
			{BaseURL: "http://x", Workers: 1, MaxUsers: 1},
		}

		for _, cfg := range cases {
			err := simulate.Run(ctx, cfg)

			convey.Convey("Then Run should reject "+describe(cfg), func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(err, convey.ShouldWrap, simulate.ErrInvalidRunConfig)
			})
		}
	})
}

func describe(cfg *simulate.Config) string {
	switch {
	case cfg.BaseURL == "":
		return "a missing base URL"
	case cfg.Workers < 1:
		return "a zero worker count"
	case cfg.MaxUsers < 1:
		return "an empty user range"
	default:
		return "a zero base interval"
	}
}

func TestRunBounded(t *testing.T) {
	convey.Convey("Given a bounded simulation against a healthy backend", t, func() {
		var requests atomic.Int64
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requests.Add(1)
			if r.Method == http.MethodPost {
				w.WriteHeader(http.StatusCreated)
				return
			}
			_, _ = w.Write([]byte(`{"source":"db","data":[]}`))
		}))
		defer srv.Close()

		cfg := &simulate.Config{
			BaseURL:       srv.URL,
			Workers:       3,
			MaxUsers:      50,
			BaseInterval:  time.Second,
			MaxIterations: 4,
			ReportPeriod:  time.Hour, // keep periodic reports out of the way
			ReportEvery:   5,
			Timeout:       testTimeout,
			Profile:       fastProfile,
		}

		convey.Convey("When running to completion", func() {
			start := time.Now()
			err := simulate.Run(context.Background(), cfg)

			convey.Convey("Then it should finish cleanly once every budget is spent", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(time.Since(start), convey.ShouldBeLessThan, 10*time.Second)
				// 3 workers x 4 iterations, plus the preflight probe.
				convey.So(requests.Load(), convey.ShouldEqual, 13)
			})
		})
	})
}

func TestRunCancellation(t *testing.T) {
	convey.Convey("Given an unbounded simulation", t, func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodPost {
				w.WriteHeader(http.StatusCreated)
				return
			}
			_, _ = w.Write([]byte(`{"source":"db","data":[]}`))
		}))
		defer srv.Close()

		cfg := &simulate.Config{
			BaseURL:      srv.URL,
			Workers:      5,
			MaxUsers:     50,
			BaseInterval: time.Second,
			ReportPeriod: 50 * time.Millisecond,
			Timeout:      testTimeout,
			Profile:      simulate.SleepProfile{Min: 10 * time.Millisecond, Max: 30 * time.Millisecond},
		}

		convey.Convey("When cancelling after some traffic", func() {
			ctx, cancel := context.WithCancel(context.Background())
			go func() {
				time.Sleep(300 * time.Millisecond)
				cancel()
			}()

			start := time.Now()
			err := simulate.Run(ctx, cfg)

			convey.Convey("Then it should stop within one maximum sleep interval", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(time.Since(start), convey.ShouldBeLessThan, 3*time.Second)
			})
		})
	})
}

func TestRunAgainstDeadTarget(t *testing.T) {
	convey.Convey("Given a target that refuses every connection", t, func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {}))
		deadURL := srv.URL
		srv.Close()

		cfg := &simulate.Config{
			BaseURL:       deadURL,
			Workers:       2,
			MaxUsers:      10,
			BaseInterval:  time.Second,
			MaxIterations: 3,
			ReportPeriod:  time.Hour,
			Timeout:       testTimeout,
			Profile:       fastProfile,
		}

		convey.Convey("When running a bounded simulation", func() {
			err := simulate.Run(context.Background(), cfg)

			convey.Convey("Then failures should accumulate without aborting the run", func() {
				convey.So(err, convey.ShouldBeNil)
			})
		})
	})
}
