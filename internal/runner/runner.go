// Package runner executes a batch of requests, such as every request of a
// collection, with a bounded number of requests in flight.
package runner

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/studiowebux/restforge/internal/request"
	"github.com/studiowebux/restforge/internal/types"
)

// DefaultConcurrency is used when a non-positive concurrency is given
const DefaultConcurrency = 4

// Executor sends one request and always produces a response
type Executor interface {
	Execute(ctx context.Context, req *types.RequestConfig, vars []types.KeyValuePair) *types.ResponseData
}

// Result pairs a request with its response. Skipped is set when the run was
// cancelled before the request was sent.
type Result struct {
	Request  types.RequestConfig
	Response *types.ResponseData
	Skipped  bool
}

// Option configures a run
type Option func(*settings)

type settings struct {
	limiter *rate.Limiter
}

// WithRateLimit caps how many requests start per second. Zero or less means unlimited.
func WithRateLimit(perSecond float64) Option {
	return func(s *settings) {
		if perSecond > 0 {
			s.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
		}
	}
}

// Run executes requests with at most concurrency of them in flight.
// Results are returned in request order.
func Run(ctx context.Context, exec Executor, requests []types.RequestConfig, vars []types.KeyValuePair, concurrency int, opts ...Option) []Result {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}

	var cfg settings
	for _, opt := range opts {
		opt(&cfg)
	}

	results := make([]Result, len(requests))
	for i := range requests {
		results[i] = Result{Request: requests[i], Skipped: true}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i := range requests {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if gctx.Err() != nil {
				return nil
			}
			if cfg.limiter != nil {
				if err := cfg.limiter.Wait(gctx); err != nil {
					return nil
				}
			}
			req := requests[i].Clone()
			results[i].Response = exec.Execute(gctx, req, vars)
			results[i].Skipped = false
			return nil
		})
	}

	// Workers never return an error; failures are carried in the response.
	_ = g.Wait()
	return results
}

// Summary aggregates the outcome of a run
type Summary struct {
	Total     int
	Succeeded int
	Failed    int
	Skipped   int
	TotalTime time.Duration
}

// Summarize counts 2xx responses as succeeded and everything else sent as failed
func Summarize(results []Result) Summary {
	s := Summary{Total: len(results)}
	for _, r := range results {
		switch {
		case r.Skipped || r.Response == nil:
			s.Skipped++
		case request.StatusClass(r.Response.Status) == request.StatusSuccess:
			s.Succeeded++
			s.TotalTime += millis(r.Response.Time)
		default:
			s.Failed++
			s.TotalTime += millis(r.Response.Time)
		}
	}
	return s
}

func millis(ms float64) time.Duration {
	return time.Duration(ms * float64(time.Millisecond))
}
