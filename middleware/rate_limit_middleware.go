package middleware

import (
	"context"

	"golang.org/x/time/rate"
)

// RateLimitMiddleware caps the outbound query rate using the token bucket
// algorithm. One bucket is shared by every query through the wrapped
// handler, whatever cluster it targets.
//
// Token bucket: tokens are added at rate r per second, up to a burst size.
// Each query consumes one token. If the bucket is empty, the query is
// rejected. Unlike a leaky bucket (constant drain rate), token bucket allows
// short bursts — more suitable for interactive kdb+ sessions that fire a
// handful of queries in quick succession and then go idle.
//
// CRITICAL: the limiter is created in the OUTER closure (once per middleware
// creation), NOT in the inner handler function. If created per-query, every
// query would get a fresh full bucket, defeating the entire purpose of rate
// limiting.
//
// Parameters:
//   - r: token refill rate (queries per second)
//   - burst: maximum bucket size (allows this many queries in a burst)
func RateLimitMiddleware(r float64, burst int) Middleware {
	limiter := rate.NewLimiter(rate.Limit(r), burst) // Shared across all queries
	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, req *QueryRequest) *QueryResult {
			if !limiter.Allow() {
				// No tokens available — reject immediately (short-circuit, don't call next)
				return &QueryResult{Error: "rate limit exceeded"}
			}
			return next(ctx, req)
		}
	}
}
