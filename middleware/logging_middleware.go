package middleware

import (
	"context"
	"log"
	"time"
)

// LoggingMiddleware records the target cluster, duration, and any errors for
// each query. It captures the start time before calling next, and logs the
// elapsed time after next returns.
//
// Example output:
//
//	Cluster: hdb, Duration: 1.2ms
//	Error: connection refused
func LoggingMiddleware() Middleware {
	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, req *QueryRequest) *QueryResult {
			start := time.Now()

			// Call the next handler in the chain
			result := next(ctx, req)

			// Post-processing: log duration and errors
			duration := time.Since(start)
			log.Printf("Cluster: %s, Duration: %s", req.Cluster, duration)
			if result.Error != "" {
				log.Printf("Error: %s", result.Error)
			}
			return result
		}
	}
}
