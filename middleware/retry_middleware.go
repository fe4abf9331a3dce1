package middleware

import (
	"context"
	"log"
	"strings"
	"time"
)

// RetryMiddleware re-issues a query on transient network errors (connection
// refused, timeout, broken pipe) with exponential backoff. Query errors
// returned by the kdb+ process itself (a 'type or 'length signal) are not
// network errors and are never retried — retrying a bad query just gets the
// same error back.
func RetryMiddleware(maxRetries int, baseDelay time.Duration) Middleware {
	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, req *QueryRequest) *QueryResult {
			result := next(ctx, req)
			for i := 0; i < maxRetries; i++ {
				if result.Error == "" {
					return result // Success, return response
				}
				if isTransient(result.Error) {
					log.Printf("Retry attempt %d for cluster %s due to error: %s", i+1, req.Cluster, result.Error)
					time.Sleep(baseDelay * time.Duration(1<<i)) // Exponential backoff
					result = next(ctx, req)                     // Retry the request
				} else {
					return result // Non-retryable error, return immediately
				}
			}
			return result // Return last response after retries
		}
	}
}

func isTransient(errMsg string) bool {
	for _, substr := range []string{"timeout", "connection refused", "broken pipe", "connection reset", "EOF"} {
		if strings.Contains(errMsg, substr) {
			return true
		}
	}
	return false
}
