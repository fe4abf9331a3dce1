package middleware

import (
	"context"
	"time"
)

// TimeOutMiddleware enforces a maximum duration for each query. If the
// handler doesn't complete within the timeout, it returns an error
// immediately.
//
// Implementation:
//  1. Create a context with timeout (ctx.Done() fires when timeout expires)
//  2. Run the next handler in a goroutine, sending its result to a channel
//  3. Select between the result channel and ctx.Done()
//
// Note: the handler goroutine is NOT cancelled — it continues running in the
// background. The timeout only controls when the caller gives up waiting.
// conn.Conn.Query does honor ctx's deadline on the underlying net.Conn, so in
// practice the goroutine unwinds once the deadline trips there too.
func TimeOutMiddleware(timeout time.Duration) Middleware {
	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, req *QueryRequest) *QueryResult {
			ctx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()

			// Run handler in a goroutine so we can race it against the timeout
			done := make(chan *QueryResult, 1) // Buffered: prevent goroutine leak if timeout fires
			go func() {
				done <- next(ctx, req)
			}()

			select {
			case result := <-done:
				return result // Handler completed before timeout
			case <-ctx.Done():
				return &QueryResult{Error: "request timed out"}
			}
		}
	}
}
