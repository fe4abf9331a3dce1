// Package middleware implements the onion model middleware chain around the
// kdb+ cluster client's query path.
//
// Middleware wraps the call to the terminal query handler to add
// cross-cutting concerns (logging, timeout, rate limiting, retry) without
// modifying conn.Conn or the payload codec themselves.
//
// Onion model execution order:
//
//	Chain(A, B, C)(handler)  →  A(B(C(handler)))
//
//	Request:   A.before → B.before → C.before → handler
//	Response:  handler → C.after → B.after → A.after
//
// Each middleware can:
//   - Do pre-processing (before calling next)
//   - Call next(ctx, req) to pass to the next layer
//   - Do post-processing (after next returns)
//   - Short-circuit by returning early without calling next (e.g., rate limiting)
package middleware

import (
	"context"

	"kdbclient/payload"
)

// QueryRequest is what a middleware sees of the outbound query: which
// cluster it targets and the query text to send.
type QueryRequest struct {
	Cluster string
	Text    string
}

// QueryResult is the envelope every middleware layer reads and may rewrite.
// Value holds the decoded response on success; Error carries the failure
// reason as a string so layers like retry can classify it without caring
// which package produced it.
type QueryResult struct {
	Value *payload.Value
	Error string
}

// HandlerFunc is the function signature for query handlers. Both the
// terminal handler (the one that actually dials/queries a host) and every
// middleware-wrapped handler share this signature.
type HandlerFunc func(ctx context.Context, req *QueryRequest) *QueryResult

// Middleware takes a handler and returns a new handler that wraps it.
// This is the decorator pattern — each middleware adds behavior around the next handler.
type Middleware func(next HandlerFunc) HandlerFunc

// Chain composes multiple middlewares into a single middleware.
// It builds the chain from right to left so that the first middleware in the list
// is the outermost layer (executed first on request, last on response).
//
// Example:
//
//	chain := Chain(Logging, Timeout, RateLimit)
//	handler := chain(queryHandler)
//	// Execution: Logging → Timeout → RateLimit → queryHandler → RateLimit → Timeout → Logging
func Chain(middlewares ...Middleware) Middleware {
	return func(next HandlerFunc) HandlerFunc {
		// Build from right to left: wrap innermost first
		for i := len(middlewares) - 1; i >= 0; i-- {
			next = middlewares[i](next)
		}
		return next
	}
}
