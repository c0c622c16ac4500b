package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

// HeaderCorrelationID is the header callers set to tie a request to their
// own traces. The pipeline logs it on every request so an event published
// through the ingress can be followed from the caller's logs into ours.
const HeaderCorrelationID = "X-Correlation-ID"

type ctxKey int

const correlationKey ctxKey = iota

// CorrelationID propagates the caller's correlation ID, minting a fresh
// UUID when the header is missing. The ID is echoed on the response so
// callers that did not send one still get a handle to quote in reports.
func CorrelationID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(HeaderCorrelationID)
		if id == "" {
			id = uuid.New().String()
		}
		w.Header().Set(HeaderCorrelationID, id)
		next.ServeHTTP(w, r.WithContext(
			context.WithValue(r.Context(), correlationKey, id),
		))
	})
}

// CorrelationIDFrom returns the request's correlation ID, or "" when the
// middleware did not run (direct handler tests, background jobs).
func CorrelationIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(correlationKey).(string)
	return id
}
