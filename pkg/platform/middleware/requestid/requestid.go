// Package requestid tags each request with an id carried through logs and
// audit events.
package requestid

import (
	"net/http"

	"github.com/google/uuid"

	"relief/pkg/requestcontext"
)

// Header is echoed back on every response.
const Header = "X-Request-ID"

const maxInboundLength = 64

// Middleware reuses a sane inbound X-Request-ID or mints a new UUID.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := r.Header.Get(Header)
		if reqID == "" || len(reqID) > maxInboundLength {
			reqID = uuid.NewString()
		}
		w.Header().Set(Header, reqID)
		ctx := requestcontext.WithRequestID(r.Context(), reqID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
