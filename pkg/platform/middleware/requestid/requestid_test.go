package requestid

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"relief/pkg/requestcontext"
)

func serve(t *testing.T, inbound string) (ctxID string, rec *httptest.ResponseRecorder) {
	t.Helper()
	h := Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctxID = requestcontext.RequestID(r.Context())
	}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if inbound != "" {
		req.Header.Set(Header, inbound)
	}
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return ctxID, rec
}

func TestMiddleware(t *testing.T) {
	t.Run("keeps inbound id", func(t *testing.T) {
		got, rec := serve(t, "req-123")
		assert.Equal(t, "req-123", got)
		assert.Equal(t, "req-123", rec.Header().Get(Header))
	})

	t.Run("mints uuid when absent", func(t *testing.T) {
		got, rec := serve(t, "")
		_, err := uuid.Parse(got)
		require.NoError(t, err)
		assert.Equal(t, got, rec.Header().Get(Header))
	})

	t.Run("replaces oversized id", func(t *testing.T) {
		got, _ := serve(t, strings.Repeat("x", 65))
		_, err := uuid.Parse(got)
		require.NoError(t, err)
	})
}
