package auth

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "relief/pkg/domain"
	"relief/pkg/requestcontext"
)

type stubValidator struct {
	claims *JWTClaims
	err    error
}

func (s stubValidator) ValidateToken(string) (*JWTClaims, error) {
	return s.claims, s.err
}

func TestRequireAuth(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	var seen id.Principal
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = requestcontext.Principal(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})

	tests := []struct {
		name      string
		header    string
		validator stubValidator
		status    int
		principal id.Principal
	}{
		{
			name:      "valid token sets the caller",
			header:    "Bearer good",
			validator: stubValidator{claims: &JWTClaims{Subject: "relief.admin"}},
			status:    http.StatusNoContent,
			principal: "relief.admin",
		},
		{
			name:   "missing header",
			status: http.StatusUnauthorized,
		},
		{
			name:   "wrong scheme",
			header: "Basic abc",
			status: http.StatusUnauthorized,
		},
		{
			name:      "validator rejects",
			header:    "Bearer bad",
			validator: stubValidator{err: errors.New("expired")},
			status:    http.StatusUnauthorized,
		},
		{
			name:      "malformed subject",
			header:    "Bearer good",
			validator: stubValidator{claims: &JWTClaims{Subject: "has space"}},
			status:    http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen = ""
			req := httptest.NewRequest(http.MethodGet, "/v1/state", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()

			RequireAuth(tt.validator, logger)(next).ServeHTTP(rec, req)

			require.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.principal, seen)
			if tt.status == http.StatusUnauthorized {
				assert.JSONEq(t, `{"error":"unauthenticated","error_description":"`+descriptionFor(tt.header)+`"}`, rec.Body.String())
			}
		})
	}
}

func descriptionFor(header string) string {
	if header == "" || header == "Basic abc" {
		return "Missing or invalid Authorization header"
	}
	return "Invalid or expired token"
}
