package main

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	issuancehandler "relief/internal/issuance/handler"
	jwttoken "relief/internal/jwt_token"
	"relief/internal/platform/config"
	id "relief/pkg/domain"
	"relief/pkg/testutil"
)

const testSigningKey = "test-signing-key"

func memoryConfig() *config.Config {
	return &config.Config{
		Server:  config.Server{TxTimeout: time.Second},
		Storage: config.Storage{Driver: config.DriverMemory},
		Auth:    config.Auth{JWTSigningKey: testSigningKey, JWTIssuer: "relief", JWTAudience: "relief-api"},
		Engine: config.Engine{
			Admin:           "relief.admin",
			Custodian:       "relief.custodian",
			MaxPerVictim:    1000,
			MinSeverity:     3,
			InitialFunds:    10_000,
			VerificationTTL: time.Minute,
		},
		Clock:      config.Clock{Genesis: time.Unix(0, 0).UTC(), Interval: time.Minute},
		RateLimit:  config.RateLimit{Enabled: false, FallbackRPS: 10, FallbackBurst: 10},
		Upstreams:  config.Upstreams{SeedVerified: []string{"victim.one"}, SeedDisasters: []string{"1:5", "2:1"}},
		MetricsKey: "metrics-token",
	}
}

func bearer(t *testing.T, cfg *config.Config, principal string) string {
	t.Helper()
	svc := jwttoken.NewJWTService(cfg.Auth.JWTSigningKey, cfg.Auth.JWTIssuer, cfg.Auth.JWTAudience)
	token, err := svc.GenerateAccessToken(id.Principal(principal), time.Hour)
	require.NoError(t, err)
	return "Bearer " + token
}

func newTestRouter(t *testing.T, cfg *config.Config) http.Handler {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	reg := prometheus.NewRegistry()
	a, err := build(context.Background(), cfg, log, reg)
	require.NoError(t, err)
	t.Cleanup(a.close)
	return newRouter(cfg, log, reg, a)
}

func TestMemoryStackIssuesVoucher(t *testing.T) {
	cfg := memoryConfig()
	router := newTestRouter(t, cfg)
	admin := bearer(t, cfg, "relief.admin")

	testutil.Given(t, "an allocation rule for a seeded disaster", func(t *testing.T) {
		req := testutil.NewJSONRequest(t, http.MethodPut, "/v1/rules/1", map[string]uint64{
			"base_amount":         100,
			"severity_multiplier": 20,
			"max_victims":         10,
			"funds_allocated":     5000,
		})
		req.Header.Set("Authorization", admin)
		testutil.AssertStatusOK(t, testutil.DoRequest(router, req))
	})

	testutil.When(t, "the admin issues to a verified victim", func(t *testing.T) {
		req := testutil.NewRequestWithBody(t, http.MethodPost, "/v1/vouchers",
			`{"recipient":"victim.one","disaster_id":1,"metadata":"c2hlbHRlci00"}`)
		req.Header.Set("Authorization", admin)
		rec := testutil.DoRequest(router, req)
		testutil.AssertStatus(t, rec, http.StatusCreated)
		body := testutil.UnmarshalResponse[issuancehandler.IssueVoucherResponse](t, rec)
		assert.Equal(t, uint64(200), body.Amount)
		assert.Equal(t, uint64(1), body.VoucherID)
	})

	testutil.Then(t, "a second claim is rejected and totals reflect one voucher", func(t *testing.T) {
		req := testutil.NewRequestWithBody(t, http.MethodPost, "/v1/vouchers",
			`{"recipient":"victim.one","disaster_id":1}`)
		req.Header.Set("Authorization", admin)
		testutil.AssertStatusAndError(t, testutil.DoRequest(router, req), http.StatusConflict, "already_claimed")

		rec := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/v1/state"))
		testutil.AssertStatusOK(t, rec)
		state := testutil.UnmarshalResponse[issuancehandler.StateResponse](t, rec)
		assert.Equal(t, uint64(200), state.TotalIssued)
		assert.Equal(t, uint64(2), state.NextVoucherID)
	})
}

func TestMemoryStackRejections(t *testing.T) {
	cfg := memoryConfig()
	router := newTestRouter(t, cfg)

	t.Run("severity below threshold", func(t *testing.T) {
		req := testutil.NewRequestWithBody(t, http.MethodPost, "/v1/vouchers", `{"recipient":"victim.one","disaster_id":2}`)
		req.Header.Set("Authorization", bearer(t, cfg, "relief.admin"))
		testutil.AssertStatusAndError(t, testutil.DoRequest(router, req), http.StatusUnprocessableEntity, "disaster_inactive")
	})

	t.Run("caller without a role", func(t *testing.T) {
		req := testutil.NewRequestWithBody(t, http.MethodPost, "/v1/vouchers", `{"recipient":"victim.one","disaster_id":1}`)
		req.Header.Set("Authorization", bearer(t, cfg, "stranger"))
		testutil.AssertStatusAndError(t, testutil.DoRequest(router, req), http.StatusForbidden, "unauthorized")
	})

	t.Run("missing bearer token", func(t *testing.T) {
		req := testutil.NewRequestWithBody(t, http.MethodPost, "/v1/vouchers", `{"recipient":"victim.one","disaster_id":1}`)
		testutil.AssertStatusAndError(t, testutil.DoRequest(router, req), http.StatusUnauthorized, "unauthenticated")
	})
}

func TestOperationalEndpoints(t *testing.T) {
	cfg := memoryConfig()
	router := newTestRouter(t, cfg)

	rec := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/healthz"))
	testutil.AssertStatusOK(t, rec)
	testutil.AssertJSONContains(t, rec, "status", "ok")

	rec = testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/metrics"))
	testutil.AssertStatus(t, rec, http.StatusUnauthorized)

	req := testutil.NewRequest(t, http.MethodGet, "/metrics")
	req.Header.Set("X-Admin-Token", cfg.MetricsKey)
	rec = testutil.DoRequest(router, req)
	testutil.AssertStatusOK(t, rec)
	assert.Contains(t, rec.Body.String(), "go_goroutines")

	rec = testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/v1/state"))
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
	testutil.AssertJSONHasKey(t, rec, "height")
}

func TestBuildRejectsBadSeeds(t *testing.T) {
	cfg := memoryConfig()
	cfg.Upstreams.SeedDisasters = []string{"1-5"}
	_, err := build(context.Background(), cfg, slog.New(slog.NewTextHandler(io.Discard, nil)), prometheus.NewRegistry())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SEED_DISASTERS")
}

func TestParseSeedDisaster(t *testing.T) {
	tests := []struct {
		entry    string
		id       id.DisasterID
		severity uint64
		wantErr  bool
	}{
		{entry: "1:5", id: 1, severity: 5},
		{entry: "18446744073709551615:0", id: id.DisasterID(^uint64(0)), severity: 0},
		{entry: "1", wantErr: true},
		{entry: "x:5", wantErr: true},
		{entry: "1:-2", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.entry, func(t *testing.T) {
			got, severity, err := parseSeedDisaster(tt.entry)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.id, got)
			assert.Equal(t, tt.severity, severity)
		})
	}
}
