package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/sync/errgroup"

	issuancehandler "relief/internal/issuance/handler"
	jwttoken "relief/internal/jwt_token"
	"relief/internal/platform/config"
	"relief/internal/platform/httpserver"
	"relief/internal/platform/logger"
	"relief/internal/platform/metrics"
	platformmw "relief/internal/platform/middleware"
	"relief/internal/platform/tracing"
	"relief/pkg/platform/circuit"
	"relief/pkg/platform/httputil"
	"relief/pkg/platform/middleware/admin"
	"relief/pkg/platform/middleware/auth"
	"relief/pkg/platform/middleware/metadata"
	"relief/pkg/platform/middleware/requestid"
	"relief/pkg/platform/middleware/requesttime"
)

func runServer(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log := logger.New(cfg.Log.Level, cfg.Log.Format)

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := tracing.Setup(ctx, cfg.Tracing, "relief")
	if err != nil {
		return err
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := shutdownTracing(flushCtx); err != nil {
			log.Warn("failed to flush traces", "error", err)
		}
	}()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	a, err := build(ctx, cfg, log, reg)
	if err != nil {
		return err
	}
	defer a.close()

	router := newRouter(cfg, log, reg, a)
	srv := httpserver.New(cfg.Server.Addr, otelhttp.NewHandler(router, "relief.http"))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting relief", "addr", cfg.Server.Addr, "storage", cfg.Storage.Driver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(gctx), cfg.Server.ShutdownTimeout)
		defer cancel()
		log.Info("shutting down http server")
		return srv.Shutdown(shutdownCtx)
	})
	for _, job := range a.jobs {
		g.Go(func() error {
			log.Info("job started", "job", job.name)
			err := job.run(gctx)
			if err != nil && !errors.Is(err, context.Canceled) {
				return fmt.Errorf("%s: %w", job.name, err)
			}
			log.Info("job stopped", "job", job.name)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		log.Error("server stopped with error", "error", err)
		return err
	}
	log.Info("server stopped")
	return nil
}

func newRouter(cfg *config.Config, log *slog.Logger, reg *prometheus.Registry, a *app) http.Handler {
	httpMetrics := metrics.New(reg)

	var primary platformmw.Limiter
	if a.redis != nil {
		primary = platformmw.NewRedisLimiter(a.redis, cfg.RateLimit.RequestsPerWin, cfg.RateLimit.Window)
	}
	fallback := platformmw.NewLocalLimiter(cfg.RateLimit.FallbackRPS, cfg.RateLimit.FallbackBurst)
	a.jobs = append(a.jobs, backgroundJob{name: "ratelimit-cleanup", run: func(ctx context.Context) error {
		fallback.Cleanup(ctx, rateLimitCleanupInterval, rateLimitIdleTTL)
		return nil
	}})
	limiter := platformmw.NewRateLimiter(primary, fallback, circuit.New("ratelimit"), log,
		platformmw.WithRateLimitMetrics(httpMetrics),
		platformmw.WithSecurityEmitter(a.security),
		platformmw.WithDisabled(!cfg.RateLimit.Enabled),
	)

	jwtService := jwttoken.NewJWTService(cfg.Auth.JWTSigningKey, cfg.Auth.JWTIssuer, cfg.Auth.JWTAudience)
	requireAuth := auth.RequireAuth(jwttoken.NewJWTServiceAdapter(jwtService), log)

	r := chi.NewRouter()
	r.Use(requestid.Middleware)
	r.Use(requesttime.Middleware)
	r.Use(metadata.ClientMetadata)
	r.Use(platformmw.Recovery(log))
	r.Use(platformmw.AccessLog(log, httpMetrics))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if err := a.health(r.Context()); err != nil {
			log.WarnContext(r.Context(), "health check failed", "error", err)
			httputil.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.With(admin.RequireAdminToken(cfg.MetricsKey, log)).
		Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))

	issuancehandler.New(a.svc, log,
		issuancehandler.WithAuth(requireAuth),
		issuancehandler.WithRateLimit(limiter.Middleware),
	).Register(r)

	return r
}
