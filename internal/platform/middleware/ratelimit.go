package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"

	"relief/internal/platform/metrics"
	"relief/pkg/platform/audit"
	"relief/pkg/platform/circuit"
	"relief/pkg/platform/httputil"
	"relief/pkg/requestcontext"
)

// Decision is the outcome of one rate limit check.
type Decision struct {
	Allowed    bool
	Limit      int
	Remaining  int
	RetryAfter time.Duration
}

// Limiter checks one request against the quota of key.
type Limiter interface {
	Allow(ctx context.Context, key string) (Decision, error)
}

// SecurityEmitter receives rate_limit_exceeded events.
type SecurityEmitter interface {
	Emit(ctx context.Context, event audit.Event)
}

const redisKeyPrefix = "relief:ratelimit:"

// RedisLimiter is a fixed window counter shared by every replica.
type RedisLimiter struct {
	client *redis.Client
	limit  int
	window time.Duration
}

func NewRedisLimiter(client *redis.Client, limit int, window time.Duration) *RedisLimiter {
	return &RedisLimiter{client: client, limit: limit, window: window}
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) (Decision, error) {
	windowStart := time.Now().Truncate(l.window)
	redisKey := fmt.Sprintf("%s%s:%d", redisKeyPrefix, key, windowStart.Unix())

	pipe := l.client.TxPipeline()
	incr := pipe.Incr(ctx, redisKey)
	pipe.Expire(ctx, redisKey, l.window)
	if _, err := pipe.Exec(ctx); err != nil {
		return Decision{}, fmt.Errorf("rate limit counter: %w", err)
	}

	count := int(incr.Val())
	d := Decision{Limit: l.limit, Remaining: max(l.limit-count, 0), Allowed: count <= l.limit}
	if !d.Allowed {
		d.RetryAfter = time.Until(windowStart.Add(l.window))
	}
	return d, nil
}

// LocalLimiter keeps a token bucket per key in process memory. It is the
// fallback while Redis is unreachable, so quotas are per replica.
type LocalLimiter struct {
	limiters sync.Map // map[string]*localEntry
	rps      float64
	burst    int
}

type localEntry struct {
	limiter    *rate.Limiter
	mu         sync.Mutex
	lastAccess time.Time
}

func NewLocalLimiter(rps float64, burst int) *LocalLimiter {
	return &LocalLimiter{rps: rps, burst: burst}
}

func (l *LocalLimiter) Allow(_ context.Context, key string) (Decision, error) {
	limiter := l.get(key)
	d := Decision{Limit: l.burst}
	if limiter.Allow() {
		d.Allowed = true
		d.Remaining = int(math.Max(0, limiter.Tokens()))
		return d, nil
	}
	reservation := limiter.Reserve()
	d.RetryAfter = reservation.Delay()
	reservation.Cancel()
	return d, nil
}

func (l *LocalLimiter) get(key string) *rate.Limiter {
	now := time.Now()
	if val, ok := l.limiters.Load(key); ok {
		entry := val.(*localEntry)
		entry.mu.Lock()
		entry.lastAccess = now
		entry.mu.Unlock()
		return entry.limiter
	}
	entry := &localEntry{limiter: rate.NewLimiter(rate.Limit(l.rps), l.burst), lastAccess: now}
	actual, _ := l.limiters.LoadOrStore(key, entry)
	return actual.(*localEntry).limiter
}

// Cleanup drops buckets idle for longer than idle, every interval, until ctx ends.
func (l *LocalLimiter) Cleanup(ctx context.Context, interval, idle time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.sweep(time.Now().Add(-idle))
		}
	}
}

func (l *LocalLimiter) sweep(threshold time.Time) {
	l.limiters.Range(func(key, value any) bool {
		entry := value.(*localEntry)
		entry.mu.Lock()
		stale := entry.lastAccess.Before(threshold)
		entry.mu.Unlock()
		if stale {
			l.limiters.Delete(key)
		}
		return true
	})
}

// RateLimiter prefers the primary limiter and switches to the fallback while
// the breaker is open. The primary keeps being probed so it can recover.
type RateLimiter struct {
	primary  Limiter
	fallback Limiter
	breaker  *circuit.Breaker
	logger   *slog.Logger
	metrics  *metrics.Metrics
	security SecurityEmitter
	disabled bool
}

type RateLimitOption func(*RateLimiter)

func WithRateLimitMetrics(m *metrics.Metrics) RateLimitOption {
	return func(rl *RateLimiter) { rl.metrics = m }
}

func WithSecurityEmitter(e SecurityEmitter) RateLimitOption {
	return func(rl *RateLimiter) { rl.security = e }
}

// WithDisabled turns the middleware into a pass-through.
func WithDisabled(disabled bool) RateLimitOption {
	return func(rl *RateLimiter) { rl.disabled = disabled }
}

// NewRateLimiter builds the middleware. primary may be nil when Redis is not
// configured; the fallback then serves every request.
func NewRateLimiter(primary, fallback Limiter, breaker *circuit.Breaker, logger *slog.Logger, opts ...RateLimitOption) *RateLimiter {
	rl := &RateLimiter{
		primary:  primary,
		fallback: fallback,
		breaker:  breaker,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(rl)
	}
	if rl.breaker == nil {
		rl.breaker = circuit.New("ratelimit")
	}
	if rl.disabled {
		logger.Info("rate limiting disabled")
	}
	return rl
}

// Middleware limits by authenticated caller, falling back to client IP.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if rl.disabled {
			next.ServeHTTP(w, r)
			return
		}

		ctx := r.Context()
		key := rateLimitKey(ctx)
		d, backend, err := rl.check(ctx, key)
		if err != nil {
			// Both limiters failed; serving beats refusing every caller.
			rl.logger.ErrorContext(ctx, "rate limit check failed",
				"error", err,
				"request_id", requestcontext.RequestID(ctx),
			)
			rl.metrics.IncrementRateLimitDecision("fail_open", backend)
			next.ServeHTTP(w, r)
			return
		}

		if backend == "fallback" {
			w.Header().Set("X-RateLimit-Status", "degraded")
		}
		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(d.Limit))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(d.Remaining))

		if !d.Allowed {
			rl.metrics.IncrementRateLimitDecision("rejected", backend)
			rl.reject(w, r, key, d)
			return
		}
		rl.metrics.IncrementRateLimitDecision("allowed", backend)
		next.ServeHTTP(w, r)
	})
}

func (rl *RateLimiter) check(ctx context.Context, key string) (Decision, string, error) {
	if rl.primary == nil {
		d, err := rl.fallback.Allow(ctx, key)
		return d, "fallback", err
	}

	d, err := rl.primary.Allow(ctx, key)
	if err != nil {
		useFallback, change := rl.breaker.RecordFailure()
		if change.Opened {
			rl.logger.WarnContext(ctx, "rate limiter circuit opened, using in-memory fallback",
				"breaker", rl.breaker.Name(),
				"error", err,
			)
			rl.metrics.SetRateLimitDegraded(true)
		}
		if !useFallback {
			return Decision{}, "primary", err
		}
		fd, ferr := rl.fallback.Allow(ctx, key)
		return fd, "fallback", ferr
	}

	usePrimary, change := rl.breaker.RecordSuccess()
	if change.Closed {
		rl.logger.InfoContext(ctx, "rate limiter circuit closed, primary restored", "breaker", rl.breaker.Name())
		rl.metrics.SetRateLimitDegraded(false)
	}
	if !usePrimary {
		fd, ferr := rl.fallback.Allow(ctx, key)
		return fd, "fallback", ferr
	}
	return d, "primary", nil
}

func (rl *RateLimiter) reject(w http.ResponseWriter, r *http.Request, key string, d Decision) {
	ctx := r.Context()
	retryAfter := int(math.Ceil(d.RetryAfter.Seconds()))
	if retryAfter < 1 {
		retryAfter = 1
	}

	rl.logger.WarnContext(ctx, "rate limit exceeded",
		"key", key,
		"retry_after", retryAfter,
		"request_id", requestcontext.RequestID(ctx),
	)
	if rl.security != nil {
		rl.security.Emit(ctx, audit.Event{
			Category:  audit.CategorySecurity,
			Timestamp: requestcontext.Now(ctx),
			Principal: requestcontext.Principal(ctx),
			Action:    string(audit.EventRateLimitExceeded),
			RequestID: requestcontext.RequestID(ctx),
			Data: map[string]string{
				"key":       key,
				"client_ip": requestcontext.ClientIP(ctx),
				"route":     r.URL.Path,
				"severity":  string(audit.SeverityWarning),
			},
		})
	}

	w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
	httputil.WriteJSON(w, http.StatusTooManyRequests, map[string]any{
		"error":       "rate_limited",
		"message":     "Too many requests. Please retry after the specified delay.",
		"retry_after": retryAfter,
	})
}

func rateLimitKey(ctx context.Context) string {
	if p := requestcontext.Principal(ctx); p != "" {
		return "principal:" + p.String()
	}
	return "ip:" + requestcontext.ClientIP(ctx)
}
