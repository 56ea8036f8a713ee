package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	goredis "github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"

	"relief/internal/beneficiary"
	"relief/internal/clock"
	"relief/internal/issuance/adapters"
	issuancemetrics "relief/internal/issuance/metrics"
	"relief/internal/issuance/models"
	"relief/internal/issuance/ports"
	"relief/internal/issuance/service"
	issuancestore "relief/internal/issuance/store"
	"relief/internal/ledger"
	"relief/internal/oracle"
	"relief/internal/platform/config"
	"relief/internal/platform/httpclient"
	"relief/internal/platform/kafka"
	"relief/internal/platform/postgres"
	"relief/internal/platform/redis"
	id "relief/pkg/domain"
	"relief/pkg/platform/audit"
	"relief/pkg/platform/audit/consumer"
	"relief/pkg/platform/audit/publishers/compliance"
	"relief/pkg/platform/audit/publishers/ops"
	"relief/pkg/platform/audit/publishers/security"
	auditmemory "relief/pkg/platform/audit/store/memory"
	auditpostgres "relief/pkg/platform/audit/store/postgres"
	"relief/pkg/platform/audit/worker"
)

const (
	rateLimitCleanupInterval = time.Minute
	rateLimitIdleTTL         = 10 * time.Minute
)

// backgroundJob is a named loop run alongside the HTTP server.
type backgroundJob struct {
	name string
	run  func(ctx context.Context) error
}

// app holds the assembled components and the resources they own.
type app struct {
	svc      *service.Service
	security *security.Publisher
	redis    *goredis.Client
	db       *sql.DB
	pool     *pgxpool.Pool
	jobs     []backgroundJob
	closers  []func()
	log      *slog.Logger
}

func (a *app) health(ctx context.Context) error {
	if a.db != nil {
		if err := a.db.PingContext(ctx); err != nil {
			return fmt.Errorf("postgres: %w", err)
		}
	}
	if a.pool != nil {
		if err := a.pool.Ping(ctx); err != nil {
			return fmt.Errorf("ledger pool: %w", err)
		}
	}
	if a.redis != nil {
		if err := a.redis.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis: %w", err)
		}
	}
	return nil
}

// close releases resources in reverse acquisition order.
func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

// backend is the storage-dependent half of the wiring.
type backend struct {
	tx         ports.StoreTx
	reads      ports.Store
	ledger     ports.TokenLedger
	auditStore audit.Store
}

func build(ctx context.Context, cfg *config.Config, log *slog.Logger, reg prometheus.Registerer) (*app, error) {
	a := &app{log: log}
	ok := false
	defer func() {
		if !ok {
			a.close()
		}
	}()

	admin, err := id.ParsePrincipal(cfg.Engine.Admin)
	if err != nil {
		return nil, fmt.Errorf("ENGINE_ADMIN: %w", err)
	}
	custodian, err := id.ParsePrincipal(cfg.Engine.Custodian)
	if err != nil {
		return nil, fmt.Errorf("ENGINE_CUSTODIAN: %w", err)
	}
	initial := models.NewEngineState(admin, cfg.Engine.MaxPerVictim, cfg.Engine.MinSeverity)

	rdb, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		return nil, err
	}
	if rdb != nil {
		a.redis = rdb
		a.closers = append(a.closers, func() { _ = rdb.Close() })
	}

	var be *backend
	switch cfg.Storage.Driver {
	case config.DriverPostgres:
		be, err = buildPostgres(ctx, cfg, a, initial, custodian)
	default:
		be, err = buildMemory(cfg, initial, custodian)
	}
	if err != nil {
		return nil, err
	}

	registry, disasters, err := buildUpstreams(cfg, a)
	if err != nil {
		return nil, err
	}

	securityPublisher := security.New(be.auditStore, security.WithLogger(log))
	a.security = securityPublisher
	a.closers = append(a.closers, func() { _ = securityPublisher.Close() })

	compliancePublisher := compliance.New(be.auditStore,
		compliance.WithLogger(log),
		compliance.WithMetrics(compliance.NewMetrics(reg)),
	)
	opsTracker := ops.New(be.auditStore,
		ops.WithLogger(log),
		ops.WithMetrics(ops.NewMetrics(reg)),
	)

	svc, err := service.New(be.tx, be.reads,
		service.Collaborators{
			Ledger:    be.ledger,
			Registry:  registry,
			Oracle:    disasters,
			Audit:     adapters.NewAuditAdapter(compliancePublisher),
			Clock:     clock.NewInterval(cfg.Clock.Genesis, cfg.Clock.Interval),
			Custodian: custodian,
		},
		service.WithLogger(log),
		service.WithMetrics(issuancemetrics.New(reg)),
		service.WithOpsTracker(opsTracker),
		service.WithSecurityEmitter(securityPublisher),
		service.WithTracer(otel.Tracer("relief/issuance")),
	)
	if err != nil {
		return nil, fmt.Errorf("create issuance service: %w", err)
	}
	a.svc = svc

	if len(cfg.Kafka.Brokers) > 0 {
		if err := buildKafka(ctx, cfg, a, reg); err != nil {
			return nil, err
		}
	}

	ok = true
	return a, nil
}

func buildMemory(cfg *config.Config, initial *models.EngineState, custodian id.Principal) (*backend, error) {
	store := issuancestore.NewInMemory(initial)
	return &backend{
		tx:         store,
		reads:      store,
		ledger:     ledger.NewInMemory(custodian, cfg.Engine.InitialFunds),
		auditStore: auditmemory.NewInMemoryStore(),
	}, nil
}

func buildPostgres(ctx context.Context, cfg *config.Config, a *app, initial *models.EngineState, custodian id.Principal) (*backend, error) {
	db, err := postgres.Open(ctx, cfg.Storage)
	if err != nil {
		return nil, err
	}
	a.db = db
	a.closers = append(a.closers, func() { _ = db.Close() })

	pool, err := postgres.OpenPool(ctx, cfg.Storage)
	if err != nil {
		return nil, err
	}
	a.pool = pool
	a.closers = append(a.closers, pool.Close)

	reads := issuancestore.NewPostgres(db)
	if err := reads.EnsureState(ctx, initial); err != nil {
		return nil, err
	}

	l := ledger.NewPostgres(pool, custodian)
	balance, err := l.Balance(ctx, custodian)
	if err != nil {
		return nil, err
	}
	if balance == 0 && cfg.Engine.InitialFunds > 0 {
		if err := l.Fund(ctx, cfg.Engine.InitialFunds); err != nil {
			return nil, fmt.Errorf("seed custodian funds: %w", err)
		}
		a.log.Info("custodian funded at boot", "custodian", custodian, "amount", cfg.Engine.InitialFunds)
	}

	return &backend{
		tx:         newIssuancePostgresTx(db, cfg.Server.TxTimeout),
		reads:      reads,
		ledger:     l,
		auditStore: auditpostgres.New(db),
	}, nil
}

// buildUpstreams picks HTTP collaborators when their URLs are configured and
// seeded in-memory ones otherwise.
func buildUpstreams(cfg *config.Config, a *app) (ports.BeneficiaryRegistry, ports.EventOracle, error) {
	client := httpclient.New(cfg.Upstreams.Timeout)

	var registry ports.BeneficiaryRegistry
	if cfg.Upstreams.RegistryURL != "" {
		registry = beneficiary.NewCached(
			beneficiary.NewHTTPRegistry(cfg.Upstreams.RegistryURL, client),
			cfg.Engine.VerificationTTL,
		)
	} else {
		verified := make([]id.Principal, 0, len(cfg.Upstreams.SeedVerified))
		for _, raw := range cfg.Upstreams.SeedVerified {
			p, err := id.ParsePrincipal(raw)
			if err != nil {
				return nil, nil, fmt.Errorf("SEED_VERIFIED_BENEFICIARIES: %w", err)
			}
			verified = append(verified, p)
		}
		registry = beneficiary.NewInMemory(verified...)
	}

	var disasters ports.EventOracle
	if cfg.Upstreams.OracleURL != "" {
		disasters = oracle.NewHTTPOracle(cfg.Upstreams.OracleURL, client)
		if a.redis != nil {
			disasters = oracle.NewRedisCache(disasters, a.redis, cfg.Redis.OracleTTL, a.log)
		}
	} else {
		mem := oracle.NewInMemory()
		for _, entry := range cfg.Upstreams.SeedDisasters {
			disasterID, severity, err := parseSeedDisaster(entry)
			if err != nil {
				return nil, nil, err
			}
			mem.Declare(disasterID, severity, 0)
		}
		disasters = mem
	}
	return registry, disasters, nil
}

// parseSeedDisaster reads one "<disasterID>:<severity>" entry.
func parseSeedDisaster(entry string) (id.DisasterID, uint64, error) {
	rawID, rawSeverity, found := strings.Cut(entry, ":")
	if !found {
		return 0, 0, fmt.Errorf("SEED_DISASTERS: entry %q must be <id>:<severity>", entry)
	}
	disasterID, err := id.ParseDisasterID(rawID)
	if err != nil {
		return 0, 0, fmt.Errorf("SEED_DISASTERS: %w", err)
	}
	severity, err := strconv.ParseUint(rawSeverity, 10, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("SEED_DISASTERS: severity in %q: %w", entry, err)
	}
	return disasterID, severity, nil
}

// buildKafka wires the outbox relay and the audit materializer. Both need the
// postgres audit store, which config validation guarantees.
func buildKafka(ctx context.Context, cfg *config.Config, a *app, reg prometheus.Registerer) error {
	producer, err := kafka.NewProducer(cfg.Kafka)
	if err != nil {
		return err
	}
	a.closers = append(a.closers, producer.Close)
	if err := kafka.EnsureTopic(ctx, producer, cfg.Kafka); err != nil {
		return err
	}

	consumerClient, err := kafka.NewConsumer(cfg.Kafka)
	if err != nil {
		return err
	}
	a.closers = append(a.closers, consumerClient.Close)

	store := auditpostgres.New(a.db)
	relay := worker.NewRelay(store, producer, cfg.Kafka.Topic, a.log,
		worker.WithPollInterval(cfg.Kafka.PollInterval),
		worker.WithMetrics(worker.NewMetrics(reg)),
	)
	materializer := consumer.NewMaterializer(consumerClient, store, a.log)

	a.jobs = append(a.jobs,
		backgroundJob{name: "outbox-relay", run: relay.Run},
		backgroundJob{name: "audit-materializer", run: materializer.Run},
	)
	return nil
}
