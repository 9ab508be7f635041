// Package app builds the object graph shared by the server and the operator
// CLI from a config.Config.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	audithandler "gdprkv/internal/audit/handler"
	"gdprkv/internal/audit/lock"
	auditmetrics "gdprkv/internal/audit/metrics"
	"gdprkv/internal/audit/publisher"
	"gdprkv/internal/audit/retention"
	auditservice "gdprkv/internal/audit/service"
	auditstore "gdprkv/internal/audit/store"
	"gdprkv/internal/platform/config"
	"gdprkv/internal/platform/kafka"
	"gdprkv/internal/platform/logger"
	platformmetrics "gdprkv/internal/platform/metrics"
	"gdprkv/internal/platform/postgres"
	platformredis "gdprkv/internal/platform/redis"
	"gdprkv/internal/platform/scheduler"
	"gdprkv/internal/policy/cache"
	policymodels "gdprkv/internal/policy/models"
	"gdprkv/internal/policy/seed"
	policystore "gdprkv/internal/policy/store"
	recordhandler "gdprkv/internal/record/handler"
	recordmetrics "gdprkv/internal/record/metrics"
	"gdprkv/internal/record/purge"
	recordservice "gdprkv/internal/record/service"
	recordstore "gdprkv/internal/record/store"
	subjecthandler "gdprkv/internal/subject/handler"
	subjectmetrics "gdprkv/internal/subject/metrics"
	subjectservice "gdprkv/internal/subject/service"
	subjectstore "gdprkv/internal/subject/store"
	httptransport "gdprkv/internal/transport/http"
	"gdprkv/pkg/platform/circuit"
	"gdprkv/pkg/platform/tx"
)

// Scheduled job names.
const (
	JobPurgeSweeper   = "purge-sweeper"
	JobAuditRetention = "audit-retention"
)

type auditStore interface {
	auditservice.Store
	retention.Store
	ListSubjects(ctx context.Context) ([]string, error)
}

type recordStore interface {
	recordservice.Store
	purge.Store
}

type subjectStore interface {
	subjectservice.Store
	recordservice.SubjectChecker
}

type policyStore interface {
	seed.Upserter
	FindByPurpose(ctx context.Context, purpose string) (*policymodels.Policy, error)
}

// App holds the wired services. Close releases every connection it opened.
type App struct {
	Audit     *auditservice.Chain
	Records   *recordservice.Lifecycle
	Subjects  *subjectservice.Service
	Sweeper   *purge.Sweeper
	Retention *retention.Job

	cfg         config.Config
	logger      *slog.Logger
	clock       func() time.Time
	registry    *prometheus.Registry
	httpMetrics *platformmetrics.Metrics

	db       *sql.DB
	redis    *platformredis.Client
	producer *kafka.Producer
	audit    auditStore
}

type Option func(*App)

func WithLogger(logger *slog.Logger) Option {
	return func(a *App) {
		a.logger = logger
	}
}

// WithClock pins every service to clock instead of the per-request time.
func WithClock(clock func() time.Time) Option {
	return func(a *App) {
		a.clock = clock
	}
}

func WithRegistry(reg *prometheus.Registry) Option {
	return func(a *App) {
		a.registry = reg
	}
}

// New connects the configured backends and builds the services. Without a
// database URL every store is in memory; without Redis the audit lock is
// process-local and policies are read uncached; without brokers events are
// not published.
func New(ctx context.Context, cfg config.Config, opts ...Option) (_ *App, err error) {
	a := &App{cfg: cfg}
	for _, opt := range opts {
		opt(a)
	}
	if a.logger == nil {
		a.logger = logger.Discard()
	}
	if a.registry == nil {
		a.registry = prometheus.NewRegistry()
		a.registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}
	defer func() {
		if err != nil {
			_ = a.Close()
		}
	}()

	var (
		records  recordStore
		subjects subjectStore
		policies policyStore
		txRunner seed.TxRunner
	)
	if cfg.Database.URL != "" {
		a.db, err = postgres.Open(ctx, cfg.Database)
		if err != nil {
			return nil, err
		}
		if cfg.Database.Migrate {
			if err := postgres.RunMigrations(a.db); err != nil {
				return nil, err
			}
		}
		a.audit = auditstore.NewPostgres(a.db)
		records = recordstore.NewPostgres(a.db)
		subjects = subjectstore.NewPostgres(a.db)
		policies = policystore.NewPostgres(a.db)
		txRunner = tx.NewRunner(a.db)
	} else {
		a.logger.WarnContext(ctx, "no database configured, using in-memory stores")
		a.audit = auditstore.NewInMemory()
		records = recordstore.NewInMemory()
		subjects = subjectstore.NewInMemory()
		policies = policystore.NewInMemory()
	}

	seeded, err := seed.Load(cfg.PolicyFile)
	if err != nil {
		return nil, fmt.Errorf("load policies: %w", err)
	}
	if err := seed.Apply(ctx, policies, txRunner, seeded, a.now()); err != nil {
		return nil, err
	}

	var (
		locker auditservice.Locker = lock.NewSharded()
		lookup recordservice.PolicyLookup = policies
	)
	a.redis, err = platformredis.New(ctx, cfg.Redis)
	if err != nil {
		return nil, err
	}
	if a.redis != nil {
		locker = lock.NewRedis(a.redis.Client, lock.WithTTL(cfg.Redis.AuditLockTTL), lock.WithLogger(a.logger))
		lookup = cache.NewCachedLookup(policies, a.redis.Client, cfg.Redis.PolicyCacheTTL, a.logger)
	}

	a.producer, err = kafka.NewProducer(ctx, cfg.Kafka)
	if err != nil {
		return nil, err
	}

	auditMetrics := auditmetrics.New(a.registry)
	recordMetrics := recordmetrics.New(a.registry)
	subjectMetrics := subjectmetrics.New(a.registry)
	a.httpMetrics = platformmetrics.New(a.registry)

	chainOpts := []auditservice.Option{
		auditservice.WithLogger(a.logger),
		auditservice.WithLocker(locker),
		auditservice.WithMetrics(auditMetrics),
	}
	if a.producer != nil {
		if err := a.producer.EnsureTopic(ctx, -1, -1); err != nil {
			return nil, err
		}
		guarded := publisher.NewGuarded(publisher.NewKafka(a.producer), circuit.New("kafka-audit"), a.logger)
		chainOpts = append(chainOpts, auditservice.WithPublisher(guarded))
	}
	recordOpts := []recordservice.Option{
		recordservice.WithLogger(a.logger),
		recordservice.WithMetrics(recordMetrics),
	}
	subjectOpts := []subjectservice.Option{
		subjectservice.WithLogger(a.logger),
		subjectservice.WithMetrics(subjectMetrics),
	}
	purgeOpts := []purge.Option{
		purge.WithLogger(a.logger),
		purge.WithMetrics(recordMetrics),
	}
	retentionOpts := []retention.Option{
		retention.WithLogger(a.logger),
		retention.WithMetrics(auditMetrics),
	}
	if a.clock != nil {
		chainOpts = append(chainOpts, auditservice.WithClock(a.clock))
		recordOpts = append(recordOpts, recordservice.WithClock(a.clock))
		subjectOpts = append(subjectOpts, subjectservice.WithClock(a.clock))
		purgeOpts = append(purgeOpts, purge.WithClock(a.clock))
		retentionOpts = append(retentionOpts, retention.WithClock(a.clock))
	}

	a.Audit = auditservice.New(a.audit, chainOpts...)
	a.Records = recordservice.New(records, subjects, lookup, recordOpts...)
	a.Subjects = subjectservice.New(subjects, a.Records, subjectOpts...)

	a.Sweeper, err = purge.New(records, a.Audit, cfg.PurgeSweeper.LookbackHours, purgeOpts...)
	if err != nil {
		return nil, err
	}
	a.Retention, err = retention.New(a.audit, cfg.AuditRetention.RetentionDays, retentionOpts...)
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (a *App) now() time.Time {
	if a.clock != nil {
		return a.clock()
	}
	return time.Now()
}

// AuditSubjects lists every subject that has audit events.
func (a *App) AuditSubjects(ctx context.Context) ([]string, error) {
	return a.audit.ListSubjects(ctx)
}

// Registry is the Prometheus registry every component registers with.
func (a *App) Registry() *prometheus.Registry {
	return a.registry
}

// Router builds the HTTP surface.
func (a *App) Router() http.Handler {
	return httptransport.NewRouter(httptransport.Deps{
		Logger:   a.logger,
		Metrics:  a.httpMetrics,
		Gatherer: a.registry,
		Clock:    a.clock,
		Handlers: []httptransport.Registrar{
			subjecthandler.New(a.Subjects, a.Audit, a.logger),
			recordhandler.New(a.Records, a.Audit, a.logger),
			audithandler.New(a.Audit, a.logger),
		},
		Ready: a.readyChecks(),
	})
}

func (a *App) readyChecks() map[string]httptransport.Check {
	checks := make(map[string]httptransport.Check)
	if a.db != nil {
		checks["postgres"] = a.db.PingContext
	}
	if a.redis != nil {
		checks["redis"] = a.redis.Health
	}
	if a.producer != nil {
		checks["kafka"] = a.producer.Health
	}
	return checks
}

// Schedule registers the enabled background jobs.
func (a *App) Schedule(s *scheduler.Scheduler) error {
	if a.cfg.PurgeSweeper.Enabled {
		err := s.Add(JobPurgeSweeper, a.cfg.PurgeSweeper.Schedule, func(ctx context.Context) error {
			_, err := a.Sweeper.Run(ctx)
			return err
		})
		if err != nil {
			return err
		}
	}
	if a.cfg.AuditRetention.Enabled {
		err := s.Add(JobAuditRetention, a.cfg.AuditRetention.Schedule, func(ctx context.Context) error {
			_, err := a.Retention.Run(ctx)
			return err
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func (a *App) Close() error {
	var errs []error
	if a.producer != nil {
		a.producer.Close()
	}
	if a.redis != nil {
		errs = append(errs, a.redis.Close())
	}
	if a.db != nil {
		errs = append(errs, a.db.Close())
	}
	return errors.Join(errs...)
}
