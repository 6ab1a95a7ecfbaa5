// Package app wires stores, services and handlers into a runnable service.
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
	"golang.org/x/sync/errgroup"

	accounthandler "duediligence/internal/account/handler"
	accountservice "duediligence/internal/account/service"
	accountstore "duediligence/internal/account/store"
	checklisthandler "duediligence/internal/checklist/handler"
	checklistmetrics "duediligence/internal/checklist/metrics"
	checklistservice "duediligence/internal/checklist/service"
	"duediligence/internal/checklist/store/instance"
	"duediligence/internal/checklist/store/template"
	jwttoken "duediligence/internal/jwt_token"
	onboardinghandler "duediligence/internal/onboarding/handler"
	onboardingmetrics "duediligence/internal/onboarding/metrics"
	onboardingservice "duediligence/internal/onboarding/service"
	onboardingstore "duediligence/internal/onboarding/store"
	"duediligence/internal/platform/config"
	"duediligence/internal/platform/httpserver"
	"duediligence/internal/platform/kafka"
	"duediligence/internal/platform/metrics"
	"duediligence/internal/platform/postgres"
	"duediligence/internal/platform/redis"
	httptransport "duediligence/internal/transport/http"
	"duediligence/pkg/platform/audit"
	"duediligence/pkg/platform/audit/publishers/compliance"
	auditmemory "duediligence/pkg/platform/audit/store/memory"
	auditpostgres "duediligence/pkg/platform/audit/store/postgres"
	"duediligence/pkg/platform/audit/worker"
	"duediligence/pkg/platform/circuit"
	txcontext "duediligence/pkg/platform/tx"
)

// App owns the long-lived resources of one service process.
type App struct {
	cfg        config.Config
	logger     *slog.Logger
	Router     http.Handler
	JWT        *jwttoken.JWTService
	Checklist  *checklistservice.Service
	Onboarding *onboardingservice.Service

	db       *sql.DB
	redis    *redis.Client
	producer *kafka.Producer
	relay    *worker.Worker
}

// Option customises New; tests use it to isolate metrics.
type Option func(*options)

type options struct {
	registry *prometheus.Registry
}

// WithRegistry registers every metric on reg instead of the default registry.
func WithRegistry(reg *prometheus.Registry) Option {
	return func(o *options) {
		o.registry = reg
	}
}

// New builds the application. An empty Postgres DSN selects the in-memory
// stores; an empty Redis URL disables the template cache; no Kafka brokers
// disables the outbox relay.
func New(ctx context.Context, cfg config.Config, logger *slog.Logger, opts ...Option) (*App, error) {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	var (
		registerer prometheus.Registerer = prometheus.DefaultRegisterer
		gatherer   prometheus.Gatherer   = prometheus.DefaultGatherer
	)
	if o.registry != nil {
		registerer, gatherer = o.registry, o.registry
	}

	a := &App{cfg: cfg, logger: logger}
	ok := false
	defer func() {
		if !ok {
			a.Close()
		}
	}()

	var (
		runner      txcontext.Runner
		templates   template.Backend
		instances   checklistservice.InstanceStore
		onboardings onboardingservice.Store
		accounts    accountStores
		auditStore  audit.Store
	)

	if cfg.Postgres.DSN != "" {
		db, err := postgres.Open(ctx, cfg.Postgres)
		if err != nil {
			return nil, err
		}
		a.db = db
		if err := postgres.Migrate(ctx, db); err != nil {
			return nil, err
		}
		runner = txcontext.NewSQLRunner(db, cfg.Postgres.TxTimeout)
		templates = template.NewPostgres(db)
		instances = instance.NewPostgres(db)
		onboardings = onboardingstore.NewPostgres(db)
		accounts = accountstore.NewPostgres(db)
		outbox := auditpostgres.New(db)
		auditStore = outbox

		if cfg.Kafka.Enabled() {
			producer, err := kafka.NewProducer(cfg.Kafka)
			if err != nil {
				return nil, err
			}
			a.producer = producer
			if err := producer.EnsureTopic(ctx, cfg.Kafka.Partitions, cfg.Kafka.Replication); err != nil {
				return nil, err
			}
			sqlRunner := txcontext.NewSQLRunner(db, cfg.Postgres.TxTimeout)
			a.relay = worker.NewWorker(outbox, producer, sqlRunner.RunInTx,
				worker.WithInterval(cfg.Kafka.PollInterval),
				worker.WithBatchSize(cfg.Kafka.BatchSize),
				worker.WithLogger(logger),
			)
		}
	} else {
		logger.WarnContext(ctx, "no database configured, using in-memory stores")
		runner = txcontext.NewMemoryRunner()
		templates = template.NewInMemory()
		instances = instance.NewInMemory()
		onboardings = onboardingstore.NewInMemory()
		accounts = accountstore.NewInMemory()
		auditStore = auditmemory.NewInMemoryStore()
	}

	checklistMetrics := checklistmetrics.NewWithRegisterer(registerer)
	var templateStore checklistservice.TemplateStore = templates
	if cfg.Redis.URL != "" {
		client, err := redis.New(ctx, cfg.Redis)
		if err != nil {
			return nil, err
		}
		a.redis = client
		templateStore = template.NewCache(templates, client, cfg.Redis.TemplateTTL,
			template.WithCacheLogger(logger),
			template.WithCacheMetrics(checklistMetrics),
			template.WithBreaker(circuit.New("template-cache")),
		)
	}

	publisher := compliance.New(auditStore,
		compliance.WithLogger(logger),
		compliance.WithMetrics(compliance.NewMetricsWithRegisterer(registerer)),
	)

	checklists, err := checklistservice.New(templateStore, instances,
		checklistservice.WithLogger(logger),
		checklistservice.WithMetrics(checklistMetrics),
		checklistservice.WithTxRunner(runner),
		checklistservice.WithAuditPublisher(publisher),
		checklistservice.WithReviewProgress(onboardingservice.NewReviewTracker(onboardings)),
	)
	if err != nil {
		return nil, err
	}
	a.Checklist = checklists

	onboarding, err := onboardingservice.New(onboardings, accounts, checklists,
		onboardingservice.WithLogger(logger),
		onboardingservice.WithMetrics(onboardingmetrics.NewWithRegisterer(registerer)),
		onboardingservice.WithTxRunner(runner),
		onboardingservice.WithAuditPublisher(publisher),
	)
	if err != nil {
		return nil, err
	}
	a.Onboarding = onboarding

	accountSvc, err := accountservice.New(accounts, accountservice.WithLogger(logger))
	if err != nil {
		return nil, err
	}

	a.JWT = jwttoken.NewJWTService(cfg.Server.JWTSigningKey, cfg.Server.JWTIssuer)
	a.Router = httptransport.NewRouter(httptransport.Config{
		Logger:         logger,
		Metrics:        metrics.NewWithRegisterer(registerer),
		Validator:      jwttoken.NewJWTServiceAdapter(a.JWT),
		RequestTimeout: cfg.Server.RequestTimeout,
		Gatherer:       gatherer,
		HealthChecks:   a.healthChecks(),
	},
		checklisthandler.New(checklists, logger),
		onboardinghandler.New(onboarding, logger),
		accounthandler.New(accountSvc, logger),
	)

	ok = true
	return a, nil
}

type accountStores interface {
	onboardingservice.AccountStore
	accountservice.Store
}

func (a *App) healthChecks() map[string]httptransport.HealthCheck {
	checks := map[string]httptransport.HealthCheck{}
	if a.db != nil {
		checks["postgres"] = a.db.PingContext
	}
	if a.redis != nil {
		checks["redis"] = a.redis.Health
	}
	if a.producer != nil {
		checks["kafka"] = a.producer.Ping
	}
	return checks
}

// Run serves HTTP and relays the outbox until ctx is cancelled, then shuts
// the server down gracefully.
func (a *App) Run(ctx context.Context) error {
	srv := httpserver.New(a.cfg.Server.Addr, a.Router, a.cfg.Server.RequestTimeout)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.logger.InfoContext(ctx, "starting duediligence", "addr", a.cfg.Server.Addr, "environment", a.cfg.Server.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	if a.relay != nil {
		g.Go(func() error {
			return a.relay.Run(ctx)
		})
	}
	return g.Wait()
}

// Close releases external connections. It is safe on a partially built App.
func (a *App) Close() {
	if a.producer != nil {
		a.producer.Close()
	}
	if a.redis != nil {
		_ = a.redis.Close()
	}
	if a.db != nil {
		_ = a.db.Close()
	}
}
