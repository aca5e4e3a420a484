package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/patrickmn/go-cache"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"

	"github.com/jwalitptl/hospital-api/internal/config"
	"github.com/jwalitptl/hospital-api/internal/handler"
	healthHandler "github.com/jwalitptl/hospital-api/internal/handler/health"
	patientHandler "github.com/jwalitptl/hospital-api/internal/handler/patient"
	paymentHandler "github.com/jwalitptl/hospital-api/internal/handler/payment"
	promHandler "github.com/jwalitptl/hospital-api/internal/handler/prometheus"
	"github.com/jwalitptl/hospital-api/internal/repository"
	"github.com/jwalitptl/hospital-api/internal/repository/memory"
	"github.com/jwalitptl/hospital-api/internal/repository/orm"
	"github.com/jwalitptl/hospital-api/internal/repository/postgres"
	"github.com/jwalitptl/hospital-api/internal/router"
	"github.com/jwalitptl/hospital-api/internal/service/event"
	patientService "github.com/jwalitptl/hospital-api/internal/service/patient"
	paymentService "github.com/jwalitptl/hospital-api/internal/service/payment"
	"github.com/jwalitptl/hospital-api/pkg/blob"
	"github.com/jwalitptl/hospital-api/pkg/httputil"
	"github.com/jwalitptl/hospital-api/pkg/messaging"
	"github.com/jwalitptl/hospital-api/pkg/messaging/redis"
	"github.com/jwalitptl/hospital-api/pkg/metrics"
	"github.com/jwalitptl/hospital-api/pkg/security"
	"github.com/jwalitptl/hospital-api/pkg/tracing"
)

const metricsNamespace = "hms"

// App holds the collaborators shared by the api and worker binaries.
type App struct {
	Config   *config.Config
	Logger   zerolog.Logger
	Registry *prometheus.Registry
	Metrics  *metrics.Metrics
	Stores   *repository.Stores
	Blobs    *blob.FSStore
	Broker   messaging.Broker
	Tracer   trace.TracerProvider
}

// New opens the record store, the blob store and, when enabled, the redis
// broker and the tracer. fs backs the blob store.
func New(ctx context.Context, cfg *config.Config, logger zerolog.Logger, fs afero.Fs) (*App, error) {
	a := &App{
		Config:   cfg,
		Logger:   logger,
		Registry: prometheus.NewRegistry(),
	}
	a.Metrics = metrics.NewMetrics(a.Registry, metricsNamespace)

	tp, err := tracing.InitTracer(ctx, tracing.Config{
		Enabled:     cfg.Tracing.Enabled,
		Endpoint:    cfg.Tracing.Endpoint,
		Insecure:    cfg.Tracing.Insecure,
		ServiceName: cfg.Tracing.ServiceName,
		SampleRatio: cfg.Tracing.SampleRatio,
	})
	if err != nil {
		return nil, err
	}
	a.Tracer = tp

	a.Stores, err = OpenStores(cfg.Database, a.Metrics)
	if err != nil {
		return nil, err
	}

	a.Blobs, err = blob.NewFSStore(fs, cfg.Storage.Root, cfg.Storage.PublicPrefix, a.Metrics)
	if err != nil {
		a.Stores.Close()
		return nil, err
	}

	if cfg.Redis.Enabled {
		a.Broker, err = redis.NewRedisBroker(redis.Config{
			URL:          cfg.Redis.URL,
			MaxRetries:   cfg.Redis.MaxRetries,
			RetryBackoff: cfg.Redis.RetryBackoff,
			PoolSize:     cfg.Redis.PoolSize,
		}, &a.Logger)
		if err != nil {
			a.Stores.Close()
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
	}

	httputil.SetExposeErrors(cfg.Server.ExposeErrors)
	return a, nil
}

// OpenStores selects the record store named by cfg.Driver.
func OpenStores(cfg config.DatabaseConfig, m *metrics.Metrics) (*repository.Stores, error) {
	switch strings.ToLower(cfg.Driver) {
	case "postgres":
		db, err := postgres.NewDB(cfg)
		if err != nil {
			return nil, err
		}
		return postgres.NewStores(db, m), nil
	case "gorm":
		db, err := orm.NewDB(cfg)
		if err != nil {
			return nil, err
		}
		return orm.NewStores(db)
	case "memory":
		return memory.NewStores(memory.NewStore()), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

// Publisher returns the domain event publisher, a no-op without redis.
func (a *App) Publisher() messaging.Publisher {
	if a.Broker == nil {
		return messaging.NopPublisher{}
	}
	return messaging.NewEventPublisher(a.Broker, a.Config.Redis.Channel, a.Metrics)
}

// Router wires services and handlers into the HTTP router.
func (a *App) Router() *router.Router {
	events := event.NewEmitter(a.Publisher())
	hasher := security.NewBcryptHasher(a.Config.Security.BcryptCost)
	refs := cache.New(a.Config.Cache.ReferenceTTL, a.Config.Cache.CleanupInterval)

	patients := patientService.NewService(a.Stores.Patients, hasher, a.Blobs, events)
	payments := paymentService.NewService(a.Stores.Payments, a.Stores.Patients, a.Stores.Appointments, events, refs)

	r := router.NewRouter(
		a.Logger,
		a.Metrics,
		healthHandler.NewHandler(a.Stores.Pinger),
		promHandler.New(a.Registry),
		[]handler.Handler{
			patientHandler.NewHandler(patients),
			paymentHandler.NewHandler(payments),
		},
		router.RouterConfig{
			RateLimit:      rate.Limit(a.Config.Server.RateLimit),
			RateBurst:      a.Config.Server.RateBurst,
			AllowedOrigins: a.Config.Server.AllowedOrigins,
			MaxBodyBytes:   a.Config.Server.MaxBodyBytes,
			RequestTimeout: a.Config.Server.WriteTimeout,
			Tracing:        a.Config.Tracing.Enabled,
			ServiceName:    a.Config.Tracing.ServiceName,
			Files:          a.Blobs.FileSystem(),
			FilesPrefix:    a.Config.Storage.PublicPrefix,
		},
	)
	r.Setup()
	return r
}

// Close releases everything New opened.
func (a *App) Close(ctx context.Context) error {
	var errs []error
	if a.Broker != nil {
		errs = append(errs, a.Broker.Close())
	}
	if a.Stores != nil && a.Stores.Close != nil {
		errs = append(errs, a.Stores.Close())
	}
	errs = append(errs, tracing.Shutdown(ctx, a.Tracer))
	return errors.Join(errs...)
}
