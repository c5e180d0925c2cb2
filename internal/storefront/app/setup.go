// Package app contains the application setup for the storefront service.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/abgdnv/storefront/internal/config"
	"github.com/abgdnv/storefront/internal/storefront/api"
	"github.com/abgdnv/storefront/internal/storefront/storage"
	"github.com/abgdnv/storefront/internal/storefront/store"
	"github.com/abgdnv/storefront/internal/storefront/transport/rest"
	"github.com/abgdnv/storefront/pkg/bootstrap"
	"github.com/abgdnv/storefront/pkg/client/breaker"
	pkgconfig "github.com/abgdnv/storefront/pkg/config"
	"github.com/abgdnv/storefront/pkg/messaging"
	natsclient "github.com/abgdnv/storefront/pkg/nats"
	"github.com/abgdnv/storefront/pkg/server"
	"github.com/abgdnv/storefront/pkg/telemetry"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// ServiceName names the service in telemetry, health checks and the env prefix.
const ServiceName = "storefront"

type Dependencies struct {
	Store   *store.Store
	Health  *health.Server
	Logger  *slog.Logger
	Metrics bool
	// MetricsPath is where the Prometheus handler is mounted when Metrics is set.
	MetricsPath string

	closers []func(context.Context) error
}

// SetupDependencies builds the store and everything it talks to.
// Close must be called to release what was opened, also when an error is returned.
func SetupDependencies(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Health:      health.NewServer(),
		Logger:      logger,
		Metrics:     cfg.Telemetry.Metrics.Enabled,
		MetricsPath: cfg.Telemetry.Metrics.Path,
	}
	deps.Health.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)

	if err := deps.setupTelemetry(ctx, cfg.Telemetry); err != nil {
		return deps, err
	}

	kv, err := deps.setupStorage(ctx, cfg.Storage)
	if err != nil {
		return deps, err
	}

	apiClient, err := api.NewClient(cfg.API, deps.apiTransport(cfg.Resilience.CircuitBreaker), logger)
	if err != nil {
		return deps, fmt.Errorf("failed to create api client: %w", err)
	}

	opts := []store.Option{}
	if cfg.Store.InitialNav != "" {
		opts = append(opts, store.WithInitialNav(cfg.Store.InitialNav))
	}
	if cfg.Nats.Enabled() {
		publisher, err := deps.setupPublisher(ctx, cfg.Nats)
		if err != nil {
			return deps, err
		}
		opts = append(opts, store.WithPublisher(publisher))
	}

	deps.Store = store.New(apiClient, kv, logger, opts...)

	if cfg.Store.RestoreOnStart {
		deps.Store.UpdateCartFromStorage(ctx)
	}
	if cfg.Store.Preload {
		if err := deps.Store.Refresh(ctx); err != nil {
			logger.WarnContext(ctx, "Preloading products and orders failed", "error", err)
		}
	}
	return deps, nil
}

// Close releases the resources opened by SetupDependencies in reverse order.
func (d *Dependencies) Close(ctx context.Context) error {
	var errs []error
	for i := len(d.closers) - 1; i >= 0; i-- {
		if err := d.closers[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	d.closers = nil
	return errors.Join(errs...)
}

func (d *Dependencies) onClose(fn func(context.Context) error) {
	d.closers = append(d.closers, fn)
}

func (d *Dependencies) setupTelemetry(ctx context.Context, cfg pkgconfig.TelemetryConfig) error {
	if cfg.Traces.Enabled {
		tp, err := telemetry.NewTracerProvider(ctx, ServiceName, cfg.Traces)
		if err != nil {
			return fmt.Errorf("failed to create tracer provider: %w", err)
		}
		d.onClose(tp.Shutdown)
	}
	if cfg.Metrics.Enabled {
		mp, err := telemetry.NewMeterProvider(ServiceName)
		if err != nil {
			return fmt.Errorf("failed to create meter provider: %w", err)
		}
		d.onClose(mp.Shutdown)
	}
	return nil
}

func (d *Dependencies) setupStorage(ctx context.Context, cfg pkgconfig.StorageConfig) (storage.KeyValue, error) {
	switch cfg.Backend {
	case pkgconfig.StorageFile:
		kv, err := storage.NewFile(cfg.File.Dir)
		if err != nil {
			return nil, err
		}
		d.Logger.Info("Cart storage ready", "backend", cfg.Backend, "dir", cfg.File.Dir)
		return kv, nil
	case pkgconfig.StoragePostgres:
		if err := storage.Migrate(cfg.Database.URL); err != nil {
			return nil, err
		}
		dbPool, err := bootstrap.NewDbPool(ctx, cfg.Database.URL, cfg.Database.Timeout)
		if err != nil {
			return nil, err
		}
		d.onClose(func(context.Context) error {
			dbPool.Close()
			return nil
		})
		d.Logger.Info("Cart storage ready", "backend", cfg.Backend)
		return storage.NewPgStore(dbPool), nil
	default:
		d.Logger.Info("Cart storage ready", "backend", pkgconfig.StorageMemory)
		return storage.NewMemory(), nil
	}
}

// apiTransport traces every remote API call and, when enabled, routes it through a circuit breaker
// that also drives the gRPC health status.
func (d *Dependencies) apiTransport(cfg pkgconfig.CircuitBreakerConfig) http.RoundTripper {
	var transport http.RoundTripper = http.DefaultTransport
	if cfg.Enabled {
		cb := breaker.NewCircuitBreaker("remote-api", cfg, func(name string, from, to gobreaker.State) {
			d.Logger.Warn("Circuit breaker changed state", "name", name, "from", from.String(), "to", to.String())
			status := healthpb.HealthCheckResponse_SERVING
			if to == gobreaker.StateOpen {
				status = healthpb.HealthCheckResponse_NOT_SERVING
			}
			d.Health.SetServingStatus(ServiceName, status)
		})
		transport = breaker.NewTransport(transport, cb)
	}
	return otelhttp.NewTransport(transport)
}

func (d *Dependencies) setupPublisher(ctx context.Context, cfg pkgconfig.NATSConfig) (messaging.Publisher, error) {
	nc, err := natsclient.NewClient(cfg.Url, cfg.Timeout)
	if err != nil {
		return nil, err
	}
	d.onClose(func(context.Context) error {
		return nc.Drain()
	})
	js, err := natsclient.NewJetStreamContext(nc)
	if err != nil {
		return nil, err
	}
	if err := natsclient.EnsureStream(ctx, js, messaging.StorefrontStream, messaging.StorefrontSubjects); err != nil {
		return nil, err
	}
	d.Logger.Info("Publishing order events to NATS", "stream", messaging.StorefrontStream)
	return natsclient.NewNatsPublisher(js), nil
}

// SetupHttpHandler initializes the routes and middleware of the storefront HTTP surface.
// Used by tests to serve the application without a listener.
func SetupHttpHandler(deps *Dependencies) http.Handler {
	mux := server.NewChiRouter(deps.Logger)
	wireRoutes(mux, deps)
	return otelhttp.NewHandler(mux, ServiceName)
}

// wireRoutes sets up the HTTP routes for the storefront.
func wireRoutes(mux *chi.Mux, deps *Dependencies) {
	if deps.Metrics {
		mux.Handle(deps.MetricsPath, promhttp.Handler())
	}
	rest.NewHandler(deps.Store, deps.Logger).RegisterRoutes(mux)
}

// SetupHttpServer creates and configures the HTTP server of the storefront.
func SetupHttpServer(deps *Dependencies, cfg *config.Config) *http.Server {
	mux := SetupHttpHandler(deps)

	httpCfg := server.HTTPConfig{
		Port:           cfg.HTTPServer.Port,
		MaxHeaderBytes: cfg.HTTPServer.MaxHeaderBytes,
		ReadTimeout:    cfg.HTTPServer.Timeout.Read,
		WriteTimeout:   cfg.HTTPServer.Timeout.Write,
		IdleTimeout:    cfg.HTTPServer.Timeout.Idle,
		ReadHeader:     cfg.HTTPServer.Timeout.ReadHeader,
	}

	return server.NewHTTPServer(httpCfg, mux)
}

// SetupGrpcServer initializes the gRPC server exposing the health service.
func SetupGrpcServer(deps *Dependencies, reflectionEnabled bool) *grpc.Server {
	return server.NewGRPCServer(reflectionEnabled, server.HealthRegistration(deps.Health))
}
