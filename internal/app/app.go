package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"prognoza/internal/config"
	"prognoza/internal/errors"
	"prognoza/internal/forecast"
	"prognoza/internal/infrastructure"
	customMiddleware "prognoza/internal/middleware"
	"prognoza/internal/services"
	handlers "prognoza/internal/transport/http"
)

// Version is the service version reported by the health endpoint.
const Version = "1.0.0"

// Application is the main application container: configuration, logging,
// telemetry, services and the HTTP server, wired together once at startup.
type Application struct {
	Config        *config.Config
	Router        *chi.Mux
	Server        *http.Server
	Logger        *slog.Logger
	OTelProviders *infrastructure.OTelProviders
	Metrics       *infrastructure.ForecastMetrics

	DatasetStore    *services.DatasetStore
	DatasetService  *services.DatasetService
	ForecastService *services.ForecastService
}

// NewApplication builds the application from configuration.
func NewApplication() (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("initialize logger: %w", err)
	}

	otelProviders, err := infrastructure.InitializeOTel(infrastructure.DefaultOTelConfig(), logger)
	if err != nil {
		return nil, fmt.Errorf("initialize telemetry: %w", err)
	}

	app := &Application{
		Config:        cfg,
		Logger:        logger,
		OTelProviders: otelProviders,
	}

	if err := app.setupServices(); err != nil {
		return nil, err
	}
	app.setupRouter()

	app.Server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      app.Router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	return app, nil
}

// setupServices wires the dataset store, forecast driver and services.
func (a *Application) setupServices() error {
	a.DatasetStore = services.NewDatasetStore(a.Logger)

	if a.Config.Paths.DatasetFile != "" {
		if err := a.loadDatasetFile(a.Config.Paths.DatasetFile); err != nil {
			return err
		}
	} else if err := a.DatasetStore.LoadDefault(); err != nil {
		return fmt.Errorf("setup services: %w", err)
	}

	driver := forecast.NewDriver(forecast.NewLinearForecaster(), a.Logger)
	driver.SetConfiguration(a.Config.Forecast.FitTimeout, a.Config.Forecast.MaxConcurrency)

	a.DatasetService = services.NewDatasetService(a.DatasetStore, a.Logger)
	a.ForecastService = services.NewForecastService(a.DatasetStore, driver, a.Logger, a.Config.Forecast.DefaultHorizon)

	if a.OTelProviders != nil && a.OTelProviders.Meter != nil {
		metrics, err := infrastructure.CreateForecastMetrics(a.OTelProviders.Meter)
		if err != nil {
			a.Logger.Warn("failed to create forecast metrics", slog.String("error", err.Error()))
		} else {
			a.Metrics = metrics
			a.DatasetService.SetTelemetry(metrics)
			a.ForecastService.SetTelemetry(a.OTelProviders.Tracer, metrics)
		}
	}

	return nil
}

// loadDatasetFile installs a dataset from disk instead of the bundled one.
func (a *Application) loadDatasetFile(path string) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open dataset file: %w", err)
	}
	defer file.Close()

	if _, err := a.DatasetService.Upload(context.Background(), file, path); err != nil {
		return fmt.Errorf("load dataset file: %w", err)
	}
	return nil
}

// setupRouter configures the HTTP router with all routes
func (a *Application) setupRouter() {
	r := chi.NewRouter()

	r.Use(customMiddleware.RequestID)
	r.Use(customMiddleware.RealIP)

	r.Group(func(r chi.Router) {
		r.Use(customMiddleware.HTTPMetrics(a.Metrics))
		r.Use(customMiddleware.StructuredLogger(a.Logger))
		r.Use(customMiddleware.Recoverer(a.Logger))
		r.Use(customMiddleware.SecurityHeaders)
		r.Use(customMiddleware.Timeout(a.Config.Server.WriteTimeout, a.Logger))
		r.Use(customMiddleware.Compress(5))

		if a.Config.Security.RateLimit.Enabled {
			r.Use(customMiddleware.NewRateLimiter(
				a.Config.Security.RateLimit.RPS,
				a.Config.Security.RateLimit.Burst,
				a.Logger,
			).Handler)
		}

		r.Use(render.SetContentType(render.ContentTypeJSON))

		errorHandler := errors.NewErrorHandler(a.Logger, false)

		r.Route("/api", func(r chi.Router) {
			r.Mount("/forecast", handlers.NewForecastHandler(a.ForecastService, a.Logger, errorHandler).Routes())
			r.Mount("/dataset", handlers.NewDatasetHandler(a.DatasetService, a.Logger, errorHandler, a.Config.Server.MaxUploadBytes).Routes())
			r.Mount("/health", handlers.NewHealthHandler(a.DatasetStore, Version).Routes())
		})
	})

	// Prometheus endpoint stays outside the middleware group.
	if a.OTelProviders != nil && a.OTelProviders.PrometheusHTTP != nil {
		r.Handle("/metrics", a.OTelProviders.PrometheusHTTP)
	}

	a.Router = r
}

// Run starts the HTTP server and blocks until the context is cancelled,
// then shuts down gracefully.
func (a *Application) Run(ctx context.Context) error {
	serverErr := make(chan error, 1)

	go func() {
		a.Logger.Info("server starting",
			slog.String("address", a.Server.Addr),
			slog.String("version", Version),
		)
		if err := a.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	return a.Stop(context.Background())
}

// Stop gracefully stops the application.
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(ctx, a.Config.Server.ShutdownTimeout)
	defer cancel()

	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	if a.OTelProviders != nil {
		if err := a.OTelProviders.Shutdown(shutdownCtx); err != nil {
			a.Logger.Warn("telemetry shutdown failed", slog.String("error", err.Error()))
		}
	}

	infrastructure.CloseLogFile()

	a.Logger.Info("shutdown complete", slog.String("at", time.Now().UTC().Format(time.RFC3339)))
	return nil
}
