package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"mfspulse/internal/config"
	apperrors "mfspulse/internal/errors"
	"mfspulse/internal/exporter"
	"mfspulse/internal/infrastructure"
	"mfspulse/internal/metrics"
	mfsmiddleware "mfspulse/internal/middleware"
	"mfspulse/internal/normalize"
	"mfspulse/internal/pipeline"
	"mfspulse/internal/services"
	"mfspulse/internal/source"
	handlers "mfspulse/internal/transport/http"
)

// Application is the composed server: configuration, logger, pipeline and
// HTTP surface.
type Application struct {
	Config      *config.Config
	Logger      *slog.Logger
	Router      *chi.Mux
	Server      *http.Server
	DataService *services.DataService

	shutdownTracing func(context.Context) error
}

// New wires the application from configuration.
func New() (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	logger.Info("application starting",
		slog.String("name", config.AppName),
		slog.String("version", config.AppVersion))

	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("failed to ensure directories: %w", err)
	}

	shutdownTracing, err := infrastructure.InitTracing(context.Background())
	if err != nil {
		return nil, fmt.Errorf("failed to initialize tracing: %w", err)
	}

	dataService := BuildDataService(cfg, logger)

	router := buildRouter(dataService, logger)
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	return &Application{
		Config:          cfg,
		Logger:          logger,
		Router:          router,
		Server:          server,
		DataService:     dataService,
		shutdownTracing: shutdownTracing,
	}, nil
}

// BuildDataService assembles the full pipeline behind the data service:
// fetchers, the adapter chain in priority order, normalizer, metrics engine,
// orchestrator and exporter. Shared by the server and the CLI.
func BuildDataService(cfg *config.Config, logger *slog.Logger) *services.DataService {
	var portalFetcher source.Fetcher
	if cfg.Sources.RenderWithBrowser {
		portalFetcher = source.NewBrowserFetcher(cfg.Sources.FetchTimeout, logger)
	} else {
		portalFetcher = source.NewHTTPFetcher(cfg.Sources.FetchTimeout, cfg.Sources.RequestsPerSecond, logger)
	}
	workbookFetcher := source.NewHTTPFetcher(cfg.Sources.FetchTimeout, cfg.Sources.RequestsPerSecond, logger)

	live := []source.Adapter{
		source.NewMarkupAdapter(portalFetcher, cfg.Sources.PortalURL, logger),
		source.NewWorkbookAdapter(workbookFetcher, cfg.Sources.WorkbookURL, logger),
	}

	orchestrator := pipeline.New(
		live,
		source.NewFallbackAdapter(logger),
		normalize.NewNormalizer(logger, cfg.Pipeline.DropRateThreshold),
		metrics.NewEngine(logger),
		cfg.Pipeline,
		logger,
	)

	writer := exporter.NewCSVWriter(cfg.Paths.ReportsDir, logger)
	return services.NewDataService(orchestrator, writer, logger)
}

func buildRouter(dataService *services.DataService, logger *slog.Logger) *chi.Mux {
	errorHandler := apperrors.NewHandler(logger)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(mfsmiddleware.StructuredLogger(logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Route("/api", func(r chi.Router) {
		r.Mount("/data", handlers.NewDataHandler(dataService, logger, errorHandler).Routes())
		r.Mount("/health", handlers.NewHealthHandler(dataService).Routes())
	})
	r.Handle("/metrics", promhttp.Handler())

	return r
}

// Run serves HTTP until ctx is cancelled, then shuts down gracefully.
func (a *Application) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.Logger.Info("HTTP server listening", slog.String("addr", a.Server.Addr))
		if err := a.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.Config.Server.ShutdownTimeout)
		defer cancel()

		a.Logger.Info("shutting down")
		if err := a.Server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown error: %w", err)
		}
		if a.shutdownTracing != nil {
			if err := a.shutdownTracing(shutdownCtx); err != nil {
				a.Logger.Warn("trace flush failed", slog.String("error", err.Error()))
			}
		}
		return infrastructure.CloseLogFile()
	})

	return g.Wait()
}
