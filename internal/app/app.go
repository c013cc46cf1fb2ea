package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	httpSwagger "github.com/swaggo/http-swagger"
	"golang.org/x/sync/errgroup"

	_ "cbmflow/docs"
	"cbmflow/internal/config"
	apierrors "cbmflow/internal/errors"
	"cbmflow/internal/infrastructure"
	customMiddleware "cbmflow/internal/middleware"
	"cbmflow/internal/services"
	"cbmflow/internal/store"
	handlers "cbmflow/internal/transport/http"
	"cbmflow/internal/validation"
)

// Application represents the main application container
type Application struct {
	Config          *config.Config
	Router          *chi.Mux
	Server          *http.Server
	Logger          *slog.Logger
	OTelProviders   *infrastructure.OTelProviders
	Metrics         *infrastructure.BusinessMetrics
	Ledger          store.Ledger
	Sessions        *services.SessionStore
	AnalysisService *services.AnalysisService
	HealthService   *services.HealthService
	ErrorHandler    *apierrors.ErrorHandler

	logCloser io.Closer
	stopOnce  sync.Once
	stopErr   error
}

// NewApplication creates a new application instance with dependency
// injection. A nil logger builds one from cfg.Logging and installs it as
// the slog default.
func NewApplication(cfg *config.Config, logger *slog.Logger) (*Application, error) {
	if cfg == nil {
		return nil, apierrors.NewConfigError("configuration is required", nil)
	}

	app := &Application{Config: cfg, Logger: logger}
	if app.Logger == nil {
		l, closer, err := infrastructure.InitializeLogger(cfg.Logging)
		if err != nil {
			return nil, err
		}
		app.Logger, app.logCloser = l, closer
	}

	app.Logger.Info("Application starting",
		slog.String("name", config.AppName),
		slog.String("version", config.AppVersion),
		slog.String("storage", cfg.Storage.Driver))

	providers, err := infrastructure.InitializeOTel(cfg.Telemetry, app.Logger)
	if err != nil {
		app.closeLog()
		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}
	app.OTelProviders = providers

	if err := app.initializeServices(); err != nil {
		app.shutdownTelemetry(context.Background())
		app.closeLog()
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	app.setupRouter()
	app.createServer()
	return app, nil
}

// initializeServices initializes all application services
func (a *Application) initializeServices() error {
	metrics, err := infrastructure.CreateBusinessMetrics(a.OTelProviders.Meter)
	if err != nil {
		return fmt.Errorf("failed to create business metrics: %w", err)
	}
	a.Metrics = metrics

	ledger, err := OpenLedger(context.Background(), a.Config.Storage, a.Logger)
	if err != nil {
		return err
	}
	a.Ledger = ledger

	a.Sessions = services.NewSessionStore(a.Config.Upload.SessionTTL, a.Config.Upload.MaxSessions, a.Logger)

	validator := validation.NewFileValidator(a.Logger, a.Config.Upload.MaxUploadSize, a.Config.Upload.AllowedExtensions)
	a.AnalysisService = services.NewAnalysisService(a.Sessions, a.Ledger, validator, services.AnalysisOptions{
		MaxWindowDays: a.Config.Analysis.MaxWindowDays,
		SampleRows:    a.Config.Upload.SampleRows,
	}, a.Logger).WithTelemetry(a.OTelProviders.Tracer, a.Metrics)

	a.HealthService = services.NewHealthService(config.AppVersion, map[string]services.Pinger{
		"ledger": a.Ledger,
	}, a.Logger)

	a.ErrorHandler = apierrors.NewErrorHandler(a.Logger, a.Config.Logging.Development)
	return nil
}

// setupRouter configures the HTTP router with all routes
func (a *Application) setupRouter() {
	r := chi.NewRouter()
	r.NotFound(a.ErrorHandler.NotFound)
	r.MethodNotAllowed(a.ErrorHandler.MethodNotAllowed)

	// RequestID → RealIP → OTel → Logger → Recoverer → SecurityHeaders → CORS → RateLimit → Timeout
	r.Use(customMiddleware.RequestID)
	r.Use(customMiddleware.RealIP)

	if otelMiddleware, err := customMiddleware.NewOTelMiddleware(a.OTelProviders, a.Metrics); err != nil {
		a.Logger.Error("Failed to create OpenTelemetry middleware", slog.String("error", err.Error()))
	} else {
		r.Use(otelMiddleware.Handler)
	}

	r.Use(customMiddleware.StructuredLogger(a.Logger))
	r.Use(customMiddleware.Recoverer(a.Logger))
	r.Use(customMiddleware.SecurityHeaders)

	if a.Config.Security.EnableCORS {
		r.Use(customMiddleware.CORS(customMiddleware.CORSConfig{
			AllowedOrigins: a.Config.Security.AllowedOrigins,
			Logger:         a.Logger,
		}))
	}

	if a.Config.Security.RateLimit.Enabled {
		r.Use(customMiddleware.NewRateLimiter(
			a.Config.Security.RateLimit.RPS,
			a.Config.Security.RateLimit.Burst,
			a.Logger,
		).Handler)
	}

	a.setupAPIRoutes(r)

	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/swagger/index.html", http.StatusFound)
	})

	// Prometheus scrape endpoint
	r.Handle("/metrics", handlers.NewMetricsHandler(a.OTelProviders.PrometheusHTTP, a.ErrorHandler))

	a.Router = r
}

// setupAPIRoutes configures API endpoints
func (a *Application) setupAPIRoutes(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))
		r.Use(customMiddleware.Timeout(a.Config.Server.RequestTimeout, a.Logger))
		r.Use(apierrors.NewErrorMiddleware(a.ErrorHandler, a.Logger).Handler)

		healthHandler := handlers.NewHealthHandler(a.HealthService, a.Logger)
		r.Mount("/health", healthHandler.Routes())
		r.Get("/version", healthHandler.Version)

		analysisHandler := handlers.NewAnalysisHandler(a.AnalysisService, a.Config.Upload.MaxUploadSize, a.Logger, a.ErrorHandler)
		r.Mount("/", analysisHandler.Routes())
	})
}

// createServer creates the HTTP server
func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:           a.Config.Server.Address(),
		Handler:        a.Router,
		ReadTimeout:    a.Config.Server.ReadTimeout,
		WriteTimeout:   a.Config.Server.WriteTimeout,
		IdleTimeout:    a.Config.Server.IdleTimeout,
		MaxHeaderBytes: a.Config.Server.MaxHeaderBytes,
		ErrorLog:       slog.NewLogLogger(a.Logger.Handler(), slog.LevelError),
	}
}

// Run serves HTTP and sweeps expired sessions until ctx is cancelled or the
// server fails, then shuts everything down.
func (a *Application) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", a.Server.Addr)
	if err != nil {
		_ = a.Stop(context.WithoutCancel(ctx))
		return fmt.Errorf("failed to listen on %s: %w", a.Server.Addr, err)
	}
	return a.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (a *Application) Serve(ctx context.Context, ln net.Listener) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.Logger.InfoContext(gctx, "HTTP server listening", slog.String("address", ln.Addr().String()))
		if err := a.Server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		return a.Sessions.Run(gctx, sweepInterval(a.Config.Upload.SessionTTL), func(n int) {
			infrastructure.RecordSessionChange(gctx, a.Metrics, -int64(n))
		})
	})

	g.Go(func() error {
		<-gctx.Done()
		a.Logger.Info("Shutdown signal received")
		return a.Stop(context.WithoutCancel(ctx))
	})

	return g.Wait()
}

// Stop drains the server, closes the ledger and flushes telemetry. It is
// safe to call more than once.
func (a *Application) Stop(ctx context.Context) error {
	a.stopOnce.Do(func() {
		a.Logger.InfoContext(ctx, "Shutting down application")

		shutdownCtx, cancel := context.WithTimeout(ctx, a.Config.Server.ShutdownTimeout)
		defer cancel()

		var errs []error
		if err := a.Server.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("server shutdown error: %w", err))
		}
		if a.Ledger != nil {
			if err := a.Ledger.Close(); err != nil {
				errs = append(errs, fmt.Errorf("ledger close error: %w", err))
			}
		}
		a.shutdownTelemetry(shutdownCtx)

		a.Logger.InfoContext(ctx, "Application shutdown complete")
		a.closeLog()
		a.stopErr = errors.Join(errs...)
	})
	return a.stopErr
}

func (a *Application) shutdownTelemetry(ctx context.Context) {
	if a.OTelProviders == nil {
		return
	}
	if err := a.OTelProviders.Shutdown(ctx); err != nil {
		a.Logger.ErrorContext(ctx, "Error shutting down OpenTelemetry", slog.String("error", err.Error()))
	}
}

func (a *Application) closeLog() {
	if a.logCloser != nil {
		_ = a.logCloser.Close()
	}
}

// sweepInterval checks for expired sessions often enough that none outlives
// its TTL by more than half.
func sweepInterval(ttl time.Duration) time.Duration {
	interval := ttl / 2
	if interval > 5*time.Minute {
		interval = 5 * time.Minute
	}
	if interval < time.Second {
		interval = time.Second
	}
	return interval
}
