package services

import (
	"context"
	"log/slog"
	"runtime"
	"time"

	"cbmflow/internal/config"
	api "cbmflow/pkg/contracts/api/v1"
)

// Pinger is anything the readiness probe can check.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Health statuses.
const (
	StatusOK       = "ok"
	StatusAlive    = "alive"
	StatusReady    = "ready"
	StatusNotReady = "not_ready"
)

// HealthService provides health check functionality
type HealthService struct {
	version   string
	checks    map[string]Pinger
	startTime time.Time
	timeout   time.Duration
	logger    *slog.Logger
}

// NewHealthService creates a health service. Each named check is pinged by
// the readiness probe.
func NewHealthService(version string, checks map[string]Pinger, logger *slog.Logger) *HealthService {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("HealthService initialized",
		slog.String("version", version),
		slog.Int("checks", len(checks)))

	return &HealthService{
		version:   version,
		checks:    checks,
		startTime: time.Now(),
		timeout:   2 * time.Second,
		logger:    logger,
	}
}

// HealthCheck returns overall health status
func (hs *HealthService) HealthCheck(ctx context.Context) api.HealthResponse {
	resp := hs.ReadinessCheck(ctx)
	if resp.Status == StatusReady {
		resp.Status = StatusOK
	}
	return resp
}

// LivenessCheck reports that the process is serving requests.
func (hs *HealthService) LivenessCheck(ctx context.Context) api.HealthResponse {
	return api.HealthResponse{
		Status:    StatusAlive,
		Timestamp: time.Now(),
		Version:   hs.version,
		Uptime:    hs.uptime(),
	}
}

// ReadinessCheck pings every dependency; any failure makes the service not
// ready.
func (hs *HealthService) ReadinessCheck(ctx context.Context) api.HealthResponse {
	resp := api.HealthResponse{
		Status:    StatusReady,
		Timestamp: time.Now(),
		Version:   hs.version,
		Uptime:    hs.uptime(),
		Checks:    make(map[string]string, len(hs.checks)),
	}

	for name, check := range hs.checks {
		pingCtx, cancel := context.WithTimeout(ctx, hs.timeout)
		err := check.Ping(pingCtx)
		cancel()

		if err != nil {
			hs.logger.WarnContext(ctx, "Readiness check failed",
				slog.String("check", name),
				slog.String("error", err.Error()))
			resp.Checks[name] = err.Error()
			resp.Status = StatusNotReady
			continue
		}
		resp.Checks[name] = StatusOK
	}
	return resp
}

// Version returns version information
func (hs *HealthService) Version() api.VersionResponse {
	return api.VersionResponse{
		Name:       config.AppName,
		Version:    hs.version,
		Commit:     config.Commit,
		BuildTime:  config.BuildTime,
		GoVersion:  runtime.Version(),
		APIVersion: api.APIVersion,
	}
}

func (hs *HealthService) uptime() string {
	return time.Since(hs.startTime).Round(time.Second).String()
}
