package http

import (
	"context"

	"cbmflow/internal/analysis"
	"cbmflow/internal/services"
	api "cbmflow/pkg/contracts/api/v1"
)

// AnalysisServiceInterface defines the operations behind the analysis routes
type AnalysisServiceInterface interface {
	Upload(ctx context.Context, filename string, content []byte) (*api.UploadResponse, error)
	Analyze(ctx context.Context, req api.AnalyzeRequest) (*analysis.AnalysisResult, error)
	Export(ctx context.Context, format string, req api.AnalyzeRequest) (*services.Export, error)
	Uploads(ctx context.Context, limit int) (*api.UploadsResponse, error)
}

// HealthServiceInterface defines the probes behind the health routes
type HealthServiceInterface interface {
	HealthCheck(ctx context.Context) api.HealthResponse
	LivenessCheck(ctx context.Context) api.HealthResponse
	ReadinessCheck(ctx context.Context) api.HealthResponse
	Version() api.VersionResponse
}
