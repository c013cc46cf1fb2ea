package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"cbmflow/internal/analysis"
	"cbmflow/internal/dataprocessing"
	apierrors "cbmflow/internal/errors"
	"cbmflow/internal/exporter"
	"cbmflow/internal/infrastructure"
	"cbmflow/internal/store"
	"cbmflow/internal/validation"
	api "cbmflow/pkg/contracts/api/v1"
)

// Export formats.
const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
	FormatHTML = "html"
)

// Export is a rendered download.
type Export struct {
	Filename    string
	ContentType string
	Body        []byte
}

// AnalysisOptions bound uploads and analyses.
type AnalysisOptions struct {
	MaxWindowDays int
	SampleRows    int
}

// AnalysisService runs the upload, analyze and download flows.
type AnalysisService struct {
	sessions  *SessionStore
	ledger    store.Ledger
	builder   *dataprocessing.Builder
	validator *validation.FileValidator
	csv       *exporter.CSVWriter
	xlsx      *exporter.XLSXWriter
	report    *exporter.ReportWriter
	metrics   *infrastructure.BusinessMetrics
	tracer    trace.Tracer
	opts      AnalysisOptions
	logger    *slog.Logger
}

// NewAnalysisService wires the service. A nil ledger disables the upload
// history.
func NewAnalysisService(sessions *SessionStore, ledger store.Ledger, validator *validation.FileValidator, opts AnalysisOptions, logger *slog.Logger) *AnalysisService {
	if logger == nil {
		logger = slog.Default()
	}
	if ledger == nil {
		ledger = store.NopLedger{}
	}
	if opts.SampleRows <= 0 {
		opts.SampleRows = 5
	}
	logger = logger.With(slog.String("service", "analysis"))

	return &AnalysisService{
		sessions:  sessions,
		ledger:    ledger,
		builder:   dataprocessing.NewBuilder(logger),
		validator: validator,
		csv:       exporter.NewCSVWriter(logger),
		xlsx:      exporter.NewXLSXWriter(logger),
		report:    exporter.NewReportWriter(logger),
		tracer:    otel.Tracer(infrastructure.InstrumentationName),
		opts:      opts,
		logger:    logger,
	}
}

// WithTelemetry records spans on tracer and business metrics on metrics.
func (s *AnalysisService) WithTelemetry(tracer trace.Tracer, metrics *infrastructure.BusinessMetrics) *AnalysisService {
	if tracer != nil {
		s.tracer = tracer
	}
	s.metrics = metrics
	return s
}

// Upload validates the file, builds its dataset and stores it in a new
// session. Nothing is stored when any step fails.
func (s *AnalysisService) Upload(ctx context.Context, filename string, content []byte) (*api.UploadResponse, error) {
	ctx, span := s.tracer.Start(ctx, "AnalysisService.Upload",
		trace.WithAttributes(
			attribute.String("upload.filename", filename),
			attribute.Int("upload.size", len(content)),
		))
	defer span.End()

	if err := s.validator.ValidateUpload(filename, int64(len(content))); err != nil {
		infrastructure.RecordError(ctx, err)
		return nil, err
	}

	ds, err := s.buildDataset(content)
	infrastructure.RecordDatasetBuild(ctx, s.metrics, datasetRows(ds), err)
	if err != nil {
		s.logger.WarnContext(ctx, "Dataset build failed",
			slog.String("filename", filename),
			slog.String("error", err.Error()))
		infrastructure.RecordError(ctx, err)
		return nil, err
	}

	sess, evicted, err := s.sessions.Put(filename, ds)
	if err != nil {
		infrastructure.RecordError(ctx, err)
		return nil, apierrors.NewStorageError("failed to store session", err)
	}
	infrastructure.RecordSessionChange(ctx, s.metrics, int64(1-evicted))
	span.SetAttributes(
		attribute.String("session.id", sess.ID),
		attribute.Int("dataset.rows", len(ds.Records)))

	// The session is usable without a ledger entry.
	if err := s.ledger.Record(ctx, store.NewUploadRecord(sess.ID, filename, ds)); err != nil {
		s.logger.WarnContext(ctx, "Failed to record upload",
			slog.String("session_id", sess.ID),
			slog.String("error", err.Error()))
	}

	s.logger.InfoContext(ctx, "Dataset uploaded",
		slog.String("session_id", sess.ID),
		slog.String("filename", filename),
		slog.Int("rows", len(ds.Records)),
		slog.Int("evicted", evicted))

	return &api.UploadResponse{
		Status:          "success",
		SessionID:       sess.ID,
		Filename:        filename,
		ColumnsDetected: ds.Columns.Detected(),
		SampleRows:      ds.SampleRows(s.opts.SampleRows),
		DateRange:       ds.DateRange,
		TotalRows:       len(ds.Records),
	}, nil
}

func (s *AnalysisService) buildDataset(content []byte) (*dataprocessing.ParsedDataset, error) {
	table, err := dataprocessing.ParseWorkbookBytes(content)
	if err != nil {
		return nil, err
	}
	return s.builder.Build(table)
}

func datasetRows(ds *dataprocessing.ParsedDataset) int {
	if ds == nil {
		return 0
	}
	return len(ds.Records)
}

// Dataset returns the dataset stored under sessionID.
func (s *AnalysisService) Dataset(ctx context.Context, sessionID string) (*dataprocessing.ParsedDataset, error) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		if errors.Is(err, ErrSessionExpired) {
			infrastructure.RecordSessionChange(ctx, s.metrics, -1)
		}
		return nil, fmt.Errorf("%w: %w", err, apierrors.NewWithDetails(
			http.StatusNotFound, apierrors.CodeDatasetNotFound,
			"No data uploaded. Please upload a file first.",
			map[string]string{"session_id": sessionID}))
	}
	return sess.Dataset, nil
}

// Analyze runs the analysis for req against its session's dataset.
func (s *AnalysisService) Analyze(ctx context.Context, req api.AnalyzeRequest) (*analysis.AnalysisResult, error) {
	ctx, span := s.tracer.Start(ctx, "AnalysisService.Analyze",
		trace.WithAttributes(
			attribute.String("session.id", req.SessionID),
			attribute.String("analysis.group_by", req.GroupBy),
		))
	defer span.End()

	start := time.Now()
	res, err := s.analyze(ctx, req)
	infrastructure.RecordAnalysis(ctx, s.metrics, req.GroupBy != "", time.Since(start), err)
	if err != nil {
		infrastructure.RecordError(ctx, err)
		return nil, err
	}

	span.SetAttributes(attribute.Int("analysis.days", len(res.Daily)))
	s.logger.DebugContext(ctx, "Analysis complete",
		slog.String("session_id", req.SessionID),
		slog.Int("days", len(res.Daily)),
		slog.Bool("grouped", res.Grouped != nil),
		slog.Duration("duration", time.Since(start)))
	return res, nil
}

func (s *AnalysisService) analyze(ctx context.Context, req api.AnalyzeRequest) (*analysis.AnalysisResult, error) {
	ds, err := s.Dataset(ctx, req.SessionID)
	if err != nil {
		return nil, err
	}
	from, to, err := analysis.ParseWindow(req.DateFrom, req.DateTo)
	if err != nil {
		return nil, err
	}
	if days := analysis.WindowDays(from, to); s.opts.MaxWindowDays > 0 && days > s.opts.MaxWindowDays {
		return nil, fmt.Errorf("%w: %w", ErrWindowTooLarge, apierrors.NewWithDetails(
			http.StatusBadRequest, apierrors.CodeInvalidWindow,
			fmt.Sprintf("Analysis window of %d days exceeds the %d day limit", days, s.opts.MaxWindowDays),
			map[string]int{"days": days, "max_days": s.opts.MaxWindowDays}))
	}
	return analysis.Analyze(ds, from, to, req.GroupBy)
}

// Export analyzes req and renders the result in format.
func (s *AnalysisService) Export(ctx context.Context, format string, req api.AnalyzeRequest) (*Export, error) {
	res, err := s.Analyze(ctx, req)
	if err != nil {
		return nil, err
	}

	ctx, span := s.tracer.Start(ctx, "AnalysisService.Export",
		trace.WithAttributes(attribute.String("export.format", format)))
	defer span.End()

	out, err := s.render(format, res)
	infrastructure.RecordExport(ctx, s.metrics, format, err)
	if err != nil {
		infrastructure.RecordError(ctx, err)
		return nil, err
	}

	s.logger.InfoContext(ctx, "Export rendered",
		slog.String("session_id", req.SessionID),
		slog.String("format", format),
		slog.Int("bytes", len(out.Body)))
	return out, nil
}

func (s *AnalysisService) render(format string, res *analysis.AnalysisResult) (*Export, error) {
	var buf bytes.Buffer
	out := &Export{}

	var err error
	switch format {
	case FormatCSV:
		out.Filename, out.ContentType = "cbm_analysis.csv", "text/csv; charset=utf-8"
		err = s.csv.WriteDaily(&buf, res, false)
	case FormatXLSX:
		out.Filename, out.ContentType = "cbm_summary.xlsx", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
		err = s.xlsx.Write(&buf, res)
	case FormatHTML:
		out.Filename, out.ContentType = "cbm_report.html", "text/html; charset=utf-8"
		err = s.report.Write(&buf, res)
	default:
		return nil, apierrors.NewWithDetails(http.StatusBadRequest, apierrors.CodeInvalidRequest,
			"Unsupported export format", map[string]string{"format": format})
	}
	if err != nil {
		return nil, apierrors.NewExportError(format, err)
	}
	out.Body = buf.Bytes()
	return out, nil
}

// Uploads lists the upload history, newest first.
func (s *AnalysisService) Uploads(ctx context.Context, limit int) (*api.UploadsResponse, error) {
	records, err := s.ledger.List(ctx, limit)
	if err != nil {
		return nil, apierrors.NewStorageError("failed to list uploads", err)
	}
	if records == nil {
		records = []store.UploadRecord{}
	}
	return &api.UploadsResponse{Uploads: records, Count: len(records)}, nil
}

// Sessions returns the session store.
func (s *AnalysisService) Sessions() *SessionStore {
	return s.sessions
}
