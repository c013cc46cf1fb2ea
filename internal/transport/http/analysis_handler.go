package http

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	apierrors "cbmflow/internal/errors"
	cbmmw "cbmflow/internal/middleware"
	"cbmflow/internal/services"
	"cbmflow/internal/store"
	api "cbmflow/pkg/contracts/api/v1"
)

// multipartOverhead is the slack allowed on top of the file size for the
// multipart envelope.
const multipartOverhead = 1 << 20

// AnalysisHandler handles upload, analysis and download requests
type AnalysisHandler struct {
	service       AnalysisServiceInterface
	validator     *cbmmw.ValidationMiddleware
	query         *cbmmw.QueryParamValidator
	errorHandler  *apierrors.ErrorHandler
	maxUploadSize int64
	logger        *slog.Logger
}

// NewAnalysisHandler creates the handler. maxUploadSize caps the file part
// of an upload.
func NewAnalysisHandler(service AnalysisServiceInterface, maxUploadSize int64, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *AnalysisHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AnalysisHandler{
		service:       service,
		validator:     cbmmw.NewValidationMiddleware(logger, errorHandler),
		query:         cbmmw.NewQueryParamValidator(logger, errorHandler),
		errorHandler:  errorHandler,
		maxUploadSize: maxUploadSize,
		logger:        logger.With(slog.String("component", "analysis_handler")),
	}
}

// Routes returns the analysis routes, mounted under /api
func (h *AnalysisHandler) Routes() chi.Router {
	r := chi.NewRouter()

	jsonBody := []func(http.Handler) http.Handler{
		cbmmw.ContentTypeValidator(h.errorHandler, "application/json"),
		h.validator.ValidateRequest,
	}

	r.With(cbmmw.TraceMiddleware("dataset.upload"), cbmmw.ContentTypeValidator(h.errorHandler, "multipart/form-data")).
		Post("/upload", h.Upload)
	r.With(jsonBody...).Post("/analyze", h.Analyze)

	r.Route("/download", func(r chi.Router) {
		r.Use(cbmmw.TraceMiddleware("analysis.download"))
		r.Get("/csv", h.DownloadCSV)
		r.With(jsonBody...).Post("/summary", h.DownloadSummary)
		r.Get("/report", h.DownloadReport)
	})

	r.Get("/uploads", h.Uploads)
	return r
}

// Upload handles POST /api/upload
// @Summary Upload an order/invoice workbook
// @Description Parses the first sheet of an .xlsx file and stores the dataset in a new session
// @Tags analysis
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Excel workbook (.xlsx)"
// @Success 200 {object} api.UploadResponse
// @Failure 400 {object} errors.ProblemDetails "Unsupported file type"
// @Failure 413 {object} errors.ProblemDetails "File too large"
// @Failure 422 {object} errors.ProblemDetails "Workbook cannot be used"
// @Router /upload [post]
func (h *AnalysisHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if h.maxUploadSize > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize+multipartOverhead)
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			h.errorHandler.HandleError(w, r, apierrors.FileTooLarge(h.maxUploadSize))
		case errors.Is(err, http.ErrMissingFile):
			h.errorHandler.HandleError(w, r, apierrors.ErrValidation("file", "file is required"))
		default:
			h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		}
		return
	}
	defer file.Close()

	content, err := h.readFile(file)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	filename := filepath.Base(header.Filename)
	h.logger.InfoContext(r.Context(), "upload received",
		slog.String("request_id", middleware.GetReqID(r.Context())),
		slog.String("filename", filename),
		slog.Int("size", len(content)))

	resp, err := h.service.Upload(r.Context(), filename, content)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, resp)
}

// readFile reads at most one byte past the limit so oversize files are
// detected without buffering them whole.
func (h *AnalysisHandler) readFile(file io.Reader) ([]byte, error) {
	if h.maxUploadSize <= 0 {
		return io.ReadAll(file)
	}
	content, err := io.ReadAll(io.LimitReader(file, h.maxUploadSize+1))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, apierrors.FileTooLarge(h.maxUploadSize)
		}
		return nil, apierrors.InvalidRequestWithError(err)
	}
	return content, nil
}

// Analyze handles POST /api/analyze
// @Summary Analyze a date window
// @Description Daily inbound, outbound and net CBM flow with totals, KPIs and an optional grouped breakdown
// @Tags analysis
// @Accept json
// @Produce json
// @Param request body api.AnalyzeRequest true "Session and window"
// @Success 200 {object} analysis.AnalysisResult
// @Failure 400 {object} errors.ProblemDetails "Invalid request or window"
// @Failure 404 {object} errors.ProblemDetails "Unknown session"
// @Router /analyze [post]
func (h *AnalysisHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	var req api.AnalyzeRequest
	if err := h.validator.DecodeAndValidate(r, &req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	res, err := h.service.Analyze(r.Context(), req)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, res)
}

// DownloadCSV handles GET /api/download/csv
// @Summary Download the daily series as CSV
// @Tags downloads
// @Produce text/csv
// @Param session_id query string true "Session ID"
// @Param date_from query string true "Window start"
// @Param date_to query string true "Window end"
// @Param group_by query string false "Grouping key"
// @Success 200 {file} file "cbm_analysis.csv"
// @Failure 400 {object} errors.ProblemDetails
// @Failure 404 {object} errors.ProblemDetails
// @Router /download/csv [get]
func (h *AnalysisHandler) DownloadCSV(w http.ResponseWriter, r *http.Request) {
	h.downloadFromQuery(w, r, services.FormatCSV)
}

// DownloadReport handles GET /api/download/report
// @Summary Download a printable HTML report
// @Tags downloads
// @Produce text/html
// @Param session_id query string true "Session ID"
// @Param date_from query string true "Window start"
// @Param date_to query string true "Window end"
// @Param group_by query string false "Grouping key"
// @Success 200 {file} file "cbm_report.html"
// @Failure 400 {object} errors.ProblemDetails
// @Failure 404 {object} errors.ProblemDetails
// @Router /download/report [get]
func (h *AnalysisHandler) DownloadReport(w http.ResponseWriter, r *http.Request) {
	h.downloadFromQuery(w, r, services.FormatHTML)
}

// DownloadSummary handles POST /api/download/summary
// @Summary Download the summary workbook
// @Tags downloads
// @Accept json
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param request body api.AnalyzeRequest true "Session and window"
// @Success 200 {file} file "cbm_summary.xlsx"
// @Failure 400 {object} errors.ProblemDetails
// @Failure 404 {object} errors.ProblemDetails
// @Router /download/summary [post]
func (h *AnalysisHandler) DownloadSummary(w http.ResponseWriter, r *http.Request) {
	var req api.AnalyzeRequest
	if err := h.validator.DecodeAndValidate(r, &req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	h.download(w, r, services.FormatXLSX, req)
}

func (h *AnalysisHandler) downloadFromQuery(w http.ResponseWriter, r *http.Request, format string) {
	q := r.URL.Query()
	query := api.DownloadQuery{
		SessionID: q.Get("session_id"),
		DateFrom:  q.Get("date_from"),
		DateTo:    q.Get("date_to"),
		GroupBy:   q.Get("group_by"),
	}
	if err := h.validator.ValidateStruct(query); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	h.download(w, r, format, query.AsAnalyzeRequest())
}

func (h *AnalysisHandler) download(w http.ResponseWriter, r *http.Request, format string, req api.AnalyzeRequest) {
	out, err := h.service.Export(r.Context(), format, req)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", out.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", out.Filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(out.Body)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(out.Body); err != nil {
		h.logger.WarnContext(r.Context(), "download interrupted",
			slog.String("format", format),
			slog.String("error", err.Error()))
	}
}

// Uploads handles GET /api/uploads
// @Summary Upload history
// @Tags analysis
// @Produce json
// @Param limit query int false "Maximum records" minimum(1) maximum(500)
// @Success 200 {object} api.UploadsResponse
// @Failure 400 {object} errors.ProblemDetails
// @Router /uploads [get]
func (h *AnalysisHandler) Uploads(w http.ResponseWriter, r *http.Request) {
	limit, ok := h.query.ValidateInt(w, r, "limit", 1, 500, store.DefaultListLimit)
	if !ok {
		return
	}

	resp, err := h.service.Uploads(r.Context(), limit)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, resp)
}
