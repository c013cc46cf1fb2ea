package api

import (
	"time"

	"cbmflow/internal/dataprocessing"
	"cbmflow/internal/store"
)

// UploadResponse is returned after a workbook becomes a dataset.
type UploadResponse struct {
	Status          string                   `json:"status"`
	SessionID       string                   `json:"session_id"`
	Filename        string                   `json:"filename"`
	ColumnsDetected map[string]any           `json:"columns_detected"`
	SampleRows      []map[string]string      `json:"sample_rows"`
	DateRange       dataprocessing.DateRange `json:"date_range"`
	TotalRows       int                      `json:"total_rows"`
}

// UploadsResponse lists past uploads, newest first.
type UploadsResponse struct {
	Uploads []store.UploadRecord `json:"uploads"`
	Count   int                  `json:"count"`
}

// HealthResponse reports liveness or readiness.
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Version   string            `json:"version"`
	Uptime    string            `json:"uptime,omitempty"`
	Checks    map[string]string `json:"checks,omitempty"`
}

// VersionResponse describes the running build.
type VersionResponse struct {
	Name       string `json:"name"`
	Version    string `json:"version"`
	Commit     string `json:"commit"`
	BuildTime  string `json:"build_time"`
	GoVersion  string `json:"go_version"`
	APIVersion string `json:"api_version"`
}

// APIVersion is the version of this contract.
const APIVersion = "v1"
