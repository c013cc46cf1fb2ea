// Package api contains the request and response contracts of the CBM flow
// HTTP API. Version v1 is the current stable API.
package api

// AnalyzeRequest selects a stored dataset and the window to analyze.
// Dates are inclusive and may be written day-first or month-first; the
// engine resolves them.
type AnalyzeRequest struct {
	SessionID string `json:"session_id" validate:"required,uuid"`
	DateFrom  string `json:"date_from" validate:"required,max=32"`
	DateTo    string `json:"date_to" validate:"required,max=32"`
	GroupBy   string `json:"group_by,omitempty" validate:"groupkey"`
}

// DownloadQuery is AnalyzeRequest read from a query string.
type DownloadQuery struct {
	SessionID string `json:"session_id" query:"session_id" validate:"required,uuid"`
	DateFrom  string `json:"date_from" query:"date_from" validate:"required,max=32"`
	DateTo    string `json:"date_to" query:"date_to" validate:"required,max=32"`
	GroupBy   string `json:"group_by" query:"group_by" validate:"groupkey"`
}

// AsAnalyzeRequest converts the query into the body form.
func (q DownloadQuery) AsAnalyzeRequest() AnalyzeRequest {
	return AnalyzeRequest{
		SessionID: q.SessionID,
		DateFrom:  q.DateFrom,
		DateTo:    q.DateTo,
		GroupBy:   q.GroupBy,
	}
}

// UploadsRequest pages the upload history.
type UploadsRequest struct {
	Limit int `json:"limit" query:"limit" validate:"omitempty,min=1,max=500"`
}
