// Package http implements the HTTP handlers of the CBM flow service.
//
// Handlers stay thin: they decode and validate the request, call the
// service layer and render the result. Every failure goes through
// errors.ErrorHandler so clients always receive RFC 7807 problem details.
//
// # Routes
//
//	POST /api/upload              multipart "file" → UploadResponse
//	POST /api/analyze             AnalyzeRequest → AnalysisResult
//	GET  /api/download/csv        daily series as CSV
//	POST /api/download/summary    XLSX summary workbook
//	GET  /api/download/report     printable HTML report
//	GET  /api/uploads             upload history
//	GET  /api/health[/live|/ready], /api/version
//
// Download routes take session_id, date_from, date_to and group_by as
// query parameters; the summary route takes the same fields as a JSON body.
package http
