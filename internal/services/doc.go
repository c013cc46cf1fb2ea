// Package services holds the application layer between the HTTP handlers
// and the analytics core.
//
// AnalysisService turns uploaded workbooks into datasets, keeps them in a
// SessionStore, records each accepted upload in the ledger and runs
// analyses and exports against stored sessions. HealthService answers
// liveness and readiness probes.
//
// Services take their collaborators through constructors, propagate the
// request context into every blocking call and log through an injected
// *slog.Logger.
package services
