// Package shared holds helpers used by more than one package without
// belonging to any of them. The testutil subpackage provides captured slog
// handlers and in-memory workbook fixtures for tests.
package shared
