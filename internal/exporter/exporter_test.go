package exporter

import (
	"testing"

	"github.com/stretchr/testify/require"

	"cbmflow/internal/analysis"
	"cbmflow/internal/dataprocessing"
	"cbmflow/internal/shared/testutil"
)

func scenarioResult(t *testing.T, from, to, groupBy string) *analysis.AnalysisResult {
	t.Helper()
	table, err := dataprocessing.ParseWorkbookBytes(testutil.ScenarioWorkbook(t))
	require.NoError(t, err)
	ds, err := dataprocessing.BuildDataset(table)
	require.NoError(t, err)
	res, err := analysis.AnalyzeRange(ds, from, to, groupBy)
	require.NoError(t, err)
	return res
}
