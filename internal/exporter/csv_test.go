package exporter

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSVWriterWrite(t *testing.T) {
	tests := []struct {
		name    string
		options WriteOptions
		want    string
	}{
		{
			name:    "headers and records",
			options: WriteOptions{Headers: []string{"a", "b"}, Records: [][]string{{"1", "2"}}},
			want:    "a,b\n1,2\n",
		},
		{
			name:    "quotes separators",
			options: WriteOptions{Records: [][]string{{"x,y", `say "hi"`}}},
			want:    "\"x,y\",\"say \"\"hi\"\"\"\n",
		},
		{
			name:    "bom prefix",
			options: WriteOptions{Headers: []string{"a"}, BOMPrefix: true},
			want:    "\xEF\xBB\xBFa\n",
		},
	}

	w := NewCSVWriter(nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, w.Write(&buf, tt.options))
			assert.Equal(t, tt.want, buf.String())
		})
	}
}

func TestCSVWriterWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "out.csv")
	w := NewCSVWriter(nil)

	require.NoError(t, w.WriteFile(path, WriteOptions{Headers: []string{"h"}, Records: [][]string{{"v"}}}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "h\nv\n", string(data))
}

func TestWriteDaily(t *testing.T) {
	res := scenarioResult(t, "2025-09-15", "2025-09-16", "")

	var buf bytes.Buffer
	require.NoError(t, NewCSVWriter(nil).WriteDaily(&buf, res, false))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, DailyHeaders, records[0])
	assert.Equal(t, []string{"2025-09-15", "66.017872", "17", "0.000000", "0", "66.017872", "17"}, records[1])
	assert.Equal(t, []string{"2025-09-16", "0.000000", "0", "20.500000", "9", "-20.500000", "-9"}, records[2])
}

func TestGroupedRecords(t *testing.T) {
	res := scenarioResult(t, "2025-09-15", "2025-09-17", "warehouse")

	records := GroupedRecords(res.Grouped)
	require.Len(t, records, 2)
	assert.Equal(t, []string{"North", "32.561083", "12", "20.500000", "9", "12.061083", "3"}, records[0])
	assert.Equal(t, "South", records[1][0])
	assert.Len(t, records[0], len(GroupedHeaders))

	assert.Nil(t, GroupedRecords(nil))
}

func TestSummaryLines(t *testing.T) {
	res := scenarioResult(t, "2025-09-15", "2025-09-16", "")

	lines := summaryLines(res)
	values := make(map[string]string, len(lines))
	for _, l := range lines {
		values[l.Label] = l.Value
	}

	assert.Equal(t, "66.017872", values["Total Inbound CBM"])
	assert.Equal(t, "45.517872", values["Total Net Flow CBM"])
	assert.Equal(t, "8", values["Total Net Flow Quantity"])
	assert.Equal(t, "22.758936", values["Average Daily Net Flow CBM"])
	assert.Equal(t, "4", values["Average Daily Net Flow Quantity"])
	assert.Equal(t, "2025-09-15 (66.017872 CBM)", values["Peak Inbound CBM Day"])
	assert.Equal(t, "2025-09-16 (9 units)", values["Peak Outbound Qty Day"])
}

func TestSummaryLinesOmitMissingPeaks(t *testing.T) {
	res := scenarioResult(t, "2024-01-01", "2024-01-02", "")

	for _, l := range summaryLines(res) {
		assert.NotContains(t, l.Label, "Peak")
	}
	assert.Len(t, summaryLines(res), 8)
}
