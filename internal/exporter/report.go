package exporter

import (
	"bytes"
	"fmt"
	"html"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"cbmflow/internal/analysis"
	"cbmflow/internal/dataprocessing"
)

// ReportDailyLimit is the number of daily rows shown in the printable report.
const ReportDailyLimit = 20

const reportTitle = "CBM Analysis Report"

// ReportWriter renders an analysis result as a standalone HTML page.
type ReportWriter struct {
	md     goldmark.Markdown
	logger *slog.Logger
	now    func() time.Time
}

// NewReportWriter creates a report writer using GitHub flavored markdown
func NewReportWriter(logger *slog.Logger) *ReportWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReportWriter{
		md:     goldmark.New(goldmark.WithExtensions(extension.GFM)),
		logger: logger,
		now:    time.Now,
	}
}

// Markdown returns the report body as markdown.
func (r *ReportWriter) Markdown(res *analysis.AnalysisResult) []byte {
	var b bytes.Buffer
	fmt.Fprintf(&b, "# %s\n\n", reportTitle)
	fmt.Fprintf(&b, "**Period:** %s to %s\n\n",
		res.From.Format(dataprocessing.DateLayout), res.To.Format(dataprocessing.DateLayout))

	b.WriteString("## Summary Statistics\n\n| Metric | Value |\n|---|---|\n")
	for _, line := range summaryLines(res) {
		fmt.Fprintf(&b, "| %s | %s |\n", line.Label, line.Value)
	}

	b.WriteString("\n## Daily Breakdown\n\n")
	b.WriteString("| Date | Inbound CBM | Outbound CBM (SI) | Net Flow CBM | Inbound Qty | Outbound Qty (SI) | Net Flow Qty |\n")
	b.WriteString("|---|---:|---:|---:|---:|---:|---:|\n")
	shown := res.Daily
	if len(shown) > ReportDailyLimit {
		shown = shown[:ReportDailyLimit]
	}
	for _, d := range shown {
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | %s | %s |\n",
			d.Date.Format(dataprocessing.DateLayout),
			formatVolume(d.InboundVolume), formatVolume(d.OutboundVolume), formatVolume(d.NetFlowVolume),
			formatQty(d.InboundQty), formatQty(d.OutboundQty), formatQty(d.NetFlowQty))
	}
	if len(res.Daily) > ReportDailyLimit {
		fmt.Fprintf(&b, "\n*Note: Showing first %d rows of %d total rows. Download CSV for complete data.*\n",
			ReportDailyLimit, len(res.Daily))
	}

	if g := res.Grouped; g != nil {
		fmt.Fprintf(&b, "\n## Breakdown by %s\n\n", escapeCell(g.Column))
		b.WriteString("| Key | Inbound CBM | Outbound CBM (SI) | Net Flow CBM | Inbound Qty | Outbound Qty (SI) | Net Flow Qty |\n")
		b.WriteString("|---|---:|---:|---:|---:|---:|---:|\n")
		for _, row := range g.Rows {
			fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | %s | %s |\n",
				escapeCell(row.Key),
				formatVolume(row.InboundVolume), formatVolume(row.OutboundVolume), formatVolume(row.NetFlowVolume),
				formatQty(row.InboundQty), formatQty(row.OutboundQty), formatQty(row.NetFlowQty))
		}
	}

	fmt.Fprintf(&b, "\n---\n\nGenerated on %s\n", r.now().Format("2006-01-02 15:04:05"))
	return b.Bytes()
}

// Write renders the report as HTML to w.
func (r *ReportWriter) Write(w io.Writer, res *analysis.AnalysisResult) error {
	var body bytes.Buffer
	if err := r.md.Convert(r.Markdown(res), &body); err != nil {
		return fmt.Errorf("failed to render report: %w", err)
	}

	_, err := fmt.Fprintf(w, reportPage, html.EscapeString(reportTitle), body.String())
	if err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	r.logger.Debug("Report rendered", slog.Int("daily_rows", len(res.Daily)))
	return nil
}

// escapeCell keeps user values from breaking the table or injecting markup.
func escapeCell(s string) string {
	s = strings.NewReplacer("\r", " ", "\n", " ").Replace(s)
	s = html.EscapeString(s)
	return strings.ReplaceAll(s, "|", `\|`)
}

const reportPage = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>%s</title>
<style>
body { font-family: Helvetica, Arial, sans-serif; margin: 2em; color: #222; }
h1 { color: #1f4e79; }
table { border-collapse: collapse; margin: 1em 0; }
th, td { border: 1px solid #999; padding: 4px 8px; font-size: 0.9em; }
th { background: #1f4e79; color: #fff; }
tr:nth-child(even) td { background: #f2f2f2; }
</style>
</head>
<body>
%s</body>
</html>
`
