// Package exporter renders analysis results for download: the daily series
// as CSV, a summary workbook as XLSX and a printable HTML report.
//
// All writers format volumes with 6 decimals and quantities as whole
// numbers, the same rounding the JSON results use.
package exporter
