// Command cbm-report analyzes an order/invoice workbook offline and prints
// the result as JSON, optionally writing the CSV series and the summary
// workbook next to it.
package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"cbmflow/internal/analysis"
	"cbmflow/internal/config"
	"cbmflow/internal/dataprocessing"
	"cbmflow/internal/exporter"
	"cbmflow/internal/files"
	"cbmflow/internal/infrastructure"
	"cbmflow/internal/validation"
)

type options struct {
	file    string
	dir     string
	from    string
	to      string
	group   string
	csvOut  string
	xlsxOut string
	quiet   bool
}

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintln(os.Stderr, "cbm-report:", err)
		}
		os.Exit(1)
	}
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var opts options
	fs := flag.NewFlagSet("cbm-report", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.file, "file", "", "order/invoice workbook (.xlsx)")
	fs.StringVar(&opts.dir, "dir", "", "analyze the most recently modified workbook in this directory")
	fs.StringVar(&opts.from, "from", "", "window start date")
	fs.StringVar(&opts.to, "to", "", "window end date, inclusive")
	fs.StringVar(&opts.group, "group", "", "group by the first column containing this key")
	fs.StringVar(&opts.csvOut, "csv", "", "write the daily series to this CSV file")
	fs.StringVar(&opts.xlsxOut, "xlsx", "", "write the summary workbook to this file")
	fs.BoolVar(&opts.quiet, "quiet", false, "only log errors")
	if err := fs.Parse(args); err != nil {
		return opts, err
	}

	if (opts.file == "" && opts.dir == "") || opts.from == "" || opts.to == "" {
		fs.Usage()
		return opts, errors.New("-file or -dir, -from and -to are required")
	}
	return opts, nil
}

func run(args []string, stdout, stderr io.Writer) error {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}

	level := "info"
	if opts.quiet {
		level = "error"
	}
	logger, closer, err := infrastructure.NewLogger(config.LoggingConfig{Level: level, Output: "console"}, stderr)
	if err != nil {
		return err
	}
	defer closer.Close()

	if opts.file == "" {
		latest, err := latestWorkbook(opts.dir)
		if err != nil {
			return err
		}
		opts.file = latest
		logger.Info("Using latest workbook", slog.String("file", latest))
	}

	validator := validation.NewFileValidator(logger, 0, []string{".xlsx"})
	if err := validator.ValidateFile(opts.file); err != nil {
		return err
	}
	if err := validator.ValidateExtension(opts.file); err != nil {
		return err
	}

	table, err := dataprocessing.ParseWorkbookFile(opts.file)
	if err != nil {
		return err
	}
	ds, err := dataprocessing.NewBuilder(logger).Build(table)
	if err != nil {
		return err
	}
	logger.Info("Dataset built",
		slog.String("file", opts.file),
		slog.Int("rows", len(ds.Records)),
		slog.String("min_date", ds.DateRange.Min.String()),
		slog.String("max_date", ds.DateRange.Max.String()))

	res, err := analysis.AnalyzeRange(ds, opts.from, opts.to, opts.group)
	if err != nil {
		return err
	}
	if opts.group != "" && res.Grouped == nil {
		logger.Warn("No column matches the group key", slog.String("group", opts.group))
	}

	if opts.csvOut != "" {
		if err := writeCSV(logger, validator, opts.csvOut, res); err != nil {
			return err
		}
	}
	if opts.xlsxOut != "" {
		if err := writeXLSX(logger, validator, opts.xlsxOut, res); err != nil {
			return err
		}
	}

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}

func latestWorkbook(dir string) (string, error) {
	books, err := files.NewDiscovery("").FindWorkbooks(dir)
	if err != nil {
		return "", err
	}
	latest, ok := files.GetLatestFile(books)
	if !ok {
		return "", fmt.Errorf("no .xlsx workbook found in %s", dir)
	}
	return latest.Path, nil
}

func writeCSV(logger *slog.Logger, v *validation.FileValidator, path string, res *analysis.AnalysisResult) error {
	if err := v.ValidateOutputPath(path); err != nil {
		return err
	}
	return exporter.NewCSVWriter(logger).WriteFile(path, exporter.WriteOptions{
		Headers:   exporter.DailyHeaders,
		Records:   exporter.DailyRecords(res.Daily),
		BOMPrefix: true,
	})
}

func writeXLSX(logger *slog.Logger, v *validation.FileValidator, path string, res *analysis.AnalysisResult) error {
	if err := v.ValidateOutputPath(path); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := exporter.NewXLSXWriter(logger).Write(f, res); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	logger.Info("Summary workbook written", slog.String("path", path))
	return nil
}
