// Package dataprocessing turns an order/invoice spreadsheet into a normalized
// dataset ready for daily CBM flow analysis.
//
// # Architecture
//
// The package is organized into three components:
//
// 1. Column resolver: maps inconsistently named headers to logical fields
// 2. Date normalizer: reads mixed-format date columns into calendar dates
// 3. Dataset builder: applies both and derives per-row volumes and quantities
//
// # Usage
//
//	table, err := dataprocessing.ParseWorkbookFile("orders.xlsx")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	ds, err := dataprocessing.BuildDataset(table)
//	if errors.Is(err, dataprocessing.ErrMissingOrderDate) {
//	    // no usable SO Date column
//	}
//
// # Column resolution
//
// Headers are compared after lower-casing and dropping everything but ASCII
// letters and digits. An exact match against the synonym list wins; otherwise
// the closest header by Levenshtein ratio is taken when it scores at least
// FuzzyThreshold.
//
// # Volumes
//
// When no SO Total CBM column exists the order volume is computed as
// Per Unit CBM × SO Qty. Invoice volume falls back the same way and is 0
// when neither source exists.
package dataprocessing
