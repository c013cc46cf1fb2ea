// Package analysis computes daily CBM flow over a date window.
//
// Inbound flow is keyed by sales order date, outbound flow by sales invoice
// date. The daily series always covers every day of the window, so its
// length is the window length in days, and net flow is inbound minus
// outbound for both volume and quantity. Negative net flow is kept as is.
//
// Internally all figures are full precision; rounding to 6 decimals for
// volumes and whole numbers for quantities happens only when results are
// serialized.
package analysis
