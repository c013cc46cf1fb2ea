// Package files finds order/invoice workbooks on disk for batch and
// command-line runs.
//
//	d := files.NewDiscovery("exports")
//	books, err := d.FindWorkbooks(".")
//	latest, ok := files.GetLatestFile(books)
package files
