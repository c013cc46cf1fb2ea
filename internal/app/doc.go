// Package app wires the CBM flow service together and manages its
// lifecycle.
//
// # Initialization Flow
//
//	1. Build the logger and OpenTelemetry providers
//	2. Open the upload ledger selected by Storage.Driver
//	3. Create the session store and services
//	4. Set up middleware, handlers and the HTTP server
//
// # Usage
//
//	application, err := app.NewApplication(cfg, nil)
//	if err != nil {
//	    return err
//	}
//	return application.Run(ctx)
//
// Run serves until ctx is cancelled, then drains in-flight requests, closes
// the ledger and flushes telemetry.
package app
