// Package app wires configuration, logging, telemetry, services and the
// HTTP router of the sheetio server.
//
// # Initialization Flow
//
// 1. Resolve and create the temp and output directories
// 2. Initialize OpenTelemetry (tracing, Prometheus metrics)
// 3. Build the file manager, conversion service and health service
// 4. Set up middleware and routes
// 5. Create the HTTP server
//
// # Usage
//
//	cfg, err := config.Load()
//	...
//	application, err := app.NewApplication(cfg, nil)
//	...
//	if err := application.Run(ctx); err != nil {
//	    ...
//	}
//
// # Graceful Shutdown
//
// Run stops on SIGINT or SIGTERM. In-flight requests get
// Server.ShutdownTimeout to finish, then telemetry providers are flushed.
//
// The app does not call os.Exit; the main function controls the exit
// process.
package app
