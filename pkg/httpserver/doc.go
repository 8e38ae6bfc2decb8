// Package httpserver runs an HTTP handler with graceful shutdown.
//
// Run blocks until its context is cancelled or the process receives SIGINT
// or SIGTERM, then drains in-flight requests within the shutdown timeout.
//
//	srv := httpserver.NewFromConfig(cfg, httpserver.WithLogger(log))
//	if err := srv.Run(ctx, router); err != nil {
//		log.Error("server failed", logger.Error(err))
//	}
//
// HealthCheckHandler serves liveness and readiness probes.
package httpserver
