// Package handlers contains HTTP building blocks shared by the API server.
//
// This package provides:
//   - Health check aggregation with critical and optional checks
//   - Request middleware on top of chi's (request logger, CORS, metrics)
//   - The JSON response envelope used by every endpoint
//
// # Health Checks
//
// Checks run in parallel, each under its own timeout. A failing critical
// check makes the service unhealthy and not ready; a failing optional check
// only marks it degraded:
//
//	checker := handlers.NewCompositeHealthChecker("v1.0.0")
//	checker.AddCheck("postgres", handlers.NewPingCheck(conn))
//	checker.AddOptionalCheck("redis", handlers.NewPingCheck(cache))
//
//	status := checker.Check(ctx)
//	if !status.Ready {
//	    log.Printf("not ready: %s", status.Message)
//	}
//
// # Envelope
//
// Every response is wrapped as
//
//	{"success": true, "data": {...}, "meta": {...}, "request_id": "..."}
//
// and errors carry {"code", "message", "details"} under "error".
package handlers
