// Package api hosts the status server that runs alongside a CLI command.
// Routes:
//   - GET /healthz and /readyz for probes.
//   - GET /metrics for Prometheus scraping.
//   - GET /v1/status for the running command and its current stage.
package api
