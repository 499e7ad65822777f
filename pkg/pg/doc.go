// Package pg wires PostgreSQL connectivity for the service: pgxpool
// connection with startup retry, goose schema migrations routed through
// slog, and a healthcheck helper for readiness probes.
package pg
