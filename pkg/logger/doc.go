// Package logger provides a slog factory with environment-driven
// configuration and typed attribute helpers shared across the service.
package logger
