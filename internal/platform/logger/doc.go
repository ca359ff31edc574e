// Package logger provides structured logging for the application, built on
// log/slog with a JSON handler, plus helpers for carrying a request-scoped
// logger through a context.Context.
package logger
