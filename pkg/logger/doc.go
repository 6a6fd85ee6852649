// Package logger builds the application's slog logger: text output outside
// production, JSON in production, and the environment attached to every record.
package logger
