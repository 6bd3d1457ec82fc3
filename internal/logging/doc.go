// Package logging constructs the slog loggers used across subfuse.
//
// Console and JSON handlers are selected from configuration; when a log
// directory is configured, output is duplicated into subfuse.log. Loggers are
// passed explicitly to components rather than pulled from globals.
package logging
