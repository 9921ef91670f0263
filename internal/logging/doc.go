// Package logging builds slog loggers for the assembly pipeline and holds
// the shared structured-field vocabulary used across stages.
package logging
