// Package logging centralizes slog construction and shared attribute
// helpers. It offers a human-oriented console handler for interactive use
// and a JSON handler for log files, both driven by the [logging] section of
// the configuration.
package logging
