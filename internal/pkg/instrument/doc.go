// Package instrument wires OpenTelemetry tracing, metrics and logs, and
// installs the process-wide slog handler chain.
//
// Log records are written as JSON, masked by field name, tagged with the
// request correlation id, and optionally mirrored to the OTLP log exporter.
package instrument
