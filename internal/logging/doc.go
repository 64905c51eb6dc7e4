// Package logging constructs the slog loggers used across ankisync.
//
// Two output formats are supported: a compact console format for interactive
// runs and a JSON format for log files and scripting. Attr helpers and a
// no-op logger keep call sites terse and tests quiet.
package logging
