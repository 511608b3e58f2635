// Package streambind binds keyed-record transports to stream-processing
// application code. A Binder resolves each configured binding to a key
// codec and either a value codec or a content-type converter, runs the
// inbound consumer loops, routes deserialization failures per the
// process-wide error policy (skip, halt, or dead-letter), and exposes
// materialized state for external point lookups.
//
// The transport owns partitioning, replication and offset management; the
// binder owns what happens between raw bytes and application code.
package streambind

import "log/slog"

// NullWriter is a writer that discards all data
type NullWriter struct{}

func (NullWriter) Write([]byte) (int, error) { return 0, nil }

// NullLogger creates a logger that discards all output
func NullLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(NullWriter{}, nil))
}
