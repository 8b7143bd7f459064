// Package audit defines the audit event model and its sinks.
//
// # Components
//
//   - [Event] — structured audit record with timestamp, type, user, generation, metadata.
//   - [Sink] — interface for event consumers (channel, JSON writer, no-op).
//
// # Architecture boundaries
//
// This package owns the event shape and sink delivery. Buffering lives in the
// root package's dispatcher, and deciding which events to emit belongs to the
// session Manager.
//
// # What this package must NOT do
//
//   - Filter or suppress events based on business logic.
//   - Import authkit or any sibling internal package.
//   - Perform network I/O beyond what a caller-supplied Sink does.
package audit
