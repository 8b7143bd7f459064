// Package authkit is the client-side identity and authorization SDK for
// the StockWise inventory backend: a session lifecycle state machine, a
// single-flight credential-refresh pipeline, and a static role-based
// permission resolver.
//
// The package is designed for concurrent clients: Manager methods are safe
// to call from multiple goroutines after initialization through
// [Builder.Build].
//
// # Architecture boundaries
//
// authkit is the public surface. It exposes [Manager], [Builder], [Config],
// and value types (LoginResult, VerifyResult, MetricsSnapshot, etc.).
// Coordination lives in the subpackages — session state and durable slots
// in session, wire concerns and refresh coordination in transport, the
// permission table in permission — and audit dispatch under internal/.
//
// # What this package must NOT do
//
//   - Expose HTTP clients, slot encodings, or vault internals in its
//     public API.
//   - Perform I/O outside of Manager methods (construction via Builder is
//     allocation-only until Hydrate).
//   - Import any sub-package that re-imports authkit (no import cycles).
//
// # Trust contract
//
// Locally cached identity and permission answers are a UX convenience.
// The server re-validates every request; nothing in this package grants
// anything by itself.
package authkit
