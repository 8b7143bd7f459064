// Package permission implements the static role→module→capability table
// consulted by the session manager for every access decision.
//
// The table is configuration: it is built once (in code via [Table.Grant]
// or from YAML via [LoadYAML]), frozen, and never mutated at runtime.
// After [Table.Freeze] every lookup is a pure function of its inputs —
// the same role and module always yield the same answer.
//
// Route-to-module resolution lives here as well: [RouteModule] extracts
// the module identifier as the first path segment after the application
// prefix, so "/app/inventario/items/3" resolves to "inventario".
package permission
