// Package transport owns everything that touches the wire: the typed
// backend API surface, the credential vault, and the [Client] that
// coordinates token refresh.
//
// # Refresh coordination
//
// Any number of callers may hit an expired access token at once. The
// Client collapses them into a single refresh round trip: the first
// caller performs the refresh while the rest park as waiters and share
// its outcome. Logout force-rejects parked waiters and invalidates the
// in-flight attempt through the vault epoch, so a refresh that completes
// after logout can never resurrect credentials.
//
// # Architecture boundaries
//
// This package never inspects permissions or session UI state. It
// imports session only for the [session.Slot] storage abstraction and
// the [session.Identity] payload shape.
package transport
