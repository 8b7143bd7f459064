// Package session holds the client-side record of who, if anyone, is
// currently authenticated: the in-memory [State], the durable [Slot]
// abstraction it persists into, and the hydration lifecycle that replays
// a previous session at startup.
//
// Only a non-secret projection of the identity ever reaches the durable
// slot. Credentials are excluded by contract: the profile slot is
// assumed readable by anything with access to the storage medium, the
// way browser localStorage is readable by page scripts.
//
// Hydration is an explicit, observable event: [Store.Hydrate] completes
// when the storage read finishes and closes the [Store.Hydrated] channel
// exactly once. There are no timing assumptions and re-entrant hydration
// calls are no-ops.
package session
