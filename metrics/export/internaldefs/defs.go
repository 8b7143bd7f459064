package internaldefs

import (
	authkit "github.com/stockwise/authkit"
)

// CounterDef defines a public type used by authkit APIs.
//
// CounterDef instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type CounterDef struct {
	ID   authkit.MetricID
	Name string
	Help string
}

// HistogramDef defines a public type used by authkit APIs.
//
// HistogramDef instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type HistogramDef struct {
	ID   authkit.MetricID
	Name string
	Help string
}

// CounterDefs is an exported constant or variable used by the session manager.
var CounterDefs = []CounterDef{
	{ID: authkit.MetricLoginSuccess, Name: "authkit_login_success_total", Help: "Accepted login attempts."},
	{ID: authkit.MetricLoginFailure, Name: "authkit_login_failure_total", Help: "Refused or failed login attempts."},
	{ID: authkit.MetricLogout, Name: "authkit_logout_total", Help: "Logout operations."},
	{ID: authkit.MetricLogoutRemoteFailure, Name: "authkit_logout_remote_failure_total", Help: "Remote session invalidations that failed during logout."},
	{ID: authkit.MetricRefreshSuccess, Name: "authkit_refresh_success_total", Help: "Successful credential refresh round trips."},
	{ID: authkit.MetricRefreshFailure, Name: "authkit_refresh_failure_total", Help: "Terminal credential refresh failures."},
	{ID: authkit.MetricRefreshShared, Name: "authkit_refresh_shared_total", Help: "Callers that shared an in-flight refresh instead of issuing their own."},
	{ID: authkit.MetricRefreshCancelled, Name: "authkit_refresh_cancelled_total", Help: "Refresh continuations rejected or outcomes discarded by logout."},
	{ID: authkit.MetricVerifyConfirmed, Name: "authkit_verify_confirmed_total", Help: "Session verifications confirming the session."},
	{ID: authkit.MetricVerifyRevoked, Name: "authkit_verify_revoked_total", Help: "Session verifications revoking the session."},
	{ID: authkit.MetricVerifyStaleDiscarded, Name: "authkit_verify_stale_discarded_total", Help: "Verification results discarded for arriving after a newer login or logout."},
	{ID: authkit.MetricIdentityReloadSuccess, Name: "authkit_identity_reload_success_total", Help: "Successful identity reloads."},
	{ID: authkit.MetricIdentityReloadFailure, Name: "authkit_identity_reload_failure_total", Help: "Failed identity reloads."},
	{ID: authkit.MetricHydrationFastPath, Name: "authkit_hydration_fast_path_total", Help: "Hydrations concluding unauthenticated with zero network calls."},
	{ID: authkit.MetricOptimisticAuth, Name: "authkit_optimistic_auth_total", Help: "Hydrations restoring a provisional authenticated session."},
	{ID: authkit.MetricTerminalFailure, Name: "authkit_terminal_failure_total", Help: "Sessions ended by terminal refresh failure."},
}

// HistogramDefs is an exported constant or variable used by the session manager.
var HistogramDefs = []HistogramDef{
	{ID: authkit.MetricVerifyLatency, Name: "authkit_verify_latency_seconds", Help: "Session verification latency histogram."},
}

// HistogramBounds is an exported constant or variable used by the session manager.
var HistogramBounds = []string{
	"0.005",
	"0.01",
	"0.025",
	"0.05",
	"0.1",
	"0.25",
	"0.5",
	"+Inf",
}

// HistogramBoundSuffix is an exported constant or variable used by the session manager.
var HistogramBoundSuffix = []string{
	"0_005",
	"0_01",
	"0_025",
	"0_05",
	"0_1",
	"0_25",
	"0_5",
	"inf",
}

// NormalizeBuckets describes the normalizebuckets operation and its observable behavior.
//
// NormalizeBuckets does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets describes the cumulativebuckets operation and its observable behavior.
//
// CumulativeBuckets does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
