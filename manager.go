package authkit

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/stockwise/authkit/permission"
	"github.com/stockwise/authkit/session"
	"github.com/stockwise/authkit/transport"
)

// Phase is the Manager's lifecycle state.
type Phase uint8

const (
	// PhaseUninitialized is an exported constant or variable used by the session manager.
	PhaseUninitialized Phase = iota
	// PhaseVerifying is an exported constant or variable used by the session manager.
	PhaseVerifying
	// PhaseAuthenticated is an exported constant or variable used by the session manager.
	PhaseAuthenticated
	// PhaseUnauthenticated is an exported constant or variable used by the session manager.
	PhaseUnauthenticated
	// PhaseError is an exported constant or variable used by the session manager.
	PhaseError
)

var phaseLabels = [...]string{
	"uninitialized",
	"verifying",
	"authenticated",
	"unauthenticated",
	"error",
}

func (p Phase) String() string {
	if int(p) < len(phaseLabels) {
		return phaseLabels[p]
	}
	return "unknown"
}

// Manager defines a public type used by authkit APIs.
//
// Manager is the session lifecycle state machine: it owns initialization,
// login, logout, and background re-verification, and answers route and
// operation permission queries. All mutation happens under its mutex;
// network calls never do.
type Manager struct {
	cfg       Config
	store     *session.Store
	client    *transport.Client
	table     *permission.Table
	navigator Navigator
	log       logrus.FieldLogger
	metrics   *Metrics
	audit     *auditDispatcher

	mu          sync.Mutex
	phase       Phase
	generation  uint64
	initialized bool
	confirmed   bool
}

// Hydrate replays any persisted session and decides the starting phase.
// With no local identity marker the manager goes Unauthenticated with
// zero network calls. With a marker it goes Authenticated optimistically
// and a background verification confirms or revokes it. Idempotent per
// process: later calls observe the initialized flag and no-op.
func (m *Manager) Hydrate(ctx context.Context) error {
	if err := m.store.Hydrate(ctx); err != nil {
		// Malformed projection hydrates to an empty state; worth a log
		// line, not a failure.
		m.log.WithError(err).Warn("session projection discarded during hydration")
	}
	if err := m.client.Vault().Hydrate(ctx); err != nil {
		m.log.WithError(err).Warn("credential pair discarded during hydration")
	}

	m.mu.Lock()
	if m.initialized {
		m.mu.Unlock()
		return nil
	}
	m.initialized = true

	state := m.store.Get()
	_, hasCredentials := m.client.Vault().Pair()

	if state.Identity == nil || !hasCredentials {
		m.phase = PhaseUnauthenticated
		m.mu.Unlock()

		// Marker and credentials must agree; a half-present session is
		// cleared so nothing stale lingers.
		if state.Identity != nil || hasCredentials {
			_ = m.store.Clear(ctx)
			_ = m.client.Vault().Clear(ctx)
		}
		m.metrics.Inc(MetricHydrationFastPath)
		m.emitAudit(ctx, auditSessionHydrated, 0, true, "", map[string]string{"outcome": "unauthenticated"})
		return nil
	}

	m.phase = PhaseAuthenticated
	m.confirmed = false
	userID := state.Identity.ID
	m.mu.Unlock()

	m.metrics.Inc(MetricOptimisticAuth)
	m.emitAudit(ctx, auditSessionHydrated, userID, true, "", map[string]string{"outcome": "optimistic"})

	go func() {
		if _, err := m.VerifySession(context.Background(), ""); err != nil {
			m.log.WithError(err).Warn("background session verification failed")
		}
	}()
	return nil
}

// Hydrated returns the store's hydration-complete signal.
func (m *Manager) Hydrated() <-chan struct{} {
	return m.store.Hydrated()
}

// Login describes the login operation and its observable behavior.
//
// One round trip, never retried. Acceptance stores the identity and
// credential pair, confirms the session, and navigates to the role's
// landing route. Refusal parks the manager in PhaseError with the
// server's user-facing message; no prior session is disturbed because
// login only happens logged out.
func (m *Manager) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	m.setPhase(PhaseVerifying)
	m.store.SetLoading(true)
	m.store.SetError("")
	defer m.store.SetLoading(false)

	resp, err := m.client.Login(ctx, transport.LoginRequest{Email: email, Password: password})
	if err != nil {
		m.setPhase(PhaseError)
		m.store.SetError("No se pudo conectar con el servidor")
		m.metrics.Inc(MetricLoginFailure)
		m.emitAudit(ctx, auditLoginFailure, 0, false, err.Error(), nil)
		return nil, err
	}
	if !resp.Success || resp.Identity == nil {
		message := resp.Message
		if message == "" {
			message = "Credenciales incorrectas"
		}
		m.setPhase(PhaseError)
		m.store.SetError(message)
		m.metrics.Inc(MetricLoginFailure)
		m.emitAudit(ctx, auditLoginFailure, 0, false, message, nil)
		return nil, fmt.Errorf("%w: %s", ErrInvalidCredentials, message)
	}

	if err := m.store.SetIdentity(ctx, resp.Identity); err != nil {
		m.log.WithError(err).Warn("session projection not persisted")
	}

	m.mu.Lock()
	m.generation++
	m.phase = PhaseAuthenticated
	m.confirmed = true
	m.mu.Unlock()

	route := LandingRoute(resp.Identity.Role, m.cfg.Routes.LoginRoute)
	m.navigate(ctx, route)

	m.metrics.Inc(MetricLoginSuccess)
	m.emitAudit(ctx, auditLoginSuccess, resp.Identity.ID, true, "", map[string]string{
		"role":  resp.Identity.Role.Label(),
		"route": route,
	})

	return &LoginResult{Identity: resp.Identity, Route: route}, nil
}

// Logout describes the logout operation and its observable behavior.
//
// Fail-open: queued refresh continuations are rejected, local state is
// cleared unconditionally, and remote invalidation is best effort. A
// remote failure is logged and counted, never returned.
func (m *Manager) Logout(ctx context.Context) error {
	m.mu.Lock()
	m.generation++
	userID := int64(0)
	if state := m.store.Get(); state.Identity != nil {
		userID = state.Identity.ID
	}
	m.mu.Unlock()

	if err := m.client.Logout(ctx); err != nil {
		m.log.WithError(err).Warn("remote session invalidation failed")
		m.metrics.Inc(MetricLogoutRemoteFailure)
	}
	if err := m.store.Clear(ctx); err != nil {
		m.log.WithError(err).Warn("session slot not cleared")
	}

	m.mu.Lock()
	m.phase = PhaseUnauthenticated
	m.confirmed = false
	m.mu.Unlock()

	m.navigate(ctx, m.cfg.Routes.LoginRoute)
	m.metrics.Inc(MetricLogout)
	m.emitAudit(ctx, auditLogout, userID, true, "", nil)
	return nil
}

// RefreshIdentity re-reads the profile over the authorized pipeline and
// replaces the cached copy. Failure is logged and reported but never
// flips the authenticated flag; the session outlives a profile hiccup.
func (m *Manager) RefreshIdentity(ctx context.Context) error {
	m.mu.Lock()
	if m.phase != PhaseAuthenticated {
		m.mu.Unlock()
		return ErrNotAuthenticated
	}
	gen := m.generation
	m.mu.Unlock()

	identity, err := m.client.CurrentIdentity(ctx)
	if err != nil {
		m.metrics.Inc(MetricIdentityReloadFailure)
		m.emitAudit(ctx, auditIdentityReloadError, 0, false, err.Error(), nil)
		m.log.WithError(err).Warn("identity reload failed")
		return err
	}

	m.mu.Lock()
	if m.generation != gen {
		m.mu.Unlock()
		return nil
	}
	m.mu.Unlock()

	if err := m.store.SetIdentity(ctx, identity); err != nil {
		m.log.WithError(err).Warn("session projection not persisted")
	}
	m.metrics.Inc(MetricIdentityReloadSuccess)
	m.emitAudit(ctx, auditIdentityReloaded, identity.ID, true, "", nil)
	return nil
}

// VerifySession runs the canonical liveness check. The result is tagged
// with the generation observed at entry; if a login or logout advanced
// it while the call was in flight, the result is discarded untouched and
// reported with Stale set. An invalid session forces Unauthenticated
// silently: no error banner, state simply clears.
func (m *Manager) VerifySession(ctx context.Context, routeHint string) (VerifyResult, error) {
	m.mu.Lock()
	if !m.initialized {
		m.mu.Unlock()
		return VerifyResult{}, ErrManagerNotReady
	}
	gen := m.generation
	m.mu.Unlock()

	start := time.Now()
	resp, err := m.client.VerifySession(ctx, routeHint)
	m.metrics.Observe(MetricVerifyLatency, time.Since(start))

	if err != nil {
		if errors.Is(err, transport.ErrSessionExpired) ||
			errors.Is(err, transport.ErrRefreshFailed) ||
			errors.Is(err, transport.ErrNoCredentials) {
			if m.revokeIfCurrent(ctx, gen) {
				m.metrics.Inc(MetricVerifyRevoked)
				m.emitAudit(ctx, auditVerifyRevoked, 0, true, err.Error(), nil)
			}
			return VerifyResult{Authenticated: false}, nil
		}
		// Indeterminate outcome (network and friends): keep state as is.
		return VerifyResult{}, err
	}

	m.mu.Lock()
	if m.generation != gen {
		m.mu.Unlock()
		m.metrics.Inc(MetricVerifyStaleDiscarded)
		m.emitAudit(ctx, auditVerifyStale, 0, true, "", nil)
		return VerifyResult{Stale: true}, nil
	}

	if !resp.IsAuthenticated {
		m.phase = PhaseUnauthenticated
		m.confirmed = false
		m.mu.Unlock()

		_ = m.store.Clear(ctx)
		_ = m.client.Vault().Clear(ctx)
		m.metrics.Inc(MetricVerifyRevoked)
		m.emitAudit(ctx, auditVerifyRevoked, 0, true, "", nil)
		return VerifyResult{Authenticated: false}, nil
	}

	m.phase = PhaseAuthenticated
	m.confirmed = true
	m.mu.Unlock()

	if resp.Identity != nil {
		if err := m.store.SetIdentity(ctx, resp.Identity); err != nil {
			m.log.WithError(err).Warn("session projection not persisted")
		}
	}
	m.metrics.Inc(MetricVerifyConfirmed)
	m.emitAudit(ctx, auditVerifyConfirmed, identityID(resp.Identity), true, "", nil)

	return VerifyResult{
		Authenticated:     true,
		HasPermission:     resp.HasPermission,
		AccessibleModules: resp.AccessibleModules,
	}, nil
}

// CanAccessRoute reports whether the current identity may see the module
// the path belongs to. Paths outside the app prefix are never gated
// here.
func (m *Manager) CanAccessRoute(path string) bool {
	state := m.store.Get()
	if state.Identity == nil {
		return false
	}
	module, ok := permission.RouteModule(path, m.cfg.Routes.AppPrefix)
	if !ok {
		return false
	}
	return m.table.HasModuleAccess(state.Identity.Role, module)
}

// CanPerform reports whether the current identity may perform the
// capability on the module. Two-tier trust: an optimistically restored
// session answers false for every capability until one server
// confirmation has happened, no matter what the local table says.
func (m *Manager) CanPerform(module string, capability Capability) bool {
	m.mu.Lock()
	confirmed := m.confirmed
	m.mu.Unlock()
	if !confirmed {
		return false
	}

	state := m.store.Get()
	if state.Identity == nil {
		return false
	}
	return m.table.HasOperationPermission(state.Identity.Role, module, capability)
}

// AccessibleModules returns the ordered module list for the current
// role, or nil when logged out.
func (m *Manager) AccessibleModules() []string {
	state := m.store.Get()
	if state.Identity == nil {
		return nil
	}
	return m.table.AccessibleModules(state.Identity.Role)
}

// State returns a copy of the session state.
func (m *Manager) State() SessionState {
	return m.store.Get()
}

// Phase returns the manager's lifecycle phase.
func (m *Manager) Phase() Phase {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.phase
}

// Confirmed reports whether the server has vouched for this session at
// least once since it was established.
func (m *Manager) Confirmed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.confirmed
}

// Metrics returns the manager's metrics registry.
func (m *Manager) Metrics() *Metrics {
	return m.metrics
}

// MetricsSnapshot returns a point-in-time copy of all counters and
// histograms. Exporters read through this.
func (m *Manager) MetricsSnapshot() MetricsSnapshot {
	return m.metrics.Snapshot()
}

// AuditDropped returns the number of audit events dropped by dispatcher
// backpressure.
func (m *Manager) AuditDropped() uint64 {
	return m.audit.Dropped()
}

// Close flushes and stops the audit dispatcher.
func (m *Manager) Close() {
	m.audit.Close()
}

// handleTerminal runs when the transport reports a rejected refresh:
// the vault is already cleared, so the session is gone regardless of
// local opinion.
func (m *Manager) handleTerminal(err error) {
	ctx := context.Background()

	m.mu.Lock()
	m.generation++
	m.phase = PhaseUnauthenticated
	m.confirmed = false
	m.mu.Unlock()

	_ = m.store.Clear(ctx)
	m.navigate(ctx, m.cfg.Routes.LoginRoute)
	m.metrics.Inc(MetricTerminalFailure)
	m.emitAudit(ctx, auditRefreshTerminal, 0, false, err.Error(), nil)
	m.log.WithError(err).Info("session ended by terminal refresh failure")
}

// revokeIfCurrent clears the session only when no newer login or logout
// has already rewritten it.
func (m *Manager) revokeIfCurrent(ctx context.Context, gen uint64) bool {
	m.mu.Lock()
	if m.generation != gen {
		m.mu.Unlock()
		return false
	}
	m.phase = PhaseUnauthenticated
	m.confirmed = false
	m.mu.Unlock()

	_ = m.store.Clear(ctx)
	_ = m.client.Vault().Clear(ctx)
	return true
}

func (m *Manager) setPhase(p Phase) {
	m.mu.Lock()
	m.phase = p
	m.mu.Unlock()
}

func (m *Manager) generationValue() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.generation
}

func (m *Manager) navigate(ctx context.Context, route string) {
	if m.navigator == nil {
		return
	}
	m.navigator.Navigate(route)
	m.emitAudit(ctx, auditNavigation, 0, true, "", map[string]string{"route": route})
}

func identityID(id *session.Identity) int64 {
	if id == nil {
		return 0
	}
	return id.ID
}
