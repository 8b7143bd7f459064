package authkit

import (
	"context"
	"time"
)

// Audit event types emitted by the Manager.
const (
	auditSessionHydrated     = "session_hydrated"
	auditLoginSuccess        = "login_success"
	auditLoginFailure        = "login_failure"
	auditLogout              = "logout"
	auditVerifyConfirmed     = "verify_confirmed"
	auditVerifyRevoked       = "verify_revoked"
	auditVerifyStale         = "verify_stale_discarded"
	auditRefreshTerminal     = "refresh_terminal"
	auditIdentityReloaded    = "identity_reloaded"
	auditIdentityReloadError = "identity_reload_failed"
	auditNavigation          = "navigation"
)

func (m *Manager) emitAudit(ctx context.Context, eventType string, userID int64, success bool, errMsg string, metadata map[string]string) {
	if m.audit == nil {
		return
	}
	m.audit.Emit(ctx, AuditEvent{
		Timestamp:  time.Now().UTC(),
		EventType:  eventType,
		UserID:     userID,
		Generation: m.generationValue(),
		Success:    success,
		Error:      errMsg,
		Metadata:   metadata,
	})
}
