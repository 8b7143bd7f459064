package authkit

import (
	"context"
	"io"

	internalaudit "github.com/stockwise/authkit/internal/audit"
	"github.com/stockwise/authkit/permission"
	"github.com/stockwise/authkit/session"
	"github.com/stockwise/authkit/transport"
)

// Role identifies one of the application's six fixed roles.
type Role = permission.Role

const (
	// RoleAdministrador is an exported constant or variable used by the session manager.
	RoleAdministrador = permission.RoleAdministrador
	// RoleSupervisor is an exported constant or variable used by the session manager.
	RoleSupervisor = permission.RoleSupervisor
	// RoleBodeguero is an exported constant or variable used by the session manager.
	RoleBodeguero = permission.RoleBodeguero
	// RoleVendedor is an exported constant or variable used by the session manager.
	RoleVendedor = permission.RoleVendedor
	// RoleComprador is an exported constant or variable used by the session manager.
	RoleComprador = permission.RoleComprador
	// RoleAuditor is an exported constant or variable used by the session manager.
	RoleAuditor = permission.RoleAuditor
)

// Capability identifies one of the five operation kinds a role may hold
// on a module.
type Capability = permission.Capability

const (
	// CapView is an exported constant or variable used by the session manager.
	CapView = permission.CapView
	// CapCreate is an exported constant or variable used by the session manager.
	CapCreate = permission.CapCreate
	// CapEdit is an exported constant or variable used by the session manager.
	CapEdit = permission.CapEdit
	// CapDelete is an exported constant or variable used by the session manager.
	CapDelete = permission.CapDelete
	// CapExport is an exported constant or variable used by the session manager.
	CapExport = permission.CapExport
)

// Identity is the authenticated user's profile.
type Identity = session.Identity

// SessionState is the session record observed by callers.
type SessionState = session.State

// Slot is the durable key-value cell both the profile store and the
// credential vault persist into.
type Slot = session.Slot

// LoginResult is returned by [Manager.Login] on acceptance.
type LoginResult struct {
	Identity *Identity
	Route    string
}

// VerifyResult is returned by [Manager.VerifySession]. Stale marks a
// result that arrived after a newer login or logout and was discarded
// without touching state.
type VerifyResult struct {
	Authenticated     bool
	HasPermission     bool
	AccessibleModules []string
	Stale             bool
}

// Navigator receives route changes decided by the [Manager]: the landing
// route after login and the login route after logout or terminal
// failure.
type Navigator interface {
	Navigate(route string)
}

// NavigatorFunc adapts a function to the [Navigator] interface.
type NavigatorFunc func(route string)

func (f NavigatorFunc) Navigate(route string) { f(route) }

// AuditEvent is the canonical audit event model.
type AuditEvent = internalaudit.Event

// AuditSink receives emitted audit events.
type AuditSink = internalaudit.Sink

// NoOpSink drops audit events.
type NoOpSink = internalaudit.NoOpSink

// ChannelSink buffers audit events in a channel for test or pipeline
// consumption.
type ChannelSink = internalaudit.ChannelSink

// JSONWriterSink is an [AuditSink] that writes JSON-encoded events to an
// [io.Writer].
type JSONWriterSink = internalaudit.JSONWriterSink

// NewChannelSink creates a [ChannelSink] with the given buffer capacity.
func NewChannelSink(buffer int) *ChannelSink {
	return internalaudit.NewChannelSink(buffer)
}

// NewJSONWriterSink creates a [JSONWriterSink] that writes to w.
func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	return internalaudit.NewJSONWriterSink(w)
}

// WithRequestID attaches a correlation identifier to ctx for the HTTP
// backend's X-Request-ID header.
func WithRequestID(ctx context.Context, id string) context.Context {
	return transport.WithRequestID(ctx, id)
}

// WithUserAgent attaches a User-Agent override to ctx.
func WithUserAgent(ctx context.Context, userAgent string) context.Context {
	return transport.WithUserAgent(ctx, userAgent)
}
