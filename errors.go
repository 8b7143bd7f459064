package authkit

import (
	"errors"

	"github.com/stockwise/authkit/session"
	"github.com/stockwise/authkit/transport"
)

// Sentinels raised by subpackages are re-exported here so callers match
// against one surface with errors.Is.
var (
	// ErrNetwork is an exported constant or variable used by the session manager.
	ErrNetwork = transport.ErrNetwork
	// ErrInvalidCredentials is an exported constant or variable used by the session manager.
	ErrInvalidCredentials = transport.ErrInvalidCredentials
	// ErrSessionExpired is an exported constant or variable used by the session manager.
	ErrSessionExpired = transport.ErrSessionExpired
	// ErrRefreshFailed is an exported constant or variable used by the session manager.
	ErrRefreshFailed = transport.ErrRefreshFailed
	// ErrRefreshCancelled is an exported constant or variable used by the session manager.
	ErrRefreshCancelled = transport.ErrRefreshCancelled
	// ErrNoCredentials is an exported constant or variable used by the session manager.
	ErrNoCredentials = transport.ErrNoCredentials
	// ErrMalformedIdentity is an exported constant or variable used by the session manager.
	ErrMalformedIdentity = session.ErrMalformedIdentity
)

var (
	// ErrPermissionDenied is an exported constant or variable used by the session manager.
	ErrPermissionDenied = errors.New("permission denied")
	// ErrManagerNotReady is an exported constant or variable used by the session manager.
	ErrManagerNotReady = errors.New("manager not hydrated")
	// ErrNotAuthenticated is an exported constant or variable used by the session manager.
	ErrNotAuthenticated = errors.New("not authenticated")
)
