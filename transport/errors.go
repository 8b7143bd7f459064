package transport

import (
	"errors"
	"fmt"
)

var (
	// ErrNetwork is an exported constant or variable used by the transport client.
	ErrNetwork = errors.New("network unreachable")
	// ErrInvalidCredentials is an exported constant or variable used by the transport client.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrSessionExpired is an exported constant or variable used by the transport client.
	ErrSessionExpired = errors.New("session expired")
	// ErrRefreshFailed is an exported constant or variable used by the transport client.
	ErrRefreshFailed = errors.New("credential refresh rejected")
	// ErrRefreshCancelled is an exported constant or variable used by the transport client.
	ErrRefreshCancelled = errors.New("credential refresh cancelled")
	// ErrNoCredentials is an exported constant or variable used by the transport client.
	ErrNoCredentials = errors.New("no stored credentials")
)

// APIError carries a non-2xx server response that is not one of the
// sentinel conditions above.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("api error %d", e.Status)
}
