package session

import (
	"time"

	"github.com/stockwise/authkit/permission"
)

// Identity is the authenticated user's profile data. It never contains
// credentials; those live in the transport vault.
type Identity struct {
	ID            int64           `json:"id"`
	Code          string          `json:"code,omitempty"`
	Name          string          `json:"name"`
	Email         string          `json:"email"`
	Role          permission.Role `json:"role"`
	Area          string          `json:"area,omitempty"`
	Active        bool            `json:"active"`
	LoginAttempts int             `json:"login_attempts,omitempty"`
	CreatedBy     int64           `json:"created_by,omitempty"`
	CreatedAt     time.Time       `json:"created_at,omitempty"`
	UpdatedBy     int64           `json:"updated_by,omitempty"`
	UpdatedAt     time.Time       `json:"updated_at,omitempty"`
}

// Projection is the non-secret subset of [Identity] persisted to the
// script-readable slot for optimistic UI paint. It must never authorize
// a protected operation by itself.
type Projection struct {
	ID    int64           `json:"id"`
	Name  string          `json:"name"`
	Email string          `json:"email"`
	Role  permission.Role `json:"role"`
	Area  string          `json:"area,omitempty"`
}

// ProjectionOf extracts the persistable subset of an identity.
func ProjectionOf(id *Identity) Projection {
	if id == nil {
		return Projection{}
	}
	return Projection{
		ID:    id.ID,
		Name:  id.Name,
		Email: id.Email,
		Role:  id.Role,
		Area:  id.Area,
	}
}

// Identity rebuilds a provisional [Identity] from the projection. The
// result carries only the projected fields; audit fields and flags are
// zero until a server round trip replaces it.
func (p Projection) Identity() *Identity {
	return &Identity{
		ID:    p.ID,
		Name:  p.Name,
		Email: p.Email,
		Role:  p.Role,
		Area:  p.Area,
	}
}

// State is the session record observed by UI code.
//
// Invariant: Authenticated is true iff Identity is non-nil. The Store
// enforces this on every mutation; callers receive copies and cannot
// break it.
type State struct {
	Identity      *Identity
	Authenticated bool
	Loading       bool
	Err           string
	Hydrated      bool
}
