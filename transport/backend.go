package transport

import (
	"context"

	"github.com/stockwise/authkit/session"
)

// LoginRequest carries the credentials submitted on the login form.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse is the server's answer to a login attempt. On success
// it carries the full identity and a fresh credential pair in one round
// trip; on refusal Success is false and Message explains why.
type LoginResponse struct {
	Success      bool              `json:"success"`
	Message      string            `json:"message,omitempty"`
	Identity     *session.Identity `json:"user,omitempty"`
	AccessToken  string            `json:"access_token,omitempty"`
	RefreshToken string            `json:"refresh_token,omitempty"`
}

// StatusResponse is the generic success/message envelope for endpoints
// with no payload.
type StatusResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// IdentityResponse wraps a profile re-read.
type IdentityResponse struct {
	Success  bool              `json:"success"`
	Message  string            `json:"message,omitempty"`
	Identity *session.Identity `json:"user,omitempty"`
}

// VerifyRequest asks the server to confirm the session. RouteHint is the
// module the client is about to show, letting the server scope the
// permission bit it returns.
type VerifyRequest struct {
	RouteHint string `json:"route,omitempty"`
}

// VerifyResponse is the server's authoritative session check.
type VerifyResponse struct {
	IsAuthenticated   bool              `json:"is_authenticated"`
	HasPermission     bool              `json:"has_permission"`
	Identity          *session.Identity `json:"user,omitempty"`
	AccessibleModules []string          `json:"accessible_modules,omitempty"`
}

// RefreshResponse carries a rotated credential pair.
type RefreshResponse struct {
	Success      bool   `json:"success"`
	Message      string `json:"message,omitempty"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// Backend is the server API surface the client depends on. The real
// implementation is [HTTPBackend]; tests substitute fakes.
type Backend interface {
	Login(ctx context.Context, req LoginRequest) (*LoginResponse, error)
	Logout(ctx context.Context, accessToken string) error
	CurrentIdentity(ctx context.Context, accessToken string) (*session.Identity, error)
	VerifySession(ctx context.Context, accessToken string, req VerifyRequest) (*VerifyResponse, error)
	RefreshCredentials(ctx context.Context, refreshToken string) (*RefreshResponse, error)
}
