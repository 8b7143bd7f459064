package main

import (
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/stockwise/authkit/permission"
	"github.com/stockwise/authkit/session"
	"github.com/stockwise/authkit/transport"
)

var stubSigningKey = []byte("demo-signing-key")

// stubBackend is an in-memory rendition of the auth API: one known user
// per role, HS256 access tokens, rotating opaque refresh tokens.
type stubBackend struct {
	accessTTL time.Duration

	mu       sync.Mutex
	sessions map[string]int64 // refresh token -> user ID
}

func newStubBackend(accessTTL time.Duration) *stubBackend {
	return &stubBackend{
		accessTTL: accessTTL,
		sessions:  make(map[string]int64),
	}
}

var stubUsers = map[string]*session.Identity{
	"admin@stockwise.test": {
		ID: 1, Code: "EMP-001", Name: "Admin Demo", Email: "admin@stockwise.test",
		Role: permission.RoleAdministrador, Active: true,
	},
	"bodeguero@stockwise.test": {
		ID: 2, Code: "EMP-002", Name: "Bodeguero Demo", Email: "bodeguero@stockwise.test",
		Role: permission.RoleBodeguero, Area: "Bodega Central", Active: true,
	},
	"vendedor@stockwise.test": {
		ID: 3, Code: "EMP-003", Name: "Vendedor Demo", Email: "vendedor@stockwise.test",
		Role: permission.RoleVendedor, Active: true,
	},
}

func (s *stubBackend) router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Post("/api/auth/login", s.handleLogin)
	r.Post("/api/auth/logout", s.handleLogout)
	r.Get("/api/auth/me", s.handleMe)
	r.Post("/api/auth/verify", s.handleVerify)
	r.Post("/api/auth/refresh", s.handleRefresh)

	return r
}

func (s *stubBackend) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req transport.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, transport.LoginResponse{Message: "solicitud invalida"})
		return
	}

	user, ok := stubUsers[req.Email]
	if !ok || req.Password != "secreto123" {
		writeJSON(w, http.StatusUnauthorized, transport.LoginResponse{Message: "Credenciales incorrectas"})
		return
	}

	access, refresh := s.issue(user.ID)
	writeJSON(w, http.StatusOK, transport.LoginResponse{
		Success:      true,
		Identity:     user,
		AccessToken:  access,
		RefreshToken: refresh,
	})
}

func (s *stubBackend) handleLogout(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.authorize(r); !ok {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	writeJSON(w, http.StatusOK, transport.StatusResponse{Success: true})
}

func (s *stubBackend) handleMe(w http.ResponseWriter, r *http.Request) {
	user, ok := s.authorize(r)
	if !ok {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	writeJSON(w, http.StatusOK, transport.IdentityResponse{Success: true, Identity: user})
}

func (s *stubBackend) handleVerify(w http.ResponseWriter, r *http.Request) {
	user, ok := s.authorize(r)
	if !ok {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	var req transport.VerifyRequest
	_ = json.NewDecoder(r.Body).Decode(&req)

	table := permission.DefaultTable()
	hasPermission := req.RouteHint == "" || table.HasModuleAccess(user.Role, req.RouteHint)

	writeJSON(w, http.StatusOK, transport.VerifyResponse{
		IsAuthenticated:   true,
		HasPermission:     hasPermission,
		Identity:          user,
		AccessibleModules: table.AccessibleModules(user.Role),
	})
}

func (s *stubBackend) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	userID, ok := s.sessions[req.RefreshToken]
	if ok {
		delete(s.sessions, req.RefreshToken)
	}
	s.mu.Unlock()
	if !ok {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	access, refresh := s.issue(userID)
	writeJSON(w, http.StatusOK, transport.RefreshResponse{
		Success:      true,
		AccessToken:  access,
		RefreshToken: refresh,
	})
}

func (s *stubBackend) issue(userID int64) (access, refresh string) {
	claims := jwt.MapClaims{
		"sub": userID,
		"exp": time.Now().Add(s.accessTTL).Unix(),
	}
	access, _ = jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(stubSigningKey)

	refresh = uuid.NewString()
	s.mu.Lock()
	s.sessions[refresh] = userID
	s.mu.Unlock()
	return access, refresh
}

func (s *stubBackend) authorize(r *http.Request) (*session.Identity, bool) {
	raw := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	if raw == "" {
		return nil, false
	}

	token, err := jwt.Parse(raw, func(*jwt.Token) (any, error) {
		return stubSigningKey, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil || !token.Valid {
		return nil, false
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, false
	}
	sub, _ := claims["sub"].(float64)
	for _, user := range stubUsers {
		if user.ID == int64(sub) {
			return user, true
		}
	}
	return nil, false
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
