package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/stockwise/authkit/session"
)

// Endpoints names the server paths the backend calls, relative to the
// base URL.
type Endpoints struct {
	Login    string
	Logout   string
	Identity string
	Verify   string
	Refresh  string
}

// DefaultEndpoints returns the application's standard API layout.
func DefaultEndpoints() Endpoints {
	return Endpoints{
		Login:    "/api/auth/login",
		Logout:   "/api/auth/logout",
		Identity: "/api/auth/me",
		Verify:   "/api/auth/verify",
		Refresh:  "/api/auth/refresh",
	}
}

// HTTPBackend is the production [Backend]: JSON over HTTP with bearer
// authentication and per-request correlation IDs.
type HTTPBackend struct {
	baseURL   string
	endpoints Endpoints
	client    *http.Client
	userAgent string
}

// HTTPConfig configures an [HTTPBackend]. Zero-valued fields fall back
// to defaults.
type HTTPConfig struct {
	BaseURL   string
	Endpoints Endpoints
	Client    *http.Client
	UserAgent string
}

// NewHTTPBackend creates an [HTTPBackend] from cfg.
func NewHTTPBackend(cfg HTTPConfig) *HTTPBackend {
	if cfg.Client == nil {
		cfg.Client = &http.Client{Timeout: 15 * time.Second}
	}
	if cfg.Endpoints == (Endpoints{}) {
		cfg.Endpoints = DefaultEndpoints()
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = "authkit"
	}
	return &HTTPBackend{
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		endpoints: cfg.Endpoints,
		client:    cfg.Client,
		userAgent: cfg.UserAgent,
	}
}

// Login describes the login operation and its observable behavior.
// Server refusals come back as a response with Success false, whatever
// status code carried them; only transport-level failures are errors.
func (b *HTTPBackend) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	status, body, err := b.do(ctx, http.MethodPost, b.endpoints.Login, "", req)
	if err != nil {
		return nil, err
	}

	var resp LoginResponse
	decodeErr := json.Unmarshal(body, &resp)

	switch {
	case status >= 200 && status < 300:
		if decodeErr != nil {
			return nil, apiErrorFrom(status, body)
		}
		return &resp, nil
	case status < 500 && decodeErr == nil && resp.Message != "":
		resp.Success = false
		return &resp, nil
	default:
		return nil, apiErrorFrom(status, body)
	}
}

// Logout describes the logout operation and its observable behavior.
func (b *HTTPBackend) Logout(ctx context.Context, accessToken string) error {
	status, body, err := b.do(ctx, http.MethodPost, b.endpoints.Logout, accessToken, nil)
	if err != nil {
		return err
	}
	switch {
	case status >= 200 && status < 300:
		return nil
	case status == http.StatusUnauthorized:
		return ErrSessionExpired
	default:
		return apiErrorFrom(status, body)
	}
}

// CurrentIdentity describes the currentidentity operation and its
// observable behavior.
func (b *HTTPBackend) CurrentIdentity(ctx context.Context, accessToken string) (*session.Identity, error) {
	status, body, err := b.do(ctx, http.MethodGet, b.endpoints.Identity, accessToken, nil)
	if err != nil {
		return nil, err
	}
	if status == http.StatusUnauthorized {
		return nil, ErrSessionExpired
	}
	if status < 200 || status >= 300 {
		return nil, apiErrorFrom(status, body)
	}

	var resp IdentityResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, apiErrorFrom(status, body)
	}
	if !resp.Success || resp.Identity == nil {
		return nil, &APIError{Status: status, Message: resp.Message}
	}
	return resp.Identity, nil
}

// VerifySession describes the verifysession operation and its observable
// behavior. A 401 is reported as [ErrSessionExpired] so the client's
// refresh pipeline gets one shot at reviving the session before the
// verdict stands.
func (b *HTTPBackend) VerifySession(ctx context.Context, accessToken string, req VerifyRequest) (*VerifyResponse, error) {
	status, body, err := b.do(ctx, http.MethodPost, b.endpoints.Verify, accessToken, req)
	if err != nil {
		return nil, err
	}
	if status == http.StatusUnauthorized {
		return nil, ErrSessionExpired
	}
	if status < 200 || status >= 300 {
		return nil, apiErrorFrom(status, body)
	}

	var resp VerifyResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, apiErrorFrom(status, body)
	}
	return &resp, nil
}

// RefreshCredentials describes the refreshcredentials operation and its
// observable behavior. Rejection of the refresh credential is
// [ErrRefreshFailed]; only unreachability is [ErrNetwork].
func (b *HTTPBackend) RefreshCredentials(ctx context.Context, refreshToken string) (*RefreshResponse, error) {
	payload := struct {
		RefreshToken string `json:"refresh_token"`
	}{RefreshToken: refreshToken}

	status, body, err := b.do(ctx, http.MethodPost, b.endpoints.Refresh, "", payload)
	if err != nil {
		return nil, err
	}
	if status == http.StatusUnauthorized || status == http.StatusForbidden {
		return nil, fmt.Errorf("%w: status %d", ErrRefreshFailed, status)
	}
	if status < 200 || status >= 300 {
		return nil, apiErrorFrom(status, body)
	}

	var resp RefreshResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, apiErrorFrom(status, body)
	}
	if !resp.Success || resp.AccessToken == "" {
		return nil, fmt.Errorf("%w: %s", ErrRefreshFailed, resp.Message)
	}
	return &resp, nil
}

func (b *HTTPBackend) do(ctx context.Context, method, path, accessToken string, payload any) (int, []byte, error) {
	var reqBody io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return 0, nil, err
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, b.baseURL+path, reqBody)
	if err != nil {
		return 0, nil, err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+accessToken)
	}

	requestID := requestIDFromContext(ctx)
	if requestID == "" {
		requestID = uuid.NewString()
	}
	req.Header.Set("X-Request-ID", requestID)

	userAgent := userAgentFromContext(ctx)
	if userAgent == "" {
		userAgent = b.userAgent
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := b.client.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return 0, nil, fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	return resp.StatusCode, body, nil
}

func apiErrorFrom(status int, body []byte) *APIError {
	var envelope struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}
	_ = json.Unmarshal(body, &envelope)
	return &APIError{Status: status, Code: envelope.Code, Message: envelope.Message}
}
