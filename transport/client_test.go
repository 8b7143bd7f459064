package transport

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stockwise/authkit/session"
)

// fakeBackend lets tests script server behavior per endpoint. The
// refresh gate, when set, blocks RefreshCredentials until released so
// tests can pile waiters behind an in-flight refresh deterministically.
type fakeBackend struct {
	mu           sync.Mutex
	refreshCalls int
	logoutCalls  int

	refreshGate chan struct{}
	refreshErr  error
	nextAccess  string
	nextRefresh string
	lastRefresh string

	logoutErr error

	loginResp *LoginResponse
	loginErr  error

	identity    *session.Identity
	identityErr error

	verifyResp *VerifyResponse
	verifyErr  func(callNum int) error
	verifyNum  int
}

func (f *fakeBackend) Login(context.Context, LoginRequest) (*LoginResponse, error) {
	return f.loginResp, f.loginErr
}

func (f *fakeBackend) Logout(context.Context, string) error {
	f.mu.Lock()
	f.logoutCalls++
	f.mu.Unlock()
	return f.logoutErr
}

func (f *fakeBackend) CurrentIdentity(context.Context, string) (*session.Identity, error) {
	return f.identity, f.identityErr
}

func (f *fakeBackend) VerifySession(context.Context, string, VerifyRequest) (*VerifyResponse, error) {
	f.mu.Lock()
	f.verifyNum++
	n := f.verifyNum
	f.mu.Unlock()
	if f.verifyErr != nil {
		if err := f.verifyErr(n); err != nil {
			return nil, err
		}
	}
	return f.verifyResp, nil
}

func (f *fakeBackend) RefreshCredentials(_ context.Context, refreshToken string) (*RefreshResponse, error) {
	if f.refreshGate != nil {
		<-f.refreshGate
	}
	f.mu.Lock()
	f.refreshCalls++
	f.lastRefresh = refreshToken
	f.mu.Unlock()
	if f.refreshErr != nil {
		return nil, f.refreshErr
	}
	return &RefreshResponse{
		Success:      true,
		AccessToken:  f.nextAccess,
		RefreshToken: f.nextRefresh,
	}, nil
}

func (f *fakeBackend) refreshCallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.refreshCalls
}

func TestDoSingleFlightRefresh(t *testing.T) {
	fresh := signedToken(t, time.Now().Add(time.Hour))
	backend := &fakeBackend{
		refreshGate: make(chan struct{}),
		nextAccess:  fresh,
		nextRefresh: "r2",
	}
	vault := NewVault(nil)
	ctx := context.Background()
	_ = vault.SetPair(ctx, Pair{Access: signedToken(t, time.Now().Add(-time.Minute)), Refresh: "r1"})

	client := NewClient(backend, vault, 0)

	var started, shared atomic.Int64
	client.SetEventHook(func(e RefreshEvent) {
		switch e {
		case RefreshStarted:
			started.Add(1)
		case RefreshShared:
			shared.Add(1)
		}
	})

	const n = 8
	var wg sync.WaitGroup
	wg.Add(n)

	tokens := make(chan string, n)
	results := make(chan error, n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			results <- client.Do(ctx, func(_ context.Context, accessToken string) error {
				tokens <- accessToken
				return nil
			})
		}()
	}

	// Wait until one caller holds the flag and the rest are parked,
	// then let the refresh round trip complete.
	deadline := time.Now().Add(2 * time.Second)
	for started.Load() != 1 || shared.Load() != n-1 {
		if time.Now().After(deadline) {
			t.Fatalf("callers never converged: started=%d shared=%d", started.Load(), shared.Load())
		}
		time.Sleep(time.Millisecond)
	}
	close(backend.refreshGate)
	wg.Wait()
	close(results)
	close(tokens)

	for err := range results {
		if err != nil {
			t.Fatalf("Do failed: %v", err)
		}
	}
	if got := backend.refreshCallCount(); got != 1 {
		t.Fatalf("expected exactly one refresh call, got %d", got)
	}
	for token := range tokens {
		if token != fresh {
			t.Fatalf("caller used token %q, want the shared refreshed one", token)
		}
	}
}

func TestDoReactiveRetryOnce(t *testing.T) {
	fresh := signedToken(t, time.Now().Add(time.Hour))
	backend := &fakeBackend{nextAccess: fresh, nextRefresh: "r2"}
	vault := NewVault(nil)
	ctx := context.Background()
	_ = vault.SetPair(ctx, Pair{Access: signedToken(t, time.Now().Add(time.Hour)), Refresh: "r1"})

	client := NewClient(backend, vault, 0)

	calls := 0
	err := client.Do(ctx, func(_ context.Context, accessToken string) error {
		calls++
		if calls == 1 {
			return ErrSessionExpired
		}
		if accessToken != fresh {
			return fmt.Errorf("replay used stale token %q", accessToken)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if calls != 2 {
		t.Fatalf("expected exactly one replay, got %d calls", calls)
	}
	if got := backend.refreshCallCount(); got != 1 {
		t.Fatalf("expected one refresh call, got %d", got)
	}
}

func TestRefreshWithoutRotationKeepsRefreshCredential(t *testing.T) {
	fresh := signedToken(t, time.Now().Add(time.Hour))
	backend := &fakeBackend{nextAccess: fresh, nextRefresh: ""}
	vault := NewVault(nil)
	ctx := context.Background()
	_ = vault.SetPair(ctx, Pair{Access: signedToken(t, time.Now().Add(-time.Minute)), Refresh: "r1"})

	client := NewClient(backend, vault, 0)
	if err := client.Do(ctx, func(context.Context, string) error { return nil }); err != nil {
		t.Fatalf("Do: %v", err)
	}

	pair, ok := vault.Pair()
	if !ok {
		t.Fatal("pair missing after refresh")
	}
	if pair.Access != fresh {
		t.Fatalf("access credential not rotated: %q", pair.Access)
	}
	if pair.Refresh != "r1" {
		t.Fatalf("refresh credential erased: %q, want retained %q", pair.Refresh, "r1")
	}

	// The retained credential must still drive the next refresh.
	_ = vault.SetPair(ctx, Pair{Access: signedToken(t, time.Now().Add(-time.Minute)), Refresh: pair.Refresh})
	if err := client.Do(ctx, func(context.Context, string) error { return nil }); err != nil {
		t.Fatalf("second Do: %v", err)
	}
	backend.mu.Lock()
	last := backend.lastRefresh
	backend.mu.Unlock()
	if last != "r1" {
		t.Fatalf("second refresh sent %q, want the retained credential", last)
	}
	if got := backend.refreshCallCount(); got != 2 {
		t.Fatalf("expected 2 refresh calls, got %d", got)
	}
}

func TestDoNeverRetriesTwice(t *testing.T) {
	backend := &fakeBackend{
		nextAccess:  signedToken(t, time.Now().Add(time.Hour)),
		nextRefresh: "r2",
	}
	vault := NewVault(nil)
	ctx := context.Background()
	_ = vault.SetPair(ctx, Pair{Access: signedToken(t, time.Now().Add(time.Hour)), Refresh: "r1"})

	client := NewClient(backend, vault, 0)

	calls := 0
	err := client.Do(ctx, func(context.Context, string) error {
		calls++
		return ErrSessionExpired
	})
	if !errors.Is(err, ErrSessionExpired) {
		t.Fatalf("expected terminal ErrSessionExpired, got %v", err)
	}
	if calls != 2 {
		t.Fatalf("expected 2 attempts (original + one replay), got %d", calls)
	}
	if got := backend.refreshCallCount(); got != 1 {
		t.Fatalf("expected 1 refresh between attempts, got %d", got)
	}
}

func TestDoPassesThroughOtherErrors(t *testing.T) {
	backend := &fakeBackend{}
	vault := NewVault(nil)
	ctx := context.Background()
	_ = vault.SetPair(ctx, Pair{Access: signedToken(t, time.Now().Add(time.Hour)), Refresh: "r1"})

	client := NewClient(backend, vault, 0)

	boom := errors.New("boom")
	err := client.Do(ctx, func(context.Context, string) error { return boom })
	if !errors.Is(err, boom) {
		t.Fatalf("expected passthrough, got %v", err)
	}
	if got := backend.refreshCallCount(); got != 0 {
		t.Fatalf("non-authorization error must not trigger refresh, got %d calls", got)
	}
}

func TestDoNoCredentials(t *testing.T) {
	client := NewClient(&fakeBackend{}, NewVault(nil), 0)
	err := client.Do(context.Background(), func(context.Context, string) error { return nil })
	if !errors.Is(err, ErrNoCredentials) {
		t.Fatalf("expected ErrNoCredentials, got %v", err)
	}
}

func TestRefreshNetworkFailureNotTerminal(t *testing.T) {
	backend := &fakeBackend{refreshErr: fmt.Errorf("%w: connection refused", ErrNetwork)}
	vault := NewVault(nil)
	ctx := context.Background()
	_ = vault.SetPair(ctx, Pair{Access: signedToken(t, time.Now().Add(-time.Minute)), Refresh: "r1"})

	client := NewClient(backend, vault, 0)
	terminal := false
	client.SetTerminalHandler(func(error) { terminal = true })

	err := client.Do(ctx, func(context.Context, string) error { return nil })
	if !errors.Is(err, ErrNetwork) {
		t.Fatalf("expected ErrNetwork, got %v", err)
	}
	if terminal {
		t.Fatal("network failure must not be reported terminal")
	}
	if _, ok := vault.Pair(); !ok {
		t.Fatal("network failure must not clear the vault")
	}
}

func TestRefreshRejectionIsTerminal(t *testing.T) {
	backend := &fakeBackend{refreshErr: fmt.Errorf("%w: revoked", ErrRefreshFailed)}
	vault := NewVault(nil)
	ctx := context.Background()
	_ = vault.SetPair(ctx, Pair{Access: signedToken(t, time.Now().Add(-time.Minute)), Refresh: "r1"})

	client := NewClient(backend, vault, 0)
	var terminalErr error
	client.SetTerminalHandler(func(err error) { terminalErr = err })

	err := client.Do(ctx, func(context.Context, string) error { return nil })
	if !errors.Is(err, ErrRefreshFailed) {
		t.Fatalf("expected ErrRefreshFailed, got %v", err)
	}
	if !errors.Is(terminalErr, ErrRefreshFailed) {
		t.Fatalf("terminal handler got %v", terminalErr)
	}
	if _, ok := vault.Pair(); ok {
		t.Fatal("terminal refresh failure must clear the vault")
	}
}

func TestCancelPendingRejectsWaiters(t *testing.T) {
	backend := &fakeBackend{
		refreshGate: make(chan struct{}),
		nextAccess:  signedToken(t, time.Now().Add(time.Hour)),
		nextRefresh: "r2",
	}
	vault := NewVault(nil)
	ctx := context.Background()
	_ = vault.SetPair(ctx, Pair{Access: signedToken(t, time.Now().Add(-time.Minute)), Refresh: "r1"})

	client := NewClient(backend, vault, 0)

	var shared atomic.Int64
	client.SetEventHook(func(e RefreshEvent) {
		if e == RefreshShared {
			shared.Add(1)
		}
	})

	winner := make(chan error, 1)
	go func() {
		winner <- client.Do(ctx, func(context.Context, string) error { return nil })
	}()

	waiter := make(chan error, 1)
	go func() {
		waiter <- client.Do(ctx, func(context.Context, string) error { return nil })
	}()

	deadline := time.Now().Add(2 * time.Second)
	for shared.Load() != 1 {
		if time.Now().After(deadline) {
			t.Fatal("waiter never parked")
		}
		time.Sleep(time.Millisecond)
	}

	client.CancelPending(nil)
	if err := <-waiter; !errors.Is(err, ErrRefreshCancelled) {
		t.Fatalf("waiter got %v, want ErrRefreshCancelled", err)
	}

	// Simulate the rest of logout, then let the in-flight refresh finish.
	_ = vault.Clear(ctx)
	close(backend.refreshGate)
	if err := <-winner; !errors.Is(err, ErrRefreshCancelled) && !errors.Is(err, ErrNoCredentials) {
		t.Fatalf("in-flight refresh outcome not discarded: %v", err)
	}
	if _, ok := vault.Pair(); ok {
		t.Fatal("discarded refresh must not restore credentials")
	}
}

func TestLoginStoresPair(t *testing.T) {
	backend := &fakeBackend{
		loginResp: &LoginResponse{
			Success:      true,
			Identity:     &session.Identity{ID: 1, Name: "x", Email: "x@y"},
			AccessToken:  "a1",
			RefreshToken: "r1",
		},
	}
	vault := NewVault(nil)
	client := NewClient(backend, vault, 0)

	resp, err := client.Login(context.Background(), LoginRequest{Email: "x@y", Password: "pw"})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if !resp.Success {
		t.Fatal("expected success")
	}
	pair, ok := vault.Pair()
	if !ok || pair.Access != "a1" || pair.Refresh != "r1" {
		t.Fatalf("pair not stored: %+v ok=%v", pair, ok)
	}
}

func TestLoginRefusalStoresNothing(t *testing.T) {
	backend := &fakeBackend{
		loginResp: &LoginResponse{Success: false, Message: "credenciales incorrectas"},
	}
	vault := NewVault(nil)
	client := NewClient(backend, vault, 0)

	resp, err := client.Login(context.Background(), LoginRequest{Email: "x@y", Password: "bad"})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if resp.Success {
		t.Fatal("expected refusal")
	}
	if resp.Message != "credenciales incorrectas" {
		t.Fatalf("refusal message lost: %q", resp.Message)
	}
	if _, ok := vault.Pair(); ok {
		t.Fatal("refusal must not store credentials")
	}
}

func TestLogoutClearsVaultDespiteRemoteFailure(t *testing.T) {
	backend := &fakeBackend{logoutErr: fmt.Errorf("%w: timeout", ErrNetwork)}
	vault := NewVault(nil)
	ctx := context.Background()
	_ = vault.SetPair(ctx, Pair{Access: "a1", Refresh: "r1"})

	client := NewClient(backend, vault, 0)
	err := client.Logout(ctx)
	if !errors.Is(err, ErrNetwork) {
		t.Fatalf("remote failure should be returned for logging, got %v", err)
	}
	if _, ok := vault.Pair(); ok {
		t.Fatal("vault must be cleared regardless of remote outcome")
	}
	if backend.logoutCalls != 1 {
		t.Fatalf("expected one remote logout attempt, got %d", backend.logoutCalls)
	}
}

func TestLogoutWithoutCredentialsSkipsRemote(t *testing.T) {
	backend := &fakeBackend{}
	client := NewClient(backend, NewVault(nil), 0)

	if err := client.Logout(context.Background()); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if backend.logoutCalls != 0 {
		t.Fatal("no credentials means no remote call")
	}
}

func TestVerifySessionRetriesThroughRefresh(t *testing.T) {
	backend := &fakeBackend{
		nextAccess:  signedToken(t, time.Now().Add(time.Hour)),
		nextRefresh: "r2",
		verifyResp:  &VerifyResponse{IsAuthenticated: true, HasPermission: true},
		verifyErr: func(callNum int) error {
			if callNum == 1 {
				return ErrSessionExpired
			}
			return nil
		},
	}
	vault := NewVault(nil)
	ctx := context.Background()
	_ = vault.SetPair(ctx, Pair{Access: signedToken(t, time.Now().Add(time.Hour)), Refresh: "r1"})

	client := NewClient(backend, vault, 0)
	resp, err := client.VerifySession(ctx, "inventario")
	if err != nil {
		t.Fatalf("VerifySession: %v", err)
	}
	if !resp.IsAuthenticated || !resp.HasPermission {
		t.Fatalf("unexpected verify response %+v", resp)
	}
}
