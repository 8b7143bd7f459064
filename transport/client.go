package transport

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/stockwise/authkit/session"
)

// RefreshEvent identifies an observable step of refresh coordination,
// reported through the client's event hook so callers can count them.
type RefreshEvent uint8

const (
	// RefreshStarted fires when a caller wins the in-flight flag and
	// performs the refresh round trip itself.
	RefreshStarted RefreshEvent = iota
	// RefreshShared fires when a caller parks behind an in-flight
	// refresh instead of issuing its own.
	RefreshShared
	// RefreshSucceeded fires once per successful refresh round trip.
	RefreshSucceeded
	// RefreshFailed fires on terminal refresh failure.
	RefreshFailed
	// RefreshCancelled fires when queued continuations are rejected or
	// an in-flight outcome is discarded by logout.
	RefreshCancelled
)

type refreshResult struct {
	err error
}

// Client is the outbound request pipeline. It attaches the current
// access credential to every call, refreshes expired credentials through
// a single-flight gate, and replays a rejected call exactly once.
type Client struct {
	backend Backend
	vault   *Vault
	skew    time.Duration
	now     func() time.Time

	mu         sync.Mutex
	refreshing bool
	waiters    []chan refreshResult

	terminal func(error)
	onEvent  func(RefreshEvent)
}

// NewClient creates a [Client] over the given backend and vault. skew is
// subtracted from the access credential's expiry when deciding whether
// to refresh proactively; zero disables the head start.
func NewClient(backend Backend, vault *Vault, skew time.Duration) *Client {
	if vault == nil {
		vault = NewVault(nil)
	}
	return &Client{
		backend: backend,
		vault:   vault,
		skew:    skew,
		now:     time.Now,
	}
}

// Vault returns the credential vault the client coordinates around.
func (c *Client) Vault() *Vault {
	return c.vault
}

// SetTerminalHandler registers the callback invoked when a refresh is
// rejected by the server. The handler runs on the refreshing caller's
// goroutine, after the vault has been cleared.
func (c *Client) SetTerminalHandler(fn func(error)) {
	c.terminal = fn
}

// SetEventHook registers the refresh observability callback.
func (c *Client) SetEventHook(fn func(RefreshEvent)) {
	c.onEvent = fn
}

func (c *Client) event(e RefreshEvent) {
	if c.onEvent != nil {
		c.onEvent(e)
	}
}

// Do runs call with the current access credential attached. An already
// expired credential is refreshed first; a call rejected with
// [ErrSessionExpired] triggers one refresh and one replay. A second
// rejection after the replay surfaces as [ErrSessionExpired] with no
// further retries. All other errors pass through untouched.
func (c *Client) Do(ctx context.Context, call func(ctx context.Context, accessToken string) error) error {
	pair, ok := c.vault.Pair()
	if !ok {
		return ErrNoCredentials
	}

	if accessExpired(pair.Access, c.skew, c.now()) {
		if err := c.refresh(ctx); err != nil {
			return err
		}
		if pair, ok = c.vault.Pair(); !ok {
			return ErrNoCredentials
		}
	}

	err := call(ctx, pair.Access)
	if !errors.Is(err, ErrSessionExpired) {
		return err
	}

	if err := c.refresh(ctx); err != nil {
		return err
	}
	if pair, ok = c.vault.Pair(); !ok {
		return ErrNoCredentials
	}
	return call(ctx, pair.Access)
}

// refresh collapses concurrent callers into one round trip. The first
// caller through raises the in-flight flag and performs the refresh;
// everyone else parks on a continuation channel and shares its outcome.
// The flag check and set happen under one mutex hold.
func (c *Client) refresh(ctx context.Context) error {
	c.mu.Lock()
	if c.refreshing {
		ch := make(chan refreshResult, 1)
		c.waiters = append(c.waiters, ch)
		c.mu.Unlock()
		c.event(RefreshShared)

		select {
		case res := <-ch:
			return res.err
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	c.refreshing = true
	c.mu.Unlock()
	c.event(RefreshStarted)

	err := c.doRefresh(ctx)

	c.mu.Lock()
	c.refreshing = false
	waiters := c.waiters
	c.waiters = nil
	c.mu.Unlock()

	for _, ch := range waiters {
		ch <- refreshResult{err: err}
	}

	switch {
	case err == nil:
		c.event(RefreshSucceeded)
	case errors.Is(err, ErrRefreshCancelled):
		c.event(RefreshCancelled)
	case errors.Is(err, ErrNetwork):
	default:
		c.event(RefreshFailed)
	}
	return err
}

// doRefresh performs the actual round trip. The vault epoch is
// snapshotted first; if logout advances it while the call is in flight,
// the rotated pair is discarded and the outcome is a cancellation, not a
// resurrection.
func (c *Client) doRefresh(ctx context.Context) error {
	epoch := c.vault.Epoch()
	pair, ok := c.vault.Pair()
	if !ok {
		return ErrNoCredentials
	}

	resp, err := c.backend.RefreshCredentials(ctx, pair.Refresh)
	if err != nil {
		if errors.Is(err, ErrNetwork) {
			// Transient: credentials stay put, callers see the failure.
			return err
		}
		if !errors.Is(err, ErrRefreshFailed) {
			err = fmt.Errorf("%w: %v", ErrRefreshFailed, err)
		}
		_ = c.vault.Clear(ctx)
		if c.terminal != nil {
			c.terminal(err)
		}
		return err
	}

	rotated := Pair{Access: resp.AccessToken, Refresh: resp.RefreshToken}
	if rotated.Refresh == "" {
		// Rotation of the refresh credential is optional server-side; a
		// response without one keeps the prior credential valid.
		rotated.Refresh = pair.Refresh
	}
	stored, persistErr := c.vault.SetPairIfEpoch(ctx, rotated, epoch)
	if !stored {
		return ErrRefreshCancelled
	}
	// A persist failure degrades continuity across restarts only; the
	// in-memory pair is valid, so the refresh still counts as a success.
	_ = persistErr
	return nil
}

// CancelPending rejects every queued continuation with err, defaulting
// to [ErrRefreshCancelled]. A refresh round trip already in flight is
// not aborted; its outcome is discarded through the vault epoch.
func (c *Client) CancelPending(err error) {
	if err == nil {
		err = ErrRefreshCancelled
	}

	c.mu.Lock()
	waiters := c.waiters
	c.waiters = nil
	c.mu.Unlock()

	for _, ch := range waiters {
		ch <- refreshResult{err: err}
	}
	if len(waiters) > 0 {
		c.event(RefreshCancelled)
	}
}

// Login performs the single login round trip and, on acceptance, stores
// the issued credential pair. Refusals are returned in the response, not
// as errors; there is never a retry.
func (c *Client) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	resp, err := c.backend.Login(ctx, req)
	if err != nil {
		return nil, err
	}
	if resp.Success && resp.AccessToken != "" {
		if err := c.vault.SetPair(ctx, Pair{Access: resp.AccessToken, Refresh: resp.RefreshToken}); err != nil {
			return resp, err
		}
	}
	return resp, nil
}

// Logout rejects queued continuations, clears the vault unconditionally
// (advancing the epoch so an in-flight refresh cannot restore the pair),
// then attempts remote invalidation with the credential captured before
// the clear. The remote error, if any, is returned for logging; local
// state is already clean either way.
func (c *Client) Logout(ctx context.Context) error {
	pair, ok := c.vault.Pair()
	c.CancelPending(ErrRefreshCancelled)
	clearErr := c.vault.Clear(ctx)

	if !ok {
		return clearErr
	}
	if err := c.backend.Logout(ctx, pair.Access); err != nil {
		return err
	}
	return clearErr
}

// CurrentIdentity re-reads the profile over the authorized pipeline.
func (c *Client) CurrentIdentity(ctx context.Context) (*session.Identity, error) {
	var identity *session.Identity
	err := c.Do(ctx, func(ctx context.Context, accessToken string) error {
		got, err := c.backend.CurrentIdentity(ctx, accessToken)
		if err != nil {
			return err
		}
		identity = got
		return nil
	})
	return identity, err
}

// VerifySession runs the canonical liveness check over the authorized
// pipeline. A terminal [ErrSessionExpired] after the single replay means
// the session is gone.
func (c *Client) VerifySession(ctx context.Context, routeHint string) (*VerifyResponse, error) {
	var resp *VerifyResponse
	err := c.Do(ctx, func(ctx context.Context, accessToken string) error {
		got, err := c.backend.VerifySession(ctx, accessToken, VerifyRequest{RouteHint: routeHint})
		if err != nil {
			return err
		}
		resp = got
		return nil
	})
	return resp, err
}
