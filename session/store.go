package session

import (
	"context"
	"errors"
	"sync"
)

type lifecycle uint8

const (
	lifecycleConstructed lifecycle = iota
	lifecycleHydrating
	lifecycleHydrated
)

// Store defines a public type used by authkit APIs.
//
// Store owns the mutable session state. Only the session manager and the
// store's own hydration transition mutate it; request-handling code
// observes copies via [Store.Get].
type Store struct {
	slot Slot

	mu       sync.Mutex
	state    State
	phase    lifecycle
	hydrated chan struct{}
}

// NewStore creates a [Store] over the given durable slot. A nil slot
// falls back to an in-process [MemorySlot].
func NewStore(slot Slot) *Store {
	if slot == nil {
		slot = NewMemorySlot()
	}
	return &Store{
		slot:     slot,
		hydrated: make(chan struct{}),
	}
}

// Hydrate reads the durable slot once and installs the persisted
// projection, if any, as a provisional identity. The hydration-complete
// signal fires exactly when the read finishes; calls after the first are
// no-ops. An unreadable or malformed projection hydrates to an empty
// state and returns the decode error so the caller can log it.
func (s *Store) Hydrate(ctx context.Context) error {
	s.mu.Lock()
	if s.phase != lifecycleConstructed {
		s.mu.Unlock()
		return nil
	}
	s.phase = lifecycleHydrating
	s.mu.Unlock()

	data, loadErr := s.slot.Load(ctx)

	var (
		identity  *Identity
		decodeErr error
	)
	switch {
	case errors.Is(loadErr, ErrSlotEmpty):
		loadErr = nil
	case loadErr != nil:
	default:
		var p Projection
		p, decodeErr = DecodeProjection(data)
		if decodeErr == nil {
			identity = p.Identity()
		} else {
			// Unusable marker; drop it so the next start is clean.
			_ = s.slot.Delete(ctx)
		}
	}

	s.mu.Lock()
	s.state = State{
		Identity:      identity,
		Authenticated: identity != nil,
		Hydrated:      true,
	}
	s.phase = lifecycleHydrated
	close(s.hydrated)
	s.mu.Unlock()

	if loadErr != nil {
		return loadErr
	}
	return decodeErr
}

// Hydrated returns a channel closed once hydration completes. It is the
// signal the session manager waits on before initializing.
func (s *Store) Hydrated() <-chan struct{} {
	return s.hydrated
}

// Get returns a copy of the current state.
func (s *Store) Get() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// SetIdentity replaces the cached identity and mirrors its non-secret
// projection to the durable slot. A nil identity clears both. The
// authenticated flag follows identity presence unconditionally.
func (s *Store) SetIdentity(ctx context.Context, id *Identity) error {
	s.mu.Lock()
	s.state.Identity = id
	s.state.Authenticated = id != nil
	s.mu.Unlock()

	if id == nil {
		return s.slot.Delete(ctx)
	}

	data, err := EncodeProjection(ProjectionOf(id))
	if err != nil {
		return err
	}
	return s.slot.Store(ctx, data)
}

// SetLoading describes the setloading operation and its observable behavior.
func (s *Store) SetLoading(loading bool) {
	s.mu.Lock()
	s.state.Loading = loading
	s.mu.Unlock()
}

// SetError attaches a user-facing error message; an empty string clears it.
func (s *Store) SetError(msg string) {
	s.mu.Lock()
	s.state.Err = msg
	s.mu.Unlock()
}

// Clear zeroes identity, authentication, and error state, and deletes
// the durable projection. The hydrated flag survives: clearing a session
// does not restart the hydration lifecycle.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	s.state.Identity = nil
	s.state.Authenticated = false
	s.state.Err = ""
	s.state.Loading = false
	s.mu.Unlock()

	return s.slot.Delete(ctx)
}
