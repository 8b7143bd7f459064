package session

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stockwise/authkit/permission"
)

func testIdentity(t *testing.T) *Identity {
	t.Helper()
	return &Identity{
		ID:     42,
		Code:   "EMP-042",
		Name:   "Lucia Fernandez",
		Email:  "lucia@stockwise.test",
		Role:   permission.RoleBodeguero,
		Area:   "Bodega Central",
		Active: true,
	}
}

func waitHydrated(t *testing.T, s *Store) {
	t.Helper()
	select {
	case <-s.Hydrated():
	case <-time.After(2 * time.Second):
		t.Fatal("hydration signal never fired")
	}
}

func TestHydrateEmptySlot(t *testing.T) {
	s := NewStore(nil)

	pre := s.Get()
	if pre.Hydrated {
		t.Fatal("state hydrated before Hydrate")
	}

	if err := s.Hydrate(context.Background()); err != nil {
		t.Fatalf("Hydrate: %v", err)
	}
	waitHydrated(t, s)

	st := s.Get()
	if !st.Hydrated {
		t.Fatal("expected hydrated state")
	}
	if st.Authenticated || st.Identity != nil {
		t.Fatalf("empty slot should hydrate unauthenticated, got %+v", st)
	}
}

func TestHydratePopulatedSlot(t *testing.T) {
	slot := NewMemorySlot()
	data, err := EncodeProjection(ProjectionOf(testIdentity(t)))
	if err != nil {
		t.Fatalf("EncodeProjection: %v", err)
	}
	if err := slot.Store(context.Background(), data); err != nil {
		t.Fatalf("Store: %v", err)
	}

	s := NewStore(slot)
	if err := s.Hydrate(context.Background()); err != nil {
		t.Fatalf("Hydrate: %v", err)
	}

	st := s.Get()
	if !st.Authenticated || st.Identity == nil {
		t.Fatal("expected provisional identity from stored projection")
	}
	if st.Identity.ID != 42 || st.Identity.Role != permission.RoleBodeguero {
		t.Fatalf("unexpected identity %+v", st.Identity)
	}
	if st.Identity.Active {
		t.Fatal("projection must not carry the active flag")
	}
}

func TestHydrateMalformedSlot(t *testing.T) {
	slot := NewMemorySlot()
	if err := slot.Store(context.Background(), []byte(`{"id":"oops"}`)); err != nil {
		t.Fatalf("Store: %v", err)
	}

	s := NewStore(slot)
	err := s.Hydrate(context.Background())
	if !errors.Is(err, ErrMalformedIdentity) {
		t.Fatalf("expected ErrMalformedIdentity, got %v", err)
	}

	st := s.Get()
	if !st.Hydrated {
		t.Fatal("malformed slot must still complete hydration")
	}
	if st.Authenticated || st.Identity != nil {
		t.Fatal("malformed slot must hydrate to empty state")
	}
	if _, err := slot.Load(context.Background()); !errors.Is(err, ErrSlotEmpty) {
		t.Fatal("malformed payload should be deleted from the slot")
	}
}

func TestHydrateReentrantNoOp(t *testing.T) {
	slot := NewMemorySlot()
	data, _ := EncodeProjection(ProjectionOf(testIdentity(t)))
	_ = slot.Store(context.Background(), data)

	s := NewStore(slot)
	if err := s.Hydrate(context.Background()); err != nil {
		t.Fatalf("first Hydrate: %v", err)
	}

	_ = s.Clear(context.Background())
	if err := s.Hydrate(context.Background()); err != nil {
		t.Fatalf("second Hydrate: %v", err)
	}
	if st := s.Get(); st.Authenticated {
		t.Fatal("re-entrant Hydrate must not reload state")
	}
}

func TestSetIdentityPersistsProjectionOnly(t *testing.T) {
	slot := NewMemorySlot()
	s := NewStore(slot)
	_ = s.Hydrate(context.Background())

	if err := s.SetIdentity(context.Background(), testIdentity(t)); err != nil {
		t.Fatalf("SetIdentity: %v", err)
	}

	data, err := slot.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	for _, forbidden := range []string{"active", "login_attempts", "created_by", "created_at", "code"} {
		if _, ok := raw[forbidden]; ok {
			t.Fatalf("field %q leaked into the durable projection", forbidden)
		}
	}
	if raw["email"] != "lucia@stockwise.test" {
		t.Fatalf("projection missing expected fields: %v", raw)
	}
}

func TestSetIdentityNilClearsSlot(t *testing.T) {
	slot := NewMemorySlot()
	s := NewStore(slot)
	_ = s.Hydrate(context.Background())
	_ = s.SetIdentity(context.Background(), testIdentity(t))

	if err := s.SetIdentity(context.Background(), nil); err != nil {
		t.Fatalf("SetIdentity(nil): %v", err)
	}
	st := s.Get()
	if st.Authenticated || st.Identity != nil {
		t.Fatal("nil identity must leave the session unauthenticated")
	}
	if _, err := slot.Load(context.Background()); !errors.Is(err, ErrSlotEmpty) {
		t.Fatal("nil identity must delete the durable projection")
	}
}

func TestClearKeepsHydratedFlag(t *testing.T) {
	slot := NewMemorySlot()
	s := NewStore(slot)
	_ = s.Hydrate(context.Background())
	_ = s.SetIdentity(context.Background(), testIdentity(t))
	s.SetError("boom")
	s.SetLoading(true)

	if err := s.Clear(context.Background()); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	st := s.Get()
	if st.Authenticated || st.Identity != nil || st.Err != "" || st.Loading {
		t.Fatalf("Clear left residue: %+v", st)
	}
	if !st.Hydrated {
		t.Fatal("Clear must not reset the hydrated flag")
	}
	if _, err := slot.Load(context.Background()); !errors.Is(err, ErrSlotEmpty) {
		t.Fatal("Clear must delete the durable projection")
	}
}

func TestAuthenticatedTracksIdentity(t *testing.T) {
	s := NewStore(nil)
	_ = s.Hydrate(context.Background())

	_ = s.SetIdentity(context.Background(), testIdentity(t))
	if st := s.Get(); !st.Authenticated {
		t.Fatal("identity set but not authenticated")
	}
	_ = s.SetIdentity(context.Background(), nil)
	if st := s.Get(); st.Authenticated {
		t.Fatal("identity nil but still authenticated")
	}
}
