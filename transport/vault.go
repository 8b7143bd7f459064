package transport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/stockwise/authkit/session"
)

// Pair is an access/refresh credential pair. It lives only in the vault
// and its private slot, never in the session store's profile slot.
type Pair struct {
	Access  string `json:"access_token"`
	Refresh string `json:"refresh_token"`
}

func (p Pair) empty() bool {
	return p.Access == "" && p.Refresh == ""
}

// Vault holds the credential pair behind a mutex and persists it to a
// dedicated slot. Every Clear advances an epoch counter; a refresh
// outcome is only installed if the epoch it started under is still
// current, which discards refreshes that finish after logout.
type Vault struct {
	slot session.Slot

	mu    sync.Mutex
	pair  Pair
	epoch uint64
}

// NewVault creates a [Vault] over the given slot. A nil slot falls back
// to an in-process [session.MemorySlot].
func NewVault(slot session.Slot) *Vault {
	if slot == nil {
		slot = session.NewMemorySlot()
	}
	return &Vault{slot: slot}
}

// Hydrate loads a previously persisted pair, if any. An absent slot is
// not an error; an undecodable one is cleared and reported.
func (v *Vault) Hydrate(ctx context.Context) error {
	data, err := v.slot.Load(ctx)
	if errors.Is(err, session.ErrSlotEmpty) {
		return nil
	}
	if err != nil {
		return err
	}

	var p Pair
	if err := json.Unmarshal(data, &p); err != nil {
		_ = v.slot.Delete(ctx)
		return fmt.Errorf("stored credential pair undecodable: %w", err)
	}
	if p.empty() {
		_ = v.slot.Delete(ctx)
		return errors.New("stored credential pair empty")
	}

	v.mu.Lock()
	v.pair = p
	v.mu.Unlock()
	return nil
}

// Pair returns the current pair and whether one is held.
func (v *Vault) Pair() (Pair, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.pair, !v.pair.empty()
}

// Epoch returns the current epoch. Callers snapshot it before starting
// a refresh and pass it back to [Vault.SetPairIfEpoch].
func (v *Vault) Epoch() uint64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.epoch
}

// SetPair installs a pair unconditionally and persists it.
func (v *Vault) SetPair(ctx context.Context, p Pair) error {
	v.mu.Lock()
	v.pair = p
	v.mu.Unlock()
	return v.persist(ctx, p)
}

// SetPairIfEpoch installs a pair only if the vault epoch still matches
// the snapshot taken when the refresh began. It reports whether the
// pair was installed.
func (v *Vault) SetPairIfEpoch(ctx context.Context, p Pair, epoch uint64) (bool, error) {
	v.mu.Lock()
	if v.epoch != epoch {
		v.mu.Unlock()
		return false, nil
	}
	v.pair = p
	v.mu.Unlock()
	return true, v.persist(ctx, p)
}

// Clear drops the pair, advances the epoch, and deletes the persisted
// copy. Any refresh still in flight becomes a no-op on completion.
func (v *Vault) Clear(ctx context.Context) error {
	v.mu.Lock()
	v.pair = Pair{}
	v.epoch++
	v.mu.Unlock()
	return v.slot.Delete(ctx)
}

func (v *Vault) persist(ctx context.Context, p Pair) error {
	data, err := json.Marshal(p)
	if err != nil {
		return err
	}
	return v.slot.Store(ctx, data)
}
