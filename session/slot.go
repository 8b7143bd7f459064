package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrSlotEmpty is returned by [Slot.Load] when nothing has been stored.
var ErrSlotEmpty = errors.New("slot empty")

// Slot is a small durable key-value cell. The session store uses one for
// the non-secret identity projection; the transport vault uses a second,
// separate one for the credential pair.
type Slot interface {
	Load(ctx context.Context) ([]byte, error)
	Store(ctx context.Context, data []byte) error
	Delete(ctx context.Context) error
}

// MemorySlot is an in-process [Slot], the default when no durable
// backend is configured. Useful for tests and ephemeral clients.
type MemorySlot struct {
	mu   sync.Mutex
	data []byte
	set  bool
}

// NewMemorySlot creates an empty [MemorySlot].
func NewMemorySlot() *MemorySlot {
	return &MemorySlot{}
}

// Load describes the load operation and its observable behavior.
func (s *MemorySlot) Load(context.Context) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.set {
		return nil, ErrSlotEmpty
	}
	out := make([]byte, len(s.data))
	copy(out, s.data)
	return out, nil
}

// Store describes the store operation and its observable behavior.
func (s *MemorySlot) Store(_ context.Context, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = make([]byte, len(data))
	copy(s.data, data)
	s.set = true
	return nil
}

// Delete describes the delete operation and its observable behavior.
func (s *MemorySlot) Delete(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = nil
	s.set = false
	return nil
}

// RedisSlot is a [Slot] backed by a single Redis key, for clients that
// share session continuity across processes. A zero TTL stores without
// expiry.
type RedisSlot struct {
	client redis.UniversalClient
	key    string
	ttl    time.Duration
}

// NewRedisSlot creates a [RedisSlot] over the given key.
func NewRedisSlot(client redis.UniversalClient, key string, ttl time.Duration) *RedisSlot {
	return &RedisSlot{client: client, key: key, ttl: ttl}
}

// Load describes the load operation and its observable behavior.
func (s *RedisSlot) Load(ctx context.Context) ([]byte, error) {
	data, err := s.client.Get(ctx, s.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrSlotEmpty
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

// Store describes the store operation and its observable behavior.
func (s *RedisSlot) Store(ctx context.Context, data []byte) error {
	return s.client.Set(ctx, s.key, data, s.ttl).Err()
}

// Delete describes the delete operation and its observable behavior.
func (s *RedisSlot) Delete(ctx context.Context) error {
	return s.client.Del(ctx, s.key).Err()
}
