package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/DiamondTaco/social-media-thing/internal/domain"
)

// RateLimiter puts (action, identifier) pairs on cooldown after use.
// When disabled every check passes and arming does nothing.
type RateLimiter struct {
	store   domain.CooldownStore
	enabled bool
}

// NewRateLimiter creates a RateLimiter backed by the given store.
func NewRateLimiter(store domain.CooldownStore, enabled bool) *RateLimiter {
	return &RateLimiter{store: store, enabled: enabled}
}

// Enabled reports whether cooldowns are enforced.
func (rl *RateLimiter) Enabled() bool {
	return rl.enabled
}

// Arm starts a cooldown of length delay for identifier on action. It returns
// immediately; the entry expires on its own.
//
// An empty identifier is a bucket of its own, so all anonymous callers of an
// action share a single cooldown.
func (rl *RateLimiter) Arm(ctx context.Context, action, identifier string, delay time.Duration) error {
	if !rl.enabled {
		return nil
	}
	if err := rl.store.Arm(ctx, cooldownKey(action, identifier), delay); err != nil {
		return fmt.Errorf("arm cooldown %s: %w", action, err)
	}
	return nil
}

// Allowed reports whether identifier may perform action now.
func (rl *RateLimiter) Allowed(ctx context.Context, action, identifier string) (bool, error) {
	if !rl.enabled {
		return true, nil
	}
	active, err := rl.store.Active(ctx, cooldownKey(action, identifier))
	if err != nil {
		return false, fmt.Errorf("check cooldown %s: %w", action, err)
	}
	return !active, nil
}

func cooldownKey(action, identifier string) string {
	return action + ":" + identifier
}

// MemoryCooldowns is an in-process domain.CooldownStore. Each armed key gets
// its own timer; the timer only removes the entry it was scheduled for, so a
// re-armed key lives until the deadline of its most recent arm. It is safe
// for concurrent use.
type MemoryCooldowns struct {
	mu      sync.Mutex
	entries map[string]uint64 // key -> generation of the latest arm
	gen     uint64
}

var _ domain.CooldownStore = (*MemoryCooldowns)(nil)

// NewMemoryCooldowns creates an empty in-memory cooldown table.
func NewMemoryCooldowns() *MemoryCooldowns {
	return &MemoryCooldowns{entries: make(map[string]uint64)}
}

func (m *MemoryCooldowns) Arm(_ context.Context, key string, d time.Duration) error {
	m.mu.Lock()
	m.gen++
	gen := m.gen
	m.entries[key] = gen
	m.mu.Unlock()

	// Non-positive delays fire on the next timer tick.
	time.AfterFunc(max(d, 0), func() { m.expire(key, gen) })
	return nil
}

func (m *MemoryCooldowns) Active(_ context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.entries[key]
	return ok, nil
}

// expire removes key if it still belongs to generation gen. A missing key or
// a newer arm makes this a no-op.
func (m *MemoryCooldowns) expire(key string, gen uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if cur, ok := m.entries[key]; ok && cur == gen {
		delete(m.entries, key)
	}
}
