package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/DiamondTaco/social-media-thing/internal/domain"
	goredis "github.com/redis/go-redis/v9"
)

// CooldownStore implements domain.CooldownStore with keys that carry a
// millisecond TTL. Redis expires them; nothing runs in this process.
type CooldownStore struct {
	client goredis.UniversalClient
	prefix string
}

var _ domain.CooldownStore = (*CooldownStore)(nil)

// NewCooldownStore creates a Redis-backed cooldown store.
func NewCooldownStore(client goredis.UniversalClient) *CooldownStore {
	return &CooldownStore{
		client: client,
		prefix: "cooldown:",
	}
}

func (s *CooldownStore) key(k string) string {
	return s.prefix + k
}

// Arm sets the key with a fresh TTL, replacing any earlier deadline. Redis
// rejects non-positive expirations, so those are clamped to one millisecond.
func (s *CooldownStore) Arm(ctx context.Context, key string, d time.Duration) error {
	if d < time.Millisecond {
		d = time.Millisecond
	}
	if err := s.client.Set(ctx, s.key(key), 1, d).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

func (s *CooldownStore) Active(ctx context.Context, key string) (bool, error) {
	n, err := s.client.Exists(ctx, s.key(key)).Result()
	if err != nil {
		return false, fmt.Errorf("redis exists %s: %w", key, err)
	}
	return n > 0, nil
}
