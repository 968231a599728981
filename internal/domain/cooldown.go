package domain

import (
	"context"
	"time"
)

// CooldownStore records keys that expire on their own after a delay.
// Implementations must tolerate an expiry racing a check or a re-arm.
type CooldownStore interface {
	// Arm marks key as active until d has elapsed. Re-arming an active key
	// moves its expiry to the new deadline.
	Arm(ctx context.Context, key string, d time.Duration) error
	// Active reports whether key is currently armed.
	Active(ctx context.Context, key string) (bool, error)
}
