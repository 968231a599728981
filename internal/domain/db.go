package domain

import "context"

// Database is the lifecycle of the backing store. The store owns its schema
// and applies its own migrations; users, posts and comments are reached
// through the repositories it vends.
type Database interface {
	Migrate(ctx context.Context) error
	Close() error
}
