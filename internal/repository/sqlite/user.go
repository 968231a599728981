package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/DiamondTaco/social-media-thing/internal/domain"
)

// UserRepository implements domain.UserRepository using SQLite.
type UserRepository struct {
	db *sql.DB
}

// NewUserRepository creates a new SQLite-backed UserRepository.
func NewUserRepository(db *DB) *UserRepository {
	return &UserRepository{db: db.SqlDB}
}

const userColumns = `id, username, display_name, password_hash, token, private, theme, created_at`

func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	now := time.Now().UTC().Truncate(time.Second)
	theme := user.Theme
	if theme == "" {
		theme = "dark"
	}
	result, err := r.db.ExecContext(ctx,
		`INSERT INTO users (username, display_name, password_hash, token, private, theme, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		user.Username, user.DisplayName, user.PasswordHash, user.Token, user.Private, theme, now.Unix(),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return domain.ErrDuplicateUsername
		}
		return fmt.Errorf("insert user: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("get last insert id: %w", err)
	}

	user.ID = id
	user.Theme = theme
	user.CreatedAt = now
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	return r.getBy(ctx, "id", id)
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.getBy(ctx, "username", username)
}

func (r *UserRepository) GetByToken(ctx context.Context, token string) (*domain.User, error) {
	return r.getBy(ctx, "token", token)
}

func (r *UserRepository) getBy(ctx context.Context, column string, value any) (*domain.User, error) {
	user := &domain.User{}
	var createdAt int64
	err := r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE `+column+` = ?`, value,
	).Scan(&user.ID, &user.Username, &user.DisplayName, &user.PasswordHash, &user.Token, &user.Private, &user.Theme, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("query user by %s: %w", column, err)
	}
	user.CreatedAt = time.Unix(createdAt, 0).UTC()

	user.Followers, err = queryIDs(ctx, r.db,
		`SELECT follower_id FROM follows WHERE followee_id = ? ORDER BY follower_id`, user.ID)
	if err != nil {
		return nil, fmt.Errorf("query followers: %w", err)
	}
	return user, nil
}

func (r *UserRepository) UpdateCredentials(ctx context.Context, id int64, passwordHash, token string) error {
	return r.update(ctx, `UPDATE users SET password_hash = ?, token = ? WHERE id = ?`, passwordHash, token, id)
}

func (r *UserRepository) SetPrivate(ctx context.Context, id int64, private bool) error {
	return r.update(ctx, `UPDATE users SET private = ? WHERE id = ?`, private, id)
}

func (r *UserRepository) update(ctx context.Context, query string, args ...any) error {
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *UserRepository) Follow(ctx context.Context, followerID, followeeID int64) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO follows (follower_id, followee_id) VALUES (?, ?)`,
		followerID, followeeID,
	)
	if err != nil {
		if isForeignKeyError(err) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("insert follow: %w", err)
	}
	return nil
}

func (r *UserRepository) Unfollow(ctx context.Context, followerID, followeeID int64) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM follows WHERE follower_id = ? AND followee_id = ?`,
		followerID, followeeID,
	)
	if err != nil {
		return fmt.Errorf("delete follow: %w", err)
	}
	return nil
}

// isUniqueConstraintError checks if the error is a SQLite unique constraint violation.
func isUniqueConstraintError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func isForeignKeyError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "FOREIGN KEY constraint failed")
}
