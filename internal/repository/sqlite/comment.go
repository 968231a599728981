package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/DiamondTaco/social-media-thing/internal/domain"
)

type commentRepo struct {
	db *sql.DB
}

// NewCommentRepository creates a new SQLite-backed comment repository.
func NewCommentRepository(db *DB) domain.CommentRepository {
	return &commentRepo{db: db.SqlDB}
}

func (r *commentRepo) Create(ctx context.Context, c *domain.Comment) error {
	result, err := r.db.ExecContext(ctx,
		`INSERT INTO comments (creator_id, content, timestamp, parent_id, parent_is_comment)
		 VALUES (?, ?, ?, ?, ?)`,
		c.CreatorID, c.Content, c.Timestamp, c.ParentID, c.ParentIsComment,
	)
	if err != nil {
		if isForeignKeyError(err) {
			return fmt.Errorf("%w: unknown creator", domain.ErrNotFound)
		}
		return fmt.Errorf("insert comment: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("get comment id: %w", err)
	}
	c.ID = id
	return nil
}

func (r *commentRepo) GetByID(ctx context.Context, id int64) (*domain.Comment, error) {
	c := &domain.Comment{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, creator_id, content, timestamp, parent_id, parent_is_comment
		 FROM comments WHERE id = ?`, id,
	).Scan(&c.ID, &c.CreatorID, &c.Content, &c.Timestamp, &c.ParentID, &c.ParentIsComment)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get comment by id: %w", err)
	}

	if err := loadRelations(ctx, r.db, &c.Entry, true); err != nil {
		return nil, err
	}
	return c, nil
}

func (r *commentRepo) Like(ctx context.Context, commentID, userID int64) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO comment_likes (comment_id, user_id) VALUES (?, ?)`, commentID, userID)
	if err != nil {
		if isForeignKeyError(err) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("like comment: %w", err)
	}
	return nil
}

func (r *commentRepo) Unlike(ctx context.Context, commentID, userID int64) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM comment_likes WHERE comment_id = ? AND user_id = ?`, commentID, userID)
	if err != nil {
		return fmt.Errorf("unlike comment: %w", err)
	}
	return nil
}
