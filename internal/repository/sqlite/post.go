package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/DiamondTaco/social-media-thing/internal/domain"
)

type postRepo struct {
	db *sql.DB
}

// NewPostRepository creates a new SQLite-backed post repository.
func NewPostRepository(db *DB) domain.PostRepository {
	return &postRepo{db: db.SqlDB}
}

func (r *postRepo) Create(ctx context.Context, post *domain.Post) error {
	var quoteID sql.NullInt64
	quoteIsComment := false
	if post.Quote != nil {
		quoteID = sql.NullInt64{Int64: post.Quote.ID, Valid: true}
		quoteIsComment = post.Quote.Kind == domain.QuoteComment
	}

	result, err := r.db.ExecContext(ctx,
		`INSERT INTO posts (creator_id, content, timestamp, quote_id, quote_is_comment)
		 VALUES (?, ?, ?, ?, ?)`,
		post.CreatorID, post.Content, post.Timestamp, quoteID, quoteIsComment,
	)
	if err != nil {
		if isForeignKeyError(err) {
			return fmt.Errorf("%w: unknown creator", domain.ErrNotFound)
		}
		return fmt.Errorf("insert post: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("get post id: %w", err)
	}
	post.ID = id
	return nil
}

func (r *postRepo) GetByID(ctx context.Context, id int64) (*domain.Post, error) {
	p := &domain.Post{}
	var quoteID sql.NullInt64
	var quoteIsComment bool
	err := r.db.QueryRowContext(ctx,
		`SELECT id, creator_id, content, timestamp, quote_id, quote_is_comment
		 FROM posts WHERE id = ?`, id,
	).Scan(&p.ID, &p.CreatorID, &p.Content, &p.Timestamp, &quoteID, &quoteIsComment)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get post by id: %w", err)
	}

	if quoteID.Valid {
		p.Quote = &domain.QuoteRef{Kind: domain.QuotePost, ID: quoteID.Int64}
		if quoteIsComment {
			p.Quote.Kind = domain.QuoteComment
		}
	}

	if err := loadRelations(ctx, r.db, &p.Entry, false); err != nil {
		return nil, err
	}
	return p, nil
}

func (r *postRepo) Like(ctx context.Context, postID, userID int64) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO post_likes (post_id, user_id) VALUES (?, ?)`, postID, userID)
	if err != nil {
		if isForeignKeyError(err) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("like post: %w", err)
	}
	return nil
}

func (r *postRepo) Unlike(ctx context.Context, postID, userID int64) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM post_likes WHERE post_id = ? AND user_id = ?`, postID, userID)
	if err != nil {
		return fmt.Errorf("unlike post: %w", err)
	}
	return nil
}

// loadRelations fills the like, comment and quote ID lists of an entry.
func loadRelations(ctx context.Context, db *sql.DB, e *domain.Entry, isComment bool) error {
	var err error
	likesQuery := `SELECT user_id FROM post_likes WHERE post_id = ? ORDER BY user_id`
	if isComment {
		likesQuery = `SELECT user_id FROM comment_likes WHERE comment_id = ? ORDER BY user_id`
	}
	if e.Likes, err = queryIDs(ctx, db, likesQuery, e.ID); err != nil {
		return fmt.Errorf("query likes: %w", err)
	}

	if e.Comments, err = queryIDs(ctx, db,
		`SELECT id FROM comments WHERE parent_id = ? AND parent_is_comment = ? ORDER BY id`,
		e.ID, isComment); err != nil {
		return fmt.Errorf("query comments: %w", err)
	}

	if e.Quotes, err = queryIDs(ctx, db,
		`SELECT id FROM posts WHERE quote_id = ? AND quote_is_comment = ? ORDER BY id`,
		e.ID, isComment); err != nil {
		return fmt.Errorf("query quotes: %w", err)
	}
	return nil
}
