package domain

import (
	"context"
	"slices"
)

// QuoteKind tags what a QuoteRef points at.
type QuoteKind int

const (
	QuotePost QuoteKind = iota
	QuoteComment
)

func (k QuoteKind) String() string {
	switch k {
	case QuotePost:
		return "post"
	case QuoteComment:
		return "comment"
	default:
		return "unknown"
	}
}

// QuoteRef references the post or comment embedded in a post.
type QuoteRef struct {
	Kind QuoteKind
	ID   int64
}

// Entry holds the fields shared by posts and comments.
type Entry struct {
	ID        int64
	CreatorID int64
	Content   string
	Timestamp int64   // unix seconds
	Likes     []int64 // user IDs
	Comments  []int64 // comment IDs
	Quotes    []int64 // IDs of posts quoting this entry
}

// LikedBy reports whether the given user has liked the entry.
func (e *Entry) LikedBy(userID int64) bool {
	return slices.Contains(e.Likes, userID)
}

// Post is a top-level entry, optionally quoting another post or comment.
type Post struct {
	Entry
	Quote *QuoteRef
}

// Comment is an entry replying to a post or to another comment.
type Comment struct {
	Entry
	ParentID        int64
	ParentIsComment bool
}

type PostRepository interface {
	Create(ctx context.Context, post *Post) error
	GetByID(ctx context.Context, id int64) (*Post, error)
	Like(ctx context.Context, postID, userID int64) error
	Unlike(ctx context.Context, postID, userID int64) error
}

type CommentRepository interface {
	Create(ctx context.Context, comment *Comment) error
	GetByID(ctx context.Context, id int64) (*Comment, error)
	Like(ctx context.Context, commentID, userID int64) error
	Unlike(ctx context.Context, commentID, userID int64) error
}
