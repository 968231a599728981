package service

import (
	"context"
	"fmt"
	"time"

	"github.com/DiamondTaco/social-media-thing/internal/domain"
)

// PostService creates posts and comments and records likes.
type PostService struct {
	posts         domain.PostRepository
	comments      domain.CommentRepository
	visibility    *VisibilityResolver
	maxPostLength int
	now           func() time.Time
}

// NewPostService creates a new PostService.
func NewPostService(posts domain.PostRepository, comments domain.CommentRepository, visibility *VisibilityResolver, maxPostLength int) *PostService {
	return &PostService{
		posts:         posts,
		comments:      comments,
		visibility:    visibility,
		maxPostLength: maxPostLength,
		now:           time.Now,
	}
}

// CreatePost publishes a post, optionally quoting another post or comment.
// The author must be able to see whatever they quote.
func (s *PostService) CreatePost(ctx context.Context, creatorID int64, content string, quote *domain.QuoteRef) (*domain.Post, error) {
	content, err := s.normalize(content)
	if err != nil {
		return nil, err
	}

	if quote != nil {
		if err := s.requireVisible(ctx, *quote, creatorID); err != nil {
			return nil, err
		}
	}

	post := &domain.Post{
		Entry: domain.Entry{
			CreatorID: creatorID,
			Content:   content,
			Timestamp: s.now().Unix(),
		},
		Quote: quote,
	}
	if err := s.posts.Create(ctx, post); err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}
	return post, nil
}

// CreateComment replies to a post or, with parentIsComment, to a comment.
func (s *PostService) CreateComment(ctx context.Context, creatorID, parentID int64, parentIsComment bool, content string) (*domain.Comment, error) {
	content, err := s.normalize(content)
	if err != nil {
		return nil, err
	}

	parent := domain.QuoteRef{Kind: domain.QuotePost, ID: parentID}
	if parentIsComment {
		parent.Kind = domain.QuoteComment
	}
	if err := s.requireVisible(ctx, parent, creatorID); err != nil {
		return nil, err
	}

	comment := &domain.Comment{
		Entry: domain.Entry{
			CreatorID: creatorID,
			Content:   content,
			Timestamp: s.now().Unix(),
		},
		ParentID:        parentID,
		ParentIsComment: parentIsComment,
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, fmt.Errorf("create comment: %w", err)
	}
	return comment, nil
}

// Like records userID liking the entry. Liking twice is a no-op.
func (s *PostService) Like(ctx context.Context, ref domain.QuoteRef, userID int64) error {
	if err := s.requireVisible(ctx, ref, userID); err != nil {
		return err
	}
	if ref.Kind == domain.QuoteComment {
		return s.comments.Like(ctx, ref.ID, userID)
	}
	return s.posts.Like(ctx, ref.ID, userID)
}

// Unlike removes a like if present.
func (s *PostService) Unlike(ctx context.Context, ref domain.QuoteRef, userID int64) error {
	if ref.Kind == domain.QuoteComment {
		return s.comments.Unlike(ctx, ref.ID, userID)
	}
	return s.posts.Unlike(ctx, ref.ID, userID)
}

func (s *PostService) normalize(content string) (string, error) {
	content = TrimWhitespace(content, false)
	if content == "" {
		return "", fmt.Errorf("%w: content is empty", domain.ErrInvalidInput)
	}
	if len([]rune(content)) > s.maxPostLength {
		return "", fmt.Errorf("%w: content exceeds %d characters", domain.ErrInvalidInput, s.maxPostLength)
	}
	return content, nil
}

func (s *PostService) requireVisible(ctx context.Context, ref domain.QuoteRef, viewerID int64) error {
	view, err := s.visibility.Resolve(ctx, ref.ID, viewerID, ref.Kind == domain.QuoteComment)
	if err != nil {
		return err
	}
	if !view.CanView {
		return domain.ErrUnauthorized
	}
	return nil
}
