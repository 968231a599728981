package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/DiamondTaco/social-media-thing/internal/domain"
)

// PostView is the response shape of a post or comment as seen by one viewer.
// When the viewer may not see the entry, PostDetails is nil and only the two
// flags are serialized.
type PostView struct {
	*PostDetails
	PrivateAcc bool `json:"private_acc"`
	CanView    bool `json:"can_view"`
}

// PostDetails carries the visible content of an entry.
type PostDetails struct {
	PostID          int64      `json:"post_id"`
	CreatorID       int64      `json:"creator_id"`
	DisplayName     string     `json:"display_name"`
	CreatorUsername string     `json:"creator_username"`
	Content         string     `json:"content"`
	Timestamp       int64      `json:"timestamp"`
	Liked           bool       `json:"liked"`
	Likes           int        `json:"likes"`
	Comments        int        `json:"comments"`
	Quotes          int        `json:"quotes"`
	Quote           *QuoteView `json:"quote,omitempty"`
}

// QuoteView is the quoted entry embedded in a post, checked for visibility
// on its own.
type QuoteView struct {
	*QuoteDetails
	PrivateAcc bool `json:"private_acc"`
	CanView    bool `json:"can_view"`
}

// QuoteDetails carries the visible content of a quoted entry. Quotes are
// resolved one level deep; HasQuote says whether the quoted post quotes
// something further.
type QuoteDetails struct {
	PostDetails
	Comment  bool `json:"comment"`
	HasQuote bool `json:"has_quote"`
}

// VisibilityResolver builds viewer-specific views of posts and comments,
// hiding entries whose creator is private unless the viewer follows them.
// It never writes to the stores.
type VisibilityResolver struct {
	users    domain.UserRepository
	posts    domain.PostRepository
	comments domain.CommentRepository
}

// NewVisibilityResolver creates a VisibilityResolver.
func NewVisibilityResolver(users domain.UserRepository, posts domain.PostRepository, comments domain.CommentRepository) *VisibilityResolver {
	return &VisibilityResolver{users: users, posts: posts, comments: comments}
}

// Resolve returns the view of post (or comment, when isComment is set) id
// for viewerID. A viewerID of 0 is an anonymous viewer. Content by a private
// account is shown only to its followers and to the account itself; the
// self exception applies to the quoted entry too.
func (r *VisibilityResolver) Resolve(ctx context.Context, id, viewerID int64, isComment bool) (*PostView, error) {
	kind := domain.QuotePost
	if isComment {
		kind = domain.QuoteComment
	}

	entry, quote, err := r.load(ctx, domain.QuoteRef{Kind: kind, ID: id})
	if err != nil {
		return nil, err
	}

	creator, err := r.users.GetByID(ctx, entry.CreatorID)
	if err != nil {
		return nil, fmt.Errorf("get creator of %s %d: %w", kind, id, err)
	}

	if !canView(creator, viewerID) {
		return &PostView{PrivateAcc: true, CanView: false}, nil
	}

	details := buildDetails(entry, creator, viewerID)
	if quote != nil {
		qv, err := r.resolveQuote(ctx, *quote, viewerID)
		if err != nil {
			return nil, err
		}
		details.Quote = qv
	}

	return &PostView{PostDetails: details, PrivateAcc: creator.Private, CanView: true}, nil
}

func (r *VisibilityResolver) resolveQuote(ctx context.Context, ref domain.QuoteRef, viewerID int64) (*QuoteView, error) {
	entry, innerQuote, err := r.load(ctx, ref)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			// The quoted entry was deleted.
			return &QuoteView{}, nil
		}
		return nil, err
	}

	creator, err := r.users.GetByID(ctx, entry.CreatorID)
	if err != nil {
		return nil, fmt.Errorf("get creator of quoted %s %d: %w", ref.Kind, ref.ID, err)
	}

	if !canView(creator, viewerID) {
		return &QuoteView{PrivateAcc: true, CanView: false}, nil
	}

	return &QuoteView{
		QuoteDetails: &QuoteDetails{
			PostDetails: *buildDetails(entry, creator, viewerID),
			Comment:     ref.Kind == domain.QuoteComment,
			HasQuote:    innerQuote != nil,
		},
		PrivateAcc: creator.Private,
		CanView:    true,
	}, nil
}

// load fetches the entry behind ref. For posts it also returns the post's own
// quote reference; comments never carry one.
func (r *VisibilityResolver) load(ctx context.Context, ref domain.QuoteRef) (*domain.Entry, *domain.QuoteRef, error) {
	switch ref.Kind {
	case domain.QuotePost:
		post, err := r.posts.GetByID(ctx, ref.ID)
		if err != nil {
			return nil, nil, fmt.Errorf("get post %d: %w", ref.ID, err)
		}
		return &post.Entry, post.Quote, nil
	case domain.QuoteComment:
		comment, err := r.comments.GetByID(ctx, ref.ID)
		if err != nil {
			return nil, nil, fmt.Errorf("get comment %d: %w", ref.ID, err)
		}
		return &comment.Entry, nil, nil
	default:
		return nil, nil, fmt.Errorf("%w: unknown quote kind %d", domain.ErrInvalidInput, int(ref.Kind))
	}
}

// canView reports whether viewerID may see content by creator. Private
// accounts are visible to their followers and to themselves.
func canView(creator *domain.User, viewerID int64) bool {
	return !creator.Private || creator.ID == viewerID || creator.HasFollower(viewerID)
}

func buildDetails(e *domain.Entry, creator *domain.User, viewerID int64) *PostDetails {
	return &PostDetails{
		PostID:          e.ID,
		CreatorID:       e.CreatorID,
		DisplayName:     creator.DisplayName,
		CreatorUsername: creator.Username,
		Content:         e.Content,
		Timestamp:       e.Timestamp,
		Liked:           e.LikedBy(viewerID),
		Likes:           len(e.Likes),
		Comments:        len(e.Comments),
		Quotes:          len(e.Quotes),
	}
}
