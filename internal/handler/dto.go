package handler

import (
	"time"

	"github.com/DiamondTaco/social-media-thing/internal/domain"
)

// UserDTO is the JSON representation of the signed-in account.
type UserDTO struct {
	ID          int64  `json:"id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	Private     bool   `json:"private"`
	Theme       string `json:"theme"`
	Followers   int    `json:"followers"`
	CreatedAt   string `json:"created_at"`
}

func toUserDTO(u *domain.User) UserDTO {
	return UserDTO{
		ID:          u.ID,
		Username:    u.Username,
		DisplayName: u.DisplayName,
		Private:     u.Private,
		Theme:       u.Theme,
		Followers:   len(u.Followers),
		CreatedAt:   u.CreatedAt.Format(time.RFC3339),
	}
}

// credentials is the body of signup and login requests. Password is the
// SHA-256 hex digest computed by the client, never the plaintext.
type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type passwordChange struct {
	Current string `json:"current"`
	New     string `json:"new"`
}

type privacyRequest struct {
	Private bool `json:"private"`
}

type quoteRequest struct {
	ID      int64 `json:"id"`
	Comment bool  `json:"comment"`
}

func (q *quoteRequest) ref() *domain.QuoteRef {
	if q == nil {
		return nil
	}
	ref := &domain.QuoteRef{Kind: domain.QuotePost, ID: q.ID}
	if q.Comment {
		ref.Kind = domain.QuoteComment
	}
	return ref
}

type postRequest struct {
	Content string        `json:"content"`
	Quote   *quoteRequest `json:"quote,omitempty"`
}

type commentRequest struct {
	ParentID        int64  `json:"parent_id"`
	ParentIsComment bool   `json:"parent_is_comment"`
	Content         string `json:"content"`
}

// usernameCheck is the response of the username availability endpoint.
type usernameCheck struct {
	Username string `json:"username"`
	Status   string `json:"status"`
	Valid    bool   `json:"valid"`
}
