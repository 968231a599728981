package handler

import (
	"net/http"
	"strconv"

	"github.com/DiamondTaco/social-media-thing/internal/domain"
	"github.com/DiamondTaco/social-media-thing/internal/service"
)

// PostHandler serves posts and comments.
type PostHandler struct {
	posts      *service.PostService
	visibility *service.VisibilityResolver
}

// NewPostHandler creates a new PostHandler.
func NewPostHandler(posts *service.PostService, visibility *service.VisibilityResolver) *PostHandler {
	return &PostHandler{posts: posts, visibility: visibility}
}

// HandleGetPost returns a post as seen by the requester, who may be anonymous.
// GET /api/post/{id}
func (h *PostHandler) HandleGetPost(w http.ResponseWriter, r *http.Request) {
	h.get(w, r, false)
}

// HandleGetComment returns a comment as seen by the requester.
// GET /api/comment/{id}
func (h *PostHandler) HandleGetComment(w http.ResponseWriter, r *http.Request) {
	h.get(w, r, true)
}

func (h *PostHandler) get(w http.ResponseWriter, r *http.Request, isComment bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid id.")
		return
	}

	view, err := h.visibility.Resolve(r.Context(), id, viewerID(r), isComment)
	if err != nil {
		writeServiceError(w, r, "resolve entry", err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// HandleCreatePost publishes a post.
// POST /api/post
// Request:  {"content":"...","quote":{"id":1,"comment":false}}
// Response: 201 with the post as its author sees it
func (h *PostHandler) HandleCreatePost(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Not authenticated.")
		return
	}

	var req postRequest
	if err := readJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	post, err := h.posts.CreatePost(r.Context(), user.ID, req.Content, req.Quote.ref())
	if err != nil {
		writeServiceError(w, r, "create post", err)
		return
	}
	h.writeCreated(w, r, post.ID, user.ID, false)
}

// HandleCreateComment replies to a post or comment.
// POST /api/comment
// Request:  {"parent_id":1,"parent_is_comment":false,"content":"..."}
func (h *PostHandler) HandleCreateComment(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Not authenticated.")
		return
	}

	var req commentRequest
	if err := readJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	comment, err := h.posts.CreateComment(r.Context(), user.ID, req.ParentID, req.ParentIsComment, req.Content)
	if err != nil {
		writeServiceError(w, r, "create comment", err)
		return
	}
	h.writeCreated(w, r, comment.ID, user.ID, true)
}

func (h *PostHandler) writeCreated(w http.ResponseWriter, r *http.Request, id, authorID int64, isComment bool) {
	view, err := h.visibility.Resolve(r.Context(), id, authorID, isComment)
	if err != nil {
		writeServiceError(w, r, "resolve created entry", err)
		return
	}
	writeJSON(w, http.StatusCreated, view)
}

// HandleLike returns a handler that likes (or with unlike, unlikes) the post
// or comment named by the id path segment.
// POST|DELETE /api/post/{id}/like, POST|DELETE /api/comment/{id}/like
func (h *PostHandler) HandleLike(kind domain.QuoteKind, unlike bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := UserFromContext(r.Context())
		if user == nil {
			writeError(w, http.StatusUnauthorized, "Not authenticated.")
			return
		}

		id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid id.")
			return
		}

		ref := domain.QuoteRef{Kind: kind, ID: id}
		if unlike {
			err = h.posts.Unlike(r.Context(), ref, user.ID)
		} else {
			err = h.posts.Like(r.Context(), ref, user.ID)
		}
		if err != nil {
			writeServiceError(w, r, "like "+kind.String(), err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// viewerID is the requester's account id, or 0 when anonymous.
func viewerID(r *http.Request) int64 {
	if user := UserFromContext(r.Context()); user != nil {
		return user.ID
	}
	return 0
}
