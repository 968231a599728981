package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/DiamondTaco/social-media-thing/internal/domain"
	"github.com/DiamondTaco/social-media-thing/internal/service"
)

// tokenMaxAge is how long the browser keeps the session cookie. Tokens
// themselves only change with the password.
const tokenMaxAge = 30 * 24 * time.Hour

// AccountHandler handles account-related HTTP requests.
type AccountHandler struct {
	accounts     *service.AccountService
	tokens       *service.TokenService
	usernames    *service.UsernameValidator
	cookieSecure bool
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(accounts *service.AccountService, tokens *service.TokenService, usernames *service.UsernameValidator, cookieSecure bool) *AccountHandler {
	return &AccountHandler{accounts: accounts, tokens: tokens, usernames: usernames, cookieSecure: cookieSecure}
}

// HandleSignup creates an account and signs it in.
// POST /api/account/signup
// Request:  {"username":"...","password":"<sha256 hex>"}
// Response: 201 {"user": {...}}
func (h *AccountHandler) HandleSignup(w http.ResponseWriter, r *http.Request) {
	var req credentials
	if err := readJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	user, err := h.accounts.Signup(r.Context(), req.Username, req.Password)
	if err != nil {
		writeServiceError(w, r, "signup", err)
		return
	}

	h.setTokenCookie(w, user.Token)
	writeJSON(w, http.StatusCreated, map[string]any{
		"user": toUserDTO(user),
	})
}

// HandleLogin processes a JSON login request.
// POST /api/account/login
// Request:  {"username":"...","password":"<sha256 hex>"}
// Response: {"user": {...}}
func (h *AccountHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentials
	if err := readJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	token, err := h.accounts.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrUnauthorized) {
			writeError(w, http.StatusUnauthorized, "Invalid username or password.")
			return
		}
		writeServiceError(w, r, "login", err)
		return
	}

	user, err := h.tokens.Authenticate(r.Context(), token)
	if err != nil {
		writeServiceError(w, r, "load user after login", err)
		return
	}

	h.setTokenCookie(w, token)
	writeJSON(w, http.StatusOK, map[string]any{
		"user": toUserDTO(user),
	})
}

// HandleLogout clears the token cookie.
// POST /api/account/logout
// Response: 204 No Content
func (h *AccountHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     tokenCookie,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})

	w.WriteHeader(http.StatusNoContent)
}

// HandleMe returns the currently authenticated user.
// GET /api/account/me
func (h *AccountHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Not authenticated.")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"user": toUserDTO(user),
	})
}

// HandleChangePassword replaces the password and reissues the token cookie.
// PATCH /api/account/password
// Request:  {"current":"<sha256 hex>","new":"<sha256 hex>"}
// Response: 204 No Content
func (h *AccountHandler) HandleChangePassword(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Not authenticated.")
		return
	}

	var req passwordChange
	if err := readJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	token, err := h.accounts.ChangePassword(r.Context(), user.Username, req.Current, req.New)
	if err != nil {
		if errors.Is(err, domain.ErrUnauthorized) {
			writeError(w, http.StatusUnauthorized, "Current password is incorrect.")
			return
		}
		writeServiceError(w, r, "change password", err)
		return
	}

	h.setTokenCookie(w, token)
	w.WriteHeader(http.StatusNoContent)
}

// HandleSetPrivate toggles whether the account is limited to followers.
// PATCH /api/account/private
// Request:  {"private":true}
func (h *AccountHandler) HandleSetPrivate(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Not authenticated.")
		return
	}

	var req privacyRequest
	if err := readJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	if err := h.accounts.SetPrivate(r.Context(), user.ID, req.Private); err != nil {
		writeServiceError(w, r, "set private", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleCheckUsername reports whether a username could be registered, or
// with existing=true whether it belongs to an account.
// GET /api/account/username?username=...&existing=false
func (h *AccountHandler) HandleCheckUsername(w http.ResponseWriter, r *http.Request) {
	username := r.URL.Query().Get("username")
	existing := false
	if v := r.URL.Query().Get("existing"); v != "" {
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "existing must be a boolean.")
			return
		}
		existing = parsed
	}

	status, err := h.usernames.Validate(r.Context(), username, existing)
	if err != nil {
		writeServiceError(w, r, "validate username", err)
		return
	}

	writeJSON(w, http.StatusOK, usernameCheck{
		Username: username,
		Status:   status.String(),
		Valid:    status == service.UsernameValid,
	})
}

// HandleFollow follows the account named in the path.
// POST /api/user/{username}/follow
func (h *AccountHandler) HandleFollow(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Not authenticated.")
		return
	}

	if err := h.accounts.Follow(r.Context(), user.ID, r.PathValue("username")); err != nil {
		writeServiceError(w, r, "follow", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleUnfollow stops following the account named in the path.
// DELETE /api/user/{username}/follow
func (h *AccountHandler) HandleUnfollow(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Not authenticated.")
		return
	}

	if err := h.accounts.Unfollow(r.Context(), user.ID, r.PathValue("username")); err != nil {
		writeServiceError(w, r, "unfollow", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *AccountHandler) setTokenCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     tokenCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(tokenMaxAge.Seconds()),
	})
}
