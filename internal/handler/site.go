package handler

import (
	"net/http"

	"github.com/DiamondTaco/social-media-thing/internal/config"
	"github.com/DiamondTaco/social-media-thing/internal/service"
)

// HandleSite returns the page context for the requester.
// GET /api/site
func HandleSite(cfg config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, service.NewSiteInfo(cfg, UserFromContext(r.Context())))
	}
}
