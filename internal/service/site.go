package service

import (
	"github.com/DiamondTaco/social-media-thing/internal/config"
	"github.com/DiamondTaco/social-media-thing/internal/domain"
)

// DefaultTheme is used for anonymous viewers and new accounts.
const DefaultTheme = "dark"

// SiteInfo is the page context shared by every rendered page.
type SiteInfo struct {
	SiteName             string `json:"site_name"`
	Version              string `json:"version"`
	HideSource           bool   `json:"hide_source"`
	MaxDisplayNameLength int    `json:"max_display_name_length"`
	MaxPostLength        int    `json:"max_post_length"`
	MaxUsernameLength    int    `json:"max_username_length"`
	Theme                string `json:"theme"`
}

// NewSiteInfo builds the page context for viewer, which may be nil.
func NewSiteInfo(cfg config.Config, viewer *domain.User) SiteInfo {
	theme := DefaultTheme
	if viewer != nil && viewer.Theme != "" {
		theme = viewer.Theme
	}
	return SiteInfo{
		SiteName:             cfg.SiteName,
		Version:              cfg.Version,
		HideSource:           !cfg.ShowSource,
		MaxDisplayNameLength: cfg.MaxDisplayNameLength,
		MaxPostLength:        cfg.MaxPostLength,
		MaxUsernameLength:    cfg.MaxUsernameLength,
		Theme:                theme,
	}
}
