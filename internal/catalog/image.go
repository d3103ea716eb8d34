package catalog

import (
	"net/url"
	"regexp"
	"strings"
)

// DefaultFallbackImage is shown for items whose icon cannot be loaded.
const DefaultFallbackImage = "/img/fallback-icon.png"

var (
	allowedImagePrefixes = []string{"/img/", "/classes/", "/runewords/", "/items/", "/data/"}
	unsafeSchemeRe       = regexp.MustCompile(`(?i)^(javascript|vbscript|file|data):`)
)

// ValidImageURL reports whether an image URL is safe to hand to clients:
// a site-relative path under a known asset directory, with no script or
// inline data scheme and no path traversal.
func ValidImageURL(raw string) bool {
	raw = strings.TrimSpace(raw)
	if raw == "" || unsafeSchemeRe.MatchString(raw) || strings.Contains(raw, "..") {
		return false
	}
	u, err := url.Parse(raw)
	if err != nil || u.Scheme != "" || u.Host != "" {
		return false
	}
	for _, p := range allowedImagePrefixes {
		if strings.HasPrefix(u.Path, p) {
			return true
		}
	}
	return false
}
