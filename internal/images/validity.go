package images

import (
	"net/url"
	"path"
	"strings"
)

var imageExtensions = map[string]struct{}{
	".jpg": {}, ".jpeg": {}, ".png": {}, ".webp": {}, ".gif": {}, ".avif": {},
}

var imageHosts = []string{
	"images.unsplash.com",
	"i.imgur.com",
	"images.pexels.com",
	"cdn.pixabay.com",
	"lh3.googleusercontent.com",
	"pbs.twimg.com",
}

var brokenPatterns = []string{
	"placeholder",
	"no-image",
	"noimage",
	"default-avatar",
	"avatar-default",
	"1x1",
	"pixel",
	"spacer",
	"blank",
	"transparent",
	"spinner",
	"loading",
	"example.com",
}

// IsPlausibleImageURL checks shape only: the URL parses, is absolute http(s),
// looks like an image by extension or host, and does not match a known
// broken-placeholder pattern. Reachability is the probe's job.
func IsPlausibleImageURL(raw string) bool {
	if strings.TrimSpace(raw) == "" {
		return false
	}

	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return false
	}

	lower := strings.ToLower(raw)
	for _, pattern := range brokenPatterns {
		if strings.Contains(lower, pattern) {
			return false
		}
	}

	ext := strings.ToLower(path.Ext(u.Path))
	if _, ok := imageExtensions[ext]; ok {
		return true
	}
	for _, host := range imageHosts {
		if u.Host == host {
			return true
		}
	}
	return false
}
