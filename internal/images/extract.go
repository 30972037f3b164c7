package images

import (
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var skipKeywords = []string{
	"icon", "logo", "button", "sprite", "avatar",
	"share-button", "social-icon", "ad-banner", "advertisement", "promo",
	"tracking", "thumbnail-placeholder",
}

var qualityKeywords = []string{
	"large", "original", "full", "1200", "1080", "hero", "cover", "featured",
}

// ExtractFromBody pulls the best image URL out of a raw HTML body.
// Meta declarations (og:image, twitter:image) outrank inline images; inline
// images are scored by size hints and junk-pattern penalties.
func ExtractFromBody(rawBody string) (string, bool) {
	if strings.TrimSpace(rawBody) == "" {
		return "", false
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawBody))
	if err != nil {
		return "", false
	}

	for _, selector := range []string{
		`meta[property="og:image"]`,
		`meta[name="og:image"]`,
		`meta[name="twitter:image"]`,
		`meta[property="twitter:image"]`,
	} {
		if content, ok := doc.Find(selector).First().Attr("content"); ok {
			if IsPlausibleImageURL(content) {
				return content, true
			}
		}
	}

	bestURL := ""
	bestScore := 0
	doc.Find("img").Each(func(_ int, sel *goquery.Selection) {
		src, ok := sel.Attr("src")
		if !ok || !IsPlausibleImageURL(src) {
			return
		}
		score := scoreInlineImage(src, sel)
		if score > bestScore {
			bestScore = score
			bestURL = src
		}
	})

	if bestURL == "" {
		return "", false
	}
	return bestURL, true
}

func scoreInlineImage(src string, sel *goquery.Selection) int {
	score := 10
	lower := strings.ToLower(src)

	for _, kw := range skipKeywords {
		if strings.Contains(lower, kw) {
			score -= 20
		}
	}
	for _, kw := range qualityKeywords {
		if strings.Contains(lower, kw) {
			score += 5
		}
	}

	// Explicit dimensions are a strong signal either way.
	if w, ok := sel.Attr("width"); ok {
		if px, err := strconv.Atoi(w); err == nil {
			switch {
			case px >= 600:
				score += 10
			case px < 100:
				score -= 15
			}
		}
	}

	return score
}
