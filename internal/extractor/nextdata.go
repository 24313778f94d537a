package extractor

import (
	"encoding/json"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// SiteSlug recovers the site's canonical game_slug from the Next.js
// bootstrap JSON embedded in the page. The comment API wants this slug,
// which can differ from the one in the shared URL. Returns "" when the
// blob is missing or holds no slug; callers fall back to the URL slug.
func (e *Extractor) SiteSlug(markup string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return ""
	}
	raw := doc.Find(`script#__NEXT_DATA__`).First().Text()
	if raw == "" {
		return ""
	}
	var data any
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		e.log.WithError(err).Debug("__NEXT_DATA__ did not parse as JSON")
		return ""
	}
	if slug, ok := findGameSlug(data); ok {
		return slug
	}
	return ""
}

// findGameSlug walks the decoded JSON for the first string-valued
// "game_slug" key, depth first. The exact location inside the Next.js
// state tree has shifted between site releases, so the search is
// deliberately structure-agnostic.
func findGameSlug(v any) (string, bool) {
	switch node := v.(type) {
	case map[string]any:
		if slug, ok := node["game_slug"].(string); ok && slug != "" {
			return slug, true
		}
		for _, child := range node {
			if slug, ok := findGameSlug(child); ok {
				return slug, true
			}
		}
	case []any:
		for _, child := range node {
			if slug, ok := findGameSlug(child); ok {
				return slug, true
			}
		}
	}
	return "", false
}
