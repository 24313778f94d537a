// Package linkmatch recognizes wtg.com.ua game-comment links inside
// free-form message text.
package linkmatch

import (
	"fmt"
	"regexp"

	"wtgbot/internal/domain"
)

// linkPattern matches a comment link anywhere in a message. The scheme is
// optional because users paste links both ways; the query string, if any,
// is ignored. Slug and comment id share the conservative [A-Za-z0-9-]
// alphabet the site actually uses.
var linkPattern = regexp.MustCompile(`(?i)(?:https?://)?wtg\.com\.ua/game/([a-z0-9-]+)/comment/([a-z0-9-]+)`)

// Extract returns the first comment link found in text, scanning left to
// right, or nil when the text contains none. Only the first link is
// processed even when several are present; absence of a link is a normal
// outcome, not an error.
func Extract(text string) *domain.LinkReference {
	m := linkPattern.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	return &domain.LinkReference{
		GameSlug:     m[1],
		CommentID:    m[2],
		CanonicalURL: fmt.Sprintf("https://wtg.com.ua/game/%s/comment/%s", m[1], m[2]),
	}
}
