package domain

// LinkReference identifies one game-comment page on wtg.com.ua,
// parsed out of an incoming chat message.
type LinkReference struct {
	// GameSlug is the URL slug of the game, e.g. "lost-in-random-the-eternal-die".
	GameSlug string

	// CommentID is the opaque comment identifier from the URL path.
	// The site currently uses UUID-shaped tokens, but no UUID validity
	// is assumed anywhere.
	CommentID string

	// CanonicalURL is the normalized https URL of the comment page.
	CanonicalURL string
}

// GameComment is the record extracted from one comment page. Every field
// except SourceURL may be absent; an absent field degrades the formatted
// reply instead of failing it.
type GameComment struct {
	// Title of the game, or "" when the page carried none.
	Title string

	// Score is the site rating on a 0..100 scale, nil when missing or
	// when the score element held no parseable number.
	Score *int

	// Author of the comment.
	Author string

	// Date is the display-formatted comment date. It is kept as a string;
	// API dates in RFC 3339 form are reformatted to DD.MM.YYYY before
	// landing here.
	Date string

	// CommentText is the trimmed comment body.
	CommentText string

	// ImageURL points at the game cover image, resolved against the page
	// URL. Empty when no usable image was found.
	ImageURL string

	// SourceURL is the page the record was extracted from.
	SourceURL string
}
