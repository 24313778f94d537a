// Package extractor turns raw wtg.com.ua markup into a structured
// GameComment record. Every field is located through a fixed list of
// selectors; each missing field degrades the record instead of failing
// the extraction.
package extractor

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/sirupsen/logrus"

	"wtgbot/internal/domain"
)

// MalformedPageError reports a page from which neither a title nor any
// comment text could be recovered. A reply with zero meaningful content
// is not useful, so such pages fail as a whole.
type MalformedPageError struct {
	URL string
}

func (e *MalformedPageError) Error() string {
	return "no usable content extracted from " + e.URL
}

var (
	titleSelectors = []string{
		"h1.game-title",
		"h1",
		".game-header h1",
		".title",
		`[data-testid="game-title"]`,
	}
	scoreSelectors = []string{
		".score",
		".rating",
		".game-score",
		`[class*="score"]`,
		`[class*="rating"]`,
	}
	imageSelectors = []string{
		".game-image img",
		".poster img",
		".cover img",
		`img[alt*="game"]`,
		`img[src*="game"]`,
		".game-header img",
	}

	digitsPattern = regexp.MustCompile(`\d+`)
)

// Extractor parses comment pages. It never touches the network and never
// mutates its input.
type Extractor struct {
	log logrus.FieldLogger
}

// New creates an Extractor.
func New(logger logrus.FieldLogger) *Extractor {
	return &Extractor{log: logger.WithField("component", "extractor")}
}

// Extract parses markup fetched from sourceURL into a GameComment. Title,
// score, author, date, comment text and image are each independently
// optional; only a page yielding neither title nor comment text fails,
// with *MalformedPageError.
func (e *Extractor) Extract(markup string, link domain.LinkReference) (*domain.GameComment, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		e.log.WithError(err).WithField("url", link.CanonicalURL).Warn("Markup did not parse")
		return nil, &MalformedPageError{URL: link.CanonicalURL}
	}

	comment := &domain.GameComment{
		Title:     e.title(doc),
		Score:     e.score(doc),
		ImageURL:  e.imageURL(doc, link.CanonicalURL),
		SourceURL: link.CanonicalURL,
	}
	e.fillCommentFields(doc, link.CommentID, comment)

	if comment.Title == "" && comment.CommentText == "" {
		return nil, &MalformedPageError{URL: link.CanonicalURL}
	}

	e.log.WithFields(logrus.Fields{
		"url":         link.CanonicalURL,
		"title":       comment.Title,
		"has_score":   comment.Score != nil,
		"has_image":   comment.ImageURL != "",
		"text_length": len(comment.CommentText),
	}).Info("Extracted game comment")
	return comment, nil
}

func (e *Extractor) title(doc *goquery.Document) string {
	for _, selector := range titleSelectors {
		if sel := doc.Find(selector).First(); sel.Length() > 0 {
			if title := cleanText(sel.Text()); title != "" {
				return title
			}
		}
	}
	return ""
}

// score parses the first run of digits in the first matching score
// element. Malformed or out-of-range numbers yield "score absent", not an
// error.
func (e *Extractor) score(doc *goquery.Document) *int {
	for _, selector := range scoreSelectors {
		sel := doc.Find(selector).First()
		if sel.Length() == 0 {
			continue
		}
		digits := digitsPattern.FindString(sel.Text())
		if digits == "" {
			continue
		}
		n, err := strconv.Atoi(digits)
		if err != nil || n < 0 || n > 100 {
			continue
		}
		return &n
	}
	return nil
}

// imageURL finds the game cover image and resolves it against the page
// URL. Missing or unparsable sources never abort the extraction.
func (e *Extractor) imageURL(doc *goquery.Document, pageURL string) string {
	for _, selector := range imageSelectors {
		if src := imageSrc(doc.Find(selector).First()); src != "" {
			return resolveURL(pageURL, src)
		}
	}
	// Fall back to any image whose source looks like game artwork.
	var found string
	doc.Find("img").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		src := imageSrc(sel)
		lower := strings.ToLower(src)
		if src != "" && (strings.Contains(lower, "game") || strings.Contains(lower, "cover") || strings.Contains(lower, "poster")) {
			found = resolveURL(pageURL, src)
			return false
		}
		return true
	})
	return found
}

func imageSrc(sel *goquery.Selection) string {
	if sel.Length() == 0 {
		return ""
	}
	if src, ok := sel.Attr("src"); ok && src != "" {
		return src
	}
	if src, ok := sel.Attr("data-src"); ok && src != "" {
		return src
	}
	return ""
}

func resolveURL(base, ref string) string {
	baseURL, err := url.Parse(base)
	if err != nil {
		return ref
	}
	refURL, err := url.Parse(ref)
	if err != nil {
		return ""
	}
	return baseURL.ResolveReference(refURL).String()
}

// fillCommentFields locates the comment block, preferring an element
// addressed by the comment id, and extracts author, date and body text.
func (e *Extractor) fillCommentFields(doc *goquery.Document, commentID string, out *domain.GameComment) {
	commentSelectors := []string{
		`[id="` + commentID + `"]`,
		`[data-id="` + commentID + `"]`,
		".comment",
		".user-comment",
		`[class*="comment"]`,
	}

	var block *goquery.Selection
	for _, selector := range commentSelectors {
		if sel := doc.Find(selector).First(); sel.Length() > 0 {
			block = sel
			break
		}
	}
	if block == nil {
		return
	}

	for _, selector := range []string{".author", ".username", ".user-name", ".comment-author", `[class*="author"]`} {
		if sel := block.Find(selector).First(); sel.Length() > 0 {
			out.Author = cleanText(sel.Text())
			break
		}
	}

	for _, selector := range []string{".date", ".timestamp", ".comment-date", "time", "[datetime]", `[class*="date"]`} {
		sel := block.Find(selector).First()
		if sel.Length() == 0 {
			continue
		}
		out.Date = cleanText(sel.Text())
		// A machine-readable datetime attribute wins over display text.
		if dt, ok := sel.Attr("datetime"); ok && dt != "" {
			out.Date = dt
		}
		break
	}

	for _, selector := range []string{".comment-text", ".comment-body", ".text", ".content", "p"} {
		sel := block.Find(selector).First()
		if sel.Length() == 0 {
			continue
		}
		if text := cleanText(sel.Text()); len(text) > 10 {
			out.CommentText = text
			return
		}
	}
	// No dedicated body element; take the block's own text if substantial.
	if text := cleanText(block.Text()); len(text) > 10 {
		out.CommentText = truncate(text, 500)
	}
}

var whitespacePattern = regexp.MustCompile(`\s+`)

func cleanText(s string) string {
	return whitespacePattern.ReplaceAllString(strings.TrimSpace(s), " ")
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}
