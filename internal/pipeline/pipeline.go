// Package pipeline orchestrates the match, fetch, extract and format
// stages for one incoming message. It never talks to the chat transport
// itself; it returns a value for the transport to send.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/sirupsen/logrus"

	"wtgbot/internal/domain"
	"wtgbot/internal/extractor"
	"wtgbot/internal/fetcher"
	"wtgbot/internal/format"
	"wtgbot/internal/linkmatch"
	"wtgbot/internal/wtgapi"
)

// Kind classifies the outcome of handling one message.
type Kind int

const (
	// KindNoLink means the message carried no recognized link; the
	// transport sends nothing.
	KindNoLink Kind = iota

	// KindReply carries a formatted reply to send.
	KindReply

	// KindUserError carries a short human-readable failure message.
	KindUserError
)

// Outcome is the result of Handle for one message.
type Outcome struct {
	Kind         Kind
	Reply        format.Reply
	ErrorMessage string
}

// Pipeline wires the stages together. Stateless across messages; safe
// for concurrent Handle calls.
type Pipeline struct {
	fetcher  fetcher.Fetcher
	extract  *extractor.Extractor
	comments wtgapi.CommentSource
	log      logrus.FieldLogger
}

// New creates a Pipeline. comments may be nil, in which case the
// HTML-extracted comment fields are used as-is.
func New(f fetcher.Fetcher, e *extractor.Extractor, comments wtgapi.CommentSource, logger logrus.FieldLogger) *Pipeline {
	return &Pipeline{
		fetcher:  f,
		extract:  e,
		comments: comments,
		log:      logger.WithField("component", "pipeline"),
	}
}

// Handle processes one incoming message. Every stage failure is terminal
// for the message; there are no retries.
func (p *Pipeline) Handle(ctx context.Context, text string) Outcome {
	link := linkmatch.Extract(text)
	if link == nil {
		return Outcome{Kind: KindNoLink}
	}

	log := p.log.WithField("url", link.CanonicalURL)
	log.Info("Processing comment link")

	markup, err := p.fetcher.FetchPage(ctx, link.CanonicalURL)
	if err != nil {
		return Outcome{Kind: KindUserError, ErrorMessage: fetchErrorMessage(err)}
	}

	comment, err := p.extract.Extract(markup, *link)
	if err != nil {
		log.WithError(err).Warn("Extraction failed")
		return Outcome{
			Kind: KindUserError,
			ErrorMessage: fmt.Sprintf("❌ Failed to extract data from: %s\n\nThe page might be unavailable or the format has changed.",
				link.CanonicalURL),
		}
	}

	p.enrichComment(ctx, markup, link.GameSlug, link.CommentID, comment)

	return Outcome{Kind: KindReply, Reply: format.Format(*comment)}
}

// enrichComment overlays the API review on top of the HTML-derived
// comment fields. The site renders comments client-side, so the API is
// usually the only source with a body; any API failure just keeps the
// HTML values.
func (p *Pipeline) enrichComment(ctx context.Context, markup, urlSlug, commentID string, out *domain.GameComment) {
	if p.comments == nil {
		return
	}

	slug := p.extract.SiteSlug(markup)
	if slug == "" {
		slug = urlSlug
	}

	review, err := p.comments.FetchComment(ctx, commentID, slug)
	if err != nil {
		p.log.WithError(err).WithField("sharing_id", commentID).Debug("API comment lookup failed, keeping HTML fields")
		return
	}
	if review.Author != "" {
		out.Author = review.Author
	}
	if review.Date != "" {
		out.Date = review.Date
	}
	if review.Text != "" {
		out.CommentText = review.Text
	}
}

func fetchErrorMessage(err error) string {
	var httpErr *fetcher.HTTPError
	if errors.As(err, &httpErr) {
		if httpErr.Status == http.StatusNotFound {
			return "❌ The page was not found (HTTP 404). Check the link and try again."
		}
		return fmt.Sprintf("❌ The site returned HTTP %d. Please try again later.", httpErr.Status)
	}
	var netErr *fetcher.NetworkError
	if errors.As(err, &netErr) && netErr.Timeout {
		return "❌ Timed out while fetching the page. Please try again later."
	}
	return "❌ Could not reach wtg.com.ua. Please try again later."
}
