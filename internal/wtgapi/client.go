// Package wtgapi talks to the wtg.com.ua backlog API. Comment bodies are
// rendered client-side on the site, so the API is the primary comment
// source; HTML parsing is only the fallback.
package wtgapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/sirupsen/logrus"
)

// DefaultBaseURL is the production API host.
const DefaultBaseURL = "https://wtg.com.ua"

// Comment is one user review as returned by the API.
type Comment struct {
	Author string
	Date   string
	Text   string
}

// CommentSource resolves a comment by its sharing id and game slug.
type CommentSource interface {
	// FetchComment returns the review behind commentID, or an error when
	// the API is unreachable or returned no review. Callers treat any
	// failure as "fall back to HTML", never as a hard stop.
	FetchComment(ctx context.Context, commentID, gameSlug string) (*Comment, error)
}

type reviewUser struct {
	Username string `json:"username"`
	Name     string `json:"name"`
}

type review struct {
	User      reviewUser `json:"user"`
	Text      string     `json:"text"`
	CreatedAt string     `json:"created_at"`
	UpdatedAt string     `json:"updated_at"`
}

type reviewsResponse struct {
	UserReviews []review `json:"user_reviews"`
}

// Client implements CommentSource against the live API.
type Client struct {
	baseURL string
	client  *http.Client
	log     logrus.FieldLogger
}

// NewClient creates a Client. baseURL may be "" for the production host.
func NewClient(baseURL string, timeout time.Duration, logger logrus.FieldLogger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
		log:     logger.WithField("component", "wtgapi"),
	}
}

// FetchComment queries /api/backlog/user_review/user for a single review.
func (c *Client) FetchComment(ctx context.Context, commentID, gameSlug string) (*Comment, error) {
	query := url.Values{
		"sharing_id": {commentID},
		"game_slug":  {gameSlug},
		"page":       {"1"},
		"per_page":   {"1"},
	}
	endpoint := c.baseURL + "/api/backlog/user_review/user?" + query.Encode()
	log := c.log.WithFields(logrus.Fields{
		"sharing_id": commentID,
		"game_slug":  gameSlug,
	})

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build API request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		log.WithError(err).Warn("API request failed")
		return nil, fmt.Errorf("API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.WithField("status", resp.StatusCode).Warn("API returned non-OK status")
		return nil, fmt.Errorf("API status %d", resp.StatusCode)
	}

	var payload reviewsResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		log.WithError(err).Warn("API response did not decode")
		return nil, fmt.Errorf("decode API response: %w", err)
	}
	if len(payload.UserReviews) == 0 {
		log.Debug("API returned no reviews")
		return nil, fmt.Errorf("no review for sharing id %s", commentID)
	}

	r := payload.UserReviews[0]
	author := r.User.Username
	if author == "" {
		author = r.User.Name
	}
	date := r.CreatedAt
	if date == "" {
		date = r.UpdatedAt
	}

	comment := &Comment{
		Author: author,
		Date:   formatDate(date),
		Text:   r.Text,
	}
	log.WithFields(logrus.Fields{
		"author":      comment.Author,
		"text_length": len(comment.Text),
	}).Info("Fetched comment from API")
	return comment, nil
}

// formatDate turns RFC 3339 timestamps into the DD.MM.YYYY form the site
// displays. Anything that does not parse is passed through untouched.
func formatDate(s string) string {
	if s == "" {
		return ""
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return s
	}
	return t.Format("02.01.2006")
}
