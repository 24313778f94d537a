package wtgapi

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() logrus.FieldLogger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func TestFetchComment(t *testing.T) {
	var gotQuery map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/backlog/user_review/user", r.URL.Path)
		gotQuery = map[string]string{
			"sharing_id": r.URL.Query().Get("sharing_id"),
			"game_slug":  r.URL.Query().Get("game_slug"),
			"page":       r.URL.Query().Get("page"),
			"per_page":   r.URL.Query().Get("per_page"),
		}
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"user_reviews":[{
			"user":{"username":"reviewer42"},
			"text":"Great roguelite, the dice mechanic really works.",
			"created_at":"2024-06-15T12:30:00Z"
		}]}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 5*time.Second, testLogger())
	comment, err := c.FetchComment(context.Background(), "06672ce6", "lost-in-random")
	require.NoError(t, err)

	assert.Equal(t, "reviewer42", comment.Author)
	assert.Equal(t, "15.06.2024", comment.Date)
	assert.Equal(t, "Great roguelite, the dice mechanic really works.", comment.Text)

	assert.Equal(t, map[string]string{
		"sharing_id": "06672ce6",
		"game_slug":  "lost-in-random",
		"page":       "1",
		"per_page":   "1",
	}, gotQuery)
}

func TestFetchCommentFallsBackToName(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"user_reviews":[{"user":{"name":"Olena"},"text":"good","updated_at":"not-a-date"}]}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 5*time.Second, testLogger())
	comment, err := c.FetchComment(context.Background(), "id", "slug")
	require.NoError(t, err)

	assert.Equal(t, "Olena", comment.Author)
	// Unparseable dates pass through untouched.
	assert.Equal(t, "not-a-date", comment.Date)
}

func TestFetchCommentNoReviews(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"user_reviews":[]}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 5*time.Second, testLogger())
	_, err := c.FetchComment(context.Background(), "id", "slug")
	require.Error(t, err)
}

func TestFetchCommentAPIStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 5*time.Second, testLogger())
	_, err := c.FetchComment(context.Background(), "id", "slug")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

func TestFormatDate(t *testing.T) {
	assert.Equal(t, "15.06.2024", formatDate("2024-06-15T12:30:00Z"))
	assert.Equal(t, "01.01.2023", formatDate("2023-01-01T00:00:00+02:00"))
	assert.Equal(t, "yesterday", formatDate("yesterday"))
	assert.Empty(t, formatDate(""))
}
