package fetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// userAgent mimics a desktop browser; the site rejects default Go client
// identifiers.
const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

// maxBodyBytes bounds how much of a response is read into memory.
const maxBodyBytes = 4 << 20

// HTTPFetcher implements the Fetcher interface with a plain HTTP client.
// One GET per call, no retries: transient failures are surfaced to the
// user instead of being masked.
type HTTPFetcher struct {
	client *http.Client
	log    logrus.FieldLogger
}

// NewHTTPFetcher creates a fetcher whose requests are bounded by timeout.
func NewHTTPFetcher(timeout time.Duration, logger logrus.FieldLogger) *HTTPFetcher {
	return &HTTPFetcher{
		client: &http.Client{Timeout: timeout},
		log:    logger.WithField("component", "fetcher"),
	}
}

// FetchPage performs a single GET and returns the response body as a string.
func (f *HTTPFetcher) FetchPage(ctx context.Context, url string) (string, error) {
	body, _, err := f.get(ctx, url)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// FetchImage downloads an image, rejecting responses that are not image/*.
func (f *HTTPFetcher) FetchImage(ctx context.Context, url string) ([]byte, error) {
	body, contentType, err := f.get(ctx, url)
	if err != nil {
		return nil, err
	}
	if !strings.HasPrefix(contentType, "image/") {
		f.log.WithFields(logrus.Fields{
			"url":          url,
			"content_type": contentType,
		}).Warn("URL does not return an image")
		return nil, fmt.Errorf("fetch %s: not an image: %s", url, contentType)
	}
	return body, nil
}

func (f *HTTPFetcher) get(ctx context.Context, url string) ([]byte, string, error) {
	log := f.log.WithField("url", url)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", &NetworkError{URL: url, Err: err}
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")

	resp, err := f.client.Do(req)
	if err != nil {
		netErr := &NetworkError{URL: url, Err: err, Timeout: isTimeout(err)}
		if netErr.Timeout {
			log.WithError(err).Warn("Request timed out")
		} else {
			log.WithError(err).Warn("Request failed")
		}
		return nil, "", netErr
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		log.WithField("status", resp.StatusCode).Warn("Unexpected HTTP status")
		return nil, "", &HTTPError{URL: url, Status: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, "", &NetworkError{URL: url, Err: err, Timeout: isTimeout(err)}
	}

	log.WithField("bytes", len(body)).Debug("Fetched document")
	return body, resp.Header.Get("Content-Type"), nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, os.ErrDeadlineExceeded) {
		return true
	}
	var t interface{ Timeout() bool }
	return errors.As(err, &t) && t.Timeout()
}
