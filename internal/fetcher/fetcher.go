package fetcher

import "context"

// Fetcher defines the interface for retrieving remote documents.
type Fetcher interface {
	// FetchPage performs a single GET for the given URL and returns the
	// raw markup. Failures are typed: *HTTPError for non-2xx responses,
	// *NetworkError for timeouts and connection problems.
	FetchPage(ctx context.Context, url string) (string, error)

	// FetchImage downloads an image and returns its bytes. Responses
	// whose Content-Type is not image/* are rejected.
	FetchImage(ctx context.Context, url string) ([]byte, error)
}
