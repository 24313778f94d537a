package fetcher

import "fmt"

// HTTPError reports a non-2xx response from the remote site.
type HTTPError struct {
	URL    string
	Status int
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("fetch %s: unexpected status %d", e.URL, e.Status)
}

// NetworkError reports a failed or timed-out request. Timeout is set when
// the request exceeded the configured deadline, so callers can tell a slow
// page from an unreachable one.
type NetworkError struct {
	URL     string
	Timeout bool
	Err     error
}

func (e *NetworkError) Error() string {
	if e.Timeout {
		return fmt.Sprintf("fetch %s: timed out: %v", e.URL, e.Err)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }
