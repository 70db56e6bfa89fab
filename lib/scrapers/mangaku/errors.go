package mangaku

import "fmt"

// ErrNotFound means the requested entity does not exist upstream: either
// the origin answered 404 or the page is missing its mandatory anchor.
var ErrNotFound = fmt.Errorf("not found upstream")

// UpstreamError is a non-200 answer that survived the transport's retry
// budget; it signals backend failure, not absence.
type UpstreamError struct {
	Url        string
	StatusCode int
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream returned %d for %s", e.StatusCode, e.Url)
}
