package ai

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyQuery rejects blank queries before any network call is made.
	ErrEmptyQuery = errors.New("query must not be empty")

	// ErrMissingCredential means no upstream API key is configured. This is
	// operator-correctable and should normally halt startup.
	ErrMissingCredential = errors.New("generative upstream credential not configured")
)

// UpstreamError wraps a failed call to the generative upstream: network
// failure, non-2xx status, or a payload none of the known extractors could
// read. The wrapped cause is for logs; clients get a generic message.
type UpstreamError struct {
	Op  string
	Err error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream %s: %v", e.Op, e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}
