package fetch

import (
	"context"
	"errors"
	"fmt"
	"net"
)

type FailureKind int

const (
	KindTransportError FailureKind = iota
	KindConnectTimeout
	KindReadTimeout
)

func (k FailureKind) String() string {
	switch k {
	case KindConnectTimeout:
		return "connect-timeout"
	case KindReadTimeout:
		return "read-timeout"
	}
	return "transport-error"
}

// Error is a fetch failure surfaced after the retry and escalation budget
// is exhausted.
type Error struct {
	Kind FailureKind
	Url  string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("fetch %s: %s: %s", e.Url, e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func classify(link string, err error) *Error {
	kind := KindTransportError

	var opErr *net.OpError
	var netErr net.Error
	switch {
	case errors.As(err, &opErr) && opErr.Op == "dial":
		if opErr.Timeout() {
			kind = KindConnectTimeout
		}
	case errors.As(err, &netErr) && netErr.Timeout():
		kind = KindReadTimeout
	case errors.Is(err, context.DeadlineExceeded):
		kind = KindReadTimeout
	}

	return &Error{Kind: kind, Url: link, Err: err}
}
