package fetch

import (
	"context"
	"errors"
	"net"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		name     string
		err      error
		expected FailureKind
	}{
		{
			"dial timeout",
			&net.OpError{Op: "dial", Err: os.ErrDeadlineExceeded},
			KindConnectTimeout,
		},
		{
			"dial refused",
			&net.OpError{Op: "dial", Err: errors.New("connection refused")},
			KindTransportError,
		},
		{
			"read deadline",
			context.DeadlineExceeded,
			KindReadTimeout,
		},
		{
			"plain error",
			errors.New("tls handshake broke"),
			KindTransportError,
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			ferr := classify("https://upstream.example/", c.err)
			require.Equal(t, c.expected, ferr.Kind)
			require.ErrorIs(t, ferr, c.err)
		})
	}
}

func TestErrorMessage(t *testing.T) {
	err := &Error{
		Kind: KindReadTimeout,
		Url:  "https://upstream.example/manga/",
		Err:  context.DeadlineExceeded,
	}
	require.Equal(
		t,
		"fetch https://upstream.example/manga/: read-timeout: context deadline exceeded",
		err.Error(),
	)
}
