package fetch

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"mangaku-backend/lib/telemetry"

	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	telemetry.SetupForTesting("lib/fetch")
	os.Exit(m.Run())
}

func TestFetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "ok")
	}))
	defer server.Close()

	client := NewClient(Options{})
	res, err := client.Fetch(context.Background(), server.URL)
	require.NoError(t, err)
	require.Equal(t, 200, res.StatusCode)
	require.Equal(t, "ok", string(res.Body))
	require.EqualValues(t, 1, client.Attempts())
}

func TestFetchRetriesTransientStatuses(t *testing.T) {
	var calls atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(503)
			return
		}
		fmt.Fprint(w, "recovered")
	}))
	defer server.Close()

	client := NewClient(Options{Retries: 3})
	res, err := client.Fetch(context.Background(), server.URL)
	require.NoError(t, err)
	require.Equal(t, 200, res.StatusCode)
	require.Equal(t, "recovered", string(res.Body))

	// every physical attempt counts, not just the final one
	require.EqualValues(t, 3, client.Attempts())
}

func TestFetchDoesNotRetryHardStatuses(t *testing.T) {
	var calls atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(404)
	}))
	defer server.Close()

	client := NewClient(Options{Retries: 3})
	res, err := client.Fetch(context.Background(), server.URL)
	require.NoError(t, err)
	require.Equal(t, 404, res.StatusCode)
	require.EqualValues(t, 1, calls.Load())
}

func TestFetchEscalatesReadTimeout(t *testing.T) {
	var calls atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			time.Sleep(time.Second)
		}
		fmt.Fprint(w, "slow but alive")
	}))
	defer server.Close()

	client := NewClient(Options{Timeout: time.Millisecond * 200})
	res, err := client.Fetch(context.Background(), server.URL)
	require.NoError(t, err)
	require.Equal(t, "slow but alive", string(res.Body))

	// one fast attempt that timed out plus the single escalated retry
	require.EqualValues(t, 2, client.Attempts())
}

func TestFetchConnectFailureSurfacesImmediately(t *testing.T) {
	client := NewClient(Options{})
	_, err := client.Fetch(context.Background(), "http://127.0.0.1:1/")
	require.Error(t, err)

	var ferr *Error
	require.ErrorAs(t, err, &ferr)
	require.Equal(t, KindTransportError, ferr.Kind)
	require.EqualValues(t, 1, client.Attempts())
}
