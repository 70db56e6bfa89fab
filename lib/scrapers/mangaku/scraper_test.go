package mangaku

import (
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"mangaku-backend/lib/telemetry"

	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	telemetry.SetupForTesting("scrapers/mangaku")
	os.Exit(m.Run())
}

// newTestScraper points a scraper at an in-process upstream.
func newTestScraper(t *testing.T, handler http.Handler) (*Scraper, *httptest.Server) {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	scraper, err := NewScraper(Options{BaseUrl: server.URL})
	require.NoError(t, err)
	return scraper, server
}
