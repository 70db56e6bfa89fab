package mangaku

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func listingPage(base string) string {
	return fmt.Sprintf(`<html><body><div class="listupd">
		<div class="bsx">
			<a href="%[1]s/manga/solo-farming/" title="Solo Farming In The Tower">
				<img src="https://img.example/solo-farming.jpg"/>
				<div class="epxs">Chapter 112</div>
				<div class="numscore">9.1</div>
			</a>
		</div>
		<div class="bsx">
			<a href="%[1]s/manga/broken-entry/">
				<img src="https://img.example/broken.jpg"/>
			</a>
		</div>
		<div class="bsx">
			<a href="%[1]s/manga/return-of-the-mount-hua-sect/" title="Return Of The Mount Hua Sect">
				<img src="https://img.example/mount-hua.jpg"/>
				<div class="epxs">Chapter 98</div>
				<div class="numscore">-</div>
			</a>
		</div>
	</div></body></html>`, base)
}

func TestCatalog(t *testing.T) {
	mux := http.NewServeMux()
	scraper, server := newTestScraper(t, mux)
	mux.HandleFunc("/manga/", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "1", r.URL.Query().Get("page"))
		require.Equal(t, "update", r.URL.Query().Get("order"))
		fmt.Fprint(w, listingPage(server.URL))
	})

	summaries, err := scraper.Catalog(context.Background(), 1, 0)
	require.NoError(t, err)

	// the anchor-less entry is skipped, its siblings survive
	require.Len(t, summaries, 2)
	require.Equal(t, Summary{
		Id:            "solo-farming",
		Title:         "Solo Farming In The Tower",
		Image:         "https://img.example/solo-farming.jpg",
		TotalChapters: 112,
		Rating:        9.1,
	}, summaries[0])
	require.Equal(t, "return-of-the-mount-hua-sect", summaries[1].Id)
	require.Equal(t, 0.0, summaries[1].Rating)
}

func TestCatalogLimit(t *testing.T) {
	mux := http.NewServeMux()
	scraper, server := newTestScraper(t, mux)
	mux.HandleFunc("/manga/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, listingPage(server.URL))
	})

	summaries, err := scraper.Catalog(context.Background(), 1, 1)
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	require.Equal(t, "solo-farming", summaries[0].Id)
}

func TestCatalogUpstreamFailure(t *testing.T) {
	scraper, _ := newTestScraper(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(403)
	}))

	_, err := scraper.Catalog(context.Background(), 1, 0)
	var upstream *UpstreamError
	require.ErrorAs(t, err, &upstream)
	require.Equal(t, 403, upstream.StatusCode)
}

func TestSearchRanksBySimilarity(t *testing.T) {
	mux := http.NewServeMux()
	scraper, server := newTestScraper(t, mux)
	mux.HandleFunc("/page/1/", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "mount hua", r.URL.Query().Get("s"))
		fmt.Fprint(w, listingPage(server.URL))
	})

	summaries, err := scraper.Search(context.Background(), "mount hua", 1, 0)
	require.NoError(t, err)
	require.Len(t, summaries, 2)
	// the closer title match comes first regardless of document order
	require.Equal(t, "Return Of The Mount Hua Sect", summaries[0].Title)
}
