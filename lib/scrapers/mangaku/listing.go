package mangaku

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/antzucaro/matchr"
	"go.opentelemetry.io/otel/attribute"
)

// Catalog scrapes one page of the update-ordered listing. A malformed
// entry is logged and skipped, its siblings still come back; limit > 0
// truncates the result preserving document order.
func (s *Scraper) Catalog(ctx context.Context, page int, limit int) ([]Summary, error) {
	ctx, span := tracer.Start(ctx, "scraper:Catalog")
	defer span.End()
	span.SetAttributes(attribute.Int("page", page))

	if page < 1 {
		page = 1
	}
	link := fmt.Sprintf("%s/manga/?page=%d&order=update", strings.TrimSuffix(s.baseUrl.String(), "/"), page)

	doc, err := s.fetchDocument(ctx, link)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	return s.summaries(ctx, doc, limit), nil
}

// Search scrapes one page of site search results. Entries share the
// listing markup; results are reordered by title similarity to the query,
// ties keep document order.
func (s *Scraper) Search(ctx context.Context, query string, page int, limit int) ([]Summary, error) {
	ctx, span := tracer.Start(ctx, "scraper:Search")
	defer span.End()
	span.SetAttributes(attribute.String("query", query))

	if page < 1 {
		page = 1
	}
	link := fmt.Sprintf(
		"%s/page/%d/?s=%s",
		strings.TrimSuffix(s.baseUrl.String(), "/"),
		page,
		url.QueryEscape(query),
	)

	doc, err := s.fetchDocument(ctx, link)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	results := s.summaries(ctx, doc, limit)
	rankBySimilarity(results, query)
	return results, nil
}

func rankBySimilarity(results []Summary, query string) {
	query = strings.ToLower(query)
	sort.SliceStable(results, func(i, j int) bool {
		a := matchr.JaroWinkler(strings.ToLower(results[i].Title), query, false)
		b := matchr.JaroWinkler(strings.ToLower(results[j].Title), query, false)
		return a > b
	})
}

func (s *Scraper) summaries(ctx context.Context, doc *goquery.Document, limit int) []Summary {
	out := []Summary{}
	doc.Find("div.bsx").EachWithBreak(func(i int, entry *goquery.Selection) bool {
		if limit > 0 && len(out) >= limit {
			return false
		}

		summary, ok := s.summaryFromEntry(entry)
		if !ok {
			slog.WarnContext(ctx, "skipping malformed catalog entry", "index", i)
			return true
		}
		out = append(out, summary)
		return true
	})
	return out
}

func (s *Scraper) summaryFromEntry(entry *goquery.Selection) (Summary, bool) {
	link := entry.Find("a").First()
	title := link.AttrOr("title", "")
	href := link.AttrOr("href", "")
	// title+href is the mandatory anchor, everything else degrades
	if title == "" || href == "" {
		return Summary{}, false
	}

	return Summary{
		Id:            s.slugFromHref(href),
		Title:         title,
		Image:         entry.Find("img").First().AttrOr("src", ""),
		TotalChapters: firstInt(entry.Find("div.epxs").First().Text()),
		Rating:        parseRating(entry.Find("div.numscore").First().Text()),
	}, true
}
