// Package mangaku scrapes the mangaaku.com catalog: paginated listings,
// title detail pages and chapter reader pages. The upstream markup is an
// unstable external contract, so every rule degrades to per-field defaults
// instead of failing the whole record when the structure drifts.
package mangaku

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"mangaku-backend/lib/fetch"
	"mangaku-backend/lib/restyutil"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("scrapers/mangaku")
var meter = otel.Meter("scrapers/mangaku")

const DefaultBaseUrl = "https://mangaaku.com"

type Options struct {
	// origin of the target site, DefaultBaseUrl when empty
	BaseUrl string
	// transport knobs, passed through to fetch.NewClient
	Fetch fetch.Options
	// capacity of the memoized info-block parse cache,
	// defaultInfoCacheSize when zero
	InfoCacheSize int
}

// Scraper owns the pooled transport, the memoized info-block parser and
// the process-lifetime counters. Construct one per process and share it;
// all methods are safe for concurrent use.
type Scraper struct {
	baseUrl *url.URL
	http    *fetch.Client
	memo    *infoBlockMemo

	// fallback for year resolution when neither posted-on nor
	// updated-on text yields a 4-digit year
	now func() time.Time
}

// Mangaku is the name this engine carried in its first revision, kept so
// older callers keep compiling.
type Mangaku = Scraper

func NewScraper(opts Options) (*Scraper, error) {
	base := opts.BaseUrl
	if base == "" {
		base = DefaultBaseUrl
	}
	baseUrl, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}

	memo, err := newInfoBlockMemo(opts.InfoCacheSize)
	if err != nil {
		return nil, err
	}

	return &Scraper{
		baseUrl: baseUrl,
		http:    fetch.NewClient(opts.Fetch),
		memo:    memo,
		now:     time.Now,
	}, nil
}

// SetDebugOutput dumps raw HTTP exchanges, see fetch.Client.SetDebugOutput.
func (s *Scraper) SetDebugOutput(output restyutil.InstrumentOutput) {
	s.http.SetDebugOutput(output)
}

func (s *Scraper) Stats() PerformanceStats {
	return PerformanceStats{
		Requests:  s.http.Attempts(),
		CacheHits: s.memo.Hits(),
		Cache:     s.memo.Info(),
	}
}

// fetchDocument pulls one page and parses it, mapping upstream statuses
// onto the package error taxonomy.
func (s *Scraper) fetchDocument(ctx context.Context, link string) (*goquery.Document, error) {
	res, err := s.http.Fetch(ctx, link)
	if err != nil {
		return nil, err
	}
	switch {
	case res.StatusCode == 404:
		return nil, ErrNotFound
	case res.StatusCode != 200:
		return nil, &UpstreamError{Url: link, StatusCode: res.StatusCode}
	}

	doc, err := documentFromBytes(res.Body)
	if err != nil {
		return nil, fmt.Errorf("parse html from %s: %w", link, err)
	}
	return doc, nil
}

func documentFromBytes(body []byte) (*goquery.Document, error) {
	return goquery.NewDocumentFromReader(bytes.NewBuffer(body))
}

// slugFromHref turns an absolute catalog link into the site-relative slug
// used as a record id.
func (s *Scraper) slugFromHref(href string) string {
	href = strings.TrimPrefix(href, strings.TrimSuffix(s.baseUrl.String(), "/"))
	href = strings.TrimPrefix(href, "/manga")
	return strings.Trim(href, "/")
}

// readerPathFromHref rewrites an absolute chapter link into the relative
// path the reader endpoint consumes.
func (s *Scraper) readerPathFromHref(href string) string {
	return strings.TrimPrefix(href, strings.TrimSuffix(s.baseUrl.String(), "/"))
}
