package mangaku

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"go.opentelemetry.io/otel/attribute"
)

// the reader page hands its image sources to an inline script as a single
// JSON argument; the call signature is the only stable anchor on the page
var readerPayloadRegex = regexp.MustCompile(`(?s)ts_reader\.run\((\{.*?\})\);`)

// ReadChapter scrapes one reader page: the chapter title plus the image
// lists of up to three mirrors, aggregated concurrently. Broken or slow
// mirrors degrade to empty lists, never to a call-level error.
func (s *Scraper) ReadChapter(ctx context.Context, path string) (ChapterRead, error) {
	ctx, span := tracer.Start(ctx, "scraper:ReadChapter")
	defer span.End()
	span.SetAttributes(attribute.String("path", path))

	link := fmt.Sprintf(
		"%s/%s",
		strings.TrimSuffix(s.baseUrl.String(), "/"),
		strings.TrimPrefix(path, "/"),
	)

	res, err := s.http.Fetch(ctx, link)
	if err != nil {
		span.RecordError(err)
		return ChapterRead{}, err
	}
	switch {
	case res.StatusCode == 404:
		return ChapterRead{}, ErrNotFound
	case res.StatusCode != 200:
		return ChapterRead{}, &UpstreamError{Url: link, StatusCode: res.StatusCode}
	}

	doc, err := documentFromBytes(res.Body)
	if err != nil {
		span.RecordError(err)
		return ChapterRead{}, fmt.Errorf("parse html from %s: %w", link, err)
	}

	title := strings.TrimSpace(doc.Find("h1.entry-title").First().Text())
	if title == "" {
		return ChapterRead{}, ErrNotFound
	}

	sources := parseReaderSources(ctx, res.Body)
	return ChapterRead{
		Title:   title,
		Servers: aggregateSources(ctx, sources),
	}, nil
}

// parseReaderSources locates the embedded payload and splits it into raw
// per-source descriptors, so one malformed source cannot take down its
// siblings. A missing anchor or broken JSON yields zero sources, not an
// error.
func parseReaderSources(ctx context.Context, page []byte) []json.RawMessage {
	groups := readerPayloadRegex.FindSubmatch(page)
	if len(groups) < 2 {
		return nil
	}

	// the payload arrives with forward slashes escaped
	object := strings.ReplaceAll(string(groups[1]), `\/`, "/")

	var payload struct {
		Sources []json.RawMessage `json:"sources"`
	}
	err := json.Unmarshal([]byte(object), &payload)
	if err != nil {
		slog.WarnContext(ctx, "malformed reader payload", "err", err)
		return nil
	}
	return payload.Sources
}
