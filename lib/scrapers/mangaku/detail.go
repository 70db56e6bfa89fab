package mangaku

import (
	"context"
	"fmt"
	"strings"

	"mangaku-backend/lib/htmlutil"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel/attribute"
)

const descriptionLimit = 100

const (
	unknownField = "Unknown"
	defaultType  = "Manga"
)

// Detail scrapes one title's detail page. The title heading is the only
// mandatory anchor; every other field substitutes its default when the
// markup has drifted.
func (s *Scraper) Detail(ctx context.Context, slug string) (Detail, error) {
	ctx, span := tracer.Start(ctx, "scraper:Detail")
	defer span.End()
	span.SetAttributes(attribute.String("slug", slug))

	slug = strings.Trim(slug, "/")
	link := fmt.Sprintf("%s/manga/%s", strings.TrimSuffix(s.baseUrl.String(), "/"), slug)

	doc, err := s.fetchDocument(ctx, link)
	if err != nil {
		span.RecordError(err)
		return Detail{}, err
	}

	title := strings.TrimSpace(doc.Find("h1.entry-title").First().Text())
	if title == "" {
		return Detail{}, ErrNotFound
	}

	synopsis := htmlutil.TextWithoutScripts(doc.Find("div.entry-content.entry-content-single"))
	chapters := s.chapterList(doc)
	info := s.memo.Parse(htmlutil.CollapseSpace(doc.Find("div.tsinfo.bixbox").First().Text()))

	return Detail{
		Id:           slug,
		Title:        title,
		Image:        doc.Find("img.wp-post-image").First().AttrOr("src", ""),
		Description:  truncateDescription(synopsis, descriptionLimit),
		Synopsis:     synopsis,
		Type:         infoOr(info, "type", defaultType),
		Status:       infoOr(info, "status", unknownField),
		Year:         yearFrom(info["posted_on"], info["updated_on"], s.now().Year()),
		Genres:       genreList(doc),
		ChapterCount: len(chapters),
		Chapters:     chapters,
		Author:       infoOr(info, "author", unknownField),
		Rating:       strings.TrimSpace(doc.Find("div.num").First().Text()),
		Views:        ParseViews(info["views"]),
	}, nil
}

func infoOr(info map[string]string, key, fallback string) string {
	if v := info[key]; v != "" {
		return v
	}
	return fallback
}

// genreList flattens every link inside every genre node; a single node may
// carry several genres.
func genreList(doc *goquery.Document) []string {
	genres := []string{}
	doc.Find("span.mgen").Each(func(_ int, node *goquery.Selection) {
		node.Find("a").Each(func(_ int, a *goquery.Selection) {
			genre := strings.TrimSpace(a.Text())
			if genre != "" {
				genres = append(genres, genre)
			}
		})
	})
	return genres
}

// chapterList collects the chapter anchors as reader-relative paths. The
// first anchor is the "latest chapter" shortcut rather than an actual
// chapter, so it is dropped whenever a real list follows it.
func (s *Scraper) chapterList(doc *goquery.Document) []string {
	chapters := []string{}
	doc.Find("div.eph-num a").Each(func(_ int, a *goquery.Selection) {
		href := a.AttrOr("href", "")
		if href == "" {
			return
		}
		chapters = append(chapters, s.readerPathFromHref(href))
	})

	if len(chapters) > 1 {
		chapters = chapters[1:]
	}
	return chapters
}
