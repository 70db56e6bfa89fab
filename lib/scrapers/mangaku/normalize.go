package mangaku

import (
	"context"
	"regexp"
	"strconv"
	"strings"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"
)

var cacheHitCounter, _ = meter.Int64Counter("infoblock_cache_hits")

var digitRun = regexp.MustCompile(`\d+`)
var yearRun = regexp.MustCompile(`\d{4}`)

// firstInt extracts the first run of digits in raw, 0 when there is none.
func firstInt(raw string) int {
	m := digitRun.FindString(raw)
	if m == "" {
		return 0
	}
	n, err := strconv.Atoi(m)
	if err != nil {
		return 0
	}
	return n
}

// parseRating reads the listing score node. The site renders "-" (or
// nothing at all) for unrated titles.
func parseRating(raw string) float64 {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "-" {
		return 0.0
	}
	rating, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0.0
	}
	return rating
}

// ParseViews normalizes a view-count string: thousands separators are
// stripped, a K/M magnitude suffix multiplies the leading decimal by 1e3
// or 1e6 (truncated to an integer), anything else falls back to the first
// run of digits. 0 on any failure.
func ParseViews(raw string) int {
	raw = strings.ReplaceAll(strings.TrimSpace(raw), ",", "")
	upper := strings.ToUpper(raw)

	if i := strings.IndexAny(upper, "KM"); i >= 0 {
		lead, err := strconv.ParseFloat(strings.TrimSpace(upper[:i]), 64)
		if err == nil {
			switch upper[i] {
			case 'K':
				return int(lead * 1_000)
			case 'M':
				return int(lead * 1_000_000)
			}
		}
	}

	return firstInt(raw)
}

// yearFrom searches the posted-on then updated-on text for a 4-digit year.
func yearFrom(postedOn, updatedOn string, fallback int) int {
	for _, raw := range []string{postedOn, updatedOn} {
		m := yearRun.FindString(raw)
		if m == "" {
			continue
		}
		year, err := strconv.Atoi(m)
		if err == nil {
			return year
		}
	}
	return fallback
}

// truncateDescription shortens a synopsis to at most limit runes, marking
// the cut with an ellipsis.
func truncateDescription(synopsis string, limit int) string {
	runes := []rune(synopsis)
	if len(runes) <= limit {
		return synopsis
	}
	return string(runes[:limit]) + "..."
}

// labels recovered from the whitespace-flattened info block. The upstream
// template renders them as "Label Value" runs, so each label gets one
// pattern; a label the block is missing is simply absent from the result.
var infoPatterns = []struct {
	key     string
	pattern *regexp.Regexp
}{
	{"status", regexp.MustCompile(`Status\s+(\w+)`)},
	{"type", regexp.MustCompile(`Type\s+(\w+)`)},
	{"author", regexp.MustCompile(`Author\s+([^P]+?)\s+Posted By`)},
	{"posted_by", regexp.MustCompile(`Posted By\s+(\w+)`)},
	{"posted_on", regexp.MustCompile(`Posted On\s+([A-Za-z]+\s+\d{1,2},\s+\d{4})`)},
	{"updated_on", regexp.MustCompile(`Updated On\s+([A-Za-z]+\s+\d{1,2},\s+\d{4})`)},
	{"views", regexp.MustCompile(`Views\s+(\S+)`)},
}

func parseInfoBlock(block string) map[string]string {
	out := map[string]string{}
	for _, p := range infoPatterns {
		groups := p.pattern.FindStringSubmatch(block)
		if len(groups) < 2 {
			continue
		}
		out[p.key] = strings.TrimSpace(groups[1])
	}
	return out
}

const defaultInfoCacheSize = 512

// infoBlockMemo memoizes parseInfoBlock keyed by the exact block text.
// Detail pages share one template, so identical blocks recur across many
// records; the cache is LRU-bounded to stay flat under high-cardinality
// input. lru.Cache locks internally, the counter is atomic.
type infoBlockMemo struct {
	cache    *lru.Cache[string, map[string]string]
	capacity int
	hits     atomic.Int64
}

func newInfoBlockMemo(capacity int) (*infoBlockMemo, error) {
	if capacity <= 0 {
		capacity = defaultInfoCacheSize
	}
	cache, err := lru.New[string, map[string]string](capacity)
	if err != nil {
		return nil, err
	}
	return &infoBlockMemo{cache: cache, capacity: capacity}, nil
}

// Parse returns the label mapping for one flattened info block. The result
// is shared with other callers of the same block text and must be treated
// as read-only.
func (m *infoBlockMemo) Parse(block string) map[string]string {
	if cached, ok := m.cache.Get(block); ok {
		m.hits.Add(1)
		cacheHitCounter.Add(context.Background(), 1)
		return cached
	}
	out := parseInfoBlock(block)
	m.cache.Add(block, out)
	return out
}

func (m *infoBlockMemo) Hits() int64 {
	return m.hits.Load()
}

func (m *infoBlockMemo) Info() CacheInfo {
	return CacheInfo{Len: m.cache.Len(), Capacity: m.capacity}
}
