package mangaku

// Summary is one catalog listing entry.
type Summary struct {
	Id            string  `json:"id"`
	Title         string  `json:"title"`
	Image         string  `json:"image"`
	TotalChapters int     `json:"total_chapter"`
	Rating        float64 `json:"rating"`
}

// Detail is the full record for one title. String fields the upstream page
// is missing come back as "Unknown" ("Manga" for Type) rather than empty.
type Detail struct {
	Id          string   `json:"id"`
	Title       string   `json:"title"`
	Image       string   `json:"image"`
	Description string   `json:"description"`
	Synopsis    string   `json:"synopsis"`
	Type        string   `json:"type"`
	Status      string   `json:"status"`
	Year        int      `json:"year"`
	Genres      []string `json:"genre"`
	// ChapterCount counts Chapters, it is not the listing's epxs figure
	ChapterCount int      `json:"chapter"`
	Chapters     []string `json:"chapter_list"`
	Author       string   `json:"author"`
	// Rating stays raw text here, the site renders it pre-formatted
	Rating string `json:"rating"`
	Views  int    `json:"views"`
}

// ChapterRead is one reader page: the chapter title plus the image list of
// every mirror. Every expected "Server N" label is present even when its
// mirror failed, mapped to an empty list, so callers never check for
// missing keys.
type ChapterRead struct {
	Title   string              `json:"title"`
	Servers map[string][]string `json:"chapter"`
}

type CacheInfo struct {
	Len      int `json:"len"`
	Capacity int `json:"capacity"`
}

// PerformanceStats are process-lifetime counters, reset only on restart.
type PerformanceStats struct {
	Requests  int64     `json:"requests"`
	CacheHits int64     `json:"cache_hits"`
	Cache     CacheInfo `json:"cache_info"`
}
