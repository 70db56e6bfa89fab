package mangaku

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"
)

const (
	// reader pages expose at most three mirror image sets in practice
	maxSources = 3

	perSourceTimeout = time.Second * 10
	aggregateTimeout = time.Second * 30
)

// aggregateSources resolves the image list of up to maxSources mirrors
// concurrently. Mirrors are independently unreliable: a slow or broken one
// yields an empty list for its label while the rest proceed. Every
// expected "Server N" label is present in the result, so callers never
// check for missing keys; zero sources produce an empty map.
//
// The task group is scoped to this call. Its width equals the source cap,
// which keeps the worker bound and the failure semantics local.
func aggregateSources(ctx context.Context, sources []json.RawMessage) map[string][]string {
	if len(sources) > maxSources {
		sources = sources[:maxSources]
	}

	out := make(map[string][]string, len(sources))

	ctx, cancel := context.WithTimeout(ctx, aggregateTimeout)
	defer cancel()

	type taskResult struct {
		label  string
		images []string
	}
	results := make(chan taskResult, len(sources))

	var wg sync.WaitGroup
	for i, raw := range sources {
		label := fmt.Sprintf("Server %d", i+1)
		// preset so a failed task still leaves its label behind
		out[label] = []string{}

		wg.Add(1)
		go func(label string, raw json.RawMessage) {
			defer wg.Done()

			taskCtx, cancel := context.WithTimeout(ctx, perSourceTimeout)
			defer cancel()

			// the decode runs on its own goroutine so a stuck task can
			// be abandoned: timing out the wait is enough, the inner
			// goroutine exits on its own once the decode returns
			images := make(chan []string, 1)
			go func() {
				images <- imagesFromSource(raw)
			}()

			select {
			case imgs := <-images:
				if imgs == nil {
					slog.WarnContext(ctx, "unusable image source", "label", label)
					return
				}
				results <- taskResult{label: label, images: imgs}
			case <-taskCtx.Done():
				slog.WarnContext(ctx, "image source timed out", "label", label)
			}
		}(label, raw)
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	for r := range results {
		out[r.label] = r.images
	}
	return out
}

// imagesFromSource decodes one raw source descriptor into its trimmed,
// non-empty image urls. nil means the descriptor was unusable.
func imagesFromSource(raw json.RawMessage) []string {
	var source struct {
		Images []string `json:"images"`
	}
	err := json.Unmarshal(raw, &source)
	if err != nil {
		return nil
	}

	images := make([]string, 0, len(source.Images))
	for _, img := range source.Images {
		img = strings.TrimSpace(img)
		if img != "" {
			images = append(images, img)
		}
	}
	return images
}
