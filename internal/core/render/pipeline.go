// Package render turns a page selection into model-ready image parts.
package render

import (
	"context"
	"log"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/docpilot/docchat/internal/core/pdf"
)

// BatchSize caps how many pages rasterize at once. Batches are joined
// before the next starts, which bounds peak memory from concurrent
// rasterization without needing a work-stealing pool.
const BatchSize = 4

// PageRenderer is the slice of pdf.Document the pipeline needs.
type PageRenderer interface {
	PageCount() int
	RenderPage(page int) (pdf.ImagePart, error)
}

// ProgressFunc is invoked once per completed page with the running count.
// Calls are serialized; done increases by one each call.
type ProgressFunc func(done, total int)

// SelectedPages renders the given 1-based pages in batches of BatchSize.
// A page that fails to render is logged and dropped; it never aborts its
// siblings. The result is re-sorted ascending by page number regardless of
// completion order, so the model always receives pages in document order.
// A nil document yields an empty result. Cancellation is honored between
// batches; the parts finished so far are returned.
func SelectedPages(ctx context.Context, doc PageRenderer, pages []int, onProgress ProgressFunc) []pdf.ImagePart {
	if doc == nil || len(pages) == 0 {
		return nil
	}

	sorted := uniqueSorted(pages)
	total := len(sorted)

	var (
		mu    sync.Mutex
		parts []pdf.ImagePart
		done  int
	)

	for start := 0; start < total; start += BatchSize {
		if ctx.Err() != nil {
			break
		}
		end := min(start+BatchSize, total)

		g, _ := errgroup.WithContext(ctx)
		for _, page := range sorted[start:end] {
			g.Go(func() error {
				part, err := doc.RenderPage(page)

				mu.Lock()
				done++
				if err != nil {
					log.Printf("failed to render page %d: %v", page, err)
				} else {
					parts = append(parts, part)
				}
				if onProgress != nil {
					onProgress(done, total)
				}
				mu.Unlock()
				return nil
			})
		}
		_ = g.Wait()
	}

	sort.Slice(parts, func(i, j int) bool { return parts[i].Page < parts[j].Page })
	return parts
}

func uniqueSorted(pages []int) []int {
	seen := make(map[int]bool, len(pages))
	out := make([]int, 0, len(pages))
	for _, p := range pages {
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}
	sort.Ints(out)
	return out
}
