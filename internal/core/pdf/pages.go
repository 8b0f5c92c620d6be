package pdf

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// ParseSelection parses a page selection like "1-3,7,12" into a sorted list
// of unique 1-based page numbers.
func ParseSelection(spec string) ([]int, error) {
	seen := make(map[int]bool)
	for _, field := range strings.Split(spec, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}

		if lo, hi, ok := strings.Cut(field, "-"); ok {
			start, err := strconv.Atoi(strings.TrimSpace(lo))
			if err != nil {
				return nil, fmt.Errorf("invalid page range %q", field)
			}
			end, err := strconv.Atoi(strings.TrimSpace(hi))
			if err != nil {
				return nil, fmt.Errorf("invalid page range %q", field)
			}
			if start < 1 || end < start {
				return nil, fmt.Errorf("invalid page range %q", field)
			}
			for p := start; p <= end; p++ {
				seen[p] = true
			}
			continue
		}

		p, err := strconv.Atoi(field)
		if err != nil || p < 1 {
			return nil, fmt.Errorf("invalid page number %q", field)
		}
		seen[p] = true
	}

	pages := make([]int, 0, len(seen))
	for p := range seen {
		pages = append(pages, p)
	}
	sort.Ints(pages)
	return pages, nil
}

// ClampSelection drops page numbers outside [1, pageCount], returning the
// survivors sorted and deduplicated. A stale selection from a previously
// loaded PDF is clamped here rather than silently rewritten.
func ClampSelection(pages []int, pageCount int) []int {
	seen := make(map[int]bool, len(pages))
	var kept []int
	for _, p := range pages {
		if p >= 1 && p <= pageCount && !seen[p] {
			seen[p] = true
			kept = append(kept, p)
		}
	}
	sort.Ints(kept)
	return kept
}

// FormatSelection renders a page list back into compact "1-3,7" form.
func FormatSelection(pages []int) string {
	if len(pages) == 0 {
		return ""
	}
	sorted := append([]int(nil), pages...)
	sort.Ints(sorted)

	var b strings.Builder
	start, prev := sorted[0], sorted[0]
	flush := func() {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		if start == prev {
			b.WriteString(strconv.Itoa(start))
		} else {
			b.WriteString(strconv.Itoa(start))
			b.WriteByte('-')
			b.WriteString(strconv.Itoa(prev))
		}
	}
	for _, p := range sorted[1:] {
		if p == prev || p == prev+1 {
			if p == prev+1 {
				prev = p
			}
			continue
		}
		flush()
		start, prev = p, p
	}
	flush()
	return b.String()
}
