// internal/app/system/paging/paging.go
package paging

import (
	"net/http"
	"strconv"

	"github.com/dalemusser/waffle/pantry/query"
)

// PageSize is the number of rows shown per page in every paged list.
const PageSize = 25

// MaxPageSize caps caller-supplied page sizes on the JSON API.
const MaxPageSize = 100

// NormalizeSize returns size if it is usable, PageSize if it is not
// positive, and MaxPageSize if it is too large.
func NormalizeSize(size int) int {
	if size <= 0 {
		return PageSize
	}
	if size > MaxPageSize {
		return MaxPageSize
	}
	return size
}

// TotalPages returns ceil(total/size), never less than 1. An empty list
// still has one (empty) page.
func TotalPages(total, size int) int {
	size = NormalizeSize(size)
	if total <= 0 {
		return 1
	}
	return (total + size - 1) / size
}

// Clamp pulls a zero-based page index into [0, totalPages-1].
func Clamp(page, totalPages int) int {
	if totalPages < 1 {
		totalPages = 1
	}
	if page < 0 {
		return 0
	}
	if page > totalPages-1 {
		return totalPages - 1
	}
	return page
}

// Window describes one page of a list whose total length is known.
// Page, Prev, Next and Last are zero-based indices.
type Window struct {
	Page       int
	PageSize   int
	Total      int
	TotalPages int

	HasPrev bool
	HasNext bool
	Prev    int // valid only when HasPrev
	Next    int // valid only when HasNext
	Last    int

	Start int // 1-based index of the first row shown (0 if no rows)
	End   int // 1-based index of the last row shown (0 if no rows)
}

// Compute builds the Window for the requested page. Out-of-range pages are
// clamped to the nearest valid page rather than producing an empty slice.
func Compute(total, page, size int) Window {
	size = NormalizeSize(size)
	if total < 0 {
		total = 0
	}
	totalPages := TotalPages(total, size)
	page = Clamp(page, totalPages)

	w := Window{
		Page:       page,
		PageSize:   size,
		Total:      total,
		TotalPages: totalPages,
		HasPrev:    page > 0,
		HasNext:    page < totalPages-1,
		Prev:       page,
		Next:       page,
		Last:       totalPages - 1,
	}
	if w.HasPrev {
		w.Prev = page - 1
	}
	if w.HasNext {
		w.Next = page + 1
	}

	lo, hi := w.bounds()
	if hi > lo {
		w.Start = lo + 1
		w.End = hi
	}
	return w
}

// CurrentPage returns the 1-based page number for display.
func (w Window) CurrentPage() int { return w.Page + 1 }

// bounds returns the half-open slice bounds [lo, hi) of the window.
func (w Window) bounds() (int, int) {
	lo := w.Page * w.PageSize
	if lo > w.Total {
		lo = w.Total
	}
	hi := lo + w.PageSize
	if hi > w.Total {
		hi = w.Total
	}
	return lo, hi
}

// Slice returns the rows of the window. rows must hold the full, already
// sorted list the window was computed for.
func Slice[T any](rows []T, w Window) []T {
	lo, hi := w.bounds()
	if hi > len(rows) {
		hi = len(rows)
	}
	if lo > hi {
		lo = hi
	}
	return rows[lo:hi]
}

// ParseIndex reads a zero-based page index from the named query parameter.
// Returns 0 if not present or invalid.
func ParseIndex(r *http.Request, key string) int {
	s := query.Get(r, key)
	if s == "" {
		return 0
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// ParseSize reads a page size from the named query parameter and
// normalizes it.
func ParseSize(r *http.Request, key string) int {
	n, err := strconv.Atoi(query.Get(r, key))
	if err != nil {
		return PageSize
	}
	return NormalizeSize(n)
}
