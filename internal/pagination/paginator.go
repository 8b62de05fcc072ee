// Package pagination slices ordered listings into fixed-size pages.
package pagination

import (
	"strconv"

	"github.com/samber/lo"
)

// PerPage is the size of every listing page
const PerPage = 10

// Page is one window of an ordered listing
type Page[T any] struct {
	Items    []T
	Number   int
	NumPages int
	Count    int64
	PerPage  int
}

// Window describes which slice of the listing a page covers
type Window struct {
	Number   int
	NumPages int
	Offset   int
	Limit    int
}

// Resolve turns a requested page into a valid one. Out-of-range numbers are
// clamped to the nearest existing page; an empty listing still has page 1.
func Resolve(count int64, requested, perPage int) Window {
	numPages := 1
	if count > 0 {
		numPages = int((count + int64(perPage) - 1) / int64(perPage))
	}
	number := lo.Clamp(requested, 1, numPages)
	return Window{
		Number:   number,
		NumPages: numPages,
		Offset:   (number - 1) * perPage,
		Limit:    perPage,
	}
}

// ParseNumber reads a page number from a query value. Anything that is not
// an integer means page 1.
func ParseNumber(raw string) int {
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 1
	}
	return n
}

// NewPage wraps an already fetched window
func NewPage[T any](items []T, w Window, count int64) *Page[T] {
	return &Page[T]{
		Items:    items,
		Number:   w.Number,
		NumPages: w.NumPages,
		Count:    count,
		PerPage:  w.Limit,
	}
}

// Paginate slices an in-memory ordered listing: page n holds
// items[(n-1)*PerPage : n*PerPage]
func Paginate[T any](items []T, requested int) *Page[T] {
	w := Resolve(int64(len(items)), requested, PerPage)
	end := min(w.Offset+w.Limit, len(items))
	return NewPage(items[w.Offset:end], w, int64(len(items)))
}

func (p *Page[T]) Len() int {
	return len(p.Items)
}

func (p *Page[T]) HasNext() bool {
	return p.Number < p.NumPages
}

func (p *Page[T]) HasPrevious() bool {
	return p.Number > 1
}

func (p *Page[T]) HasOtherPages() bool {
	return p.HasNext() || p.HasPrevious()
}

func (p *Page[T]) NextPageNumber() int {
	return p.Number + 1
}

func (p *Page[T]) PreviousPageNumber() int {
	return p.Number - 1
}

// PageRange lists every page number, for the paginator links
func (p *Page[T]) PageRange() []int {
	return lo.RangeFrom(1, p.NumPages)
}
