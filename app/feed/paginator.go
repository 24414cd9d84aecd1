// Package feed splits ordered post lists into numbered pages.
package feed

import "strconv"

// DefaultPageSize is used when configuration leaves feed.page_size unset.
const DefaultPageSize = 10

// Page is one window of a paginated list. Numbers are 1-based; StartIndex
// and EndIndex are the 1-based positions of the first and last item shown.
type Page[T any] struct {
	Number         int
	NumPages       int
	Count          int
	Items          []T
	HasPrevious    bool
	HasNext        bool
	PreviousNumber int
	NextNumber     int
	StartIndex     int
	EndIndex       int
}

// HasOtherPages reports whether navigation should be shown.
func (p Page[T]) HasOtherPages() bool {
	return p.HasPrevious || p.HasNext
}

// PageRange lists every page number, for rendering navigation links.
func (p Page[T]) PageRange() []int {
	out := make([]int, p.NumPages)
	for i := range out {
		out[i] = i + 1
	}
	return out
}

// Paginate returns the requested page of items. requested is the raw
// "page" query value: missing, non-numeric or non-positive values give the
// first page and values past the end give the last one. An empty list is
// a single empty page.
func Paginate[T any](items []T, pageSize int, requested string) Page[T] {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	count := len(items)
	numPages := (count + pageSize - 1) / pageSize
	if numPages == 0 {
		numPages = 1
	}

	number, err := strconv.Atoi(requested)
	if err != nil || number < 1 {
		number = 1
	}
	if number > numPages {
		number = numPages
	}

	start := (number - 1) * pageSize
	end := start + pageSize
	if end > count {
		end = count
	}

	page := Page[T]{
		Number:      number,
		NumPages:    numPages,
		Count:       count,
		Items:       items[start:end],
		HasPrevious: number > 1,
		HasNext:     number < numPages,
	}
	if page.HasPrevious {
		page.PreviousNumber = number - 1
	}
	if page.HasNext {
		page.NextNumber = number + 1
	}
	if count > 0 {
		page.StartIndex = start + 1
		page.EndIndex = end
	}
	return page
}
