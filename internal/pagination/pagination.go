// Package pagination resolves a requested page number against a listing size.
//
// Bad input never fails: a missing or non-numeric page gives the first page,
// and any integer outside [1, NumPages] gives the last page.
package pagination

import (
	"errors"
	"strconv"
	"strings"
)

// Page describes one slice of a listing.
type Page struct {
	Number   int
	PerPage  int
	Total    int64
	NumPages int
}

// Resolve picks the page for raw.
func Resolve(raw string, total int64, perPage int) Page {
	if perPage < 1 {
		perPage = 1
	}
	if total < 0 {
		total = 0
	}

	numPages := int((total + int64(perPage) - 1) / int64(perPage))
	if numPages < 1 {
		numPages = 1
	}

	number, err := strconv.Atoi(strings.TrimSpace(raw))
	switch {
	case errors.Is(err, strconv.ErrRange):
		// An integer too wide for int is still out of range, not garbage.
		number = numPages
	case err != nil:
		number = 1
	case number < 1 || number > numPages:
		number = numPages
	}

	return Page{Number: number, PerPage: perPage, Total: total, NumPages: numPages}
}

// Offset is the number of rows to skip.
func (p Page) Offset() int { return (p.Number - 1) * p.PerPage }

// Limit is the number of rows to fetch.
func (p Page) Limit() int { return p.PerPage }

func (p Page) HasPrevious() bool { return p.Number > 1 }
func (p Page) HasNext() bool     { return p.Number < p.NumPages }
func (p Page) HasOtherPages() bool {
	return p.HasPrevious() || p.HasNext()
}

func (p Page) PreviousNumber() int { return p.Number - 1 }
func (p Page) NextNumber() int     { return p.Number + 1 }

// Range lists every page number, for page links.
func (p Page) Range() []int {
	out := make([]int, p.NumPages)
	for i := range out {
		out[i] = i + 1
	}
	return out
}
