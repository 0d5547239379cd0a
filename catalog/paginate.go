// Package catalog holds the storefront presentation logic over product
// listings fetched from the bakery API: client-side pagination slicing and
// the browse parameters carried between requests.
package catalog

import "github.com/jafsabakes/storefront/bakeryapi"

// DefaultPerPage is the storefront page size.
const DefaultPerPage = 20

// BrowseParams are the storefront's listing controls. Zero values mean no
// search term, no category filter, first page.
type BrowseParams struct {
	Search   string
	Category string
	Page     int
}

// Page is one slice of a product listing plus the numbers the pagination
// controls need.
type Page struct {
	Products   []bakeryapi.Product
	Number     int
	TotalPages int
	TotalItems int
	PerPage    int
}

// HasPrev reports whether an earlier page exists.
func (p Page) HasPrev() bool {
	return p.Number > 1
}

// HasNext reports whether a later page exists.
func (p Page) HasNext() bool {
	return p.Number < p.TotalPages
}

// Prev returns the previous page number, clamped to the first page.
func (p Page) Prev() int {
	if p.Number <= 1 {
		return 1
	}
	return p.Number - 1
}

// Next returns the next page number, clamped to the last page.
func (p Page) Next() int {
	if p.Number >= p.TotalPages {
		return p.TotalPages
	}
	return p.Number + 1
}

// Paginate slices an already-fetched listing into the requested page. The
// whole listing is fetched from the API and sliced locally; page numbers out
// of range are clamped rather than erroring, so a stale link never 404s.
func Paginate(products []bakeryapi.Product, page, perPage int) Page {
	if perPage <= 0 {
		perPage = DefaultPerPage
	}

	totalPages := (len(products) + perPage - 1) / perPage
	if totalPages == 0 {
		totalPages = 1
	}

	if page < 1 {
		page = 1
	}
	if page > totalPages {
		page = totalPages
	}

	start := (page - 1) * perPage
	end := start + perPage
	if start > len(products) {
		start = len(products)
	}
	if end > len(products) {
		end = len(products)
	}

	return Page{
		Products:   products[start:end],
		Number:     page,
		TotalPages: totalPages,
		TotalItems: len(products),
		PerPage:    perPage,
	}
}
