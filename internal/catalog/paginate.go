package catalog

import "github.com/MogaPreet/maccindia/internal/models"

// PageSize is the number of products per listing page.
const PageSize = 6

// TotalPages is ceil(count/size); zero when there is nothing to show.
func TotalPages(count, size int) int {
	if count <= 0 || size <= 0 {
		return 0
	}
	return (count + size - 1) / size
}

// ClampPage pins page to [1, max(totalPages, 1)].
func ClampPage(page, totalPages int) int {
	if totalPages < 1 {
		totalPages = 1
	}
	if page < 1 {
		return 1
	}
	if page > totalPages {
		return totalPages
	}
	return page
}

// Page is one slice of a filtered listing.
type Page struct {
	Items      []models.Product `json:"items"`
	Number     int              `json:"page"`
	TotalPages int              `json:"totalPages"`
	TotalItems int              `json:"totalItems"`
}

// Empty reports whether the listing has nothing to show.
func (p Page) Empty() bool {
	return p.TotalItems == 0
}

func (p Page) HasPrev() bool { return p.Number > 1 }
func (p Page) HasNext() bool { return p.Number < p.TotalPages }

// Numbers lists the selectable page numbers.
func (p Page) Numbers() []int {
	out := make([]int, p.TotalPages)
	for i := range out {
		out[i] = i + 1
	}
	return out
}

// Paginate slices products into the requested page, clamping the page number.
func Paginate(products []models.Product, page, size int) Page {
	total := TotalPages(len(products), size)
	page = ClampPage(page, total)
	if total == 0 {
		return Page{Items: []models.Product{}, Number: page}
	}
	start := (page - 1) * size
	end := start + size
	if end > len(products) {
		end = len(products)
	}
	return Page{
		Items:      products[start:end],
		Number:     page,
		TotalPages: total,
		TotalItems: len(products),
	}
}
