package catalog

import "github.com/MogaPreet/maccindia/internal/models"

// View is the immutable browse state of one listing session: the filter state, the
// price selector and the current page. Every filter transition returns a new View
// positioned on page 1.
type View struct {
	products []models.Product
	brands   []string
	facets   Facets
	filters  FilterState
	selector RangeSelector
	page     int
}

// NewView opens a listing over c with default filters on page 1.
func NewView(c Collection, brands []models.Brand, facets Facets) (View, error) {
	sel, err := NewRangeSelector(MaxPrice(c.Products), PriceStep, PriceMinGap)
	if err != nil {
		return View{}, err
	}
	return View{
		products: c.Products,
		brands:   BrandOptions(brands),
		facets:   facets,
		filters:  FilterState{Price: sel.Value},
		selector: sel,
		page:     1,
	}, nil
}

func (v View) Filters() FilterState { return v.filters.clone() }
func (v View) Selector() RangeSelector { return v.selector }
func (v View) CurrentPage() int { return v.page }
func (v View) Facets() Facets { return v.facets }
func (v View) BrandOptions() []string { return v.brands }
func (v View) Products() []models.Product { return v.products }

func (v View) withFilters(change func(*FilterState)) View {
	next := v.filters.clone()
	change(&next)
	v.filters = next
	v.page = 1
	return v
}

func (v View) withSelector(sel RangeSelector) View {
	v.selector = sel
	return v.withFilters(func(s *FilterState) { s.Price = sel.Value })
}

func (v View) WithSearch(search string) View {
	return v.withFilters(func(s *FilterState) { s.Search = search })
}

func (v View) ToggleBrand(name string) View {
	return v.withFilters(func(s *FilterState) { s.Brands = toggle(s.Brands, name) })
}

func (v View) ToggleRAM(token string) View {
	return v.withFilters(func(s *FilterState) { s.RAM = toggle(s.RAM, token) })
}

func (v View) ToggleProcessor(f Family) View {
	return v.withFilters(func(s *FilterState) { s.Processors = toggle(s.Processors, f) })
}

func (v View) SetPriceLow(price float64) View {
	return v.withSelector(v.selector.SetLow(price))
}

func (v View) SetPriceHigh(price float64) View {
	return v.withSelector(v.selector.SetHigh(price))
}

// MovePrice moves the price handle nearest to price, as a click on the track does.
func (v View) MovePrice(price float64) View {
	return v.withSelector(v.selector.MoveNearest(price))
}

func (v View) ApplyPreset(p Preset) View {
	return v.withSelector(v.selector.ApplyPreset(p))
}

// Clear drops every filter and resets the price range.
func (v View) Clear() View {
	sel := v.selector.Reset()
	v.selector = sel
	return v.withFilters(func(s *FilterState) { *s = FilterState{Price: sel.Value} })
}

// Filtered applies the current filters to the collection.
func (v View) Filtered() []models.Product {
	return Filter(v.products, v.filters)
}

func (v View) totalPages() int {
	return TotalPages(len(v.Filtered()), PageSize)
}

func (v View) NextPage() View {
	v.page = ClampPage(v.page+1, v.totalPages())
	return v
}

func (v View) PrevPage() View {
	v.page = ClampPage(v.page-1, v.totalPages())
	return v
}

// GoToPage jumps to n when it is a valid page; otherwise the view is unchanged.
func (v View) GoToPage(n int) View {
	if n >= 1 && n <= v.totalPages() {
		v.page = n
	}
	return v
}

// Listing is everything a listing page renders.
type Listing struct {
	Page     Page          `json:"page"`
	Filters  FilterState   `json:"filters"`
	Facets   Facets        `json:"facets"`
	Brands   []string      `json:"brands"`
	MaxPrice float64       `json:"maxPrice"`
	Active   bool          `json:"active"`
	Selector RangeSelector `json:"-"`
}

func (v View) Listing() Listing {
	return Listing{
		Page:     Paginate(v.Filtered(), v.page, PageSize),
		Filters:  v.Filters(),
		Facets:   v.facets,
		Brands:   v.brands,
		MaxPrice: v.selector.Max,
		Active:   v.filters.Active(v.selector.Max),
		Selector: v.selector,
	}
}
