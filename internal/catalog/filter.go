package catalog

import (
	"strings"

	"github.com/MogaPreet/maccindia/internal/models"
)

// PriceRange is an inclusive price interval.
type PriceRange struct {
	Low  float64 `json:"low"`
	High float64 `json:"high"`
}

// Contains reports whether price lies within the interval, bounds included.
func (r PriceRange) Contains(price float64) bool {
	return price >= r.Low && price <= r.High
}

// FilterState is the set of active listing filters. Empty selections match everything.
type FilterState struct {
	Search     string     `json:"search"`
	Brands     []string   `json:"brands"`
	RAM        []string   `json:"ram"`
	Processors []Family   `json:"processors"`
	Price      PriceRange `json:"price"`
}

// Active reports whether any filter narrows the listing below the full price range [0, maxPrice].
func (s FilterState) Active(maxPrice float64) bool {
	return s.Search != "" || len(s.Brands) > 0 || len(s.RAM) > 0 || len(s.Processors) > 0 ||
		s.Price.Low > 0 || s.Price.High < maxPrice
}

func (s FilterState) clone() FilterState {
	out := s
	out.Brands = append([]string(nil), s.Brands...)
	out.RAM = append([]string(nil), s.RAM...)
	out.Processors = append([]Family(nil), s.Processors...)
	return out
}

// MatchesSearch passes when search is empty or is a case-insensitive substring of the
// product name, brand name or processor spec.
func MatchesSearch(p models.Product, search string) bool {
	if search == "" {
		return true
	}
	needle := strings.ToLower(search)
	return strings.Contains(strings.ToLower(p.Name), needle) ||
		strings.Contains(strings.ToLower(p.BrandName), needle) ||
		strings.Contains(strings.ToLower(p.Specs.Processor()), needle)
}

// MatchesBrand passes when no brand is selected or the brand name is selected (case-sensitive).
func MatchesBrand(p models.Product, brands []string) bool {
	if len(brands) == 0 {
		return true
	}
	for _, b := range brands {
		if b == p.BrandName {
			return true
		}
	}
	return false
}

// MatchesRAM passes when no token is selected or the RAM spec starts with a selected token.
func MatchesRAM(p models.Product, tokens []string) bool {
	if len(tokens) == 0 {
		return true
	}
	ram := p.Specs.RAM()
	if ram == "" {
		return false
	}
	for _, token := range tokens {
		if strings.HasPrefix(ram, token) {
			return true
		}
	}
	return false
}

// MatchesProcessor passes when no family is selected or the processor spec classifies
// into a selected family.
func MatchesProcessor(p models.Product, families []Family) bool {
	if len(families) == 0 {
		return true
	}
	raw := p.Specs.Processor()
	if raw == "" {
		return false
	}
	family := ClassifyProcessor(raw)
	for _, f := range families {
		if f == family {
			return true
		}
	}
	return false
}

// Matches is the conjunction of all five predicates.
func (s FilterState) Matches(p models.Product) bool {
	return MatchesSearch(p, s.Search) &&
		MatchesBrand(p, s.Brands) &&
		MatchesRAM(p, s.RAM) &&
		MatchesProcessor(p, s.Processors) &&
		s.Price.Contains(p.Price)
}

// Filter returns the products that satisfy state, in their original order.
// It does not modify products.
func Filter(products []models.Product, state FilterState) []models.Product {
	out := make([]models.Product, 0, len(products))
	for _, p := range products {
		if state.Matches(p) {
			out = append(out, p)
		}
	}
	return out
}

func toggle[T comparable](set []T, v T) []T {
	out := make([]T, 0, len(set)+1)
	found := false
	for _, item := range set {
		if item == v {
			found = true
			continue
		}
		out = append(out, item)
	}
	if !found {
		out = append(out, v)
	}
	return out
}
