package catalog

import (
	"sort"
	"strings"
	"sync"
	"unicode"

	"github.com/MogaPreet/maccindia/internal/models"
)

// Collection is a loaded product set. Version changes whenever the set is reloaded,
// so derived views can be cached against it.
type Collection struct {
	Version  uint64
	Products []models.Product
}

// Facets are the option lists derived from a product collection.
type Facets struct {
	RAM        []string `json:"ram"`
	Processors []Family `json:"processors"`
}

// RAMBucket returns the leading whitespace-delimited token of a raw RAM spec,
// e.g. "16GB" for "16GB DDR5 RAM". It returns "" when no token can be extracted.
func RAMBucket(raw string) string {
	if i := strings.IndexFunc(raw, unicode.IsSpace); i >= 0 {
		return raw[:i]
	}
	return raw
}

// RAMOptions collects the distinct RAM tokens of products, sorted as strings.
// Unpadded sizes therefore sort "16GB" before "8GB".
func RAMOptions(products []models.Product) []string {
	seen := make(map[string]struct{})
	for _, p := range products {
		token := RAMBucket(p.Specs.RAM())
		if token == "" {
			continue
		}
		seen[token] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for token := range seen {
		out = append(out, token)
	}
	sort.Strings(out)
	return out
}

// ProcessorOptions collects the distinct processor families of products, without FamilyOther.
func ProcessorOptions(products []models.Product) []Family {
	seen := make(map[Family]struct{})
	for _, p := range products {
		raw := p.Specs.Processor()
		if raw == "" {
			continue
		}
		if family := ClassifyProcessor(raw); family != FamilyOther {
			seen[family] = struct{}{}
		}
	}
	out := make([]Family, 0, len(seen))
	for family := range seen {
		out = append(out, family)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// BrandOptions lists selectable brand names. Brands come from the brand collection,
// not from product data.
func BrandOptions(brands []models.Brand) []string {
	out := make([]string, 0, len(brands))
	for _, b := range brands {
		if b.Name == "" {
			continue
		}
		out = append(out, b.Name)
	}
	return out
}

// ExtractFacets derives all product-backed option lists.
func ExtractFacets(products []models.Product) Facets {
	return Facets{
		RAM:        RAMOptions(products),
		Processors: ProcessorOptions(products),
	}
}

// FacetCache memoises ExtractFacets per collection version.
type FacetCache struct {
	mx      sync.Mutex
	version uint64
	facets  Facets
	ok      bool
	builds  int
}

// Get returns the facets of c, recomputing only when c.Version differs from the cached one.
func (fc *FacetCache) Get(c Collection) Facets {
	fc.mx.Lock()
	defer fc.mx.Unlock()

	if fc.ok && fc.version == c.Version {
		return fc.facets
	}
	fc.facets = ExtractFacets(c.Products)
	fc.version = c.Version
	fc.ok = true
	fc.builds++
	return fc.facets
}

// Builds reports how many times the facets were recomputed.
func (fc *FacetCache) Builds() int {
	fc.mx.Lock()
	defer fc.mx.Unlock()
	return fc.builds
}
