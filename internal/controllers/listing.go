package controllers

import (
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/MogaPreet/maccindia/internal/catalog"
	"github.com/MogaPreet/maccindia/internal/seo"
	"github.com/spf13/cast"
	"go.uber.org/zap"
)

// applyQuery replays the listing query string onto v as filter transitions.
// The page is applied last because every filter change resets it to 1.
func applyQuery(v catalog.View, q url.Values) catalog.View {
	if search := q.Get("q"); strings.TrimSpace(search) != "" {
		v = v.WithSearch(search)
	}
	for _, b := range distinct(q["brand"]) {
		v = v.ToggleBrand(b)
	}
	for _, token := range distinct(q["ram"]) {
		v = v.ToggleRAM(token)
	}
	for _, f := range distinct(q["cpu"]) {
		v = v.ToggleProcessor(catalog.Family(f))
	}
	if p, ok := catalog.LookupPreset(q.Get("preset")); ok {
		v = v.ApplyPreset(p)
	}
	if price, ok := priceParam(q, "max"); ok {
		v = v.SetPriceHigh(price)
	}
	if price, ok := priceParam(q, "min"); ok {
		v = v.SetPriceLow(price)
	}
	if price, ok := priceParam(q, "at"); ok {
		v = v.MovePrice(price)
	}
	if n := cast.ToInt(q.Get("page")); n > 0 {
		v = v.GoToPage(n)
	}
	return v
}

// priceParam parses a price query parameter. Missing, malformed, NaN and infinite
// values are ignored.
func priceParam(q url.Values, key string) (float64, bool) {
	raw := q.Get(key)
	if raw == "" {
		return 0, false
	}
	price, err := cast.ToFloat64E(raw)
	if err != nil || math.IsNaN(price) || math.IsInf(price, 0) {
		return 0, false
	}
	return price, true
}

func distinct(values []string) []string {
	seen := make(map[string]bool, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}

// loadView opens a session, waits for the catalog and applies the query.
func (h *BaseController) loadView(r *http.Request) (catalog.View, error) {
	session := catalog.NewSession(h.storage, h.facets)
	if err := session.Load(r.Context()); err != nil {
		return catalog.View{}, err
	}
	return session.Apply(func(v catalog.View) catalog.View {
		return applyQuery(v, r.URL.Query())
	})
}

// listingQuery encodes the filter state of v back into a query string.
func listingQuery(v catalog.View) url.Values {
	f := v.Filters()
	q := url.Values{}
	if f.Search != "" {
		q.Set("q", f.Search)
	}
	for _, b := range f.Brands {
		q.Add("brand", b)
	}
	for _, token := range f.RAM {
		q.Add("ram", token)
	}
	for _, fam := range f.Processors {
		q.Add("cpu", string(fam))
	}
	sel := v.Selector()
	if f.Price.Low > 0 {
		q.Set("min", strconv.FormatFloat(f.Price.Low, 'f', -1, 64))
	}
	if f.Price.High < sel.Max {
		q.Set("max", strconv.FormatFloat(f.Price.High, 'f', -1, 64))
	}
	return q
}

type option struct {
	Value   string
	Checked bool
}

type presetLink struct {
	Label  string
	URL    string
	Active bool
}

type pageLink struct {
	Number  int
	URL     string
	Current bool
}

type listingView struct {
	catalog.Listing
	Search     string
	Brands     []option
	RAM        []option
	Processors []option
	Presets    []presetLink
	Pages      []pageLink
	PrevURL    string
	NextURL    string
	ClearURL   string
	LeftPct    float64
	RightPct   float64
}

func checked(values []string, selected []string) []option {
	on := make(map[string]bool, len(selected))
	for _, s := range selected {
		on[s] = true
	}
	out := make([]option, 0, len(values))
	for _, v := range values {
		out = append(out, option{Value: v, Checked: on[v]})
	}
	return out
}

func newListingView(v catalog.View) listingView {
	listing := v.Listing()
	f := listing.Filters
	q := listingQuery(v)

	families := make([]string, 0, len(listing.Facets.Processors))
	for _, fam := range listing.Facets.Processors {
		families = append(families, string(fam))
	}
	selectedFamilies := make([]string, 0, len(f.Processors))
	for _, fam := range f.Processors {
		selectedFamilies = append(selectedFamilies, string(fam))
	}

	lv := listingView{
		Listing:    listing,
		Search:     f.Search,
		Brands:     checked(listing.Brands, f.Brands),
		RAM:        checked(listing.Facets.RAM, f.RAM),
		Processors: checked(families, selectedFamilies),
		ClearURL:   "/products",
	}
	lv.LeftPct, lv.RightPct = listing.Selector.Highlight()

	for _, p := range catalog.Presets {
		pq := cloneValues(q)
		pq.Del("min")
		pq.Del("max")
		if !p.All {
			pq.Set("preset", p.Key)
		}
		lv.Presets = append(lv.Presets, presetLink{
			Label:  p.Label,
			URL:    "/products" + encode(pq),
			Active: listing.Selector.PresetActive(p),
		})
	}

	pageURL := func(n int) string {
		pq := cloneValues(q)
		if n > 1 {
			pq.Set("page", strconv.Itoa(n))
		}
		return "/products" + encode(pq)
	}
	for _, n := range listing.Page.Numbers() {
		lv.Pages = append(lv.Pages, pageLink{Number: n, URL: pageURL(n), Current: n == listing.Page.Number})
	}
	if listing.Page.HasPrev() {
		lv.PrevURL = pageURL(listing.Page.Number - 1)
	}
	if listing.Page.HasNext() {
		lv.NextURL = pageURL(listing.Page.Number + 1)
	}
	return lv
}

func cloneValues(q url.Values) url.Values {
	out := make(url.Values, len(q))
	for k, v := range q {
		out[k] = append([]string(nil), v...)
	}
	return out
}

func encode(q url.Values) string {
	if len(q) == 0 {
		return ""
	}
	return "?" + q.Encode()
}

func (h *BaseController) products(w http.ResponseWriter, r *http.Request) {
	v, err := h.loadView(r)
	if err != nil {
		h.log.Warn("Listing unavailable", zap.Error(err))
		http.Error(w, "Catalog is loading, please retry", http.StatusServiceUnavailable)
		return
	}
	meta := seo.NewMeta(h.baseURL, "/products", "Shop Refurbished Laptops",
		"Browse certified refurbished laptops from Apple, Dell, HP, Lenovo and more at up to 50% off.")
	h.render(w, http.StatusOK, "products", meta, newListingView(v))
}

func (h *BaseController) apiProducts(w http.ResponseWriter, r *http.Request) {
	v, err := h.loadView(r)
	if err != nil {
		h.writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": err.Error()})
		return
	}
	h.writeJSON(w, http.StatusOK, v.Listing())
}

func (h *BaseController) apiBrands(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.storage.FetchAllBrands(r.Context()))
}

type facetsResponse struct {
	Brands     []string         `json:"brands"`
	RAM        []string         `json:"ram"`
	Processors []catalog.Family `json:"processors"`
	MaxPrice   float64          `json:"maxPrice"`
	Presets    []presetJSON     `json:"presets"`
}

type presetJSON struct {
	Key   string             `json:"key"`
	Label string             `json:"label"`
	Range catalog.PriceRange `json:"range"`
}

func (h *BaseController) apiFacets(w http.ResponseWriter, r *http.Request) {
	v, err := h.loadView(r)
	if err != nil {
		h.writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": err.Error()})
		return
	}
	resp := facetsResponse{
		Brands:     v.BrandOptions(),
		RAM:        v.Facets().RAM,
		Processors: v.Facets().Processors,
		MaxPrice:   v.Selector().Max,
	}
	for _, p := range catalog.Presets {
		rng := p.Range
		if p.All {
			rng = catalog.PriceRange{Low: 0, High: v.Selector().Max}
		}
		resp.Presets = append(resp.Presets, presetJSON{Key: p.Key, Label: p.Label, Range: rng})
	}
	h.writeJSON(w, http.StatusOK, resp)
}
