package controllers

import (
	"archive/tar"
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/MogaPreet/maccindia/internal/catalog"
	"github.com/MogaPreet/maccindia/internal/content"
	"github.com/MogaPreet/maccindia/internal/leads"
	"github.com/MogaPreet/maccindia/internal/logger"
	"github.com/MogaPreet/maccindia/internal/memkeeper"
	"github.com/MogaPreet/maccindia/internal/middleware"
	"github.com/MogaPreet/maccindia/internal/models"
	"github.com/MogaPreet/maccindia/internal/storage"
	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const baseURL = "https://www.maccindia.in"

var now = time.Date(2025, 2, 1, 10, 0, 0, 0, time.UTC)

type fixture struct {
	router http.Handler
	keeper *memkeeper.MemKeeper
}

func newFixture(t *testing.T, opts ...func(*Deps)) fixture {
	t.Helper()
	log := logger.NewNop()

	keeper, err := memkeeper.New("", log)
	require.NoError(t, err)
	st := storage.NewStorage(keeper, log, time.Minute)

	svc, err := leads.NewService(leads.Deps{
		Store:       st,
		Clock:       func() time.Time { return now },
		IDGenerator: func() string { return "lead-1" },
	})
	require.NoError(t, err)

	pages, err := content.NewStore("")
	require.NoError(t, err)

	deps := Deps{
		Storage: st,
		Leads:   svc,
		Pages:   pages,
		Facets:  &catalog.FacetCache{},
		BaseURL: baseURL,
		Clock:   func() time.Time { return now },
		Log:     log,
	}
	for _, o := range opts {
		o(&deps)
	}
	h, err := NewBaseController(deps)
	require.NoError(t, err)
	return fixture{router: h.Route(), keeper: keeper}
}

func (f fixture) do(t *testing.T, method, target string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func (f fixture) get(t *testing.T, target string) *httptest.ResponseRecorder {
	return f.do(t, http.MethodGet, target, nil, "")
}

func (f fixture) postForm(t *testing.T, target string, form url.Values) *httptest.ResponseRecorder {
	return f.do(t, http.MethodPost, target, strings.NewReader(form.Encode()), "application/x-www-form-urlencoded")
}

func document(t *testing.T, rec *httptest.ResponseRecorder) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(rec.Body)
	require.NoError(t, err)
	return doc
}

func TestNewBaseControllerRequiresDeps(t *testing.T) {
	_, err := NewBaseController(Deps{})
	assert.Error(t, err)
}

func TestHome(t *testing.T) {
	f := newFixture(t)
	rec := f.get(t, "/")
	require.Equal(t, http.StatusOK, rec.Code)

	doc := document(t, rec)
	assert.Equal(t, "MACC India", doc.Find("title").Text())
	assert.Equal(t, storage.FeaturedLimit, doc.Find(".featured .product-card").Length())
	assert.Equal(t, 6, doc.Find(".categories li").Length())
	assert.Equal(t, 5, doc.Find(".testimonial").Length())
	assert.Equal(t, "New Year Laptop Sale", doc.Find(".promo h2").Text())
	assert.Equal(t, 3, doc.Find(".promo-products .product-card").Length())
}

func TestListingFirstPage(t *testing.T) {
	f := newFixture(t)
	rec := f.get(t, "/products")
	require.Equal(t, http.StatusOK, rec.Code)

	doc := document(t, rec)
	assert.Equal(t, "12 laptops found", doc.Find(".count").Text())
	assert.Equal(t, catalog.PageSize, doc.Find(".product-card").Length())
	assert.Equal(t, "1", doc.Find(".pagination .current").Text())
	assert.Equal(t, "/products?page=2", doc.Find(".pagination .next").AttrOr("href", ""))
	assert.Zero(t, doc.Find(".pagination .prev").Length())
	assert.Zero(t, doc.Find("form .clear").Length())
	assert.Equal(t, 6, doc.Find(".facet.brand input").Length())
}

func TestListingFilters(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name  string
		query string
		items int
	}{
		{name: "brand", query: "brand=Dell", items: 2},
		{name: "repeated brand value counts once", query: "brand=Dell&brand=Dell", items: 2},
		{name: "ram", query: "ram=16GB", items: 7},
		{name: "processor family", query: "cpu=Apple+Silicon", items: 3},
		{name: "preset", query: "preset=under-50k", items: 2},
		{name: "price range", query: "min=80000&max=100000", items: 5},
		{name: "search is case-insensitive", query: "q=macbook", items: 3},
		{name: "no match", query: "q=chromebook", items: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := f.get(t, "/api/v0/products?"+tt.query)
			require.Equal(t, http.StatusOK, rec.Code)

			var listing catalog.Listing
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listing))
			assert.Equal(t, tt.items, listing.Page.TotalItems)
			assert.True(t, listing.Active)
		})
	}
}

func TestListingPages(t *testing.T) {
	f := newFixture(t)

	doc := document(t, f.get(t, "/products?page=2"))
	assert.Equal(t, 6, doc.Find(".product-card").Length())
	assert.Equal(t, "2", doc.Find(".pagination .current").Text())
	assert.Equal(t, "/products", doc.Find(".pagination .prev").AttrOr("href", ""))

	// out of range pages leave the listing where it was
	doc = document(t, f.get(t, "/products?page=9"))
	assert.Equal(t, "1", doc.Find(".pagination .current").Text())

	// filters reset the page before it is applied
	doc = document(t, f.get(t, "/products?brand=Dell&page=2"))
	assert.Equal(t, 2, doc.Find(".product-card").Length())
	assert.Zero(t, doc.Find(".pagination").Length())
}

func TestListingPresetsAndEmptyState(t *testing.T) {
	f := newFixture(t)

	doc := document(t, f.get(t, "/products?preset=under-50k"))
	assert.Equal(t, "Under ₹50K", doc.Find(".preset.active").Text())
	assert.Equal(t, "/products", doc.Find(".clear").AttrOr("href", ""))

	doc = document(t, f.get(t, "/products?q=chromebook"))
	assert.Equal(t, 1, doc.Find(".empty").Length())
	assert.Zero(t, doc.Find(".product-card").Length())
}

func TestApplyQueryKeepsPageLinksFiltered(t *testing.T) {
	f := newFixture(t)
	doc := document(t, f.get(t, "/products?ram=16GB"))

	next, ok := doc.Find(".pagination .next").Attr("href")
	require.True(t, ok)
	u, err := url.Parse(next)
	require.NoError(t, err)
	assert.Equal(t, "16GB", u.Query().Get("ram"))
	assert.Equal(t, "2", u.Query().Get("page"))
}

func TestFacetsAndBrands(t *testing.T) {
	f := newFixture(t)

	var facets facetsResponse
	rec := f.get(t, "/api/v0/facets")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &facets))
	assert.Equal(t, []string{"16GB", "8GB"}, facets.RAM)
	assert.Equal(t, float64(135000), facets.MaxPrice)
	assert.Equal(t, []string{"Apple", "Dell", "HP", "Lenovo", "Asus", "Acer"}, facets.Brands)
	require.Len(t, facets.Presets, len(catalog.Presets))
	assert.Equal(t, float64(135000), facets.Presets[2].Range.High)

	var brands []models.Brand
	rec = f.get(t, "/api/v0/brands")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &brands))
	assert.Len(t, brands, 6)
}

func TestProductPage(t *testing.T) {
	f := newFixture(t)
	rec := f.get(t, "/product/dell-xps-15")
	require.Equal(t, http.StatusOK, rec.Code)

	doc := document(t, rec)
	assert.Equal(t, "Dell XPS 15", doc.Find("h1").Text())
	assert.Equal(t, baseURL+"/product/dell-xps-15", doc.Find(`link[rel="canonical"]`).AttrOr("href", ""))
	assert.Contains(t, doc.Find(`script[type="application/ld+json"]`).Text(), `"@type":"Product"`)
	assert.Equal(t, "Processor", doc.Find(".specs th").First().Text())
	assert.LessOrEqual(t, doc.Find(".similar .product-card").Length(), storage.SimilarLimit)
	assert.Zero(t, doc.Find(`.similar [data-id="dell-xps-15"]`).Length())

	assert.Equal(t, http.StatusNotFound, f.get(t, "/product/missing").Code)
}

func TestCategoryPage(t *testing.T) {
	f := newFixture(t)
	doc := document(t, f.get(t, "/category/gaming"))
	assert.Equal(t, "Gaming Beasts", doc.Find("h1").Text())
	assert.NotZero(t, doc.Find(".product-card").Length())

	assert.Equal(t, http.StatusNotFound, f.get(t, "/category/nope").Code)
}

func TestInquiryForm(t *testing.T) {
	f := newFixture(t)

	rec := f.postForm(t, "/product/dell-xps-15/inquiry", url.Values{"customerName": {"Asha"}})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	doc := document(t, rec)
	assert.NotEmpty(t, doc.Find(".form-error").Text())
	assert.Equal(t, "Asha", doc.Find(`input[name="customerName"]`).AttrOr("value", ""))
	assert.Empty(t, f.keeper.Leads())

	rec = f.postForm(t, "/product/dell-xps-15/inquiry", url.Values{
		"customerName":  {"  Asha <b>Rao</b> "},
		"customerPhone": {"9876543210"},
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, document(t, rec).Find(".form-success").Length())

	stored := f.keeper.Leads()
	require.Len(t, stored, 1)
	require.NotNil(t, stored[0].Inquiry)
	assert.Equal(t, "dell-xps-15", stored[0].Inquiry.ProductID)
	assert.Equal(t, "Asha Rao", stored[0].Inquiry.CustomerName)
	assert.Equal(t, models.StatusPending, stored[0].Inquiry.Status)

	assert.Equal(t, http.StatusNotFound, f.postForm(t, "/product/missing/inquiry", url.Values{}).Code)
}

func TestContactForm(t *testing.T) {
	f := newFixture(t)
	assert.Equal(t, http.StatusOK, f.get(t, "/contact").Code)

	form := url.Values{
		"name":    {"Asha"},
		"email":   {"asha.example.com"},
		"subject": {"Bulk order"},
		"message": {"Need 20 laptops"},
	}
	rec := f.postForm(t, "/contact", form)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	doc := document(t, rec)
	assert.Contains(t, doc.Find(".form-error").Text(), "email")
	assert.Equal(t, "Need 20 laptops", doc.Find("textarea").Text())

	form.Set("email", "asha@example.com")
	rec = f.postForm(t, "/contact", form)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, document(t, rec).Find(".form-success").Length())
	require.Len(t, f.keeper.Leads(), 1)
	assert.Equal(t, models.LeadContact, f.keeper.Leads()[0].Kind)
}

type failingLeads struct{}

func (failingLeads) SubmitInquiry(context.Context, leads.InquiryInput) (models.LeadResult, error) {
	return models.LeadResult{Error: storage.InquiryFailedMessage}, nil
}

func (failingLeads) SubmitContact(context.Context, leads.ContactInput) (models.LeadResult, error) {
	return models.LeadResult{Error: storage.ContactFailedMessage}, nil
}

func TestFailedLeadWriteEchoesForm(t *testing.T) {
	f := newFixture(t, func(d *Deps) { d.Leads = failingLeads{} })

	rec := f.postForm(t, "/contact", url.Values{"name": {"Asha"}, "subject": {"Hi"}})
	require.Equal(t, http.StatusOK, rec.Code)
	doc := document(t, rec)
	assert.Equal(t, storage.ContactFailedMessage, doc.Find(".form-error").Text())
	assert.Equal(t, "Asha", doc.Find(`input[name="name"]`).AttrOr("value", ""))

	rec = f.do(t, http.MethodPost, "/api/v0/leads/product-inquiry", strings.NewReader(`{"productId":"x"}`), "application/json")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestLeadAPI(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/api/v0/leads/contact",
		strings.NewReader(`{"name":"Asha","email":"a@b.in","subject":"Rental","message":"10 units"}`), "application/json")
	require.Equal(t, http.StatusCreated, rec.Code)
	var result models.LeadResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.True(t, result.Success)
	assert.Equal(t, "lead-1", result.ID)

	rec = f.do(t, http.MethodPost, "/api/v0/leads/product-inquiry", strings.NewReader(`{"productId":"dell-xps-15"}`), "application/json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, http.MethodPost, "/api/v0/leads/contact", strings.NewReader(`{`), "application/json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, http.MethodPost, "/api/v0/leads/newsletter", strings.NewReader(`{}`), "application/json")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestLeadRateLimit(t *testing.T) {
	f := newFixture(t, func(d *Deps) {
		d.LeadLimit = middleware.RateLimit(middleware.NewMemoryCounter(), 1, time.Minute, d.Log)
	})
	form := url.Values{"name": {"A"}, "email": {"a@b.in"}, "subject": {"s"}, "message": {"m"}}

	assert.Equal(t, http.StatusOK, f.postForm(t, "/contact", form).Code)
	rec := f.postForm(t, "/contact", form)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))

	// reads are not limited
	assert.Equal(t, http.StatusOK, f.get(t, "/contact").Code)
}

func TestLeadRateLimitForwardedFor(t *testing.T) {
	form := url.Values{"name": {"A"}, "email": {"a@b.in"}, "subject": {"s"}, "message": {"m"}}
	post := func(f fixture, forwardedFor string) int {
		req := httptest.NewRequest(http.MethodPost, "/contact", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req.Header.Set("X-Forwarded-For", forwardedFor)
		rec := httptest.NewRecorder()
		f.router.ServeHTTP(rec, req)
		return rec.Code
	}
	limit := func(d *Deps) {
		d.LeadLimit = middleware.RateLimit(middleware.NewMemoryCounter(), 1, time.Minute, d.Log)
	}

	direct := newFixture(t, limit)
	assert.Equal(t, http.StatusOK, post(direct, "203.0.113.1"))
	assert.Equal(t, http.StatusTooManyRequests, post(direct, "203.0.113.2"), "spoofed headers share the peer's window")

	proxied := newFixture(t, limit, func(d *Deps) { d.TrustProxy = true })
	assert.Equal(t, http.StatusOK, post(proxied, "203.0.113.1"))
	assert.Equal(t, http.StatusOK, post(proxied, "203.0.113.2"))
	assert.Equal(t, http.StatusTooManyRequests, post(proxied, "203.0.113.1"))
}

func TestExport(t *testing.T) {
	f := newFixture(t)

	rec := f.get(t, "/api/v0/products/export?brand=Dell")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/zip", rec.Header().Get("Content-Type"))

	zr, err := zip.NewReader(bytes.NewReader(rec.Body.Bytes()), int64(rec.Body.Len()))
	require.NoError(t, err)
	require.Len(t, zr.File, 1)
	assert.Equal(t, "maccindia-prices.csv", zr.File[0].Name)
	rc, err := zr.File[0].Open()
	require.NoError(t, err)
	csvData, err := io.ReadAll(rc)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(csvData)), "\n")
	assert.True(t, strings.HasPrefix(lines[0], "id,name,brand"))
	assert.Len(t, lines, 3)

	rec = f.get(t, "/api/v0/products/export?archiveType=tar")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/x-tar", rec.Header().Get("Content-Type"))
	tr := tar.NewReader(rec.Body)
	hdr, err := tr.Next()
	require.NoError(t, err)
	assert.Equal(t, "maccindia-prices.csv", hdr.Name)
	csvData, err = io.ReadAll(tr)
	require.NoError(t, err)
	assert.Len(t, strings.Split(strings.TrimSpace(string(csvData)), "\n"), 13)
}

func TestContentPages(t *testing.T) {
	f := newFixture(t)

	rec := f.get(t, "/warranty")
	require.Equal(t, http.StatusOK, rec.Code)
	doc := document(t, rec)
	assert.NotEmpty(t, doc.Find(".content-page h1").Text())
	assert.Equal(t, baseURL+"/warranty", doc.Find(`link[rel="canonical"]`).AttrOr("href", ""))

	rec = f.get(t, "/nope")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Page Not Found", document(t, rec).Find("h1").Text())
}

func TestSitemapRobotsHealth(t *testing.T) {
	f := newFixture(t)

	rec := f.get(t, "/sitemap.xml")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "<loc>"+baseURL+"/product/dell-xps-15</loc>")
	assert.Contains(t, rec.Body.String(), "<loc>"+baseURL+"/category/gaming</loc>")

	rec = f.get(t, "/robots.txt")
	assert.Contains(t, rec.Body.String(), "Sitemap: "+baseURL+"/sitemap.xml")

	rec = f.get(t, "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())

	rec = f.get(t, "/api/v0/missing")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "application/json")
}

func TestApplyQuery(t *testing.T) {
	products := []models.Product{
		{ID: "a", Name: "A", BrandName: "HP", Price: 30000, Specs: models.Specs{models.SpecRAM: "8GB"}},
		{ID: "b", Name: "B", BrandName: "HP", Price: 60000, Specs: models.Specs{models.SpecRAM: "16GB"}},
		{ID: "c", Name: "C", BrandName: "Dell", Price: 90000, Specs: models.Specs{models.SpecRAM: "16GB"}},
	}
	c := catalog.Collection{Version: 1, Products: products}
	v, err := catalog.NewView(c, nil, catalog.ExtractFacets(products))
	require.NoError(t, err)

	got := applyQuery(v, url.Values{"min": {"abc"}, "max": {"62000"}, "brand": {"HP", ""}})
	assert.Equal(t, catalog.PriceRange{Low: 0, High: 60000}, got.Filters().Price)
	assert.Equal(t, []string{"HP"}, got.Filters().Brands)
	assert.Len(t, got.Filtered(), 2)

	got = applyQuery(v, url.Values{"at": {"90000"}})
	assert.Equal(t, float64(90000), got.Filters().Price.High)

	got = applyQuery(v, url.Values{"q": {"   "}, "preset": {"unknown"}})
	assert.False(t, got.Filters().Active(got.Selector().Max))
}

func TestApplyQueryIgnoresNonFinitePrices(t *testing.T) {
	products := []models.Product{
		{ID: "a", Name: "A", BrandName: "HP", Price: 30000},
		{ID: "b", Name: "B", BrandName: "Dell", Price: 90000},
	}
	v, err := catalog.NewView(catalog.Collection{Version: 1, Products: products}, nil, catalog.ExtractFacets(products))
	require.NoError(t, err)
	full := catalog.PriceRange{Low: 0, High: 100000}

	for _, raw := range []string{"NaN", "Inf", "-Inf", "+Inf"} {
		got := applyQuery(v, url.Values{"min": {raw}, "max": {raw}, "at": {raw}})
		assert.Equal(t, full, got.Filters().Price, raw)
		assert.Len(t, got.Filtered(), 2, raw)
	}

	got := applyQuery(v, url.Values{"min": {"NaN"}, "max": {"60000"}})
	assert.Equal(t, catalog.PriceRange{Low: 0, High: 60000}, got.Filters().Price)
}

func TestListingNonFinitePrices(t *testing.T) {
	f := newFixture(t)

	for _, query := range []string{"min=NaN", "max=NaN", "at=NaN", "max=Inf", "min=-Inf"} {
		rec := f.get(t, "/api/v0/products?"+query)
		require.Equal(t, http.StatusOK, rec.Code, query)

		var listing catalog.Listing
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listing), query)
		assert.Equal(t, 12, listing.Page.TotalItems, query)
		assert.Equal(t, catalog.PriceRange{Low: 0, High: 135000}, listing.Filters.Price, query)
	}

	doc := document(t, f.get(t, "/products?max=NaN"))
	assert.Equal(t, "12 laptops found", doc.Find(".count").Text())
}

func TestApplyQueryPresetAboveMaxPrice(t *testing.T) {
	products := []models.Product{{ID: "a", Name: "A", BrandName: "HP", Price: 30000}}
	v, err := catalog.NewView(catalog.Collection{Version: 1, Products: products}, nil, catalog.ExtractFacets(products))
	require.NoError(t, err)
	require.Equal(t, float64(40000), v.Selector().Max)

	got := applyQuery(v, url.Values{"preset": {"under-50k"}, "min": {"45000"}})
	assert.Equal(t, catalog.PriceRange{Low: 35000, High: 40000}, got.Filters().Price)
	assert.Empty(t, got.Filtered())

	got = applyQuery(v, url.Values{"preset": {"under-50k"}, "min": {"45000"}, "max": {"0"}})
	price := got.Filters().Price
	assert.LessOrEqual(t, price.Low, price.High-catalog.PriceMinGap)
	assert.LessOrEqual(t, price.High, float64(40000))
}

func TestStarsClamped(t *testing.T) {
	assert.Empty(t, stars(-1))
	assert.Len(t, stars(3), 3)
	assert.Len(t, stars(9), 5)
}
