package seo

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/MogaPreet/maccindia/internal/models"
)

const sitemapNS = "http://www.sitemaps.org/schemas/sitemap/0.9"

type URL struct {
	Loc        string  `xml:"loc"`
	LastMod    string  `xml:"lastmod,omitempty"`
	ChangeFreq string  `xml:"changefreq,omitempty"`
	Priority   float64 `xml:"priority"`
}

type urlSet struct {
	XMLName xml.Name `xml:"urlset"`
	XMLNS   string   `xml:"xmlns,attr"`
	URLs    []URL    `xml:"url"`
}

type staticPage struct {
	path     string
	freq     string
	priority float64
}

var staticPages = []staticPage{
	{"", "daily", 1.0},
	{"/products", "daily", 0.9},
	{"/contact", "monthly", 0.7},
	{"/faq", "monthly", 0.6},
	{"/rentals", "monthly", 0.6},
	{"/privacy", "yearly", 0.3},
	{"/terms", "yearly", 0.3},
	{"/returns", "yearly", 0.3},
	{"/warranty", "yearly", 0.3},
}

// Sitemap lists the static pages, every product and every category.
func Sitemap(baseURL string, now time.Time, products []models.Product, categories []models.Category) []URL {
	base := strings.TrimRight(baseURL, "/")
	urls := make([]URL, 0, len(staticPages)+len(products)+len(categories))
	for _, p := range staticPages {
		urls = append(urls, URL{Loc: base + p.path, LastMod: date(now, now), ChangeFreq: p.freq, Priority: p.priority})
	}
	for _, p := range products {
		urls = append(urls, URL{Loc: base + "/product/" + p.Slug, LastMod: date(p.UpdatedAt, now), ChangeFreq: "weekly", Priority: 0.8})
	}
	for _, c := range categories {
		urls = append(urls, URL{Loc: base + "/category/" + c.Slug, LastMod: date(c.UpdatedAt, now), ChangeFreq: "weekly", Priority: 0.7})
	}
	return urls
}

func date(t, fallback time.Time) string {
	if t.IsZero() {
		t = fallback
	}
	return t.UTC().Format("2006-01-02")
}

// WriteSitemap encodes urls as a sitemap document.
func WriteSitemap(w io.Writer, urls []URL) error {
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(urlSet{XMLNS: sitemapNS, URLs: urls}); err != nil {
		return fmt.Errorf("encode sitemap: %w", err)
	}
	return enc.Flush()
}

// Robots allows everything except the API and points crawlers at the sitemap.
func Robots(baseURL string) string {
	base := strings.TrimRight(baseURL, "/")
	return "User-agent: *\nAllow: /\nDisallow: /api/\n\nSitemap: " + base + "/sitemap.xml\n"
}
