// Package seo builds page metadata, structured data, the sitemap and robots.txt.
package seo

import (
	"encoding/json"
	"html/template"
	"strings"

	"github.com/MogaPreet/maccindia/internal/models"
)

const SiteName = "MACC India"

type OpenGraph struct {
	Title       string
	Description string
	Image       string
	Type        string
}

type Meta struct {
	Title       string
	Description string
	Canonical   string
	OG          OpenGraph
	JSONLD      template.JS
}

// NewMeta builds metadata for path under baseURL. An empty title yields the site name.
func NewMeta(baseURL, path, title, description string) Meta {
	full := SiteName
	if title != "" {
		full = title + " | " + SiteName
	}
	canonical := strings.TrimRight(baseURL, "/") + path
	return Meta{
		Title:       full,
		Description: description,
		Canonical:   canonical,
		OG: OpenGraph{
			Title:       full,
			Description: description,
			Type:        "website",
		},
	}
}

// ProductMeta describes a product page, including schema.org Product data.
func ProductMeta(baseURL string, p models.Product) Meta {
	desc := p.Description
	if desc == "" {
		desc = "Certified refurbished " + p.Name + " in " + string(p.Condition) + " condition."
	}
	m := NewMeta(baseURL, "/product/"+p.Slug, p.Name, desc)
	m.OG.Type = "product"
	if len(p.Images) > 0 {
		m.OG.Image = p.Images[0]
	}
	m.JSONLD = JSON(Product(m.Canonical, p))
	return m
}

// JSON marshals v for a script block. It returns an empty string on error.
func JSON(v any) template.JS {
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return template.JS(b)
}

// Product returns a schema.org Product with a single INR offer.
func Product(url string, p models.Product) map[string]any {
	condition := "https://schema.org/RefurbishedCondition"
	m := map[string]any{
		"@context": "https://schema.org",
		"@type":    "Product",
		"name":     p.Name,
		"sku":      p.ID,
		"offers": map[string]any{
			"@type":         "Offer",
			"url":           url,
			"priceCurrency": "INR",
			"price":         p.Price,
			"itemCondition": condition,
			"availability":  availability(p),
		},
	}
	if p.BrandName != "" {
		m["brand"] = map[string]any{"@type": "Brand", "name": p.BrandName}
	}
	if len(p.Images) > 0 {
		m["image"] = p.Images
	}
	if p.Description != "" {
		m["description"] = p.Description
	}
	return m
}

func availability(p models.Product) string {
	if p.Stock != nil && *p.Stock <= 0 {
		return "https://schema.org/OutOfStock"
	}
	return "https://schema.org/InStock"
}
