package controllers

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"path"
	"sort"
	"strconv"
	"strings"

	"github.com/MogaPreet/maccindia/internal/format"
	"github.com/MogaPreet/maccindia/internal/models"
	"github.com/MogaPreet/maccindia/internal/seo"
	"go.uber.org/zap"
)

//go:embed templates
var templateFS embed.FS

var specLabels = []struct {
	key   string
	label string
}{
	{models.SpecProcessor, "Processor"},
	{models.SpecRAM, "RAM"},
	{models.SpecStorage, "Storage"},
	{models.SpecScreen, "Display"},
	{models.SpecGraphics, "Graphics"},
	{models.SpecBattery, "Battery"},
	{models.SpecOS, "Operating System"},
	{models.SpecPorts, "Ports"},
	{models.SpecWeight, "Weight"},
}

type specRow struct {
	Label string
	Value string
}

// specRows lists the well-known specs first, then any custom keys by name.
func specRows(s models.Specs) []specRow {
	rows := make([]specRow, 0, len(s))
	known := make(map[string]bool, len(specLabels))
	for _, l := range specLabels {
		known[l.key] = true
		if v := s.Get(l.key); v != "" {
			rows = append(rows, specRow{Label: l.label, Value: v})
		}
	}
	extra := make([]string, 0)
	for k, v := range s {
		if !known[k] && v != "" {
			extra = append(extra, k)
		}
	}
	sort.Strings(extra)
	for _, k := range extra {
		rows = append(rows, specRow{Label: strings.ToUpper(k[:1]) + k[1:], Value: s[k]})
	}
	return rows
}

var funcs = template.FuncMap{
	"rupees":   format.Rupees,
	"compact":  format.Compact,
	"discount": format.DiscountPercent,
	"specs":    specRows,
	"percent":  func(v float64) string { return fmt.Sprintf("%.2f%%", v) },
	"join":     strings.Join,
	"num":      func(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) },
	"cover":    cover,
	"stars":    stars,
}

// stars yields one element per rating star, clamped to [0,5].
func stars(n int) []struct{} {
	return make([]struct{}, max(0, min(n, 5)))
}

func cover(p models.Product) string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0]
}

// page is the data every template receives. Data holds the view specific model.
type page struct {
	Meta seo.Meta
	Year int
	Data any
}

type renderer struct {
	views map[string]*template.Template
}

// newRenderer parses every view in templates/pages together with the shared layout.
func newRenderer() (*renderer, error) {
	names, err := fs.Glob(templateFS, "templates/pages/*.html")
	if err != nil {
		return nil, err
	}
	views := make(map[string]*template.Template, len(names))
	for _, name := range names {
		tmpl, err := template.New("layout.html").Funcs(funcs).ParseFS(templateFS,
			"templates/layout.html", "templates/partials.html", name)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
		views[strings.TrimSuffix(path.Base(name), ".html")] = tmpl
	}
	return &renderer{views: views}, nil
}

func (h *BaseController) render(w http.ResponseWriter, status int, view string, meta seo.Meta, data any) {
	tmpl, ok := h.views.views[view]
	if !ok {
		h.log.Error("Unknown view", zap.String("view", view))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, page{Meta: meta, Year: h.now().Year(), Data: data}); err != nil {
		h.log.Error("Error rendering view", zap.String("view", view), zap.Error(err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		h.log.Warn("Error writing response", zap.String("view", view), zap.Error(err))
	}
}

func (h *BaseController) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.log.Warn("Failed to encode response", zap.Error(err))
	}
}

func (h *BaseController) notFound(w http.ResponseWriter, r *http.Request) {
	if strings.HasPrefix(r.URL.Path, "/api/") {
		h.writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
		return
	}
	meta := seo.NewMeta(h.baseURL, r.URL.Path, "Page Not Found", "The page you are looking for does not exist.")
	h.render(w, http.StatusNotFound, "notfound", meta, nil)
}
