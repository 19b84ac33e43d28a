package controllers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/MogaPreet/maccindia/internal/compress"
	"github.com/MogaPreet/maccindia/internal/format"
	"github.com/MogaPreet/maccindia/internal/middleware"
	"github.com/MogaPreet/maccindia/internal/models"
	"github.com/gocarina/gocsv"
	"go.uber.org/zap"
)

const exportName = "maccindia-prices"

// priceRow is one line of the exported price list.
type priceRow struct {
	ID            string  `csv:"id"`
	Name          string  `csv:"name"`
	Brand         string  `csv:"brand"`
	Condition     string  `csv:"condition"`
	Price         float64 `csv:"price"`
	OriginalPrice string  `csv:"original_price"`
	Discount      int     `csv:"discount_percent"`
	Processor     string  `csv:"processor"`
	RAM           string  `csv:"ram"`
	Storage       string  `csv:"storage"`
	Categories    string  `csv:"categories"`
	URL           string  `csv:"url"`
}

func newPriceRow(baseURL string, p models.Product) priceRow {
	row := priceRow{
		ID:         p.ID,
		Name:       p.Name,
		Brand:      p.BrandName,
		Condition:  string(p.Condition),
		Price:      p.Price,
		Discount:   format.DiscountPercent(p.Price, p.OriginalPrice),
		Processor:  p.Specs.Processor(),
		RAM:        p.Specs.RAM(),
		Storage:    p.Specs.Get(models.SpecStorage),
		Categories: strings.Join(p.CategoryNames, "; "),
		URL:        strings.TrimRight(baseURL, "/") + "/product/" + p.Slug,
	}
	if p.OriginalPrice != nil {
		row.OriginalPrice = fmt.Sprintf("%.0f", *p.OriginalPrice)
	}
	return row
}

// exportProducts streams the filtered listing, every page of it, as a CSV file
// packed in the archive chosen by ArchiveTypeMiddleware.
func (h *BaseController) exportProducts(w http.ResponseWriter, r *http.Request) {
	v, err := h.loadView(r)
	if err != nil {
		h.writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": err.Error()})
		return
	}

	filtered := v.Filtered()
	rows := make([]priceRow, 0, len(filtered))
	for _, p := range filtered {
		rows = append(rows, newPriceRow(h.baseURL, p))
	}

	kind := middleware.ArchiveType(r.Context())
	w.Header().Set("Content-Type", compress.ContentType(kind))
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", exportName+"."+kind))

	aw, err := compress.NewWriter(kind, w, exportName+".csv", h.now())
	if err != nil {
		http.Error(w, fmt.Sprintf("Failed to create archive: %v", err), http.StatusInternalServerError)
		return
	}
	if err := gocsv.Marshal(rows, aw); err != nil {
		h.log.Error("Error writing price list", zap.Error(err))
		return
	}
	if err := aw.Close(); err != nil {
		h.log.Error("Error closing archive", zap.String("kind", kind), zap.Error(err))
	}
}
