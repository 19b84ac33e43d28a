package controllers

import (
	"errors"
	"io"
	"net/http"

	"github.com/MogaPreet/maccindia/internal/content"
	"github.com/MogaPreet/maccindia/internal/models"
	"github.com/MogaPreet/maccindia/internal/seo"
	"github.com/MogaPreet/maccindia/internal/storage"
	"github.com/go-chi/chi"
	"go.uber.org/zap"
)

type homeView struct {
	Featured     []models.Product
	Categories   []models.Category
	Brands       []models.Brand
	Testimonials []models.Testimonial
	Promo        *models.PromoOffer
	PromoItems   []models.Product
}

func (h *BaseController) home(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	data := homeView{
		Featured:     h.storage.FeaturedProducts(ctx, storage.FeaturedLimit),
		Categories:   h.storage.Categories(ctx),
		Brands:       h.storage.FetchAllBrands(ctx),
		Testimonials: h.storage.Testimonials(ctx),
	}
	if offer, err := h.storage.ActivePromoOffer(ctx, h.now()); err == nil {
		data.Promo = &offer
		data.PromoItems = h.storage.ProductsByIDs(ctx, offer.ProductIDs)
	}

	meta := seo.NewMeta(h.baseURL, "/", "",
		"Buy certified refurbished laptops in India. MacBook, Dell, HP, Lenovo at up to 50% off with warranty.")
	h.render(w, http.StatusOK, "home", meta, data)
}

// inquiryForm is the callback form on a product page, echoed back on failure.
type inquiryForm struct {
	CustomerName  string
	CustomerPhone string
	Error         string
	Success       bool
}

type productView struct {
	Product models.Product
	Similar []models.Product
	Inquiry inquiryForm
}

func (h *BaseController) renderProduct(w http.ResponseWriter, r *http.Request, status int, p models.Product, form inquiryForm) {
	data := productView{
		Product: p,
		Similar: h.storage.SimilarProducts(r.Context(), p),
		Inquiry: form,
	}
	h.render(w, status, "product", seo.ProductMeta(h.baseURL, p), data)
}

func (h *BaseController) product(w http.ResponseWriter, r *http.Request) {
	p, err := h.storage.ProductBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		h.notFound(w, r)
		return
	}
	h.renderProduct(w, r, http.StatusOK, p, inquiryForm{})
}

type categoryView struct {
	Category models.Category
	Products []models.Product
}

func (h *BaseController) category(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	c, err := h.storage.CategoryBySlug(ctx, chi.URLParam(r, "slug"))
	if err != nil {
		h.notFound(w, r)
		return
	}
	data := categoryView{Category: c, Products: h.storage.ProductsByCategory(ctx, c.ID)}
	meta := seo.NewMeta(h.baseURL, "/category/"+c.Slug, c.Name,
		"Shop "+c.Name+" refurbished laptops at MACC India.")
	meta.OG.Image = c.Image
	h.render(w, http.StatusOK, "category", meta, data)
}

func (h *BaseController) contentPage(w http.ResponseWriter, r *http.Request) {
	pg, err := h.pages.Page(chi.URLParam(r, "page"))
	if err != nil {
		if !errors.Is(err, content.ErrNotFound) {
			h.log.Error("Error loading page", zap.String("page", chi.URLParam(r, "page")), zap.Error(err))
		}
		h.notFound(w, r)
		return
	}
	meta := seo.NewMeta(h.baseURL, "/"+pg.Slug, pg.Title, pg.Description)
	h.render(w, http.StatusOK, "page", meta, pg)
}

func (h *BaseController) sitemap(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	urls := seo.Sitemap(h.baseURL, h.now(), h.storage.FetchAllProducts(ctx).Products, h.storage.Categories(ctx))
	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	if err := seo.WriteSitemap(w, urls); err != nil {
		h.log.Error("Error writing sitemap", zap.Error(err))
	}
}

func (h *BaseController) robots(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	io.WriteString(w, seo.Robots(h.baseURL))
}

func (h *BaseController) healthz(w http.ResponseWriter, r *http.Request) {
	if !h.storage.Ping(r.Context()) {
		http.Error(w, "storage unavailable", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	io.WriteString(w, "ok")
}
