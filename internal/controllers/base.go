package controllers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/MogaPreet/maccindia/internal/catalog"
	"github.com/MogaPreet/maccindia/internal/content"
	"github.com/MogaPreet/maccindia/internal/leads"
	"github.com/MogaPreet/maccindia/internal/middleware"
	"github.com/MogaPreet/maccindia/internal/models"
	"github.com/go-chi/chi"
	chimw "github.com/go-chi/chi/middleware"
	"go.uber.org/zap"
)

// Storage interface for catalog reads
type Storage interface {
	catalog.Source
	Categories(context.Context) []models.Category
	CategoryBySlug(context.Context, string) (models.Category, error)
	ProductBySlug(context.Context, string) (models.Product, error)
	ProductsByCategory(context.Context, string) []models.Product
	SimilarProducts(context.Context, models.Product) []models.Product
	FeaturedProducts(context.Context, int) []models.Product
	ProductsByIDs(context.Context, []string) []models.Product
	Testimonials(context.Context) []models.Testimonial
	ActivePromoOffer(context.Context, time.Time) (models.PromoOffer, error)
	Ping(context.Context) bool
}

// Leads interface for the lead-capture forms
type Leads interface {
	SubmitInquiry(context.Context, leads.InquiryInput) (models.LeadResult, error)
	SubmitContact(context.Context, leads.ContactInput) (models.LeadResult, error)
}

// Pages interface for the markdown information pages
type Pages interface {
	Page(string) (content.Page, error)
}

// Log interface for logging
type Log interface {
	Info(string, ...zap.Field)
	Warn(string, ...zap.Field)
	Error(string, ...zap.Field)
}

type Deps struct {
	Storage Storage
	Leads   Leads
	Pages   Pages
	// Facets is shared by every listing request so facet lists are rebuilt
	// only when the catalog version changes.
	Facets *catalog.FacetCache
	// LeadLimit guards the lead POST routes. Nil lets every request through.
	LeadLimit func(http.Handler) http.Handler
	BaseURL   string
	// TrustProxy takes the client IP from X-Forwarded-For and X-Real-IP. Leave it
	// off unless a proxy in front of the server overwrites those headers.
	TrustProxy bool
	Clock      func() time.Time
	Log        Log
}

// BaseController struct for handling requests
type BaseController struct {
	storage   Storage
	leads     Leads
	pages     Pages
	facets    *catalog.FacetCache
	leadLimit func(http.Handler) http.Handler
	baseURL    string
	trustProxy bool
	now        func() time.Time
	views      *renderer
	log        Log
}

// NewBaseController creates a new BaseController instance
func NewBaseController(deps Deps) (*BaseController, error) {
	if deps.Storage == nil || deps.Leads == nil || deps.Pages == nil || deps.Log == nil {
		return nil, errors.New("controllers: storage, leads, pages and log are required")
	}
	views, err := newRenderer()
	if err != nil {
		return nil, err
	}

	instance := &BaseController{
		storage:    deps.Storage,
		leads:      deps.Leads,
		pages:      deps.Pages,
		facets:     deps.Facets,
		leadLimit:  deps.LeadLimit,
		baseURL:    deps.BaseURL,
		trustProxy: deps.TrustProxy,
		now:        deps.Clock,
		views:      views,
		log:        deps.Log,
	}
	if instance.facets == nil {
		instance.facets = &catalog.FacetCache{}
	}
	if instance.leadLimit == nil {
		instance.leadLimit = func(next http.Handler) http.Handler { return next }
	}
	if instance.now == nil {
		instance.now = time.Now
	}

	return instance, nil
}

// Route sets up the routes for the BaseController
func (h *BaseController) Route() *chi.Mux {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	if h.trustProxy {
		r.Use(chimw.RealIP)
	}
	r.Use(middleware.RequestLogger(h.log))
	r.Use(chimw.Recoverer)
	r.NotFound(h.notFound)

	r.Get("/", h.home)
	r.Get("/products", h.products)
	r.Get("/product/{slug}", h.product)
	r.Get("/category/{slug}", h.category)
	r.Get("/contact", h.contact)
	r.Get("/sitemap.xml", h.sitemap)
	r.Get("/robots.txt", h.robots)
	r.Get("/healthz", h.healthz)

	r.Group(func(r chi.Router) {
		r.Use(h.leadLimit)
		r.Post("/product/{slug}/inquiry", h.postInquiry)
		r.Post("/contact", h.postContact)
	})

	r.Route("/api/v0", func(r chi.Router) {
		r.Get("/products", h.apiProducts)
		r.Get("/brands", h.apiBrands)
		r.Get("/facets", h.apiFacets)
		r.With(middleware.ArchiveTypeMiddleware).Get("/products/export", h.exportProducts)
		r.With(h.leadLimit).Post("/leads/{kind}", h.postLead)
	})

	r.Get("/{page}", h.contentPage)

	return r
}
