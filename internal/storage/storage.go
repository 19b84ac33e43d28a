package storage

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/MogaPreet/maccindia/internal/catalog"
	"github.com/MogaPreet/maccindia/internal/models"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ErrNotFound is returned by lookups for a missing or inactive record.
var ErrNotFound = errors.New("not found")

const (
	DefaultTTL = 5 * time.Minute

	FeaturedLimit = 4
	SimilarLimit  = 4
)

// User-facing messages for a failed lead write.
const (
	InquiryFailedMessage = "Failed to submit request. Please try again."
	ContactFailedMessage = "Failed to send message. Please try again."
)

type Log interface {
	Info(string, ...zap.Field)
	Warn(string, ...zap.Field)
	Error(string, ...zap.Field)
}

// Keeper is a backing store for the catalog and the lead inbox.
type Keeper interface {
	Products(context.Context) ([]models.Product, error)
	Brands(context.Context) ([]models.Brand, error)
	Categories(context.Context) ([]models.Category, error)
	Testimonials(context.Context) ([]models.Testimonial, error)
	PromoOffers(context.Context) ([]models.PromoOffer, error)
	InsertLead(context.Context, models.Lead) (string, error)
	Ping(context.Context) bool
	Close() bool
}

type snapshot struct {
	products     []models.Product
	brands       []models.Brand
	categories   []models.Category
	testimonials []models.Testimonial
	offers       []models.PromoOffer
}

// Storage serves read-mostly catalog data from a snapshot of the keeper that is
// reloaded once it is older than the configured TTL.
type Storage struct {
	keeper Keeper
	log    Log
	ttl    time.Duration
	now    func() time.Time

	refreshMx sync.Mutex

	mx       sync.RWMutex
	snap     snapshot
	version  uint64
	loadedAt time.Time
	loaded   bool
}

// NewStorage creates a Storage over keeper. A non-positive ttl falls back to DefaultTTL.
func NewStorage(keeper Keeper, log Log, ttl time.Duration) *Storage {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Storage{
		keeper: keeper,
		log:    log,
		ttl:    ttl,
		now:    time.Now,
	}
}

// Refresh reloads every collection concurrently. A failed fetch is logged and
// its collection is replaced with an empty one.
func (s *Storage) Refresh(ctx context.Context) error {
	s.refreshMx.Lock()
	defer s.refreshMx.Unlock()
	return s.refresh(ctx)
}

func (s *Storage) refresh(ctx context.Context) error {
	var next snapshot
	var g errgroup.Group

	g.Go(func() error {
		products, err := s.keeper.Products(ctx)
		if err != nil {
			s.log.Error("Error fetching products", zap.Error(err))
			return nil
		}
		next.products = activeProducts(products, s.log)
		return nil
	})
	g.Go(func() error {
		brands, err := s.keeper.Brands(ctx)
		if err != nil {
			s.log.Error("Error fetching brands", zap.Error(err))
			return nil
		}
		next.brands = activeBrands(brands)
		return nil
	})
	g.Go(func() error {
		categories, err := s.keeper.Categories(ctx)
		if err != nil {
			s.log.Error("Error fetching categories", zap.Error(err))
			return nil
		}
		next.categories = activeCategories(categories)
		return nil
	})
	g.Go(func() error {
		testimonials, err := s.keeper.Testimonials(ctx)
		if err != nil {
			s.log.Error("Error fetching testimonials", zap.Error(err))
			return nil
		}
		next.testimonials = activeTestimonials(testimonials)
		return nil
	})
	g.Go(func() error {
		offers, err := s.keeper.PromoOffers(ctx)
		if err != nil {
			s.log.Error("Error fetching promo offers", zap.Error(err))
			return nil
		}
		next.offers = offers
		return nil
	})
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return err
	}

	s.mx.Lock()
	s.snap = next
	s.version++
	s.loadedAt = s.now()
	s.loaded = true
	s.mx.Unlock()

	s.log.Info("Catalog snapshot refreshed",
		zap.Int("products", len(next.products)),
		zap.Int("brands", len(next.brands)),
		zap.Int("categories", len(next.categories)))
	return nil
}

// current returns the snapshot, reloading it first when it is missing or stale.
func (s *Storage) current(ctx context.Context) (snapshot, uint64) {
	if snap, version, ok := s.fresh(); ok {
		return snap, version
	}

	s.refreshMx.Lock()
	if _, _, ok := s.fresh(); !ok {
		if err := s.refresh(ctx); err != nil {
			s.log.Warn("Catalog refresh interrupted", zap.Error(err))
		}
	}
	s.refreshMx.Unlock()

	s.mx.RLock()
	defer s.mx.RUnlock()
	return s.snap, s.version
}

func (s *Storage) fresh() (snapshot, uint64, bool) {
	s.mx.RLock()
	defer s.mx.RUnlock()
	if !s.loaded || s.now().Sub(s.loadedAt) >= s.ttl {
		return snapshot{}, 0, false
	}
	return s.snap, s.version, true
}

// FetchAllProducts returns every active product, newest first. The returned
// slice is the caller's own copy.
func (s *Storage) FetchAllProducts(ctx context.Context) catalog.Collection {
	snap, version := s.current(ctx)
	return catalog.Collection{
		Version:  version,
		Products: append([]models.Product(nil), snap.products...),
	}
}

// FetchAllBrands returns every active brand.
func (s *Storage) FetchAllBrands(ctx context.Context) []models.Brand {
	snap, _ := s.current(ctx)
	return append([]models.Brand(nil), snap.brands...)
}

// Categories returns the active categories in display order.
func (s *Storage) Categories(ctx context.Context) []models.Category {
	snap, _ := s.current(ctx)
	return append([]models.Category(nil), snap.categories...)
}

func (s *Storage) CategoryBySlug(ctx context.Context, slug string) (models.Category, error) {
	snap, _ := s.current(ctx)
	for _, c := range snap.categories {
		if c.Slug == slug {
			return c, nil
		}
	}
	return models.Category{}, ErrNotFound
}

func (s *Storage) ProductBySlug(ctx context.Context, slug string) (models.Product, error) {
	snap, _ := s.current(ctx)
	for _, p := range snap.products {
		if p.Slug == slug {
			return p, nil
		}
	}
	return models.Product{}, ErrNotFound
}

func (s *Storage) ProductsByCategory(ctx context.Context, categoryID string) []models.Product {
	snap, _ := s.current(ctx)
	var out []models.Product
	for _, p := range snap.products {
		if p.InCategory(categoryID) {
			out = append(out, p)
		}
	}
	return out
}

// SimilarProducts returns up to SimilarLimit other products from the product's
// first category.
func (s *Storage) SimilarProducts(ctx context.Context, product models.Product) []models.Product {
	categoryID := product.PrimaryCategoryID()
	if categoryID == "" {
		return nil
	}
	var out []models.Product
	for _, p := range s.ProductsByCategory(ctx, categoryID) {
		if p.ID == product.ID {
			continue
		}
		out = append(out, p)
		if len(out) == SimilarLimit {
			break
		}
	}
	return out
}

// FeaturedProducts returns the newest featured products, at most limit of them.
func (s *Storage) FeaturedProducts(ctx context.Context, limit int) []models.Product {
	snap, _ := s.current(ctx)
	var out []models.Product
	for _, p := range snap.products {
		if len(out) == limit {
			break
		}
		if p.IsFeatured {
			out = append(out, p)
		}
	}
	return out
}

// ProductsByIDs returns the products in ids order, skipping unknown ids.
func (s *Storage) ProductsByIDs(ctx context.Context, ids []string) []models.Product {
	if len(ids) == 0 {
		return nil
	}
	snap, _ := s.current(ctx)
	byID := make(map[string]models.Product, len(snap.products))
	for _, p := range snap.products {
		byID[p.ID] = p
	}
	var out []models.Product
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			out = append(out, p)
		}
	}
	return out
}

func (s *Storage) Testimonials(ctx context.Context) []models.Testimonial {
	snap, _ := s.current(ctx)
	return append([]models.Testimonial(nil), snap.testimonials...)
}

// ActivePromoOffer returns the most recently created active offer if now falls
// inside its date window.
func (s *Storage) ActivePromoOffer(ctx context.Context, now time.Time) (models.PromoOffer, error) {
	snap, _ := s.current(ctx)
	var latest *models.PromoOffer
	for i := range snap.offers {
		o := &snap.offers[i]
		if !o.IsActive {
			continue
		}
		if latest == nil || o.CreatedAt.After(latest.CreatedAt) {
			latest = o
		}
	}
	if latest == nil || !latest.Running(now) {
		return models.PromoOffer{}, ErrNotFound
	}
	return *latest, nil
}

// SubmitLead appends the lead to the keeper's inbox. It does not retry.
func (s *Storage) SubmitLead(ctx context.Context, lead models.Lead) models.LeadResult {
	id, err := s.keeper.InsertLead(ctx, lead)
	if err != nil {
		s.log.Error("Error submitting lead", zap.String("kind", string(lead.Kind)), zap.Error(err))
		return models.LeadResult{Success: false, Error: failureMessage(lead.Kind)}
	}
	return models.LeadResult{Success: true, ID: id}
}

func failureMessage(kind models.LeadKind) string {
	if kind == models.LeadContact {
		return ContactFailedMessage
	}
	return InquiryFailedMessage
}

func (s *Storage) Ping(ctx context.Context) bool {
	return s.keeper.Ping(ctx)
}

func (s *Storage) Close() bool {
	return s.keeper.Close()
}

func activeProducts(products []models.Product, log Log) []models.Product {
	out := make([]models.Product, 0, len(products))
	for _, p := range products {
		if !p.IsActive {
			continue
		}
		if p.OriginalPrice != nil && *p.OriginalPrice < p.Price {
			log.Warn("Original price below selling price",
				zap.String("product", p.ID),
				zap.Float64("price", p.Price),
				zap.Float64("originalPrice", *p.OriginalPrice))
		}
		out = append(out, p)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

func activeBrands(brands []models.Brand) []models.Brand {
	out := make([]models.Brand, 0, len(brands))
	for _, b := range brands {
		if b.IsActive {
			out = append(out, b)
		}
	}
	return out
}

func activeCategories(categories []models.Category) []models.Category {
	out := make([]models.Category, 0, len(categories))
	for _, c := range categories {
		if c.IsActive {
			out = append(out, c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Order < out[j].Order
	})
	return out
}

func activeTestimonials(testimonials []models.Testimonial) []models.Testimonial {
	out := make([]models.Testimonial, 0, len(testimonials))
	for _, t := range testimonials {
		if t.IsActive {
			out = append(out, t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}
