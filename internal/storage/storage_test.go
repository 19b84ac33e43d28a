package storage

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/MogaPreet/maccindia/internal/logger"
	"github.com/MogaPreet/maccindia/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeKeeper struct {
	mx sync.Mutex

	products   []models.Product
	brands     []models.Brand
	categories []models.Category
	offers     []models.PromoOffer

	productsErr error
	leadErr     error
	calls       int
	leads       []models.Lead
}

func (k *fakeKeeper) Products(context.Context) ([]models.Product, error) {
	k.mx.Lock()
	defer k.mx.Unlock()
	k.calls++
	if k.productsErr != nil {
		return nil, k.productsErr
	}
	return k.products, nil
}

func (k *fakeKeeper) Brands(context.Context) ([]models.Brand, error) { return k.brands, nil }

func (k *fakeKeeper) Categories(context.Context) ([]models.Category, error) {
	return k.categories, nil
}

func (k *fakeKeeper) Testimonials(context.Context) ([]models.Testimonial, error) {
	return nil, errors.New("collection missing")
}

func (k *fakeKeeper) PromoOffers(context.Context) ([]models.PromoOffer, error) { return k.offers, nil }

func (k *fakeKeeper) InsertLead(_ context.Context, lead models.Lead) (string, error) {
	k.mx.Lock()
	defer k.mx.Unlock()
	if k.leadErr != nil {
		return "", k.leadErr
	}
	k.leads = append(k.leads, lead)
	return lead.ID(), nil
}

func (k *fakeKeeper) Ping(context.Context) bool { return true }
func (k *fakeKeeper) Close() bool { return true }

func day(d int) time.Time {
	return time.Date(2025, 1, d, 0, 0, 0, 0, time.UTC)
}

func newKeeper() *fakeKeeper {
	return &fakeKeeper{
		products: []models.Product{
			{ID: "old", Slug: "old", IsActive: true, CategoryIDs: []string{"office"}, CreatedAt: day(1)},
			{ID: "hidden", Slug: "hidden", IsActive: false, CategoryIDs: []string{"office"}, CreatedAt: day(5)},
			{ID: "new", Slug: "new", IsActive: true, IsFeatured: true, CategoryIDs: []string{"office"}, CreatedAt: day(3)},
			{ID: "mid", Slug: "mid", IsActive: true, IsFeatured: true, CategoryIDs: []string{"gaming", "office"}, CreatedAt: day(2)},
		},
		brands: []models.Brand{
			{ID: "apple", Name: "Apple", IsActive: true},
			{ID: "gone", Name: "Gone", IsActive: false},
		},
		categories: []models.Category{
			{ID: "gaming", Slug: "gaming", Order: 2, IsActive: true},
			{ID: "office", Slug: "office", Order: 1, IsActive: true},
		},
	}
}

func newTestStorage(k Keeper) *Storage {
	return NewStorage(k, logger.NewNop(), time.Minute)
}

func ids(products []models.Product) []string {
	out := make([]string, 0, len(products))
	for _, p := range products {
		out = append(out, p.ID)
	}
	return out
}

func TestFetchAllProductsActiveNewestFirst(t *testing.T) {
	s := newTestStorage(newKeeper())

	c := s.FetchAllProducts(context.Background())
	assert.Equal(t, []string{"new", "mid", "old"}, ids(c.Products))
	assert.EqualValues(t, 1, c.Version)

	brands := s.FetchAllBrands(context.Background())
	require.Len(t, brands, 1)
	assert.Equal(t, "Apple", brands[0].Name)
}

func TestSnapshotCachedUntilTTL(t *testing.T) {
	k := newKeeper()
	s := newTestStorage(k)
	now := day(10)
	s.now = func() time.Time { return now }

	first := s.FetchAllProducts(context.Background())
	second := s.FetchAllProducts(context.Background())
	assert.Equal(t, 1, k.calls)
	assert.Equal(t, first.Version, second.Version)

	now = now.Add(2 * time.Minute)
	third := s.FetchAllProducts(context.Background())
	assert.Equal(t, 2, k.calls)
	assert.Greater(t, third.Version, second.Version)
}

func TestFetchFailureYieldsEmptyCollection(t *testing.T) {
	k := newKeeper()
	k.productsErr = errors.New("backend unavailable")
	s := newTestStorage(k)

	c := s.FetchAllProducts(context.Background())
	assert.Empty(t, c.Products)
	// other collections are unaffected
	assert.Len(t, s.Categories(context.Background()), 2)
	assert.Empty(t, s.Testimonials(context.Background()))
}

func TestCollectionIsCallersCopy(t *testing.T) {
	s := newTestStorage(newKeeper())

	c := s.FetchAllProducts(context.Background())
	c.Products[0].Name = "mutated"

	again := s.FetchAllProducts(context.Background())
	assert.NotEqual(t, "mutated", again.Products[0].Name)
}

func TestLookups(t *testing.T) {
	s := newTestStorage(newKeeper())
	ctx := context.Background()

	cats := s.Categories(ctx)
	assert.Equal(t, "office", cats[0].ID)

	_, err := s.CategoryBySlug(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.ProductBySlug(ctx, "hidden")
	assert.ErrorIs(t, err, ErrNotFound)

	p, err := s.ProductBySlug(ctx, "old")
	require.NoError(t, err)
	assert.Equal(t, []string{"new", "mid"}, ids(s.SimilarProducts(ctx, p)))

	assert.Equal(t, []string{"new", "mid"}, ids(s.FeaturedProducts(ctx, FeaturedLimit)))
	assert.Equal(t, []string{"new"}, ids(s.FeaturedProducts(ctx, 1)))
	assert.Equal(t, []string{"mid"}, ids(s.ProductsByCategory(ctx, "gaming")))
	assert.Equal(t, []string{"old", "new"}, ids(s.ProductsByIDs(ctx, []string{"old", "nope", "new"})))
}

func TestActivePromoOffer(t *testing.T) {
	k := newKeeper()
	end := day(20)
	k.offers = []models.PromoOffer{
		{ID: "older", IsActive: true, CreatedAt: day(1)},
		{ID: "latest", IsActive: true, EndDate: &end, CreatedAt: day(2)},
		{ID: "off", IsActive: false, CreatedAt: day(3)},
	}
	s := newTestStorage(k)

	offer, err := s.ActivePromoOffer(context.Background(), day(15))
	require.NoError(t, err)
	assert.Equal(t, "latest", offer.ID)

	_, err = s.ActivePromoOffer(context.Background(), day(25))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSubmitLead(t *testing.T) {
	k := newKeeper()
	s := newTestStorage(k)
	lead := models.Lead{
		Kind:    models.LeadContact,
		Contact: &models.ContactRequest{ID: "01J", Name: "Asha"},
	}

	res := s.SubmitLead(context.Background(), lead)
	assert.Equal(t, models.LeadResult{Success: true, ID: "01J"}, res)
	assert.Len(t, k.leads, 1)

	k.leadErr = errors.New("write rejected")
	res = s.SubmitLead(context.Background(), lead)
	assert.False(t, res.Success)
	assert.Equal(t, ContactFailedMessage, res.Error)

	res = s.SubmitLead(context.Background(), models.Lead{Kind: models.LeadProductInquiry, Inquiry: &models.ProductRequest{}})
	assert.Equal(t, InquiryFailedMessage, res.Error)
}
