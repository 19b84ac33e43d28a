package catalog

import (
	"context"
	"errors"

	"github.com/MogaPreet/maccindia/internal/models"
	"golang.org/x/sync/errgroup"
)

// ErrNotReady is returned for filter input received before the collections are loaded.
var ErrNotReady = errors.New("catalog is still loading")

// Source supplies the collections a listing needs. Implementations substitute an
// empty collection for a failed fetch, so these calls do not fail.
type Source interface {
	FetchAllProducts(ctx context.Context) Collection
	FetchAllBrands(ctx context.Context) []models.Brand
}

// Session is one browsing session over a listing. It is in the loading state until
// Load completes and holds its own copy of the fetched collections.
type Session struct {
	source Source
	facets *FacetCache
	view   *View
}

// NewSession creates a session in the loading state. facets may be shared between
// sessions; a nil cache gets a private one.
func NewSession(source Source, facets *FacetCache) *Session {
	if facets == nil {
		facets = &FacetCache{}
	}
	return &Session{source: source, facets: facets}
}

func (s *Session) Loading() bool {
	return s.view == nil
}

// Load fetches products and brands concurrently, one round trip each.
func (s *Session) Load(ctx context.Context) error {
	var (
		products Collection
		brands   []models.Brand
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		products = s.source.FetchAllProducts(gctx)
		return nil
	})
	g.Go(func() error {
		brands = s.source.FetchAllBrands(gctx)
		return nil
	})
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return err
	}

	view, err := NewView(products, brands, s.facets.Get(products))
	if err != nil {
		return err
	}
	s.view = &view
	return nil
}

// View returns the current browse state.
func (s *Session) View() (View, error) {
	if s.view == nil {
		return View{}, ErrNotReady
	}
	return *s.view, nil
}

// Apply runs a transition against the current view and stores the result.
func (s *Session) Apply(transition func(View) View) (View, error) {
	if s.view == nil {
		return View{}, ErrNotReady
	}
	next := transition(*s.view)
	s.view = &next
	return next, nil
}
