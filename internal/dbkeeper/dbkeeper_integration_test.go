//go:build integration

package dbkeeper

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/MogaPreet/maccindia/internal/logger"
	"github.com/MogaPreet/maccindia/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Run with: DATABASE_URI=postgres://... go test -tags integration ./internal/dbkeeper/
func newIntegrationKeeper(t *testing.T) *DBKeeper {
	t.Helper()
	dsn := os.Getenv("DATABASE_URI")
	if dsn == "" {
		t.Skip("DATABASE_URI not set")
	}
	kp, err := NewDBKeeper(context.Background(), func() string { return dsn }, logger.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { kp.Close() })
	return kp
}

func TestCatalogRoundTrip(t *testing.T) {
	kp := newIntegrationKeeper(t)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	original := 145000.0
	stock := 3
	created := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)
	err := kp.UpsertCatalog(ctx,
		[]models.Brand{{ID: "it-dell", Name: "Dell", IsActive: true}},
		[]models.Category{{ID: "it-office", Name: "Office", Slug: "it-office", Order: 1, IsActive: true}},
		[]models.Product{{
			ID:            "it-xps",
			Name:          "Dell XPS 15",
			Slug:          "it-xps",
			BrandID:       "it-dell",
			BrandName:     "Dell",
			CategoryIDs:   []string{"it-office"},
			Price:         95000,
			OriginalPrice: &original,
			Condition:     models.ConditionLikeNew,
			Stock:         &stock,
			IsActive:      true,
			Specs:         models.Specs{models.SpecProcessor: "Intel Core i7-12700H", models.SpecRAM: "16GB DDR5"},
			Warranty:      &models.Warranty{Duration: "6 Months", Type: "Seller"},
			CreatedAt:     created,
			UpdatedAt:     created,
		}},
	)
	require.NoError(t, err)

	products, err := kp.Products(ctx)
	require.NoError(t, err)

	var got *models.Product
	for i := range products {
		if products[i].ID == "it-xps" {
			got = &products[i]
		}
	}
	require.NotNil(t, got)
	assert.Equal(t, "16GB DDR5", got.Specs.RAM())
	require.NotNil(t, got.OriginalPrice)
	assert.Equal(t, original, *got.OriginalPrice)
	require.NotNil(t, got.Warranty)
	assert.Equal(t, "6 Months", got.Warranty.Duration)

	id, err := kp.InsertLead(ctx, models.Lead{
		Kind: models.LeadContact,
		Contact: &models.ContactRequest{
			ID: "it-" + time.Now().Format("150405.000000"), Name: "Asha", Email: "a@b.c",
			Subject: "Hi", Message: "Hello", Status: models.StatusPending, CreatedAt: time.Now(),
		},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	assert.True(t, kp.Ping(ctx))
}
