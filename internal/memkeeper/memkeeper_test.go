package memkeeper

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/MogaPreet/maccindia/internal/catalog"
	"github.com/MogaPreet/maccindia/internal/logger"
	"github.com/MogaPreet/maccindia/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuiltInSeed(t *testing.T) {
	kp, err := New("", logger.NewNop())
	require.NoError(t, err)
	ctx := context.Background()

	products, err := kp.Products(ctx)
	require.NoError(t, err)
	assert.Len(t, products, 12)

	for _, p := range products {
		assert.NotEmpty(t, p.Slug, p.ID)
		assert.True(t, p.Condition.Valid(), p.ID)
		assert.NotEqual(t, catalog.FamilyOther, catalog.ClassifyProcessor(p.Specs.Processor()), p.ID)
		assert.NotEmpty(t, catalog.RAMBucket(p.Specs.RAM()), p.ID)
	}

	brands, err := kp.Brands(ctx)
	require.NoError(t, err)
	assert.Len(t, brands, 6)

	categories, err := kp.Categories(ctx)
	require.NoError(t, err)
	assert.Len(t, categories, 6)
}

func TestDecodeSeedDefaults(t *testing.T) {
	seed, err := DecodeSeed(strings.NewReader(`
products:
  - id: plain
    name: Plain Laptop
    price: 1000
categories:
  - id: misc
    name: Misc
`))
	require.NoError(t, err)
	require.Len(t, seed.Products, 1)
	assert.Equal(t, "plain", seed.Products[0].Slug)
	assert.Equal(t, models.ConditionGood, seed.Products[0].Condition)
	assert.Equal(t, "misc", seed.Categories[0].Slug)
}

func TestDecodeSeedRejectsUnknownFields(t *testing.T) {
	_, err := DecodeSeed(strings.NewReader("prodcts: []\n"))
	assert.Error(t, err)
}

func TestSeedFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.yaml")
	require.NoError(t, os.WriteFile(path, []byte("brands:\n  - {id: acer, name: Acer, isActive: true}\n"), 0o600))

	kp, err := New(path, logger.NewNop())
	require.NoError(t, err)
	brands, err := kp.Brands(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Acer", brands[0].Name)

	_, err = New(filepath.Join(t.TempDir(), "missing.yaml"), logger.NewNop())
	assert.Error(t, err)
}

func TestInsertLead(t *testing.T) {
	kp := NewFromSeed(Seed{}, logger.NewNop())

	id, err := kp.InsertLead(context.Background(), models.Lead{
		Kind:    models.LeadProductInquiry,
		Inquiry: &models.ProductRequest{ID: "01HX", ProductID: "dell-xps-15"},
	})
	require.NoError(t, err)
	assert.Equal(t, "01HX", id)
	assert.Len(t, kp.Leads(), 1)

	_, err = kp.InsertLead(context.Background(), models.Lead{Kind: models.LeadContact})
	assert.Error(t, err)
}
