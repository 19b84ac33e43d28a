// Package memkeeper keeps the catalog in memory, loaded from a YAML seed.
package memkeeper

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/MogaPreet/maccindia/internal/models"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

//go:embed seed.yaml
var defaultSeed []byte

type Log interface {
	Info(string, ...zap.Field)
}

// Seed is the on-disk catalog layout.
type Seed struct {
	Brands       []models.Brand       `yaml:"brands"`
	Categories   []models.Category    `yaml:"categories"`
	Products     []models.Product     `yaml:"products"`
	Testimonials []models.Testimonial `yaml:"testimonials"`
	PromoOffers  []models.PromoOffer  `yaml:"promoOffers"`
}

// DecodeSeed parses a YAML catalog. Products without a slug get their id.
func DecodeSeed(r io.Reader) (Seed, error) {
	var seed Seed
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&seed); err != nil && err != io.EOF {
		return Seed{}, fmt.Errorf("decode seed: %w", err)
	}
	for i := range seed.Products {
		p := &seed.Products[i]
		if p.Slug == "" {
			p.Slug = p.ID
		}
		if p.Condition == "" {
			p.Condition = models.ConditionGood
		}
	}
	for i := range seed.Categories {
		if seed.Categories[i].Slug == "" {
			seed.Categories[i].Slug = seed.Categories[i].ID
		}
	}
	return seed, nil
}

type MemKeeper struct {
	mx    sync.RWMutex
	seed  Seed
	leads []models.Lead
	log   Log
}

// New creates a keeper over the catalog in path, or over the built-in catalog
// when path is empty.
func New(path string, log Log) (*MemKeeper, error) {
	data := defaultSeed
	if path != "" {
		var err error
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read seed file: %w", err)
		}
	}

	seed, err := DecodeSeed(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	log.Info("Seed catalog loaded",
		zap.String("source", sourceName(path)),
		zap.Int("products", len(seed.Products)))
	return NewFromSeed(seed, log), nil
}

func NewFromSeed(seed Seed, log Log) *MemKeeper {
	return &MemKeeper{seed: seed, log: log}
}

func sourceName(path string) string {
	if path == "" {
		return "built-in"
	}
	return path
}

func (kp *MemKeeper) Products(ctx context.Context) ([]models.Product, error) {
	kp.mx.RLock()
	defer kp.mx.RUnlock()
	return append([]models.Product(nil), kp.seed.Products...), ctx.Err()
}

func (kp *MemKeeper) Brands(ctx context.Context) ([]models.Brand, error) {
	kp.mx.RLock()
	defer kp.mx.RUnlock()
	return append([]models.Brand(nil), kp.seed.Brands...), ctx.Err()
}

func (kp *MemKeeper) Categories(ctx context.Context) ([]models.Category, error) {
	kp.mx.RLock()
	defer kp.mx.RUnlock()
	return append([]models.Category(nil), kp.seed.Categories...), ctx.Err()
}

func (kp *MemKeeper) Testimonials(ctx context.Context) ([]models.Testimonial, error) {
	kp.mx.RLock()
	defer kp.mx.RUnlock()
	return append([]models.Testimonial(nil), kp.seed.Testimonials...), ctx.Err()
}

func (kp *MemKeeper) PromoOffers(ctx context.Context) ([]models.PromoOffer, error) {
	kp.mx.RLock()
	defer kp.mx.RUnlock()
	return append([]models.PromoOffer(nil), kp.seed.PromoOffers...), ctx.Err()
}

// InsertLead appends the lead to the in-memory inbox.
func (kp *MemKeeper) InsertLead(ctx context.Context, lead models.Lead) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	id := lead.ID()
	if id == "" {
		return "", fmt.Errorf("lead %q has no id", lead.Kind)
	}
	kp.mx.Lock()
	kp.leads = append(kp.leads, lead)
	kp.mx.Unlock()

	kp.log.Info("Lead stored", zap.String("kind", string(lead.Kind)), zap.String("id", id))
	return id, nil
}

// Leads returns the stored leads in submission order.
func (kp *MemKeeper) Leads() []models.Lead {
	kp.mx.RLock()
	defer kp.mx.RUnlock()
	return append([]models.Lead(nil), kp.leads...)
}

func (kp *MemKeeper) Ping(context.Context) bool {
	return true
}

func (kp *MemKeeper) Close() bool {
	kp.log.Info("Seed catalog released")
	return true
}
