// Package firestorekeeper reads the catalog from Cloud Firestore and writes
// leads back to it.
package firestorekeeper

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/MogaPreet/maccindia/internal/models"
	"go.uber.org/zap"
	"google.golang.org/api/iterator"
)

const (
	collProducts        = "products"
	collBrands          = "brands"
	collCategories      = "categories"
	collTestimonials    = "testimonials"
	collPromoOffers     = "promoOffers"
	collProductRequests = "productRequests"
	collContactRequests = "contactRequests"
)

type Log interface {
	Info(string, ...zap.Field)
	Error(string, ...zap.Field)
}

type FirestoreKeeper struct {
	provider *Provider
	log      Log
	now      func() time.Time
}

func New(provider *Provider, log Log) *FirestoreKeeper {
	return &FirestoreKeeper{provider: provider, log: log, now: time.Now}
}

// queryAll runs build against coll and decodes every document through decode.
func queryAll[D any, T any](
	ctx context.Context,
	kp *FirestoreKeeper,
	coll string,
	build func(firestore.Query) firestore.Query,
	decode func(id string, doc D, now time.Time) T,
) ([]T, error) {
	client, err := kp.provider.Client(ctx)
	if err != nil {
		return nil, err
	}

	iter := build(client.Collection(coll).Query).Documents(ctx)
	defer iter.Stop()

	now := kp.now()
	var out []T
	for {
		snap, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, WrapError(coll+".query", err)
		}
		var doc D
		if err := snap.DataTo(&doc); err != nil {
			return nil, fmt.Errorf("firestore: decode %s/%s: %w", coll, snap.Ref.ID, err)
		}
		out = append(out, decode(snap.Ref.ID, doc, now))
	}
	return out, nil
}

func (kp *FirestoreKeeper) Products(ctx context.Context) ([]models.Product, error) {
	return queryAll(ctx, kp, collProducts, func(q firestore.Query) firestore.Query {
		return q.Where("isActive", "==", true).OrderBy("createdAt", firestore.Desc)
	}, decodeProduct)
}

func (kp *FirestoreKeeper) Brands(ctx context.Context) ([]models.Brand, error) {
	return queryAll(ctx, kp, collBrands, func(q firestore.Query) firestore.Query {
		return q.Where("isActive", "==", true)
	}, decodeBrand)
}

func (kp *FirestoreKeeper) Categories(ctx context.Context) ([]models.Category, error) {
	return queryAll(ctx, kp, collCategories, func(q firestore.Query) firestore.Query {
		return q.Where("isActive", "==", true).OrderBy("order", firestore.Asc)
	}, decodeCategory)
}

func (kp *FirestoreKeeper) Testimonials(ctx context.Context) ([]models.Testimonial, error) {
	return queryAll(ctx, kp, collTestimonials, func(q firestore.Query) firestore.Query {
		return q.Where("isActive", "==", true).OrderBy("createdAt", firestore.Desc)
	}, decodeTestimonial)
}

func (kp *FirestoreKeeper) PromoOffers(ctx context.Context) ([]models.PromoOffer, error) {
	return queryAll(ctx, kp, collPromoOffers, func(q firestore.Query) firestore.Query {
		return q.Where("isActive", "==", true).OrderBy("createdAt", firestore.Desc)
	}, decodePromoOffer)
}

// InsertLead stores the lead under its own id with a server-side createdAt.
func (kp *FirestoreKeeper) InsertLead(ctx context.Context, lead models.Lead) (string, error) {
	var (
		coll string
		doc  map[string]any
	)
	switch {
	case lead.Inquiry != nil:
		coll, doc = collProductRequests, productRequestDoc(lead.Inquiry)
	case lead.Contact != nil:
		coll, doc = collContactRequests, contactRequestDoc(lead.Contact)
	default:
		return "", fmt.Errorf("lead %q has no payload", lead.Kind)
	}
	doc["createdAt"] = firestore.ServerTimestamp

	client, err := kp.provider.Client(ctx)
	if err != nil {
		return "", err
	}

	id := lead.ID()
	if _, err := client.Collection(coll).Doc(id).Create(ctx, doc); err != nil {
		return "", WrapError(coll+".create", err)
	}
	kp.log.Info("Lead stored", zap.String("collection", coll), zap.String("id", id))
	return id, nil
}

// Ping reads at most one brand document.
func (kp *FirestoreKeeper) Ping(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	client, err := kp.provider.Client(ctx)
	if err != nil {
		kp.log.Error("Firestore ping failed", zap.Error(err))
		return false
	}
	iter := client.Collection(collBrands).Limit(1).Documents(ctx)
	defer iter.Stop()
	if _, err := iter.Next(); err != nil && !errors.Is(err, iterator.Done) {
		kp.log.Error("Firestore ping failed", zap.Error(WrapError(collBrands+".ping", err)))
		return false
	}
	return true
}

func (kp *FirestoreKeeper) Close() bool {
	if err := kp.provider.Close(); err != nil {
		kp.log.Error("Failed to close Firestore client", zap.Error(err))
		return false
	}
	kp.log.Info("Firestore client closed")
	return true
}
