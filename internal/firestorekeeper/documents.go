package firestorekeeper

import (
	"time"

	"github.com/MogaPreet/maccindia/internal/models"
	"github.com/spf13/cast"
)

// Document shapes as written by the admin console. Pointer fields distinguish
// an absent value from a zero one.

type productDoc struct {
	Name          string                `firestore:"name"`
	Slug          string                `firestore:"slug"`
	Description   string                `firestore:"description"`
	BrandID       string                `firestore:"brandId"`
	BrandName     string                `firestore:"brandName"`
	CategoryID    string                `firestore:"categoryId"`
	CategoryName  string                `firestore:"categoryName"`
	CategoryIDs   []string              `firestore:"categoryIds"`
	CategoryNames []string              `firestore:"categoryNames"`
	Price         float64               `firestore:"price"`
	OriginalPrice *float64              `firestore:"originalPrice"`
	Condition     string                `firestore:"condition"`
	Stock         *int64                `firestore:"stock"`
	IsFeatured    bool                  `firestore:"isFeatured"`
	IsActive      *bool                 `firestore:"isActive"`
	Images        []string              `firestore:"images"`
	YoutubeURL    string                `firestore:"youtubeUrl"`
	Specs         map[string]any        `firestore:"specs"`
	IncludedItems []models.IncludedItem `firestore:"includedItems"`
	Warranty      *models.Warranty      `firestore:"warranty"`
	CreatedAt     time.Time             `firestore:"createdAt"`
	UpdatedAt     time.Time             `firestore:"updatedAt"`
}

type brandDoc struct {
	Name      string    `firestore:"name"`
	Logo      string    `firestore:"logo"`
	Color     string    `firestore:"color"`
	IsActive  *bool     `firestore:"isActive"`
	CreatedAt time.Time `firestore:"createdAt"`
}

type categoryDoc struct {
	Name      string    `firestore:"name"`
	Slug      string    `firestore:"slug"`
	Icon      string    `firestore:"icon"`
	Color     string    `firestore:"color"`
	Image     string    `firestore:"image"`
	Order     int64     `firestore:"order"`
	IsActive  *bool     `firestore:"isActive"`
	CreatedAt time.Time `firestore:"createdAt"`
	UpdatedAt time.Time `firestore:"updatedAt"`
}

type testimonialDoc struct {
	Name      string    `firestore:"name"`
	Location  string    `firestore:"location"`
	Rating    int64     `firestore:"rating"`
	Text      string    `firestore:"text"`
	Avatar    string    `firestore:"avatar"`
	ProductID string    `firestore:"productId"`
	IsActive  *bool     `firestore:"isActive"`
	CreatedAt time.Time `firestore:"createdAt"`
}

type promoOfferDoc struct {
	Title           string     `firestore:"title"`
	Subtitle        string     `firestore:"subtitle"`
	BackgroundImage string     `firestore:"backgroundImage"`
	ProductIDs      []string   `firestore:"productIds"`
	StartDate       *time.Time `firestore:"startDate"`
	EndDate         *time.Time `firestore:"endDate"`
	IsActive        bool       `firestore:"isActive"`
	CreatedAt       time.Time  `firestore:"createdAt"`
}

func orNow(t, now time.Time) time.Time {
	if t.IsZero() {
		return now
	}
	return t
}

// active treats a missing flag as active.
func active(flag *bool) bool {
	return flag == nil || *flag
}

func decodeProduct(id string, d productDoc, now time.Time) models.Product {
	p := models.Product{
		ID:            id,
		Name:          d.Name,
		Slug:          d.Slug,
		Description:   d.Description,
		BrandID:       d.BrandID,
		BrandName:     d.BrandName,
		CategoryIDs:   d.CategoryIDs,
		CategoryNames: d.CategoryNames,
		Price:         d.Price,
		OriginalPrice: d.OriginalPrice,
		Condition:     models.Condition(d.Condition),
		IsFeatured:    d.IsFeatured,
		IsActive:      active(d.IsActive),
		Images:        d.Images,
		YoutubeURL:    d.YoutubeURL,
		Specs:         decodeSpecs(d.Specs),
		IncludedItems: d.IncludedItems,
		Warranty:      d.Warranty,
		CreatedAt:     orNow(d.CreatedAt, now),
		UpdatedAt:     orNow(d.UpdatedAt, now),
	}
	if p.Slug == "" {
		p.Slug = id
	}
	if p.Condition == "" {
		p.Condition = models.ConditionGood
	}
	if len(p.CategoryIDs) == 0 && d.CategoryID != "" {
		p.CategoryIDs = []string{d.CategoryID}
		if d.CategoryName != "" {
			p.CategoryNames = []string{d.CategoryName}
		}
	}
	if p.Images == nil {
		p.Images = []string{}
	}
	if d.Stock != nil {
		stock := int(*d.Stock)
		p.Stock = &stock
	}
	return p
}

// decodeSpecs flattens a specs map, rendering non-string values as text.
func decodeSpecs(raw map[string]any) models.Specs {
	specs := make(models.Specs, len(raw))
	for key, value := range raw {
		if value == nil {
			continue
		}
		specs[key] = cast.ToString(value)
	}
	return specs
}

func decodeBrand(id string, d brandDoc, now time.Time) models.Brand {
	return models.Brand{
		ID:        id,
		Name:      d.Name,
		Logo:      d.Logo,
		Color:     d.Color,
		IsActive:  active(d.IsActive),
		CreatedAt: orNow(d.CreatedAt, now),
	}
}

func decodeCategory(id string, d categoryDoc, now time.Time) models.Category {
	c := models.Category{
		ID:        id,
		Name:      d.Name,
		Slug:      d.Slug,
		Icon:      d.Icon,
		Color:     d.Color,
		Image:     d.Image,
		Order:     int(d.Order),
		IsActive:  active(d.IsActive),
		CreatedAt: orNow(d.CreatedAt, now),
		UpdatedAt: orNow(d.UpdatedAt, now),
	}
	if c.Slug == "" {
		c.Slug = id
	}
	return c
}

func decodeTestimonial(id string, d testimonialDoc, now time.Time) models.Testimonial {
	t := models.Testimonial{
		ID:        id,
		Name:      d.Name,
		Location:  d.Location,
		Rating:    int(d.Rating),
		Text:      d.Text,
		Avatar:    d.Avatar,
		ProductID: d.ProductID,
		IsActive:  active(d.IsActive),
		CreatedAt: orNow(d.CreatedAt, now),
	}
	if t.Rating == 0 {
		t.Rating = 5
	}
	return t
}

func decodePromoOffer(id string, d promoOfferDoc, now time.Time) models.PromoOffer {
	o := models.PromoOffer{
		ID:              id,
		Title:           d.Title,
		Subtitle:        d.Subtitle,
		BackgroundImage: d.BackgroundImage,
		ProductIDs:      d.ProductIDs,
		StartDate:       d.StartDate,
		EndDate:         d.EndDate,
		IsActive:        d.IsActive,
		CreatedAt:       orNow(d.CreatedAt, now),
	}
	if o.ProductIDs == nil {
		o.ProductIDs = []string{}
	}
	return o
}

// productRequestDoc and contactRequestDoc are the lead payloads; createdAt is
// filled in by the server.
func productRequestDoc(r *models.ProductRequest) map[string]any {
	return map[string]any{
		"productId":     r.ProductID,
		"productName":   r.ProductName,
		"productSlug":   r.ProductSlug,
		"customerName":  r.CustomerName,
		"customerPhone": r.CustomerPhone,
		"status":        r.Status,
	}
}

func contactRequestDoc(r *models.ContactRequest) map[string]any {
	doc := map[string]any{
		"name":    r.Name,
		"email":   r.Email,
		"subject": r.Subject,
		"message": r.Message,
		"status":  r.Status,
	}
	if r.Phone != "" {
		doc["phone"] = r.Phone
	}
	return doc
}
