package models

import "time"

// Condition is the refurbishment grade of a unit.
type Condition string

const (
	ConditionLikeNew   Condition = "Like New"
	ConditionExcellent Condition = "Excellent"
	ConditionGood      Condition = "Good"
	ConditionFair      Condition = "Fair"
)

// Valid reports whether c is one of the known grades.
func (c Condition) Valid() bool {
	switch c {
	case ConditionLikeNew, ConditionExcellent, ConditionGood, ConditionFair:
		return true
	}
	return false
}

// Well-known spec keys. Specs may carry additional custom keys.
const (
	SpecProcessor = "processor"
	SpecRAM       = "ram"
	SpecStorage   = "storage"
	SpecScreen    = "screen"
	SpecGraphics  = "graphics"
	SpecBattery   = "battery"
	SpecOS        = "os"
	SpecPorts     = "ports"
	SpecWeight    = "weight"
)

// Specs holds free-text hardware attributes keyed by spec name.
type Specs map[string]string

// Get returns the spec value or an empty string when absent.
func (s Specs) Get(key string) string {
	if s == nil {
		return ""
	}
	return s[key]
}

func (s Specs) Processor() string { return s.Get(SpecProcessor) }
func (s Specs) RAM() string { return s.Get(SpecRAM) }

type IncludedItem struct {
	Name     string `json:"name" yaml:"name" firestore:"name"`
	Icon     string `json:"icon,omitempty" yaml:"icon" firestore:"icon"`
	Included bool   `json:"included" yaml:"included" firestore:"included"`
}

type Warranty struct {
	Duration    string `json:"duration" yaml:"duration" firestore:"duration"`
	Type        string `json:"type" yaml:"type" firestore:"type"`
	Description string `json:"description,omitempty" yaml:"description" firestore:"description"`
}

type Product struct {
	ID            string         `json:"id" yaml:"id"`
	Name          string         `json:"name" yaml:"name"`
	Slug          string         `json:"slug" yaml:"slug"`
	Description   string         `json:"description,omitempty" yaml:"description"`
	BrandID       string         `json:"brandId" yaml:"brandId"`
	BrandName     string         `json:"brandName" yaml:"brandName"`
	CategoryIDs   []string       `json:"categoryIds" yaml:"categoryIds"`
	CategoryNames []string       `json:"categoryNames" yaml:"categoryNames"`
	Price         float64        `json:"price" yaml:"price"`
	OriginalPrice *float64       `json:"originalPrice,omitempty" yaml:"originalPrice"`
	Condition     Condition      `json:"condition" yaml:"condition"`
	Stock         *int           `json:"stock,omitempty" yaml:"stock"`
	IsFeatured    bool           `json:"isFeatured" yaml:"isFeatured"`
	IsActive      bool           `json:"isActive" yaml:"isActive"`
	Images        []string       `json:"images" yaml:"images"`
	YoutubeURL    string         `json:"youtubeUrl,omitempty" yaml:"youtubeUrl"`
	Specs         Specs          `json:"specs" yaml:"specs"`
	IncludedItems []IncludedItem `json:"includedItems,omitempty" yaml:"includedItems"`
	Warranty      *Warranty      `json:"warranty,omitempty" yaml:"warranty"`
	CreatedAt     time.Time      `json:"createdAt" yaml:"createdAt"`
	UpdatedAt     time.Time      `json:"updatedAt" yaml:"updatedAt"`
}

// PrimaryCategoryID returns the first category the product belongs to.
func (p Product) PrimaryCategoryID() string {
	if len(p.CategoryIDs) == 0 {
		return ""
	}
	return p.CategoryIDs[0]
}

// InCategory reports whether the product is listed under categoryID.
func (p Product) InCategory(categoryID string) bool {
	for _, id := range p.CategoryIDs {
		if id == categoryID {
			return true
		}
	}
	return false
}

type Brand struct {
	ID        string    `json:"id" yaml:"id"`
	Name      string    `json:"name" yaml:"name"`
	Logo      string    `json:"logo,omitempty" yaml:"logo"`
	Color     string    `json:"color,omitempty" yaml:"color"`
	IsActive  bool      `json:"isActive" yaml:"isActive"`
	CreatedAt time.Time `json:"createdAt" yaml:"createdAt"`
}

type Category struct {
	ID        string    `json:"id" yaml:"id"`
	Name      string    `json:"name" yaml:"name"`
	Slug      string    `json:"slug" yaml:"slug"`
	Icon      string    `json:"icon,omitempty" yaml:"icon"`
	Color     string    `json:"color,omitempty" yaml:"color"`
	Image     string    `json:"image,omitempty" yaml:"image"`
	Order     int       `json:"order" yaml:"order"`
	IsActive  bool      `json:"isActive" yaml:"isActive"`
	CreatedAt time.Time `json:"createdAt" yaml:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" yaml:"updatedAt"`
}

type Testimonial struct {
	ID        string    `json:"id" yaml:"id"`
	Name      string    `json:"name" yaml:"name"`
	Location  string    `json:"location" yaml:"location"`
	Rating    int       `json:"rating" yaml:"rating"`
	Text      string    `json:"text" yaml:"text"`
	Avatar    string    `json:"avatar,omitempty" yaml:"avatar"`
	ProductID string    `json:"productId,omitempty" yaml:"productId"`
	IsActive  bool      `json:"isActive" yaml:"isActive"`
	CreatedAt time.Time `json:"createdAt" yaml:"createdAt"`
}

type PromoOffer struct {
	ID              string     `json:"id" yaml:"id"`
	Title           string     `json:"title" yaml:"title"`
	Subtitle        string     `json:"subtitle,omitempty" yaml:"subtitle"`
	BackgroundImage string     `json:"backgroundImage" yaml:"backgroundImage"`
	ProductIDs      []string   `json:"productIds" yaml:"productIds"`
	StartDate       *time.Time `json:"startDate,omitempty" yaml:"startDate"`
	EndDate         *time.Time `json:"endDate,omitempty" yaml:"endDate"`
	IsActive        bool       `json:"isActive" yaml:"isActive"`
	CreatedAt       time.Time  `json:"createdAt" yaml:"createdAt"`
}

// Running reports whether now falls inside the offer's optional date window.
func (o PromoOffer) Running(now time.Time) bool {
	if o.StartDate != nil && now.Before(*o.StartDate) {
		return false
	}
	if o.EndDate != nil && now.After(*o.EndDate) {
		return false
	}
	return true
}

// LeadKind distinguishes the two lead-capture forms.
type LeadKind string

const (
	LeadProductInquiry LeadKind = "product-inquiry"
	LeadContact        LeadKind = "contact"
)

const StatusPending = "pending"

type ProductRequest struct {
	ID            string    `json:"id"`
	ProductID     string    `json:"productId"`
	ProductName   string    `json:"productName"`
	ProductSlug   string    `json:"productSlug"`
	CustomerName  string    `json:"customerName"`
	CustomerPhone string    `json:"customerPhone"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"createdAt"`
}

type ContactRequest struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	Subject   string    `json:"subject"`
	Message   string    `json:"message"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}

// Lead is a submitted form awaiting human follow-up. Exactly one payload is set, matching Kind.
type Lead struct {
	Kind    LeadKind
	Inquiry *ProductRequest
	Contact *ContactRequest
}

// ID returns the identifier of whichever payload is set.
func (l Lead) ID() string {
	switch {
	case l.Inquiry != nil:
		return l.Inquiry.ID
	case l.Contact != nil:
		return l.Contact.ID
	}
	return ""
}

type LeadResult struct {
	Success bool   `json:"success"`
	ID      string `json:"id,omitempty"`
	Error   string `json:"error,omitempty"`
}
