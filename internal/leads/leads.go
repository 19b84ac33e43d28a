// Package leads validates and records product inquiries and contact messages.
package leads

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/MogaPreet/maccindia/internal/models"
	"github.com/microcosm-cc/bluemonday"
	"github.com/oklog/ulid/v2"
)

// ErrInvalidLead wraps every validation failure.
var ErrInvalidLead = errors.New("invalid lead")

var errStoreRequired = errors.New("leads: store is required")

// FieldError names the form field that failed validation.
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *FieldError) Unwrap() error {
	return ErrInvalidLead
}

// Store persists a lead. Write failures are reported through the result, not an error.
type Store interface {
	SubmitLead(context.Context, models.Lead) models.LeadResult
}

type Deps struct {
	Store       Store
	Clock       func() time.Time
	IDGenerator func() string
}

type Service struct {
	store  Store
	policy *bluemonday.Policy
	newID  func() string
	now    func() time.Time
}

func NewService(deps Deps) (*Service, error) {
	if deps.Store == nil {
		return nil, errStoreRequired
	}
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	idGen := deps.IDGenerator
	if idGen == nil {
		idGen = func() string { return ulid.Make().String() }
	}
	return &Service{
		store:  deps.Store,
		policy: bluemonday.StrictPolicy(),
		newID:  idGen,
		now:    func() time.Time { return clock().UTC() },
	}, nil
}

// InquiryInput is the "request a callback" form on a product page.
type InquiryInput struct {
	ProductID     string `json:"productId"`
	ProductName   string `json:"productName"`
	ProductSlug   string `json:"productSlug"`
	CustomerName  string `json:"customerName"`
	CustomerPhone string `json:"customerPhone"`
}

// ContactInput is the general contact form.
type ContactInput struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

// SubmitInquiry validates in and stores it as a pending product request. The
// returned error is non-nil only for invalid input.
func (s *Service) SubmitInquiry(ctx context.Context, in InquiryInput) (models.LeadResult, error) {
	in = InquiryInput{
		ProductID:     s.clean(in.ProductID),
		ProductName:   s.clean(in.ProductName),
		ProductSlug:   s.clean(in.ProductSlug),
		CustomerName:  s.clean(in.CustomerName),
		CustomerPhone: s.clean(in.CustomerPhone),
	}
	if err := firstMissing(
		field{"productId", in.ProductID},
		field{"customerName", in.CustomerName},
		field{"customerPhone", in.CustomerPhone},
	); err != nil {
		return models.LeadResult{}, err
	}

	req := &models.ProductRequest{
		ID:            s.newID(),
		ProductID:     in.ProductID,
		ProductName:   in.ProductName,
		ProductSlug:   in.ProductSlug,
		CustomerName:  in.CustomerName,
		CustomerPhone: in.CustomerPhone,
		Status:        models.StatusPending,
		CreatedAt:     s.now(),
	}
	return s.store.SubmitLead(ctx, models.Lead{Kind: models.LeadProductInquiry, Inquiry: req}), nil
}

// SubmitContact validates in and stores it as a pending contact request. The
// returned error is non-nil only for invalid input.
func (s *Service) SubmitContact(ctx context.Context, in ContactInput) (models.LeadResult, error) {
	in = ContactInput{
		Name:    s.clean(in.Name),
		Email:   s.clean(in.Email),
		Phone:   s.clean(in.Phone),
		Subject: s.clean(in.Subject),
		Message: s.clean(in.Message),
	}
	if err := firstMissing(
		field{"name", in.Name},
		field{"email", in.Email},
		field{"subject", in.Subject},
		field{"message", in.Message},
	); err != nil {
		return models.LeadResult{}, err
	}
	if !strings.Contains(in.Email, "@") {
		return models.LeadResult{}, &FieldError{Field: "email", Message: "must be a valid email address"}
	}

	req := &models.ContactRequest{
		ID:        s.newID(),
		Name:      in.Name,
		Email:     in.Email,
		Phone:     in.Phone,
		Subject:   in.Subject,
		Message:   in.Message,
		Status:    models.StatusPending,
		CreatedAt: s.now(),
	}
	return s.store.SubmitLead(ctx, models.Lead{Kind: models.LeadContact, Contact: req}), nil
}

// clean strips markup and surrounding whitespace from free-text input. The
// sanitiser escapes entities, which are decoded again since output is escaped
// at render time.
func (s *Service) clean(v string) string {
	return strings.TrimSpace(html.UnescapeString(s.policy.Sanitize(strings.TrimSpace(v))))
}

type field struct {
	name  string
	value string
}

func firstMissing(fields ...field) error {
	for _, f := range fields {
		if f.value == "" {
			return &FieldError{Field: f.name, Message: "is required"}
		}
	}
	return nil
}
