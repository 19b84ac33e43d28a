package controllers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/MogaPreet/maccindia/internal/leads"
	"github.com/MogaPreet/maccindia/internal/models"
	"github.com/MogaPreet/maccindia/internal/seo"
	"github.com/go-chi/chi"
	"go.uber.org/zap"
)

// maxFormBytes bounds lead form bodies.
const maxFormBytes = 64 << 10

func (h *BaseController) postInquiry(w http.ResponseWriter, r *http.Request) {
	p, err := h.storage.ProductBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		h.notFound(w, r)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	if err := r.ParseForm(); err != nil {
		h.renderProduct(w, r, http.StatusBadRequest, p, inquiryForm{Error: "Invalid form submission."})
		return
	}
	form := inquiryForm{
		CustomerName:  r.PostForm.Get("customerName"),
		CustomerPhone: r.PostForm.Get("customerPhone"),
	}

	result, err := h.leads.SubmitInquiry(r.Context(), leads.InquiryInput{
		ProductID:     p.ID,
		ProductName:   p.Name,
		ProductSlug:   p.Slug,
		CustomerName:  form.CustomerName,
		CustomerPhone: form.CustomerPhone,
	})
	if err != nil {
		form.Error = "Please enter your name and phone number."
		h.renderProduct(w, r, http.StatusBadRequest, p, form)
		return
	}
	if !result.Success {
		form.Error = result.Error
		h.renderProduct(w, r, http.StatusOK, p, form)
		return
	}

	h.log.Info("Product inquiry received", zap.String("id", result.ID), zap.String("product", p.ID))
	h.renderProduct(w, r, http.StatusOK, p, inquiryForm{Success: true})
}

// contactForm is the contact page form, echoed back on failure.
type contactForm struct {
	leads.ContactInput
	Error   string
	Success bool
}

func (h *BaseController) renderContact(w http.ResponseWriter, status int, form contactForm) {
	meta := seo.NewMeta(h.baseURL, "/contact", "Contact Us",
		"Get in touch with MACC India for refurbished laptops, bulk orders and rentals.")
	h.render(w, status, "contact", meta, form)
}

func (h *BaseController) contact(w http.ResponseWriter, r *http.Request) {
	h.renderContact(w, http.StatusOK, contactForm{})
}

func (h *BaseController) postContact(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	if err := r.ParseForm(); err != nil {
		h.renderContact(w, http.StatusBadRequest, contactForm{Error: "Invalid form submission."})
		return
	}
	form := contactForm{ContactInput: leads.ContactInput{
		Name:    r.PostForm.Get("name"),
		Email:   r.PostForm.Get("email"),
		Phone:   r.PostForm.Get("phone"),
		Subject: r.PostForm.Get("subject"),
		Message: r.PostForm.Get("message"),
	}}

	result, err := h.leads.SubmitContact(r.Context(), form.ContactInput)
	if err != nil {
		form.Error = fieldMessage(err)
		h.renderContact(w, http.StatusBadRequest, form)
		return
	}
	if !result.Success {
		form.Error = result.Error
		h.renderContact(w, http.StatusOK, form)
		return
	}

	h.log.Info("Contact request received", zap.String("id", result.ID))
	h.renderContact(w, http.StatusOK, contactForm{Success: true})
}

func fieldMessage(err error) string {
	var fe *leads.FieldError
	if errors.As(err, &fe) {
		return "Please check the " + fe.Field + " field: it " + fe.Message + "."
	}
	return "Please fill in all required fields."
}

// postLead accepts either lead form as JSON.
func (h *BaseController) postLead(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxFormBytes))

	var (
		result models.LeadResult
		err    error
	)
	switch models.LeadKind(chi.URLParam(r, "kind")) {
	case models.LeadProductInquiry:
		var in leads.InquiryInput
		if err := dec.Decode(&in); err != nil {
			h.writeJSON(w, http.StatusBadRequest, models.LeadResult{Error: "invalid JSON body"})
			return
		}
		result, err = h.leads.SubmitInquiry(r.Context(), in)
	case models.LeadContact:
		var in leads.ContactInput
		if err := dec.Decode(&in); err != nil {
			h.writeJSON(w, http.StatusBadRequest, models.LeadResult{Error: "invalid JSON body"})
			return
		}
		result, err = h.leads.SubmitContact(r.Context(), in)
	default:
		h.notFound(w, r)
		return
	}

	switch {
	case err != nil:
		h.writeJSON(w, http.StatusBadRequest, models.LeadResult{Error: err.Error()})
	case !result.Success:
		h.writeJSON(w, http.StatusServiceUnavailable, result)
	default:
		h.log.Info("Lead received", zap.String("kind", chi.URLParam(r, "kind")), zap.String("id", result.ID))
		h.writeJSON(w, http.StatusCreated, result)
	}
}
