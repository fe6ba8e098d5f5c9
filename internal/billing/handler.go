package billing

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/suenos-shipping/console/internal/domain"
	"github.com/suenos-shipping/console/internal/pkg/httputil"
)

// Handler handles HTTP requests for invoices.
type Handler struct {
	service   *Service
	validator *validator.Validate
}

// NewHandler creates a new billing handler.
func NewHandler(service *Service) *Handler {
	return &Handler{
		service:   service,
		validator: validator.New(),
	}
}

// RegisterRoutes registers billing routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/customers/{customerID}/invoices", func(r chi.Router) {
		r.Get("/", h.ListByCustomer)
		r.Post("/", h.Create)
	})
	r.Post("/invoices/{invoiceID}/approve", h.Approve)
}

// CreateRequest is the body for POST /customers/{customerID}/invoices.
type CreateRequest struct {
	Tracking    string `json:"tracking" validate:"max=64"`
	Kind        string `json:"kind" validate:"required,oneof=bill receipt"`
	AmountCents int64  `json:"amount_cents" validate:"required,min=0"`
	Currency    string `json:"currency" validate:"omitempty,len=3"`
}

// Create handles POST /customers/{customerID}/invoices.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid json")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httputil.ValidationError(w, err)
		return
	}

	invoice, err := h.service.Create(r.Context(),
		chi.URLParam(r, "customerID"), req.Tracking,
		domain.InvoiceKind(req.Kind), req.AmountCents, req.Currency,
	)
	if err != nil {
		httputil.HandleError(r.Context(), w, err,
			httputil.ErrorMapping{Err: ErrInvalidKind, Status: http.StatusBadRequest, Message: "invalid invoice kind"},
		)
		return
	}

	httputil.JSON(w, http.StatusCreated, invoice)
}

// ListByCustomer handles GET /customers/{customerID}/invoices.
func (h *Handler) ListByCustomer(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.ListByUser(r.Context(), chi.URLParam(r, "customerID"))
	if err != nil {
		httputil.HandleError(r.Context(), w, err)
		return
	}
	httputil.JSON(w, http.StatusOK, map[string]any{"invoices": list})
}

// Approve handles POST /invoices/{invoiceID}/approve.
func (h *Handler) Approve(w http.ResponseWriter, r *http.Request) {
	invoice, err := h.service.Approve(r.Context(), chi.URLParam(r, "invoiceID"))
	if err != nil {
		httputil.HandleError(r.Context(), w, err,
			httputil.ErrorMapping{Err: ErrNotFound, Status: http.StatusNotFound, Message: "invoice not found"},
			httputil.ErrorMapping{Err: ErrAlreadyApproved, Status: http.StatusConflict, Message: "invoice already approved"},
		)
		return
	}
	httputil.JSON(w, http.StatusOK, invoice)
}
