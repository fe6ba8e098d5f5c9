package shipments

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/suenos-shipping/console/internal/domain"
	"github.com/suenos-shipping/console/internal/pkg/httputil"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Handler handles HTTP requests for shipments.
type Handler struct {
	service   *Service
	validator *validator.Validate
	titler    cases.Caser
}

// NewHandler creates a new shipments handler.
func NewHandler(service *Service) *Handler {
	return &Handler{
		service:   service,
		validator: validator.New(),
		titler:    cases.Title(language.English),
	}
}

// RegisterRoutes registers shipment routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/customers/{customerID}/shipments", func(r chi.Router) {
		r.Get("/", h.ListByCustomer)
		r.Post("/", h.Create)
	})
	r.Patch("/shipments/{shipmentID}/status", h.UpdateStatus)
}

// ShipmentResponse is a shipment plus its human-readable status label.
type ShipmentResponse struct {
	*domain.Shipment
	StatusLabel string `json:"status_label"`
}

func (h *Handler) toResponse(s *domain.Shipment) ShipmentResponse {
	return ShipmentResponse{
		Shipment:    s,
		StatusLabel: h.titler.String(string(s.Status)),
	}
}

// CreateRequest is the body for POST /customers/{customerID}/shipments.
type CreateRequest struct {
	Tracking    string `json:"tracking" validate:"required,max=64"`
	Description string `json:"description" validate:"max=500"`
}

// Create handles POST /customers/{customerID}/shipments.
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

	shipment, err := h.service.Create(r.Context(), chi.URLParam(r, "customerID"), req.Tracking, req.Description)
	if err != nil {
		httputil.HandleError(r.Context(), w, err,
			httputil.ErrorMapping{Err: ErrDuplicateTracking, Status: http.StatusConflict, Message: "tracking number already exists"},
		)
		return
	}

	httputil.JSON(w, http.StatusCreated, h.toResponse(shipment))
}

// ListByCustomer handles GET /customers/{customerID}/shipments.
func (h *Handler) ListByCustomer(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.ListByUser(r.Context(), chi.URLParam(r, "customerID"))
	if err != nil {
		httputil.HandleError(r.Context(), w, err)
		return
	}

	responses := make([]ShipmentResponse, 0, len(list))
	for _, s := range list {
		responses = append(responses, h.toResponse(s))
	}
	httputil.JSON(w, http.StatusOK, map[string]any{"shipments": responses})
}

// UpdateStatusRequest is the body for PATCH /shipments/{shipmentID}/status.
type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// UpdateStatus handles PATCH /shipments/{shipmentID}/status.
func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req UpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid json")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httputil.ValidationError(w, err)
		return
	}

	shipment, err := h.service.UpdateStatus(r.Context(), chi.URLParam(r, "shipmentID"), req.Status)
	if err != nil {
		httputil.HandleError(r.Context(), w, err,
			httputil.ErrorMapping{Err: ErrInvalidStatus, Status: http.StatusBadRequest, Message: "invalid shipment status"},
			httputil.ErrorMapping{Err: ErrNotFound, Status: http.StatusNotFound, Message: "shipment not found"},
		)
		return
	}

	httputil.JSON(w, http.StatusOK, h.toResponse(shipment))
}
