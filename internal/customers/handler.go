package customers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/suenos-shipping/console/internal/domain"
	"github.com/suenos-shipping/console/internal/pkg/httputil"
)

// Handler handles HTTP requests for customer profiles.
type Handler struct {
	service   *Service
	validator *validator.Validate
}

// NewHandler creates a new customers handler.
func NewHandler(service *Service) *Handler {
	return &Handler{
		service:   service,
		validator: validator.New(),
	}
}

// RegisterRoutes registers customer routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/customers", func(r chi.Router) {
		r.Get("/", h.Search)
		r.Post("/", h.Create)
		r.Get("/{customerID}", h.Get)
	})
}

// CreateRequest is the body for POST /customers.
type CreateRequest struct {
	Email    string `json:"email" validate:"required,email"`
	FullName string `json:"full_name" validate:"max=200"`
	Role     string `json:"role" validate:"omitempty,oneof=customer staff admin"`
}

// Create handles POST /customers.
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

	profile, err := h.service.Create(r.Context(), req.Email, req.FullName, domain.Role(req.Role))
	if err != nil {
		httputil.HandleError(r.Context(), w, err,
			httputil.ErrorMapping{Err: ErrDuplicateMail, Status: http.StatusConflict, Message: "email already registered"},
		)
		return
	}

	httputil.JSON(w, http.StatusCreated, profile)
}

// Get handles GET /customers/{customerID}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	profile, err := h.service.Get(r.Context(), chi.URLParam(r, "customerID"))
	if err != nil {
		httputil.HandleError(r.Context(), w, err,
			httputil.ErrorMapping{Err: ErrNotFound, Status: http.StatusNotFound, Message: "customer not found"},
		)
		return
	}
	httputil.JSON(w, http.StatusOK, profile)
}

// Search handles GET /customers?q=<query>&limit=<n>.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			httputil.Error(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = parsed
	}

	profiles, err := h.service.Search(r.Context(), r.URL.Query().Get("q"), limit)
	if err != nil {
		httputil.HandleError(r.Context(), w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, map[string]any{"customers": profiles})
}
