package chat

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/suenos-shipping/console/internal/pkg/httputil"
)

// Handler handles HTTP requests for chat threads.
type Handler struct {
	service   *Service
	validator *validator.Validate
}

// NewHandler creates a new chat handler.
func NewHandler(service *Service) *Handler {
	return &Handler{
		service:   service,
		validator: validator.New(),
	}
}

// RegisterRoutes registers chat routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/customers/{customerID}/messages", func(r chi.Router) {
		r.Get("/", h.List)
		r.Post("/", h.Post)
	})
}

// PostRequest is the body for POST /customers/{customerID}/messages.
type PostRequest struct {
	Body string `json:"body" validate:"required,max=4000"`
}

// Post handles POST /customers/{customerID}/messages. The author is the
// authenticated caller.
func (h *Handler) Post(w http.ResponseWriter, r *http.Request) {
	var req PostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid json")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httputil.ValidationError(w, err)
		return
	}

	message, err := h.service.Post(r.Context(),
		chi.URLParam(r, "customerID"),
		httputil.GetUserID(r.Context()),
		req.Body,
	)
	if err != nil {
		httputil.HandleError(r.Context(), w, err,
			httputil.ErrorMapping{Err: ErrEmptyBody, Status: http.StatusBadRequest, Message: "message body is empty"},
		)
		return
	}

	httputil.JSON(w, http.StatusCreated, message)
}

// List handles GET /customers/{customerID}/messages?limit=<n>.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			httputil.Error(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = parsed
	}

	messages, err := h.service.List(r.Context(), chi.URLParam(r, "customerID"), limit)
	if err != nil {
		httputil.HandleError(r.Context(), w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, map[string]any{"messages": messages})
}
