package notifications

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/suenos-shipping/console/internal/pkg/ctxlog"
	"github.com/suenos-shipping/console/internal/pkg/httputil"
)

// Handler handles HTTP requests for the notifications module.
type Handler struct {
	processor *Processor
	service   *Service
	validator *validator.Validate
}

// NewHandler creates a new notifications handler.
func NewHandler(processor *Processor, service *Service) *Handler {
	return &Handler{
		processor: processor,
		service:   service,
		validator: validator.New(),
	}
}

// RegisterRoutes registers notifications routes. The caller mounts
// these behind the staff authorization gate.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/notifications", func(r chi.Router) {
		r.Post("/process-queue", h.ProcessQueue)
		r.Get("/queue/stats", h.QueueStats)
	})
}

// ProcessQueueRequest is the optional body for POST /notifications/process-queue.
type ProcessQueueRequest struct {
	Limit int `json:"limit" validate:"min=0"`
}

// ProcessQueueResponse reports the counts of one batch pass.
type ProcessQueueResponse struct {
	OK        bool `json:"ok"`
	Processed int  `json:"processed"`
	Sent      int  `json:"sent"`
	Failed    int  `json:"failed"`
}

// ProcessQueue handles POST /notifications/process-queue.
// The request body is optional; an absent or empty body uses the
// default batch limit.
func (h *Handler) ProcessQueue(w http.ResponseWriter, r *http.Request) {
	var req ProcessQueueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		httputil.Error(w, http.StatusBadRequest, "invalid json")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		httputil.ValidationError(w, err)
		return
	}

	result, err := h.processor.ProcessBatch(r.Context(), req.Limit)
	if err != nil {
		ctxlog.FromContext(r.Context()).Error("queue processing failed", "error", err)
		httputil.Error(w, http.StatusInternalServerError, "internal error")
		return
	}

	httputil.JSON(w, http.StatusOK, ProcessQueueResponse{
		OK:        true,
		Processed: result.Processed,
		Sent:      result.Sent,
		Failed:    result.Failed,
	})
}

// QueueStats handles GET /notifications/queue/stats.
func (h *Handler) QueueStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.QueueStats(r.Context())
	if err != nil {
		ctxlog.FromContext(r.Context()).Error("queue stats failed", "error", err)
		httputil.Error(w, http.StatusInternalServerError, "internal error")
		return
	}
	httputil.JSON(w, http.StatusOK, stats)
}
