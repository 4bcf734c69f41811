package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"carebook/internal/feedback/service"
	apperrors "carebook/pkg/errors"
	httputil "carebook/pkg/http"
	"carebook/pkg/logger"
	"carebook/pkg/middleware"
	"carebook/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type FeedbackHandler struct {
	service service.FeedbackService
	log     *logger.Logger
}

func NewFeedbackHandler(service service.FeedbackService, log *logger.Logger) *FeedbackHandler {
	return &FeedbackHandler{
		service: service,
		log:     log,
	}
}

func (h *FeedbackHandler) Submit(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	h.write(w, r, ps, "Submit", h.service.Submit)
}

func (h *FeedbackHandler) Edit(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	h.write(w, r, ps, "Edit", h.service.Edit)
}

func (h *FeedbackHandler) write(
	w http.ResponseWriter,
	r *http.Request,
	ps httprouter.Params,
	name string,
	op func(ctx context.Context, id string, actor middleware.Actor, submission *model.FeedbackSubmission) error,
) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		if writeErr := httputil.WriteError(w, apperrors.Unauthorized("Identity required")); writeErr != nil {
			h.log.Error("failed to write error response", "handler", name, "operation", "WriteError", "error", writeErr)
		}
		return
	}

	var submission model.FeedbackSubmission
	if err := json.NewDecoder(r.Body).Decode(&submission); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", name, "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	if err := op(r.Context(), ps.ByName("id"), actor, &submission); err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", name, "operation", "WriteError", "error", writeErr)
		}
		return
	}

	httputil.WriteNoContent(w)
}

func (h *FeedbackHandler) Approve(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	h.moderate(w, r, ps, "Approve", h.service.Approve)
}

func (h *FeedbackHandler) Reject(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	h.moderate(w, r, ps, "Reject", h.service.Reject)
}

func (h *FeedbackHandler) moderate(
	w http.ResponseWriter,
	r *http.Request,
	ps httprouter.Params,
	name string,
	op func(ctx context.Context, id string, actor middleware.Actor) error,
) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		if writeErr := httputil.WriteError(w, apperrors.Unauthorized("Identity required")); writeErr != nil {
			h.log.Error("failed to write error response", "handler", name, "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := op(r.Context(), ps.ByName("id"), actor); err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", name, "operation", "WriteError", "error", writeErr)
		}
		return
	}

	httputil.WriteNoContent(w)
}

func (h *FeedbackHandler) Pending(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		if writeErr := httputil.WriteError(w, apperrors.Unauthorized("Identity required")); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Pending", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Pending", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	appointments, total, err := h.service.Pending(r.Context(), actor, limit, offset)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Pending", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WritePaginated(w, appointments, total, limit, offset); err != nil {
		h.log.Error("failed to write paginated response", "handler", "Pending", "operation", "WritePaginated", "error", err)
	}
}

func (h *FeedbackHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/appointments/id/:id/feedback", h.Submit)
	router.PATCH("/api/v1/appointments/id/:id/feedback", h.Edit)
	router.POST("/api/v1/feedback/id/:id/approve", h.Approve)
	router.POST("/api/v1/feedback/id/:id/reject", h.Reject)
	router.GET("/api/v1/feedback/pending", h.Pending)
}
