package handler

import (
	"encoding/json"
	"net/http"

	"roomly/internal/bookings/service"
	httputil "roomly/pkg/http"
	"roomly/pkg/logger"
	"roomly/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type ConflictHandler struct {
	service service.ConflictService
	log     *logger.Logger
}

func NewConflictHandler(service service.ConflictService, log *logger.Logger) *ConflictHandler {
	return &ConflictHandler{
		service: service,
		log:     log,
	}
}

func (h *ConflictHandler) Check(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req model.ConflictCheckRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadBody(w, h.log, "Check")
		return
	}

	resp, err := h.service.Check(r.Context(), &req)
	if err != nil {
		writeError(w, h.log, "Check", err)
		return
	}

	if err := httputil.WriteSuccess(w, resp); err != nil {
		h.log.Error("failed to write success response", "handler", "Check", "operation", "WriteSuccess", "error", err)
	}
}

func (h *ConflictHandler) Suggest(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req model.SuggestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadBody(w, h.log, "Suggest")
		return
	}

	resp, err := h.service.Suggest(r.Context(), &req)
	if err != nil {
		writeError(w, h.log, "Suggest", err)
		return
	}

	if err := httputil.WriteSuccess(w, resp); err != nil {
		h.log.Error("failed to write success response", "handler", "Suggest", "operation", "WriteSuccess", "error", err)
	}
}

func (h *ConflictHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/conflicts/check", h.Check)
	router.POST("/api/v1/conflicts/suggest", h.Suggest)
}
