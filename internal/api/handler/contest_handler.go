package handler

import (
	"debug_contest/internal/api/middleware"
	"debug_contest/internal/app/service"
	"debug_contest/internal/common"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
)

type ContestHandler struct {
	contestService *service.ContestService
}

func NewContestHandler(cs *service.ContestService) *ContestHandler {
	return &ContestHandler{contestService: cs}
}

func (h *ContestHandler) RegisterRoutes(r chi.Router) {
	r.Use(middleware.Authenticator) // All contest routes require a team session
	r.Get("/active", h.activeQuestion)
	r.Post("/submissions", h.submit)
}

func (h *ContestHandler) activeQuestion(w http.ResponseWriter, r *http.Request) {
	teamID, ok := middleware.GetTeamIDFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Team identity missing from context")
		return
	}

	resp, err := h.contestService.ActiveQuestion(r.Context(), teamID)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, resp)
}

func (h *ContestHandler) submit(w http.ResponseWriter, r *http.Request) {
	teamID, ok := middleware.GetTeamIDFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Team identity missing from context")
		return
	}

	var req service.SubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}

	result, err := h.contestService.Submit(r.Context(), teamID, req)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, result)
}
