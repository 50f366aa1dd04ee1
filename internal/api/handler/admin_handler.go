package handler

import (
	"debug_contest/internal/api/middleware"
	"debug_contest/internal/app/service"
	"debug_contest/internal/common"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

type AdminHandler struct {
	adminService *service.AdminService
}

func NewAdminHandler(as *service.AdminService) *AdminHandler {
	return &AdminHandler{adminService: as}
}

func (h *AdminHandler) RegisterRoutes(r chi.Router) {
	r.Use(middleware.AdminOnly)
	r.Post("/questions", h.createQuestion)
	r.Get("/questions", h.listQuestions)
	r.Get("/teams", h.listTeams)
	r.Get("/teams/{teamID}/submissions", h.listTeamSubmissions)
}

func (h *AdminHandler) createQuestion(w http.ResponseWriter, r *http.Request) {
	var req service.CreateQuestionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}

	question, err := h.adminService.CreateQuestion(r.Context(), req)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, question)
}

func (h *AdminHandler) listQuestions(w http.ResponseWriter, r *http.Request) {
	questions, err := h.adminService.ListQuestions(r.Context())
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, questions)
}

func (h *AdminHandler) listTeams(w http.ResponseWriter, r *http.Request) {
	teams, err := h.adminService.ListTeams(r.Context())
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, teams)
}

func (h *AdminHandler) listTeamSubmissions(w http.ResponseWriter, r *http.Request) {
	teamID := chi.URLParam(r, "teamID")
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("page_size"))

	submissions, err := h.adminService.ListTeamSubmissions(r.Context(), teamID, page, pageSize)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, submissions)
}
