package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/jsmuster/isstrack/internal/application/project"
	"github.com/jsmuster/isstrack/internal/domain"
	"github.com/jsmuster/isstrack/internal/infrastructure/http/middleware"
)

type ProjectsHandler struct {
	projects *project.Service
	validate *validator.Validate
	log      zerolog.Logger
}

func NewProjectsHandler(projects *project.Service, log zerolog.Logger) *ProjectsHandler {
	return &ProjectsHandler{projects: projects, validate: validator.New(), log: log}
}

func (h *ProjectsHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserFromContext(r.Context())
	var body struct {
		Name   string `json:"name" validate:"required,max=200"`
		Prefix string `json:"prefix" validate:"required,max=10"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeErr(w, http.StatusBadRequest, "", "invalid body")
		return
	}
	if err := h.validate.Struct(&body); err != nil {
		writeErr(w, http.StatusBadRequest, "", err.Error())
		return
	}
	view, err := h.projects.Create(r.Context(), userID, body.Name, body.Prefix)
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	h.log.Info().Str("project_id", view.ID.String()).Msg("project created")
	writeJSON(w, http.StatusCreated, view)
}

func (h *ProjectsHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserFromContext(r.Context())
	page := queryInt(r, "page", 0)
	size := queryInt(r, "size", 20)
	result, err := h.projects.ListMine(r.Context(), userID, page, size)
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *ProjectsHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserFromContext(r.Context())
	id, ok := pathID(r, "projectID")
	if !ok {
		writeErr(w, http.StatusBadRequest, "", "invalid project id")
		return
	}
	view, err := h.projects.Get(r.Context(), userID, domain.ProjectID(id))
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *ProjectsHandler) ListMembers(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserFromContext(r.Context())
	id, ok := pathID(r, "projectID")
	if !ok {
		writeErr(w, http.StatusBadRequest, "", "invalid project id")
		return
	}
	page := queryInt(r, "page", 0)
	size := queryInt(r, "size", 20)
	result, err := h.projects.ListMembers(r.Context(), userID, domain.ProjectID(id), page, size)
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *ProjectsHandler) Invite(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserFromContext(r.Context())
	id, ok := pathID(r, "projectID")
	if !ok {
		writeErr(w, http.StatusBadRequest, "", "invalid project id")
		return
	}
	var body struct {
		Email string `json:"email" validate:"required,email,max=254"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeErr(w, http.StatusBadRequest, "", "invalid body")
		return
	}
	if err := h.validate.Struct(&body); err != nil {
		writeErr(w, http.StatusBadRequest, "", err.Error())
		return
	}
	view, err := h.projects.Invite(r.Context(), userID, domain.ProjectID(id), SanitizeEmail(body.Email))
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, view)
}

func (h *ProjectsHandler) AcceptInvite(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserFromContext(r.Context())
	var body struct {
		Token string `json:"token" validate:"required,max=256"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeErr(w, http.StatusBadRequest, "", "invalid body")
		return
	}
	if err := h.validate.Struct(&body); err != nil {
		writeErr(w, http.StatusBadRequest, "", err.Error())
		return
	}
	view, err := h.projects.AcceptInvite(r.Context(), userID, body.Token)
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}
