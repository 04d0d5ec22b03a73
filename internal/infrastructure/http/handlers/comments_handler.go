package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/jsmuster/isstrack/internal/application/comment"
	"github.com/jsmuster/isstrack/internal/domain"
	"github.com/jsmuster/isstrack/internal/infrastructure/http/middleware"
)

type CommentsHandler struct {
	comments *comment.Service
	validate *validator.Validate
	log      zerolog.Logger
}

func NewCommentsHandler(comments *comment.Service, log zerolog.Logger) *CommentsHandler {
	return &CommentsHandler{comments: comments, validate: validator.New(), log: log}
}

func (h *CommentsHandler) Add(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserFromContext(r.Context())
	issueID, ok := pathID(r, "issueID")
	if !ok {
		writeErr(w, http.StatusBadRequest, "", "invalid issue id")
		return
	}
	var body struct {
		Body string `json:"body" validate:"required,max=10000"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeErr(w, http.StatusBadRequest, "", "invalid body")
		return
	}
	if err := h.validate.Struct(&body); err != nil {
		writeErr(w, http.StatusBadRequest, "", err.Error())
		return
	}
	view, err := h.comments.Add(r.Context(), userID, domain.IssueID(issueID), body.Body)
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, view)
}

func (h *CommentsHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserFromContext(r.Context())
	issueID, ok := pathID(r, "issueID")
	if !ok {
		writeErr(w, http.StatusBadRequest, "", "invalid issue id")
		return
	}
	page := queryInt(r, "page", 0)
	size := queryInt(r, "size", 20)
	result, err := h.comments.List(r.Context(), userID, domain.IssueID(issueID), page, size)
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *CommentsHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserFromContext(r.Context())
	issueID, ok := pathID(r, "issueID")
	if !ok {
		writeErr(w, http.StatusBadRequest, "", "invalid issue id")
		return
	}
	commentID, ok := pathID(r, "commentID")
	if !ok {
		writeErr(w, http.StatusBadRequest, "", "invalid comment id")
		return
	}
	var body struct {
		Body string `json:"body" validate:"required,max=10000"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeErr(w, http.StatusBadRequest, "", "invalid body")
		return
	}
	if err := h.validate.Struct(&body); err != nil {
		writeErr(w, http.StatusBadRequest, "", err.Error())
		return
	}
	view, err := h.comments.Update(r.Context(), userID, domain.IssueID(issueID), domain.CommentID(commentID), body.Body)
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *CommentsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserFromContext(r.Context())
	issueID, ok := pathID(r, "issueID")
	if !ok {
		writeErr(w, http.StatusBadRequest, "", "invalid issue id")
		return
	}
	commentID, ok := pathID(r, "commentID")
	if !ok {
		writeErr(w, http.StatusBadRequest, "", "invalid comment id")
		return
	}
	if err := h.comments.Delete(r.Context(), userID, domain.IssueID(issueID), domain.CommentID(commentID)); err != nil {
		respondError(w, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
