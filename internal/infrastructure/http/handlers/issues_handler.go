package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/jsmuster/isstrack/internal/application/activity"
	"github.com/jsmuster/isstrack/internal/application/issue"
	"github.com/jsmuster/isstrack/internal/domain"
	"github.com/jsmuster/isstrack/internal/infrastructure/http/middleware"
)

type IssuesHandler struct {
	issues   *issue.Service
	activity *activity.QueryService
	validate *validator.Validate
	log      zerolog.Logger
}

func NewIssuesHandler(issues *issue.Service, activitySvc *activity.QueryService, log zerolog.Logger) *IssuesHandler {
	return &IssuesHandler{issues: issues, activity: activitySvc, validate: validator.New(), log: log}
}

func (h *IssuesHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserFromContext(r.Context())
	projectID, ok := pathID(r, "projectID")
	if !ok {
		writeErr(w, http.StatusBadRequest, "", "invalid project id")
		return
	}
	var body struct {
		Title          string   `json:"title" validate:"required,max=500"`
		Description    string   `json:"description" validate:"max=50000"`
		Priority       string   `json:"priority" validate:"required,max=20"`
		AssigneeUserID *int64   `json:"assigneeUserId"`
		Tags           []string `json:"tags" validate:"max=50,dive,max=100"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeErr(w, http.StatusBadRequest, "", "invalid body")
		return
	}
	if err := h.validate.Struct(&body); err != nil {
		writeErr(w, http.StatusBadRequest, "", err.Error())
		return
	}
	in := issue.CreateInput{
		Title:       body.Title,
		Description: body.Description,
		Priority:    body.Priority,
		Tags:        body.Tags,
	}
	if body.AssigneeUserID != nil {
		id := domain.UserID(*body.AssigneeUserID)
		in.AssigneeUserID = &id
	}
	view, err := h.issues.Create(r.Context(), userID, domain.ProjectID(projectID), in)
	middleware.RecordIssueMutation("create", err == nil)
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	h.log.Info().Str("issue_key", view.IssueKey).Msg("issue created")
	writeJSON(w, http.StatusCreated, view)
}

func (h *IssuesHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserFromContext(r.Context())
	projectID, ok := pathID(r, "projectID")
	if !ok {
		writeErr(w, http.StatusBadRequest, "", "invalid project id")
		return
	}
	q := r.URL.Query()
	in := issue.ListInput{
		Status:     q.Get("status"),
		Priority:   q.Get("priority"),
		AssigneeID: queryUserID(r, "assigneeId"),
		Tag:        q.Get("tag"),
		Query:      q.Get("q"),
		Sort:       q.Get("sort"),
		Page:       queryInt(r, "page", 0),
		Size:       queryInt(r, "size", 20),
	}
	result, err := h.issues.List(r.Context(), userID, domain.ProjectID(projectID), in)
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *IssuesHandler) Detail(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserFromContext(r.Context())
	issueID, ok := pathID(r, "issueID")
	if !ok {
		writeErr(w, http.StatusBadRequest, "", "invalid issue id")
		return
	}
	in := issue.DetailInput{
		CommentsPage: queryInt(r, "commentsPage", 0),
		CommentsSize: queryInt(r, "commentsSize", 20),
		ActivityPage: queryInt(r, "activityPage", 0),
		ActivitySize: queryInt(r, "activitySize", 20),
	}
	detail, err := h.issues.Detail(r.Context(), userID, domain.IssueID(issueID), in)
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

// Patch applies a partial issue update. Absent fields stay untouched;
// "assigneeUserId": null clears the assignee.
func (h *IssuesHandler) Patch(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserFromContext(r.Context())
	issueID, ok := pathID(r, "issueID")
	if !ok {
		writeErr(w, http.StatusBadRequest, "", "invalid issue id")
		return
	}
	var body struct {
		Title          *string          `json:"title"`
		Description    *string          `json:"description"`
		Status         *string          `json:"status"`
		Priority       *string          `json:"priority"`
		AssigneeUserID json.RawMessage `json:"assigneeUserId"`
		Tags           []string        `json:"tags"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeErr(w, http.StatusBadRequest, "", "invalid body")
		return
	}
	patch := issue.PatchInput{
		Title:       body.Title,
		Description: body.Description,
		Status:      body.Status,
		Priority:    body.Priority,
		Tags:        body.Tags,
	}
	// A literal "assigneeUserId": null clears; an absent key leaves the
	// assignee untouched.
	if body.AssigneeUserID != nil {
		if string(body.AssigneeUserID) == "null" {
			patch.ClearAssignee = true
		} else {
			var id int64
			if err := json.Unmarshal(body.AssigneeUserID, &id); err != nil || id <= 0 {
				writeErr(w, http.StatusBadRequest, "", "invalid assignee id")
				return
			}
			uid := domain.UserID(id)
			patch.AssigneeUserID = &uid
		}
	}
	view, err := h.issues.Update(r.Context(), userID, domain.IssueID(issueID), patch)
	middleware.RecordIssueMutation("update", err == nil)
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *IssuesHandler) Activity(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserFromContext(r.Context())
	issueID, ok := pathID(r, "issueID")
	if !ok {
		writeErr(w, http.StatusBadRequest, "", "invalid issue id")
		return
	}
	page := queryInt(r, "page", 0)
	size := queryInt(r, "size", 20)
	result, err := h.activity.ListByIssue(r.Context(), userID, domain.IssueID(issueID), page, size)
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
