// Package apptest provides in-memory implementations of the application
// ports for use-case tests.
package apptest

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jsmuster/isstrack/internal/application/ports"
	"github.com/jsmuster/isstrack/internal/domain"
	domerrors "github.com/jsmuster/isstrack/internal/domain/errors"
)

// Tx runs the function directly. In-memory state is not rolled back, so
// tests asserting rollback behavior must fail before the first write.
type Tx struct{}

func (Tx) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// Dispatcher records dispatched events synchronously.
type Dispatcher struct {
	mu     sync.Mutex
	Events []domain.Event
}

func (d *Dispatcher) Dispatch(events []domain.Event) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.Events = append(d.Events, events...)
}

// Enqueuer records enqueued email tasks.
type Enqueuer struct {
	InviteEmails []string
	InviteURLs   []string
	ResetEmails  []string
	ResetURLs    []string
}

func (e *Enqueuer) EnqueueInviteEmail(_ context.Context, email, _, inviteURL string) error {
	e.InviteEmails = append(e.InviteEmails, email)
	e.InviteURLs = append(e.InviteURLs, inviteURL)
	return nil
}

func (e *Enqueuer) EnqueueSendPasswordReset(_ context.Context, email, resetURL string) error {
	e.ResetEmails = append(e.ResetEmails, email)
	e.ResetURLs = append(e.ResetURLs, resetURL)
	return nil
}

// UserRepo is an in-memory ports.UserRepository.
type UserRepo struct {
	nextID domain.UserID
	Users  map[domain.UserID]*domain.User
}

func NewUserRepo() *UserRepo {
	return &UserRepo{Users: make(map[domain.UserID]*domain.User)}
}

// Seed inserts a user and returns it.
func (r *UserRepo) Seed(email, username string) *domain.User {
	u := &domain.User{
		Email:    email,
		Username: username,
		Role:     domain.RoleUser,
		Active:   true,
	}
	_ = r.Create(context.Background(), u)
	return u
}

func (r *UserRepo) Create(_ context.Context, user *domain.User) error {
	for _, u := range r.Users {
		if strings.EqualFold(u.Email, user.Email) || strings.EqualFold(u.Username, user.Username) {
			return domerrors.Conflict("user already exists")
		}
	}
	r.nextID++
	user.ID = r.nextID
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	r.Users[user.ID] = user
	return nil
}

func (r *UserRepo) GetByID(_ context.Context, id domain.UserID) (*domain.User, error) {
	return r.Users[id], nil
}

func (r *UserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, u := range r.Users {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return nil, nil
}

func (r *UserRepo) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	for _, u := range r.Users {
		if strings.EqualFold(u.Username, username) {
			return u, nil
		}
	}
	return nil, nil
}

func (r *UserRepo) GetByIdentifier(ctx context.Context, identifier string) (*domain.User, error) {
	if u, _ := r.GetByEmail(ctx, identifier); u != nil {
		return u, nil
	}
	return r.GetByUsername(ctx, identifier)
}

func (r *UserRepo) Exists(_ context.Context, id domain.UserID) (bool, error) {
	_, ok := r.Users[id]
	return ok, nil
}

func (r *UserRepo) UpdatePassword(_ context.Context, id domain.UserID, passwordHash string) error {
	u, ok := r.Users[id]
	if !ok {
		return domerrors.NotFound("User not found")
	}
	u.PasswordHash = passwordHash
	return nil
}

// ProjectRepo is an in-memory ports.ProjectRepository.
type ProjectRepo struct {
	nextID      domain.ProjectID
	Projects    map[domain.ProjectID]*domain.Project
	memberships *MembershipRepo
}

func NewProjectRepo(memberships *MembershipRepo) *ProjectRepo {
	return &ProjectRepo{Projects: make(map[domain.ProjectID]*domain.Project), memberships: memberships}
}

// Seed inserts a project.
func (r *ProjectRepo) Seed(name, prefix string, ownerID domain.UserID) *domain.Project {
	p := &domain.Project{Name: name, Prefix: prefix, OwnerID: ownerID}
	_ = r.Create(context.Background(), p)
	return p
}

func (r *ProjectRepo) Create(_ context.Context, project *domain.Project) error {
	r.nextID++
	project.ID = r.nextID
	project.CreatedAt = time.Now()
	project.UpdatedAt = project.CreatedAt
	r.Projects[project.ID] = project
	return nil
}

func (r *ProjectRepo) GetByID(_ context.Context, id domain.ProjectID) (*domain.Project, error) {
	return r.Projects[id], nil
}

func (r *ProjectRepo) ListForMember(ctx context.Context, userID domain.UserID, page, size int) ([]*domain.Project, int64, error) {
	var all []*domain.Project
	for _, p := range r.Projects {
		ok, _ := r.memberships.ExistsActive(ctx, p.ID, userID)
		if ok {
			all = append(all, p)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	return pageSlice(all, page, size), int64(len(all)), nil
}

// MembershipRepo is an in-memory ports.MembershipRepository.
type MembershipRepo struct {
	nextID      domain.MembershipID
	Memberships []*domain.Membership
}

func NewMembershipRepo() *MembershipRepo {
	return &MembershipRepo{}
}

// SeedActive adds an ACTIVE membership.
func (r *MembershipRepo) SeedActive(projectID domain.ProjectID, userID domain.UserID, role domain.ProjectRole) *domain.Membership {
	uid := userID
	m := &domain.Membership{
		ProjectID: projectID,
		UserID:    &uid,
		Role:      role,
		Status:    domain.MembershipActive,
		InviterID: userID,
	}
	_ = r.Create(context.Background(), m)
	return m
}

func (r *MembershipRepo) Create(_ context.Context, m *domain.Membership) error {
	r.nextID++
	m.ID = r.nextID
	m.CreatedAt = time.Now()
	m.UpdatedAt = m.CreatedAt
	cp := *m
	r.Memberships = append(r.Memberships, &cp)
	return nil
}

func (r *MembershipRepo) Update(_ context.Context, m *domain.Membership) error {
	for i, existing := range r.Memberships {
		if existing.ID == m.ID {
			if existing.Version != m.Version {
				return domerrors.Conflict("Membership was modified concurrently")
			}
			m.Version++
			m.UpdatedAt = time.Now()
			cp := *m
			r.Memberships[i] = &cp
			return nil
		}
	}
	return domerrors.NotFound("membership not found")
}

func (r *MembershipRepo) GetActive(_ context.Context, projectID domain.ProjectID, userID domain.UserID) (*domain.Membership, error) {
	for _, m := range r.Memberships {
		if m.ProjectID == projectID && m.UserID != nil && *m.UserID == userID && m.Status == domain.MembershipActive {
			cp := *m
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *MembershipRepo) ExistsActive(ctx context.Context, projectID domain.ProjectID, userID domain.UserID) (bool, error) {
	m, _ := r.GetActive(ctx, projectID, userID)
	return m != nil, nil
}

func (r *MembershipRepo) GetByInviteToken(_ context.Context, token string) (*domain.Membership, error) {
	for _, m := range r.Memberships {
		if m.InviteToken != "" && m.InviteToken == token {
			cp := *m
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *MembershipRepo) FindInvite(_ context.Context, projectID domain.ProjectID, email string) (*domain.Membership, error) {
	for _, m := range r.Memberships {
		if m.ProjectID == projectID && m.Status == domain.MembershipInvited && strings.EqualFold(m.InvitedEmail, email) {
			cp := *m
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *MembershipRepo) ListActiveByProject(_ context.Context, projectID domain.ProjectID, page, size int) ([]*domain.Membership, int64, error) {
	var all []*domain.Membership
	for _, m := range r.Memberships {
		if m.ProjectID == projectID && m.Status == domain.MembershipActive {
			all = append(all, m)
		}
	}
	return pageSlice(all, page, size), int64(len(all)), nil
}

// IssueRepo is an in-memory ports.IssueRepository with per-project issue
// numbering and version checks mirroring the SQL implementation.
type IssueRepo struct {
	nextID domain.IssueID
	Issues map[domain.IssueID]*domain.Issue
}

func NewIssueRepo() *IssueRepo {
	return &IssueRepo{Issues: make(map[domain.IssueID]*domain.Issue)}
}

func (r *IssueRepo) Create(_ context.Context, issue *domain.Issue) error {
	var max int32
	for _, i := range r.Issues {
		if i.ProjectID == issue.ProjectID && i.IssueNumber > max {
			max = i.IssueNumber
		}
	}
	r.nextID++
	issue.ID = r.nextID
	issue.IssueNumber = max + 1
	issue.CreatedAt = time.Now()
	issue.UpdatedAt = issue.CreatedAt
	cp := *issue
	r.Issues[issue.ID] = &cp
	return nil
}

func (r *IssueRepo) GetByID(_ context.Context, id domain.IssueID) (*domain.Issue, error) {
	i, ok := r.Issues[id]
	if !ok {
		return nil, nil
	}
	cp := *i
	return &cp, nil
}

func (r *IssueRepo) Update(_ context.Context, issue *domain.Issue) error {
	existing, ok := r.Issues[issue.ID]
	if !ok || existing.Version != issue.Version {
		return domerrors.Conflict("Issue was modified concurrently")
	}
	issue.Version++
	issue.UpdatedAt = time.Now()
	cp := *issue
	r.Issues[issue.ID] = &cp
	return nil
}

func (r *IssueRepo) List(_ context.Context, projectID domain.ProjectID, filter ports.IssueFilter, page, size int) ([]*domain.Issue, int64, error) {
	var all []*domain.Issue
	for _, i := range r.Issues {
		if i.ProjectID != projectID {
			continue
		}
		if filter.Status != "" && string(i.Status) != filter.Status {
			continue
		}
		if filter.Priority != "" && string(i.Priority) != filter.Priority {
			continue
		}
		if filter.AssigneeID != nil && (i.AssigneeID == nil || *i.AssigneeID != *filter.AssigneeID) {
			continue
		}
		if filter.Query != "" && !strings.Contains(strings.ToLower(i.Title), strings.ToLower(filter.Query)) {
			continue
		}
		all = append(all, i)
	}
	asc := filter.SortAsc
	sort.Slice(all, func(a, b int) bool {
		var less bool
		switch filter.SortField {
		case "title":
			less = all[a].Title < all[b].Title
		case "created_at":
			less = all[a].CreatedAt.Before(all[b].CreatedAt)
		default:
			less = all[a].UpdatedAt.Before(all[b].UpdatedAt)
		}
		if asc {
			return less
		}
		return !less
	})
	return pageSlice(all, page, size), int64(len(all)), nil
}

// TagRepo is an in-memory ports.TagRepository.
type TagRepo struct {
	nextID domain.TagID
	byName map[string]domain.TagID
	byID   map[domain.TagID]string
	links  map[domain.IssueID][]domain.TagID
}

func NewTagRepo() *TagRepo {
	return &TagRepo{
		byName: make(map[string]domain.TagID),
		byID:   make(map[domain.TagID]string),
		links:  make(map[domain.IssueID][]domain.TagID),
	}
}

func (r *TagRepo) Upsert(_ context.Context, name string) (*domain.Tag, error) {
	if id, ok := r.byName[name]; ok {
		return &domain.Tag{ID: id, Name: name}, nil
	}
	r.nextID++
	r.byName[name] = r.nextID
	r.byID[r.nextID] = name
	return &domain.Tag{ID: r.nextID, Name: name}, nil
}

func (r *TagRepo) AttachToIssue(_ context.Context, issueID domain.IssueID, tagIDs []domain.TagID) error {
	for _, id := range tagIDs {
		found := false
		for _, existing := range r.links[issueID] {
			if existing == id {
				found = true
				break
			}
		}
		if !found {
			r.links[issueID] = append(r.links[issueID], id)
		}
	}
	return nil
}

func (r *TagRepo) DetachAllFromIssue(_ context.Context, issueID domain.IssueID) error {
	delete(r.links, issueID)
	return nil
}

func (r *TagRepo) NamesForIssues(_ context.Context, issueIDs []domain.IssueID) (map[domain.IssueID][]string, error) {
	out := make(map[domain.IssueID][]string, len(issueIDs))
	for _, issueID := range issueIDs {
		var names []string
		for _, tagID := range r.links[issueID] {
			names = append(names, r.byID[tagID])
		}
		sort.Strings(names)
		if names != nil {
			out[issueID] = names
		}
	}
	return out, nil
}

// CommentRepo is an in-memory ports.CommentRepository.
type CommentRepo struct {
	nextID   domain.CommentID
	Comments map[domain.CommentID]*domain.Comment
}

func NewCommentRepo() *CommentRepo {
	return &CommentRepo{Comments: make(map[domain.CommentID]*domain.Comment)}
}

func (r *CommentRepo) Create(_ context.Context, c *domain.Comment) error {
	r.nextID++
	c.ID = r.nextID
	c.CreatedAt = time.Now()
	c.UpdatedAt = c.CreatedAt
	cp := *c
	r.Comments[c.ID] = &cp
	return nil
}

func (r *CommentRepo) GetByID(_ context.Context, id domain.CommentID) (*domain.Comment, error) {
	c, ok := r.Comments[id]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (r *CommentRepo) Update(_ context.Context, c *domain.Comment) error {
	if _, ok := r.Comments[c.ID]; !ok {
		return domerrors.NotFound("Comment not found")
	}
	c.UpdatedAt = time.Now()
	cp := *c
	r.Comments[c.ID] = &cp
	return nil
}

func (r *CommentRepo) Delete(_ context.Context, id domain.CommentID) error {
	if _, ok := r.Comments[id]; !ok {
		return domerrors.NotFound("Comment not found")
	}
	delete(r.Comments, id)
	return nil
}

func (r *CommentRepo) ListByIssue(_ context.Context, issueID domain.IssueID, page, size int) ([]*domain.Comment, int64, error) {
	var all []*domain.Comment
	for _, c := range r.Comments {
		if c.IssueID == issueID {
			all = append(all, c)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID > all[j].ID })
	return pageSlice(all, page, size), int64(len(all)), nil
}

// ActivityRepo is an in-memory ports.ActivityRepository.
type ActivityRepo struct {
	nextID  domain.ActivityID
	Entries []*domain.Activity
}

func NewActivityRepo() *ActivityRepo {
	return &ActivityRepo{}
}

func (r *ActivityRepo) Create(_ context.Context, a *domain.Activity) error {
	r.nextID++
	a.ID = r.nextID
	a.CreatedAt = time.Now()
	cp := *a
	r.Entries = append(r.Entries, &cp)
	return nil
}

func (r *ActivityRepo) ListByIssue(_ context.Context, issueID domain.IssueID, page, size int) ([]*domain.Activity, int64, error) {
	var all []*domain.Activity
	for _, a := range r.Entries {
		if a.IssueID == issueID {
			all = append(all, a)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID > all[j].ID })
	return pageSlice(all, page, size), int64(len(all)), nil
}

// MessagesFor returns the audit messages recorded for an issue, oldest first.
func (r *ActivityRepo) MessagesFor(issueID domain.IssueID) []string {
	var msgs []string
	for _, a := range r.Entries {
		if a.IssueID == issueID {
			msgs = append(msgs, a.Message)
		}
	}
	return msgs
}

// resetToken is one stored password-reset row.
type resetToken struct {
	UserID    domain.UserID
	ExpiresAt time.Time
	Used      bool
}

// PasswordResetRepo is an in-memory ports.PasswordResetRepository keyed
// by token hash.
type PasswordResetRepo struct {
	Tokens map[string]*resetToken
}

func NewPasswordResetRepo() *PasswordResetRepo {
	return &PasswordResetRepo{Tokens: make(map[string]*resetToken)}
}

func (r *PasswordResetRepo) Create(_ context.Context, userID domain.UserID, tokenHash string, expiresAt time.Time) error {
	r.Tokens[tokenHash] = &resetToken{UserID: userID, ExpiresAt: expiresAt}
	return nil
}

func (r *PasswordResetRepo) Consume(_ context.Context, tokenHash string) (*domain.UserID, error) {
	t, ok := r.Tokens[tokenHash]
	if !ok || t.Used || !t.ExpiresAt.After(time.Now()) {
		return nil, nil
	}
	t.Used = true
	uid := t.UserID
	return &uid, nil
}

func (r *PasswordResetRepo) DeleteExpired(_ context.Context, before time.Time) (int64, error) {
	var n int64
	for hash, t := range r.Tokens {
		if t.Used || t.ExpiresAt.Before(before) {
			delete(r.Tokens, hash)
			n++
		}
	}
	return n, nil
}

func pageSlice[T any](all []T, page, size int) []T {
	start := page * size
	if start >= len(all) {
		return nil
	}
	end := start + size
	if end > len(all) {
		end = len(all)
	}
	return all[start:end]
}

var (
	_ ports.Transactor           = Tx{}
	_ ports.EventDispatcher      = (*Dispatcher)(nil)
	_ ports.TaskEnqueuer         = (*Enqueuer)(nil)
	_ ports.UserRepository       = (*UserRepo)(nil)
	_ ports.ProjectRepository    = (*ProjectRepo)(nil)
	_ ports.MembershipRepository = (*MembershipRepo)(nil)
	_ ports.IssueRepository      = (*IssueRepo)(nil)
	_ ports.TagRepository        = (*TagRepo)(nil)
	_ ports.CommentRepository    = (*CommentRepo)(nil)
	_ ports.ActivityRepository   = (*ActivityRepo)(nil)

	_ ports.PasswordResetRepository = (*PasswordResetRepo)(nil)
)
