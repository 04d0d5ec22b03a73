package ports

import (
	"context"
	"time"

	"github.com/jsmuster/isstrack/internal/domain"
)

// Transactor runs fn inside one database transaction. The transaction is
// carried in the context; repositories participate automatically. An
// error from fn rolls everything back.
type Transactor interface {
	InTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// UserRepository defines persistence for users.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id domain.UserID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	// GetByIdentifier resolves a login identifier against email or
	// username, both case-insensitive.
	GetByIdentifier(ctx context.Context, identifier string) (*domain.User, error)
	Exists(ctx context.Context, id domain.UserID) (bool, error)
	UpdatePassword(ctx context.Context, id domain.UserID, passwordHash string) error
}

// ProjectRepository defines persistence for projects.
type ProjectRepository interface {
	Create(ctx context.Context, project *domain.Project) error
	GetByID(ctx context.Context, id domain.ProjectID) (*domain.Project, error)
	// ListForMember pages projects where the user holds an ACTIVE
	// membership, newest-created first.
	ListForMember(ctx context.Context, userID domain.UserID, page, size int) ([]*domain.Project, int64, error)
}

// MembershipRepository defines persistence for project memberships.
type MembershipRepository interface {
	Create(ctx context.Context, m *domain.Membership) error
	// Update saves a mutated membership with a conditional write on
	// Version; a stale version yields a Conflict error.
	Update(ctx context.Context, m *domain.Membership) error
	GetActive(ctx context.Context, projectID domain.ProjectID, userID domain.UserID) (*domain.Membership, error)
	ExistsActive(ctx context.Context, projectID domain.ProjectID, userID domain.UserID) (bool, error)
	GetByInviteToken(ctx context.Context, token string) (*domain.Membership, error)
	// FindInvite returns the INVITED row for (project, email), nil if none.
	FindInvite(ctx context.Context, projectID domain.ProjectID, email string) (*domain.Membership, error)
	ListActiveByProject(ctx context.Context, projectID domain.ProjectID, page, size int) ([]*domain.Membership, int64, error)
}

// IssueFilter is the conjunctive predicate for issue listing. Zero
// values mean "no constraint". SortField must be a storage column name
// vetted by the application layer before it reaches the repository.
type IssueFilter struct {
	Status     string
	Priority   string
	AssigneeID *domain.UserID
	Tag        string
	Query      string
	SortField  string
	SortAsc    bool
}

// IssueRepository defines persistence for issues.
type IssueRepository interface {
	// Create persists the issue and assigns its project-scoped
	// IssueNumber inside the caller's transaction.
	Create(ctx context.Context, issue *domain.Issue) error
	GetByID(ctx context.Context, id domain.IssueID) (*domain.Issue, error)
	// Update saves a mutated issue with a conditional write on Version;
	// a stale version yields a Conflict error.
	Update(ctx context.Context, issue *domain.Issue) error
	List(ctx context.Context, projectID domain.ProjectID, filter IssueFilter, page, size int) ([]*domain.Issue, int64, error)
}

// TagRepository defines persistence for global tags and issue-tag links.
type TagRepository interface {
	// Upsert finds or creates the tag with the given normalized name.
	// Concurrent first-uses of the same name must both succeed.
	Upsert(ctx context.Context, name string) (*domain.Tag, error)
	AttachToIssue(ctx context.Context, issueID domain.IssueID, tagIDs []domain.TagID) error
	DetachAllFromIssue(ctx context.Context, issueID domain.IssueID) error
	// NamesForIssues returns tag names batched by issue id, one query
	// for the whole result set.
	NamesForIssues(ctx context.Context, issueIDs []domain.IssueID) (map[domain.IssueID][]string, error)
}

// CommentRepository defines persistence for issue comments.
type CommentRepository interface {
	Create(ctx context.Context, c *domain.Comment) error
	GetByID(ctx context.Context, id domain.CommentID) (*domain.Comment, error)
	Update(ctx context.Context, c *domain.Comment) error
	Delete(ctx context.Context, id domain.CommentID) error
	ListByIssue(ctx context.Context, issueID domain.IssueID, page, size int) ([]*domain.Comment, int64, error)
}

// ActivityRepository defines persistence for the append-only audit log.
type ActivityRepository interface {
	Create(ctx context.Context, a *domain.Activity) error
	ListByIssue(ctx context.Context, issueID domain.IssueID, page, size int) ([]*domain.Activity, int64, error)
}

// PasswordResetRepository defines storage for single-use reset tokens.
// Only token hashes are stored.
type PasswordResetRepository interface {
	Create(ctx context.Context, userID domain.UserID, tokenHash string, expiresAt time.Time) error
	// Consume resolves a live (unexpired, unused) token hash to its
	// user and marks it used; nil user means no live token.
	Consume(ctx context.Context, tokenHash string) (*domain.UserID, error)
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}
