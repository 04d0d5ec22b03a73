package comment

import (
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/jsmuster/isstrack/internal/application/access"
	"github.com/jsmuster/isstrack/internal/application/activity"
	"github.com/jsmuster/isstrack/internal/application/apptest"
	"github.com/jsmuster/isstrack/internal/domain"
	domerrors "github.com/jsmuster/isstrack/internal/domain/errors"
)

type fixture struct {
	svc         *Service
	users       *apptest.UserRepo
	memberships *apptest.MembershipRepo
	issues      *apptest.IssueRepo
	comments    *apptest.CommentRepo
	activities  *apptest.ActivityRepo
	dispatcher  *apptest.Dispatcher

	issueOwner *domain.User
	author     *domain.User
	issue      *domain.Issue
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		users:       apptest.NewUserRepo(),
		memberships: apptest.NewMembershipRepo(),
		issues:      apptest.NewIssueRepo(),
		comments:    apptest.NewCommentRepo(),
		activities:  apptest.NewActivityRepo(),
		dispatcher:  &apptest.Dispatcher{},
	}
	projects := apptest.NewProjectRepo(f.memberships)
	f.issueOwner = f.users.Seed("owner@example.com", "owner")
	f.author = f.users.Seed("author@example.com", "author")
	p := projects.Seed("Engineering", "ENG", f.issueOwner.ID)
	f.memberships.SeedActive(p.ID, f.issueOwner.ID, domain.ProjectRoleOwner)
	f.memberships.SeedActive(p.ID, f.author.ID, domain.ProjectRoleMember)

	f.issue = &domain.Issue{
		ProjectID: p.ID,
		Title:     "Crash on login",
		Status:    domain.StatusOpen,
		Priority:  domain.PriorityHigh,
		OwnerID:   f.issueOwner.ID,
	}
	if err := f.issues.Create(context.Background(), f.issue); err != nil {
		t.Fatal(err)
	}

	f.svc = NewService(
		apptest.Tx{},
		f.comments,
		f.issues,
		access.NewService(f.memberships),
		activity.NewRecorder(f.activities),
		f.dispatcher,
		zerolog.Nop(),
	)
	return f
}

func (f *fixture) addComment(t *testing.T, author domain.UserID, body string) domain.CommentView {
	t.Helper()
	view, err := f.svc.Add(context.Background(), author, f.issue.ID, body)
	if err != nil {
		t.Fatalf("add comment: %v", err)
	}
	return view
}

func commentAddedEvents(d *apptest.Dispatcher) []domain.CommentAdded {
	var out []domain.CommentAdded
	for _, ev := range d.Events {
		if e, ok := ev.(domain.CommentAdded); ok {
			out = append(out, e)
		}
	}
	return out
}

func TestAddComment(t *testing.T) {
	f := newFixture(t)
	view := f.addComment(t, f.author.ID, "  Looks like a null session.  ")

	if view.Body != "Looks like a null session." {
		t.Errorf("body = %q", view.Body)
	}
	if view.AuthorID != f.author.ID {
		t.Errorf("author = %d", view.AuthorID)
	}
	added := commentAddedEvents(f.dispatcher)
	if len(added) != 1 || added[0].IssueID != f.issue.ID {
		t.Fatalf("CommentAdded = %+v", added)
	}
	msgs := f.activities.MessagesFor(f.issue.ID)
	if len(msgs) != 1 || msgs[0] != "Comment added" {
		t.Errorf("audit = %v", msgs)
	}
}

func TestAddCommentValidation(t *testing.T) {
	f := newFixture(t)
	if _, err := f.svc.Add(context.Background(), f.author.ID, f.issue.ID, "   "); err == nil || err.Error() != "Comment body cannot be blank" {
		t.Errorf("blank body: %v", err)
	}
	long := strings.Repeat("x", domain.MaxCommentLength+1)
	if _, err := f.svc.Add(context.Background(), f.author.ID, f.issue.ID, long); err == nil || err.Error() != "Comment body is too long" {
		t.Errorf("long body: %v", err)
	}
	outsider := f.users.Seed("outsider@example.com", "outsider")
	if _, err := f.svc.Add(context.Background(), outsider.ID, f.issue.ID, "hi"); !domerrors.IsKind(err, domerrors.KindForbidden) {
		t.Errorf("outsider: %v", err)
	}
	if _, err := f.svc.Add(context.Background(), f.author.ID, 404, "hi"); !domerrors.IsKind(err, domerrors.KindNotFound) {
		t.Errorf("unknown issue: %v", err)
	}
}

func TestUpdateCommentOwnership(t *testing.T) {
	f := newFixture(t)
	view := f.addComment(t, f.author.ID, "first draft")
	other := f.users.Seed("peer@example.com", "peer")
	f.memberships.SeedActive(f.issue.ProjectID, other.ID, domain.ProjectRoleMember)
	f.dispatcher.Events = nil

	// A third member can neither edit nor delete.
	_, err := f.svc.Update(context.Background(), other.ID, f.issue.ID, view.ID, "hijacked")
	if err == nil || err.Error() != "Not allowed to edit this comment" {
		t.Fatalf("peer edit: %v", err)
	}
	if err := f.svc.Delete(context.Background(), other.ID, f.issue.ID, view.ID); err == nil || err.Error() != "Not allowed to delete this comment" {
		t.Fatalf("peer delete: %v", err)
	}

	// The issue owner can, even without authorship.
	updated, err := f.svc.Update(context.Background(), f.issueOwner.ID, f.issue.ID, view.ID, "  corrected  ")
	if err != nil {
		t.Fatal(err)
	}
	if updated.Body != "corrected" {
		t.Errorf("body = %q", updated.Body)
	}
	if len(commentAddedEvents(f.dispatcher)) != 0 {
		t.Error("update must not emit CommentAdded")
	}
	msgs := f.activities.MessagesFor(f.issue.ID)
	if msgs[len(msgs)-1] != "Comment edited" {
		t.Errorf("audit = %v", msgs)
	}
}

func TestDeleteComment(t *testing.T) {
	f := newFixture(t)
	view := f.addComment(t, f.author.ID, "to be removed")
	f.dispatcher.Events = nil

	if err := f.svc.Delete(context.Background(), f.author.ID, f.issue.ID, view.ID); err != nil {
		t.Fatal(err)
	}
	if c, _ := f.comments.GetByID(context.Background(), view.ID); c != nil {
		t.Error("comment should be gone")
	}
	msgs := f.activities.MessagesFor(f.issue.ID)
	if msgs[len(msgs)-1] != "Comment deleted" {
		t.Errorf("audit = %v", msgs)
	}
	if len(commentAddedEvents(f.dispatcher)) != 0 {
		t.Error("delete must not emit CommentAdded")
	}
}

func TestCommentCrossIssueLookupIsNotFound(t *testing.T) {
	f := newFixture(t)
	view := f.addComment(t, f.author.ID, "on the first issue")

	second := &domain.Issue{
		ProjectID: f.issue.ProjectID,
		Title:     "Another issue",
		Status:    domain.StatusOpen,
		Priority:  domain.PriorityLow,
		OwnerID:   f.issueOwner.ID,
	}
	if err := f.issues.Create(context.Background(), second); err != nil {
		t.Fatal(err)
	}

	_, err := f.svc.Update(context.Background(), f.author.ID, second.ID, view.ID, "probe")
	if !domerrors.IsKind(err, domerrors.KindNotFound) {
		t.Fatalf("want NotFound, got %v", err)
	}
	if err.Error() != "Comment not found" {
		t.Errorf("message = %q", err.Error())
	}
}

func TestListComments(t *testing.T) {
	f := newFixture(t)
	f.addComment(t, f.author.ID, "first")
	f.addComment(t, f.issueOwner.ID, "second")

	page, err := f.svc.List(context.Background(), f.author.ID, f.issue.ID, 0, 20)
	if err != nil {
		t.Fatal(err)
	}
	if page.TotalElements != 2 {
		t.Errorf("total = %d", page.TotalElements)
	}
	// Newest first.
	if page.Items[0].Body != "second" {
		t.Errorf("order = %q, %q", page.Items[0].Body, page.Items[1].Body)
	}
}
