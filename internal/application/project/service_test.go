package project

import (
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/jsmuster/isstrack/internal/application/access"
	"github.com/jsmuster/isstrack/internal/application/apptest"
	"github.com/jsmuster/isstrack/internal/domain"
	domerrors "github.com/jsmuster/isstrack/internal/domain/errors"
)

const inviteBase = "https://app.example.com/invites/accept"

type fixture struct {
	svc         *Service
	users       *apptest.UserRepo
	projects    *apptest.ProjectRepo
	memberships *apptest.MembershipRepo
	dispatcher  *apptest.Dispatcher
	enqueuer    *apptest.Enqueuer

	owner *domain.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		users:       apptest.NewUserRepo(),
		memberships: apptest.NewMembershipRepo(),
		dispatcher:  &apptest.Dispatcher{},
		enqueuer:    &apptest.Enqueuer{},
	}
	f.projects = apptest.NewProjectRepo(f.memberships)
	f.owner = f.users.Seed("owner@example.com", "owner")
	f.svc = NewService(
		apptest.Tx{},
		f.projects,
		f.memberships,
		f.users,
		access.NewService(f.memberships),
		f.dispatcher,
		f.enqueuer,
		inviteBase,
		zerolog.Nop(),
	)
	return f
}

func (f *fixture) createProject(t *testing.T, name, prefix string) domain.ProjectView {
	t.Helper()
	view, err := f.svc.Create(context.Background(), f.owner.ID, name, prefix)
	if err != nil {
		t.Fatalf("create project: %v", err)
	}
	return view
}

func memberAddedEvents(d *apptest.Dispatcher) []domain.MemberAdded {
	var out []domain.MemberAdded
	for _, ev := range d.Events {
		if e, ok := ev.(domain.MemberAdded); ok {
			out = append(out, e)
		}
	}
	return out
}

func TestCreateProject(t *testing.T) {
	f := newFixture(t)
	view := f.createProject(t, "  Engineering  ", "eng")

	if view.Name != "Engineering" || view.Prefix != "ENG" {
		t.Errorf("view = %+v", view)
	}
	if view.OwnerEmail != "owner@example.com" {
		t.Errorf("owner email = %q", view.OwnerEmail)
	}
	m, err := f.memberships.GetActive(context.Background(), view.ID, f.owner.ID)
	if err != nil || m == nil {
		t.Fatalf("owner membership missing: %v", err)
	}
	if m.Role != domain.ProjectRoleOwner {
		t.Errorf("owner role = %s", m.Role)
	}
	added := memberAddedEvents(f.dispatcher)
	if len(added) != 1 || added[0].Membership.UserID == nil || *added[0].Membership.UserID != f.owner.ID {
		t.Errorf("MemberAdded events = %+v", added)
	}
}

func TestCreateProjectRejectsBadPrefix(t *testing.T) {
	f := newFixture(t)
	for _, prefix := range []string{"", "E", "1NG", "ENG-", "TOOLONGPREFIX"} {
		_, err := f.svc.Create(context.Background(), f.owner.ID, "P", prefix)
		if !domerrors.IsKind(err, domerrors.KindBadRequest) {
			t.Errorf("prefix %q: %v", prefix, err)
			continue
		}
		if err.Error() != "Prefix must be 2-10 uppercase letters and digits, starting with a letter" {
			t.Errorf("prefix %q message = %q", prefix, err.Error())
		}
	}
	if _, err := f.svc.Create(context.Background(), f.owner.ID, "   ", "ENG"); !domerrors.IsKind(err, domerrors.KindBadRequest) {
		t.Errorf("blank name: %v", err)
	}
}

func TestInviteRequiresOwner(t *testing.T) {
	f := newFixture(t)
	p := f.createProject(t, "Engineering", "ENG")
	member := f.users.Seed("member@example.com", "member")
	f.memberships.SeedActive(p.ID, member.ID, domain.ProjectRoleMember)

	_, err := f.svc.Invite(context.Background(), member.ID, p.ID, "new@example.com")
	if !domerrors.IsKind(err, domerrors.KindForbidden) {
		t.Fatalf("want Forbidden, got %v", err)
	}
	if err.Error() != "Owner role required" {
		t.Errorf("message = %q", err.Error())
	}
}

func TestInviteNewEmailCreatesInvite(t *testing.T) {
	f := newFixture(t)
	p := f.createProject(t, "Engineering", "ENG")
	f.dispatcher.Events = nil

	view, err := f.svc.Invite(context.Background(), f.owner.ID, p.ID, " New@Example.com ")
	if err != nil {
		t.Fatal(err)
	}
	if view.Status != domain.MembershipInvited || view.InvitedEmail != "new@example.com" {
		t.Errorf("view = %+v", view)
	}
	if view.UserID != nil {
		t.Error("pending invite must not be bound to a user")
	}
	if len(memberAddedEvents(f.dispatcher)) != 0 {
		t.Error("no MemberAdded until acceptance")
	}
	if len(f.enqueuer.InviteEmails) != 1 || f.enqueuer.InviteEmails[0] != "new@example.com" {
		t.Fatalf("invite emails = %v", f.enqueuer.InviteEmails)
	}
	if !strings.HasPrefix(f.enqueuer.InviteURLs[0], inviteBase+"?token=") {
		t.Errorf("invite url = %q", f.enqueuer.InviteURLs[0])
	}
}

func TestInviteIsIdempotentWhileLive(t *testing.T) {
	f := newFixture(t)
	p := f.createProject(t, "Engineering", "ENG")

	first, err := f.svc.Invite(context.Background(), f.owner.ID, p.ID, "new@example.com")
	if err != nil {
		t.Fatal(err)
	}
	second, err := f.svc.Invite(context.Background(), f.owner.ID, p.ID, "NEW@example.com")
	if err != nil {
		t.Fatal(err)
	}
	if second.ID != first.ID {
		t.Errorf("repeat invite created a new row: %d vs %d", second.ID, first.ID)
	}
	if len(f.enqueuer.InviteEmails) != 1 {
		t.Errorf("repeat invite re-sent email: %v", f.enqueuer.InviteEmails)
	}
}

func TestInviteExistingUserActivatesDirectly(t *testing.T) {
	f := newFixture(t)
	p := f.createProject(t, "Engineering", "ENG")
	joiner := f.users.Seed("joiner@example.com", "joiner")
	f.dispatcher.Events = nil

	view, err := f.svc.Invite(context.Background(), f.owner.ID, p.ID, "joiner@example.com")
	if err != nil {
		t.Fatal(err)
	}
	if view.Status != domain.MembershipActive || view.UserID == nil || *view.UserID != joiner.ID {
		t.Errorf("view = %+v", view)
	}
	if view.Role != domain.ProjectRoleMember {
		t.Errorf("role = %s", view.Role)
	}
	if len(memberAddedEvents(f.dispatcher)) != 1 {
		t.Error("direct activation should emit MemberAdded")
	}
	if len(f.enqueuer.InviteEmails) != 0 {
		t.Error("no email for a direct activation")
	}

	// Inviting an already-active member is a no-op returning the row.
	again, err := f.svc.Invite(context.Background(), f.owner.ID, p.ID, "joiner@example.com")
	if err != nil {
		t.Fatal(err)
	}
	if again.ID != view.ID {
		t.Errorf("second invite created row %d, want %d", again.ID, view.ID)
	}
	if len(memberAddedEvents(f.dispatcher)) != 1 {
		t.Error("no second MemberAdded for an active member")
	}
}

func TestAcceptInvite(t *testing.T) {
	f := newFixture(t)
	p := f.createProject(t, "Engineering", "ENG")
	if _, err := f.svc.Invite(context.Background(), f.owner.ID, p.ID, "new@example.com"); err != nil {
		t.Fatal(err)
	}
	token := strings.TrimPrefix(f.enqueuer.InviteURLs[0], inviteBase+"?token=")
	joiner := f.users.Seed("new@example.com", "newbie")
	f.dispatcher.Events = nil

	view, err := f.svc.AcceptInvite(context.Background(), joiner.ID, token)
	if err != nil {
		t.Fatal(err)
	}
	if view.Status != domain.MembershipActive || view.UserID == nil || *view.UserID != joiner.ID {
		t.Errorf("view = %+v", view)
	}
	if len(memberAddedEvents(f.dispatcher)) != 1 {
		t.Error("acceptance should emit MemberAdded")
	}
	if m, _ := f.memberships.GetByInviteToken(context.Background(), token); m != nil {
		t.Error("token should be cleared on acceptance")
	}
	active, _ := f.memberships.GetActive(context.Background(), p.ID, joiner.ID)
	if active == nil {
		t.Fatal("membership should be active after acceptance")
	}
	if active.InviteExpireAt != nil {
		t.Error("expiry should be cleared on acceptance")
	}
}

func TestAcceptInviteEmailMismatch(t *testing.T) {
	f := newFixture(t)
	p := f.createProject(t, "Engineering", "ENG")
	if _, err := f.svc.Invite(context.Background(), f.owner.ID, p.ID, "new@example.com"); err != nil {
		t.Fatal(err)
	}
	token := strings.TrimPrefix(f.enqueuer.InviteURLs[0], inviteBase+"?token=")
	impostor := f.users.Seed("other@example.com", "other")

	_, err := f.svc.AcceptInvite(context.Background(), impostor.ID, token)
	if err == nil || err.Error() != "Invite email does not match user" {
		t.Fatalf("got %v", err)
	}
	if !domerrors.IsKind(err, domerrors.KindBadRequest) {
		t.Errorf("kind = %v", domerrors.KindOf(err))
	}
}

func TestAcceptInviteUnknownToken(t *testing.T) {
	f := newFixture(t)
	joiner := f.users.Seed("new@example.com", "newbie")
	for _, token := range []string{"", "   ", "nope"} {
		_, err := f.svc.AcceptInvite(context.Background(), joiner.ID, token)
		if !domerrors.IsKind(err, domerrors.KindNotFound) {
			t.Errorf("token %q: %v", token, err)
			continue
		}
		if err.Error() != "Invite not found" {
			t.Errorf("token %q message = %q", token, err.Error())
		}
	}
}

func TestListMineAndGet(t *testing.T) {
	f := newFixture(t)
	p := f.createProject(t, "Engineering", "ENG")
	f.createProject(t, "Operations", "OPS")
	stranger := f.users.Seed("stranger@example.com", "stranger")

	page, err := f.svc.ListMine(context.Background(), f.owner.ID, 0, 20)
	if err != nil {
		t.Fatal(err)
	}
	if page.TotalElements != 2 {
		t.Errorf("total = %d", page.TotalElements)
	}

	empty, err := f.svc.ListMine(context.Background(), stranger.ID, 0, 20)
	if err != nil {
		t.Fatal(err)
	}
	if empty.TotalElements != 0 {
		t.Errorf("stranger sees %d projects", empty.TotalElements)
	}

	if _, err := f.svc.Get(context.Background(), stranger.ID, p.ID); !domerrors.IsKind(err, domerrors.KindForbidden) {
		t.Errorf("stranger get: %v", err)
	}
	got, err := f.svc.Get(context.Background(), f.owner.ID, p.ID)
	if err != nil || got.Prefix != "ENG" {
		t.Errorf("get = %+v, %v", got, err)
	}
}

func TestListMembers(t *testing.T) {
	f := newFixture(t)
	p := f.createProject(t, "Engineering", "ENG")
	member := f.users.Seed("member@example.com", "member")
	f.memberships.SeedActive(p.ID, member.ID, domain.ProjectRoleMember)
	if _, err := f.svc.Invite(context.Background(), f.owner.ID, p.ID, "pending@example.com"); err != nil {
		t.Fatal(err)
	}

	page, err := f.svc.ListMembers(context.Background(), member.ID, p.ID, 0, 20)
	if err != nil {
		t.Fatal(err)
	}
	if page.TotalElements != 2 {
		t.Errorf("active members = %d, want 2 (pending invite excluded)", page.TotalElements)
	}
}
