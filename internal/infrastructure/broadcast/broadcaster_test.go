package broadcast

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/jsmuster/isstrack/internal/domain"
)

type publishedTopic struct {
	Topic string
	Frame Frame
}

type publishedUser struct {
	UserID  domain.UserID
	Payload any
}

// recordingPublisher captures publishes in call order.
type recordingPublisher struct {
	Topics []publishedTopic
	Users  []publishedUser
}

func (p *recordingPublisher) PublishTopic(_ context.Context, topic string, payload any) error {
	p.Topics = append(p.Topics, publishedTopic{Topic: topic, Frame: payload.(Frame)})
	return nil
}

func (p *recordingPublisher) PublishUser(_ context.Context, userID domain.UserID, payload any) error {
	p.Users = append(p.Users, publishedUser{UserID: userID, Payload: payload})
	return nil
}

func routeOne(t *testing.T, ev domain.Event) *recordingPublisher {
	t.Helper()
	pub := &recordingPublisher{}
	b := NewBroadcaster(pub, zerolog.Nop())
	if err := b.route(context.Background(), ev); err != nil {
		t.Fatalf("route %T: %v", ev, err)
	}
	return pub
}

func TestRouteIssueCreated(t *testing.T) {
	now := time.Now()
	view := domain.IssueView{ID: 10, IssueKey: "ENG-001"}
	pub := routeOne(t, domain.IssueCreated{ProjectID: 7, IssueID: 10, Issue: view, At: now})

	if len(pub.Topics) != 1 || len(pub.Users) != 0 {
		t.Fatalf("publishes = %+v / %+v", pub.Topics, pub.Users)
	}
	got := pub.Topics[0]
	if got.Topic != "projects.7" {
		t.Errorf("topic = %q", got.Topic)
	}
	if got.Frame.Type != "ISSUE_CREATED" || !got.Frame.At.Equal(now) {
		t.Errorf("frame = %+v", got.Frame)
	}
	if got.Frame.Payload.(domain.IssueView).IssueKey != "ENG-001" {
		t.Errorf("payload = %+v", got.Frame.Payload)
	}
}

func TestRouteIssueUpdatedHitsBothTopics(t *testing.T) {
	pub := routeOne(t, domain.IssueUpdated{ProjectID: 7, IssueID: 10, At: time.Now()})
	if len(pub.Topics) != 2 {
		t.Fatalf("publishes = %+v", pub.Topics)
	}
	if pub.Topics[0].Topic != "projects.7" || pub.Topics[1].Topic != "issues.10" {
		t.Errorf("topics = %q, %q", pub.Topics[0].Topic, pub.Topics[1].Topic)
	}
	for _, p := range pub.Topics {
		if p.Frame.Type != "ISSUE_UPDATED" {
			t.Errorf("frame type = %q", p.Frame.Type)
		}
	}
}

func TestRouteTopicEvents(t *testing.T) {
	cases := []struct {
		ev    domain.Event
		topic string
		typ   string
	}{
		{domain.MemberAdded{ProjectID: 7, At: time.Now()}, "projects.7", "MEMBER_ADDED"},
		{domain.CommentAdded{IssueID: 10, At: time.Now()}, "issues.10", "COMMENT_ADDED"},
		{domain.ActivityLogged{IssueID: 10, At: time.Now()}, "issues.10", "ACTIVITY"},
	}
	for _, tc := range cases {
		pub := routeOne(t, tc.ev)
		if len(pub.Topics) != 1 {
			t.Errorf("%T: publishes = %+v", tc.ev, pub.Topics)
			continue
		}
		if pub.Topics[0].Topic != tc.topic || pub.Topics[0].Frame.Type != tc.typ {
			t.Errorf("%T: got (%q, %q), want (%q, %q)", tc.ev, pub.Topics[0].Topic, pub.Topics[0].Frame.Type, tc.topic, tc.typ)
		}
	}
}

func TestRouteIssueAssignedGoesToUserOnly(t *testing.T) {
	note := domain.NewIssueAssignedNotification(10, 7, "Crash on login")
	pub := routeOne(t, domain.IssueAssigned{AssigneeID: 42, Notification: note, At: time.Now()})

	if len(pub.Topics) != 0 {
		t.Errorf("assignment leaked to topics: %+v", pub.Topics)
	}
	if len(pub.Users) != 1 || pub.Users[0].UserID != 42 {
		t.Fatalf("user publishes = %+v", pub.Users)
	}
	if got := pub.Users[0].Payload.(domain.Notification); got.Type != "ISSUE_ASSIGNED" {
		t.Errorf("notification = %+v", got)
	}
}

func TestUserChannelName(t *testing.T) {
	if got := userChannel(42); got != "users.42.notifications" {
		t.Errorf("channel = %q", got)
	}
}

func TestDispatchDeliversAsynchronously(t *testing.T) {
	pub := &syncPublisher{done: make(chan struct{}, 1)}
	b := NewBroadcaster(pub, zerolog.Nop())
	b.Dispatch([]domain.Event{domain.IssueCreated{ProjectID: 7, IssueID: 10, At: time.Now()}})

	select {
	case <-pub.done:
	case <-time.After(2 * time.Second):
		t.Fatal("publish never happened")
	}
}

type syncPublisher struct{ done chan struct{} }

func (p *syncPublisher) PublishTopic(context.Context, string, any) error {
	p.done <- struct{}{}
	return nil
}

func (p *syncPublisher) PublishUser(context.Context, domain.UserID, any) error { return nil }
