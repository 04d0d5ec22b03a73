package events

import (
	"testing"
	"time"

	"github.com/jsmuster/isstrack/internal/domain"
)

func TestOutboxStagesInOrder(t *testing.T) {
	var out Outbox
	if out.Len() != 0 {
		t.Errorf("zero value Len = %d", out.Len())
	}
	out.Add(domain.IssueCreated{ProjectID: 1, IssueID: 10, At: time.Now()})
	out.Add(domain.ActivityLogged{IssueID: 10, At: time.Now()})
	out.Add(domain.CommentAdded{IssueID: 10, At: time.Now()})
	if out.Len() != 3 {
		t.Fatalf("Len = %d", out.Len())
	}

	evs := out.Drain()
	if len(evs) != 3 {
		t.Fatalf("drained %d events", len(evs))
	}
	if _, ok := evs[0].(domain.IssueCreated); !ok {
		t.Errorf("first event = %T", evs[0])
	}
	if _, ok := evs[2].(domain.CommentAdded); !ok {
		t.Errorf("last event = %T", evs[2])
	}

	if out.Len() != 0 || out.Drain() != nil {
		t.Error("Drain must empty the outbox")
	}
}
