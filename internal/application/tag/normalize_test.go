package tag

import (
	"context"
	"testing"

	"github.com/jsmuster/isstrack/internal/application/apptest"
	domerrors "github.com/jsmuster/isstrack/internal/domain/errors"
)

func TestNormalize(t *testing.T) {
	cases := map[string]string{
		"Backend":        "backend",
		" backend ":      "backend",
		"BACKEND":        "backend",
		"needs   triage": "needs triage",
		"Needs\tTriage":  "needs triage",
		"  ":             "",
	}
	for in, want := range cases {
		if got := Normalize(in); got != want {
			t.Errorf("Normalize(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestNormalizeAndSaveDedupes(t *testing.T) {
	repo := apptest.NewTagRepo()
	n := NewNormalizer(repo)

	tags, err := n.NormalizeAndSave(context.Background(), []string{"Backend", " backend ", "BACKEND", "api"})
	if err != nil {
		t.Fatal(err)
	}
	if len(tags) != 2 {
		t.Fatalf("got %d tags, want 2", len(tags))
	}
	// Sorted by name.
	if tags[0].Name != "api" || tags[1].Name != "backend" {
		t.Errorf("tags = [%s, %s]", tags[0].Name, tags[1].Name)
	}

	// A second save resolves to the same rows.
	again, err := n.NormalizeAndSave(context.Background(), []string{"backend"})
	if err != nil {
		t.Fatal(err)
	}
	if again[0].ID != tags[1].ID {
		t.Error("re-saving an existing tag should reuse its row")
	}
}

func TestNormalizeAndSaveBlankTag(t *testing.T) {
	n := NewNormalizer(apptest.NewTagRepo())
	_, err := n.NormalizeAndSave(context.Background(), []string{"backend", "   "})
	if !domerrors.IsKind(err, domerrors.KindBadRequest) {
		t.Fatalf("blank tag should be BadRequest, got %v", err)
	}
	if err.Error() != "Tag name cannot be blank" {
		t.Errorf("message = %q", err.Error())
	}
}

func TestNormalizeAndSaveEmptyInput(t *testing.T) {
	n := NewNormalizer(apptest.NewTagRepo())
	tags, err := n.NormalizeAndSave(context.Background(), nil)
	if err != nil || len(tags) != 0 {
		t.Fatalf("nil input: tags=%v err=%v", tags, err)
	}
}
