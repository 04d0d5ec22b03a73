// Package tag deduplicates free-text tags into canonical tag records.
package tag

import (
	"context"
	"regexp"
	"sort"
	"strings"

	"github.com/jsmuster/isstrack/internal/application/ports"
	"github.com/jsmuster/isstrack/internal/domain"
	domerrors "github.com/jsmuster/isstrack/internal/domain/errors"
)

var whitespacePattern = regexp.MustCompile(`\s+`)

// Normalizer resolves raw tag input to persisted tag rows.
type Normalizer struct {
	tags ports.TagRepository
}

func NewNormalizer(tags ports.TagRepository) *Normalizer {
	return &Normalizer{tags: tags}
}

// Normalize canonicalizes one raw tag: trim, lowercase, internal
// whitespace collapsed to single spaces.
func Normalize(raw string) string {
	return whitespacePattern.ReplaceAllString(strings.ToLower(strings.TrimSpace(raw)), " ")
}

// NormalizeAndSave canonicalizes the raw tags, collapses duplicates and
// find-or-creates a global tag row for each distinct name. Nil or empty
// input is a no-op. A tag that is blank after trimming fails BadRequest.
// Callers replace the issue-tag links themselves.
func (n *Normalizer) NormalizeAndSave(ctx context.Context, rawTags []string) ([]*domain.Tag, error) {
	if len(rawTags) == 0 {
		return []*domain.Tag{}, nil
	}
	seen := make(map[string]struct{}, len(rawTags))
	for _, raw := range rawTags {
		value := Normalize(raw)
		if value == "" {
			return nil, domerrors.BadRequest("Tag name cannot be blank")
		}
		seen[value] = struct{}{}
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)

	results := make([]*domain.Tag, 0, len(names))
	for _, name := range names {
		t, err := n.tags.Upsert(ctx, name)
		if err != nil {
			return nil, err
		}
		results = append(results, t)
	}
	return results, nil
}
