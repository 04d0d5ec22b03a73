package domain

import "strconv"

// TagID is a value object for tag identity.
type TagID int64

// String returns the canonical decimal form.
func (t TagID) String() string { return strconv.FormatInt(int64(t), 10) }

// Tag is a global label shared across projects. Names are stored in
// normalized (lowercase, single-spaced) form and unique.
type Tag struct {
	ID   TagID
	Name string
}
