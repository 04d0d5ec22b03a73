package domain

import (
	"regexp"
	"strconv"
	"time"
)

// ProjectID is a value object for project identity.
type ProjectID int64

// String returns the canonical decimal form.
func (p ProjectID) String() string { return strconv.FormatInt(int64(p), 10) }

// prefixPattern constrains project prefixes: uppercase alphanumeric,
// starting with a letter, 2-10 chars. Used to derive issue keys.
var prefixPattern = regexp.MustCompile(`^[A-Z][A-Z0-9]{1,9}$`)

// ValidPrefix reports whether s is an acceptable project prefix.
func ValidPrefix(s string) bool { return prefixPattern.MatchString(s) }

// Project is a tenant boundary: it owns memberships and issues.
type Project struct {
	ID        ProjectID
	Name      string
	Prefix    string
	OwnerID   UserID
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ProjectView is the outward JSON shape for a project.
type ProjectView struct {
	ID         ProjectID `json:"id"`
	Name       string    `json:"name"`
	Prefix     string    `json:"prefix"`
	OwnerID    UserID    `json:"ownerUserId"`
	OwnerEmail string    `json:"ownerEmail"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}
