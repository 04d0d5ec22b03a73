package domain

import (
	"strconv"
	"time"
)

// UserID is a value object for user identity.
type UserID int64

// String returns the canonical decimal form.
func (u UserID) String() string { return strconv.FormatInt(int64(u), 10) }

// UserRole is the fixed global role set.
type UserRole string

const (
	RoleAdmin UserRole = "ADMIN"
	RoleUser  UserRole = "USER"
)

// User is a registered account. Never hard-deleted by the core.
type User struct {
	ID           UserID
	Email        string
	Username     string
	PasswordHash string
	FirstName    string
	LastName     string
	Role         UserRole
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// View is the outward JSON shape for a user (no credential fields).
type UserView struct {
	ID        UserID   `json:"id"`
	Email     string   `json:"email"`
	Username  string   `json:"username"`
	FirstName string   `json:"firstName"`
	LastName  string   `json:"lastName"`
	Role      UserRole `json:"role"`
}

// ToView strips credential fields.
func (u *User) ToView() UserView {
	return UserView{
		ID:        u.ID,
		Email:     u.Email,
		Username:  u.Username,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Role:      u.Role,
	}
}
