package domain

import (
	"strconv"
	"time"
)

// MembershipID is a value object for membership identity.
type MembershipID int64

// String returns the canonical decimal form.
func (m MembershipID) String() string { return strconv.FormatInt(int64(m), 10) }

// ProjectRole is the per-project role set.
type ProjectRole string

const (
	ProjectRoleOwner  ProjectRole = "OWNER"
	ProjectRoleMember ProjectRole = "MEMBER"
)

// MembershipStatus is the membership lifecycle state.
type MembershipStatus string

const (
	MembershipInvited MembershipStatus = "INVITED"
	MembershipActive  MembershipStatus = "ACTIVE"
)

// Membership links a user (or an invited email, before acceptance) to a
// project. At most one ACTIVE row per (project, user); at most one live
// INVITED row per (project, invitedEmail). An INVITED row has no UserID
// and carries the invite token and expiry until acceptance clears them.
type Membership struct {
	ID             MembershipID
	ProjectID      ProjectID
	UserID         *UserID
	Role           ProjectRole
	Status         MembershipStatus
	InvitedEmail   string
	InviteToken    string
	InviterID      UserID
	InviteExpireAt *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
	Version        int32
}

// MembershipView is the outward JSON shape for a membership. The invite
// token is never exposed here; it travels only through the invite email.
type MembershipView struct {
	ID           MembershipID     `json:"id"`
	ProjectID    ProjectID        `json:"projectId"`
	UserID       *UserID          `json:"userId"`
	InvitedEmail string           `json:"invitedEmail,omitempty"`
	Role         ProjectRole      `json:"role"`
	Status       MembershipStatus `json:"status"`
	CreatedAt    time.Time        `json:"createdAt"`
}

// ToView strips the invite token and expiry.
func (m *Membership) ToView() MembershipView {
	return MembershipView{
		ID:           m.ID,
		ProjectID:    m.ProjectID,
		UserID:       m.UserID,
		InvitedEmail: m.InvitedEmail,
		Role:         m.Role,
		Status:       m.Status,
		CreatedAt:    m.CreatedAt,
	}
}
