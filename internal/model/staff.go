package model

import "time"

// Staff is a member of the business's staff as managed through the backend.
type Staff struct {
	ID        string     `json:"id"`
	FullName  string     `json:"full_name"`
	Email     string     `json:"email"`
	Phone     string     `json:"phone"`
	Role      string     `json:"role"`
	IDNumber  string     `json:"id_number"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
	Blocked   bool       `json:"blocked"`
}

// StaffInput is the payload for updating a staff member.
type StaffInput struct {
	FullName    string `json:"full_name"`
	PhoneNumber string `json:"phone_number"`
	Role        string `json:"role"`
	IDNumber    string `json:"id_number"`
	Email       string `json:"email"`
}

// InviteInput is the payload for inviting a new staff member.
type InviteInput struct {
	Email      string        `json:"email"`
	RedirectTo string        `json:"redirectTo"`
	Profile    InviteProfile `json:"profile"`
}

// InviteProfile is the profile created alongside an invitation.
type InviteProfile struct {
	FullName    string `json:"full_name"`
	PhoneNumber string `json:"phone_number"`
	Role        string `json:"role"`
	IDNumber    string `json:"id_number"`
}

// Roles.
const (
	RoleAdmin   = "admin"
	RoleManager = "manager"
	RoleStaff   = "staff"
)

// Roles lists the assignable roles, most privileged first.
var Roles = []string{RoleAdmin, RoleManager, RoleStaff}

// RoleAtLeast checks if role meets or exceeds the minimum required role.
func RoleAtLeast(role, minimum string) bool {
	levels := map[string]int{
		RoleAdmin:   3,
		RoleManager: 2,
		RoleStaff:   1,
	}
	return levels[role] >= levels[minimum] && levels[minimum] > 0
}
