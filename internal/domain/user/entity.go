package user

import "time"

type Role string

const (
	RoleAdmin   Role = "admin"   // Full access across business units
	RoleManager Role = "manager" // Team view and approvals within own business unit
	RoleMember  Role = "member"  // Regular staff
	RoleViewer  Role = "viewer"  // Read-only account
	RoleArtist  Role = "artist"  // Managed talent, not part of attendance
)

// Business unit codes
const (
	BUHead  = "HEAD"
	BUGrigo = "GRIGO"
	BUReact = "REACT"
	BUFlow  = "FLOW"
	BUAst   = "AST"
	BUModoo = "MODOO"
)

var BUCodes = []string{BUHead, BUGrigo, BUReact, BUFlow, BUAst, BUModoo}

type AppUser struct {
	ID        string
	Name      string
	Email     string
	Role      Role
	BUCode    *string
	Position  *string
	HireDate  *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// BU returns the business unit code or an empty string.
func (u *AppUser) BU() string {
	if u == nil || u.BUCode == nil {
		return ""
	}
	return *u.BUCode
}

// TracksAttendance reports whether the user takes part in attendance.
func (u *AppUser) TracksAttendance() bool {
	return u != nil && u.Role != RoleArtist
}
