package user

// Decision is the outcome of an authorization check.
type Decision int

const (
	Deny Decision = iota
	Allow
)

func (d Decision) Allowed() bool { return d == Allow }

// PolicyInput describes one acting user against one target.
type PolicyInput struct {
	ActorRole Role
	ActorBU   string
	TargetBU  string
	// Self is true when the actor is the target user.
	Self bool
	// AllowSelf lets Self short-circuit to Allow.
	AllowSelf bool
}

// Evaluate is the single business-unit scoped rule behind every attendance
// and approval gate: self (when allowed), then admin, then same-BU manager.
func Evaluate(in PolicyInput) Decision {
	if in.AllowSelf && in.Self {
		return Allow
	}
	if in.ActorRole == "" || in.TargetBU == "" {
		return Deny
	}
	switch in.ActorRole {
	case RoleAdmin:
		return Allow
	case RoleManager:
		if in.ActorBU != "" && in.ActorBU == in.TargetBU {
			return Allow
		}
	}
	return Deny
}

func input(actor *AppUser, targetBU string) PolicyInput {
	return PolicyInput{ActorRole: actor.Role, ActorBU: actor.BU(), TargetBU: targetBU}
}

func IsAdmin(u *AppUser) bool {
	return u != nil && u.Role == RoleAdmin
}

func IsManager(u *AppUser) bool {
	return u != nil && (u.Role == RoleManager || IsAdmin(u))
}

func IsMember(u *AppUser) bool {
	return u != nil && (u.Role == RoleMember || IsManager(u))
}

// CanViewAllAttendance reports access to every business unit's attendance.
func CanViewAllAttendance(u *AppUser) bool {
	return IsAdmin(u)
}

// CanViewTeamAttendance reports whether actor may see attendance of users in targetBU.
func CanViewTeamAttendance(actor *AppUser, targetBU string) bool {
	if actor == nil {
		return false
	}
	return Evaluate(input(actor, targetBU)).Allowed()
}

// CanApproveRequest reports whether actor may approve or reject a request
// filed by someone in requesterBU.
func CanApproveRequest(actor *AppUser, requesterBU string) bool {
	if actor == nil {
		return false
	}
	return Evaluate(input(actor, requesterBU)).Allowed()
}

// CanModifyAttendance reports whether actor may edit the target user's logs.
func CanModifyAttendance(actor *AppUser, targetUserID, targetBU string) bool {
	if actor == nil {
		return false
	}
	in := input(actor, targetBU)
	in.Self = actor.ID != "" && actor.ID == targetUserID
	in.AllowSelf = true
	return Evaluate(in).Allowed()
}

// CanAccessAttendanceLog reports whether actor may read the target user's logs.
func CanAccessAttendanceLog(actor *AppUser, targetUserID, targetBU string) bool {
	return CanModifyAttendance(actor, targetUserID, targetBU)
}

type Permission string

const (
	PermissionAttendanceViewAll Permission = "attendance.view_all"
	PermissionAttendanceDelete  Permission = "attendance.delete"
	PermissionAttendanceTeam    Permission = "attendance.team"
	PermissionLeaveGrant        Permission = "leave.grant"
	PermissionLeaveTeam         Permission = "leave.team"
)

// RolePermissions maps roles to their route-level permissions.
var RolePermissions = map[Role][]Permission{
	RoleAdmin: {
		PermissionAttendanceViewAll,
		PermissionAttendanceDelete,
		PermissionAttendanceTeam,
		PermissionLeaveGrant,
		PermissionLeaveTeam,
	},
	RoleManager: {
		PermissionAttendanceTeam,
		PermissionLeaveTeam,
	},
	RoleMember: {},
	RoleViewer: {},
}

// HasPermission checks if a role has a specific permission
func HasPermission(role Role, permission Permission) bool {
	permissions, exists := RolePermissions[role]
	if !exists {
		return false
	}

	for _, p := range permissions {
		if p == permission {
			return true
		}
	}

	return false
}
