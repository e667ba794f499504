package user

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func strPtr(s string) *string { return &s }

func newUser(id string, role Role, bu string) *AppUser {
	u := &AppUser{ID: id, Role: role}
	if bu != "" {
		u.BUCode = strPtr(bu)
	}
	return u
}

func TestRoleHierarchy(t *testing.T) {
	admin := newUser("a", RoleAdmin, BUHead)
	manager := newUser("m", RoleManager, BUFlow)
	member := newUser("u", RoleMember, BUFlow)
	viewer := newUser("v", RoleViewer, BUFlow)

	assert.True(t, IsAdmin(admin))
	assert.True(t, IsManager(admin))
	assert.True(t, IsMember(admin))

	assert.False(t, IsAdmin(manager))
	assert.True(t, IsManager(manager))
	assert.True(t, IsMember(manager))

	assert.False(t, IsManager(member))
	assert.True(t, IsMember(member))

	assert.False(t, IsMember(viewer))
	assert.False(t, IsMember(nil))
	assert.True(t, CanViewAllAttendance(admin))
	assert.False(t, CanViewAllAttendance(manager))
}

func TestCanViewTeamAttendance_AdminOrSameUnitManager(t *testing.T) {
	roles := []Role{RoleAdmin, RoleManager, RoleMember, RoleViewer, RoleArtist}
	for _, role := range roles {
		for _, actorBU := range append([]string{""}, BUCodes...) {
			for _, target := range BUCodes {
				actor := newUser("actor", role, actorBU)
				want := IsAdmin(actor) || (IsManager(actor) && actor.BU() == target)
				got := CanViewTeamAttendance(actor, target)
				assert.Equal(t, want, got, "role=%s actorBU=%q target=%s", role, actorBU, target)
				assert.Equal(t, want, CanApproveRequest(actor, target), "approve role=%s actorBU=%q target=%s", role, actorBU, target)
			}
		}
	}
}

func TestCanViewTeamAttendance_MissingArguments(t *testing.T) {
	assert.False(t, CanViewTeamAttendance(nil, BUFlow))
	assert.False(t, CanViewTeamAttendance(newUser("a", RoleAdmin, BUHead), ""))
	assert.False(t, CanApproveRequest(newUser("m", RoleManager, ""), ""))
}

func TestCanModifyAttendance_SelfAlwaysAllowed(t *testing.T) {
	for _, role := range []Role{RoleAdmin, RoleManager, RoleMember, RoleViewer, RoleArtist, ""} {
		for _, bu := range append([]string{""}, BUCodes...) {
			u := newUser("self", role, bu)
			assert.True(t, CanModifyAttendance(u, u.ID, bu), "role=%s bu=%q", role, bu)
			assert.True(t, CanModifyAttendance(u, u.ID, BUGrigo), "role=%s bu=%q", role, bu)
		}
	}
}

func TestCanModifyAttendance_Others(t *testing.T) {
	tests := []struct {
		name     string
		actor    *AppUser
		targetBU string
		want     bool
	}{
		{"admin any unit", newUser("a", RoleAdmin, BUHead), BUReact, true},
		{"manager same unit", newUser("m", RoleManager, BUReact), BUReact, true},
		{"manager other unit", newUser("m", RoleManager, BUReact), BUFlow, false},
		{"member", newUser("u", RoleMember, BUReact), BUReact, false},
		{"nil actor", nil, BUReact, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanModifyAttendance(tt.actor, "target", tt.targetBU))
		})
	}
}

func TestEvaluate(t *testing.T) {
	assert.Equal(t, Allow, Evaluate(PolicyInput{Self: true, AllowSelf: true}))
	assert.Equal(t, Deny, Evaluate(PolicyInput{Self: true}))
	assert.Equal(t, Deny, Evaluate(PolicyInput{ActorRole: RoleManager, TargetBU: BUAst}))
	assert.Equal(t, Allow, Evaluate(PolicyInput{ActorRole: RoleManager, ActorBU: BUAst, TargetBU: BUAst}))
}

func TestHasPermission(t *testing.T) {
	assert.True(t, HasPermission(RoleAdmin, PermissionLeaveGrant))
	assert.False(t, HasPermission(RoleManager, PermissionLeaveGrant))
	assert.True(t, HasPermission(RoleManager, PermissionLeaveTeam))
	assert.False(t, HasPermission(RoleMember, PermissionAttendanceTeam))
	assert.False(t, HasPermission(Role("unknown"), PermissionAttendanceTeam))
}
