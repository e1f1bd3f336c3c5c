// Package permission decides who may run moderation commands and whether the
// bot outranks a member it is asked to act on.
package permission

import (
	"slices"

	"github.com/bwmarrin/discordgo"
	"github.com/samber/mo"
)

// ModerationPermissions are the native capabilities that count as moderator
// access when the bot is not restricted to the moderator role.
var ModerationPermissions = []int64{
	discordgo.PermissionBanMembers,
	discordgo.PermissionKickMembers,
	discordgo.PermissionManageRoles,
	discordgo.PermissionModerateMembers,
}

// Actor is a snapshot of the invoking member taken at invocation time.
type Actor struct {
	UserID      string
	RoleIDs     []string
	Permissions int64
}

// HasRole reports whether the actor holds roleID.
func (a Actor) HasRole(roleID string) bool {
	return slices.Contains(a.RoleIDs, roleID)
}

// Evaluator gates moderation commands.
type Evaluator struct {
	modRole     mo.Option[string]
	modRoleOnly bool
}

func NewEvaluator(modRole mo.Option[string], requireModRoleOnly bool) *Evaluator {
	return &Evaluator{modRole: modRole, modRoleOnly: requireModRoleOnly}
}

// IsAuthorized reports whether a may invoke moderation commands.
//
// With requireModRoleOnly set, only holders of the configured moderator role
// pass, and nobody passes when no role is configured. Otherwise the moderator
// role or any of ModerationPermissions is enough.
func (e *Evaluator) IsAuthorized(a Actor) bool {
	roleID, hasModRole := e.modRole.Get()
	if e.modRoleOnly {
		return hasModRole && a.HasRole(roleID)
	}
	if hasModRole && a.HasRole(roleID) {
		return true
	}
	return HasAny(a.Permissions, ModerationPermissions...)
}

// HasAny reports whether perms grants any of want. Administrator grants all.
func HasAny(perms int64, want ...int64) bool {
	if perms&discordgo.PermissionAdministrator != 0 {
		return true
	}
	for _, p := range want {
		if perms&p != 0 {
			return true
		}
	}
	return false
}
