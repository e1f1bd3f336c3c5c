package permission

import (
	"github.com/bwmarrin/discordgo"
)

// AllPermissions is what the guild owner and administrators effectively hold.
const AllPermissions int64 = ^int64(0)

// GuildPermissions computes member's guild-level permissions from the @everyone
// role and the member's roles, without channel overwrites.
func GuildPermissions(guild *discordgo.Guild, member *discordgo.Member) int64 {
	if guild == nil || member == nil {
		return 0
	}
	if member.User != nil && member.User.ID == guild.OwnerID {
		return AllPermissions
	}

	var perms int64
	for _, r := range guild.Roles {
		if r.ID == guild.ID {
			perms |= r.Permissions
			break
		}
	}
	for _, id := range member.Roles {
		if r := findRole(guild, id); r != nil {
			perms |= r.Permissions
		}
	}
	if perms&discordgo.PermissionAdministrator != 0 {
		return AllPermissions
	}
	return perms
}

// ActorFor builds the permission snapshot for member in guild.
func ActorFor(guild *discordgo.Guild, userID string, member *discordgo.Member) Actor {
	a := Actor{UserID: userID}
	if member == nil {
		return a
	}
	if member.User == nil {
		// Message-create payloads carry a member without its user.
		member = &discordgo.Member{User: &discordgo.User{ID: userID}, Roles: member.Roles}
	}
	a.RoleIDs = member.Roles
	a.Permissions = GuildPermissions(guild, member)
	return a
}

// HighestPosition returns the position of member's highest role, 0 for @everyone only.
func HighestPosition(guild *discordgo.Guild, member *discordgo.Member) int {
	highest := 0
	for _, id := range member.Roles {
		if r := findRole(guild, id); r != nil && r.Position > highest {
			highest = r.Position
		}
	}
	return highest
}

// CanModerate reports whether self may apply an action requiring perm to target:
// the target is neither the owner nor self, self holds perm, and self's highest
// role sits strictly above the target's.
func CanModerate(guild *discordgo.Guild, self, target *discordgo.Member, perm int64) bool {
	if guild == nil || self == nil || target == nil || self.User == nil || target.User == nil {
		return false
	}
	if target.User.ID == guild.OwnerID || target.User.ID == self.User.ID {
		return false
	}
	if !HasAny(GuildPermissions(guild, self), perm) {
		return false
	}
	if self.User.ID == guild.OwnerID {
		return true
	}
	return HighestPosition(guild, self) > HighestPosition(guild, target)
}

func findRole(guild *discordgo.Guild, id string) *discordgo.Role {
	for _, r := range guild.Roles {
		if r.ID == id {
			return r
		}
	}
	return nil
}
