package autorole

import (
	"log/slog"

	"github.com/keshon/modbot/internal/bot"
	"github.com/keshon/modbot/internal/metrics"
)

// Outcome reports what Router.Handle did with a reaction.
type Outcome int

const (
	Ignored Outcome = iota
	Unresolved
	Unbound
	MemberMissing
	Applied
	Failed
)

func (o Outcome) String() string {
	switch o {
	case Unresolved:
		return "unresolved"
	case Unbound:
		return "unbound"
	case MemberMissing:
		return "member_missing"
	case Applied:
		return "applied"
	case Failed:
		return "failed"
	default:
		return "ignored"
	}
}

// Router turns reactions on bound messages into role grants and removals.
type Router struct {
	session  bot.Session
	registry *Registry
	metrics  *metrics.Metrics
}

func NewRouter(s bot.Session, reg *Registry, m *metrics.Metrics) *Router {
	return &Router{session: s, registry: reg, metrics: m}
}

// Handle processes one reaction. selfID is the bot's own user id; its
// reactions (placed by the autorole command) are never routed.
func (r *Router) Handle(p Partial, selfID string) Outcome {
	if p.UserID == "" || p.UserID == selfID {
		return Ignored
	}
	if p.Member != nil && p.Member.User != nil && p.Member.User.Bot {
		return Ignored
	}

	re, err := p.Resolve(r.session)
	if err != nil {
		slog.Warn("failed to resolve reaction", "message", p.MessageID, "err", err)
		return Unresolved
	}

	b, ok := r.registry.Lookup(re)
	if !ok {
		return Unbound
	}

	member, err := re.FetchMember(r.session)
	if err != nil {
		slog.Debug("skipping autorole", "guild", re.GuildID, "user", re.UserID, "err", err)
		return MemberMissing
	}
	if member.User != nil && member.User.Bot {
		return Ignored
	}

	switch re.Action {
	case ActionRemove:
		err = r.session.GuildMemberRoleRemove(re.GuildID, re.UserID, b.RoleID)
	default:
		err = r.session.GuildMemberRoleAdd(re.GuildID, re.UserID, b.RoleID)
	}
	if err != nil {
		slog.Error("failed to update autorole",
			"action", re.Action.String(),
			"guild", re.GuildID,
			"user", re.UserID,
			"role", b.RoleID,
			"err", err,
		)
		r.metrics.RoleMutation(re.Action.String(), "error")
		return Failed
	}

	slog.Info("autorole updated",
		"action", re.Action.String(),
		"guild", re.GuildID,
		"user", re.UserID,
		"role", b.RoleID,
	)
	r.metrics.RoleMutation(re.Action.String(), "ok")
	return Applied
}
