// Package collector holds interactive sessions that wait for a user's next
// message in a channel, such as the two prompts of the say command.
package collector

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/oklog/ulid/v2"
)

var (
	ErrSessionActive = errors.New("a session is already waiting for this user in this channel")
	ErrTimeout       = errors.New("timed out waiting for a reply")
	ErrClosed        = errors.New("session closed")
)

type Stage int

const (
	AwaitingChannel Stage = iota
	AwaitingMessage
	Done
	TimedOut
)

func (s Stage) String() string {
	switch s {
	case AwaitingChannel:
		return "awaiting_channel"
	case AwaitingMessage:
		return "awaiting_message"
	case Done:
		return "done"
	case TimedOut:
		return "timed_out"
	}
	return "unknown"
}

// Key identifies whose reply a session waits for, and where.
type Key struct {
	GuildID   string
	ActorID   string
	ChannelID string
}

// KeyOf returns the key a message would answer.
func KeyOf(m *discordgo.Message) Key {
	k := Key{GuildID: m.GuildID, ChannelID: m.ChannelID}
	if m.Author != nil {
		k.ActorID = m.Author.ID
	}
	return k
}

type Session struct {
	ID        string
	Key       Key
	OpenedAt  time.Time
	ExpiresAt time.Time

	table   *Table
	stage   Stage
	waiting bool
	closed  bool
	inbox   chan *discordgo.Message
}

// Table is the set of live sessions. It is safe for concurrent use.
type Table struct {
	mu       sync.Mutex
	sessions map[Key]*Session
	now      func() time.Time
}

func New() *Table {
	return &Table{
		sessions: make(map[Key]*Session),
		now:      time.Now,
	}
}

// Open starts a session for key that expires after ttl. It fails with
// ErrSessionActive while another live session holds the same key.
func (t *Table) Open(key Key, ttl time.Duration) (*Session, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	if old, ok := t.sessions[key]; ok {
		if now.Before(old.ExpiresAt) {
			return nil, ErrSessionActive
		}
		old.closed = true
	}

	s := &Session{
		ID:        ulid.Make().String(),
		Key:       key,
		OpenedAt:  now,
		ExpiresAt: now.Add(ttl),
		table:     t,
		stage:     AwaitingChannel,
		inbox:     make(chan *discordgo.Message, 1),
	}
	t.sessions[key] = s
	return s, nil
}

// Offer hands m to the session waiting for it. It reports whether m was
// consumed; a consumed message must not be dispatched further.
func (t *Table) Offer(m *discordgo.Message) bool {
	if m == nil || m.Author == nil {
		return false
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	s, ok := t.sessions[KeyOf(m)]
	if !ok || !s.waiting || !t.now().Before(s.ExpiresAt) {
		return false
	}
	select {
	case s.inbox <- m:
		s.waiting = false
		return true
	default:
		return false
	}
}

// Sweep removes expired sessions and returns how many were removed.
func (t *Table) Sweep() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	n := 0
	for k, s := range t.sessions {
		if !now.Before(s.ExpiresAt) {
			s.closed = true
			delete(t.sessions, k)
			n++
		}
	}
	return n
}

// Len returns the number of sessions in the table, expired or not.
func (t *Table) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.sessions)
}

// RunSweeper calls Sweep every interval until ctx is done.
func RunSweeper(ctx context.Context, t *Table, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if n := t.Sweep(); n > 0 {
				slog.Debug("swept expired collector sessions", "count", n)
			}
		}
	}
}

func (s *Session) Stage() Stage {
	s.table.mu.Lock()
	defer s.table.mu.Unlock()
	return s.stage
}

// Await moves the session to stage and waits up to timeout for the next
// matching message.
func (s *Session) Await(ctx context.Context, stage Stage, timeout time.Duration) (*discordgo.Message, error) {
	s.table.mu.Lock()
	if s.closed {
		s.table.mu.Unlock()
		return nil, ErrClosed
	}
	s.stage = stage
	s.waiting = true
	s.table.mu.Unlock()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case m := <-s.inbox:
		return m, nil
	case <-timer.C:
	case <-ctx.Done():
	}

	s.table.mu.Lock()
	defer s.table.mu.Unlock()
	s.waiting = false
	// Offer may have delivered between the timer firing and the lock.
	select {
	case m := <-s.inbox:
		return m, nil
	default:
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.stage = TimedOut
	return nil, ErrTimeout
}

// Close removes the session from its table. Close is idempotent.
func (s *Session) Close() {
	t := s.table
	t.mu.Lock()
	defer t.mu.Unlock()

	if s.stage != TimedOut {
		s.stage = Done
	}
	s.closed = true
	s.waiting = false
	if cur, ok := t.sessions[s.Key]; ok && cur == s {
		delete(t.sessions, s.Key)
	}
}
