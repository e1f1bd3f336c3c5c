// Package autorole keeps the (message, emoji) → role bindings created by the
// autorole command and applies them when members react.
package autorole

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/keshon/modbot/internal/bot"
	"github.com/keshon/modbot/internal/storage"
)

var ErrDuplicateBinding = errors.New("autorole binding already exists for this message and emoji")

// Binding grants RoleID to members reacting with Emoji on MessageID.
// Emoji is stored in the normalised form returned by bot.EmojiKey.
type Binding struct {
	GuildID   string
	MessageID string
	Emoji     string
	RoleID    string
}

type key struct {
	messageID string
	emoji     string
}

// Store persists bindings. *storage.Storage implements it.
type Store interface {
	AddAutoroles(records ...storage.AutoroleRecord) error
	AllAutoroles() ([]storage.AutoroleRecord, error)
}

// Registry is the in-memory binding table shared by the autorole command and
// the reaction router. It is safe for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	bindings map[key]Binding
	store    Store
}

// NewRegistry returns an empty registry. store may be nil, in which case
// bindings live only as long as the process.
func NewRegistry(store Store) *Registry {
	return &Registry{
		bindings: make(map[key]Binding),
		store:    store,
	}
}

// Load fills the registry from the store. Duplicate stored bindings keep the first.
func (r *Registry) Load() (int, error) {
	if r.store == nil {
		return 0, nil
	}
	records, err := r.store.AllAutoroles()
	if err != nil {
		return 0, fmt.Errorf("failed to load autoroles: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	loaded := 0
	for _, rec := range records {
		k := key{rec.MessageID, bot.EmojiKey(rec.Emoji)}
		if _, exists := r.bindings[k]; exists {
			continue
		}
		r.bindings[k] = Binding{GuildID: rec.GuildID, MessageID: rec.MessageID, Emoji: k.emoji, RoleID: rec.RoleID}
		loaded++
	}
	return loaded, nil
}

// Add inserts bindings all-or-nothing: if any (message, emoji) pair is already
// bound, or repeats within bindings, nothing is added and ErrDuplicateBinding is
// returned. A store failure is logged; the in-memory bindings stay active.
func (r *Registry) Add(bindings ...Binding) error {
	r.mu.Lock()
	pending := make(map[key]Binding, len(bindings))
	for _, b := range bindings {
		b.Emoji = bot.EmojiKey(b.Emoji)
		k := key{b.MessageID, b.Emoji}
		if _, exists := r.bindings[k]; exists {
			r.mu.Unlock()
			return fmt.Errorf("%w: %s on %s", ErrDuplicateBinding, b.Emoji, b.MessageID)
		}
		if _, exists := pending[k]; exists {
			r.mu.Unlock()
			return fmt.Errorf("%w: %s on %s", ErrDuplicateBinding, b.Emoji, b.MessageID)
		}
		pending[k] = b
	}
	for k, b := range pending {
		r.bindings[k] = b
	}
	r.mu.Unlock()

	if r.store != nil {
		now := time.Now().UTC()
		records := make([]storage.AutoroleRecord, 0, len(bindings))
		for _, b := range bindings {
			records = append(records, storage.AutoroleRecord{
				GuildID:   b.GuildID,
				MessageID: b.MessageID,
				Emoji:     bot.EmojiKey(b.Emoji),
				RoleID:    b.RoleID,
				CreatedAt: now,
			})
		}
		if err := r.store.AddAutoroles(records...); err != nil {
			slog.Error("failed to persist autorole bindings", "count", len(records), "err", err)
		}
	}
	return nil
}

// Lookup returns the binding for a resolved reaction.
func (r *Registry) Lookup(re Reaction) (Binding, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.bindings[key{re.MessageID, re.Emoji}]
	return b, ok
}

// Len returns the number of bindings.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.bindings)
}
