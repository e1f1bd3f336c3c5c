package storage

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gofrs/flock"
	"github.com/keshon/datastore"
)

const (
	commandHistoryLimit int = 50

	autorolesKey     = "autoroles"
	historyKeyPrefix = "history:"

	saveInterval = 30 * time.Second
)

// ErrLocked is returned by New when another process holds the storage file.
var ErrLocked = errors.New("storage file is in use by another process")

type Storage struct {
	ds     *datastore.DataStore
	lock   *flock.Flock
	cancel context.CancelFunc

	// mu serialises read-modify-write updates of list values.
	mu sync.Mutex
}

type CommandHistoryRecord struct {
	ID        string    `json:"id"`
	ChannelID string    `json:"channel_id"`
	UserID    string    `json:"user_id"`
	Username  string    `json:"username"`
	Command   string    `json:"command"`
	Args      string    `json:"args"`
	Datetime  time.Time `json:"datetime"`
}

type AutoroleRecord struct {
	GuildID   string    `json:"guild_id"`
	MessageID string    `json:"message_id"`
	Emoji     string    `json:"emoji"`
	RoleID    string    `json:"role_id"`
	CreatedAt time.Time `json:"created_at"`
}

// New opens the JSON datastore at filePath, taking an exclusive lock on
// filePath.lock for as long as the storage stays open. The datastore flushes
// to disk every saveInterval and on Close.
func New(filePath string) (*Storage, error) {
	lock := flock.New(filePath + ".lock")
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("failed to lock storage: %w", err)
	}
	if !locked {
		return nil, ErrLocked
	}

	ctx, cancel := context.WithCancel(context.Background())
	ds, err := datastore.New(ctx, filePath, datastore.WithSaveInterval(saveInterval))
	if err != nil {
		cancel()
		_ = lock.Unlock()
		return nil, err
	}
	return &Storage{ds: ds, lock: lock, cancel: cancel}, nil
}

// Close stops the autosave loop, writes the final snapshot and releases the lock.
func (s *Storage) Close() error {
	s.cancel()
	err := s.ds.Close()
	if uerr := s.lock.Unlock(); uerr != nil && err == nil {
		err = uerr
	}
	return err
}

func (s *Storage) load(key string, out any) error {
	if _, err := s.ds.Get(key, out); err != nil {
		return fmt.Errorf("failed to read %s: %w", key, err)
	}
	return nil
}

// AppendCommandToHistory appends a command history record for a guild,
// keeping only the most recent entries.
func (s *Storage) AppendCommandToHistory(guildID string, record CommandHistoryRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	history, err := s.FetchCommandHistory(guildID)
	if err != nil {
		return err
	}

	history = append(history, record)
	if len(history) > commandHistoryLimit {
		history = history[len(history)-commandHistoryLimit:]
	}
	return s.ds.Set(historyKeyPrefix+guildID, history)
}

func (s *Storage) FetchCommandHistory(guildID string) ([]CommandHistoryRecord, error) {
	var history []CommandHistoryRecord
	if err := s.load(historyKeyPrefix+guildID, &history); err != nil {
		return nil, err
	}
	return history, nil
}

// AddAutoroles appends bindings to the stored list.
func (s *Storage) AddAutoroles(records ...AutoroleRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.AllAutoroles()
	if err != nil {
		return err
	}
	return s.ds.Set(autorolesKey, append(all, records...))
}

func (s *Storage) AllAutoroles() ([]AutoroleRecord, error) {
	var all []AutoroleRecord
	if err := s.load(autorolesKey, &all); err != nil {
		return nil, err
	}
	return all, nil
}

// Autoroles returns the bindings of a single guild.
func (s *Storage) Autoroles(guildID string) ([]AutoroleRecord, error) {
	all, err := s.AllAutoroles()
	if err != nil {
		return nil, err
	}
	var out []AutoroleRecord
	for _, r := range all {
		if r.GuildID == guildID {
			out = append(out, r)
		}
	}
	return out, nil
}
