package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/ldellis/rolo/internal/contacts"
)

// snapshotFile is the file name of the contact snapshot inside the
// cache directory.
const snapshotFile = "contacts.json"

// Snapshot errors.
var (
	ErrSnapshotNotFound = errors.New("contact snapshot not found")
	ErrSnapshotExpired  = errors.New("contact snapshot expired")
)

// snapshotEnvelope is the on-disk snapshot format.
type snapshotEnvelope struct {
	SavedAt   time.Time          `json:"saved_at"`
	ExpiresAt time.Time          `json:"expires_at"`
	Contacts  []contacts.Contact `json:"contacts"`
}

func (e *snapshotEnvelope) expired() bool {
	return time.Now().After(e.ExpiresAt)
}

// Snapshot caches the last-known contact list as a single JSON file
// with TTL expiration. Thread-safe for concurrent access.
type Snapshot struct {
	path string
	ttl  time.Duration

	mu sync.RWMutex
}

// NewSnapshot creates a snapshot cache inside dir, creating the
// directory when missing. A non-positive ttl makes every snapshot
// expire immediately, which effectively disables reads.
func NewSnapshot(dir string, ttl time.Duration) (*Snapshot, error) {
	if dir == "" {
		return nil, errors.New("snapshot directory cannot be empty")
	}
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("creating snapshot directory: %w", err)
	}
	return &Snapshot{
		path: filepath.Join(dir, snapshotFile),
		ttl:  ttl,
	}, nil
}

// Save replaces the snapshot with the given contact list. The file is
// written to a temporary path and renamed so readers never observe a
// partial snapshot.
func (s *Snapshot) Save(list []contacts.Contact) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	return s.writeLocked(snapshotEnvelope{
		SavedAt:   now,
		ExpiresAt: now.Add(s.ttl),
		Contacts:  list,
	})
}

// Load returns the cached contact list. Returns ErrSnapshotNotFound
// when no snapshot exists and ErrSnapshotExpired past the TTL.
func (s *Snapshot) Load() ([]contacts.Contact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	env, err := s.readLocked()
	if err != nil {
		return nil, err
	}
	if env.expired() {
		return nil, ErrSnapshotExpired
	}
	return env.Contacts, nil
}

// Evict rewrites the snapshot without the given contact IDs. The
// expiration window is preserved; eviction corrects the snapshot, it
// does not refresh it. A missing snapshot is a no-op.
func (s *Snapshot) Evict(ids []contacts.ID) error {
	if len(ids) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	env, err := s.readLocked()
	if errors.Is(err, ErrSnapshotNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	drop := make(map[contacts.ID]struct{}, len(ids))
	for _, id := range ids {
		drop[id] = struct{}{}
	}

	kept := env.Contacts[:0]
	for _, c := range env.Contacts {
		if _, gone := drop[c.ID]; !gone {
			kept = append(kept, c)
		}
	}
	env.Contacts = kept

	return s.writeLocked(env)
}

// Clear removes the snapshot file. Idempotent.
func (s *Snapshot) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.path)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing snapshot: %w", err)
	}
	return nil
}

func (s *Snapshot) readLocked() (snapshotEnvelope, error) {
	var env snapshotEnvelope

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return env, ErrSnapshotNotFound
		}
		return env, fmt.Errorf("reading snapshot: %w", err)
	}

	if err := json.Unmarshal(data, &env); err != nil {
		return env, fmt.Errorf("unmarshaling snapshot: %w", err)
	}
	return env, nil
}

func (s *Snapshot) writeLocked(env snapshotEnvelope) error {
	data, err := json.MarshalIndent(env, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling snapshot: %w", err)
	}

	tempPath := s.path + ".tmp"
	if err := os.WriteFile(tempPath, data, 0600); err != nil {
		return fmt.Errorf("writing snapshot: %w", err)
	}
	if err := os.Rename(tempPath, s.path); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("renaming snapshot: %w", err)
	}
	return nil
}
