package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"syscall"
	"time"
)

// ErrIgnoreStoreCorrupted indicates the ignore state file exists but
// contains invalid data. Callers should abort rather than silently
// start fresh; removing the file is an explicit user decision.
var ErrIgnoreStoreCorrupted = errors.New("ignore state file corrupted")

// IgnoreStoreVersion is the current schema version for the ignore
// state file.
const IgnoreStoreVersion = 1

// ignoreFileName is the ignore state file inside the config dir.
const ignoreFileName = "ignored.json"

// IgnoreRecord marks one contact pair the duplicate detector must not
// group. IDs are held in canonical order; Names captures the contact
// names at the time the pair was ignored, purely for display.
type IgnoreRecord struct {
	IDs       [2]string `json:"ids"`
	Names     [2]string `json:"names,omitempty"`
	IgnoredAt time.Time `json:"ignored_at"`
}

// ignoreStoreData is the serialized form of the ignore store.
type ignoreStoreData struct {
	Version int                      `json:"version"`
	Pairs   map[string]*IgnoreRecord `json:"pairs"`
}

// IgnoreStore manages ignored contact pairs persisted as a JSON file.
type IgnoreStore struct {
	mu       sync.RWMutex
	filePath string
	version  int
	pairs    map[string]*IgnoreRecord
}

// PairKey returns the canonical key for a contact pair; the same two
// IDs in either order produce the same key.
func PairKey(a, b string) string {
	if b < a {
		a, b = b, a
	}
	return a + "|" + b
}

// NewIgnoreStore creates an IgnoreStore backed by the given file path.
// An empty path defaults to ignored.json inside the config dir.
func NewIgnoreStore(filePath string) (*IgnoreStore, error) {
	if filePath == "" {
		dir, err := GetConfigDir()
		if err != nil {
			return nil, err
		}
		filePath = filepath.Join(dir, ignoreFileName)
	}

	return &IgnoreStore{
		filePath: filePath,
		version:  IgnoreStoreVersion,
		pairs:    make(map[string]*IgnoreRecord),
	}, nil
}

// lockFilePath returns the path to the lockfile for cross-process
// coordination.
func (s *IgnoreStore) lockFilePath() string {
	return s.filePath + ".lock"
}

// acquireFileLock acquires a cross-process advisory lockfile.
// Returns a cleanup function that releases the lock.
func (s *IgnoreStore) acquireFileLock() (func(), error) {
	lockPath := s.lockFilePath()

	if err := os.MkdirAll(filepath.Dir(lockPath), 0o750); err != nil {
		return nil, fmt.Errorf("creating lock directory: %w", err)
	}

	// Try to create the lockfile exclusively; retry with stale lock
	// detection so a crashed run cannot wedge the store forever.
	const maxRetries = 10
	const retryDelay = 100 * time.Millisecond
	const staleLockAge = 30 * time.Second

	for range maxRetries {
		f, err := os.OpenFile(lockPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
		if err == nil {
			// Write the PID for stale lock detection.
			_, _ = fmt.Fprintf(f, "%d", os.Getpid())
			_ = f.Close()
			return func() { _ = os.Remove(lockPath) }, nil
		}

		if removeStaleLock(lockPath, staleLockAge) {
			continue
		}
		time.Sleep(retryDelay)
	}

	return nil, fmt.Errorf("could not acquire lock on %s after retries", lockPath)
}

// removeStaleLock checks if a lock file is stale and removes it if so.
// Returns true if the lock was removed and the caller should retry.
func removeStaleLock(lockPath string, staleLockAge time.Duration) bool {
	info, statErr := os.Stat(lockPath)
	if statErr != nil || time.Since(info.ModTime()) <= staleLockAge {
		return false
	}

	if isLockHeldByLiveProcess(lockPath) {
		return false
	}

	// PID not readable, not parseable, or process dead.
	_ = os.Remove(lockPath)
	return true
}

// isLockHeldByLiveProcess reads the PID from a lock file and checks
// whether that process is still alive.
func isLockHeldByLiveProcess(lockPath string) bool {
	pidData, readErr := os.ReadFile(lockPath)
	if readErr != nil || len(pidData) == 0 {
		return false
	}
	var pid int
	if _, scanErr := fmt.Sscanf(string(pidData), "%d", &pid); scanErr != nil || pid <= 0 {
		return false
	}
	return processExists(pid) == nil
}

// processExists checks whether a process with the given PID is alive.
// Returns nil if the process exists, an error otherwise.
func processExists(pid int) error {
	proc, err := os.FindProcess(pid)
	if err != nil {
		return err
	}
	// Signal 0 tests process existence without sending a signal.
	return proc.Signal(syscall.Signal(0))
}

// Load reads the ignore state from the JSON file. A missing file
// starts the store empty; a corrupted file returns
// ErrIgnoreStoreCorrupted.
func (s *IgnoreStore) Load() error {
	unlock, lockErr := s.acquireFileLock()
	if lockErr != nil {
		return fmt.Errorf("acquiring file lock: %w", lockErr)
	}
	defer unlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			s.pairs = make(map[string]*IgnoreRecord)
			return nil
		}
		return fmt.Errorf("reading ignore state file: %w", err)
	}

	var storeData ignoreStoreData
	if unmarshalErr := json.Unmarshal(data, &storeData); unmarshalErr != nil {
		s.pairs = make(map[string]*IgnoreRecord)
		return fmt.Errorf("%w: %w", ErrIgnoreStoreCorrupted, unmarshalErr)
	}

	if storeData.Version != IgnoreStoreVersion {
		s.pairs = make(map[string]*IgnoreRecord)
		return fmt.Errorf("%w: unsupported version %d (expected %d)",
			ErrIgnoreStoreCorrupted, storeData.Version, IgnoreStoreVersion)
	}

	if storeData.Pairs == nil {
		storeData.Pairs = make(map[string]*IgnoreRecord)
	}

	s.pairs = storeData.Pairs
	s.version = storeData.Version

	return nil
}

// Save writes the ignore state to the JSON file atomically.
func (s *IgnoreStore) Save() error {
	unlock, lockErr := s.acquireFileLock()
	if lockErr != nil {
		return fmt.Errorf("acquiring file lock: %w", lockErr)
	}
	defer unlock()

	s.mu.RLock()
	storeData := ignoreStoreData{
		Version: s.version,
		Pairs:   s.pairs,
	}
	data, err := json.MarshalIndent(storeData, "", "  ")
	s.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("marshaling ignore state: %w", err)
	}

	if mkdirErr := os.MkdirAll(filepath.Dir(s.filePath), 0o750); mkdirErr != nil {
		return fmt.Errorf("creating ignore state directory: %w", mkdirErr)
	}

	// Write atomically via temp file.
	tmpPath := s.filePath + ".tmp"
	if writeErr := os.WriteFile(tmpPath, data, 0o600); writeErr != nil {
		return fmt.Errorf("writing ignore state temp file: %w", writeErr)
	}

	if renameErr := os.Rename(tmpPath, s.filePath); renameErr != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("renaming ignore state temp file: %w", renameErr)
	}

	return nil
}

// Ignore marks a contact pair as not duplicates. The record's IDs are
// canonicalized; re-ignoring a known pair refreshes its record.
func (s *IgnoreStore) Ignore(record IgnoreRecord) error {
	if record.IDs[0] == "" || record.IDs[1] == "" {
		return errors.New("both contact IDs are required")
	}
	if record.IDs[0] == record.IDs[1] {
		return errors.New("cannot ignore a contact against itself")
	}
	if record.IDs[1] < record.IDs[0] {
		record.IDs[0], record.IDs[1] = record.IDs[1], record.IDs[0]
		record.Names[0], record.Names[1] = record.Names[1], record.Names[0]
	}
	if record.IgnoredAt.IsZero() {
		record.IgnoredAt = time.Now()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.pairs[PairKey(record.IDs[0], record.IDs[1])] = &record
	return nil
}

// Unignore removes a pair. Returns whether the pair was present.
func (s *IgnoreStore) Unignore(a, b string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := PairKey(a, b)
	_, ok := s.pairs[key]
	delete(s.pairs, key)
	return ok
}

// IsIgnored reports whether the pair has been marked not-duplicates.
// Order of the two IDs does not matter.
func (s *IgnoreStore) IsIgnored(a, b string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.pairs[PairKey(a, b)]
	return ok
}

// Records returns all ignore records, oldest first, as copies.
func (s *IgnoreStore) Records() []IgnoreRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records := make([]IgnoreRecord, 0, len(s.pairs))
	for _, r := range s.pairs {
		records = append(records, *r)
	}
	sort.Slice(records, func(i, j int) bool {
		if records[i].IgnoredAt.Equal(records[j].IgnoredAt) {
			return records[i].IDs[0] < records[j].IDs[0]
		}
		return records[i].IgnoredAt.Before(records[j].IgnoredAt)
	})
	return records
}

// Count returns the number of ignored pairs.
func (s *IgnoreStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.pairs)
}

// FilePath returns the file path of the ignore store.
func (s *IgnoreStore) FilePath() string {
	return s.filePath
}
