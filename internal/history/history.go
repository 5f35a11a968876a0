// Package history persists run summaries across invocations.
//
// Each completed run's final snapshot is stored in a local bolt
// database keyed by completion time, so listings come back in
// reverse-chronological order without an index.
package history

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.etcd.io/bbolt"

	"github.com/wesleyorama2/surge/internal/metrics"
)

const bucketRuns = "runs"

// Entry is one persisted run.
type Entry struct {
	RunID     string            `json:"runId"`
	Name      string            `json:"name,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
	Snapshot  *metrics.Snapshot `json:"snapshot"`
}

// Store is a bolt-backed archive of completed runs. It is safe for
// concurrent use by a single process; bolt's file lock keeps a second
// process out.
type Store struct {
	db *bbolt.DB
}

// DefaultPath returns the per-user store location.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".surge", "history.db"), nil
}

// Open opens the store at path, creating the file and its directory
// as needed. An empty path opens the default per-user store.
func Open(path string) (*Store, error) {
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create history directory: %w", err)
	}

	// The timeout keeps a concurrent surge process from hanging on
	// bolt's exclusive file lock.
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open history store: %w", err)
	}

	if err := db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketRuns))
		return err
	}); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize history store: %w", err)
	}

	return &Store{db: db}, nil
}

// Close releases the database file.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save persists one run snapshot.
func (s *Store) Save(snap *metrics.Snapshot) error {
	if snap == nil {
		return fmt.Errorf("snapshot cannot be nil")
	}

	ts := snap.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	entry := Entry{
		RunID:     snap.RunID,
		Name:      snap.Name,
		Timestamp: ts,
		Snapshot:  snap,
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encode history entry: %w", err)
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(bucketRuns)).Put(entryKey(ts, entry.RunID), data)
	})
}

// entryKey builds a key that sorts chronologically: a zero-padded
// nanosecond timestamp, then the run ID for uniqueness.
func entryKey(ts time.Time, runID string) []byte {
	return []byte(fmt.Sprintf("%020d_%s", ts.UnixNano(), runID))
}

// List returns entries newest first. limit caps the result; 0 returns
// everything. Entries that no longer decode are skipped.
func (s *Store) List(limit int) ([]Entry, error) {
	var entries []Entry

	err := s.db.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket([]byte(bucketRuns)).Cursor()
		for k, v := c.Last(); k != nil; k, v = c.Prev() {
			if limit > 0 && len(entries) == limit {
				break
			}
			var e Entry
			if err := json.Unmarshal(v, &e); err != nil {
				continue
			}
			entries = append(entries, e)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// Get returns the newest entry whose run ID matches id exactly or by
// prefix, so the short IDs printed in listings resolve.
func (s *Store) Get(id string) (*Entry, error) {
	var found *Entry

	err := s.db.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket([]byte(bucketRuns)).Cursor()
		for k, v := c.Last(); k != nil; k, v = c.Prev() {
			var e Entry
			if err := json.Unmarshal(v, &e); err != nil {
				continue
			}
			if e.RunID == id || strings.HasPrefix(e.RunID, id) {
				found = &e
				return nil
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if found == nil {
		return nil, fmt.Errorf("run %q not found in history", id)
	}
	return found, nil
}

// Prune deletes the oldest entries beyond keep and reports how many
// were removed.
func (s *Store) Prune(keep int) (int, error) {
	deleted := 0

	err := s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(bucketRuns))
		total := b.Stats().KeyN
		excess := total - keep
		if excess <= 0 {
			return nil
		}

		c := b.Cursor()
		for k, _ := c.First(); k != nil && deleted < excess; k, _ = c.First() {
			if err := c.Delete(); err != nil {
				return err
			}
			deleted++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return deleted, nil
}

// Clear removes every entry.
func (s *Store) Clear() error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		if err := tx.DeleteBucket([]byte(bucketRuns)); err != nil {
			return err
		}
		_, err := tx.CreateBucket([]byte(bucketRuns))
		return err
	})
}
