// Package history records the outcome of generation runs in a local BoltDB
// database, one JSON entry per run. The orchestrator appends after every
// run; `hgen history` reads entries back and `hgen clean` drops them.
// History is diagnostics only and never influences a staleness verdict.
package history

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.etcd.io/bbolt"
)

const (
	// DefaultDir is the default history directory name
	DefaultDir = ".hgen"

	// bucketName is the BoltDB bucket name for run entries
	bucketName = "runs"
)

// Entry is one recorded orchestration run.
type Entry struct {
	// Target is the build target the run generated code for
	Target string `json:"target"`

	// Timestamp when the run finished
	Timestamp time.Time `json:"timestamp"`

	// Stale is the evaluator's verdict for the run
	Stale bool `json:"stale"`

	// Generated is true when the generator process actually ran
	Generated bool `json:"generated"`

	// ExitCode is the generator's raw exit code (0 when it did not run)
	ExitCode int `json:"exit_code"`

	// Result is the classified compilation result code
	Result int `json:"result"`

	// Duration of the whole orchestration in milliseconds
	DurationMS int64 `json:"duration_ms"`
}

// Store persists run entries using BoltDB.
type Store struct {
	db *bbolt.DB
}

// Open creates or opens the history database. If dir is empty, DefaultDir
// in the current working directory is used.
func Open(dir string) (*Store, error) {
	if dir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}

		dir = filepath.Join(cwd, DefaultDir)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create history directory: %w", err)
	}

	dbPath := filepath.Join(dir, "history.db")
	db, err := bbolt.Open(dbPath, 0o600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketName))
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create history bucket: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the history database.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}

	return nil
}

// Record appends one run entry. Keys are RFC3339Nano timestamps so entries
// iterate in chronological order.
func (s *Store) Record(entry Entry) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(bucketName))

		data, err := json.Marshal(entry)
		if err != nil {
			return err
		}

		return b.Put([]byte(entry.Timestamp.UTC().Format(time.RFC3339Nano)), data)
	})
}

// List returns the most recent entries, newest first, up to limit. A limit
// of zero returns everything.
func (s *Store) List(limit int) ([]Entry, error) {
	var entries []Entry

	err := s.db.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket([]byte(bucketName)).Cursor()

		for k, v := c.Last(); k != nil; k, v = c.Prev() {
			var entry Entry
			if err := json.Unmarshal(v, &entry); err != nil {
				return err
			}

			entries = append(entries, entry)

			if limit > 0 && len(entries) >= limit {
				break
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return entries, nil
}

// Clear removes every recorded run.
func (s *Store) Clear() error {
	err := s.db.Update(func(tx *bbolt.Tx) error {
		return tx.DeleteBucket([]byte(bucketName))
	})
	if err != nil {
		return err
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucket([]byte(bucketName))
		return err
	})
}

// Stats returns the number of recorded runs.
func (s *Store) Stats() (int, error) {
	var count int

	err := s.db.View(func(tx *bbolt.Tx) error {
		count = tx.Bucket([]byte(bucketName)).Stats().KeyN
		return nil
	})
	if err != nil {
		return 0, err
	}

	return count, nil
}
