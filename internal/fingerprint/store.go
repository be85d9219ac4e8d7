// Package fingerprint persists the per-module list of header paths scanned
// on the last successful generation run.
//
// One plain-text file named Timestamp lives in each module's generated-code
// directory, holding one absolute header path per line in classes, public,
// private order. The file's own modification time doubles as the staleness
// baseline: a header newer than the fingerprint file forces regeneration.
// Files are always rewritten wholesale, never patched.
package fingerprint

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// FileName is the fixed fingerprint file name inside a module's
// generated-code directory. Part of the on-disk contract with
// previous runs; do not change.
const FileName = "Timestamp"

// Record is a previously written fingerprint.
type Record struct {
	// Headers in the exact order they were written
	Headers []string

	// ModTime is the fingerprint file's own last-write time
	ModTime time.Time
}

// Store reads and writes fingerprint records.
type Store struct{}

func NewStore() *Store {
	return &Store{}
}

// Path returns the fingerprint file path for a generated-code directory.
func (s *Store) Path(generatedDir string) string {
	return filepath.Join(generatedDir, FileName)
}

// Read loads the fingerprint record for a generated-code directory.
// Returns (nil, nil) when no fingerprint exists yet.
func (s *Store) Read(generatedDir string) (*Record, error) {
	path := s.Path(generatedDir)

	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil, nil
	}

	if err != nil {
		return nil, fmt.Errorf("failed to stat fingerprint %s: %w", path, err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read fingerprint %s: %w", path, err)
	}

	var headers []string
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimRight(line, "\r")
		if line != "" {
			headers = append(headers, line)
		}
	}

	return &Record{
		Headers: headers,
		ModTime: info.ModTime(),
	}, nil
}

// Write replaces the fingerprint for a generated-code directory with the
// given ordered header list, creating the directory if needed. A failure
// here must abort the build: a half-written fingerprint cannot be trusted
// on the next run.
func (s *Store) Write(generatedDir string, headers []string) error {
	if err := os.MkdirAll(generatedDir, 0o755); err != nil {
		return fmt.Errorf("failed to create generated directory %s: %w", generatedDir, err)
	}

	var b strings.Builder
	for _, header := range headers {
		b.WriteString(header)
		b.WriteString("\n")
	}

	path := s.Path(generatedDir)
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("failed to write fingerprint %s: %w", path, err)
	}

	return nil
}

// Matches reports whether the current ordered header list is identical to
// the recorded one. Comparison is positional and case-insensitive, so a
// reordered or reclassified header set mismatches even when membership is
// unchanged.
func (r *Record) Matches(headers []string) bool {
	if len(headers) != len(r.Headers) {
		return false
	}

	for i, header := range headers {
		if !strings.EqualFold(header, r.Headers[i]) {
			return false
		}
	}

	return true
}
