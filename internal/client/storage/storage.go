// Package storage keeps the client's local state: downloaded hash lists (<id>.left)
// and the append-only record of lines already forwarded to the server (<id>.submitted).
package storage

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	recordSuffix   = ".submitted"
	hashListSuffix = ".left"
)

// Set is a set of trimmed lines.
type Set map[string]struct{}

// Has reports whether line is in the set.
func (s Set) Has(line string) bool {
	_, ok := s[line]
	return ok
}

// Record is the dedup record of one hash list. It only ever grows.
// A single writer per hash list is assumed; nothing locks the file.
type Record struct {
	path string
}

// NewRecord returns the record for hash list id stored in dir.
func NewRecord(dir, id string) *Record {
	return &Record{path: filepath.Join(dir, id+recordSuffix)}
}

// Path returns the record file location.
func (r *Record) Path() string { return r.path }

// Load reads the record from disk, creating an empty file if none exists yet.
// Every call re-reads the file so external edits between calls are picked up.
func (r *Record) Load() (Set, error) {
	f, err := os.OpenFile(r.path, os.O_RDONLY|os.O_CREATE, 0644)
	if err != nil {
		return nil, fmt.Errorf("open submitted file: %w", err)
	}
	defer f.Close()

	known := make(Set)
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			known[line] = struct{}{}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read submitted file: %w", err)
	}
	return known, nil
}

// AppendNew appends every candidate not in known to the record, in candidate order,
// each at most once. It returns known extended with the appended lines; known itself
// is left untouched.
func (r *Record) AppendNew(candidates []string, known Set) (Set, error) {
	updated := make(Set, len(known)+len(candidates))
	for line := range known {
		updated[line] = struct{}{}
	}

	var fresh []string
	for _, c := range candidates {
		line := strings.TrimSpace(c)
		if line == "" || updated.Has(line) {
			continue
		}
		updated[line] = struct{}{}
		fresh = append(fresh, line)
	}
	if len(fresh) == 0 {
		return updated, nil
	}

	f, err := os.OpenFile(r.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("open submitted file: %w", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	for _, line := range fresh {
		if _, err := w.WriteString(line + "\n"); err != nil {
			return nil, fmt.Errorf("append submitted file: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		return nil, fmt.Errorf("append submitted file: %w", err)
	}
	return updated, nil
}
