// Package models defines the core data structures shared by the client and the
// game server emulator: hash lists and submission results.
package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"
)

// ListID identifies a hash list on the game server.
// The server may encode it as a JSON number or a string; it is held as text.
type ListID string

// UnmarshalJSON accepts both numeric and string identifiers.
func (id *ListID) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return fmt.Errorf("hash list id: %w", err)
		}
		*id = ListID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("hash list id: %w", err)
	}
	*id = ListID(n.String())
	return nil
}

// MarshalJSON writes canonical integer identifiers as JSON numbers and everything
// else as strings, so "007" and "+5" keep their text.
func (id ListID) MarshalJSON() ([]byte, error) {
	if n, err := strconv.ParseInt(string(id), 10, 64); err == nil && strconv.FormatInt(n, 10) == string(id) {
		return []byte(id), nil
	}
	return json.Marshal(string(id))
}

// Less orders identifiers numerically when both are integers.
// Integers sort before non-integers; non-integers compare lexically.
func (id ListID) Less(other ListID) bool {
	a, aErr := strconv.ParseInt(string(id), 10, 64)
	b, bErr := strconv.ParseInt(string(other), 10, 64)
	switch {
	case aErr == nil && bErr == nil:
		return a < b
	case aErr == nil:
		return true
	case bErr == nil:
		return false
	}
	return id < other
}

// String returns the identifier text.
func (id ListID) String() string { return string(id) }

// HashListSummary is one entry of the hash list index.
type HashListSummary struct {
	// ID is the server-side identifier.
	ID ListID `json:"hash_list_id"`
	// Name is the human-readable list name.
	Name string `json:"hash_list_name"`
}

// SubmissionStatus tags the variant of a SubmissionResult.
type SubmissionStatus string

const (
	// SubmissionAccepted means the server scored the upload.
	SubmissionAccepted SubmissionStatus = "accepted"
	// SubmissionRejected means the server answered 2xx with an error message,
	// e.g. the list is closed or the file was malformed.
	SubmissionRejected SubmissionStatus = "rejected"
)

// SubmissionResult is the server's answer to an upload of cracked hashes.
type SubmissionResult struct {
	Status SubmissionStatus

	// Accepted fields.
	HashListID ListID
	Username   string
	FoundCount int
	AddedScore float64
	TotalScore float64
	NewItems   []string

	// Error is set for rejected submissions.
	Error string
}

// Accepted reports whether the server scored the submission.
func (r *SubmissionResult) Accepted() bool {
	return r.Status == SubmissionAccepted
}

var (
	// ErrHashListNotFound is returned for an unknown hash list id.
	ErrHashListNotFound = errors.New("hash list not found")
	// ErrHashListClosed is returned when a list no longer accepts submissions.
	ErrHashListClosed = errors.New("hash list is closed")
	// ErrUnknownToken is returned when no player owns a bearer token.
	ErrUnknownToken = errors.New("unknown token")
)

// HashList is the server-side view of a hash list.
type HashList struct {
	ID        ListID
	Name      string
	Algorithm string
	Hashes    []string
	Open      bool
	// ClosesAt, when set, closes the list once passed.
	ClosesAt *time.Time
}

// AcceptsAt reports whether the list takes submissions at t.
func (l *HashList) AcceptsAt(t time.Time) bool {
	if !l.Open {
		return false
	}
	return l.ClosesAt == nil || t.Before(*l.ClosesAt)
}

// Summary returns the index entry for the list.
func (l *HashList) Summary() HashListSummary {
	return HashListSummary{ID: l.ID, Name: l.Name}
}

// Submission is the audit record of one scored upload.
type Submission struct {
	ID         string
	Username   string
	HashListID ListID
	FoundCount int
	AddedCount int
	CreatedAt  time.Time
}
