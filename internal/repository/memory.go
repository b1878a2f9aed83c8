package repository

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/jabbercracky/jabbercracky-client/internal/models"
)

// MemoryRepository keeps game state in process memory. It is safe for concurrent use.
type MemoryRepository struct {
	mu          sync.RWMutex
	lists       map[models.ListID]models.HashList
	users       map[string]string
	credits     map[string]map[models.ListID]map[string]struct{}
	submissions []models.Submission
}

// NewMemoryRepository returns an empty MemoryRepository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		lists:   make(map[models.ListID]models.HashList),
		users:   make(map[string]string),
		credits: make(map[string]map[models.ListID]map[string]struct{}),
	}
}

func cloneList(l models.HashList) models.HashList {
	l.Hashes = slices.Clone(l.Hashes)
	if l.ClosesAt != nil {
		t := *l.ClosesAt
		l.ClosesAt = &t
	}
	return l
}

// ListHashLists returns every hash list ordered by id.
func (r *MemoryRepository) ListHashLists(ctx context.Context) ([]models.HashList, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	lists := make([]models.HashList, 0, len(r.lists))
	for _, l := range r.lists {
		lists = append(lists, cloneList(l))
	}
	sortByID(lists)
	return lists, nil
}

// sortByID orders lists by models.ListID.Less. Equal numeric ids such as
// "7" and "007" fall back to their text.
func sortByID(lists []models.HashList) {
	slices.SortFunc(lists, func(a, b models.HashList) int {
		switch {
		case a.ID.Less(b.ID):
			return -1
		case b.ID.Less(a.ID):
			return 1
		}
		return strings.Compare(string(a.ID), string(b.ID))
	})
}

// GetHashList returns list id or models.ErrHashListNotFound.
func (r *MemoryRepository) GetHashList(ctx context.Context, id models.ListID) (*models.HashList, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	l, ok := r.lists[id]
	if !ok {
		return nil, models.ErrHashListNotFound
	}
	l = cloneList(l)
	return &l, nil
}

// UpsertHashList creates or replaces a hash list.
func (r *MemoryRepository) UpsertHashList(ctx context.Context, l models.HashList) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lists[l.ID] = cloneList(l)
	return nil
}

// UpsertUser binds token to username.
func (r *MemoryRepository) UpsertUser(ctx context.Context, token, username string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[token] = username
	return nil
}

// UserByToken returns the player owning token or models.ErrUnknownToken.
func (r *MemoryRepository) UserByToken(ctx context.Context, token string) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	username, ok := r.users[token]
	if !ok {
		return "", models.ErrUnknownToken
	}
	return username, nil
}

// Credit records hashes as cracked by username in list id and returns those
// that were not credited before, in input order.
func (r *MemoryRepository) Credit(ctx context.Context, username string, id models.ListID, hashes []string) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	byList, ok := r.credits[username]
	if !ok {
		byList = make(map[models.ListID]map[string]struct{})
		r.credits[username] = byList
	}
	seen, ok := byList[id]
	if !ok {
		seen = make(map[string]struct{})
		byList[id] = seen
	}

	added := make([]string, 0, len(hashes))
	for _, h := range hashes {
		if _, dup := seen[h]; dup {
			continue
		}
		seen[h] = struct{}{}
		added = append(added, h)
	}
	return added, nil
}

// TotalCredits counts every hash credited to username across all lists.
func (r *MemoryRepository) TotalCredits(ctx context.Context, username string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	total := 0
	for _, seen := range r.credits[username] {
		total += len(seen)
	}
	return total, nil
}

// RecordSubmission appends an audit row.
func (r *MemoryRepository) RecordSubmission(ctx context.Context, s models.Submission) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.submissions = append(r.submissions, s)
	return nil
}

// Submissions returns the audit rows in arrival order.
func (r *MemoryRepository) Submissions() []models.Submission {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.submissions)
}
