// Package service provides the game server's business logic: hash list access,
// bearer token authentication and submission scoring, delegating persistence to
// a GameRepository.
package service

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jabbercracky/jabbercracky-client/internal/crack"
	"github.com/jabbercracky/jabbercracky-client/internal/models"
)

// ErrEmptySubmission is returned when an upload holds no result lines.
var ErrEmptySubmission = errors.New("submission is empty")

const maxLineSize = 1 << 20

// GameRepository defines the persistence operations needed by the GameService.
type GameRepository interface {
	// ListHashLists returns every hash list.
	ListHashLists(ctx context.Context) ([]models.HashList, error)
	// GetHashList returns one list or models.ErrHashListNotFound.
	GetHashList(ctx context.Context, id models.ListID) (*models.HashList, error)
	// UpsertHashList creates or replaces a list.
	UpsertHashList(ctx context.Context, l models.HashList) error
	// UpsertUser binds a bearer token to a username.
	UpsertUser(ctx context.Context, token, username string) error
	// UserByToken returns the owner of token or models.ErrUnknownToken.
	UserByToken(ctx context.Context, token string) (string, error)
	// Credit stores cracked hashes and returns the ones not credited before.
	Credit(ctx context.Context, username string, id models.ListID, hashes []string) ([]string, error)
	// TotalCredits counts every hash credited to username.
	TotalCredits(ctx context.Context, username string) (int, error)
	// RecordSubmission appends an audit row.
	RecordSubmission(ctx context.Context, s models.Submission) error
}

// GameService implements the game endpoints' business logic.
type GameService struct {
	repo GameRepository
	log  *zap.Logger
	now  func() time.Time
}

// NewGameService constructs a GameService over repo. A nil log disables logging.
func NewGameService(repo GameRepository, log *zap.Logger) *GameService {
	if log == nil {
		log = zap.NewNop()
	}
	return &GameService{repo: repo, log: log, now: time.Now}
}

// Authenticate resolves a bearer token to its player.
func (s *GameService) Authenticate(ctx context.Context, token string) (string, error) {
	return s.repo.UserByToken(ctx, token)
}

// ListHashLists returns the index of all lists, open or not.
func (s *GameService) ListHashLists(ctx context.Context) ([]models.HashListSummary, error) {
	lists, err := s.repo.ListHashLists(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]models.HashListSummary, 0, len(lists))
	for _, l := range lists {
		out = append(out, l.Summary())
	}
	return out, nil
}

// GetHashList returns the hashes of list id. Closed lists stay downloadable.
func (s *GameService) GetHashList(ctx context.Context, id models.ListID) ([]string, error) {
	l, err := s.repo.GetHashList(ctx, id)
	if err != nil {
		return nil, err
	}
	return l.Hashes, nil
}

// Submit scores an upload of "hash:plaintext" lines against list id for username.
// Every line whose hash belongs to the list and whose plaintext verifies is found;
// found hashes never credited to the player before are new items worth one point.
func (s *GameService) Submit(ctx context.Context, username string, id models.ListID, r io.Reader) (*models.SubmissionResult, error) {
	l, err := s.repo.GetHashList(ctx, id)
	if err != nil {
		return nil, err
	}
	if !l.AcceptsAt(s.now()) {
		return nil, models.ErrHashListClosed
	}

	lines, err := readLines(r)
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, ErrEmptySubmission
	}

	found, err := s.match(l, lines)
	if err != nil {
		return nil, err
	}

	added, err := s.repo.Credit(ctx, username, id, found)
	if err != nil {
		return nil, fmt.Errorf("credit: %w", err)
	}
	total, err := s.repo.TotalCredits(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("total: %w", err)
	}

	sub := models.Submission{
		ID:         uuid.NewString(),
		Username:   username,
		HashListID: id,
		FoundCount: len(found),
		AddedCount: len(added),
		CreatedAt:  s.now().UTC(),
	}
	if err := s.repo.RecordSubmission(ctx, sub); err != nil {
		// scoring already happened, so the player still gets the answer
		s.log.Error("failed to record submission", zap.String("submission_id", sub.ID), zap.Error(err))
	}

	s.log.Info("submission scored",
		zap.String("submission_id", sub.ID),
		zap.String("username", username),
		zap.String("hash_list_id", id.String()),
		zap.Int("lines", len(lines)),
		zap.Int("found", len(found)),
		zap.Int("added", len(added)),
	)

	return &models.SubmissionResult{
		Status:     models.SubmissionAccepted,
		HashListID: id,
		Username:   username,
		FoundCount: len(found),
		AddedScore: float64(len(added)),
		TotalScore: float64(total),
		NewItems:   added,
	}, nil
}

// match returns the distinct list hashes cracked by lines, in first-seen order.
func (s *GameService) match(l *models.HashList, lines []string) ([]string, error) {
	wanted := make(map[string]string, len(l.Hashes))
	for _, h := range l.Hashes {
		wanted[crack.Normalize(l.Algorithm, h)] = h
	}

	seen := make(map[string]struct{})
	var found []string
	for _, line := range lines {
		hash, plaintext, ok := crack.ParseLine(line)
		if !ok {
			continue
		}
		stored, ok := wanted[crack.Normalize(l.Algorithm, hash)]
		if !ok {
			continue
		}
		if _, dup := seen[stored]; dup {
			continue
		}
		match, err := crack.Verify(l.Algorithm, stored, plaintext)
		if err != nil {
			return nil, err
		}
		if match {
			seen[stored] = struct{}{}
			found = append(found, stored)
		}
	}
	return found, nil
}

func readLines(r io.Reader) ([]string, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	var lines []string
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			lines = append(lines, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read submission: %w", err)
	}
	return lines, nil
}
