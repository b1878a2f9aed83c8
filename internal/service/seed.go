package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/jabbercracky/jabbercracky-client/internal/config"
	"github.com/jabbercracky/jabbercracky-client/internal/crack"
	"github.com/jabbercracky/jabbercracky-client/internal/models"
)

// Seed loads users and hash lists into the repository. Plaintexts are hashed
// with the list's algorithm and appended after the verbatim hashes.
func (s *GameService) Seed(ctx context.Context, seed *config.Seed) error {
	for _, u := range seed.Users {
		if err := s.repo.UpsertUser(ctx, u.Token, u.Username); err != nil {
			return fmt.Errorf("seed user %s: %w", u.Username, err)
		}
	}

	for _, sl := range seed.HashLists {
		if !crack.Supports(sl.Algorithm) {
			return fmt.Errorf("seed hash list %s: %w: %q", sl.ID, crack.ErrUnknownAlgorithm, sl.Algorithm)
		}

		hashes := make([]string, 0, len(sl.Hashes)+len(sl.Plaintexts))
		for _, h := range sl.Hashes {
			hashes = append(hashes, crack.Normalize(sl.Algorithm, h))
		}
		for _, p := range sl.Plaintexts {
			h, err := crack.Hash(sl.Algorithm, p)
			if err != nil {
				return fmt.Errorf("seed hash list %s: %w", sl.ID, err)
			}
			hashes = append(hashes, h)
		}

		l := models.HashList{
			ID:        sl.ID,
			Name:      sl.Name,
			Algorithm: sl.Algorithm,
			Hashes:    hashes,
			Open:      sl.IsOpen(),
			ClosesAt:  sl.ClosesAt,
		}
		if err := s.repo.UpsertHashList(ctx, l); err != nil {
			return fmt.Errorf("seed hash list %s: %w", sl.ID, err)
		}
	}

	s.log.Info("seed loaded",
		zap.Int("users", len(seed.Users)),
		zap.Int("hash_lists", len(seed.HashLists)),
	)
	return nil
}
