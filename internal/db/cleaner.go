package db

import (
	"context"
	"database/sql"
	"time"

	"go.uber.org/zap"
)

const queryCloseExpired = `
	UPDATE hash_lists SET open = false
	 WHERE open
	   AND closes_at IS NOT NULL
	   AND closes_at <= $1`

// CloseExpired turns off every open hash list whose deadline is at or before now
// and returns how many were closed.
func CloseExpired(ctx context.Context, db *sql.DB, now time.Time) (int64, error) {
	res, err := db.ExecContext(ctx, queryCloseExpired, now.UTC())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// StartExpiryCloser runs CloseExpired every interval until ctx is done.
func StartExpiryCloser(ctx context.Context, db *sql.DB, interval time.Duration, log *zap.Logger) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				closed, err := CloseExpired(ctx, db, now)
				if err != nil {
					log.Error("failed to close expired hash lists", zap.Error(err))
					continue
				}
				if closed > 0 {
					log.Info("closed expired hash lists", zap.Int64("closed", closed))
				}
			}
		}
	}()
}
