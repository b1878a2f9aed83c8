// Package repository provides the game server's persistence: an in-memory store
// for local play and a PostgreSQL store for long-running emulators.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/jabbercracky/jabbercracky-client/internal/models"
)

const (
	queryListHashLists = `SELECT id, name, algorithm, hashes, open, closes_at FROM hash_lists`
	queryGetHashList   = `SELECT id, name, algorithm, hashes, open, closes_at FROM hash_lists WHERE id = $1`
	queryUpsertList    = `
		INSERT INTO hash_lists (id, name, algorithm, hashes, open, closes_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			algorithm = EXCLUDED.algorithm,
			hashes = EXCLUDED.hashes,
			open = EXCLUDED.open,
			closes_at = EXCLUDED.closes_at`
	queryUpsertUser = `
		INSERT INTO users (token, username) VALUES ($1, $2)
		ON CONFLICT (token) DO UPDATE SET username = EXCLUDED.username`
	queryUserByToken  = `SELECT username FROM users WHERE token = $1`
	queryInsertCredit = `
		INSERT INTO credits (username, hash_list_id, hash) VALUES ($1, $2, $3)
		ON CONFLICT DO NOTHING`
	queryTotalCredits     = `SELECT COUNT(*) FROM credits WHERE username = $1`
	queryInsertSubmission = `
		INSERT INTO submissions (id, username, hash_list_id, found_count, added_count, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`
)

// PostgresRepository stores game state in PostgreSQL.
type PostgresRepository struct {
	// DB is the database handle for executing queries and transactions.
	DB *sql.DB
}

// NewPostgresRepository creates a PostgresRepository over db.
// db must be connected and carry the schema from db.InitPostgres.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{DB: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanHashList(row rowScanner) (*models.HashList, error) {
	var (
		l        models.HashList
		id       string
		closesAt sql.NullTime
	)
	if err := row.Scan(&id, &l.Name, &l.Algorithm, pq.Array(&l.Hashes), &l.Open, &closesAt); err != nil {
		return nil, err
	}
	l.ID = models.ListID(id)
	if closesAt.Valid {
		t := closesAt.Time
		l.ClosesAt = &t
	}
	return &l, nil
}

// ListHashLists returns every hash list ordered by models.ListID.Less.
func (r *PostgresRepository) ListHashLists(ctx context.Context) ([]models.HashList, error) {
	rows, err := r.DB.QueryContext(ctx, queryListHashLists)
	if err != nil {
		return nil, fmt.Errorf("ListHashLists: %w", err)
	}
	defer rows.Close()

	var lists []models.HashList
	for rows.Next() {
		l, err := scanHashList(rows)
		if err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		lists = append(lists, *l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ListHashLists: %w", err)
	}
	// TEXT ids sort lexically in SQL; match the in-memory store instead.
	sortByID(lists)
	return lists, nil
}

// GetHashList returns list id or models.ErrHashListNotFound.
func (r *PostgresRepository) GetHashList(ctx context.Context, id models.ListID) (*models.HashList, error) {
	l, err := scanHashList(r.DB.QueryRowContext(ctx, queryGetHashList, string(id)))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrHashListNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("GetHashList: %w", err)
	}
	return l, nil
}

// UpsertHashList creates or replaces a hash list.
func (r *PostgresRepository) UpsertHashList(ctx context.Context, l models.HashList) error {
	var closesAt sql.NullTime
	if l.ClosesAt != nil {
		closesAt = sql.NullTime{Time: *l.ClosesAt, Valid: true}
	}
	_, err := r.DB.ExecContext(ctx, queryUpsertList,
		string(l.ID), l.Name, l.Algorithm, pq.Array(l.Hashes), l.Open, closesAt)
	if err != nil {
		return fmt.Errorf("UpsertHashList: %w", err)
	}
	return nil
}

// UpsertUser binds token to username.
func (r *PostgresRepository) UpsertUser(ctx context.Context, token, username string) error {
	if _, err := r.DB.ExecContext(ctx, queryUpsertUser, token, username); err != nil {
		return fmt.Errorf("UpsertUser: %w", err)
	}
	return nil
}

// UserByToken returns the player owning token or models.ErrUnknownToken.
func (r *PostgresRepository) UserByToken(ctx context.Context, token string) (string, error) {
	var username string
	err := r.DB.QueryRowContext(ctx, queryUserByToken, token).Scan(&username)
	if errors.Is(err, sql.ErrNoRows) {
		return "", models.ErrUnknownToken
	}
	if err != nil {
		return "", fmt.Errorf("UserByToken: %w", err)
	}
	return username, nil
}

// Credit records hashes as cracked by username in list id within one transaction
// and returns those that were not credited before, in input order.
func (r *PostgresRepository) Credit(ctx context.Context, username string, id models.ListID, hashes []string) ([]string, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	added := make([]string, 0, len(hashes))
	for _, h := range hashes {
		res, err := tx.ExecContext(ctx, queryInsertCredit, username, string(id), h)
		if err != nil {
			return nil, fmt.Errorf("insert credit: %w", err)
		}
		if n, err := res.RowsAffected(); err == nil && n > 0 {
			added = append(added, h)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return added, nil
}

// TotalCredits counts every hash credited to username across all lists.
func (r *PostgresRepository) TotalCredits(ctx context.Context, username string) (int, error) {
	var n int
	if err := r.DB.QueryRowContext(ctx, queryTotalCredits, username).Scan(&n); err != nil {
		return 0, fmt.Errorf("TotalCredits: %w", err)
	}
	return n, nil
}

// RecordSubmission appends an audit row.
func (r *PostgresRepository) RecordSubmission(ctx context.Context, s models.Submission) error {
	createdAt := s.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	_, err := r.DB.ExecContext(ctx, queryInsertSubmission,
		s.ID, s.Username, string(s.HashListID), s.FoundCount, s.AddedCount, createdAt)
	if err != nil {
		return fmt.Errorf("RecordSubmission: %w", err)
	}
	return nil
}
