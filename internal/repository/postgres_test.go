package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/jabbercracky/jabbercracky-client/internal/models"
)

func setupMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to open sqlmock database: %v", err)
	}
	repo := NewPostgresRepository(db)
	cleanup := func() {
		db.Close()
	}
	return repo, mock, cleanup
}

var listColumns = []string{"id", "name", "algorithm", "hashes", "open", "closes_at"}

func TestListHashLists_Success(t *testing.T) {
	repo, mock, cleanup := setupMock(t)
	defer cleanup()

	closes := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows(listColumns).
		AddRow("1", "warmup", "md5", "{aa,bb}", true, nil).
		AddRow("2", "finals", "ntlm", "{cc}", false, closes)
	mock.ExpectQuery(regexp.QuoteMeta(queryListHashLists)).WillReturnRows(rows)

	lists, err := repo.ListHashLists(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(lists) != 2 {
		t.Fatalf("expected 2 lists, got %d", len(lists))
	}
	if lists[0].ID != "1" || len(lists[0].Hashes) != 2 || lists[0].Hashes[1] != "bb" || lists[0].ClosesAt != nil {
		t.Errorf("unexpected first list: %+v", lists[0])
	}
	if lists[1].Open || lists[1].ClosesAt == nil || !lists[1].ClosesAt.Equal(closes) {
		t.Errorf("unexpected second list: %+v", lists[1])
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestListHashLists_NumericOrder(t *testing.T) {
	repo, mock, cleanup := setupMock(t)
	defer cleanup()

	// rows arrive in TEXT order
	rows := sqlmock.NewRows(listColumns).
		AddRow("10", "ten", "md5", "{}", true, nil).
		AddRow("2", "two", "md5", "{}", true, nil).
		AddRow("abc", "named", "md5", "{}", true, nil).
		AddRow("007", "bond", "md5", "{}", true, nil)
	mock.ExpectQuery(regexp.QuoteMeta(queryListHashLists)).WillReturnRows(rows)

	lists, err := repo.ListHashLists(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []models.ListID{"2", "007", "10", "abc"}
	if len(lists) != len(want) {
		t.Fatalf("expected %d lists, got %d", len(want), len(lists))
	}
	for i, id := range want {
		if lists[i].ID != id {
			t.Errorf("lists[%d].ID = %q; want %q", i, lists[i].ID, id)
		}
	}

	// the in-memory store agrees
	mem := NewMemoryRepository()
	for _, l := range lists {
		if err := mem.UpsertHashList(context.Background(), l); err != nil {
			t.Fatalf("UpsertHashList: %v", err)
		}
	}
	memLists, err := mem.ListHashLists(context.Background())
	if err != nil {
		t.Fatalf("memory ListHashLists: %v", err)
	}
	for i, id := range want {
		if memLists[i].ID != id {
			t.Errorf("memory lists[%d].ID = %q; want %q", i, memLists[i].ID, id)
		}
	}
}

func TestListHashLists_QueryError(t *testing.T) {
	repo, mock, cleanup := setupMock(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta(queryListHashLists)).WillReturnError(errors.New("query fail"))

	_, err := repo.ListHashLists(context.Background())
	if err == nil || !regexp.MustCompile(`ListHashLists`).MatchString(err.Error()) {
		t.Errorf("expected ListHashLists error, got %v", err)
	}
}

func TestGetHashList(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		repo, mock, cleanup := setupMock(t)
		defer cleanup()

		mock.ExpectQuery(regexp.QuoteMeta(queryGetHashList)).
			WithArgs("7").
			WillReturnRows(sqlmock.NewRows(listColumns).AddRow("7", "office", "sha1", "{dd}", true, nil))

		l, err := repo.GetHashList(context.Background(), "7")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if l.Name != "office" || l.Algorithm != "sha1" || len(l.Hashes) != 1 {
			t.Errorf("unexpected list: %+v", l)
		}
	})

	t.Run("not found", func(t *testing.T) {
		repo, mock, cleanup := setupMock(t)
		defer cleanup()

		mock.ExpectQuery(regexp.QuoteMeta(queryGetHashList)).
			WithArgs("9").
			WillReturnError(sql.ErrNoRows)

		_, err := repo.GetHashList(context.Background(), "9")
		if !errors.Is(err, models.ErrHashListNotFound) {
			t.Errorf("expected ErrHashListNotFound, got %v", err)
		}
	})
}

func TestUpsertHashList(t *testing.T) {
	repo, mock, cleanup := setupMock(t)
	defer cleanup()

	mock.ExpectExec(regexp.QuoteMeta(queryUpsertList)).
		WithArgs("3", "demo", "md5", sqlmock.AnyArg(), true, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.UpsertHashList(context.Background(), models.HashList{
		ID: "3", Name: "demo", Algorithm: "md5", Hashes: []string{"a"}, Open: true,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestUserByToken(t *testing.T) {
	repo, mock, cleanup := setupMock(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta(queryUserByToken)).
		WithArgs("tok").
		WillReturnRows(sqlmock.NewRows([]string{"username"}).AddRow("alice"))
	mock.ExpectQuery(regexp.QuoteMeta(queryUserByToken)).
		WithArgs("nope").
		WillReturnError(sql.ErrNoRows)

	user, err := repo.UserByToken(context.Background(), "tok")
	if err != nil || user != "alice" {
		t.Fatalf("UserByToken = %q, %v; want alice", user, err)
	}
	if _, err := repo.UserByToken(context.Background(), "nope"); !errors.Is(err, models.ErrUnknownToken) {
		t.Errorf("expected ErrUnknownToken, got %v", err)
	}
}

func TestUpsertUser(t *testing.T) {
	repo, mock, cleanup := setupMock(t)
	defer cleanup()

	mock.ExpectExec(regexp.QuoteMeta(queryUpsertUser)).
		WithArgs("tok", "alice").
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.UpsertUser(context.Background(), "tok", "alice"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestCredit_ReturnsOnlyNewHashes(t *testing.T) {
	repo, mock, cleanup := setupMock(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(queryInsertCredit)).
		WithArgs("alice", "1", "aa").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(queryInsertCredit)).
		WithArgs("alice", "1", "bb").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	added, err := repo.Credit(context.Background(), "alice", "1", []string{"aa", "bb"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(added) != 1 || added[0] != "aa" {
		t.Errorf("added = %v; want [aa]", added)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestCredit_RollsBackOnError(t *testing.T) {
	repo, mock, cleanup := setupMock(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(queryInsertCredit)).
		WithArgs("alice", "1", "aa").
		WillReturnError(errors.New("constraint"))
	mock.ExpectRollback()

	if _, err := repo.Credit(context.Background(), "alice", "1", []string{"aa"}); err == nil {
		t.Fatal("expected error")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestTotalCredits(t *testing.T) {
	repo, mock, cleanup := setupMock(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta(queryTotalCredits)).
		WithArgs("alice").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(12))

	n, err := repo.TotalCredits(context.Background(), "alice")
	if err != nil || n != 12 {
		t.Fatalf("TotalCredits = %d, %v; want 12", n, err)
	}
}

func TestRecordSubmission(t *testing.T) {
	repo, mock, cleanup := setupMock(t)
	defer cleanup()

	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	mock.ExpectExec(regexp.QuoteMeta(queryInsertSubmission)).
		WithArgs("sub-1", "alice", "1", 3, 2, at).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.RecordSubmission(context.Background(), models.Submission{
		ID: "sub-1", Username: "alice", HashListID: "1", FoundCount: 3, AddedCount: 2, CreatedAt: at,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}
