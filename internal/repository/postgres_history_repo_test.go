package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"

	"github.com/hitoshi/rankman/internal/model"
)

func newMockDB(t *testing.T) (*PostgresRatingHistoryRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to open sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewPostgresRatingHistoryRepo(db), mock
}

func TestHistoryRepo_Latest_EmptyReturnsNil(t *testing.T) {
	repo, mock := newMockDB(t)
	mock.ExpectQuery("FROM rating_history").
		WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "user_id", "date", "old_rating", "new_rating",
			"change", "dps", "breakdown", "reason", "created_at",
		}))

	entry, err := repo.Latest(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if entry != nil {
		t.Errorf("entry = %+v, want nil", entry)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestHistoryRepo_Latest_ScansBreakdownJSON(t *testing.T) {
	repo, mock := newMockDB(t)
	date := time.Date(2025, 3, 9, 0, 0, 0, 0, time.UTC)
	breakdown := []byte(`{"plan":13,"study":20,"activity":5,"budget":20,"discipline":-8,"raw":50,"adjustment":3,"final":53}`)
	mock.ExpectQuery("FROM rating_history").
		WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "user_id", "date", "old_rating", "new_rating",
			"change", "dps", "breakdown", "reason", "created_at",
		}).AddRow(
			"entry-1", "user-1", date, 1000, 1053,
			53, 53, breakdown, model.ReasonEndOfDay, time.Now(),
		))

	entry, err := repo.Latest(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if entry == nil {
		t.Fatal("entry is nil")
	}
	if entry.NewRating != 1053 {
		t.Errorf("NewRating = %d, want 1053", entry.NewRating)
	}
	if entry.Breakdown.Plan != 13 || entry.Breakdown.Final != 53 {
		t.Errorf("Breakdown = %+v, want plan=13 final=53", entry.Breakdown)
	}
}

func TestHistoryRepo_AppendTx_WritesDateOnly(t *testing.T) {
	repo, mock := newMockDB(t)
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO rating_history").
		WithArgs("entry-1", "user-1", "2025-03-09", 1000, 1047, 47, 47,
			sqlmock.AnyArg(), model.ReasonEndOfDay).
		WillReturnResult(sqlmock.NewResult(0, 1))

	tx, err := repo.db.BeginTx(context.Background(), nil)
	if err != nil {
		t.Fatalf("failed to begin tx: %v", err)
	}
	err = repo.AppendTx(context.Background(), tx, &model.RatingHistoryEntry{
		ID:        "entry-1",
		UserID:    "user-1",
		Date:      time.Date(2025, 3, 9, 23, 59, 0, 0, time.UTC),
		OldRating: 1000,
		NewRating: 1047,
		Change:    47,
		DPS:       47,
		Reason:    model.ReasonEndOfDay,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestHistoryRepo_AppendTx_UniqueViolationIsInconsistentHistory(t *testing.T) {
	repo, mock := newMockDB(t)
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO rating_history").
		WillReturnError(&pq.Error{Code: pqUniqueViolation})

	tx, err := repo.db.BeginTx(context.Background(), nil)
	if err != nil {
		t.Fatalf("failed to begin tx: %v", err)
	}
	err = repo.AppendTx(context.Background(), tx, &model.RatingHistoryEntry{
		ID:     "entry-1",
		UserID: "user-1",
		Date:   time.Date(2025, 3, 9, 0, 0, 0, 0, time.UTC),
		Reason: model.ReasonEndOfDay,
	})
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error = %v, want *model.APIError", err)
	}
	if apiErr.Code != model.ErrCodeInconsistentHistory {
		t.Errorf("Code = %s, want %s", apiErr.Code, model.ErrCodeInconsistentHistory)
	}
}

func TestHistoryRepo_RecentChanges_DescendingByDate(t *testing.T) {
	repo, mock := newMockDB(t)
	mock.ExpectQuery("SELECT change FROM rating_history").
		WithArgs("user-1", 7).
		WillReturnRows(sqlmock.NewRows([]string{"change"}).
			AddRow(47).AddRow(-30).AddRow(12))

	changes, err := repo.RecentChanges(context.Background(), "user-1", 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []int{47, -30, 12}
	if len(changes) != len(want) {
		t.Fatalf("len(changes) = %d, want %d", len(changes), len(want))
	}
	for i, c := range changes {
		if c != want[i] {
			t.Errorf("changes[%d] = %d, want %d", i, c, want[i])
		}
	}
}
