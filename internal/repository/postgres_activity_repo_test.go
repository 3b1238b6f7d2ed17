package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestActivityRepo_ListOn_SendsDateString(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to open sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	repo := NewPostgresActivityRepo(db)

	day := time.Date(2026, 3, 9, 0, 0, 0, 0, time.FixedZone("JST", 9*60*60))
	mock.ExpectQuery("FROM activities").
		WithArgs("user-1", "2026-03-09").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "date", "duration", "planned_duration"}).
			AddRow("a-1", "user-1", time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC), 30, 30))

	activities, err := repo.ListOn(context.Background(), "user-1", day)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(activities) != 1 || activities[0].PlannedDuration != 30 {
		t.Errorf("activities = %+v, want one planned activity", activities)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}
