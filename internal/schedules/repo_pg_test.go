package schedules

import (
	"context"
	"errors"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
)

func TestPGRepoGetScheduleText(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	rows := sqlmock.NewRows([]string{"schedule_text"}).
		AddRow("Monday: 09:00 Math, 10:30 Reading")
	mock.ExpectQuery("SELECT schedule_text FROM group_schedules").
		WithArgs("group-1").
		WillReturnRows(rows)

	repo := &PGRepo{DB: db}
	text, err := repo.GetScheduleText(context.Background(), "group-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if text == "" {
		t.Fatalf("expected schedule text")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestPGRepoGetScheduleTextNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("SELECT schedule_text FROM group_schedules").
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"schedule_text"}))

	repo := &PGRepo{DB: db}
	if _, err := repo.GetScheduleText(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMemoryRepoRoundTrip(t *testing.T) {
	repo := NewMemoryRepo()
	ctx := context.Background()

	if _, err := repo.GetScheduleText(ctx, "group-1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := repo.SaveScheduleText(ctx, "group-1", "Tuesday: 09:00 English"); err != nil {
		t.Fatalf("save: %v", err)
	}
	text, err := repo.GetScheduleText(ctx, "group-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if text != "Tuesday: 09:00 English" {
		t.Fatalf("unexpected text: %q", text)
	}
}
