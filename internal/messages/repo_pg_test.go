package messages

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
)

func TestPGRepoSaveUpserts(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectExec("INSERT INTO chat_messages").
		WithArgs("chat-1", "42", "u-7", "Anna", "trip on friday", nil, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	repo := &PGRepo{DB: db}
	msg := Message{
		ChatID:     "chat-1",
		MessageID:  "42",
		SenderID:   "u-7",
		SenderName: "Anna",
		Text:       "trip on friday",
		SentAt:     time.Date(2026, 3, 5, 9, 30, 0, 0, time.UTC),
	}
	if err := repo.Save(context.Background(), msg); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestPGRepoListByChatAndDate(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	sentAt := time.Date(2026, 3, 5, 9, 30, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"id", "chat_id", "message_id", "sender_id", "sender_name", "text", "image_descriptions", "sent_at"}).
		AddRow(int64(1), "chat-1", "42", "u-7", "Anna", "trip on friday", []byte(`["poster photo"]`), sentAt)

	mock.ExpectQuery("SELECT id, chat_id, message_id").
		WithArgs("chat-1", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(rows)

	repo := &PGRepo{DB: db}
	got, err := repo.ListByChatAndDate(context.Background(), "chat-1", sentAt)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 message, got %d", len(got))
	}
	if got[0].SenderName != "Anna" || got[0].Text != "trip on friday" {
		t.Fatalf("unexpected message: %+v", got[0])
	}
	if len(got[0].ImageDescriptions) != 1 || got[0].ImageDescriptions[0] != "poster photo" {
		t.Fatalf("unexpected image descriptions: %v", got[0].ImageDescriptions)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestMemoryRepoFiltersByDay(t *testing.T) {
	repo := NewMemoryRepo()
	ctx := context.Background()

	day := time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC)
	inDay := Message{ChatID: "chat-1", MessageID: "1", SenderName: "Anna", Text: "hi", SentAt: day.Add(10 * time.Hour)}
	nextDay := Message{ChatID: "chat-1", MessageID: "2", SenderName: "Boris", Text: "late", SentAt: day.Add(26 * time.Hour)}
	for _, msg := range []Message{inDay, nextDay} {
		if err := repo.Save(ctx, msg); err != nil {
			t.Fatalf("save: %v", err)
		}
	}

	got, err := repo.ListByChatAndDate(ctx, "chat-1", day)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 1 || got[0].MessageID != "1" {
		t.Fatalf("expected only same-day message, got %+v", got)
	}
}
