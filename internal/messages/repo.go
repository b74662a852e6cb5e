package messages

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound indicates no messages exist for the requested chat and day.
var ErrNotFound = errors.New("not found")

// Repo defines persistence operations for chat messages.
type Repo interface {
	Save(ctx context.Context, msg Message) error
	ListByChatAndDate(ctx context.Context, chatID string, day time.Time) ([]Message, error)
}
