package summaries

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound indicates no saved summary for the chat and day.
var ErrNotFound = errors.New("not found")

// Repo defines persistence operations for saved summaries.
type Repo interface {
	Save(ctx context.Context, summary Summary) error
	GetByChatAndDate(ctx context.Context, chatID string, day time.Time) (Summary, error)
	ListByChat(ctx context.Context, chatID string, limit int) ([]Summary, error)
}
