package messages

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryRepo stores messages in memory and is safe for concurrent use.
type MemoryRepo struct {
	mu     sync.RWMutex
	nextID int64
	byChat map[string][]Message
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{byChat: make(map[string][]Message)}
}

// Save stores the message, replacing any existing one with the same message id.
func (r *MemoryRepo) Save(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	existing := r.byChat[msg.ChatID]
	for i, cur := range existing {
		if cur.MessageID == msg.MessageID {
			msg.ID = cur.ID
			existing[i] = msg
			return nil
		}
	}
	r.nextID++
	msg.ID = r.nextID
	r.byChat[msg.ChatID] = append(existing, msg)
	return nil
}

// ListByChatAndDate returns messages for a chat sent on the given calendar day.
func (r *MemoryRepo) ListByChatAndDate(ctx context.Context, chatID string, day time.Time) ([]Message, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	end := start.Add(24 * time.Hour)

	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []Message
	for _, msg := range r.byChat[chatID] {
		if !msg.SentAt.Before(start) && msg.SentAt.Before(end) {
			out = append(out, msg)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].SentAt.Equal(out[j].SentAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].SentAt.Before(out[j].SentAt)
	})
	return out, nil
}

var _ Repo = (*MemoryRepo)(nil)
