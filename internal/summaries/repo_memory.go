package summaries

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryRepo stores summaries in memory and is safe for concurrent use.
type MemoryRepo struct {
	mu     sync.RWMutex
	byChat map[string][]Summary
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{byChat: make(map[string][]Summary)}
}

// Save stores the summary, replacing any existing one for the same day.
func (r *MemoryRepo) Save(ctx context.Context, summary Summary) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	summary.SummaryDate = dateOnly(summary.SummaryDate)
	r.mu.Lock()
	defer r.mu.Unlock()
	existing := r.byChat[summary.ChatID]
	for i, cur := range existing {
		if cur.SummaryDate.Equal(summary.SummaryDate) {
			existing[i] = summary
			return nil
		}
	}
	r.byChat[summary.ChatID] = append(existing, summary)
	return nil
}

// GetByChatAndDate returns the stored summary for a chat and day.
func (r *MemoryRepo) GetByChatAndDate(ctx context.Context, chatID string, day time.Time) (Summary, error) {
	if err := ctx.Err(); err != nil {
		return Summary{}, err
	}
	want := dateOnly(day)
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, cur := range r.byChat[chatID] {
		if cur.SummaryDate.Equal(want) {
			return cur, nil
		}
	}
	return Summary{}, ErrNotFound
}

// ListByChat returns the most recent summaries for a chat.
func (r *MemoryRepo) ListByChat(ctx context.Context, chatID string, limit int) ([]Summary, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 30
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Summary, len(r.byChat[chatID]))
	copy(out, r.byChat[chatID])
	sort.Slice(out, func(i, j int) bool {
		return out[i].SummaryDate.After(out[j].SummaryDate)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

var _ Repo = (*MemoryRepo)(nil)
