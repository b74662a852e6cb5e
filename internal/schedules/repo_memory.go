package schedules

import (
	"context"
	"sync"
)

// MemoryRepo stores schedule texts in memory and is safe for concurrent use.
type MemoryRepo struct {
	mu      sync.RWMutex
	byGroup map[string]string
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{byGroup: make(map[string]string)}
}

// GetScheduleText returns the stored schedule text for a group.
func (r *MemoryRepo) GetScheduleText(ctx context.Context, groupID string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	text, ok := r.byGroup[groupID]
	if !ok {
		return "", ErrNotFound
	}
	return text, nil
}

// SaveScheduleText stores the schedule text for a group.
func (r *MemoryRepo) SaveScheduleText(ctx context.Context, groupID, scheduleText string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byGroup[groupID] = scheduleText
	return nil
}

var _ Repo = (*MemoryRepo)(nil)
