package schedules

import (
	"context"
	"errors"
)

// ErrNotFound indicates no stored schedule for the group.
var ErrNotFound = errors.New("not found")

// Repo provides access to recognized schedule texts keyed by group.
type Repo interface {
	GetScheduleText(ctx context.Context, groupID string) (string, error)
	SaveScheduleText(ctx context.Context, groupID, scheduleText string) error
}
