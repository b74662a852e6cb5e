package schedules

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

// GetScheduleText returns the recognized schedule text for a group.
func (r *PGRepo) GetScheduleText(ctx context.Context, groupID string) (string, error) {
	const query = `SELECT schedule_text FROM group_schedules WHERE group_id = $1`
	var text string
	err := r.DB.QueryRowContext(ctx, query, groupID).Scan(&text)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return text, nil
}

// SaveScheduleText upserts the schedule text for a group.
func (r *PGRepo) SaveScheduleText(ctx context.Context, groupID, scheduleText string) error {
	const query = `
INSERT INTO group_schedules (group_id, schedule_text, updated_at)
VALUES ($1, $2, $3)
ON CONFLICT (group_id) DO UPDATE
SET schedule_text = EXCLUDED.schedule_text, updated_at = EXCLUDED.updated_at`
	_, err := r.DB.ExecContext(ctx, query, groupID, scheduleText, time.Now().UTC())
	return err
}

var _ Repo = (*PGRepo)(nil)
