package summaries

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

// Save upserts a summary keyed by (chat_id, summary_date).
func (r *PGRepo) Save(ctx context.Context, summary Summary) error {
	const query = `
INSERT INTO chat_summaries (id, chat_id, summary_date, result_text, provider, model, processing_seconds, executed_steps, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
ON CONFLICT (chat_id, summary_date) DO UPDATE
SET result_text = EXCLUDED.result_text,
    provider = EXCLUDED.provider,
    model = EXCLUDED.model,
    processing_seconds = EXCLUDED.processing_seconds,
    executed_steps = EXCLUDED.executed_steps`
	stepsPayload, err := json.Marshal(summary.ExecutedSteps)
	if err != nil {
		return err
	}
	_, err = r.DB.ExecContext(ctx, query,
		summary.ID,
		summary.ChatID,
		dateOnly(summary.SummaryDate),
		summary.ResultText,
		summary.Provider,
		summary.Model,
		summary.ProcessingSeconds,
		stepsPayload,
		summary.CreatedAt,
	)
	return err
}

// GetByChatAndDate returns the saved summary for a chat and calendar day.
func (r *PGRepo) GetByChatAndDate(ctx context.Context, chatID string, day time.Time) (Summary, error) {
	const query = `
SELECT id, chat_id, summary_date, result_text, provider, model, processing_seconds, executed_steps, created_at
FROM chat_summaries
WHERE chat_id = $1 AND summary_date = $2`
	row := r.DB.QueryRowContext(ctx, query, chatID, dateOnly(day))
	return scanSummary(row)
}

// ListByChat returns the most recent summaries for a chat.
func (r *PGRepo) ListByChat(ctx context.Context, chatID string, limit int) ([]Summary, error) {
	const query = `
SELECT id, chat_id, summary_date, result_text, provider, model, processing_seconds, executed_steps, created_at
FROM chat_summaries
WHERE chat_id = $1
ORDER BY summary_date DESC
LIMIT $2`
	if limit <= 0 {
		limit = 30
	}
	rows, err := r.DB.QueryContext(ctx, query, chatID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Summary
	for rows.Next() {
		summary, err := scanSummary(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, summary)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSummary(row rowScanner) (Summary, error) {
	var (
		summary  Summary
		stepsRaw []byte
	)
	err := row.Scan(
		&summary.ID,
		&summary.ChatID,
		&summary.SummaryDate,
		&summary.ResultText,
		&summary.Provider,
		&summary.Model,
		&summary.ProcessingSeconds,
		&stepsRaw,
		&summary.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return Summary{}, ErrNotFound
	}
	if err != nil {
		return Summary{}, err
	}
	if len(stepsRaw) > 0 {
		if err := json.Unmarshal(stepsRaw, &summary.ExecutedSteps); err != nil {
			return Summary{}, err
		}
	}
	return summary, nil
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

var _ Repo = (*PGRepo)(nil)
