package messages

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

// Save upserts a message keyed by (chat_id, message_id).
func (r *PGRepo) Save(ctx context.Context, msg Message) error {
	const query = `
INSERT INTO chat_messages (chat_id, message_id, sender_id, sender_name, text, image_descriptions, sent_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (chat_id, message_id) DO UPDATE
SET sender_name = EXCLUDED.sender_name,
    text = EXCLUDED.text,
    image_descriptions = EXCLUDED.image_descriptions`
	descPayload, err := marshalJSONB(msg.ImageDescriptions)
	if err != nil {
		return err
	}
	_, err = r.DB.ExecContext(ctx, query,
		msg.ChatID,
		msg.MessageID,
		msg.SenderID,
		msg.SenderName,
		msg.Text,
		descPayload,
		msg.SentAt,
	)
	return err
}

// ListByChatAndDate returns all messages of a chat sent on the given calendar day,
// ordered by send time.
func (r *PGRepo) ListByChatAndDate(ctx context.Context, chatID string, day time.Time) ([]Message, error) {
	const query = `
SELECT id, chat_id, message_id, sender_id, sender_name, text, image_descriptions, sent_at
FROM chat_messages
WHERE chat_id = $1 AND sent_at >= $2 AND sent_at < $3
ORDER BY sent_at ASC, id ASC`
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	end := start.Add(24 * time.Hour)

	rows, err := r.DB.QueryContext(ctx, query, chatID, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Message
	for rows.Next() {
		var (
			msg      Message
			descsRaw []byte
		)
		if err := rows.Scan(&msg.ID, &msg.ChatID, &msg.MessageID, &msg.SenderID, &msg.SenderName, &msg.Text, &descsRaw, &msg.SentAt); err != nil {
			return nil, err
		}
		if len(descsRaw) > 0 {
			if err := json.Unmarshal(descsRaw, &msg.ImageDescriptions); err != nil {
				return nil, err
			}
		}
		out = append(out, msg)
	}
	return out, rows.Err()
}

func marshalJSONB(value []string) (any, error) {
	if len(value) == 0 {
		return nil, nil
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}
	return payload, nil
}

var _ Repo = (*PGRepo)(nil)
