package messages

import "time"

// Message is a single chat message fetched for analysis.
type Message struct {
	ID                int64     `json:"id"`
	ChatID            string    `json:"chatId"`
	MessageID         string    `json:"messageId"`
	SenderID          string    `json:"senderId"`
	SenderName        string    `json:"senderName"`
	Text              string    `json:"text"`
	ImageDescriptions []string  `json:"imageDescriptions,omitempty"`
	SentAt            time.Time `json:"sentAt"`
}

// TimeLabel renders the message time as HH:MM for prompt formatting.
// Zero timestamps render as a placeholder so formatting never fails.
func (m Message) TimeLabel() string {
	if m.SentAt.IsZero() {
		return "??:??"
	}
	return m.SentAt.Format("15:04")
}
