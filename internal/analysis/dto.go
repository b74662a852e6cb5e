package analysis

import (
	"time"

	"chatlens-backend/internal/messages"
)

type messagePayload struct {
	MessageID         string   `json:"messageId"`
	SenderID          string   `json:"senderId"`
	SenderName        string   `json:"senderName"`
	Text              string   `json:"text"`
	ImageDescriptions []string `json:"imageDescriptions,omitempty"`
	SentAt            string   `json:"sentAt"`
}

type createAnalysisRequest struct {
	ChatID   string           `json:"chatId" binding:"required"`
	GroupID  string           `json:"groupId"`
	Title    string           `json:"title"`
	Date     string           `json:"date"`
	Preset   string           `json:"preset"`
	Steps    []string         `json:"steps"`
	Provider string           `json:"provider"`
	Model    string           `json:"model"`
	Async    bool             `json:"async"`
	Messages []messagePayload `json:"messages"`
}

type enqueuedResponse struct {
	AnalysisID string `json:"analysisId"`
	Status     string `json:"status"`
}

func (r createAnalysisRequest) toMessages() []messages.Message {
	out := make([]messages.Message, 0, len(r.Messages))
	for _, m := range r.Messages {
		sentAt, err := time.Parse(time.RFC3339, m.SentAt)
		if err != nil {
			sentAt = time.Time{}
		}
		out = append(out, messages.Message{
			ChatID:            r.ChatID,
			MessageID:         m.MessageID,
			SenderID:          m.SenderID,
			SenderName:        m.SenderName,
			Text:              m.Text,
			ImageDescriptions: m.ImageDescriptions,
			SentAt:            sentAt,
		})
	}
	return out
}
