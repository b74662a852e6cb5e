package queue

import "encoding/json"

// Message is an analysis job handed to the worker.
type Message struct {
	AnalysisID string   `json:"analysisId"`
	ChatID     string   `json:"chatId"`
	GroupID    string   `json:"groupId,omitempty"`
	Date       string   `json:"date"`
	Preset     string   `json:"preset,omitempty"`
	Steps      []string `json:"steps,omitempty"`
	Provider   string   `json:"provider,omitempty"`
	Model      string   `json:"model,omitempty"`
	RequestID  string   `json:"requestId"`
	EnqueuedAt string   `json:"enqueuedAt"`
	Version    int      `json:"version"`
}

// EncodeMessage returns the JSON representation of a message.
func EncodeMessage(msg Message) ([]byte, error) {
	return json.Marshal(msg)
}

// DecodeMessage parses a JSON payload into a Message.
func DecodeMessage(payload []byte) (Message, error) {
	var msg Message
	if err := json.Unmarshal(payload, &msg); err != nil {
		return Message{}, err
	}
	return msg, nil
}
