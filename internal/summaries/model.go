package summaries

import "time"

// Summary is a persisted analysis result for one chat and day.
type Summary struct {
	ID                string    `json:"id"`
	ChatID            string    `json:"chatId"`
	SummaryDate       time.Time `json:"summaryDate"`
	ResultText        string    `json:"resultText"`
	Provider          string    `json:"provider"`
	Model             string    `json:"model"`
	ProcessingSeconds float64   `json:"processingSeconds"`
	ExecutedSteps     []string  `json:"executedSteps"`
	CreatedAt         time.Time `json:"createdAt"`
}
