package analysis

import (
	"encoding/json"
	"strings"
)

// extractJSONArray pulls a JSON array out of a model response. Code fences are
// stripped first; otherwise the slice from the first '[' to the last ']' is
// taken. Returns "" when no array-shaped region exists.
func extractJSONArray(response string) string {
	trimmed := strings.TrimSpace(response)
	if strings.HasPrefix(trimmed, "```") {
		trimmed = strings.TrimPrefix(trimmed, "```json")
		trimmed = strings.TrimPrefix(trimmed, "```")
		if idx := strings.LastIndex(trimmed, "```"); idx >= 0 {
			trimmed = trimmed[:idx]
		}
		trimmed = strings.TrimSpace(trimmed)
	}
	start := strings.Index(trimmed, "[")
	end := strings.LastIndex(trimmed, "]")
	if start < 0 || end <= start {
		return ""
	}
	return trimmed[start : end+1]
}

// parseIDList parses a cleaning response into the set of message ids to keep.
// Any parse failure yields an empty set; the caller falls back to the raw
// message list.
func parseIDList(response string) map[string]bool {
	raw := extractJSONArray(response)
	if raw == "" {
		return nil
	}
	var ids []json.Number
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&ids); err != nil {
		// Retry as strings: some models quote the ids.
		var strIDs []string
		if err := json.Unmarshal([]byte(raw), &strIDs); err != nil {
			return nil
		}
		out := make(map[string]bool, len(strIDs))
		for _, id := range strIDs {
			out[strings.TrimSpace(id)] = true
		}
		return out
	}
	out := make(map[string]bool, len(ids))
	for _, id := range ids {
		out[id.String()] = true
	}
	return out
}

// ClassifiedMessage is one entry of a classification response.
type ClassifiedMessage struct {
	MessageID string `json:"message_id"`
	Class     string `json:"class"`
}

// parseClassification parses a classification response leniently: a failure
// to locate or decode the array yields an empty slice, never an error.
func parseClassification(response string) []ClassifiedMessage {
	raw := extractJSONArray(response)
	if raw == "" {
		return nil
	}
	var out []ClassifiedMessage
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil
	}
	return out
}
