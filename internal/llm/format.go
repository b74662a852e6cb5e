package llm

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"chatlens-backend/internal/messages"
)

const (
	// MaxFormattedChars caps the formatted transcript handed to a provider.
	MaxFormattedChars = 8000
	// maxMessageChars caps a single message during optimization.
	maxMessageChars = 200

	truncationMarker = "\n... (text truncated to save tokens)"
)

var whitespaceRe = regexp.MustCompile(`\s+`)

// FormatMessages renders messages as "[HH:MM] sender: text" lines for prompts.
// Blank messages are skipped and the result is capped at MaxFormattedChars.
func FormatMessages(msgs []messages.Message) string {
	if len(msgs) == 0 {
		return ""
	}
	var lines []string
	for _, msg := range msgs {
		text := strings.TrimSpace(msg.Text)
		if text == "" {
			continue
		}
		sender := msg.SenderName
		if sender == "" {
			sender = "Unknown"
		}
		lines = append(lines, fmt.Sprintf("[%s] %s: %s", msg.TimeLabel(), sender, text))
	}
	full := strings.Join(lines, "\n")
	if len(full) > MaxFormattedChars {
		full = cutRunes(full, MaxFormattedChars) + truncationMarker
	}
	return full
}

// OptimizeMessages collapses whitespace and clips very long messages so the
// transcript fits a model context. Blank messages are dropped.
func OptimizeMessages(msgs []messages.Message) []messages.Message {
	out := make([]messages.Message, 0, len(msgs))
	for _, msg := range msgs {
		text := strings.TrimSpace(msg.Text)
		if text == "" {
			continue
		}
		text = whitespaceRe.ReplaceAllString(text, " ")
		if len(text) > maxMessageChars {
			text = cutRunes(text, maxMessageChars) + "..."
		}
		msg.Text = text
		out = append(out, msg)
	}
	return out
}

// cutRunes truncates s to at most limit bytes without splitting a rune, so
// Cyrillic transcripts never yield invalid UTF-8 in prompts or log artifacts.
func cutRunes(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	for limit > 0 && !utf8.RuneStart(s[limit]) {
		limit--
	}
	return s[:limit]
}

// SummarizationPrompt builds the day-summary prompt for a formatted transcript.
func SummarizationPrompt(formatted string, chatCtx ChatContext) string {
	date := chatCtx.Date
	if date == "" {
		date = "unknown date"
	}
	return fmt.Sprintf(`Summarize the following parent chat conversation for %s.

MESSAGES:
%s

Write a structured summary that:
1. Covers the main topics and decisions of the day
2. Highlights information parents must act on
3. Lists announcements, events, rules and deadlines
4. Stays short and easy to scan

SUMMARY:`, date, formatted)
}
