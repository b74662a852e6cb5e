package analysis

import (
	"encoding/json"
	"fmt"
	"strings"

	"chatlens-backend/internal/messages"
)

func cleaningPrompt(msgs []messages.Message) string {
	var b strings.Builder
	for i, msg := range msgs {
		text := strings.TrimSpace(msg.Text)
		if text == "" {
			continue
		}
		fmt.Fprintf(&b, "ID: %s\nText: %s\n\n", messageID(msg, i), text)
	}
	return fmt.Sprintf(`Filter the chat messages below, keeping only the ones that carry information parents need.

MESSAGES:
%s
Drop:
- Coordination chatter ("who picks up", "what time", "where do we meet")
- Micromanagement ("don't forget", "remind the kids")
- Irrelevant small talk
- Duplicate messages
- Short reactions ("ok", "thanks", "got it")

Keep:
- Important announcements
- Event information
- Rules and requirements
- Problems and complaints
- Educational information

Return only a JSON array of the message IDs to keep:
[1, 5, 12, 23, ...]`, b.String())
}

func reflectionPrompt(summary string, msgs []messages.Message, date string) string {
	total := len(msgs)
	limit := total
	if limit > 50 {
		limit = 50
	}
	if date == "" {
		date = "unknown date"
	}

	var b strings.Builder
	for i, msg := range msgs[:limit] {
		text := strings.TrimSpace(msg.Text)
		if text == "" {
			continue
		}
		sender := msg.SenderName
		if sender == "" {
			sender = "Unknown"
		}
		fmt.Fprintf(&b, "%d. [%s] %s: %s\n", i+1, msg.TimeLabel(), sender, text)
	}
	if total > limit {
		fmt.Fprintf(&b, "\n... and %d more messages\n", total-limit)
	}

	return fmt.Sprintf(`Review the following chat summary and give a critical assessment:

SUMMARY:
%s

ORIGINAL MESSAGES (first %d of %d):
%s
CONTEXT:
- Date: %s
- Total messages: %d
- Reviewed: %d

Assess:
1. Coverage: compare against the original messages
2. Factual accuracy
3. Structure and readability
4. Important details the summary missed
5. Concrete improvements

Give constructive criticism and improvement suggestions.`, summary, limit, total, b.String(), date, total, limit)
}

func improvementPrompt(summary, reflection string) string {
	return fmt.Sprintf(`Using the original summary and the review below, produce an improved version:

ORIGINAL SUMMARY:
%s

REVIEW:
%s

Write an improved summary that:
1. Addresses the review's findings
2. Is better structured and more logical
3. Keeps every important detail
4. Reads easily

IMPROVED SUMMARY:`, summary, reflection)
}

func classificationPrompt(content string) string {
	return fmt.Sprintf(`Classify the chat messages below by type:

MESSAGES:
%s

Assign each message one of these categories:
- "important": information parents must know
- "coordination": planning and coordination
- "micromanagement": micromanagement
- "irrelevant": irrelevant chatter
- "release_pickup": pickup and drop-off details
- "rules": rules and requirements
- "events": events and activities
- "problems": problems and complaints

Return only a JSON array of objects:
[{"message_id": "id", "class": "category"}, ...]`, content)
}

func schedulePrompt(scheduleText, targetDate, weekday string) string {
	return fmt.Sprintf(`Read the schedule text and find the activities on %s (%s).

SCHEDULE TEXT:
%s

Extract:
1. Activity times
2. Subject or activity names
3. Location, when given
4. Any extra notes

If the day is not present, answer "No schedule found for %s".

Answer format:
**%s (%s)**
- time - subject/activity
- time - subject/activity`, targetDate, weekday, scheduleText, targetDate, targetDate, weekday)
}

func parentSummaryPrompt(events []ExtractedEvent) string {
	var b strings.Builder
	for _, event := range events {
		fmt.Fprintf(&b, "- %s: %s\n", event.Type, event.Description)
	}
	return fmt.Sprintf(`Write a short digest for parents based on the extracted events:

EVENTS:
%s
Write a structured digest that:
1. Briefly describes the day's main events
2. Highlights information parents need
3. Points out actions parents must take
4. Reads easily

PARENT DIGEST:`, b.String())
}

func messageID(msg messages.Message, index int) string {
	if msg.MessageID != "" {
		return msg.MessageID
	}
	return fmt.Sprint(index)
}

func classificationInputJSON(msgs []messages.Message) string {
	type entry struct {
		ID   string `json:"id"`
		Text string `json:"text"`
	}
	entries := make([]entry, 0, len(msgs))
	for i, msg := range msgs {
		entries = append(entries, entry{ID: messageID(msg, i), Text: msg.Text})
	}
	payload, err := json.Marshal(entries)
	if err != nil {
		return "[]"
	}
	return string(payload)
}
