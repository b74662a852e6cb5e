package llm

import (
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"chatlens-backend/internal/messages"
)

func TestFormatMessagesSkipsBlankAndLabelsTime(t *testing.T) {
	msgs := []messages.Message{
		{SenderName: "Anna", Text: "trip on friday", SentAt: time.Date(2026, 3, 5, 9, 30, 0, 0, time.UTC)},
		{SenderName: "Boris", Text: "   "},
		{SenderName: "", Text: "bring boots", SentAt: time.Date(2026, 3, 5, 10, 15, 0, 0, time.UTC)},
	}

	got := FormatMessages(msgs)
	lines := strings.Split(got, "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d: %q", len(lines), got)
	}
	if lines[0] != "[09:30] Anna: trip on friday" {
		t.Fatalf("unexpected first line: %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "[10:15] Unknown: ") {
		t.Fatalf("unexpected second line: %q", lines[1])
	}
}

func TestFormatMessagesTruncatesLongTranscripts(t *testing.T) {
	long := strings.Repeat("x", 500)
	var msgs []messages.Message
	for i := 0; i < 30; i++ {
		msgs = append(msgs, messages.Message{SenderName: "Anna", Text: long})
	}

	got := FormatMessages(msgs)
	if !strings.Contains(got, "truncated") {
		t.Fatalf("expected truncation marker")
	}
	if len(got) > MaxFormattedChars+len(truncationMarker) {
		t.Fatalf("formatted text too long: %d", len(got))
	}
}

func TestFormatMessagesTruncatesCyrillicOnRuneBoundary(t *testing.T) {
	long := strings.Repeat("расписание", 100)
	var msgs []messages.Message
	for i := 0; i < 10; i++ {
		msgs = append(msgs, messages.Message{SenderName: "Анна", Text: long})
	}

	got := FormatMessages(msgs)
	if !strings.Contains(got, "truncated") {
		t.Fatalf("expected truncation marker")
	}
	if !utf8.ValidString(got) {
		t.Fatalf("truncation split a rune")
	}
}

func TestOptimizeMessagesClipsCyrillicOnRuneBoundary(t *testing.T) {
	// 199 ASCII bytes put the byte limit in the middle of the first two-byte
	// rune that follows.
	msgs := []messages.Message{
		{SenderName: "Anna", Text: strings.Repeat("a", maxMessageChars-1) + "яяяя"},
	}

	got := OptimizeMessages(msgs)
	if len(got) != 1 {
		t.Fatalf("expected 1 message, got %d", len(got))
	}
	if !utf8.ValidString(got[0].Text) {
		t.Fatalf("clip split a rune: %q", got[0].Text)
	}
	if !strings.HasSuffix(got[0].Text, "...") {
		t.Fatalf("expected clip suffix: %q", got[0].Text)
	}
	if len(got[0].Text) > maxMessageChars+3 {
		t.Fatalf("clipped message too long: %d bytes", len(got[0].Text))
	}
}

func TestOptimizeMessagesClipsAndCollapses(t *testing.T) {
	msgs := []messages.Message{
		{SenderName: "Anna", Text: "a  lot\n\nof   space"},
		{SenderName: "Boris", Text: strings.Repeat("y", 300)},
		{SenderName: "Vera", Text: ""},
	}

	got := OptimizeMessages(msgs)
	if len(got) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(got))
	}
	if got[0].Text != "a lot of space" {
		t.Fatalf("whitespace not collapsed: %q", got[0].Text)
	}
	if len(got[1].Text) != maxMessageChars+3 || !strings.HasSuffix(got[1].Text, "...") {
		t.Fatalf("long message not clipped: %d chars", len(got[1].Text))
	}
}
