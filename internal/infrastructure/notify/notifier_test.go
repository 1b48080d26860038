package notify_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/tea-corner/go-backend/internal/infrastructure/notify"
	"github.com/tea-corner/go-backend/pkg/logger"
)

type sentMessage struct {
	chatID int64
	text   string
}

type fakeSender struct {
	sent    []sentMessage
	failFor map[int64]bool
}

func (f *fakeSender) Send(_ context.Context, chatID int64, text string) error {
	if f.failFor[chatID] {
		return errors.New("send failed")
	}
	f.sent = append(f.sent, sentMessage{chatID: chatID, text: text})
	return nil
}

func TestSplitMessageShortTextStaysWhole(t *testing.T) {
	parts := notify.SplitMessage("привет", 4096)
	if len(parts) != 1 || parts[0] != "привет" {
		t.Fatalf("unexpected parts: %q", parts)
	}
}

func TestSplitMessagePrefersNewlineBoundary(t *testing.T) {
	text := strings.Repeat("a", 10) + "\n" + strings.Repeat("b", 10)
	parts := notify.SplitMessage(text, 15)

	if len(parts) != 2 {
		t.Fatalf("expected 2 parts, got %d: %q", len(parts), parts)
	}
	if parts[0] != strings.Repeat("a", 10) {
		t.Fatalf("expected split at newline, got %q", parts[0])
	}
	if parts[1] != strings.Repeat("b", 10) {
		t.Fatalf("unexpected second part: %q", parts[1])
	}
}

func TestSplitMessageHardSplitWithoutNewline(t *testing.T) {
	text := strings.Repeat("x", 25)
	parts := notify.SplitMessage(text, 10)

	if len(parts) != 3 {
		t.Fatalf("expected 3 parts, got %d", len(parts))
	}
	for _, part := range parts {
		if len(part) > 10 {
			t.Fatalf("part exceeds limit: %d", len(part))
		}
	}
	if joined := strings.Join(parts, ""); joined != text {
		t.Fatalf("content lost during split: %q", joined)
	}
}

func TestDeliverSendsToEveryRecipient(t *testing.T) {
	sender := &fakeSender{}
	n := notify.NewNotifier(sender, 1, logger.NewSlogLogger())

	if err := n.Deliver(context.Background(), []int64{1, 2, 3}, "заказ"); err != nil {
		t.Fatalf("Deliver failed: %v", err)
	}
	if len(sender.sent) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(sender.sent))
	}
}

func TestDeliverReportsFailureButReachesOthers(t *testing.T) {
	sender := &fakeSender{failFor: map[int64]bool{2: true}}
	n := notify.NewNotifier(sender, 1, logger.NewSlogLogger())

	err := n.Deliver(context.Background(), []int64{1, 2, 3}, "заказ")
	if err == nil {
		t.Fatalf("expected error for failed recipient")
	}
	if len(sender.sent) != 2 {
		t.Fatalf("expected delivery to healthy recipients, got %d messages", len(sender.sent))
	}
}

func TestForwardMarksContinuationParts(t *testing.T) {
	sender := &fakeSender{}
	n := notify.NewNotifier(sender, 1, logger.NewSlogLogger())

	header := "От пользователя:\n"
	text := strings.Repeat("строка\n", 1000)
	if err := n.Forward(context.Background(), []int64{7}, header, text); err != nil {
		t.Fatalf("Forward failed: %v", err)
	}

	if len(sender.sent) < 2 {
		t.Fatalf("expected split into multiple parts, got %d", len(sender.sent))
	}
	if !strings.HasPrefix(sender.sent[0].text, header) {
		t.Fatalf("first part must carry the header: %q", sender.sent[0].text[:40])
	}
	for _, msg := range sender.sent[1:] {
		if !strings.HasPrefix(msg.text, "(продолжение)") {
			t.Fatalf("continuation part missing marker: %q", msg.text[:40])
		}
	}
}
