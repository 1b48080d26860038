package notify

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/tea-corner/go-backend/pkg/e"
	"github.com/tea-corner/go-backend/pkg/jitter"
	"github.com/tea-corner/go-backend/pkg/logger"
)

// MaxMessageLength — лимит транспорта на длину одного сообщения.
const MaxMessageLength = 4096

// MessageSender отправляет один текст одному получателю.
// Реализуется транспортным слоем.
type MessageSender interface {
	Send(ctx context.Context, chatID int64, text string) error
}

// Notifier доставляет сообщения операторам, разбивая длинный текст
// на части и повторяя неудачные отправки с экспоненциальной задержкой.
type Notifier struct {
	sender     MessageSender
	maxRetries int
	logger     logger.Logger
}

func NewNotifier(sender MessageSender, maxRetries int, logger logger.Logger) *Notifier {
	return &Notifier{
		sender:     sender,
		maxRetries: maxRetries,
		logger:     logger,
	}
}

// Deliver отправляет текст каждому получателю. Части длинного текста
// уходят отдельными сообщениями в исходном порядке. Ошибка по любому
// получателю возвращается после обхода всех остальных.
func (n *Notifier) Deliver(ctx context.Context, recipients []int64, text string) error {
	const op = "Notifier.Deliver"

	parts := SplitMessage(text, MaxMessageLength)

	var firstErr error
	for _, recipient := range recipients {
		for _, part := range parts {
			if err := n.sendWithRetry(ctx, recipient, part); err != nil {
				n.logger.Warnf("Delivery failed, recipient: %d, err: %v", recipient, err)
				if firstErr == nil {
					firstErr = err
				}
				break
			}
		}
	}

	if firstErr != nil {
		return e.Wrap(op, firstErr)
	}

	return nil
}

// Forward пересылает свободный текст пользователя с заголовком.
// Части после первой получают префикс «(продолжение)» вместо заголовка.
func (n *Notifier) Forward(ctx context.Context, recipients []int64, header, text string) error {
	const op = "Notifier.Forward"

	parts := SplitMessage(text, MaxMessageLength-len(header))

	var firstErr error
	for _, recipient := range recipients {
		for i, part := range parts {
			prefix := header
			if i > 0 {
				prefix = "(продолжение)\n"
			}
			if err := n.sendWithRetry(ctx, recipient, prefix+part); err != nil {
				n.logger.Warnf("Forward failed, recipient: %d, err: %v", recipient, err)
				if firstErr == nil {
					firstErr = err
				}
				break
			}
		}
	}

	if firstErr != nil {
		return e.Wrap(op, firstErr)
	}

	return nil
}

// sendWithRetry повторяет отправку с экспоненциальной задержкой и джиттером.
func (n *Notifier) sendWithRetry(ctx context.Context, recipient int64, text string) error {
	const (
		op          = "Notifier.sendWithRetry"
		baseBackoff = 500 * time.Millisecond
		maxBackoff  = 10 * time.Second
	)

	var lastErr error
	for attempt := 0; attempt < n.maxRetries; attempt++ {
		lastErr = n.sender.Send(ctx, recipient, text)
		if lastErr == nil {
			return nil
		}

		if attempt == n.maxRetries-1 {
			break
		}

		sleepTime := jitter.ExponentialBackoff(baseBackoff, maxBackoff, attempt, jitter.DefaultJitter)
		n.logger.Warnf("Send failed, retrying in %v (attempt %d), recipient: %d", sleepTime, attempt+1, recipient)
		select {
		case <-time.After(sleepTime):
		case <-ctx.Done():
			return e.Wrap(op, ctx.Err())
		}
	}

	return e.Wrap(op, fmt.Errorf("all %d attempts failed: %w", n.maxRetries, lastErr))
}

// SplitMessage режет текст на части не длиннее limit, предпочитая разрыв
// по последнему переводу строки до границы. Без перевода строки разрез
// сдвигается к началу ближайшей руны, чтобы не порвать UTF-8.
func SplitMessage(text string, limit int) []string {
	if limit <= 0 {
		limit = MaxMessageLength
	}

	parts := make([]string, 0, 1)
	for len(text) > limit {
		splitIndex := strings.LastIndex(text[:limit], "\n")
		if splitIndex <= 0 {
			splitIndex = limit
			for splitIndex > 1 && !utf8.RuneStart(text[splitIndex]) {
				splitIndex--
			}
		}
		parts = append(parts, text[:splitIndex])
		text = strings.TrimLeft(text[splitIndex:], "\n ")
	}
	parts = append(parts, text)

	return parts
}
