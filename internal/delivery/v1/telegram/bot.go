package telegram

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/tea-corner/go-backend/internal/cfg"
	"github.com/tea-corner/go-backend/internal/conversation"
	"github.com/tea-corner/go-backend/internal/infrastructure/notify"
	"github.com/tea-corner/go-backend/pkg/e"
	"github.com/tea-corner/go-backend/pkg/logger"
)

// Bot — транспорт Telegram: длинный опрос обновлений, преобразование
// сообщений и нажатий кнопок в события ядра и отрисовка ответов.
// Также реализует notify.MessageSender для доставки сообщений операторам.
type Bot struct {
	api       *tgbotapi.BotAPI
	engine    *conversation.Engine
	operators map[int64]bool
	cfg       *cfg.TelegramCfg
	logger    logger.Logger
}

func NewBot(cfg *cfg.TelegramCfg, logger logger.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(cfg.Token)
	if err != nil {
		return nil, e.Wrap("telegram.NewBot", err)
	}

	operators := make(map[int64]bool, len(cfg.Operators))
	for _, id := range cfg.Operators {
		operators[id] = true
	}

	return &Bot{
		api:       api,
		operators: operators,
		cfg:       cfg,
		logger:    logger,
	}, nil
}

// SetEngine подключает диалоговое ядро. Ядро зависит от доставки
// уведомлений через этого же бота, поэтому привязывается после создания.
func (b *Bot) SetEngine(engine *conversation.Engine) {
	b.engine = engine
}

// Run читает обновления до отмены контекста.
// Каждое обновление обрабатывается в своей горутине: латентность
// каталога для одного пользователя не задерживает остальных.
func (b *Bot) Run(ctx context.Context) error {
	updateCfg := tgbotapi.NewUpdate(0)
	updateCfg.Timeout = b.cfg.PollTimeout

	updates := b.api.GetUpdatesChan(updateCfg)
	b.logger.Infof("Telegram bot started, account: %s", b.api.Self.UserName)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			go b.processUpdate(ctx, update)
		}
	}
}

func (b *Bot) processUpdate(ctx context.Context, update tgbotapi.Update) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Warnf("Update handling panicked: %v", r)
		}
	}()

	switch {
	case update.CallbackQuery != nil:
		b.processCallback(ctx, update.CallbackQuery)
	case update.Message != nil:
		b.processMessage(ctx, update.Message)
	}
}

func (b *Bot) processMessage(ctx context.Context, msg *tgbotapi.Message) {
	if msg.From == nil || msg.Text == "" {
		return
	}

	// Служебная команда оператора для ответа пользователю в личку.
	if b.operators[msg.From.ID] && strings.HasPrefix(msg.Text, "!message") {
		b.handleOperatorMessage(ctx, msg)
		return
	}

	ev := conversation.Event{
		UserID:   msg.From.ID,
		Username: msg.From.UserName,
		FullName: strings.TrimSpace(msg.From.FirstName + " " + msg.From.LastName),
		Kind:     conversation.EventText,
		Text:     msg.Text,
	}
	if msg.IsCommand() {
		ev.Kind = conversation.EventCommand
		ev.Text = "/" + msg.Command()
	}

	b.renderReplies(ctx, msg.From.ID, b.engine.Handle(ctx, ev))
}

func (b *Bot) processCallback(ctx context.Context, query *tgbotapi.CallbackQuery) {
	if _, err := b.api.Request(tgbotapi.NewCallback(query.ID, "")); err != nil {
		b.logger.Warnf("Failed to answer callback: %v", err)
	}

	action, arg, _ := strings.Cut(query.Data, ":")
	ev := conversation.Event{
		UserID:   query.From.ID,
		Username: query.From.UserName,
		FullName: strings.TrimSpace(query.From.FirstName + " " + query.From.LastName),
		Kind:     conversation.EventButton,
		Button:   &conversation.ButtonPress{Action: action, Arg: arg},
	}

	b.renderReplies(ctx, query.From.ID, b.engine.Handle(ctx, ev))
}

// handleOperatorMessage обрабатывает "!message <user_id> <текст>":
// отправляет текст пользователю от имени магазина, по частям при необходимости.
func (b *Bot) handleOperatorMessage(ctx context.Context, msg *tgbotapi.Message) {
	args := strings.SplitN(msg.Text, " ", 3)
	if len(args) < 3 {
		b.reply(msg.From.ID, "❗️Использование: !message <user_id> <сообщение>")
		return
	}

	targetID, err := strconv.ParseInt(args[1], 10, 64)
	if err != nil {
		b.reply(msg.From.ID, "❗️Неверный ID пользователя.")
		return
	}

	for _, part := range notify.SplitMessage(args[2], notify.MaxMessageLength) {
		if err := b.Send(ctx, targetID, part); err != nil {
			b.logger.Warnf("Operator DM failed, target: %d, err: %v", targetID, err)
			b.reply(msg.From.ID, fmt.Sprintf("⚠️ Ошибка: %v", err))
			return
		}
	}

	b.reply(msg.From.ID, "✅ Сообщение отправлено.")
}

func (b *Bot) renderReplies(ctx context.Context, chatID int64, replies []conversation.Reply) {
	for _, reply := range replies {
		if err := b.sendReply(chatID, reply); err != nil {
			b.logger.Warnf("Failed to send reply, chat_id: %d, err: %v", chatID, err)
		}
		if ctx.Err() != nil {
			return
		}
	}
}

func (b *Bot) sendReply(chatID int64, reply conversation.Reply) error {
	// Карточка с фото уходит фотографией с подписью;
	// при сбое откатываемся к обычному тексту.
	if reply.PhotoURL != "" {
		photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileURL(reply.PhotoURL))
		photo.Caption = reply.Text
		photo.ParseMode = tgbotapi.ModeHTML
		if markup := replyMarkup(reply); markup != nil {
			photo.ReplyMarkup = markup
		}
		_, err := b.api.Send(photo)
		if err == nil {
			return nil
		}
		b.logger.Warnf("Failed to send photo, url: %s, err: %v", reply.PhotoURL, err)
	}

	msg := tgbotapi.NewMessage(chatID, reply.Text)
	msg.ParseMode = tgbotapi.ModeHTML
	if markup := replyMarkup(reply); markup != nil {
		msg.ReplyMarkup = markup
	}

	_, err := b.api.Send(msg)
	return err
}

func (b *Bot) reply(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.api.Send(msg); err != nil {
		b.logger.Warnf("Failed to send service reply, chat_id: %d, err: %v", chatID, err)
	}
}

// Send реализует notify.MessageSender.
func (b *Bot) Send(_ context.Context, chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML

	if _, err := b.api.Send(msg); err != nil {
		return e.Wrap("telegram.Send", err)
	}

	return nil
}
