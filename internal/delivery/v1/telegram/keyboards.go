package telegram

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/tea-corner/go-backend/internal/conversation"
)

// replyMarkup преобразует раскладку ядра в разметку Telegram.
func replyMarkup(reply conversation.Reply) interface{} {
	if reply.Keyboard == nil {
		if reply.RemoveMenu {
			return tgbotapi.NewRemoveKeyboard(false)
		}
		return nil
	}

	if len(reply.Keyboard.Inline) > 0 {
		rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(reply.Keyboard.Inline))
		for _, row := range reply.Keyboard.Inline {
			buttons := make([]tgbotapi.InlineKeyboardButton, 0, len(row))
			for _, b := range row {
				if b.URL != "" {
					buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonURL(b.Label, b.URL))
					continue
				}
				buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonData(b.Label, callbackData(b)))
			}
			rows = append(rows, buttons)
		}
		return tgbotapi.NewInlineKeyboardMarkup(rows...)
	}

	rows := make([][]tgbotapi.KeyboardButton, 0, len(reply.Keyboard.Menu))
	for _, row := range reply.Keyboard.Menu {
		buttons := make([]tgbotapi.KeyboardButton, 0, len(row))
		for _, label := range row {
			buttons = append(buttons, tgbotapi.NewKeyboardButton(label))
		}
		rows = append(rows, buttons)
	}
	markup := tgbotapi.NewReplyKeyboard(rows...)
	markup.ResizeKeyboard = true

	return markup
}

func callbackData(b conversation.InlineButton) string {
	if b.Arg == "" {
		return b.Action
	}
	return b.Action + ":" + b.Arg
}
