package conversation

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/tea-corner/go-backend/internal/domain"
	"github.com/tea-corner/go-backend/internal/usecase"
	pkge "github.com/tea-corner/go-backend/pkg/e"
)

// orderStep описывает один шаг анкеты заказа: как переспросить
// при пустом вводе и куда двигаться после принятого значения.
type orderStep struct {
	reprompt   string
	nextPrompt string
	nextState  domain.State
}

// Анкета всегда проходится в фиксированном порядке:
// ФИО → адрес → телефон → комментарий → промокод.
var orderSteps = map[string]orderStep{
	domain.FieldFullName: {
		reprompt:   "Пожалуйста, введите корректное ФИО:",
		nextPrompt: "Введите адрес доставки (для отмены /cancel):",
		nextState:  domain.StateAwaitingOrderAddress,
	},
	domain.FieldAddress: {
		reprompt:   "Пожалуйста, введите корректный адрес:",
		nextPrompt: "Введите номер телефона (для отмены /cancel):",
		nextState:  domain.StateAwaitingOrderPhone,
	},
	domain.FieldPhone: {
		reprompt:   "Пожалуйста, введите корректный номер телефона:",
		nextPrompt: "Оставьте комментарий к заказу, если есть (для отмены /cancel):",
		nextState:  domain.StateAwaitingOrderComment,
	},
	domain.FieldComment: {
		reprompt:   "Здесь можете уточнить детали заказа:",
		nextPrompt: "Введите промокод, если есть (для отмены /cancel):",
		nextState:  domain.StateAwaitingOrderPromo,
	},
}

// orderFieldHandler возвращает обработчик одного обязательного поля анкеты.
// Пустой ввод переспрашивает без продвижения по анкете.
func (e *Engine) orderFieldHandler(field string) handlerFunc {
	step := orderSteps[field]

	return func(ctx context.Context, session *domain.Session, ev Event) []Reply {
		value := strings.TrimSpace(ev.Text)
		if value == "" {
			return []Reply{textReply(step.reprompt)}
		}

		session.Scratch[field] = value
		session.State = step.nextState

		return []Reply{textReply(step.nextPrompt)}
	}
}

// handleOrderPromo принимает последнее поле анкеты (пустой промокод
// допустим и нормализуется в прочерк) и передаёт заказ сборщику.
// Из этого состояния диалог безусловно возвращается в исходное.
func (e *Engine) handleOrderPromo(ctx context.Context, session *domain.Session, ev Event) []Reply {
	promo := strings.TrimSpace(ev.Text)
	if promo == "" {
		promo = "—"
	}

	contact := domain.ContactInfo{
		FullName: session.Scratch[domain.FieldFullName],
		Address:  session.Scratch[domain.FieldAddress],
		Phone:    session.Scratch[domain.FieldPhone],
		Comment:  session.Scratch[domain.FieldComment],
		Promo:    promo,
	}
	session.Reset()

	res, err := e.orders.Submit(ctx, usecase.NewSubmitOrderReq(ev.UserID, ev.Username, ev.FullName, contact))
	if err != nil {
		switch {
		case errors.Is(err, pkge.ErrCartEmpty):
			return []Reply{textReply("Ваша корзина пуста.")}
		case errors.Is(err, pkge.ErrOrderDelivery):
			return []Reply{textReply("Ошибка при отправке заказа. Попробуйте ещё раз позже.")}
		default:
			e.logger.Errorf(err, "order submit failed, user_id: %d", ev.UserID)
			return []Reply{textReply("Ошибка при отправке заказа. Попробуйте ещё раз позже.")}
		}
	}

	return []Reply{
		textReply(fmt.Sprintf(
			"Ваш заказ принят. Номер заказа: <b>%s</b>\nОжидайте инструкций по оплате.",
			res.OrderNumber,
		)),
		mainMenuReply(),
	}
}
