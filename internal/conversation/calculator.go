package conversation

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/tea-corner/go-backend/internal/domain"
)

// startCalculator запускает расчёт стоимости по граммам для товаров
// корзины с известным весом. Пустая корзина и корзина без весовых
// позиций оставляют состояние неизменным.
func (e *Engine) startCalculator(ctx context.Context, session *domain.Session, ev Event) []Reply {
	resolved := e.resolveCart(ctx, ev.UserID)
	if len(resolved) == 0 {
		return []Reply{textReply("Ваша корзина пуста.")}
	}

	targets := make([]domain.CalcTarget, 0, len(resolved))
	for _, line := range resolved {
		if line.product.Weight == nil || line.product.Weight.IsZero() {
			continue
		}
		targets = append(targets, domain.CalcTarget{
			ProductID: line.product.ID,
			Name:      line.product.Name,
			Price:     line.product.PriceRub(),
			Weight:    *line.product.Weight,
		})
	}

	if len(targets) == 0 {
		return []Reply{textReply("Нет товаров с указанием веса для расчёта.")}
	}

	session.Calc = &domain.CalculatorRun{Targets: targets}
	session.State = domain.StateAwaitingCalcGrams

	return []Reply{calcPromptReply(session.Calc.Current())}
}

// handleCalcGrams принимает количество грамм для очередного товара.
// Нечисловой или неположительный ввод переспрашивается без продвижения.
// Стоимость позиции всегда округляется вверх до целого рубля.
func (e *Engine) handleCalcGrams(ctx context.Context, session *domain.Session, ev Event) []Reply {
	run := session.Calc
	if run == nil || run.Done() {
		// Расчёт потерян (например, процесс сбросил сессию). Выходим аккуратно.
		session.Reset()
		return []Reply{mainMenuReply()}
	}

	grams, err := decimal.NewFromString(strings.TrimSpace(ev.Text))
	if err != nil || !grams.IsPositive() {
		return []Reply{textReply("Пожалуйста, введите положительное число грамм.")}
	}

	target := run.Current()
	subtotal := grams.Mul(target.Price).Div(target.Weight).Ceil().IntPart()

	run.Results = append(run.Results, domain.CalcResult{
		Name:     target.Name,
		Grams:    grams,
		Subtotal: subtotal,
	})
	run.Total += subtotal
	run.Cursor++

	if !run.Done() {
		return []Reply{calcPromptReply(run.Current())}
	}

	reply := calcResultReply(run)
	session.Reset()

	return []Reply{reply}
}
