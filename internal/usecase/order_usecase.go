package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/tea-corner/go-backend/internal/domain"
	"github.com/tea-corner/go-backend/pkg/e"
	"github.com/tea-corner/go-backend/pkg/logger"
)

// OrderUseCase собирает заказ из корзины и контактных данных,
// доставляет его операторам и публикует событие в Kafka.
type OrderUseCase struct {
	carts     CartRepository
	catalog   CatalogUC
	notifier  NotifierInfra
	producer  OrderEventProducer
	operators []int64
	logger    logger.Logger
}

func NewOrderUC(
	carts CartRepository,
	catalog CatalogUC,
	notifier NotifierInfra,
	producer OrderEventProducer,
	operators []int64,
	logger logger.Logger,
) *OrderUseCase {
	return &OrderUseCase{
		carts:     carts,
		catalog:   catalog,
		notifier:  notifier,
		producer:  producer,
		operators: operators,
		logger:    logger,
	}
}

// Submit оформляет заказ. Корзина перечитывается на момент вызова:
// если её успел очистить фоновый сброс, возвращается ErrCartEmpty.
// При ошибке доставки корзина сохраняется, чтобы пользователь мог повторить.
func (o *OrderUseCase) Submit(ctx context.Context, req *SubmitOrderReq) (*SubmitOrderRes, error) {
	const op = "OrderUseCase.Submit"

	lines := o.carts.Lines(req.UserID)
	if len(lines) == 0 {
		return nil, e.Wrap(op, e.ErrCartEmpty)
	}

	order := &domain.Order{
		Number:   domain.NewOrderNumber(),
		Contact:  req.Contact,
		UserID:   req.UserID,
		Username: req.Username,
		FullName: req.FullName,
	}

	for _, line := range lines {
		product, err := o.catalog.GetByID(ctx, line.ProductID)
		if err != nil {
			// Снятые с продажи и недоступные товары молча пропускаются,
			// как и при отрисовке корзины.
			if !errors.Is(err, e.ErrProductNotFound) {
				o.logger.Warnf("Failed to resolve cart line: %v", e.Wrap(op, err))
			}
			continue
		}

		subtotal := product.Price * int64(line.Quantity)
		order.Lines = append(order.Lines, domain.OrderLine{
			ProductID: product.ID,
			Name:      product.Name,
			Price:     product.Price,
			Quantity:  line.Quantity,
			Subtotal:  subtotal,
		})
		order.Total += subtotal
	}

	if len(order.Lines) == 0 {
		return nil, e.Wrap(op, e.ErrCartEmpty)
	}

	text := formatOrderText(order)
	if err := o.notifier.Deliver(ctx, o.operators, text); err != nil {
		o.logger.Errorf(err, "order delivery failed, order_number: %s", order.Number)
		return nil, e.Wrap(op, e.ErrOrderDelivery)
	}

	// Событие заказа публикуется по возможности: сбой потока не должен
	// ломать уже доставленный операторам заказ.
	if err := o.producer.WriteOrder(ctx, NewWriteOrderReq(order)); err != nil {
		o.logger.Warnf("Failed to publish order event: %v", e.Wrap(op, err))
	}

	o.carts.Clear(req.UserID)

	return NewSubmitOrderRes(order.Number, order.Total), nil
}

// formatOrderText формирует сообщение оператору с фиксированной разметкой.
func formatOrderText(order *domain.Order) string {
	var b strings.Builder

	fmt.Fprintf(&b, "<b>Номер заказа:</b> %s\n\n", order.Number)
	b.WriteString("<b>Состав заказа:</b>\n")
	for _, line := range order.Lines {
		fmt.Fprintf(&b, "<b>%s</b> x%d — %s₽\n", line.Name, line.Quantity, FormatKopecks(line.Subtotal))
	}

	fmt.Fprintf(&b, "\n<b>Итого:</b> %s₽\n\n", FormatKopecks(order.Total))
	b.WriteString("<b>Контактная информация:</b>\n")
	fmt.Fprintf(&b, "ФИО: %s\n", order.Contact.FullName)
	fmt.Fprintf(&b, "Адрес: %s\n", order.Contact.Address)
	fmt.Fprintf(&b, "Телефон: %s\n\n", order.Contact.Phone)
	fmt.Fprintf(&b, "Комментарий: %s\n\n", order.Contact.Comment)
	fmt.Fprintf(&b, "Промокод: %s\n\n\n", order.Contact.Promo)
	fmt.Fprintf(&b, "<i>Отправил: %s (@%s), ID: %d</i>", order.FullName, order.Username, order.UserID)

	return b.String()
}
