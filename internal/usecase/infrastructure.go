package usecase

import "context"

// NotifierInfra — доставка сообщений операторам с разбиением длинного текста.
type NotifierInfra interface {
	// Deliver отправляет текст каждому получателю, разбивая его на части
	// при превышении лимита транспорта.
	Deliver(ctx context.Context, recipients []int64, text string) error
	// Forward пересылает свободный текст пользователя с заголовком;
	// части после первой получают префикс «(продолжение)».
	Forward(ctx context.Context, recipients []int64, header, text string) error
}

// OrderEventProducer публикует событие оформленного заказа во внешний поток.
type OrderEventProducer interface {
	WriteOrder(ctx context.Context, req *WriteOrderReq) error
}
