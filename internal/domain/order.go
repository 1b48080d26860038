package domain

import (
	"strings"

	"github.com/google/uuid"
)

// ContactInfo — контактные данные, собранные анкетой заказа.
type ContactInfo struct {
	FullName string
	Address  string
	Phone    string
	Comment  string
	Promo    string
}

// OrderLine — позиция заказа со снимком названия и цены на момент оформления.
type OrderLine struct {
	ProductID int64
	Name      string
	Price     int64 // копейки, за единицу
	Quantity  int
	Subtotal  int64 // копейки
}

// Order — оформленный заказ. Не сохраняется: формируется, отправляется
// операторам и забывается.
type Order struct {
	Number   string
	Lines    []OrderLine
	Total    int64 // копейки
	Contact  ContactInfo
	UserID   int64
	Username string
	FullName string
}

// NewOrderNumber генерирует номер заказа: первые 8 шестнадцатеричных символов
// случайного UUID в верхнем регистре. Номер носит справочный характер,
// коллизии не проверяются.
func NewOrderNumber() string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return strings.ToUpper(raw[:8])
}
