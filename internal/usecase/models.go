package usecase

import (
	"github.com/shopspring/decimal"
	"github.com/tea-corner/go-backend/internal/domain"
)

// PRODUCT USECASE

// CreateProductReq — запрос на добавление нового товара.
type CreateProductReq struct {
	Name        string
	Category    string
	Origin      *string
	Description *string
	Price       int64 // копейки
	Weight      *decimal.Decimal
	Photo       *ProductPhoto
}

// ProductPhoto представляет фото, загруженное через multipart/form-data.
type ProductPhoto struct {
	Data     []byte // байты изображения
	MimeType string // Content-Type из multipart (image/jpeg)
	Size     int64  // фактический размер в байтах
	Name     string // оригинальное имя файла (для логов и ключа объекта)
}

// ProductPatch — частичное обновление товара; nil-поля не меняются.
type ProductPatch struct {
	Name        *string
	Category    *string
	Origin      *string
	Description *string
	Price       *int64
	Weight      *decimal.Decimal
	IsActive    *bool
}

// UpdateProductReq — запрос на частичное обновление товара.
type UpdateProductReq struct {
	Patch ProductPatch
}

// ListProductsReq — постраничный запрос списка товаров.
type ListProductsReq struct {
	Skip     int
	Limit    int
	Category string
}

// ProductRes — DTO товара для внешнего использования.
type ProductRes struct {
	ID          int64
	Name        string
	Category    string
	Origin      *string
	Description *string
	Price       int64
	Weight      *decimal.Decimal
	PhotoURL    *string
}

// ORDER USECASE

// SubmitOrderReq — запрос на оформление заказа из текущей корзины пользователя.
type SubmitOrderReq struct {
	UserID   int64
	Username string
	FullName string
	Contact  domain.ContactInfo
}

// SubmitOrderRes — результат успешного оформления.
type SubmitOrderRes struct {
	OrderNumber string
	Total       int64 // копейки
}

// INFRASTRUCTURE

// WriteOrderReq — событие оформленного заказа для публикации в Kafka.
type WriteOrderReq struct {
	Order *domain.Order
}

// MAPPERS

func NewProductRes(p *domain.Product) *ProductRes {
	return &ProductRes{
		ID:          p.ID,
		Name:        p.Name,
		Category:    p.Category,
		Origin:      p.Origin,
		Description: p.Description,
		Price:       p.Price,
		Weight:      p.Weight,
		PhotoURL:    p.PhotoURL,
	}
}

func NewProductResList(products []domain.Product) []ProductRes {
	result := make([]ProductRes, 0, len(products))
	for i := range products {
		result = append(result, *NewProductRes(&products[i]))
	}
	return result
}

func NewSubmitOrderReq(userID int64, username, fullName string, contact domain.ContactInfo) *SubmitOrderReq {
	return &SubmitOrderReq{
		UserID:   userID,
		Username: username,
		FullName: fullName,
		Contact:  contact,
	}
}

func NewSubmitOrderRes(orderNumber string, total int64) *SubmitOrderRes {
	return &SubmitOrderRes{
		OrderNumber: orderNumber,
		Total:       total,
	}
}

func NewWriteOrderReq(order *domain.Order) *WriteOrderReq {
	return &WriteOrderReq{Order: order}
}

// FormatKopecks выводит сумму в копейках как целые рубли, округляя к ближайшему.
func FormatKopecks(kopecks int64) string {
	return decimal.NewFromInt(kopecks).Div(decimal.NewFromInt(100)).Round(0).String()
}

// PriceRub возвращает цену DTO в рублях.
func (p *ProductRes) PriceRub() decimal.Decimal {
	return decimal.NewFromInt(p.Price).Div(decimal.NewFromInt(100))
}

// PricePerGram возвращает цену за грамм, если вес известен.
func (p *ProductRes) PricePerGram() (decimal.Decimal, bool) {
	if p.Weight == nil || p.Weight.IsZero() {
		return decimal.Zero, false
	}
	return p.PriceRub().Div(*p.Weight), true
}
