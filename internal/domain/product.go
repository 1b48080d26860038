package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product описывает товар каталога
type Product struct {
	ID          int64
	Name        string
	Category    string
	Origin      *string
	Description *string
	Price       int64            // Цена хранится в копейках
	Weight      *decimal.Decimal // Вес в граммах, у посуды и аксессуаров отсутствует
	PhotoURL    *string
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   *time.Time
}

func NewProduct(name, category string, price int64) *Product {
	return &Product{
		Name:     name,
		Category: category,
		Price:    price,
		IsActive: true,
	}
}

// PriceRub возвращает цену в рублях для расчётов и отображения.
func (p *Product) PriceRub() decimal.Decimal {
	return decimal.NewFromInt(p.Price).Div(decimal.NewFromInt(100))
}

// PricePerGram возвращает цену за грамм, если вес известен.
func (p *Product) PricePerGram() (decimal.Decimal, bool) {
	if p.Weight == nil || p.Weight.IsZero() {
		return decimal.Zero, false
	}
	return p.PriceRub().Div(*p.Weight), true
}
