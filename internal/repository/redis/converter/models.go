package converter

import "github.com/shopspring/decimal"

// ProductRedisModel — JSON-представление карточки товара в кэше.
type ProductRedisModel struct {
	ID          int64            `json:"id"`
	Name        string           `json:"name"`
	Category    string           `json:"category"`
	Origin      *string          `json:"origin,omitempty"`
	Description *string          `json:"description,omitempty"`
	Price       int64            `json:"price"`
	Weight      *decimal.Decimal `json:"weight,omitempty"`
	PhotoURL    *string          `json:"photo_url,omitempty"`
}
