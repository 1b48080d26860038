package converter

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProductModel представляет запись таблицы products в PostgreSQL.
type ProductModel struct {
	ID          int64            `db:"id"`
	Name        string           `db:"name"`
	Category    string           `db:"category"`
	Origin      *string          `db:"origin"`
	Description *string          `db:"description"`
	Price       int64            `db:"price"`
	Weight      *decimal.Decimal `db:"weight"`
	PhotoURL    *string          `db:"photo_url"`
	IsActive    bool             `db:"is_active"`
	CreatedAt   time.Time        `db:"created_at"`
	UpdatedAt   *time.Time       `db:"updated_at"`
}
