package domain

// CartLine — позиция корзины: товар и количество.
// В корзине не может быть двух позиций с одним товаром.
type CartLine struct {
	ProductID int64
	Quantity  int
}

func NewCartLine(productID int64) CartLine {
	return CartLine{ProductID: productID, Quantity: 1}
}
