package memory

import (
	"sync"

	"github.com/tea-corner/go-backend/internal/domain"
)

// CartRepo хранит корзины пользователей в памяти процесса.
// Позиции сохраняют порядок добавления.
type CartRepo struct {
	mu    sync.RWMutex
	carts map[int64][]domain.CartLine
}

func NewCartRepo() *CartRepo {
	return &CartRepo{
		carts: make(map[int64][]domain.CartLine),
	}
}

// AddOne увеличивает количество товара на единицу,
// при отсутствии позиции добавляет её в конец корзины.
func (c *CartRepo) AddOne(userID, productID int64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	lines := c.carts[userID]
	for i := range lines {
		if lines[i].ProductID == productID {
			lines[i].Quantity++
			return
		}
	}
	c.carts[userID] = append(lines, domain.NewCartLine(productID))
}

// ApplyDelta изменяет количество товара на delta.
// Позиция с итоговым количеством <= 0 удаляется.
// Для отсутствующей позиции вызов ничего не делает.
func (c *CartRepo) ApplyDelta(userID, productID int64, delta int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	lines := c.carts[userID]
	for i := range lines {
		if lines[i].ProductID != productID {
			continue
		}

		lines[i].Quantity += delta
		if lines[i].Quantity <= 0 {
			c.carts[userID] = append(lines[:i], lines[i+1:]...)
		}
		return
	}
}

// RemoveLine удаляет позицию из корзины независимо от количества.
func (c *CartRepo) RemoveLine(userID, productID int64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	lines := c.carts[userID]
	for i := range lines {
		if lines[i].ProductID == productID {
			c.carts[userID] = append(lines[:i], lines[i+1:]...)
			return
		}
	}
}

// Clear опустошает корзину пользователя.
func (c *CartRepo) Clear(userID int64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.carts, userID)
}

// Lines возвращает копию корзины в порядке добавления позиций.
func (c *CartRepo) Lines(userID int64) []domain.CartLine {
	c.mu.RLock()
	defer c.mu.RUnlock()

	lines := c.carts[userID]
	result := make([]domain.CartLine, len(lines))
	copy(result, lines)

	return result
}

// PurgeAll опустошает все корзины и возвращает их количество.
func (c *CartRepo) PurgeAll() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	purged := len(c.carts)
	c.carts = make(map[int64][]domain.CartLine)

	return purged
}
