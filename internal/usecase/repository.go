package usecase

import (
	"context"

	"github.com/tea-corner/go-backend/internal/domain"
)

type CatalogRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Product, error)
	List(ctx context.Context, skip, limit int, category string) ([]domain.Product, error)
	ListByCategory(ctx context.Context, category string) ([]domain.Product, error)
	ListCategories(ctx context.Context) ([]string, error)
	Search(ctx context.Context, query string) ([]domain.Product, error)

	// Пишущие операции выполняются внутри транзакции (pkg/tr).
	Create(ctx context.Context, product *domain.Product) (*domain.Product, error)
	Update(ctx context.Context, id int64, upd *ProductPatch) (*domain.Product, error)
	SetPhotoURL(ctx context.Context, id int64, photoURL string) error
	Archive(ctx context.Context, id int64) error
}

type CacheRepository interface {
	GetProducts(ctx context.Context, ids []int64) (map[int64]domain.Product, error)
	SetProducts(ctx context.Context, products []domain.Product) error
	DeleteProducts(ctx context.Context, ids []int64) error

	GetCategories(ctx context.Context) ([]string, bool, error)
	SetCategories(ctx context.Context, categories []string) error
	DeleteCategories(ctx context.Context) error
}

type PhotoRepository interface {
	Upload(ctx context.Context, photo *ProductPhoto) (string, error)
	Delete(ctx context.Context, key string) error
	PublicURL(key string) string
}

// CartRepository — корзины пользователей, эфемерные и только в памяти процесса.
type CartRepository interface {
	AddOne(userID, productID int64)
	ApplyDelta(userID, productID int64, delta int)
	RemoveLine(userID, productID int64)
	Clear(userID int64)
	Lines(userID int64) []domain.CartLine
	PurgeAll() int
}

// SessionRepository — состояния диалогов пользователей, только в памяти процесса.
type SessionRepository interface {
	GetOrCreate(userID int64) *domain.Session
	Clear(userID int64)
}
