package usecase

import "context"

// CatalogUC — читающая сторона каталога, которую потребляет диалоговое ядро.
// Все операции возвращают только активные товары.
type CatalogUC interface {
	GetByID(ctx context.Context, id int64) (*ProductRes, error)
	ListByCategory(ctx context.Context, category string) ([]ProductRes, error)
	ListCategories(ctx context.Context) ([]string, error)
	Search(ctx context.Context, query string) ([]ProductRes, error)
}

// ProductUC — административный CRUD каталога.
type ProductUC interface {
	Create(ctx context.Context, req *CreateProductReq) (*ProductRes, error)
	List(ctx context.Context, req *ListProductsReq) ([]ProductRes, error)
	Get(ctx context.Context, id int64) (*ProductRes, error)
	Update(ctx context.Context, id int64, req *UpdateProductReq) (*ProductRes, error)
	Archive(ctx context.Context, id int64) error
}

// OrderUC — сборка заказа из корзины и контактных данных.
type OrderUC interface {
	Submit(ctx context.Context, req *SubmitOrderReq) (*SubmitOrderRes, error)
}
