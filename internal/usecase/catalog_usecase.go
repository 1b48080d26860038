package usecase

import (
	"context"
	"time"

	"github.com/tea-corner/go-backend/internal/domain"
	"github.com/tea-corner/go-backend/pkg/e"
	"github.com/tea-corner/go-backend/pkg/logger"
)

// CatalogUseCase — читающая сторона каталога с кэшем поверх Redis.
// Ошибки кэша не фатальны: при любом сбое читаем напрямую из БД.
type CatalogUseCase struct {
	catalogRepo CatalogRepository
	cacheRepo   CacheRepository
	logger      logger.Logger
}

func NewCatalogUC(catalogRepo CatalogRepository, cacheRepo CacheRepository, logger logger.Logger) *CatalogUseCase {
	return &CatalogUseCase{
		catalogRepo: catalogRepo,
		cacheRepo:   cacheRepo,
		logger:      logger,
	}
}

// GetByID возвращает активный товар по идентификатору.
func (c *CatalogUseCase) GetByID(ctx context.Context, id int64) (*ProductRes, error) {
	const op = "CatalogUseCase.GetByID"

	cached, err := c.cacheRepo.GetProducts(ctx, []int64{id})
	if err == nil {
		if product, ok := cached[id]; ok {
			return NewProductRes(&product), nil
		}
	}

	product, err := c.catalogRepo.GetByID(ctx, id)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	// Фоновое добавление карточки в кэш
	go func() {
		bgCtx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
		defer cancel()

		if err := c.cacheRepo.SetProducts(bgCtx, []domain.Product{*product}); err != nil {
			c.logger.Warnf("Failed to cache product in background: %v", e.Wrap(op, err))
		}
	}()

	return NewProductRes(product), nil
}

// ListByCategory возвращает активные товары категории.
func (c *CatalogUseCase) ListByCategory(ctx context.Context, category string) ([]ProductRes, error) {
	const op = "CatalogUseCase.ListByCategory"

	products, err := c.catalogRepo.ListByCategory(ctx, category)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return NewProductResList(products), nil
}

// ListCategories возвращает список категорий, в которых есть активные товары.
func (c *CatalogUseCase) ListCategories(ctx context.Context) ([]string, error) {
	const op = "CatalogUseCase.ListCategories"

	categories, hit, err := c.cacheRepo.GetCategories(ctx)
	if err == nil && hit {
		return categories, nil
	}

	categories, err = c.catalogRepo.ListCategories(ctx)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	go func() {
		bgCtx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
		defer cancel()

		if err := c.cacheRepo.SetCategories(bgCtx, categories); err != nil {
			c.logger.Warnf("Failed to cache categories in background: %v", e.Wrap(op, err))
		}
	}()

	return categories, nil
}

// Search ищет активные товары по подстроке названия или описания
// без учёта регистра.
func (c *CatalogUseCase) Search(ctx context.Context, query string) ([]ProductRes, error) {
	const op = "CatalogUseCase.Search"

	products, err := c.catalogRepo.Search(ctx, query)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return NewProductResList(products), nil
}
