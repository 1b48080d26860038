package usecase

import (
	"context"
	"strings"
	"time"

	transaction "github.com/avito-tech/go-transaction-manager/drivers/pgxv5/v2"
	"github.com/jackc/pgx/v5"
	"github.com/tea-corner/go-backend/internal/domain"
	"github.com/tea-corner/go-backend/pkg/e"
	"github.com/tea-corner/go-backend/pkg/logger"
)

// ProductUseCase реализует административный CRUD каталога.
type ProductUseCase struct {
	catalogRepo CatalogRepository
	photoRepo   PhotoRepository
	cacheRepo   CacheRepository
	dbPool      transaction.Transactional
	logger      logger.Logger
}

func NewProductUC(
	catalogRepo CatalogRepository,
	photoRepo PhotoRepository,
	cacheRepo CacheRepository,
	dbPool transaction.Transactional,
	logger logger.Logger,
) *ProductUseCase {
	return &ProductUseCase{
		catalogRepo: catalogRepo,
		photoRepo:   photoRepo,
		cacheRepo:   cacheRepo,
		dbPool:      dbPool,
		logger:      logger,
	}
}

// Create добавляет новый товар, при наличии фото загружает его в MinIO.
// При ошибке транзакция откатывается, а загруженное фото удаляется.
func (p *ProductUseCase) Create(ctx context.Context, req *CreateProductReq) (*ProductRes, error) {
	const op = "ProductUseCase.Create"

	var err error
	if err = p.validateCreate(req); err != nil {
		return nil, e.Wrap(op, err)
	}

	var (
		photoKey string
		uploaded bool
	)

	ctx, tx, err := transaction.NewTransaction(ctx, pgx.TxOptions{}, p.dbPool)
	if err != nil {
		return nil, e.Wrap(op, err)
	}
	// Если произошла ошибка, происходит Rollback транзакции и очистка загруженного фото
	defer func() {
		if err != nil {
			if tx.IsActive() {
				tx.Rollback(ctx)
			}

			if uploaded {
				p.cleanupPhoto(photoKey, req.Name)
			}
		}
	}()
	ctx = context.WithValue(ctx, "tx", tx.Transaction())

	product := domain.NewProduct(req.Name, req.Category, req.Price)
	product.Origin = req.Origin
	product.Description = req.Description
	product.Weight = req.Weight

	created, err := p.catalogRepo.Create(ctx, product)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	if req.Photo != nil {
		photoKey, err = p.photoRepo.Upload(ctx, req.Photo)
		if err != nil {
			return nil, e.Wrap(op, err)
		}
		uploaded = true

		photoURL := p.photoRepo.PublicURL(photoKey)
		if err = p.catalogRepo.SetPhotoURL(ctx, created.ID, photoURL); err != nil {
			return nil, e.Wrap(op, err)
		}
		created.PhotoURL = &photoURL
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, e.Wrap(op, err)
	}

	p.invalidate(ctx, created.ID)

	return NewProductRes(created), nil
}

// List возвращает постраничный список активных товаров.
func (p *ProductUseCase) List(ctx context.Context, req *ListProductsReq) ([]ProductRes, error) {
	const op = "ProductUseCase.List"

	products, err := p.catalogRepo.List(ctx, req.Skip, req.Limit, req.Category)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return NewProductResList(products), nil
}

// Get возвращает активный товар по идентификатору.
func (p *ProductUseCase) Get(ctx context.Context, id int64) (*ProductRes, error) {
	const op = "ProductUseCase.Get"

	product, err := p.catalogRepo.GetByID(ctx, id)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return NewProductRes(product), nil
}

// Update частично обновляет товар.
func (p *ProductUseCase) Update(ctx context.Context, id int64, req *UpdateProductReq) (*ProductRes, error) {
	const op = "ProductUseCase.Update"

	ctx, tx, err := transaction.NewTransaction(ctx, pgx.TxOptions{}, p.dbPool)
	if err != nil {
		return nil, e.Wrap(op, err)
	}
	defer func() {
		if err != nil && tx.IsActive() {
			tx.Rollback(ctx)
		}
	}()
	ctx = context.WithValue(ctx, "tx", tx.Transaction())

	updated, err := p.catalogRepo.Update(ctx, id, &req.Patch)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, e.Wrap(op, err)
	}

	p.invalidate(ctx, id)

	return NewProductRes(updated), nil
}

// Archive мягко удаляет товар: помечает его неактивным.
func (p *ProductUseCase) Archive(ctx context.Context, id int64) error {
	const op = "ProductUseCase.Archive"

	if err := p.catalogRepo.Archive(ctx, id); err != nil {
		return e.Wrap(op, err)
	}

	p.invalidate(ctx, id)

	return nil
}

// invalidate удаляет из кэша карточку товара и список категорий.
func (p *ProductUseCase) invalidate(ctx context.Context, id int64) {
	const op = "ProductUseCase.invalidate"

	if err := p.cacheRepo.DeleteProducts(ctx, []int64{id}); err != nil {
		p.logger.Warnf("Failed to invalidate product cache: %v", e.Wrap(op, err))
	}
	if err := p.cacheRepo.DeleteCategories(ctx); err != nil {
		p.logger.Warnf("Failed to invalidate categories cache: %v", e.Wrap(op, err))
	}
}

// cleanupPhoto удаляет осиротевшее фото после отката транзакции.
func (p *ProductUseCase) cleanupPhoto(key, productName string) {
	const op = "ProductUseCase.cleanupPhoto"

	p.logger.Warnf("Cleaning up orphaned photo after transaction failure. product_name: %s", productName)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := p.photoRepo.Delete(ctx, key); err != nil {
		p.logger.Warnf("Failed to cleanup photo: %v", e.Wrap(op, err))
	}
}

// validateCreate проверяет корректность входных данных запроса на добавление товара.
func (p *ProductUseCase) validateCreate(req *CreateProductReq) error {
	if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.Category) == "" {
		return e.ErrMissingFields
	}

	if req.Price <= 0 {
		return e.ErrInvalidPrice
	}

	if req.Weight != nil && req.Weight.Sign() <= 0 {
		return e.ErrInvalidWeight
	}

	return nil
}
