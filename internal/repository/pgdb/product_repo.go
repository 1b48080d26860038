package pgdb

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jimlawless/whereami"
	"github.com/tea-corner/go-backend/internal/domain"
	"github.com/tea-corner/go-backend/internal/repository/pgdb/converter"
	"github.com/tea-corner/go-backend/internal/usecase"
	"github.com/tea-corner/go-backend/pkg/e"
	"github.com/tea-corner/go-backend/pkg/tr"
)

const productColumns = `id, name, category, origin, description, price, weight, photo_url, is_active, created_at, updated_at`

// ProductRepo реализует репозиторий каталога поверх PostgreSQL.
// Все читающие запросы отфильтрованы по is_active.
type ProductRepo struct {
	pool *pgxpool.Pool
	conv converter.ProductConverter
}

func NewProductRepo(pool *pgxpool.Pool, conv converter.ProductConverter) *ProductRepo {
	return &ProductRepo{
		pool: pool,
		conv: conv,
	}
}

// GetByID возвращает активный товар или e.ErrProductNotFound.
func (p *ProductRepo) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM products
		WHERE id = $1 AND is_active = TRUE
	`, productColumns)

	model, err := p.scanOne(p.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, e.ErrProductNotFound
		}
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return p.conv.ToEntity(model), nil
}

// List возвращает постраничный список активных товаров,
// при непустой category — отфильтрованный по ней.
func (p *ProductRepo) List(ctx context.Context, skip, limit int, category string) ([]domain.Product, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM products
		WHERE is_active = TRUE AND ($3 = '' OR category = $3)
		ORDER BY id
		OFFSET $1 LIMIT $2
	`, productColumns)

	rows, err := p.pool.Query(ctx, query, skip, limit, category)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	defer rows.Close()

	return p.scanMany(rows)
}

// ListByCategory возвращает все активные товары категории.
func (p *ProductRepo) ListByCategory(ctx context.Context, category string) ([]domain.Product, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM products
		WHERE category = $1 AND is_active = TRUE
		ORDER BY id
	`, productColumns)

	rows, err := p.pool.Query(ctx, query, category)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	defer rows.Close()

	return p.scanMany(rows)
}

// ListCategories возвращает уникальные категории активных товаров.
func (p *ProductRepo) ListCategories(ctx context.Context) ([]string, error) {
	query := `
		SELECT DISTINCT category
		FROM products
		WHERE is_active = TRUE
		ORDER BY category
	`

	rows, err := p.pool.Query(ctx, query)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	defer rows.Close()

	result := make([]string, 0)
	for rows.Next() {
		var category string
		if err := rows.Scan(&category); err != nil {
			return nil, e.Wrap(whereami.WhereAmI(), err)
		}
		result = append(result, category)
	}

	return result, rows.Err()
}

// Search ищет активные товары по подстроке названия или описания (ILIKE).
func (p *ProductRepo) Search(ctx context.Context, query string) ([]domain.Product, error) {
	sql := fmt.Sprintf(`
		SELECT %s
		FROM products
		WHERE is_active = TRUE
		  AND (name ILIKE '%%' || $1 || '%%' OR description ILIKE '%%' || $1 || '%%')
		ORDER BY id
	`, productColumns)

	rows, err := p.pool.Query(ctx, sql, query)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	defer rows.Close()

	return p.scanMany(rows)
}

// Create добавляет товар. Дубликат имени возвращает e.ErrProductExists.
func (p *ProductRepo) Create(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	tx, err := tr.TxFromCtx(ctx)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	query := fmt.Sprintf(`
		INSERT INTO products (name, category, origin, description, price, weight)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (name) DO NOTHING
		RETURNING %s
	`, productColumns)

	model, err := p.scanOne(tx.QueryRow(ctx, query,
		product.Name, product.Category, product.Origin,
		product.Description, product.Price, product.Weight,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, e.ErrProductExists
		}
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return p.conv.ToEntity(model), nil
}

// Update частично обновляет товар; nil-поля патча не меняются.
func (p *ProductRepo) Update(ctx context.Context, id int64, upd *usecase.ProductPatch) (*domain.Product, error) {
	tx, err := tr.TxFromCtx(ctx)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	set := make([]string, 0, 8)
	args := make([]any, 0, 8)
	add := func(column string, value any) {
		args = append(args, value)
		set = append(set, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if upd.Name != nil {
		add("name", *upd.Name)
	}
	if upd.Category != nil {
		add("category", *upd.Category)
	}
	if upd.Origin != nil {
		add("origin", *upd.Origin)
	}
	if upd.Description != nil {
		add("description", *upd.Description)
	}
	if upd.Price != nil {
		add("price", *upd.Price)
	}
	if upd.Weight != nil {
		add("weight", *upd.Weight)
	}
	if upd.IsActive != nil {
		add("is_active", *upd.IsActive)
	}

	if len(set) == 0 {
		return p.GetByID(ctx, id)
	}

	set = append(set, "updated_at = NOW()")
	args = append(args, id)
	query := fmt.Sprintf(`
		UPDATE products
		SET %s
		WHERE id = $%d AND is_active = TRUE
		RETURNING %s
	`, strings.Join(set, ", "), len(args), productColumns)

	model, err := p.scanOne(tx.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, e.ErrProductNotFound
		}
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return p.conv.ToEntity(model), nil
}

// SetPhotoURL сохраняет ссылку на фото товара.
func (p *ProductRepo) SetPhotoURL(ctx context.Context, id int64, photoURL string) error {
	tx, err := tr.TxFromCtx(ctx)
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	tag, err := tx.Exec(ctx, `UPDATE products SET photo_url = $1, updated_at = NOW() WHERE id = $2`, photoURL, id)
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}
	if tag.RowsAffected() == 0 {
		return e.ErrProductNotFound
	}

	return nil
}

// Archive мягко удаляет товар, помечая его неактивным.
func (p *ProductRepo) Archive(ctx context.Context, id int64) error {
	tag, err := p.pool.Exec(ctx, `
		UPDATE products
		SET is_active = FALSE, updated_at = NOW()
		WHERE id = $1 AND is_active = TRUE
	`, id)
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}
	if tag.RowsAffected() == 0 {
		return e.ErrProductNotFound
	}

	return nil
}

func (p *ProductRepo) scanOne(row pgx.Row) (*converter.ProductModel, error) {
	var model converter.ProductModel
	err := row.Scan(
		&model.ID, &model.Name, &model.Category, &model.Origin, &model.Description,
		&model.Price, &model.Weight, &model.PhotoURL, &model.IsActive,
		&model.CreatedAt, &model.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &model, nil
}

func (p *ProductRepo) scanMany(rows pgx.Rows) ([]domain.Product, error) {
	result := make([]domain.Product, 0)
	for rows.Next() {
		var model converter.ProductModel
		if err := rows.Scan(
			&model.ID, &model.Name, &model.Category, &model.Origin, &model.Description,
			&model.Price, &model.Weight, &model.PhotoURL, &model.IsActive,
			&model.CreatedAt, &model.UpdatedAt,
		); err != nil {
			return nil, e.Wrap(whereami.WhereAmI(), err)
		}

		result = append(result, *p.conv.ToEntity(&model))
	}

	return result, rows.Err()
}
