package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/tea-corner/go-backend/internal/usecase"
	"github.com/tea-corner/go-backend/pkg/e"
	"github.com/tea-corner/go-backend/pkg/logger"
)

type ProductHandler struct {
	productUsecase usecase.ProductUC
	logger         logger.Logger
}

func NewProductHandler(productUsecase usecase.ProductUC, logger logger.Logger) *ProductHandler {
	return &ProductHandler{productUsecase: productUsecase, logger: logger}
}

// productResponse — JSON-представление товара в ответах API.
type productResponse struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Category    string  `json:"category"`
	Origin      *string `json:"origin,omitempty"`
	Description *string `json:"description,omitempty"`
	Price       int64   `json:"price"` // копейки
	Weight      *string `json:"weight,omitempty"`
	PhotoURL    *string `json:"photo_url,omitempty"`
}

func toProductResponse(p *usecase.ProductRes) productResponse {
	res := productResponse{
		ID:          p.ID,
		Name:        p.Name,
		Category:    p.Category,
		Origin:      p.Origin,
		Description: p.Description,
		Price:       p.Price,
		PhotoURL:    p.PhotoURL,
	}
	if p.Weight != nil {
		weight := p.Weight.String()
		res.Weight = &weight
	}

	return res
}

// createProduct регистрирует новый товар: multipart-форма с полями
// name/category/price и опциональными origin/description/weight/photo.
func (p *ProductHandler) createProduct(w http.ResponseWriter, r *http.Request) {
	const (
		maxTotalRequestSize = 20 << 20
		maxMemory           = 16 << 20
	)

	r.Body = http.MaxBytesReader(w, r.Body, maxTotalRequestSize)

	if err := ensureMultipartForm(r, maxMemory); err != nil {
		p.logger.Warnf("%d %s: %s", http.StatusBadRequest, e.ErrStatusBadRequest.Error(), r.Header.Get("Content-Type"))
		WriteError(w, err)
		return
	}

	req, err := parseCreateProductForm(r)
	if err != nil {
		p.logger.Warnf("%d %s: %s", http.StatusBadRequest, e.ErrStatusBadRequest.Error(), err.Error())
		WriteError(w, err)
		return
	}

	req.Photo, err = parsePhoto(r.MultipartForm.File["photo"])
	if err != nil {
		p.logger.Warnf("%d %s: %s", http.StatusBadRequest, e.ErrStatusBadRequest.Error(), err.Error())
		WriteError(w, err)
		return
	}

	product, err := p.productUsecase.Create(r.Context(), req)
	if err != nil {
		p.logger.Warnf("%s", err.Error())
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusCreated, toProductResponse(product))
}

// listProducts возвращает постраничный список товаров,
// опционально отфильтрованный по категории.
func (p *ProductHandler) listProducts(w http.ResponseWriter, r *http.Request) {
	const (
		defaultLimit = 50
		maxLimit     = 200
	)

	skip, _ := strconv.Atoi(r.URL.Query().Get("skip"))
	if skip < 0 {
		skip = 0
	}
	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit <= 0 || limit > maxLimit {
		limit = defaultLimit
	}

	products, err := p.productUsecase.List(r.Context(), &usecase.ListProductsReq{
		Skip:     skip,
		Limit:    limit,
		Category: r.URL.Query().Get("category"),
	})
	if err != nil {
		p.logger.Warnf("%s", err.Error())
		WriteError(w, err)
		return
	}

	result := make([]productResponse, 0, len(products))
	for i := range products {
		result = append(result, toProductResponse(&products[i]))
	}

	WriteSuccess(w, http.StatusOK, result)
}

func (p *ProductHandler) getProduct(w http.ResponseWriter, r *http.Request) {
	id, err := parseProductID(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	product, err := p.productUsecase.Get(r.Context(), id)
	if err != nil {
		p.logger.Warnf("%s", err.Error())
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, toProductResponse(product))
}

// updateProductBody — JSON-тело частичного обновления.
// Отсутствующие поля не меняются; цена и вес передаются строками.
type updateProductBody struct {
	Name        *string `json:"name"`
	Category    *string `json:"category"`
	Origin      *string `json:"origin"`
	Description *string `json:"description"`
	Price       *string `json:"price"`
	Weight      *string `json:"weight"`
	IsActive    *bool   `json:"is_active"`
}

func (p *ProductHandler) updateProduct(w http.ResponseWriter, r *http.Request) {
	id, err := parseProductID(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	var body updateProductBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		p.logger.Warnf("%d %s: %s", http.StatusBadRequest, e.ErrStatusBadRequest.Error(), err.Error())
		WriteError(w, e.ErrStatusBadRequest)
		return
	}

	patch := usecase.ProductPatch{
		Name:        body.Name,
		Category:    body.Category,
		Origin:      body.Origin,
		Description: body.Description,
		IsActive:    body.IsActive,
	}
	if body.Price != nil {
		price, err := parsePriceToKopecks(*body.Price)
		if err != nil {
			WriteError(w, err)
			return
		}
		patch.Price = &price
	}
	if body.Weight != nil {
		var weight *decimal.Decimal
		weight, err = parseWeight(*body.Weight)
		if err != nil {
			WriteError(w, err)
			return
		}
		patch.Weight = weight
	}

	product, err := p.productUsecase.Update(r.Context(), id, &usecase.UpdateProductReq{Patch: patch})
	if err != nil {
		p.logger.Warnf("%s", err.Error())
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, toProductResponse(product))
}

// deleteProduct мягко удаляет товар: он исчезает из каталога,
// но строки корзин на него продолжают молча пропускаться.
func (p *ProductHandler) deleteProduct(w http.ResponseWriter, r *http.Request) {
	id, err := parseProductID(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	if err := p.productUsecase.Archive(r.Context(), id); err != nil {
		p.logger.Warnf("%s", err.Error())
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, map[string]interface{}{"archived": true})
}

func parseProductID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, e.ErrStatusBadRequest
	}

	return id, nil
}
