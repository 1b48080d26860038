package converter

import "github.com/tea-corner/go-backend/internal/domain"

// ProductConverter преобразует сущности Product между domain и моделью кэша.
type ProductConverter interface {
	ToRedisModel(entity *domain.Product) *ProductRedisModel
	ToEntity(model *ProductRedisModel) *domain.Product
	ToArrRedisModel(entities []domain.Product) []*ProductRedisModel
}

type ProductConverterImpl struct{}

func NewProductConverterImpl() *ProductConverterImpl {
	return &ProductConverterImpl{}
}

func (c *ProductConverterImpl) ToRedisModel(entity *domain.Product) *ProductRedisModel {
	if entity == nil {
		return nil
	}

	return &ProductRedisModel{
		ID:          entity.ID,
		Name:        entity.Name,
		Category:    entity.Category,
		Origin:      entity.Origin,
		Description: entity.Description,
		Price:       entity.Price,
		Weight:      entity.Weight,
		PhotoURL:    entity.PhotoURL,
	}
}

func (c *ProductConverterImpl) ToEntity(model *ProductRedisModel) *domain.Product {
	if model == nil {
		return nil
	}

	return &domain.Product{
		ID:          model.ID,
		Name:        model.Name,
		Category:    model.Category,
		Origin:      model.Origin,
		Description: model.Description,
		Price:       model.Price,
		Weight:      model.Weight,
		PhotoURL:    model.PhotoURL,
		IsActive:    true, // в кэш попадают только активные товары
	}
}

func (c *ProductConverterImpl) ToArrRedisModel(entities []domain.Product) []*ProductRedisModel {
	models := make([]*ProductRedisModel, 0, len(entities))
	for i := range entities {
		models = append(models, c.ToRedisModel(&entities[i]))
	}
	return models
}
