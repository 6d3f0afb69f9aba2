package food

import (
	"context"
	"errors"
	"foodia-handoff/domain"
	"foodia-handoff/entities"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type (
	// FoodRepository reads listings owned by the catalog service.
	FoodRepository interface {
		GetFoodItemByID(ctx context.Context, id string) (*entities.FoodItem, error)
	}

	foodRepository struct {
		db *gorm.DB
	}
)

func NewFoodRepository(db *gorm.DB) FoodRepository {
	return &foodRepository{db: db}
}

func (r *foodRepository) GetFoodItemByID(ctx context.Context, id string) (*entities.FoodItem, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrFoodItemNotFound
	}

	var foodItem entities.FoodItem
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&foodItem).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrFoodItemNotFound
		}
		return nil, err
	}
	return &foodItem, nil
}
