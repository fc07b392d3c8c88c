package models

import (
	"context"
	"errors"
	"time"

	"github.com/warungku/pos_backend/config"
	"github.com/warungku/pos_backend/utils"
)

type ProductCategory struct {
	ID        int       `gorm:"primary_key" json:"id"`
	WarungId  int       `gorm:"index;not null" json:"warung_id"`
	Name      string    `gorm:"size:100;not null" json:"name" binding:"required"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewProductCategory struct {
	Name string `json:"name" binding:"required"`
}

func CreateProductCategory(ctx context.Context, warungId int, input *NewProductCategory) (*ProductCategory, error) {
	if err := ValidateWarungOwner(ctx, warungId); err != nil {
		return nil, err
	}
	if err := utils.ValidateUnique[ProductCategory](ctx, warungId, "name", input.Name, 0); err != nil {
		return nil, err
	}

	category := ProductCategory{
		WarungId: warungId,
		Name:     input.Name,
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&category).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

func UpdateProductCategory(ctx context.Context, warungId int, id int, input *NewProductCategory) (*ProductCategory, error) {
	if err := ValidateWarungOwner(ctx, warungId); err != nil {
		return nil, err
	}
	if err := utils.ValidateUnique[ProductCategory](ctx, warungId, "name", input.Name, id); err != nil {
		return nil, err
	}

	category, err := utils.FetchModel[ProductCategory](ctx, warungId, id)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Model(category).
		UpdateColumn("name", input.Name).Error; err != nil {
		return nil, err
	}
	return category, nil
}

func DeleteProductCategory(ctx context.Context, warungId int, id int) (*ProductCategory, error) {
	if err := ValidateWarungOwner(ctx, warungId); err != nil {
		return nil, err
	}

	category, err := utils.FetchModel[ProductCategory](ctx, warungId, id)
	if err != nil {
		return nil, err
	}

	// products keep pointing at their category; refuse while in use
	count, err := utils.ResourceCountWhere[Product](ctx, warungId, "category_id = ?", id)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, errors.New("category is in use")
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Delete(category).Error; err != nil {
		return nil, err
	}
	return category, nil
}

func GetProductCategories(ctx context.Context, warungId int) ([]*ProductCategory, error) {
	if err := ValidateWarungOwner(ctx, warungId); err != nil {
		return nil, err
	}

	db := config.GetDB()
	var results []*ProductCategory
	err := db.WithContext(ctx).
		Where("warung_id = ?", warungId).
		Order("name ASC").
		Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}
