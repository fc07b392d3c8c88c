package models

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/warungku/pos_backend/config"
	"github.com/warungku/pos_backend/utils"
	"gorm.io/gorm"
)

type Product struct {
	ID         int             `gorm:"primary_key" json:"id"`
	WarungId   int             `gorm:"index;not null" json:"warung_id"`
	CategoryId *int            `gorm:"index" json:"category_id"`
	Name       string          `gorm:"size:100;not null" json:"name" binding:"required"`
	Price      decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"price"`
	CostPrice  decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"cost_price"`
	Stock      int             `gorm:"not null;default:0" json:"stock"`
	MinStock   int             `gorm:"not null;default:0" json:"min_stock"`
	PictureUrl string          `gorm:"size:500" json:"picture_url"`
	IsActive   *bool           `gorm:"not null;default:true" json:"is_active"`
	CreatedAt  time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewProduct struct {
	CategoryId *int            `json:"category_id"`
	Name       string          `json:"name" binding:"required"`
	Price      decimal.Decimal `json:"price" binding:"required"`
	CostPrice  decimal.Decimal `json:"cost_price"`
	Stock      int             `json:"stock"`
	MinStock   int             `json:"min_stock"`
	PictureUrl string          `json:"picture_url"`
}

func (input NewProduct) validate(ctx context.Context, warungId int) error {
	if input.Price.IsNegative() || input.CostPrice.IsNegative() {
		return utils.ErrorPreconditionFailed
	}
	if input.Stock < 0 || input.MinStock < 0 {
		return utils.ErrorPreconditionFailed
	}
	if input.CategoryId != nil && *input.CategoryId > 0 {
		if err := utils.ValidateResourceId[ProductCategory](ctx, warungId, *input.CategoryId); err != nil {
			return err
		}
	}
	return nil
}

func CreateProduct(ctx context.Context, warungId int, input *NewProduct) (*Product, error) {
	if err := ValidateWarungOwner(ctx, warungId); err != nil {
		return nil, err
	}
	if err := input.validate(ctx, warungId); err != nil {
		return nil, err
	}

	product := Product{
		WarungId:   warungId,
		CategoryId: input.CategoryId,
		Name:       input.Name,
		Price:      input.Price,
		CostPrice:  input.CostPrice,
		Stock:      input.Stock,
		MinStock:   input.MinStock,
		PictureUrl: input.PictureUrl,
		IsActive:   utils.NewTrue(),
	}

	db := config.GetDB()
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&product).Error; err != nil {
			return err
		}

		activity := WarungActivity{
			WarungId:     warungId,
			ActivityType: ActivityProductAdded,
			Description:  "Product " + product.Name + " added.",
			ProductId:    &product.ID,
		}
		return createActivity(ctx, tx, &activity, map[string]interface{}{
			"name":  product.Name,
			"price": product.Price,
			"stock": product.Stock,
		})
	})
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func UpdateProduct(ctx context.Context, warungId int, id int, input *NewProduct) (*Product, error) {
	if err := ValidateWarungOwner(ctx, warungId); err != nil {
		return nil, err
	}
	if err := input.validate(ctx, warungId); err != nil {
		return nil, err
	}

	product, err := utils.FetchModel[Product](ctx, warungId, id)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(product).Updates(map[string]interface{}{
			"category_id": input.CategoryId,
			"name":        input.Name,
			"price":       input.Price,
			"cost_price":  input.CostPrice,
			"stock":       input.Stock,
			"min_stock":   input.MinStock,
			"picture_url": input.PictureUrl,
		}).Error; err != nil {
			return err
		}

		activity := WarungActivity{
			WarungId:     warungId,
			ActivityType: ActivityProductUpdated,
			Description:  "Product " + input.Name + " updated.",
			ProductId:    &product.ID,
		}
		return createActivity(ctx, tx, &activity, map[string]interface{}{
			"name":  input.Name,
			"price": input.Price,
			"stock": input.Stock,
		})
	})
	if err != nil {
		return nil, err
	}
	return product, nil
}

func DeleteProduct(ctx context.Context, warungId int, id int) (*Product, error) {
	if err := ValidateWarungOwner(ctx, warungId); err != nil {
		return nil, err
	}

	product, err := utils.FetchModel[Product](ctx, warungId, id)
	if err != nil {
		return nil, err
	}

	// sold products stay referenced by sale items; deactivate instead
	count, err := utils.ResourceCountWhere[SaleItem](ctx, 0, "product_id = ?", id)
	if err != nil {
		return nil, err
	}
	db := config.GetDB()
	if count > 0 {
		if err := db.WithContext(ctx).Model(product).
			UpdateColumn("is_active", false).Error; err != nil {
			return nil, err
		}
		return product, nil
	}

	if err := db.WithContext(ctx).Delete(product).Error; err != nil {
		return nil, err
	}
	return product, nil
}

func GetProduct(ctx context.Context, warungId int, id int) (*Product, error) {
	if err := ValidateWarungOwner(ctx, warungId); err != nil {
		return nil, err
	}
	return utils.FetchModel[Product](ctx, warungId, id)
}

// GetProducts lists a warung's products, optionally filtered by a name
// substring and a category.
func GetProducts(ctx context.Context, warungId int, search string, categoryId *int) ([]*Product, error) {
	if err := ValidateWarungOwner(ctx, warungId); err != nil {
		return nil, err
	}

	db := config.GetDB()
	dbCtx := db.WithContext(ctx).Where("warung_id = ?", warungId)
	if search != "" {
		dbCtx = dbCtx.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(search)+"%")
	}
	if categoryId != nil && *categoryId > 0 {
		dbCtx = dbCtx.Where("category_id = ?", *categoryId)
	}

	var results []*Product
	if err := dbCtx.Order("name ASC").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// GetLowStockProducts returns active products at or below their restock
// threshold.
func GetLowStockProducts(ctx context.Context, warungId int) ([]*Product, error) {
	if err := ValidateWarungOwner(ctx, warungId); err != nil {
		return nil, err
	}

	db := config.GetDB()
	var results []*Product
	err := db.WithContext(ctx).
		Where("warung_id = ? AND is_active = 1 AND stock <= min_stock", warungId).
		Order("stock ASC").
		Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}
