package models

import (
	"context"
	"strings"
	"time"

	"github.com/warungku/pos_backend/config"
	"github.com/warungku/pos_backend/utils"
	"gorm.io/gorm"
)

// Customer is optional on a sale; walk-in checkouts carry none.
type Customer struct {
	ID        int       `gorm:"primary_key" json:"id"`
	WarungId  int       `gorm:"index;not null" json:"warung_id"`
	Name      string    `gorm:"size:100;not null" json:"name" binding:"required"`
	Phone     string    `gorm:"size:20" json:"phone"`
	Address   string    `gorm:"type:text" json:"address"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewCustomer struct {
	Name    string `json:"name" binding:"required"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

func (input NewCustomer) validate() error {
	if input.Phone != "" {
		if err := utils.ValidatePhoneNumber(input.Phone, utils.CountryCode); err != nil {
			return err
		}
	}
	return nil
}

func CreateCustomer(ctx context.Context, warungId int, input *NewCustomer) (*Customer, error) {
	if err := ValidateWarungOwner(ctx, warungId); err != nil {
		return nil, err
	}
	if err := input.validate(); err != nil {
		return nil, err
	}

	customer := Customer{
		WarungId: warungId,
		Name:     input.Name,
		Phone:    input.Phone,
		Address:  input.Address,
	}

	db := config.GetDB()
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&customer).Error; err != nil {
			return err
		}

		activity := WarungActivity{
			WarungId:     warungId,
			ActivityType: ActivityCustomerAdded,
			Description:  "Customer " + customer.Name + " added.",
			CustomerId:   &customer.ID,
		}
		return createActivity(ctx, tx, &activity, map[string]interface{}{
			"name": customer.Name,
		})
	})
	if err != nil {
		return nil, err
	}
	return &customer, nil
}

func UpdateCustomer(ctx context.Context, warungId int, id int, input *NewCustomer) (*Customer, error) {
	if err := ValidateWarungOwner(ctx, warungId); err != nil {
		return nil, err
	}
	if err := input.validate(); err != nil {
		return nil, err
	}

	customer, err := utils.FetchModel[Customer](ctx, warungId, id)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Model(customer).Updates(map[string]interface{}{
		"name":    input.Name,
		"phone":   input.Phone,
		"address": input.Address,
	}).Error; err != nil {
		return nil, err
	}
	return customer, nil
}

func DeleteCustomer(ctx context.Context, warungId int, id int) (*Customer, error) {
	if err := ValidateWarungOwner(ctx, warungId); err != nil {
		return nil, err
	}

	customer, err := utils.FetchModel[Customer](ctx, warungId, id)
	if err != nil {
		return nil, err
	}

	// debt sales keep their customer link
	count, err := utils.ResourceCountWhere[Sale](ctx, warungId, "customer_id = ?", id)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, utils.ErrorPreconditionFailed
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Delete(customer).Error; err != nil {
		return nil, err
	}
	return customer, nil
}

func GetCustomer(ctx context.Context, warungId int, id int) (*Customer, error) {
	if err := ValidateWarungOwner(ctx, warungId); err != nil {
		return nil, err
	}
	return utils.FetchModel[Customer](ctx, warungId, id)
}

func GetCustomers(ctx context.Context, warungId int, search string) ([]*Customer, error) {
	if err := ValidateWarungOwner(ctx, warungId); err != nil {
		return nil, err
	}

	db := config.GetDB()
	dbCtx := db.WithContext(ctx).Where("warung_id = ?", warungId)
	if search != "" {
		dbCtx = dbCtx.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(search)+"%")
	}

	var results []*Customer
	if err := dbCtx.Order("name ASC").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
