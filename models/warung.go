package models

import (
	"context"
	"time"

	"github.com/warungku/pos_backend/config"
	"github.com/warungku/pos_backend/utils"
	"gorm.io/gorm"
)

type Warung struct {
	ID        int       `gorm:"primary_key" json:"id"`
	OwnerId   int       `gorm:"index;not null" json:"owner_id"`
	Name      string    `gorm:"size:100;not null" json:"name" binding:"required"`
	Address   string    `gorm:"type:text" json:"address"`
	Phone     string    `gorm:"size:20" json:"phone"`
	Timezone  string    `gorm:"size:50;not null;default:'Asia/Jakarta'" json:"timezone"`
	IsActive  *bool     `gorm:"not null;default:true" json:"is_active"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewWarung struct {
	Name     string `json:"name" binding:"required"`
	Address  string `json:"address"`
	Phone    string `json:"phone"`
	Timezone string `json:"timezone"`
}

// Location resolves the warung's timezone, falling back to the default.
func (warung Warung) Location() *time.Location {
	return utils.LoadTimezone(warung.Timezone)
}

// warungById reads through the redis instance cache. Writers invalidate
// with removeInstanceCache.
func warungById(ctx context.Context, id int) (*Warung, error) {
	cached, err := utils.RetrieveRedis[Warung](id)
	if err == nil && cached != nil {
		return cached, nil
	}
	warung, err := utils.FetchSingleModel[Warung](ctx, id)
	if err != nil {
		return nil, err
	}
	if err := utils.StoreRedis[Warung](warung, id); err != nil {
		config.LogError(config.GetLogger(), "models", "warungById", "Could not cache warung", id, err)
	}
	return warung, nil
}

func (warung Warung) removeInstanceCache() error {
	return utils.RemoveRedisItem[Warung](warung.ID)
}

func (input NewWarung) validate() error {
	if input.Phone != "" {
		if err := utils.ValidatePhoneNumber(input.Phone, utils.CountryCode); err != nil {
			return err
		}
	}
	if input.Timezone != "" {
		if _, err := time.LoadLocation(input.Timezone); err != nil {
			return err
		}
	}
	return nil
}

// name must be unique among one owner's warungs
func validateWarungName(ctx context.Context, ownerId int, name string, exceptId int) error {
	var count int64
	var err error
	if exceptId == 0 {
		count, err = utils.ResourceCountWhere[Warung](ctx, 0, "owner_id = ? AND name = ?", ownerId, name)
	} else {
		count, err = utils.ResourceCountWhere[Warung](ctx, 0, "owner_id = ? AND name = ? AND NOT id = ?", ownerId, name, exceptId)
	}
	if err != nil {
		return err
	}
	if count > 0 {
		return utils.ErrorDuplicate
	}
	return nil
}

func CreateWarung(ctx context.Context, input *NewWarung) (*Warung, error) {
	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok || userId == 0 {
		return nil, utils.ErrorUnauthenticated
	}

	if err := input.validate(); err != nil {
		return nil, err
	}
	if err := validateWarungName(ctx, userId, input.Name, 0); err != nil {
		return nil, err
	}

	timezone := input.Timezone
	if timezone == "" {
		timezone = utils.DefaultTimezone
	}

	warung := Warung{
		OwnerId:  userId,
		Name:     input.Name,
		Address:  input.Address,
		Phone:    input.Phone,
		Timezone: timezone,
		IsActive: utils.NewTrue(),
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&warung).Error; err != nil {
		return nil, err
	}
	return &warung, nil
}

func UpdateWarung(ctx context.Context, id int, input *NewWarung) (*Warung, error) {
	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok || userId == 0 {
		return nil, utils.ErrorUnauthenticated
	}
	if err := ValidateWarungOwner(ctx, id); err != nil {
		return nil, err
	}

	if err := input.validate(); err != nil {
		return nil, err
	}
	if err := validateWarungName(ctx, userId, input.Name, id); err != nil {
		return nil, err
	}

	warung, err := utils.FetchSingleModel[Warung](ctx, id)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := warung.removeInstanceCache(); err != nil {
			return err
		}
		updates := map[string]interface{}{
			"name":    input.Name,
			"address": input.Address,
			"phone":   input.Phone,
		}
		if input.Timezone != "" {
			updates["timezone"] = input.Timezone
		}
		if err := tx.Model(warung).Updates(updates).Error; err != nil {
			return err
		}

		activity := WarungActivity{
			WarungId:     id,
			ActivityType: ActivityWarungUpdated,
			Description:  "Warung " + input.Name + " updated.",
		}
		return createActivity(ctx, tx, &activity, map[string]interface{}{
			"name": input.Name,
		})
	})
	if err != nil {
		return nil, err
	}
	return warung, nil
}

func GetWarung(ctx context.Context, id int) (*Warung, error) {
	if err := ValidateWarungOwner(ctx, id); err != nil {
		return nil, err
	}
	return warungById(ctx, id)
}

func GetAllWarungs(ctx context.Context) ([]*Warung, error) {
	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok || userId == 0 {
		return nil, utils.ErrorUnauthenticated
	}

	db := config.GetDB()
	var results []*Warung
	err := db.WithContext(ctx).
		Where("owner_id = ?", userId).
		Order("name ASC").
		Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}

func ToggleActiveWarung(ctx context.Context, id int, isActive bool) (*Warung, error) {
	if err := ValidateWarungOwner(ctx, id); err != nil {
		return nil, err
	}

	warung, err := utils.FetchSingleModel[Warung](ctx, id)
	if err != nil {
		return nil, err
	}
	if err := warung.removeInstanceCache(); err != nil {
		return nil, err
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Model(warung).
		UpdateColumn("is_active", isActive).Error; err != nil {
		return nil, err
	}
	return warung, nil
}
