package models

import (
	"context"
	"encoding/json"
	"time"

	"github.com/warungku/pos_backend/config"
	"github.com/warungku/pos_backend/utils"
	"gorm.io/gorm"
)

// WarungActivity is the append-only audit feed behind the dashboard.
// Rows are never updated or deleted; each insert also enqueues an outbox
// record for Pub/Sub export.
type WarungActivity struct {
	ID           int          `gorm:"primary_key" json:"id"`
	WarungId     int          `gorm:"index;not null" json:"warung_id"`
	ActivityType ActivityType `gorm:"type:enum('SALE_CREATED','SALE_UPDATED','PRODUCT_ADDED','PRODUCT_UPDATED','CUSTOMER_ADDED','WARUNG_UPDATED');not null" json:"activity_type"`
	Description  string       `gorm:"type:text;not null" json:"description"`
	Metadata     string       `gorm:"type:text" json:"metadata"`
	SaleId       *int         `gorm:"index" json:"sale_id"`
	ProductId    *int         `gorm:"index" json:"product_id"`
	CustomerId   *int         `gorm:"index" json:"customer_id"`
	UserId       int          `gorm:"index;not null" json:"user_id"`
	UserName     string       `gorm:"size:100" json:"user_name"`
	CreatedAt    time.Time    `gorm:"autoCreateTime;index" json:"created_at"`
}

// createActivity appends one audit row plus its outbox record inside the
// caller's transaction. Identity comes from the session context.
func createActivity(ctx context.Context, tx *gorm.DB, activity *WarungActivity, metadata interface{}) error {

	if !activity.ActivityType.IsValid() {
		return utils.ErrorPreconditionFailed
	}

	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok || userId == 0 {
		return utils.ErrorUnauthenticated
	}
	userName, _ := utils.GetUserNameFromContext(ctx)

	activity.UserId = userId
	activity.UserName = userName

	if metadata != nil {
		m, err := json.Marshal(metadata)
		if err != nil {
			return err
		}
		activity.Metadata = string(m)
	}

	if err := tx.Create(activity).Error; err != nil {
		return err
	}
	return enqueueActivityExport(ctx, tx, activity)
}

// GetRecentActivities returns the newest activities for the dashboard feed.
func GetRecentActivities(ctx context.Context, warungId int, limit int) ([]*WarungActivity, error) {
	if err := ValidateWarungOwner(ctx, warungId); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	db := config.GetDB()
	var results []*WarungActivity
	err := db.WithContext(ctx).
		Where("warung_id = ?", warungId).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}
