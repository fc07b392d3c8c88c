package models

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/warungku/pos_backend/config"
	"github.com/warungku/pos_backend/utils"
	"gorm.io/gorm"
)

// ActivityOutboxRecord implements the transactional outbox for activity
// export: it is written inside the caller's DB transaction but is NOT
// published to Pub/Sub there. Publishing happens asynchronously in the
// activity dispatcher after commit.
type ActivityOutboxRecord struct {
	ID               int        `gorm:"primary_key" json:"id"`
	WarungId         int        `gorm:"index;not null" json:"warung_id"`
	ActivityId       int        `gorm:"index;not null" json:"activity_id"`
	Payload          []byte     `gorm:"type:mediumblob" json:"payload"`
	PublishStatus    string     `gorm:"size:20;not null;default:'PENDING';index" json:"publish_status"`
	PublishAttempts  int        `gorm:"not null;default:0" json:"publish_attempts"`
	LastPublishError *string    `gorm:"type:text" json:"last_publish_error"`
	NextAttemptAt    *time.Time `gorm:"index" json:"next_attempt_at"`
	LockedAt         *time.Time `json:"locked_at"`
	LockedBy         *string    `gorm:"size:64" json:"locked_by"`
	PublishedAt      *time.Time `json:"published_at"`
	PubSubMessageId  *string    `gorm:"size:64" json:"pub_sub_message_id"`
	CorrelationId    string     `gorm:"size:64;index" json:"correlation_id"`
	CreatedAt        time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

// enqueueActivityExport writes the outbox row for a freshly inserted
// activity, inside the same transaction.
func enqueueActivityExport(ctx context.Context, tx *gorm.DB, activity *WarungActivity) error {
	correlationId := correlationIdFromContextOrNew(ctx)

	event := config.ActivityEvent{
		ID:            activity.ID,
		WarungId:      activity.WarungId,
		ActivityType:  string(activity.ActivityType),
		Description:   activity.Description,
		Metadata:      json.RawMessage(activity.Metadata),
		SaleId:        activity.SaleId,
		ProductId:     activity.ProductId,
		CustomerId:    activity.CustomerId,
		UserId:        activity.UserId,
		OccurredAt:    activity.CreatedAt,
		CorrelationId: correlationId,
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	record := ActivityOutboxRecord{
		WarungId:      activity.WarungId,
		ActivityId:    activity.ID,
		Payload:       payload,
		PublishStatus: OutboxPublishStatusPending,
		CorrelationId: correlationId,
	}
	return tx.Create(&record).Error
}

// ConvertToActivityEvent decodes a claimed outbox row back into the wire
// event for publishing.
func ConvertToActivityEvent(record ActivityOutboxRecord) (config.ActivityEvent, error) {
	var event config.ActivityEvent
	err := json.Unmarshal(record.Payload, &event)
	return event, err
}

func correlationIdFromContextOrNew(ctx context.Context) string {
	if ctx != nil {
		if v, ok := utils.GetCorrelationIdFromContext(ctx); ok && v != "" {
			return v
		}
	}
	return uuid.NewString()
}
