package models

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/warungku/pos_backend/config"
	"github.com/warungku/pos_backend/utils"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"
)

// Sale is one checkout. ReceiptNo is unique per warung; the per-day
// sequence behind it never reuses a number even across crashes (redis
// counter seeded from the DB, re-validated, plus the composite index).
type Sale struct {
	ID          int             `gorm:"primary_key" json:"id"`
	WarungId    int             `gorm:"not null;uniqueIndex:idx_warung_receipt" json:"warung_id"`
	CustomerId  *int            `gorm:"index" json:"customer_id"`
	UserId      int             `gorm:"index;not null" json:"user_id"`
	ReceiptNo   string          `gorm:"size:30;not null;uniqueIndex:idx_warung_receipt" json:"receipt_no"`
	TotalAmount decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"total_amount"`
	PaymentType PaymentType     `gorm:"type:enum('CASH','QRIS','BANK_TRANSFER','E_WALLET','DEBT');not null" json:"payment_type"`
	IsPaid      *bool           `gorm:"not null;default:false;index" json:"is_paid"`
	Note        string          `gorm:"type:text" json:"note"`
	Items       []SaleItem      `json:"items"`
	CreatedAt   time.Time       `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt   time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

// SaleItem snapshots the product name and price at checkout time.
type SaleItem struct {
	ID          int             `gorm:"primary_key" json:"id"`
	SaleId      int             `gorm:"index;not null" json:"sale_id"`
	ProductId   int             `gorm:"index;not null" json:"product_id"`
	ProductName string          `gorm:"size:100;not null" json:"product_name"`
	Price       decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"price"`
	Qty         int             `gorm:"not null" json:"qty"`
	Subtotal    decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"subtotal"`
}

type NewSale struct {
	CustomerId  *int          `json:"customer_id"`
	PaymentType PaymentType   `json:"payment_type" binding:"required"`
	Note        string        `json:"note"`
	Items       []NewSaleItem `json:"items" binding:"required,min=1,dive"`
}

type NewSaleItem struct {
	ProductId int `json:"product_id" binding:"required"`
	Qty       int `json:"qty" binding:"required,min=1"`
}

func (input NewSale) validate(ctx context.Context, warungId int) error {
	if !input.PaymentType.IsValid() {
		return utils.ErrorPreconditionFailed
	}
	if len(input.Items) == 0 {
		return utils.ErrorPreconditionFailed
	}
	productIds := make([]int, 0, len(input.Items))
	for _, item := range input.Items {
		if item.Qty <= 0 {
			return utils.ErrorPreconditionFailed
		}
		productIds = append(productIds, item.ProductId)
	}
	if err := utils.ValidateResourcesId[Product, int](ctx, warungId, productIds); err != nil {
		return err
	}
	if input.CustomerId != nil && *input.CustomerId > 0 {
		if err := utils.ValidateResourceId[Customer](ctx, warungId, *input.CustomerId); err != nil {
			return err
		}
	}
	return nil
}

// CreateSale runs the whole checkout atomically: receipt numbering, the
// sale with its items, the conditional stock decrements and the audit
// activity either all commit or none do. A per-warung redis lock keeps
// concurrent checkouts of one warung from racing the daily sequence; the
// composite (warung_id, receipt_no) index is the last line of defense, with
// one retry on a lost duplicate race.
func CreateSale(ctx context.Context, warungId int, input *NewSale) (*Sale, error) {
	ctx, span := otel.Tracer("pos_backend").Start(ctx, "CreateSale")
	defer span.End()
	span.SetAttributes(attribute.Int("warung_id", warungId))

	if err := ValidateWarungOwner(ctx, warungId); err != nil {
		return nil, err
	}
	if err := input.validate(ctx, warungId); err != nil {
		return nil, err
	}

	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok || userId == 0 {
		return nil, utils.ErrorUnauthenticated
	}

	warung, err := warungById(ctx, warungId)
	if err != nil {
		return nil, err
	}

	release, err := utils.WarungLock(ctx, warungId, "SaleCheckoutLock", "models", "CreateSale")
	if err != nil {
		return nil, err
	}
	defer release()

	var sale *Sale
	for attempt := 0; attempt < 2; attempt++ {
		sale, err = createSaleOnce(ctx, warungId, userId, warung, input)
		if err == nil {
			return sale, nil
		}
		// lost the receipt number to a concurrent writer; take the next one
		if IsDuplicateEntryError(err) {
			continue
		}
		return nil, err
	}
	return nil, err
}

func createSaleOnce(ctx context.Context, warungId int, userId int, warung *Warung, input *NewSale) (*Sale, error) {
	db := config.GetDB()

	day := utils.StartOfDay(time.Now(), warung.Location())
	seqNo, err := utils.GetDailySequence[Sale](ctx, warungId, day)
	if err != nil {
		return nil, err
	}
	receiptNo := utils.FormatReceiptNo(day, seqNo)

	isPaid := input.PaymentType.SettlesImmediately()

	var sale Sale
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {

		var items []SaleItem
		totalAmount := decimal.Zero

		for _, item := range input.Items {
			product, err := utils.FetchModel[Product](ctx, warungId, item.ProductId)
			if err != nil {
				return err
			}

			subtotal := product.Price.Mul(decimal.NewFromInt(int64(item.Qty)))
			totalAmount = totalAmount.Add(subtotal)

			items = append(items, SaleItem{
				ProductId:   product.ID,
				ProductName: product.Name,
				Price:       product.Price,
				Qty:         item.Qty,
				Subtotal:    subtotal,
			})
		}

		sale = Sale{
			WarungId:    warungId,
			CustomerId:  input.CustomerId,
			UserId:      userId,
			ReceiptNo:   receiptNo,
			TotalAmount: totalAmount,
			PaymentType: input.PaymentType,
			IsPaid:      &isPaid,
			Note:        input.Note,
			Items:       items,
		}
		if err := tx.Create(&sale).Error; err != nil {
			return err
		}

		// Decrement stock only when enough remains; a zero-row update means
		// the guard failed and the whole checkout rolls back. Stock never
		// goes negative.
		for _, item := range input.Items {
			result := tx.Model(&Product{}).
				Where("id = ? AND warung_id = ? AND stock >= ?", item.ProductId, warungId, item.Qty).
				UpdateColumn("stock", gorm.Expr("stock - ?", item.Qty))
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				return utils.ErrorInsufficientStock
			}
		}

		status := "on-process"
		if isPaid {
			status = "completed"
		}
		activity := WarungActivity{
			WarungId:     warungId,
			ActivityType: ActivitySaleCreated,
			Description:  fmt.Sprintf("Sale %s created for %s.", receiptNo, totalAmount),
			SaleId:       &sale.ID,
			CustomerId:   input.CustomerId,
		}
		return createActivity(ctx, tx, &activity, map[string]interface{}{
			"amount":       totalAmount,
			"payment_type": input.PaymentType,
			"item_count":   len(items),
			"status":       status,
		})
	})
	if err != nil {
		return nil, err
	}
	return &sale, nil
}

// MarkSaleAsPaid settles a sale. The write is unconditional so repeated
// calls stay monotonic; every call appends a SALE_UPDATED activity.
func MarkSaleAsPaid(ctx context.Context, warungId int, saleId int) (*Sale, error) {
	if err := ValidateWarungOwner(ctx, warungId); err != nil {
		return nil, err
	}

	sale, err := utils.FetchModel[Sale](ctx, warungId, saleId, "Items")
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(sale).UpdateColumn("is_paid", true).Error; err != nil {
			return err
		}

		activity := WarungActivity{
			WarungId:     warungId,
			ActivityType: ActivitySaleUpdated,
			Description:  fmt.Sprintf("Sale %s marked as paid.", sale.ReceiptNo),
			SaleId:       &sale.ID,
		}
		return createActivity(ctx, tx, &activity, map[string]interface{}{
			"amount": sale.TotalAmount,
		})
	})
	if err != nil {
		return nil, err
	}

	sale.IsPaid = utils.NewTrue()
	return sale, nil
}

func GetSale(ctx context.Context, warungId int, id int) (*Sale, error) {
	if err := ValidateWarungOwner(ctx, warungId); err != nil {
		return nil, err
	}
	return utils.FetchModel[Sale](ctx, warungId, id, "Items")
}

// GetSalesByPaidStatus lists the most recent sales in one settlement state.
func GetSalesByPaidStatus(ctx context.Context, warungId int, isPaid bool) ([]*Sale, error) {
	if err := ValidateWarungOwner(ctx, warungId); err != nil {
		return nil, err
	}

	db := config.GetDB()
	var results []*Sale
	err := db.WithContext(ctx).
		Preload("Items").
		Where("warung_id = ? AND is_paid = ?", warungId, isPaid).
		Order("created_at DESC, id DESC").
		Limit(config.SearchLimit).
		Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}

// GetSalesByDate lists a local calendar day's sales, oldest first.
func GetSalesByDate(ctx context.Context, warungId int, date string) ([]*Sale, error) {
	if err := ValidateWarungOwner(ctx, warungId); err != nil {
		return nil, err
	}

	warung, err := warungById(ctx, warungId)
	if err != nil {
		return nil, err
	}
	loc := warung.Location()
	day, err := time.ParseInLocation("2006-01-02", date, loc)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	var results []*Sale
	err = db.WithContext(ctx).
		Preload("Items").
		Where("warung_id = ? AND created_at BETWEEN ? AND ?",
			warungId, utils.StartOfDay(day, loc), utils.EndOfDay(day, loc)).
		Order("created_at ASC").
		Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}

// SearchSalesByReceipt matches a receipt number substring, case-insensitive.
func SearchSalesByReceipt(ctx context.Context, warungId int, query string) ([]*Sale, error) {
	if err := ValidateWarungOwner(ctx, warungId); err != nil {
		return nil, err
	}

	db := config.GetDB()
	var results []*Sale
	err := db.WithContext(ctx).
		Preload("Items").
		Where("warung_id = ? AND LOWER(receipt_no) LIKE ?", warungId, "%"+strings.ToLower(query)+"%").
		Order("created_at DESC").
		Limit(config.SearchLimit).
		Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}
