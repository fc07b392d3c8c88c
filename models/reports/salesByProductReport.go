package reports

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/warungku/pos_backend/config"
	"github.com/warungku/pos_backend/models"
	"github.com/warungku/pos_backend/utils"
)

type SalesByProductResponse struct {
	ProductId   int             `json:"product_id"`
	ProductName string          `json:"product_name"`
	QtySold     int64           `json:"qty_sold"`
	SaleCount   int64           `json:"sale_count"`
	TotalSales  decimal.Decimal `json:"total_sales"`
}

// GetSalesByProductReport aggregates sold quantity and revenue per product
// over a local date range (inclusive).
func GetSalesByProductReport(ctx context.Context, warungId int, fromDate string, toDate string) ([]*SalesByProductResponse, error) {

	warung, err := models.GetWarung(ctx, warungId)
	if err != nil {
		return nil, err
	}
	loc := warung.Location()

	from, err := time.ParseInLocation("2006-01-02", fromDate, loc)
	if err != nil {
		return nil, err
	}
	to, err := time.ParseInLocation("2006-01-02", toDate, loc)
	if err != nil {
		return nil, err
	}

	sql := `
SELECT
    si.product_id,
    si.product_name,
    SUM(si.qty) AS qty_sold,
    COUNT(DISTINCT si.sale_id) AS sale_count,
    SUM(si.subtotal) AS total_sales
FROM
    sale_items si
    JOIN sales ON sales.id = si.sale_id
WHERE
    sales.warung_id = @warungId
    AND sales.created_at BETWEEN @fromDate AND @toDate
GROUP BY si.product_id, si.product_name
ORDER BY total_sales DESC;
`

	var records []*SalesByProductResponse
	db := config.GetDB()
	if err := db.WithContext(ctx).Raw(sql, map[string]interface{}{
		"warungId": warungId,
		"fromDate": utils.StartOfDay(from, loc),
		"toDate":   utils.EndOfDay(to, loc),
	}).Scan(&records).Error; err != nil {
		return nil, err
	}

	return records, nil
}

func (r SalesByProductResponse) GetCellValues() []interface{} {
	return []interface{}{
		r.ProductName,
		r.QtySold,
		r.SaleCount,
		r.TotalSales,
	}
}
