package reports

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/warungku/pos_backend/config"
	"github.com/warungku/pos_backend/models"
	"github.com/warungku/pos_backend/utils"
)

// DashboardMetrics compares this month against last month in the warung's
// timezone. A zero previous month reports 100 percent growth instead of a
// division error.
type DashboardMetrics struct {
	Revenue         decimal.Decimal `json:"revenue"`
	RevenueChange   decimal.Decimal `json:"revenue_change"`
	Orders          int64           `json:"orders"`
	OrdersChange    decimal.Decimal `json:"orders_change"`
	NewCustomers    int64           `json:"new_customers"`
	CustomersChange decimal.Decimal `json:"customers_change"`
	LowStockCount   int64           `json:"low_stock_count"`
}

func sumRevenue(ctx context.Context, warungId int, from time.Time, to time.Time) (decimal.Decimal, error) {
	db := config.GetDB()
	var total decimal.NullDecimal
	err := db.WithContext(ctx).Model(&models.Sale{}).
		Where("warung_id = ? AND created_at BETWEEN ? AND ?", warungId, from, to).
		Select("SUM(total_amount)").
		Scan(&total).Error
	if err != nil {
		return decimal.Zero, err
	}
	if !total.Valid {
		return decimal.Zero, nil
	}
	return total.Decimal, nil
}

func countBetween[T any](ctx context.Context, warungId int, from time.Time, to time.Time) (int64, error) {
	return utils.ResourceCountWhere[T](ctx, warungId, "created_at BETWEEN ? AND ?", from, to)
}

func GetDashboardMetrics(ctx context.Context, warungId int) (*DashboardMetrics, error) {
	warung, err := models.GetWarung(ctx, warungId)
	if err != nil {
		return nil, err
	}
	loc := warung.Location()

	curFrom, curTo := utils.GetThisMonthRange(loc)
	prevFrom, prevTo := utils.GetPreviousMonthRange(loc)

	var metrics DashboardMetrics

	curRevenue, err := sumRevenue(ctx, warungId, curFrom, curTo)
	if err != nil {
		return nil, err
	}
	prevRevenue, err := sumRevenue(ctx, warungId, prevFrom, prevTo)
	if err != nil {
		return nil, err
	}
	metrics.Revenue = curRevenue
	metrics.RevenueChange = utils.PercentageChange(curRevenue, prevRevenue)

	curOrders, err := countBetween[models.Sale](ctx, warungId, curFrom, curTo)
	if err != nil {
		return nil, err
	}
	prevOrders, err := countBetween[models.Sale](ctx, warungId, prevFrom, prevTo)
	if err != nil {
		return nil, err
	}
	metrics.Orders = curOrders
	metrics.OrdersChange = utils.PercentageChangeInt(curOrders, prevOrders)

	curCustomers, err := countBetween[models.Customer](ctx, warungId, curFrom, curTo)
	if err != nil {
		return nil, err
	}
	prevCustomers, err := countBetween[models.Customer](ctx, warungId, prevFrom, prevTo)
	if err != nil {
		return nil, err
	}
	metrics.NewCustomers = curCustomers
	metrics.CustomersChange = utils.PercentageChangeInt(curCustomers, prevCustomers)

	lowStock, err := utils.ResourceCountWhere[models.Product](ctx, warungId, "is_active = 1 AND stock <= min_stock")
	if err != nil {
		return nil, err
	}
	metrics.LowStockCount = lowStock

	return &metrics, nil
}
