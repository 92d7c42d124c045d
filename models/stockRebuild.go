package models

import (
	"context"

	"github.com/app-roznamcha/roznamcha/config"
	"github.com/app-roznamcha/roznamcha/tenant"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// StockDrift is a product whose stored counter disagrees with the
// quantity implied by the posted documents.
type StockDrift struct {
	ProductId int             `json:"product_id"`
	Code      string          `json:"code"`
	Stored    decimal.Decimal `json:"stored"`
	Computed  decimal.Decimal `json:"computed"`
}

type itemQty struct {
	ProductId int
	Quantity  decimal.Decimal
}

func sumItemQuantities(ctx context.Context, db *gorm.DB, tenantId string, itemTable string, docTable string, fk string, extraWhere string, args ...interface{}) ([]itemQty, error) {
	var rows []itemQty
	query := db.WithContext(ctx).
		Table(itemTable).
		Select(itemTable+".product_id as product_id, SUM("+itemTable+".quantity) as quantity").
		Joins("JOIN "+docTable+" ON "+docTable+".id = "+itemTable+"."+fk).
		Where(docTable+".tenant_id = ? AND "+docTable+".posted = ?", tenantId, true).
		Group(itemTable + ".product_id")
	if extraWhere != "" {
		query = query.Where(extraWhere, args...)
	}
	if err := query.Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// computeStockLevels replays every posted document and returns the
// quantity each product should hold.
func computeStockLevels(ctx context.Context, db *gorm.DB, tenantId string) (map[int]decimal.Decimal, error) {
	levels := map[int]decimal.Decimal{}

	apply := func(rows []itemQty, sign decimal.Decimal) {
		for _, r := range rows {
			levels[r.ProductId] = levels[r.ProductId].Add(r.Quantity.Mul(sign))
		}
	}
	plus := decimal.NewFromInt(1)
	minus := decimal.NewFromInt(-1)

	rows, err := sumItemQuantities(ctx, db, tenantId, "sales_invoice_items", "sales_invoices", "sales_invoice_id", "")
	if err != nil {
		return nil, err
	}
	apply(rows, minus)

	rows, err = sumItemQuantities(ctx, db, tenantId, "purchase_invoice_items", "purchase_invoices", "purchase_invoice_id", "")
	if err != nil {
		return nil, err
	}
	apply(rows, plus)

	rows, err = sumItemQuantities(ctx, db, tenantId, "sales_return_items", "sales_returns", "sales_return_id", "")
	if err != nil {
		return nil, err
	}
	apply(rows, plus)

	rows, err = sumItemQuantities(ctx, db, tenantId, "purchase_return_items", "purchase_returns", "purchase_return_id", "")
	if err != nil {
		return nil, err
	}
	apply(rows, minus)

	var adjustments []StockAdjustment
	err = db.WithContext(ctx).
		Where("tenant_id = ? AND posted = ?", tenantId, true).
		Find(&adjustments).Error
	if err != nil {
		return nil, err
	}
	for _, adj := range adjustments {
		qty := adj.Quantity
		if adj.Direction == StockDown {
			qty = qty.Neg()
		}
		levels[adj.ProductId] = levels[adj.ProductId].Add(qty)
	}

	return levels, nil
}

// VerifyStockLevels reports products whose current_stock counter has
// drifted from the replayed document history. Read-only.
func VerifyStockLevels(ctx context.Context, tc tenant.Context) ([]StockDrift, error) {
	tenantId, err := tc.TenantId()
	if err != nil {
		return nil, err
	}
	db := config.GetDB()

	levels, err := computeStockLevels(ctx, db, tenantId)
	if err != nil {
		return nil, err
	}

	var products []Product
	if err := db.WithContext(ctx).Where("tenant_id = ?", tenantId).Find(&products).Error; err != nil {
		return nil, err
	}

	var drifts []StockDrift
	for _, p := range products {
		computed := levels[p.ID]
		if !p.CurrentStock.Equal(computed) {
			drifts = append(drifts, StockDrift{
				ProductId: p.ID,
				Code:      p.Code,
				Stored:    p.CurrentStock,
				Computed:  computed,
			})
		}
	}
	return drifts, nil
}

// RebuildStockLevels overwrites every product counter with the quantity
// replayed from posted documents, returning the drifts it repaired.
func RebuildStockLevels(ctx context.Context, tc tenant.Context) ([]StockDrift, error) {
	drifts, err := VerifyStockLevels(ctx, tc)
	if err != nil {
		return nil, err
	}
	if len(drifts) == 0 {
		return nil, nil
	}
	tenantId, _ := tc.TenantId()
	db := config.GetDB()

	tx := db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}
	for _, d := range drifts {
		err := tx.Model(&Product{}).
			Where("tenant_id = ? AND id = ?", tenantId, d.ProductId).
			UpdateColumn("current_stock", d.Computed).Error
		if err != nil {
			tx.Rollback()
			return nil, err
		}
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	return drifts, nil
}
