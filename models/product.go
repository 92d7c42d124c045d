package models

import (
	"context"
	"fmt"
	"time"

	"github.com/app-roznamcha/roznamcha/config"
	"github.com/app-roznamcha/roznamcha/tenant"
	"github.com/app-roznamcha/roznamcha/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Product struct {
	ID                   int             `gorm:"primary_key" json:"id"`
	TenantId             string          `gorm:"size:64;not null;index;index:uniq_product_code,unique" json:"tenant_id"`
	Code                 string          `gorm:"size:30;not null;index:uniq_product_code,unique" json:"code" binding:"required"`
	Name                 string          `gorm:"size:150;not null" json:"name" binding:"required"`
	Unit                 string          `gorm:"size:10;not null;default:'BAG'" json:"unit"`
	PurchasePricePerUnit decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"purchase_price_per_unit"`
	SalePricePerUnit     decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"sale_price_per_unit"`
	// CurrentStock is a derived counter mutated only by posting operations,
	// never recomputed during normal operation. RebuildStockLevels proves it
	// equal to a full replay.
	CurrentStock decimal.Decimal `gorm:"type:decimal(14,3);default:0" json:"current_stock"`
	IsActive     *bool           `gorm:"not null;default:true" json:"is_active"`
	CreatedAt    time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewProduct struct {
	Code                 string          `json:"code" binding:"required"`
	Name                 string          `json:"name" binding:"required"`
	Unit                 string          `json:"unit"`
	PurchasePricePerUnit decimal.Decimal `json:"purchase_price_per_unit"`
	SalePricePerUnit     decimal.Decimal `json:"sale_price_per_unit"`
}

func CreateProduct(ctx context.Context, tc tenant.Context, input *NewProduct) (*Product, error) {
	tenantId, err := tc.TenantId()
	if err != nil {
		return nil, err
	}

	if err := utils.ValidateUnique[Product](ctx, tenantId, "code", input.Code, 0); err != nil {
		return nil, err
	}

	unit := input.Unit
	if unit == "" {
		unit = "BAG"
	}
	product := Product{
		TenantId:             tenantId,
		Code:                 input.Code,
		Name:                 input.Name,
		Unit:                 unit,
		PurchasePricePerUnit: input.PurchasePricePerUnit,
		SalePricePerUnit:     input.SalePricePerUnit,
		IsActive:             utils.NewTrue(),
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&product).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func GetProduct(ctx context.Context, tc tenant.Context, id int) (*Product, error) {
	tenantId, err := tc.TenantId()
	if err != nil {
		return nil, err
	}
	return utils.FetchModel[Product](ctx, tenantId, id)
}

func GetProducts(ctx context.Context, tc tenant.Context) ([]*Product, error) {
	tenantId, err := tc.TenantId()
	if err != nil {
		return nil, err
	}
	return utils.FetchAllModels[Product](ctx, tenantId)
}

// AdjustStock atomically adds delta (signed) to current_stock. It is a pure
// accumulator: negative results are not rejected here; the caller posting
// a sale owns the insufficient-stock check.
//
// Must run inside the same transaction as the owning journal entry so the
// two commit together or not at all.
func AdjustStock(ctx context.Context, tx *gorm.DB, tenantId string, productId int, delta decimal.Decimal) error {
	if delta.IsZero() {
		return nil
	}
	result := tx.WithContext(ctx).Model(&Product{}).
		Where("tenant_id = ? AND id = ?", tenantId, productId).
		UpdateColumn("current_stock", gorm.Expr("current_stock + ?", delta))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: product %d", utils.ErrorRecordNotFound, productId)
	}
	return nil
}
