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

// StockAdjustment corrects a product's stock count outside of trading
// documents. UP books the value into inventory against opening equity,
// DOWN writes it off to expense.
type StockAdjustment struct {
	ID             int             `gorm:"primary_key" json:"id"`
	TenantId       string          `gorm:"size:64;not null;index;index:idx_sa_tenant_date,priority:1" json:"tenant_id"`
	AdjustmentDate time.Time       `gorm:"not null;index:idx_sa_tenant_date,priority:2" json:"adjustment_date" binding:"required"`
	ProductId      int             `gorm:"index;not null" json:"product_id" binding:"required"`
	Direction      StockDirection  `gorm:"size:5;not null" json:"direction" binding:"required"`
	Quantity       decimal.Decimal `gorm:"type:decimal(14,3);not null" json:"quantity"`
	UnitCost       decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"unit_cost"`
	Reason         string          `gorm:"type:text" json:"reason"`
	Posted         bool            `gorm:"not null;default:false;index" json:"posted"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (adj *StockAdjustment) CalculateTotal() decimal.Decimal {
	return adj.Quantity.Mul(adj.UnitCost)
}

type NewStockAdjustment struct {
	AdjustmentDate time.Time       `json:"adjustment_date" binding:"required"`
	ProductId      int             `json:"product_id" binding:"required"`
	Direction      StockDirection  `json:"direction" binding:"required"`
	Quantity       decimal.Decimal `json:"quantity" binding:"required"`
	UnitCost       decimal.Decimal `json:"unit_cost" binding:"required"`
	Reason         string          `json:"reason"`
}

func (input *NewStockAdjustment) validate(ctx context.Context, tx *gorm.DB, tenantId string) error {
	if input.Direction != StockUp && input.Direction != StockDown {
		return fmt.Errorf("%w: unknown stock adjustment direction %q", utils.ErrorInvalidDocumentState, input.Direction)
	}
	if !input.Quantity.IsPositive() {
		return fmt.Errorf("%w: adjustment quantity must be positive", utils.ErrorInvalidDocumentState)
	}
	return utils.ValidateTenantOwnership[Product](ctx, tx, tenantId, "product", input.ProductId)
}

func CreateStockAdjustment(ctx context.Context, tc tenant.Context, input *NewStockAdjustment) (*StockAdjustment, error) {
	tenantId, err := tc.TenantId()
	if err != nil {
		return nil, err
	}
	db := config.GetDB()
	if err := input.validate(ctx, db, tenantId); err != nil {
		return nil, err
	}

	adjustment := StockAdjustment{
		TenantId:       tenantId,
		AdjustmentDate: input.AdjustmentDate,
		ProductId:      input.ProductId,
		Direction:      input.Direction,
		Quantity:       input.Quantity,
		UnitCost:       input.UnitCost,
		Reason:         input.Reason,
	}
	if err := db.WithContext(ctx).Create(&adjustment).Error; err != nil {
		return nil, err
	}
	return &adjustment, nil
}

func GetStockAdjustment(ctx context.Context, tc tenant.Context, id int) (*StockAdjustment, error) {
	tenantId, err := tc.TenantId()
	if err != nil {
		return nil, err
	}
	return utils.FetchModel[StockAdjustment](ctx, tenantId, id)
}
