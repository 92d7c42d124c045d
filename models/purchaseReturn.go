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

// PurchaseReturn sends goods back to a supplier and reverses the payable.
type PurchaseReturn struct {
	ID         int       `gorm:"primary_key" json:"id"`
	TenantId   string    `gorm:"size:64;not null;index;index:idx_pr_tenant_date,priority:1" json:"tenant_id"`
	SupplierId int       `gorm:"index;not null" json:"supplier_id" binding:"required"`
	ReturnDate time.Time `gorm:"not null;index:idx_pr_tenant_date,priority:2" json:"return_date" binding:"required"`
	Notes      string    `gorm:"type:text" json:"notes"`
	Posted     bool      `gorm:"not null;default:false;index" json:"posted"`

	Items     []PurchaseReturnItem `gorm:"foreignKey:PurchaseReturnId" json:"items"`
	CreatedAt time.Time            `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time            `gorm:"autoUpdateTime" json:"updated_at"`
}

type PurchaseReturnItem struct {
	ID               int             `gorm:"primary_key" json:"id"`
	TenantId         string          `gorm:"size:64;not null;index" json:"tenant_id"`
	PurchaseReturnId int             `gorm:"index;not null" json:"purchase_return_id"`
	ProductId        int             `gorm:"index;not null" json:"product_id" binding:"required"`
	Quantity         decimal.Decimal `gorm:"type:decimal(14,3);not null" json:"quantity"`
	UnitPrice        decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"unit_price"`
	DiscountAmount   decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"discount_amount"`
}

func (item PurchaseReturnItem) LineTotal() decimal.Decimal {
	return item.Quantity.Mul(item.UnitPrice).Sub(item.DiscountAmount)
}

func (ret *PurchaseReturn) CalculateTotal() decimal.Decimal {
	total := decimal.Zero
	for _, item := range ret.Items {
		total = total.Add(item.LineTotal())
	}
	return total
}

type NewPurchaseReturn struct {
	SupplierId int               `json:"supplier_id" binding:"required"`
	ReturnDate time.Time         `json:"return_date" binding:"required"`
	Notes      string            `json:"notes"`
	Items      []NewDocumentItem `json:"items"`
}

func (input *NewPurchaseReturn) validate(ctx context.Context, tx *gorm.DB, tenantId string) error {
	if err := utils.ValidateTenantOwnership[Party](ctx, tx, tenantId, "supplier", input.SupplierId); err != nil {
		return err
	}
	for _, item := range input.Items {
		if err := utils.ValidateTenantOwnership[Product](ctx, tx, tenantId, "product", item.ProductId); err != nil {
			return err
		}
		if !item.Quantity.IsPositive() {
			return fmt.Errorf("%w: line quantity must be positive", utils.ErrorInvalidDocumentState)
		}
	}
	return nil
}

func CreatePurchaseReturn(ctx context.Context, tc tenant.Context, input *NewPurchaseReturn) (*PurchaseReturn, error) {
	tenantId, err := tc.TenantId()
	if err != nil {
		return nil, err
	}
	db := config.GetDB()
	if err := input.validate(ctx, db, tenantId); err != nil {
		return nil, err
	}

	items := make([]PurchaseReturnItem, 0, len(input.Items))
	for _, i := range input.Items {
		items = append(items, PurchaseReturnItem{
			TenantId:       tenantId,
			ProductId:      i.ProductId,
			Quantity:       i.Quantity,
			UnitPrice:      i.UnitPrice,
			DiscountAmount: i.DiscountAmount,
		})
	}

	ret := PurchaseReturn{
		TenantId:   tenantId,
		SupplierId: input.SupplierId,
		ReturnDate: input.ReturnDate,
		Notes:      input.Notes,
		Items:      items,
	}
	if err := db.WithContext(ctx).Create(&ret).Error; err != nil {
		return nil, err
	}
	return &ret, nil
}

func GetPurchaseReturn(ctx context.Context, tc tenant.Context, id int) (*PurchaseReturn, error) {
	tenantId, err := tc.TenantId()
	if err != nil {
		return nil, err
	}
	return utils.FetchModel[PurchaseReturn](ctx, tenantId, id, "Items")
}
