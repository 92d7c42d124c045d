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

// SalesReturn takes goods back from a customer and reverses the receivable.
type SalesReturn struct {
	ID         int       `gorm:"primary_key" json:"id"`
	TenantId   string    `gorm:"size:64;not null;index;index:idx_sr_tenant_date,priority:1" json:"tenant_id"`
	CustomerId int       `gorm:"index;not null" json:"customer_id" binding:"required"`
	ReturnDate time.Time `gorm:"not null;index:idx_sr_tenant_date,priority:2" json:"return_date" binding:"required"`
	Notes      string    `gorm:"type:text" json:"notes"`
	Posted     bool      `gorm:"not null;default:false;index" json:"posted"`

	Items     []SalesReturnItem `gorm:"foreignKey:SalesReturnId" json:"items"`
	CreatedAt time.Time         `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time         `gorm:"autoUpdateTime" json:"updated_at"`
}

type SalesReturnItem struct {
	ID             int             `gorm:"primary_key" json:"id"`
	TenantId       string          `gorm:"size:64;not null;index" json:"tenant_id"`
	SalesReturnId  int             `gorm:"index;not null" json:"sales_return_id"`
	ProductId      int             `gorm:"index;not null" json:"product_id" binding:"required"`
	Quantity       decimal.Decimal `gorm:"type:decimal(14,3);not null" json:"quantity"`
	UnitPrice      decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"unit_price"`
	DiscountAmount decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"discount_amount"`
}

func (item SalesReturnItem) LineTotal() decimal.Decimal {
	return item.Quantity.Mul(item.UnitPrice).Sub(item.DiscountAmount)
}

func (ret *SalesReturn) CalculateTotal() decimal.Decimal {
	total := decimal.Zero
	for _, item := range ret.Items {
		total = total.Add(item.LineTotal())
	}
	return total
}

type NewSalesReturn struct {
	CustomerId int               `json:"customer_id" binding:"required"`
	ReturnDate time.Time         `json:"return_date" binding:"required"`
	Notes      string            `json:"notes"`
	Items      []NewDocumentItem `json:"items"`
}

func (input *NewSalesReturn) validate(ctx context.Context, tx *gorm.DB, tenantId string) error {
	if err := utils.ValidateTenantOwnership[Party](ctx, tx, tenantId, "customer", input.CustomerId); err != nil {
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

func CreateSalesReturn(ctx context.Context, tc tenant.Context, input *NewSalesReturn) (*SalesReturn, error) {
	tenantId, err := tc.TenantId()
	if err != nil {
		return nil, err
	}
	db := config.GetDB()
	if err := input.validate(ctx, db, tenantId); err != nil {
		return nil, err
	}

	items := make([]SalesReturnItem, 0, len(input.Items))
	for _, i := range input.Items {
		items = append(items, SalesReturnItem{
			TenantId:       tenantId,
			ProductId:      i.ProductId,
			Quantity:       i.Quantity,
			UnitPrice:      i.UnitPrice,
			DiscountAmount: i.DiscountAmount,
		})
	}

	ret := SalesReturn{
		TenantId:   tenantId,
		CustomerId: input.CustomerId,
		ReturnDate: input.ReturnDate,
		Notes:      input.Notes,
		Items:      items,
	}
	if err := db.WithContext(ctx).Create(&ret).Error; err != nil {
		return nil, err
	}
	return &ret, nil
}

func GetSalesReturn(ctx context.Context, tc tenant.Context, id int) (*SalesReturn, error) {
	tenantId, err := tc.TenantId()
	if err != nil {
		return nil, err
	}
	return utils.FetchModel[SalesReturn](ctx, tenantId, id, "Items")
}
