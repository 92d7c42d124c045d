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

type PurchaseInvoice struct {
	ID            int       `gorm:"primary_key" json:"id"`
	TenantId      string    `gorm:"size:64;not null;index;index:idx_pi_tenant_date,priority:1" json:"tenant_id"`
	SupplierId    int       `gorm:"index;not null" json:"supplier_id" binding:"required"`
	InvoiceNumber string    `gorm:"size:50" json:"invoice_number"`
	InvoiceDate   time.Time `gorm:"not null;index:idx_pi_tenant_date,priority:2" json:"invoice_date" binding:"required"`
	Notes         string    `gorm:"type:text" json:"notes"`
	Posted        bool      `gorm:"not null;default:false;index" json:"posted"`

	FreightCharges decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"freight_charges"`
	OtherCharges   decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"other_charges"`

	PaymentType      InvoicePaymentType `gorm:"size:10;not null;default:'CREDIT'" json:"payment_type"`
	PaymentAccountId int                `gorm:"index" json:"payment_account_id"`
	PaymentAmount    decimal.Decimal    `gorm:"type:decimal(20,4);default:0" json:"payment_amount"`

	Items     []PurchaseInvoiceItem `gorm:"foreignKey:PurchaseInvoiceId" json:"items"`
	CreatedAt time.Time             `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time             `gorm:"autoUpdateTime" json:"updated_at"`
}

type PurchaseInvoiceItem struct {
	ID                int             `gorm:"primary_key" json:"id"`
	TenantId          string          `gorm:"size:64;not null;index" json:"tenant_id"`
	PurchaseInvoiceId int             `gorm:"index;not null" json:"purchase_invoice_id"`
	ProductId         int             `gorm:"index;not null" json:"product_id" binding:"required"`
	Quantity          decimal.Decimal `gorm:"type:decimal(14,3);not null" json:"quantity"`
	UnitPrice         decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"unit_price"`
	DiscountAmount    decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"discount_amount"`
}

func (item PurchaseInvoiceItem) LineTotal() decimal.Decimal {
	return item.Quantity.Mul(item.UnitPrice).Sub(item.DiscountAmount)
}

// CalculateTotal is line totals plus freight and other charges; the charges
// land in inventory cost, not a separate expense.
func (inv *PurchaseInvoice) CalculateTotal() decimal.Decimal {
	total := decimal.Zero
	for _, item := range inv.Items {
		total = total.Add(item.LineTotal())
	}
	return total.Add(inv.FreightCharges).Add(inv.OtherCharges)
}

type NewPurchaseInvoice struct {
	SupplierId       int                `json:"supplier_id" binding:"required"`
	InvoiceNumber    string             `json:"invoice_number"`
	InvoiceDate      time.Time          `json:"invoice_date" binding:"required"`
	Notes            string             `json:"notes"`
	FreightCharges   decimal.Decimal    `json:"freight_charges"`
	OtherCharges     decimal.Decimal    `json:"other_charges"`
	PaymentType      InvoicePaymentType `json:"payment_type"`
	PaymentAccountId int                `json:"payment_account_id"`
	PaymentAmount    decimal.Decimal    `json:"payment_amount"`
	Items            []NewDocumentItem  `json:"items"`
}

func (input *NewPurchaseInvoice) validate(ctx context.Context, tx *gorm.DB, tenantId string) error {
	if err := utils.ValidateTenantOwnership[Party](ctx, tx, tenantId, "supplier", input.SupplierId); err != nil {
		return err
	}
	if input.PaymentAccountId > 0 {
		if err := utils.ValidateTenantOwnership[Account](ctx, tx, tenantId, "payment account", input.PaymentAccountId); err != nil {
			return err
		}
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

func receivePurchaseItems(tenantId string, input []NewDocumentItem) []PurchaseInvoiceItem {
	items := make([]PurchaseInvoiceItem, 0, len(input))
	for _, i := range input {
		items = append(items, PurchaseInvoiceItem{
			TenantId:       tenantId,
			ProductId:      i.ProductId,
			Quantity:       i.Quantity,
			UnitPrice:      i.UnitPrice,
			DiscountAmount: i.DiscountAmount,
		})
	}
	return items
}

func CreatePurchaseInvoice(ctx context.Context, tc tenant.Context, input *NewPurchaseInvoice) (*PurchaseInvoice, error) {
	tenantId, err := tc.TenantId()
	if err != nil {
		return nil, err
	}
	db := config.GetDB()
	if err := input.validate(ctx, db, tenantId); err != nil {
		return nil, err
	}

	paymentType := input.PaymentType
	if paymentType == "" {
		paymentType = PaymentTypeCredit
	}
	invoice := PurchaseInvoice{
		TenantId:         tenantId,
		SupplierId:       input.SupplierId,
		InvoiceNumber:    input.InvoiceNumber,
		InvoiceDate:      input.InvoiceDate,
		Notes:            input.Notes,
		FreightCharges:   input.FreightCharges,
		OtherCharges:     input.OtherCharges,
		PaymentType:      paymentType,
		PaymentAccountId: input.PaymentAccountId,
		PaymentAmount:    input.PaymentAmount,
		Items:            receivePurchaseItems(tenantId, input.Items),
	}

	if err := db.WithContext(ctx).Create(&invoice).Error; err != nil {
		return nil, err
	}
	return &invoice, nil
}

func UpdatePurchaseInvoice(ctx context.Context, tc tenant.Context, id int, input *NewPurchaseInvoice) (*PurchaseInvoice, error) {
	tenantId, err := tc.TenantId()
	if err != nil {
		return nil, err
	}
	db := config.GetDB()
	if err := input.validate(ctx, db, tenantId); err != nil {
		return nil, err
	}

	invoice, err := utils.FetchModel[PurchaseInvoice](ctx, tenantId, id)
	if err != nil {
		return nil, err
	}
	if invoice.Posted {
		return nil, fmt.Errorf("%w: posted purchase invoice cannot be modified", utils.ErrorInvalidDocumentState)
	}

	items := receivePurchaseItems(tenantId, input.Items)
	for i := range items {
		items[i].PurchaseInvoiceId = id
	}

	tx := db.Begin()
	err = tx.WithContext(ctx).Model(invoice).Updates(map[string]interface{}{
		"SupplierId":       input.SupplierId,
		"InvoiceNumber":    input.InvoiceNumber,
		"InvoiceDate":      input.InvoiceDate,
		"Notes":            input.Notes,
		"FreightCharges":   input.FreightCharges,
		"OtherCharges":     input.OtherCharges,
		"PaymentType":      input.PaymentType,
		"PaymentAccountId": input.PaymentAccountId,
		"PaymentAmount":    input.PaymentAmount,
	}).Error
	if err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.WithContext(ctx).
		Where("purchase_invoice_id = ?", id).
		Delete(&PurchaseInvoiceItem{}).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if len(items) > 0 {
		if err := tx.WithContext(ctx).Create(&items).Error; err != nil {
			tx.Rollback()
			return nil, err
		}
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	invoice.Items = items
	return invoice, nil
}

func GetPurchaseInvoice(ctx context.Context, tc tenant.Context, id int) (*PurchaseInvoice, error) {
	tenantId, err := tc.TenantId()
	if err != nil {
		return nil, err
	}
	return utils.FetchModel[PurchaseInvoice](ctx, tenantId, id, "Items")
}
