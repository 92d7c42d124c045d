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

type SalesInvoice struct {
	ID            int       `gorm:"primary_key" json:"id"`
	TenantId      string    `gorm:"size:64;not null;index;index:idx_si_tenant_date,priority:1" json:"tenant_id"`
	CustomerId    int       `gorm:"index;not null" json:"customer_id" binding:"required"`
	InvoiceNumber string    `gorm:"size:50" json:"invoice_number"`
	InvoiceDate   time.Time `gorm:"not null;index:idx_si_tenant_date,priority:2" json:"invoice_date" binding:"required"`
	Notes         string    `gorm:"type:text" json:"notes"`
	Posted        bool      `gorm:"not null;default:false;index" json:"posted"`

	PaymentType      InvoicePaymentType `gorm:"size:10;not null;default:'CREDIT'" json:"payment_type"`
	PaymentAccountId int                `gorm:"index" json:"payment_account_id"`
	PaymentAmount    decimal.Decimal    `gorm:"type:decimal(20,4);default:0" json:"payment_amount"`

	Items     []SalesInvoiceItem `gorm:"foreignKey:SalesInvoiceId" json:"items"`
	CreatedAt time.Time          `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time          `gorm:"autoUpdateTime" json:"updated_at"`
}

type SalesInvoiceItem struct {
	ID             int             `gorm:"primary_key" json:"id"`
	TenantId       string          `gorm:"size:64;not null;index" json:"tenant_id"`
	SalesInvoiceId int             `gorm:"index;not null" json:"sales_invoice_id"`
	ProductId      int             `gorm:"index;not null" json:"product_id" binding:"required"`
	Quantity       decimal.Decimal `gorm:"type:decimal(14,3);not null" json:"quantity"`
	UnitPrice      decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"unit_price"`
	// flat amount, not a percentage
	DiscountAmount decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"discount_amount"`
}

func (item SalesInvoiceItem) LineTotal() decimal.Decimal {
	return item.Quantity.Mul(item.UnitPrice).Sub(item.DiscountAmount)
}

// CalculateTotal sums line totals. Items must be loaded.
func (inv *SalesInvoice) CalculateTotal() decimal.Decimal {
	total := decimal.Zero
	for _, item := range inv.Items {
		total = total.Add(item.LineTotal())
	}
	return total
}

type NewDocumentItem struct {
	ProductId      int             `json:"product_id" binding:"required"`
	Quantity       decimal.Decimal `json:"quantity" binding:"required"`
	UnitPrice      decimal.Decimal `json:"unit_price" binding:"required"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
}

type NewSalesInvoice struct {
	CustomerId       int                `json:"customer_id" binding:"required"`
	InvoiceNumber    string             `json:"invoice_number"`
	InvoiceDate      time.Time          `json:"invoice_date" binding:"required"`
	Notes            string             `json:"notes"`
	PaymentType      InvoicePaymentType `json:"payment_type"`
	PaymentAccountId int                `json:"payment_account_id"`
	PaymentAmount    decimal.Decimal    `json:"payment_amount"`
	Items            []NewDocumentItem  `json:"items"`
}

func (input *NewSalesInvoice) validate(ctx context.Context, tx *gorm.DB, tenantId string) error {
	if err := utils.ValidateTenantOwnership[Party](ctx, tx, tenantId, "customer", input.CustomerId); err != nil {
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

func receiveDocumentItems(tenantId string, input []NewDocumentItem) []SalesInvoiceItem {
	items := make([]SalesInvoiceItem, 0, len(input))
	for _, i := range input {
		items = append(items, SalesInvoiceItem{
			TenantId:       tenantId,
			ProductId:      i.ProductId,
			Quantity:       i.Quantity,
			UnitPrice:      i.UnitPrice,
			DiscountAmount: i.DiscountAmount,
		})
	}
	return items
}

func CreateSalesInvoice(ctx context.Context, tc tenant.Context, input *NewSalesInvoice) (*SalesInvoice, error) {
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
	invoice := SalesInvoice{
		TenantId:         tenantId,
		CustomerId:       input.CustomerId,
		InvoiceNumber:    input.InvoiceNumber,
		InvoiceDate:      input.InvoiceDate,
		Notes:            input.Notes,
		PaymentType:      paymentType,
		PaymentAccountId: input.PaymentAccountId,
		PaymentAmount:    input.PaymentAmount,
		Items:            receiveDocumentItems(tenantId, input.Items),
	}

	if err := db.WithContext(ctx).Create(&invoice).Error; err != nil {
		return nil, err
	}
	return &invoice, nil
}

// UpdateSalesInvoice replaces the draft's header and line items. Posted
// invoices are logically immutable.
func UpdateSalesInvoice(ctx context.Context, tc tenant.Context, id int, input *NewSalesInvoice) (*SalesInvoice, error) {
	tenantId, err := tc.TenantId()
	if err != nil {
		return nil, err
	}
	db := config.GetDB()
	if err := input.validate(ctx, db, tenantId); err != nil {
		return nil, err
	}

	invoice, err := utils.FetchModel[SalesInvoice](ctx, tenantId, id)
	if err != nil {
		return nil, err
	}
	if invoice.Posted {
		return nil, fmt.Errorf("%w: posted sales invoice cannot be modified", utils.ErrorInvalidDocumentState)
	}

	items := receiveDocumentItems(tenantId, input.Items)
	for i := range items {
		items[i].SalesInvoiceId = id
	}

	tx := db.Begin()
	err = tx.WithContext(ctx).Model(invoice).Updates(map[string]interface{}{
		"CustomerId":       input.CustomerId,
		"InvoiceNumber":    input.InvoiceNumber,
		"InvoiceDate":      input.InvoiceDate,
		"Notes":            input.Notes,
		"PaymentType":      input.PaymentType,
		"PaymentAccountId": input.PaymentAccountId,
		"PaymentAmount":    input.PaymentAmount,
	}).Error
	if err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.WithContext(ctx).
		Where("sales_invoice_id = ?", id).
		Delete(&SalesInvoiceItem{}).Error; err != nil {
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

func GetSalesInvoice(ctx context.Context, tc tenant.Context, id int) (*SalesInvoice, error) {
	tenantId, err := tc.TenantId()
	if err != nil {
		return nil, err
	}
	return utils.FetchModel[SalesInvoice](ctx, tenantId, id, "Items")
}
