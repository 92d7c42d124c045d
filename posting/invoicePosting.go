package posting

import (
	"context"
	"fmt"

	"github.com/app-roznamcha/roznamcha/config"
	"github.com/app-roznamcha/roznamcha/models"
	"github.com/app-roznamcha/roznamcha/tenant"
	"github.com/app-roznamcha/roznamcha/utils"
)

// PostSalesInvoice books the invoice total against the customer's
// control account and reduces stock for each line. With a FULL or
// PARTIAL payment type it additionally posts one auxiliary payment IN.
func PostSalesInvoice(ctx context.Context, tc tenant.Context, id int) error {
	tenantId, err := tc.TenantId()
	if err != nil {
		return err
	}
	tx := config.GetDB().Begin()
	if tx.Error != nil {
		return tx.Error
	}

	invoice, err := utils.FetchModelForUpdate[models.SalesInvoice](ctx, tx, tenantId, id, "Items")
	if err != nil {
		tx.Rollback()
		return err
	}
	if invoice.Posted {
		tx.Rollback()
		return nil
	}
	total := invoice.CalculateTotal()
	if !total.IsPositive() {
		tx.Rollback()
		return nil
	}

	controlId, err := systemAccount(ctx, tx, tenantId, models.AccountCodeCustomerControl)
	if err != nil {
		tx.Rollback()
		return err
	}
	inventoryId, err := systemAccount(ctx, tx, tenantId, models.AccountCodeInventory)
	if err != nil {
		tx.Rollback()
		return err
	}

	created, err := models.AppendJournalIfAbsent(ctx, tx, &models.JournalEntry{
		TenantId:        tenantId,
		EntryDate:       invoice.InvoiceDate,
		Description:     fmt.Sprintf("Sales invoice #%d", invoice.ID),
		DebitAccountId:  controlId,
		CreditAccountId: inventoryId,
		Amount:          total,
		SourceKind:      models.SourceSalesInvoice,
		SourceId:        invoice.ID,
	})
	if err != nil {
		tx.Rollback()
		return err
	}
	if created {
		for _, item := range invoice.Items {
			if err := models.AdjustStock(ctx, tx, tenantId, item.ProductId, item.Quantity.Neg()); err != nil {
				tx.Rollback()
				return err
			}
		}
	}
	if err := markPosted(ctx, tx, &models.SalesInvoice{}, tenantId, invoice.ID); err != nil {
		tx.Rollback()
		return err
	}

	if invoice.PaymentType != models.PaymentTypeCredit && invoice.PaymentAmount.IsPositive() {
		err = ensureInvoicePayment(ctx, tx, tenantId, invoice.CustomerId, models.PaymentIn,
			invoice.PaymentAccountId, invoice.PaymentAmount, invoice.InvoiceDate,
			models.SourceSalesInvoice, invoice.ID)
		if err != nil {
			tx.Rollback()
			return err
		}
	}
	return commit(tx, "PostSalesInvoice", id)
}

// PostPurchaseInvoice books the invoice total (lines plus freight and
// other charges) into inventory against the supplier's control account
// and increases stock for each line.
func PostPurchaseInvoice(ctx context.Context, tc tenant.Context, id int) error {
	tenantId, err := tc.TenantId()
	if err != nil {
		return err
	}
	tx := config.GetDB().Begin()
	if tx.Error != nil {
		return tx.Error
	}

	invoice, err := utils.FetchModelForUpdate[models.PurchaseInvoice](ctx, tx, tenantId, id, "Items")
	if err != nil {
		tx.Rollback()
		return err
	}
	if invoice.Posted {
		tx.Rollback()
		return nil
	}
	total := invoice.CalculateTotal()
	if !total.IsPositive() {
		tx.Rollback()
		return nil
	}

	inventoryId, err := systemAccount(ctx, tx, tenantId, models.AccountCodeInventory)
	if err != nil {
		tx.Rollback()
		return err
	}
	controlId, err := systemAccount(ctx, tx, tenantId, models.AccountCodeSupplierControl)
	if err != nil {
		tx.Rollback()
		return err
	}

	created, err := models.AppendJournalIfAbsent(ctx, tx, &models.JournalEntry{
		TenantId:        tenantId,
		EntryDate:       invoice.InvoiceDate,
		Description:     fmt.Sprintf("Purchase invoice #%d", invoice.ID),
		DebitAccountId:  inventoryId,
		CreditAccountId: controlId,
		Amount:          total,
		SourceKind:      models.SourcePurchaseInvoice,
		SourceId:        invoice.ID,
	})
	if err != nil {
		tx.Rollback()
		return err
	}
	if created {
		for _, item := range invoice.Items {
			if err := models.AdjustStock(ctx, tx, tenantId, item.ProductId, item.Quantity); err != nil {
				tx.Rollback()
				return err
			}
		}
	}
	if err := markPosted(ctx, tx, &models.PurchaseInvoice{}, tenantId, invoice.ID); err != nil {
		tx.Rollback()
		return err
	}

	if invoice.PaymentType != models.PaymentTypeCredit && invoice.PaymentAmount.IsPositive() {
		err = ensureInvoicePayment(ctx, tx, tenantId, invoice.SupplierId, models.PaymentOut,
			invoice.PaymentAccountId, invoice.PaymentAmount, invoice.InvoiceDate,
			models.SourcePurchaseInvoice, invoice.ID)
		if err != nil {
			tx.Rollback()
			return err
		}
	}
	return commit(tx, "PostPurchaseInvoice", id)
}
