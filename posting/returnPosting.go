package posting

import (
	"context"
	"fmt"

	"github.com/app-roznamcha/roznamcha/config"
	"github.com/app-roznamcha/roznamcha/models"
	"github.com/app-roznamcha/roznamcha/tenant"
	"github.com/app-roznamcha/roznamcha/utils"
)

// PostSalesReturn reverses a sale: inventory is debited back and the
// customer's control account credited, with stock increased per line.
func PostSalesReturn(ctx context.Context, tc tenant.Context, id int) error {
	tenantId, err := tc.TenantId()
	if err != nil {
		return err
	}
	tx := config.GetDB().Begin()
	if tx.Error != nil {
		return tx.Error
	}

	ret, err := utils.FetchModelForUpdate[models.SalesReturn](ctx, tx, tenantId, id, "Items")
	if err != nil {
		tx.Rollback()
		return err
	}
	if ret.Posted {
		tx.Rollback()
		return nil
	}
	total := ret.CalculateTotal()
	if !total.IsPositive() {
		tx.Rollback()
		return nil
	}

	inventoryId, err := systemAccount(ctx, tx, tenantId, models.AccountCodeInventory)
	if err != nil {
		tx.Rollback()
		return err
	}
	controlId, err := systemAccount(ctx, tx, tenantId, models.AccountCodeCustomerControl)
	if err != nil {
		tx.Rollback()
		return err
	}

	created, err := models.AppendJournalIfAbsent(ctx, tx, &models.JournalEntry{
		TenantId:        tenantId,
		EntryDate:       ret.ReturnDate,
		Description:     fmt.Sprintf("Sales return #%d", ret.ID),
		DebitAccountId:  inventoryId,
		CreditAccountId: controlId,
		Amount:          total,
		SourceKind:      models.SourceSalesReturn,
		SourceId:        ret.ID,
	})
	if err != nil {
		tx.Rollback()
		return err
	}
	if created {
		for _, item := range ret.Items {
			if err := models.AdjustStock(ctx, tx, tenantId, item.ProductId, item.Quantity); err != nil {
				tx.Rollback()
				return err
			}
		}
	}
	if err := markPosted(ctx, tx, &models.SalesReturn{}, tenantId, ret.ID); err != nil {
		tx.Rollback()
		return err
	}
	return commit(tx, "PostSalesReturn", id)
}

// PostPurchaseReturn reverses a purchase: the supplier's control
// account is debited and inventory credited, with stock decreased per
// line.
func PostPurchaseReturn(ctx context.Context, tc tenant.Context, id int) error {
	tenantId, err := tc.TenantId()
	if err != nil {
		return err
	}
	tx := config.GetDB().Begin()
	if tx.Error != nil {
		return tx.Error
	}

	ret, err := utils.FetchModelForUpdate[models.PurchaseReturn](ctx, tx, tenantId, id, "Items")
	if err != nil {
		tx.Rollback()
		return err
	}
	if ret.Posted {
		tx.Rollback()
		return nil
	}
	total := ret.CalculateTotal()
	if !total.IsPositive() {
		tx.Rollback()
		return nil
	}

	controlId, err := systemAccount(ctx, tx, tenantId, models.AccountCodeSupplierControl)
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
		EntryDate:       ret.ReturnDate,
		Description:     fmt.Sprintf("Purchase return #%d", ret.ID),
		DebitAccountId:  controlId,
		CreditAccountId: inventoryId,
		Amount:          total,
		SourceKind:      models.SourcePurchaseReturn,
		SourceId:        ret.ID,
	})
	if err != nil {
		tx.Rollback()
		return err
	}
	if created {
		for _, item := range ret.Items {
			if err := models.AdjustStock(ctx, tx, tenantId, item.ProductId, item.Quantity.Neg()); err != nil {
				tx.Rollback()
				return err
			}
		}
	}
	if err := markPosted(ctx, tx, &models.PurchaseReturn{}, tenantId, ret.ID); err != nil {
		tx.Rollback()
		return err
	}
	return commit(tx, "PostPurchaseReturn", id)
}
