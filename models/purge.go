package models

import (
	"context"
	"fmt"

	"github.com/app-roznamcha/roznamcha/config"
	"github.com/app-roznamcha/roznamcha/tenant"
	"gorm.io/gorm"
)

// PurgeTenant hard-deletes every record belonging to the tenant.
// Destructive and irreversible; used by maintenance tooling only, hence
// the explicit tenant context rather than a request-scoped one.
//
// The journal is deleted with hooks skipped: the immutability guards
// exist to protect a live ledger, not to block a full tenant wipeout.
func PurgeTenant(ctx context.Context, tc tenant.Context) error {
	tenantId, err := tc.TenantId()
	if err != nil {
		return err
	}
	db := config.GetDB()

	tx := db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return tx.Error
	}

	// children before parents
	ordered := []interface{}{
		&SalesInvoiceItem{}, &PurchaseInvoiceItem{},
		&SalesReturnItem{}, &PurchaseReturnItem{},
		&SalesInvoice{}, &PurchaseInvoice{},
		&SalesReturn{}, &PurchaseReturn{},
		&Payment{}, &DailyExpense{}, &CashBankTransfer{}, &StockAdjustment{},
	}
	for _, model := range ordered {
		if err := tx.Where("tenant_id = ?", tenantId).Delete(model).Error; err != nil {
			tx.Rollback()
			return fmt.Errorf("purge tenant %s: %w", tenantId, err)
		}
	}
	if err := tx.Session(&gorm.Session{SkipHooks: true}).
		Where("tenant_id = ?", tenantId).
		Delete(&JournalEntry{}).Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("purge tenant %s journal: %w", tenantId, err)
	}
	for _, model := range []interface{}{&Party{}, &Product{}, &Account{}} {
		if err := tx.Where("tenant_id = ?", tenantId).Delete(model).Error; err != nil {
			tx.Rollback()
			return fmt.Errorf("purge tenant %s: %w", tenantId, err)
		}
	}

	if err := tx.Commit().Error; err != nil {
		return err
	}

	config.DeleteRedisKey("SystemAccounts:" + tenantId)
	return nil
}
