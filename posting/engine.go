// Package posting turns draft documents into journal entries and stock
// movements. Every Post function is idempotent: posting an already
// posted document is a silent no-op, and a zero or negative document
// total is tolerated the same way rather than raised.
//
// Each posting runs in one transaction holding an exclusive row lock on
// the document. The lock plus the journal's (tenant, source_kind,
// source_id) unique index together make concurrent double-posts
// harmless.
package posting

import (
	"context"
	"fmt"

	"github.com/app-roznamcha/roznamcha/config"
	"github.com/app-roznamcha/roznamcha/models"
	"github.com/app-roznamcha/roznamcha/utils"
	"gorm.io/gorm"
)

// systemAccount resolves a well-known account id for the tenant,
// creating the account on first use.
func systemAccount(ctx context.Context, tx *gorm.DB, tenantId string, code string) (int, error) {
	account, err := models.GetOrCreateSystemAccount(ctx, tx, tenantId, code)
	if err != nil {
		return 0, err
	}
	return account.ID, nil
}

func controlAccountCode(partyType models.PartyType) (string, error) {
	switch partyType {
	case models.PartyCustomer:
		return models.AccountCodeCustomerControl, nil
	case models.PartySupplier:
		return models.AccountCodeSupplierControl, nil
	}
	return "", fmt.Errorf("%w: party has unknown type %q", utils.ErrorInvalidDocumentState, partyType)
}

// fetchTenantRow loads a row inside the posting transaction, scoped to
// the tenant but without a lock; used for references of the locked
// document (party, account), which posting never mutates.
func fetchTenantRow[T any](ctx context.Context, tx *gorm.DB, tenantId string, id int) (*T, error) {
	var row T
	err := tx.WithContext(ctx).
		Where("tenant_id = ?", tenantId).
		First(&row, id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, utils.ErrorRecordNotFound
		}
		return nil, err
	}
	return &row, nil
}

func markPosted(ctx context.Context, tx *gorm.DB, model interface{}, tenantId string, id int) error {
	return tx.WithContext(ctx).Model(model).
		Where("tenant_id = ? AND id = ?", tenantId, id).
		UpdateColumn("posted", true).Error
}

func commit(tx *gorm.DB, funcName string, documentId int) error {
	if err := tx.Commit().Error; err != nil {
		config.LogError(config.GetLogger(), "posting", funcName, "commit", documentId, err)
		return err
	}
	return nil
}
