package models

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/app-roznamcha/roznamcha/config"
	"github.com/app-roznamcha/roznamcha/tenant"
	"github.com/app-roznamcha/roznamcha/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// JournalEntry is one balanced double-entry row: Amount is debited to
// DebitAccountId and credited to CreditAccountId. Rows are append-only and
// the single source of truth for every balance.
//
// Composite indexes:
// - uniq_journal_source: (tenant_id, source_kind, source_id): at most one
//   entry per originating document, enforced by storage.
// - idx_je_tenant_date:  (tenant_id, entry_date, id): replay order.
type JournalEntry struct {
	ID              int             `gorm:"primary_key;index:idx_je_tenant_date,priority:3" json:"id"`
	TenantId        string          `gorm:"size:64;not null;index;index:uniq_journal_source,unique,priority:1;index:idx_je_tenant_date,priority:1" json:"tenant_id"`
	EntryDate       time.Time       `gorm:"not null;index:idx_je_tenant_date,priority:2" json:"entry_date"`
	Description     string          `gorm:"size:255" json:"description"`
	DebitAccountId  int             `gorm:"index;not null" json:"debit_account_id"`
	CreditAccountId int             `gorm:"index;not null" json:"credit_account_id"`
	Amount          decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"amount"`
	SourceKind      SourceKind      `gorm:"size:30;not null;index:uniq_journal_source,unique,priority:2" json:"source_kind"`
	SourceId        int             `gorm:"not null;index:uniq_journal_source,unique,priority:3" json:"source_id"`
	CreatedAt       time.Time       `gorm:"autoCreateTime" json:"created_at"`
}

// Ledger immutability guardrails: journal rows are never edited or deleted
// by normal operation. Bulk tenant purge bypasses these with SkipHooks.

func (j *JournalEntry) BeforeUpdate(tx *gorm.DB) error {
	return errors.New("immutable ledger: journal entries cannot be updated")
}

func (j *JournalEntry) BeforeDelete(tx *gorm.DB) error {
	return errors.New("immutable ledger: journal entries cannot be deleted")
}

// AppendJournalIfAbsent writes the entry unless one already exists for its
// (tenant, source_kind, source_id). The unique index is the idempotency
// barrier, so concurrent retries cannot produce a second row. Returns
// whether a row was created.
//
// Must run inside the posting transaction so the entry and its stock
// mutations commit together or not at all.
func AppendJournalIfAbsent(ctx context.Context, tx *gorm.DB, entry *JournalEntry) (bool, error) {
	if entry.TenantId == "" {
		return false, tenant.ErrOwnerNotResolved
	}
	if !entry.Amount.IsPositive() {
		return false, fmt.Errorf("journal amount must be greater than zero, got %s", entry.Amount)
	}
	if entry.SourceKind == "" || entry.SourceId <= 0 {
		return false, fmt.Errorf("journal entry requires a source reference")
	}

	// both legs must belong to the entry's tenant
	if err := utils.ValidateTenantOwnership[Account](ctx, tx, entry.TenantId, "debit account", entry.DebitAccountId); err != nil {
		return false, err
	}
	if err := utils.ValidateTenantOwnership[Account](ctx, tx, entry.TenantId, "credit account", entry.CreditAccountId); err != nil {
		return false, err
	}

	result := tx.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(entry)
	if result.Error != nil {
		if utils.IsDuplicateKeyErr(result.Error) {
			return false, nil
		}
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// GetJournalEntryBySource fetches the single entry created for a document,
// if any.
func GetJournalEntryBySource(ctx context.Context, tc tenant.Context, kind SourceKind, sourceId int) (*JournalEntry, error) {
	tenantId, err := tc.TenantId()
	if err != nil {
		return nil, err
	}
	db := config.GetDB()
	var entry JournalEntry
	err = db.WithContext(ctx).
		Where("tenant_id = ? AND source_kind = ? AND source_id = ?", tenantId, kind, sourceId).
		First(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.ErrorRecordNotFound
		}
		return nil, err
	}
	return &entry, nil
}

// JournalEntriesForAccount returns every entry touching the account in
// (entry_date, id) order. nil bounds mean unbounded; to is inclusive and
// from compares strictly-greater-or-equal.
func JournalEntriesForAccount(ctx context.Context, tenantId string, accountId int, from *time.Time, to *time.Time) ([]*JournalEntry, error) {
	db := config.GetDB()
	dbCtx := db.WithContext(ctx).
		Where("tenant_id = ?", tenantId).
		Where("debit_account_id = ? OR credit_account_id = ?", accountId, accountId)
	if from != nil {
		dbCtx = dbCtx.Where("entry_date >= ?", *from)
	}
	if to != nil {
		dbCtx = dbCtx.Where("entry_date <= ?", *to)
	}
	var entries []*JournalEntry
	if err := dbCtx.Order("entry_date, id").Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}
