package models_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/app-roznamcha/roznamcha/config"
	"github.com/app-roznamcha/roznamcha/models"
	"github.com/app-roznamcha/roznamcha/tenant"
	"github.com/app-roznamcha/roznamcha/testenv"
	"github.com/app-roznamcha/roznamcha/utils"
	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

var entryDate = time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

func mustAccount(t *testing.T, ctx context.Context, tc tenant.Context, code string, classification models.AccountClassification) *models.Account {
	t.Helper()
	account, err := models.CreateAccount(ctx, tc, &models.NewAccount{
		Code:           code,
		Name:           "Account " + code,
		Classification: classification,
	})
	if err != nil {
		t.Fatalf("CreateAccount %s: %v", code, err)
	}
	return account
}

func TestAppendJournalIfAbsent(t *testing.T) {
	tc := testenv.Setup(t)
	ctx := context.Background()
	tenantId, _ := tc.TenantId()

	debit := mustAccount(t, ctx, tc, "9100", models.AccountAsset)
	credit := mustAccount(t, ctx, tc, "9200", models.AccountLiability)
	db := config.GetDB()

	entry := models.JournalEntry{
		TenantId:        tenantId,
		EntryDate:       entryDate,
		Description:     "first",
		DebitAccountId:  debit.ID,
		CreditAccountId: credit.ID,
		Amount:          dec("150"),
		SourceKind:      models.SourceDailyExpense,
		SourceId:        77,
	}
	created, err := models.AppendJournalIfAbsent(ctx, db, &entry)
	if err != nil {
		t.Fatalf("AppendJournalIfAbsent: %v", err)
	}
	if !created {
		t.Fatal("first append should create")
	}

	dup := entry
	dup.ID = 0
	dup.Description = "retry"
	created, err = models.AppendJournalIfAbsent(ctx, db, &dup)
	if err != nil {
		t.Fatalf("AppendJournalIfAbsent retry: %v", err)
	}
	if created {
		t.Fatal("second append with same source must be absorbed")
	}

	var count int64
	if err := db.Model(&models.JournalEntry{}).
		Where("tenant_id = ? AND source_kind = ? AND source_id = ?", tenantId, models.SourceDailyExpense, 77).
		Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("entries = %d, want 1", count)
	}
}

func TestAppendJournalRejectsBadInput(t *testing.T) {
	tc := testenv.Setup(t)
	ctx := context.Background()
	tenantId, _ := tc.TenantId()

	debit := mustAccount(t, ctx, tc, "9100", models.AccountAsset)
	credit := mustAccount(t, ctx, tc, "9200", models.AccountLiability)
	db := config.GetDB()

	_, err := models.AppendJournalIfAbsent(ctx, db, &models.JournalEntry{
		EntryDate:       entryDate,
		DebitAccountId:  debit.ID,
		CreditAccountId: credit.ID,
		Amount:          dec("10"),
		SourceKind:      models.SourcePayment,
		SourceId:        1,
	})
	if !errors.Is(err, tenant.ErrOwnerNotResolved) {
		t.Fatalf("missing tenant: err = %v, want ErrOwnerNotResolved", err)
	}

	_, err = models.AppendJournalIfAbsent(ctx, db, &models.JournalEntry{
		TenantId:        tenantId,
		EntryDate:       entryDate,
		DebitAccountId:  debit.ID,
		CreditAccountId: credit.ID,
		Amount:          dec("-5"),
		SourceKind:      models.SourcePayment,
		SourceId:        1,
	})
	if err == nil {
		t.Fatal("negative amount must be rejected")
	}
}

func TestAppendJournalCrossTenantLeg(t *testing.T) {
	tc := testenv.Setup(t)
	ctx := context.Background()
	tenantId, _ := tc.TenantId()

	debit := mustAccount(t, ctx, tc, "9100", models.AccountAsset)

	other := testenv.NewTenant()
	foreign := mustAccount(t, ctx, other, "9300", models.AccountLiability)

	db := config.GetDB()
	_, err := models.AppendJournalIfAbsent(ctx, db, &models.JournalEntry{
		TenantId:        tenantId,
		EntryDate:       entryDate,
		DebitAccountId:  debit.ID,
		CreditAccountId: foreign.ID,
		Amount:          dec("10"),
		SourceKind:      models.SourcePayment,
		SourceId:        5,
	})
	if !errors.Is(err, utils.ErrorCrossTenantReference) {
		t.Fatalf("err = %v, want ErrorCrossTenantReference", err)
	}
}

func TestJournalEntryImmutable(t *testing.T) {
	tc := testenv.Setup(t)
	ctx := context.Background()
	tenantId, _ := tc.TenantId()

	debit := mustAccount(t, ctx, tc, "9100", models.AccountAsset)
	credit := mustAccount(t, ctx, tc, "9200", models.AccountLiability)
	db := config.GetDB()

	entry := models.JournalEntry{
		TenantId:        tenantId,
		EntryDate:       entryDate,
		DebitAccountId:  debit.ID,
		CreditAccountId: credit.ID,
		Amount:          dec("30"),
		SourceKind:      models.SourceCashBankTransfer,
		SourceId:        9,
	}
	if _, err := models.AppendJournalIfAbsent(ctx, db, &entry); err != nil {
		t.Fatalf("AppendJournalIfAbsent: %v", err)
	}

	if err := db.Model(&entry).Update("amount", dec("999")).Error; err == nil {
		t.Fatal("update on a journal entry must fail")
	}
	if err := db.Delete(&entry).Error; err == nil {
		t.Fatal("delete on a journal entry must fail")
	}
}
