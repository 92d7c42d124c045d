package models_test

import (
	"context"
	"testing"

	"github.com/app-roznamcha/roznamcha/config"
	"github.com/app-roznamcha/roznamcha/models"
	"github.com/app-roznamcha/roznamcha/testenv"
)

func TestSeedDefaultAccountsIdempotent(t *testing.T) {
	tc := testenv.Setup(t)
	ctx := context.Background()
	tenantId, _ := tc.TenantId()

	for i := 0; i < 2; i++ {
		if err := models.SeedDefaultAccounts(ctx, tc); err != nil {
			t.Fatalf("SeedDefaultAccounts run %d: %v", i, err)
		}
	}

	accounts, err := models.GetSystemAccounts(tenantId)
	if err != nil {
		t.Fatalf("GetSystemAccounts: %v", err)
	}
	for _, code := range []string{
		models.AccountCodeInventory, models.AccountCodeCustomerControl,
		models.AccountCodeSupplierControl, models.AccountCodeOpeningBalances,
		models.AccountCodeInventoryWriteOff, models.AccountCodeCash, models.AccountCodeBank,
	} {
		if accounts[code] == 0 {
			t.Fatalf("system account %s not seeded", code)
		}
	}

	var count int64
	if err := config.GetDB().Model(&models.Account{}).
		Where("tenant_id = ?", tenantId).Count(&count).Error; err != nil {
		t.Fatalf("count accounts: %v", err)
	}
	if int(count) != 14 {
		t.Fatalf("accounts = %d, want the 14 defaults", count)
	}
}

func TestSeedRepairsDrift(t *testing.T) {
	tc := testenv.Setup(t)
	ctx := context.Background()
	tenantId, _ := tc.TenantId()

	if err := models.SeedDefaultAccounts(ctx, tc); err != nil {
		t.Fatalf("SeedDefaultAccounts: %v", err)
	}

	db := config.GetDB()
	err := db.Model(&models.Account{}).
		Where("tenant_id = ? AND code = ?", tenantId, models.AccountCodeCash).
		Updates(map[string]interface{}{"Name": "Wrong", "IsCashOrBank": false}).Error
	if err != nil {
		t.Fatalf("corrupt cash account: %v", err)
	}

	if err := models.SeedDefaultAccounts(ctx, tc); err != nil {
		t.Fatalf("SeedDefaultAccounts repair: %v", err)
	}

	var cash models.Account
	err = db.Where("tenant_id = ? AND code = ?", tenantId, models.AccountCodeCash).
		First(&cash).Error
	if err != nil {
		t.Fatalf("fetch cash account: %v", err)
	}
	if cash.Name != "Cash" {
		t.Fatalf("name = %q, want Cash", cash.Name)
	}
	if cash.IsCashOrBank == nil || !*cash.IsCashOrBank {
		t.Fatal("is_cash_or_bank flag not repaired")
	}
}

func TestGetOrCreateSystemAccountLazy(t *testing.T) {
	tc := testenv.Setup(t)
	ctx := context.Background()
	tenantId, _ := tc.TenantId()
	db := config.GetDB()

	// no seeding: first use creates, second reuses
	first, err := models.GetOrCreateSystemAccount(ctx, db, tenantId, models.AccountCodeInventory)
	if err != nil {
		t.Fatalf("GetOrCreateSystemAccount: %v", err)
	}
	second, err := models.GetOrCreateSystemAccount(ctx, db, tenantId, models.AccountCodeInventory)
	if err != nil {
		t.Fatalf("GetOrCreateSystemAccount again: %v", err)
	}
	if first.ID != second.ID {
		t.Fatalf("ids differ: %d vs %d", first.ID, second.ID)
	}

	if _, err := models.GetOrCreateSystemAccount(ctx, db, tenantId, "0000"); err == nil {
		t.Fatal("unknown code must be rejected")
	}
}

func TestAccountsScopedByTenant(t *testing.T) {
	tc := testenv.Setup(t)
	ctx := context.Background()

	mustAccount(t, ctx, tc, "9100", models.AccountAsset)

	other := testenv.NewTenant()
	accounts, err := models.GetAccounts(ctx, other, nil, nil)
	if err != nil {
		t.Fatalf("GetAccounts: %v", err)
	}
	if len(accounts) != 0 {
		t.Fatalf("tenant B sees %d of tenant A's accounts", len(accounts))
	}
}
