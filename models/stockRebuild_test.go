package models_test

import (
	"context"
	"testing"
	"time"

	"github.com/app-roznamcha/roznamcha/config"
	"github.com/app-roznamcha/roznamcha/models"
	"github.com/app-roznamcha/roznamcha/posting"
	"github.com/app-roznamcha/roznamcha/testenv"
)

func TestStockRebuildRepairsDrift(t *testing.T) {
	tc := testenv.Setup(t)
	ctx := context.Background()
	tenantId, _ := tc.TenantId()
	date := time.Date(2025, 4, 2, 0, 0, 0, 0, time.UTC)

	supplier, err := models.CreateParty(ctx, tc, &models.NewParty{
		Name: "AgriChem Supplies", PartyType: models.PartySupplier,
	})
	if err != nil {
		t.Fatalf("CreateParty: %v", err)
	}
	product, err := models.CreateProduct(ctx, tc, &models.NewProduct{Code: "UREA-50", Name: "Urea 50kg"})
	if err != nil {
		t.Fatalf("CreateProduct: %v", err)
	}

	invoice, err := models.CreatePurchaseInvoice(ctx, tc, &models.NewPurchaseInvoice{
		SupplierId:  supplier.ID,
		InvoiceDate: date,
		Items: []models.NewDocumentItem{
			{ProductId: product.ID, Quantity: dec("12"), UnitPrice: dec("90")},
		},
	})
	if err != nil {
		t.Fatalf("CreatePurchaseInvoice: %v", err)
	}
	if err := posting.PostPurchaseInvoice(ctx, tc, invoice.ID); err != nil {
		t.Fatalf("PostPurchaseInvoice: %v", err)
	}

	drifts, err := models.VerifyStockLevels(ctx, tc)
	if err != nil {
		t.Fatalf("VerifyStockLevels: %v", err)
	}
	if len(drifts) != 0 {
		t.Fatalf("fresh posting should not drift, got %v", drifts)
	}

	// corrupt the counter behind the tracker's back
	err = config.GetDB().Model(&models.Product{}).
		Where("tenant_id = ? AND id = ?", tenantId, product.ID).
		UpdateColumn("current_stock", dec("99")).Error
	if err != nil {
		t.Fatalf("corrupt counter: %v", err)
	}

	drifts, err = models.VerifyStockLevels(ctx, tc)
	if err != nil {
		t.Fatalf("VerifyStockLevels: %v", err)
	}
	if len(drifts) != 1 {
		t.Fatalf("drifts = %d, want 1", len(drifts))
	}
	if !drifts[0].Computed.Equal(dec("12")) {
		t.Fatalf("computed = %s, want 12", drifts[0].Computed)
	}

	repaired, err := models.RebuildStockLevels(ctx, tc)
	if err != nil {
		t.Fatalf("RebuildStockLevels: %v", err)
	}
	if len(repaired) != 1 {
		t.Fatalf("repaired = %d, want 1", len(repaired))
	}

	fresh, err := models.GetProduct(ctx, tc, product.ID)
	if err != nil {
		t.Fatalf("GetProduct: %v", err)
	}
	if !fresh.CurrentStock.Equal(dec("12")) {
		t.Fatalf("stock after rebuild = %s, want 12", fresh.CurrentStock)
	}
}

func TestPurgeTenantRemovesEverything(t *testing.T) {
	tc := testenv.Setup(t)
	ctx := context.Background()
	tenantId, _ := tc.TenantId()

	customer, err := models.CreateParty(ctx, tc, &models.NewParty{
		Name:                  "Karim Traders",
		PartyType:             models.PartyCustomer,
		OpeningBalance:        dec("100"),
		OpeningBalanceIsDebit: true,
	})
	if err != nil {
		t.Fatalf("CreateParty: %v", err)
	}
	if _, err := models.CreateProduct(ctx, tc, &models.NewProduct{Code: "DAP-50", Name: "DAP 50kg"}); err != nil {
		t.Fatalf("CreateProduct: %v", err)
	}

	// a second tenant must survive the purge untouched
	other := testenv.NewTenant()
	if _, err := models.CreateParty(ctx, other, &models.NewParty{
		Name: "Karim Traders", PartyType: models.PartyCustomer,
	}); err != nil {
		t.Fatalf("CreateParty other: %v", err)
	}

	if err := models.PurgeTenant(ctx, tc); err != nil {
		t.Fatalf("PurgeTenant: %v", err)
	}

	db := config.GetDB()
	for _, table := range []string{"parties", "products", "accounts", "journal_entries"} {
		var count int64
		if err := db.Table(table).Where("tenant_id = ?", tenantId).Count(&count).Error; err != nil {
			t.Fatalf("count %s: %v", table, err)
		}
		if count != 0 {
			t.Fatalf("%s still has %d rows after purge", table, count)
		}
	}

	if _, err := models.GetParty(ctx, tc, customer.ID); err == nil {
		t.Fatal("purged party still readable")
	}
	otherParties, err := models.GetParties(ctx, other, nil)
	if err != nil {
		t.Fatalf("GetParties other: %v", err)
	}
	if len(otherParties) != 1 {
		t.Fatalf("other tenant lost data: %d parties", len(otherParties))
	}
}
