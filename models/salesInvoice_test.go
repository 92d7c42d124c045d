package models_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/app-roznamcha/roznamcha/models"
	"github.com/app-roznamcha/roznamcha/posting"
	"github.com/app-roznamcha/roznamcha/testenv"
	"github.com/app-roznamcha/roznamcha/utils"
)

func TestUpdateSalesInvoiceDraft(t *testing.T) {
	tc := testenv.Setup(t)
	ctx := context.Background()
	date := time.Date(2025, 5, 20, 0, 0, 0, 0, time.UTC)

	customer, err := models.CreateParty(ctx, tc, &models.NewParty{
		Name: "Karim Traders", PartyType: models.PartyCustomer,
	})
	if err != nil {
		t.Fatalf("CreateParty: %v", err)
	}
	product, err := models.CreateProduct(ctx, tc, &models.NewProduct{Code: "UREA-50", Name: "Urea 50kg"})
	if err != nil {
		t.Fatalf("CreateProduct: %v", err)
	}

	invoice, err := models.CreateSalesInvoice(ctx, tc, &models.NewSalesInvoice{
		CustomerId:  customer.ID,
		InvoiceDate: date,
		Items: []models.NewDocumentItem{
			{ProductId: product.ID, Quantity: dec("2"), UnitPrice: dec("100")},
		},
	})
	if err != nil {
		t.Fatalf("CreateSalesInvoice: %v", err)
	}
	if !invoice.CalculateTotal().Equal(dec("200")) {
		t.Fatalf("total = %s, want 200", invoice.CalculateTotal())
	}

	updated, err := models.UpdateSalesInvoice(ctx, tc, invoice.ID, &models.NewSalesInvoice{
		CustomerId:  customer.ID,
		InvoiceDate: date,
		Items: []models.NewDocumentItem{
			{ProductId: product.ID, Quantity: dec("3"), UnitPrice: dec("110"), DiscountAmount: dec("30")},
		},
	})
	if err != nil {
		t.Fatalf("UpdateSalesInvoice: %v", err)
	}
	if !updated.CalculateTotal().Equal(dec("300")) {
		t.Fatalf("total after edit = %s, want 300", updated.CalculateTotal())
	}
	if len(updated.Items) != 1 {
		t.Fatalf("items = %d, want 1 (replaced, not appended)", len(updated.Items))
	}
}

func TestUpdateSalesInvoiceRejectedOncePosted(t *testing.T) {
	tc := testenv.Setup(t)
	ctx := context.Background()
	date := time.Date(2025, 5, 20, 0, 0, 0, 0, time.UTC)

	customer, err := models.CreateParty(ctx, tc, &models.NewParty{
		Name: "Karim Traders", PartyType: models.PartyCustomer,
	})
	if err != nil {
		t.Fatalf("CreateParty: %v", err)
	}
	product, err := models.CreateProduct(ctx, tc, &models.NewProduct{Code: "DAP-50", Name: "DAP 50kg"})
	if err != nil {
		t.Fatalf("CreateProduct: %v", err)
	}

	invoice, err := models.CreateSalesInvoice(ctx, tc, &models.NewSalesInvoice{
		CustomerId:  customer.ID,
		InvoiceDate: date,
		Items: []models.NewDocumentItem{
			{ProductId: product.ID, Quantity: dec("1"), UnitPrice: dec("100")},
		},
	})
	if err != nil {
		t.Fatalf("CreateSalesInvoice: %v", err)
	}
	if err := posting.PostSalesInvoice(ctx, tc, invoice.ID); err != nil {
		t.Fatalf("PostSalesInvoice: %v", err)
	}

	_, err = models.UpdateSalesInvoice(ctx, tc, invoice.ID, &models.NewSalesInvoice{
		CustomerId:  customer.ID,
		InvoiceDate: date,
		Items: []models.NewDocumentItem{
			{ProductId: product.ID, Quantity: dec("9"), UnitPrice: dec("100")},
		},
	})
	if !errors.Is(err, utils.ErrorInvalidDocumentState) {
		t.Fatalf("editing a posted invoice: err = %v, want ErrorInvalidDocumentState", err)
	}
}

func TestCreateSalesInvoiceCrossTenantCustomer(t *testing.T) {
	tc := testenv.Setup(t)
	ctx := context.Background()

	other := testenv.NewTenant()
	foreignCustomer, err := models.CreateParty(ctx, other, &models.NewParty{
		Name: "Foreign", PartyType: models.PartyCustomer,
	})
	if err != nil {
		t.Fatalf("CreateParty: %v", err)
	}
	product, err := models.CreateProduct(ctx, tc, &models.NewProduct{Code: "NPK-25", Name: "NPK 25kg"})
	if err != nil {
		t.Fatalf("CreateProduct: %v", err)
	}

	_, err = models.CreateSalesInvoice(ctx, tc, &models.NewSalesInvoice{
		CustomerId:  foreignCustomer.ID,
		InvoiceDate: time.Now(),
		Items: []models.NewDocumentItem{
			{ProductId: product.ID, Quantity: dec("1"), UnitPrice: dec("50")},
		},
	})
	if !errors.Is(err, utils.ErrorCrossTenantReference) {
		t.Fatalf("err = %v, want ErrorCrossTenantReference", err)
	}
}
