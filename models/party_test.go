package models_test

import (
	"context"
	"testing"

	"github.com/app-roznamcha/roznamcha/models"
	"github.com/app-roznamcha/roznamcha/testenv"
)

func TestCreatePartyPostsOpeningBalance(t *testing.T) {
	tc := testenv.Setup(t)
	ctx := context.Background()
	tenantId, _ := tc.TenantId()

	customer, err := models.CreateParty(ctx, tc, &models.NewParty{
		Name:                  "Karim Traders",
		PartyType:             models.PartyCustomer,
		OpeningBalance:        dec("1000"),
		OpeningBalanceIsDebit: true,
	})
	if err != nil {
		t.Fatalf("CreateParty: %v", err)
	}

	entry, err := models.GetJournalEntryBySource(ctx, tc, models.SourcePartyOpening, customer.ID)
	if err != nil {
		t.Fatalf("opening journal entry missing: %v", err)
	}
	if !entry.Amount.Equal(dec("1000")) {
		t.Fatalf("opening amount = %s, want 1000", entry.Amount)
	}

	accounts, err := models.GetSystemAccounts(tenantId)
	if err != nil {
		t.Fatalf("GetSystemAccounts: %v", err)
	}
	if entry.DebitAccountId != accounts[models.AccountCodeCustomerControl] {
		t.Fatal("debit opening for a customer should debit the control account")
	}
	if entry.CreditAccountId != accounts[models.AccountCodeOpeningBalances] {
		t.Fatal("debit opening should credit opening equity")
	}
}

func TestCreatePartyZeroOpeningNoJournal(t *testing.T) {
	tc := testenv.Setup(t)
	ctx := context.Background()

	party, err := models.CreateParty(ctx, tc, &models.NewParty{
		Name:      "No Opening",
		PartyType: models.PartySupplier,
	})
	if err != nil {
		t.Fatalf("CreateParty: %v", err)
	}

	if _, err := models.GetJournalEntryBySource(ctx, tc, models.SourcePartyOpening, party.ID); err == nil {
		t.Fatal("zero opening balance must not create a journal entry")
	}
}

func TestCreatePartyDuplicateName(t *testing.T) {
	tc := testenv.Setup(t)
	ctx := context.Background()

	input := models.NewParty{Name: "Karim Traders", PartyType: models.PartyCustomer}
	if _, err := models.CreateParty(ctx, tc, &input); err != nil {
		t.Fatalf("CreateParty: %v", err)
	}
	if _, err := models.CreateParty(ctx, tc, &input); err == nil {
		t.Fatal("same name and type under one tenant must be rejected")
	}

	// same name is fine for another tenant
	other := testenv.NewTenant()
	if _, err := models.CreateParty(ctx, other, &input); err != nil {
		t.Fatalf("CreateParty other tenant: %v", err)
	}
}
