package reports_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/app-roznamcha/roznamcha/models"
	"github.com/app-roznamcha/roznamcha/models/reports"
	"github.com/app-roznamcha/roznamcha/posting"
	"github.com/app-roznamcha/roznamcha/tenant"
	"github.com/app-roznamcha/roznamcha/testenv"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// The opening balance journal is dated at party creation, so the seeded
// documents are dated relative to today to keep it the earliest entry.
func ledgerDay(offset int) time.Time {
	return time.Now().UTC().Truncate(24 * time.Hour).AddDate(0, 0, offset)
}

// seedLedger posts a small but complete trading history for one tenant:
// a customer opened at 1000 debit, a sales invoice of 500 on day one and
// a cash receipt of 300 on day three. Returns the customer and the
// system account id map keyed by code.
func seedLedger(t *testing.T, ctx context.Context, tc tenant.Context) (*models.Party, map[string]int) {
	t.Helper()

	if err := models.SeedDefaultAccounts(ctx, tc); err != nil {
		t.Fatalf("SeedDefaultAccounts: %v", err)
	}
	tenantId, err := tc.TenantId()
	if err != nil {
		t.Fatalf("TenantId: %v", err)
	}
	accounts, err := models.GetSystemAccounts(tenantId)
	if err != nil {
		t.Fatalf("GetSystemAccounts: %v", err)
	}

	customer, err := models.CreateParty(ctx, tc, &models.NewParty{
		Name:                  "Haji Ramzan",
		PartyType:             models.PartyCustomer,
		OpeningBalance:        dec("1000"),
		OpeningBalanceIsDebit: true,
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
		InvoiceDate: ledgerDay(1),
		Items: []models.NewDocumentItem{
			{ProductId: product.ID, Quantity: dec("5"), UnitPrice: dec("100")},
		},
	})
	if err != nil {
		t.Fatalf("CreateSalesInvoice: %v", err)
	}
	if err := posting.PostSalesInvoice(ctx, tc, invoice.ID); err != nil {
		t.Fatalf("PostSalesInvoice: %v", err)
	}

	payment, err := models.CreatePayment(ctx, tc, &models.NewPayment{
		PartyId:     customer.ID,
		Direction:   models.PaymentIn,
		Amount:      dec("300"),
		PaymentDate: ledgerDay(3),
		AccountId:   accounts[models.AccountCodeCash],
	})
	if err != nil {
		t.Fatalf("CreatePayment: %v", err)
	}
	if err := posting.PostPayment(ctx, tc, payment.ID); err != nil {
		t.Fatalf("PostPayment: %v", err)
	}

	return customer, accounts
}

func TestTrialBalanceStaysBalanced(t *testing.T) {
	tc := testenv.Setup(t)
	ctx := context.Background()
	_, accounts := seedLedger(t, ctx, tc)

	report, err := reports.GetTrialBalanceReport(ctx, tc, nil)
	if err != nil {
		t.Fatalf("GetTrialBalanceReport: %v", err)
	}
	if !report.Balanced {
		t.Fatalf("trial balance not balanced: debit %s credit %s", report.TotalDebit, report.TotalCredit)
	}
	if !report.TotalDebit.Equal(report.TotalCredit) {
		t.Fatalf("totals differ: %s vs %s", report.TotalDebit, report.TotalCredit)
	}

	byAccount := map[int]reports.TrialBalanceRow{}
	for _, row := range report.Rows {
		byAccount[row.AccountId] = row
	}
	// Customer control: 1000 opening + 500 invoice - 300 receipt.
	control := byAccount[accounts[models.AccountCodeCustomerControl]]
	if !control.Debit.Equal(dec("1200")) || !control.Credit.IsZero() {
		t.Fatalf("customer control row = Dr %s / Cr %s, want Dr 1200", control.Debit, control.Credit)
	}
	cash := byAccount[accounts[models.AccountCodeCash]]
	if !cash.Debit.Equal(dec("300")) {
		t.Fatalf("cash row debit = %s, want 300", cash.Debit)
	}
	// Inventory went negative (nothing purchased), so it shows on the
	// credit side.
	inventory := byAccount[accounts[models.AccountCodeInventory]]
	if !inventory.Credit.Equal(dec("500")) || !inventory.Debit.IsZero() {
		t.Fatalf("inventory row = Dr %s / Cr %s, want Cr 500", inventory.Debit, inventory.Credit)
	}
}

func TestTrialBalanceAsOfCutsOffLaterEntries(t *testing.T) {
	tc := testenv.Setup(t)
	ctx := context.Background()
	_, accounts := seedLedger(t, ctx, tc)

	asOf := ledgerDay(2)
	report, err := reports.GetTrialBalanceReport(ctx, tc, &asOf)
	if err != nil {
		t.Fatalf("GetTrialBalanceReport: %v", err)
	}
	if !report.Balanced {
		t.Fatalf("trial balance not balanced as of %s", asOf)
	}
	for _, row := range report.Rows {
		if row.AccountId == accounts[models.AccountCodeCash] {
			t.Fatalf("cash receipt dated after the cutoff leaked into the report")
		}
	}
}

func TestAccountLedgerRunningBalance(t *testing.T) {
	tc := testenv.Setup(t)
	ctx := context.Background()
	_, accounts := seedLedger(t, ctx, tc)

	controlId := accounts[models.AccountCodeCustomerControl]
	report, err := reports.GetAccountLedgerReport(ctx, tc, controlId, nil, nil)
	if err != nil {
		t.Fatalf("GetAccountLedgerReport: %v", err)
	}
	if !report.OpeningBalance.IsZero() {
		t.Fatalf("opening without a window start = %s, want 0", report.OpeningBalance)
	}
	if len(report.Rows) != 3 {
		t.Fatalf("rows = %d, want 3", len(report.Rows))
	}
	want := []string{"1000", "1500", "1200"}
	for i, row := range report.Rows {
		if !row.RunningBalance.Equal(dec(want[i])) {
			t.Fatalf("row %d running balance = %s, want %s", i, row.RunningBalance, want[i])
		}
	}
	if !report.ClosingBalance.Equal(dec("1200")) {
		t.Fatalf("closing = %s, want 1200", report.ClosingBalance)
	}
}

func TestAccountLedgerWindowOpening(t *testing.T) {
	tc := testenv.Setup(t)
	ctx := context.Background()
	_, accounts := seedLedger(t, ctx, tc)

	controlId := accounts[models.AccountCodeCustomerControl]
	from := ledgerDay(2)
	report, err := reports.GetAccountLedgerReport(ctx, tc, controlId, &from, nil)
	if err != nil {
		t.Fatalf("GetAccountLedgerReport: %v", err)
	}
	// Opening balance 1000 and the invoice both predate the window.
	if !report.OpeningBalance.Equal(dec("1500")) {
		t.Fatalf("opening = %s, want 1500", report.OpeningBalance)
	}
	if len(report.Rows) != 1 {
		t.Fatalf("rows = %d, want 1 (the receipt)", len(report.Rows))
	}
	if !report.Rows[0].Credit.Equal(dec("300")) {
		t.Fatalf("row credit = %s, want 300", report.Rows[0].Credit)
	}
	if !report.ClosingBalance.Equal(dec("1200")) {
		t.Fatalf("closing = %s, want 1200", report.ClosingBalance)
	}
}

func TestAccountBalanceAsOf(t *testing.T) {
	tc := testenv.Setup(t)
	ctx := context.Background()
	_, accounts := seedLedger(t, ctx, tc)

	controlId := accounts[models.AccountCodeCustomerControl]
	balance, err := reports.GetAccountBalance(ctx, tc, controlId, nil)
	if err != nil {
		t.Fatalf("GetAccountBalance: %v", err)
	}
	if !balance.Equal(dec("1200")) {
		t.Fatalf("balance = %s, want 1200", balance)
	}

	asOf := ledgerDay(1)
	balance, err = reports.GetAccountBalance(ctx, tc, controlId, &asOf)
	if err != nil {
		t.Fatalf("GetAccountBalance: %v", err)
	}
	if !balance.Equal(dec("1500")) {
		t.Fatalf("balance as of invoice date = %s, want 1500", balance)
	}
}

func TestPartyLedgerReplay(t *testing.T) {
	tc := testenv.Setup(t)
	ctx := context.Background()
	customer, _ := seedLedger(t, ctx, tc)

	report, err := reports.GetPartyLedgerReport(ctx, tc, customer.ID, nil, nil)
	if err != nil {
		t.Fatalf("GetPartyLedgerReport: %v", err)
	}
	if !report.OpeningBalance.Equal(dec("1000")) {
		t.Fatalf("opening = %s, want 1000", report.OpeningBalance)
	}
	if len(report.Rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(report.Rows))
	}
	if !report.Rows[0].Debit.Equal(dec("500")) {
		t.Fatalf("invoice row debit = %s, want 500", report.Rows[0].Debit)
	}
	if !report.Rows[0].Balance.Equal(dec("1500")) {
		t.Fatalf("balance after invoice = %s, want 1500", report.Rows[0].Balance)
	}
	if !report.Rows[1].Credit.Equal(dec("300")) {
		t.Fatalf("receipt row credit = %s, want 300", report.Rows[1].Credit)
	}
	if !report.ClosingBalance.Equal(dec("1200")) {
		t.Fatalf("closing = %s, want 1200", report.ClosingBalance)
	}

	balance, err := reports.GetPartyBalance(ctx, tc, customer.ID)
	if err != nil {
		t.Fatalf("GetPartyBalance: %v", err)
	}
	if !balance.Equal(dec("1200")) {
		t.Fatalf("party balance = %s, want 1200", balance)
	}
}

func TestSupplierLedgerCreditPositive(t *testing.T) {
	tc := testenv.Setup(t)
	ctx := context.Background()

	if err := models.SeedDefaultAccounts(ctx, tc); err != nil {
		t.Fatalf("SeedDefaultAccounts: %v", err)
	}
	supplier, err := models.CreateParty(ctx, tc, &models.NewParty{
		Name:      "Sindh Agro Depot",
		PartyType: models.PartySupplier,
	})
	if err != nil {
		t.Fatalf("CreateParty: %v", err)
	}
	product, err := models.CreateProduct(ctx, tc, &models.NewProduct{Code: "DAP-50", Name: "DAP 50kg"})
	if err != nil {
		t.Fatalf("CreateProduct: %v", err)
	}
	invoice, err := models.CreatePurchaseInvoice(ctx, tc, &models.NewPurchaseInvoice{
		SupplierId:  supplier.ID,
		InvoiceDate: time.Date(2025, 4, 2, 0, 0, 0, 0, time.UTC),
		Items: []models.NewDocumentItem{
			{ProductId: product.ID, Quantity: dec("10"), UnitPrice: dec("80")},
		},
	})
	if err != nil {
		t.Fatalf("CreatePurchaseInvoice: %v", err)
	}
	if err := posting.PostPurchaseInvoice(ctx, tc, invoice.ID); err != nil {
		t.Fatalf("PostPurchaseInvoice: %v", err)
	}

	report, err := reports.GetPartyLedgerReport(ctx, tc, supplier.ID, nil, nil)
	if err != nil {
		t.Fatalf("GetPartyLedgerReport: %v", err)
	}
	// Supplier ledgers read credit-positive: owing 800 is a positive
	// closing balance.
	if len(report.Rows) != 1 {
		t.Fatalf("rows = %d, want 1", len(report.Rows))
	}
	if !report.Rows[0].Credit.Equal(dec("800")) {
		t.Fatalf("invoice row credit = %s, want 800", report.Rows[0].Credit)
	}
	if !report.ClosingBalance.Equal(dec("800")) {
		t.Fatalf("closing = %s, want 800", report.ClosingBalance)
	}
}

func TestReportsScopedByTenant(t *testing.T) {
	tc := testenv.Setup(t)
	ctx := context.Background()
	seedLedger(t, ctx, tc)

	other := testenv.NewTenant()
	if err := models.SeedDefaultAccounts(ctx, other); err != nil {
		t.Fatalf("SeedDefaultAccounts: %v", err)
	}
	report, err := reports.GetTrialBalanceReport(ctx, other, nil)
	if err != nil {
		t.Fatalf("GetTrialBalanceReport: %v", err)
	}
	if len(report.Rows) != 0 {
		t.Fatalf("other tenant sees %d trial balance rows, want 0", len(report.Rows))
	}
	if !report.Balanced {
		t.Fatalf("empty trial balance should report balanced")
	}
}
