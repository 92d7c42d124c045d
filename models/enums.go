package models

type AccountClassification string

const (
	AccountAsset     AccountClassification = "ASSET"
	AccountLiability AccountClassification = "LIABILITY"
	AccountEquity    AccountClassification = "EQUITY"
	AccountIncome    AccountClassification = "INCOME"
	AccountExpense   AccountClassification = "EXPENSE"
)

// IsDebitNormal reports which side increases the account's natural balance.
// ASSET/EXPENSE balances are sum(debit) - sum(credit); the rest are reversed.
func (c AccountClassification) IsDebitNormal() bool {
	return c == AccountAsset || c == AccountExpense
}

type PartyType string

const (
	PartyCustomer PartyType = "CUSTOMER"
	PartySupplier PartyType = "SUPPLIER"
)

type PaymentDirection string

const (
	PaymentIn  PaymentDirection = "IN"
	PaymentOut PaymentDirection = "OUT"
)

type AdjustmentSide string

const (
	AdjustmentDr AdjustmentSide = "DR"
	AdjustmentCr AdjustmentSide = "CR"
)

type InvoicePaymentType string

const (
	PaymentTypeCredit  InvoicePaymentType = "CREDIT"
	PaymentTypeFull    InvoicePaymentType = "FULL"
	PaymentTypePartial InvoicePaymentType = "PARTIAL"
)

type StockDirection string

const (
	StockUp   StockDirection = "UP"
	StockDown StockDirection = "DOWN"
)

// SourceKind identifies the originating document of a journal entry.
// (tenant_id, source_kind, source_id) is the journal idempotency key.
type SourceKind string

const (
	SourcePartyOpening     SourceKind = "PartyOpening"
	SourceSalesInvoice     SourceKind = "SalesInvoice"
	SourcePurchaseInvoice  SourceKind = "PurchaseInvoice"
	SourceSalesReturn      SourceKind = "SalesReturn"
	SourcePurchaseReturn   SourceKind = "PurchaseReturn"
	SourcePayment          SourceKind = "Payment"
	SourceDailyExpense     SourceKind = "DailyExpense"
	SourceCashBankTransfer SourceKind = "CashBankTransfer"
	SourceStockAdjustment  SourceKind = "StockAdjustment"
)

// Well-known system account codes, one set per tenant.
const (
	AccountCodeInventory         = "1200"
	AccountCodeCustomerControl   = "1300"
	AccountCodeSupplierControl   = "2100"
	AccountCodeOpeningBalances   = "3000"
	AccountCodeInventoryWriteOff = "5100"
	AccountCodeCash              = "1010"
	AccountCodeBank              = "1020"
	AccountCodeWages             = "5200"
	AccountCodeFuel              = "5210"
	AccountCodeUtilities         = "5220"
	AccountCodeEntertainment     = "5230"
	AccountCodeRepairs           = "5240"
	AccountCodeOfficeSupplies    = "5250"
	AccountCodeMiscExpense       = "5290"
)
