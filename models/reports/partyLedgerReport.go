package reports

import (
	"context"
	"sort"
	"time"

	"github.com/app-roznamcha/roznamcha/config"
	"github.com/app-roznamcha/roznamcha/models"
	"github.com/app-roznamcha/roznamcha/tenant"
	"github.com/app-roznamcha/roznamcha/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type PartyLedgerRow struct {
	Date        time.Time       `json:"date"`
	Kind        string          `json:"kind"`
	DocumentId  int             `json:"document_id"`
	Description string          `json:"description"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
	Balance     decimal.Decimal `json:"balance"`
}

type PartyLedgerReport struct {
	PartyId        int              `json:"party_id"`
	PartyName      string           `json:"party_name"`
	PartyType      models.PartyType `json:"party_type"`
	OpeningBalance decimal.Decimal  `json:"opening_balance"`
	Rows           []PartyLedgerRow `json:"rows"`
	ClosingBalance decimal.Decimal  `json:"closing_balance"`
}

func inWindow(date time.Time, from *time.Time, to *time.Time) bool {
	if from != nil && date.Before(*from) {
		return false
	}
	if to != nil && date.After(*to) {
		return false
	}
	return true
}

// collectPartyRows gathers all posted documents of the party as
// unbalanced debit/credit rows, before sorting and running-balance
// assignment.
func collectPartyRows(ctx context.Context, db *gorm.DB, tenantId string, party *models.Party, from *time.Time, to *time.Time) ([]PartyLedgerRow, error) {
	var rows []PartyLedgerRow

	if party.PartyType == models.PartyCustomer {
		var invoices []models.SalesInvoice
		err := db.WithContext(ctx).Preload("Items").
			Where("tenant_id = ? AND customer_id = ? AND posted = ?", tenantId, party.ID, true).
			Order("invoice_date, id").
			Find(&invoices).Error
		if err != nil {
			return nil, err
		}
		for _, inv := range invoices {
			if !inWindow(inv.InvoiceDate, from, to) {
				continue
			}
			rows = append(rows, PartyLedgerRow{
				Date:        inv.InvoiceDate,
				Kind:        string(models.SourceSalesInvoice),
				DocumentId:  inv.ID,
				Description: "Sales invoice " + inv.InvoiceNumber,
				Debit:       inv.CalculateTotal(),
			})
		}

		var returns []models.SalesReturn
		err = db.WithContext(ctx).Preload("Items").
			Where("tenant_id = ? AND customer_id = ? AND posted = ?", tenantId, party.ID, true).
			Order("return_date, id").
			Find(&returns).Error
		if err != nil {
			return nil, err
		}
		for _, ret := range returns {
			if !inWindow(ret.ReturnDate, from, to) {
				continue
			}
			rows = append(rows, PartyLedgerRow{
				Date:        ret.ReturnDate,
				Kind:        string(models.SourceSalesReturn),
				DocumentId:  ret.ID,
				Description: "Sales return",
				Credit:      ret.CalculateTotal(),
			})
		}
	} else {
		var invoices []models.PurchaseInvoice
		err := db.WithContext(ctx).Preload("Items").
			Where("tenant_id = ? AND supplier_id = ? AND posted = ?", tenantId, party.ID, true).
			Order("invoice_date, id").
			Find(&invoices).Error
		if err != nil {
			return nil, err
		}
		for _, inv := range invoices {
			if !inWindow(inv.InvoiceDate, from, to) {
				continue
			}
			rows = append(rows, PartyLedgerRow{
				Date:        inv.InvoiceDate,
				Kind:        string(models.SourcePurchaseInvoice),
				DocumentId:  inv.ID,
				Description: "Purchase invoice " + inv.InvoiceNumber,
				Credit:      inv.CalculateTotal(),
			})
		}

		var returns []models.PurchaseReturn
		err = db.WithContext(ctx).Preload("Items").
			Where("tenant_id = ? AND supplier_id = ? AND posted = ?", tenantId, party.ID, true).
			Order("return_date, id").
			Find(&returns).Error
		if err != nil {
			return nil, err
		}
		for _, ret := range returns {
			if !inWindow(ret.ReturnDate, from, to) {
				continue
			}
			rows = append(rows, PartyLedgerRow{
				Date:        ret.ReturnDate,
				Kind:        string(models.SourcePurchaseReturn),
				DocumentId:  ret.ID,
				Description: "Purchase return",
				Debit:       ret.CalculateTotal(),
			})
		}
	}

	var payments []models.Payment
	err := db.WithContext(ctx).
		Where("tenant_id = ? AND party_id = ? AND posted = ?", tenantId, party.ID, true).
		Order("payment_date, id").
		Find(&payments).Error
	if err != nil {
		return nil, err
	}
	for _, p := range payments {
		if !inWindow(p.PaymentDate, from, to) {
			continue
		}
		row := PartyLedgerRow{
			Date:       p.PaymentDate,
			Kind:       string(models.SourcePayment),
			DocumentId: p.ID,
		}
		if p.IsAdjustment {
			// a DR adjustment is a debit row for both party types
			row.Description = "Balance adjustment (" + string(p.AdjustmentSide) + ")"
			if p.AdjustmentSide == models.AdjustmentDr {
				row.Debit = p.Amount
			} else {
				row.Credit = p.Amount
			}
		} else {
			row.Description = "Payment " + string(p.Direction)
			if p.Direction == models.PaymentIn {
				row.Credit = p.Amount
			} else {
				row.Debit = p.Amount
			}
		}
		rows = append(rows, row)
	}

	return rows, nil
}

// GetPartyLedgerReport replays a party's posted documents in date order
// with a running balance. Customers carry a debit-positive balance,
// suppliers a credit-positive one.
func GetPartyLedgerReport(ctx context.Context, tc tenant.Context, partyId int, from *time.Time, to *time.Time) (*PartyLedgerReport, error) {
	tenantId, err := tc.TenantId()
	if err != nil {
		return nil, err
	}
	db := config.GetDB()

	party, err := utils.FetchModel[models.Party](ctx, tenantId, partyId)
	if err != nil {
		return nil, err
	}

	opening := party.OpeningBalance
	if party.OpeningBalanceIsDebit != nil && !*party.OpeningBalanceIsDebit {
		opening = opening.Neg()
	}
	// supplier balances are credit-positive
	if party.PartyType == models.PartySupplier {
		opening = opening.Neg()
	}

	rows, err := collectPartyRows(ctx, db, tenantId, party, from, to)
	if err != nil {
		return nil, err
	}

	// stable: same-date rows keep collection order, which follows each
	// document table's insertion order
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Date.Before(rows[j].Date)
	})

	report := PartyLedgerReport{
		PartyId:        party.ID,
		PartyName:      party.Name,
		PartyType:      party.PartyType,
		OpeningBalance: opening,
		Rows:           rows,
	}

	running := opening
	for i := range rows {
		movement := rows[i].Debit.Sub(rows[i].Credit)
		if party.PartyType == models.PartySupplier {
			movement = movement.Neg()
		}
		running = running.Add(movement)
		rows[i].Balance = running
	}
	report.ClosingBalance = running
	return &report, nil
}

// GetPartyBalance is the closing balance of the full-history ledger.
func GetPartyBalance(ctx context.Context, tc tenant.Context, partyId int) (decimal.Decimal, error) {
	report, err := GetPartyLedgerReport(ctx, tc, partyId, nil, nil)
	if err != nil {
		return decimal.Zero, err
	}
	return report.ClosingBalance, nil
}
