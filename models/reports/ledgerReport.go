package reports

import (
	"context"
	"time"

	"github.com/app-roznamcha/roznamcha/config"
	"github.com/app-roznamcha/roznamcha/models"
	"github.com/app-roznamcha/roznamcha/tenant"
	"github.com/app-roznamcha/roznamcha/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type AccountLedgerRow struct {
	EntryId        int             `json:"entry_id"`
	EntryDate      time.Time       `json:"entry_date"`
	Description    string          `json:"description"`
	Debit          decimal.Decimal `json:"debit"`
	Credit         decimal.Decimal `json:"credit"`
	RunningBalance decimal.Decimal `json:"running_balance"`
}

type AccountLedgerReport struct {
	AccountId      int                `json:"account_id"`
	AccountCode    string             `json:"account_code"`
	AccountName    string             `json:"account_name"`
	OpeningBalance decimal.Decimal    `json:"opening_balance"`
	Rows           []AccountLedgerRow `json:"rows"`
	ClosingBalance decimal.Decimal    `json:"closing_balance"`
}

// signedBalance replays journal sums for one account over a half-open
// or closed date window. A debit-normal account counts debits positive.
func signedBalance(ctx context.Context, db *gorm.DB, tenantId string, account *models.Account, where string, args ...interface{}) (decimal.Decimal, error) {
	sum := func(column string) (decimal.Decimal, error) {
		var total decimal.NullDecimal
		query := db.WithContext(ctx).Model(&models.JournalEntry{}).
			Select("SUM(amount)").
			Where("tenant_id = ? AND "+column+" = ?", tenantId, account.ID)
		if where != "" {
			query = query.Where(where, args...)
		}
		if err := query.Scan(&total).Error; err != nil {
			return decimal.Zero, err
		}
		if !total.Valid {
			return decimal.Zero, nil
		}
		return total.Decimal, nil
	}

	debits, err := sum("debit_account_id")
	if err != nil {
		return decimal.Zero, err
	}
	credits, err := sum("credit_account_id")
	if err != nil {
		return decimal.Zero, err
	}
	if account.Classification.IsDebitNormal() {
		return debits.Sub(credits), nil
	}
	return credits.Sub(debits), nil
}

// GetAccountBalance replays every entry touching the account up to
// asOf, inclusive.
func GetAccountBalance(ctx context.Context, tc tenant.Context, accountId int, asOf *time.Time) (decimal.Decimal, error) {
	tenantId, err := tc.TenantId()
	if err != nil {
		return decimal.Zero, err
	}
	db := config.GetDB()

	account, err := utils.FetchModel[models.Account](ctx, tenantId, accountId)
	if err != nil {
		return decimal.Zero, err
	}
	if asOf != nil {
		return signedBalance(ctx, db, tenantId, account, "entry_date <= ?", *asOf)
	}
	return signedBalance(ctx, db, tenantId, account, "")
}

// GetAccountLedgerReport lists the account's entries in (entry_date, id)
// order with a running balance. The opening balance covers everything
// strictly before from.
func GetAccountLedgerReport(ctx context.Context, tc tenant.Context, accountId int, from *time.Time, to *time.Time) (*AccountLedgerReport, error) {
	tenantId, err := tc.TenantId()
	if err != nil {
		return nil, err
	}
	db := config.GetDB()

	account, err := utils.FetchModel[models.Account](ctx, tenantId, accountId)
	if err != nil {
		return nil, err
	}

	opening := decimal.Zero
	if from != nil {
		opening, err = signedBalance(ctx, db, tenantId, account, "entry_date < ?", *from)
		if err != nil {
			return nil, err
		}
	}

	entries, err := models.JournalEntriesForAccount(ctx, tenantId, accountId, from, to)
	if err != nil {
		return nil, err
	}

	report := AccountLedgerReport{
		AccountId:      account.ID,
		AccountCode:    account.Code,
		AccountName:    account.Name,
		OpeningBalance: opening,
		Rows:           make([]AccountLedgerRow, 0, len(entries)),
	}

	running := opening
	debitNormal := account.Classification.IsDebitNormal()
	for _, entry := range entries {
		row := AccountLedgerRow{
			EntryId:     entry.ID,
			EntryDate:   entry.EntryDate,
			Description: entry.Description,
		}
		if entry.DebitAccountId == accountId {
			row.Debit = entry.Amount
		} else {
			row.Credit = entry.Amount
		}
		movement := row.Debit.Sub(row.Credit)
		if !debitNormal {
			movement = movement.Neg()
		}
		running = running.Add(movement)
		row.RunningBalance = running
		report.Rows = append(report.Rows, row)
	}
	report.ClosingBalance = running
	return &report, nil
}
