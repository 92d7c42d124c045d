package reports

import (
	"context"
	"time"

	"github.com/app-roznamcha/roznamcha/config"
	"github.com/app-roznamcha/roznamcha/models"
	"github.com/app-roznamcha/roznamcha/tenant"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type TrialBalanceRow struct {
	AccountId   int             `json:"account_id"`
	AccountCode string          `json:"account_code"`
	AccountName string          `json:"account_name"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
}

type TrialBalanceReport struct {
	Rows        []TrialBalanceRow `json:"rows"`
	TotalDebit  decimal.Decimal   `json:"total_debit"`
	TotalCredit decimal.Decimal   `json:"total_credit"`
	// Balanced is a completeness check, not an assertion: an imbalance
	// means the journal itself is broken and the caller decides whether
	// that is fatal.
	Balanced bool `json:"balanced"`
}

func sumByAccount(ctx context.Context, db *gorm.DB, tenantId string, column string, asOf *time.Time) (map[int]decimal.Decimal, error) {
	type row struct {
		AccountId int
		Total     decimal.Decimal
	}
	var results []row
	query := db.WithContext(ctx).Model(&models.JournalEntry{}).
		Select(column + " as account_id, SUM(amount) as total").
		Where("tenant_id = ?", tenantId).
		Group(column)
	if asOf != nil {
		query = query.Where("entry_date <= ?", *asOf)
	}
	if err := query.Scan(&results).Error; err != nil {
		return nil, err
	}
	sums := make(map[int]decimal.Decimal, len(results))
	for _, r := range results {
		sums[r.AccountId] = r.Total
	}
	return sums, nil
}

// GetTrialBalanceReport computes the natural balance of every account
// up to asOf and arranges each on its debit or credit side. A
// debit-normal account with a negative balance flips to the credit
// column, and vice versa.
func GetTrialBalanceReport(ctx context.Context, tc tenant.Context, asOf *time.Time) (*TrialBalanceReport, error) {
	tenantId, err := tc.TenantId()
	if err != nil {
		return nil, err
	}
	db := config.GetDB()

	debitSums, err := sumByAccount(ctx, db, tenantId, "debit_account_id", asOf)
	if err != nil {
		return nil, err
	}
	creditSums, err := sumByAccount(ctx, db, tenantId, "credit_account_id", asOf)
	if err != nil {
		return nil, err
	}

	var accounts []models.Account
	err = db.WithContext(ctx).
		Where("tenant_id = ?", tenantId).
		Order("code").
		Find(&accounts).Error
	if err != nil {
		return nil, err
	}

	report := TrialBalanceReport{Rows: make([]TrialBalanceRow, 0, len(accounts))}
	for _, account := range accounts {
		balance := debitSums[account.ID].Sub(creditSums[account.ID])
		if !account.Classification.IsDebitNormal() {
			balance = balance.Neg()
		}

		row := TrialBalanceRow{
			AccountId:   account.ID,
			AccountCode: account.Code,
			AccountName: account.Name,
		}
		onDebitSide := account.Classification.IsDebitNormal() == !balance.IsNegative()
		if onDebitSide {
			row.Debit = balance.Abs()
		} else {
			row.Credit = balance.Abs()
		}
		report.TotalDebit = report.TotalDebit.Add(row.Debit)
		report.TotalCredit = report.TotalCredit.Add(row.Credit)
		report.Rows = append(report.Rows, row)
	}
	report.Balanced = report.TotalDebit.Equal(report.TotalCredit)
	return &report, nil
}
