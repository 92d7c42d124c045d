package models

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/app-roznamcha/roznamcha/config"
	"github.com/app-roznamcha/roznamcha/tenant"
	"github.com/app-roznamcha/roznamcha/utils"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Account struct {
	ID               int                   `gorm:"primary_key" json:"id"`
	TenantId         string                `gorm:"size:64;not null;index;index:uniq_account_code,unique" json:"tenant_id"`
	Code             string                `gorm:"size:10;not null;index:uniq_account_code,unique" json:"code" binding:"required"`
	Name             string                `gorm:"size:100;not null;index" json:"name" binding:"required"`
	Classification   AccountClassification `gorm:"size:10;not null;index" json:"classification" binding:"required"`
	IsCashOrBank     *bool                 `gorm:"not null;default:false" json:"is_cash_or_bank"`
	AllowForPayments *bool                 `gorm:"not null;default:false" json:"allow_for_payments"`
	CreatedAt        time.Time             `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time             `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewAccount struct {
	Code             string                `json:"code" binding:"required"`
	Name             string                `json:"name" binding:"required"`
	Classification   AccountClassification `json:"classification" binding:"required"`
	IsCashOrBank     bool                  `json:"is_cash_or_bank"`
	AllowForPayments bool                  `json:"allow_for_payments"`
}

type defaultAccount struct {
	Code             string
	Name             string
	Classification   AccountClassification
	IsCashOrBank     bool
	AllowForPayments bool
}

// getDefaultChartOfAccounts is the fixed per-tenant chart the seeding
// routine guarantees. Posting lazily re-creates the subset it needs, so a
// tenant that skipped seeding still posts correctly.
func getDefaultChartOfAccounts() []defaultAccount {
	return []defaultAccount{
		{AccountCodeInventory, "Inventory", AccountAsset, false, false},
		{AccountCodeCustomerControl, "Customer Control", AccountAsset, false, false},
		{AccountCodeSupplierControl, "Supplier Control", AccountLiability, false, false},
		{AccountCodeOpeningBalances, "Opening Balances", AccountEquity, false, false},
		{AccountCodeInventoryWriteOff, "Inventory Write-off (Damage/Expiry)", AccountExpense, false, false},
		{AccountCodeCash, "Cash", AccountAsset, true, true},
		{AccountCodeBank, "Bank", AccountAsset, true, true},
		{AccountCodeWages, "Wages / Staff Salaries", AccountExpense, false, false},
		{AccountCodeFuel, "Fuel / Diesel / Petrol", AccountExpense, false, false},
		{AccountCodeUtilities, "Utilities (Electricity / Internet / Gas / Water)", AccountExpense, false, false},
		{AccountCodeEntertainment, "Guests / Entertainment", AccountExpense, false, false},
		{AccountCodeRepairs, "Repair & Maintenance", AccountExpense, false, false},
		{AccountCodeOfficeSupplies, "Office Supplies / Stationery", AccountExpense, false, false},
		{AccountCodeMiscExpense, "Miscellaneous Expense", AccountExpense, false, false},
	}
}

func defaultAccountFor(code string) (defaultAccount, bool) {
	for _, d := range getDefaultChartOfAccounts() {
		if d.Code == code {
			return d, true
		}
	}
	return defaultAccount{}, false
}

// GetOrCreateAccount resolves (tenant, code), creating the account with the
// given defaults when missing. Safe under concurrent callers: a loser of the
// unique-index race re-fetches the winner's row.
func GetOrCreateAccount(ctx context.Context, tx *gorm.DB, tenantId string, code string, defaults defaultAccount) (*Account, error) {
	if tenantId == "" {
		return nil, tenant.ErrOwnerNotResolved
	}

	var account Account
	err := tx.WithContext(ctx).
		Where("tenant_id = ? AND code = ?", tenantId, code).
		First(&account).Error
	if err == nil {
		return &account, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	account = Account{
		TenantId:         tenantId,
		Code:             code,
		Name:             defaults.Name,
		Classification:   defaults.Classification,
		IsCashOrBank:     &defaults.IsCashOrBank,
		AllowForPayments: &defaults.AllowForPayments,
	}
	err = tx.WithContext(ctx).Create(&account).Error
	if err == nil {
		return &account, nil
	}
	if !utils.IsDuplicateKeyErr(err) {
		return nil, err
	}
	// lost the race; the row exists now
	if err := tx.WithContext(ctx).
		Where("tenant_id = ? AND code = ?", tenantId, code).
		First(&account).Error; err != nil {
		return nil, err
	}
	return &account, nil
}

// GetOrCreateSystemAccount resolves a well-known code using the fixed chart
// as defaults.
func GetOrCreateSystemAccount(ctx context.Context, tx *gorm.DB, tenantId string, code string) (*Account, error) {
	defaults, ok := defaultAccountFor(code)
	if !ok {
		return nil, fmt.Errorf("unknown system account code %q", code)
	}
	return GetOrCreateAccount(ctx, tx, tenantId, code, defaults)
}

// SeedDefaultAccounts guarantees the fixed chart exists for the tenant and
// repairs drifted names/flags. Idempotent.
func SeedDefaultAccounts(ctx context.Context, tc tenant.Context) error {
	tenantId, err := tc.TenantId()
	if err != nil {
		return err
	}

	db := config.GetDB()
	tx := db.Begin()
	for _, data := range getDefaultChartOfAccounts() {
		account, err := GetOrCreateAccount(ctx, tx, tenantId, data.Code, data)
		if err != nil {
			tx.Rollback()
			return err
		}

		updates := map[string]interface{}{}
		if account.Name != data.Name {
			updates["Name"] = data.Name
		}
		if account.Classification != data.Classification {
			updates["Classification"] = data.Classification
		}
		if account.IsCashOrBank == nil || *account.IsCashOrBank != data.IsCashOrBank {
			updates["IsCashOrBank"] = data.IsCashOrBank
		}
		if account.AllowForPayments == nil || *account.AllowForPayments != data.AllowForPayments {
			updates["AllowForPayments"] = data.AllowForPayments
		}
		if len(updates) > 0 {
			if err := tx.WithContext(ctx).Model(account).Updates(updates).Error; err != nil {
				tx.Rollback()
				return err
			}
		}
	}
	if err := tx.Commit().Error; err != nil {
		return err
	}
	// seeded codes changed; drop the cached map
	return config.DeleteRedisKey("SystemAccounts:" + tenantId)
}

// GetSystemAccounts returns the code -> id map of seeded accounts, cached in
// redis per tenant when available.
func GetSystemAccounts(tenantId string) (map[string]int, error) {
	var accounts []*Account
	var sysAccounts map[string]int

	exists, err := config.GetRedisObject("SystemAccounts:"+tenantId, &sysAccounts)
	if err != nil {
		return nil, err
	}
	if !exists {
		db := config.GetDB()
		if _, err := uuid.Parse(tenantId); err != nil {
			return nil, fmt.Errorf("invalid tenant id %q: %w", tenantId, err)
		}
		codes := make([]string, 0)
		for _, d := range getDefaultChartOfAccounts() {
			codes = append(codes, d.Code)
		}
		if err := db.Select("id", "code").
			Where("tenant_id = ?", tenantId).
			Where("code IN ?", codes).
			Find(&accounts).Error; err != nil {
			return nil, err
		}
		sysAccounts = make(map[string]int)
		for _, acc := range accounts {
			sysAccounts[acc.Code] = acc.ID
		}
		if err := config.SetRedisObject("SystemAccounts:"+tenantId, &sysAccounts, 0); err != nil {
			return nil, err
		}
	}
	return sysAccounts, nil
}

// validate input for both create & update. (id = 0 for create)

func (input *NewAccount) validate(ctx context.Context, tenantId string, id int) error {
	if err := utils.ValidateUnique[Account](ctx, tenantId, "code", input.Code, id); err != nil {
		return err
	}
	switch input.Classification {
	case AccountAsset, AccountLiability, AccountEquity, AccountIncome, AccountExpense:
	default:
		return fmt.Errorf("%w: unknown classification %q", utils.ErrorInvalidDocumentState, input.Classification)
	}
	return nil
}

func CreateAccount(ctx context.Context, tc tenant.Context, input *NewAccount) (*Account, error) {
	tenantId, err := tc.TenantId()
	if err != nil {
		return nil, err
	}

	if err := input.validate(ctx, tenantId, 0); err != nil {
		return nil, err
	}

	account := Account{
		TenantId:         tenantId,
		Code:             input.Code,
		Name:             input.Name,
		Classification:   input.Classification,
		IsCashOrBank:     &input.IsCashOrBank,
		AllowForPayments: &input.AllowForPayments,
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&account).Error; err != nil {
		return nil, err
	}
	return &account, nil
}

func GetAccount(ctx context.Context, tc tenant.Context, id int) (*Account, error) {
	tenantId, err := tc.TenantId()
	if err != nil {
		return nil, err
	}
	return utils.FetchModel[Account](ctx, tenantId, id)
}

func GetAccounts(ctx context.Context, tc tenant.Context, name *string, code *string) ([]*Account, error) {
	tenantId, err := tc.TenantId()
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	var results []*Account

	dbCtx := db.WithContext(ctx).Where("tenant_id = ?", tenantId)
	if name != nil && len(*name) > 0 {
		dbCtx = dbCtx.Where("name LIKE ?", "%"+*name+"%")
	}
	if code != nil && len(*code) > 0 {
		dbCtx = dbCtx.Where("code LIKE ?", "%"+*code+"%")
	}
	err = dbCtx.Order("code").Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}
