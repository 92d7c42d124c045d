package models

import (
	"context"
	"fmt"
	"time"

	"github.com/app-roznamcha/roznamcha/config"
	"github.com/app-roznamcha/roznamcha/tenant"
	"github.com/app-roznamcha/roznamcha/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// DailyExpense records a petty outgoing against an expense head, paid
// from a cash or bank account.
type DailyExpense struct {
	ID          int             `gorm:"primary_key" json:"id"`
	TenantId    string          `gorm:"size:64;not null;index;index:idx_de_tenant_date,priority:1" json:"tenant_id"`
	ExpenseDate time.Time       `gorm:"not null;index:idx_de_tenant_date,priority:2" json:"expense_date" binding:"required"`
	AccountId   int             `gorm:"index;not null" json:"account_id" binding:"required"`
	PaidFromId  int             `gorm:"index;not null" json:"paid_from_id" binding:"required"`
	Amount      decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"amount"`
	Description string          `gorm:"type:text" json:"description"`
	Posted      bool            `gorm:"not null;default:false;index" json:"posted"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewDailyExpense struct {
	ExpenseDate time.Time       `json:"expense_date" binding:"required"`
	AccountId   int             `json:"account_id" binding:"required"`
	PaidFromId  int             `json:"paid_from_id" binding:"required"`
	Amount      decimal.Decimal `json:"amount" binding:"required"`
	Description string          `json:"description"`
}

func (input *NewDailyExpense) validate(ctx context.Context, tx *gorm.DB, tenantId string) error {
	if err := utils.ValidateTenantOwnership[Account](ctx, tx, tenantId, "expense account", input.AccountId); err != nil {
		return err
	}
	if err := utils.ValidateTenantOwnership[Account](ctx, tx, tenantId, "paid-from account", input.PaidFromId); err != nil {
		return err
	}
	expense, err := utils.FetchModel[Account](ctx, tenantId, input.AccountId)
	if err != nil {
		return err
	}
	if expense.Classification != AccountExpense {
		return fmt.Errorf("%w: account %s is not an expense head", utils.ErrorInvalidDocumentState, expense.Code)
	}
	paidFrom, err := utils.FetchModel[Account](ctx, tenantId, input.PaidFromId)
	if err != nil {
		return err
	}
	if paidFrom.IsCashOrBank == nil || !*paidFrom.IsCashOrBank {
		return fmt.Errorf("%w: account %s is not a cash or bank account", utils.ErrorInvalidDocumentState, paidFrom.Code)
	}
	return nil
}

func CreateDailyExpense(ctx context.Context, tc tenant.Context, input *NewDailyExpense) (*DailyExpense, error) {
	tenantId, err := tc.TenantId()
	if err != nil {
		return nil, err
	}
	db := config.GetDB()
	if err := input.validate(ctx, db, tenantId); err != nil {
		return nil, err
	}

	expense := DailyExpense{
		TenantId:    tenantId,
		ExpenseDate: input.ExpenseDate,
		AccountId:   input.AccountId,
		PaidFromId:  input.PaidFromId,
		Amount:      input.Amount,
		Description: input.Description,
	}
	if err := db.WithContext(ctx).Create(&expense).Error; err != nil {
		return nil, err
	}
	return &expense, nil
}

func GetDailyExpense(ctx context.Context, tc tenant.Context, id int) (*DailyExpense, error) {
	tenantId, err := tc.TenantId()
	if err != nil {
		return nil, err
	}
	return utils.FetchModel[DailyExpense](ctx, tenantId, id)
}
