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

// CashBankTransfer moves money between two of the tenant's own cash or
// bank accounts.
type CashBankTransfer struct {
	ID            int             `gorm:"primary_key" json:"id"`
	TenantId      string          `gorm:"size:64;not null;index;index:idx_cbt_tenant_date,priority:1" json:"tenant_id"`
	TransferDate  time.Time       `gorm:"not null;index:idx_cbt_tenant_date,priority:2" json:"transfer_date" binding:"required"`
	FromAccountId int             `gorm:"index;not null" json:"from_account_id" binding:"required"`
	ToAccountId   int             `gorm:"index;not null" json:"to_account_id" binding:"required"`
	Amount        decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"amount"`
	Notes         string          `gorm:"type:text" json:"notes"`
	Posted        bool            `gorm:"not null;default:false;index" json:"posted"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewCashBankTransfer struct {
	TransferDate  time.Time       `json:"transfer_date" binding:"required"`
	FromAccountId int             `json:"from_account_id" binding:"required"`
	ToAccountId   int             `json:"to_account_id" binding:"required"`
	Amount        decimal.Decimal `json:"amount" binding:"required"`
	Notes         string          `json:"notes"`
}

func (input *NewCashBankTransfer) validate(ctx context.Context, tx *gorm.DB, tenantId string) error {
	if input.FromAccountId == input.ToAccountId {
		return fmt.Errorf("%w: transfer accounts must differ", utils.ErrorInvalidDocumentState)
	}
	for _, ref := range []struct {
		label string
		id    int
	}{
		{"from account", input.FromAccountId},
		{"to account", input.ToAccountId},
	} {
		if err := utils.ValidateTenantOwnership[Account](ctx, tx, tenantId, ref.label, ref.id); err != nil {
			return err
		}
		account, err := utils.FetchModel[Account](ctx, tenantId, ref.id)
		if err != nil {
			return err
		}
		if account.IsCashOrBank == nil || !*account.IsCashOrBank {
			return fmt.Errorf("%w: account %s is not a cash or bank account", utils.ErrorInvalidDocumentState, account.Code)
		}
	}
	return nil
}

func CreateCashBankTransfer(ctx context.Context, tc tenant.Context, input *NewCashBankTransfer) (*CashBankTransfer, error) {
	tenantId, err := tc.TenantId()
	if err != nil {
		return nil, err
	}
	db := config.GetDB()
	if err := input.validate(ctx, db, tenantId); err != nil {
		return nil, err
	}

	transfer := CashBankTransfer{
		TenantId:      tenantId,
		TransferDate:  input.TransferDate,
		FromAccountId: input.FromAccountId,
		ToAccountId:   input.ToAccountId,
		Amount:        input.Amount,
		Notes:         input.Notes,
	}
	if err := db.WithContext(ctx).Create(&transfer).Error; err != nil {
		return nil, err
	}
	return &transfer, nil
}

func GetCashBankTransfer(ctx context.Context, tc tenant.Context, id int) (*CashBankTransfer, error) {
	tenantId, err := tc.TenantId()
	if err != nil {
		return nil, err
	}
	return utils.FetchModel[CashBankTransfer](ctx, tenantId, id)
}
