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

// Payment settles a party balance. A normal payment moves cash, an
// adjustment corrects the party balance against opening equity without
// touching any cash or bank account.
//
// Auxiliary payments created by invoice posting carry the invoice's
// source reference in (SourceKind, SourceId); manual payments leave both
// empty.
type Payment struct {
	ID          int              `gorm:"primary_key" json:"id"`
	TenantId    string           `gorm:"size:64;not null;index;index:idx_pay_tenant_date,priority:1" json:"tenant_id"`
	PartyId     int              `gorm:"index;not null" json:"party_id" binding:"required"`
	Direction   PaymentDirection `gorm:"size:5;not null" json:"direction" binding:"required"`
	Amount      decimal.Decimal  `gorm:"type:decimal(20,4);not null" json:"amount"`
	PaymentDate time.Time        `gorm:"not null;index:idx_pay_tenant_date,priority:2" json:"payment_date" binding:"required"`
	Notes       string           `gorm:"type:text" json:"notes"`
	Posted      bool             `gorm:"not null;default:false;index" json:"posted"`

	// cash or bank account; required unless IsAdjustment
	AccountId int `gorm:"index" json:"account_id"`

	IsAdjustment   bool           `gorm:"not null;default:false" json:"is_adjustment"`
	AdjustmentSide AdjustmentSide `gorm:"size:2" json:"adjustment_side"`

	SourceKind SourceKind `gorm:"size:30;index:idx_pay_source,priority:1" json:"source_kind"`
	SourceId   int        `gorm:"index:idx_pay_source,priority:2" json:"source_id"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewPayment struct {
	PartyId        int              `json:"party_id" binding:"required"`
	Direction      PaymentDirection `json:"direction" binding:"required"`
	Amount         decimal.Decimal  `json:"amount" binding:"required"`
	PaymentDate    time.Time        `json:"payment_date" binding:"required"`
	Notes          string           `json:"notes"`
	AccountId      int              `json:"account_id"`
	IsAdjustment   bool             `json:"is_adjustment"`
	AdjustmentSide AdjustmentSide   `json:"adjustment_side"`
}

func (input *NewPayment) validate(ctx context.Context, tx *gorm.DB, tenantId string) error {
	if input.Direction != PaymentIn && input.Direction != PaymentOut {
		return fmt.Errorf("%w: unknown payment direction %q", utils.ErrorInvalidDocumentState, input.Direction)
	}
	if err := utils.ValidateTenantOwnership[Party](ctx, tx, tenantId, "party", input.PartyId); err != nil {
		return err
	}
	if input.IsAdjustment {
		if input.AdjustmentSide != AdjustmentDr && input.AdjustmentSide != AdjustmentCr {
			return fmt.Errorf("%w: adjustment requires a DR or CR side", utils.ErrorInvalidDocumentState)
		}
		return nil
	}
	if input.AccountId <= 0 {
		return fmt.Errorf("%w: normal payment requires a cash or bank account", utils.ErrorInvalidDocumentState)
	}
	if err := utils.ValidateTenantOwnership[Account](ctx, tx, tenantId, "payment account", input.AccountId); err != nil {
		return err
	}
	account, err := utils.FetchModel[Account](ctx, tenantId, input.AccountId)
	if err != nil {
		return err
	}
	if account.IsCashOrBank == nil || !*account.IsCashOrBank {
		return fmt.Errorf("%w: account %s is not a cash or bank account", utils.ErrorInvalidDocumentState, account.Code)
	}
	return nil
}

func CreatePayment(ctx context.Context, tc tenant.Context, input *NewPayment) (*Payment, error) {
	tenantId, err := tc.TenantId()
	if err != nil {
		return nil, err
	}
	db := config.GetDB()
	if err := input.validate(ctx, db, tenantId); err != nil {
		return nil, err
	}

	payment := Payment{
		TenantId:       tenantId,
		PartyId:        input.PartyId,
		Direction:      input.Direction,
		Amount:         input.Amount,
		PaymentDate:    input.PaymentDate,
		Notes:          input.Notes,
		AccountId:      input.AccountId,
		IsAdjustment:   input.IsAdjustment,
		AdjustmentSide: input.AdjustmentSide,
	}
	if err := db.WithContext(ctx).Create(&payment).Error; err != nil {
		return nil, err
	}
	return &payment, nil
}

func GetPayment(ctx context.Context, tc tenant.Context, id int) (*Payment, error) {
	tenantId, err := tc.TenantId()
	if err != nil {
		return nil, err
	}
	return utils.FetchModel[Payment](ctx, tenantId, id)
}

// GetPaymentBySource looks up the auxiliary payment created for an
// invoice, if any.
func GetPaymentBySource(ctx context.Context, tx *gorm.DB, tenantId string, kind SourceKind, sourceId int) (*Payment, error) {
	var payment Payment
	err := tx.WithContext(ctx).
		Where("tenant_id = ? AND source_kind = ? AND source_id = ?", tenantId, kind, sourceId).
		First(&payment).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, utils.ErrorRecordNotFound
		}
		return nil, err
	}
	return &payment, nil
}
