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

// Party is a customer or supplier. The stored opening balance is a one-time
// unposted amount converted into a PartyOpening journal entry when the party
// is first persisted.
type Party struct {
	ID                    int             `gorm:"primary_key" json:"id"`
	TenantId              string          `gorm:"size:64;not null;index;index:uniq_party,unique" json:"tenant_id"`
	Name                  string          `gorm:"size:200;not null;index:uniq_party,unique" json:"name" binding:"required"`
	PartyType             PartyType       `gorm:"size:10;not null;index;index:uniq_party,unique" json:"party_type" binding:"required"`
	Phone                 string          `gorm:"size:50" json:"phone"`
	Address               string          `gorm:"type:text" json:"address"`
	City                  string          `gorm:"size:100" json:"city"`
	OpeningBalance        decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"opening_balance"`
	OpeningBalanceIsDebit *bool           `gorm:"not null;default:true" json:"opening_balance_is_debit"`
	IsActive              *bool           `gorm:"not null;default:true" json:"is_active"`
	CreatedAt             time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt             time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewParty struct {
	Name                  string          `json:"name" binding:"required"`
	PartyType             PartyType       `json:"party_type" binding:"required"`
	Phone                 string          `json:"phone"`
	Address               string          `json:"address"`
	City                  string          `json:"city"`
	OpeningBalance        decimal.Decimal `json:"opening_balance"`
	OpeningBalanceIsDebit bool            `json:"opening_balance_is_debit"`
}

func (input *NewParty) validate(ctx context.Context, tenantId string) error {
	switch input.PartyType {
	case PartyCustomer, PartySupplier:
	default:
		return fmt.Errorf("%w: party type must be CUSTOMER or SUPPLIER", utils.ErrorInvalidDocumentState)
	}
	var count int64
	db := config.GetDB()
	if err := db.WithContext(ctx).Model(&Party{}).
		Where("tenant_id = ? AND name = ? AND party_type = ?", tenantId, input.Name, input.PartyType).
		Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return fmt.Errorf("duplicate party %q", input.Name)
	}
	return nil
}

// controlCodeFor maps a party type to its control account code.
func controlCodeFor(partyType PartyType) string {
	if partyType == PartyCustomer {
		return AccountCodeCustomerControl
	}
	return AccountCodeSupplierControl
}

// CreateParty persists the party and immediately converts any positive
// opening balance into one journal entry against Opening Balances (3000).
// The PartyOpening source key keeps the conversion one-time even if the
// create is retried after a partial failure.
func CreateParty(ctx context.Context, tc tenant.Context, input *NewParty) (*Party, error) {
	tenantId, err := tc.TenantId()
	if err != nil {
		return nil, err
	}
	if err := input.validate(ctx, tenantId); err != nil {
		return nil, err
	}

	opening := input.OpeningBalance
	if opening.IsNegative() {
		opening = opening.Neg()
	}
	isDebit := input.OpeningBalanceIsDebit
	party := Party{
		TenantId:              tenantId,
		Name:                  input.Name,
		PartyType:             input.PartyType,
		Phone:                 input.Phone,
		Address:               input.Address,
		City:                  input.City,
		OpeningBalance:        opening,
		OpeningBalanceIsDebit: &isDebit,
		IsActive:              utils.NewTrue(),
	}

	db := config.GetDB()
	tx := db.Begin()
	if err := tx.WithContext(ctx).Create(&party).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := postOpeningBalance(ctx, tx, &party); err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	return &party, nil
}

// postOpeningBalance writes the one-time opening journal entry.
//
// CUSTOMER: debit opening => Dr Customer Control / Cr Opening Balances
// SUPPLIER: credit opening => Dr Opening Balances... reversed per side.
func postOpeningBalance(ctx context.Context, tx *gorm.DB, party *Party) error {
	if !party.OpeningBalance.IsPositive() {
		return nil
	}

	control, err := GetOrCreateSystemAccount(ctx, tx, party.TenantId, controlCodeFor(party.PartyType))
	if err != nil {
		return err
	}
	opening, err := GetOrCreateSystemAccount(ctx, tx, party.TenantId, AccountCodeOpeningBalances)
	if err != nil {
		return err
	}

	isDebit := party.OpeningBalanceIsDebit != nil && *party.OpeningBalanceIsDebit

	var debitId, creditId int
	if party.PartyType == PartyCustomer {
		if isDebit {
			debitId, creditId = control.ID, opening.ID
		} else {
			debitId, creditId = opening.ID, control.ID
		}
	} else {
		if isDebit {
			debitId, creditId = opening.ID, control.ID
		} else {
			debitId, creditId = control.ID, opening.ID
		}
	}

	_, err = AppendJournalIfAbsent(ctx, tx, &JournalEntry{
		TenantId:        party.TenantId,
		EntryDate:       time.Now().UTC().Truncate(24 * time.Hour),
		Description:     fmt.Sprintf("Opening balance - %s (%s)", party.Name, party.PartyType),
		DebitAccountId:  debitId,
		CreditAccountId: creditId,
		Amount:          party.OpeningBalance,
		SourceKind:      SourcePartyOpening,
		SourceId:        party.ID,
	})
	return err
}

func GetParty(ctx context.Context, tc tenant.Context, id int) (*Party, error) {
	tenantId, err := tc.TenantId()
	if err != nil {
		return nil, err
	}
	return utils.FetchModel[Party](ctx, tenantId, id)
}

func GetParties(ctx context.Context, tc tenant.Context, partyType *PartyType) ([]*Party, error) {
	tenantId, err := tc.TenantId()
	if err != nil {
		return nil, err
	}
	db := config.GetDB()
	dbCtx := db.WithContext(ctx).Where("tenant_id = ?", tenantId)
	if partyType != nil {
		dbCtx = dbCtx.Where("party_type = ?", *partyType)
	}
	var results []*Party
	if err := dbCtx.Order("name").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
