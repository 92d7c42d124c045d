package posting

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/app-roznamcha/roznamcha/config"
	"github.com/app-roznamcha/roznamcha/models"
	"github.com/app-roznamcha/roznamcha/tenant"
	"github.com/app-roznamcha/roznamcha/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PostPayment posts a manual payment or adjustment.
func PostPayment(ctx context.Context, tc tenant.Context, id int) error {
	tenantId, err := tc.TenantId()
	if err != nil {
		return err
	}
	tx := config.GetDB().Begin()
	if tx.Error != nil {
		return tx.Error
	}

	payment, err := utils.FetchModelForUpdate[models.Payment](ctx, tx, tenantId, id)
	if err != nil {
		tx.Rollback()
		return err
	}
	if err := postPaymentTx(ctx, tx, tenantId, payment); err != nil {
		tx.Rollback()
		return err
	}
	return commit(tx, "PostPayment", id)
}

// postPaymentTx is the shared posting core, also entered by invoice
// posting for auxiliary payments. Caller owns the transaction.
func postPaymentTx(ctx context.Context, tx *gorm.DB, tenantId string, payment *models.Payment) error {
	if payment.Posted {
		return nil
	}
	if !payment.Amount.IsPositive() {
		return nil
	}

	party, err := fetchTenantRow[models.Party](ctx, tx, tenantId, payment.PartyId)
	if err != nil {
		return err
	}
	controlCode, err := controlAccountCode(party.PartyType)
	if err != nil {
		return err
	}
	controlId, err := systemAccount(ctx, tx, tenantId, controlCode)
	if err != nil {
		return err
	}

	var debitId, creditId int
	var description string
	if payment.IsAdjustment {
		openingId, err := systemAccount(ctx, tx, tenantId, models.AccountCodeOpeningBalances)
		if err != nil {
			return err
		}
		switch payment.AdjustmentSide {
		case models.AdjustmentDr:
			debitId, creditId = controlId, openingId
		case models.AdjustmentCr:
			debitId, creditId = openingId, controlId
		default:
			return fmt.Errorf("%w: adjustment requires a DR or CR side", utils.ErrorInvalidDocumentState)
		}
		description = fmt.Sprintf("Balance adjustment (%s) for %s", payment.AdjustmentSide, party.Name)
	} else {
		if payment.AccountId <= 0 {
			return fmt.Errorf("%w: normal payment requires a cash or bank account", utils.ErrorInvalidDocumentState)
		}
		account, err := fetchTenantRow[models.Account](ctx, tx, tenantId, payment.AccountId)
		if err != nil {
			return err
		}
		if account.IsCashOrBank == nil || !*account.IsCashOrBank {
			return fmt.Errorf("%w: account %s is not a cash or bank account", utils.ErrorInvalidDocumentState, account.Code)
		}
		switch payment.Direction {
		case models.PaymentIn:
			debitId, creditId = account.ID, controlId
		case models.PaymentOut:
			debitId, creditId = controlId, account.ID
		default:
			return fmt.Errorf("%w: unknown payment direction %q", utils.ErrorInvalidDocumentState, payment.Direction)
		}
		description = fmt.Sprintf("Payment %s for %s", payment.Direction, party.Name)
	}

	_, err = models.AppendJournalIfAbsent(ctx, tx, &models.JournalEntry{
		TenantId:        tenantId,
		EntryDate:       payment.PaymentDate,
		Description:     description,
		DebitAccountId:  debitId,
		CreditAccountId: creditId,
		Amount:          payment.Amount,
		SourceKind:      models.SourcePayment,
		SourceId:        payment.ID,
	})
	if err != nil {
		return err
	}
	return markPosted(ctx, tx, &models.Payment{}, tenantId, payment.ID)
}

// ensureInvoicePayment creates and posts the single auxiliary payment
// for a FULL or PARTIAL invoice. The invoice row lock held by the
// caller serializes this path, and the source lookup makes retries
// after a crash converge on the existing record.
func ensureInvoicePayment(ctx context.Context, tx *gorm.DB, tenantId string, partyId int,
	direction models.PaymentDirection, accountId int, amount decimal.Decimal,
	date time.Time, kind models.SourceKind, sourceId int) error {

	existing, err := models.GetPaymentBySource(ctx, tx, tenantId, kind, sourceId)
	if err == nil {
		if existing.Posted {
			return nil
		}
		return postPaymentTx(ctx, tx, tenantId, existing)
	}
	if !errors.Is(err, utils.ErrorRecordNotFound) {
		return err
	}

	payment := models.Payment{
		TenantId:    tenantId,
		PartyId:     partyId,
		Direction:   direction,
		Amount:      amount,
		PaymentDate: date,
		Notes:       fmt.Sprintf("Auto payment for %s #%d", kind, sourceId),
		AccountId:   accountId,
		SourceKind:  kind,
		SourceId:    sourceId,
	}
	if err := tx.WithContext(ctx).Create(&payment).Error; err != nil {
		return err
	}
	return postPaymentTx(ctx, tx, tenantId, &payment)
}
