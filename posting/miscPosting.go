package posting

import (
	"context"
	"fmt"

	"github.com/app-roznamcha/roznamcha/config"
	"github.com/app-roznamcha/roznamcha/models"
	"github.com/app-roznamcha/roznamcha/tenant"
	"github.com/app-roznamcha/roznamcha/utils"
)

// PostDailyExpense debits the expense head and credits the paying cash
// or bank account.
func PostDailyExpense(ctx context.Context, tc tenant.Context, id int) error {
	tenantId, err := tc.TenantId()
	if err != nil {
		return err
	}
	tx := config.GetDB().Begin()
	if tx.Error != nil {
		return tx.Error
	}

	expense, err := utils.FetchModelForUpdate[models.DailyExpense](ctx, tx, tenantId, id)
	if err != nil {
		tx.Rollback()
		return err
	}
	if expense.Posted {
		tx.Rollback()
		return nil
	}
	if !expense.Amount.IsPositive() {
		tx.Rollback()
		return nil
	}

	paidFrom, err := fetchTenantRow[models.Account](ctx, tx, tenantId, expense.PaidFromId)
	if err != nil {
		tx.Rollback()
		return err
	}
	if paidFrom.IsCashOrBank == nil || !*paidFrom.IsCashOrBank {
		tx.Rollback()
		return fmt.Errorf("%w: account %s is not a cash or bank account", utils.ErrorInvalidDocumentState, paidFrom.Code)
	}

	_, err = models.AppendJournalIfAbsent(ctx, tx, &models.JournalEntry{
		TenantId:        tenantId,
		EntryDate:       expense.ExpenseDate,
		Description:     fmt.Sprintf("Daily expense #%d", expense.ID),
		DebitAccountId:  expense.AccountId,
		CreditAccountId: expense.PaidFromId,
		Amount:          expense.Amount,
		SourceKind:      models.SourceDailyExpense,
		SourceId:        expense.ID,
	})
	if err != nil {
		tx.Rollback()
		return err
	}
	if err := markPosted(ctx, tx, &models.DailyExpense{}, tenantId, expense.ID); err != nil {
		tx.Rollback()
		return err
	}
	return commit(tx, "PostDailyExpense", id)
}

// PostCashBankTransfer debits the destination account and credits the
// source account.
func PostCashBankTransfer(ctx context.Context, tc tenant.Context, id int) error {
	tenantId, err := tc.TenantId()
	if err != nil {
		return err
	}
	tx := config.GetDB().Begin()
	if tx.Error != nil {
		return tx.Error
	}

	transfer, err := utils.FetchModelForUpdate[models.CashBankTransfer](ctx, tx, tenantId, id)
	if err != nil {
		tx.Rollback()
		return err
	}
	if transfer.Posted {
		tx.Rollback()
		return nil
	}
	if !transfer.Amount.IsPositive() {
		tx.Rollback()
		return nil
	}
	if transfer.FromAccountId == transfer.ToAccountId {
		tx.Rollback()
		return fmt.Errorf("%w: transfer accounts must differ", utils.ErrorInvalidDocumentState)
	}

	_, err = models.AppendJournalIfAbsent(ctx, tx, &models.JournalEntry{
		TenantId:        tenantId,
		EntryDate:       transfer.TransferDate,
		Description:     fmt.Sprintf("Cash/bank transfer #%d", transfer.ID),
		DebitAccountId:  transfer.ToAccountId,
		CreditAccountId: transfer.FromAccountId,
		Amount:          transfer.Amount,
		SourceKind:      models.SourceCashBankTransfer,
		SourceId:        transfer.ID,
	})
	if err != nil {
		tx.Rollback()
		return err
	}
	if err := markPosted(ctx, tx, &models.CashBankTransfer{}, tenantId, transfer.ID); err != nil {
		tx.Rollback()
		return err
	}
	return commit(tx, "PostCashBankTransfer", id)
}

// PostStockAdjustment books quantity-times-cost into inventory (UP,
// against opening equity) or out of it (DOWN, to the write-off expense
// head), and moves the product counter by the signed quantity.
func PostStockAdjustment(ctx context.Context, tc tenant.Context, id int) error {
	tenantId, err := tc.TenantId()
	if err != nil {
		return err
	}
	tx := config.GetDB().Begin()
	if tx.Error != nil {
		return tx.Error
	}

	adjustment, err := utils.FetchModelForUpdate[models.StockAdjustment](ctx, tx, tenantId, id)
	if err != nil {
		tx.Rollback()
		return err
	}
	if adjustment.Posted {
		tx.Rollback()
		return nil
	}
	total := adjustment.CalculateTotal()
	if !total.IsPositive() {
		tx.Rollback()
		return nil
	}

	inventoryId, err := systemAccount(ctx, tx, tenantId, models.AccountCodeInventory)
	if err != nil {
		tx.Rollback()
		return err
	}

	var debitId, creditId int
	delta := adjustment.Quantity
	switch adjustment.Direction {
	case models.StockUp:
		openingId, err := systemAccount(ctx, tx, tenantId, models.AccountCodeOpeningBalances)
		if err != nil {
			tx.Rollback()
			return err
		}
		debitId, creditId = inventoryId, openingId
	case models.StockDown:
		writeOffId, err := systemAccount(ctx, tx, tenantId, models.AccountCodeInventoryWriteOff)
		if err != nil {
			tx.Rollback()
			return err
		}
		debitId, creditId = writeOffId, inventoryId
		delta = delta.Neg()
	default:
		tx.Rollback()
		return fmt.Errorf("%w: unknown stock adjustment direction %q", utils.ErrorInvalidDocumentState, adjustment.Direction)
	}

	created, err := models.AppendJournalIfAbsent(ctx, tx, &models.JournalEntry{
		TenantId:        tenantId,
		EntryDate:       adjustment.AdjustmentDate,
		Description:     fmt.Sprintf("Stock adjustment %s #%d", adjustment.Direction, adjustment.ID),
		DebitAccountId:  debitId,
		CreditAccountId: creditId,
		Amount:          total,
		SourceKind:      models.SourceStockAdjustment,
		SourceId:        adjustment.ID,
	})
	if err != nil {
		tx.Rollback()
		return err
	}
	if created {
		if err := models.AdjustStock(ctx, tx, tenantId, adjustment.ProductId, delta); err != nil {
			tx.Rollback()
			return err
		}
	}
	if err := markPosted(ctx, tx, &models.StockAdjustment{}, tenantId, adjustment.ID); err != nil {
		tx.Rollback()
		return err
	}
	return commit(tx, "PostStockAdjustment", id)
}
