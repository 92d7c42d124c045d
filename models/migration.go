package models

import (
	"log"

	"github.com/app-roznamcha/roznamcha/config"
)

func MigrateTable() {
	db := config.GetDB()

	err := db.AutoMigrate(
		&Account{}, &Party{}, &Product{},
		&JournalEntry{},
		&SalesInvoice{}, &SalesInvoiceItem{},
		&PurchaseInvoice{}, &PurchaseInvoiceItem{},
		&SalesReturn{}, &SalesReturnItem{},
		&PurchaseReturn{}, &PurchaseReturnItem{},
		&Payment{}, &DailyExpense{}, &CashBankTransfer{}, &StockAdjustment{},
	)
	if err != nil {
		log.Fatal(err)
	}
}
