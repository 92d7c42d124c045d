package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/app-roznamcha/roznamcha/config"
	"github.com/app-roznamcha/roznamcha/models"
	"github.com/app-roznamcha/roznamcha/tenant"
)

// Hard-deletes every record of one tenant: documents, journal, parties,
// products, accounts. Irreversible.
func main() {
	tenantID := flag.String("tenant-id", "", "Required: tenant id (uuid)")
	dryRun := flag.Bool("dry-run", true, "Show counts only (no writes)")
	confirm := flag.String("confirm", "", "Type PURGE to proceed when dry-run=false")
	flag.Parse()

	if strings.TrimSpace(*tenantID) == "" {
		fmt.Fprintln(os.Stderr, "--tenant-id is required")
		os.Exit(1)
	}
	if !*dryRun && strings.TrimSpace(*confirm) != "PURGE" {
		fmt.Fprintln(os.Stderr, "set --confirm=PURGE to proceed")
		os.Exit(1)
	}

	config.ConnectDatabaseWithRetry()
	config.ConnectRedis()
	db := config.GetDB()

	ctx := context.Background()
	if *dryRun {
		for _, table := range []string{
			"accounts", "parties", "products", "journal_entries",
			"sales_invoices", "purchase_invoices", "sales_returns", "purchase_returns",
			"payments", "daily_expenses", "cash_bank_transfers", "stock_adjustments",
		} {
			var count int64
			if err := db.Table(table).Where("tenant_id = ?", *tenantID).Count(&count).Error; err != nil {
				fmt.Fprintf(os.Stderr, "count %s: %v\n", table, err)
				os.Exit(1)
			}
			fmt.Printf("%-24s %d\n", table, count)
		}
		return
	}

	tc := tenant.SuperAdmin().ActingFor(*tenantID)
	if err := models.PurgeTenant(ctx, tc); err != nil {
		fmt.Fprintf(os.Stderr, "purge failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("tenant %s purged\n", *tenantID)
}
