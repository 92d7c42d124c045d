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

// Re-derives every product's stock counter from the posted document
// history. With --dry-run (the default) it only reports drift.
func main() {
	tenantID := flag.String("tenant-id", "", "Required: tenant id (uuid)")
	dryRun := flag.Bool("dry-run", true, "Report drift only (no writes)")
	flag.Parse()

	if strings.TrimSpace(*tenantID) == "" {
		fmt.Fprintln(os.Stderr, "--tenant-id is required")
		os.Exit(1)
	}

	config.ConnectDatabaseWithRetry()

	ctx := context.Background()
	tc := tenant.SuperAdmin().ActingFor(*tenantID)

	var (
		drifts []models.StockDrift
		err    error
	)
	if *dryRun {
		drifts, err = models.VerifyStockLevels(ctx, tc)
	} else {
		drifts, err = models.RebuildStockLevels(ctx, tc)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "stock rebuild failed: %v\n", err)
		os.Exit(1)
	}

	if len(drifts) == 0 {
		fmt.Println("no drift: all stock counters match the posted history")
		return
	}
	for _, d := range drifts {
		fmt.Printf("product %d (%s): stored=%s computed=%s\n", d.ProductId, d.Code, d.Stored, d.Computed)
	}
	if !*dryRun {
		fmt.Printf("%d counters rewritten\n", len(drifts))
	}
}
