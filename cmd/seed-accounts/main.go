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

// Seeds (or repairs) the default chart of accounts for one tenant.
// Safe to run repeatedly.
func main() {
	tenantID := flag.String("tenant-id", "", "Required: tenant id (uuid)")
	flag.Parse()

	if strings.TrimSpace(*tenantID) == "" {
		fmt.Fprintln(os.Stderr, "--tenant-id is required")
		os.Exit(1)
	}

	config.ConnectDatabaseWithRetry()
	config.ConnectRedis()
	models.MigrateTable()

	tc := tenant.SuperAdmin().ActingFor(*tenantID)
	if err := models.SeedDefaultAccounts(context.Background(), tc); err != nil {
		fmt.Fprintf(os.Stderr, "seed failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("chart of accounts seeded for tenant %s\n", *tenantID)
}
