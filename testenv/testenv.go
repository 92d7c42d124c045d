// Package testenv boots an in-memory sqlite database for package tests
// so they run without a MySQL container. Each Setup call opens a fresh
// schema; each NewTenant call yields an isolated company.
package testenv

import (
	"fmt"
	"testing"

	"github.com/app-roznamcha/roznamcha/config"
	"github.com/app-roznamcha/roznamcha/models"
	"github.com/app-roznamcha/roznamcha/tenant"
	"github.com/google/uuid"
)

// Setup connects the global DB handle to a fresh in-memory database,
// migrates the schema, and returns an owner context for a new company.
func Setup(t *testing.T) tenant.Context {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	if err := config.ConnectSQLiteDatabase(dsn); err != nil {
		t.Fatalf("connect sqlite: %v", err)
	}
	models.MigrateTable()
	return NewTenant()
}

// NewTenant returns an owner context for a second company on the same
// database, used by isolation tests.
func NewTenant() tenant.Context {
	return tenant.Owner(uuid.NewString())
}
