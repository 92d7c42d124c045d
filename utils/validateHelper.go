package utils

import (
	"context"
	"fmt"
	"reflect"

	"github.com/app-roznamcha/roznamcha/config"
	"gorm.io/gorm"
)

// check if id exists under the tenant, return ErrorRecordNotFound otherwise
func ValidateResourceId[T any](ctx context.Context, tenantId string, id interface{}) error {

	count, err := ResourceCountWhere[T](ctx, tenantId, "id = ?", id)
	if err != nil {
		return err
	}
	if count <= 0 {
		return ErrorRecordNotFound
	}

	return nil
}

// check if ALL ids exist under the tenant
func ValidateResourcesId[M any, ID comparable](ctx context.Context, tenantId string, ids []ID) error {
	unqIds := UniqueSlice(ids)

	count, err := ResourceCountWhere[M](ctx, tenantId, "id IN ?", unqIds)
	if err != nil {
		return err
	}
	if count != int64(len(unqIds)) {
		return ErrorRecordNotFound
	}

	return nil
}

// ValidateTenantOwnership distinguishes a dangling reference from a
// cross-tenant one: an id that exists globally but not under the caller's
// tenant is ErrorCrossTenantReference, not merely ErrorRecordNotFound.
func ValidateTenantOwnership[T any](ctx context.Context, tx *gorm.DB, tenantId string, label string, id int) error {
	if id <= 0 {
		return fmt.Errorf("%w: %s is required", ErrorRecordNotFound, label)
	}
	var model T
	var count int64
	if err := tx.WithContext(ctx).Model(&model).
		Where("tenant_id = ? AND id = ?", tenantId, id).
		Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	if err := tx.WithContext(ctx).Model(&model).
		Where("id = ?", id).
		Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return fmt.Errorf("%w: %s %d", ErrorCrossTenantReference, label, id)
	}
	return fmt.Errorf("%w: %s %d", ErrorRecordNotFound, label, id)
}

func ValidateUnique[T any](ctx context.Context, tenantId string, column string, value interface{}, exceptId interface{}) error {
	var count int64
	var err error
	if reflect.ValueOf(exceptId).IsZero() {
		count, err = ResourceCountWhere[T](ctx, tenantId, column+" = ?", value)
	} else {
		count, err = ResourceCountWhere[T](ctx, tenantId, column+" = ? AND NOT id = ?", value, exceptId)
	}

	if err != nil {
		return err
	}
	if count > 0 {
		return fmt.Errorf("duplicate %s", column)
	}
	return nil
}

// count records, using WHERE tenant_id = ? AND $condition
func ResourceCountWhere[T any](ctx context.Context, tenantId string, condition string, value ...interface{}) (int64, error) {
	var model T

	db := config.GetDB()
	dbCtx := db.WithContext(ctx).Model(&model)
	var count int64
	if tenantId != "" {
		dbCtx.Where("tenant_id = ?", tenantId)
	}
	dbCtx.Where(condition, value...)
	if err := dbCtx.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
