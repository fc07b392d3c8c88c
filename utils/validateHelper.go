package utils

import (
	"context"
	"reflect"

	"github.com/warungku/pos_backend/config"
)

// check if id exists, using warung_id in WHERE, return RecordNotFound Error
func ValidateResourceId[T any](ctx context.Context, warungId int, id interface{}) error {

	count, err := ResourceCountWhere[T](ctx, warungId, "id = ?", id)
	if err != nil {
		return err
	}
	if count <= 0 {
		return ErrorRecordNotFound
	}

	return nil
}

// check if ALL ids exist, using warung_id in WHERE, return RecordNotFound Error
func ValidateResourcesId[M any, ID comparable](ctx context.Context, warungId int, ids []ID) error {
	unqIds := UniqueSlice(ids)

	count, err := ResourceCountWhere[M](ctx, warungId, "id IN ?", unqIds)
	if err != nil {
		return err
	}
	if count != int64(len(unqIds)) {
		return ErrorRecordNotFound
	}

	return nil
}

// validate input for both create & update. (exceptId = 0 for create)
func ValidateUnique[T any](ctx context.Context, warungId int, column string, value interface{}, exceptId interface{}) error {
	var count int64
	var err error
	if reflect.ValueOf(exceptId).IsZero() {
		count, err = ResourceCountWhere[T](ctx, warungId, column+" = ?", value)
	} else {
		count, err = ResourceCountWhere[T](ctx, warungId, column+" = ? AND NOT id = ?", value, exceptId)
	}

	if err != nil {
		return err
	}
	if count > 0 {
		return ErrorDuplicate
	}
	return nil
}

// count records, using WHERE warung_id = ? AND $condition
// warungId can be zero to count across warungs
func ResourceCountWhere[T any](ctx context.Context, warungId int, condition string, value ...interface{}) (int64, error) {
	var model T

	db := config.GetDB()
	dbCtx := db.WithContext(ctx).Model(&model)
	var count int64
	if warungId > 0 {
		dbCtx = dbCtx.Where("warung_id = ?", warungId)
	}
	dbCtx = dbCtx.Where(condition, value...)
	if err := dbCtx.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
