package models

import (
	"context"
	"errors"

	"github.com/go-sql-driver/mysql"
	"github.com/warungku/pos_backend/utils"
)

const mysqlDuplicateEntry = 1062

// IsDuplicateEntryError reports whether err is a MySQL duplicate-entry
// violation (unique index race lost to a concurrent writer).
func IsDuplicateEntryError(err error) bool {
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		return mysqlErr.Number == mysqlDuplicateEntry
	}
	return false
}

// ValidateWarungOwner checks the warung exists and belongs to the session
// user. Foreign warungs report NotFound rather than Forbidden so ids cannot
// be probed.
func ValidateWarungOwner(ctx context.Context, warungId int) error {
	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok || userId == 0 {
		return utils.ErrorUnauthenticated
	}

	count, err := utils.ResourceCountWhere[Warung](ctx, 0, "id = ? AND owner_id = ?", warungId, userId)
	if err != nil {
		return err
	}
	if count <= 0 {
		return utils.ErrorRecordNotFound
	}
	return nil
}
