package persistence

import (
	"errors"

	"github.com/autocare/platform/internal/domain/shared"
	"gorm.io/gorm"
)

// translate maps GORM errors onto domain errors
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return shared.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return shared.ErrAlreadyExists
	}
	return err
}

// paginate applies whitelisted ordering, offset and limit
func paginate(query *gorm.DB, filter shared.Filter, allowed map[string]bool, defaultField string) *gorm.DB {
	filter.Normalize()
	field := ValidateSortField(filter.OrderBy, allowed, defaultField)
	dir := ValidateSortOrder(filter.OrderDir)
	return query.Order(field + " " + dir).Offset(filter.Offset()).Limit(filter.PageSize)
}

// likeOp returns the case-insensitive LIKE operator of the dialect.
// SQLite LIKE already ignores ASCII case.
func likeOp(db *gorm.DB) string {
	if db.Dialector.Name() == "postgres" {
		return "ILIKE"
	}
	return "LIKE"
}

func searchPattern(s string) string {
	return "%" + s + "%"
}

// rowsOrNotFound turns a zero-row write into ErrNotFound
func rowsOrNotFound(result *gorm.DB) error {
	if result.Error != nil {
		return translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}
