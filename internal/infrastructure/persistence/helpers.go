package persistence

import (
	"fmt"

	"github.com/gestion/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// orderableColumns limits ORDER BY to known column names to keep filter
// input out of raw SQL.
var orderableColumns = map[string]bool{
	"created_at":   true,
	"updated_at":   true,
	"due_date":     true,
	"issue_date":   true,
	"posting_date": true,
	"amount":       true,
	"status":       true,
	"number":       true,
	"code":         true,
}

func applyPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	orderBy := filter.OrderBy
	if !orderableColumns[orderBy] {
		orderBy = "created_at"
	}
	orderDir := "desc"
	if filter.OrderDir == "asc" {
		orderDir = "asc"
	}
	query = query.Order(fmt.Sprintf("%s %s", orderBy, orderDir))

	offset := (filter.Page - 1) * filter.PageSize
	return query.Offset(offset).Limit(filter.PageSize)
}
