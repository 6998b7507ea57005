package persistence

import (
	"strings"

	"github.com/restapi/backend/internal/domain/shared"
	"gorm.io/gorm/clause"
)

const defaultSortField = "created_at"

// ValidateSortOrder normalizes the sort order to ASC or DESC, DESC when unrecognized
func ValidateSortOrder(orderDir string) string {
	if strings.EqualFold(strings.TrimSpace(orderDir), "ASC") {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField returns sortField when it is whitelisted, defaultField otherwise
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// orderBy builds the ORDER BY column of a list query. Column names never come
// from the request unless whitelisted.
func orderBy(filter shared.Filter, allowedFields map[string]bool) clause.OrderByColumn {
	return clause.OrderByColumn{
		Column: clause.Column{Name: ValidateSortField(filter.OrderBy, allowedFields, defaultSortField)},
		Desc:   ValidateSortOrder(filter.OrderDir) == "DESC",
	}
}

// UserSortFields contains allowed sort fields for users
var UserSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
	"username":   true,
	"email":      true,
	"first_name": true,
	"last_name":  true,
}

// UserGroupSortFields contains allowed sort fields for user groups
var UserGroupSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
	"name":       true,
	"role":       true,
}

// LogRequestSortFields contains allowed sort fields for request logs
var LogRequestSortFields = map[string]bool{
	"created_at":  true,
	"status_code": true,
	"duration_ms": true,
	"path":        true,
}
