// Package option provides composable query modifiers for gorm statements.
package option

import (
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/smallbiznis/claimdesk/pkg/db/pagination"
)

type Option interface {
	Apply(stmt *gorm.DB) *gorm.DB
}

type optionFunc func(stmt *gorm.DB) *gorm.DB

func (f optionFunc) Apply(stmt *gorm.DB) *gorm.DB { return f(stmt) }

// ApplyPagination turns a page token plus size into a keyset predicate and
// limit. One extra row is fetched so callers can detect a next page.
func ApplyPagination(page pagination.Pagination) Option {
	return optionFunc(func(stmt *gorm.DB) *gorm.DB {
		if token := strings.TrimSpace(page.PageToken); token != "" {
			cursor, err := pagination.DecodeCursor(token)
			if err == nil {
				if createdAt, perr := time.Parse(time.RFC3339, cursor.CreatedAt); perr == nil {
					stmt = stmt.Where("(created_at < ?) OR (created_at = ? AND id < ?)",
						createdAt, createdAt, cursor.ID)
				}
			}
		}
		if page.PageSize > 0 {
			stmt = stmt.Limit(page.PageSize + 1)
		}
		return stmt
	})
}
