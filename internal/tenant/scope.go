package tenant

import "gorm.io/gorm"

// Scope restricts a gorm query to a single company. Every tenant-owned
// table carries a company_id column.
func Scope(companyID string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("company_id = ?", companyID)
	}
}
