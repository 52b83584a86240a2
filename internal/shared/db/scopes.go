package db

import (
	"gorm.io/gorm"
)

// NotDeleted is a GORM scope that filters out soft-deleted records. Ranges and
// payments carry an explicit deleted_at tombstone column instead of
// gorm.DeletedAt, so every read path has to apply this filter itself.
//
// Example usage:
//
//	db.Model(&Model{}).Scopes(db.NotDeleted()).Where("event_id = ?", id).Find(&results)
func NotDeleted() func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("deleted_at IS NULL")
	}
}

// NotDeletedWithAlias is a GORM scope that filters out soft-deleted records
// with a table alias. Use this when joining tables and need to specify which
// table's deleted_at to check.
//
// Example usage:
//
//	db.Table("payments p").Scopes(db.NotDeletedWithAlias("p")).Find(&results)
func NotDeletedWithAlias(alias string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where(alias + ".deleted_at IS NULL")
	}
}
