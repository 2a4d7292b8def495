package models

import "time"

// Budget is a monthly spending limit for one category.
// At most one budget may exist per (user, category, month, year);
// the composite unique index enforces this under concurrent creates.
type Budget struct {
	ID         uint   `gorm:"primaryKey"`
	UserID     uint   `gorm:"uniqueIndex:idx_budget_tuple;not null"`
	Category   string `gorm:"size:32;uniqueIndex:idx_budget_tuple;not null"`
	AmountCent int64  `gorm:"not null"`
	Month      int    `gorm:"uniqueIndex:idx_budget_tuple;not null"` // 1-12
	Year       int    `gorm:"uniqueIndex:idx_budget_tuple;not null"` // 2000-2100
	// No column default: a default tag would make GORM skip the field on
	// insert when it is false, so the handler sets Active explicitly.
	Active    bool
	Notes     string `gorm:"size:500"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
