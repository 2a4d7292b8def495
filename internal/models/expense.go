package models

import "time"

// Expense is a single spending record owned by one user.
// Amounts are stored in cents to avoid float drift: $12.34 = 1234.
type Expense struct {
	ID          uint      `gorm:"primaryKey"`
	UserID      uint      `gorm:"index;not null"`
	Description string    `gorm:"size:200;not null"`
	AmountCent  int64     `gorm:"not null"`
	Category    string    `gorm:"size:32;index;not null"`
	Date        time.Time `gorm:"index;not null"` // day the expense occurred, must not be in the future
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
