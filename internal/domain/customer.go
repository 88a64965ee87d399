package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Customer is a named party whose running debt is tracked. Backup tags call
// it a creditor.
type Customer struct {
	ID        uint      `gorm:"primaryKey"`
	Name      string    `gorm:"size:140;not null;uniqueIndex"`
	Records   []Record  `gorm:"constraint:OnDelete:CASCADE"`
	CreatedAt time.Time
	UpdatedAt time.Time

	TotalDebt   decimal.Decimal `gorm:"-"`
	RecordCount int             `gorm:"-"`
}
