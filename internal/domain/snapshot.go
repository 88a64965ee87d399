package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Snapshot is the full structured dump of the ledger, used for manual
// export and for the JSON sibling of every backup.
type Snapshot struct {
	ExportDate time.Time          `json:"export_date"`
	Customers  []SnapshotCustomer `json:"customers"`
}

type SnapshotCustomer struct {
	ID        uint             `json:"id"`
	Name      string           `json:"name"`
	CreatedAt time.Time        `json:"created_at"`
	Records   []SnapshotRecord `json:"records"`
}

type SnapshotRecord struct {
	Date          string          `json:"date"`
	Description   string          `json:"description"`
	DebtAmount    decimal.Decimal `json:"debt_amount"`
	PaymentAmount decimal.Decimal `json:"payment_amount"`
	PaymentStatus PaymentStatus   `json:"payment_status"`
	CreatedAt     time.Time       `json:"created_at"`
	ItemCode1     string          `json:"item_code_1,omitempty"`
	ItemCode2     string          `json:"item_code_2,omitempty"`
	Unit          string          `json:"unit,omitempty"`
}

// Backup describes one snapshot file in the backup directory.
type Backup struct {
	Path     string
	JSONPath string
	Tag      string
	Taken    time.Time
}
