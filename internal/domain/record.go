package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DateFormat is the calendar date layout records are stored with. It sorts
// lexicographically in chronological order.
const DateFormat = "2006-01-02"

// Currency is the single currency every amount is expressed in.
const Currency = "TRY"

type PaymentStatus string

const (
	StatusUnpaid PaymentStatus = "Unpaid"
	StatusPaid   PaymentStatus = "Paid"
)

// ParsePaymentStatus accepts the canonical values and the Turkish labels
// written by older exports.
func ParsePaymentStatus(s string) (PaymentStatus, error) {
	switch strings.TrimSpace(s) {
	case "Unpaid", "unpaid", "Ödenmedi":
		return StatusUnpaid, nil
	case "Paid", "paid", "Ödendi":
		return StatusPaid, nil
	}
	return "", fmt.Errorf("%w: payment status %q", ErrInvalidInput, s)
}

// Label is the Turkish wording used on statements and receipts.
func (s PaymentStatus) Label() string {
	if s == StatusPaid {
		return "Ödendi"
	}
	return "Ödenmedi"
}

// Record is one dated transaction line against a customer.
type Record struct {
	ID            uint            `gorm:"primaryKey"`
	Ref           uuid.UUID       `gorm:"type:text;uniqueIndex"`
	CustomerID    uint            `gorm:"not null;index:idx_records_customer_id"`
	Date          string          `gorm:"size:10;not null;index:idx_records_date"`
	Description   string          `gorm:"type:text;not null"`
	DebtAmount    decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	PaymentAmount decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	PaymentStatus PaymentStatus   `gorm:"size:16;not null;default:Unpaid"`
	ItemCode1     string          `gorm:"size:60"`
	ItemCode2     string          `gorm:"size:60"`
	Unit          string          `gorm:"size:30"`
	CreatedAt     time.Time

	RemainingDebt decimal.Decimal `gorm:"-"`
}

// NewRecord is the caller-supplied part of a record.
type NewRecord struct {
	CustomerID    uint
	Date          string
	Description   string
	DebtAmount    decimal.Decimal
	PaymentAmount decimal.Decimal
	// PaymentStatus may be left empty; it then follows the payment amount.
	PaymentStatus PaymentStatus
	ItemCode1     string
	ItemCode2     string
	Unit          string
}

// Normalize trims text fields, fills the default status and validates the
// record. It does not check that the customer exists.
func (n *NewRecord) Normalize() error {
	n.Description = strings.TrimSpace(n.Description)
	n.Date = strings.TrimSpace(n.Date)
	if n.Description == "" {
		return fmt.Errorf("%w: description is empty", ErrInvalidInput)
	}
	if _, err := time.Parse(DateFormat, n.Date); err != nil {
		return fmt.Errorf("%w: date %q", ErrInvalidInput, n.Date)
	}
	if n.DebtAmount.IsNegative() || n.PaymentAmount.IsNegative() {
		return fmt.Errorf("%w: amounts must not be negative", ErrInvalidInput)
	}
	switch n.PaymentStatus {
	case "":
		n.PaymentStatus = DefaultStatus(n.PaymentAmount)
	case StatusPaid, StatusUnpaid:
	default:
		st, err := ParsePaymentStatus(string(n.PaymentStatus))
		if err != nil {
			return err
		}
		n.PaymentStatus = st
	}
	return nil
}

// DefaultStatus is Paid when a payment was entered, Unpaid otherwise.
func DefaultStatus(payment decimal.Decimal) PaymentStatus {
	if payment.IsPositive() {
		return StatusPaid
	}
	return StatusUnpaid
}
