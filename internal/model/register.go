package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	RegisterOpen   = "open"
	RegisterClosed = "closed"
)

// RegisterSession is one shift of a cash register: opened with a float,
// mutated by every posted sale and manual cash movement, frozen on close.
// CashTotal is seeded with the opening balance, so the expected cash at
// close is CashTotal + deposits − withdrawals.
type RegisterSession struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ShiftNumber    int             `gorm:"uniqueIndex;not null"`
	OperatorID     uuid.UUID       `gorm:"type:uuid;not null"`
	OpeningBalance decimal.Decimal `gorm:"type:decimal(12,2);not null"`

	CashTotal     decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	PixTotal      decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	CreditTotal   decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	DebitTotal    decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	DeferredTotal decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	TotalSales    decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`

	Status string `gorm:"type:varchar(10);not null;default:'open'"`
	// Closing figures, set once by Close and never touched again.
	CountedCash  *decimal.Decimal `gorm:"type:decimal(12,2)"`
	ExpectedCash *decimal.Decimal `gorm:"type:decimal(12,2)"`
	// Difference = counted − expected. Signed, informational only.
	Difference *decimal.Decimal `gorm:"type:decimal(12,2)"`

	OpenedAt time.Time
	ClosedAt *time.Time

	Movements []CashMovement `gorm:"foreignKey:RegisterSessionID"`
}

const (
	MovementWithdrawal = "withdrawal"
	MovementDeposit    = "deposit"
)

// CashMovement is an immutable manual cash event inside a shift.
// Movements are never updated or deleted.
type CashMovement struct {
	ID                uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	RegisterSessionID uuid.UUID       `gorm:"type:uuid;index;not null"`
	Kind              string          `gorm:"type:varchar(20);not null"`
	Amount            decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Reason            string          `gorm:"not null"`
	OperatorID        uuid.UUID       `gorm:"type:uuid;not null"`
	CreatedAt         time.Time
}
