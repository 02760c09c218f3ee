package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Sale is the persisted snapshot of a confirmed checkout.
// Status: "completed" | "void"
type Sale struct {
	ID                uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	TicketNumber      int64     `gorm:"uniqueIndex;not null"`
	RegisterSessionID uuid.UUID `gorm:"type:uuid;index;not null"`
	OperatorID        uuid.UUID `gorm:"type:uuid;not null"`
	CustomerID        *uuid.UUID `gorm:"type:uuid;index"`
	Subtotal          decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	DiscountTotal     decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Total             decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Status            string          `gorm:"type:varchar(20);not null;default:'completed'"`
	CreatedAt         time.Time

	Items    []SaleItem    `gorm:"foreignKey:SaleID"`
	Payments []SalePayment `gorm:"foreignKey:SaleID"`
}

// SaleItem freezes one cart line at confirmation time. PromotionID is set
// only when the automatic promotion was the discount in effect.
type SaleItem struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SaleID    uuid.UUID `gorm:"type:uuid;index;not null"`
	ProductID uuid.UUID `gorm:"type:uuid;not null"`
	Name      string    `gorm:"not null"`
	Quantity  int       `gorm:"not null;default:0"`
	Weight    *decimal.Decimal `gorm:"type:decimal(10,3)"`
	UnitPrice decimal.Decimal  `gorm:"type:decimal(10,2);not null"`
	Discount  decimal.Decimal  `gorm:"type:decimal(12,2);not null;default:0"`
	Subtotal  decimal.Decimal  `gorm:"type:decimal(12,2);not null"`
	PromotionID *uuid.UUID     `gorm:"type:uuid"`
}

// SalePayment is one leg of a (possibly split) payment.
type SalePayment struct {
	ID               uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SaleID           uuid.UUID       `gorm:"type:uuid;index;not null"`
	Method           string          `gorm:"type:varchar(20);not null"`
	Amount           decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Change           decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	InstallmentCount int             `gorm:"not null;default:1"`

	Installments []Installment `gorm:"foreignKey:SalePaymentID"`
}

// Installment is one due-date leg of an installment schedule. The amounts
// of a schedule always sum exactly to the parent payment amount.
type Installment struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SalePaymentID uuid.UUID       `gorm:"type:uuid;index;not null"`
	Sequence      int             `gorm:"not null"`
	DueDate       time.Time       `gorm:"not null"`
	Amount        decimal.Decimal `gorm:"type:decimal(12,2);not null"`
}
