package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Customer carries the credit standing used by deferred-credit (fiado)
// eligibility checks. The customer catalog itself is owned elsewhere.
type Customer struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name        string          `gorm:"not null"`
	CreditLimit decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	CurrentDebt decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Active      bool            `gorm:"not null;default:true"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// AvailableCredit is CreditLimit − CurrentDebt.
func (c *Customer) AvailableCredit() decimal.Decimal {
	return c.CreditLimit.Sub(c.CurrentDebt)
}
