package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is a read-only catalog entity from the core's point of view.
// The catalog service owns stock and pricing; the transaction core only
// reads products to build cart lines.
type Product struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Barcode   string          `gorm:"uniqueIndex;not null"`
	Name      string          `gorm:"index;not null"`
	Category  string          `gorm:"not null"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Unit      string          `gorm:"not null;default:'unit'"`
	// IsWeighted products are sold by weight (kg); they take a captured
	// weight instead of a unit quantity.
	IsWeighted bool `gorm:"not null;default:false"`
	Stock      int  `gorm:"not null;default:0"`
	MinStock   int  `gorm:"not null;default:5"`
	Active     bool `gorm:"not null;default:true"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
