package model

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PromotionKind selects the discount computation strategy.
type PromotionKind string

const (
	PromoPercentage  PromotionKind = "percentage"
	PromoFixed       PromotionKind = "fixed"
	PromoBuyXGetY    PromotionKind = "buy_x_get_y"
	PromoCombo       PromotionKind = "combo"
	PromoProgressive PromotionKind = "progressive"
	PromoHappyHour   PromotionKind = "happy_hour"
)

// Promotion is an automatic discount rule maintained by back office.
// Applicability: ProductID set → single product; Category set → whole
// category; neither set → every product.
type Promotion struct {
	ID   uuid.UUID     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name string        `gorm:"not null"`
	Kind PromotionKind `gorm:"type:varchar(20);not null"`
	// Value is a percent rate for percentage/happy_hour/progressive and a
	// currency amount for fixed/combo. Unused by buy_x_get_y.
	Value       decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0"`
	BuyQty      int             `gorm:"not null;default:0"`
	GetQty      int             `gorm:"not null;default:0"`
	MinQuantity int             `gorm:"not null;default:0"`
	MinValue    *decimal.Decimal `gorm:"type:decimal(10,2)"`
	// MaxDiscount caps the computed discount in currency; progressive rules
	// read it as the percent ceiling of the effective rate instead.
	MaxDiscount *decimal.Decimal `gorm:"type:decimal(10,2)"`

	StartDate time.Time `gorm:"not null"`
	EndDate   time.Time `gorm:"not null"`
	// StartTime/EndTime are "HH:MM" time-of-day bounds; both or neither.
	// No wraparound across midnight.
	StartTime *string `gorm:"type:varchar(5)"`
	EndTime   *string `gorm:"type:varchar(5)"`
	// DaysOfWeek is a comma-separated list of weekday numbers (0=Sunday).
	DaysOfWeek *string `gorm:"type:varchar(20)"`

	ProductID *uuid.UUID `gorm:"type:uuid;index"`
	Category  *string    `gorm:"type:varchar(100);index"`

	Priority int `gorm:"not null;default:0"`
	// IsCumulative is reserved for future cross-line stacking; the per-line
	// evaluator never stacks.
	IsCumulative bool `gorm:"not null;default:false"`
	Active       bool `gorm:"not null;default:true"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// WeekdaySet parses DaysOfWeek into a lookup set. Nil when unrestricted.
func (p *Promotion) WeekdaySet() map[time.Weekday]bool {
	if p.DaysOfWeek == nil || *p.DaysOfWeek == "" {
		return nil
	}
	set := make(map[time.Weekday]bool)
	for _, part := range strings.Split(*p.DaysOfWeek, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || n < 0 || n > 6 {
			continue
		}
		set[time.Weekday(n)] = true
	}
	return set
}
