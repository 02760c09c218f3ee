// Package cart owns the in-memory state of one sale in progress. Every
// mutation is followed by an explicit Recompute so totals never drift from
// the lines; the engine has no persistence and no knowledge of HTTP.
package cart

import (
	"errors"
	"time"

	"varejopos/internal/model"
	"varejopos/internal/promo"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type DiscountKind string

const (
	DiscountPercent DiscountKind = "percent"
	DiscountValue   DiscountKind = "value"
)

var (
	ErrLineNotFound    = errors.New("cart line not found")
	ErrWeightedProduct = errors.New("weighted product requires a captured weight")
	ErrUnitProduct     = errors.New("product is not sold by weight")
	ErrInvalidDiscount = errors.New("invalid discount")
	ErrInvalidWeight   = errors.New("weight must be greater than zero")
)

// ManualDiscount is an operator-entered discount, absolute or percent.
type ManualDiscount struct {
	Amount decimal.Decimal
	Kind   DiscountKind
}

// Line is one cart entry. Weight is set instead of Quantity for weighted
// products. Invariant after Recompute: 0 ≤ EffectiveSubtotal ≤ OriginalSubtotal.
type Line struct {
	ID             uuid.UUID
	Product        model.Product
	Quantity       int
	Weight         *decimal.Decimal
	ManualDiscount *ManualDiscount

	// Derived by Recompute.
	Applied           *promo.Applied
	OriginalSubtotal  decimal.Decimal
	EffectiveDiscount decimal.Decimal
	EffectiveSubtotal decimal.Decimal
}

// amount returns the quantity-or-weight multiplier for the line.
func (l *Line) amount() decimal.Decimal {
	if l.Weight != nil {
		return *l.Weight
	}
	return decimal.NewFromInt(int64(l.Quantity))
}

// Cart aggregates lines, an optional order-level discount and an optional
// loyalty redemption into a running total.
type Cart struct {
	ID    uuid.UUID
	lines []*Line

	orderDiscount     *ManualDiscount
	loyaltyRedemption decimal.Decimal

	subtotal            decimal.Decimal
	afterLinePromotions decimal.Decimal
	orderDiscountAmount decimal.Decimal
	total               decimal.Decimal
}

func New() *Cart {
	return &Cart{ID: uuid.New()}
}

// AddLine adds one unit of a unit-priced product, incrementing the
// existing line when the product is already in the cart. Weighted products
// must go through AddWeightedLine (the weight-capture step).
func (c *Cart) AddLine(p model.Product) (*Line, error) {
	if p.IsWeighted {
		return nil, ErrWeightedProduct
	}
	for _, l := range c.lines {
		if l.Weight == nil && l.Product.ID == p.ID {
			l.Quantity++
			return l, nil
		}
	}
	l := &Line{ID: uuid.New(), Product: p, Quantity: 1}
	c.lines = append(c.lines, l)
	return l, nil
}

// AddWeightedLine adds a weighted product with its captured weight.
// Each capture is its own line; weighted lines have no quantity stepper.
func (c *Cart) AddWeightedLine(p model.Product, weight decimal.Decimal) (*Line, error) {
	if !p.IsWeighted {
		return nil, ErrUnitProduct
	}
	if weight.Sign() <= 0 {
		return nil, ErrInvalidWeight
	}
	w := weight
	l := &Line{ID: uuid.New(), Product: p, Weight: &w}
	c.lines = append(c.lines, l)
	return l, nil
}

// SetQuantity changes a unit line's quantity; qty ≤ 0 removes the line.
func (c *Cart) SetQuantity(lineID uuid.UUID, qty int) error {
	l := c.find(lineID)
	if l == nil {
		return ErrLineNotFound
	}
	if l.Weight != nil {
		return ErrWeightedProduct
	}
	if qty <= 0 {
		c.RemoveLine(lineID)
		return nil
	}
	l.Quantity = qty
	return nil
}

func (c *Cart) RemoveLine(lineID uuid.UUID) {
	for i, l := range c.lines {
		if l.ID == lineID {
			c.lines = append(c.lines[:i], c.lines[i+1:]...)
			return
		}
	}
}

// SetManualDiscount sets or clears (zero amount) the operator discount on
// a line. Percent discounts are bounded to [0,100].
func (c *Cart) SetManualDiscount(lineID uuid.UUID, amount decimal.Decimal, kind DiscountKind) error {
	l := c.find(lineID)
	if l == nil {
		return ErrLineNotFound
	}
	if amount.Sign() < 0 {
		return ErrInvalidDiscount
	}
	if kind != DiscountPercent && kind != DiscountValue {
		return ErrInvalidDiscount
	}
	if kind == DiscountPercent && amount.GreaterThan(decimal.NewFromInt(100)) {
		return ErrInvalidDiscount
	}
	if amount.Sign() == 0 {
		l.ManualDiscount = nil
		return nil
	}
	l.ManualDiscount = &ManualDiscount{Amount: amount, Kind: kind}
	return nil
}

// SetOrderDiscount sets or clears the order-level discount applied after
// line promotions.
func (c *Cart) SetOrderDiscount(amount decimal.Decimal, kind DiscountKind) error {
	if amount.Sign() < 0 {
		return ErrInvalidDiscount
	}
	if kind != DiscountPercent && kind != DiscountValue {
		return ErrInvalidDiscount
	}
	if kind == DiscountPercent && amount.GreaterThan(decimal.NewFromInt(100)) {
		return ErrInvalidDiscount
	}
	if amount.Sign() == 0 {
		c.orderDiscount = nil
		return nil
	}
	c.orderDiscount = &ManualDiscount{Amount: amount, Kind: kind}
	return nil
}

// SetLoyaltyRedemption sets the currency value of redeemed loyalty points.
func (c *Cart) SetLoyaltyRedemption(value decimal.Decimal) error {
	if value.Sign() < 0 {
		return ErrInvalidDiscount
	}
	c.loyaltyRedemption = value
	return nil
}

func (c *Cart) Clear() {
	c.lines = nil
	c.orderDiscount = nil
	c.loyaltyRedemption = decimal.Zero
	c.Recompute(nil, time.Time{})
}

// Recompute re-derives every line and the order totals. A quantity change
// can change which promotion tier applies, so the evaluator runs again for
// each line on every call. Manual and automatic discounts never stack: the
// larger wins, ties favor the promotion.
func (c *Cart) Recompute(promos []model.Promotion, now time.Time) {
	c.subtotal = decimal.Zero
	c.afterLinePromotions = decimal.Zero

	for _, l := range c.lines {
		l.OriginalSubtotal = l.amount().Mul(l.Product.UnitPrice).Round(2)

		applied := promo.Evaluate(promos, promo.Input{
			ProductID: l.Product.ID,
			Category:  l.Product.Category,
			Quantity:  l.amount(),
			UnitPrice: l.Product.UnitPrice,
			Now:       now,
		})

		promoDiscount := decimal.Zero
		if applied != nil {
			promoDiscount = applied.Discount
		}
		manualDiscount := decimal.Zero
		if l.ManualDiscount != nil {
			if l.ManualDiscount.Kind == DiscountPercent {
				manualDiscount = l.OriginalSubtotal.Mul(l.ManualDiscount.Amount).Div(decimal.NewFromInt(100)).Round(2)
			} else {
				manualDiscount = l.ManualDiscount.Amount
			}
		}

		if manualDiscount.GreaterThan(promoDiscount) {
			l.Applied = nil
			l.EffectiveDiscount = manualDiscount
		} else {
			l.Applied = applied
			l.EffectiveDiscount = promoDiscount
		}

		l.EffectiveSubtotal = l.OriginalSubtotal.Sub(l.EffectiveDiscount)
		if l.EffectiveSubtotal.Sign() < 0 {
			l.EffectiveSubtotal = decimal.Zero
			l.EffectiveDiscount = l.OriginalSubtotal
		}

		c.subtotal = c.subtotal.Add(l.OriginalSubtotal)
		c.afterLinePromotions = c.afterLinePromotions.Add(l.EffectiveSubtotal)
	}

	c.orderDiscountAmount = decimal.Zero
	if c.orderDiscount != nil {
		if c.orderDiscount.Kind == DiscountPercent {
			c.orderDiscountAmount = c.afterLinePromotions.Mul(c.orderDiscount.Amount).Div(decimal.NewFromInt(100)).Round(2)
		} else {
			c.orderDiscountAmount = c.orderDiscount.Amount
		}
	}

	c.total = c.afterLinePromotions.Sub(c.orderDiscountAmount).Sub(c.loyaltyRedemption)
	if c.total.Sign() < 0 {
		c.total = decimal.Zero
	}
}

func (c *Cart) find(lineID uuid.UUID) *Line {
	for _, l := range c.lines {
		if l.ID == lineID {
			return l
		}
	}
	return nil
}

func (c *Cart) Lines() []*Line                               { return c.lines }
func (c *Cart) Subtotal() decimal.Decimal                    { return c.subtotal }
func (c *Cart) SubtotalAfterLinePromotions() decimal.Decimal { return c.afterLinePromotions }
func (c *Cart) OrderDiscountAmount() decimal.Decimal         { return c.orderDiscountAmount }
func (c *Cart) LoyaltyRedemption() decimal.Decimal           { return c.loyaltyRedemption }
func (c *Cart) Total() decimal.Decimal                       { return c.total }
func (c *Cart) Empty() bool                                  { return len(c.lines) == 0 }
