// Package promo implements the promotion rule evaluator: a pure function
// that decides the single best automatic discount for one cart line.
package promo

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"varejopos/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	hundred = decimal.NewFromInt(100)
	// progressive rules accelerate by 2 percentage points per unit above
	// the tier threshold, capped at 50% unless the rule says otherwise.
	progressiveStep       = decimal.NewFromInt(2)
	progressiveDefaultCap = decimal.NewFromInt(50)
)

// Input describes one cart line at evaluation time. Quantity carries the
// captured weight for weighted products.
type Input struct {
	ProductID uuid.UUID
	Category  string
	Quantity  decimal.Decimal
	UnitPrice decimal.Decimal
	Now       time.Time
}

// Applied is the ephemeral result of an evaluation. It is recomputed on
// every cart change and only persisted as part of a confirmed sale.
type Applied struct {
	PromotionID uuid.UUID
	Kind        model.PromotionKind
	Description string
	Discount    decimal.Decimal
}

// Evaluate returns the best applicable discount among the given rules, or
// nil when none applies. Exactly one promotion applies per line: candidates
// are sorted by priority descending and the first positive discount wins.
// Equal priorities break deterministically by promotion id, ascending.
func Evaluate(promos []model.Promotion, in Input) *Applied {
	if in.Quantity.Sign() <= 0 || in.UnitPrice.Sign() < 0 {
		return nil
	}

	candidates := make([]model.Promotion, 0, len(promos))
	for _, p := range promos {
		if matches(&p, in) {
			candidates = append(candidates, p)
		}
	}
	if len(candidates) == 0 {
		return nil
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].Priority != candidates[j].Priority {
			return candidates[i].Priority > candidates[j].Priority
		}
		return strings.Compare(candidates[i].ID.String(), candidates[j].ID.String()) < 0
	})

	// Only the highest-priority match applies; when its discount works out
	// to zero the line simply gets no promotion.
	best := candidates[0]
	lineTotal := in.Quantity.Mul(in.UnitPrice)
	discount := computeDiscount(&best, in, lineTotal)
	if best.Kind != model.PromoProgressive && best.MaxDiscount != nil && discount.GreaterThan(*best.MaxDiscount) {
		discount = *best.MaxDiscount
	}
	if discount.GreaterThan(lineTotal) {
		discount = lineTotal
	}
	if discount.Sign() <= 0 {
		return nil
	}
	return &Applied{
		PromotionID: best.ID,
		Kind:        best.Kind,
		Description: describe(&best),
		Discount:    discount.Round(2),
	}
}

// matches applies the rule filters: applicability, validity window
// (date range, optional minute-resolution time-of-day, optional weekday
// set) and quantity/value floors.
func matches(p *model.Promotion, in Input) bool {
	if !p.Active {
		return false
	}
	if p.ProductID != nil && *p.ProductID != in.ProductID {
		return false
	}
	if p.Category != nil && *p.Category != in.Category {
		return false
	}

	day := dateOf(in.Now)
	if day.Before(dateOf(p.StartDate)) || day.After(dateOf(p.EndDate)) {
		return false
	}
	if p.StartTime != nil && p.EndTime != nil {
		minute := in.Now.Hour()*60 + in.Now.Minute()
		from, okFrom := parseMinute(*p.StartTime)
		to, okTo := parseMinute(*p.EndTime)
		if okFrom && okTo && (minute < from || minute > to) {
			return false
		}
	}
	if set := p.WeekdaySet(); set != nil && !set[in.Now.Weekday()] {
		return false
	}

	if p.MinQuantity > 0 && in.Quantity.LessThan(decimal.NewFromInt(int64(p.MinQuantity))) {
		return false
	}
	if p.MinValue != nil && in.Quantity.Mul(in.UnitPrice).LessThan(*p.MinValue) {
		return false
	}
	return true
}

func computeDiscount(p *model.Promotion, in Input, lineTotal decimal.Decimal) decimal.Decimal {
	switch p.Kind {
	case model.PromoPercentage, model.PromoHappyHour:
		// happy_hour is a percentage gated by the time/day filters that
		// already ran in matches.
		return lineTotal.Mul(p.Value).Div(hundred)

	case model.PromoFixed:
		if p.Value.GreaterThan(lineTotal) {
			return lineTotal
		}
		return p.Value

	case model.PromoBuyXGetY:
		group := p.BuyQty + p.GetQty
		if group <= 0 || p.GetQty <= 0 {
			return decimal.Zero
		}
		sets := in.Quantity.Div(decimal.NewFromInt(int64(group))).Floor()
		return sets.Mul(decimal.NewFromInt(int64(p.GetQty))).Mul(in.UnitPrice)

	case model.PromoCombo:
		// Value currency off per complete bundle of MinQuantity units.
		if p.MinQuantity <= 0 {
			return decimal.Zero
		}
		bundles := in.Quantity.Div(decimal.NewFromInt(int64(p.MinQuantity))).Floor()
		return bundles.Mul(p.Value)

	case model.PromoProgressive:
		// Rate grows from Value by 2 points per unit above the tier floor;
		// fractional weights only count complete units.
		minQty := decimal.NewFromInt(int64(p.MinQuantity))
		if in.Quantity.LessThan(minQty) {
			return decimal.Zero
		}
		extra := in.Quantity.Floor().Sub(minQty)
		rate := p.Value.Add(extra.Mul(progressiveStep))
		ceiling := progressiveDefaultCap
		if p.MaxDiscount != nil {
			ceiling = *p.MaxDiscount
		}
		if rate.GreaterThan(ceiling) {
			rate = ceiling
		}
		return lineTotal.Mul(rate).Div(hundred)
	}
	return decimal.Zero
}

func describe(p *model.Promotion) string {
	switch p.Kind {
	case model.PromoPercentage, model.PromoHappyHour, model.PromoProgressive:
		return fmt.Sprintf("%s (%s%%)", p.Name, p.Value.String())
	case model.PromoBuyXGetY:
		return fmt.Sprintf("%s (buy %d get %d)", p.Name, p.BuyQty, p.GetQty)
	default:
		return p.Name
	}
}

func dateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// parseMinute converts "HH:MM" into minutes since midnight.
func parseMinute(s string) (int, bool) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return 0, false
	}
	h, err1 := strconv.Atoi(parts[0])
	m, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil || h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, false
	}
	return h*60 + m, true
}
