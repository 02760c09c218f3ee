package promo

import (
	"testing"
	"time"

	"varejopos/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var wednesdayNoon = time.Date(2025, 6, 11, 12, 0, 0, 0, time.UTC)

func activeWindow(p model.Promotion) model.Promotion {
	p.StartDate = wednesdayNoon.AddDate(0, 0, -7)
	p.EndDate = wednesdayNoon.AddDate(0, 0, 7)
	p.Active = true
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return p
}

func lineInput(qty int64, unitPrice float64) Input {
	return Input{
		ProductID: uuid.New(),
		Category:  "groceries",
		Quantity:  decimal.NewFromInt(qty),
		UnitPrice: decimal.NewFromFloat(unitPrice),
		Now:       wednesdayNoon,
	}
}

func TestEvaluatePercentage(t *testing.T) {
	promos := []model.Promotion{activeWindow(model.Promotion{
		Name:  "10% off",
		Kind:  model.PromoPercentage,
		Value: decimal.NewFromInt(10),
	})}

	// 20 × 10.00 = 200.00 → 10% = 20.00
	applied := Evaluate(promos, lineInput(20, 10.00))
	require.NotNil(t, applied)
	assert.Equal(t, "20", applied.Discount.String())
	assert.Equal(t, model.PromoPercentage, applied.Kind)
}

func TestEvaluateFixedNeverBelowZero(t *testing.T) {
	promos := []model.Promotion{activeWindow(model.Promotion{
		Name:  "5 off",
		Kind:  model.PromoFixed,
		Value: decimal.NewFromInt(5),
	})}

	// Line total 3.00 < fixed 5.00 → discount clamps to line total
	applied := Evaluate(promos, lineInput(1, 3.00))
	require.NotNil(t, applied)
	assert.Equal(t, "3", applied.Discount.String())
}

func TestEvaluateBuyXGetY(t *testing.T) {
	promos := []model.Promotion{activeWindow(model.Promotion{
		Name:   "2+1",
		Kind:   model.PromoBuyXGetY,
		BuyQty: 2,
		GetQty: 1,
	})}

	// qty=9, group=3 → floor(9/3)=3 sets × 1 free × 10.00 = 30.00
	applied := Evaluate(promos, lineInput(9, 10.00))
	require.NotNil(t, applied)
	assert.Equal(t, "30", applied.Discount.String())

	// qty=2 → no complete set → nil
	assert.Nil(t, Evaluate(promos, lineInput(2, 10.00)))
}

func TestEvaluateProgressive(t *testing.T) {
	promos := []model.Promotion{activeWindow(model.Promotion{
		Name:        "bulk",
		Kind:        model.PromoProgressive,
		Value:       decimal.NewFromInt(10),
		MinQuantity: 5,
	})}

	// qty=8 → rate = 10 + (8−5)×2 = 16% of 80.00 = 12.80
	applied := Evaluate(promos, lineInput(8, 10.00))
	require.NotNil(t, applied)
	assert.Equal(t, "12.8", applied.Discount.String())

	// below the tier floor → nothing
	assert.Nil(t, Evaluate(promos, lineInput(4, 10.00)))
}

func TestEvaluateProgressiveCapsAtFifty(t *testing.T) {
	promos := []model.Promotion{activeWindow(model.Promotion{
		Name:        "bulk",
		Kind:        model.PromoProgressive,
		Value:       decimal.NewFromInt(10),
		MinQuantity: 2,
	})}

	// qty=100 → uncapped rate would be 206% — caps at 50%
	applied := Evaluate(promos, lineInput(100, 1.00))
	require.NotNil(t, applied)
	assert.Equal(t, "50", applied.Discount.String())
}

func TestEvaluateHappyHourTimeWindow(t *testing.T) {
	from, to := "17:00", "19:00"
	promos := []model.Promotion{activeWindow(model.Promotion{
		Name:      "happy hour",
		Kind:      model.PromoHappyHour,
		Value:     decimal.NewFromInt(20),
		StartTime: &from,
		EndTime:   &to,
	})}

	in := lineInput(2, 10.00)

	// noon — outside the window
	assert.Nil(t, Evaluate(promos, in))

	// 18:30 — inside, minute resolution
	in.Now = time.Date(2025, 6, 11, 18, 30, 0, 0, time.UTC)
	applied := Evaluate(promos, in)
	require.NotNil(t, applied)
	assert.Equal(t, "4", applied.Discount.String())

	// 19:01 — one minute past the end
	in.Now = time.Date(2025, 6, 11, 19, 1, 0, 0, time.UTC)
	assert.Nil(t, Evaluate(promos, in))
}

func TestEvaluateWeekdaySet(t *testing.T) {
	days := "1,3,5" // Mon, Wed, Fri
	promos := []model.Promotion{activeWindow(model.Promotion{
		Name:       "weekday deal",
		Kind:       model.PromoPercentage,
		Value:      decimal.NewFromInt(10),
		DaysOfWeek: &days,
	})}

	in := lineInput(1, 100.00)
	require.NotNil(t, Evaluate(promos, in)) // Wednesday

	in.Now = wednesdayNoon.AddDate(0, 0, 1) // Thursday
	assert.Nil(t, Evaluate(promos, in))
}

func TestEvaluateDateWindow(t *testing.T) {
	p := activeWindow(model.Promotion{
		Name:  "expired",
		Kind:  model.PromoPercentage,
		Value: decimal.NewFromInt(10),
	})
	p.EndDate = wednesdayNoon.AddDate(0, 0, -1)

	assert.Nil(t, Evaluate([]model.Promotion{p}, lineInput(1, 100.00)))
}

func TestEvaluatePriorityAndTieBreak(t *testing.T) {
	low := activeWindow(model.Promotion{
		Name: "low", Kind: model.PromoPercentage,
		Value: decimal.NewFromInt(50), Priority: 1,
	})
	high := activeWindow(model.Promotion{
		Name: "high", Kind: model.PromoPercentage,
		Value: decimal.NewFromInt(5), Priority: 10,
	})

	// Highest priority wins even when a lower-priority rule discounts more.
	applied := Evaluate([]model.Promotion{low, high}, lineInput(1, 100.00))
	require.NotNil(t, applied)
	assert.Equal(t, high.ID, applied.PromotionID)

	// Equal priority: lowest id wins regardless of slice order.
	a := activeWindow(model.Promotion{
		ID:   uuid.MustParse("00000000-0000-0000-0000-000000000001"),
		Name: "a", Kind: model.PromoPercentage, Value: decimal.NewFromInt(5), Priority: 3,
	})
	b := activeWindow(model.Promotion{
		ID:   uuid.MustParse("00000000-0000-0000-0000-000000000002"),
		Name: "b", Kind: model.PromoPercentage, Value: decimal.NewFromInt(9), Priority: 3,
	})
	applied = Evaluate([]model.Promotion{b, a}, lineInput(1, 100.00))
	require.NotNil(t, applied)
	assert.Equal(t, a.ID, applied.PromotionID)
}

func TestEvaluateMaxDiscountClamp(t *testing.T) {
	maxOff := decimal.NewFromInt(10)
	promos := []model.Promotion{activeWindow(model.Promotion{
		Name:        "50% capped",
		Kind:        model.PromoPercentage,
		Value:       decimal.NewFromInt(50),
		MaxDiscount: &maxOff,
	})}

	applied := Evaluate(promos, lineInput(1, 100.00))
	require.NotNil(t, applied)
	assert.Equal(t, "10", applied.Discount.String())
}

func TestEvaluateApplicability(t *testing.T) {
	productID := uuid.New()
	other := uuid.New()
	cat := "beverages"
	byProduct := activeWindow(model.Promotion{
		Name: "product deal", Kind: model.PromoPercentage,
		Value: decimal.NewFromInt(10), ProductID: &productID,
	})
	byCategory := activeWindow(model.Promotion{
		Name: "category deal", Kind: model.PromoPercentage,
		Value: decimal.NewFromInt(10), Category: &cat,
	})

	in := lineInput(1, 10.00)
	in.ProductID = other
	in.Category = "groceries"
	assert.Nil(t, Evaluate([]model.Promotion{byProduct, byCategory}, in))

	in.ProductID = productID
	assert.NotNil(t, Evaluate([]model.Promotion{byProduct}, in))

	in.Category = cat
	assert.NotNil(t, Evaluate([]model.Promotion{byCategory}, in))
}

func TestEvaluateMinQuantity(t *testing.T) {
	promos := []model.Promotion{activeWindow(model.Promotion{
		Name: "bulk only", Kind: model.PromoPercentage,
		Value: decimal.NewFromInt(10), MinQuantity: 6,
	})}

	assert.Nil(t, Evaluate(promos, lineInput(5, 10.00)))
	assert.NotNil(t, Evaluate(promos, lineInput(6, 10.00)))
}

func TestEvaluateInactiveRule(t *testing.T) {
	p := activeWindow(model.Promotion{
		Name: "off", Kind: model.PromoPercentage, Value: decimal.NewFromInt(10),
	})
	p.Active = false
	assert.Nil(t, Evaluate([]model.Promotion{p}, lineInput(1, 100.00)))
}
