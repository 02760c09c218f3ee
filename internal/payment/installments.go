package payment

import (
	"time"

	"github.com/shopspring/decimal"
)

// GenerateInstallments splits amount into count legs due every
// intervalDays starting at start. Every leg is amount/count truncated to
// the cent except the last, which absorbs the remainder so the schedule
// sums exactly to amount.
func GenerateInstallments(amount decimal.Decimal, count int, start time.Time, intervalDays int) []Installment {
	if count < 1 {
		count = 1
	}

	per := amount.Div(decimal.NewFromInt(int64(count))).Truncate(2)
	schedule := make([]Installment, count)

	allocated := decimal.Zero
	for i := 0; i < count; i++ {
		legAmount := per
		if i == count-1 {
			legAmount = amount.Sub(allocated)
		}
		allocated = allocated.Add(legAmount)
		schedule[i] = Installment{
			Sequence: i + 1,
			DueDate:  start.AddDate(0, 0, i*intervalDays),
			Amount:   legAmount,
		}
	}
	return schedule
}
