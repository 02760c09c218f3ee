package payment

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestAllocateCashChange(t *testing.T) {
	received := dec("150.00")
	entry, err := Allocate(dec("137.50"), Request{Method: MethodCash, ReceivedAmount: &received})
	require.NoError(t, err)
	assert.Equal(t, "12.5", entry.Change.String())
	assert.Equal(t, "137.5", entry.Amount.String())
}

func TestAllocateCashInsufficientReceived(t *testing.T) {
	received := dec("99.99")
	_, err := Allocate(dec("100.00"), Request{Method: MethodCash, ReceivedAmount: &received})
	assert.ErrorIs(t, err, ErrInsufficientCash)

	_, err = Allocate(dec("100.00"), Request{Method: MethodCash})
	assert.ErrorIs(t, err, ErrInsufficientCash)
}

func TestAllocateDeferredCreditLimitBoundary(t *testing.T) {
	// limit 500, debt 400 → available 100
	cust := &CustomerCredit{CreditLimit: dec("500.00"), CurrentDebt: dec("400.00")}

	// One cent over → rejected
	_, err := Allocate(dec("100.01"), Request{Method: MethodDeferredCredit, Customer: cust})
	assert.ErrorIs(t, err, ErrInsufficientCredit)

	// Exactly equal → accepted
	entry, err := Allocate(dec("100.00"), Request{Method: MethodDeferredCredit, Customer: cust})
	require.NoError(t, err)
	assert.Equal(t, "100", entry.Amount.String())

	// No bound customer → rejected
	_, err = Allocate(dec("10.00"), Request{Method: MethodDeferredCredit})
	assert.ErrorIs(t, err, ErrMissingCustomer)
}

func TestAllocateCreditWithInstallments(t *testing.T) {
	start := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
	entry, err := Allocate(dec("100.00"), Request{
		Method:           MethodCredit,
		InstallmentCount: 3,
		FirstDueDate:     &start,
		IntervalDays:     30,
	})
	require.NoError(t, err)
	require.Len(t, entry.Installments, 3)

	// Truncated legs with the last absorbing the remainder
	assert.Equal(t, "33.33", entry.Installments[0].Amount.String())
	assert.Equal(t, "33.33", entry.Installments[1].Amount.String())
	assert.Equal(t, "33.34", entry.Installments[2].Amount.String())

	// Due dates d, d+30, d+60
	assert.Equal(t, start, entry.Installments[0].DueDate)
	assert.Equal(t, start.AddDate(0, 0, 30), entry.Installments[1].DueDate)
	assert.Equal(t, start.AddDate(0, 0, 60), entry.Installments[2].DueDate)
}

func TestAllocateInstallmentsNeedSchedule(t *testing.T) {
	_, err := Allocate(dec("100.00"), Request{Method: MethodCredit, InstallmentCount: 3})
	assert.ErrorIs(t, err, ErrInvalidInstallments)
}

func TestGenerateInstallmentsSumsExactly(t *testing.T) {
	start := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
	cases := []struct {
		amount string
		count  int
	}{
		{"100.00", 3},
		{"0.01", 2},
		{"999.97", 7},
		{"10.00", 1},
		{"123.45", 12},
	}
	for _, tc := range cases {
		schedule := GenerateInstallments(dec(tc.amount), tc.count, start, 30)
		require.Len(t, schedule, tc.count)

		sum := decimal.Zero
		for i, leg := range schedule {
			assert.Equal(t, i+1, leg.Sequence)
			sum = sum.Add(leg.Amount)
		}
		assert.True(t, sum.Equal(dec(tc.amount)),
			"amount=%s count=%d sum=%s", tc.amount, tc.count, sum)

		// Only the last leg may differ from the truncated share.
		per := dec(tc.amount).Div(decimal.NewFromInt(int64(tc.count))).Truncate(2)
		for _, leg := range schedule[:tc.count-1] {
			assert.True(t, leg.Amount.Equal(per))
		}
	}
}

func TestAllocateSplitExactCoverage(t *testing.T) {
	received := dec("50.00")
	entries, err := AllocateSplit(dec("120.00"), []Request{
		{Method: MethodCash, Amount: dec("50.00"), ReceivedAmount: &received},
		{Method: MethodPix, Amount: dec("70.00")},
	})
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "0", entries[0].Change.String())
	assert.Equal(t, MethodPix, entries[1].Method)
}

func TestAllocateSplitDeferredCreditAggregateExposure(t *testing.T) {
	customer := &CustomerCredit{CreditLimit: dec("100.00"), CurrentDebt: dec("0.00")}

	// Each 60.00 leg fits the 100.00 limit alone; together they do not.
	_, err := AllocateSplit(dec("120.00"), []Request{
		{Method: MethodDeferredCredit, Amount: dec("60.00"), Customer: customer},
		{Method: MethodDeferredCredit, Amount: dec("60.00"), Customer: customer},
	})
	assert.ErrorIs(t, err, ErrInsufficientCredit)

	// The aggregate at exactly the available credit passes.
	entries, err := AllocateSplit(dec("100.00"), []Request{
		{Method: MethodDeferredCredit, Amount: dec("50.00"), Customer: customer},
		{Method: MethodDeferredCredit, Amount: dec("50.00"), Customer: customer},
	})
	require.NoError(t, err)
	assert.Len(t, entries, 2)

	// Mixing in another tender keeps only the fiado legs in the sum.
	_, err = AllocateSplit(dec("150.00"), []Request{
		{Method: MethodDeferredCredit, Amount: dec("90.00"), Customer: customer},
		{Method: MethodPix, Amount: dec("60.00")},
	})
	assert.NoError(t, err)
}

func TestAllocateSplitMismatchRejected(t *testing.T) {
	_, err := AllocateSplit(dec("120.00"), []Request{
		{Method: MethodPix, Amount: dec("50.00")},
		{Method: MethodDebit, Amount: dec("60.00")},
	})
	assert.ErrorIs(t, err, ErrSplitMismatch)

	// Within one cent passes
	_, err = AllocateSplit(dec("120.00"), []Request{
		{Method: MethodPix, Amount: dec("60.00")},
		{Method: MethodDebit, Amount: dec("59.99")},
	})
	assert.NoError(t, err)

	_, err = AllocateSplit(dec("120.00"), nil)
	assert.ErrorIs(t, err, ErrNoPayments)
}

func TestAllocateRejectsUnknownMethodAndBadAmounts(t *testing.T) {
	_, err := Allocate(dec("10.00"), Request{Method: Method("check")})
	assert.ErrorIs(t, err, ErrUnknownMethod)

	_, err = AllocateSplit(dec("0.00"), []Request{{Method: MethodPix, Amount: dec("0.00")}})
	assert.ErrorIs(t, err, ErrInvalidAmount)
}

func TestMethodInstallable(t *testing.T) {
	assert.True(t, MethodCredit.Installable())
	assert.True(t, MethodDeferredCredit.Installable())
	assert.False(t, MethodCash.Installable())
	assert.False(t, MethodPix.Installable())
	assert.False(t, MethodDebit.Installable())
}
