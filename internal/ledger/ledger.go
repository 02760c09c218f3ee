// Package ledger holds the cash-register state machine. Transitions are
// pure functions over an explicit *model.RegisterSession owner; callers
// decide when a transition is committed (after the matching persistence
// write succeeds), which is why Clone exists.
package ledger

import (
	"errors"
	"time"

	"varejopos/internal/model"
	"varejopos/internal/payment"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrNotOpen       = errors.New("register is not open")
	ErrAlreadyClosed = errors.New("register is already closed")
	ErrInvalidAmount = errors.New("amount must be greater than zero")
	ErrMissingReason = errors.New("a reason is required for cash movements")
	ErrNegativeFloat = errors.New("opening balance cannot be negative")
)

// Open creates a fresh session for the given shift. The cash tender total
// is seeded with the opening float.
func Open(shiftNumber int, openingBalance decimal.Decimal, operator uuid.UUID, now time.Time) (*model.RegisterSession, error) {
	if openingBalance.Sign() < 0 {
		return nil, ErrNegativeFloat
	}
	return &model.RegisterSession{
		ID:             uuid.New(),
		ShiftNumber:    shiftNumber,
		OperatorID:     operator,
		OpeningBalance: openingBalance,
		CashTotal:      openingBalance,
		Status:         model.RegisterOpen,
		OpenedAt:       now,
	}, nil
}

// PostSale adds each payment leg to its tender running total and to the
// accumulated sales figure.
func PostSale(r *model.RegisterSession, entries []payment.Entry) error {
	if err := requireOpen(r); err != nil {
		return err
	}
	for _, e := range entries {
		switch e.Method {
		case payment.MethodCash:
			r.CashTotal = r.CashTotal.Add(e.Amount)
		case payment.MethodPix:
			r.PixTotal = r.PixTotal.Add(e.Amount)
		case payment.MethodCredit:
			r.CreditTotal = r.CreditTotal.Add(e.Amount)
		case payment.MethodDebit:
			r.DebitTotal = r.DebitTotal.Add(e.Amount)
		case payment.MethodDeferredCredit:
			r.DeferredTotal = r.DeferredTotal.Add(e.Amount)
		default:
			return payment.ErrUnknownMethod
		}
		r.TotalSales = r.TotalSales.Add(e.Amount)
	}
	return nil
}

// Withdraw records a manual cash removal. The movement is appended to the
// session; expected cash at close subtracts withdrawals.
func Withdraw(r *model.RegisterSession, amount decimal.Decimal, reason string, operator uuid.UUID, now time.Time) (*model.CashMovement, error) {
	return appendMovement(r, model.MovementWithdrawal, amount, reason, operator, now)
}

// Deposit records a manual cash addition.
func Deposit(r *model.RegisterSession, amount decimal.Decimal, reason string, operator uuid.UUID, now time.Time) (*model.CashMovement, error) {
	return appendMovement(r, model.MovementDeposit, amount, reason, operator, now)
}

func appendMovement(r *model.RegisterSession, kind string, amount decimal.Decimal, reason string, operator uuid.UUID, now time.Time) (*model.CashMovement, error) {
	if err := requireOpen(r); err != nil {
		return nil, err
	}
	if amount.Sign() <= 0 {
		return nil, ErrInvalidAmount
	}
	if reason == "" {
		return nil, ErrMissingReason
	}
	mov := model.CashMovement{
		ID:                uuid.New(),
		RegisterSessionID: r.ID,
		Kind:              kind,
		Amount:            amount,
		Reason:            reason,
		OperatorID:        operator,
		CreatedAt:         now,
	}
	r.Movements = append(r.Movements, mov)
	return &mov, nil
}

// ExpectedCash is opening float + cash sales + deposits − withdrawals.
// CashTotal already carries the float and the cash sales.
func ExpectedCash(r *model.RegisterSession) decimal.Decimal {
	expected := r.CashTotal
	for _, m := range r.Movements {
		switch m.Kind {
		case model.MovementDeposit:
			expected = expected.Add(m.Amount)
		case model.MovementWithdrawal:
			expected = expected.Sub(m.Amount)
		}
	}
	return expected
}

// Close reconciles the physically counted cash against the expected cash
// and freezes the session. The signed difference is informational: over
// and short shifts both close, merely flagged for the operator.
func Close(r *model.RegisterSession, countedCash decimal.Decimal, now time.Time) error {
	if err := requireOpen(r); err != nil {
		return err
	}
	if countedCash.Sign() < 0 {
		return ErrInvalidAmount
	}
	expected := ExpectedCash(r)
	difference := countedCash.Sub(expected)

	r.CountedCash = &countedCash
	r.ExpectedCash = &expected
	r.Difference = &difference
	r.Status = model.RegisterClosed
	r.ClosedAt = &now
	return nil
}

// Clone deep-copies a session so a transition can be applied and persisted
// before the in-memory owner is swapped.
func Clone(r *model.RegisterSession) *model.RegisterSession {
	if r == nil {
		return nil
	}
	c := *r
	c.Movements = make([]model.CashMovement, len(r.Movements))
	copy(c.Movements, r.Movements)
	if r.CountedCash != nil {
		v := *r.CountedCash
		c.CountedCash = &v
	}
	if r.ExpectedCash != nil {
		v := *r.ExpectedCash
		c.ExpectedCash = &v
	}
	if r.Difference != nil {
		v := *r.Difference
		c.Difference = &v
	}
	if r.ClosedAt != nil {
		v := *r.ClosedAt
		c.ClosedAt = &v
	}
	return &c
}

func requireOpen(r *model.RegisterSession) error {
	if r == nil {
		return ErrNotOpen
	}
	switch r.Status {
	case model.RegisterOpen:
		return nil
	case model.RegisterClosed:
		return ErrAlreadyClosed
	default:
		return ErrNotOpen
	}
}
