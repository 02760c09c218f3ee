// Package payment turns a sale total into one or more payment legs. It is
// pure computation: nothing here touches the ledger or the database, so an
// in-flight checkout can be abandoned with no side effects.
package payment

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// Method is the closed set of tender types. Adding one is a compile-time
// checked change: the switches below must be extended.
type Method string

const (
	MethodCash           Method = "cash"
	MethodPix            Method = "pix"
	MethodCredit         Method = "credit"
	MethodDebit          Method = "debit"
	MethodDeferredCredit Method = "deferred_credit" // store credit ("fiado")
)

var (
	ErrUnknownMethod       = errors.New("unknown payment method")
	ErrInvalidAmount       = errors.New("payment amount must be greater than zero")
	ErrInsufficientCash    = errors.New("received amount is less than the amount due")
	ErrInsufficientCredit  = errors.New("customer credit limit is insufficient")
	ErrMissingCustomer     = errors.New("deferred credit requires a customer")
	ErrInvalidInstallments = errors.New("invalid installment configuration")
	ErrSplitMismatch       = errors.New("split payment amounts do not cover the total")
	ErrNoPayments          = errors.New("at least one payment entry is required")
)

// centTolerance is the rounding slack allowed when a split is summed.
var centTolerance = decimal.New(1, -2)

func (m Method) Valid() bool {
	switch m {
	case MethodCash, MethodPix, MethodCredit, MethodDebit, MethodDeferredCredit:
		return true
	}
	return false
}

// Installable reports whether the method can carry a schedule.
func (m Method) Installable() bool {
	switch m {
	case MethodCredit, MethodDeferredCredit:
		return true
	case MethodCash, MethodPix, MethodDebit:
		return false
	}
	return false
}

// CustomerCredit is the standing read from the customer collaborator for
// deferred-credit eligibility.
type CustomerCredit struct {
	CreditLimit decimal.Decimal
	CurrentDebt decimal.Decimal
}

func (cc CustomerCredit) Available() decimal.Decimal {
	return cc.CreditLimit.Sub(cc.CurrentDebt)
}

// Request is one requested payment leg before validation.
type Request struct {
	Method Method
	Amount decimal.Decimal
	// ReceivedAmount is the cash handed over; cash only.
	ReceivedAmount *decimal.Decimal
	// Installment configuration; installable methods only.
	InstallmentCount int
	FirstDueDate     *time.Time
	IntervalDays     int
	// Customer is required for deferred credit.
	Customer *CustomerCredit
}

// Entry is a validated payment leg ready to post to the ledger.
type Entry struct {
	Method           Method
	Amount           decimal.Decimal
	Change           decimal.Decimal
	InstallmentCount int
	Installments     []Installment
}

// Installment is one leg of a due-date schedule.
type Installment struct {
	Sequence int
	DueDate  time.Time
	Amount   decimal.Decimal
}

// Allocate validates a single-method checkout covering the whole total.
func Allocate(total decimal.Decimal, req Request) (*Entry, error) {
	req.Amount = total
	return allocateEntry(req)
}

// AllocateSplit validates a multi-method checkout. Each entry follows the
// same per-method rules, and the entry amounts must sum to the total
// within one cent — short payment is rejected, not recorded as partial.
func AllocateSplit(total decimal.Decimal, reqs []Request) ([]Entry, error) {
	if len(reqs) == 0 {
		return nil, ErrNoPayments
	}

	sum := decimal.Zero
	for _, r := range reqs {
		sum = sum.Add(r.Amount)
	}
	if sum.Sub(total).Abs().GreaterThan(centTolerance) {
		return nil, ErrSplitMismatch
	}

	entries := make([]Entry, 0, len(reqs))
	for _, r := range reqs {
		e, err := allocateEntry(r)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *e)
	}

	// Deferred-credit exposure must also hold in aggregate: two legs can
	// each fit the limit while together exceeding it.
	deferred := make(map[*CustomerCredit]decimal.Decimal)
	for _, r := range reqs {
		if r.Method == MethodDeferredCredit && r.Customer != nil {
			deferred[r.Customer] = deferred[r.Customer].Add(r.Amount)
		}
	}
	for customer, exposure := range deferred {
		if customer.Available().LessThan(exposure) {
			return nil, ErrInsufficientCredit
		}
	}
	return entries, nil
}

func allocateEntry(req Request) (*Entry, error) {
	if !req.Method.Valid() {
		return nil, ErrUnknownMethod
	}
	if req.Amount.Sign() <= 0 {
		return nil, ErrInvalidAmount
	}

	e := &Entry{Method: req.Method, Amount: req.Amount, InstallmentCount: 1}

	switch req.Method {
	case MethodCash:
		if req.ReceivedAmount == nil || req.ReceivedAmount.LessThan(req.Amount) {
			return nil, ErrInsufficientCash
		}
		e.Change = req.ReceivedAmount.Sub(req.Amount)
		return e, nil

	case MethodPix, MethodDebit:
		return e, nil

	case MethodDeferredCredit:
		// Hard precondition, not a warning: available credit must cover
		// the amount. Exactly-equal passes.
		if req.Customer == nil {
			return nil, ErrMissingCustomer
		}
		if req.Customer.Available().LessThan(req.Amount) {
			return nil, ErrInsufficientCredit
		}
		return withSchedule(e, req)

	case MethodCredit:
		return withSchedule(e, req)
	}
	return nil, ErrUnknownMethod
}

func withSchedule(e *Entry, req Request) (*Entry, error) {
	if req.InstallmentCount <= 1 {
		return e, nil
	}
	if req.FirstDueDate == nil || req.IntervalDays <= 0 {
		return nil, ErrInvalidInstallments
	}
	e.InstallmentCount = req.InstallmentCount
	e.Installments = GenerateInstallments(req.Amount, req.InstallmentCount, *req.FirstDueDate, req.IntervalDays)
	return e, nil
}
