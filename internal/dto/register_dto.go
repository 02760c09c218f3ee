package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type OpenRegisterRequest struct {
	OperatorID     string          `json:"operator_id"     validate:"required,uuid"`
	OpeningBalance decimal.Decimal `json:"opening_balance" validate:"min=0"`
}

type CashMovementRequest struct {
	OperatorID string          `json:"operator_id" validate:"required,uuid"`
	Amount     decimal.Decimal `json:"amount"      validate:"required,gt=0"`
	Reason     string          `json:"reason"      validate:"required,min=3"`
}

type CloseRegisterRequest struct {
	OperatorID  string          `json:"operator_id"  validate:"required,uuid"`
	CountedCash decimal.Decimal `json:"counted_cash" validate:"min=0"`
}

// MovementReasonSuggestions is the fixed list the UI offers alongside the
// free-text reason field.
var MovementReasonSuggestions = []string{
	"change fund",
	"supplier payment",
	"cash pickup to safe",
	"delivery fee",
	"operational expense",
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type TenderTotals struct {
	Cash     decimal.Decimal `json:"cash"`
	Pix      decimal.Decimal `json:"pix"`
	Credit   decimal.Decimal `json:"credit"`
	Debit    decimal.Decimal `json:"debit"`
	Deferred decimal.Decimal `json:"deferred_credit"`
}

type CashMovementResponse struct {
	ID         string          `json:"id"`
	Kind       string          `json:"kind"`
	Amount     decimal.Decimal `json:"amount"`
	Reason     string          `json:"reason"`
	OperatorID string          `json:"operator_id"`
	CreatedAt  string          `json:"created_at"`
}

type RegisterReportResponse struct {
	ID             string           `json:"id"`
	ShiftNumber    int              `json:"shift_number"`
	Status         string           `json:"status"`
	OperatorID     string           `json:"operator_id"`
	OpeningBalance decimal.Decimal  `json:"opening_balance"`
	Tenders        TenderTotals     `json:"tenders"`
	TotalSales     decimal.Decimal  `json:"total_sales"`
	Withdrawals    decimal.Decimal  `json:"withdrawals"`
	Deposits       decimal.Decimal  `json:"deposits"`
	ExpectedCash   decimal.Decimal  `json:"expected_cash"`
	CountedCash    *decimal.Decimal `json:"counted_cash,omitempty"`
	Difference     *decimal.Decimal `json:"difference,omitempty"`
	OpenedAt       string           `json:"opened_at"`
	ClosedAt       *string          `json:"closed_at,omitempty"`

	Movements []CashMovementResponse `json:"movements"`
}

type RegisterHistoryResponse struct {
	Data  []RegisterReportResponse `json:"data"`
	Total int64                    `json:"total"`
	Page  int                      `json:"page"`
	Limit int                      `json:"limit"`
}
