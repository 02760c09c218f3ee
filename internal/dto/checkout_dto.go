package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

// PaymentRequest describes one leg of a checkout. Amount is required when the
// request carries more than one leg; a single leg takes the cart total.
type PaymentRequest struct {
	Method           string           `json:"method"            validate:"required,oneof=cash pix credit debit deferred_credit"`
	Amount           *decimal.Decimal `json:"amount"            validate:"omitempty,gt=0"`
	ReceivedAmount   *decimal.Decimal `json:"received_amount"   validate:"omitempty,gt=0"`
	InstallmentCount int              `json:"installment_count" validate:"omitempty,min=1,max=24"`
	FirstDueDate     *string          `json:"first_due_date"    validate:"omitempty,datetime=2006-01-02"`
	IntervalDays     int              `json:"interval_days"     validate:"omitempty,gt=0"`
}

type CheckoutRequest struct {
	CartID     string           `json:"cart_id"     validate:"required,uuid"`
	OperatorID string           `json:"operator_id" validate:"required,uuid"`
	CustomerID *string          `json:"customer_id" validate:"omitempty,uuid"`
	Payments   []PaymentRequest `json:"payments"    validate:"required,min=1,dive"`
}

// QuoteRequest previews the allocation without persisting anything.
type QuoteRequest struct {
	CartID     string           `json:"cart_id"     validate:"required,uuid"`
	CustomerID *string          `json:"customer_id" validate:"omitempty,uuid"`
	Payments   []PaymentRequest `json:"payments"    validate:"required,min=1,dive"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type InstallmentResponse struct {
	Sequence int             `json:"sequence"`
	DueDate  string          `json:"due_date"`
	Amount   decimal.Decimal `json:"amount"`
}

type PaymentEntryResponse struct {
	Method           string                `json:"method"`
	Amount           decimal.Decimal       `json:"amount"`
	Change           decimal.Decimal       `json:"change"`
	InstallmentCount int                   `json:"installment_count,omitempty"`
	Installments     []InstallmentResponse `json:"installments,omitempty"`
}

type QuoteResponse struct {
	Total    decimal.Decimal        `json:"total"`
	Change   decimal.Decimal        `json:"change"`
	Payments []PaymentEntryResponse `json:"payments"`
}

type SaleItemResponse struct {
	ProductID   string           `json:"product_id"`
	Name        string           `json:"name"`
	Quantity    int              `json:"quantity"`
	Weight      *decimal.Decimal `json:"weight,omitempty"`
	UnitPrice   decimal.Decimal  `json:"unit_price"`
	Discount    decimal.Decimal  `json:"discount"`
	Subtotal    decimal.Decimal  `json:"subtotal"`
	PromotionID *string          `json:"promotion_id,omitempty"`
}

type SaleResponse struct {
	ID                string                 `json:"id"`
	TicketNumber      int64                  `json:"ticket_number"`
	RegisterSessionID string                 `json:"register_session_id"`
	OperatorID        string                 `json:"operator_id"`
	CustomerID        *string                `json:"customer_id,omitempty"`
	Items             []SaleItemResponse     `json:"items"`
	Subtotal          decimal.Decimal        `json:"subtotal"`
	DiscountTotal     decimal.Decimal        `json:"discount_total"`
	Total             decimal.Decimal        `json:"total"`
	Change            decimal.Decimal        `json:"change"`
	Payments          []PaymentEntryResponse `json:"payments"`
	Status            string                 `json:"status"`
	CreatedAt         string                 `json:"created_at"`
}
