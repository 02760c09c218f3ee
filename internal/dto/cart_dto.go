package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

// AddItemRequest accepts either a product id or a scanned barcode. Weight is
// required for weighted products and rejected for unit products.
type AddItemRequest struct {
	ProductID *string          `json:"product_id" validate:"omitempty,uuid"`
	Barcode   *string          `json:"barcode"    validate:"omitempty,min=1"`
	Weight    *decimal.Decimal `json:"weight"     validate:"omitempty"`
}

// SetQuantityRequest carries the new absolute quantity. Zero or negative
// removes the line.
type SetQuantityRequest struct {
	Quantity int `json:"quantity"`
}

type ManualDiscountRequest struct {
	Kind   string          `json:"kind"   validate:"required,oneof=percent value"`
	Amount decimal.Decimal `json:"amount" validate:"min=0"`
}

type OrderDiscountRequest struct {
	Kind   string          `json:"kind"   validate:"required,oneof=percent value"`
	Amount decimal.Decimal `json:"amount" validate:"min=0"`
}

type LoyaltyRedemptionRequest struct {
	Amount decimal.Decimal `json:"amount" validate:"min=0"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type AppliedPromotionResponse struct {
	PromotionID string          `json:"promotion_id"`
	Kind        string          `json:"kind"`
	Description string          `json:"description"`
	Discount    decimal.Decimal `json:"discount"`
}

type CartLineResponse struct {
	ID               string                    `json:"id"`
	ProductID        string                    `json:"product_id"`
	Name             string                    `json:"name"`
	Quantity         int                       `json:"quantity"`
	Weight           *decimal.Decimal          `json:"weight,omitempty"`
	UnitPrice        decimal.Decimal           `json:"unit_price"`
	OriginalSubtotal decimal.Decimal           `json:"original_subtotal"`
	Discount         decimal.Decimal           `json:"discount"`
	Subtotal         decimal.Decimal           `json:"subtotal"`
	Promotion        *AppliedPromotionResponse `json:"promotion,omitempty"`
	ManualDiscount   bool                      `json:"manual_discount"`
}

// PriceCheckResponse is the kiosk price lookup. PromoPrice is the single
// unit price after the current promotion, set only when one applies.
type PriceCheckResponse struct {
	Name       string                    `json:"name"`
	UnitPrice  decimal.Decimal           `json:"unit_price"`
	PromoPrice *decimal.Decimal          `json:"promo_price,omitempty"`
	Category   string                    `json:"category"`
	Promotion  *AppliedPromotionResponse `json:"promotion,omitempty"`
}

type CartResponse struct {
	ID                string             `json:"id"`
	Lines             []CartLineResponse `json:"lines"`
	Subtotal          decimal.Decimal    `json:"subtotal"`
	PromotionSavings  decimal.Decimal    `json:"promotion_savings"`
	OrderDiscount     decimal.Decimal    `json:"order_discount"`
	LoyaltyRedemption decimal.Decimal    `json:"loyalty_redemption"`
	Total             decimal.Decimal    `json:"total"`
}
