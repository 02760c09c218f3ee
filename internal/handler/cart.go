package handler

import (
	"errors"
	"net/http"

	"varejopos/internal/apierror"
	"varejopos/internal/cart"
	"varejopos/internal/dto"
	"varejopos/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type CartHandler struct{ svc service.CartService }

func NewCartHandler(svc service.CartService) *CartHandler { return &CartHandler{svc: svc} }

// Create godoc
// @Summary Starts a new empty cart
// @Tags carts
// @Produce json
// @Success 201 {object} dto.CartResponse
// @Router /v1/carts [post]
func (h *CartHandler) Create(c *gin.Context) {
	created := h.svc.Create(c.Request.Context())
	c.JSON(http.StatusCreated, toCartResponse(created))
}

// Get godoc
// @Summary Returns a cart with its computed totals
// @Tags carts
// @Produce json
// @Param id path string true "Cart ID"
// @Success 200 {object} dto.CartResponse
// @Failure 404 {object} apierror.APIError
// @Router /v1/carts/{id} [get]
func (h *CartHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	found, err := h.svc.Get(id)
	if err != nil {
		c.JSON(http.StatusNotFound, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, toCartResponse(found))
}

// AddItem godoc
// @Summary Adds a product to the cart by id or barcode
// @Tags carts
// @Accept json
// @Produce json
// @Param id path string true "Cart ID"
// @Param body body dto.AddItemRequest true "Product reference"
// @Success 200 {object} dto.CartResponse
// @Failure 400 {object} apierror.APIError
// @Failure 404 {object} apierror.APIError
// @Router /v1/carts/{id}/items [post]
func (h *CartHandler) AddItem(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.AddItemRequest
	if !bindAndValidate(c, &req) {
		return
	}

	var productID *uuid.UUID
	if req.ProductID != nil {
		parsed, err := uuid.Parse(*req.ProductID)
		if err != nil {
			c.JSON(http.StatusBadRequest, apierror.New("invalid product id"))
			return
		}
		productID = &parsed
	}

	updated, err := h.svc.AddItem(c.Request.Context(), id, productID, req.Barcode, req.Weight)
	if err != nil {
		c.JSON(cartErrorStatus(err), apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, toCartResponse(updated))
}

// SetQuantity godoc
// @Summary Sets the quantity of a cart line; zero removes it
// @Tags carts
// @Accept json
// @Produce json
// @Param id path string true "Cart ID"
// @Param lineId path string true "Line ID"
// @Param body body dto.SetQuantityRequest true "New quantity"
// @Success 200 {object} dto.CartResponse
// @Failure 400 {object} apierror.APIError
// @Failure 404 {object} apierror.APIError
// @Router /v1/carts/{id}/items/{lineId} [put]
func (h *CartHandler) SetQuantity(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	lineID, ok := pathID(c, "lineId")
	if !ok {
		return
	}
	var req dto.SetQuantityRequest
	if !bindAndValidate(c, &req) {
		return
	}
	updated, err := h.svc.SetQuantity(c.Request.Context(), id, lineID, req.Quantity)
	if err != nil {
		c.JSON(cartErrorStatus(err), apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, toCartResponse(updated))
}

// RemoveLine godoc
// @Summary Removes a line from the cart
// @Tags carts
// @Produce json
// @Param id path string true "Cart ID"
// @Param lineId path string true "Line ID"
// @Success 200 {object} dto.CartResponse
// @Failure 404 {object} apierror.APIError
// @Router /v1/carts/{id}/items/{lineId} [delete]
func (h *CartHandler) RemoveLine(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	lineID, ok := pathID(c, "lineId")
	if !ok {
		return
	}
	updated, err := h.svc.RemoveLine(c.Request.Context(), id, lineID)
	if err != nil {
		c.JSON(cartErrorStatus(err), apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, toCartResponse(updated))
}

// SetLineDiscount godoc
// @Summary Sets or clears an operator discount on a line
// @Tags carts
// @Accept json
// @Produce json
// @Param id path string true "Cart ID"
// @Param lineId path string true "Line ID"
// @Param body body dto.ManualDiscountRequest true "Discount"
// @Success 200 {object} dto.CartResponse
// @Failure 400 {object} apierror.APIError
// @Router /v1/carts/{id}/items/{lineId}/discount [put]
func (h *CartHandler) SetLineDiscount(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	lineID, ok := pathID(c, "lineId")
	if !ok {
		return
	}
	var req dto.ManualDiscountRequest
	if !bindAndValidate(c, &req) {
		return
	}
	updated, err := h.svc.SetManualDiscount(c.Request.Context(), id, lineID, req.Amount, cart.DiscountKind(req.Kind))
	if err != nil {
		c.JSON(cartErrorStatus(err), apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, toCartResponse(updated))
}

// SetOrderDiscount godoc
// @Summary Sets or clears the order-level discount
// @Tags carts
// @Accept json
// @Produce json
// @Param id path string true "Cart ID"
// @Param body body dto.OrderDiscountRequest true "Discount"
// @Success 200 {object} dto.CartResponse
// @Failure 400 {object} apierror.APIError
// @Router /v1/carts/{id}/discount [put]
func (h *CartHandler) SetOrderDiscount(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.OrderDiscountRequest
	if !bindAndValidate(c, &req) {
		return
	}
	updated, err := h.svc.SetOrderDiscount(c.Request.Context(), id, req.Amount, cart.DiscountKind(req.Kind))
	if err != nil {
		c.JSON(cartErrorStatus(err), apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, toCartResponse(updated))
}

// SetLoyaltyRedemption godoc
// @Summary Applies a loyalty redemption value to the cart
// @Tags carts
// @Accept json
// @Produce json
// @Param id path string true "Cart ID"
// @Param body body dto.LoyaltyRedemptionRequest true "Redemption value"
// @Success 200 {object} dto.CartResponse
// @Failure 400 {object} apierror.APIError
// @Router /v1/carts/{id}/loyalty [put]
func (h *CartHandler) SetLoyaltyRedemption(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.LoyaltyRedemptionRequest
	if !bindAndValidate(c, &req) {
		return
	}
	updated, err := h.svc.SetLoyaltyRedemption(c.Request.Context(), id, req.Amount)
	if err != nil {
		c.JSON(cartErrorStatus(err), apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, toCartResponse(updated))
}

// Clear godoc
// @Summary Empties the cart
// @Tags carts
// @Produce json
// @Param id path string true "Cart ID"
// @Success 200 {object} dto.CartResponse
// @Failure 404 {object} apierror.APIError
// @Router /v1/carts/{id}/clear [post]
func (h *CartHandler) Clear(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	updated, err := h.svc.Clear(id)
	if err != nil {
		c.JSON(http.StatusNotFound, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, toCartResponse(updated))
}

func pathID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid "+name))
		return uuid.Nil, false
	}
	return id, true
}

func cartErrorStatus(err error) int {
	switch {
	case errors.Is(err, service.ErrCartNotFound),
		errors.Is(err, service.ErrProductNotFound),
		errors.Is(err, cart.ErrLineNotFound):
		return http.StatusNotFound
	default:
		return http.StatusBadRequest
	}
}

func toCartResponse(c *cart.Cart) dto.CartResponse {
	resp := dto.CartResponse{
		ID:                c.ID.String(),
		Subtotal:          c.Subtotal(),
		PromotionSavings:  c.Subtotal().Sub(c.SubtotalAfterLinePromotions()),
		OrderDiscount:     c.OrderDiscountAmount(),
		LoyaltyRedemption: c.LoyaltyRedemption(),
		Total:             c.Total(),
	}
	for _, l := range c.Lines() {
		line := dto.CartLineResponse{
			ID:               l.ID.String(),
			ProductID:        l.Product.ID.String(),
			Name:             l.Product.Name,
			Quantity:         l.Quantity,
			Weight:           l.Weight,
			UnitPrice:        l.Product.UnitPrice,
			OriginalSubtotal: l.OriginalSubtotal,
			Discount:         l.EffectiveDiscount,
			Subtotal:         l.EffectiveSubtotal,
			ManualDiscount:   l.ManualDiscount != nil && l.Applied == nil,
		}
		if l.Applied != nil {
			line.Promotion = &dto.AppliedPromotionResponse{
				PromotionID: l.Applied.PromotionID.String(),
				Kind:        string(l.Applied.Kind),
				Description: l.Applied.Description,
				Discount:    l.Applied.Discount,
			}
		}
		resp.Lines = append(resp.Lines, line)
	}
	return resp
}
