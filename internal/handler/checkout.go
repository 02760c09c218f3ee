package handler

import (
	"errors"
	"net/http"

	"varejopos/internal/apierror"
	"varejopos/internal/dto"
	"varejopos/internal/payment"
	"varejopos/internal/service"

	"github.com/gin-gonic/gin"
)

type CheckoutHandler struct{ svc service.CheckoutService }

func NewCheckoutHandler(svc service.CheckoutService) *CheckoutHandler {
	return &CheckoutHandler{svc: svc}
}

// Quote godoc
// @Summary Previews the payment allocation for a cart without committing
// @Tags checkout
// @Accept json
// @Produce json
// @Param body body dto.QuoteRequest true "Cart and payment legs"
// @Success 200 {object} dto.QuoteResponse
// @Failure 400 {object} apierror.APIError
// @Failure 404 {object} apierror.APIError
// @Router /v1/checkout/quote [post]
func (h *CheckoutHandler) Quote(c *gin.Context) {
	var req dto.QuoteRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Quote(c.Request.Context(), req)
	if err != nil {
		c.JSON(checkoutErrorStatus(err), apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Confirm godoc
// @Summary Confirms the sale: persists it and posts it to the register
// @Tags checkout
// @Accept json
// @Produce json
// @Param body body dto.CheckoutRequest true "Cart and payment legs"
// @Success 201 {object} dto.SaleResponse
// @Failure 400 {object} apierror.APIError
// @Failure 404 {object} apierror.APIError
// @Failure 409 {object} apierror.APIError
// @Router /v1/checkout/confirm [post]
func (h *CheckoutHandler) Confirm(c *gin.Context) {
	var req dto.CheckoutRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Confirm(c.Request.Context(), req)
	if err != nil {
		c.JSON(checkoutErrorStatus(err), apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func checkoutErrorStatus(err error) int {
	switch {
	case errors.Is(err, service.ErrCartNotFound),
		errors.Is(err, service.ErrCustomerNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrNoOpenRegister):
		return http.StatusConflict
	case errors.Is(err, payment.ErrInsufficientCredit),
		errors.Is(err, payment.ErrInsufficientCash),
		errors.Is(err, payment.ErrSplitMismatch):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusBadRequest
	}
}
