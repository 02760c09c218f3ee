package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"varejopos/internal/apierror"
	"varejopos/internal/dto"
	"varejopos/internal/promo"
	"varejopos/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

const priceCacheTTL = 5 * time.Minute

// PriceCheckHandler serves the kiosk price lookup: product price by barcode
// plus the promotion a single unit would get right now. Read only.
type PriceCheckHandler struct {
	products repository.ProductRepository
	promos   repository.PromotionRepository
	rdb      *redis.Client
}

func NewPriceCheckHandler(products repository.ProductRepository, promos repository.PromotionRepository, rdb *redis.Client) *PriceCheckHandler {
	return &PriceCheckHandler{products: products, promos: promos, rdb: rdb}
}

// GetByBarcode godoc
// @Summary Price check by barcode
// @Tags price
// @Produce json
// @Param barcode path string true "Barcode"
// @Success 200 {object} dto.PriceCheckResponse
// @Failure 404 {object} apierror.APIError
// @Router /v1/price/{barcode} [get]
func (h *PriceCheckHandler) GetByBarcode(c *gin.Context) {
	barcode := c.Param("barcode")
	ctx := c.Request.Context()
	cacheKey := "price:" + barcode

	if h.rdb != nil {
		if cached, err := h.rdb.Get(ctx, cacheKey).Bytes(); err == nil {
			var resp dto.PriceCheckResponse
			if jsonErr := json.Unmarshal(cached, &resp); jsonErr == nil {
				c.JSON(http.StatusOK, resp)
				return
			}
		}
	}

	product, err := h.products.FindByBarcode(ctx, barcode)
	if err != nil {
		c.JSON(http.StatusNotFound, apierror.New("product not found"))
		return
	}

	resp := dto.PriceCheckResponse{
		Name:      product.Name,
		UnitPrice: product.UnitPrice,
		Category:  product.Category,
	}

	// The promotion shown is what one unit earns right now; quantity
	// tiers are the cart's business.
	if rules, err := h.promos.ListActive(ctx, time.Now()); err == nil {
		applied := promo.Evaluate(rules, promo.Input{
			ProductID: product.ID,
			Category:  product.Category,
			Quantity:  decimal.NewFromInt(1),
			UnitPrice: product.UnitPrice,
			Now:       time.Now(),
		})
		if applied != nil {
			resp.Promotion = &dto.AppliedPromotionResponse{
				PromotionID: applied.PromotionID.String(),
				Kind:        string(applied.Kind),
				Description: applied.Description,
				Discount:    applied.Discount,
			}
			promoPrice := product.UnitPrice.Sub(applied.Discount)
			resp.PromoPrice = &promoPrice
		}
	}

	if h.rdb != nil {
		if b, jsonErr := json.Marshal(resp); jsonErr == nil {
			_ = h.rdb.Set(context.Background(), cacheKey, b, priceCacheTTL).Err()
		}
	}

	c.JSON(http.StatusOK, resp)
}
