package router

import (
	"context"
	"time"

	"varejopos/internal/config"
	"varejopos/internal/handler"
	"varejopos/internal/middleware"
	"varejopos/internal/repository"
	"varejopos/internal/service"
	"varejopos/internal/worker"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(cfg.RateLimitPerMinute, time.Minute))

	// ── Repositories ─────────────────────────────────────────────────────────
	productRepo := repository.NewProductRepository(db)
	promotionRepo := repository.NewPromotionRepository(db)
	customerRepo := repository.NewCustomerRepository(db)
	saleRepo := repository.NewSaleRepository(db)
	registerRepo := repository.NewRegisterRepository(db)

	// ── Services ─────────────────────────────────────────────────────────────
	audit := worker.NewAuditDispatcher(rdb)
	cacheTTL := time.Duration(cfg.PromoCacheTTLSeconds) * time.Second

	registerSvc := service.NewRegisterService(registerRepo, audit)
	cartSvc := service.NewCartService(productRepo, promotionRepo, rdb, cacheTTL)
	checkoutSvc := service.NewCheckoutService(cartSvc, registerSvc, saleRepo, customerRepo, audit)

	// Pick up a session left open by a previous process.
	if err := registerSvc.Resume(context.Background()); err != nil {
		log.Warn().Err(err).Msg("could not resume open register session")
	}

	// ── Handlers ─────────────────────────────────────────────────────────────
	registerH := handler.NewRegisterHandler(registerSvc)
	cartH := handler.NewCartHandler(cartSvc)
	checkoutH := handler.NewCheckoutHandler(checkoutSvc)
	priceH := handler.NewPriceCheckHandler(productRepo, promotionRepo, rdb)

	// ── Routes ───────────────────────────────────────────────────────────────
	r.GET("/health", handler.Health(db, rdb))

	// Kiosk price check — read only
	r.GET("/v1/price/:barcode", priceH.GetByBarcode)

	v1 := r.Group("/v1")
	{
		register := v1.Group("/register")
		{
			register.POST("/open", registerH.Open)
			register.GET("/current", registerH.Current)
			register.POST("/withdrawals", registerH.Withdraw)
			register.POST("/deposits", registerH.Deposit)
			register.GET("/movement-reasons", registerH.MovementReasons)
			register.POST("/close", registerH.Close)
			register.GET("/history", registerH.History)
		}

		carts := v1.Group("/carts")
		{
			carts.POST("", cartH.Create)
			carts.GET("/:id", cartH.Get)
			carts.POST("/:id/items", cartH.AddItem)
			carts.PUT("/:id/items/:lineId", cartH.SetQuantity)
			carts.DELETE("/:id/items/:lineId", cartH.RemoveLine)
			carts.PUT("/:id/items/:lineId/discount", cartH.SetLineDiscount)
			carts.PUT("/:id/discount", cartH.SetOrderDiscount)
			carts.PUT("/:id/loyalty", cartH.SetLoyaltyRedemption)
			carts.POST("/:id/clear", cartH.Clear)
		}

		checkout := v1.Group("/checkout")
		{
			checkout.POST("/quote", checkoutH.Quote)
			checkout.POST("/confirm", checkoutH.Confirm)
		}
	}

	// Swagger UI — not exposed in production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
