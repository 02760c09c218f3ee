package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"varejopos/internal/cart"
	"varejopos/internal/model"
	"varejopos/internal/repository"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

var (
	ErrCartNotFound    = errors.New("cart not found")
	ErrProductNotFound = errors.New("product not found")
	ErrMissingProduct  = errors.New("a product id or barcode is required")
)

const promoCacheKey = "promos:active"

// CartService holds the in-progress carts of the terminal, keyed by cart
// id. Carts are memory only: an abandoned cart simply ages out with the
// process, nothing is persisted until checkout confirms.
type CartService interface {
	Create(ctx context.Context) *cart.Cart
	Get(id uuid.UUID) (*cart.Cart, error)
	AddItem(ctx context.Context, cartID uuid.UUID, productID *uuid.UUID, barcode *string, weight *decimal.Decimal) (*cart.Cart, error)
	SetQuantity(ctx context.Context, cartID, lineID uuid.UUID, qty int) (*cart.Cart, error)
	RemoveLine(ctx context.Context, cartID, lineID uuid.UUID) (*cart.Cart, error)
	SetManualDiscount(ctx context.Context, cartID, lineID uuid.UUID, amount decimal.Decimal, kind cart.DiscountKind) (*cart.Cart, error)
	SetOrderDiscount(ctx context.Context, cartID uuid.UUID, amount decimal.Decimal, kind cart.DiscountKind) (*cart.Cart, error)
	SetLoyaltyRedemption(ctx context.Context, cartID uuid.UUID, amount decimal.Decimal) (*cart.Cart, error)
	Clear(cartID uuid.UUID) (*cart.Cart, error)
	Drop(cartID uuid.UUID)
}

type cartService struct {
	products repository.ProductRepository
	promos   repository.PromotionRepository
	rdb      *redis.Client
	cacheTTL time.Duration

	mu    sync.Mutex
	carts map[uuid.UUID]*cart.Cart
}

func NewCartService(products repository.ProductRepository, promos repository.PromotionRepository, rdb *redis.Client, cacheTTL time.Duration) CartService {
	return &cartService{
		products: products,
		promos:   promos,
		rdb:      rdb,
		cacheTTL: cacheTTL,
		carts:    make(map[uuid.UUID]*cart.Cart),
	}
}

func (s *cartService) Create(ctx context.Context) *cart.Cart {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := cart.New()
	s.carts[c.ID] = c
	return c
}

func (s *cartService) Get(id uuid.UUID) (*cart.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.carts[id]
	if !ok {
		return nil, ErrCartNotFound
	}
	return c, nil
}

func (s *cartService) AddItem(ctx context.Context, cartID uuid.UUID, productID *uuid.UUID, barcode *string, weight *decimal.Decimal) (*cart.Cart, error) {
	product, err := s.resolveProduct(ctx, productID, barcode)
	if err != nil {
		return nil, err
	}
	return s.mutate(ctx, cartID, func(c *cart.Cart) error {
		if product.IsWeighted {
			if weight == nil {
				return cart.ErrWeightedProduct
			}
			_, err := c.AddWeightedLine(*product, *weight)
			return err
		}
		// A captured weight on a unit product is a scanning mistake,
		// not something to silently drop.
		if weight != nil {
			return cart.ErrUnitProduct
		}
		_, err := c.AddLine(*product)
		return err
	})
}

func (s *cartService) SetQuantity(ctx context.Context, cartID, lineID uuid.UUID, qty int) (*cart.Cart, error) {
	return s.mutate(ctx, cartID, func(c *cart.Cart) error {
		return c.SetQuantity(lineID, qty)
	})
}

func (s *cartService) RemoveLine(ctx context.Context, cartID, lineID uuid.UUID) (*cart.Cart, error) {
	return s.mutate(ctx, cartID, func(c *cart.Cart) error {
		c.RemoveLine(lineID)
		return nil
	})
}

func (s *cartService) SetManualDiscount(ctx context.Context, cartID, lineID uuid.UUID, amount decimal.Decimal, kind cart.DiscountKind) (*cart.Cart, error) {
	return s.mutate(ctx, cartID, func(c *cart.Cart) error {
		return c.SetManualDiscount(lineID, amount, kind)
	})
}

func (s *cartService) SetOrderDiscount(ctx context.Context, cartID uuid.UUID, amount decimal.Decimal, kind cart.DiscountKind) (*cart.Cart, error) {
	return s.mutate(ctx, cartID, func(c *cart.Cart) error {
		return c.SetOrderDiscount(amount, kind)
	})
}

func (s *cartService) SetLoyaltyRedemption(ctx context.Context, cartID uuid.UUID, amount decimal.Decimal) (*cart.Cart, error) {
	return s.mutate(ctx, cartID, func(c *cart.Cart) error {
		return c.SetLoyaltyRedemption(amount)
	})
}

func (s *cartService) Clear(cartID uuid.UUID) (*cart.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.carts[cartID]
	if !ok {
		return nil, ErrCartNotFound
	}
	c.Clear()
	return c, nil
}

func (s *cartService) Drop(cartID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.carts, cartID)
}

// mutate applies one change and recomputes against the current active
// promotion set, so totals and applied promotions never go stale.
func (s *cartService) mutate(ctx context.Context, cartID uuid.UUID, fn func(*cart.Cart) error) (*cart.Cart, error) {
	promos, err := s.activePromotions(ctx)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.carts[cartID]
	if !ok {
		return nil, ErrCartNotFound
	}
	if err := fn(c); err != nil {
		return nil, err
	}
	c.Recompute(promos, time.Now())
	return c, nil
}

func (s *cartService) resolveProduct(ctx context.Context, productID *uuid.UUID, barcode *string) (*model.Product, error) {
	switch {
	case productID != nil:
		p, err := s.products.FindByID(ctx, *productID)
		if err != nil {
			return nil, ErrProductNotFound
		}
		return p, nil
	case barcode != nil:
		p, err := s.products.FindByBarcode(ctx, *barcode)
		if err != nil {
			return nil, ErrProductNotFound
		}
		return p, nil
	}
	return nil, ErrMissingProduct
}

// activePromotions serves the rule set from the Redis cache when possible
// and falls back to the database. A cold or unavailable cache is never an
// error: the database read is the source of truth.
func (s *cartService) activePromotions(ctx context.Context) ([]model.Promotion, error) {
	if s.rdb != nil {
		if raw, err := s.rdb.Get(ctx, promoCacheKey).Result(); err == nil {
			var promos []model.Promotion
			if err := json.Unmarshal([]byte(raw), &promos); err == nil {
				return promos, nil
			}
			log.Warn().Msg("promotion cache entry was corrupt, falling back to database")
		}
	}

	promos, err := s.promos.ListActive(ctx, time.Now())
	if err != nil {
		return nil, err
	}

	if s.rdb != nil {
		if encoded, err := json.Marshal(promos); err == nil {
			if err := s.rdb.Set(ctx, promoCacheKey, encoded, s.cacheTTL).Err(); err != nil {
				log.Warn().Err(err).Msg("promotion cache write failed")
			}
		}
	}
	return promos, nil
}
