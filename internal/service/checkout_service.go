package service

import (
	"context"
	"errors"
	"time"

	"varejopos/internal/cart"
	"varejopos/internal/dto"
	"varejopos/internal/model"
	"varejopos/internal/payment"
	"varejopos/internal/repository"
	"varejopos/internal/worker"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

var (
	ErrEmptyCart        = errors.New("cart has no lines")
	ErrCustomerNotFound = errors.New("customer not found")
)

// CheckoutService turns a cart into a confirmed sale: it validates the
// payment legs, persists the sale snapshot, posts the legs to the open
// register, and raises customer debt for deferred-credit legs.
type CheckoutService interface {
	// Quote validates and previews the allocation without side effects.
	Quote(ctx context.Context, req dto.QuoteRequest) (*dto.QuoteResponse, error)
	Confirm(ctx context.Context, req dto.CheckoutRequest) (*dto.SaleResponse, error)
}

type checkoutService struct {
	carts     CartService
	registers RegisterService
	sales     repository.SaleRepository
	customers repository.CustomerRepository
	audit     *worker.AuditDispatcher
}

func NewCheckoutService(
	carts CartService,
	registers RegisterService,
	sales repository.SaleRepository,
	customers repository.CustomerRepository,
	audit *worker.AuditDispatcher,
) CheckoutService {
	return &checkoutService{
		carts:     carts,
		registers: registers,
		sales:     sales,
		customers: customers,
		audit:     audit,
	}
}

func (s *checkoutService) Quote(ctx context.Context, req dto.QuoteRequest) (*dto.QuoteResponse, error) {
	c, err := s.cartFor(req.CartID)
	if err != nil {
		return nil, err
	}
	entries, err := s.allocate(ctx, c.Total(), req.CustomerID, req.Payments)
	if err != nil {
		return nil, err
	}

	resp := &dto.QuoteResponse{Total: c.Total(), Change: decimal.Zero}
	for _, e := range entries {
		resp.Change = resp.Change.Add(e.Change)
		resp.Payments = append(resp.Payments, toPaymentEntryResponse(e))
	}
	return resp, nil
}

func (s *checkoutService) Confirm(ctx context.Context, req dto.CheckoutRequest) (*dto.SaleResponse, error) {
	c, err := s.cartFor(req.CartID)
	if err != nil {
		return nil, err
	}
	session := s.registers.Current()
	if session == nil {
		return nil, ErrNoOpenRegister
	}
	operator, err := uuid.Parse(req.OperatorID)
	if err != nil {
		return nil, err
	}

	entries, err := s.allocate(ctx, c.Total(), req.CustomerID, req.Payments)
	if err != nil {
		return nil, err
	}

	ticket, err := s.sales.NextTicketNumber(ctx)
	if err != nil {
		return nil, err
	}

	sale := s.buildSale(c, session, operator, req.CustomerID, ticket, entries)
	if err := s.sales.Create(ctx, sale); err != nil {
		return nil, err
	}

	// The sale row exists now; a failed ledger post voids it so the
	// persisted record and the register totals never disagree.
	if err := s.registers.PostSale(ctx, entries); err != nil {
		if voidErr := s.sales.UpdateStatus(ctx, sale.ID, "void"); voidErr != nil {
			log.Error().Err(voidErr).Str("sale_id", sale.ID.String()).Msg("failed to void sale after ledger post failure")
		}
		return nil, err
	}

	s.settleDeferredCredit(ctx, sale, entries)
	s.emitAuditTrail(ctx, sale, operator)

	s.carts.Drop(c.ID)

	log.Info().
		Int64("ticket", sale.TicketNumber).
		Str("total", sale.Total.String()).
		Int("payments", len(sale.Payments)).
		Msg("sale confirmed")
	return toSaleResponse(sale, entries), nil
}

func (s *checkoutService) cartFor(rawID string) (*cart.Cart, error) {
	cartID, err := uuid.Parse(rawID)
	if err != nil {
		return nil, ErrCartNotFound
	}
	c, err := s.carts.Get(cartID)
	if err != nil {
		return nil, err
	}
	if c.Empty() {
		return nil, ErrEmptyCart
	}
	return c, nil
}

// allocate translates the request legs and runs the allocator. The
// customer's credit standing is read once and shared by every
// deferred-credit leg.
func (s *checkoutService) allocate(ctx context.Context, total decimal.Decimal, customerID *string, payments []dto.PaymentRequest) ([]payment.Entry, error) {
	var credit *payment.CustomerCredit
	for _, p := range payments {
		if payment.Method(p.Method) != payment.MethodDeferredCredit {
			continue
		}
		if customerID == nil {
			return nil, payment.ErrMissingCustomer
		}
		id, err := uuid.Parse(*customerID)
		if err != nil {
			return nil, ErrCustomerNotFound
		}
		customer, err := s.customers.FindByID(ctx, id)
		if err != nil {
			return nil, ErrCustomerNotFound
		}
		credit = &payment.CustomerCredit{
			CreditLimit: customer.CreditLimit,
			CurrentDebt: customer.CurrentDebt,
		}
		break
	}

	reqs := make([]payment.Request, 0, len(payments))
	for _, p := range payments {
		r := payment.Request{
			Method:           payment.Method(p.Method),
			ReceivedAmount:   p.ReceivedAmount,
			InstallmentCount: p.InstallmentCount,
			IntervalDays:     p.IntervalDays,
			Customer:         credit,
		}
		if p.Amount != nil {
			r.Amount = *p.Amount
		}
		if p.FirstDueDate != nil {
			due, err := time.Parse("2006-01-02", *p.FirstDueDate)
			if err != nil {
				return nil, payment.ErrInvalidInstallments
			}
			r.FirstDueDate = &due
		}
		reqs = append(reqs, r)
	}

	if len(reqs) == 1 {
		e, err := payment.Allocate(total, reqs[0])
		if err != nil {
			return nil, err
		}
		return []payment.Entry{*e}, nil
	}
	return payment.AllocateSplit(total, reqs)
}

func (s *checkoutService) buildSale(c *cart.Cart, session *model.RegisterSession, operator uuid.UUID, customerID *string, ticket int64, entries []payment.Entry) *model.Sale {
	sale := &model.Sale{
		ID:                uuid.New(),
		TicketNumber:      ticket,
		RegisterSessionID: session.ID,
		OperatorID:        operator,
		Subtotal:          c.Subtotal(),
		DiscountTotal:     c.Subtotal().Sub(c.Total()),
		Total:             c.Total(),
		Status:            "completed",
		CreatedAt:         time.Now(),
	}
	if customerID != nil {
		if id, err := uuid.Parse(*customerID); err == nil {
			sale.CustomerID = &id
		}
	}

	for _, l := range c.Lines() {
		item := model.SaleItem{
			ID:        uuid.New(),
			SaleID:    sale.ID,
			ProductID: l.Product.ID,
			Name:      l.Product.Name,
			Quantity:  l.Quantity,
			Weight:    l.Weight,
			UnitPrice: l.Product.UnitPrice,
			Discount:  l.EffectiveDiscount,
			Subtotal:  l.EffectiveSubtotal,
		}
		if l.Applied != nil {
			id := l.Applied.PromotionID
			item.PromotionID = &id
		}
		sale.Items = append(sale.Items, item)
	}

	for _, e := range entries {
		p := model.SalePayment{
			ID:               uuid.New(),
			SaleID:           sale.ID,
			Method:           string(e.Method),
			Amount:           e.Amount,
			Change:           e.Change,
			InstallmentCount: e.InstallmentCount,
		}
		for _, leg := range e.Installments {
			p.Installments = append(p.Installments, model.Installment{
				ID:            uuid.New(),
				SalePaymentID: p.ID,
				Sequence:      leg.Sequence,
				DueDate:       leg.DueDate,
				Amount:        leg.Amount,
			})
		}
		sale.Payments = append(sale.Payments, p)
	}
	return sale
}

// settleDeferredCredit raises the customer's debt by each fiado leg. The
// sale is already confirmed; a failed debt write is logged for manual
// follow-up rather than unwinding the sale.
func (s *checkoutService) settleDeferredCredit(ctx context.Context, sale *model.Sale, entries []payment.Entry) {
	if sale.CustomerID == nil {
		return
	}
	for _, e := range entries {
		if e.Method != payment.MethodDeferredCredit {
			continue
		}
		if err := s.customers.AddDebt(ctx, *sale.CustomerID, e.Amount); err != nil {
			log.Error().Err(err).
				Str("customer_id", sale.CustomerID.String()).
				Str("amount", e.Amount.String()).
				Msg("failed to record deferred-credit debt")
		}
	}
}

func (s *checkoutService) emitAuditTrail(ctx context.Context, sale *model.Sale, operator uuid.UUID) {
	for _, item := range sale.Items {
		if item.Discount.Sign() <= 0 {
			continue
		}
		action := "manual_discount_applied"
		values := map[string]interface{}{
			"product_id": item.ProductID.String(),
			"discount":   item.Discount.String(),
		}
		if item.PromotionID != nil {
			action = "promotion_applied"
			values["promotion_id"] = item.PromotionID.String()
		}
		s.audit.Log(ctx, worker.AuditEvent{
			Action:     action,
			EntityType: "sale_item",
			EntityID:   item.ID.String(),
			OperatorID: operator.String(),
			NewValues:  values,
		})
	}
	s.audit.Log(ctx, worker.AuditEvent{
		Action:     "sale_confirmed",
		EntityType: "sale",
		EntityID:   sale.ID.String(),
		OperatorID: operator.String(),
		NewValues: map[string]interface{}{
			"ticket_number": sale.TicketNumber,
			"total":         sale.Total.String(),
		},
	})
}

// ─── DTO mapping ─────────────────────────────────────────────────────────────

func toPaymentEntryResponse(e payment.Entry) dto.PaymentEntryResponse {
	resp := dto.PaymentEntryResponse{
		Method:           string(e.Method),
		Amount:           e.Amount,
		Change:           e.Change,
		InstallmentCount: e.InstallmentCount,
	}
	for _, leg := range e.Installments {
		resp.Installments = append(resp.Installments, dto.InstallmentResponse{
			Sequence: leg.Sequence,
			DueDate:  leg.DueDate.Format("2006-01-02"),
			Amount:   leg.Amount,
		})
	}
	return resp
}

func toSaleResponse(sale *model.Sale, entries []payment.Entry) *dto.SaleResponse {
	resp := &dto.SaleResponse{
		ID:                sale.ID.String(),
		TicketNumber:      sale.TicketNumber,
		RegisterSessionID: sale.RegisterSessionID.String(),
		OperatorID:        sale.OperatorID.String(),
		Subtotal:          sale.Subtotal,
		DiscountTotal:     sale.DiscountTotal,
		Total:             sale.Total,
		Change:            decimal.Zero,
		Status:            sale.Status,
		CreatedAt:         sale.CreatedAt.Format(time.RFC3339),
	}
	if sale.CustomerID != nil {
		id := sale.CustomerID.String()
		resp.CustomerID = &id
	}
	for _, item := range sale.Items {
		it := dto.SaleItemResponse{
			ProductID: item.ProductID.String(),
			Name:      item.Name,
			Quantity:  item.Quantity,
			Weight:    item.Weight,
			UnitPrice: item.UnitPrice,
			Discount:  item.Discount,
			Subtotal:  item.Subtotal,
		}
		if item.PromotionID != nil {
			id := item.PromotionID.String()
			it.PromotionID = &id
		}
		resp.Items = append(resp.Items, it)
	}
	for _, e := range entries {
		resp.Change = resp.Change.Add(e.Change)
		resp.Payments = append(resp.Payments, toPaymentEntryResponse(e))
	}
	return resp
}
