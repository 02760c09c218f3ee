package service

import (
	"context"
	"testing"
	"time"

	"varejopos/internal/dto"
	"varejopos/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type checkoutFixture struct {
	carts     CartService
	registers RegisterService
	checkout  CheckoutService
	products  *fakeProductRepo
	sales     *fakeSaleRepo
	customers *fakeCustomerRepo
	registerR *fakeRegisterRepo
	operator  uuid.UUID
}

func newCheckoutFixture(t *testing.T) *checkoutFixture {
	t.Helper()

	products := newFakeProductRepo()
	sales := newFakeSaleRepo()
	customers := newFakeCustomerRepo()
	registerRepo := newFakeRegisterRepo()

	carts := NewCartService(products, &fakePromotionRepo{}, nil, time.Minute)
	registers := NewRegisterService(registerRepo, nil)
	checkout := NewCheckoutService(carts, registers, sales, customers, nil)

	operator := uuid.New()
	_, err := registers.Open(context.Background(), operator, decimal.RequireFromString("100.00"))
	require.NoError(t, err)

	return &checkoutFixture{
		carts:     carts,
		registers: registers,
		checkout:  checkout,
		products:  products,
		sales:     sales,
		customers: customers,
		registerR: registerRepo,
		operator:  operator,
	}
}

// cartWith builds a cart holding qty units of a fresh product at the
// given unit price and returns the cart id.
func (f *checkoutFixture) cartWith(t *testing.T, unitPrice string, qty int) string {
	t.Helper()
	p := f.products.add(model.Product{
		ID:        uuid.New(),
		Name:      "test product",
		Barcode:   uuid.NewString(),
		UnitPrice: decimal.RequireFromString(unitPrice),
		Active:    true,
	})

	c := f.carts.Create(context.Background())
	id := p.ID
	_, err := f.carts.AddItem(context.Background(), c.ID, &id, nil, nil)
	require.NoError(t, err)
	if qty > 1 {
		lines, err := f.carts.Get(c.ID)
		require.NoError(t, err)
		_, err = f.carts.SetQuantity(context.Background(), c.ID, lines.Lines()[0].ID, qty)
		require.NoError(t, err)
	}
	return c.ID.String()
}

func TestCheckout_CashSale(t *testing.T) {
	f := newCheckoutFixture(t)
	cartID := f.cartWith(t, "25.00", 2) // total 50.00
	received := decimal.RequireFromString("60.00")

	sale, err := f.checkout.Confirm(context.Background(), dto.CheckoutRequest{
		CartID:     cartID,
		OperatorID: f.operator.String(),
		Payments:   []dto.PaymentRequest{{Method: "cash", ReceivedAmount: &received}},
	})
	require.NoError(t, err)

	assert.Equal(t, int64(1), sale.TicketNumber)
	assert.True(t, sale.Total.Equal(decimal.RequireFromString("50.00")))
	assert.True(t, sale.Change.Equal(decimal.RequireFromString("10.00")))
	assert.Equal(t, "completed", sale.Status)

	// Register picked up the cash leg on top of the 100.00 float.
	current := f.registers.Current()
	assert.True(t, current.CashTotal.Equal(decimal.RequireFromString("150.00")))
	assert.True(t, current.TotalSales.Equal(decimal.RequireFromString("50.00")))

	// Cart is gone after a confirmed sale.
	_, err = f.carts.Get(uuid.MustParse(cartID))
	assert.ErrorIs(t, err, ErrCartNotFound)
}

func TestCheckout_SplitPayment(t *testing.T) {
	f := newCheckoutFixture(t)
	cartID := f.cartWith(t, "50.00", 2) // total 100.00

	sixty := decimal.RequireFromString("60.00")
	forty := decimal.RequireFromString("40.00")
	received := decimal.RequireFromString("60.00")

	sale, err := f.checkout.Confirm(context.Background(), dto.CheckoutRequest{
		CartID:     cartID,
		OperatorID: f.operator.String(),
		Payments: []dto.PaymentRequest{
			{Method: "cash", Amount: &sixty, ReceivedAmount: &received},
			{Method: "debit", Amount: &forty},
		},
	})
	require.NoError(t, err)
	require.Len(t, sale.Payments, 2)

	current := f.registers.Current()
	assert.True(t, current.CashTotal.Equal(decimal.RequireFromString("160.00")))
	assert.True(t, current.DebitTotal.Equal(forty))
}

func TestCheckout_SplitMismatchRejected(t *testing.T) {
	f := newCheckoutFixture(t)
	cartID := f.cartWith(t, "50.00", 2)

	sixty := decimal.RequireFromString("60.00")
	thirty := decimal.RequireFromString("30.00")
	received := decimal.RequireFromString("60.00")

	_, err := f.checkout.Confirm(context.Background(), dto.CheckoutRequest{
		CartID:     cartID,
		OperatorID: f.operator.String(),
		Payments: []dto.PaymentRequest{
			{Method: "cash", Amount: &sixty, ReceivedAmount: &received},
			{Method: "debit", Amount: &thirty},
		},
	})
	require.Error(t, err)
	assert.Empty(t, f.sales.sales, "rejected checkout must not persist a sale")
}

func TestCheckout_DeferredCreditRaisesDebt(t *testing.T) {
	f := newCheckoutFixture(t)
	cartID := f.cartWith(t, "80.00", 1)

	customerID := uuid.New()
	f.customers.customers[customerID] = &model.Customer{
		ID:          customerID,
		CreditLimit: decimal.RequireFromString("200.00"),
		CurrentDebt: decimal.RequireFromString("50.00"),
		Active:      true,
	}
	raw := customerID.String()

	sale, err := f.checkout.Confirm(context.Background(), dto.CheckoutRequest{
		CartID:     cartID,
		OperatorID: f.operator.String(),
		CustomerID: &raw,
		Payments:   []dto.PaymentRequest{{Method: "deferred_credit"}},
	})
	require.NoError(t, err)
	assert.True(t, sale.Total.Equal(decimal.RequireFromString("80.00")))

	assert.True(t, f.customers.customers[customerID].CurrentDebt.Equal(decimal.RequireFromString("130.00")))
	assert.True(t, f.registers.Current().DeferredTotal.Equal(decimal.RequireFromString("80.00")))
}

func TestCheckout_DeferredCreditOverLimitRejected(t *testing.T) {
	f := newCheckoutFixture(t)
	cartID := f.cartWith(t, "80.00", 1)

	customerID := uuid.New()
	f.customers.customers[customerID] = &model.Customer{
		ID:          customerID,
		CreditLimit: decimal.RequireFromString("100.00"),
		CurrentDebt: decimal.RequireFromString("30.00"), // 70 available < 80
		Active:      true,
	}
	raw := customerID.String()

	_, err := f.checkout.Confirm(context.Background(), dto.CheckoutRequest{
		CartID:     cartID,
		OperatorID: f.operator.String(),
		CustomerID: &raw,
		Payments:   []dto.PaymentRequest{{Method: "deferred_credit"}},
	})
	require.Error(t, err)
	assert.True(t, f.customers.customers[customerID].CurrentDebt.Equal(decimal.RequireFromString("30.00")))
	assert.Empty(t, f.sales.sales)
}

func TestCheckout_CreditInstallments(t *testing.T) {
	f := newCheckoutFixture(t)
	cartID := f.cartWith(t, "100.00", 1)
	due := "2025-07-01"

	sale, err := f.checkout.Confirm(context.Background(), dto.CheckoutRequest{
		CartID:     cartID,
		OperatorID: f.operator.String(),
		Payments: []dto.PaymentRequest{{
			Method:           "credit",
			InstallmentCount: 3,
			FirstDueDate:     &due,
			IntervalDays:     30,
		}},
	})
	require.NoError(t, err)
	require.Len(t, sale.Payments, 1)
	legs := sale.Payments[0].Installments
	require.Len(t, legs, 3)

	assert.True(t, legs[0].Amount.Equal(decimal.RequireFromString("33.33")))
	assert.True(t, legs[1].Amount.Equal(decimal.RequireFromString("33.33")))
	assert.True(t, legs[2].Amount.Equal(decimal.RequireFromString("33.34")))
	assert.Equal(t, "2025-07-01", legs[0].DueDate)
	assert.Equal(t, "2025-07-31", legs[1].DueDate)
	assert.Equal(t, "2025-08-30", legs[2].DueDate)
}

func TestCheckout_QuoteHasNoSideEffects(t *testing.T) {
	f := newCheckoutFixture(t)
	cartID := f.cartWith(t, "25.00", 2)
	received := decimal.RequireFromString("100.00")

	quote, err := f.checkout.Quote(context.Background(), dto.QuoteRequest{
		CartID:   cartID,
		Payments: []dto.PaymentRequest{{Method: "cash", ReceivedAmount: &received}},
	})
	require.NoError(t, err)
	assert.True(t, quote.Total.Equal(decimal.RequireFromString("50.00")))
	assert.True(t, quote.Change.Equal(decimal.RequireFromString("50.00")))

	assert.Empty(t, f.sales.sales)
	assert.True(t, f.registers.Current().TotalSales.IsZero())
	_, err = f.carts.Get(uuid.MustParse(cartID))
	assert.NoError(t, err, "quote must leave the cart alive")
}

func TestCheckout_EmptyCartRejected(t *testing.T) {
	f := newCheckoutFixture(t)
	c := f.carts.Create(context.Background())
	received := decimal.RequireFromString("10.00")

	_, err := f.checkout.Confirm(context.Background(), dto.CheckoutRequest{
		CartID:     c.ID.String(),
		OperatorID: f.operator.String(),
		Payments:   []dto.PaymentRequest{{Method: "cash", ReceivedAmount: &received}},
	})
	assert.ErrorIs(t, err, ErrEmptyCart)
}

func TestCheckout_LedgerFailureVoidsSale(t *testing.T) {
	f := newCheckoutFixture(t)
	cartID := f.cartWith(t, "25.00", 1)
	received := decimal.RequireFromString("25.00")

	f.registerR.failUpdate = true
	_, err := f.checkout.Confirm(context.Background(), dto.CheckoutRequest{
		CartID:     cartID,
		OperatorID: f.operator.String(),
		Payments:   []dto.PaymentRequest{{Method: "cash", ReceivedAmount: &received}},
	})
	require.Error(t, err)

	require.Len(t, f.sales.sales, 1)
	for _, s := range f.sales.sales {
		assert.Equal(t, "void", s.Status)
	}
	assert.True(t, f.registers.Current().TotalSales.IsZero())
}

func TestCheckout_NoOpenRegisterRejected(t *testing.T) {
	f := newCheckoutFixture(t)
	cartID := f.cartWith(t, "25.00", 1)
	received := decimal.RequireFromString("25.00")

	_, err := f.registers.Close(context.Background(), decimal.RequireFromString("100.00"), f.operator)
	require.NoError(t, err)

	_, err = f.checkout.Confirm(context.Background(), dto.CheckoutRequest{
		CartID:     cartID,
		OperatorID: f.operator.String(),
		Payments:   []dto.PaymentRequest{{Method: "cash", ReceivedAmount: &received}},
	})
	assert.ErrorIs(t, err, ErrNoOpenRegister)
}
