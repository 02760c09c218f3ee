package service

import (
	"context"
	"errors"
	"time"

	"varejopos/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// In-memory repository fakes. Each fake can be told to fail its next
// write so the persist-before-swap behavior is observable.

type fakeRegisterRepo struct {
	sessions  map[uuid.UUID]*model.RegisterSession
	movements []model.CashMovement
	nextShift int

	failCreate bool
	failUpdate bool
}

func newFakeRegisterRepo() *fakeRegisterRepo {
	return &fakeRegisterRepo{sessions: make(map[uuid.UUID]*model.RegisterSession), nextShift: 1}
}

func (f *fakeRegisterRepo) NextShiftNumber(ctx context.Context) (int, error) {
	return f.nextShift, nil
}

func (f *fakeRegisterRepo) CreateSession(ctx context.Context, s *model.RegisterSession) error {
	if f.failCreate {
		return errors.New("create failed")
	}
	copied := *s
	f.sessions[s.ID] = &copied
	f.nextShift++
	return nil
}

func (f *fakeRegisterRepo) UpdateSession(ctx context.Context, s *model.RegisterSession) error {
	if f.failUpdate {
		return errors.New("update failed")
	}
	copied := *s
	f.sessions[s.ID] = &copied
	return nil
}

func (f *fakeRegisterRepo) RecordMovement(ctx context.Context, s *model.RegisterSession, m *model.CashMovement) error {
	if f.failUpdate {
		return errors.New("update failed")
	}
	f.movements = append(f.movements, *m)
	copied := *s
	f.sessions[s.ID] = &copied
	return nil
}

func (f *fakeRegisterRepo) FindOpenSession(ctx context.Context) (*model.RegisterSession, error) {
	for _, s := range f.sessions {
		if s.Status == model.RegisterOpen {
			copied := *s
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakeRegisterRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.RegisterSession, error) {
	s, ok := f.sessions[id]
	if !ok {
		return nil, errors.New("not found")
	}
	copied := *s
	return &copied, nil
}

func (f *fakeRegisterRepo) ListClosed(ctx context.Context, page, limit int) ([]model.RegisterSession, int64, error) {
	var closed []model.RegisterSession
	for _, s := range f.sessions {
		if s.Status == model.RegisterClosed {
			closed = append(closed, *s)
		}
	}
	return closed, int64(len(closed)), nil
}

type fakeSaleRepo struct {
	sales      map[uuid.UUID]*model.Sale
	nextTicket int64
	failCreate bool
}

func newFakeSaleRepo() *fakeSaleRepo {
	return &fakeSaleRepo{sales: make(map[uuid.UUID]*model.Sale), nextTicket: 1}
}

func (f *fakeSaleRepo) NextTicketNumber(ctx context.Context) (int64, error) {
	return f.nextTicket, nil
}

func (f *fakeSaleRepo) Create(ctx context.Context, sale *model.Sale) error {
	if f.failCreate {
		return errors.New("create failed")
	}
	f.sales[sale.ID] = sale
	f.nextTicket++
	return nil
}

func (f *fakeSaleRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	if s, ok := f.sales[id]; ok {
		s.Status = status
	}
	return nil
}

func (f *fakeSaleRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Sale, error) {
	s, ok := f.sales[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return s, nil
}

type fakeCustomerRepo struct {
	customers map[uuid.UUID]*model.Customer
}

func newFakeCustomerRepo() *fakeCustomerRepo {
	return &fakeCustomerRepo{customers: make(map[uuid.UUID]*model.Customer)}
}

func (f *fakeCustomerRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Customer, error) {
	c, ok := f.customers[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return c, nil
}

func (f *fakeCustomerRepo) AddDebt(ctx context.Context, id uuid.UUID, amount decimal.Decimal) error {
	c, ok := f.customers[id]
	if !ok {
		return errors.New("not found")
	}
	c.CurrentDebt = c.CurrentDebt.Add(amount)
	return nil
}

type fakeProductRepo struct {
	products map[uuid.UUID]*model.Product
}

func newFakeProductRepo() *fakeProductRepo {
	return &fakeProductRepo{products: make(map[uuid.UUID]*model.Product)}
}

func (f *fakeProductRepo) add(p model.Product) model.Product {
	f.products[p.ID] = &p
	return p
}

func (f *fakeProductRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	p, ok := f.products[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return p, nil
}

func (f *fakeProductRepo) FindByBarcode(ctx context.Context, barcode string) (*model.Product, error) {
	for _, p := range f.products {
		if p.Barcode == barcode {
			return p, nil
		}
	}
	return nil, errors.New("not found")
}

type fakePromotionRepo struct {
	promos []model.Promotion
}

func (f *fakePromotionRepo) ListActive(ctx context.Context, now time.Time) ([]model.Promotion, error) {
	return f.promos, nil
}
