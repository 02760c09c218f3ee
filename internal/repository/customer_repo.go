package repository

import (
	"context"

	"varejopos/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CustomerRepository is the customer read contract plus the single write
// the core owns: raising the debt when a deferred-credit sale confirms.
type CustomerRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.Customer, error)
	AddDebt(ctx context.Context, id uuid.UUID, amount decimal.Decimal) error
}

type customerRepo struct{ db *gorm.DB }

func NewCustomerRepository(db *gorm.DB) CustomerRepository { return &customerRepo{db: db} }

func (r *customerRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Customer, error) {
	var c model.Customer
	err := r.db.WithContext(ctx).First(&c, "id = ? AND active", id).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *customerRepo) AddDebt(ctx context.Context, id uuid.UUID, amount decimal.Decimal) error {
	return r.db.WithContext(ctx).Model(&model.Customer{}).
		Where("id = ?", id).
		Update("current_debt", gorm.Expr("current_debt + ?", amount)).Error
}
