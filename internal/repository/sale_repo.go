package repository

import (
	"context"

	"varejopos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SaleRepository persists confirmed sale snapshots.
type SaleRepository interface {
	NextTicketNumber(ctx context.Context) (int64, error)
	Create(ctx context.Context, sale *model.Sale) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Sale, error)
}

type saleRepo struct{ db *gorm.DB }

func NewSaleRepository(db *gorm.DB) SaleRepository { return &saleRepo{db: db} }

func (r *saleRepo) NextTicketNumber(ctx context.Context) (int64, error) {
	var max int64
	err := r.db.WithContext(ctx).Model(&model.Sale{}).
		Select("COALESCE(MAX(ticket_number), 0)").Scan(&max).Error
	if err != nil {
		return 0, err
	}
	return max + 1, nil
}

// Create writes the sale with its items, payments and installment legs in
// one transaction via GORM association persistence.
func (r *saleRepo) Create(ctx context.Context, sale *model.Sale) error {
	return r.db.WithContext(ctx).Create(sale).Error
}

func (r *saleRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	return r.db.WithContext(ctx).Model(&model.Sale{}).
		Where("id = ?", id).Update("status", status).Error
}

func (r *saleRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Sale, error) {
	var s model.Sale
	err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Payments").
		Preload("Payments.Installments").
		First(&s, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}
