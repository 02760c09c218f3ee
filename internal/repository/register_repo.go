package repository

import (
	"context"
	"errors"

	"varejopos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RegisterRepository persists register sessions and their immutable cash
// movements.
type RegisterRepository interface {
	NextShiftNumber(ctx context.Context) (int, error)
	CreateSession(ctx context.Context, s *model.RegisterSession) error
	UpdateSession(ctx context.Context, s *model.RegisterSession) error
	// RecordMovement writes the movement and the updated session totals
	// atomically.
	RecordMovement(ctx context.Context, s *model.RegisterSession, m *model.CashMovement) error
	FindOpenSession(ctx context.Context) (*model.RegisterSession, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.RegisterSession, error)
	ListClosed(ctx context.Context, page, limit int) ([]model.RegisterSession, int64, error)
}

type registerRepo struct{ db *gorm.DB }

func NewRegisterRepository(db *gorm.DB) RegisterRepository { return &registerRepo{db: db} }

func (r *registerRepo) NextShiftNumber(ctx context.Context) (int, error) {
	var max int
	err := r.db.WithContext(ctx).Model(&model.RegisterSession{}).
		Select("COALESCE(MAX(shift_number), 0)").Scan(&max).Error
	if err != nil {
		return 0, err
	}
	return max + 1, nil
}

func (r *registerRepo) CreateSession(ctx context.Context, s *model.RegisterSession) error {
	return r.db.WithContext(ctx).Omit("Movements").Create(s).Error
}

func (r *registerRepo) UpdateSession(ctx context.Context, s *model.RegisterSession) error {
	return r.db.WithContext(ctx).Omit("Movements").Save(s).Error
}

func (r *registerRepo) RecordMovement(ctx context.Context, s *model.RegisterSession, m *model.CashMovement) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(m).Error; err != nil {
			return err
		}
		return tx.Omit("Movements").Save(s).Error
	})
}

func (r *registerRepo) FindOpenSession(ctx context.Context) (*model.RegisterSession, error) {
	var s model.RegisterSession
	err := r.db.WithContext(ctx).Preload("Movements").
		First(&s, "status = ?", model.RegisterOpen).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *registerRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.RegisterSession, error) {
	var s model.RegisterSession
	err := r.db.WithContext(ctx).Preload("Movements").First(&s, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *registerRepo) ListClosed(ctx context.Context, page, limit int) ([]model.RegisterSession, int64, error) {
	var total int64
	q := r.db.WithContext(ctx).Model(&model.RegisterSession{}).
		Where("status = ?", model.RegisterClosed)
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var sessions []model.RegisterSession
	err := q.Order("shift_number DESC").
		Offset((page - 1) * limit).Limit(limit).
		Find(&sessions).Error
	return sessions, total, err
}
