package repository

import (
	"context"
	"time"

	"varejopos/internal/model"

	"gorm.io/gorm"
)

// PromotionRepository reads the active promotion rule set. Fine-grained
// filters (time-of-day, weekday, quantities) run in the evaluator; the
// query only pre-filters on the active flag and the date range.
type PromotionRepository interface {
	ListActive(ctx context.Context, now time.Time) ([]model.Promotion, error)
}

type promotionRepo struct{ db *gorm.DB }

func NewPromotionRepository(db *gorm.DB) PromotionRepository { return &promotionRepo{db: db} }

func (r *promotionRepo) ListActive(ctx context.Context, now time.Time) ([]model.Promotion, error) {
	// end_date is compared against the start of today so a rule expiring
	// today still applies for the whole day.
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	var promos []model.Promotion
	err := r.db.WithContext(ctx).
		Where("active AND start_date <= ? AND end_date >= ?", now, today).
		Order("priority DESC").
		Find(&promos).Error
	return promos, err
}
