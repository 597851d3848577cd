package repositories

import (
	"context"
	"time"

	"agency-cms/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type GuestVisitRepository interface {
	// Record stores the visit unless the visitor was already seen that day.
	Record(ctx context.Context, visit *models.GuestVisit) error
	CountByDay(ctx context.Context, day time.Time) (int64, error)
}

type guestVisitRepository struct {
	db *gorm.DB
}

func NewGuestVisitRepository(db *gorm.DB) GuestVisitRepository {
	return &guestVisitRepository{db: db}
}

func (r *guestVisitRepository) Record(ctx context.Context, visit *models.GuestVisit) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(visit).Error
}

func (r *guestVisitRepository) CountByDay(ctx context.Context, day time.Time) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&models.GuestVisit{}).
		Where("visit_date = ?", models.VisitDay(day)).
		Count(&total).Error
	return total, err
}
