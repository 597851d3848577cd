package repositories

import (
	"context"
	"strings"
	"time"

	"agency-cms/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type NewsletterRepository interface {
	Create(ctx context.Context, newsletter *models.Newsletter) error
	GetByID(ctx context.Context, id string) (*models.Newsletter, error)
	List(ctx context.Context, authorID string, filter models.NewsletterFilter) ([]models.Newsletter, error)
	ListByStatus(ctx context.Context, status models.NewsletterStatus) ([]models.Newsletter, error)
	Update(ctx context.Context, id string, from models.NewsletterStatus, changes map[string]interface{}) (bool, error)
	MarkPublished(ctx context.Context, id string, at time.Time) (bool, error)
	Delete(ctx context.Context, id string) error
}

type newsletterRepository struct {
	db *gorm.DB
}

func NewNewsletterRepository(db *gorm.DB) NewsletterRepository {
	return &newsletterRepository{db: db}
}

func (r *newsletterRepository) Create(ctx context.Context, newsletter *models.Newsletter) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(newsletter).Error
}

func (r *newsletterRepository) GetByID(ctx context.Context, id string) (*models.Newsletter, error) {
	var newsletter models.Newsletter
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&newsletter).Error; err != nil {
		return nil, err
	}
	return &newsletter, nil
}

func (r *newsletterRepository) List(ctx context.Context, authorID string, filter models.NewsletterFilter) ([]models.Newsletter, error) {
	query := r.db.WithContext(ctx).Where("author_id = ?", authorID)
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Type != "" {
		query = query.Where("type = ?", filter.Type)
	}
	if filter.Search != "" {
		query = query.Where("LOWER(title) LIKE ?", "%"+strings.ToLower(filter.Search)+"%")
	}

	var newsletters []models.Newsletter
	err := query.Order("created_at desc").Find(&newsletters).Error
	return newsletters, err
}

func (r *newsletterRepository) ListByStatus(ctx context.Context, status models.NewsletterStatus) ([]models.Newsletter, error) {
	var newsletters []models.Newsletter
	err := r.db.WithContext(ctx).Where("status = ?", status).Order("created_at asc").Find(&newsletters).Error
	return newsletters, err
}

// Update writes only the given columns. When from is set the row must still
// hold that status. It reports false when no row matched.
func (r *newsletterRepository) Update(ctx context.Context, id string, from models.NewsletterStatus, changes map[string]interface{}) (bool, error) {
	query := r.db.WithContext(ctx).Model(&models.Newsletter{}).Where("id = ?", id)
	if from != "" {
		query = query.Where("status = ?", from)
	}
	res := query.Updates(changes)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// MarkPublished moves a SCHEDULED newsletter to PUBLISHED. It reports false
// when the row was no longer scheduled.
func (r *newsletterRepository) MarkPublished(ctx context.Context, id string, at time.Time) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.Newsletter{}).
		Where("id = ? AND status = ?", id, models.NewsletterScheduled).
		Updates(map[string]interface{}{
			"status":       models.NewsletterPublished,
			"published_at": at,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *newsletterRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Newsletter{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
