package repositories

import (
	"context"

	"agency-cms/models"

	"gorm.io/gorm"
)

type ContactRepository interface {
	Create(ctx context.Context, contact *models.Contact) error
	List(ctx context.Context, page, limit int) ([]models.Contact, int64, error)
}

type contactRepository struct {
	db *gorm.DB
}

func NewContactRepository(db *gorm.DB) ContactRepository {
	return &contactRepository{db: db}
}

func (r *contactRepository) Create(ctx context.Context, contact *models.Contact) error {
	return r.db.WithContext(ctx).Create(contact).Error
}

func (r *contactRepository) List(ctx context.Context, page, limit int) ([]models.Contact, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&models.Contact{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var contacts []models.Contact
	err := r.db.WithContext(ctx).
		Order("created_at desc").
		Limit(limit).
		Offset((page - 1) * limit).
		Find(&contacts).Error
	return contacts, total, err
}
