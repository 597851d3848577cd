package repositories

import (
	"context"

	"agency-cms/models"

	"gorm.io/gorm"
)

type NewsletterMemberRepository interface {
	Create(ctx context.Context, member *models.NewsletterMember) error
	GetByID(ctx context.Context, id string) (*models.NewsletterMember, error)
	GetByEmail(ctx context.Context, email string) (*models.NewsletterMember, error)
	UpdateStatus(ctx context.Context, id string, status models.MemberStatus) error
	Delete(ctx context.Context, id string) error
	ListByStatus(ctx context.Context, status models.MemberStatus) ([]models.NewsletterMember, error)
}

type newsletterMemberRepository struct {
	db *gorm.DB
}

func NewNewsletterMemberRepository(db *gorm.DB) NewsletterMemberRepository {
	return &newsletterMemberRepository{db: db}
}

func (r *newsletterMemberRepository) Create(ctx context.Context, member *models.NewsletterMember) error {
	return r.db.WithContext(ctx).Create(member).Error
}

func (r *newsletterMemberRepository) GetByID(ctx context.Context, id string) (*models.NewsletterMember, error) {
	var member models.NewsletterMember
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&member).Error; err != nil {
		return nil, err
	}
	return &member, nil
}

func (r *newsletterMemberRepository) GetByEmail(ctx context.Context, email string) (*models.NewsletterMember, error) {
	var member models.NewsletterMember
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&member).Error; err != nil {
		return nil, err
	}
	return &member, nil
}

func (r *newsletterMemberRepository) UpdateStatus(ctx context.Context, id string, status models.MemberStatus) error {
	return r.db.WithContext(ctx).Model(&models.NewsletterMember{}).Where("id = ?", id).Update("status", status).Error
}

func (r *newsletterMemberRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.NewsletterMember{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *newsletterMemberRepository) ListByStatus(ctx context.Context, status models.MemberStatus) ([]models.NewsletterMember, error) {
	var members []models.NewsletterMember
	err := r.db.WithContext(ctx).Where("status = ?", status).Order("created_at asc").Find(&members).Error
	return members, err
}
