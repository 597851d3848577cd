package repositories

import (
	"context"
	"strings"

	"agency-cms/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DeletedFiles lists upload filenames orphaned by a user deletion.
type DeletedFiles struct {
	NewsletterPhotos []string
	PortfolioPhotos  []string
}

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	List(ctx context.Context, excludeID string, filter models.AdminFilter, limit int) ([]models.User, int64, error)
	Update(ctx context.Context, user *models.User) error
	SavePermissions(ctx context.Context, perms *models.UserPermission) error
	SaveAddress(ctx context.Context, address *models.UserAddress) error
	DeleteCascade(ctx context.Context, id string) (*DeletedFiles, error)
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

// Create inserts the user together with any address and permission set attached to it.
func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).
		Preload("Permissions").
		Preload("Address").
		Where("id = ?", id).
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) List(ctx context.Context, excludeID string, filter models.AdminFilter, limit int) ([]models.User, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.User{}).Where("id <> ?", excludeID)
	if filter.Search != "" {
		pattern := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(email) LIKE ?", pattern, pattern)
	}
	if filter.Role != "" {
		query = query.Where("role = ?", filter.Role)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var users []models.User
	err := query.
		Preload("Permissions").
		Order("name asc").
		Limit(limit).
		Offset((filter.Page - 1) * limit).
		Find(&users).Error
	return users, total, err
}

func (r *userRepository) Update(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(user).Error
}

func (r *userRepository) SavePermissions(ctx context.Context, perms *models.UserPermission) error {
	return r.db.WithContext(ctx).Save(perms).Error
}

func (r *userRepository) SaveAddress(ctx context.Context, address *models.UserAddress) error {
	return r.db.WithContext(ctx).Save(address).Error
}

// DeleteCascade removes the user and everything it owns in one transaction.
// Handled contacts and authored clients are kept with their reference cleared.
func (r *userRepository) DeleteCascade(ctx context.Context, id string) (*DeletedFiles, error) {
	files := &DeletedFiles{}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Newsletter{}).Where("author_id = ? AND photo <> ''", id).
			Pluck("photo", &files.NewsletterPhotos).Error; err != nil {
			return err
		}
		if err := tx.Where("author_id = ?", id).Delete(&models.Newsletter{}).Error; err != nil {
			return err
		}

		if err := tx.Model(&models.Portfolio{}).Where("author_id = ? AND main_photo <> ''", id).
			Pluck("main_photo", &files.PortfolioPhotos).Error; err != nil {
			return err
		}
		if err := tx.Where("author_id = ?", id).Delete(&models.Portfolio{}).Error; err != nil {
			return err
		}

		if err := tx.Model(&models.Contact{}).Where("handler_id = ?", id).
			Update("handler_id", nil).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Client{}).Where("author_id = ?", id).
			Update("author_id", nil).Error; err != nil {
			return err
		}

		if err := tx.Where("user_id = ?", id).Delete(&models.UserAddress{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", id).Delete(&models.UserPermission{}).Error; err != nil {
			return err
		}

		res := tx.Where("id = ?", id).Delete(&models.User{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}
