package services

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"time"

	"agency-cms/models"
	"agency-cms/repositories"
	"agency-cms/storage"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// AdminPageSize is the number of admins per list page.
const AdminPageSize = 15

type AdminService interface {
	Register(ctx context.Context, req models.RegisterAdminRequest) (*models.User, error)
	List(ctx context.Context, self *models.User, filter models.AdminFilter) (*models.AdminListResponse, error)
	Detail(ctx context.Context, id string) (*models.User, error)
	UpdatePermissions(ctx context.Context, id string, req models.UpdatePermissionsRequest) (*models.UserPermission, error)
	Delete(ctx context.Context, self *models.User, id string) error
}

type adminService struct {
	userRepo repositories.UserRepository
	files    FileStore
	log      *zap.Logger
}

func NewAdminService(userRepo repositories.UserRepository, files FileStore, log *zap.Logger) AdminService {
	return &adminService{userRepo: userRepo, files: files, log: log.Named("admin")}
}

// Register creates an admin with an empty permission set.
func (s *adminService) Register(ctx context.Context, req models.RegisterAdminRequest) (*models.User, error) {
	if !req.UserRole.Valid() {
		return nil, models.ErrInvalidRole
	}

	_, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err == nil {
		return nil, models.ErrAdminExists
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("find admin: %w", err)
	}

	hashed, err := HashPassword(req.Password)
	if err != nil {
		return nil, err
	}
	dob, err := parseDate(req.DateOfBirth)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Email:       req.Email,
		Password:    hashed,
		Name:        req.Name,
		Role:        req.UserRole,
		PhoneNumber: req.PhoneNumber,
		DateOfBirth: dob,
		Photo:       models.DefaultPhoto,
		Permissions: &models.UserPermission{},
	}
	if req.Address != nil {
		user.Address = &models.UserAddress{
			City:    req.Address.City,
			Country: req.Address.Country,
			ZipCode: req.Address.ZipCode,
		}
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, models.ErrAdminExists
		}
		return nil, fmt.Errorf("create admin: %w", err)
	}
	return user, nil
}

func (s *adminService) List(ctx context.Context, self *models.User, filter models.AdminFilter) (*models.AdminListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	admins, total, err := s.userRepo.List(ctx, self.ID, filter, AdminPageSize)
	if err != nil {
		return nil, fmt.Errorf("list admins: %w", err)
	}
	if admins == nil {
		admins = []models.User{}
	}
	return &models.AdminListResponse{
		Admins:     admins,
		Pagination: models.NewPagination(filter.Page, AdminPageSize, total),
	}, nil
}

func (s *adminService) Detail(ctx context.Context, id string) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrAdminNotFound
		}
		return nil, fmt.Errorf("find admin: %w", err)
	}
	return user, nil
}

// UpdatePermissions replaces all 20 flags of an admin.
func (s *adminService) UpdatePermissions(ctx context.Context, id string, req models.UpdatePermissionsRequest) (*models.UserPermission, error) {
	user, err := s.Detail(ctx, id)
	if err != nil {
		return nil, err
	}

	perms := user.Permissions
	if perms == nil {
		perms = &models.UserPermission{UserID: user.ID}
	}
	for p, granted := range req.Flags() {
		if err := perms.Set(p, granted); err != nil {
			return nil, err
		}
	}

	if err := s.userRepo.SavePermissions(ctx, perms); err != nil {
		return nil, fmt.Errorf("save permissions: %w", err)
	}
	return perms, nil
}

// Delete removes an admin with everything it owns, then its uploaded files.
func (s *adminService) Delete(ctx context.Context, self *models.User, id string) error {
	if self.ID == id {
		return models.ErrSelfDelete
	}

	files, err := s.userRepo.DeleteCascade(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.ErrAdminNotFound
		}
		return fmt.Errorf("delete admin: %w", err)
	}

	s.removeFiles(storage.FolderNewsletter, files.NewsletterPhotos)
	s.removeFiles(storage.FolderPortfolio, files.PortfolioPhotos)
	return nil
}

func (s *adminService) removeFiles(folder string, names []string) {
	for _, name := range names {
		if err := s.files.Delete(folder, name); err != nil && !errors.Is(err, fs.ErrNotExist) {
			s.log.Error("remove file", zap.String("folder", folder), zap.String("file", name), zap.Error(err))
		}
	}
}

func parseDate(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return nil, models.NewValidationError("dateOfBirth must be a date in YYYY-MM-DD format")
	}
	return &t, nil
}
