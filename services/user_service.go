package services

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"agency-cms/models"
	"agency-cms/repositories"
	"agency-cms/storage"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// UserService manages the signed-in admin's own profile.
type UserService interface {
	UpdatePersonalInfo(ctx context.Context, user *models.User, req models.UpdatePersonalInfoRequest) (*models.User, error)
	UpdatePassword(ctx context.Context, user *models.User, req models.UpdatePasswordRequest) error
	UpdatePhoto(ctx context.Context, user *models.User, photo string) (*models.User, error)
	UpdateAddress(ctx context.Context, user *models.User, req models.AddressRequest) (*models.UserAddress, error)
}

type userService struct {
	userRepo repositories.UserRepository
	files    FileStore
	log      *zap.Logger
}

func NewUserService(userRepo repositories.UserRepository, files FileStore, log *zap.Logger) UserService {
	return &userService{userRepo: userRepo, files: files, log: log.Named("user")}
}

func (s *userService) UpdatePersonalInfo(ctx context.Context, user *models.User, req models.UpdatePersonalInfoRequest) (*models.User, error) {
	dob, err := parseDate(req.DateOfBirth)
	if err != nil {
		return nil, err
	}
	user.Name = req.Name
	user.PhoneNumber = req.PhoneNumber
	user.DateOfBirth = dob

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	return user, nil
}

func (s *userService) UpdatePassword(ctx context.Context, user *models.User, req models.UpdatePasswordRequest) error {
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.OldPassword)); err != nil {
		return models.ErrWrongPassword
	}
	hashed, err := HashPassword(req.NewPassword)
	if err != nil {
		return err
	}
	user.Password = hashed
	if err := s.userRepo.Update(ctx, user); err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	return nil
}

func (s *userService) UpdatePhoto(ctx context.Context, user *models.User, photo string) (*models.User, error) {
	old := user.Photo
	user.Photo = photo
	if err := s.userRepo.Update(ctx, user); err != nil {
		user.Photo = old
		return nil, fmt.Errorf("update photo: %w", err)
	}

	if err := s.files.Delete(storage.FolderUser, old); err != nil && !errors.Is(err, fs.ErrNotExist) {
		s.log.Error("remove old photo", zap.String("photo", old), zap.Error(err))
	}
	return user, nil
}

func (s *userService) UpdateAddress(ctx context.Context, user *models.User, req models.AddressRequest) (*models.UserAddress, error) {
	address := user.Address
	if address == nil {
		address = &models.UserAddress{UserID: user.ID}
	}
	address.City = req.City
	address.Country = req.Country
	address.ZipCode = req.ZipCode

	if err := s.userRepo.SaveAddress(ctx, address); err != nil {
		return nil, fmt.Errorf("save address: %w", err)
	}
	user.Address = address
	return address, nil
}
