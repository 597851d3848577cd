package services

import (
	"context"
	"testing"

	"agency-cms/models"
	"agency-cms/repositories"
	"agency-cms/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

func TestUserProfileUpdates(t *testing.T) {
	db := testutil.NewDB(t)
	repo := repositories.NewUserRepository(db)
	files := &testutil.MemFiles{}
	svc := NewUserService(repo, files, zap.NewNop())
	ctx := context.Background()

	created := testutil.CreateUser(t, db, "me@pixelatee.com", models.RoleAdmin, models.PermReadNewsletter)
	user, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)

	_, err = svc.UpdatePersonalInfo(ctx, user, models.UpdatePersonalInfoRequest{Name: "Me", PhoneNumber: "0812", DateOfBirth: "2000-01-02"})
	require.NoError(t, err)

	err = svc.UpdatePassword(ctx, user, models.UpdatePasswordRequest{OldPassword: "wrong", NewPassword: "newpassword", ConfirmPassword: "newpassword"})
	assert.ErrorIs(t, err, models.ErrWrongPassword)
	require.NoError(t, svc.UpdatePassword(ctx, user, models.UpdatePasswordRequest{OldPassword: "password123", NewPassword: "newpassword", ConfirmPassword: "newpassword"}))

	_, err = svc.UpdatePhoto(ctx, user, "me.png")
	require.NoError(t, err)
	_, err = svc.UpdatePhoto(ctx, user, "me2.png")
	require.NoError(t, err)
	assert.Equal(t, []string{"user/me.png"}, files.Deleted)

	_, err = svc.UpdateAddress(ctx, user, models.AddressRequest{City: "Jakarta", Country: "Indonesia"})
	require.NoError(t, err)

	stored, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Me", stored.Name)
	assert.Equal(t, "me2.png", stored.Photo)
	require.NotNil(t, stored.Address)
	assert.Equal(t, "Jakarta", stored.Address.City)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.Password), []byte("newpassword")))
	assert.True(t, stored.Can(models.PermReadNewsletter), "profile updates must not touch permissions")
}
