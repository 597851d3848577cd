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
	"gorm.io/gorm"
)

func newAdminService(t *testing.T) (AdminService, *testutil.MemFiles, *models.User, *gorm.DB) {
	t.Helper()
	db := testutil.NewDB(t)
	files := &testutil.MemFiles{}
	self := testutil.CreateUser(t, db, "root@pixelatee.com", models.RoleSuperAdmin, models.AllPermissions()...)
	return NewAdminService(repositories.NewUserRepository(db), files, zap.NewNop()), files, self, db
}

func registerRequest(email string) models.RegisterAdminRequest {
	zip := "40111"
	return models.RegisterAdminRequest{
		Name:        "Jane",
		Email:       email,
		Password:    "supersecret",
		DateOfBirth: "1995-04-12",
		PhoneNumber: "08123",
		UserRole:    models.RoleAdmin,
		Address:     &models.AddressRequest{City: "Bandung", Country: "Indonesia", ZipCode: &zip},
	}
}

func TestRegisterAdminDefaultsPermissionsToFalse(t *testing.T) {
	svc, _, _, db := newAdminService(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, registerRequest("jane@pixelatee.com"))
	require.NoError(t, err)
	assert.Equal(t, models.DefaultPhoto, user.Photo)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.Password), []byte("supersecret")))

	stored, err := svc.Detail(ctx, user.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.Permissions)
	for _, p := range models.AllPermissions() {
		assert.False(t, stored.Permissions.Has(p), p.String())
	}
	require.NotNil(t, stored.Address)
	assert.Equal(t, "Bandung", stored.Address.City)
	require.NotNil(t, stored.DateOfBirth)
	assert.Equal(t, 1995, stored.DateOfBirth.Year())

	var count int64
	db.Model(&models.UserPermission{}).Where("user_id = ?", user.ID).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestRegisterAdminDuplicate(t *testing.T) {
	svc, _, _, _ := newAdminService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, registerRequest("jane@pixelatee.com"))
	require.NoError(t, err)
	_, err = svc.Register(ctx, registerRequest("jane@pixelatee.com"))
	assert.ErrorIs(t, err, models.ErrAdminExists)
}

func TestRegisterAdminRejectsUnknownRole(t *testing.T) {
	svc, _, _, db := newAdminService(t)

	req := registerRequest("ghost@pixelatee.com")
	req.UserRole = "OWNER"
	_, err := svc.Register(context.Background(), req)
	assert.ErrorIs(t, err, models.ErrInvalidRole)

	var count int64
	db.Model(&models.User{}).Where("email = ?", "ghost@pixelatee.com").Count(&count)
	assert.Zero(t, count)
}

func TestListAdminsExcludesSelfAndPaginates(t *testing.T) {
	svc, _, self, db := newAdminService(t)
	for _, email := range []string{"b@pixelatee.com", "a@pixelatee.com", "c@pixelatee.com"} {
		testutil.CreateUser(t, db, email, models.RoleAdmin)
	}

	res, err := svc.List(context.Background(), self, models.AdminFilter{Page: 1})
	require.NoError(t, err)
	require.Len(t, res.Admins, 3)
	assert.Equal(t, "a@pixelatee.com", res.Admins[0].Email)
	assert.Equal(t, int64(3), res.Pagination.TotalData)
	assert.Equal(t, 1, res.Pagination.TotalPage)
	assert.Equal(t, AdminPageSize, res.Pagination.Limit)

	res, err = svc.List(context.Background(), self, models.AdminFilter{Page: 1, Search: "B@"})
	require.NoError(t, err)
	require.Len(t, res.Admins, 1)
	assert.Equal(t, "b@pixelatee.com", res.Admins[0].Email)

	res, err = svc.List(context.Background(), self, models.AdminFilter{Page: 1, Role: models.RoleSuperAdmin})
	require.NoError(t, err)
	assert.Empty(t, res.Admins)
}

func TestUpdatePermissions(t *testing.T) {
	svc, _, _, db := newAdminService(t)
	ctx := context.Background()
	target := testutil.CreateUser(t, db, "t@pixelatee.com", models.RoleAdmin)

	yes, no := true, false
	req := models.UpdatePermissionsRequest{
		CanReadNewsletter: &yes, CanWriteNewsletter: &yes, CanUpdateNewsletter: &no, CanDeleteNewsletter: &no,
		CanReadClient: &no, CanWriteClient: &no, CanUpdateClient: &no, CanDeleteClient: &no,
		CanReadPortfolio: &no, CanWritePortfolio: &no, CanUpdatePortfolio: &no, CanDeletePortfolio: &no,
		CanReadContact: &yes, CanWriteContact: &no, CanUpdateContact: &no, CanDeleteContact: &no,
		CanReadAdmin: &no, CanWriteAdmin: &no, CanUpdateAdmin: &no, CanDeleteAdmin: &no,
	}
	_, err := svc.UpdatePermissions(ctx, target.ID, req)
	require.NoError(t, err)

	stored, err := svc.Detail(ctx, target.ID)
	require.NoError(t, err)
	assert.True(t, stored.Can(models.PermReadNewsletter))
	assert.True(t, stored.Can(models.PermWriteNewsletter))
	assert.True(t, stored.Can(models.PermReadContact))
	assert.False(t, stored.Can(models.PermDeleteNewsletter))

	_, err = svc.UpdatePermissions(ctx, "missing", req)
	assert.ErrorIs(t, err, models.ErrAdminNotFound)
}

func TestUpdatePermissionsCreatesMissingSet(t *testing.T) {
	svc, _, _, db := newAdminService(t)
	ctx := context.Background()
	target := testutil.CreateUser(t, db, "t@pixelatee.com", models.RoleAdmin)
	require.NoError(t, db.Where("user_id = ?", target.ID).Delete(&models.UserPermission{}).Error)

	yes := true
	req := models.UpdatePermissionsRequest{}
	req.CanReadAdmin = &yes
	_, err := svc.UpdatePermissions(ctx, target.ID, req)
	require.NoError(t, err)

	stored, err := svc.Detail(ctx, target.ID)
	require.NoError(t, err)
	assert.True(t, stored.Can(models.PermReadAdmin))
}

func TestDeleteAdminCascade(t *testing.T) {
	svc, files, self, db := newAdminService(t)
	ctx := context.Background()

	victim := testutil.CreateUser(t, db, "v@pixelatee.com", models.RoleAdmin)
	n := testutil.CreateNewsletter(t, db, victim, "Owned", models.NewsletterScheduled)
	require.NoError(t, db.Model(n).Update("photo", "owned.png").Error)
	require.NoError(t, db.Create(&models.Portfolio{Title: "Work", MainPhoto: "work.png", AuthorID: victim.ID}).Error)
	contact := &models.Contact{Name: "Visitor", Email: "v@x.com", Message: "hi", HandlerID: &victim.ID}
	require.NoError(t, db.Create(contact).Error)
	kept := testutil.CreateNewsletter(t, db, self, "Mine", models.NewsletterScheduled)

	require.NoError(t, svc.Delete(ctx, self, victim.ID))

	var count int64
	db.Model(&models.Newsletter{}).Where("author_id = ?", victim.ID).Count(&count)
	assert.Zero(t, count)
	db.Model(&models.Portfolio{}).Where("author_id = ?", victim.ID).Count(&count)
	assert.Zero(t, count)
	db.Model(&models.UserPermission{}).Where("user_id = ?", victim.ID).Count(&count)
	assert.Zero(t, count)
	db.Model(&models.User{}).Where("id = ?", victim.ID).Count(&count)
	assert.Zero(t, count)

	var stored models.Contact
	require.NoError(t, db.First(&stored, "id = ?", contact.ID).Error)
	assert.Nil(t, stored.HandlerID)

	db.Model(&models.Newsletter{}).Where("id = ?", kept.ID).Count(&count)
	assert.Equal(t, int64(1), count)

	assert.ElementsMatch(t, []string{"newsletter/owned.png", "portfolio/work.png"}, files.Deleted)
}

func TestDeleteAdminGuards(t *testing.T) {
	svc, _, self, _ := newAdminService(t)
	ctx := context.Background()

	assert.ErrorIs(t, svc.Delete(ctx, self, self.ID), models.ErrSelfDelete)
	assert.ErrorIs(t, svc.Delete(ctx, self, "missing"), models.ErrAdminNotFound)
}
