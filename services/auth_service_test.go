package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"agency-cms/models"
	"agency-cms/repositories"
	"agency-cms/testutil"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var testSecret = []byte("test-secret-0123456789")

type MockUserRepository struct {
	mock.Mock
	repositories.UserRepository
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func TestLoginSuccess(t *testing.T) {
	db := testutil.NewDB(t)
	user := testutil.CreateUser(t, db, "admin@pixelatee.com", models.RoleAdmin)
	svc := NewAuthService(repositories.NewUserRepository(db), testSecret, 24*time.Hour)

	res, err := svc.Login(context.Background(), models.LoginRequest{Email: "admin@pixelatee.com", Password: "password123"})
	require.NoError(t, err)
	assert.Equal(t, "admin@pixelatee.com", res.Email)
	assert.NotEmpty(t, res.Token)
	assert.WithinDuration(t, time.Now().Add(24*time.Hour), res.ExpiresAt, time.Minute)

	resolved, err := svc.Resolve(context.Background(), res.Token, "")
	require.NoError(t, err)
	assert.Equal(t, user.ID, resolved.ID)
	require.NotNil(t, resolved.Permissions)
}

func TestLoginFailuresLookAlike(t *testing.T) {
	repo := new(MockUserRepository)
	hashed, err := HashPassword("right-password")
	require.NoError(t, err)
	repo.On("GetByEmail", mock.Anything, "known@pixelatee.com").Return(&models.User{ID: "u1", Password: hashed}, nil)
	repo.On("GetByEmail", mock.Anything, "ghost@pixelatee.com").Return(nil, gorm.ErrRecordNotFound)

	svc := NewAuthService(repo, testSecret, time.Hour)

	_, errWrong := svc.Login(context.Background(), models.LoginRequest{Email: "known@pixelatee.com", Password: "wrong"})
	_, errMissing := svc.Login(context.Background(), models.LoginRequest{Email: "ghost@pixelatee.com", Password: "wrong"})

	assert.ErrorIs(t, errWrong, models.ErrInvalidCredentials)
	assert.ErrorIs(t, errMissing, models.ErrInvalidCredentials)
	assert.Equal(t, errWrong.Error(), errMissing.Error())
	repo.AssertExpectations(t)
}

func TestLoginDatabaseError(t *testing.T) {
	repo := new(MockUserRepository)
	repo.On("GetByEmail", mock.Anything, "x@pixelatee.com").Return(nil, errors.New("connection reset"))

	svc := NewAuthService(repo, testSecret, time.Hour)
	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "x@pixelatee.com", Password: "p"})

	require.Error(t, err)
	var rerr *models.ResponseError
	assert.False(t, errors.As(err, &rerr), "infrastructure errors must not look like domain errors")
}

func signed(t *testing.T, method jwt.SigningMethod, key interface{}, claims Claims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return token
}

func validClaims(id string) Claims {
	return Claims{
		UserID: id,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
}

func TestResolve(t *testing.T) {
	repo := new(MockUserRepository)
	repo.On("GetByID", mock.Anything, "u1").Return(&models.User{ID: "u1"}, nil)
	repo.On("GetByID", mock.Anything, "gone").Return(nil, gorm.ErrRecordNotFound)
	svc := NewAuthService(repo, testSecret, time.Hour)
	ctx := context.Background()

	good := signed(t, jwt.SigningMethodHS256, testSecret, validClaims("u1"))

	t.Run("header", func(t *testing.T) {
		user, err := svc.Resolve(ctx, "", "Bearer "+good)
		require.NoError(t, err)
		assert.Equal(t, "u1", user.ID)
	})

	t.Run("cookie wins over header", func(t *testing.T) {
		user, err := svc.Resolve(ctx, good, "Bearer garbage")
		require.NoError(t, err)
		assert.Equal(t, "u1", user.ID)
	})

	t.Run("missing token", func(t *testing.T) {
		_, err := svc.Resolve(ctx, "", "")
		assert.ErrorIs(t, err, models.ErrUnauthenticated)
	})

	t.Run("not a bearer header", func(t *testing.T) {
		_, err := svc.Resolve(ctx, "", "Basic dXNlcjpwYXNz")
		assert.ErrorIs(t, err, models.ErrUnauthenticated)
	})

	t.Run("wrong key", func(t *testing.T) {
		forged := signed(t, jwt.SigningMethodHS256, []byte("another-secret-0123"), validClaims("u1"))
		_, err := svc.Resolve(ctx, "", "Bearer "+forged)
		assert.ErrorIs(t, err, models.ErrInvalidToken)
	})

	t.Run("expired", func(t *testing.T) {
		claims := validClaims("u1")
		claims.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))
		_, err := svc.Resolve(ctx, "", "Bearer "+signed(t, jwt.SigningMethodHS256, testSecret, claims))
		assert.ErrorIs(t, err, models.ErrInvalidToken)
	})

	t.Run("unsigned", func(t *testing.T) {
		none := signed(t, jwt.SigningMethodNone, jwt.UnsafeAllowNoneSignatureType, validClaims("u1"))
		_, err := svc.Resolve(ctx, "", "Bearer "+none)
		assert.ErrorIs(t, err, models.ErrInvalidToken)
	})

	t.Run("user deleted", func(t *testing.T) {
		token := signed(t, jwt.SigningMethodHS256, testSecret, validClaims("gone"))
		_, err := svc.Resolve(ctx, "", "Bearer "+token)
		assert.ErrorIs(t, err, models.ErrUnauthenticated)
	})
}
