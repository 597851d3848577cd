// Package testutil provides an in-memory database and fakes for tests.
package testutil

import (
	"context"
	"sync"
	"testing"

	"agency-cms/mailer"
	"agency-cms/models"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDB opens a fresh in-memory sqlite database with the full schema.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// every connection would get its own empty database
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(models.All()...))
	return db
}

// CreateUser inserts a user whose password is "password123" and grants perms.
func CreateUser(t *testing.T, db *gorm.DB, email string, role models.UserRole, perms ...models.Permission) *models.User {
	t.Helper()

	hashed, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)

	set := &models.UserPermission{}
	for _, p := range perms {
		require.NoError(t, set.Set(p, true))
	}

	user := &models.User{
		Email:       email,
		Password:    string(hashed),
		Name:        email,
		Role:        role,
		Photo:       models.DefaultPhoto,
		Permissions: set,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

// CreateMember inserts a newsletter member with the given status.
func CreateMember(t *testing.T, db *gorm.DB, email string, status models.MemberStatus) *models.NewsletterMember {
	t.Helper()
	member := &models.NewsletterMember{Email: email, Status: status}
	require.NoError(t, db.Create(member).Error)
	return member
}

// CreateNewsletter inserts a newsletter authored by author.
func CreateNewsletter(t *testing.T, db *gorm.DB, author *models.User, title string, status models.NewsletterStatus) *models.Newsletter {
	t.Helper()
	n := &models.Newsletter{
		Title:    title,
		Content:  "Hello **subscribers**",
		Type:     models.NewsletterTypeNews,
		Status:   status,
		AuthorID: author.ID,
	}
	require.NoError(t, db.Omit("Author").Create(n).Error)
	return n
}

// MockMailer is a testify mock of mailer.Mailer.
type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) Send(ctx context.Context, msg mailer.Message) ([]string, error) {
	args := m.Called(ctx, msg)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

// RecordingMailer accepts every message and keeps a copy.
type RecordingMailer struct {
	mu   sync.Mutex
	sent []mailer.Message
	// Fail, when set, decides per recipient whether the send fails.
	Fail func(to string) error
}

func (m *RecordingMailer) Send(_ context.Context, msg mailer.Message) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Fail != nil {
		for _, to := range msg.To {
			if err := m.Fail(to); err != nil {
				return nil, err
			}
		}
	}
	m.sent = append(m.sent, msg)
	return msg.To, nil
}

// Sent returns a copy of the delivered messages.
func (m *RecordingMailer) Sent() []mailer.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]mailer.Message(nil), m.sent...)
}

// Recipients returns the To addresses of messages whose subject matches.
func (m *RecordingMailer) Recipients(subject string) []string {
	var out []string
	for _, msg := range m.Sent() {
		if msg.Subject == subject {
			out = append(out, msg.To...)
		}
	}
	return out
}

// MemFiles is an in-memory FileStore.
type MemFiles struct {
	mu      sync.Mutex
	Deleted []string
}

func (f *MemFiles) Delete(folder, name string) error {
	if name == "" || name == models.DefaultPhoto {
		return nil
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Deleted = append(f.Deleted, folder+"/"+name)
	return nil
}
