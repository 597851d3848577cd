package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Setenv("JWT_SECRET", "jwt-secret-0123456789")
	t.Setenv("COOKIE_SECRET", "cookie-secret-0123456789")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, DriverPostgres, cfg.DBDriver)
	assert.Equal(t, 24*time.Hour, cfg.JWTExpiration)
	assert.Equal(t, "*/5 * * * *", cfg.DispatchSchedule)
	assert.Equal(t, 30*time.Second, cfg.MailSendTimeout)
	assert.Equal(t, int64(2<<20), cfg.UploadMaxBytes())
	assert.Equal(t, `"Pixelatee" <info@pixelatee.com>`, cfg.MailFrom())
	assert.False(t, cfg.UseRedisLock())
	assert.True(t, cfg.IsDevelopment())
	assert.Equal(t, ":8080", cfg.ServerAddr())
}

func TestLoadRequiresSecrets(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	t.Setenv("COOKIE_SECRET", "")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadRejectsShortSecret(t *testing.T) {
	setRequired(t)
	t.Setenv("JWT_SECRET", "short")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")
}

func TestLoadRejectsUnknownDriver(t *testing.T) {
	setRequired(t)
	t.Setenv("DB_DRIVER", "oracle")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DB_DRIVER")
}

func TestLoadRejectsShortLockTTL(t *testing.T) {
	setRequired(t)
	t.Setenv("DISPATCH_LOCK_TTL", "20s")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DISPATCH_LOCK_TTL")
}

func TestLoadRejectsFrontendWithoutScheme(t *testing.T) {
	setRequired(t)
	t.Setenv("FRONTEND_URL", "site.test")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "FRONTEND_URL")
}

func TestLoadNormalizesAdminDomain(t *testing.T) {
	setRequired(t)
	t.Setenv("ADMIN_EMAIL_DOMAIN", " @pixelatee.com ")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "pixelatee.com", cfg.AdminEmailDomain)
}

func TestInitDBSQLite(t *testing.T) {
	setRequired(t)
	t.Setenv("DB_DRIVER", DriverSQLite)
	t.Setenv("DB_DSN", "file::memory:")

	cfg, err := Load()
	require.NoError(t, err)

	db, err := InitDB(cfg, nil)
	require.NoError(t, err)
	defer CloseDB(db)

	assert.True(t, db.Migrator().HasTable("newsletter_members"))
	assert.True(t, db.Migrator().HasTable("user_permissions"))
}
