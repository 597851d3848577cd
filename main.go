package main

import (
	"context"
	"errors"
	"io/fs"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"agency-cms/assets"
	"agency-cms/config"
	"agency-cms/helper"
	"agency-cms/lock"
	"agency-cms/logger"
	"agency-cms/mailer"
	"agency-cms/repositories"
	"agency-cms/routes"
	"agency-cms/scheduler"
	"agency-cms/services"
	"agency-cms/storage"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

const shutdownTimeout = 30 * time.Second

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	zl, err := logger.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer zl.Sync()

	if err := run(cfg, zl); err != nil {
		os.Exit(fail(zl, err))
	}
}

// fail logs err and flushes the logger before the process exits, since
// os.Exit skips deferred calls.
func fail(zl *zap.Logger, err error) int {
	zl.Error("server stopped", zap.Error(err))
	_ = zl.Sync()
	return 1
}

func run(cfg *config.Config, zl *zap.Logger) error {
	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize database
	db, err := config.InitDB(cfg, logger.NewGormLogger(zl, 200*time.Millisecond))
	if err != nil {
		return err
	}
	defer config.CloseDB(db)

	h, err := helper.NewHTTPHelper(cfg.AdminEmailDomain)
	if err != nil {
		return err
	}

	locker, closeLocker, err := newLocker(cfg, zl)
	if err != nil {
		return err
	}
	defer closeLocker()

	smtp, err := mailer.NewSMTPMailer(mailer.SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
		SSL:      cfg.SMTPSSL,
		Timeout:  cfg.MailSendTimeout,
	})
	if err != nil {
		return err
	}
	renderer := mailer.NewRenderer(templates(cfg, zl), cfg.PublicURL, cfg.FrontendURL)
	disk := storage.NewDisk(cfg.UploadDir, cfg.UploadMaxBytes())

	// Initialize repositories
	userRepo := repositories.NewUserRepository(db)
	memberRepo := repositories.NewNewsletterMemberRepository(db)
	newsletterRepo := repositories.NewNewsletterRepository(db)
	contactRepo := repositories.NewContactRepository(db)
	visitRepo := repositories.NewGuestVisitRepository(db)

	// Initialize services
	delivery := services.NewNewsletterDelivery(smtp, renderer, cfg.MailFrom(), cfg.MailSendTimeout, zl)
	deps := routes.Deps{
		Config:      cfg,
		Log:         zl,
		Helper:      h,
		Cookies:     helper.NewCookies(cfg.CookieKey(), cfg.CookieSecure),
		AuthService: services.NewAuthService(userRepo, cfg.JWTKey(), cfg.JWTExpiration),
		NewsletterService: services.NewNewsletterService(newsletterRepo, memberRepo, delivery, smtp, renderer, disk,
			services.NewsletterOptions{From: cfg.MailFrom(), Brand: cfg.MailFromName, SendTimeout: cfg.MailSendTimeout}, zl),
		AdminService:   services.NewAdminService(userRepo, disk, zl),
		UserService:    services.NewUserService(userRepo, disk, zl),
		ContactService: services.NewContactService(contactRepo),
		VisitService:   services.NewVisitService(visitRepo),
		Renderer:       renderer,
		Images:         disk,
	}

	dispatcher := scheduler.New(newsletterRepo, memberRepo, delivery, renderer, locker,
		scheduler.Options{Schedule: cfg.DispatchSchedule, LockTTL: cfg.DispatchLockTTL}, zl)
	if err := dispatcher.Start(); err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              cfg.ServerAddr(),
		Handler:           routes.SetupRouter(deps),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		zl.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		dispatcher.Stop(context.Background())
		return err
	case sig := <-quit:
		zl.Info("shutting down", zap.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		zl.Error("http shutdown", zap.Error(err))
	}
	if err := dispatcher.Stop(ctx); err != nil {
		zl.Error("dispatcher shutdown", zap.Error(err))
	}
	return nil
}

// newLocker returns the Redis lock when REDIS_URL is set so that several
// instances never dispatch the same newsletter twice.
func newLocker(cfg *config.Config, zl *zap.Logger) (lock.Locker, func(), error) {
	if !cfg.UseRedisLock() {
		return lock.NewLocal(), func() {}, nil
	}

	r, err := lock.NewRedis(cfg.RedisURL, "agency-cms:")
	if err != nil {
		return nil, nil, err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := r.Ping(ctx); err != nil {
		r.Close()
		return nil, nil, err
	}
	zl.Info("dispatch lock uses redis")
	return r, func() { r.Close() }, nil
}

// templates prefers TEMPLATE_DIR and falls back to the embedded layouts.
func templates(cfg *config.Config, zl *zap.Logger) fs.FS {
	if cfg.TemplateDir == "" {
		return assets.Templates()
	}
	if _, err := os.Stat(cfg.TemplateDir); err != nil {
		zl.Warn("template dir unavailable, using embedded layouts",
			zap.String("dir", cfg.TemplateDir), zap.Error(err))
		return assets.Templates()
	}
	return os.DirFS(cfg.TemplateDir)
}
