// Command create-admin bootstraps a SUPER_ADMIN account with every permission.
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"agency-cms/config"
	"agency-cms/models"
	"agency-cms/repositories"
	"agency-cms/services"
	"agency-cms/storage"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gorm.io/gorm/logger"
)

type options struct {
	DBDriver string `env:"DB_DRIVER" envDefault:"postgres"`
	DBDSN    string `env:"DB_DSN"`
	Name     string `env:"ADMIN_NAME" envDefault:"Super Admin"`
	Email    string `env:"ADMIN_EMAIL"`
	Password string `env:"ADMIN_PASSWORD"`
	Uploads  string `env:"UPLOAD_DIR" envDefault:"public"`
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	var opts options
	if err := env.Parse(&opts); err != nil {
		log.Fatalf("parse env: %v", err)
	}
	flag.StringVar(&opts.Name, "name", opts.Name, "display name")
	flag.StringVar(&opts.Email, "email", opts.Email, "login email (ADMIN_EMAIL)")
	flag.StringVar(&opts.Password, "password", opts.Password, "login password (ADMIN_PASSWORD)")
	flag.Parse()

	if opts.Email == "" || len(opts.Password) < 8 {
		log.Fatal("an email and a password of at least 8 characters are required")
	}

	db, err := config.InitDB(&config.Config{DBDriver: opts.DBDriver, DBDSN: opts.DBDSN}, logger.Default.LogMode(logger.Warn))
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer config.CloseDB(db)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	userRepo := repositories.NewUserRepository(db)
	admins := services.NewAdminService(userRepo, storage.NewDisk(opts.Uploads, 0), zap.NewNop())

	user, err := admins.Register(ctx, models.RegisterAdminRequest{
		Name:     opts.Name,
		Email:    opts.Email,
		Password: opts.Password,
		UserRole: models.RoleSuperAdmin,
	})
	if err != nil {
		log.Fatalf("create admin: %v", err)
	}

	user.Permissions.GrantAll()
	if err := userRepo.SavePermissions(ctx, user.Permissions); err != nil {
		log.Fatalf("grant permissions: %v", err)
	}

	log.Printf("created super admin %s (%s)", user.Email, user.ID)
}
