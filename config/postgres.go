package config

import (
	"errors"
	"os"
	"time"

	"github.com/yoockh/recruitportal/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var PostgresDB *gorm.DB

func InitPostgres() error {
	uri := os.Getenv("POSTGRES_URI")
	if uri == "" {
		return errors.New("POSTGRES_URI environment variable is not set")
	}

	level := logger.Warn
	if os.Getenv("GORM_DEBUG") == "true" {
		level = logger.Info
	}
	db, err := gorm.Open(postgres.Open(uri), &gorm.Config{
		Logger:  logger.Default.LogMode(level),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return err
	}

	// Connection Pooling settings
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(50)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	sqlDB.SetConnMaxIdleTime(5 * time.Minute)

	PostgresDB = db
	return nil
}

// Migrate creates or updates the record store tables.
func Migrate(db *gorm.DB) error {
	if db == nil {
		return errors.New("PostgresDB is nil; call InitPostgres() first")
	}
	return db.AutoMigrate(
		&models.Candidate{},
		&models.AssessmentSlot{},
		&models.Interview{},
		&models.Notification{},
		&models.User{},
		&models.Role{},
		&models.UserRole{},
		&models.EmailOutbox{},
	)
}
