package database

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/josanv1n/DIZA-FOOD/internal/models"
)

// Connect opens the Postgres connection pool. It only connects; schema
// changes live in Migrate.
func Connect(dsn, logLevel string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(gormLogLevel(logLevel)),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("database: connect: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("database: pool: %w", err)
	}
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetMaxOpenConns(20)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	slog.Info("database connection successful")
	return db, nil
}

// Migrate creates or updates every table the POS needs.
func Migrate(db *gorm.DB) error {
	slog.Info("running schema migrations")
	err := db.AutoMigrate(
		&models.User{},
		&models.MenuItem{},
		&models.Transaction{},
		&models.TransactionDetail{},
		&models.PromoText{},
		&models.LoginLog{},
	)
	if err != nil {
		return fmt.Errorf("database: migrate: %w", err)
	}
	slog.Info("schema migrations completed")
	return nil
}

var (
	seedUsers = []models.User{
		{ID: "u1", Username: "kasir", Role: models.RoleUser, PIN: "1234"},
		{ID: "u2", Username: "admin", Role: models.RoleAdmin, PIN: "admin"},
		{ID: "u3", Username: "manager", Role: models.RoleManager, PIN: "boss"},
	}
	seedMenu = []models.MenuItem{
		{ID: "1", Name: "Pop Ice", Category: models.CategoryDrink, Price: 5000},
		{ID: "2", Name: "Kopi", Category: models.CategoryDrink, Price: 5000},
		{ID: "3", Name: "Teh", Category: models.CategoryDrink, Price: 5000},
		{ID: "4", Name: "Batagor", Category: models.CategoryFood, Price: 10000},
		{ID: "5", Name: "Siomay", Category: models.CategoryFood, Price: 10000},
		{ID: "6", Name: "Ayam Geprek", Category: models.CategoryFood, Price: 10000},
		{ID: "7", Name: "Indomie (Tanpa Telur)", Category: models.CategoryFood, Price: 8000},
		{ID: "8", Name: "Indomie (Pakai Telur)", Category: models.CategoryFood, Price: 10000},
	}
	seedPromo = models.PromoText{ID: promoID, Content: "PROMO HARI INI: BELI 5 AYAM GEPREK GRATIS ES TEH!", Active: true}
)

// Seed fills users, menu and promo, each only when its table is empty, so
// it is safe to run on every deploy.
func Seed(db *gorm.DB) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if err := seedIfEmpty(tx, &models.User{}, seedUsers); err != nil {
			return err
		}
		if err := seedIfEmpty(tx, &models.MenuItem{}, seedMenu); err != nil {
			return err
		}
		return seedIfEmpty(tx, &models.PromoText{}, []models.PromoText{seedPromo})
	})
}

func seedIfEmpty[T any](tx *gorm.DB, model any, rows []T) error {
	var count int64
	if err := tx.Model(model).Count(&count).Error; err != nil {
		return fmt.Errorf("database: seed count: %w", err)
	}
	if count > 0 {
		return nil
	}
	if err := tx.Create(&rows).Error; err != nil {
		return fmt.Errorf("database: seed: %w", err)
	}
	slog.Info("seeded table", "model", fmt.Sprintf("%T", model), "rows", len(rows))
	return nil
}

func gormLogLevel(s string) logger.LogLevel {
	switch strings.ToLower(s) {
	case "silent":
		return logger.Silent
	case "error":
		return logger.Error
	case "info":
		return logger.Info
	default:
		return logger.Warn
	}
}
