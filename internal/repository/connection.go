package repository

import (
	"context"
	"fmt"

	"github.com/MaqroSolutions/Dealerships-sub000/internal/config"
	"github.com/MaqroSolutions/Dealerships-sub000/internal/domain"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// NewDatabaseConnection creates a new GORM database connection from config.DatabaseConfig.
func NewDatabaseConnection(cfg config.DatabaseConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	return db, nil
}

// AutoMigrate runs database migrations for every domain model (§3).
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&domain.Dealership{},
		&domain.UserProfile{},
		&domain.Lead{},
		&domain.ConversationTurn{},
		&domain.Vehicle{},
		&domain.VehicleEmbedding{},
		&domain.PendingApproval{},
		&domain.SettingDefinition{},
		&domain.DealershipSetting{},
		&domain.UserSetting{},
		&domain.Invite{},
	)
}

// NewRepositoryManager creates a new repository manager with a database connection,
// running AutoMigrate and seeding setting definitions (SPEC_FULL supplemented feature).
func NewRepositoryManager(cfg config.DatabaseConfig) (RepositoryManager, error) {
	db, err := NewDatabaseConnection(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create database connection: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := AutoMigrate(db); err != nil {
		return nil, fmt.Errorf("failed to run auto migration: %w", err)
	}

	manager := NewGormRepositoryManager(db)
	if err := manager.Settings().SeedDefinitions(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to seed setting definitions: %w", err)
	}

	return manager, nil
}
