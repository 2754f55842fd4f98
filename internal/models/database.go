package models

import (
	"fmt"

	"github.com/aiguild/guildtracker/internal/config"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

func InitDB(cfg *config.DatabaseConfig) error {
	var dialector gorm.Dialector

	switch cfg.Driver {
	case "sqlite":
		dialector = sqlite.Open(cfg.DSN)
	case "mysql":
		dialector = mysql.Open(cfg.DSN)
	case "postgres":
		dialector = postgres.Open(cfg.DSN)
	default:
		return fmt.Errorf("unsupported database driver: %s", cfg.Driver)
	}

	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
		// Map driver unique-violation errors to gorm.ErrDuplicatedKey
		TranslateError: true,
	}

	db, err := gorm.Open(dialector, gormConfig)
	if err != nil {
		return fmt.Errorf("failed to connect database: %w", err)
	}

	DB = db
	return nil
}

func AutoMigrate() error {
	return DB.AutoMigrate(
		&Project{},
		&MirrorOp{},
		&SystemLog{},
	)
}

func GetDB() *gorm.DB {
	return DB
}

// SeedDefaultData inserts one sample project when the table is empty so
// the list view has something to show on first run. The seed row is
// marked synced and no mirror op is enqueued for it.
func SeedDefaultData() error {
	var count int64
	if err := DB.Model(&Project{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	sample := Project{
		Name:        "Sample Project",
		OneLiner:    "An example entry showing what a registered project looks like",
		Description: "This sample row is created automatically on first run. Register your own project to replace it.",
		AIUsage:     "Demonstrates the AI usage field",
		LeadName:    "Guild Admin",
		Contact:     "+15551234567",
		Status:      StatusIdea,
		SyncStatus:  SyncSynced,
	}
	return DB.Create(&sample).Error
}
