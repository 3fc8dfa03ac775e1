package models

import (
	"fmt"
	"juba-homez/internal/config"
	"time"

	mysqldrv "github.com/go-sql-driver/mysql"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// InitDB opens the configured database and migrates every model.
func InitDB(cfg *config.Config) (*gorm.DB, error) {
	var dialector gorm.Dialector

	switch cfg.Database.Type {
	case "sqlite":
		dialector = sqlite.Open(cfg.Database.SQLite.Path + "?_busy_timeout=5000")
	case "mysql":
		dialector = mysql.Open(MySQLDSN(cfg.Database.MySQL))
	case "postgres":
		dialector = postgres.Open(cfg.Database.Postgres.DSN)
	default:
		return nil, fmt.Errorf("unsupported database type: %s", cfg.Database.Type)
	}

	logLevel := logger.Silent
	if cfg.Server.Mode == "debug" {
		logLevel = logger.Warn
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logger.Default.LogMode(logLevel),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database handle: %w", err)
	}
	if cfg.Database.Type != "sqlite" {
		sqlDB.SetMaxOpenConns(10)
		sqlDB.SetMaxIdleConns(10)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	return db, nil
}

// MySQLDSN builds a driver DSN that parses DATETIME columns into UTC time.Time values.
func MySQLDSN(c config.MySQLConfig) string {
	dsn := mysqldrv.NewConfig()
	dsn.User = c.Username
	dsn.Passwd = c.Password
	dsn.Net = "tcp"
	dsn.Addr = fmt.Sprintf("%s:%d", c.Host, c.Port)
	dsn.DBName = c.Database
	dsn.ParseTime = true
	dsn.Loc = time.UTC
	dsn.Params = map[string]string{"charset": c.Charset}
	return dsn.FormatDSN()
}

// Migrate creates or updates the schema for all models.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&User{},
		&PasswordReset{},
		&Property{},
		&Media{},
		&Inquiry{},
		&InquiryReply{},
		&ViewingRequest{},
		&Viewing{},
		&PhotoJob{},
		&PhotoJobMessage{},
		&Notification{},
		&Announcement{},
		&AuditLog{},
		&AnalyticsEvent{},
	)
	if err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}
