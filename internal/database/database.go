package database

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Conceptual-Machines/moodsic-api/internal/models"
	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const (
	maxOpenConns    = 25
	maxIdleConns    = 5
	connMaxLifetime = time.Hour
)

// Connect opens Postgres for postgres:// URLs and a SQLite file otherwise
func Connect(databaseURL string) (*gorm.DB, error) {
	gormConfig := &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	}

	var dialector gorm.Dialector
	if IsPostgres(databaseURL) {
		dialector = postgres.Open(databaseURL)
		log.Println("🗄️  Using Postgres database")
	} else {
		if dir := filepath.Dir(databaseURL); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("creating db dir: %w", err)
			}
		}
		dialector = sqlite.Open(databaseURL + "?_pragma=foreign_keys(1)")
		log.Printf("🗄️  Using SQLite database at %s", databaseURL)
	}

	db, err := gorm.Open(dialector, gormConfig)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("getting sql.DB from gorm: %w", err)
	}
	sqlDB.SetMaxOpenConns(maxOpenConns)
	sqlDB.SetMaxIdleConns(maxIdleConns)
	sqlDB.SetConnMaxLifetime(connMaxLifetime)

	return db, nil
}

// IsPostgres reports whether the URL is a Postgres DSN
func IsPostgres(databaseURL string) bool {
	return strings.HasPrefix(databaseURL, "postgres://") ||
		strings.HasPrefix(databaseURL, "postgresql://") ||
		strings.Contains(databaseURL, "host=")
}

// Migrate creates or updates the schema
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.Composition{}); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	log.Println("✅ Database migrations completed")
	return nil
}

// Close releases the underlying connection pool
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
