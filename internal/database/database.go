package database

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mattn/go-sqlite3"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"estate/server/internal/estate"
	"estate/server/internal/models"
)

type Database struct {
	db *gorm.DB
}

// NewDatabase opens the SQLite file at dbPath, creating its directory if needed
func NewDatabase(dbPath string, logger *logrus.Logger) (*Database, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}
	return open(dbPath+"?_foreign_keys=on&_busy_timeout=5000", logger)
}

// NewTestDB opens a private in-memory database with the schema migrated
func NewTestDB(name string) (*Database, error) {
	name = strings.NewReplacer("/", "_", " ", "_").Replace(name)
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", name)
	d, err := open(dsn, nil)
	if err != nil {
		return nil, err
	}
	if err := MigrateSchema(d.db); err != nil {
		return nil, err
	}
	return d, nil
}

func open(dsn string, logger *logrus.Logger) (*Database, error) {
	cfg := &gorm.Config{Logger: gormlogger.Discard}
	if logger != nil {
		cfg.Logger = newGormLogger(logger)
	}

	db, err := gorm.Open(sqlite.Open(dsn), cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite allows a single writer; one connection keeps transactions serialised
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)

	return &Database{db: db}, nil
}

// MigrateSchema creates or updates every table of the listing schema
func MigrateSchema(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.User{},
		&models.Partner{},
		&models.PropertyType{},
		&models.Tag{},
		&models.Property{},
		&models.Offer{},
	)
	if err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}

// RunMigrations migrates the schema of the opened database
func (d *Database) RunMigrations() error {
	return MigrateSchema(d.db)
}

func (d *Database) GetDB() *gorm.DB {
	return d.db
}

func (d *Database) Close() error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// TranslateError maps store errors onto the domain error kinds
func TranslateError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return estate.ErrNotFound
	}

	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) {
		return err
	}

	msg := sqliteErr.Error()
	switch sqliteErr.ExtendedCode {
	case sqlite3.ErrConstraintUnique:
		return &estate.ValidationError{Rule: "unique_name", Message: uniqueMessage(msg)}
	case sqlite3.ErrConstraintCheck:
		return &estate.ValidationError{Rule: checkRule(msg), Message: checkMessage(msg)}
	case sqlite3.ErrConstraintNotNull:
		return &estate.ValidationError{Rule: "required", Message: msg}
	case sqlite3.ErrConstraintForeignKey:
		return &estate.ValidationError{Rule: "reference", Message: "Referenced record does not exist or is still in use."}
	}
	return err
}

func uniqueMessage(msg string) string {
	switch {
	case strings.Contains(msg, "properties.name"):
		return "The property name must be unique."
	case strings.Contains(msg, "tags.name"):
		return "Tag name must be unique."
	case strings.Contains(msg, "property_types.name"):
		return "Property type name must be unique."
	case strings.Contains(msg, "users.login"):
		return "User login must be unique."
	}
	return msg
}

func checkRule(msg string) string {
	for _, name := range []string{"chk_properties_expected_price", "chk_properties_selling_price", "chk_offers_price"} {
		if strings.Contains(msg, name) {
			return strings.TrimPrefix(name, "chk_")
		}
	}
	return "check"
}

func checkMessage(msg string) string {
	switch {
	case strings.Contains(msg, "chk_properties_expected_price"):
		return "Expected price must be strictly positive."
	case strings.Contains(msg, "chk_properties_selling_price"):
		return "Selling price must be positive."
	case strings.Contains(msg, "chk_offers_price"):
		return "Offer price must be strictly positive."
	}
	return msg
}
