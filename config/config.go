package config

import (
	"fmt"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"estate/server/internal/estate"
)

type Config struct {
	Server struct {
		// Port the HTTP server listens on
		Port string `env:"ESTATE_PORT" envDefault:"5250"`

		// Origins allowed by CORS; "*" allows any origin
		AllowedOrigins []string `env:"ESTATE_ALLOWED_ORIGINS" envSeparator:"," envDefault:"*"`
	}

	Database struct {
		// Path of the SQLite database file
		Path string `env:"ESTATE_DB_PATH" envDefault:"database/estate.db"`
	}

	Log struct {
		Level  string `env:"LOG_LEVEL" envDefault:"info"`
		Format string `env:"LOG_FORMAT" envDefault:"json"`
	}

	Listing struct {
		// Days between creation and default availability date
		AvailabilityDays int `env:"ESTATE_AVAILABILITY_DAYS" envDefault:"90"`

		// Default offer validity in days
		OfferValidityDays int `env:"ESTATE_OFFER_VALIDITY_DAYS" envDefault:"7"`

		// Default number of bedrooms of a new listing
		Bedrooms int `env:"ESTATE_DEFAULT_BEDROOMS" envDefault:"2"`

		// Salesman used when a request names no user; 0 means none
		DefaultSalesmanID uint `env:"ESTATE_DEFAULT_SALESMAN_ID" envDefault:"0"`
	}
}

// LoadConfig reads an optional .env file and then the environment
func LoadConfig(envFiles ...string) (*Config, error) {
	if err := godotenv.Load(envFiles...); err != nil && len(envFiles) > 0 {
		return nil, fmt.Errorf("failed to load env file: %w", err)
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Listing.AvailabilityDays < 0 {
		return fmt.Errorf("ESTATE_AVAILABILITY_DAYS must not be negative")
	}
	if c.Listing.OfferValidityDays < 0 {
		return fmt.Errorf("ESTATE_OFFER_VALIDITY_DAYS must not be negative")
	}
	if _, err := logrus.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}
	return nil
}

// Defaults returns the listing defaults for new records
func (c *Config) Defaults() estate.Defaults {
	return estate.Defaults{
		AvailabilityDays:  c.Listing.AvailabilityDays,
		OfferValidityDays: c.Listing.OfferValidityDays,
		Bedrooms:          c.Listing.Bedrooms,
	}
}

// DefaultSalesman returns the configured fallback salesman, or nil
func (c *Config) DefaultSalesman() *uint {
	if c.Listing.DefaultSalesmanID == 0 {
		return nil
	}
	id := c.Listing.DefaultSalesmanID
	return &id
}

// NewLogger builds the application logger from the log settings
func (c *Config) NewLogger() *logrus.Logger {
	logger := logrus.New()
	if c.Log.Format == "text" {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
	level, err := logrus.ParseLevel(c.Log.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)
	return logger
}
