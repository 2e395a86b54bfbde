// config.go
//
// Property QR guide service: properties, items and scannable instruction pages
// Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC
//
// This file is part of qrguide.
// qrguide is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// qrguide is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with qrguide.
// If not, see <https://www.gnu.org/licenses/>.
// Additional terms under GNU AGPL version 3 section 7:
// a) The reasonable legal notice of original copyright and author attribution must be preserved
//    by including the string: "Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC"
//    in this material, copies, or source code of derived works.

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gorm.io/gorm/logger"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	Port        string
	Environment string
	LogLevel    string

	// Database configuration
	DBType            string // sqlite, mysql, mariadb, postgres, sqlserver
	DBHost            string
	DBPort            string
	DBDatabase        string
	DBUser            string
	DBPassword        string
	DBConnectionLimit int
	DBLogLevel        logger.LogLevel

	// Public frontend that renders /content/{qr_id}
	FrontendURL string

	// Demo identity
	DemoUserID     string
	DemoUserEmail  string
	DemoUserName   string
	DemoUserToken  string
	SeedSampleData bool

	// QR rendering defaults
	QRSize            int
	QRErrorCorrection string
	QRMargin          int
	QRDarkColor       string
	QRLightColor      string
	QRBatchLimit      int
}

// Load loads configuration from environment variables, reading a .env file first if present.
func Load() (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	cfg := &Config{
		Port:              getEnv("PORT", "3000"),
		Environment:       getEnv("APP_ENV", "development"),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		DBType:            getEnv("DB_TYPE", "sqlite"),
		DBHost:            getEnv("DB_HOST", "localhost"),
		DBPort:            getEnv("DB_PORT", ""),
		DBDatabase:        getEnv("DB_DATABASE", "qrguide.db"),
		DBUser:            getEnv("DB_USER", ""),
		DBPassword:        getEnv("DB_PASSWORD", ""),
		DBConnectionLimit: getEnvAsInt("DB_CONNECTION_LIMIT", 10),
		DBLogLevel:        getEnvAsLogLevel("DB_LOG_LEVEL", logger.Warn),
		FrontendURL:       strings.TrimRight(getEnv("FRONTEND_URL", "http://localhost:5173"), "/"),
		DemoUserID:        getEnv("DEMO_USER_ID", "00000000-0000-4000-8000-000000000001"),
		DemoUserEmail:     getEnv("DEMO_USER_EMAIL", "demo@qrguide.local"),
		DemoUserName:      getEnv("DEMO_USER_NAME", "Demo Manager"),
		DemoUserToken:     getEnv("DEMO_USER_TOKEN", "demo-token"),
		SeedSampleData:    getEnvAsBool("SEED_SAMPLE_DATA", false),
		QRSize:            getEnvAsInt("QR_SIZE", 256),
		QRErrorCorrection: strings.ToUpper(getEnv("QR_ERROR_CORRECTION", "M")),
		QRMargin:          getEnvAsInt("QR_MARGIN", 2),
		QRDarkColor:       getEnv("QR_DARK_COLOR", "#000000"),
		QRLightColor:      getEnv("QR_LIGHT_COLOR", "#FFFFFF"),
		QRBatchLimit:      getEnvAsInt("QR_BATCH_LIMIT", 10),
	}

	if cfg.DBPort == "" {
		cfg.DBPort = defaultPort(cfg.DBType)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the required fields and value ranges
func (c *Config) Validate() error {
	switch c.DBType {
	case "sqlite", "mysql", "mariadb", "postgres", "postgresql", "sqlserver", "mssql":
	default:
		return fmt.Errorf("unsupported DB_TYPE: %s", c.DBType)
	}
	if c.DBDatabase == "" {
		return fmt.Errorf("DB_DATABASE is required")
	}
	if c.DBType != "sqlite" && c.DBUser == "" {
		return fmt.Errorf("DB_USER is required for %s", c.DBType)
	}
	if c.DemoUserID == "" {
		return fmt.Errorf("DEMO_USER_ID is required")
	}
	if c.DemoUserToken == "" {
		return fmt.Errorf("DEMO_USER_TOKEN is required")
	}
	if !strings.HasPrefix(c.FrontendURL, "http://") && !strings.HasPrefix(c.FrontendURL, "https://") {
		return fmt.Errorf("FRONTEND_URL must be an http(s) URL, got %q", c.FrontendURL)
	}
	if c.QRBatchLimit < 1 {
		return fmt.Errorf("QR_BATCH_LIMIT must be positive")
	}
	return nil
}

// IsProduction reports whether error details should be hidden from clients
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// LogFields returns the non-secret configuration for the startup log line
func (c *Config) LogFields() []zap.Field {
	return []zap.Field{
		zap.String("environment", c.Environment),
		zap.String("port", c.Port),
		zap.String("db_type", c.DBType),
		zap.String("db_host", c.DBHost),
		zap.String("db_database", c.DBDatabase),
		zap.String("frontend_url", c.FrontendURL),
		zap.String("demo_user_id", c.DemoUserID),
	}
}

func defaultPort(dbType string) string {
	switch dbType {
	case "mysql", "mariadb":
		return "3306"
	case "postgres", "postgresql":
		return "5432"
	case "sqlserver", "mssql":
		return "1433"
	}
	return ""
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt gets an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	value, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsLogLevel(key string, defaultValue logger.LogLevel) logger.LogLevel {
	switch os.Getenv(key) {
	case "silent":
		return logger.Silent
	case "error":
		return logger.Error
	case "warn":
		return logger.Warn
	case "info":
		return logger.Info
	default:
		return defaultValue
	}
}
