// health.go
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

package services

import (
	"fmt"
	"time"

	"github.com/localnerve/qrguide/internal/config"
	"github.com/localnerve/qrguide/internal/logger"
	"github.com/localnerve/qrguide/internal/utils"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ServiceName is reported by health checks and used as the log/metrics service label
const ServiceName = "qrguide"

// HealthCheckResult represents the result of a health check
type HealthCheckResult struct {
	Status       string            `json:"status"`
	Service      string            `json:"service"`
	Timestamp    string            `json:"timestamp"`
	Database     string            `json:"database"`
	Frontend     string            `json:"frontend"`
	Details      map[string]string `json:"details,omitempty"`
	ErrorMessage string            `json:"error,omitempty"`
}

// HealthCheck checks the database and reports frontend reachability.
// Only the database decides the overall status.
func HealthCheck(cfg *config.Config, db *gorm.DB) HealthCheckResult {
	log := logger.Get()
	result := HealthCheckResult{
		Status:    "healthy",
		Service:   ServiceName,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Details:   make(map[string]string),
	}

	// Check database connectivity
	sqlDB, err := db.DB()
	if err != nil {
		result.Status = "unhealthy"
		result.Database = "error"
		result.Details["database_error"] = err.Error()
		result.ErrorMessage = fmt.Sprintf("Database connection error: %v", err)
		log.Error("Health check failed - database connection", zap.Error(err))
	} else {
		if err := sqlDB.Ping(); err != nil {
			result.Status = "unhealthy"
			result.Database = "unreachable"
			result.Details["database_ping_error"] = err.Error()
			result.ErrorMessage = fmt.Sprintf("Database ping failed: %v", err)
			log.Error("Health check failed - database ping", zap.Error(err))
		} else {
			result.Database = "ok"
			result.Details["database_type"] = cfg.DBType
			result.Details["database_name"] = cfg.DBDatabase
		}
	}

	// Frontend reachability is informational
	if err := utils.PingFrontend(cfg.FrontendURL); err != nil {
		result.Frontend = "unreachable"
		result.Details["frontend_error"] = err.Error()
		log.Warn("Health check - frontend unreachable", zap.String("frontend_url", cfg.FrontendURL), zap.Error(err))
	} else {
		result.Frontend = "ok"
		result.Details["frontend_url"] = cfg.FrontendURL
	}

	if result.Status == "healthy" {
		log.Debug("Health check passed")
	}

	return result
}
