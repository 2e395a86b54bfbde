// testutil.go
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

// Package testutil holds shared fixtures for package tests.
package testutil

import (
	"encoding/json"
	"io"
	"net/http"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/localnerve/qrguide/internal/database"
	"github.com/localnerve/qrguide/internal/middleware"
	"github.com/localnerve/qrguide/internal/models"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// AsUser sets the principal directly, standing in for the demo identity middleware
func AsUser(userID string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals(middleware.UserIDKey, userID)
		return c.Next()
	}
}

// OpenTestDB returns a migrated in-memory SQLite database with foreign keys on
func OpenTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?_pragma=foreign_keys(1)"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err, "open test database")

	// every connection to :memory: is a new database
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.AutoMigrate(db), "migrate test database")
	return db
}

// SeedUser creates a user with a fresh id
func SeedUser(t *testing.T, db *gorm.DB, name string) *models.User {
	t.Helper()
	id := uuid.NewString()
	user := &models.User{ID: id, Email: id + "@example.com", Name: name}
	require.NoError(t, db.Create(user).Error)
	return user
}

// SeedProperty creates a property owned by ownerID
func SeedProperty(t *testing.T, db *gorm.DB, ownerID, name string) *models.Property {
	t.Helper()
	property := &models.Property{UserID: ownerID, Name: name, PropertyType: models.PropertyTypeOther}
	require.NoError(t, db.Create(property).Error)
	return property
}

// SeedItem creates an item in propertyID
func SeedItem(t *testing.T, db *gorm.DB, propertyID, name string) *models.Item {
	t.Helper()
	item := &models.Item{PropertyID: propertyID, Name: name, MediaType: models.MediaTypeText}
	require.NoError(t, db.Create(item).Error)
	return item
}

// SeedQRCode creates an active QR code for itemID
func SeedQRCode(t *testing.T, db *gorm.DB, itemID string) *models.QRCode {
	t.Helper()
	qrID := uuid.NewString()
	code := &models.QRCode{
		ItemID:     itemID,
		QRID:       qrID,
		ContentURL: "http://localhost:5173/content/" + qrID,
		Status:     models.QRStatusActive,
	}
	require.NoError(t, db.Create(code).Error)
	return code
}

// Envelope is the response envelope with the data left raw for typed decoding
type Envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Code    string          `json:"code"`
}

// ParseEnvelope decodes a response body, checking the status first
func ParseEnvelope(t *testing.T, resp *http.Response, status int) Envelope {
	t.Helper()
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Equalf(t, status, resp.StatusCode, "unexpected status, body: %s", body)

	var env Envelope
	require.NoErrorf(t, json.Unmarshal(body, &env), "body: %s", body)
	return env
}

// DecodeData unmarshals the envelope data into a T
func DecodeData[T any](t *testing.T, env Envelope) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(env.Data, &out))
	return out
}
