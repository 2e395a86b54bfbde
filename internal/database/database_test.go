// database_test.go
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

package database_test

import (
	"path/filepath"
	"testing"

	"github.com/localnerve/qrguide/internal/config"
	"github.com/localnerve/qrguide/internal/database"
	"github.com/localnerve/qrguide/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gormlogger "gorm.io/gorm/logger"
)

func sqliteConfig(t *testing.T) *config.Config {
	return &config.Config{
		DBType:            "sqlite",
		DBDatabase:        filepath.Join(t.TempDir(), "qrguide-test.db"),
		DBConnectionLimit: 5,
		DBLogLevel:        gormlogger.Silent,
		DemoUserID:        "00000000-0000-4000-8000-000000000001",
		DemoUserEmail:     "demo@qrguide.local",
		DemoUserName:      "Demo Manager",
	}
}

func TestDialectorUnsupported(t *testing.T) {
	cfg := sqliteConfig(t)
	cfg.DBType = "oracle"

	_, err := database.Dialector(cfg)
	assert.Error(t, err)
}

func TestDialectorNames(t *testing.T) {
	cases := map[string]string{
		"mysql":     "mysql",
		"mariadb":   "mysql",
		"postgres":  "postgres",
		"sqlserver": "sqlserver",
		"sqlite":    "sqlite",
	}
	for dbType, name := range cases {
		t.Run(dbType, func(t *testing.T) {
			cfg := sqliteConfig(t)
			cfg.DBType = dbType
			cfg.DBHost = "localhost"
			cfg.DBPort = "1234"
			cfg.DBUser = "user"

			d, err := database.Dialector(cfg)
			require.NoError(t, err)
			assert.Equal(t, name, d.Name())
		})
	}
}

func TestConnectMigrateAndSeed(t *testing.T) {
	cfg := sqliteConfig(t)

	db, err := database.Connect(cfg)
	require.NoError(t, err)
	defer database.Close(db)

	require.NoError(t, database.AutoMigrate(db))
	require.NoError(t, database.Ping(db))

	user, err := database.SeedDemoUser(db, cfg)
	require.NoError(t, err)
	assert.Equal(t, cfg.DemoUserID, user.ID)

	// idempotent
	_, err = database.SeedDemoUser(db, cfg)
	require.NoError(t, err)

	var users int64
	db.Model(&models.User{}).Count(&users)
	assert.Equal(t, int64(1), users)

	n, err := database.SeedSampleData(db, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	var properties []models.Property
	require.NoError(t, db.Where("user_id = ?", user.ID).Find(&properties).Error)
	require.Len(t, properties, 1)
	assert.Equal(t, "Sunset Apartment", properties[0].Name)
	assert.Equal(t, "apartment", properties[0].PropertyType)
	assert.Equal(t, "Sunset-Guest", properties[0].Settings["wifi_network"])

	var items int64
	db.Model(&models.Item{}).Where("property_id = ?", properties[0].ID).Count(&items)
	assert.Equal(t, int64(3), items)

	// second run leaves existing data alone
	n, err = database.SeedSampleData(db, user.ID)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestCascadeDeleteThroughForeignKeys(t *testing.T) {
	cfg := sqliteConfig(t)

	db, err := database.Connect(cfg)
	require.NoError(t, err)
	defer database.Close(db)
	require.NoError(t, database.AutoMigrate(db))

	user, err := database.SeedDemoUser(db, cfg)
	require.NoError(t, err)

	property := models.Property{UserID: user.ID, Name: "Cabin"}
	require.NoError(t, db.Create(&property).Error)
	item := models.Item{PropertyID: property.ID, Name: "Stove"}
	require.NoError(t, db.Create(&item).Error)
	code := models.QRCode{ItemID: item.ID, QRID: "cascade-test"}
	require.NoError(t, db.Create(&code).Error)

	require.NoError(t, db.Delete(&property).Error)

	var count int64
	db.Model(&models.Item{}).Where("id = ?", item.ID).Count(&count)
	assert.Zero(t, count)
	db.Model(&models.QRCode{}).Where("id = ?", code.ID).Count(&count)
	assert.Zero(t, count)
}
