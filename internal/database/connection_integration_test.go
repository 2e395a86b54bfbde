// connection_integration_test.go
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
	"context"
	"os"
	"sync"
	"testing"

	"github.com/localnerve/qrguide/internal/config"
	"github.com/localnerve/qrguide/internal/database"
	"github.com/localnerve/qrguide/internal/devdb"
	"github.com/localnerve/qrguide/internal/models"
	"github.com/localnerve/qrguide/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gormlogger "gorm.io/gorm/logger"
)

// TestPostgresIntegration runs against a real postgres container when POSTGRES_IMAGE is set
func TestPostgresIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
	img := os.Getenv("POSTGRES_IMAGE")
	if img == "" {
		t.Skip("POSTGRES_IMAGE not set")
	}

	ctx := context.Background()
	pg, err := devdb.Start(ctx, devdb.Options{
		DBType:   "postgres",
		Image:    img,
		Database: "qrguide_test",
		User:     "qrguide",
		Password: "qrguide",
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = pg.Terminate(ctx) })

	cfg := &config.Config{
		DBConnectionLimit: 5,
		DBLogLevel:        gormlogger.Silent,
		DemoUserID:        "00000000-0000-4000-8000-000000000001",
		DemoUserEmail:     "demo@qrguide.local",
		DemoUserName:      "Demo Manager",
	}
	pg.Apply(cfg)

	db, err := database.Connect(cfg)
	require.NoError(t, err)
	defer database.Close(db)

	require.NoError(t, database.AutoMigrate(db))
	user, err := database.SeedDemoUser(db, cfg)
	require.NoError(t, err)
	n, err := database.SeedSampleData(db, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	var property models.Property
	require.NoError(t, db.Where("user_id = ?", user.ID).First(&property).Error)
	var item models.Item
	require.NoError(t, db.Where("property_id = ?", property.ID).First(&item).Error)

	first, err := services.CreateQRMapping(db, item.ID, "pg-first", "http://localhost:3000/content/pg-first")
	require.NoError(t, err)
	second, err := services.CreateQRMapping(db, item.ID, "pg-second", "http://localhost:3000/content/pg-second")
	require.NoError(t, err)
	assert.Equal(t, []string{first.QRID}, second.DeactivatedQRIDs)

	const scans = 20
	var wg sync.WaitGroup
	for i := 0; i < scans; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := services.IncrementScanCount(db, second.ID)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	stats, err := services.GetQRStatistics(db, services.QRFilter{OwnerID: user.ID})
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Total)
	assert.Equal(t, 1, stats.Active)
	assert.Equal(t, int64(scans), stats.TotalScans)

	receipt, err := services.DeleteProperty(db, property.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), receipt.CascadeInfo.ItemsDeleted)
	assert.Equal(t, int64(2), receipt.CascadeInfo.QRCodesDeleted)

	var remaining int64
	db.Model(&models.QRCode{}).Count(&remaining)
	assert.Zero(t, remaining)
}
