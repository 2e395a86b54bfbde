// qrcode_test.go
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

package services_test

import (
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/localnerve/qrguide/internal/models"
	"github.com/localnerve/qrguide/internal/services"
	"github.com/localnerve/qrguide/internal/testutil"
	"github.com/localnerve/qrguide/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestCreateQRMapping(t *testing.T) {
	db := testutil.OpenTestDB(t)
	owner := testutil.SeedUser(t, db, "Owner")
	property := testutil.SeedProperty(t, db, owner.ID, "Sunset Apt")
	item := testutil.SeedItem(t, db, property.ID, "Kettle")

	first, err := services.CreateQRMapping(db, item.ID, "qr-first", "http://x/content/qr-first")
	require.NoError(t, err)
	assert.Equal(t, models.QRStatusActive, first.Status)
	assert.Zero(t, first.ScanCount)
	assert.Nil(t, first.LastScanned)
	assert.Empty(t, first.DeactivatedQRIDs)

	second, err := services.CreateQRMapping(db, item.ID, "qr-second", "http://x/content/qr-second")
	require.NoError(t, err)
	assert.Equal(t, []string{"qr-first"}, second.DeactivatedQRIDs)

	old, err := services.GetQRMappingByQRID(db, "qr-first", false)
	require.NoError(t, err)
	assert.Equal(t, models.QRStatusInactive, old.Status)

	_, err = services.CreateQRMapping(db, item.ID, "qr-second", "dup")
	assert.Error(t, err)

	_, err = services.CreateQRMapping(db, "missing", "qr-third", "x")
	assert.ErrorIs(t, err, types.ErrNotFound)

	_, err = services.CreateQRMapping(db, item.ID, " ", "x")
	assert.ErrorIs(t, err, types.ErrValidation)
}

func TestGetQRMappingByQRIDScanGate(t *testing.T) {
	db := testutil.OpenTestDB(t)
	owner := testutil.SeedUser(t, db, "Owner")
	property := testutil.SeedProperty(t, db, owner.ID, "Sunset Apt")
	item := testutil.SeedItem(t, db, property.ID, "Kettle")
	code := testutil.SeedQRCode(t, db, item.ID)

	looked, err := services.GetQRMappingByQRID(db, code.QRID, false)
	require.NoError(t, err)
	assert.Zero(t, looked.ScanCount)
	require.NotNil(t, looked.Item)
	require.NotNil(t, looked.Item.Property)
	assert.Equal(t, owner.ID, looked.Item.Property.UserID)

	for want := int64(1); want <= 3; want++ {
		scanned, err := services.GetQRMappingByQRID(db, code.QRID, true)
		require.NoError(t, err)
		assert.Equal(t, want, scanned.ScanCount)
		assert.NotNil(t, scanned.LastScanned)
	}

	_, err = services.GetQRMappingByQRID(db, "missing", true)
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func TestIncrementScanCountConcurrent(t *testing.T) {
	db := testutil.OpenTestDB(t)
	owner := testutil.SeedUser(t, db, "Owner")
	property := testutil.SeedProperty(t, db, owner.ID, "Sunset Apt")
	item := testutil.SeedItem(t, db, property.ID, "Kettle")
	code := testutil.SeedQRCode(t, db, item.ID)

	const scans = 20
	var wg sync.WaitGroup
	for i := 0; i < scans; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := services.IncrementScanCount(db, code.ID)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	stored, err := services.GetQRMappingByQRID(db, code.QRID, false)
	require.NoError(t, err)
	assert.Equal(t, int64(scans), stored.ScanCount)

	_, err = services.IncrementScanCount(db, "missing")
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func TestUpdateQRStatus(t *testing.T) {
	db := testutil.OpenTestDB(t)
	owner := testutil.SeedUser(t, db, "Owner")
	property := testutil.SeedProperty(t, db, owner.ID, "Sunset Apt")
	item := testutil.SeedItem(t, db, property.ID, "Kettle")
	code := testutil.SeedQRCode(t, db, item.ID)

	change, err := services.UpdateQRStatus(db, code.QRID, models.QRStatusInactive)
	require.NoError(t, err)
	assert.Equal(t, models.QRStatusActive, change.PreviousStatus)
	assert.Equal(t, models.QRStatusInactive, change.Status)

	_, err = services.UpdateQRStatus(db, code.QRID, models.QRStatusInactive)
	assert.ErrorIs(t, err, types.ErrConflict)

	change, err = services.UpdateQRStatus(db, code.QRID, models.QRStatusActive)
	require.NoError(t, err)
	assert.Equal(t, models.QRStatusInactive, change.PreviousStatus)

	_, err = services.UpdateQRStatus(db, code.QRID, "expired")
	assert.ErrorIs(t, err, types.ErrValidation)

	_, err = services.UpdateQRStatus(db, "missing", models.QRStatusActive)
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func TestReactivatingQRCodeKeepsOneActivePerItem(t *testing.T) {
	db := testutil.OpenTestDB(t)
	owner := testutil.SeedUser(t, db, "Owner")
	property := testutil.SeedProperty(t, db, owner.ID, "Sunset Apt")
	item := testutil.SeedItem(t, db, property.ID, "Kettle")
	other := testutil.SeedItem(t, db, property.ID, "Toaster")

	_, err := services.CreateQRMapping(db, item.ID, "qr-a", "http://x/content/qr-a")
	require.NoError(t, err)
	_, err = services.CreateQRMapping(db, item.ID, "qr-b", "http://x/content/qr-b")
	require.NoError(t, err)
	_, err = services.CreateQRMapping(db, other.ID, "qr-other", "http://x/content/qr-other")
	require.NoError(t, err)

	change, err := services.UpdateQRStatus(db, "qr-a", models.QRStatusActive)
	require.NoError(t, err)
	assert.Equal(t, models.QRStatusInactive, change.PreviousStatus)
	assert.Equal(t, []string{"qr-b"}, change.DeactivatedQRIDs)

	var active []string
	require.NoError(t, db.Model(&models.QRCode{}).
		Where("item_id = ? AND status = ?", item.ID, models.QRStatusActive).
		Pluck("qr_id", &active).Error)
	assert.Equal(t, []string{"qr-a"}, active)

	// other items are untouched
	untouched, err := services.GetQRMappingByQRID(db, "qr-other", false)
	require.NoError(t, err)
	assert.Equal(t, models.QRStatusActive, untouched.Status)

	// deactivating reports nothing
	change, err = services.UpdateQRStatus(db, "qr-a", models.QRStatusInactive)
	require.NoError(t, err)
	assert.Empty(t, change.DeactivatedQRIDs)
}

// SELECT ... FOR UPDATE is not valid T-SQL, so status changes rely on conditional UPDATEs
func TestQRStatusChangesIssueNoRowLocks(t *testing.T) {
	db := testutil.OpenTestDB(t)
	owner := testutil.SeedUser(t, db, "Owner")
	property := testutil.SeedProperty(t, db, owner.ID, "Sunset Apt")
	item := testutil.SeedItem(t, db, property.ID, "Kettle")

	var locked int
	require.NoError(t, db.Callback().Query().Before("gorm:query").Register("test:locking", func(tx *gorm.DB) {
		if _, ok := tx.Statement.Clauses["FOR"]; ok {
			locked++
		}
	}))

	_, err := services.CreateQRMapping(db, item.ID, "qr-a", "http://x/content/qr-a")
	require.NoError(t, err)
	_, err = services.CreateQRMapping(db, item.ID, "qr-b", "http://x/content/qr-b")
	require.NoError(t, err)
	_, err = services.UpdateQRStatus(db, "qr-a", models.QRStatusActive)
	require.NoError(t, err)
	_, err = services.UpdateQRStatus(db, "qr-a", models.QRStatusInactive)
	require.NoError(t, err)

	assert.Zero(t, locked)
}

func TestDeleteQRMapping(t *testing.T) {
	db := testutil.OpenTestDB(t)
	owner := testutil.SeedUser(t, db, "Owner")
	property := testutil.SeedProperty(t, db, owner.ID, "Sunset Apt")
	item := testutil.SeedItem(t, db, property.ID, "Kettle")
	code := testutil.SeedQRCode(t, db, item.ID)

	receipt, err := services.DeleteQRMapping(db, code.QRID)
	require.NoError(t, err)
	assert.Equal(t, code.ID, receipt.ID)
	assert.Equal(t, item.ID, receipt.ItemID)

	_, err = services.DeleteQRMapping(db, code.QRID)
	assert.ErrorIs(t, err, types.ErrNotFound)

	// the item survives
	_, err = services.FindItem(db, item.ID)
	assert.NoError(t, err)
}

func TestListAndStatistics(t *testing.T) {
	db := testutil.OpenTestDB(t)
	owner := testutil.SeedUser(t, db, "Owner")
	stranger := testutil.SeedUser(t, db, "Stranger")
	property := testutil.SeedProperty(t, db, owner.ID, "Sunset Apt")
	otherProperty := testutil.SeedProperty(t, db, owner.ID, "Loft")
	foreign := testutil.SeedProperty(t, db, stranger.ID, "Theirs")

	kettle := testutil.SeedItem(t, db, property.ID, "Kettle")
	oven := testutil.SeedItem(t, db, property.ID, "Oven")
	loftItem := testutil.SeedItem(t, db, otherProperty.ID, "Lamp")
	foreignItem := testutil.SeedItem(t, db, foreign.ID, "Sofa")

	busy := testutil.SeedQRCode(t, db, kettle.ID)
	quiet := testutil.SeedQRCode(t, db, oven.ID)
	loftCode := testutil.SeedQRCode(t, db, loftItem.ID)
	testutil.SeedQRCode(t, db, foreignItem.ID)

	for i := 0; i < 5; i++ {
		_, err := services.IncrementScanCount(db, busy.ID)
		require.NoError(t, err)
	}
	_, err := services.IncrementScanCount(db, quiet.ID)
	require.NoError(t, err)
	_, err = services.UpdateQRStatus(db, quiet.QRID, models.QRStatusInactive)
	require.NoError(t, err)

	byItem, err := services.ListQRCodes(db, services.QRFilter{ItemID: kettle.ID})
	require.NoError(t, err)
	require.Len(t, byItem, 1)
	assert.Equal(t, busy.QRID, byItem[0].QRID)

	byProperty, err := services.ListQRCodes(db, services.QRFilter{PropertyID: property.ID})
	require.NoError(t, err)
	assert.Len(t, byProperty, 2)

	byOwner, err := services.ListQRCodes(db, services.QRFilter{OwnerID: owner.ID})
	require.NoError(t, err)
	ids := []string{}
	for _, c := range byOwner {
		ids = append(ids, c.QRID)
	}
	assert.ElementsMatch(t, []string{busy.QRID, quiet.QRID, loftCode.QRID}, ids)

	stats, err := services.GetQRStatistics(db, services.QRFilter{PropertyID: property.ID})
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Total)
	assert.Equal(t, 1, stats.Active)
	assert.Equal(t, 1, stats.Inactive)
	assert.Equal(t, int64(6), stats.TotalScans)
	assert.InDelta(t, 3.0, stats.AverageScans, 0.001)
	require.NotNil(t, stats.MostScanned)
	assert.Equal(t, busy.QRID, stats.MostScanned.QRID)
	assert.Equal(t, quiet.QRID, stats.LeastScanned.QRID)

	empty, err := services.GetQRStatistics(db, services.QRFilter{ItemID: uuid.NewString()})
	require.NoError(t, err)
	assert.Zero(t, empty.Total)
	assert.Nil(t, empty.MostScanned)
}
