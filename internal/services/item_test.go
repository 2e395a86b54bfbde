// item_test.go
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
	"testing"

	"github.com/localnerve/qrguide/internal/models"
	"github.com/localnerve/qrguide/internal/services"
	"github.com/localnerve/qrguide/internal/testutil"
	"github.com/localnerve/qrguide/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateItem(t *testing.T) {
	db := testutil.OpenTestDB(t)
	owner := testutil.SeedUser(t, db, "Owner")
	property := testutil.SeedProperty(t, db, owner.ID, "Sunset Apt")

	item, err := services.CreateItem(db, property.ID, services.ItemInput{Name: ptr("Coffee Maker")})
	require.NoError(t, err)
	assert.Equal(t, property.ID, item.PropertyID)
	assert.Equal(t, models.MediaTypeText, item.MediaType)
	assert.NotNil(t, item.Metadata)

	video, err := services.CreateItem(db, property.ID, services.ItemInput{
		Name:      ptr("Thermostat"),
		MediaType: ptr("youtube"),
		MediaURL:  ptr("https://www.youtube.com/watch?v=abc"),
		Metadata:  map[string]any{"difficulty": "easy"},
		Location:  ptr("Hallway"),
	})
	require.NoError(t, err)
	assert.Equal(t, "youtube", video.MediaType)
	assert.Equal(t, "Hallway", *video.Location)
}

func TestCreateItemValidation(t *testing.T) {
	db := testutil.OpenTestDB(t)
	owner := testutil.SeedUser(t, db, "Owner")
	property := testutil.SeedProperty(t, db, owner.ID, "Sunset Apt")

	cases := map[string]services.ItemInput{
		"missing name": {},
		"bad media":    {Name: ptr("Lamp"), MediaType: ptr("hologram")},
		"bad url":      {Name: ptr("Lamp"), MediaURL: ptr("ftp://example.com/x")},
	}
	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := services.CreateItem(db, property.ID, input)
			assert.ErrorIs(t, err, types.ErrValidation)
		})
	}

	_, err := services.CreateItem(db, "missing", services.ItemInput{Name: ptr("Lamp")})
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func TestListItems(t *testing.T) {
	db := testutil.OpenTestDB(t)
	owner := testutil.SeedUser(t, db, "Owner")
	property := testutil.SeedProperty(t, db, owner.ID, "Sunset Apt")
	other := testutil.SeedProperty(t, db, owner.ID, "Other")

	kettle := testutil.SeedItem(t, db, property.ID, "Kettle")
	oven := testutil.SeedItem(t, db, property.ID, "Oven")
	testutil.SeedItem(t, db, other.ID, "Elsewhere")
	testutil.SeedQRCode(t, db, kettle.ID)

	items, err := services.ListItems(db, property.ID)
	require.NoError(t, err)
	require.Len(t, items, 2)

	for i := 1; i < len(items); i++ {
		assert.False(t, items[i].CreatedAt.After(items[i-1].CreatedAt), "newest first")
	}

	counts := map[string]int64{}
	for _, it := range items {
		counts[it.ID] = it.QRCodeCount
	}
	assert.Equal(t, int64(1), counts[kettle.ID])
	assert.Equal(t, int64(0), counts[oven.ID])
}

func TestGetItem(t *testing.T) {
	db := testutil.OpenTestDB(t)
	owner := testutil.SeedUser(t, db, "Owner")
	property := testutil.SeedProperty(t, db, owner.ID, "Sunset Apt")
	item := testutil.SeedItem(t, db, property.ID, "Kettle")
	code := testutil.SeedQRCode(t, db, item.ID)

	detail, err := services.GetItem(db, item.ID)
	require.NoError(t, err)
	require.NotNil(t, detail.Property)
	assert.Equal(t, owner.ID, detail.Property.UserID)
	require.Len(t, detail.QRCodes, 1)
	assert.Equal(t, code.QRID, detail.QRCodes[0].QRID)

	_, err = services.GetItem(db, "missing")
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func TestUpdateItem(t *testing.T) {
	db := testutil.OpenTestDB(t)
	owner := testutil.SeedUser(t, db, "Owner")
	property := testutil.SeedProperty(t, db, owner.ID, "Sunset Apt")
	item := testutil.SeedItem(t, db, property.ID, "Kettle")

	updated, err := services.UpdateItem(db, item.ID, services.ItemInput{
		Name:       ptr("Electric Kettle"),
		MediaType:  ptr("pdf"),
		Metadata:   map[string]any{"duration": "3 minutes"},
		PropertyID: ptr("ignored"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Electric Kettle", updated.Name)
	assert.Equal(t, "pdf", updated.MediaType)
	assert.Equal(t, "3 minutes", updated.Metadata["duration"])
	assert.Equal(t, property.ID, updated.PropertyID)

	_, err = services.UpdateItem(db, item.ID, services.ItemInput{})
	assert.ErrorIs(t, err, types.ErrValidation)
}

func TestUpdateItemLocation(t *testing.T) {
	db := testutil.OpenTestDB(t)
	owner := testutil.SeedUser(t, db, "Owner")
	property := testutil.SeedProperty(t, db, owner.ID, "Sunset Apt")
	item := testutil.SeedItem(t, db, property.ID, "Kettle")

	change, err := services.UpdateItemLocation(db, item.ID, ptr("Kitchen"))
	require.NoError(t, err)
	assert.Nil(t, change.PreviousLocation)
	assert.Equal(t, "Kitchen", *change.NewLocation)

	change, err = services.UpdateItemLocation(db, item.ID, ptr("Pantry"))
	require.NoError(t, err)
	assert.Equal(t, "Kitchen", *change.PreviousLocation)
	assert.Equal(t, "Pantry", *change.NewLocation)

	stored, err := services.FindItem(db, item.ID)
	require.NoError(t, err)
	assert.Equal(t, "Pantry", *stored.Location)
	assert.Equal(t, "Kettle", stored.Name)

	_, err = services.UpdateItemLocation(db, "missing", ptr("x"))
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func TestDeleteItem(t *testing.T) {
	db := testutil.OpenTestDB(t)
	owner := testutil.SeedUser(t, db, "Owner")
	property := testutil.SeedProperty(t, db, owner.ID, "Sunset Apt")
	item := testutil.SeedItem(t, db, property.ID, "Kettle")
	code := testutil.SeedQRCode(t, db, item.ID)

	receipt, err := services.DeleteItem(db, item.ID)
	require.NoError(t, err)
	assert.Equal(t, property.ID, receipt.PropertyID)
	assert.Equal(t, int64(1), receipt.CascadeInfo.QRCodesDeleted)

	_, err = services.GetQRMappingByQRID(db, code.QRID, false)
	assert.ErrorIs(t, err, types.ErrNotFound)

	_, err = services.DeleteItem(db, item.ID)
	assert.ErrorIs(t, err, types.ErrNotFound)
}
