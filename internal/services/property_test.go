// property_test.go
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
	"errors"
	"testing"

	"github.com/localnerve/qrguide/internal/models"
	"github.com/localnerve/qrguide/internal/services"
	"github.com/localnerve/qrguide/internal/testutil"
	"github.com/localnerve/qrguide/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T {
	return &v
}

func TestCreateProperty(t *testing.T) {
	db := testutil.OpenTestDB(t)
	owner := testutil.SeedUser(t, db, "Owner")

	property, err := services.CreateProperty(db, owner.ID, services.PropertyInput{Name: ptr("Sunset Apt")})
	require.NoError(t, err)
	assert.NotEmpty(t, property.ID)
	assert.Equal(t, owner.ID, property.UserID)
	assert.Equal(t, models.PropertyTypeOther, property.PropertyType)
	assert.NotNil(t, property.Settings)

	withType, err := services.CreateProperty(db, owner.ID, services.PropertyInput{
		Name:         ptr("Beach House"),
		PropertyType: ptr("house"),
		Address:      ptr("1 Shore Rd"),
		Settings:     map[string]any{"checkout_time": "10:00"},
	})
	require.NoError(t, err)
	assert.Equal(t, "house", withType.PropertyType)

	stored, err := services.FindProperty(db, withType.ID)
	require.NoError(t, err)
	assert.Equal(t, "10:00", stored.Settings["checkout_time"])
	assert.Equal(t, "1 Shore Rd", *stored.Address)
}

func TestCreatePropertyValidation(t *testing.T) {
	db := testutil.OpenTestDB(t)
	owner := testutil.SeedUser(t, db, "Owner")

	cases := map[string]services.PropertyInput{
		"missing name": {},
		"blank name":   {Name: ptr("   ")},
		"bad type":     {Name: ptr("Castle"), PropertyType: ptr("castle")},
	}
	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := services.CreateProperty(db, owner.ID, input)
			assert.ErrorIs(t, err, types.ErrValidation)
		})
	}
}

func TestCreatePropertyUnknownOwner(t *testing.T) {
	db := testutil.OpenTestDB(t)

	_, err := services.CreateProperty(db, "no-such-user", services.PropertyInput{Name: ptr("Orphan")})
	require.Error(t, err)

	var count int64
	db.Model(&models.Property{}).Count(&count)
	assert.Zero(t, count)
}

func TestListProperties(t *testing.T) {
	db := testutil.OpenTestDB(t)
	owner := testutil.SeedUser(t, db, "Owner")
	other := testutil.SeedUser(t, db, "Other")

	withItems := testutil.SeedProperty(t, db, owner.ID, "Full")
	testutil.SeedItem(t, db, withItems.ID, "Kettle")
	testutil.SeedItem(t, db, withItems.ID, "Oven")
	empty := testutil.SeedProperty(t, db, owner.ID, "Empty")
	testutil.SeedProperty(t, db, other.ID, "Not mine")

	list, err := services.ListProperties(db, owner.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)

	byID := map[string]services.PropertySummary{}
	for _, p := range list {
		byID[p.ID] = p
	}
	assert.Equal(t, int64(2), byID[withItems.ID].ItemCount)
	assert.True(t, byID[withItems.ID].HasItems)
	assert.Zero(t, byID[empty.ID].ItemCount)
	assert.False(t, byID[empty.ID].HasItems)

	none, err := services.ListProperties(db, "nobody")
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestGetProperty(t *testing.T) {
	db := testutil.OpenTestDB(t)
	owner := testutil.SeedUser(t, db, "Owner")
	property := testutil.SeedProperty(t, db, owner.ID, "Loft")
	item := testutil.SeedItem(t, db, property.ID, "Heater")

	detail, err := services.GetProperty(db, property.ID)
	require.NoError(t, err)
	assert.Equal(t, "Loft", detail.Name)
	assert.Equal(t, 1, detail.ItemCount)
	require.Len(t, detail.Items, 1)
	assert.Equal(t, item.ID, detail.Items[0].ID)
	assert.Equal(t, "text", detail.Items[0].MediaType)

	_, err = services.GetProperty(db, "missing")
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func TestUpdateProperty(t *testing.T) {
	db := testutil.OpenTestDB(t)
	owner := testutil.SeedUser(t, db, "Owner")
	property := testutil.SeedProperty(t, db, owner.ID, "Loft")

	updated, err := services.UpdateProperty(db, property.ID, services.PropertyInput{
		Name:         ptr("Loft 2"),
		PropertyType: ptr("studio"),
		Settings:     map[string]any{"pets": true},
	})
	require.NoError(t, err)
	assert.Equal(t, "Loft 2", updated.Name)
	assert.Equal(t, "studio", updated.PropertyType)
	assert.Equal(t, true, updated.Settings["pets"])
	assert.Equal(t, owner.ID, updated.UserID)
	assert.False(t, updated.UpdatedAt.Before(property.UpdatedAt))

	_, err = services.UpdateProperty(db, property.ID, services.PropertyInput{})
	assert.ErrorIs(t, err, types.ErrValidation)

	_, err = services.UpdateProperty(db, property.ID, services.PropertyInput{PropertyType: ptr("palace")})
	assert.ErrorIs(t, err, types.ErrValidation)

	_, err = services.UpdateProperty(db, "missing", services.PropertyInput{Name: ptr("x")})
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func TestDeletePropertyCascades(t *testing.T) {
	db := testutil.OpenTestDB(t)
	owner := testutil.SeedUser(t, db, "Owner")
	property := testutil.SeedProperty(t, db, owner.ID, "Cabin")
	item1 := testutil.SeedItem(t, db, property.ID, "Stove")
	item2 := testutil.SeedItem(t, db, property.ID, "Shower")
	testutil.SeedQRCode(t, db, item1.ID)
	testutil.SeedQRCode(t, db, item2.ID)
	testutil.SeedQRCode(t, db, item2.ID)

	receipt, err := services.DeleteProperty(db, property.ID)
	require.NoError(t, err)
	assert.Equal(t, property.ID, receipt.ID)
	assert.Equal(t, int64(2), receipt.CascadeInfo.ItemsDeleted)
	assert.Equal(t, int64(3), receipt.CascadeInfo.QRCodesDeleted)

	_, err = services.GetProperty(db, property.ID)
	assert.ErrorIs(t, err, types.ErrNotFound)
	_, err = services.FindItem(db, item1.ID)
	assert.ErrorIs(t, err, types.ErrNotFound)

	var codes int64
	db.Model(&models.QRCode{}).Count(&codes)
	assert.Zero(t, codes)

	_, err = services.DeleteProperty(db, property.ID)
	assert.True(t, errors.Is(err, types.ErrNotFound))
}
