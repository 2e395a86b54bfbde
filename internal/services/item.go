// item.go
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
	"slices"
	"strings"
	"time"

	"github.com/localnerve/qrguide/internal/models"
	"github.com/localnerve/qrguide/internal/types"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const resourceItem = "Item"

// ItemInput carries create and update fields. PropertyID is only read on create.
type ItemInput struct {
	PropertyID  *string        `json:"property_id"`
	Name        *string        `json:"name"`
	Description *string        `json:"description"`
	Location    *string        `json:"location"`
	MediaURL    *string        `json:"media_url"`
	MediaType   *string        `json:"media_type"`
	Metadata    map[string]any `json:"metadata"`
}

// ItemListEntry is an item with the number of QR codes pointing at it
type ItemListEntry struct {
	models.Item
	QRCodeCount int64 `json:"qr_code_count"`
}

// ItemDetail is an item with its property and QR codes
type ItemDetail struct {
	models.Item
	QRCodes []models.QRCode `json:"qr_codes"`
}

// LocationChange reports a location update
type LocationChange struct {
	ID               string    `json:"id"`
	Name             string    `json:"name"`
	PreviousLocation *string   `json:"previous_location"`
	NewLocation      *string   `json:"new_location"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// ItemDeleteReceipt describes a deleted item
type ItemDeleteReceipt struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	PropertyID  string      `json:"property_id"`
	CascadeInfo CascadeInfo `json:"cascade_info"`
}

func validateMediaType(mediaType string) error {
	if !slices.Contains(models.MediaTypes, mediaType) {
		return types.NewValidationError("media_type must be one of: %s", strings.Join(models.MediaTypes, ", "))
	}
	return nil
}

func validateMediaURL(mediaURL *string) error {
	if mediaURL == nil || *mediaURL == "" {
		return nil
	}
	if !strings.HasPrefix(*mediaURL, "http://") && !strings.HasPrefix(*mediaURL, "https://") {
		return types.NewValidationError("media_url must be an http(s) URL")
	}
	return nil
}

// CreateItem adds an item to an existing property
func CreateItem(db *gorm.DB, propertyID string, input ItemInput) (*models.Item, error) {
	if err := validateName(input.Name, true); err != nil {
		return nil, err
	}

	mediaType := models.MediaTypeText
	if input.MediaType != nil {
		mediaType = *input.MediaType
	}
	if err := validateMediaType(mediaType); err != nil {
		return nil, err
	}
	if err := validateMediaURL(input.MediaURL); err != nil {
		return nil, err
	}

	if _, err := FindProperty(db, propertyID); err != nil {
		return nil, err
	}

	item := models.Item{
		PropertyID:  propertyID,
		Name:        strings.TrimSpace(*input.Name),
		Description: input.Description,
		Location:    input.Location,
		MediaURL:    input.MediaURL,
		MediaType:   mediaType,
		Metadata:    datatypes.JSONMap(input.Metadata),
	}
	if item.Metadata == nil {
		item.Metadata = datatypes.JSONMap{}
	}

	if err := db.Create(&item).Error; err != nil {
		return nil, translate(err, resourceItem)
	}
	return &item, nil
}

// ListItems returns the property's items, newest first, with QR code counts
func ListItems(db *gorm.DB, propertyID string) ([]ItemListEntry, error) {
	var items []models.Item
	if err := db.Where("property_id = ?", propertyID).
		Order("created_at DESC").
		Find(&items).Error; err != nil {
		return nil, translate(err, resourceItem)
	}

	entries := make([]ItemListEntry, 0, len(items))
	if len(items) == 0 {
		return entries, nil
	}

	ids := make([]string, len(items))
	for i, item := range items {
		ids[i] = item.ID
	}

	var counts []struct {
		ItemID string
		Count  int64
	}
	if err := db.Model(&models.QRCode{}).
		Select("item_id, COUNT(*) AS count").
		Where("item_id IN ?", ids).
		Group("item_id").
		Scan(&counts).Error; err != nil {
		return nil, translate(err, resourceItem)
	}

	byItem := make(map[string]int64, len(counts))
	for _, c := range counts {
		byItem[c.ItemID] = c.Count
	}

	for _, item := range items {
		entries = append(entries, ItemListEntry{Item: item, QRCodeCount: byItem[item.ID]})
	}
	return entries, nil
}

// FindItem loads the bare item row
func FindItem(db *gorm.DB, id string) (*models.Item, error) {
	var item models.Item
	if err := quiet(db).Where("id = ?", id).First(&item).Error; err != nil {
		return nil, translate(err, resourceItem)
	}
	return &item, nil
}

// GetItem loads an item with its property and QR codes
func GetItem(db *gorm.DB, id string) (*ItemDetail, error) {
	var item models.Item
	if err := quiet(db).Preload("Property").Where("id = ?", id).First(&item).Error; err != nil {
		return nil, translate(err, resourceItem)
	}

	codes := []models.QRCode{}
	if err := db.Where("item_id = ?", id).Order("created_at DESC").Find(&codes).Error; err != nil {
		return nil, translate(err, resourceItem)
	}

	return &ItemDetail{Item: item, QRCodes: codes}, nil
}

// UpdateItem applies the whitelisted fields of input. property_id never changes.
func UpdateItem(db *gorm.DB, id string, input ItemInput) (*models.Item, error) {
	updates := map[string]any{}

	if input.Name != nil {
		if err := validateName(input.Name, false); err != nil {
			return nil, err
		}
		updates["name"] = strings.TrimSpace(*input.Name)
	}
	if input.Description != nil {
		updates["description"] = *input.Description
	}
	if input.Location != nil {
		updates["location"] = *input.Location
	}
	if input.MediaURL != nil {
		if err := validateMediaURL(input.MediaURL); err != nil {
			return nil, err
		}
		updates["media_url"] = *input.MediaURL
	}
	if input.MediaType != nil {
		if err := validateMediaType(*input.MediaType); err != nil {
			return nil, err
		}
		updates["media_type"] = *input.MediaType
	}
	if input.Metadata != nil {
		updates["metadata"] = datatypes.JSONMap(input.Metadata)
	}

	if len(updates) == 0 {
		return nil, types.NewValidationError("no updatable fields provided")
	}
	updates["updated_at"] = time.Now()

	item, err := FindItem(db, id)
	if err != nil {
		return nil, err
	}
	if err := db.Model(item).Updates(updates).Error; err != nil {
		return nil, translate(err, resourceItem)
	}
	return FindItem(db, id)
}

// UpdateItemLocation changes only the location and reports the previous value.
// A nil location clears it.
func UpdateItemLocation(db *gorm.DB, id string, location *string) (*LocationChange, error) {
	var change LocationChange

	err := db.Transaction(func(tx *gorm.DB) error {
		item, err := FindItem(tx, id)
		if err != nil {
			return err
		}

		now := time.Now()
		if err := tx.Model(item).Updates(map[string]any{
			"location":   location,
			"updated_at": now,
		}).Error; err != nil {
			return err
		}

		change = LocationChange{
			ID:               item.ID,
			Name:             item.Name,
			PreviousLocation: item.Location,
			NewLocation:      location,
			UpdatedAt:        now,
		}
		return nil
	})
	if err != nil {
		return nil, translate(err, resourceItem)
	}
	return &change, nil
}

// DeleteItem removes an item; its QR codes go with it through the store cascade
func DeleteItem(db *gorm.DB, id string) (*ItemDeleteReceipt, error) {
	var receipt ItemDeleteReceipt

	err := db.Transaction(func(tx *gorm.DB) error {
		var item models.Item
		if err := quiet(tx).Where("id = ?", id).First(&item).Error; err != nil {
			return err
		}

		receipt.ID = item.ID
		receipt.Name = item.Name
		receipt.PropertyID = item.PropertyID

		if err := tx.Model(&models.QRCode{}).
			Where("item_id = ?", id).
			Count(&receipt.CascadeInfo.QRCodesDeleted).Error; err != nil {
			return err
		}

		return tx.Delete(&item).Error
	})
	if err != nil {
		return nil, translate(err, resourceItem)
	}
	return &receipt, nil
}
