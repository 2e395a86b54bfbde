// property.go
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

const resourceProperty = "Property"

// PropertyInput carries create and update fields. Nil fields are left alone on update.
type PropertyInput struct {
	Name         *string        `json:"name"`
	Description  *string        `json:"description"`
	Address      *string        `json:"address"`
	PropertyType *string        `json:"property_type"`
	Settings     map[string]any `json:"settings"`
}

// PropertySummary is a list entry with its item count
type PropertySummary struct {
	models.Property
	ItemCount int64 `json:"item_count"`
	HasItems  bool  `json:"has_items"`
}

// ItemSummary is the short form of an item nested in a property
type ItemSummary struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Location  *string   `json:"location"`
	MediaType string    `json:"media_type"`
	CreatedAt time.Time `json:"created_at"`
}

// PropertyDetail is a property with its items
type PropertyDetail struct {
	models.Property
	Items     []ItemSummary `json:"items"`
	ItemCount int           `json:"item_count"`
}

// CascadeInfo reports the rows the store cascade removes along with a delete
type CascadeInfo struct {
	ItemsDeleted   int64 `json:"items_deleted"`
	QRCodesDeleted int64 `json:"qr_codes_deleted"`
}

// PropertyDeleteReceipt describes a deleted property
type PropertyDeleteReceipt struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	CascadeInfo CascadeInfo `json:"cascade_info"`
}

func validatePropertyType(propertyType string) error {
	if !slices.Contains(models.PropertyTypes, propertyType) {
		return types.NewValidationError("property_type must be one of: %s", strings.Join(models.PropertyTypes, ", "))
	}
	return nil
}

func validateName(name *string, required bool) error {
	if name == nil {
		if required {
			return types.NewValidationError("name is required")
		}
		return nil
	}
	trimmed := strings.TrimSpace(*name)
	if trimmed == "" {
		return types.NewValidationError("name must not be empty")
	}
	if len(trimmed) > 255 {
		return types.NewValidationError("name must be at most 255 characters")
	}
	return nil
}

// CreateProperty persists a new property owned by ownerID
func CreateProperty(db *gorm.DB, ownerID string, input PropertyInput) (*models.Property, error) {
	if err := validateName(input.Name, true); err != nil {
		return nil, err
	}

	propertyType := models.PropertyTypeOther
	if input.PropertyType != nil {
		propertyType = *input.PropertyType
	}
	if err := validatePropertyType(propertyType); err != nil {
		return nil, err
	}

	property := models.Property{
		UserID:       ownerID,
		Name:         strings.TrimSpace(*input.Name),
		Description:  input.Description,
		Address:      input.Address,
		PropertyType: propertyType,
		Settings:     datatypes.JSONMap(input.Settings),
	}
	if property.Settings == nil {
		property.Settings = datatypes.JSONMap{}
	}

	if err := db.Create(&property).Error; err != nil {
		return nil, translate(err, resourceProperty)
	}
	return &property, nil
}

// ListProperties returns the owner's properties, newest first, with item counts
func ListProperties(db *gorm.DB, ownerID string) ([]PropertySummary, error) {
	var properties []models.Property
	if err := db.Where("user_id = ?", ownerID).
		Order("created_at DESC").
		Find(&properties).Error; err != nil {
		return nil, translate(err, resourceProperty)
	}

	summaries := make([]PropertySummary, 0, len(properties))
	if len(properties) == 0 {
		return summaries, nil
	}

	ids := make([]string, len(properties))
	for i, p := range properties {
		ids[i] = p.ID
	}

	var counts []struct {
		PropertyID string
		Count      int64
	}
	if err := db.Model(&models.Item{}).
		Select("property_id, COUNT(*) AS count").
		Where("property_id IN ?", ids).
		Group("property_id").
		Scan(&counts).Error; err != nil {
		return nil, translate(err, resourceProperty)
	}

	byProperty := make(map[string]int64, len(counts))
	for _, c := range counts {
		byProperty[c.PropertyID] = c.Count
	}

	for _, p := range properties {
		n := byProperty[p.ID]
		summaries = append(summaries, PropertySummary{Property: p, ItemCount: n, HasItems: n > 0})
	}
	return summaries, nil
}

// FindProperty loads the bare property row
func FindProperty(db *gorm.DB, id string) (*models.Property, error) {
	var property models.Property
	if err := quiet(db).Where("id = ?", id).First(&property).Error; err != nil {
		return nil, translate(err, resourceProperty)
	}
	return &property, nil
}

// GetProperty loads a property with summaries of its items, newest first
func GetProperty(db *gorm.DB, id string) (*PropertyDetail, error) {
	property, err := FindProperty(db, id)
	if err != nil {
		return nil, err
	}

	items := []ItemSummary{}
	if err := db.Model(&models.Item{}).
		Select("id, name, location, media_type, created_at").
		Where("property_id = ?", id).
		Order("created_at DESC").
		Scan(&items).Error; err != nil {
		return nil, translate(err, resourceProperty)
	}

	return &PropertyDetail{Property: *property, Items: items, ItemCount: len(items)}, nil
}

// UpdateProperty applies the whitelisted fields of input. user_id never changes.
func UpdateProperty(db *gorm.DB, id string, input PropertyInput) (*models.Property, error) {
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
	if input.Address != nil {
		updates["address"] = *input.Address
	}
	if input.PropertyType != nil {
		if err := validatePropertyType(*input.PropertyType); err != nil {
			return nil, err
		}
		updates["property_type"] = *input.PropertyType
	}
	if input.Settings != nil {
		updates["settings"] = datatypes.JSONMap(input.Settings)
	}

	if len(updates) == 0 {
		return nil, types.NewValidationError("no updatable fields provided")
	}
	updates["updated_at"] = time.Now()

	property, err := FindProperty(db, id)
	if err != nil {
		return nil, err
	}
	if err := db.Model(property).Updates(updates).Error; err != nil {
		return nil, translate(err, resourceProperty)
	}
	return FindProperty(db, id)
}

// DeleteProperty removes a property. Items and QR codes go with it through the store cascade;
// their counts are taken first for the receipt.
func DeleteProperty(db *gorm.DB, id string) (*PropertyDeleteReceipt, error) {
	var receipt PropertyDeleteReceipt

	err := db.Transaction(func(tx *gorm.DB) error {
		var property models.Property
		if err := quiet(tx).Where("id = ?", id).First(&property).Error; err != nil {
			return err
		}

		receipt.ID = property.ID
		receipt.Name = property.Name

		if err := tx.Model(&models.Item{}).
			Where("property_id = ?", id).
			Count(&receipt.CascadeInfo.ItemsDeleted).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.QRCode{}).
			Joins("JOIN items ON items.id = qr_codes.item_id").
			Where("items.property_id = ?", id).
			Count(&receipt.CascadeInfo.QRCodesDeleted).Error; err != nil {
			return err
		}

		return tx.Delete(&property).Error
	})
	if err != nil {
		return nil, translate(err, resourceProperty)
	}
	return &receipt, nil
}
