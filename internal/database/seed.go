// seed.go
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

package database

import (
	"encoding/json"
	"fmt"

	"github.com/localnerve/qrguide/data"
	"github.com/localnerve/qrguide/internal/config"
	"github.com/localnerve/qrguide/internal/logger"
	"github.com/localnerve/qrguide/internal/models"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type sampleItem struct {
	Name        string            `json:"name"`
	Description *string           `json:"description"`
	Location    *string           `json:"location"`
	MediaURL    *string           `json:"media_url"`
	MediaType   string            `json:"media_type"`
	Metadata    datatypes.JSONMap `json:"metadata"`
}

type sampleProperty struct {
	Name         string            `json:"name"`
	Description  *string           `json:"description"`
	Address      *string           `json:"address"`
	PropertyType string            `json:"property_type"`
	Settings     datatypes.JSONMap `json:"settings"`
	Items        []sampleItem      `json:"items"`
}

// SeedDemoUser makes sure the fixed demo principal exists
func SeedDemoUser(db *gorm.DB, cfg *config.Config) (*models.User, error) {
	user := models.User{
		ID:    cfg.DemoUserID,
		Email: cfg.DemoUserEmail,
		Name:  cfg.DemoUserName,
	}
	if err := db.Where(models.User{ID: cfg.DemoUserID}).FirstOrCreate(&user).Error; err != nil {
		return nil, fmt.Errorf("failed to seed demo user: %w", err)
	}
	return &user, nil
}

// SeedSampleData loads the embedded sample properties for ownerID.
// Nothing is written if the owner already has properties.
func SeedSampleData(db *gorm.DB, ownerID string) (int, error) {
	var existing int64
	if err := db.Model(&models.Property{}).Where("user_id = ?", ownerID).Count(&existing).Error; err != nil {
		return 0, err
	}
	if existing > 0 {
		return 0, nil
	}

	var samples []sampleProperty
	if err := json.Unmarshal(data.SampleProperties, &samples); err != nil {
		return 0, fmt.Errorf("invalid sample data: %w", err)
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		for _, sp := range samples {
			property := models.Property{
				UserID:       ownerID,
				Name:         sp.Name,
				Description:  sp.Description,
				Address:      sp.Address,
				PropertyType: sp.PropertyType,
				Settings:     sp.Settings,
			}
			if err := tx.Create(&property).Error; err != nil {
				return err
			}

			for _, si := range sp.Items {
				item := models.Item{
					PropertyID:  property.ID,
					Name:        si.Name,
					Description: si.Description,
					Location:    si.Location,
					MediaURL:    si.MediaURL,
					MediaType:   si.MediaType,
					Metadata:    si.Metadata,
				}
				if err := tx.Create(&item).Error; err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to seed sample data: %w", err)
	}

	logger.Get().Info("Seeded sample data", zap.String("owner_id", ownerID), zap.Int("properties", len(samples)))
	return len(samples), nil
}
