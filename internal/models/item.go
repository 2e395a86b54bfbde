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

package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Media types
const (
	MediaTypeYouTube = "youtube"
	MediaTypeImage   = "image"
	MediaTypePDF     = "pdf"
	MediaTypeText    = "text"
	MediaTypeOther   = "other"
)

// MediaTypes lists the accepted media_type values
var MediaTypes = []string{
	MediaTypeYouTube,
	MediaTypeImage,
	MediaTypePDF,
	MediaTypeText,
	MediaTypeOther,
}

// Item is an appliance, fixture or instruction set inside a property.
type Item struct {
	ID          string            `gorm:"type:char(36);primaryKey" json:"id"`
	PropertyID  string            `gorm:"type:char(36);not null;index" json:"property_id"`
	Name        string            `gorm:"size:255;not null" json:"name"`
	Description *string           `gorm:"type:text" json:"description"`
	Location    *string           `gorm:"size:255" json:"location"`
	MediaURL    *string           `gorm:"size:1000" json:"media_url"`
	MediaType   string            `gorm:"size:20;not null;default:text" json:"media_type"`
	Metadata    datatypes.JSONMap `json:"metadata"`
	CreatedAt   time.Time         `gorm:"index" json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`

	Property *Property `gorm:"constraint:OnDelete:CASCADE" json:"property,omitempty"`
}

func (Item) TableName() string {
	return "items"
}

func (i *Item) BeforeCreate(_ *gorm.DB) error {
	if i.ID == "" {
		i.ID = uuid.NewString()
	}
	return nil
}
