// qrcode.go
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
	"gorm.io/gorm"
)

// QR code states. There is no expiry; codes move between the two on owner request.
const (
	QRStatusActive   = "active"
	QRStatusInactive = "inactive"
)

// QRCode maps a public qr_id token to an item. scan_count only ever increases.
type QRCode struct {
	ID          string     `gorm:"type:char(36);primaryKey" json:"id"`
	ItemID      string     `gorm:"type:char(36);not null;index" json:"item_id"`
	QRID        string     `gorm:"column:qr_id;size:64;not null;uniqueIndex" json:"qr_id"`
	ContentURL  string     `gorm:"size:1000" json:"content_url"`
	Status      string     `gorm:"size:16;not null;default:active;index" json:"status"`
	ScanCount   int64      `gorm:"not null;default:0" json:"scan_count"`
	LastScanned *time.Time `json:"last_scanned"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`

	Item *Item `gorm:"constraint:OnDelete:CASCADE" json:"item,omitempty"`
}

func (QRCode) TableName() string {
	return "qr_codes"
}

func (q *QRCode) BeforeCreate(_ *gorm.DB) error {
	if q.ID == "" {
		q.ID = uuid.NewString()
	}
	return nil
}

// IsActive reports whether the code resolves to content
func (q *QRCode) IsActive() bool {
	return q.Status == QRStatusActive
}
