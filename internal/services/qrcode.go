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

package services

import (
	"slices"
	"strings"
	"time"

	"github.com/localnerve/qrguide/internal/models"
	"github.com/localnerve/qrguide/internal/types"
	"gorm.io/gorm"
	"gorm.io/hints"
)

const resourceQRCode = "QR code"

// QRFilter scopes QR code listings and statistics. Empty fields do not filter.
type QRFilter struct {
	ItemID     string
	PropertyID string
	OwnerID    string
}

// QRMapping is a newly created QR code and the codes it replaced
type QRMapping struct {
	models.QRCode
	DeactivatedQRIDs []string `json:"deactivated_qr_ids"`
}

// StatusChange reports a QR status transition. Activating a code deactivates the item's other
// active codes, listed in DeactivatedQRIDs.
type StatusChange struct {
	QRID             string    `json:"qr_id"`
	PreviousStatus   string    `json:"previous_status"`
	Status           string    `json:"status"`
	UpdatedAt        time.Time `json:"updated_at"`
	DeactivatedQRIDs []string  `json:"deactivated_qr_ids"`
}

// QRDeleteReceipt describes a deleted QR code
type QRDeleteReceipt struct {
	ID        string `json:"id"`
	QRID      string `json:"qr_id"`
	ItemID    string `json:"item_id"`
	ScanCount int64  `json:"scan_count"`
}

// QRScanSummary identifies one code in statistics
type QRScanSummary struct {
	QRID      string `json:"qr_id"`
	ItemID    string `json:"item_id"`
	ScanCount int64  `json:"scan_count"`
}

// QRStatistics aggregates a set of QR codes
type QRStatistics struct {
	Total        int            `json:"total"`
	Active       int            `json:"active"`
	Inactive     int            `json:"inactive"`
	TotalScans   int64          `json:"total_scans"`
	AverageScans float64        `json:"average_scans"`
	MostScanned  *QRScanSummary `json:"most_scanned"`
	LeastScanned *QRScanSummary `json:"least_scanned"`
}

// CreateQRMapping inserts an active QR code for itemID. Any other active code for the item is
// deactivated in the same transaction so an item has at most one active code.
func CreateQRMapping(db *gorm.DB, itemID, qrID, contentURL string) (*QRMapping, error) {
	if strings.TrimSpace(qrID) == "" {
		return nil, types.NewValidationError("qr_id is required")
	}

	mapping := QRMapping{DeactivatedQRIDs: []string{}}

	err := db.Transaction(func(tx *gorm.DB) error {
		if _, err := FindItem(tx, itemID); err != nil {
			return err
		}

		deactivated, err := deactivateOtherCodes(tx, itemID, "")
		if err != nil {
			return err
		}
		mapping.DeactivatedQRIDs = deactivated

		mapping.QRCode = models.QRCode{
			ItemID:     itemID,
			QRID:       qrID,
			ContentURL: contentURL,
			Status:     models.QRStatusActive,
			ScanCount:  0,
		}
		return tx.Create(&mapping.QRCode).Error
	})
	if err != nil {
		return nil, translate(err, resourceQRCode)
	}
	return &mapping, nil
}

// GetQRMappingByQRID loads a QR code with its item and property. The scan counter only moves
// when recordScan is set, which is reserved for the public content route.
func GetQRMappingByQRID(db *gorm.DB, qrID string, recordScan bool) (*models.QRCode, error) {
	var code models.QRCode
	if err := quiet(db).
		Preload("Item.Property").
		Where("qr_id = ?", qrID).
		First(&code).Error; err != nil {
		return nil, translate(err, resourceQRCode)
	}

	if !recordScan {
		return &code, nil
	}

	counted, err := IncrementScanCount(db, code.ID)
	if err != nil {
		return nil, err
	}
	code.ScanCount = counted.ScanCount
	code.LastScanned = counted.LastScanned
	code.UpdatedAt = counted.UpdatedAt
	return &code, nil
}

// IncrementScanCount bumps scan_count in a single UPDATE expression and stamps last_scanned
func IncrementScanCount(db *gorm.DB, id string) (*models.QRCode, error) {
	var code models.QRCode

	err := db.Transaction(func(tx *gorm.DB) error {
		now := time.Now()
		result := tx.Model(&models.QRCode{}).
			Where("id = ?", id).
			Updates(map[string]any{
				"scan_count":   gorm.Expr("scan_count + ?", 1),
				"last_scanned": now,
				"updated_at":   now,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return tx.Where("id = ?", id).First(&code).Error
	})
	if err != nil {
		return nil, translate(err, resourceQRCode)
	}
	return &code, nil
}

// deactivateOtherCodes switches every active code of itemID except exceptID to inactive and
// returns their qr_ids. The UPDATE repeats the status condition so rows changed concurrently are
// left alone.
func deactivateOtherCodes(tx *gorm.DB, itemID, exceptID string) ([]string, error) {
	deactivated := []string{}

	scope := func() *gorm.DB {
		q := tx.Model(&models.QRCode{}).Where("item_id = ? AND status = ?", itemID, models.QRStatusActive)
		if exceptID != "" {
			q = q.Where("id <> ?", exceptID)
		}
		return q
	}

	var active []models.QRCode
	if err := scope().Select("id", "qr_id").Find(&active).Error; err != nil {
		return nil, err
	}
	if len(active) == 0 {
		return deactivated, nil
	}

	ids := make([]string, len(active))
	for i, code := range active {
		ids[i] = code.ID
		deactivated = append(deactivated, code.QRID)
	}
	if err := scope().
		Where("id IN ?", ids).
		Updates(map[string]any{"status": models.QRStatusInactive, "updated_at": time.Now()}).Error; err != nil {
		return nil, err
	}
	return deactivated, nil
}

// UpdateQRStatus moves a code between active and inactive. The previous status is read before
// the update, and the UPDATE only applies while the row still has it; setting the current
// status again is a conflict. Activating a code deactivates the item's other active codes.
func UpdateQRStatus(db *gorm.DB, qrID, status string) (*StatusChange, error) {
	if status != models.QRStatusActive && status != models.QRStatusInactive {
		return nil, types.NewValidationError("status must be one of: %s, %s", models.QRStatusActive, models.QRStatusInactive)
	}

	var change StatusChange

	err := db.Transaction(func(tx *gorm.DB) error {
		var code models.QRCode
		if err := quiet(tx).Where("qr_id = ?", qrID).First(&code).Error; err != nil {
			return err
		}

		if code.Status == status {
			return types.NewConflictError("QR code is already " + status)
		}

		now := time.Now()
		result := tx.Model(&models.QRCode{}).
			Where("id = ? AND status = ?", code.ID, code.Status).
			Updates(map[string]any{"status": status, "updated_at": now})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return types.NewConflictError("QR code is already " + status)
		}

		change = StatusChange{
			QRID:             code.QRID,
			PreviousStatus:   code.Status,
			Status:           status,
			UpdatedAt:        now,
			DeactivatedQRIDs: []string{},
		}

		if status == models.QRStatusActive {
			deactivated, err := deactivateOtherCodes(tx, code.ItemID, code.ID)
			if err != nil {
				return err
			}
			change.DeactivatedQRIDs = deactivated
		}
		return nil
	})
	if err != nil {
		return nil, translate(err, resourceQRCode)
	}
	return &change, nil
}

// DeleteQRMapping hard-deletes a QR code and returns what was removed
func DeleteQRMapping(db *gorm.DB, qrID string) (*QRDeleteReceipt, error) {
	var receipt QRDeleteReceipt

	err := db.Transaction(func(tx *gorm.DB) error {
		var code models.QRCode
		if err := quiet(tx).Where("qr_id = ?", qrID).First(&code).Error; err != nil {
			return err
		}

		receipt = QRDeleteReceipt{
			ID:        code.ID,
			QRID:      code.QRID,
			ItemID:    code.ItemID,
			ScanCount: code.ScanCount,
		}
		return tx.Delete(&code).Error
	})
	if err != nil {
		return nil, translate(err, resourceQRCode)
	}
	return &receipt, nil
}

// scopeQRCodes applies filter with explicit joins for property and owner scoping
func scopeQRCodes(db *gorm.DB, filter QRFilter) *gorm.DB {
	query := db.Model(&models.QRCode{})

	if filter.PropertyID != "" || filter.OwnerID != "" {
		query = query.Joins("JOIN items ON items.id = qr_codes.item_id")
	}
	if filter.OwnerID != "" {
		query = query.Joins("JOIN properties ON properties.id = items.property_id").
			Where("properties.user_id = ?", filter.OwnerID)
	}
	if filter.PropertyID != "" {
		query = query.Where("items.property_id = ?", filter.PropertyID)
	}
	if filter.ItemID != "" {
		query = query.Where("qr_codes.item_id = ?", filter.ItemID)
	}
	return query
}

// ListQRCodes returns the codes matching filter, newest first
func ListQRCodes(db *gorm.DB, filter QRFilter) ([]models.QRCode, error) {
	codes := []models.QRCode{}
	if err := scopeQRCodes(db, filter).
		Select("qr_codes.*").
		Order("qr_codes.created_at DESC").
		Find(&codes).Error; err != nil {
		return nil, translate(err, resourceQRCode)
	}
	return codes, nil
}

// GetQRStatistics aggregates counts and scans over the codes matching filter
func GetQRStatistics(db *gorm.DB, filter QRFilter) (*QRStatistics, error) {
	var codes []models.QRCode
	if err := scopeQRCodes(db.Clauses(hints.CommentBefore("select", "qrguide:statistics")), filter).
		Select("qr_codes.id, qr_codes.qr_id, qr_codes.item_id, qr_codes.status, qr_codes.scan_count").
		Find(&codes).Error; err != nil {
		return nil, translate(err, resourceQRCode)
	}

	stats := &QRStatistics{Total: len(codes)}
	if len(codes) == 0 {
		return stats, nil
	}

	for _, code := range codes {
		if code.IsActive() {
			stats.Active++
		} else {
			stats.Inactive++
		}
		stats.TotalScans += code.ScanCount
	}
	stats.AverageScans = float64(stats.TotalScans) / float64(len(codes))

	slices.SortStableFunc(codes, func(a, b models.QRCode) int {
		switch {
		case a.ScanCount > b.ScanCount:
			return -1
		case a.ScanCount < b.ScanCount:
			return 1
		}
		return strings.Compare(a.QRID, b.QRID)
	})

	most, least := codes[0], codes[len(codes)-1]
	stats.MostScanned = &QRScanSummary{QRID: most.QRID, ItemID: most.ItemID, ScanCount: most.ScanCount}
	stats.LeastScanned = &QRScanSummary{QRID: least.QRID, ItemID: least.ItemID, ScanCount: least.ScanCount}
	return stats, nil
}
