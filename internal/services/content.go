// content.go
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
	"fmt"
	"strings"
	"time"

	"github.com/localnerve/qrguide/internal/metrics"
	"github.com/localnerve/qrguide/internal/models"
	"github.com/localnerve/qrguide/internal/types"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const siteName = "QR Guide"

// ContentItem is the public view of an item
type ContentItem struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Description *string           `json:"description"`
	Location    *string           `json:"location"`
	MediaURL    *string           `json:"media_url"`
	MediaType   string            `json:"media_type"`
	Metadata    datatypes.JSONMap `json:"metadata"`
}

// ContentProperty is the public view of a property
type ContentProperty struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Address      *string `json:"address"`
	PropertyType string  `json:"property_type"`
}

// SEO carries page metadata for the content page
type SEO struct {
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	Keywords     []string `json:"keywords"`
	CanonicalURL string   `json:"canonical_url"`
}

// Content is the payload behind a scanned QR code
type Content struct {
	QRID        string          `json:"qr_id"`
	Item        ContentItem     `json:"item"`
	Property    ContentProperty `json:"property"`
	ScanCount   int64           `json:"scan_count"`
	LastScanned *time.Time      `json:"last_scanned"`
	SEO         SEO             `json:"seo"`
}

// ContentMeta is the link-preview subset of Content
type ContentMeta struct {
	QRID         string `json:"qr_id"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	ImageURL     string `json:"image_url,omitempty"`
	MediaType    string `json:"media_type"`
	CanonicalURL string `json:"canonical_url"`
	SiteName     string `json:"site_name"`
	Active       bool   `json:"active"`
}

// ContentStats are the public counters of a QR code
type ContentStats struct {
	QRID        string     `json:"qr_id"`
	Status      string     `json:"status"`
	ScanCount   int64      `json:"scan_count"`
	LastScanned *time.Time `json:"last_scanned"`
	CreatedAt   time.Time  `json:"created_at"`
}

// ContentView is client reported analytics for one page view
type ContentView struct {
	Duration  float64 `json:"duration"`
	UserAgent string  `json:"user_agent"`
	Viewport  string  `json:"viewport"`
	Referrer  string  `json:"referrer"`
}

// GetContentByQRCode resolves a scan. Inactive codes are gone and are not counted;
// active codes are counted before the payload is built.
func GetContentByQRCode(db *gorm.DB, qrID, frontendBase string) (*Content, error) {
	code, err := GetQRMappingByQRID(db, qrID, false)
	if err != nil {
		return nil, err
	}
	if !code.IsActive() {
		return nil, types.NewGoneError("This QR code is no longer active")
	}

	counted, err := IncrementScanCount(db, code.ID)
	if err != nil {
		return nil, err
	}
	code.ScanCount = counted.ScanCount
	code.LastScanned = counted.LastScanned

	return buildContent(code, frontendBase), nil
}

// GetContentMeta returns link-preview metadata without counting a scan
func GetContentMeta(db *gorm.DB, qrID, frontendBase string) (*ContentMeta, error) {
	code, err := GetQRMappingByQRID(db, qrID, false)
	if err != nil {
		return nil, err
	}

	item, property := code.Item, code.Item.Property
	meta := &ContentMeta{
		QRID:         code.QRID,
		Title:        pageTitle(item, property),
		Description:  pageDescription(item, property),
		MediaType:    item.MediaType,
		CanonicalURL: canonicalURL(frontendBase, code.QRID),
		SiteName:     siteName,
		Active:       code.IsActive(),
	}
	if item.MediaType == models.MediaTypeImage && item.MediaURL != nil {
		meta.ImageURL = *item.MediaURL
	}
	return meta, nil
}

// GetContentStats returns the public counters without counting a scan
func GetContentStats(db *gorm.DB, qrID string) (*ContentStats, error) {
	var code models.QRCode
	if err := quiet(db).Where("qr_id = ?", qrID).First(&code).Error; err != nil {
		return nil, translate(err, resourceQRCode)
	}
	return &ContentStats{
		QRID:        code.QRID,
		Status:      code.Status,
		ScanCount:   code.ScanCount,
		LastScanned: code.LastScanned,
		CreatedAt:   code.CreatedAt,
	}, nil
}

// ValidateContentView checks the reported view before it is recorded
func ValidateContentView(view ContentView) error {
	if view.Duration < 0 {
		return types.NewValidationError("duration must not be negative")
	}
	if len(view.UserAgent) > 512 || len(view.Viewport) > 64 || len(view.Referrer) > 2048 {
		return types.NewValidationError("view fields too long")
	}
	return nil
}

// RecordContentView accepts best-effort analytics for an existing code. Views are logged and
// observed as metrics only; nothing is stored.
func RecordContentView(db *gorm.DB, log *zap.Logger, qrID string, view ContentView) error {
	if err := ValidateContentView(view); err != nil {
		return err
	}

	var count int64
	if err := db.Model(&models.QRCode{}).Where("qr_id = ?", qrID).Count(&count).Error; err != nil {
		return translate(err, resourceQRCode)
	}
	if count == 0 {
		return types.NewNotFoundError(resourceQRCode)
	}

	metrics.ContentViewDuration.Observe(view.Duration)
	log.Info("Content view",
		zap.String("qr_id", qrID),
		zap.Float64("duration", view.Duration),
		zap.String("user_agent", view.UserAgent),
		zap.String("viewport", view.Viewport),
		zap.String("referrer", view.Referrer))
	return nil
}

func buildContent(code *models.QRCode, frontendBase string) *Content {
	item, property := code.Item, code.Item.Property

	return &Content{
		QRID: code.QRID,
		Item: ContentItem{
			ID:          item.ID,
			Name:        item.Name,
			Description: item.Description,
			Location:    item.Location,
			MediaURL:    item.MediaURL,
			MediaType:   item.MediaType,
			Metadata:    item.Metadata,
		},
		Property: ContentProperty{
			ID:           property.ID,
			Name:         property.Name,
			Address:      property.Address,
			PropertyType: property.PropertyType,
		},
		ScanCount:   code.ScanCount,
		LastScanned: code.LastScanned,
		SEO: SEO{
			Title:        pageTitle(item, property),
			Description:  pageDescription(item, property),
			Keywords:     keywords(item, property),
			CanonicalURL: canonicalURL(frontendBase, code.QRID),
		},
	}
}

func pageTitle(item *models.Item, property *models.Property) string {
	return fmt.Sprintf("%s - %s | %s", item.Name, property.Name, siteName)
}

func pageDescription(item *models.Item, property *models.Property) string {
	if item.Description != nil && *item.Description != "" {
		desc := []rune(*item.Description)
		if len(desc) > 160 {
			return strings.TrimSpace(string(desc[:157])) + "..."
		}
		return string(desc)
	}
	return fmt.Sprintf("Instructions for the %s at %s", item.Name, property.Name)
}

func keywords(item *models.Item, property *models.Property) []string {
	words := []string{item.Name, property.Name, property.PropertyType, "instructions", "guide"}
	if item.Location != nil && *item.Location != "" {
		words = append(words, *item.Location)
	}
	if category, ok := item.Metadata["category"].(string); ok && category != "" {
		words = append(words, category)
	}
	return words
}

func canonicalURL(frontendBase, qrID string) string {
	return strings.TrimRight(frontendBase, "/") + "/content/" + qrID
}
