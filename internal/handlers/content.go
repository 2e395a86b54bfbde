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

package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/qrguide/internal/logger"
	"github.com/localnerve/qrguide/internal/metrics"
	"github.com/localnerve/qrguide/internal/services"
	"github.com/localnerve/qrguide/internal/types"
	"github.com/localnerve/qrguide/internal/utils"
	"gorm.io/gorm"
)

// ContentHandler serves the public, unauthenticated content routes
type ContentHandler struct {
	DB           *gorm.DB
	FrontendBase string
}

func (h *ContentHandler) db(c *fiber.Ctx) *gorm.DB {
	return h.DB.WithContext(c.UserContext())
}

// GetContent handles GET /api/content/:qrCode
// @Summary Resolve a scanned QR code
// @Description Returns the item and property behind an active QR code and counts the scan
// @Tags Content
// @Produce json
// @Param qrCode path string true "QR ID"
// @Success 200 {object} utils.SuccessResponseStruct{data=services.Content}
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 410 {object} utils.ErrorResponseStruct
// @Router /content/{qrCode} [get]
func (h *ContentHandler) GetContent(c *fiber.Ctx) error {
	content, err := services.GetContentByQRCode(h.db(c), c.Params("qrCode"), h.FrontendBase)
	switch {
	case err == nil:
		metrics.RecordScan(metrics.ScanServed)
	case errors.Is(err, types.ErrGone):
		metrics.RecordScan(metrics.ScanInactive)
	case errors.Is(err, types.ErrNotFound):
		metrics.RecordScan(metrics.ScanNotFound)
	}
	if err != nil {
		return utils.Error(c, err)
	}
	return utils.Success(c, fiber.StatusOK, "", content)
}

// GetContentMeta handles GET /api/content/:qrCode/meta
// @Summary Link preview metadata
// @Description Title, description and canonical URL for a QR code; does not count a scan
// @Tags Content
// @Produce json
// @Param qrCode path string true "QR ID"
// @Success 200 {object} utils.SuccessResponseStruct{data=services.ContentMeta}
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /content/{qrCode}/meta [get]
func (h *ContentHandler) GetContentMeta(c *fiber.Ctx) error {
	meta, err := services.GetContentMeta(h.db(c), c.Params("qrCode"), h.FrontendBase)
	if err != nil {
		return utils.Error(c, err)
	}
	return utils.Success(c, fiber.StatusOK, "", meta)
}

// RecordContentView handles POST /api/content/:qrCode/view
// @Summary Report a content page view
// @Description Best-effort client analytics; logged and counted, not stored
// @Tags Content
// @Accept json
// @Produce json
// @Param qrCode path string true "QR ID"
// @Param view body services.ContentView true "View details"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /content/{qrCode}/view [post]
func (h *ContentHandler) RecordContentView(c *fiber.Ctx) error {
	var view services.ContentView
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&view); err != nil {
			return utils.Error(c, types.NewValidationError("Invalid request body: %v", err))
		}
	}
	if view.UserAgent == "" {
		view.UserAgent = c.Get(fiber.HeaderUserAgent)
	}

	if err := services.RecordContentView(h.db(c), logger.FromCtx(c), c.Params("qrCode"), view); err != nil {
		return utils.Error(c, err)
	}
	return utils.Success(c, fiber.StatusOK, "View recorded", nil)
}

// GetContentStats handles GET /api/content/:qrCode/stats
// @Summary Public QR code counters
// @Tags Content
// @Produce json
// @Param qrCode path string true "QR ID"
// @Success 200 {object} utils.SuccessResponseStruct{data=services.ContentStats}
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /content/{qrCode}/stats [get]
func (h *ContentHandler) GetContentStats(c *fiber.Ctx) error {
	stats, err := services.GetContentStats(h.db(c), c.Params("qrCode"))
	if err != nil {
		return utils.Error(c, err)
	}
	return utils.Success(c, fiber.StatusOK, "", stats)
}
