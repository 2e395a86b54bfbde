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

package handlers

import (
	"fmt"
	"math"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/qrguide/internal/logger"
	"github.com/localnerve/qrguide/internal/metrics"
	"github.com/localnerve/qrguide/internal/middleware"
	"github.com/localnerve/qrguide/internal/models"
	"github.com/localnerve/qrguide/internal/qr"
	"github.com/localnerve/qrguide/internal/services"
	"github.com/localnerve/qrguide/internal/types"
	"github.com/localnerve/qrguide/internal/utils"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DefaultBatchLimit caps batch generation when the handler has no limit configured
const DefaultBatchLimit = 10

// QRCodeHandler handles QR code routes
type QRCodeHandler struct {
	DB         *gorm.DB
	Generator  *qr.Generator
	BatchLimit int
}

// CreateQRInput is the body of a single generation
type CreateQRInput struct {
	ItemID  string     `json:"itemId"`
	Options qr.Options `json:"options"`
}

// BatchQRInput is the body of a batch generation
type BatchQRInput struct {
	ItemIDs types.FlexList[string] `json:"itemIds" swaggertype:"array,string"`
	Options qr.Options             `json:"options"`
}

// StatusInput is the body of a status change
type StatusInput struct {
	Status string `json:"status"`
}

// GeneratedQRCode is a stored QR code with its rendered image
type GeneratedQRCode struct {
	services.QRMapping
	QRImage     string `json:"qr_image"`
	FileName    string `json:"filename"`
	DownloadURL string `json:"download_url"`
}

// QRCodeView is a stored QR code with its item, property and rendered image
type QRCodeView struct {
	*models.QRCode
	QRImage string `json:"qr_image"`
}

// BatchResult is the outcome for one item of a batch
type BatchResult struct {
	ItemID     string `json:"item_id"`
	Success    bool   `json:"success"`
	QRID       string `json:"qr_id,omitempty"`
	ContentURL string `json:"content_url,omitempty"`
	QRImage    string `json:"qr_image,omitempty"`
	FileName   string `json:"filename,omitempty"`
	Error      string `json:"error,omitempty"`
	Code       string `json:"code,omitempty"`
}

// BatchSummary aggregates a batch
type BatchSummary struct {
	Total       int     `json:"total"`
	Successful  int     `json:"successful"`
	Failed      int     `json:"failed"`
	SuccessRate float64 `json:"success_rate"`
}

// BatchResponse is the data of a batch generation
type BatchResponse struct {
	Results []BatchResult `json:"results"`
	Summary BatchSummary  `json:"summary"`
}

func (h *QRCodeHandler) db(c *fiber.Ctx) *gorm.DB {
	return h.DB.WithContext(c.UserContext())
}

func (h *QRCodeHandler) batchLimit() int {
	if h.BatchLimit > 0 {
		return h.BatchLimit
	}
	return DefaultBatchLimit
}

// generate renders a new code for an authorized item and stores the mapping
func (h *QRCodeHandler) generate(db *gorm.DB, item *models.Item, opts qr.Options) (*GeneratedQRCode, error) {
	code, err := h.Generator.CreateQRCode(item.ID, opts)
	if err != nil {
		return nil, err
	}

	mapping, err := services.CreateQRMapping(db, item.ID, code.QRID, code.ContentURL)
	if err != nil {
		return nil, err
	}

	return &GeneratedQRCode{
		QRMapping:   *mapping,
		QRImage:     code.DataURL,
		FileName:    qr.GenerateQRFileName(item.Name, code.QRID),
		DownloadURL: "/api/qrcodes/" + code.QRID + "/download",
	}, nil
}

// filter builds the listing scope from the query, checking ownership of what it names
func (h *QRCodeHandler) filter(c *fiber.Ctx, db *gorm.DB) (services.QRFilter, error) {
	userID := middleware.CurrentUserID(c)
	filter := services.QRFilter{OwnerID: userID}

	if itemID := strings.TrimSpace(c.Query("itemId")); itemID != "" {
		if _, err := authorizeItem(db, itemID, userID); err != nil {
			return filter, err
		}
		filter.ItemID = itemID
	}
	if propertyID := strings.TrimSpace(c.Query("propertyId")); propertyID != "" {
		if _, err := authorizeProperty(db, propertyID, userID); err != nil {
			return filter, err
		}
		filter.PropertyID = propertyID
	}
	return filter, nil
}

// CreateQRCode handles POST /api/qrcodes
// @Summary Generate a QR code
// @Description Generate an active QR code for an item. Earlier active codes of the item are deactivated.
// @Tags QRCodes
// @Accept json
// @Produce json
// @Param request body CreateQRInput true "Item and rendering options"
// @Success 201 {object} utils.SuccessResponseStruct{data=GeneratedQRCode}
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security DemoToken
// @Router /qrcodes [post]
func (h *QRCodeHandler) CreateQRCode(c *fiber.Ctx) error {
	var input CreateQRInput
	if err := parseBody(c, &input); err != nil {
		return utils.Error(c, err)
	}
	itemID, err := requireParam(input.ItemID, "itemId")
	if err != nil {
		return utils.Error(c, err)
	}

	db := h.db(c)
	item, err := authorizeItem(db, itemID, middleware.CurrentUserID(c))
	if err != nil {
		return utils.Error(c, err)
	}

	generated, err := h.generate(db, item, input.Options)
	if err != nil {
		return utils.Error(c, err)
	}
	metrics.QRCodesGenerated.WithLabelValues("single").Inc()

	logger.FromCtx(c).Info("QR code generated",
		zap.String("item_id", item.ID),
		zap.String("qr_id", generated.QRID),
		zap.Strings("deactivated", generated.DeactivatedQRIDs))

	return utils.Success(c, fiber.StatusCreated, "QR code generated successfully", generated)
}

// GetQRCode handles GET /api/qrcodes/:qrId
// @Summary Get a QR code
// @Description Get a QR code with its item, property and image. Does not count as a scan.
// @Tags QRCodes
// @Produce json
// @Param qrId path string true "QR ID"
// @Success 200 {object} utils.SuccessResponseStruct{data=QRCodeView}
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security DemoToken
// @Router /qrcodes/{qrId} [get]
func (h *QRCodeHandler) GetQRCode(c *fiber.Ctx) error {
	code, err := authorizeQRCode(h.db(c), c.Params("qrId"), middleware.CurrentUserID(c))
	if err != nil {
		return utils.Error(c, err)
	}

	rendered, err := h.Generator.Render(code.QRID, qr.Options{})
	if err != nil {
		return utils.Error(c, err)
	}
	return utils.Success(c, fiber.StatusOK, "", QRCodeView{QRCode: code, QRImage: rendered.DataURL})
}

// ListQRCodes handles GET /api/qrcodes?itemId=|propertyId=
// @Summary List QR codes
// @Description List the calling user's QR codes, optionally scoped to an item or property
// @Tags QRCodes
// @Produce json
// @Param itemId query string false "Item ID"
// @Param propertyId query string false "Property ID"
// @Success 200 {object} utils.SuccessResponseStruct{data=[]models.QRCode}
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security DemoToken
// @Router /qrcodes [get]
func (h *QRCodeHandler) ListQRCodes(c *fiber.Ctx) error {
	db := h.db(c)
	filter, err := h.filter(c, db)
	if err != nil {
		return utils.Error(c, err)
	}

	codes, err := services.ListQRCodes(db, filter)
	if err != nil {
		return utils.Error(c, err)
	}
	return utils.Success(c, fiber.StatusOK, "", codes)
}

// GetQRStatistics handles GET /api/qrcodes/stats?itemId=|propertyId=
// @Summary QR code statistics
// @Description Counts and scan totals for the calling user's QR codes, optionally scoped
// @Tags QRCodes
// @Produce json
// @Param itemId query string false "Item ID"
// @Param propertyId query string false "Property ID"
// @Success 200 {object} utils.SuccessResponseStruct{data=services.QRStatistics}
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security DemoToken
// @Router /qrcodes/stats [get]
func (h *QRCodeHandler) GetQRStatistics(c *fiber.Ctx) error {
	db := h.db(c)
	filter, err := h.filter(c, db)
	if err != nil {
		return utils.Error(c, err)
	}

	stats, err := services.GetQRStatistics(db, filter)
	if err != nil {
		return utils.Error(c, err)
	}
	return utils.Success(c, fiber.StatusOK, "", stats)
}

// UpdateQRStatus handles PUT /api/qrcodes/:qrId/status
// @Summary Activate or deactivate a QR code
// @Tags QRCodes
// @Accept json
// @Produce json
// @Param qrId path string true "QR ID"
// @Param status body StatusInput true "active or inactive"
// @Success 200 {object} utils.SuccessResponseStruct{data=services.StatusChange}
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 409 {object} utils.ErrorResponseStruct
// @Security DemoToken
// @Router /qrcodes/{qrId}/status [put]
func (h *QRCodeHandler) UpdateQRStatus(c *fiber.Ctx) error {
	var input StatusInput
	if err := parseBody(c, &input); err != nil {
		return utils.Error(c, err)
	}

	db := h.db(c)
	code, err := authorizeQRCode(db, c.Params("qrId"), middleware.CurrentUserID(c))
	if err != nil {
		return utils.Error(c, err)
	}

	change, err := services.UpdateQRStatus(db, code.QRID, strings.ToLower(strings.TrimSpace(input.Status)))
	if err != nil {
		return utils.Error(c, err)
	}
	return utils.Success(c, fiber.StatusOK, "QR code status updated successfully", change)
}

// DownloadQRCode handles GET /api/qrcodes/:qrId/download?size=&format=
// @Summary Download a QR code image
// @Tags QRCodes
// @Produce png
// @Param qrId path string true "QR ID"
// @Param size query int false "Image size in pixels"
// @Param format query string false "Image format, png only"
// @Success 200 {file} binary
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security DemoToken
// @Router /qrcodes/{qrId}/download [get]
func (h *QRCodeHandler) DownloadQRCode(c *fiber.Ctx) error {
	format := strings.ToLower(c.Query("format", "png"))
	if format != "png" {
		return utils.Error(c, types.NewValidationError("format must be png"))
	}

	size := 0
	if raw := c.Query("size"); raw != "" {
		size = c.QueryInt("size", -1)
		if size <= 0 {
			return utils.Error(c, types.NewValidationError("size must be a positive integer"))
		}
	}

	code, err := authorizeQRCode(h.db(c), c.Params("qrId"), middleware.CurrentUserID(c))
	if err != nil {
		return utils.Error(c, err)
	}

	rendered, err := h.Generator.Render(code.QRID, qr.Options{Size: types.FlexInt(size)})
	if err != nil {
		return utils.Error(c, err)
	}

	fileName := qr.GenerateQRFileName(code.Item.Name, code.QRID)
	c.Set(fiber.HeaderContentType, "image/png")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, fileName))
	return c.Status(fiber.StatusOK).Send(rendered.PNG)
}

// DeleteQRCode handles DELETE /api/qrcodes/:qrId
// @Summary Delete a QR code
// @Tags QRCodes
// @Produce json
// @Param qrId path string true "QR ID"
// @Success 200 {object} utils.SuccessResponseStruct{data=services.QRDeleteReceipt}
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security DemoToken
// @Router /qrcodes/{qrId} [delete]
func (h *QRCodeHandler) DeleteQRCode(c *fiber.Ctx) error {
	db := h.db(c)
	code, err := authorizeQRCode(db, c.Params("qrId"), middleware.CurrentUserID(c))
	if err != nil {
		return utils.Error(c, err)
	}

	receipt, err := services.DeleteQRMapping(db, code.QRID)
	if err != nil {
		return utils.Error(c, err)
	}
	return utils.Success(c, fiber.StatusOK, "QR code deleted successfully", receipt)
}

// BatchCreateQRCodes handles POST /api/qrcodes/batch
// @Summary Generate QR codes for several items
// @Description Each item is processed independently; failures are reported per item.
// @Tags QRCodes
// @Accept json
// @Produce json
// @Param request body BatchQRInput true "Item IDs and rendering options"
// @Success 200 {object} utils.SuccessResponseStruct{data=BatchResponse}
// @Failure 400 {object} utils.ErrorResponseStruct
// @Security DemoToken
// @Router /qrcodes/batch [post]
func (h *QRCodeHandler) BatchCreateQRCodes(c *fiber.Ctx) error {
	var input BatchQRInput
	if err := parseBody(c, &input); err != nil {
		return utils.Error(c, err)
	}

	itemIDs := input.ItemIDs.Slice()
	if len(itemIDs) == 0 {
		return utils.Error(c, types.NewValidationError("itemIds must be a non-empty array"))
	}
	if limit := h.batchLimit(); len(itemIDs) > limit {
		return utils.Error(c, types.NewValidationError("Maximum %d items allowed", limit))
	}

	db := h.db(c)
	userID := middleware.CurrentUserID(c)
	log := logger.FromCtx(c)

	response := BatchResponse{Results: make([]BatchResult, 0, len(itemIDs))}
	for _, itemID := range itemIDs {
		result := BatchResult{ItemID: itemID}

		generated, err := h.batchOne(db, itemID, userID, input.Options)
		if err != nil {
			appErr := types.AsAppError(err)
			result.Error = utils.PublicMessage(c, appErr)
			result.Code = appErr.Type
			log.Warn("Batch QR generation failed for item", zap.String("item_id", itemID), zap.Error(err))
		} else {
			result.Success = true
			result.QRID = generated.QRID
			result.ContentURL = generated.ContentURL
			result.QRImage = generated.QRImage
			result.FileName = generated.FileName
			response.Summary.Successful++
		}
		response.Results = append(response.Results, result)
	}

	response.Summary.Total = len(itemIDs)
	response.Summary.Failed = response.Summary.Total - response.Summary.Successful
	response.Summary.SuccessRate = math.Round(float64(response.Summary.Successful)/float64(response.Summary.Total)*10000) / 100
	metrics.QRCodesGenerated.WithLabelValues("batch").Add(float64(response.Summary.Successful))

	return utils.Success(c, fiber.StatusOK, "Batch QR code generation completed", response)
}

func (h *QRCodeHandler) batchOne(db *gorm.DB, itemID, userID string, opts qr.Options) (*GeneratedQRCode, error) {
	itemID, err := requireParam(itemID, "itemId")
	if err != nil {
		return nil, err
	}
	item, err := authorizeItem(db, itemID, userID)
	if err != nil {
		return nil, err
	}
	return h.generate(db, item, opts)
}
