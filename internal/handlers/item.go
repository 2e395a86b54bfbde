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

package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/qrguide/internal/middleware"
	"github.com/localnerve/qrguide/internal/services"
	"github.com/localnerve/qrguide/internal/utils"
	"gorm.io/gorm"
)

// ItemHandler handles item routes
type ItemHandler struct {
	DB *gorm.DB
}

// LocationInput is the body of a location update. An empty location clears it.
type LocationInput struct {
	Location *string `json:"location"`
}

func (h *ItemHandler) db(c *fiber.Ctx) *gorm.DB {
	return h.DB.WithContext(c.UserContext())
}

// CreateItem handles POST /api/items
// @Summary Create an item
// @Description Create an item in a property owned by the calling user
// @Tags Items
// @Accept json
// @Produce json
// @Param item body services.ItemInput true "Item fields, property_id required"
// @Success 201 {object} utils.SuccessResponseStruct{data=models.Item}
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security DemoToken
// @Router /items [post]
func (h *ItemHandler) CreateItem(c *fiber.Ctx) error {
	var input services.ItemInput
	if err := parseBody(c, &input); err != nil {
		return utils.Error(c, err)
	}

	var propertyID string
	if input.PropertyID != nil {
		propertyID = *input.PropertyID
	}
	propertyID, err := requireParam(propertyID, "property_id")
	if err != nil {
		return utils.Error(c, err)
	}

	db := h.db(c)
	if _, err := authorizeProperty(db, propertyID, middleware.CurrentUserID(c)); err != nil {
		return utils.Error(c, err)
	}

	item, err := services.CreateItem(db, propertyID, input)
	if err != nil {
		return utils.Error(c, err)
	}
	return utils.Success(c, fiber.StatusCreated, "Item created successfully", item)
}

// ListItems handles GET /api/items?propertyId=
// @Summary List items
// @Description List a property's items, newest first
// @Tags Items
// @Produce json
// @Param propertyId query string true "Property ID"
// @Success 200 {object} utils.SuccessResponseStruct{data=[]services.ItemListEntry}
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security DemoToken
// @Router /items [get]
func (h *ItemHandler) ListItems(c *fiber.Ctx) error {
	propertyID, err := requireParam(c.Query("propertyId"), "propertyId")
	if err != nil {
		return utils.Error(c, err)
	}

	db := h.db(c)
	if _, err := authorizeProperty(db, propertyID, middleware.CurrentUserID(c)); err != nil {
		return utils.Error(c, err)
	}

	items, err := services.ListItems(db, propertyID)
	if err != nil {
		return utils.Error(c, err)
	}
	return utils.Success(c, fiber.StatusOK, "", items)
}

// GetItem handles GET /api/items/:id
// @Summary Get an item
// @Description Get an item with its property and QR codes
// @Tags Items
// @Produce json
// @Param id path string true "Item ID"
// @Success 200 {object} utils.SuccessResponseStruct{data=services.ItemDetail}
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security DemoToken
// @Router /items/{id} [get]
func (h *ItemHandler) GetItem(c *fiber.Ctx) error {
	db := h.db(c)
	item, err := authorizeItem(db, c.Params("id"), middleware.CurrentUserID(c))
	if err != nil {
		return utils.Error(c, err)
	}

	detail, err := services.GetItem(db, item.ID)
	if err != nil {
		return utils.Error(c, err)
	}
	return utils.Success(c, fiber.StatusOK, "", detail)
}

// UpdateItem handles PUT /api/items/:id
// @Summary Update an item
// @Description Update name, description, location, media_url, media_type or metadata
// @Tags Items
// @Accept json
// @Produce json
// @Param id path string true "Item ID"
// @Param item body services.ItemInput true "Fields to change"
// @Success 200 {object} utils.SuccessResponseStruct{data=models.Item}
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security DemoToken
// @Router /items/{id} [put]
func (h *ItemHandler) UpdateItem(c *fiber.Ctx) error {
	db := h.db(c)
	item, err := authorizeItem(db, c.Params("id"), middleware.CurrentUserID(c))
	if err != nil {
		return utils.Error(c, err)
	}

	var input services.ItemInput
	if err := parseBody(c, &input); err != nil {
		return utils.Error(c, err)
	}

	updated, err := services.UpdateItem(db, item.ID, input)
	if err != nil {
		return utils.Error(c, err)
	}
	return utils.Success(c, fiber.StatusOK, "Item updated successfully", updated)
}

// UpdateItemLocation handles PUT /api/items/:id/location
// @Summary Move an item
// @Description Change only the item's location; the previous value is returned
// @Tags Items
// @Accept json
// @Produce json
// @Param id path string true "Item ID"
// @Param location body LocationInput true "New location"
// @Success 200 {object} utils.SuccessResponseStruct{data=services.LocationChange}
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security DemoToken
// @Router /items/{id}/location [put]
func (h *ItemHandler) UpdateItemLocation(c *fiber.Ctx) error {
	db := h.db(c)
	item, err := authorizeItem(db, c.Params("id"), middleware.CurrentUserID(c))
	if err != nil {
		return utils.Error(c, err)
	}

	var input LocationInput
	if err := parseBody(c, &input); err != nil {
		return utils.Error(c, err)
	}

	location := input.Location
	if location != nil && strings.TrimSpace(*location) == "" {
		location = nil
	}

	change, err := services.UpdateItemLocation(db, item.ID, location)
	if err != nil {
		return utils.Error(c, err)
	}
	return utils.Success(c, fiber.StatusOK, "Item location updated successfully", change)
}

// DeleteItem handles DELETE /api/items/:id
// @Summary Delete an item
// @Description Delete an item; its QR codes are removed with it
// @Tags Items
// @Produce json
// @Param id path string true "Item ID"
// @Success 200 {object} utils.SuccessResponseStruct{data=services.ItemDeleteReceipt}
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security DemoToken
// @Router /items/{id} [delete]
func (h *ItemHandler) DeleteItem(c *fiber.Ctx) error {
	db := h.db(c)
	item, err := authorizeItem(db, c.Params("id"), middleware.CurrentUserID(c))
	if err != nil {
		return utils.Error(c, err)
	}

	receipt, err := services.DeleteItem(db, item.ID)
	if err != nil {
		return utils.Error(c, err)
	}
	return utils.Success(c, fiber.StatusOK, "Item deleted successfully", receipt)
}
