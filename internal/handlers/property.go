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

package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/qrguide/internal/middleware"
	"github.com/localnerve/qrguide/internal/services"
	"github.com/localnerve/qrguide/internal/utils"
	"gorm.io/gorm"
)

// PropertyHandler handles property routes
type PropertyHandler struct {
	DB *gorm.DB
}

func (h *PropertyHandler) db(c *fiber.Ctx) *gorm.DB {
	return h.DB.WithContext(c.UserContext())
}

// CreateProperty handles POST /api/properties
// @Summary Create a property
// @Description Create a property owned by the calling user
// @Tags Properties
// @Accept json
// @Produce json
// @Param property body services.PropertyInput true "Property fields"
// @Success 201 {object} utils.SuccessResponseStruct{data=models.Property}
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 401 {object} utils.ErrorResponseStruct
// @Security DemoToken
// @Router /properties [post]
func (h *PropertyHandler) CreateProperty(c *fiber.Ctx) error {
	var input services.PropertyInput
	if err := parseBody(c, &input); err != nil {
		return utils.Error(c, err)
	}

	property, err := services.CreateProperty(h.db(c), middleware.CurrentUserID(c), input)
	if err != nil {
		return utils.Error(c, err)
	}
	return utils.Success(c, fiber.StatusCreated, "Property created successfully", property)
}

// ListProperties handles GET /api/properties
// @Summary List properties
// @Description List the calling user's properties with item counts
// @Tags Properties
// @Produce json
// @Success 200 {object} utils.SuccessResponseStruct{data=[]services.PropertySummary}
// @Failure 401 {object} utils.ErrorResponseStruct
// @Security DemoToken
// @Router /properties [get]
func (h *PropertyHandler) ListProperties(c *fiber.Ctx) error {
	properties, err := services.ListProperties(h.db(c), middleware.CurrentUserID(c))
	if err != nil {
		return utils.Error(c, err)
	}
	return utils.Success(c, fiber.StatusOK, "", properties)
}

// GetProperty handles GET /api/properties/:id
// @Summary Get a property
// @Description Get a property with its items
// @Tags Properties
// @Produce json
// @Param id path string true "Property ID"
// @Success 200 {object} utils.SuccessResponseStruct{data=services.PropertyDetail}
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security DemoToken
// @Router /properties/{id} [get]
func (h *PropertyHandler) GetProperty(c *fiber.Ctx) error {
	db := h.db(c)
	if _, err := authorizeProperty(db, c.Params("id"), middleware.CurrentUserID(c)); err != nil {
		return utils.Error(c, err)
	}

	detail, err := services.GetProperty(db, c.Params("id"))
	if err != nil {
		return utils.Error(c, err)
	}
	return utils.Success(c, fiber.StatusOK, "", detail)
}

// UpdateProperty handles PUT /api/properties/:id
// @Summary Update a property
// @Description Update name, description, address, property_type or settings
// @Tags Properties
// @Accept json
// @Produce json
// @Param id path string true "Property ID"
// @Param property body services.PropertyInput true "Fields to change"
// @Success 200 {object} utils.SuccessResponseStruct{data=models.Property}
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security DemoToken
// @Router /properties/{id} [put]
func (h *PropertyHandler) UpdateProperty(c *fiber.Ctx) error {
	db := h.db(c)
	property, err := authorizeProperty(db, c.Params("id"), middleware.CurrentUserID(c))
	if err != nil {
		return utils.Error(c, err)
	}

	var input services.PropertyInput
	if err := parseBody(c, &input); err != nil {
		return utils.Error(c, err)
	}

	updated, err := services.UpdateProperty(db, property.ID, input)
	if err != nil {
		return utils.Error(c, err)
	}
	return utils.Success(c, fiber.StatusOK, "Property updated successfully", updated)
}

// DeleteProperty handles DELETE /api/properties/:id
// @Summary Delete a property
// @Description Delete a property; its items and QR codes are removed with it
// @Tags Properties
// @Produce json
// @Param id path string true "Property ID"
// @Success 200 {object} utils.SuccessResponseStruct{data=services.PropertyDeleteReceipt}
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security DemoToken
// @Router /properties/{id} [delete]
func (h *PropertyHandler) DeleteProperty(c *fiber.Ctx) error {
	db := h.db(c)
	property, err := authorizeProperty(db, c.Params("id"), middleware.CurrentUserID(c))
	if err != nil {
		return utils.Error(c, err)
	}

	receipt, err := services.DeleteProperty(db, property.ID)
	if err != nil {
		return utils.Error(c, err)
	}
	return utils.Success(c, fiber.StatusOK, "Property deleted successfully", receipt)
}
