// common.go
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
	"github.com/localnerve/qrguide/internal/models"
	"github.com/localnerve/qrguide/internal/services"
	"github.com/localnerve/qrguide/internal/types"
	"gorm.io/gorm"
)

// Ownership checks run before any mutation: a missing resource is 404, a resource owned by
// someone else is 403.

// authorizeProperty loads a property and checks userID owns it
func authorizeProperty(db *gorm.DB, propertyID, userID string) (*models.Property, error) {
	property, err := services.FindProperty(db, propertyID)
	if err != nil {
		return nil, err
	}
	if property.UserID != userID {
		return nil, types.NewForbiddenError("You do not have access to this property")
	}
	return property, nil
}

// authorizeItem loads an item, then its property, and checks userID owns the property
func authorizeItem(db *gorm.DB, itemID, userID string) (*models.Item, error) {
	item, err := services.FindItem(db, itemID)
	if err != nil {
		return nil, err
	}
	if _, err := authorizeProperty(db, item.PropertyID, userID); err != nil {
		if appErr := types.AsAppError(err); appErr.Type == types.TypeForbidden {
			return nil, types.NewForbiddenError("You do not have access to this item")
		}
		return nil, err
	}
	return item, nil
}

// authorizeQRCode loads a QR code with its item and property and checks userID owns the property
func authorizeQRCode(db *gorm.DB, qrID, userID string) (*models.QRCode, error) {
	code, err := services.GetQRMappingByQRID(db, qrID, false)
	if err != nil {
		return nil, err
	}
	if code.Item == nil || code.Item.Property == nil || code.Item.Property.UserID != userID {
		return nil, types.NewForbiddenError("You do not have access to this QR code")
	}
	return code, nil
}

// parseBody decodes the JSON request body into out
func parseBody(c *fiber.Ctx, out any) error {
	if len(c.Body()) == 0 {
		return types.NewValidationError("Request body is required")
	}
	if err := c.BodyParser(out); err != nil {
		return types.NewValidationError("Invalid request body: %v", err)
	}
	return nil
}

// requireParam returns a trimmed path or query value, or a validation error naming it
func requireParam(value, name string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", types.NewValidationError("%s is required", name)
	}
	return value, nil
}
