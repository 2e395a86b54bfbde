// auth.go
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

package middleware

import (
	"crypto/subtle"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/qrguide/internal/types"
	"github.com/localnerve/qrguide/internal/utils"
)

// DemoTokenHeader carries the demo principal's token
const DemoTokenHeader = "X-Demo-Token"

// UserIDKey is the fiber.Ctx local holding the principal
const UserIDKey = "user_id"

// DemoIdentity attaches the fixed demo principal to requests presenting its token,
// either in X-Demo-Token or as an Authorization bearer token.
func DemoIdentity(token, userID string) fiber.Handler {
	expected := []byte(token)

	return func(c *fiber.Ctx) error {
		presented := c.Get(DemoTokenHeader)
		if presented == "" {
			if auth := c.Get(fiber.HeaderAuthorization); strings.HasPrefix(auth, "Bearer ") {
				presented = strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
			}
		}

		if presented == "" {
			return utils.Error(c, types.NewAuthenticationError("Authentication required"))
		}
		if subtle.ConstantTimeCompare([]byte(presented), expected) != 1 {
			return utils.Error(c, types.NewAuthenticationError("Invalid authentication token"))
		}

		c.Locals(UserIDKey, userID)
		return c.Next()
	}
}

// CurrentUserID returns the principal set by DemoIdentity, or "" when there is none
func CurrentUserID(c *fiber.Ctx) string {
	if id, ok := c.Locals(UserIDKey).(string); ok {
		return id
	}
	return ""
}
