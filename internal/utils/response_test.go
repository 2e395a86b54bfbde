// response_test.go
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

package utils_test

import (
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/qrguide/internal/types"
	"github.com/localnerve/qrguide/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, app *fiber.App, path string) (int, utils.Envelope) {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest("GET", path, nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	var env utils.Envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return resp.StatusCode, env
}

func TestEnvelope(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: utils.ErrorHandler()})
	app.Get("/ok", func(c *fiber.Ctx) error {
		return utils.Success(c, fiber.StatusCreated, "created", fiber.Map{"id": "1"})
	})
	app.Get("/forbidden", func(c *fiber.Ctx) error {
		return utils.Error(c, types.NewForbiddenError("not yours"))
	})
	app.Get("/db", func(c *fiber.Ctx) error {
		return utils.Error(c, types.NewDatabaseError(errors.New("connection reset")))
	})
	app.Get("/plain", func(c *fiber.Ctx) error {
		return errors.New("boom")
	})
	app.Get("/fiber", func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusBadRequest, "bad body")
	})

	status, env := decode(t, app, "/ok")
	assert.Equal(t, fiber.StatusCreated, status)
	assert.True(t, env.Success)
	assert.Equal(t, "created", env.Message)
	assert.Equal(t, map[string]any{"id": "1"}, env.Data)

	status, env = decode(t, app, "/forbidden")
	assert.Equal(t, fiber.StatusForbidden, status)
	assert.False(t, env.Success)
	assert.Equal(t, "not yours", env.Error)
	assert.Equal(t, types.TypeForbidden, env.Code)

	status, env = decode(t, app, "/db")
	assert.Equal(t, fiber.StatusInternalServerError, status)
	assert.Equal(t, "connection reset", env.Error)
	assert.Equal(t, types.TypeDatabase, env.Code)

	status, env = decode(t, app, "/plain")
	assert.Equal(t, fiber.StatusInternalServerError, status)
	assert.Equal(t, types.TypeInternal, env.Code)

	status, env = decode(t, app, "/fiber")
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, types.TypeValidation, env.Code)

	status, env = decode(t, app, "/missing")
	assert.Equal(t, fiber.StatusNotFound, status)
	assert.Equal(t, types.TypeNotFound, env.Code)
}

func errorApp(hide bool) *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: utils.ErrorHandler()})
	app.Use(utils.HideInternalErrors(hide))
	app.Get("/db", func(c *fiber.Ctx) error {
		return utils.Error(c, types.NewDatabaseError(errors.New("password authentication failed")))
	})
	app.Get("/notfound", func(c *fiber.Ctx) error {
		return utils.Error(c, types.NewNotFoundError("Item"))
	})
	app.Get("/unexpected", func(c *fiber.Ctx) error {
		return errors.New("disk full")
	})
	return app
}

func TestHideInternalErrors(t *testing.T) {
	// both apps live in one process; the setting must not leak between them
	production, development := errorApp(true), errorApp(false)

	t.Run("production", func(t *testing.T) {
		t.Parallel()

		status, env := decode(t, production, "/db")
		assert.Equal(t, fiber.StatusInternalServerError, status)
		assert.Equal(t, "Internal server error", env.Error)

		_, env = decode(t, production, "/unexpected")
		assert.Equal(t, "Internal server error", env.Error)

		// client errors keep their message
		_, env = decode(t, production, "/notfound")
		assert.Equal(t, "Item not found", env.Error)
	})

	t.Run("development", func(t *testing.T) {
		t.Parallel()

		status, env := decode(t, development, "/db")
		assert.Equal(t, fiber.StatusInternalServerError, status)
		assert.Contains(t, env.Error, "password authentication failed")

		_, env = decode(t, development, "/unexpected")
		assert.Contains(t, env.Error, "disk full")
	})
}
