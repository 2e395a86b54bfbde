// logger_test.go
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

package logger

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestGetBeforeInitIsNoop(t *testing.T) {
	saved := log
	log = nil
	defer func() { log = saved }()

	assert.NotPanics(t, func() { Get().Info("ignored") })
}

func TestInit(t *testing.T) {
	saved := log
	defer func() { log = saved }()

	require.NoError(t, Init(&LogConfig{Level: "debug", Environment: "production", ServiceName: "qrguide"}))
	assert.True(t, Get().Core().Enabled(zap.DebugLevel))

	require.NoError(t, Init(&LogConfig{Level: "warn", Environment: "development", ServiceName: "qrguide"}))
	assert.False(t, Get().Core().Enabled(zap.InfoLevel))
}

func TestMiddlewareSetsRequestLogger(t *testing.T) {
	app := fiber.New()
	app.Use(requestid.New(), Middleware())

	var scoped *zap.Logger
	app.Get("/", func(c *fiber.Ctx) error {
		scoped = FromCtx(c)
		return c.SendStatus(fiber.StatusNoContent)
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
	assert.NotNil(t, scoped)
	assert.NotEmpty(t, resp.Header.Get(fiber.HeaderXRequestID))
}
