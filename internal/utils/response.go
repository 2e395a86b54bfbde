// response.go
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

package utils

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/qrguide/internal/logger"
	"github.com/localnerve/qrguide/internal/types"
	"go.uber.org/zap"
)

const (
	internalMessage = "Internal server error"
	hideErrorsKey   = "hide_internal_errors"
)

// HideInternalErrors marks every request of the app so 5xx messages are replaced with a
// generic one. Register it first so the error handler sees the mark too.
func HideInternalErrors(hide bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals(hideErrorsKey, hide)
		return c.Next()
	}
}

// PublicMessage is the message of appErr as the client may see it
func PublicMessage(c *fiber.Ctx, appErr *types.AppError) string {
	if hide, _ := c.Locals(hideErrorsKey).(bool); hide && appErr.Code >= http.StatusInternalServerError {
		return internalMessage
	}
	return appErr.Message
}

// Envelope is the shape of every JSON response
type Envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Code    string `json:"code,omitempty"`
}

// Success sends a success envelope
func Success(c *fiber.Ctx, status int, message string, data any) error {
	return c.Status(status).JSON(Envelope{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// Error sends the envelope for err, choosing the status from its type
func Error(c *fiber.Ctx, err error) error {
	appErr := types.AsAppError(err)

	if appErr.Code >= http.StatusInternalServerError {
		logger.FromCtx(c).Error("Request failed", zap.String("code", appErr.Type), zap.Error(err))
	}

	return c.Status(appErr.Code).JSON(Envelope{
		Success: false,
		Error:   PublicMessage(c, appErr),
		Code:    appErr.Type,
	})
}

// ErrorHandler is the app-wide fallback for errors returned by handlers and recovered panics
func ErrorHandler() fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return Error(c, &types.AppError{
				Code:    fiberErr.Code,
				Message: fiberErr.Message,
				Type:    typeForStatus(fiberErr.Code),
			})
		}
		return Error(c, err)
	}
}

func typeForStatus(status int) string {
	switch status {
	case http.StatusBadRequest, http.StatusRequestEntityTooLarge, http.StatusUnprocessableEntity:
		return types.TypeValidation
	case http.StatusUnauthorized:
		return types.TypeAuthentication
	case http.StatusForbidden:
		return types.TypeForbidden
	case http.StatusNotFound, http.StatusMethodNotAllowed:
		return types.TypeNotFound
	case http.StatusConflict:
		return types.TypeConflict
	case http.StatusGone:
		return types.TypeGone
	}
	return types.TypeInternal
}

// ErrorResponseStruct defines the schema for error responses
type ErrorResponseStruct struct {
	Success bool   `json:"success" example:"false"`
	Error   string `json:"error" example:"Property not found"`
	Code    string `json:"code" example:"NOT_FOUND"`
}

// SuccessResponseStruct defines the schema for success responses
type SuccessResponseStruct struct {
	Success bool   `json:"success" example:"true"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}
