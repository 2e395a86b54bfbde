// error.go
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

package types

import (
	"errors"
	"fmt"
	"net/http"
)

// Error types, also sent to clients as the envelope "code"
const (
	TypeValidation     = "VALIDATION_ERROR"
	TypeAuthentication = "AUTHENTICATION_ERROR"
	TypeForbidden      = "FORBIDDEN"
	TypeNotFound       = "NOT_FOUND"
	TypeConflict       = "CONFLICT"
	TypeGone           = "GONE"
	TypeDatabase       = "DATABASE_ERROR"
	TypeInternal       = "INTERNAL_ERROR"
)

// AppError is an error that knows the HTTP status it maps to.
type AppError struct {
	Code    int    `json:"-"`
	Message string `json:"message"`
	Type    string `json:"code"`
	Err     error  `json:"-"`
}

// Sentinels for errors.Is, matched by Type.
var (
	ErrValidation     = &AppError{Code: http.StatusBadRequest, Type: TypeValidation}
	ErrAuthentication = &AppError{Code: http.StatusUnauthorized, Type: TypeAuthentication}
	ErrForbidden      = &AppError{Code: http.StatusForbidden, Type: TypeForbidden}
	ErrNotFound       = &AppError{Code: http.StatusNotFound, Type: TypeNotFound}
	ErrConflict       = &AppError{Code: http.StatusConflict, Type: TypeConflict}
	ErrGone           = &AppError{Code: http.StatusGone, Type: TypeGone}
	ErrDatabase       = &AppError{Code: http.StatusInternalServerError, Type: TypeDatabase}
	ErrInternal       = &AppError{Code: http.StatusInternalServerError, Type: TypeInternal}
)

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%d: %s [type: %s]: %v", e.Code, e.Message, e.Type, e.Err)
	}
	return fmt.Sprintf("%d: %s [type: %s]", e.Code, e.Message, e.Type)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is reports whether target is an AppError of the same type.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return t.Type == e.Type
}

func NewValidationError(format string, args ...any) *AppError {
	return &AppError{Code: http.StatusBadRequest, Type: TypeValidation, Message: fmt.Sprintf(format, args...)}
}

func NewAuthenticationError(message string) *AppError {
	return &AppError{Code: http.StatusUnauthorized, Type: TypeAuthentication, Message: message}
}

func NewForbiddenError(message string) *AppError {
	return &AppError{Code: http.StatusForbidden, Type: TypeForbidden, Message: message}
}

// NewNotFoundError builds "<resource> not found".
func NewNotFoundError(resource string) *AppError {
	return &AppError{Code: http.StatusNotFound, Type: TypeNotFound, Message: resource + " not found"}
}

func NewConflictError(message string) *AppError {
	return &AppError{Code: http.StatusConflict, Type: TypeConflict, Message: message}
}

func NewGoneError(message string) *AppError {
	return &AppError{Code: http.StatusGone, Type: TypeGone, Message: message}
}

// NewDatabaseError wraps a store failure. The message carries the store detail;
// the response layer decides whether clients get to see it.
func NewDatabaseError(err error) *AppError {
	return &AppError{Code: http.StatusInternalServerError, Type: TypeDatabase, Message: err.Error(), Err: err}
}

func NewInternalError(err error) *AppError {
	return &AppError{Code: http.StatusInternalServerError, Type: TypeInternal, Message: err.Error(), Err: err}
}

// AsAppError converts any error into an AppError, treating unknown errors as internal.
func AsAppError(err error) *AppError {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return NewInternalError(err)
}
