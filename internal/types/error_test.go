// error_test.go
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
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppErrorIsMatchesByType(t *testing.T) {
	err := NewNotFoundError("Property")
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.False(t, errors.Is(err, ErrForbidden))
	assert.Equal(t, "Property not found", err.Message)
	assert.Equal(t, http.StatusNotFound, err.Code)

	wrapped := fmt.Errorf("loading: %w", NewForbiddenError("nope"))
	assert.True(t, errors.Is(wrapped, ErrForbidden))
}

func TestAsAppError(t *testing.T) {
	assert.Nil(t, AsAppError(nil))

	plain := AsAppError(errors.New("boom"))
	assert.Equal(t, TypeInternal, plain.Type)
	assert.Equal(t, http.StatusInternalServerError, plain.Code)
	assert.Equal(t, "boom", plain.Message)

	conflict := NewConflictError("already inactive")
	wrapped := AsAppError(fmt.Errorf("tx: %w", conflict))
	assert.Same(t, conflict, wrapped)
}

func TestDatabaseErrorUnwraps(t *testing.T) {
	cause := errors.New("connection reset")
	err := NewDatabaseError(cause)
	assert.ErrorIs(t, err, cause)
	assert.ErrorIs(t, err, ErrDatabase)
	assert.Contains(t, err.Error(), "connection reset")
}
