// health_test.go
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

package services_test

import (
	"net"
	"testing"

	"github.com/localnerve/qrguide/internal/config"
	"github.com/localnerve/qrguide/internal/services"
	"github.com/localnerve/qrguide/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthCheck(t *testing.T) {
	db := testutil.OpenTestDB(t)

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer listener.Close()

	cfg := &config.Config{DBType: "sqlite", DBDatabase: ":memory:", FrontendURL: "http://" + listener.Addr().String()}
	result := services.HealthCheck(cfg, db)
	assert.Equal(t, "healthy", result.Status)
	assert.Equal(t, services.ServiceName, result.Service)
	assert.Equal(t, "ok", result.Database)
	assert.Equal(t, "ok", result.Frontend)
	assert.NotEmpty(t, result.Timestamp)
}

func TestHealthCheckFrontendIsInformational(t *testing.T) {
	db := testutil.OpenTestDB(t)

	// reserve a port, then free it so nothing listens there
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := listener.Addr().String()
	listener.Close()

	cfg := &config.Config{DBType: "sqlite", FrontendURL: "http://" + addr}
	result := services.HealthCheck(cfg, db)
	assert.Equal(t, "healthy", result.Status)
	assert.Equal(t, "unreachable", result.Frontend)
	assert.Contains(t, result.Details, "frontend_error")
}

func TestHealthCheckDatabaseDown(t *testing.T) {
	db := testutil.OpenTestDB(t)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	cfg := &config.Config{DBType: "sqlite", FrontendURL: "http://127.0.0.1:1"}
	result := services.HealthCheck(cfg, db)
	assert.Equal(t, "unhealthy", result.Status)
	assert.Equal(t, "unreachable", result.Database)
	assert.NotEmpty(t, result.ErrorMessage)
}
