// server.go
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

// Package server assembles the Fiber application: middleware chain and routes.
package server

import (
	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	swagger "github.com/gofiber/swagger"
	_ "github.com/localnerve/qrguide/docs/api" // Swagger docs
	"github.com/localnerve/qrguide/internal/config"
	"github.com/localnerve/qrguide/internal/handlers"
	"github.com/localnerve/qrguide/internal/logger"
	"github.com/localnerve/qrguide/internal/middleware"
	"github.com/localnerve/qrguide/internal/qr"
	"github.com/localnerve/qrguide/internal/services"
	"github.com/localnerve/qrguide/internal/types"
	"github.com/localnerve/qrguide/internal/utils"
	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"
)

// QRDefaults returns the configured rendering defaults
func QRDefaults(cfg *config.Config) qr.Options {
	margin := types.FlexInt(cfg.QRMargin)
	return qr.Options{
		Size:            types.FlexInt(cfg.QRSize),
		ErrorCorrection: cfg.QRErrorCorrection,
		Margin:          &margin,
		DarkColor:       cfg.QRDarkColor,
		LightColor:      cfg.QRLightColor,
	}
}

// New builds the application. HTTP metrics are registered with registry, which lets tests
// build several apps in one process.
func New(cfg *config.Config, db *gorm.DB, registry *prometheus.Registry) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               services.ServiceName,
		ErrorHandler:          utils.ErrorHandler(),
		DisableStartupMessage: cfg.IsProduction(),
	})

	// Global middleware
	app.Use(utils.HideInternalErrors(cfg.IsProduction()))
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(logger.Middleware())
	app.Use(compress.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.FrontendURL,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-Demo-Token, X-Api-Version",
	}))

	// Prometheus metrics
	prom := fiberprometheus.NewWithRegistry(registry, services.ServiceName, "http", "", nil)
	prom.RegisterAt(app, "/metrics")
	app.Use(prom.Middleware)

	// Swagger documentation
	app.Get("/swagger/*", swagger.HandlerDefault)

	healthHandler := &handlers.HealthHandler{DB: db, Config: cfg}
	app.Get("/health", healthHandler.Health)

	// API routes under /api
	api := app.Group("/api")
	api.Use(middleware.VersionMiddleware())
	api.Get("/health", healthHandler.Health)

	// Public content routes
	contentHandler := &handlers.ContentHandler{DB: db, FrontendBase: cfg.FrontendURL}
	content := api.Group("/content")
	content.Get("/:qrCode", contentHandler.GetContent)
	content.Get("/:qrCode/meta", contentHandler.GetContentMeta)
	content.Post("/:qrCode/view", contentHandler.RecordContentView)
	content.Get("/:qrCode/stats", contentHandler.GetContentStats)

	identity := middleware.DemoIdentity(cfg.DemoUserToken, cfg.DemoUserID)
	RegisterOwnerRoutes(api, identity, cfg, db)

	return app
}

// RegisterOwnerRoutes mounts the authenticated property, item and QR code routes behind identity
func RegisterOwnerRoutes(api fiber.Router, identity fiber.Handler, cfg *config.Config, db *gorm.DB) {
	propertyHandler := &handlers.PropertyHandler{DB: db}
	properties := api.Group("/properties", identity)
	properties.Post("/", propertyHandler.CreateProperty)
	properties.Get("/", propertyHandler.ListProperties)
	properties.Get("/:id", propertyHandler.GetProperty)
	properties.Put("/:id", propertyHandler.UpdateProperty)
	properties.Delete("/:id", propertyHandler.DeleteProperty)

	itemHandler := &handlers.ItemHandler{DB: db}
	items := api.Group("/items", identity)
	items.Post("/", itemHandler.CreateItem)
	items.Get("/", itemHandler.ListItems)
	items.Get("/:id", itemHandler.GetItem)
	items.Put("/:id", itemHandler.UpdateItem)
	items.Put("/:id/location", itemHandler.UpdateItemLocation)
	items.Delete("/:id", itemHandler.DeleteItem)

	qrHandler := &handlers.QRCodeHandler{
		DB:         db,
		Generator:  qr.NewGenerator(cfg.FrontendURL, QRDefaults(cfg)),
		BatchLimit: cfg.QRBatchLimit,
	}
	qrcodes := api.Group("/qrcodes", identity)
	qrcodes.Post("/", qrHandler.CreateQRCode)
	qrcodes.Get("/", qrHandler.ListQRCodes)
	// static segments before /:qrId
	qrcodes.Get("/stats", qrHandler.GetQRStatistics)
	qrcodes.Post("/batch", qrHandler.BatchCreateQRCodes)
	qrcodes.Get("/:qrId", qrHandler.GetQRCode)
	qrcodes.Put("/:qrId/status", qrHandler.UpdateQRStatus)
	qrcodes.Get("/:qrId/download", qrHandler.DownloadQRCode)
	qrcodes.Delete("/:qrId", qrHandler.DeleteQRCode)
}
