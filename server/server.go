// Package server exposes the symbol library and review workflow over
// HTTP. Annotation itself happens in the editor; the API is the
// persistence and collaboration surface around it.
package server

import (
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/gofiber/fiber/v3/middleware/recover"

	"portstudio/catalog"
	"portstudio/core"
)

// Server wires the catalog and review store into an HTTP API.
type Server struct {
	cat     *catalog.Catalog
	review  *catalog.ReviewStore
	palette core.Palette
}

// New creates a server over the given catalog and review store.
// The review store may be nil; submission and review endpoints then
// report 503. The palette colors debug overlays and may be nil.
func New(cat *catalog.Catalog, review *catalog.ReviewStore, pal core.Palette) *Server {
	return &Server{cat: cat, review: review, palette: pal}
}

// App builds the fiber application with all routes registered.
func (s *Server) App() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName: "portstudio",
	})

	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
		TimeFormat: "15:04:05",
		TimeZone:   "Local",
	}))

	app.Get("/health", func(c fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	app.Get("/api/stats", s.stats)
	app.Get("/api/symbols", s.listSymbols)
	app.Get("/api/symbols/*", s.getSymbol)
	app.Post("/api/symbols/*/save", s.saveSymbol)
	app.Post("/api/symbols/*/debug", s.generateDebug)

	app.Put("/api/symbols/*/ports", s.requireAuth(s.submitPorts))
	app.Patch("/api/symbols/*/complete", s.requireAuth(s.markComplete))
	app.Patch("/api/symbols/*/review", s.requireReviewer(s.reviewSymbol))

	return app
}
