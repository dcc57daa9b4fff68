package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/rs/zerolog"

	"github.com/jhoicas/stockpilot-api/internal/application/auth"
	"github.com/jhoicas/stockpilot-api/internal/application/catalog"
	"github.com/jhoicas/stockpilot-api/internal/application/inventory"
	"github.com/jhoicas/stockpilot-api/internal/application/sensor"
	"github.com/jhoicas/stockpilot-api/internal/domain/entity"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	LotUC     *inventory.LotUseCase
	ReportUC  *inventory.ReportUseCase
	RunUC     *sensor.RunUseCase
	CatalogUC *catalog.CatalogUseCase
	AuthUC    *auth.AuthUseCase
	JWTSecret string
	Logger    *zerolog.Logger
}

// NewApp construye la aplicación Fiber con recover, CORS, /health y las rutas de la API.
func NewApp(name string, deps RouterDeps) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
		UnescapePath: true, // nombres de producto con espacios en la ruta
		Immutable:    true, // vuelo y producto de la ruta viven más que la petición
	})
	app.Use(recover.New())
	app.Use(cors.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": name})
	})

	Router(app, deps)
	return app
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Auth (público)
	authHandler := NewAuthHandler(deps.AuthUC, deps.Logger)
	api.Post("/auth/login", authHandler.Login)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))
	adminOnly := RequireRole(entity.RoleAdmin)
	anyRole := RequireRole(entity.RoleAdmin, entity.RoleOperador)

	protected.Get("/auth/me", anyRole, authHandler.Me)

	// Catálogo de vuelos
	flightHandler := NewFlightHandler(deps.CatalogUC, deps.Logger)
	flights := protected.Group("/flights", anyRole)
	flights.Get("/", flightHandler.List)
	flights.Get("/:flight", flightHandler.Products)

	// Inventario por lotes
	inventoryHandler := NewInventoryHandler(deps.LotUC, deps.ReportUC, deps.Logger)
	inv := protected.Group("/inventory", anyRole)
	inv.Get("/", inventoryHandler.List)
	inv.Get("/by-product", inventoryHandler.ByProduct)
	inv.Get("/summary", inventoryHandler.Summary)
	inv.Get("/report.pdf", inventoryHandler.ReportPDF)
	inv.Get("/lots/:id", inventoryHandler.GetLot)
	inv.Post("/lots", adminOnly, inventoryHandler.CreateLot)
	inv.Delete("/lots/:identifier", adminOnly, inventoryHandler.Delete)
	inv.Post("/withdrawals", adminOnly, inventoryHandler.Withdraw)
	inv.Post("/rotation", adminOnly, inventoryHandler.Rotate)

	// Corrida de sensores
	runHandler := NewRunHandler(deps.RunUC, deps.Logger)
	run := protected.Group("/run", anyRole)
	run.Get("/status", runHandler.Status)
	run.Post("/start/:flight", runHandler.Start)
	run.Post("/stop", runHandler.Stop)
	run.Post("/take_one/:product", runHandler.TakeOne)
	run.Post("/put_one/:product", runHandler.PutOne)
	run.Post("/readings/:product", runHandler.Reading)
}
