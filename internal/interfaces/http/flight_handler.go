package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/stockpilot-api/internal/application/catalog"
)

// FlightHandler expone el catálogo de vuelos.
type FlightHandler struct {
	uc  *catalog.CatalogUseCase
	log *zerolog.Logger
}

// NewFlightHandler construye el handler.
func NewFlightHandler(uc *catalog.CatalogUseCase, log *zerolog.Logger) *FlightHandler {
	return &FlightHandler{uc: uc, log: orNop(log)}
}

// List godoc
// @Summary      Listar vuelos
// @Tags         flights
// @Security     Bearer
// @Produce      json
// @Success      200  {array}   dto.FlightResponse
// @Router       /api/flights [get]
func (h *FlightHandler) List(c *fiber.Ctx) error {
	flights, err := h.uc.ListFlights(c.UserContext())
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(fiber.Map{"total": len(flights), "flights": flights})
}

// Products godoc
// @Summary      Productos de un vuelo
// @Tags         flights
// @Security     Bearer
// @Produce      json
// @Param        flight  path  string  true  "Número de vuelo"
// @Success      200  {array}   dto.FlightProductResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/flights/{flight} [get]
func (h *FlightHandler) Products(c *fiber.Ctx) error {
	products, err := h.uc.FlightProducts(c.UserContext(), c.Params("flight"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(products)
}
