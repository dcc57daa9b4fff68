package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/stockpilot-api/internal/application/dto"
	"github.com/jhoicas/stockpilot-api/internal/application/sensor"
)

// RunHandler controla la corrida de sensores de peso.
type RunHandler struct {
	uc  *sensor.RunUseCase
	log *zerolog.Logger
}

// NewRunHandler construye el handler.
func NewRunHandler(uc *sensor.RunUseCase, log *zerolog.Logger) *RunHandler {
	return &RunHandler{uc: uc, log: orNop(log)}
}

// Status godoc
// @Summary      Estado de la corrida
// @Tags         run
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.RunStatusResponse
// @Router       /api/run/status [get]
func (h *RunHandler) Status(c *fiber.Ctx) error {
	return c.JSON(h.uc.Status())
}

// Start godoc
// @Summary      Iniciar corrida para un vuelo
// @Tags         run
// @Security     Bearer
// @Produce      json
// @Param        flight  path  string  true  "Número de vuelo"
// @Success      200  {object}  dto.RunActionResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/run/start/{flight} [post]
func (h *RunHandler) Start(c *fiber.Ctx) error {
	out, err := h.uc.Start(c.UserContext(), c.Params("flight"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	h.log.Info().Str("flight", c.Params("flight")).Str("user_id", GetUserID(c)).Msg("corrida iniciada")
	return c.JSON(out)
}

// Stop godoc
// @Summary      Detener la corrida
// @Tags         run
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.RunActionResponse
// @Router       /api/run/stop [post]
func (h *RunHandler) Stop(c *fiber.Ctx) error {
	return c.JSON(h.uc.Stop())
}

// TakeOne godoc
// @Summary      Tomar una unidad del producto
// @Tags         run
// @Security     Bearer
// @Produce      json
// @Param        product  path  string  true  "Nombre del producto"
// @Success      200  {object}  dto.RunActionResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/run/take_one/{product} [post]
func (h *RunHandler) TakeOne(c *fiber.Ctx) error {
	out, err := h.uc.TakeOne(c.UserContext(), c.Params("product"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// PutOne godoc
// @Summary      Devolver una unidad del producto
// @Tags         run
// @Security     Bearer
// @Produce      json
// @Param        product  path  string  true  "Nombre del producto"
// @Success      200  {object}  dto.RunActionResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/run/put_one/{product} [post]
func (h *RunHandler) PutOne(c *fiber.Ctx) error {
	out, err := h.uc.PutOne(c.UserContext(), c.Params("product"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// Reading godoc
// @Summary      Registrar lectura cruda de la báscula
// @Tags         run
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        product  path  string              true  "Nombre del producto"
// @Param        body     body  dto.ReadingRequest  true  "weight (kg)"
// @Success      200  {object}  dto.SensorStatus
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/run/readings/{product} [post]
func (h *RunHandler) Reading(c *fiber.Ctx) error {
	var in dto.ReadingRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.Observe(c.UserContext(), c.Params("product"), in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}
