package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/stockpilot-api/internal/application/dto"
	"github.com/jhoicas/stockpilot-api/internal/application/inventory"
	"github.com/jhoicas/stockpilot-api/internal/domain"
)

// InventoryHandler maneja el inventario por lotes: consultas, altas, bajas y retiros FEFO.
type InventoryHandler struct {
	uc     *inventory.LotUseCase
	report *inventory.ReportUseCase
	log    *zerolog.Logger
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(uc *inventory.LotUseCase, report *inventory.ReportUseCase, log *zerolog.Logger) *InventoryHandler {
	return &InventoryHandler{uc: uc, report: report, log: orNop(log)}
}

// List godoc
// @Summary      Inventario completo (una fila por unidad)
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        limit   query  int  false  "filas por página (0 = todas)"
// @Param        offset  query  int  false  "desplazamiento"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/inventory [get]
func (h *InventoryHandler) List(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return writeError(c, h.log, domain.ErrInvalidInput)
	}
	items, meta, err := h.uc.InventoryPage(c.UserContext(), page)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(fiber.Map{"total": meta.Total, "inventory": items, "page": meta})
}

// ByProduct godoc
// @Summary      Inventario agrupado por producto, lotes en orden FEFO
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.ProductInventory
// @Router       /api/inventory/by-product [get]
func (h *InventoryHandler) ByProduct(c *fiber.Ctx) error {
	out, err := h.uc.ByProduct(c.UserContext())
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// Summary godoc
// @Summary      Resumen del inventario por rango de caducidad
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.InventorySummary
// @Router       /api/inventory/summary [get]
func (h *InventoryHandler) Summary(c *fiber.Ctx) error {
	out, err := h.uc.Summary(c.UserContext())
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// GetLot godoc
// @Summary      Detalle de un lote
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "lot_id"
// @Success      200  {object}  dto.LotResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/lots/{id} [get]
func (h *InventoryHandler) GetLot(c *fiber.Ctx) error {
	out, err := h.uc.GetLot(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// CreateLot godoc
// @Summary      Crear lote
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateLotRequest  true  "lot_id, quantity, expiry_days, product_name"
// @Success      201   {object}  dto.LotResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventory/lots [post]
func (h *InventoryHandler) CreateLot(c *fiber.Ctx) error {
	var in dto.CreateLotRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.CreateLot(c.UserContext(), in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	h.log.Info().Str("lot_id", out.LotID).Str("product", out.ProductName).Int("quantity", out.Quantity).
		Str("user_id", GetUserID(c)).Msg("lote creado")
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Delete godoc
// @Summary      Eliminar un lote o una unidad individual
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        identifier  path  string  true  "lot_id o id de unidad"
// @Success      200  {object}  dto.DeleteResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/lots/{identifier} [delete]
func (h *InventoryHandler) Delete(c *fiber.Ctx) error {
	out, err := h.uc.Delete(c.UserContext(), c.Params("identifier"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// Withdraw godoc
// @Summary      Retiro FEFO (todo o nada)
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.WithdrawRequest  true  "product_name, count"
// @Success      200   {object}  dto.WithdrawResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventory/withdrawals [post]
func (h *InventoryHandler) Withdraw(c *fiber.Ctx) error {
	var in dto.WithdrawRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.Withdraw(c.UserContext(), in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// Rotate godoc
// @Summary      Reordenar lotes por caducidad
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /api/inventory/rotation [post]
func (h *InventoryHandler) Rotate(c *fiber.Ctx) error {
	if err := h.uc.Rotate(c.UserContext()); err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(fiber.Map{"status": "success", "message": "inventario reordenado por caducidad"})
}

// ReportPDF godoc
// @Summary      Reporte de caducidad en PDF
// @Tags         inventory
// @Security     Bearer
// @Produce      application/pdf
// @Success      200  {file}  binary
// @Router       /api/inventory/report.pdf [get]
func (h *InventoryHandler) ReportPDF(c *fiber.Ctx) error {
	doc, err := h.report.ExpiryPDF(c.UserContext())
	if err != nil {
		return writeError(c, h.log, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `inline; filename="reporte-caducidad.pdf"`)
	return c.Send(doc)
}
