package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Farmacia-api/internal/application/dto"
	"github.com/jhoicas/Farmacia-api/internal/application/inventory"
	"github.com/jhoicas/Farmacia-api/internal/domain/repository"
)

// InventoryHandler maneja lotes, movimientos, reservas y reposición (protegido).
type InventoryHandler struct {
	uc     *inventory.UseCase
	engine *inventory.ReservationEngine
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(uc *inventory.UseCase, engine *inventory.ReservationEngine) *InventoryHandler {
	return &InventoryHandler{uc: uc, engine: engine}
}

// CreateBatch godoc
// @Summary      Recibir un lote nuevo
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateBatchRequest  true  "Datos del lote"
// @Success      201   {object}  dto.BatchResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/batches [post]
func (h *InventoryHandler) CreateBatch(c *fiber.Ctx) error {
	var in dto.CreateBatchRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	batch, err := h.uc.RegisterBatch(c.Context(), in, GetUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toBatchResponse(batch))
}

// GetBatch godoc
// @Summary      Obtener lote por ID
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        id   path  int  true  "ID del lote"
// @Success      200  {object}  dto.BatchResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/batches/{id} [get]
func (h *InventoryHandler) GetBatch(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_ID", Message: "id numérico requerido"})
	}
	batch, err := h.uc.GetBatch(int64(id))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(toBatchResponse(batch))
}

// BatchesByProduct godoc
// @Summary      Listar lotes de un producto
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        id      path   int   true   "ID del producto"
// @Param        active  query  bool  false  "Solo lotes activos"  default(true)
// @Success      200  {array}  dto.BatchResponse
// @Router       /api/products/{id}/batches [get]
func (h *InventoryHandler) BatchesByProduct(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_ID", Message: "id numérico requerido"})
	}
	batches, err := h.uc.BatchesByProduct(int64(id), c.QueryBool("active", true))
	if err != nil {
		return respondError(c, err)
	}
	out := make([]dto.BatchResponse, 0, len(batches))
	for _, b := range batches {
		out = append(out, toBatchResponse(b))
	}
	return c.JSON(out)
}

// AdjustStock godoc
// @Summary      Ajustar stock de un lote tras conteo físico
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  int  true  "ID del lote"
// @Param        body  body  dto.AdjustStockRequest  true  "Nueva cantidad y motivo"
// @Success      200   {object}  dto.BatchResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/batches/{id}/adjust [post]
func (h *InventoryHandler) AdjustStock(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_ID", Message: "id numérico requerido"})
	}
	var in dto.AdjustStockRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	batch, err := h.uc.AdjustStock(c.Context(), int64(id), in, GetUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(toBatchResponse(batch))
}

// AvailableStock godoc
// @Summary      Stock disponible de un producto (actual - reservado)
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        id   path  int  true  "ID del producto"
// @Success      200  {object}  dto.AvailableStockResponse
// @Router       /api/products/{id}/stock [get]
func (h *InventoryHandler) AvailableStock(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_ID", Message: "id numérico requerido"})
	}
	available, err := h.uc.AvailableStock(c.Context(), int64(id))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.AvailableStockResponse{ProductID: int64(id), Available: available})
}

// Movements godoc
// @Summary      Historial de movimientos de stock
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        product_id  query  int     false  "Filtrar por producto"
// @Param        batch_id    query  int     false  "Filtrar por lote"
// @Param        type        query  string  false  "purchase | sale | adjustment | return | expired | damaged | transfer"
// @Param        from        query  string  false  "Desde (RFC3339)"
// @Param        to          query  string  false  "Hasta (RFC3339, exclusivo)"
// @Param        limit       query  int     false  "Límite"  default(50)
// @Param        offset      query  int     false  "Offset"  default(0)
// @Success      200  {array}  dto.MovementResponse
// @Router       /api/inventory/movements [get]
func (h *InventoryHandler) Movements(c *fiber.Ctx) error {
	filter := repository.MovementFilter{
		ProductID: int64(c.QueryInt("product_id", 0)),
		BatchID:   int64(c.QueryInt("batch_id", 0)),
		Type:      c.Query("type"),
		Limit:     c.QueryInt("limit", 50),
		Offset:    c.QueryInt("offset", 0),
	}
	if raw := c.Query("from"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "from debe ser RFC3339"})
		}
		filter.From = &t
	}
	if raw := c.Query("to"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "to debe ser RFC3339"})
		}
		filter.To = &t
	}
	movements, err := h.uc.Movements(c.Context(), filter)
	if err != nil {
		return respondError(c, err)
	}
	out := make([]dto.MovementResponse, 0, len(movements))
	for _, m := range movements {
		out = append(out, toMovementResponse(m))
	}
	return c.JSON(out)
}

// Replenishment godoc
// @Summary      Sugerencias de reposición (productos bajo punto de reorden)
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.ReplenishmentSuggestionDTO
// @Router       /api/inventory/replenishment [get]
func (h *InventoryHandler) Replenishment(c *fiber.Ctx) error {
	out, err := h.uc.ReplenishmentSuggestions(c.Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Reserve godoc
// @Summary      Reservar stock de un producto (todo o nada)
// @Description  Aparta la cantidad pedida repartiéndola entre lotes según la
// @Description  política (fifo = el más próximo a vencer primero). Si no
// @Description  alcanza, no se reserva nada.
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ReserveStockRequest  true  "Producto, cantidad y política"
// @Success      201   {object}  dto.ReservationResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventory/reservations [post]
func (h *InventoryHandler) Reserve(c *fiber.Ctx) error {
	var in dto.ReserveStockRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	res, err := h.engine.Reserve(c.Context(), in.ProductID, in.Quantity, repository.ReservationPolicy(in.Policy))
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toReservationResponse(res))
}

// Release godoc
// @Summary      Liberar una reserva previa
// @Description  Devuelve al disponible las cantidades de la reserva. Es
// @Description  idempotente: liberar dos veces no deja reservas negativas.
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Param        body  body  dto.ReservationResponse  true  "Reserva a liberar (tal como la devolvió Reserve)"
// @Success      204
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/inventory/reservations/release [post]
func (h *InventoryHandler) Release(c *fiber.Ctx) error {
	var in dto.ReservationResponse
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if len(in.Lines) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "la reserva no tiene líneas"})
	}
	if err := h.engine.Release(fromReservationResponse(in)); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
