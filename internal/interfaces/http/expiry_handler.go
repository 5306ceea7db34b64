package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Farmacia-api/internal/application/dto"
	"github.com/jhoicas/Farmacia-api/internal/application/expiry"
	domexpiry "github.com/jhoicas/Farmacia-api/internal/domain/expiry"
)

// ExpiryHandler maneja el motor de riesgo de vencimientos (protegido).
type ExpiryHandler struct {
	uc *expiry.UseCase
}

// NewExpiryHandler construye el handler.
func NewExpiryHandler(uc *expiry.UseCase) *ExpiryHandler {
	return &ExpiryHandler{uc: uc}
}

// Alerts godoc
// @Summary      Alertas de vencimiento priorizadas
// @Tags         expiry
// @Security     Bearer
// @Produce      json
// @Param        levels           query  string  false  "Niveles separados por coma: critical,high,medium,low,info"
// @Param        min_quantity     query  int     false  "Stock mínimo del lote para alertar"
// @Param        include_expired  query  bool    false  "Incluir lotes ya vencidos con stock"
// @Param        limit            query  int     false  "Máximo de alertas (0 = todas)"
// @Success      200  {array}   dto.ExpiryAlertDTO
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/expiry/alerts [get]
func (h *ExpiryHandler) Alerts(c *fiber.Ctx) error {
	opts := expiry.AlertOptions{
		MinQuantity:    c.QueryInt("min_quantity", 0),
		IncludeExpired: c.QueryBool("include_expired", false),
		Limit:          c.QueryInt("limit", 0),
	}
	if raw := c.Query("levels"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			level, ok := domexpiry.ParseLevel(strings.TrimSpace(part))
			if !ok {
				return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "nivel desconocido: " + part})
			}
			opts.Levels = append(opts.Levels, level)
		}
	}
	alerts, err := h.uc.Alerts(c.Context(), opts)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(alerts)
}

// CriticalAlerts godoc
// @Summary      Alertas críticas (vencen dentro de la ventana crítica)
// @Tags         expiry
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.ExpiryAlertDTO
// @Router       /api/expiry/alerts/critical [get]
func (h *ExpiryHandler) CriticalAlerts(c *fiber.Ctx) error {
	alerts, err := h.uc.Alerts(c.Context(), expiry.AlertOptions{
		Levels: []domexpiry.AlertLevel{domexpiry.LevelCritical},
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(alerts)
}

// HighPriorityAlerts godoc
// @Summary      Alertas de prioridad alta (críticas + altas)
// @Tags         expiry
// @Security     Bearer
// @Produce      json
// @Param        limit  query  int  false  "Máximo de alertas (0 = todas)"
// @Success      200  {array}  dto.ExpiryAlertDTO
// @Router       /api/expiry/alerts/high-priority [get]
func (h *ExpiryHandler) HighPriorityAlerts(c *fiber.Ctx) error {
	alerts, err := h.uc.Alerts(c.Context(), expiry.AlertOptions{
		Levels: []domexpiry.AlertLevel{domexpiry.LevelCritical, domexpiry.LevelHigh},
		Limit:  c.QueryInt("limit", 0),
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(alerts)
}

// AlertsByProduct godoc
// @Summary      Alertas de vencimiento de un producto
// @Tags         expiry
// @Security     Bearer
// @Produce      json
// @Param        id  path  int  true  "ID del producto"
// @Success      200  {array}  dto.ExpiryAlertDTO
// @Router       /api/products/{id}/expiry-alerts [get]
func (h *ExpiryHandler) AlertsByProduct(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_ID", Message: "id numérico requerido"})
	}
	alerts, err := h.uc.Alerts(c.Context(), expiry.AlertOptions{
		ProductID:      int64(id),
		IncludeExpired: true,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(alerts)
}

// Summary godoc
// @Summary      Resumen agregado del riesgo de vencimiento
// @Description  Ventanas acumulativas: un lote a 5 días cuenta en todas las
// @Description  ventanas. Los vencidos van en su propio bucket.
// @Tags         expiry
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.ExpirySummaryDTO
// @Router       /api/expiry/summary [get]
func (h *ExpiryHandler) Summary(c *fiber.Ctx) error {
	summary, err := h.uc.Summary(c.Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(summary)
}

// Dashboard godoc
// @Summary      Panel de vencimientos: resumen + alertas urgentes + recomendaciones
// @Tags         expiry
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.ExpiryDashboardDTO
// @Router       /api/expiry/dashboard [get]
func (h *ExpiryHandler) Dashboard(c *fiber.Ctx) error {
	dashboard, err := h.uc.Dashboard(c.Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dashboard)
}

// MarkExpired godoc
// @Summary      Retirar un lote vencido del inventario
// @Tags         expiry
// @Security     Bearer
// @Produce      json
// @Param        id   path  int  true  "ID del lote"
// @Success      200  {object}  dto.MarkExpiredResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/expiry/batches/{id}/mark-expired [post]
func (h *ExpiryHandler) MarkExpired(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_ID", Message: "id numérico requerido"})
	}
	out, err := h.uc.MarkExpired(c.Context(), int64(id), GetUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}
