package handler

import (
	"net/http"

	"catalog-service/pkg/logger"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// RepairStatuses recomputes the status of every product
func (h *Handler) RepairStatuses(c echo.Context) error {
	result, err := h.svc.RecomputeAllProductStatuses(c.Request().Context())
	if err != nil {
		logger.FromEcho(c).Error("Status repair stopped",
			zap.Uint("last_id", result.LastID),
			zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error":  "Status repair failed; it is safe to retry",
			"result": result,
		})
	}
	return c.JSON(http.StatusOK, result)
}

// RepairCounters recomputes every product counter
func (h *Handler) RepairCounters(c echo.Context) error {
	result, err := h.svc.RefreshAllCounters(c.Request().Context())
	if err != nil {
		logger.FromEcho(c).Error("Counter repair stopped", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error":  "Counter repair failed; it is safe to retry",
			"result": result,
		})
	}
	return c.JSON(http.StatusOK, result)
}
