package handler

import (
	"net/http"
	"strconv"

	"catalog-service/internal/blob"
	"catalog-service/internal/catalog"
	"catalog-service/pkg/logger"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// Handler exposes the catalog service over HTTP
type Handler struct {
	svc   *catalog.Service
	blobs blob.Store
}

// New creates the handler. blobs may be nil when image storage is disabled.
func New(svc *catalog.Service, blobs blob.Store) *Handler {
	return &Handler{svc: svc, blobs: blobs}
}

// Register mounts every catalog route on e
func (h *Handler) Register(e *echo.Echo) {
	variantAPI := e.Group("/api/variants")
	variantAPI.POST("", h.CreateVariant)
	variantAPI.GET("/sku/:sku", h.GetVariantBySKU)
	variantAPI.PUT("/:id", h.UpdateVariant)
	variantAPI.DELETE("/:id", h.DeleteVariant)
	variantAPI.POST("/:id/image", h.UploadVariantImage)

	productAPI := e.Group("/api/products")
	productAPI.POST("", h.CreateProduct)
	productAPI.PUT("/:id", h.UpdateProduct)
	productAPI.PUT("/:id/status", h.SetProductStatus)
	productAPI.DELETE("/:id", h.DeleteProduct)
	productAPI.GET("/:id/variant-stats", h.GetVariantStats)

	repairAPI := e.Group("/api/catalog/repair")
	repairAPI.POST("/statuses", h.RepairStatuses)
	repairAPI.POST("/counters", h.RepairCounters)
}

func parseID(c echo.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, catalog.NewInvalidFieldError("id", "must be a positive integer", c.Param("id"))
	}
	return uint(id), nil
}

func errorStatus(err error) int {
	switch {
	case catalog.IsNotFound(err):
		return http.StatusNotFound
	case catalog.IsConflict(err):
		return http.StatusConflict
	case catalog.IsInvalidInput(err):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// respondError maps catalog errors onto HTTP statuses. Internal errors are
// logged and answered with msg only.
func respondError(c echo.Context, err error, msg string) error {
	log := logger.FromEcho(c)
	status := errorStatus(err)
	if status == http.StatusInternalServerError {
		log.Error(msg, zap.Error(err))
		return c.JSON(status, echo.Map{
			"error": msg,
		})
	}

	log.Warn(msg, zap.Int("status", status), zap.Error(err))
	return c.JSON(status, echo.Map{
		"error": err.Error(),
	})
}
