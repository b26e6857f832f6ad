package handler

import (
	"net/http"

	"catalog-service/internal/catalog"
	"catalog-service/internal/model"
	"catalog-service/pkg/logger"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// ProductRequest defines the structure for product creation/update requests
type ProductRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	SKU         string `json:"sku"`
	CategoryID  *uint  `json:"category_id"`
	CategoryIDs []uint `json:"category_ids"`
	BrandID     *uint  `json:"brand_id"`
	Gender      string `json:"gender"`
	Status      string `json:"status"`
}

func (r ProductRequest) input() catalog.ProductInput {
	return catalog.ProductInput{
		Name:        r.Name,
		Description: r.Description,
		SKU:         r.SKU,
		CategoryID:  r.CategoryID,
		CategoryIDs: r.CategoryIDs,
		BrandID:     r.BrandID,
		Gender:      r.Gender,
		Status:      model.ProductStatus(r.Status),
	}
}

// ProductStatusRequest sets a product status explicitly
type ProductStatusRequest struct {
	Status string `json:"status"`
}

// CreateProduct handles creating a new product
func (h *Handler) CreateProduct(c echo.Context) error {
	var req ProductRequest
	if err := c.Bind(&req); err != nil {
		logger.FromEcho(c).Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "Invalid request data",
		})
	}

	product, err := h.svc.CreateProduct(c.Request().Context(), req.input())
	if err != nil {
		return respondError(c, err, "Failed to create product")
	}
	return c.JSON(http.StatusCreated, product)
}

// UpdateProduct replaces the editable fields of a product
func (h *Handler) UpdateProduct(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return respondError(c, err, "Invalid product id")
	}
	var req ProductRequest
	if err := c.Bind(&req); err != nil {
		logger.FromEcho(c).Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "Invalid request data",
		})
	}

	product, err := h.svc.UpdateProduct(c.Request().Context(), id, req.input())
	if err != nil {
		return respondError(c, err, "Failed to update product")
	}
	logger.FromEcho(c).Info("Product updated", zap.Uint("product_id", id))
	return c.JSON(http.StatusOK, product)
}

// SetProductStatus handles the explicit status override
func (h *Handler) SetProductStatus(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return respondError(c, err, "Invalid product id")
	}
	var req ProductStatusRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "Invalid request data",
		})
	}

	product, err := h.svc.SetProductStatus(c.Request().Context(), id, model.ProductStatus(req.Status))
	if err != nil {
		return respondError(c, err, "Failed to set product status")
	}
	logger.FromEcho(c).Info("Product status set",
		zap.Uint("product_id", id),
		zap.String("requested", req.Status),
		zap.String("status", string(product.Status)))
	return c.JSON(http.StatusOK, product)
}

// DeleteProduct soft-deletes a product and its variants
func (h *Handler) DeleteProduct(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return respondError(c, err, "Invalid product id")
	}
	if err := h.svc.DeleteProduct(c.Request().Context(), id); err != nil {
		return respondError(c, err, "Failed to delete product")
	}
	logger.FromEcho(c).Info("Product deleted", zap.Uint("product_id", id))
	return c.NoContent(http.StatusNoContent)
}

// GetVariantStats returns variant count, total stock and average price
func (h *Handler) GetVariantStats(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return respondError(c, err, "Invalid product id")
	}
	stats, err := h.svc.VariantStats(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err, "Failed to compute variant stats")
	}
	return c.JSON(http.StatusOK, stats)
}
