package handler

import (
	"net/http"

	"catalog-service/internal/catalog"
	"catalog-service/internal/model"
	"catalog-service/pkg/logger"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// VariantRequest defines the structure for variant creation requests
type VariantRequest struct {
	ProductID uint            `json:"product_id"`
	SizeID    uint            `json:"size_id"`
	ColorID   uint            `json:"color_id"`
	SKU       string          `json:"sku"`
	Price     decimal.Decimal `json:"price"`
	Stock     int             `json:"stock"`
	Status    string          `json:"status"`
}

// VariantUpdateRequest carries the fields to change; omitted fields are kept
type VariantUpdateRequest struct {
	SizeID  *uint            `json:"size_id"`
	ColorID *uint            `json:"color_id"`
	Price   *decimal.Decimal `json:"price"`
	Stock   *int             `json:"stock"`
	Status  *string          `json:"status"`
}

// VariantResponse is a variant with its resolved image URL
type VariantResponse struct {
	model.ProductVariant
	ImageURL string `json:"image_url,omitempty"`
}

func (h *Handler) variantResponse(v *model.ProductVariant) VariantResponse {
	resp := VariantResponse{ProductVariant: *v}
	if v.ImagePath != "" && h.blobs != nil {
		resp.ImageURL = h.blobs.URL(v.ImagePath)
	}
	return resp
}

// CreateVariant handles creating a new variant
func (h *Handler) CreateVariant(c echo.Context) error {
	log := logger.FromEcho(c)

	var req VariantRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "Invalid request data",
		})
	}

	log.Info("Variant creation request",
		zap.Uint("product_id", req.ProductID),
		zap.Uint("size_id", req.SizeID),
		zap.Uint("color_id", req.ColorID))

	variant, err := h.svc.CreateVariant(c.Request().Context(), catalog.CreateVariantInput{
		ProductID: req.ProductID,
		SizeID:    req.SizeID,
		ColorID:   req.ColorID,
		SKU:       req.SKU,
		Price:     req.Price,
		Stock:     req.Stock,
		Status:    model.VariantStatus(req.Status),
	})
	if err != nil {
		return respondError(c, err, "Failed to create variant")
	}
	return c.JSON(http.StatusCreated, h.variantResponse(variant))
}

// UpdateVariant handles partial updates of a variant
func (h *Handler) UpdateVariant(c echo.Context) error {
	log := logger.FromEcho(c)
	id, err := parseID(c)
	if err != nil {
		return respondError(c, err, "Invalid variant id")
	}

	var req VariantUpdateRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "Invalid request data",
		})
	}

	in := catalog.UpdateVariantInput{
		SizeID:  req.SizeID,
		ColorID: req.ColorID,
		Price:   req.Price,
		Stock:   req.Stock,
	}
	if req.Status != nil {
		status := model.VariantStatus(*req.Status)
		in.Status = &status
	}

	variant, err := h.svc.UpdateVariant(c.Request().Context(), id, in)
	if err != nil {
		return respondError(c, err, "Failed to update variant")
	}
	log.Info("Variant updated", zap.Uint("variant_id", id), zap.String("sku", variant.SKU))
	return c.JSON(http.StatusOK, h.variantResponse(variant))
}

// DeleteVariant soft-deletes a variant
func (h *Handler) DeleteVariant(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return respondError(c, err, "Invalid variant id")
	}
	if err := h.svc.DeleteVariant(c.Request().Context(), id); err != nil {
		return respondError(c, err, "Failed to delete variant")
	}
	logger.FromEcho(c).Info("Variant deleted", zap.Uint("variant_id", id))
	return c.NoContent(http.StatusNoContent)
}

// GetVariantBySKU looks a variant up by SKU
func (h *Handler) GetVariantBySKU(c echo.Context) error {
	variant, err := h.svc.FindVariantBySKU(c.Request().Context(), c.Param("sku"))
	if err != nil {
		return respondError(c, err, "Failed to retrieve variant")
	}
	return c.JSON(http.StatusOK, h.variantResponse(variant))
}

// UploadVariantImage stores the multipart "image" file and attaches it to the variant
func (h *Handler) UploadVariantImage(c echo.Context) error {
	log := logger.FromEcho(c)
	id, err := parseID(c)
	if err != nil {
		return respondError(c, err, "Invalid variant id")
	}

	file, err := c.FormFile("image")
	if err != nil {
		log.Warn("Missing image file", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "image file is required",
		})
	}
	src, err := file.Open()
	if err != nil {
		return respondError(c, err, "Failed to read image")
	}
	defer src.Close()

	variant, err := h.svc.AttachVariantImage(c.Request().Context(), id, catalog.ImageUpload{
		Filename:    file.Filename,
		ContentType: file.Header.Get("Content-Type"),
		Size:        file.Size,
		Body:        src,
	})
	if err != nil {
		return respondError(c, err, "Failed to attach image")
	}
	log.Info("Variant image attached",
		zap.Uint("variant_id", id),
		zap.String("image_path", variant.ImagePath))
	return c.JSON(http.StatusOK, h.variantResponse(variant))
}
