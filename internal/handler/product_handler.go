package handler

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/e-kondr01/mobile-apps-development-project-backend/internal/service"
	"github.com/e-kondr01/mobile-apps-development-project-backend/internal/utils"
)

type ProductHandler struct {
	productService *service.ProductService
}

func NewProductHandler(productService *service.ProductService) *ProductHandler {
	return &ProductHandler{productService: productService}
}

// List returns one page of mirrored products.
func (h *ProductHandler) List(c *gin.Context) {
	page, limit := pageParams(c)

	products, total, err := h.productService.List(page, limit)
	if err != nil {
		utils.Error(c, 500, "INTERNAL_ERROR", "Failed to list products")
		return
	}
	utils.SuccessWithPagination(c, 200, "Products retrieved", products, page, limit, total)
}

// GetAmounts returns the quantity on hand per characteristic of a product.
func (h *ProductHandler) GetAmounts(c *gin.Context) {
	refKey, ok := refKeyParam(c)
	if !ok {
		return
	}

	amounts, err := h.productService.GetAmounts(c.Request.Context(), refKey)
	if err != nil {
		if errors.Is(err, utils.ErrProductNotFound) {
			utils.Error(c, 404, "PRODUCT_NOT_FOUND", "Product not found")
			return
		}
		utils.Error(c, 500, "INTERNAL_ERROR", "Failed to get amounts")
		return
	}
	utils.Success(c, 200, "Amounts retrieved", amounts)
}

// GetPrices returns the latest price per characteristic of a product,
// paired with the quantity on hand.
func (h *ProductHandler) GetPrices(c *gin.Context) {
	refKey, ok := refKeyParam(c)
	if !ok {
		return
	}

	prices, err := h.productService.GetPrices(c.Request.Context(), refKey)
	if err != nil {
		if errors.Is(err, utils.ErrProductNotFound) {
			utils.Error(c, 404, "PRODUCT_NOT_FOUND", "Product not found")
			return
		}
		utils.Error(c, 500, "INTERNAL_ERROR", "Failed to get prices")
		return
	}
	utils.Success(c, 200, "Prices retrieved", prices)
}

// refKeyParam validates the ref_key path parameter as a UUID.
func refKeyParam(c *gin.Context) (string, bool) {
	refKey := c.Param("ref_key")
	if _, err := uuid.Parse(refKey); err != nil {
		utils.Error(c, 400, "INVALID_REF_KEY", "ref_key must be a UUID")
		return "", false
	}
	return refKey, true
}

// pageParams extracts pagination query parameters with defaults.
func pageParams(c *gin.Context) (int, int) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page <= 0 {
		page = 1
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil || limit <= 0 || limit > 500 {
		limit = 50
	}
	return page, limit
}
