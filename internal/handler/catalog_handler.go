package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/e-kondr01/mobile-apps-development-project-backend/internal/repository"
	"github.com/e-kondr01/mobile-apps-development-project-backend/internal/utils"
)

// CatalogHandler serves the plain list endpoints of the mirrored catalog.
type CatalogHandler struct {
	barcodeRepo        *repository.BarcodeRepository
	characteristicRepo *repository.CharacteristicRepository
	priceTypeRepo      *repository.PriceTypeRepository
	movementRepo       *repository.MovementRepository
	priceChangeRepo    *repository.PriceChangeRepository
}

func NewCatalogHandler(
	barcodeRepo *repository.BarcodeRepository,
	characteristicRepo *repository.CharacteristicRepository,
	priceTypeRepo *repository.PriceTypeRepository,
	movementRepo *repository.MovementRepository,
	priceChangeRepo *repository.PriceChangeRepository,
) *CatalogHandler {
	return &CatalogHandler{
		barcodeRepo:        barcodeRepo,
		characteristicRepo: characteristicRepo,
		priceTypeRepo:      priceTypeRepo,
		movementRepo:       movementRepo,
		priceChangeRepo:    priceChangeRepo,
	}
}

// ListBarcodes returns one page of barcodes.
func (h *CatalogHandler) ListBarcodes(c *gin.Context) {
	page, limit := pageParams(c)
	barcodes, total, err := h.barcodeRepo.GetAllPaged(page, limit)
	if err != nil {
		utils.Error(c, 500, "INTERNAL_ERROR", "Failed to list barcodes")
		return
	}
	utils.SuccessWithPagination(c, 200, "Barcodes retrieved", barcodes, page, limit, total)
}

// ListCharacteristics returns one page of characteristics.
func (h *CatalogHandler) ListCharacteristics(c *gin.Context) {
	page, limit := pageParams(c)
	characteristics, total, err := h.characteristicRepo.GetAllPaged(page, limit)
	if err != nil {
		utils.Error(c, 500, "INTERNAL_ERROR", "Failed to list characteristics")
		return
	}
	utils.SuccessWithPagination(c, 200, "Characteristics retrieved", characteristics, page, limit, total)
}

// ListPriceTypes returns one page of price types.
func (h *CatalogHandler) ListPriceTypes(c *gin.Context) {
	page, limit := pageParams(c)
	priceTypes, total, err := h.priceTypeRepo.GetAllPaged(page, limit)
	if err != nil {
		utils.Error(c, 500, "INTERNAL_ERROR", "Failed to list price types")
		return
	}
	utils.SuccessWithPagination(c, 200, "Price types retrieved", priceTypes, page, limit, total)
}

// ListMovements returns one page of stock movements.
func (h *CatalogHandler) ListMovements(c *gin.Context) {
	page, limit := pageParams(c)
	movements, total, err := h.movementRepo.GetAllPaged(page, limit)
	if err != nil {
		utils.Error(c, 500, "INTERNAL_ERROR", "Failed to list product movements")
		return
	}
	utils.SuccessWithPagination(c, 200, "Product movements retrieved", movements, page, limit, total)
}

// ListPriceChanges returns one page of price changes.
func (h *CatalogHandler) ListPriceChanges(c *gin.Context) {
	page, limit := pageParams(c)
	changes, total, err := h.priceChangeRepo.GetAllPaged(page, limit)
	if err != nil {
		utils.Error(c, 500, "INTERNAL_ERROR", "Failed to list price changes")
		return
	}
	utils.SuccessWithPagination(c, 200, "Price changes retrieved", changes, page, limit, total)
}
