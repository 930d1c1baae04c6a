// internal/handlers/catalog.go
package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/pocamarket/ceg-backend/internal/i18n"
	"github.com/pocamarket/ceg-backend/internal/services"
	"github.com/pocamarket/ceg-backend/internal/utils"
)

type CatalogHandler struct {
	catalogService *services.CatalogService
	storageService *services.StorageService
}

func NewCatalogHandler(catalogService *services.CatalogService, storageService *services.StorageService) *CatalogHandler {
	return &CatalogHandler{
		catalogService: catalogService,
		storageService: storageService,
	}
}

// GET /listings
func (h *CatalogHandler) CrossListings(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	filters := services.CrossListingFilters{
		Idol:      c.Query("idol"),
		IdolGroup: c.Query("idol_group"),
		Search:    params.Search,
	}

	listings, total, err := h.catalogService.CrossListings(filters, params)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	result := utils.CreatePaginationResult(listings, total, params)
	utils.PaginatedResponse(c, result)
}

// GET /listings/items
func (h *CatalogHandler) Listings(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	var photocardID *uuid.UUID
	if idStr := c.Query("photocard_id"); idStr != "" {
		id, err := uuid.Parse(idStr)
		if err != nil {
			utils.BadRequestResponse(c, "Invalid photocard_id", nil)
			return
		}
		photocardID = &id
	}

	items, total, err := h.catalogService.ListingsFor(photocardID, c.Query("name"), c.Query("idol"), params)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	result := utils.CreatePaginationResult(items, total, params)
	utils.PaginatedResponse(c, result)
}

// GET /photocards
func (h *CatalogHandler) SearchPhotocards(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	cards, total, err := h.catalogService.SearchPhotocards(params)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	result := utils.CreatePaginationResult(cards, total, params)
	utils.PaginatedResponse(c, result)
}

// POST /photocards
func (h *CatalogHandler) CreatePhotocard(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	var req services.CreatePhotocardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	card, err := h.catalogService.CreatePhotocard(&req)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"photocard": card,
	})
}

// GET /photocards/:id
func (h *CatalogHandler) GetPhotocard(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	card, err := h.catalogService.GetPhotocard(id)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"photocard": card,
	})
}

// POST /photocards/upload-image
func (h *CatalogHandler) UploadImage(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	if _, ok := currentUserID(c); !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyFileUploadFailed), err.Error())
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyFileUploadFailed), err.Error())
		return
	}
	defer file.Close()

	if err := h.storageService.ValidateImage(file); err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	options := h.storageService.GetDefaultUploadOptions("photocards")
	result, err := h.storageService.UploadFile(file, fileHeader, options)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyFileUploadSuccess),
		"image":   result,
	})
}
