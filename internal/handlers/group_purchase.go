// internal/handlers/group_purchase.go
package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/pocamarket/ceg-backend/internal/i18n"
	"github.com/pocamarket/ceg-backend/internal/middleware"
	"github.com/pocamarket/ceg-backend/internal/models"
	"github.com/pocamarket/ceg-backend/internal/services"
	"github.com/pocamarket/ceg-backend/internal/utils"
)

type GroupPurchaseHandler struct {
	groupPurchaseService *services.GroupPurchaseService
	inventoryService     *services.InventoryService
	orderService         *services.OrderService
}

func NewGroupPurchaseHandler(
	groupPurchaseService *services.GroupPurchaseService,
	inventoryService *services.InventoryService,
	orderService *services.OrderService,
) *GroupPurchaseHandler {
	return &GroupPurchaseHandler{
		groupPurchaseService: groupPurchaseService,
		inventoryService:     inventoryService,
		orderService:         orderService,
	}
}

// GET /group-purchases
func (h *GroupPurchaseHandler) List(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	searchParams := services.GroupPurchaseSearchParams{
		PaginationParams: params,
	}

	// Type and status accept Korean aliases alongside canonical values.
	if typeStr := c.Query("type"); typeStr != "" {
		gpType := models.NormalizeGroupPurchaseType(typeStr)
		if !gpType.Valid() {
			utils.BadRequestResponse(c, "Invalid group purchase type", nil)
			return
		}
		searchParams.Type = &gpType
	}

	if statusStr := c.Query("status"); statusStr != "" {
		gpStatus := models.NormalizeGroupPurchaseStatus(statusStr)
		if !gpStatus.Valid() {
			utils.BadRequestResponse(c, "Invalid group purchase status", nil)
			return
		}
		searchParams.Status = &gpStatus
	}

	if sellerIDStr := c.Query("seller_id"); sellerIDStr != "" {
		if sellerID, err := uuid.Parse(sellerIDStr); err == nil {
			searchParams.SellerID = &sellerID
		}
	}

	groupPurchases, total, err := h.groupPurchaseService.Search(searchParams)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	result := utils.CreatePaginationResult(groupPurchases, total, params)
	utils.PaginatedResponse(c, result)
}

// POST /group-purchases
func (h *GroupPurchaseHandler) Create(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	sellerID, ok := currentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	var req services.CreateGroupPurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	groupPurchase, err := h.groupPurchaseService.Create(sellerID, &req)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"message":        i18n.T(lang, i18n.KeyGroupPurchaseCreated),
		"group_purchase": groupPurchase,
	})
}

// GET /group-purchases/:id
func (h *GroupPurchaseHandler) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	groupPurchase, err := h.groupPurchaseService.Get(id)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"group_purchase": groupPurchase,
	})
}

// PUT /group-purchases/:id
func (h *GroupPurchaseHandler) Update(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	actorID, ok := currentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	var req services.UpdateGroupPurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	groupPurchase, err := h.groupPurchaseService.Update(id, actorID, &req)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message":        i18n.T(lang, i18n.KeyGroupPurchaseUpdated),
		"group_purchase": groupPurchase,
	})
}

// GET /group-purchases/mine
func (h *GroupPurchaseHandler) ListMine(c *gin.Context) {
	sellerID, ok := currentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	params := utils.GetPaginationParams(c)
	groupPurchases, total, err := h.groupPurchaseService.GetSellerGroupPurchases(sellerID, params)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	result := utils.CreatePaginationResult(groupPurchases, total, params)
	utils.PaginatedResponse(c, result)
}

// GET /group-purchases/:id/items
func (h *GroupPurchaseHandler) ListItems(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	params := utils.GetPaginationParams(c)

	var status *models.ItemStatus
	if statusStr := c.Query("status"); statusStr != "" {
		itemStatus := models.ItemStatus(statusStr)
		if !itemStatus.Valid() {
			utils.BadRequestResponse(c, "Invalid item status", nil)
			return
		}
		status = &itemStatus
	}

	items, total, err := h.inventoryService.ListByGroupPurchase(id, status, params)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	result := utils.CreatePaginationResult(items, total, params)
	utils.PaginatedResponse(c, result)
}

// POST /group-purchases/:id/items
func (h *GroupPurchaseHandler) AddItem(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	sellerID, ok := currentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	var req services.AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	item, err := h.inventoryService.AddDirect(sellerID, id, &req)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyItemCreated),
		"item":    item,
	})
}

// POST /group-purchases/:id/item-requests
func (h *GroupPurchaseHandler) RequestItem(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	buyerID, ok := currentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	var req services.RequestItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	item, err := h.inventoryService.RequestItem(buyerID, id, &req)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyItemRequested),
		"item":    item,
	})
}

// POST /group-purchases/:id/orders
func (h *GroupPurchaseHandler) PlaceOrder(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	buyerID, ok := currentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	var req services.PlaceOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	order, err := h.orderService.PlaceOrder(buyerID, id, &req)
	middleware.RecordOrderOperation("place", err == nil)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyOrderPlaced),
		"order":   order,
	})
}

// GET /group-purchases/:id/orders
func (h *GroupPurchaseHandler) ListOrders(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	actorID, ok := currentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	params := utils.GetPaginationParams(c)
	orders, total, err := h.orderService.GetGroupPurchaseOrders(id, actorID, params)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	result := utils.CreatePaginationResult(orders, total, params)
	utils.PaginatedResponse(c, result)
}
