// internal/services/inventory_service.go
package services

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pocamarket/ceg-backend/internal/apperrors"
	"github.com/pocamarket/ceg-backend/internal/models"
	"github.com/pocamarket/ceg-backend/internal/utils"
)

type InventoryService struct {
	db           *gorm.DB
	access       *AccessService
	notification *NotificationService
}

type AddItemRequest struct {
	Name        string     `json:"name" validate:"required,min=1,max=255"`
	Idol        string     `json:"idol,omitempty"`
	IdolGroup   string     `json:"idol_group,omitempty"`
	Era         string     `json:"era,omitempty"`
	Collection  string     `json:"collection,omitempty"`
	Price       float64    `json:"price" validate:"gte=0"`
	ImageURL    string     `json:"image_url,omitempty"`
	Available   *bool      `json:"available,omitempty"`
	Quantity    int        `json:"quantity" validate:"gte=0"`
	PhotocardID *uuid.UUID `json:"photocard_id,omitempty"`
}

type RequestItemRequest struct {
	Name         string     `json:"name" validate:"required,min=1,max=255"`
	Idol         string     `json:"idol,omitempty"`
	IdolGroup    string     `json:"idol_group,omitempty"`
	Era          string     `json:"era,omitempty"`
	Collection   string     `json:"collection,omitempty"`
	ImageURL     string     `json:"image_url,omitempty"`
	RequestNotes string     `json:"request_notes,omitempty"`
	PhotocardID  *uuid.UUID `json:"photocard_id,omitempty"`
}

type ApproveItemRequest struct {
	Price     float64 `json:"price" validate:"required,gt=0"`
	Quantity  int     `json:"quantity" validate:"required,gte=1"`
	Available *bool   `json:"available,omitempty"`
}

type RejectItemRequest struct {
	Reason string `json:"reason,omitempty"`
}

type UpdateItemRequest struct {
	Name        string     `json:"name,omitempty" validate:"omitempty,min=1,max=255"`
	Idol        *string    `json:"idol,omitempty"`
	IdolGroup   *string    `json:"idol_group,omitempty"`
	Era         *string    `json:"era,omitempty"`
	Collection  *string    `json:"collection,omitempty"`
	Price       *float64   `json:"price,omitempty" validate:"omitempty,gte=0"`
	ImageURL    *string    `json:"image_url,omitempty"`
	Available   *bool      `json:"available,omitempty"`
	Quantity    *int       `json:"quantity,omitempty" validate:"omitempty,gte=0"`
	PhotocardID *uuid.UUID `json:"photocard_id,omitempty"`
}

func NewInventoryService(db *gorm.DB, access *AccessService, notification *NotificationService) *InventoryService {
	return &InventoryService{
		db:           db,
		access:       access,
		notification: notification,
	}
}

// AddDirect creates a seller-entered item, auto-approved.
func (s *InventoryService) AddDirect(sellerID, groupPurchaseID uuid.UUID, req *AddItemRequest) (*models.InventoryItem, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, apperrors.Validation("validation failed: %v", err)
	}

	gp, err := s.loadGroupPurchase(groupPurchaseID)
	if err != nil {
		return nil, err
	}

	if !s.access.CanManage(sellerID, gp) {
		return nil, apperrors.Authorization("only the seller may add items to this group purchase")
	}

	available := true
	if req.Available != nil {
		available = *req.Available
	}

	item := &models.InventoryItem{
		GroupPurchaseID: groupPurchaseID,
		Name:            req.Name,
		Idol:            req.Idol,
		IdolGroup:       req.IdolGroup,
		Era:             req.Era,
		Collection:      req.Collection,
		Price:           req.Price,
		ImageURL:        req.ImageURL,
		Available:       available,
		Quantity:        req.Quantity,
		Status:          models.ItemStatusApproved,
		PhotocardID:     req.PhotocardID,
	}

	if err := s.db.Create(item).Error; err != nil {
		return nil, apperrors.Internal("failed to create inventory item", err)
	}

	return item, nil
}

// RequestItem creates a buyer-submitted item request against an open group
// purchase. Requests start pending, unavailable, unpriced and stockless
// until the seller approves them.
func (s *InventoryService) RequestItem(buyerID, groupPurchaseID uuid.UUID, req *RequestItemRequest) (*models.InventoryItem, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, apperrors.Validation("validation failed: %v", err)
	}

	gp, err := s.loadGroupPurchase(groupPurchaseID)
	if err != nil {
		return nil, err
	}

	if !gp.IsOpen() {
		return nil, apperrors.InvalidState("group purchase not open")
	}

	item := &models.InventoryItem{
		GroupPurchaseID: groupPurchaseID,
		Name:            req.Name,
		Idol:            req.Idol,
		IdolGroup:       req.IdolGroup,
		Era:             req.Era,
		Collection:      req.Collection,
		Price:           0,
		ImageURL:        req.ImageURL,
		Available:       false,
		Quantity:        0,
		Status:          models.ItemStatusPending,
		RequesterID:     &buyerID,
		RequestNotes:    req.RequestNotes,
		PhotocardID:     req.PhotocardID,
	}

	if err := s.db.Create(item).Error; err != nil {
		return nil, apperrors.Internal("failed to create item request", err)
	}

	if s.notification != nil {
		go s.notification.NotifyItemRequested(item, gp.SellerID)
	}

	return item, nil
}

// Approve promotes a pending request to a sellable item. The seller must
// supply the final price and quantity at this point; the status flip and
// the pricing write are one atomic unit.
func (s *InventoryService) Approve(sellerID, itemID uuid.UUID, req *ApproveItemRequest) (*models.InventoryItem, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, apperrors.Validation("validation failed: %v", err)
	}

	item, gp, err := s.loadItemWithGroupPurchase(itemID)
	if err != nil {
		return nil, err
	}

	if !s.access.CanManage(sellerID, gp) {
		return nil, apperrors.Authorization("only the seller may approve items")
	}

	if item.Status != models.ItemStatusPending {
		return nil, apperrors.InvalidState("item request already processed")
	}

	available := true
	if req.Available != nil {
		available = *req.Available
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.InventoryItem{}).
			Where("id = ? AND status = ?", itemID, models.ItemStatusPending).
			Updates(map[string]interface{}{
				"status":    models.ItemStatusApproved,
				"price":     req.Price,
				"quantity":  req.Quantity,
				"available": available,
			})
		if result.Error != nil {
			return apperrors.Internal("failed to approve item", result.Error)
		}
		if result.RowsAffected == 0 {
			return apperrors.Conflict("item request processed concurrently")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.db.First(item, "id = ?", itemID)

	if s.notification != nil {
		go s.notification.NotifyItemApproved(item)
	}

	return item, nil
}

// Reject keeps the record with status rejected so the request history
// survives, rather than deleting it.
func (s *InventoryService) Reject(sellerID, itemID uuid.UUID, req *RejectItemRequest) (*models.InventoryItem, error) {
	item, gp, err := s.loadItemWithGroupPurchase(itemID)
	if err != nil {
		return nil, err
	}

	if !s.access.CanManage(sellerID, gp) {
		return nil, apperrors.Authorization("only the seller may reject items")
	}

	if item.Status != models.ItemStatusPending {
		return nil, apperrors.InvalidState("item request already processed")
	}

	result := s.db.Model(&models.InventoryItem{}).
		Where("id = ? AND status = ?", itemID, models.ItemStatusPending).
		Updates(map[string]interface{}{
			"status":           models.ItemStatusRejected,
			"available":        false,
			"rejection_reason": req.Reason,
		})
	if result.Error != nil {
		return nil, apperrors.Internal("failed to reject item", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, apperrors.Conflict("item request processed concurrently")
	}

	s.db.First(item, "id = ?", itemID)

	if s.notification != nil {
		go s.notification.NotifyItemRejected(item)
	}

	return item, nil
}

func (s *InventoryService) Update(sellerID, itemID uuid.UUID, req *UpdateItemRequest) (*models.InventoryItem, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, apperrors.Validation("validation failed: %v", err)
	}

	item, gp, err := s.loadItemWithGroupPurchase(itemID)
	if err != nil {
		return nil, err
	}

	if !s.access.CanManage(sellerID, gp) {
		return nil, apperrors.Authorization("only the seller may update this item")
	}

	updates := make(map[string]interface{})
	if req.Name != "" {
		updates["name"] = req.Name
	}
	if req.Idol != nil {
		updates["idol"] = *req.Idol
	}
	if req.IdolGroup != nil {
		updates["idol_group"] = *req.IdolGroup
	}
	if req.Era != nil {
		updates["era"] = *req.Era
	}
	if req.Collection != nil {
		updates["collection"] = *req.Collection
	}
	if req.Price != nil {
		updates["price"] = *req.Price
	}
	if req.ImageURL != nil {
		updates["image_url"] = *req.ImageURL
	}
	if req.Available != nil {
		updates["available"] = *req.Available
	}
	if req.Quantity != nil {
		updates["quantity"] = *req.Quantity
	}
	if req.PhotocardID != nil {
		updates["photocard_id"] = *req.PhotocardID
	}

	if len(updates) > 0 {
		if err := s.db.Model(item).Updates(updates).Error; err != nil {
			return nil, apperrors.Internal("failed to update item", err)
		}
	}

	s.db.First(item, "id = ?", itemID)

	return item, nil
}

// Delete may be invoked by the seller or by the original requester
// withdrawing their own item.
func (s *InventoryService) Delete(actorID, itemID uuid.UUID) error {
	item, gp, err := s.loadItemWithGroupPurchase(itemID)
	if err != nil {
		return err
	}

	isRequester := item.RequesterID != nil && *item.RequesterID == actorID
	if !isRequester && !s.access.CanManage(actorID, gp) {
		return apperrors.Authorization("only the seller or the requester may delete this item")
	}

	if err := s.db.Delete(item).Error; err != nil {
		return apperrors.Internal("failed to delete item", err)
	}

	return nil
}

func (s *InventoryService) Get(itemID uuid.UUID) (*models.InventoryItem, error) {
	var item models.InventoryItem
	if err := s.db.Preload("Photocard").First(&item, "id = ?", itemID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("inventory item")
		}
		return nil, apperrors.Internal("database error", err)
	}

	return &item, nil
}

func (s *InventoryService) ListByGroupPurchase(groupPurchaseID uuid.UUID, status *models.ItemStatus, params utils.PaginationParams) ([]models.InventoryItem, int64, error) {
	if _, err := s.loadGroupPurchase(groupPurchaseID); err != nil {
		return nil, 0, err
	}

	query := s.db.Model(&models.InventoryItem{}).
		Where("group_purchase_id = ?", groupPurchaseID).
		Preload("Photocard")

	if status != nil {
		query = query.Where("status = ?", *status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.Internal("failed to count items", err)
	}

	allowedSortFields := []string{"created_at", "updated_at", "name", "price", "quantity"}
	query = utils.ApplySort(query, params, allowedSortFields)
	query = utils.ApplyPagination(query, params)

	var items []models.InventoryItem
	if err := query.Find(&items).Error; err != nil {
		return nil, 0, apperrors.Internal("failed to fetch items", err)
	}

	return items, total, nil
}

// Helpers

func (s *InventoryService) loadGroupPurchase(id uuid.UUID) (*models.GroupPurchase, error) {
	var gp models.GroupPurchase
	if err := s.db.First(&gp, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("group purchase")
		}
		return nil, apperrors.Internal("database error", err)
	}
	return &gp, nil
}

func (s *InventoryService) loadItemWithGroupPurchase(itemID uuid.UUID) (*models.InventoryItem, *models.GroupPurchase, error) {
	var item models.InventoryItem
	if err := s.db.Preload("GroupPurchase").First(&item, "id = ?", itemID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, apperrors.NotFound("inventory item")
		}
		return nil, nil, apperrors.Internal("database error", err)
	}
	return &item, &item.GroupPurchase, nil
}
