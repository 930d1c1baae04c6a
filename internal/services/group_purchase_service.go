// internal/services/group_purchase_service.go
package services

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pocamarket/ceg-backend/internal/apperrors"
	"github.com/pocamarket/ceg-backend/internal/models"
	"github.com/pocamarket/ceg-backend/internal/utils"
)

type GroupPurchaseService struct {
	db     *gorm.DB
	access *AccessService
}

type CreateGroupPurchaseRequest struct {
	Title         string     `json:"title" validate:"required,min=2,max=255"`
	Description   string     `json:"description,omitempty"`
	Type          string     `json:"type" validate:"required"`
	Source        string     `json:"source,omitempty"`
	Deadline      *time.Time `json:"deadline,omitempty"`
	AdditionalFee float64    `json:"additional_fee" validate:"gte=0"`
	ShippingNotes string     `json:"shipping_notes,omitempty"`
}

type UpdateGroupPurchaseRequest struct {
	Title         string     `json:"title,omitempty" validate:"omitempty,min=2,max=255"`
	Description   *string    `json:"description,omitempty"`
	Type          string     `json:"type,omitempty"`
	Source        *string    `json:"source,omitempty"`
	Deadline      *time.Time `json:"deadline,omitempty"`
	AdditionalFee *float64   `json:"additional_fee,omitempty" validate:"omitempty,gte=0"`
	ShippingNotes *string    `json:"shipping_notes,omitempty"`
	Status        string     `json:"status,omitempty"`
}

type GroupPurchaseSearchParams struct {
	utils.PaginationParams
	SellerID *uuid.UUID
	Type     *models.GroupPurchaseType
	Status   *models.GroupPurchaseStatus
}

func NewGroupPurchaseService(db *gorm.DB, access *AccessService) *GroupPurchaseService {
	return &GroupPurchaseService{
		db:     db,
		access: access,
	}
}

func (s *GroupPurchaseService) Create(sellerID uuid.UUID, req *CreateGroupPurchaseRequest) (*models.GroupPurchase, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, apperrors.Validation("validation failed: %v", err)
	}

	var seller models.User
	if err := s.db.First(&seller, "id = ?", sellerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("seller")
		}
		return nil, apperrors.Internal("database error", err)
	}

	if seller.Status != models.UserStatusActive {
		return nil, apperrors.Authorization("seller account is not active")
	}

	gpType := models.NormalizeGroupPurchaseType(req.Type)
	if !gpType.Valid() {
		return nil, apperrors.Validation("invalid group purchase type %q", req.Type)
	}

	gp := &models.GroupPurchase{
		SellerID:      sellerID,
		Title:         strings.TrimSpace(req.Title),
		Description:   req.Description,
		Type:          gpType,
		Source:        req.Source,
		Deadline:      req.Deadline,
		AdditionalFee: req.AdditionalFee,
		ShippingNotes: req.ShippingNotes,
		Status:        models.GroupPurchaseStatusOpen,
	}

	if err := s.db.Create(gp).Error; err != nil {
		return nil, apperrors.Internal("failed to create group purchase", err)
	}

	return gp, nil
}

func (s *GroupPurchaseService) Get(id uuid.UUID) (*models.GroupPurchase, error) {
	var gp models.GroupPurchase
	if err := s.db.Preload("Seller").First(&gp, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("group purchase")
		}
		return nil, apperrors.Internal("database error", err)
	}

	return &gp, nil
}

// Update applies a partial update. Type and status accept the Korean label
// vocabulary; aliases are normalized before the canonical-set check so an
// unrecognized value is rejected rather than silently dropped. Any
// canonical status value is accepted verbatim here; open-ness gating
// happens where orders and requests are created.
func (s *GroupPurchaseService) Update(id, actorID uuid.UUID, req *UpdateGroupPurchaseRequest) (*models.GroupPurchase, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, apperrors.Validation("validation failed: %v", err)
	}

	var gp models.GroupPurchase
	if err := s.db.First(&gp, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("group purchase")
		}
		return nil, apperrors.Internal("database error", err)
	}

	if !s.access.CanManage(actorID, &gp) {
		return nil, apperrors.Authorization("only the seller may update this group purchase")
	}

	updates := make(map[string]interface{})
	if req.Title != "" {
		updates["title"] = strings.TrimSpace(req.Title)
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Type != "" {
		gpType := models.NormalizeGroupPurchaseType(req.Type)
		if !gpType.Valid() {
			return nil, apperrors.Validation("invalid group purchase type %q", req.Type)
		}
		updates["type"] = gpType
	}
	if req.Source != nil {
		updates["source"] = *req.Source
	}
	if req.Deadline != nil {
		updates["deadline"] = req.Deadline
	}
	if req.AdditionalFee != nil {
		updates["additional_fee"] = *req.AdditionalFee
	}
	if req.ShippingNotes != nil {
		updates["shipping_notes"] = *req.ShippingNotes
	}
	if req.Status != "" {
		status := models.NormalizeGroupPurchaseStatus(req.Status)
		if !status.Valid() {
			return nil, apperrors.Validation("invalid group purchase status %q", req.Status)
		}
		updates["status"] = status
	}

	if len(updates) > 0 {
		if err := s.db.Model(&gp).Updates(updates).Error; err != nil {
			return nil, apperrors.Internal("failed to update group purchase", err)
		}
	}

	s.db.Preload("Seller").First(&gp, "id = ?", id)

	return &gp, nil
}

func (s *GroupPurchaseService) Search(params GroupPurchaseSearchParams) ([]models.GroupPurchase, int64, error) {
	query := s.db.Model(&models.GroupPurchase{}).Preload("Seller")

	if params.SellerID != nil {
		query = query.Where("seller_id = ?", *params.SellerID)
	}

	if params.Type != nil {
		query = query.Where("type = ?", *params.Type)
	}

	if params.Status != nil {
		query = query.Where("status = ?", *params.Status)
	}

	if params.Search != "" {
		searchTerm := "%" + strings.ToLower(params.Search) + "%"
		query = query.Where("LOWER(title) LIKE ? OR LOWER(description) LIKE ?", searchTerm, searchTerm)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.Internal("failed to count group purchases", err)
	}

	allowedSortFields := []string{"created_at", "updated_at", "title", "deadline", "status"}
	query = utils.ApplySort(query, params.PaginationParams, allowedSortFields)
	query = utils.ApplyPagination(query, params.PaginationParams)

	var groupPurchases []models.GroupPurchase
	if err := query.Find(&groupPurchases).Error; err != nil {
		return nil, 0, apperrors.Internal("failed to fetch group purchases", err)
	}

	return groupPurchases, total, nil
}

func (s *GroupPurchaseService) GetSellerGroupPurchases(sellerID uuid.UUID, params utils.PaginationParams) ([]models.GroupPurchase, int64, error) {
	return s.Search(GroupPurchaseSearchParams{
		PaginationParams: params,
		SellerID:         &sellerID,
	})
}
