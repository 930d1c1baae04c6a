// internal/services/catalog_service.go
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

type CatalogService struct {
	db *gorm.DB
}

type CreatePhotocardRequest struct {
	Name       string `json:"name" validate:"required,min=1,max=255"`
	Idol       string `json:"idol" validate:"required,min=1,max=100"`
	IdolGroup  string `json:"idol_group" validate:"omitempty,max=100"`
	Era        string `json:"era" validate:"omitempty,max=100"`
	Collection string `json:"collection" validate:"omitempty,max=100"`
	ImageURL   string `json:"image_url" validate:"omitempty,url,max=500"`
}

// CrossListing is one aggregated row of the marketplace view: the same
// card offered across several open group purchases, collapsed to a price
// range and a listing count.
type CrossListing struct {
	GroupKey      string     `json:"group_key"`
	PhotocardID   *uuid.UUID `json:"photocard_id,omitempty"`
	Name          string     `json:"name"`
	Idol          string     `json:"idol"`
	MinPrice      float64    `json:"min_price"`
	MaxPrice      float64    `json:"max_price"`
	ListingCount  int64      `json:"listing_count"`
	LatestListing time.Time  `json:"latest_listing"`
}

type CrossListingFilters struct {
	Idol      string
	IdolGroup string
	Search    string
}

func NewCatalogService(db *gorm.DB) *CatalogService {
	return &CatalogService{db: db}
}

func (s *CatalogService) CreatePhotocard(req *CreatePhotocardRequest) (*models.Photocard, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, apperrors.Validation("validation failed: %v", err)
	}

	card := &models.Photocard{
		Name:       req.Name,
		Idol:       req.Idol,
		IdolGroup:  req.IdolGroup,
		Era:        req.Era,
		Collection: req.Collection,
		ImageURL:   req.ImageURL,
	}
	if err := s.db.Create(card).Error; err != nil {
		return nil, apperrors.Internal("failed to create photocard", err)
	}

	return card, nil
}

func (s *CatalogService) GetPhotocard(id uuid.UUID) (*models.Photocard, error) {
	var card models.Photocard
	if err := s.db.First(&card, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("photocard")
		}
		return nil, apperrors.Internal("database error", err)
	}
	return &card, nil
}

func (s *CatalogService) SearchPhotocards(params utils.PaginationParams) ([]models.Photocard, int64, error) {
	query := s.db.Model(&models.Photocard{})

	if params.Search != "" {
		searchTerm := "%" + strings.ToLower(params.Search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(idol) LIKE ? OR LOWER(idol_group) LIKE ?", searchTerm, searchTerm, searchTerm)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.Internal("failed to count photocards", err)
	}

	allowedSortFields := []string{"created_at", "name", "idol", "idol_group"}
	query = utils.ApplySort(query, params, allowedSortFields)
	query = utils.ApplyPagination(query, params)

	var cards []models.Photocard
	if err := query.Find(&cards).Error; err != nil {
		return nil, 0, apperrors.Internal("failed to fetch photocards", err)
	}

	return cards, total, nil
}

// CrossListings aggregates orderable items across all open group
// purchases. Items linked to the same photocard collapse into one row;
// unlinked items group by name and idol. Rows are ordered by most recent
// listing first.
func (s *CatalogService) CrossListings(filters CrossListingFilters, params utils.PaginationParams) ([]CrossListing, int64, error) {
	groupKey := "COALESCE(CAST(inventory_items.photocard_id AS TEXT), inventory_items.name || '|' || inventory_items.idol)"

	base := s.db.Model(&models.InventoryItem{}).
		Joins("JOIN group_purchases ON group_purchases.id = inventory_items.group_purchase_id").
		Where("group_purchases.status = ?", models.GroupPurchaseStatusOpen).
		Where("inventory_items.status = ? AND inventory_items.available = ? AND inventory_items.quantity > 0",
			models.ItemStatusApproved, true)

	if filters.Idol != "" {
		base = base.Where("inventory_items.idol = ?", filters.Idol)
	}
	if filters.IdolGroup != "" {
		base = base.Where("inventory_items.idol_group = ?", filters.IdolGroup)
	}
	if filters.Search != "" {
		searchTerm := "%" + strings.ToLower(filters.Search) + "%"
		base = base.Where("LOWER(inventory_items.name) LIKE ? OR LOWER(inventory_items.idol) LIKE ?", searchTerm, searchTerm)
	}

	var total int64
	countQuery := base.Session(&gorm.Session{}).
		Select("COUNT(DISTINCT " + groupKey + ")")
	if err := countQuery.Count(&total).Error; err != nil {
		return nil, 0, apperrors.Internal("failed to count listings", err)
	}

	type aggregateRow struct {
		GroupKey      string
		PhotocardID   *uuid.UUID
		Name          string
		Idol          string
		MinPrice      float64
		MaxPrice      float64
		ListingCount  int64
		LatestListing time.Time
	}

	offset := (params.Page - 1) * params.Limit

	var rows []aggregateRow
	err := base.Session(&gorm.Session{}).
		Select(groupKey+" AS group_key, "+
			"MIN(CAST(inventory_items.photocard_id AS TEXT)) AS photocard_id, "+
			"MIN(inventory_items.name) AS name, "+
			"MIN(inventory_items.idol) AS idol, "+
			"MIN(inventory_items.price) AS min_price, "+
			"MAX(inventory_items.price) AS max_price, "+
			"COUNT(DISTINCT inventory_items.group_purchase_id) AS listing_count, "+
			"MAX(inventory_items.created_at) AS latest_listing").
		Group(groupKey).
		Order("latest_listing DESC").
		Offset(offset).
		Limit(params.Limit).
		Scan(&rows).Error
	if err != nil {
		return nil, 0, apperrors.Internal("failed to aggregate listings", err)
	}

	listings := make([]CrossListing, 0, len(rows))
	for _, r := range rows {
		listings = append(listings, CrossListing{
			GroupKey:      r.GroupKey,
			PhotocardID:   r.PhotocardID,
			Name:          r.Name,
			Idol:          r.Idol,
			MinPrice:      r.MinPrice,
			MaxPrice:      r.MaxPrice,
			ListingCount:  r.ListingCount,
			LatestListing: r.LatestListing,
		})
	}

	return listings, total, nil
}

// ListingsFor returns the individual orderable items behind one
// aggregated row, so a buyer can compare the concrete offers.
func (s *CatalogService) ListingsFor(photocardID *uuid.UUID, name, idol string, params utils.PaginationParams) ([]models.InventoryItem, int64, error) {
	query := s.db.Model(&models.InventoryItem{}).
		Joins("JOIN group_purchases ON group_purchases.id = inventory_items.group_purchase_id").
		Where("group_purchases.status = ?", models.GroupPurchaseStatusOpen).
		Where("inventory_items.status = ? AND inventory_items.available = ? AND inventory_items.quantity > 0",
			models.ItemStatusApproved, true).
		Preload("GroupPurchase")

	if photocardID != nil {
		query = query.Where("inventory_items.photocard_id = ?", *photocardID)
	} else {
		if name == "" || idol == "" {
			return nil, 0, apperrors.Validation("either photocard_id or name and idol are required")
		}
		query = query.Where("inventory_items.photocard_id IS NULL AND inventory_items.name = ? AND inventory_items.idol = ?", name, idol)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.Internal("failed to count listings", err)
	}

	allowedSortFields := []string{"price", "created_at", "quantity"}
	query = utils.ApplySort(query, params, allowedSortFields)
	query = utils.ApplyPagination(query, params)

	var items []models.InventoryItem
	if err := query.Find(&items).Error; err != nil {
		return nil, 0, apperrors.Internal("failed to fetch listings", err)
	}

	return items, total, nil
}
