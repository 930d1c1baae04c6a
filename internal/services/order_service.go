// internal/services/order_service.go
package services

import (
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pocamarket/ceg-backend/internal/apperrors"
	"github.com/pocamarket/ceg-backend/internal/models"
	"github.com/pocamarket/ceg-backend/internal/utils"
)

type OrderService struct {
	db           *gorm.DB
	access       *AccessService
	notification *NotificationService
}

// DirectSelection orders a single item inline. PriceOverride is honored
// only when the caller manages the group purchase (seller-entered orders
// recorded at a negotiated price).
type DirectSelection struct {
	ItemID        uuid.UUID `json:"product_id" validate:"required"`
	Quantity      int       `json:"quantity" validate:"required,gte=1"`
	PriceOverride *float64  `json:"unit_price,omitempty" validate:"omitempty,gte=0"`
}

type BasketSelection struct {
	ItemID   uuid.UUID `json:"item_id" validate:"required"`
	Quantity int       `json:"quantity" validate:"required,gte=1"`
}

// PlaceOrderRequest is a tagged variant: exactly one of Direct or Items
// must be set.
type PlaceOrderRequest struct {
	Direct      *DirectSelection       `json:"direct,omitempty"`
	Items       []BasketSelection      `json:"items,omitempty"`
	ContactInfo map[string]interface{} `json:"contact_info,omitempty"`
	Notes       string                 `json:"notes,omitempty"`
}

type SetStatusRequest struct {
	Status       string `json:"status" validate:"required"`
	RestockItems bool   `json:"restock_items,omitempty"`
}

func NewOrderService(db *gorm.DB, access *AccessService, notification *NotificationService) *OrderService {
	return &OrderService{
		db:           db,
		access:       access,
		notification: notification,
	}
}

type orderLine struct {
	itemID   uuid.UUID
	quantity int
}

// PlaceOrder validates the selection against current availability,
// approval state and stock, computes the total (group purchase fee added
// once per order), and creates the order with its items as one atomic
// unit. Stock is consumed with a conditional decrement so two concurrent
// orders cannot both take the last copies.
func (s *OrderService) PlaceOrder(buyerID, groupPurchaseID uuid.UUID, req *PlaceOrderRequest) (*models.Order, error) {
	lines, err := s.selectionLines(req)
	if err != nil {
		return nil, err
	}

	var gp models.GroupPurchase
	if err := s.db.First(&gp, "id = ?", groupPurchaseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("group purchase")
		}
		return nil, apperrors.Internal("database error", err)
	}

	if !gp.IsOpen() {
		return nil, apperrors.InvalidState("group purchase not open")
	}

	if req.Direct != nil && req.Direct.PriceOverride != nil && !s.access.CanManage(buyerID, &gp) {
		return nil, apperrors.Authorization("only the seller may override the unit price")
	}

	var order *models.Order
	err = s.db.Transaction(func(tx *gorm.DB) error {
		ids := make([]uuid.UUID, 0, len(lines))
		for _, line := range lines {
			ids = append(ids, line.itemID)
		}

		var items []models.InventoryItem
		if err := tx.Where("group_purchase_id = ? AND id IN ? AND status = ? AND available = ?",
			groupPurchaseID, ids, models.ItemStatusApproved, true).
			Find(&items).Error; err != nil {
			return apperrors.Internal("failed to fetch items", err)
		}

		byID := make(map[uuid.UUID]*models.InventoryItem, len(items))
		for i := range items {
			byID[items[i].ID] = &items[i]
		}

		// No partial orders: any unavailable id aborts the whole order.
		var missing []string
		for _, line := range lines {
			if _, ok := byID[line.itemID]; !ok {
				missing = append(missing, line.itemID.String())
			}
		}
		if len(missing) > 0 {
			return apperrors.Validation("items not available: %s", strings.Join(missing, ", "))
		}

		var total float64
		for _, line := range lines {
			item := byID[line.itemID]

			unitPrice := item.Price
			if req.Direct != nil && req.Direct.PriceOverride != nil {
				unitPrice = *req.Direct.PriceOverride
			}

			// Conditional decrement is the serialization point against
			// concurrent orders on the same item.
			result := tx.Model(&models.InventoryItem{}).
				Where("id = ? AND quantity >= ?", line.itemID, line.quantity).
				UpdateColumn("quantity", gorm.Expr("quantity - ?", line.quantity))
			if result.Error != nil {
				return apperrors.Internal("failed to reserve stock", result.Error)
			}
			if result.RowsAffected == 0 {
				return apperrors.Conflict("insufficient stock for item %s", item.Name)
			}

			total += unitPrice * float64(line.quantity)
		}

		total += gp.AdditionalFee

		order = &models.Order{
			BuyerID:         buyerID,
			GroupPurchaseID: groupPurchaseID,
			Status:          models.OrderStatusPending,
			TotalAmount:     total,
			ContactInfo:     models.JSONB(req.ContactInfo),
			Notes:           req.Notes,
		}

		if req.Direct != nil {
			item := byID[req.Direct.ItemID]
			unitPrice := item.Price
			if req.Direct.PriceOverride != nil {
				unitPrice = *req.Direct.PriceOverride
			}
			order.ProductID = &req.Direct.ItemID
			order.Quantity = req.Direct.Quantity
			order.UnitPrice = unitPrice
		}

		if err := tx.Create(order).Error; err != nil {
			return apperrors.Internal("failed to create order", err)
		}

		if req.Direct == nil {
			orderItems := make([]models.OrderItem, 0, len(lines))
			for _, line := range lines {
				orderItems = append(orderItems, models.OrderItem{
					OrderID:         order.ID,
					InventoryItemID: line.itemID,
					Quantity:        line.quantity,
					UnitPrice:       byID[line.itemID].Price,
				})
			}
			if err := tx.Create(&orderItems).Error; err != nil {
				return apperrors.Internal("failed to create order items", err)
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	s.db.Preload("Items").Preload("Items.InventoryItem").Preload("Product").First(order, "id = ?", order.ID)

	if s.notification != nil {
		go s.notification.NotifyOrderPlaced(order, gp.SellerID)
	}

	return order, nil
}

// SetStatus drives the fulfillment state machine. The seller of the parent
// group purchase may perform any valid transition; the buyer may only
// cancel their own order. Canceling an already-canceled order is a no-op
// so restock cannot be applied twice.
func (s *OrderService) SetStatus(actorID, orderID uuid.UUID, req *SetStatusRequest) (*models.Order, error) {
	newStatus := models.OrderStatus(req.Status)
	if !newStatus.Valid() {
		return nil, apperrors.Validation("unknown order status %q", req.Status)
	}

	var order models.Order
	if err := s.db.Preload("GroupPurchase").Preload("Items").First(&order, "id = ?", orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("order")
		}
		return nil, apperrors.Internal("database error", err)
	}

	isSeller := s.access.CanManage(actorID, &order.GroupPurchase)
	isBuyer := order.BuyerID == actorID

	switch {
	case isSeller:
		// any transition
	case isBuyer && newStatus == models.OrderStatusCanceled:
		// buyers may only cancel their own orders
	default:
		return nil, apperrors.Authorization("not allowed to set this order status")
	}

	if order.Status == models.OrderStatusCanceled && newStatus == models.OrderStatusCanceled {
		return &order, nil
	}

	if !order.Status.CanTransitionTo(newStatus) {
		return nil, apperrors.InvalidState("cannot transition order from %s to %s", order.Status, newStatus)
	}

	previous := order.Status
	err := s.db.Transaction(func(tx *gorm.DB) error {
		// The conditional update on the expected prior status is the
		// serialization point: a concurrent transition wins or we do.
		result := tx.Model(&models.Order{}).
			Where("id = ? AND status = ?", orderID, previous).
			Update("status", newStatus)
		if result.Error != nil {
			return apperrors.Internal("failed to update order status", result.Error)
		}
		if result.RowsAffected == 0 {
			return apperrors.Conflict("order status changed concurrently")
		}

		if newStatus == models.OrderStatusCanceled && req.RestockItems {
			if err := s.restock(tx, &order); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	s.db.Preload("Items").Preload("Items.InventoryItem").Preload("Product").First(&order, "id = ?", orderID)

	if s.notification != nil {
		go s.notification.NotifyOrderStatusChanged(&order, previous)
	}

	return &order, nil
}

// restock returns the order's consumed stock to its items, inside the
// caller's transaction. Only items this order exhausted are re-flagged
// available; an item the seller delisted stays delisted.
func (s *OrderService) restock(tx *gorm.DB, order *models.Order) error {
	type restockLine struct {
		itemID   uuid.UUID
		quantity int
	}

	var lines []restockLine
	if order.ProductID != nil {
		lines = append(lines, restockLine{itemID: *order.ProductID, quantity: order.Quantity})
	} else {
		var orderItems []models.OrderItem
		if err := tx.Where("order_id = ?", order.ID).Find(&orderItems).Error; err != nil {
			return apperrors.Internal("failed to fetch order items", err)
		}
		for _, oi := range orderItems {
			lines = append(lines, restockLine{itemID: oi.InventoryItemID, quantity: oi.Quantity})
		}
	}

	for _, line := range lines {
		result := tx.Model(&models.InventoryItem{}).
			Where("id = ?", line.itemID).
			Updates(map[string]interface{}{
				"quantity":  gorm.Expr("quantity + ?", line.quantity),
				"available": gorm.Expr("CASE WHEN quantity = 0 THEN ? ELSE available END", true),
			})
		if result.Error != nil {
			return apperrors.Internal("failed to restock item", result.Error)
		}
	}

	return nil
}

func (s *OrderService) Get(orderID, actorID uuid.UUID) (*models.Order, error) {
	var order models.Order
	if err := s.db.Preload("GroupPurchase").Preload("Items").Preload("Items.InventoryItem").Preload("Product").
		First(&order, "id = ?", orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("order")
		}
		return nil, apperrors.Internal("database error", err)
	}

	if order.BuyerID != actorID && !s.access.CanManage(actorID, &order.GroupPurchase) {
		return nil, apperrors.Authorization("not allowed to view this order")
	}

	return &order, nil
}

func (s *OrderService) GetBuyerOrders(buyerID uuid.UUID, params utils.PaginationParams) ([]models.Order, int64, error) {
	query := s.db.Model(&models.Order{}).
		Where("buyer_id = ?", buyerID).
		Preload("GroupPurchase").Preload("Items").Preload("Product")

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.Internal("failed to count orders", err)
	}

	allowedSortFields := []string{"created_at", "updated_at", "status", "total_amount"}
	query = utils.ApplySort(query, params, allowedSortFields)
	query = utils.ApplyPagination(query, params)

	var orders []models.Order
	if err := query.Find(&orders).Error; err != nil {
		return nil, 0, apperrors.Internal("failed to fetch orders", err)
	}

	return orders, total, nil
}

func (s *OrderService) GetGroupPurchaseOrders(groupPurchaseID, actorID uuid.UUID, params utils.PaginationParams) ([]models.Order, int64, error) {
	var gp models.GroupPurchase
	if err := s.db.First(&gp, "id = ?", groupPurchaseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, 0, apperrors.NotFound("group purchase")
		}
		return nil, 0, apperrors.Internal("database error", err)
	}

	if !s.access.CanManage(actorID, &gp) {
		return nil, 0, apperrors.Authorization("only the seller may list orders for this group purchase")
	}

	query := s.db.Model(&models.Order{}).
		Where("group_purchase_id = ?", groupPurchaseID).
		Preload("Buyer").Preload("Items").Preload("Product")

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.Internal("failed to count orders", err)
	}

	allowedSortFields := []string{"created_at", "updated_at", "status", "total_amount"}
	query = utils.ApplySort(query, params, allowedSortFields)
	query = utils.ApplyPagination(query, params)

	var orders []models.Order
	if err := query.Find(&orders).Error; err != nil {
		return nil, 0, apperrors.Internal("failed to fetch orders", err)
	}

	return orders, total, nil
}

// selectionLines validates the tagged variant and flattens it to lines.
func (s *OrderService) selectionLines(req *PlaceOrderRequest) ([]orderLine, error) {
	if req.Direct != nil && len(req.Items) > 0 {
		return nil, apperrors.Validation("order must be either a single item or an item list, not both")
	}

	if req.Direct != nil {
		if err := utils.ValidateStruct(req.Direct); err != nil {
			return nil, apperrors.Validation("validation failed: %v", err)
		}
		return []orderLine{{itemID: req.Direct.ItemID, quantity: req.Direct.Quantity}}, nil
	}

	if len(req.Items) == 0 {
		return nil, apperrors.Validation("order must contain at least one item")
	}

	seen := make(map[uuid.UUID]bool, len(req.Items))
	lines := make([]orderLine, 0, len(req.Items))
	for _, sel := range req.Items {
		if sel.ItemID == uuid.Nil {
			return nil, apperrors.Validation("item id is required")
		}
		if sel.Quantity < 1 {
			return nil, apperrors.Validation("item quantity must be at least 1")
		}
		if seen[sel.ItemID] {
			return nil, apperrors.Validation("duplicate item %s in order", sel.ItemID)
		}
		seen[sel.ItemID] = true
		lines = append(lines, orderLine{itemID: sel.ItemID, quantity: sel.Quantity})
	}

	return lines, nil
}
