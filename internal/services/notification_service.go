// internal/services/notification_service.go
package services

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/pocamarket/ceg-backend/internal/events"
	"github.com/pocamarket/ceg-backend/internal/models"
)

// NotificationService writes the in-app notification record and hands the
// event to the external notifier. Delivery semantics live with the notifier.
type NotificationService struct {
	db        *gorm.DB
	publisher events.Publisher
}

func NewNotificationService(db *gorm.DB, publisher events.Publisher) *NotificationService {
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}
	return &NotificationService{
		db:        db,
		publisher: publisher,
	}
}

func (s *NotificationService) NotifyOrderPlaced(order *models.Order, sellerID uuid.UUID) {
	s.record(sellerID, models.NotificationOrderPlaced,
		"New order",
		fmt.Sprintf("A new order of %.2f was placed on your group purchase", order.TotalAmount),
		"order", order.ID)

	s.emit(events.Event{
		Type:       string(models.NotificationOrderPlaced),
		ResourceID: order.ID.String(),
		UserID:     order.BuyerID.String(),
		Payload: map[string]interface{}{
			"group_purchase_id": order.GroupPurchaseID.String(),
			"total_amount":      order.TotalAmount,
			"status":            order.Status,
		},
		Occurred: time.Now(),
	})
}

func (s *NotificationService) NotifyOrderStatusChanged(order *models.Order, previous models.OrderStatus) {
	s.record(order.BuyerID, models.NotificationOrderStatusChanged,
		"Order status updated",
		fmt.Sprintf("Your order is now %s", order.Status),
		"order", order.ID)

	s.emit(events.Event{
		Type:       string(models.NotificationOrderStatusChanged),
		ResourceID: order.ID.String(),
		UserID:     order.BuyerID.String(),
		Payload: map[string]interface{}{
			"previous_status": previous,
			"status":          order.Status,
		},
		Occurred: time.Now(),
	})
}

func (s *NotificationService) NotifyItemRequested(item *models.InventoryItem, sellerID uuid.UUID) {
	s.record(sellerID, models.NotificationItemRequestSubmitted,
		"New item request",
		fmt.Sprintf("A buyer requested %q on your group purchase", item.Name),
		"inventory_item", item.ID)

	s.emit(events.Event{
		Type:       string(models.NotificationItemRequestSubmitted),
		ResourceID: item.ID.String(),
		Payload: map[string]interface{}{
			"group_purchase_id": item.GroupPurchaseID.String(),
			"name":              item.Name,
		},
		Occurred: time.Now(),
	})
}

func (s *NotificationService) NotifyItemApproved(item *models.InventoryItem) {
	if item.RequesterID != nil {
		s.record(*item.RequesterID, models.NotificationItemApproved,
			"Item request approved",
			fmt.Sprintf("Your request for %q was approved at %.2f", item.Name, item.Price),
			"inventory_item", item.ID)
	}

	s.emit(events.Event{
		Type:       string(models.NotificationItemApproved),
		ResourceID: item.ID.String(),
		Payload: map[string]interface{}{
			"group_purchase_id": item.GroupPurchaseID.String(),
			"price":             item.Price,
			"quantity":          item.Quantity,
		},
		Occurred: time.Now(),
	})
}

func (s *NotificationService) NotifyItemRejected(item *models.InventoryItem) {
	if item.RequesterID != nil {
		s.record(*item.RequesterID, models.NotificationItemRejected,
			"Item request rejected",
			fmt.Sprintf("Your request for %q was rejected", item.Name),
			"inventory_item", item.ID)
	}

	s.emit(events.Event{
		Type:       string(models.NotificationItemRejected),
		ResourceID: item.ID.String(),
		Payload: map[string]interface{}{
			"group_purchase_id": item.GroupPurchaseID.String(),
			"reason":            item.RejectionReason,
		},
		Occurred: time.Now(),
	})
}

func (s *NotificationService) GetUserNotifications(userID uuid.UUID, limit int) ([]models.Notification, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	var notifications []models.Notification
	if err := s.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&notifications).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch notifications: %w", err)
	}

	return notifications, nil
}

func (s *NotificationService) MarkRead(userID, notificationID uuid.UUID) error {
	now := time.Now()
	return s.db.Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", notificationID, userID).
		Update("read_at", &now).Error
}

func (s *NotificationService) record(userID uuid.UUID, typ models.NotificationType, title, message, resourceType string, resourceID uuid.UUID) {
	notification := &models.Notification{
		UserID:              userID,
		Type:                typ,
		Title:               title,
		Message:             message,
		RelatedResourceType: resourceType,
		RelatedResourceID:   &resourceID,
	}

	if err := s.db.Create(notification).Error; err != nil {
		logrus.WithError(err).Error("failed to create notification")
	}
}

func (s *NotificationService) emit(event events.Event) {
	if err := s.publisher.Publish(event); err != nil {
		logrus.WithError(err).WithField("type", event.Type).Error("failed to publish event")
	}
}
