// internal/models/notification.go
package models

import (
	"time"

	"github.com/google/uuid"
)

type NotificationType string

const (
	NotificationOrderPlaced          NotificationType = "order_placed"
	NotificationOrderStatusChanged   NotificationType = "order_status_changed"
	NotificationItemRequestSubmitted NotificationType = "item_request_submitted"
	NotificationItemApproved         NotificationType = "item_approved"
	NotificationItemRejected         NotificationType = "item_rejected"
)

// Notification is the in-app record written alongside the event emitted to
// the external notifier. Delivery and read tracking beyond ReadAt live with
// that collaborator.
type Notification struct {
	BaseModel
	UserID              uuid.UUID        `json:"user_id" gorm:"type:uuid;not null;index"`
	Type                NotificationType `json:"type" gorm:"type:varchar(50);not null;index"`
	Title               string           `json:"title" gorm:"size:255;not null"`
	Message             string           `json:"message" gorm:"type:text;not null"`
	RelatedResourceType string           `json:"related_resource_type,omitempty" gorm:"size:50"`
	RelatedResourceID   *uuid.UUID       `json:"related_resource_id" gorm:"type:uuid"`
	ReadAt              *time.Time       `json:"read_at"`

	// Relationships
	User User `json:"user,omitempty" gorm:"foreignKey:UserID"`
}

type AuditLog struct {
	BaseModel
	UserID       *uuid.UUID `json:"user_id" gorm:"type:uuid;index"`
	Action       string     `json:"action" gorm:"size:100;not null;index"`
	ResourceType string     `json:"resource_type" gorm:"size:50;not null;index"`
	ResourceID   *uuid.UUID `json:"resource_id" gorm:"type:uuid;index"`
	NewValues    JSONB      `json:"new_values"`
	IPAddress    string     `json:"ip_address" gorm:"size:45"`
	UserAgent    string     `json:"user_agent" gorm:"type:text"`

	// Relationships
	User *User `json:"user,omitempty" gorm:"foreignKey:UserID"`
}
