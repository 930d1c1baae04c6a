// internal/models/common.go
package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// Base model with common fields
type BaseModel struct {
	ID        uuid.UUID      `json:"id" gorm:"type:uuid;primary_key"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

func (b *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// JSONB type for PostgreSQL (stored as plain text on sqlite)
type JSONB map[string]interface{}

func (JSONB) GormDBDataType(db *gorm.DB, field *schema.Field) string {
	switch db.Dialector.Name() {
	case "postgres":
		return "JSONB"
	default:
		return "TEXT"
	}
}

func (j JSONB) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

func (j *JSONB) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}

	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, j)
	case string:
		return json.Unmarshal([]byte(v), j)
	}
	return nil
}

// Enums
type UserRole string

const (
	UserRoleSeller UserRole = "seller"
	UserRoleBuyer  UserRole = "buyer"
	UserRoleAdmin  UserRole = "admin"
)

type UserStatus string

const (
	UserStatusActive    UserStatus = "active"
	UserStatusSuspended UserStatus = "suspended"
)

type GroupPurchaseType string

const (
	GroupPurchaseTypeNational      GroupPurchaseType = "national"
	GroupPurchaseTypeInternational GroupPurchaseType = "international"
)

type GroupPurchaseStatus string

const (
	GroupPurchaseStatusOpen       GroupPurchaseStatus = "open"
	GroupPurchaseStatusClosed     GroupPurchaseStatus = "closed"
	GroupPurchaseStatusProcessing GroupPurchaseStatus = "processing"
	GroupPurchaseStatusFinished   GroupPurchaseStatus = "finished"
	GroupPurchaseStatusCanceled   GroupPurchaseStatus = "canceled"
)

type ItemStatus string

const (
	ItemStatusPending  ItemStatus = "pending"
	ItemStatusApproved ItemStatus = "approved"
	ItemStatusRejected ItemStatus = "rejected"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusPaid      OrderStatus = "paid"
	OrderStatusShipped   OrderStatus = "shipped"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCanceled  OrderStatus = "canceled"
)

// The public site historically used Korean labels for group purchase types
// and statuses. These maps normalize either vocabulary to the canonical
// enum at the boundary; unrecognized input passes through unchanged so the
// canonical-set validation can reject it with a useful message.
var groupPurchaseTypeAliases = map[string]GroupPurchaseType{
	"국내": GroupPurchaseTypeNational,
	"해외": GroupPurchaseTypeInternational,
}

var groupPurchaseStatusAliases = map[string]GroupPurchaseStatus{
	"진행중": GroupPurchaseStatusOpen,
	"마감":  GroupPurchaseStatusClosed,
	"준비중": GroupPurchaseStatusProcessing,
	"완료":  GroupPurchaseStatusFinished,
	"취소":  GroupPurchaseStatusCanceled,
}

func NormalizeGroupPurchaseType(s string) GroupPurchaseType {
	if t, ok := groupPurchaseTypeAliases[s]; ok {
		return t
	}
	return GroupPurchaseType(s)
}

func NormalizeGroupPurchaseStatus(s string) GroupPurchaseStatus {
	if st, ok := groupPurchaseStatusAliases[s]; ok {
		return st
	}
	return GroupPurchaseStatus(s)
}

func (t GroupPurchaseType) Valid() bool {
	switch t {
	case GroupPurchaseTypeNational, GroupPurchaseTypeInternational:
		return true
	}
	return false
}

func (s GroupPurchaseStatus) Valid() bool {
	switch s {
	case GroupPurchaseStatusOpen, GroupPurchaseStatusClosed, GroupPurchaseStatusProcessing,
		GroupPurchaseStatusFinished, GroupPurchaseStatusCanceled:
		return true
	}
	return false
}

func (s ItemStatus) Valid() bool {
	switch s {
	case ItemStatusPending, ItemStatusApproved, ItemStatusRejected:
		return true
	}
	return false
}

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusConfirmed, OrderStatusPaid,
		OrderStatusShipped, OrderStatusDelivered, OrderStatusCanceled:
		return true
	}
	return false
}

// orderTransitions is the canonical fulfillment state machine. Cancellation
// is reachable from every non-terminal state; delivered and canceled are
// terminal.
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:   {OrderStatusConfirmed, OrderStatusCanceled},
	OrderStatusConfirmed: {OrderStatusPaid, OrderStatusShipped, OrderStatusCanceled},
	OrderStatusPaid:      {OrderStatusShipped, OrderStatusCanceled},
	OrderStatusShipped:   {OrderStatusDelivered, OrderStatusCanceled},
	OrderStatusDelivered: {},
	OrderStatusCanceled:  {},
}

func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}
