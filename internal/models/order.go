// internal/models/order.go
package models

import (
	"github.com/google/uuid"
)

// Order is created atomically with its items by the placement engine and
// afterwards mutated only through the status state machine. A direct
// single-item order carries ProductID/Quantity/UnitPrice inline; a basket
// order leaves ProductID nil and carries OrderItems.
type Order struct {
	BaseModel
	BuyerID         uuid.UUID   `json:"buyer_id" gorm:"type:uuid;not null;index"`
	GroupPurchaseID uuid.UUID   `json:"group_purchase_id" gorm:"type:uuid;not null;index"`
	ProductID       *uuid.UUID  `json:"product_id" gorm:"type:uuid;index"`
	Quantity        int         `json:"quantity" gorm:"default:0"`
	UnitPrice       float64     `json:"unit_price" gorm:"type:decimal(10,2);default:0"`
	Status          OrderStatus `json:"status" gorm:"type:varchar(20);default:'pending';index"`
	TotalAmount     float64     `json:"total_amount" gorm:"type:decimal(10,2);not null"`
	ContactInfo     JSONB       `json:"contact_info"`
	Notes           string      `json:"notes,omitempty" gorm:"type:text"`

	// Relationships
	Buyer         User           `json:"buyer,omitempty" gorm:"foreignKey:BuyerID"`
	GroupPurchase GroupPurchase  `json:"group_purchase,omitempty" gorm:"foreignKey:GroupPurchaseID"`
	Product       *InventoryItem `json:"product,omitempty" gorm:"foreignKey:ProductID"`
	Items         []OrderItem    `json:"items,omitempty" gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
}

// OrderItem snapshots the unit price at order time; it never tracks live
// price changes on the inventory item.
type OrderItem struct {
	BaseModel
	OrderID         uuid.UUID `json:"order_id" gorm:"type:uuid;not null;index"`
	InventoryItemID uuid.UUID `json:"inventory_item_id" gorm:"type:uuid;not null;index"`
	Quantity        int       `json:"quantity" gorm:"not null"`
	UnitPrice       float64   `json:"unit_price" gorm:"type:decimal(10,2);not null"`

	// Relationships
	Order         Order         `json:"order,omitempty" gorm:"foreignKey:OrderID"`
	InventoryItem InventoryItem `json:"inventory_item,omitempty" gorm:"foreignKey:InventoryItemID"`
}
