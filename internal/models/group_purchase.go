// internal/models/group_purchase.go
package models

import (
	"time"

	"github.com/google/uuid"
)

type GroupPurchase struct {
	BaseModel
	SellerID      uuid.UUID           `json:"seller_id" gorm:"type:uuid;not null;index"`
	Title         string              `json:"title" gorm:"size:255;not null"`
	Description   string              `json:"description" gorm:"type:text"`
	Type          GroupPurchaseType   `json:"type" gorm:"type:varchar(20);not null;index"`
	Source        string              `json:"source,omitempty" gorm:"size:100"`
	Deadline      *time.Time          `json:"deadline"`
	AdditionalFee float64             `json:"additional_fee" gorm:"type:decimal(10,2);default:0"`
	ShippingNotes string              `json:"shipping_notes,omitempty" gorm:"type:text"`
	Status        GroupPurchaseStatus `json:"status" gorm:"type:varchar(20);default:'open';index"`

	// Relationships
	Seller User            `json:"seller,omitempty" gorm:"foreignKey:SellerID"`
	Items  []InventoryItem `json:"items,omitempty" gorm:"foreignKey:GroupPurchaseID;constraint:OnDelete:CASCADE"`
	Orders []Order         `json:"orders,omitempty" gorm:"foreignKey:GroupPurchaseID"`
}

// IsOpen reports whether new orders and item requests may be created
// against this group purchase.
func (g *GroupPurchase) IsOpen() bool {
	return g.Status == GroupPurchaseStatusOpen
}
