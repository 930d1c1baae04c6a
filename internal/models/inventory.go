// internal/models/inventory.go
package models

import (
	"github.com/google/uuid"
)

// Photocard is the catalog-level record an inventory item may link to.
// Cross-listing aggregation groups sellable items across group purchases
// by this id when set.
type Photocard struct {
	BaseModel
	Name       string `json:"name" gorm:"size:255;not null;index"`
	Idol       string `json:"idol" gorm:"size:100;not null;index"`
	IdolGroup  string `json:"idol_group" gorm:"size:100;index"`
	Era        string `json:"era" gorm:"size:100"`
	Collection string `json:"collection" gorm:"size:100"`
	ImageURL   string `json:"image_url" gorm:"size:500"`

	// Relationships
	Items []InventoryItem `json:"items,omitempty" gorm:"foreignKey:PhotocardID"`
}

// InventoryItem is a sellable (or pending-request) line entry scoped to
// one group purchase. An item is orderable only when it is approved,
// available, and has stock left, and its parent group purchase is open.
type InventoryItem struct {
	BaseModel
	GroupPurchaseID uuid.UUID  `json:"group_purchase_id" gorm:"type:uuid;not null;index"`
	Name            string     `json:"name" gorm:"size:255;not null"`
	Idol            string     `json:"idol" gorm:"size:100;index"`
	IdolGroup       string     `json:"idol_group" gorm:"size:100"`
	Era             string     `json:"era" gorm:"size:100"`
	Collection      string     `json:"collection" gorm:"size:100"`
	Price           float64    `json:"price" gorm:"type:decimal(10,2);default:0"`
	ImageURL        string     `json:"image_url" gorm:"size:500"`
	Available       bool       `json:"available" gorm:"default:true"`
	Quantity        int        `json:"quantity" gorm:"default:0"`
	Status          ItemStatus `json:"status" gorm:"type:varchar(20);default:'pending';index"`
	RequesterID     *uuid.UUID `json:"requester_id" gorm:"type:uuid;index"`
	RequestNotes    string     `json:"request_notes,omitempty" gorm:"type:text"`
	RejectionReason string     `json:"rejection_reason,omitempty" gorm:"type:text"`
	PhotocardID     *uuid.UUID `json:"photocard_id" gorm:"type:uuid;index"`

	// Relationships
	GroupPurchase GroupPurchase `json:"group_purchase,omitempty" gorm:"foreignKey:GroupPurchaseID"`
	Requester     *User         `json:"requester,omitempty" gorm:"foreignKey:RequesterID"`
	Photocard     *Photocard    `json:"photocard,omitempty" gorm:"foreignKey:PhotocardID"`
}

func (i *InventoryItem) Orderable() bool {
	return i.Status == ItemStatusApproved && i.Available && i.Quantity > 0
}
