// internal/services/access_service.go
package services

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pocamarket/ceg-backend/internal/models"
)

// AccessService centralizes the seller/admin capability check reused by
// every inventory and order management operation.
type AccessService struct {
	db *gorm.DB
}

func NewAccessService(db *gorm.DB) *AccessService {
	return &AccessService{db: db}
}

// CanManage reports whether the actor may manage the group purchase and
// everything scoped to it: the owning seller always can, admins can.
func (s *AccessService) CanManage(actorID uuid.UUID, gp *models.GroupPurchase) bool {
	if gp.SellerID == actorID {
		return true
	}
	return s.IsAdmin(actorID)
}

func (s *AccessService) IsAdmin(actorID uuid.UUID) bool {
	var user models.User
	if err := s.db.First(&user, "id = ?", actorID).Error; err != nil {
		return false
	}
	return user.Role == models.UserRoleAdmin
}
