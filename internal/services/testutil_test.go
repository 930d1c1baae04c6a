// internal/services/testutil_test.go
package services

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/pocamarket/ceg-backend/internal/models"
	"github.com/pocamarket/ceg-backend/internal/utils"
)

func testPagination() utils.PaginationParams {
	return utils.PaginationParams{
		Page:  1,
		Limit: 20,
		Sort:  "created_at",
		Order: "desc",
	}
}

// newTestDB opens an isolated in-memory database. The shared-cache DSN
// keeps all pooled connections on the same database; the name keeps
// suites apart.
func newTestDB(t *testing.T, name string) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	err = db.AutoMigrate(
		&models.User{},
		&models.GroupPurchase{},
		&models.Photocard{},
		&models.InventoryItem{},
		&models.Order{},
		&models.OrderItem{},
		&models.Notification{},
		&models.AuditLog{},
	)
	if err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return db
}

func createTestUser(t *testing.T, db *gorm.DB, username string, role models.UserRole) *models.User {
	t.Helper()

	user := &models.User{
		Username: username,
		Email:    username + "@example.com",
		Role:     role,
		Status:   models.UserStatusActive,
	}
	if err := user.SetPassword("Sup3r$ecret"); err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	return user
}

func createTestGroupPurchase(t *testing.T, db *gorm.DB, sellerID uuid.UUID, status models.GroupPurchaseStatus, fee float64) *models.GroupPurchase {
	t.Helper()

	gp := &models.GroupPurchase{
		SellerID:      sellerID,
		Title:         "Test Group Purchase",
		Type:          models.GroupPurchaseTypeNational,
		AdditionalFee: fee,
		Status:        status,
	}
	if err := db.Create(gp).Error; err != nil {
		t.Fatalf("failed to create group purchase: %v", err)
	}

	return gp
}

func createTestItem(t *testing.T, db *gorm.DB, gpID uuid.UUID, name string, price float64, quantity int, status models.ItemStatus) *models.InventoryItem {
	t.Helper()

	item := &models.InventoryItem{
		GroupPurchaseID: gpID,
		Name:            name,
		Idol:            "Minji",
		Price:           price,
		Available:       status == models.ItemStatusApproved,
		Quantity:        quantity,
		Status:          status,
	}
	if err := db.Create(item).Error; err != nil {
		t.Fatalf("failed to create inventory item: %v", err)
	}

	return item
}
