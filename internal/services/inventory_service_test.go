// internal/services/inventory_service_test.go
package services

import (
	"testing"

	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/pocamarket/ceg-backend/internal/apperrors"
	"github.com/pocamarket/ceg-backend/internal/models"
)

type InventoryServiceTestSuite struct {
	suite.Suite
	db      *gorm.DB
	service *InventoryService
	seller  *models.User
	buyer   *models.User
}

func (suite *InventoryServiceTestSuite) SetupSuite() {
	suite.db = newTestDB(suite.T(), "inventory_service")
	suite.service = NewInventoryService(suite.db, NewAccessService(suite.db), nil)
	suite.seller = createTestUser(suite.T(), suite.db, "inv_seller", models.UserRoleSeller)
	suite.buyer = createTestUser(suite.T(), suite.db, "inv_buyer", models.UserRoleBuyer)
}

func (suite *InventoryServiceTestSuite) TestAddDirectIsApprovedImmediately() {
	gp := createTestGroupPurchase(suite.T(), suite.db, suite.seller.ID, models.GroupPurchaseStatusOpen, 0)

	item, err := suite.service.AddDirect(suite.seller.ID, gp.ID, &AddItemRequest{
		Name:     "Haerin OMG photocard",
		Price:    4.50,
		Quantity: 10,
	})

	suite.NoError(err)
	suite.Equal(models.ItemStatusApproved, item.Status)
	suite.True(item.Available)
	suite.Nil(item.RequesterID)
}

func (suite *InventoryServiceTestSuite) TestAddDirectDeniedForNonSeller() {
	gp := createTestGroupPurchase(suite.T(), suite.db, suite.seller.ID, models.GroupPurchaseStatusOpen, 0)

	_, err := suite.service.AddDirect(suite.buyer.ID, gp.ID, &AddItemRequest{
		Name:     "Sneaky item",
		Price:    1,
		Quantity: 1,
	})

	suite.Error(err)
	suite.True(apperrors.IsKind(err, apperrors.KindAuthorization))
}

func (suite *InventoryServiceTestSuite) TestRequestItemStartsPendingAndUnavailable() {
	gp := createTestGroupPurchase(suite.T(), suite.db, suite.seller.ID, models.GroupPurchaseStatusOpen, 0)

	item, err := suite.service.RequestItem(suite.buyer.ID, gp.ID, &RequestItemRequest{
		Name:         "Hanni Ditto photocard",
		RequestNotes: "please add this one",
	})

	suite.NoError(err)
	suite.Equal(models.ItemStatusPending, item.Status)
	suite.False(item.Available)
	suite.Zero(item.Price)
	suite.Zero(item.Quantity)
	suite.NotNil(item.RequesterID)
	suite.Equal(suite.buyer.ID, *item.RequesterID)
}

func (suite *InventoryServiceTestSuite) TestRequestItemRejectedWhenNotOpen() {
	gp := createTestGroupPurchase(suite.T(), suite.db, suite.seller.ID, models.GroupPurchaseStatusClosed, 0)

	_, err := suite.service.RequestItem(suite.buyer.ID, gp.ID, &RequestItemRequest{
		Name: "Too late",
	})

	suite.Error(err)
	suite.True(apperrors.IsKind(err, apperrors.KindInvalidState))

	var count int64
	suite.db.Model(&models.InventoryItem{}).Where("group_purchase_id = ?", gp.ID).Count(&count)
	suite.Zero(count)
}

func (suite *InventoryServiceTestSuite) TestApproveRequiresPriceAndQuantity() {
	gp := createTestGroupPurchase(suite.T(), suite.db, suite.seller.ID, models.GroupPurchaseStatusOpen, 0)
	item := createTestItem(suite.T(), suite.db, gp.ID, "Pending card", 0, 0, models.ItemStatusPending)

	_, err := suite.service.Approve(suite.seller.ID, item.ID, &ApproveItemRequest{})

	suite.Error(err)
	suite.True(apperrors.IsKind(err, apperrors.KindValidation))
}

func (suite *InventoryServiceTestSuite) TestApproveSetsPriceQuantityAndAvailability() {
	gp := createTestGroupPurchase(suite.T(), suite.db, suite.seller.ID, models.GroupPurchaseStatusOpen, 0)
	item := createTestItem(suite.T(), suite.db, gp.ID, "Pending card", 0, 0, models.ItemStatusPending)

	approved, err := suite.service.Approve(suite.seller.ID, item.ID, &ApproveItemRequest{
		Price:    6.00,
		Quantity: 3,
	})

	suite.NoError(err)
	suite.Equal(models.ItemStatusApproved, approved.Status)
	suite.Equal(6.00, approved.Price)
	suite.Equal(3, approved.Quantity)
	suite.True(approved.Available)
	suite.True(approved.Orderable())
}

func (suite *InventoryServiceTestSuite) TestApproveDeniedForNonSeller() {
	gp := createTestGroupPurchase(suite.T(), suite.db, suite.seller.ID, models.GroupPurchaseStatusOpen, 0)
	item := createTestItem(suite.T(), suite.db, gp.ID, "Pending card", 0, 0, models.ItemStatusPending)

	_, err := suite.service.Approve(suite.buyer.ID, item.ID, &ApproveItemRequest{
		Price:    5,
		Quantity: 1,
	})

	suite.Error(err)
	suite.True(apperrors.IsKind(err, apperrors.KindAuthorization))
}

func (suite *InventoryServiceTestSuite) TestRejectRetainsRecordWithReason() {
	gp := createTestGroupPurchase(suite.T(), suite.db, suite.seller.ID, models.GroupPurchaseStatusOpen, 0)
	item := createTestItem(suite.T(), suite.db, gp.ID, "Unwanted card", 0, 0, models.ItemStatusPending)

	rejected, err := suite.service.Reject(suite.seller.ID, item.ID, &RejectItemRequest{
		Reason: "sold out at source",
	})

	suite.NoError(err)
	suite.Equal(models.ItemStatusRejected, rejected.Status)
	suite.False(rejected.Available)
	suite.Equal("sold out at source", rejected.RejectionReason)

	// The record survives rejection.
	var reloaded models.InventoryItem
	suite.NoError(suite.db.First(&reloaded, "id = ?", item.ID).Error)
	suite.Equal(models.ItemStatusRejected, reloaded.Status)
}

func (suite *InventoryServiceTestSuite) TestApproveAlreadyProcessedFails() {
	gp := createTestGroupPurchase(suite.T(), suite.db, suite.seller.ID, models.GroupPurchaseStatusOpen, 0)
	item := createTestItem(suite.T(), suite.db, gp.ID, "Processed card", 5, 2, models.ItemStatusApproved)

	_, err := suite.service.Approve(suite.seller.ID, item.ID, &ApproveItemRequest{
		Price:    5,
		Quantity: 2,
	})

	suite.Error(err)
	suite.True(apperrors.IsKind(err, apperrors.KindInvalidState))
}

func (suite *InventoryServiceTestSuite) TestRequesterMayDeleteOwnRequest() {
	gp := createTestGroupPurchase(suite.T(), suite.db, suite.seller.ID, models.GroupPurchaseStatusOpen, 0)

	item, err := suite.service.RequestItem(suite.buyer.ID, gp.ID, &RequestItemRequest{
		Name: "Withdrawn card",
	})
	suite.NoError(err)

	suite.NoError(suite.service.Delete(suite.buyer.ID, item.ID))

	var count int64
	suite.db.Model(&models.InventoryItem{}).Where("id = ?", item.ID).Count(&count)
	suite.Zero(count)
}

func (suite *InventoryServiceTestSuite) TestStrangerMayNotDelete() {
	gp := createTestGroupPurchase(suite.T(), suite.db, suite.seller.ID, models.GroupPurchaseStatusOpen, 0)
	item := createTestItem(suite.T(), suite.db, gp.ID, "Protected card", 5, 2, models.ItemStatusApproved)
	stranger := createTestUser(suite.T(), suite.db, "inv_stranger", models.UserRoleBuyer)

	err := suite.service.Delete(stranger.ID, item.ID)

	suite.Error(err)
	suite.True(apperrors.IsKind(err, apperrors.KindAuthorization))
}

func (suite *InventoryServiceTestSuite) TestListByGroupPurchaseFiltersStatus() {
	gp := createTestGroupPurchase(suite.T(), suite.db, suite.seller.ID, models.GroupPurchaseStatusOpen, 0)
	createTestItem(suite.T(), suite.db, gp.ID, "Approved card", 5, 2, models.ItemStatusApproved)
	createTestItem(suite.T(), suite.db, gp.ID, "Pending card", 0, 0, models.ItemStatusPending)

	pending := models.ItemStatusPending
	items, total, err := suite.service.ListByGroupPurchase(gp.ID, &pending, testPagination())

	suite.NoError(err)
	suite.Equal(int64(1), total)
	suite.Len(items, 1)
	suite.Equal(models.ItemStatusPending, items[0].Status)
}

func TestInventoryServiceSuite(t *testing.T) {
	suite.Run(t, new(InventoryServiceTestSuite))
}
