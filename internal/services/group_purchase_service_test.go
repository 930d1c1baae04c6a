// internal/services/group_purchase_service_test.go
package services

import (
	"testing"

	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/pocamarket/ceg-backend/internal/apperrors"
	"github.com/pocamarket/ceg-backend/internal/models"
)

type GroupPurchaseServiceTestSuite struct {
	suite.Suite
	db      *gorm.DB
	service *GroupPurchaseService
	seller  *models.User
	buyer   *models.User
	admin   *models.User
}

func (suite *GroupPurchaseServiceTestSuite) SetupSuite() {
	suite.db = newTestDB(suite.T(), "group_purchase_service")
	suite.service = NewGroupPurchaseService(suite.db, NewAccessService(suite.db))
	suite.seller = createTestUser(suite.T(), suite.db, "gp_seller", models.UserRoleSeller)
	suite.buyer = createTestUser(suite.T(), suite.db, "gp_buyer", models.UserRoleBuyer)
	suite.admin = createTestUser(suite.T(), suite.db, "gp_admin", models.UserRoleAdmin)
}

func (suite *GroupPurchaseServiceTestSuite) TestCreateNormalizesKoreanType() {
	gp, err := suite.service.Create(suite.seller.ID, &CreateGroupPurchaseRequest{
		Title: "Weverse album preorder",
		Type:  "국내",
	})

	suite.NoError(err)
	suite.Equal(models.GroupPurchaseTypeNational, gp.Type)
	suite.Equal(models.GroupPurchaseStatusOpen, gp.Status)
	suite.Equal(suite.seller.ID, gp.SellerID)
}

func (suite *GroupPurchaseServiceTestSuite) TestCreateRejectsUnknownType() {
	_, err := suite.service.Create(suite.seller.ID, &CreateGroupPurchaseRequest{
		Title: "Bad type",
		Type:  "overseas",
	})

	suite.Error(err)
	suite.True(apperrors.IsKind(err, apperrors.KindValidation))
}

func (suite *GroupPurchaseServiceTestSuite) TestUpdateDeniedForNonSeller() {
	gp := createTestGroupPurchase(suite.T(), suite.db, suite.seller.ID, models.GroupPurchaseStatusOpen, 0)

	newTitle := "Hijacked"
	_, err := suite.service.Update(gp.ID, suite.buyer.ID, &UpdateGroupPurchaseRequest{
		Title: newTitle,
	})

	suite.Error(err)
	suite.True(apperrors.IsKind(err, apperrors.KindAuthorization))
}

func (suite *GroupPurchaseServiceTestSuite) TestUpdateAllowedForAdmin() {
	gp := createTestGroupPurchase(suite.T(), suite.db, suite.seller.ID, models.GroupPurchaseStatusOpen, 0)

	updated, err := suite.service.Update(gp.ID, suite.admin.ID, &UpdateGroupPurchaseRequest{
		Title: "Admin edited",
	})

	suite.NoError(err)
	suite.Equal("Admin edited", updated.Title)
	// Ownership never moves on update.
	suite.Equal(suite.seller.ID, updated.SellerID)
}

func (suite *GroupPurchaseServiceTestSuite) TestUpdateNormalizesKoreanStatus() {
	gp := createTestGroupPurchase(suite.T(), suite.db, suite.seller.ID, models.GroupPurchaseStatusOpen, 0)

	updated, err := suite.service.Update(gp.ID, suite.seller.ID, &UpdateGroupPurchaseRequest{
		Status: "마감",
	})

	suite.NoError(err)
	suite.Equal(models.GroupPurchaseStatusClosed, updated.Status)
}

func (suite *GroupPurchaseServiceTestSuite) TestUpdateRejectsUnknownStatus() {
	gp := createTestGroupPurchase(suite.T(), suite.db, suite.seller.ID, models.GroupPurchaseStatusOpen, 0)

	_, err := suite.service.Update(gp.ID, suite.seller.ID, &UpdateGroupPurchaseRequest{
		Status: "paused",
	})

	suite.Error(err)
	suite.True(apperrors.IsKind(err, apperrors.KindValidation))

	var reloaded models.GroupPurchase
	suite.NoError(suite.db.First(&reloaded, "id = ?", gp.ID).Error)
	suite.Equal(models.GroupPurchaseStatusOpen, reloaded.Status)
}

func (suite *GroupPurchaseServiceTestSuite) TestSearchFiltersByStatus() {
	seller := createTestUser(suite.T(), suite.db, "gp_search_seller", models.UserRoleSeller)
	createTestGroupPurchase(suite.T(), suite.db, seller.ID, models.GroupPurchaseStatusOpen, 0)
	createTestGroupPurchase(suite.T(), suite.db, seller.ID, models.GroupPurchaseStatusClosed, 0)

	open := models.GroupPurchaseStatusOpen
	results, total, err := suite.service.Search(GroupPurchaseSearchParams{
		PaginationParams: testPagination(),
		SellerID:         &seller.ID,
		Status:           &open,
	})

	suite.NoError(err)
	suite.Equal(int64(1), total)
	suite.Len(results, 1)
	suite.Equal(models.GroupPurchaseStatusOpen, results[0].Status)
}

func TestGroupPurchaseServiceSuite(t *testing.T) {
	suite.Run(t, new(GroupPurchaseServiceTestSuite))
}
