// internal/services/order_service_test.go
package services

import (
	"testing"

	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/pocamarket/ceg-backend/internal/apperrors"
	"github.com/pocamarket/ceg-backend/internal/models"
)

type OrderServiceTestSuite struct {
	suite.Suite
	db      *gorm.DB
	service *OrderService
	seller  *models.User
	buyer   *models.User
}

func (suite *OrderServiceTestSuite) SetupSuite() {
	suite.db = newTestDB(suite.T(), "order_service")
	suite.service = NewOrderService(suite.db, NewAccessService(suite.db), nil)
	suite.seller = createTestUser(suite.T(), suite.db, "ord_seller", models.UserRoleSeller)
	suite.buyer = createTestUser(suite.T(), suite.db, "ord_buyer", models.UserRoleBuyer)
}

func (suite *OrderServiceTestSuite) TestBasketOrderTotalIncludesFeeOnce() {
	gp := createTestGroupPurchase(suite.T(), suite.db, suite.seller.ID, models.GroupPurchaseStatusOpen, 2.00)
	cardA := createTestItem(suite.T(), suite.db, gp.ID, "Card A", 5.00, 10, models.ItemStatusApproved)
	cardB := createTestItem(suite.T(), suite.db, gp.ID, "Card B", 10.00, 10, models.ItemStatusApproved)

	order, err := suite.service.PlaceOrder(suite.buyer.ID, gp.ID, &PlaceOrderRequest{
		Items: []BasketSelection{
			{ItemID: cardA.ID, Quantity: 2},
			{ItemID: cardB.ID, Quantity: 1},
		},
	})

	suite.NoError(err)
	suite.Equal(models.OrderStatusPending, order.Status)
	// 2 x 5.00 + 1 x 10.00 + 2.00 fee
	suite.InDelta(22.00, order.TotalAmount, 0.001)
	suite.Len(order.Items, 2)

	var reloadedA models.InventoryItem
	suite.NoError(suite.db.First(&reloadedA, "id = ?", cardA.ID).Error)
	suite.Equal(8, reloadedA.Quantity)
}

func (suite *OrderServiceTestSuite) TestOrderRejectedWhenGroupPurchaseNotOpen() {
	gp := createTestGroupPurchase(suite.T(), suite.db, suite.seller.ID, models.GroupPurchaseStatusClosed, 0)
	card := createTestItem(suite.T(), suite.db, gp.ID, "Closed card", 5.00, 10, models.ItemStatusApproved)

	_, err := suite.service.PlaceOrder(suite.buyer.ID, gp.ID, &PlaceOrderRequest{
		Items: []BasketSelection{{ItemID: card.ID, Quantity: 1}},
	})

	suite.Error(err)
	suite.True(apperrors.IsKind(err, apperrors.KindInvalidState))
}

func (suite *OrderServiceTestSuite) TestPendingItemAbortsWholeOrder() {
	gp := createTestGroupPurchase(suite.T(), suite.db, suite.seller.ID, models.GroupPurchaseStatusOpen, 0)
	approved := createTestItem(suite.T(), suite.db, gp.ID, "Sellable", 5.00, 10, models.ItemStatusApproved)
	pending := createTestItem(suite.T(), suite.db, gp.ID, "Not yet", 0, 0, models.ItemStatusPending)

	_, err := suite.service.PlaceOrder(suite.buyer.ID, gp.ID, &PlaceOrderRequest{
		Items: []BasketSelection{
			{ItemID: approved.ID, Quantity: 1},
			{ItemID: pending.ID, Quantity: 1},
		},
	})

	suite.Error(err)
	suite.True(apperrors.IsKind(err, apperrors.KindValidation))
	suite.Contains(err.Error(), pending.ID.String())

	// No partial order, no stock consumed.
	var orderCount int64
	suite.db.Model(&models.Order{}).Where("buyer_id = ? AND group_purchase_id = ?", suite.buyer.ID, gp.ID).Count(&orderCount)
	suite.Zero(orderCount)

	var reloaded models.InventoryItem
	suite.NoError(suite.db.First(&reloaded, "id = ?", approved.ID).Error)
	suite.Equal(10, reloaded.Quantity)
}

func (suite *OrderServiceTestSuite) TestInsufficientStockRollsBackEverything() {
	gp := createTestGroupPurchase(suite.T(), suite.db, suite.seller.ID, models.GroupPurchaseStatusOpen, 0)
	plentiful := createTestItem(suite.T(), suite.db, gp.ID, "Plenty", 5.00, 10, models.ItemStatusApproved)
	scarce := createTestItem(suite.T(), suite.db, gp.ID, "Scarce", 5.00, 1, models.ItemStatusApproved)

	_, err := suite.service.PlaceOrder(suite.buyer.ID, gp.ID, &PlaceOrderRequest{
		Items: []BasketSelection{
			{ItemID: plentiful.ID, Quantity: 2},
			{ItemID: scarce.ID, Quantity: 3},
		},
	})

	suite.Error(err)
	suite.True(apperrors.IsKind(err, apperrors.KindConflict))

	var reloaded models.InventoryItem
	suite.NoError(suite.db.First(&reloaded, "id = ?", plentiful.ID).Error)
	suite.Equal(10, reloaded.Quantity)
	suite.NoError(suite.db.First(&reloaded, "id = ?", scarce.ID).Error)
	suite.Equal(1, reloaded.Quantity)
}

func (suite *OrderServiceTestSuite) TestDirectOrderPriceOverrideRequiresSeller() {
	gp := createTestGroupPurchase(suite.T(), suite.db, suite.seller.ID, models.GroupPurchaseStatusOpen, 0)
	card := createTestItem(suite.T(), suite.db, gp.ID, "Negotiated", 5.00, 10, models.ItemStatusApproved)

	override := 3.00
	_, err := suite.service.PlaceOrder(suite.buyer.ID, gp.ID, &PlaceOrderRequest{
		Direct: &DirectSelection{ItemID: card.ID, Quantity: 1, PriceOverride: &override},
	})

	suite.Error(err)
	suite.True(apperrors.IsKind(err, apperrors.KindAuthorization))

	order, err := suite.service.PlaceOrder(suite.seller.ID, gp.ID, &PlaceOrderRequest{
		Direct: &DirectSelection{ItemID: card.ID, Quantity: 1, PriceOverride: &override},
	})

	suite.NoError(err)
	suite.InDelta(3.00, order.UnitPrice, 0.001)
	suite.InDelta(3.00, order.TotalAmount, 0.001)
}

func (suite *OrderServiceTestSuite) TestDirectAndBasketAreMutuallyExclusive() {
	gp := createTestGroupPurchase(suite.T(), suite.db, suite.seller.ID, models.GroupPurchaseStatusOpen, 0)
	card := createTestItem(suite.T(), suite.db, gp.ID, "Either or", 5.00, 10, models.ItemStatusApproved)

	_, err := suite.service.PlaceOrder(suite.buyer.ID, gp.ID, &PlaceOrderRequest{
		Direct: &DirectSelection{ItemID: card.ID, Quantity: 1},
		Items:  []BasketSelection{{ItemID: card.ID, Quantity: 1}},
	})

	suite.Error(err)
	suite.True(apperrors.IsKind(err, apperrors.KindValidation))
}

func (suite *OrderServiceTestSuite) TestEmptyOrderRejected() {
	gp := createTestGroupPurchase(suite.T(), suite.db, suite.seller.ID, models.GroupPurchaseStatusOpen, 0)

	_, err := suite.service.PlaceOrder(suite.buyer.ID, gp.ID, &PlaceOrderRequest{})

	suite.Error(err)
	suite.True(apperrors.IsKind(err, apperrors.KindValidation))
}

func (suite *OrderServiceTestSuite) TestCancelWithRestockReturnsStock() {
	gp := createTestGroupPurchase(suite.T(), suite.db, suite.seller.ID, models.GroupPurchaseStatusOpen, 0)
	card := createTestItem(suite.T(), suite.db, gp.ID, "Restocked", 5.00, 5, models.ItemStatusApproved)

	order, err := suite.service.PlaceOrder(suite.buyer.ID, gp.ID, &PlaceOrderRequest{
		Items: []BasketSelection{{ItemID: card.ID, Quantity: 2}},
	})
	suite.NoError(err)

	var reloaded models.InventoryItem
	suite.NoError(suite.db.First(&reloaded, "id = ?", card.ID).Error)
	suite.Equal(3, reloaded.Quantity)

	canceled, err := suite.service.SetStatus(suite.seller.ID, order.ID, &SetStatusRequest{
		Status:       string(models.OrderStatusCanceled),
		RestockItems: true,
	})

	suite.NoError(err)
	suite.Equal(models.OrderStatusCanceled, canceled.Status)

	suite.NoError(suite.db.First(&reloaded, "id = ?", card.ID).Error)
	suite.Equal(5, reloaded.Quantity)
	suite.True(reloaded.Available)
}

func (suite *OrderServiceTestSuite) TestDirectOrderRestockReenablesExhaustedItem() {
	gp := createTestGroupPurchase(suite.T(), suite.db, suite.seller.ID, models.GroupPurchaseStatusOpen, 0)
	card := createTestItem(suite.T(), suite.db, gp.ID, "Last copies", 5.00, 2, models.ItemStatusApproved)

	order, err := suite.service.PlaceOrder(suite.buyer.ID, gp.ID, &PlaceOrderRequest{
		Direct: &DirectSelection{ItemID: card.ID, Quantity: 2},
	})
	suite.NoError(err)
	suite.NotNil(order.ProductID)

	// Sold out, seller marks it unavailable.
	suite.NoError(suite.db.Model(&models.InventoryItem{}).Where("id = ?", card.ID).
		Update("available", false).Error)

	_, err = suite.service.SetStatus(suite.seller.ID, order.ID, &SetStatusRequest{
		Status:       string(models.OrderStatusCanceled),
		RestockItems: true,
	})
	suite.NoError(err)

	var reloaded models.InventoryItem
	suite.NoError(suite.db.First(&reloaded, "id = ?", card.ID).Error)
	suite.Equal(2, reloaded.Quantity)
	suite.True(reloaded.Available)
}

func (suite *OrderServiceTestSuite) TestRestockKeepsDelistedItemDelisted() {
	gp := createTestGroupPurchase(suite.T(), suite.db, suite.seller.ID, models.GroupPurchaseStatusOpen, 0)
	card := createTestItem(suite.T(), suite.db, gp.ID, "Delisted", 5.00, 5, models.ItemStatusApproved)

	order, err := suite.service.PlaceOrder(suite.buyer.ID, gp.ID, &PlaceOrderRequest{
		Items: []BasketSelection{{ItemID: card.ID, Quantity: 2}},
	})
	suite.NoError(err)

	// Seller pulls the item while stock remains.
	suite.NoError(suite.db.Model(&models.InventoryItem{}).Where("id = ?", card.ID).
		Update("available", false).Error)

	_, err = suite.service.SetStatus(suite.seller.ID, order.ID, &SetStatusRequest{
		Status:       string(models.OrderStatusCanceled),
		RestockItems: true,
	})
	suite.NoError(err)

	var reloaded models.InventoryItem
	suite.NoError(suite.db.First(&reloaded, "id = ?", card.ID).Error)
	suite.Equal(5, reloaded.Quantity)
	suite.False(reloaded.Available)
}

func (suite *OrderServiceTestSuite) TestCancelOfCanceledIsNoOp() {
	gp := createTestGroupPurchase(suite.T(), suite.db, suite.seller.ID, models.GroupPurchaseStatusOpen, 0)
	card := createTestItem(suite.T(), suite.db, gp.ID, "Once only", 5.00, 5, models.ItemStatusApproved)

	order, err := suite.service.PlaceOrder(suite.buyer.ID, gp.ID, &PlaceOrderRequest{
		Items: []BasketSelection{{ItemID: card.ID, Quantity: 2}},
	})
	suite.NoError(err)

	_, err = suite.service.SetStatus(suite.seller.ID, order.ID, &SetStatusRequest{
		Status:       string(models.OrderStatusCanceled),
		RestockItems: true,
	})
	suite.NoError(err)

	// Second cancel must not restock again.
	again, err := suite.service.SetStatus(suite.seller.ID, order.ID, &SetStatusRequest{
		Status:       string(models.OrderStatusCanceled),
		RestockItems: true,
	})
	suite.NoError(err)
	suite.Equal(models.OrderStatusCanceled, again.Status)

	var reloaded models.InventoryItem
	suite.NoError(suite.db.First(&reloaded, "id = ?", card.ID).Error)
	suite.Equal(5, reloaded.Quantity)
}

func (suite *OrderServiceTestSuite) TestBuyerMayOnlyCancel() {
	gp := createTestGroupPurchase(suite.T(), suite.db, suite.seller.ID, models.GroupPurchaseStatusOpen, 0)
	card := createTestItem(suite.T(), suite.db, gp.ID, "Sellers move it", 5.00, 5, models.ItemStatusApproved)

	order, err := suite.service.PlaceOrder(suite.buyer.ID, gp.ID, &PlaceOrderRequest{
		Items: []BasketSelection{{ItemID: card.ID, Quantity: 1}},
	})
	suite.NoError(err)

	_, err = suite.service.SetStatus(suite.buyer.ID, order.ID, &SetStatusRequest{
		Status: string(models.OrderStatusShipped),
	})

	suite.Error(err)
	suite.True(apperrors.IsKind(err, apperrors.KindAuthorization))

	canceled, err := suite.service.SetStatus(suite.buyer.ID, order.ID, &SetStatusRequest{
		Status: string(models.OrderStatusCanceled),
	})
	suite.NoError(err)
	suite.Equal(models.OrderStatusCanceled, canceled.Status)
}

func (suite *OrderServiceTestSuite) TestBuyerMayNotCancelOthersOrders() {
	gp := createTestGroupPurchase(suite.T(), suite.db, suite.seller.ID, models.GroupPurchaseStatusOpen, 0)
	card := createTestItem(suite.T(), suite.db, gp.ID, "Not yours", 5.00, 5, models.ItemStatusApproved)
	other := createTestUser(suite.T(), suite.db, "ord_other_buyer", models.UserRoleBuyer)

	order, err := suite.service.PlaceOrder(suite.buyer.ID, gp.ID, &PlaceOrderRequest{
		Items: []BasketSelection{{ItemID: card.ID, Quantity: 1}},
	})
	suite.NoError(err)

	_, err = suite.service.SetStatus(other.ID, order.ID, &SetStatusRequest{
		Status: string(models.OrderStatusCanceled),
	})

	suite.Error(err)
	suite.True(apperrors.IsKind(err, apperrors.KindAuthorization))
}

func (suite *OrderServiceTestSuite) TestInvalidTransitionRejected() {
	gp := createTestGroupPurchase(suite.T(), suite.db, suite.seller.ID, models.GroupPurchaseStatusOpen, 0)
	card := createTestItem(suite.T(), suite.db, gp.ID, "Stepwise", 5.00, 5, models.ItemStatusApproved)

	order, err := suite.service.PlaceOrder(suite.buyer.ID, gp.ID, &PlaceOrderRequest{
		Items: []BasketSelection{{ItemID: card.ID, Quantity: 1}},
	})
	suite.NoError(err)

	// pending -> delivered skips the whole pipeline.
	_, err = suite.service.SetStatus(suite.seller.ID, order.ID, &SetStatusRequest{
		Status: string(models.OrderStatusDelivered),
	})

	suite.Error(err)
	suite.True(apperrors.IsKind(err, apperrors.KindInvalidState))
}

func (suite *OrderServiceTestSuite) TestUnknownStatusRejected() {
	gp := createTestGroupPurchase(suite.T(), suite.db, suite.seller.ID, models.GroupPurchaseStatusOpen, 0)
	card := createTestItem(suite.T(), suite.db, gp.ID, "No such state", 5.00, 5, models.ItemStatusApproved)

	order, err := suite.service.PlaceOrder(suite.buyer.ID, gp.ID, &PlaceOrderRequest{
		Items: []BasketSelection{{ItemID: card.ID, Quantity: 1}},
	})
	suite.NoError(err)

	_, err = suite.service.SetStatus(suite.seller.ID, order.ID, &SetStatusRequest{
		Status: "refunded",
	})

	suite.Error(err)
	suite.True(apperrors.IsKind(err, apperrors.KindValidation))
}

func (suite *OrderServiceTestSuite) TestFullLifecycle() {
	gp := createTestGroupPurchase(suite.T(), suite.db, suite.seller.ID, models.GroupPurchaseStatusOpen, 0)
	card := createTestItem(suite.T(), suite.db, gp.ID, "Lifecycle", 5.00, 5, models.ItemStatusApproved)

	order, err := suite.service.PlaceOrder(suite.buyer.ID, gp.ID, &PlaceOrderRequest{
		Items: []BasketSelection{{ItemID: card.ID, Quantity: 1}},
	})
	suite.NoError(err)

	for _, next := range []models.OrderStatus{
		models.OrderStatusConfirmed,
		models.OrderStatusPaid,
		models.OrderStatusShipped,
		models.OrderStatusDelivered,
	} {
		order, err = suite.service.SetStatus(suite.seller.ID, order.ID, &SetStatusRequest{
			Status: string(next),
		})
		suite.NoError(err)
		suite.Equal(next, order.Status)
	}

	// Delivered is terminal.
	_, err = suite.service.SetStatus(suite.seller.ID, order.ID, &SetStatusRequest{
		Status: string(models.OrderStatusCanceled),
	})
	suite.Error(err)
	suite.True(apperrors.IsKind(err, apperrors.KindInvalidState))
}

func (suite *OrderServiceTestSuite) TestGetBuyerOrders() {
	gp := createTestGroupPurchase(suite.T(), suite.db, suite.seller.ID, models.GroupPurchaseStatusOpen, 0)
	card := createTestItem(suite.T(), suite.db, gp.ID, "Mine", 5.00, 5, models.ItemStatusApproved)
	buyer := createTestUser(suite.T(), suite.db, "ord_list_buyer", models.UserRoleBuyer)

	_, err := suite.service.PlaceOrder(buyer.ID, gp.ID, &PlaceOrderRequest{
		Items: []BasketSelection{{ItemID: card.ID, Quantity: 1}},
	})
	suite.NoError(err)

	orders, total, err := suite.service.GetBuyerOrders(buyer.ID, testPagination())

	suite.NoError(err)
	suite.Equal(int64(1), total)
	suite.Len(orders, 1)
	suite.Equal(buyer.ID, orders[0].BuyerID)
}

func (suite *OrderServiceTestSuite) TestGroupPurchaseOrdersVisibleToSellerOnly() {
	gp := createTestGroupPurchase(suite.T(), suite.db, suite.seller.ID, models.GroupPurchaseStatusOpen, 0)
	card := createTestItem(suite.T(), suite.db, gp.ID, "Seller view", 5.00, 5, models.ItemStatusApproved)

	_, err := suite.service.PlaceOrder(suite.buyer.ID, gp.ID, &PlaceOrderRequest{
		Items: []BasketSelection{{ItemID: card.ID, Quantity: 1}},
	})
	suite.NoError(err)

	_, _, err = suite.service.GetGroupPurchaseOrders(gp.ID, suite.buyer.ID, testPagination())
	suite.Error(err)
	suite.True(apperrors.IsKind(err, apperrors.KindAuthorization))

	orders, total, err := suite.service.GetGroupPurchaseOrders(gp.ID, suite.seller.ID, testPagination())
	suite.NoError(err)
	suite.GreaterOrEqual(total, int64(1))
	suite.NotEmpty(orders)
}

func TestOrderServiceSuite(t *testing.T) {
	suite.Run(t, new(OrderServiceTestSuite))
}
