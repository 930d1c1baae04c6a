// internal/i18n/keys.go
package i18n

// Translation keys constants
const (
	// Common
	KeySuccess = "success"
	KeyError   = "error"

	// Authentication
	KeyAuthRequired           = "auth.required"
	KeyAuthInvalidToken       = "auth.invalid_token"
	KeyAuthTokenExpired       = "auth.token_expired"
	KeyAuthInvalidCredentials = "auth.invalid_credentials"
	KeyAuthUserExists         = "auth.user_exists"
	KeyAuthLoginSuccess       = "auth.login_success"
	KeyAuthRegisterSuccess    = "auth.register_success"
	KeyAccessDenied           = "auth.access_denied"

	// Group purchases
	KeyGroupPurchaseCreated  = "group_purchase.created"
	KeyGroupPurchaseUpdated  = "group_purchase.updated"
	KeyGroupPurchaseNotFound = "group_purchase.not_found"
	KeyGroupPurchaseNotOpen  = "group_purchase.not_open"

	// Inventory items
	KeyItemCreated   = "item.created"
	KeyItemRequested = "item.requested"
	KeyItemApproved  = "item.approved"
	KeyItemRejected  = "item.rejected"
	KeyItemUpdated   = "item.updated"
	KeyItemDeleted   = "item.deleted"
	KeyItemNotFound  = "item.not_found"

	// Orders
	KeyOrderPlaced        = "order.placed"
	KeyOrderNotFound      = "order.not_found"
	KeyOrderStatusUpdated = "order.status_updated"
	KeyOrderOutOfStock    = "order.out_of_stock"

	// Validation
	KeyValidationRequired = "validation.required"
	KeyValidationInvalid  = "validation.invalid"

	// File Upload
	KeyFileUploadSuccess = "file.upload_success"
	KeyFileUploadFailed  = "file.upload_failed"
)
