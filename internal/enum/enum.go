// Package enum holds the string constants mirrored by the CHECK
// constraints in schema.sql.
package enum

const (
	OrderStatusPending       = "PENDING"
	OrderStatusRunning       = "RUNNING"
	OrderStatusBillGenerated = "BILL_GENERATED"
	OrderStatusCredit        = "CREDIT"
	OrderStatusCompleted     = "COMPLETED"
	OrderStatusCancelled     = "CANCELLED"
)

const (
	ItemStatusPending   = "PENDING"
	ItemStatusPreparing = "PREPARING"
	ItemStatusReady     = "READY"
	ItemStatusCompleted = "COMPLETED"
)

const (
	PaymentStatusUnpaid = "UNPAID"
	PaymentStatusPaid   = "PAID"
	PaymentStatusCredit = "CREDIT"
)

const (
	TableStatusAvailable = "AVAILABLE"
	TableStatusRunning   = "RUNNING"
)

const (
	UserRoleAdmin   = "ADMIN"
	UserRoleManager = "MANAGER"
	UserRoleCashier = "CASHIER"
	UserRoleKitchen = "KITCHEN"
)

const (
	OrderTypeDineIn   = "DINE_IN"
	OrderTypeTakeaway = "TAKEAWAY"
	OrderTypeDelivery = "DELIVERY"
)

// Payment methods carry no CHECK constraint so new ones can be added
// without a migration.
const (
	PaymentMethodCash   = "CASH"
	PaymentMethodCard   = "CARD"
	PaymentMethodOnline = "ONLINE"
	PaymentMethodCredit = "CREDIT"
)

// ValidOrderType reports whether s is a known order type.
func ValidOrderType(s string) bool {
	switch s {
	case OrderTypeDineIn, OrderTypeTakeaway, OrderTypeDelivery:
		return true
	}
	return false
}

// ValidPaymentMethod reports whether s is a known payment method.
func ValidPaymentMethod(s string) bool {
	switch s {
	case PaymentMethodCash, PaymentMethodCard, PaymentMethodOnline, PaymentMethodCredit:
		return true
	}
	return false
}

// ValidOrderStatus reports whether s is a known order status.
func ValidOrderStatus(s string) bool {
	switch s {
	case OrderStatusPending, OrderStatusRunning, OrderStatusBillGenerated,
		OrderStatusCredit, OrderStatusCompleted, OrderStatusCancelled:
		return true
	}
	return false
}

// ValidItemStatus reports whether s is a known kitchen item status.
func ValidItemStatus(s string) bool {
	switch s {
	case ItemStatusPending, ItemStatusPreparing, ItemStatusReady, ItemStatusCompleted:
		return true
	}
	return false
}

// ValidUserRole reports whether s is a known user role.
func ValidUserRole(s string) bool {
	switch s {
	case UserRoleAdmin, UserRoleManager, UserRoleCashier, UserRoleKitchen:
		return true
	}
	return false
}
