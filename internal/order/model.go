package order

import (
	"time"

	"github.com/google/uuid"
)

type OrderStatus string

const (
	StatusPending      OrderStatus = "PENDING"
	StatusPreparing    OrderStatus = "PREPARING"
	StatusTransporting OrderStatus = "TRANSPORTING"
	StatusCompleted    OrderStatus = "COMPLETED"
	StatusCanceling    OrderStatus = "CANCELING"
	StatusCanceled     OrderStatus = "CANCELED"
)

// uncancelableStatuses are terminal or in-flight states a customer can no
// longer back out of.
var uncancelableStatuses = map[OrderStatus]struct{}{
	StatusTransporting: {},
	StatusCanceled:     {},
	StatusCompleted:    {},
}

func (s OrderStatus) Cancelable() bool {
	_, blocked := uncancelableStatuses[s]
	return !blocked
}

type PaymentMethod string

const (
	PaymentMethodVNPay PaymentMethod = "VNPAY"
	PaymentMethodCOD   PaymentMethod = "COD"
)

type TransactionStatus string

const (
	TransactionPending TransactionStatus = "PENDING"
	TransactionSuccess TransactionStatus = "SUCCESS"
	TransactionFailed  TransactionStatus = "FAIL"
)

// Settled reports whether the ledger entry reached a terminal outcome.
// A settled transaction is never updated again, whatever the gateway resends.
func (s TransactionStatus) Settled() bool {
	return s == TransactionSuccess || s == TransactionFailed
}

type Order struct {
	ID     uuid.UUID
	UserID uint

	CustomerName  string
	CustomerEmail string
	CustomerPhone string
	Address       string
	ProvinceID    int
	DistrictID    int
	WardCode      string

	Status        OrderStatus
	PaymentMethod PaymentMethod

	// TransactionID links the payment ledger entry, set when the order is
	// processed for payment.
	TransactionID *uuid.UUID
	Transaction   *Transaction

	ShippingCost int64
	TotalCost    int64
	DiscountCost int64

	Items []OrderItem

	CreatedAt time.Time
	UpdatedAt time.Time
}

// OrderItem is a frozen line: quantity plus the cost record that was current
// at order time. Immutable once written.
type OrderItem struct {
	ID        uuid.UUID
	OrderID   uuid.UUID
	ProductID uuid.UUID
	OptionID  uuid.UUID
	Quantity  int

	// CostID references the price snapshot effective when the order was
	// placed; SaleCost/DiscountPercentage are denormalized from it.
	CostID             uuid.UUID
	SaleCost           int64
	DiscountPercentage int

	ProductName string
}

// Transaction is the payment ledger entry for one order, written once as
// PENDING and settled exactly once by a verified gateway callback.
type Transaction struct {
	ID        uuid.UUID
	Amount    int64
	Status    TransactionStatus
	PayDate   *time.Time
	CreatedAt time.Time
}
