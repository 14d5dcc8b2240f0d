package order

import (
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusShipped   Status = "shipped"
	StatusDelivered Status = "delivered"
	StatusCancelled Status = "cancelled"
)

// transitions is the full status state machine. Missing entries are
// terminal states.
var transitions = map[Status][]Status{
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusShipped, StatusCancelled},
	StatusShipped:   {StatusDelivered},
}

// ParseStatus validates a wire-level status string.
func ParseStatus(s string) (Status, bool) {
	switch Status(s) {
	case StatusPending, StatusConfirmed, StatusShipped, StatusDelivered, StatusCancelled:
		return Status(s), true
	}
	return "", false
}

// CanTransitionTo reports whether the status machine allows moving from
// s to next.
func (s Status) CanTransitionTo(next Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

type Order struct {
	ID        int64
	UserID    int64
	Number    string
	Total     decimal.Decimal
	Status    Status
	CreatedAt time.Time
	UpdatedAt time.Time
	Items     []OrderItem
}

// ItemsCount is the total unit count across all order items.
func (o *Order) ItemsCount() int {
	n := 0
	for _, item := range o.Items {
		n += item.Quantity
	}
	return n
}

type OrderItem struct {
	ID          int64
	OrderID     int64
	ProductID   int64
	ProductName string
	Quantity    int

	// UnitPrice is the price captured at order creation, immune to
	// later catalog price changes.
	UnitPrice decimal.Decimal
}

func (i OrderItem) Subtotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}
