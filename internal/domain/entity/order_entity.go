package entity

import (
	"fmt"
	"time"

	"github.com/oksasatya/delivery-marketplace/internal/domain"
)

// OrderStatus is a state of the order lifecycle.
type OrderStatus string

const (
	StatusNew         OrderStatus = "new"
	StatusAccepted    OrderStatus = "accepted"
	StatusPreparing   OrderStatus = "preparing"
	StatusForDelivery OrderStatus = "for_delivery"
	StatusCompleted   OrderStatus = "completed"
	StatusCancelled   OrderStatus = "cancelled"
	StatusDeclined    OrderStatus = "declined"
)

var (
	ErrInvalidStatus     = fmt.Errorf("%w: unknown order status", domain.ErrValidation)
	ErrInvalidTransition = fmt.Errorf("%w: invalid status transition", domain.ErrValidation)
	ErrOrderTerminal     = fmt.Errorf("%w: order is already closed", domain.ErrValidation)
	ErrEmptyOrder        = fmt.Errorf("%w: order has no items", domain.ErrValidation)
	ErrInvalidQuantity   = fmt.Errorf("%w: quantity must be at least 1", domain.ErrValidation)
)

// forward maps each non-terminal status to its single successor on the happy path.
var forward = map[OrderStatus]OrderStatus{
	StatusNew:         StatusAccepted,
	StatusAccepted:    StatusPreparing,
	StatusPreparing:   StatusForDelivery,
	StatusForDelivery: StatusCompleted,
}

func ParseOrderStatus(s string) (OrderStatus, error) {
	switch st := OrderStatus(s); st {
	case StatusNew, StatusAccepted, StatusPreparing, StatusForDelivery,
		StatusCompleted, StatusCancelled, StatusDeclined:
		return st, nil
	}
	return "", ErrInvalidStatus
}

func (s OrderStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled || s == StatusDeclined
}

// CanTransition reports whether from -> to is a structurally valid step:
// the adjacent forward step, or cancelled/declined out of any open status.
func CanTransition(from, to OrderStatus) bool {
	if from.IsTerminal() {
		return false
	}
	if to == StatusCancelled || to == StatusDeclined {
		return true
	}
	next, ok := forward[from]
	return ok && next == to
}

type Order struct {
	ID                    string      `json:"id"`
	UserID                string      `json:"user_id"`
	StoreID               string      `json:"store_id"`
	OrderNumber           string      `json:"order_number"`
	Status                OrderStatus `json:"status"`
	PaymentMethod         string      `json:"payment_method"`
	PaymentStatus         string      `json:"payment_status"`
	TotalAmount           float64     `json:"total_amount"`
	DeliveryAddress       string      `json:"delivery_address"`
	EstimatedDeliveryTime string      `json:"estimated_delivery_time,omitempty"`
	Notes                 string      `json:"notes,omitempty"`
	CompletedAt           *time.Time  `json:"completed_at,omitempty"`
	CreatedAt             time.Time   `json:"created_at"`
	UpdatedAt             time.Time   `json:"updated_at"`
}

// Transition moves the order to status to. CompletedAt is stamped on the
// single step into completed; a rejected transition leaves o untouched.
func (o *Order) Transition(to OrderStatus, now time.Time) error {
	if o.Status.IsTerminal() {
		return ErrOrderTerminal
	}
	if !CanTransition(o.Status, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, o.Status, to)
	}
	o.Status = to
	if to == StatusCompleted && o.CompletedAt == nil {
		t := now
		o.CompletedAt = &t
	}
	o.UpdatedAt = now
	return nil
}

// OrderItem is an immutable snapshot of a purchased line.
type OrderItem struct {
	ID          string    `json:"id"`
	OrderID     string    `json:"order_id"`
	ProductID   string    `json:"product_id,omitempty"`
	ProductName string    `json:"product_name"`
	Price       float64   `json:"price"`
	Quantity    int       `json:"quantity"`
	CreatedAt   time.Time `json:"created_at"`
}

func (i OrderItem) Subtotal() float64 { return i.Price * float64(i.Quantity) }
