package domain

import (
	"strings"
	"time"
)

type OrderStatus int

const (
	OrderStatusPending OrderStatus = iota
	OrderStatusCompleted
)

func (s OrderStatus) String() string {
	switch s {
	case OrderStatusPending:
		return "Pending"
	case OrderStatusCompleted:
		return "Completed"
	default:
		return "Unknown"
	}
}

func (s OrderStatus) Valid() bool {
	return s == OrderStatusPending || s == OrderStatusCompleted
}

// Order is a delivery order as reported by the ledger. The ledger is the
// only authority on Status; the client never advances it.
type Order struct {
	OrderID         uint64      `json:"orderId"`
	Sender          string      `json:"sender"`
	Recipient       string      `json:"recipient"`
	Courier         string      `json:"courier"`
	PickupAddress   string      `json:"pickupAddress"`
	DeliveryAddress string      `json:"deliveryAddress"`
	Status          OrderStatus `json:"status"`
	Amount          uint64      `json:"amount"`
	CreatedAt       int64       `json:"createdAt"`
}

func (o Order) Validate() error {
	if strings.TrimSpace(o.Sender) == "" {
		return ValidationError{Field: "sender", Reason: "must not be blank"}
	}
	if !o.Status.Valid() {
		return ValidationError{Field: "status", Reason: "unknown status"}
	}
	return nil
}

func (o Order) CreatedTime() time.Time {
	return time.Unix(o.CreatedAt, 0).UTC()
}

type OrderStats struct {
	TotalOrders     uint64 `json:"totalOrders"`
	CompletedOrders uint64 `json:"completedOrders"`
}

func (s OrderStats) CompletionRate() float64 {
	return ratio(s.CompletedOrders, s.TotalOrders)
}
