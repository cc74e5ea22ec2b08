package usecase

import (
	"fmt"

	"github.com/hhyyy9/logistics-platform/codec"
	"github.com/hhyyy9/logistics-platform/internal/domain"
)

// decoded is either a value or the reason the raw record was rejected.
type decoded[T any] struct {
	value   T
	anomaly string
}

func ok[T any](v T) decoded[T] {
	return decoded[T]{value: v}
}

func anomalyOf[T any](format string, args ...any) decoded[T] {
	return decoded[T]{anomaly: fmt.Sprintf(format, args...)}
}

func (d decoded[T]) ok() bool {
	return d.anomaly == ""
}

func (d decoded[T]) err(function string) error {
	return domain.DecodeAnomalyError{Function: function, Reason: d.anomaly}
}

// decodeOrders accepts only the [[order, ...]] shape. Records that fail to
// decode are reported individually and skipped.
func decodeOrders(res []any) (decoded[[]domain.Order], []string) {
	if len(res) == 0 {
		return anomalyOf[[]domain.Order]("empty result"), nil
	}
	list, isList := res[0].([]any)
	if !isList {
		return anomalyOf[[]domain.Order]("expected an array of orders, got %T", res[0]), nil
	}

	orders := make([]domain.Order, 0, len(list))
	var skipped []string
	for i, raw := range list {
		d := decodeOrder(raw)
		if !d.ok() {
			skipped = append(skipped, fmt.Sprintf("order %d: %s", i, d.anomaly))
			continue
		}
		orders = append(orders, d.value)
	}
	return ok(orders), skipped
}

func decodeOrder(raw any) decoded[domain.Order] {
	record, isMap := raw.(map[string]any)
	if !isMap {
		return anomalyOf[domain.Order]("expected an object, got %T", raw)
	}
	order := domain.Order{
		OrderID:         codec.DecodeNumeric(record["order_id"]),
		Sender:          codec.DecodeAddress(record["sender"]),
		Recipient:       codec.DecodeAddress(record["recipient"]),
		Courier:         codec.DecodeAddress(record["courier"]),
		PickupAddress:   codec.DecodeText(record["pickup_address"]),
		DeliveryAddress: codec.DecodeText(record["delivery_address"]),
		Status:          domain.OrderStatus(codec.DecodeNumeric(record["status"])),
		Amount:          codec.DecodeNumeric(record["amount"]),
		CreatedAt:       int64(codec.DecodeNumeric(record["created_at"])),
	}
	if err := order.Validate(); err != nil {
		return anomalyOf[domain.Order]("%v", err)
	}
	return ok(order)
}

// singleRecord peels the [[x]] and [x] wrappings the view functions use.
func singleRecord(res []any) any {
	if len(res) != 1 {
		return res
	}
	inner := res[0]
	if nested, isList := inner.([]any); isList && len(nested) == 1 {
		if _, isMap := nested[0].(map[string]any); isMap {
			return nested[0]
		}
	}
	return inner
}

func decodeUser(address string, res []any) decoded[domain.User] {
	switch record := singleRecord(res).(type) {
	case map[string]any:
		return ok(domain.User{
			Address:   address,
			Email:     codec.DecodeText(record["email"]),
			IsActive:  codec.DecodeBool(record["is_active"]),
			IsCourier: codec.DecodeBool(record["is_courier"]),
			Balance:   codec.DecodeNumeric(record["balance"]),
		})
	case []any:
		if len(record) != 4 {
			return anomalyOf[domain.User]("expected 4 positional fields, got %d", len(record))
		}
		return ok(domain.User{
			Address:   address,
			Email:     codec.DecodeText(record[0]),
			IsActive:  codec.DecodeBool(record[1]),
			IsCourier: codec.DecodeBool(record[2]),
			Balance:   codec.DecodeNumeric(record[3]),
		})
	default:
		return anomalyOf[domain.User]("unexpected user shape %T", record)
	}
}

var platformStatsFields = []string{
	"total_orders",
	"total_couriers",
	"total_users",
	"total_revenue",
	"accepted_orders",
	"completed_orders",
	"cancelled_orders",
	"total_delivery_fees",
	"total_service_fees",
}

func decodePlatformStats(res []any) decoded[domain.PlatformStats] {
	var values []any
	switch record := singleRecord(res).(type) {
	case map[string]any:
		values = make([]any, len(platformStatsFields))
		for i, key := range platformStatsFields {
			values[i] = record[key]
		}
	case []any:
		if len(record) != len(platformStatsFields) {
			return anomalyOf[domain.PlatformStats]("expected %d positional fields, got %d", len(platformStatsFields), len(record))
		}
		values = record
	default:
		return anomalyOf[domain.PlatformStats]("unexpected stats shape %T", record)
	}

	n := make([]uint64, len(values))
	for i, v := range values {
		n[i] = codec.DecodeNumeric(v)
	}
	return ok(domain.PlatformStats{
		TotalOrders:       n[0],
		TotalCouriers:     n[1],
		TotalUsers:        n[2],
		TotalRevenue:      n[3],
		AcceptedOrders:    n[4],
		CompletedOrders:   n[5],
		CancelledOrders:   n[6],
		TotalDeliveryFees: n[7],
		TotalServiceFees:  n[8],
	})
}
