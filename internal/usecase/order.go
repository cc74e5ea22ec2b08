package usecase

import (
	"context"
	"strconv"
	"strings"
	"sync"

	"github.com/hhyyy9/logistics-platform"
	"github.com/hhyyy9/logistics-platform/codec"
	"github.com/hhyyy9/logistics-platform/internal/domain"
	"github.com/hhyyy9/logistics-platform/internal/observable"
	"github.com/hhyyy9/logistics-platform/schemas"
)

// CreateOrderInput is what a sender supplies for a new delivery order.
type CreateOrderInput struct {
	Recipient       string `json:"recipient"`
	Courier         string `json:"courier"`
	PickupAddress   string `json:"pickupAddress"`
	DeliveryAddress string `json:"deliveryAddress"`
	Amount          uint64 `json:"amount"`
}

func (in CreateOrderInput) Validate() error {
	if err := validateAddress("recipient", in.Recipient); err != nil {
		return err
	}
	if err := validateAddress("courier", in.Courier); err != nil {
		return err
	}
	if err := validateText("pickupAddress", in.PickupAddress); err != nil {
		return err
	}
	if err := validateText("deliveryAddress", in.DeliveryAddress); err != nil {
		return err
	}
	if in.Amount == 0 {
		return domain.ValidationError{Field: "amount", Reason: "must be greater than zero"}
	}
	return nil
}

// OrderStore holds the orders of the most recently queried address. Order
// status changes only through a re-fetch.
type OrderStore struct {
	ledger  *ledger
	orders  *observable.Value[[]domain.Order]
	loading *observable.Value[bool]

	mu        sync.Mutex
	lastQuery string
}

func NewOrderStore(deps Deps) *OrderStore {
	return &OrderStore{
		ledger:  newLedger(deps),
		orders:  observable.New([]domain.Order{}),
		loading: observable.New(false),
	}
}

func (s *OrderStore) CreateOrder(ctx context.Context, in CreateOrderInput, signer logistics.SubmitFunc) (logistics.SubmitResult, error) {
	if err := in.Validate(); err != nil {
		return logistics.SubmitResult{}, err
	}
	return s.ledger.submit(ctx, txCall{
		operation: "createOrder",
		module:    schemas.ModuleCore,
		function:  schemas.CreateOrder,
		args: []any{
			strings.TrimSpace(in.Recipient),
			strings.TrimSpace(in.Courier),
			codec.EncodeText(in.PickupAddress),
			codec.EncodeText(in.DeliveryAddress),
			codec.EncodeNumeric(in.Amount),
		},
		success: "Order created successfully",
		event:   domain.EventOrderCreated,
		subject: in.Recipient,
	}, signer, nil, nil)
}

// ConfirmOrder asks the ledger to mark an order delivered. The cached order
// keeps its status until the next GetUserOrders.
func (s *OrderStore) ConfirmOrder(ctx context.Context, orderID uint64, signer logistics.SubmitFunc) (logistics.SubmitResult, error) {
	return s.ledger.submit(ctx, txCall{
		operation: "confirmOrder",
		module:    schemas.ModuleCore,
		function:  schemas.ConfirmOrder,
		args:      []any{codec.EncodeNumeric(orderID)},
		success:   "Order confirmed successfully",
		event:     domain.EventOrderConfirmed,
		subject:   strconv.FormatUint(orderID, 10),
	}, signer, nil, nil)
}

// GetUserOrders replaces the cached list with address's orders. A response of
// unexpected shape empties the cache; a transport failure leaves it alone.
func (s *OrderStore) GetUserOrders(ctx context.Context, address string) ([]domain.Order, error) {
	if err := validateAddress("address", address); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.lastQuery = strings.TrimSpace(address)
	s.mu.Unlock()

	s.loading.Set(true)
	defer s.loading.Set(false)

	function, res, err := s.ledger.view(ctx, schemas.ModuleCore, schemas.GetUserOrders, strings.TrimSpace(address))
	if err != nil {
		return nil, err
	}

	d, skipped := decodeOrders(res)
	if !d.ok() {
		s.ledger.anomaly(function, d.err(function))
		s.orders.Set([]domain.Order{})
		return []domain.Order{}, nil
	}
	for _, reason := range skipped {
		s.ledger.anomaly(function, domain.DecodeAnomalyError{Function: function, Reason: reason})
	}

	s.orders.Set(d.value)
	return copyOrders(d.value), nil
}

// LastQuery is the address passed to the latest GetUserOrders.
func (s *OrderStore) LastQuery() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastQuery
}

func (s *OrderStore) Orders() []domain.Order {
	return copyOrders(s.orders.Get())
}

func (s *OrderStore) Order(orderID uint64) (domain.Order, bool) {
	for _, o := range s.orders.Get() {
		if o.OrderID == orderID {
			return o, true
		}
	}
	return domain.Order{}, false
}

func (s *OrderStore) Stats() domain.OrderStats {
	orders := s.orders.Get()
	stats := domain.OrderStats{TotalOrders: uint64(len(orders))}
	for _, o := range orders {
		if o.Status == domain.OrderStatusCompleted {
			stats.CompletedOrders++
		}
	}
	return stats
}

func (s *OrderStore) IsLoading() bool {
	return s.loading.Get()
}

func (s *OrderStore) Subscribe(fn func([]domain.Order)) func() {
	return s.orders.Subscribe(func(orders []domain.Order) {
		fn(copyOrders(orders))
	})
}

func (s *OrderStore) SubscribeLoading(fn func(bool)) func() {
	return s.loading.Subscribe(fn)
}

func copyOrders(src []domain.Order) []domain.Order {
	dst := make([]domain.Order, len(src))
	copy(dst, src)
	return dst
}
