package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/hhyyy9/logistics-platform"
	"github.com/hhyyy9/logistics-platform/codec"
	"github.com/hhyyy9/logistics-platform/internal/domain"
)

func validOrder() CreateOrderInput {
	return CreateOrderInput{
		Recipient:       "0xbb",
		Courier:         "0xcc",
		PickupAddress:   "12 Harbour Rd",
		DeliveryAddress: "3 Mill Lane",
		Amount:          100,
	}
}

func orderRecord(status string) map[string]any {
	return map[string]any{
		"order_id":         "1",
		"sender":           "0xaa",
		"recipient":        "0xbb",
		"courier":          "0xcc",
		"pickup_address":   "0x68656c6c6f",
		"delivery_address": []any{json.Number("104"), json.Number("105")},
		"status":           status,
		"amount":           "100",
		"created_at":       "1700000000",
	}
}

func TestCreateOrder(t *testing.T) {
	notifier := &mockNotifier{}
	events := &mockEvents{}
	journal := &mockJournal{}
	deps := testDeps(&mockReader{}, notifier)
	deps.Events = events
	deps.Journal = journal
	store := NewOrderStore(deps)
	signer := &mockSigner{hash: "0xhash"}

	res, err := store.CreateOrder(context.Background(), validOrder(), signer.Submit)
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if res.Hash != "0xhash" {
		t.Fatalf("unexpected hash %s", res.Hash)
	}
	if signer.calls() != 1 {
		t.Fatalf("expected exactly one submission got %d", signer.calls())
	}

	payload := signer.requests[0].Payload
	if payload.Function != "0xabc::core::create_order" {
		t.Fatalf("unexpected function %s", payload.Function)
	}
	args := payload.FunctionArguments
	if len(args) != 5 {
		t.Fatalf("expected 5 arguments got %d", len(args))
	}
	if args[0] != "0xbb" || args[1] != "0xcc" {
		t.Fatalf("unexpected addresses %v %v", args[0], args[1])
	}
	if codec.DecodeText(args[2]) != "12 Harbour Rd" {
		t.Fatalf("pickup address must be byte encoded, got %v", args[2])
	}
	if args[4] != "100" {
		t.Fatalf("amount must be a numeric string, got %#v", args[4])
	}

	if len(notifier.notifications) != 1 || notifier.notifications[0].Kind != domain.NotificationSuccess {
		t.Fatalf("expected one success notification got %+v", notifier.notifications)
	}
	if len(events.events) != 1 || events.events[0].Kind != domain.EventOrderCreated {
		t.Fatalf("expected order.created event got %+v", events.events)
	}
	if len(journal.begun) != 1 || journal.finished[journal.begun[0].ID] != domain.SubmissionSucceeded {
		t.Fatalf("journal not completed %+v", journal)
	}
	if len(store.Orders()) != 0 {
		t.Fatalf("create must not touch the order cache")
	}
}

func TestCreateOrderRejected(t *testing.T) {
	notifier := &mockNotifier{}
	recorder := &mockRecorder{}
	deps := testDeps(&mockReader{}, notifier)
	deps.Recorder = recorder
	store := NewOrderStore(deps)
	signer := &mockSigner{err: errors.New("insufficient funds")}

	_, err := store.CreateOrder(context.Background(), validOrder(), signer.Submit)
	if !errors.Is(err, domain.ErrSubmissionRejected) {
		t.Fatalf("expected rejection got %v", err)
	}
	if len(notifier.notifications) != 1 {
		t.Fatalf("expected one notification got %d", len(notifier.notifications))
	}
	n := notifier.notifications[0]
	if n.Kind != domain.NotificationFailure || !strings.Contains(n.Message, "insufficient funds") {
		t.Fatalf("unexpected notification %+v", n)
	}
	if recorder.submissions["createOrder/rejected"] != 1 {
		t.Fatalf("expected rejected submission to be recorded %+v", recorder.submissions)
	}
	if len(store.Orders()) != 0 {
		t.Fatalf("rejection must not change the cache")
	}
}

func TestCreateOrderValidation(t *testing.T) {
	cases := map[string]func(in *CreateOrderInput){
		"blank recipient": func(in *CreateOrderInput) { in.Recipient = " " },
		"bad courier":     func(in *CreateOrderInput) { in.Courier = "courier" },
		"blank pickup":    func(in *CreateOrderInput) { in.PickupAddress = "" },
		"blank delivery":  func(in *CreateOrderInput) { in.DeliveryAddress = "" },
		"zero amount":     func(in *CreateOrderInput) { in.Amount = 0 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			notifier := &mockNotifier{}
			store := NewOrderStore(testDeps(&mockReader{}, notifier))
			signer := &mockSigner{}
			in := validOrder()
			mutate(&in)

			_, err := store.CreateOrder(context.Background(), in, signer.Submit)
			if !errors.Is(err, domain.ErrValidation) {
				t.Fatalf("expected validation error got %v", err)
			}
			if signer.calls() != 0 || len(notifier.notifications) != 0 {
				t.Fatalf("validation failure must not reach the signer")
			}
		})
	}
}

func TestMissingModuleAddress(t *testing.T) {
	store := NewOrderStore(Deps{Reader: &mockReader{}})
	signer := &mockSigner{}

	_, err := store.CreateOrder(context.Background(), validOrder(), signer.Submit)
	if !errors.Is(err, domain.ErrConfiguration) {
		t.Fatalf("expected configuration error got %v", err)
	}
	if signer.calls() != 0 {
		t.Fatalf("configuration error must not reach the signer")
	}

	_, err = store.GetUserOrders(context.Background(), "0xaa")
	if !errors.Is(err, domain.ErrConfiguration) {
		t.Fatalf("expected configuration error got %v", err)
	}
}

func TestSignerPanicIsUnknownFailure(t *testing.T) {
	notifier := &mockNotifier{}
	store := NewOrderStore(testDeps(&mockReader{}, notifier))
	signer := &mockSigner{panicky: true}

	_, err := store.ConfirmOrder(context.Background(), 1, signer.Submit)
	var rejected *domain.SubmissionRejectedError
	if !errors.As(err, &rejected) {
		t.Fatalf("expected rejection got %v", err)
	}
	if rejected.Message != domain.UnknownFailureMessage {
		t.Fatalf("unexpected message %q", rejected.Message)
	}
	if notifier.notifications[0].Message != domain.UnknownFailureMessage {
		t.Fatalf("unexpected notification %+v", notifier.notifications[0])
	}
}

func TestEmptyErrorMessage(t *testing.T) {
	notifier := &mockNotifier{}
	store := NewOrderStore(testDeps(&mockReader{}, notifier))
	signer := &mockSigner{err: errors.New("  ")}

	_, err := store.ConfirmOrder(context.Background(), 1, signer.Submit)
	if !errors.Is(err, domain.ErrSubmissionRejected) {
		t.Fatalf("expected rejection got %v", err)
	}
	if notifier.notifications[0].Message != domain.UnknownFailureMessage {
		t.Fatalf("unexpected message %q", notifier.notifications[0].Message)
	}
}

func TestGetUserOrders(t *testing.T) {
	reader := &mockReader{fn: func(req logistics.ViewRequest) ([]any, error) {
		return []any{[]any{orderRecord("0")}}, nil
	}}
	store := NewOrderStore(testDeps(reader, &mockNotifier{}))

	loadingSeen := false
	store.SubscribeLoading(func(v bool) {
		if v {
			loadingSeen = true
		}
	})

	orders, err := store.GetUserOrders(context.Background(), "0xAA")
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if len(orders) != 1 {
		t.Fatalf("expected 1 order got %d", len(orders))
	}
	o := orders[0]
	if o.OrderID != 1 || o.Amount != 100 || o.Status != domain.OrderStatusPending {
		t.Fatalf("unexpected order %+v", o)
	}
	if o.PickupAddress != "hello" || o.DeliveryAddress != "hi" {
		t.Fatalf("unexpected addresses %q %q", o.PickupAddress, o.DeliveryAddress)
	}
	if reader.requests[0].Payload.Function != "0xabc::core::get_user_orders" {
		t.Fatalf("unexpected function %s", reader.requests[0].Payload.Function)
	}
	if store.LastQuery() != "0xAA" {
		t.Fatalf("unexpected last query %s", store.LastQuery())
	}
	if !loadingSeen || store.IsLoading() {
		t.Fatalf("loading must be raised and cleared")
	}
}

func TestGetUserOrdersMalformedClearsCache(t *testing.T) {
	shape := []any{[]any{orderRecord("0")}}
	reader := &mockReader{fn: func(req logistics.ViewRequest) ([]any, error) {
		return shape, nil
	}}
	recorder := &mockRecorder{}
	deps := testDeps(reader, &mockNotifier{})
	deps.Recorder = recorder
	store := NewOrderStore(deps)

	if _, err := store.GetUserOrders(context.Background(), "0xaa"); err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if len(store.Orders()) != 1 {
		t.Fatalf("expected cached order")
	}

	shape = []any{orderRecord("0")}
	orders, err := store.GetUserOrders(context.Background(), "0xaa")
	if err != nil {
		t.Fatalf("anomaly must not surface as an error: %v", err)
	}
	if len(orders) != 0 || len(store.Orders()) != 0 {
		t.Fatalf("expected empty cache got %+v", store.Orders())
	}
	if recorder.anomalies != 1 {
		t.Fatalf("expected one anomaly got %d", recorder.anomalies)
	}
}

func TestGetUserOrdersTransportFailureKeepsCache(t *testing.T) {
	fail := false
	reader := &mockReader{fn: func(req logistics.ViewRequest) ([]any, error) {
		if fail {
			return nil, errors.New("connection reset")
		}
		return []any{[]any{orderRecord("0")}}, nil
	}}
	store := NewOrderStore(testDeps(reader, &mockNotifier{}))

	store.GetUserOrders(context.Background(), "0xaa")
	fail = true
	if _, err := store.GetUserOrders(context.Background(), "0xaa"); err == nil {
		t.Fatalf("expected transport error")
	}
	if len(store.Orders()) != 1 {
		t.Fatalf("transport failure must keep the cache")
	}
	if store.IsLoading() {
		t.Fatalf("loading must be cleared on failure")
	}
}

func TestConfirmThenRefetch(t *testing.T) {
	status := "0"
	reader := &mockReader{fn: func(req logistics.ViewRequest) ([]any, error) {
		return []any{[]any{orderRecord(status)}}, nil
	}}
	store := NewOrderStore(testDeps(reader, &mockNotifier{}))
	signer := &mockSigner{hash: "0x1"}

	store.GetUserOrders(context.Background(), "0xaa")

	if _, err := store.ConfirmOrder(context.Background(), 1, signer.Submit); err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if args := signer.requests[0].Payload.FunctionArguments; len(args) != 1 || args[0] != "1" {
		t.Fatalf("unexpected confirm arguments %v", args)
	}
	if signer.requests[0].Payload.Function != "0xabc::core::confirm_order_v2" {
		t.Fatalf("unexpected function %s", signer.requests[0].Payload.Function)
	}
	if o, _ := store.Order(1); o.Status != domain.OrderStatusPending {
		t.Fatalf("confirm must not advance status locally")
	}

	status = "1"
	store.GetUserOrders(context.Background(), "0xaa")
	o, found := store.Order(1)
	if !found || o.Status != domain.OrderStatusCompleted {
		t.Fatalf("expected completed order got %+v", o)
	}
	if store.Stats().CompletionRate() != 1 {
		t.Fatalf("unexpected completion rate %v", store.Stats().CompletionRate())
	}
}

func TestGetUserOrdersSkipsBadRecords(t *testing.T) {
	reader := &mockReader{fn: func(req logistics.ViewRequest) ([]any, error) {
		return []any{[]any{orderRecord("0"), "garbage", orderRecord("9")}}, nil
	}}
	store := NewOrderStore(testDeps(reader, &mockNotifier{}))

	orders, err := store.GetUserOrders(context.Background(), "0xaa")
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if len(orders) != 1 {
		t.Fatalf("expected bad records to be skipped, got %d orders", len(orders))
	}
}
