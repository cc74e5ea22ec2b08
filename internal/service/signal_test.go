package service

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/hhyyy9/logistics-platform/internal/domain"
)

func TestPublishSubscribe(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	signal := NewSignalService(rdb, "")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	received := make(chan domain.Event, 1)
	ready := make(chan struct{})
	go func() {
		close(ready)
		signal.Subscribe(ctx, func(e domain.Event) { received <- e })
	}()
	<-ready

	deadline := time.Now().Add(2 * time.Second)
	for {
		if len(mr.PubSubChannels("logistics:*")) > 0 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("subscriber never attached")
		}
		time.Sleep(10 * time.Millisecond)
	}

	err := signal.Publish(ctx, domain.Event{Kind: domain.EventOrderCreated, Subject: "0xbb", TxHash: "0x1"})
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}

	select {
	case e := <-received:
		if e.Kind != domain.EventOrderCreated || e.Subject != "0xbb" {
			t.Fatalf("unexpected event %+v", e)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("event not delivered")
	}
}

func TestNilClientIsNoop(t *testing.T) {
	signal := NewSignalService(nil, "x")
	if err := signal.Publish(context.Background(), domain.Event{}); err != nil {
		t.Fatalf("unexpected error %v", err)
	}
}
