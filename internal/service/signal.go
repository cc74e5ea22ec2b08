package service

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"

	"github.com/hhyyy9/logistics-platform/internal/domain"
)

type SignalService struct {
	rdb     *redis.Client
	channel string
}

func NewSignalService(redisClient *redis.Client, channel string) *SignalService {
	if channel == "" {
		channel = "logistics:events"
	}
	return &SignalService{
		rdb:     redisClient,
		channel: channel,
	}
}

// Publish fans a confirmed write out to other processes. A nil client
// disables publishing.
func (s *SignalService) Publish(ctx context.Context, event domain.Event) error {
	if s == nil || s.rdb == nil {
		return nil
	}

	jsonstr, err := json.Marshal(event)
	if err != nil {
		return err
	}

	err = s.rdb.Publish(ctx, s.channel, jsonstr).Err()
	if err != nil {
		return err
	}

	return nil
}

// Subscribe delivers events published by any process until ctx is done.
func (s *SignalService) Subscribe(ctx context.Context, fn func(domain.Event)) error {
	if s == nil || s.rdb == nil {
		return nil
	}

	sub := s.rdb.Subscribe(ctx, s.channel)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return err
	}

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			var event domain.Event
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				continue
			}
			fn(event)
		}
	}
}
