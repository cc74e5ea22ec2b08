package usecase

import (
	"context"

	"github.com/hhyyy9/logistics-platform"
	"github.com/hhyyy9/logistics-platform/codec"
	"github.com/hhyyy9/logistics-platform/internal/domain"
	"github.com/hhyyy9/logistics-platform/internal/observable"
	"github.com/hhyyy9/logistics-platform/schemas"
)

// CourierStore keeps courier counters. They move only on successful
// submissions or explicit SetTotals calls.
type CourierStore struct {
	ledger *ledger
	stats  *observable.Value[domain.CourierStats]
}

func NewCourierStore(deps Deps) *CourierStore {
	return &CourierStore{
		ledger: newLedger(deps),
		stats:  observable.New(domain.CourierStats{}),
	}
}

func (s *CourierStore) RegisterCourier(ctx context.Context, courierAddress, name string, signer logistics.SubmitFunc) (logistics.SubmitResult, error) {
	if err := validateAddress("courierAddress", courierAddress); err != nil {
		return logistics.SubmitResult{}, err
	}
	if err := validateText("name", name); err != nil {
		return logistics.SubmitResult{}, err
	}
	return s.ledger.submit(ctx, txCall{
		operation: "registerCourier",
		module:    schemas.ModuleCourierManagement,
		function:  schemas.RegisterCourier,
		args:      []any{courierAddress, codec.EncodeText(name)},
		success:   "Courier registered successfully",
		event:     domain.EventCourierRegistered,
		subject:   courierAddress,
	}, signer, nil, func() {
		s.stats.Update(func(c domain.CourierStats) domain.CourierStats {
			c.TotalCouriers++
			c.ActiveCouriers++
			return c
		})
	})
}

func (s *CourierStore) UpdateCourierInfo(ctx context.Context, name string, signer logistics.SubmitFunc) (logistics.SubmitResult, error) {
	if err := validateText("name", name); err != nil {
		return logistics.SubmitResult{}, err
	}
	return s.ledger.submit(ctx, txCall{
		operation: "updateCourierInfo",
		module:    schemas.ModuleCourierManagement,
		function:  schemas.UpdateCourierInfo,
		args:      []any{codec.EncodeText(name)},
		success:   "Courier info updated successfully",
		event:     domain.EventCourierUpdated,
		subject:   name,
	}, signer, nil, nil)
}

func (s *CourierStore) DeactivateCourier(ctx context.Context, courierAddress string, signer logistics.SubmitFunc) (logistics.SubmitResult, error) {
	if err := validateAddress("courierAddress", courierAddress); err != nil {
		return logistics.SubmitResult{}, err
	}
	return s.ledger.submit(ctx, txCall{
		operation: "deactivateCourier",
		module:    schemas.ModuleCourierManagement,
		function:  schemas.DeactivateCourier,
		args:      []any{courierAddress},
		success:   "Courier deactivated successfully",
		event:     domain.EventCourierDeactivated,
		subject:   courierAddress,
	}, signer, nil, func() {
		s.stats.Update(func(c domain.CourierStats) domain.CourierStats {
			if c.ActiveCouriers > 0 {
				c.ActiveCouriers--
			}
			return c
		})
	})
}

// SetTotals overwrites both counters, e.g. from an external statistics source.
func (s *CourierStore) SetTotals(total, active uint64) {
	s.stats.Set(domain.CourierStats{TotalCouriers: total, ActiveCouriers: active})
}

func (s *CourierStore) Stats() domain.CourierStats {
	return s.stats.Get()
}

func (s *CourierStore) Subscribe(fn func(domain.CourierStats)) func() {
	return s.stats.Subscribe(fn)
}
