package usecase

import (
	"context"

	"github.com/hhyyy9/logistics-platform/internal/domain"
	"github.com/hhyyy9/logistics-platform/internal/observable"
	"github.com/hhyyy9/logistics-platform/schemas"
)

type StatisticsStore struct {
	ledger  *ledger
	stats   *observable.Value[domain.PlatformStats]
	loading *observable.Value[bool]
}

func NewStatisticsStore(deps Deps) *StatisticsStore {
	return &StatisticsStore{
		ledger:  newLedger(deps),
		stats:   observable.New(domain.PlatformStats{}),
		loading: observable.New(false),
	}
}

// FetchPlatformStats replaces the cached aggregate. A response of unexpected
// shape resets it to zero.
func (s *StatisticsStore) FetchPlatformStats(ctx context.Context) (domain.PlatformStats, error) {
	s.loading.Set(true)
	defer s.loading.Set(false)

	function, res, err := s.ledger.view(ctx, schemas.ModuleStatistics, schemas.GetPlatformStats)
	if err != nil {
		return domain.PlatformStats{}, err
	}

	d := decodePlatformStats(res)
	if !d.ok() {
		s.ledger.anomaly(function, d.err(function))
		s.stats.Set(domain.PlatformStats{})
		return domain.PlatformStats{}, nil
	}
	s.stats.Set(d.value)
	return d.value, nil
}

func (s *StatisticsStore) Stats() domain.PlatformStats {
	return s.stats.Get()
}

func (s *StatisticsStore) IsLoading() bool {
	return s.loading.Get()
}

func (s *StatisticsStore) Subscribe(fn func(domain.PlatformStats)) func() {
	return s.stats.Subscribe(fn)
}
