package usecase

import (
	"github.com/hhyyy9/logistics-platform/internal/domain"
	"github.com/hhyyy9/logistics-platform/internal/observable"
)

// FinanceStore tracks revenue and expenses. It never talks to the ledger;
// figures come from Apply or the setters.
type FinanceStore struct {
	stats *observable.Value[domain.FinanceStats]
}

func NewFinanceStore() *FinanceStore {
	return &FinanceStore{stats: observable.New(domain.FinanceStats{})}
}

// Apply derives revenue and expenses from the platform aggregate.
func (s *FinanceStore) Apply(p domain.PlatformStats) {
	s.stats.Set(domain.FinanceStats{
		TotalRevenue:  p.TotalRevenue,
		TotalExpenses: p.TotalDeliveryFees,
	})
}

func (s *FinanceStore) SetTotalRevenue(n uint64) {
	s.stats.Update(func(f domain.FinanceStats) domain.FinanceStats {
		f.TotalRevenue = n
		return f
	})
}

func (s *FinanceStore) SetTotalExpenses(n uint64) {
	s.stats.Update(func(f domain.FinanceStats) domain.FinanceStats {
		f.TotalExpenses = n
		return f
	})
}

func (s *FinanceStore) Stats() domain.FinanceStats {
	return s.stats.Get()
}

func (s *FinanceStore) Subscribe(fn func(domain.FinanceStats)) func() {
	return s.stats.Subscribe(fn)
}
