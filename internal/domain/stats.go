package domain

type CourierStats struct {
	TotalCouriers  uint64 `json:"totalCouriers"`
	ActiveCouriers uint64 `json:"activeCouriers"`
}

func (s CourierStats) ActiveRate() float64 {
	return ratio(s.ActiveCouriers, s.TotalCouriers)
}

// PlatformStats is the statistics module's aggregate. Field order matches the
// positional form of get_platform_stats.
type PlatformStats struct {
	TotalOrders       uint64 `json:"totalOrders"`
	TotalCouriers     uint64 `json:"totalCouriers"`
	TotalUsers        uint64 `json:"totalUsers"`
	TotalRevenue      uint64 `json:"totalRevenue"`
	AcceptedOrders    uint64 `json:"acceptedOrders"`
	CompletedOrders   uint64 `json:"completedOrders"`
	CancelledOrders   uint64 `json:"cancelledOrders"`
	TotalDeliveryFees uint64 `json:"totalDeliveryFees"`
	TotalServiceFees  uint64 `json:"totalServiceFees"`
}

func (s PlatformStats) CompletionRate() float64 {
	return ratio(s.CompletedOrders, s.TotalOrders)
}

type FinanceStats struct {
	TotalRevenue  uint64 `json:"totalRevenue"`
	TotalExpenses uint64 `json:"totalExpenses"`
}

func (s FinanceStats) Profit() int64 {
	return int64(s.TotalRevenue) - int64(s.TotalExpenses)
}
