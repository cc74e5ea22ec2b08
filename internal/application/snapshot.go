package application

import (
	"github.com/hhyyy9/logistics-platform"
	"github.com/hhyyy9/logistics-platform/internal/domain"
)

type SessionView struct {
	Account             string `json:"account"`
	ShortAccount        string `json:"shortAccount"`
	Connected           bool   `json:"connected"`
	HasSigner           bool   `json:"hasSigner"`
	ContractInitialized bool   `json:"contractInitialized"`
	WalletName          string `json:"walletName,omitempty"`
}

type LoadingView struct {
	Users      bool `json:"users"`
	Orders     bool `json:"orders"`
	Statistics bool `json:"statistics"`
}

// State is a point-in-time copy of every store plus the derived ratios.
type State struct {
	Session                SessionView           `json:"session"`
	Users                  []domain.User         `json:"users"`
	UserStats              domain.UserStats      `json:"userStats"`
	UserActiveRate         float64               `json:"userActiveRate"`
	Orders                 []domain.Order        `json:"orders"`
	OrdersAddress          string                `json:"ordersAddress,omitempty"`
	OrderStats             domain.OrderStats     `json:"orderStats"`
	OrderCompletionRate    float64               `json:"orderCompletionRate"`
	Couriers               domain.CourierStats   `json:"couriers"`
	CourierActiveRate      float64               `json:"courierActiveRate"`
	Platform               domain.PlatformStats  `json:"platform"`
	PlatformCompletionRate float64               `json:"platformCompletionRate"`
	Finance                domain.FinanceStats   `json:"finance"`
	Profit                 int64                 `json:"profit"`
	Notifications          []domain.Notification `json:"notifications"`
	Loading                LoadingView           `json:"loading"`
}

func (r *Root) Snapshot() State {
	s := r.session.Get()
	userStats := r.Users.Stats()
	orderStats := r.Orders.Stats()
	couriers := r.Couriers.Stats()
	platform := r.Statistics.Stats()
	finance := r.Finance.Stats()

	return State{
		Session: SessionView{
			Account:             s.Account,
			ShortAccount:        logistics.ShortAddress(s.Account),
			Connected:           s.Connected(),
			HasSigner:           s.HasSigner(),
			ContractInitialized: s.ContractInitialized,
			WalletName:          s.WalletName,
		},
		Users:                  r.Users.Users(),
		UserStats:              userStats,
		UserActiveRate:         userStats.ActiveRate(),
		Orders:                 r.Orders.Orders(),
		OrdersAddress:          r.Orders.LastQuery(),
		OrderStats:             orderStats,
		OrderCompletionRate:    orderStats.CompletionRate(),
		Couriers:               couriers,
		CourierActiveRate:      couriers.ActiveRate(),
		Platform:               platform,
		PlatformCompletionRate: platform.CompletionRate(),
		Finance:                finance,
		Profit:                 finance.Profit(),
		Notifications:          r.Notifications.List(),
		Loading: LoadingView{
			Users:      r.Users.IsLoading(),
			Orders:     r.Orders.IsLoading(),
			Statistics: r.Statistics.IsLoading(),
		},
	}
}
