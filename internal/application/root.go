package application

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/hhyyy9/logistics-platform"
	"github.com/hhyyy9/logistics-platform/internal/domain"
	"github.com/hhyyy9/logistics-platform/internal/observable"
	"github.com/hhyyy9/logistics-platform/internal/pkg/logger"
	"github.com/hhyyy9/logistics-platform/internal/usecase"
)

// Publisher fans confirmed writes out to other processes.
type Publisher interface {
	Publish(ctx context.Context, event domain.Event) error
}

// InitMarker remembers initialized accounts across restarts.
type InitMarker interface {
	Initialized(ctx context.Context, account string) (bool, error)
	MarkInitialized(ctx context.Context, account string) error
}

type Options struct {
	Deps            usecase.Deps
	Publisher       Publisher
	InitMarker      InitMarker
	RelayStatistics bool
}

// Root owns every store and the wallet session.
type Root struct {
	Users         *usecase.UserStore
	Orders        *usecase.OrderStore
	Couriers      *usecase.CourierStore
	Statistics    *usecase.StatisticsStore
	Finance       *usecase.FinanceStore
	Notifications *NotificationCenter

	contract *usecase.Contract
	session  *observable.Value[domain.Session]
	log      *logger.Logger

	publisher       Publisher
	marker          InitMarker
	relayStatistics bool
	origin          string

	mu           sync.Mutex
	initializing map[string]bool
	cancels      []func()
}

func NewRoot(opts Options) *Root {
	log := opts.Deps.Logger
	if log == nil {
		log = logger.Nop()
	}

	r := &Root{
		Notifications:   NewNotificationCenter(log, defaultNotificationLimit),
		session:         observable.New(domain.Session{}),
		log:             log,
		publisher:       opts.Publisher,
		marker:          opts.InitMarker,
		relayStatistics: opts.RelayStatistics,
		origin:          uuid.NewString(),
		initializing:    map[string]bool{},
	}

	deps := opts.Deps
	deps.Logger = log
	deps.Notifier = r.Notifications
	deps.Events = r

	r.Users = usecase.NewUserStore(deps)
	r.Orders = usecase.NewOrderStore(deps)
	r.Couriers = usecase.NewCourierStore(deps)
	r.Statistics = usecase.NewStatisticsStore(deps)
	r.Finance = usecase.NewFinanceStore()
	r.contract = usecase.NewContract(deps)

	r.cancels = append(r.cancels, r.Statistics.Subscribe(r.Finance.Apply))

	return r
}

// Close detaches internal subscriptions.
func (r *Root) Close() {
	r.mu.Lock()
	cancels := r.cancels
	r.cancels = nil
	r.mu.Unlock()
	for _, cancel := range cancels {
		cancel()
	}
}

func (r *Root) Session() domain.Session {
	return r.session.Get()
}

func (r *Root) SubscribeSession(fn func(domain.Session)) func() {
	return r.session.Subscribe(fn)
}

// Signer returns the session's submit capability.
func (r *Root) Signer() (logistics.SubmitFunc, error) {
	s := r.session.Get()
	if !s.Connected() || !s.HasSigner() {
		return nil, domain.ErrNotConnected
	}
	return s.Signer, nil
}

// OnWalletChange records the wallet's account and signer. It may fire several
// times for one connection; initialization runs at most once per session.
func (r *Root) OnWalletChange(ctx context.Context, ws logistics.WalletState) error {
	account := strings.TrimSpace(ws.Account)
	if !ws.Connected || account == "" {
		r.Disconnect()
		return nil
	}

	walletName := ""
	if ws.Wallet != nil {
		walletName = ws.Wallet.Name
	}

	next := r.session.Update(func(s domain.Session) domain.Session {
		if logistics.NormalizeAddress(s.Account) != logistics.NormalizeAddress(account) {
			s = domain.Session{Account: account}
		}
		s.WalletName = walletName
		if ws.Signer != nil {
			s.Signer = ws.Signer
		}
		return s
	})
	r.log.Info("wallet changed", "account", logistics.ShortAddress(account), "wallet", walletName, "signer", next.HasSigner())

	if !next.HasSigner() || next.ContractInitialized {
		return nil
	}
	return r.InitializeContract(ctx)
}

func (r *Root) Disconnect() {
	if r.session.Get().Connected() {
		r.log.Info("wallet disconnected")
	}
	r.session.Set(domain.Session{})
}

// InitializeContract submits core::initialize for the session account unless
// it already ran or is running for that account. A rejected attempt may be
// retried.
func (r *Root) InitializeContract(ctx context.Context) error {
	r.mu.Lock()
	s := r.session.Get()
	if !s.Connected() || !s.HasSigner() {
		r.mu.Unlock()
		return domain.ErrNotConnected
	}
	key := logistics.NormalizeAddress(s.Account)
	if s.ContractInitialized || r.initializing[key] {
		r.mu.Unlock()
		return nil
	}
	r.initializing[key] = true
	r.mu.Unlock()

	defer func() {
		r.mu.Lock()
		delete(r.initializing, key)
		r.mu.Unlock()
	}()

	if r.marker != nil {
		done, err := r.marker.Initialized(ctx, s.Account)
		if err != nil {
			r.log.Warn("init marker lookup failed", "account", s.Account, "error", err)
		}
		if done {
			r.log.Debug("contract already initialized", "account", s.Account)
			r.markInitialized(s.Account)
			return nil
		}
	}

	if _, err := r.contract.Initialize(ctx, s.Account, s.Signer); err != nil {
		return err
	}
	r.markInitialized(s.Account)

	if r.marker != nil {
		if err := r.marker.MarkInitialized(ctx, s.Account); err != nil {
			r.log.Warn("init marker store failed", "account", s.Account, "error", err)
		}
	}
	return nil
}

func (r *Root) markInitialized(account string) {
	r.session.Update(func(s domain.Session) domain.Session {
		if s.Account == account {
			s.ContractInitialized = true
		}
		return s
	})
}

// Emit relays a confirmed write. It runs synchronously inside the writing
// operation, after its notification.
func (r *Root) Emit(ctx context.Context, e domain.Event) {
	if e.Origin == "" {
		e.Origin = r.origin
	}
	r.log.Debug("event", "kind", e.Kind, "subject", e.Subject, "hash", e.TxHash)

	if r.relayStatistics && affectsStatistics(e.Kind) {
		if _, err := r.Statistics.FetchPlatformStats(ctx); err != nil {
			r.log.Warn("statistics relay failed", "kind", e.Kind, "error", err)
		}
	}

	if r.publisher != nil {
		if err := r.publisher.Publish(ctx, e); err != nil {
			r.log.Warn("event publish failed", "kind", e.Kind, "error", err)
		}
	}
}

// OnRemoteEvent handles an event published by another process.
func (r *Root) OnRemoteEvent(ctx context.Context, e domain.Event) {
	if e.Origin == r.origin {
		return
	}
	r.log.Debug("remote event", "kind", e.Kind, "origin", e.Origin)
	if r.relayStatistics && affectsStatistics(e.Kind) {
		if _, err := r.Statistics.FetchPlatformStats(ctx); err != nil {
			r.log.Warn("statistics relay failed", "kind", e.Kind, "error", err)
		}
	}
}

func affectsStatistics(kind domain.EventKind) bool {
	switch kind {
	case domain.EventOrderCreated,
		domain.EventOrderConfirmed,
		domain.EventCourierRegistered,
		domain.EventCourierDeactivated,
		domain.EventUserRegistered:
		return true
	}
	return false
}

func (r *Root) RegisterUser(ctx context.Context, email string) (logistics.SubmitResult, error) {
	signer, err := r.Signer()
	if err != nil {
		return logistics.SubmitResult{}, err
	}
	return r.Users.RegisterUser(ctx, email, signer)
}

func (r *Root) UpdateUserInfo(ctx context.Context, email string) (logistics.SubmitResult, error) {
	signer, err := r.Signer()
	if err != nil {
		return logistics.SubmitResult{}, err
	}
	return r.Users.UpdateUserInfo(ctx, email, signer)
}

func (r *Root) DeactivateUser(ctx context.Context, address string) (logistics.SubmitResult, error) {
	signer, err := r.Signer()
	if err != nil {
		return logistics.SubmitResult{}, err
	}
	return r.Users.DeactivateUser(ctx, address, signer)
}

func (r *Root) ReactivateUser(ctx context.Context, address string) (logistics.SubmitResult, error) {
	signer, err := r.Signer()
	if err != nil {
		return logistics.SubmitResult{}, err
	}
	return r.Users.ReactivateUser(ctx, address, signer)
}

func (r *Root) RegisterCourier(ctx context.Context, courierAddress, name string) (logistics.SubmitResult, error) {
	signer, err := r.Signer()
	if err != nil {
		return logistics.SubmitResult{}, err
	}
	return r.Couriers.RegisterCourier(ctx, courierAddress, name, signer)
}

func (r *Root) UpdateCourierInfo(ctx context.Context, name string) (logistics.SubmitResult, error) {
	signer, err := r.Signer()
	if err != nil {
		return logistics.SubmitResult{}, err
	}
	return r.Couriers.UpdateCourierInfo(ctx, name, signer)
}

func (r *Root) DeactivateCourier(ctx context.Context, courierAddress string) (logistics.SubmitResult, error) {
	signer, err := r.Signer()
	if err != nil {
		return logistics.SubmitResult{}, err
	}
	return r.Couriers.DeactivateCourier(ctx, courierAddress, signer)
}

func (r *Root) CreateOrder(ctx context.Context, in usecase.CreateOrderInput) (logistics.SubmitResult, error) {
	signer, err := r.Signer()
	if err != nil {
		return logistics.SubmitResult{}, err
	}
	return r.Orders.CreateOrder(ctx, in, signer)
}

// ConfirmOrder confirms and then re-reads the last queried address's orders,
// which is the only way a cached status can change.
func (r *Root) ConfirmOrder(ctx context.Context, orderID uint64) (logistics.SubmitResult, error) {
	signer, err := r.Signer()
	if err != nil {
		return logistics.SubmitResult{}, err
	}
	res, err := r.Orders.ConfirmOrder(ctx, orderID, signer)
	if err != nil {
		return res, err
	}
	if address := r.Orders.LastQuery(); address != "" {
		if _, err := r.Orders.GetUserOrders(ctx, address); err != nil {
			r.log.Warn("refetch after confirm failed", "address", address, "error", err)
		}
	}
	return res, nil
}

// Refresh reloads the aggregate and, given an address, that account's user
// record and orders.
func (r *Root) Refresh(ctx context.Context, address string) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		_, err := r.Statistics.FetchPlatformStats(ctx)
		return err
	})
	if address != "" {
		g.Go(func() error {
			_, err := r.Users.FetchUser(ctx, address)
			return err
		})
		g.Go(func() error {
			_, err := r.Orders.GetUserOrders(ctx, address)
			return err
		})
	}
	return g.Wait()
}

// Subscribe calls fn after any store changes.
func (r *Root) Subscribe(fn func()) func() {
	cancels := []func(){
		r.session.Subscribe(func(domain.Session) { fn() }),
		r.Users.Subscribe(func([]domain.User) { fn() }),
		r.Orders.Subscribe(func([]domain.Order) { fn() }),
		r.Couriers.Subscribe(func(domain.CourierStats) { fn() }),
		r.Statistics.Subscribe(func(domain.PlatformStats) { fn() }),
		r.Finance.Subscribe(func(domain.FinanceStats) { fn() }),
		r.Notifications.Subscribe(func([]domain.Notification) { fn() }),
	}
	return func() {
		for _, cancel := range cancels {
			cancel()
		}
	}
}
