package rest

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/hhyyy9/logistics-platform"
	"github.com/hhyyy9/logistics-platform/client"
	"github.com/hhyyy9/logistics-platform/internal/application"
	"github.com/hhyyy9/logistics-platform/internal/domain"
	"github.com/hhyyy9/logistics-platform/internal/present/rest/middleware"
	"github.com/hhyyy9/logistics-platform/internal/present/rest/presenter"
	"github.com/hhyyy9/logistics-platform/internal/usecase"
)

// WalletSource reports the wallet bridge's current account and signer.
type WalletSource interface {
	Account(ctx context.Context) (logistics.WalletState, error)
}

type SubmissionLister interface {
	Recent(ctx context.Context, limit int) ([]domain.Submission, error)
}

type LedgerInfoSource interface {
	LedgerInfo(ctx context.Context) (client.LedgerInfo, error)
}

type Handler struct {
	root        *application.Root
	wallet      WalletSource
	submissions SubmissionLister
	ledger      LedgerInfoSource
}

func NewHandler(
	root *application.Root,
	wallet WalletSource,
	submissions SubmissionLister,
	ledger LedgerInfoSource,
) *Handler {
	return &Handler{
		root:        root,
		wallet:      wallet,
		submissions: submissions,
		ledger:      ledger,
	}
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	signed := middleware.NewSessionMiddleware(h.root).RequireSigner

	e.GET("/api/v1/state", h.handleState)
	e.POST("/api/v1/session", h.handleConnect)
	e.DELETE("/api/v1/session", h.handleDisconnect)
	e.POST("/api/v1/session/initialize", h.handleInitialize, signed)

	e.POST("/api/v1/users", h.handleRegisterUser, signed)
	e.PUT("/api/v1/users", h.handleUpdateUser, signed)
	e.GET("/api/v1/users/:address", h.handleGetUser)
	e.POST("/api/v1/users/:address/deactivate", h.handleDeactivateUser, signed)
	e.POST("/api/v1/users/:address/reactivate", h.handleReactivateUser, signed)

	e.POST("/api/v1/couriers", h.handleRegisterCourier, signed)
	e.PUT("/api/v1/couriers", h.handleUpdateCourier, signed)
	e.POST("/api/v1/couriers/:address/deactivate", h.handleDeactivateCourier, signed)
	e.GET("/api/v1/couriers/stats", h.handleCourierStats)
	e.PUT("/api/v1/couriers/stats", h.handleSetCourierTotals)

	e.POST("/api/v1/orders", h.handleCreateOrder, signed)
	e.GET("/api/v1/orders", h.handleGetOrders)
	e.POST("/api/v1/orders/:id/confirm", h.handleConfirmOrder, signed)

	e.GET("/api/v1/stats", h.handleStats)
	e.GET("/api/v1/finance", h.handleFinance)
	e.PUT("/api/v1/finance", h.handleSetFinance)
	e.GET("/api/v1/notifications", h.handleNotifications)
	e.GET("/api/v1/submissions", h.handleSubmissions)
	e.GET("/api/v1/ledger", h.handleLedger)
	e.POST("/api/v1/refresh", h.handleRefresh)

	e.GET("/realtime", h.handleRealtime)
}

type submitResponse struct {
	Hash string `json:"hash"`
}

func submitted(c echo.Context, res logistics.SubmitResult, err error) error {
	if err != nil {
		return presenter.Error(c, err)
	}
	return presenter.OK(c, submitResponse{Hash: res.Hash})
}

func (h *Handler) handleState(c echo.Context) error {
	return presenter.OK(c, h.root.Snapshot())
}

func (h *Handler) handleConnect(c echo.Context) error {
	ctx := c.Request().Context()
	if h.wallet == nil {
		return presenter.Error(c, domain.ConfigurationError{Parameter: "signer endpoint"})
	}

	state, err := h.wallet.Account(ctx)
	if err != nil {
		return presenter.InternalError(c, err)
	}
	if !state.Connected {
		return presenter.Error(c, domain.ErrNotConnected)
	}

	// initialization failures are already reported as notifications
	if err := h.root.OnWalletChange(ctx, state); err != nil {
		zap.L().Warn("initialize on connect failed", zap.Error(err))
	}
	return presenter.OK(c, h.root.Snapshot().Session)
}

func (h *Handler) handleDisconnect(c echo.Context) error {
	h.root.Disconnect()
	return presenter.OK(c, echo.Map{"status": "ok"})
}

func (h *Handler) handleInitialize(c echo.Context) error {
	if err := h.root.InitializeContract(c.Request().Context()); err != nil {
		return presenter.Error(c, err)
	}
	return presenter.OK(c, h.root.Snapshot().Session)
}

type emailRequest struct {
	Email string `json:"email"`
}

func (h *Handler) handleRegisterUser(c echo.Context) error {
	var req emailRequest
	if err := c.Bind(&req); err != nil {
		return presenter.BadRequest(c, err)
	}
	res, err := h.root.RegisterUser(c.Request().Context(), req.Email)
	return submitted(c, res, err)
}

func (h *Handler) handleUpdateUser(c echo.Context) error {
	var req emailRequest
	if err := c.Bind(&req); err != nil {
		return presenter.BadRequest(c, err)
	}
	res, err := h.root.UpdateUserInfo(c.Request().Context(), req.Email)
	return submitted(c, res, err)
}

func (h *Handler) handleGetUser(c echo.Context) error {
	address := c.Param("address")
	user, err := h.root.Users.FetchUser(c.Request().Context(), address)
	if err != nil {
		return presenter.Error(c, err)
	}
	if user.Address == "" {
		return presenter.NotFound(c, "user not found")
	}
	return presenter.OK(c, user)
}

func (h *Handler) handleDeactivateUser(c echo.Context) error {
	res, err := h.root.DeactivateUser(c.Request().Context(), c.Param("address"))
	return submitted(c, res, err)
}

func (h *Handler) handleReactivateUser(c echo.Context) error {
	res, err := h.root.ReactivateUser(c.Request().Context(), c.Param("address"))
	return submitted(c, res, err)
}

type courierRequest struct {
	Address string `json:"address"`
	Name    string `json:"name"`
}

func (h *Handler) handleRegisterCourier(c echo.Context) error {
	var req courierRequest
	if err := c.Bind(&req); err != nil {
		return presenter.BadRequest(c, err)
	}
	res, err := h.root.RegisterCourier(c.Request().Context(), req.Address, req.Name)
	return submitted(c, res, err)
}

func (h *Handler) handleUpdateCourier(c echo.Context) error {
	var req courierRequest
	if err := c.Bind(&req); err != nil {
		return presenter.BadRequest(c, err)
	}
	res, err := h.root.UpdateCourierInfo(c.Request().Context(), req.Name)
	return submitted(c, res, err)
}

func (h *Handler) handleDeactivateCourier(c echo.Context) error {
	res, err := h.root.DeactivateCourier(c.Request().Context(), c.Param("address"))
	return submitted(c, res, err)
}

type courierStatsResponse struct {
	domain.CourierStats
	ActiveRate float64 `json:"activeRate"`
}

func (h *Handler) handleCourierStats(c echo.Context) error {
	stats := h.root.Couriers.Stats()
	return presenter.OK(c, courierStatsResponse{CourierStats: stats, ActiveRate: stats.ActiveRate()})
}

func (h *Handler) handleSetCourierTotals(c echo.Context) error {
	var req domain.CourierStats
	if err := c.Bind(&req); err != nil {
		return presenter.BadRequest(c, err)
	}
	h.root.Couriers.SetTotals(req.TotalCouriers, req.ActiveCouriers)
	return h.handleCourierStats(c)
}

func (h *Handler) handleCreateOrder(c echo.Context) error {
	var req usecase.CreateOrderInput
	if err := c.Bind(&req); err != nil {
		return presenter.BadRequest(c, err)
	}
	res, err := h.root.CreateOrder(c.Request().Context(), req)
	return submitted(c, res, err)
}

type ordersResponse struct {
	Address        string         `json:"address"`
	Orders         []domain.Order `json:"orders"`
	CompletionRate float64        `json:"completionRate"`
}

func (h *Handler) handleGetOrders(c echo.Context) error {
	address := strings.TrimSpace(c.QueryParam("address"))
	if address == "" {
		address = h.root.Session().Account
	}
	orders, err := h.root.Orders.GetUserOrders(c.Request().Context(), address)
	if err != nil {
		return presenter.Error(c, err)
	}
	return presenter.OK(c, ordersResponse{
		Address:        address,
		Orders:         orders,
		CompletionRate: h.root.Orders.Stats().CompletionRate(),
	})
}

func (h *Handler) handleConfirmOrder(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return presenter.BadRequestMessage(c, "invalid order id")
	}
	res, err := h.root.ConfirmOrder(c.Request().Context(), id)
	return submitted(c, res, err)
}

type statsResponse struct {
	domain.PlatformStats
	CompletionRate float64 `json:"completionRate"`
}

func (h *Handler) handleStats(c echo.Context) error {
	stats, err := h.root.Statistics.FetchPlatformStats(c.Request().Context())
	if err != nil {
		return presenter.Error(c, err)
	}
	return presenter.OK(c, statsResponse{PlatformStats: stats, CompletionRate: stats.CompletionRate()})
}

type financeResponse struct {
	domain.FinanceStats
	Profit int64 `json:"profit"`
}

type financeRequest struct {
	TotalRevenue  *uint64 `json:"totalRevenue"`
	TotalExpenses *uint64 `json:"totalExpenses"`
}

func (h *Handler) handleFinance(c echo.Context) error {
	f := h.root.Finance.Stats()
	return presenter.OK(c, financeResponse{FinanceStats: f, Profit: f.Profit()})
}

func (h *Handler) handleSetFinance(c echo.Context) error {
	var req financeRequest
	if err := c.Bind(&req); err != nil {
		return presenter.BadRequest(c, err)
	}
	if req.TotalRevenue != nil {
		h.root.Finance.SetTotalRevenue(*req.TotalRevenue)
	}
	if req.TotalExpenses != nil {
		h.root.Finance.SetTotalExpenses(*req.TotalExpenses)
	}
	return h.handleFinance(c)
}

func (h *Handler) handleNotifications(c echo.Context) error {
	return presenter.OK(c, h.root.Notifications.List())
}

func (h *Handler) handleSubmissions(c echo.Context) error {
	if h.submissions == nil {
		return presenter.OK(c, []domain.Submission{})
	}
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	list, err := h.submissions.Recent(c.Request().Context(), limit)
	if err != nil {
		return presenter.InternalError(c, err)
	}
	return presenter.OK(c, list)
}

func (h *Handler) handleLedger(c echo.Context) error {
	if h.ledger == nil {
		return presenter.Error(c, domain.ConfigurationError{Parameter: "ledger node"})
	}
	info, err := h.ledger.LedgerInfo(c.Request().Context())
	if err != nil {
		return presenter.InternalError(c, err)
	}
	return presenter.OK(c, info)
}

func (h *Handler) handleRefresh(c echo.Context) error {
	address := strings.TrimSpace(c.QueryParam("address"))
	if address == "" {
		address = h.root.Session().Account
	}
	if err := h.root.Refresh(c.Request().Context(), address); err != nil {
		return presenter.Error(c, err)
	}
	return presenter.OK(c, h.root.Snapshot())
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type Request struct {
	Type    string `json:"type"`
	Address string `json:"address"`
}

func (h *Handler) handleRealtime(c echo.Context) error {
	ws, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		zap.L().Error("failed to upgrade websocket", zap.Error(err))
		return err
	}
	defer func() {
		ws.Close()
	}()

	ctx := c.Request().Context()

	changed := make(chan struct{}, 1)
	cancel := h.root.Subscribe(func() {
		select {
		case changed <- struct{}{}:
		default:
		}
	})
	defer cancel()

	quit := make(chan struct{})

	go func() {
		defer close(quit)
		for {
			var req Request
			err := ws.ReadJSON(&req)
			if err != nil {
				wsErr, ok := err.(*websocket.CloseError)
				if ok {
					if !(wsErr.Code == websocket.CloseNormalClosure || wsErr.Code == websocket.CloseGoingAway) {
						zap.L().Debug("websocket closed", zap.Error(wsErr))
					}
				} else {
					zap.L().Debug("error reading message", zap.Error(err))
				}
				return
			}

			switch req.Type {
			case "refresh":
				if err := h.root.Refresh(ctx, req.Address); err != nil {
					zap.L().Warn("realtime refresh failed", zap.Error(err))
				}
			case "h": // heartbeat
			default:
				zap.L().Info("unknown request type", zap.String("type", req.Type))
			}
		}
	}()

	if err := ws.WriteJSON(h.root.Snapshot()); err != nil {
		return nil
	}

	for {
		select {
		case <-quit:
			return nil
		case <-changed:
			if err := ws.WriteJSON(h.root.Snapshot()); err != nil {
				zap.L().Debug("error writing message", zap.Error(err))
				return nil
			}
		}
	}
}
