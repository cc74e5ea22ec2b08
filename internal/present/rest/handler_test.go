package rest

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/hhyyy9/logistics-platform"
	"github.com/hhyyy9/logistics-platform/internal/application"
	"github.com/hhyyy9/logistics-platform/internal/usecase"
)

type mockWallet struct {
	err error
}

func (m *mockWallet) Submit(ctx context.Context, req logistics.TransactionRequest) (logistics.SubmitResult, error) {
	if m.err != nil {
		return logistics.SubmitResult{}, m.err
	}
	return logistics.SubmitResult{Hash: "0xhash"}, nil
}

func (m *mockWallet) Account(ctx context.Context) (logistics.WalletState, error) {
	return logistics.WalletState{Account: "0xaa", Connected: true, Signer: m.Submit}, nil
}

func newTestServer(t *testing.T, wallet *mockWallet) (*echo.Echo, *application.Root) {
	reader := logistics.ViewFunc(func(ctx context.Context, req logistics.ViewRequest) ([]any, error) {
		if strings.HasSuffix(req.Payload.Function, "get_platform_stats") {
			return []any{"4", "1", "3", "900", "2", "1", "0", "100", "10"}, nil
		}
		return []any{[]any{}}, nil
	})
	root := application.NewRoot(application.Options{
		Deps: usecase.Deps{ModuleAddress: "0x1", Reader: reader},
	})
	t.Cleanup(root.Close)

	e := echo.New()
	NewHandler(root, wallet, nil, nil).RegisterRoutes(e)
	return e, root
}

func do(e *echo.Echo, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestWritesRequireSession(t *testing.T) {
	e, _ := newTestServer(t, &mockWallet{})

	rec := do(e, http.MethodPost, "/api/v1/users", `{"email":"a@b.cd"}`)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", rec.Code)
	}
}

func TestConnectAndCreateOrder(t *testing.T) {
	e, root := newTestServer(t, &mockWallet{})

	rec := do(e, http.MethodPost, "/api/v1/session", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("connect failed %d %s", rec.Code, rec.Body.String())
	}
	if !root.Session().ContractInitialized {
		t.Fatalf("expected initialized session")
	}

	body := `{"recipient":"0xbb","courier":"0xcc","pickupAddress":"A","deliveryAddress":"B","amount":100}`
	rec = do(e, http.MethodPost, "/api/v1/orders", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("create failed %d %s", rec.Code, rec.Body.String())
	}
	var res submitResponse
	json.Unmarshal(rec.Body.Bytes(), &res)
	if res.Hash != "0xhash" {
		t.Fatalf("unexpected response %s", rec.Body.String())
	}

	rec = do(e, http.MethodPost, "/api/v1/orders", `{"recipient":"0xbb","courier":"0xcc","pickupAddress":"A","deliveryAddress":"B","amount":0}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
}

func TestRejectionStatus(t *testing.T) {
	wallet := &mockWallet{}
	e, _ := newTestServer(t, wallet)
	do(e, http.MethodPost, "/api/v1/session", "")

	wallet.err = errors.New("insufficient funds")
	rec := do(e, http.MethodPost, "/api/v1/couriers", `{"address":"0xcc","name":"Speedy"}`)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "insufficient funds") {
		t.Fatalf("unexpected body %s", rec.Body.String())
	}

	rec = do(e, http.MethodGet, "/api/v1/notifications", "")
	if !strings.Contains(rec.Body.String(), "insufficient funds") {
		t.Fatalf("expected failure notification, got %s", rec.Body.String())
	}
}

func TestStatsAndFinance(t *testing.T) {
	e, _ := newTestServer(t, &mockWallet{})

	rec := do(e, http.MethodGet, "/api/v1/stats", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("stats failed %d", rec.Code)
	}
	var stats statsResponse
	json.Unmarshal(rec.Body.Bytes(), &stats)
	if stats.TotalOrders != 4 || stats.CompletionRate != 0.25 {
		t.Fatalf("unexpected stats %s", rec.Body.String())
	}

	rec = do(e, http.MethodGet, "/api/v1/finance", "")
	var finance financeResponse
	json.Unmarshal(rec.Body.Bytes(), &finance)
	if finance.TotalRevenue != 900 || finance.TotalExpenses != 100 || finance.Profit != 800 {
		t.Fatalf("unexpected finance %s", rec.Body.String())
	}

	rec = do(e, http.MethodPut, "/api/v1/finance", `{"totalExpenses":1000}`)
	json.Unmarshal(rec.Body.Bytes(), &finance)
	if finance.Profit != -100 {
		t.Fatalf("unexpected finance %s", rec.Body.String())
	}
}

func TestMissingModuleAddressIs503(t *testing.T) {
	root := application.NewRoot(application.Options{})
	e := echo.New()
	NewHandler(root, nil, nil, nil).RegisterRoutes(e)

	rec := do(e, http.MethodGet, "/api/v1/stats", "")
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 got %d", rec.Code)
	}
}
