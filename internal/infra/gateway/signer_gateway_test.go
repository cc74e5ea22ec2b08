package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hhyyy9/logistics-platform"
)

func TestSubmit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/transactions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var body bridgeRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode: %v", err)
		}
		if body.Payload.Function != "0x1::core::confirm_order_v2" || body.Payload.Arguments[0] != "7" {
			t.Errorf("unexpected payload %+v", body.Payload)
		}
		w.Write([]byte(`{"hash":"0xfeed"}`))
	}))
	defer srv.Close()

	g := NewSignerGateway(srv.URL)
	res, err := g.Submit(context.Background(), logistics.TransactionRequest{
		Payload: logistics.NewPayload("0x1::core::confirm_order_v2", "7"),
	})
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if res.Hash != "0xfeed" {
		t.Fatalf("unexpected hash %s", res.Hash)
	}
}

func TestSubmitRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"message":"insufficient funds"}`))
	}))
	defer srv.Close()

	g := NewSignerGateway(srv.URL)
	_, err := g.Submit(context.Background(), logistics.TransactionRequest{Payload: logistics.NewPayload("0x1::core::initialize")})
	if err == nil || err.Error() != "insufficient funds" {
		t.Fatalf("expected bridge message got %v", err)
	}
}

func TestAccount(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"account":"0xaa","wallet":{"name":"Petra"},"wallets":[{"name":"Petra"}]}`))
	}))
	defer srv.Close()

	state, err := NewSignerGateway(srv.URL).Account(context.Background())
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if !state.Connected || state.Account != "0xaa" || state.Signer == nil || state.Wallet.Name != "Petra" {
		t.Fatalf("unexpected state %+v", state)
	}
}

func TestUnconfiguredEndpoint(t *testing.T) {
	if _, err := NewSignerGateway("").Submit(context.Background(), logistics.TransactionRequest{}); err == nil {
		t.Fatalf("expected error")
	}
}
