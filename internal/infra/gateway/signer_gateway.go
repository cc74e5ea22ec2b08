package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/hhyyy9/logistics-platform"
)

var tracer = otel.Tracer("gateway")

// SignerGateway forwards transactions to a wallet bridge that owns the keys.
// It never retries; a rejected submission is final.
type SignerGateway struct {
	client   *http.Client
	endpoint string
}

func NewSignerGateway(endpoint string) *SignerGateway {
	return &SignerGateway{
		client:   &http.Client{Timeout: 2 * time.Minute},
		endpoint: strings.TrimRight(endpoint, "/"),
	}
}

type bridgePayload struct {
	Function      string   `json:"function"`
	TypeArguments []string `json:"type_arguments"`
	Arguments     []any    `json:"arguments"`
}

type bridgeRequest struct {
	Payload bridgePayload `json:"payload"`
}

type bridgeResponse struct {
	Hash    string `json:"hash"`
	Message string `json:"message"`
}

type bridgeAccount struct {
	Account string                 `json:"account"`
	Wallet  *logistics.WalletInfo  `json:"wallet"`
	Wallets []logistics.WalletInfo `json:"wallets"`
}

// Submit satisfies logistics.SubmitFunc. A non-2xx answer carries the
// bridge's message verbatim.
func (g *SignerGateway) Submit(ctx context.Context, req logistics.TransactionRequest) (logistics.SubmitResult, error) {
	ctx, span := tracer.Start(ctx, "Gateway.Signer.Submit")
	defer span.End()
	span.SetAttributes(attribute.String("function", req.Payload.Function))

	body := bridgeRequest{Payload: bridgePayload{
		Function:      req.Payload.Function,
		TypeArguments: req.Payload.TypeArguments,
		Arguments:     req.Payload.FunctionArguments,
	}}
	if body.Payload.TypeArguments == nil {
		body.Payload.TypeArguments = []string{}
	}
	if body.Payload.Arguments == nil {
		body.Payload.Arguments = []any{}
	}

	var res bridgeResponse
	status, err := g.do(ctx, http.MethodPost, "/v1/transactions", body, &res)
	if err != nil {
		span.RecordError(err)
		return logistics.SubmitResult{}, err
	}
	if status < 200 || status > 299 {
		err := errors.New(res.Message)
		span.RecordError(err)
		return logistics.SubmitResult{}, err
	}
	return logistics.SubmitResult{Hash: res.Hash}, nil
}

// Account reports the bridge's connected account. The returned state carries
// this gateway as its signer when an account is connected.
func (g *SignerGateway) Account(ctx context.Context) (logistics.WalletState, error) {
	ctx, span := tracer.Start(ctx, "Gateway.Signer.Account")
	defer span.End()

	var res bridgeAccount
	status, err := g.do(ctx, http.MethodGet, "/v1/account", nil, &res)
	if err != nil {
		return logistics.WalletState{}, err
	}
	if status != http.StatusOK {
		return logistics.WalletState{}, errors.Errorf("wallet bridge returned status %d", status)
	}

	state := logistics.WalletState{
		Account: res.Account,
		Wallet:  res.Wallet,
		Wallets: res.Wallets,
	}
	if state.Account != "" {
		state.Connected = true
		state.Signer = g.Submit
	}
	return state, nil
}

func (g *SignerGateway) do(ctx context.Context, method, path string, body any, response any) (int, error) {
	if g.endpoint == "" {
		return 0, errors.New("signer endpoint is not configured")
	}

	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return 0, errors.Wrap(err, "failed to encode request")
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, g.endpoint+path, reader)
	if err != nil {
		return 0, errors.Wrap(err, "failed to create request")
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return 0, errors.Wrap(err, "failed to reach wallet bridge")
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return resp.StatusCode, errors.Wrap(err, "failed to read response")
	}
	if len(bytes.TrimSpace(raw)) > 0 {
		if err := json.Unmarshal(raw, response); err != nil && resp.StatusCode < 300 {
			return resp.StatusCode, errors.Wrap(err, "failed to decode response")
		}
	}
	return resp.StatusCode, nil
}
