package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/hhyyy9/logistics-platform"
)

const (
	defaultTimeout = 10 * time.Second
	userAgent      = "logistics-platform/1.0"
)

var tracer = otel.Tracer("client")

// Client talks to a ledger node's REST interface.
type Client struct {
	client    *http.Client
	cache     *cache.Cache
	limiter   *rate.Limiter
	userAgent string
	nodeURL   string
}

// New returns a Client for nodeURL. ratePerSecond <= 0 disables throttling.
func New(nodeURL string, ratePerSecond float64, burst int) *Client {
	httpClient := http.Client{
		Timeout: defaultTimeout,
	}

	limit := rate.Inf
	if ratePerSecond > 0 {
		limit = rate.Limit(ratePerSecond)
	}
	if burst <= 0 {
		burst = 1
	}

	c := &Client{
		client:    &httpClient,
		cache:     cache.New(30*time.Second, time.Minute),
		limiter:   rate.NewLimiter(limit, burst),
		userAgent: userAgent,
		nodeURL:   strings.TrimRight(nodeURL, "/"),
	}
	httpClient.Transport = c
	zap.L().Info("ledger client initialized", zap.String("node", c.nodeURL))
	return c
}

func (c *Client) RoundTrip(req *http.Request) (*http.Response, error) {
	req.Header.Set("User-Agent", c.userAgent)
	return http.DefaultTransport.RoundTrip(req)
}

// NodeError is a non-2xx answer from the node.
type NodeError struct {
	StatusCode int    `json:"-"`
	Message    string `json:"message"`
	ErrorCode  string `json:"error_code"`
}

func (e *NodeError) Error() string {
	if e.Message == "" {
		return "ledger node returned status " + http.StatusText(e.StatusCode)
	}
	return e.Message
}

type viewBody struct {
	Function      string   `json:"function"`
	TypeArguments []string `json:"type_arguments"`
	Arguments     []any    `json:"arguments"`
}

// LedgerInfo is the node's index response.
type LedgerInfo struct {
	ChainID         int    `json:"chain_id"`
	Epoch           string `json:"epoch"`
	LedgerVersion   string `json:"ledger_version"`
	LedgerTimestamp string `json:"ledger_timestamp"`
	BlockHeight     string `json:"block_height"`
	NodeRole        string `json:"node_role"`
}

func (c *Client) HttpRequest(ctx context.Context, method, path string, body any, response any) error {
	ctx, span := tracer.Start(ctx, "Client.HttpRequest")
	defer span.End()
	span.SetAttributes(attribute.String("method", method), attribute.String("path", path))

	if c.nodeURL == "" {
		return errors.New("node url cannot be empty")
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return errors.Wrap(err, "rate limiter")
	}

	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			span.RecordError(err)
			return errors.Wrap(err, "failed to encode request")
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.nodeURL+path, reader)
	if err != nil {
		return errors.Wrap(err, "failed to create request")
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		span.RecordError(err)
		return errors.Wrap(err, "failed to perform request")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		nodeErr := &NodeError{StatusCode: resp.StatusCode}
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
		_ = json.Unmarshal(raw, nodeErr)
		span.RecordError(nodeErr)
		zap.L().Warn("ledger node error",
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
			zap.String("message", nodeErr.Message),
		)
		return nodeErr
	}

	decoder := json.NewDecoder(resp.Body)
	decoder.UseNumber()
	if err := decoder.Decode(response); err != nil {
		span.RecordError(err)
		return errors.Wrap(err, "failed to decode response")
	}

	return nil
}

// View calls a read-only function and returns the raw result array.
// Numbers are kept as json.Number so u64 values survive.
func (c *Client) View(ctx context.Context, req logistics.ViewRequest) ([]any, error) {
	ctx, span := tracer.Start(ctx, "Client.View")
	defer span.End()
	span.SetAttributes(attribute.String("function", req.Payload.Function))

	body := viewBody{
		Function:      req.Payload.Function,
		TypeArguments: req.Payload.TypeArguments,
		Arguments:     req.Payload.FunctionArguments,
	}
	if body.TypeArguments == nil {
		body.TypeArguments = []string{}
	}
	if body.Arguments == nil {
		body.Arguments = []any{}
	}

	var raw any
	if err := c.HttpRequest(ctx, http.MethodPost, "/v1/view", body, &raw); err != nil {
		return nil, err
	}

	// a non-array body is handed on as a single value so the caller's
	// decoder reports it as an anomaly
	result, isList := raw.([]any)
	if !isList {
		zap.L().Warn("view returned a non-array body",
			zap.String("function", req.Payload.Function),
			zap.String("type", fmt.Sprintf("%T", raw)),
		)
		result = []any{raw}
	}
	zap.L().Debug("view", zap.String("function", req.Payload.Function), zap.Int("values", len(result)))
	return result, nil
}

// LedgerInfo returns the node's index response, cached briefly.
func (c *Client) LedgerInfo(ctx context.Context) (LedgerInfo, error) {
	const cacheKey = "ledger:info"
	if x, found := c.cache.Get(cacheKey); found {
		return x.(LedgerInfo), nil
	}

	var info LedgerInfo
	if err := c.HttpRequest(ctx, http.MethodGet, "/v1", nil, &info); err != nil {
		return LedgerInfo{}, errors.Wrap(err, "failed to get ledger info")
	}

	c.cache.Set(cacheKey, info, cache.DefaultExpiration)
	return info, nil
}
