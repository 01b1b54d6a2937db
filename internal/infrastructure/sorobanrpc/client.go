package sorobanrpc

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Client is a minimal JSON-RPC 2.0 client for the Soroban RPC endpoint,
// covering the five methods the gateway needs.
type Client struct {
	client  *fasthttp.Client
	baseURL string
	timeout time.Duration
	logger  *zap.Logger
	nextID  uint64
}

// NewClient creates a Soroban RPC client.
func NewClient(baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	return &Client{
		client:  &fasthttp.Client{},
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: timeout,
		logger:  logger.Named("SorobanRPCClient"),
	}
}

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      uint64 `json:"id"`
	Method  string `json:"method"`
	Params  any    `json:"params,omitempty"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type rpcResponse struct {
	Result jsoniter.RawMessage `json:"result"`
	Error  *rpcError           `json:"error"`
}

type simulateResult struct {
	XDR  string   `json:"xdr"`
	Auth []string `json:"auth"`
}

// SimulateResponse mirrors the simulateTransaction result shape.
type SimulateResponse struct {
	Error           string           `json:"error"`
	TransactionData string           `json:"transactionData"`
	MinResourceFee  string           `json:"minResourceFee"`
	Results         []simulateResult `json:"results"`
	LatestLedger    int64            `json:"latestLedger"`
}

// SendResponse mirrors the sendTransaction result shape.
type SendResponse struct {
	Hash           string `json:"hash"`
	Status         string `json:"status"`
	ErrorResultXDR string `json:"errorResultXdr"`
	LatestLedger   int64  `json:"latestLedger"`
}

// GetTransactionResponse mirrors the getTransaction result shape.
type GetTransactionResponse struct {
	Status       string `json:"status"`
	ResultXDR    string `json:"resultXdr"`
	LatestLedger int64  `json:"latestLedger"`
}

// EventInfo is one ledger event entry.
type EventInfo struct {
	ID             string   `json:"id"`
	TxHash         string   `json:"txHash"`
	Ledger         int64    `json:"ledger"`
	LedgerClosedAt string   `json:"ledgerClosedAt"`
	Topic          []string `json:"topic"`
	Value          string   `json:"value"`
}

// GetEventsResponse mirrors the getEvents result shape.
type GetEventsResponse struct {
	Events       []EventInfo `json:"events"`
	Cursor       string      `json:"cursor"`
	LatestLedger int64       `json:"latestLedger"`
}

// GetLatestLedgerResponse mirrors the getLatestLedger result shape.
type GetLatestLedgerResponse struct {
	Sequence int64 `json:"sequence"`
}

// SimulateTransaction dry-runs an envelope without submitting it.
func (c *Client) SimulateTransaction(ctx context.Context, envelopeXDR string) (SimulateResponse, error) {
	var out SimulateResponse
	err := c.call(ctx, "simulateTransaction", map[string]any{"transaction": envelopeXDR}, &out)
	return out, err
}

// SendTransaction submits a signed envelope.
func (c *Client) SendTransaction(ctx context.Context, signedXDR string) (SendResponse, error) {
	var out SendResponse
	err := c.call(ctx, "sendTransaction", map[string]any{"transaction": signedXDR}, &out)
	return out, err
}

// GetTransaction fetches the status of a submitted transaction.
func (c *Client) GetTransaction(ctx context.Context, hash string) (GetTransactionResponse, error) {
	var out GetTransactionResponse
	err := c.call(ctx, "getTransaction", map[string]any{"hash": hash}, &out)
	return out, err
}

// GetEvents queries the ledger event stream.
func (c *Client) GetEvents(ctx context.Context, params map[string]any) (GetEventsResponse, error) {
	var out GetEventsResponse
	err := c.call(ctx, "getEvents", params, &out)
	return out, err
}

// GetLatestLedger returns the newest ledger sequence known to the RPC node.
func (c *Client) GetLatestLedger(ctx context.Context) (GetLatestLedgerResponse, error) {
	var out GetLatestLedgerResponse
	err := c.call(ctx, "getLatestLedger", nil, &out)
	return out, err
}

// call executes one JSON-RPC round trip and decodes the result into out.
func (c *Client) call(ctx context.Context, method string, params any, out any) error {
	reqBody := rpcRequest{
		JSONRPC: "2.0",
		ID:      atomic.AddUint64(&c.nextID, 1),
		Method:  method,
		Params:  params,
	}
	encoded, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("failed to encode %s request: %w", method, err)
	}

	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)
	req.SetRequestURI(c.baseURL)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentTypeBytes([]byte("application/json"))
	req.SetBody(encoded)

	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	deadline, ok := ctx.Deadline()
	if ok {
		if err := c.client.DoDeadline(req, resp, deadline); err != nil {
			c.logger.Error("Soroban RPC request failed", zap.String("method", method), zap.Error(err))
			return fmt.Errorf("failed to execute %s against %s: %w", method, c.baseURL, err)
		}
	} else {
		if err := c.client.DoTimeout(req, resp, c.timeout); err != nil {
			c.logger.Error("Soroban RPC request failed (with default timeout)", zap.String("method", method), zap.Error(err))
			return fmt.Errorf("failed to execute %s against %s with default timeout: %w", method, c.baseURL, err)
		}
	}

	if resp.StatusCode() != fasthttp.StatusOK {
		return fmt.Errorf("soroban RPC %s returned status %d: %s", method, resp.StatusCode(), string(resp.Body()))
	}

	var envelope rpcResponse
	if err := json.Unmarshal(resp.Body(), &envelope); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", method, err)
	}
	if envelope.Error != nil {
		return fmt.Errorf("soroban RPC %s error %d: %s", method, envelope.Error.Code, envelope.Error.Message)
	}
	if out != nil {
		if err := json.Unmarshal(envelope.Result, out); err != nil {
			return fmt.Errorf("failed to decode %s result: %w", method, err)
		}
	}
	return nil
}
