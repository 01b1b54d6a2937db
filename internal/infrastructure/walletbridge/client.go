package walletbridge

import (
	"context"
	"fmt"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"swap_gateway/internal/app/port"
	"swap_gateway/internal/pkg/utils"
	"swap_gateway/pkg/metrics"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// bridge endpoints, by capability generation. The v2 set is preferred; v1 is
// the legacy fallback older bridge builds still expose.
const (
	pathHealth       = "/health"
	pathRequestV2    = "/v2/requestAccess"
	pathAddressV2    = "/v2/address"
	pathSetAllowedV1 = "/v1/setAllowed"
	pathPublicKeyV1  = "/v1/publicKey"
	pathSign         = "/sign"
	pathNetwork      = "/network"
)

// Client talks to the wallet bridge agent over HTTP. Responses are returned
// as decoded JSON of unknown shape; normalization happens in the services so
// the same extraction rule covers every bridge build.
type Client struct {
	client  *fasthttp.Client
	baseURL string
	timeout time.Duration
	logger  *zap.Logger
}

// NewClient creates a wallet bridge client.
func NewClient(baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	return &Client{
		client:  &fasthttp.Client{},
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: timeout,
		logger:  logger.Named("WalletBridgeClient"),
	}
}

var _ port.WalletChannel = (*Client)(nil)

// Ping implements port.WalletChannel. The health payload advertises whether
// the v2 capability set is available.
func (c *Client) Ping(ctx context.Context) (bool, error) {
	payload, err := c.do(ctx, fasthttp.MethodGet, pathHealth, nil)
	if err != nil {
		metrics.WalletBridgeFailures.WithLabelValues("ping").Inc()
		return false, err
	}
	v2, _ := utils.ExtractBool(payload, "v2", "supportsV2", "supports_v2")
	return v2, nil
}

// RequestAccess implements port.WalletChannel.
func (c *Client) RequestAccess(ctx context.Context) (any, error) {
	payload, err := c.do(ctx, fasthttp.MethodPost, pathRequestV2, map[string]any{})
	if err != nil {
		metrics.WalletBridgeFailures.WithLabelValues("request_access").Inc()
		return nil, err
	}
	return payload, nil
}

// SetAllowed implements port.WalletChannel.
func (c *Client) SetAllowed(ctx context.Context) (bool, error) {
	payload, err := c.do(ctx, fasthttp.MethodPost, pathSetAllowedV1, map[string]any{})
	if err != nil {
		metrics.WalletBridgeFailures.WithLabelValues("set_allowed").Inc()
		return false, err
	}
	allowed, found := utils.ExtractBool(payload, "allowed", "isAllowed", "granted")
	if !found {
		return false, fmt.Errorf("setAllowed response carries no boolean grant")
	}
	return allowed, nil
}

// GetAddress implements port.WalletChannel.
func (c *Client) GetAddress(ctx context.Context) (any, error) {
	payload, err := c.do(ctx, fasthttp.MethodGet, pathAddressV2, nil)
	if err != nil {
		metrics.WalletBridgeFailures.WithLabelValues("get_address").Inc()
		return nil, err
	}
	return payload, nil
}

// GetPublicKey implements port.WalletChannel.
func (c *Client) GetPublicKey(ctx context.Context) (any, error) {
	payload, err := c.do(ctx, fasthttp.MethodGet, pathPublicKeyV1, nil)
	if err != nil {
		metrics.WalletBridgeFailures.WithLabelValues("get_public_key").Inc()
		return nil, err
	}
	return payload, nil
}

// SignTransaction implements port.WalletChannel. This call suspends on the
// wallet's human approval UI; the client timeout is sized accordingly.
func (c *Client) SignTransaction(ctx context.Context, envelopeXDR, networkPassphrase string) (any, error) {
	body := map[string]any{
		"xdr":               envelopeXDR,
		"networkPassphrase": networkPassphrase,
	}
	payload, err := c.do(ctx, fasthttp.MethodPost, pathSign, body)
	if err != nil {
		metrics.WalletBridgeFailures.WithLabelValues("sign").Inc()
		return nil, err
	}
	return payload, nil
}

// GetNetworkPassphrase implements port.WalletChannel.
func (c *Client) GetNetworkPassphrase(ctx context.Context) (any, error) {
	payload, err := c.do(ctx, fasthttp.MethodGet, pathNetwork, nil)
	if err != nil {
		metrics.WalletBridgeFailures.WithLabelValues("get_network").Inc()
		return nil, err
	}
	return payload, nil
}

// do executes one bridge request and decodes the body as arbitrary JSON.
// Non-JSON bodies are returned as a bare string so the scalar extraction
// rule still applies.
func (c *Client) do(ctx context.Context, method, path string, body any) (any, error) {
	requestURL := c.baseURL + path

	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)
	req.SetRequestURI(requestURL)
	req.Header.SetMethod(method)
	req.Header.SetContentTypeBytes([]byte("application/json"))

	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body for %s: %w", requestURL, err)
		}
		req.SetBody(encoded)
	}

	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	deadline, ok := ctx.Deadline()
	if ok {
		if err := c.client.DoDeadline(req, resp, deadline); err != nil {
			c.logger.Error("Failed to execute wallet bridge request", zap.String("url", requestURL), zap.Error(err))
			return nil, fmt.Errorf("failed to execute request to %s: %w", requestURL, err)
		}
	} else {
		if err := c.client.DoTimeout(req, resp, c.timeout); err != nil {
			c.logger.Error("Failed to execute wallet bridge request (with default timeout)", zap.String("url", requestURL), zap.Error(err))
			return nil, fmt.Errorf("failed to execute request to %s with default timeout: %w", requestURL, err)
		}
	}

	rawBody := resp.Body()

	if resp.StatusCode() != fasthttp.StatusOK {
		c.logger.Warn("Wallet bridge request returned non-OK status",
			zap.String("url", requestURL),
			zap.Int("statusCode", resp.StatusCode()),
			zap.ByteString("responseBody", rawBody))
		return nil, fmt.Errorf("wallet bridge request to %s failed with status %d: %s", requestURL, resp.StatusCode(), string(rawBody))
	}

	var payload any
	if err := json.Unmarshal(rawBody, &payload); err != nil {
		// Some bridge builds answer with a raw string body.
		trimmed := strings.TrimSpace(string(rawBody))
		if trimmed == "" {
			return nil, fmt.Errorf("wallet bridge returned an empty body from %s", requestURL)
		}
		c.logger.Debug("Wallet bridge body is not JSON, treating as bare string", zap.String("url", requestURL))
		return trimmed, nil
	}
	return payload, nil
}
