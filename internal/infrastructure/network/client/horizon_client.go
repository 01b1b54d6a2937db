package client

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/stellar/go/clients/horizonclient"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"swap_gateway/internal/app/port"
	"swap_gateway/internal/domain/entity"
	"swap_gateway/internal/infrastructure/configloader"
)

// classic asset decimal precision on the ledger
const ledgerDecimals = 7

// HorizonClient implements port.LedgerGateway against a Horizon REST API.
// All requests pass through a shared rate limiter so bursts of pricing
// previews cannot starve the submission path.
type HorizonClient struct {
	horizon *horizonclient.Client
	limiter *rate.Limiter
	logger  *zap.Logger
}

// NewHorizonClient creates a ledger gateway for the configured Horizon endpoint.
func NewHorizonClient(cfg *configloader.Config, logger *zap.Logger) port.LedgerGateway {
	httpClient := &http.Client{
		Timeout: time.Duration(cfg.Horizon.RequestTimeoutSeconds) * time.Second,
	}
	return &HorizonClient{
		horizon: &horizonclient.Client{
			HorizonURL: cfg.Horizon.BaseURL,
			HTTP:       httpClient,
		},
		limiter: rate.NewLimiter(rate.Limit(cfg.Horizon.MaxRequestsPerSecond), int(cfg.Horizon.MaxRequestsPerSecond)+1),
		logger:  logger.Named("HorizonClient"),
	}
}

// LoadAccount fetches sequence and balances for an address. A 404 from the
// ledger is the legitimate "account does not exist yet" state and is
// reported through AccountState.Exists rather than as an error.
func (c *HorizonClient) LoadAccount(ctx context.Context, address string) (entity.AccountState, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return entity.AccountState{}, fmt.Errorf("rate limiter wait interrupted: %w", err)
	}

	acct, err := c.horizon.AccountDetail(horizonclient.AccountRequest{AccountID: address})
	if err != nil {
		if herr := horizonclient.GetError(err); herr != nil && herr.Problem.Status == http.StatusNotFound {
			c.logger.Debug("Account not found on ledger, treating as new account", zap.String("address", address))
			return entity.AccountState{Address: address, Exists: false}, nil
		}
		return entity.AccountState{}, fmt.Errorf("failed to load account %s: %w", address, err)
	}

	seq, err := acct.GetSequenceNumber()
	if err != nil {
		return entity.AccountState{}, fmt.Errorf("failed to parse sequence for account %s: %w", address, err)
	}

	state := entity.AccountState{
		Address:  address,
		Exists:   true,
		Sequence: seq,
		Balances: make([]entity.AssetBalance, 0, len(acct.Balances)),
	}
	for _, b := range acct.Balances {
		desc := entity.AssetDescriptor{Decimals: ledgerDecimals}
		if b.Type == "native" {
			desc.Code = "XLM"
		} else {
			desc.Code = b.Code
			desc.Issuer = b.Issuer
		}
		state.Balances = append(state.Balances, entity.AssetBalance{Asset: desc, Amount: b.Balance})
	}
	return state, nil
}

// Orderbook fetches the top price levels for the given pair.
func (c *HorizonClient) Orderbook(ctx context.Context, selling, buying entity.AssetDescriptor, limit int) (entity.OrderbookSnapshot, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return entity.OrderbookSnapshot{}, fmt.Errorf("rate limiter wait interrupted: %w", err)
	}

	req := horizonclient.OrderBookRequest{Limit: uint(limit)}
	req.SellingAssetType, req.SellingAssetCode, req.SellingAssetIssuer = assetParams(selling)
	req.BuyingAssetType, req.BuyingAssetCode, req.BuyingAssetIssuer = assetParams(buying)

	book, err := c.horizon.OrderBook(req)
	if err != nil {
		return entity.OrderbookSnapshot{}, fmt.Errorf("failed to fetch orderbook %s/%s: %w",
			selling.CanonicalID(), buying.CanonicalID(), err)
	}

	snapshot := entity.OrderbookSnapshot{
		AskDepth: len(book.Asks),
		BidDepth: len(book.Bids),
		Bids:     make([]entity.PriceLevel, 0, len(book.Bids)),
		Asks:     make([]entity.PriceLevel, 0, len(book.Asks)),
	}
	for _, level := range book.Bids {
		snapshot.Bids = append(snapshot.Bids, entity.PriceLevel{Price: level.Price, Amount: level.Amount})
	}
	for _, level := range book.Asks {
		snapshot.Asks = append(snapshot.Asks, entity.PriceLevel{Price: level.Price, Amount: level.Amount})
	}
	if len(snapshot.Asks) > 0 {
		snapshot.BestAsk = snapshot.Asks[0].Price
	}
	if len(snapshot.Bids) > 0 {
		snapshot.BestBid = snapshot.Bids[0].Price
	}
	return snapshot, nil
}

// SubmitXDR submits a signed envelope and returns the network hash.
func (c *HorizonClient) SubmitXDR(ctx context.Context, signedXDR string) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limiter wait interrupted: %w", err)
	}

	resp, err := c.horizon.SubmitTransactionXDR(signedXDR)
	if err != nil {
		if herr := horizonclient.GetError(err); herr != nil {
			c.logger.Warn("Horizon rejected transaction",
				zap.Int("status", herr.Problem.Status),
				zap.String("title", herr.Problem.Title))
			return "", fmt.Errorf("transaction rejected by horizon (%s): %w", herr.Problem.Title, err)
		}
		return "", fmt.Errorf("failed to submit transaction: %w", err)
	}
	return resp.Hash, nil
}

// assetParams maps an asset descriptor onto the Horizon query triple.
func assetParams(a entity.AssetDescriptor) (horizonclient.AssetType, string, string) {
	if a.IsNative() {
		return horizonclient.AssetTypeNative, "", ""
	}
	if len(a.Code) <= 4 {
		return horizonclient.AssetType4, a.Code, a.Issuer
	}
	return horizonclient.AssetType12, a.Code, a.Issuer
}
