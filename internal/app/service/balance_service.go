package service

import (
	"context"
	"fmt"
	"math/big"

	"golang.org/x/sync/errgroup"

	"swap_gateway/internal/app/port"
	"swap_gateway/internal/domain/entity"
	"swap_gateway/internal/infrastructure/configloader"
	"swap_gateway/internal/pkg/utils"
)

// BalanceServiceImpl implements port.BalanceService. Non-native balances are
// valued against the best bid of their orderbook versus the native asset;
// positions without liquidity stay unvalued rather than failing the overview.
type BalanceServiceImpl struct {
	ledger        port.LedgerGateway
	logger        port.Logger
	native        entity.AssetDescriptor
	maxConcurrent int
}

// NewBalanceService creates a new instance of BalanceServiceImpl.
func NewBalanceService(ledger port.LedgerGateway, l port.Logger, cfg *configloader.Config) port.BalanceService {
	maxRoutines := cfg.Performance.MaxConcurrentRoutines
	if maxRoutines <= 0 {
		maxRoutines = 1
	}
	return &BalanceServiceImpl{
		ledger:        ledger,
		logger:        l,
		native:        cfg.NativeAsset(),
		maxConcurrent: maxRoutines,
	}
}

// AccountOverview loads the account and values each balance line. An absent
// account yields an empty overview, not an error.
func (s *BalanceServiceImpl) AccountOverview(ctx context.Context, address string) (entity.AccountOverview, error) {
	state, err := s.ledger.LoadAccount(ctx, address)
	if err != nil {
		return entity.AccountOverview{}, fmt.Errorf("failed to load account for overview: %w", err)
	}
	if !state.Exists {
		return entity.AccountOverview{Address: address, Exists: false, Balances: []entity.DisplayBalance{}}, nil
	}

	balances := make([]entity.DisplayBalance, len(state.Balances))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.maxConcurrent)

	for i, b := range state.Balances {
		balances[i] = entity.DisplayBalance{Asset: b.Asset, Amount: b.Amount}

		if b.Asset.IsNative() {
			balances[i].PriceNative = "1"
			balances[i].ValueNative = b.Amount
			continue
		}

		i, b := i, b
		g.Go(func() error {
			snapshot, err := s.ledger.Orderbook(gctx, b.Asset, s.native, 1)
			if err != nil {
				s.logger.Warn("Failed to value balance, leaving unvalued",
					"asset", b.Asset.CanonicalID(), "error", err)
				return nil
			}
			if snapshot.BestBid == "" {
				return nil
			}

			price, err := utils.ParseDecimal(snapshot.BestBid)
			if err != nil {
				return nil
			}
			held, err := utils.ParseDecimal(b.Amount)
			if err != nil {
				return nil
			}
			balances[i].PriceNative = snapshot.BestBid
			balances[i].ValueNative = utils.FormatReceive(new(big.Rat).Mul(held, price))
			return nil
		})
	}

	// valuation goroutines never return errors, Wait only propagates ctx
	// cancellation
	if err := g.Wait(); err != nil {
		return entity.AccountOverview{}, err
	}
	return entity.AccountOverview{Address: address, Exists: true, Balances: balances}, nil
}
