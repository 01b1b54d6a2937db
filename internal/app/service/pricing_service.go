package service

import (
	"context"
	"fmt"
	"math/big"
	"sync"
	"sync/atomic"
	"time"

	"swap_gateway/internal/app/port"
	"swap_gateway/internal/domain/entity"
	"swap_gateway/internal/infrastructure/configloader"
	"swap_gateway/internal/pkg/utils"
	"swap_gateway/pkg/metrics"
)

// previewFetchTimeout bounds the background orderbook fetch of one debounced
// preview refresh.
const previewFetchTimeout = 10 * time.Second

// PricingServiceImpl implements port.PricingService. Previews are debounced
// and generation-stamped: every RequestPreview bumps the generation, and a
// fetch result is applied only while its generation is still current.
type PricingServiceImpl struct {
	ledger          port.LedgerGateway
	logger          port.Logger
	displayDepth    int
	simulationDepth int
	debounce        time.Duration

	generation atomic.Uint64

	mu        sync.Mutex
	timer     *time.Timer
	latest    entity.SwapPreview
	hasLatest bool
}

// NewPricingService creates a new instance of PricingServiceImpl.
func NewPricingService(ledger port.LedgerGateway, l port.Logger, cfg *configloader.Config) port.PricingService {
	return &PricingServiceImpl{
		ledger:          ledger,
		logger:          l,
		displayDepth:    cfg.Pricing.DisplayDepth,
		simulationDepth: cfg.Pricing.SimulationDepth,
		debounce:        time.Duration(cfg.Pricing.PreviewDebounceMillis) * time.Millisecond,
	}
}

// Snapshot fetches current depth for display.
func (s *PricingServiceImpl) Snapshot(ctx context.Context, sell, buy entity.AssetDescriptor) (entity.OrderbookSnapshot, error) {
	return s.ledger.Orderbook(ctx, sell, buy, s.displayDepth)
}

// EstimateReceive simulates a fill against current bid depth: levels are
// consumed best-first, each contributing filled-amount times level-price,
// until the sell amount is exhausted or the book runs dry.
func (s *PricingServiceImpl) EstimateReceive(ctx context.Context, sell, buy entity.AssetDescriptor, sellAmount string) (string, error) {
	if !utils.IsPositiveDecimal(sellAmount) {
		return "0", nil
	}
	remaining, err := utils.ParseDecimal(sellAmount)
	if err != nil {
		return "0", nil
	}

	snapshot, err := s.ledger.Orderbook(ctx, sell, buy, s.simulationDepth)
	if err != nil {
		return "", fmt.Errorf("failed to fetch depth for estimate: %w", err)
	}

	received := new(big.Rat)
	for _, level := range snapshot.Bids {
		levelPrice, err := utils.ParseDecimal(level.Price)
		if err != nil {
			return "", fmt.Errorf("malformed level price %q: %w", level.Price, err)
		}
		levelAmount, err := utils.ParseDecimal(level.Amount)
		if err != nil {
			return "", fmt.Errorf("malformed level amount %q: %w", level.Amount, err)
		}

		fill := new(big.Rat).Set(remaining)
		if levelAmount.Cmp(fill) < 0 {
			fill.Set(levelAmount)
		}
		received.Add(received, new(big.Rat).Mul(fill, levelPrice))
		remaining.Sub(remaining, fill)
		if remaining.Sign() <= 0 {
			break
		}
	}
	return utils.FormatReceive(received), nil
}

// RequestPreview schedules a debounced estimate refresh. A newer request
// supersedes any pending or in-flight older one.
func (s *PricingServiceImpl) RequestPreview(sell, buy entity.AssetDescriptor, sellAmount string) {
	gen := s.generation.Add(1)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.debounce, func() {
		s.refresh(gen, sell, buy, sellAmount)
	})
}

// LatestPreview returns the most recently applied preview, if any.
func (s *PricingServiceImpl) LatestPreview() (entity.SwapPreview, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.latest, s.hasLatest
}

// refresh performs one preview fetch. The generation is checked before the
// fetch and again before applying, so a slow response never overwrites the
// result of a newer request.
func (s *PricingServiceImpl) refresh(gen uint64, sell, buy entity.AssetDescriptor, sellAmount string) {
	if s.generation.Load() != gen {
		metrics.StalePreviewsDropped.Inc()
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), previewFetchTimeout)
	defer cancel()

	snapshot, err := s.Snapshot(ctx, sell, buy)
	if err != nil {
		s.logger.Warn("Preview snapshot fetch failed",
			"pair", sell.CanonicalID()+"/"+buy.CanonicalID(), "error", err)
		return
	}
	receive, err := s.EstimateReceive(ctx, sell, buy, sellAmount)
	if err != nil {
		s.logger.Warn("Preview estimate failed",
			"pair", sell.CanonicalID()+"/"+buy.CanonicalID(), "error", err)
		return
	}

	if s.generation.Load() != gen {
		metrics.StalePreviewsDropped.Inc()
		return
	}

	s.mu.Lock()
	s.latest = entity.SwapPreview{
		Sell:       sell,
		Buy:        buy,
		SellAmount: sellAmount,
		Receive:    receive,
		Snapshot:   snapshot,
		UpdatedAt:  time.Now().UTC(),
		Generation: gen,
	}
	s.hasLatest = true
	s.mu.Unlock()
}
