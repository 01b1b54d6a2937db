package port

import (
	"context"

	"swap_gateway/internal/domain/entity"
)

// PricingService estimates swap output from current orderbook depth. The
// estimate is a read-only simulation; it reserves nothing.
type PricingService interface {
	// Snapshot fetches current depth for display.
	Snapshot(ctx context.Context, sell, buy entity.AssetDescriptor) (entity.OrderbookSnapshot, error)

	// EstimateReceive walks bid levels best-to-worst and returns the
	// accumulated output formatted to 7 fractional digits; "0" when there is
	// no liquidity or the input amount is not positive.
	EstimateReceive(ctx context.Context, sell, buy entity.AssetDescriptor, sellAmount string) (string, error)

	// RequestPreview schedules a debounced estimate refresh. A newer request
	// invalidates any in-flight older one; stale responses are dropped.
	RequestPreview(sell, buy entity.AssetDescriptor, sellAmount string)

	// LatestPreview returns the most recently applied preview, if any.
	LatestPreview() (entity.SwapPreview, bool)
}
