package port

import (
	"context"

	"swap_gateway/internal/domain/entity"
)

// BalanceService produces the valued balance overview for an address.
type BalanceService interface {
	// AccountOverview loads the account and values its configured-asset
	// balances against current orderbook mid prices. An absent account is a
	// zero-balance overview, not an error.
	AccountOverview(ctx context.Context, address string) (entity.AccountOverview, error)
}
