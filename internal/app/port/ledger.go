package port

import (
	"context"

	"swap_gateway/internal/domain/entity"
)

// LedgerGateway is the Horizon-equivalent REST ledger API surface the
// services depend on. Implementations map transport errors so that an absent
// account is reported via AccountState.Exists, not as an error.
type LedgerGateway interface {
	// LoadAccount fetches current sequence and balances for an address.
	LoadAccount(ctx context.Context, address string) (entity.AccountState, error)

	// Orderbook fetches the top price levels for an asset pair.
	Orderbook(ctx context.Context, selling, buying entity.AssetDescriptor, limit int) (entity.OrderbookSnapshot, error)

	// SubmitXDR submits a signed envelope and returns the network hash.
	SubmitXDR(ctx context.Context, signedXDR string) (string, error)
}
