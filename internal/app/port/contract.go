package port

import (
	"context"

	"swap_gateway/internal/domain/entity"
)

// ContractGateway is the Soroban RPC surface for the swap-tracker contract:
// simulation, submission with status polling, and the read paths used by the
// activity feed.
type ContractGateway interface {
	// Simulate dry-runs an invocation envelope to resolve its resource
	// footprint. A contract-level failure is reported in the result's Error
	// field, not as a Go error.
	Simulate(ctx context.Context, envelopeXDR string) (entity.SimulationResult, error)

	// Send submits a signed contract envelope and returns its hash.
	Send(ctx context.Context, signedXDR string) (string, error)

	// TransactionStatus polls a submitted transaction for a terminal state.
	TransactionStatus(ctx context.Context, hash string) (entity.ContractTxStatus, error)

	// RecentSwaps reads the newest records via a read-only simulation call.
	// No transaction is submitted and no fee is paid.
	RecentSwaps(ctx context.Context, count int) ([]entity.SwapActivityRecord, error)

	// SwapCount reads the total number of recorded swaps.
	SwapCount(ctx context.Context) (uint64, error)

	// SwapEvents fetches swap events newer than the cursor. An empty cursor
	// starts from the recent ledger window.
	SwapEvents(ctx context.Context, cursor string, limit int) (entity.EventPage, error)

	// Deployed reports whether a real contract id is configured; a sentinel
	// placeholder short-circuits every other method to empty results.
	Deployed() bool
}
