package port

import (
	"context"

	"swap_gateway/internal/domain/entity"
)

// ActivityService maintains the bounded recent-swaps feed and the
// fire-and-forget on-chain recording of locally executed swaps.
type ActivityService interface {
	// LoadRecent fetches the newest records once via read-only simulation
	// and merges them into the feed. It never returns an error: an
	// undeployed contract or any fetch/parse failure yields no records.
	LoadRecent(ctx context.Context, count int)

	// PollNew fetches records newer than the internal cursor and merges
	// them. On error the increment is empty and the cursor is preserved.
	PollNew(ctx context.Context)

	// InsertLocal places an optimistic locally-originated record at the
	// front of the feed.
	InsertLocal(record entity.SwapActivityRecord)

	// Recent returns a copy of the merged feed, newest first, capped.
	Recent() []entity.SwapActivityRecord

	// SwapCount returns the contract's total recorded swap count.
	SwapCount(ctx context.Context) uint64

	// RecordSwap asynchronously records a swap on-chain. Failures are logged
	// and never surface to the primary swap flow.
	RecordSwap(user, fromAsset, toAsset, amount string)

	// Run drives the periodic poll loop until ctx is cancelled.
	Run(ctx context.Context)
}
