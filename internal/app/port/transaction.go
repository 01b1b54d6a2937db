package port

import (
	"context"

	"github.com/stellar/go/xdr"

	"swap_gateway/internal/domain/entity"
)

// EnvelopeBuilder constructs unsigned envelopes against current network
// state. Builders only read; they never mutate previously built envelopes.
type EnvelopeBuilder interface {
	// BuildPayment emits a payment to an existing destination, or an
	// account-creation with starting balance when the destination does not
	// exist yet. A non-empty memo is attached as a text memo.
	BuildPayment(ctx context.Context, source, destination, amount, memo string) (entity.UnsignedEnvelope, error)

	// BuildSwapOffer emits a one-time fill-or-kill sell offer at the given
	// minimum price, prepending a trustline operation when the buy asset is
	// non-native and not yet trusted by the source account.
	BuildSwapOffer(ctx context.Context, source string, sell, buy entity.AssetDescriptor, sellAmount, minPrice string) (entity.UnsignedEnvelope, error)

	// BuildContractInvocation constructs an invocation, simulates it to
	// resolve the resource footprint and merges the simulation into the
	// final envelope. Returns entity.ErrSimulationFailed when the dry run
	// reports an error.
	BuildContractInvocation(ctx context.Context, source, contractID, method string, args []xdr.ScVal) (entity.UnsignedEnvelope, error)
}

// SigningService hands envelopes to the wallet and normalizes the result.
type SigningService interface {
	// Sign invokes the wallet's approval UI. Explicit refusals surface as
	// entity.ErrUserRejected, other wallet failures as entity.ErrSigningFailed.
	Sign(ctx context.Context, envelope entity.UnsignedEnvelope) (entity.SignedEnvelope, error)
}

// SubmissionService submits signed envelopes and tracks per-action lifecycle
// state. A failed submission is never retried automatically; callers re-run
// the full build-sign-submit pipeline.
type SubmissionService interface {
	// Submit sends the envelope and blocks until a terminal lifecycle phase.
	// Contract invocations additionally poll for finality.
	Submit(ctx context.Context, envelope entity.SignedEnvelope) (entity.TransactionLifecycle, error)

	// Status returns the lifecycle for a previously submitted action.
	Status(actionID string) (entity.TransactionLifecycle, bool)
}
