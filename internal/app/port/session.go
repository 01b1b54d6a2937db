package port

import (
	"context"

	"swap_gateway/internal/domain/entity"
)

// SessionService owns the wallet connection state. State is mutated only
// through these intent-triggered transitions; there is no ambient mutation.
type SessionService interface {
	// DetectInstalled queries the wallet bridge; any failure is treated as
	// "not installed".
	DetectInstalled(ctx context.Context) entity.WalletCapabilities

	// Connect negotiates access (newest capability first, legacy fallback)
	// and records the session state. Returns entity.ErrWalletNotFound or
	// entity.ErrConnectionRejected on the respective failures.
	Connect(ctx context.Context) (entity.ConnectionState, error)

	// ActiveAddress returns the wallet's current address, or "" when neither
	// capability can produce one. It never returns an error.
	ActiveAddress(ctx context.Context) string

	// CheckConnection re-validates the session against the wallet and
	// updates the state accordingly.
	CheckConnection(ctx context.Context) entity.ConnectionState

	// Disconnect resets the session to the empty state.
	Disconnect()

	// State returns a copy of the current session state.
	State() entity.ConnectionState
}
