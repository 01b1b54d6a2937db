package port

import "context"

// WalletChannel is the raw transport to the wallet bridge. Payloads come back
// as decoded JSON of unknown shape (bare scalar or an object with one of
// several vendor-specific field names); callers normalize them with the
// shared extraction rule instead of trusting any single shape.
type WalletChannel interface {
	// Ping checks that the bridge is reachable and reports whether the v2
	// capability set is advertised.
	Ping(ctx context.Context) (supportsV2 bool, err error)

	// RequestAccess triggers the v2 access-request flow.
	RequestAccess(ctx context.Context) (any, error)

	// SetAllowed triggers the legacy v1 allow flow and reports whether the
	// user granted access.
	SetAllowed(ctx context.Context) (bool, error)

	// GetAddress fetches the active address via the v2 capability.
	GetAddress(ctx context.Context) (any, error)

	// GetPublicKey fetches the active address via the legacy v1 capability.
	GetPublicKey(ctx context.Context) (any, error)

	// SignTransaction hands a serialized envelope plus the network
	// passphrase to the wallet's approval UI and returns its raw response.
	SignTransaction(ctx context.Context, envelopeXDR, networkPassphrase string) (any, error)

	// GetNetworkPassphrase queries the wallet's active network identifier.
	GetNetworkPassphrase(ctx context.Context) (any, error)
}
