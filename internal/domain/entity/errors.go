package entity

import (
	"errors"
	"strings"
)

// Stable error taxonomy. Pipeline stages classify wallet/network failures
// into these sentinels so the API layer can render tag-specific copy; they
// are matched with errors.Is after wrapping.
var (
	// ErrWalletNotFound: the wallet bridge is absent or unreachable.
	ErrWalletNotFound = errors.New("wallet not found")
	// ErrConnectionRejected: the user refused the connection request.
	ErrConnectionRejected = errors.New("wallet connection rejected")
	// ErrUserRejected: the user refused to sign. A refusal, not a bug.
	ErrUserRejected = errors.New("signing rejected by user")
	// ErrSigningFailed: the wallet returned an error or no usable payload.
	ErrSigningFailed = errors.New("signing failed")
	// ErrInvalidPrice: swap offer price must be strictly positive.
	ErrInvalidPrice = errors.New("invalid price")
	// ErrInvalidAmount: amount failed validation before any network call.
	ErrInvalidAmount = errors.New("invalid amount")
	// ErrInvalidAddress: malformed account address.
	ErrInvalidAddress = errors.New("invalid address")
	// ErrSelfSend: source and destination are the same account.
	ErrSelfSend = errors.New("destination equals source")
	// ErrUnsupportedAsset: asset code is not in the configured asset list.
	ErrUnsupportedAsset = errors.New("unsupported asset")
	// ErrSimulationFailed: contract simulation reported an error.
	ErrSimulationFailed = errors.New("simulation failed")
	// ErrContractTransactionFailed: contract transaction reached a
	// non-success terminal status, or polling gave up.
	ErrContractTransactionFailed = errors.New("contract transaction failed")
)

// ErrorTag maps an error to its stable taxonomy tag. Unclassified errors are
// tagged as network failures, which propagate to the caller as-is.
func ErrorTag(err error) string {
	switch {
	case errors.Is(err, ErrWalletNotFound):
		return "wallet_not_found"
	case errors.Is(err, ErrConnectionRejected):
		return "connection_rejected"
	case errors.Is(err, ErrUserRejected):
		return "user_rejected"
	case errors.Is(err, ErrSigningFailed):
		return "signing_failed"
	case errors.Is(err, ErrInvalidPrice),
		errors.Is(err, ErrInvalidAmount),
		errors.Is(err, ErrInvalidAddress),
		errors.Is(err, ErrSelfSend),
		errors.Is(err, ErrUnsupportedAsset):
		return "validation"
	case errors.Is(err, ErrSimulationFailed):
		return "simulation_failed"
	case errors.Is(err, ErrContractTransactionFailed):
		return "contract_transaction_failed"
	default:
		return "network"
	}
}

// IsRejectionMessage reports whether a wallet message describes an explicit
// human refusal. The match is a case-sensitive substring check, mirroring the
// wording wallets actually emit.
func IsRejectionMessage(msg string) bool {
	return strings.Contains(msg, "declined") || strings.Contains(msg, "rejected")
}
