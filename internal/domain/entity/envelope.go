package entity

import (
	"fmt"
	"time"
)

// EnvelopeKind distinguishes the transaction families the builder produces.
// Contract invocations follow a different submission path (Soroban RPC with
// status polling) than classic operations.
type EnvelopeKind int

const (
	EnvelopePayment EnvelopeKind = iota
	EnvelopeSwapOffer
	EnvelopeContractInvocation
)

// String returns a short label for log fields.
func (k EnvelopeKind) String() string {
	switch k {
	case EnvelopePayment:
		return "payment"
	case EnvelopeSwapOffer:
		return "swap_offer"
	case EnvelopeContractInvocation:
		return "contract_invocation"
	default:
		return fmt.Sprintf("unknown(%d)", int(k))
	}
}

// UnsignedEnvelope is a serialized, not-yet-signed transaction. It is
// consumed exactly once by the signing coordinator and never mutated after
// creation; building a new one replaces it entirely.
type UnsignedEnvelope struct {
	XDR           string       `json:"xdr"`
	Kind          EnvelopeKind `json:"kind"`
	SourceAccount string       `json:"sourceAccount"`
	BuiltAt       time.Time    `json:"builtAt"`
}

// SignedEnvelope carries a signature. Its lifetime ends at successful or
// failed submission.
type SignedEnvelope struct {
	XDR  string       `json:"xdr"`
	Kind EnvelopeKind `json:"kind"`
}

// LifecyclePhase is the per-action submission state.
type LifecyclePhase string

const (
	PhaseIdle    LifecyclePhase = "idle"
	PhasePending LifecyclePhase = "pending"
	PhaseSuccess LifecyclePhase = "success"
	PhaseFailed  LifecyclePhase = "failed"
)

// rank orders phases so that transitions can be checked for monotonicity.
// success and failed share the terminal rank: neither may replace the other.
func (p LifecyclePhase) rank() int {
	switch p {
	case PhaseIdle:
		return 0
	case PhasePending:
		return 1
	case PhaseSuccess, PhaseFailed:
		return 2
	default:
		return -1
	}
}

// Terminal reports whether the phase ends the action instance.
func (p LifecyclePhase) Terminal() bool {
	return p == PhaseSuccess || p == PhaseFailed
}

// TransactionLifecycle tracks one in-flight user action. Transitions are
// monotonic within an action instance; a failed or succeeded action is never
// resumed, the caller starts a fresh instance instead.
type TransactionLifecycle struct {
	ActionID  string         `json:"actionId"`
	Kind      EnvelopeKind   `json:"kind"`
	Phase     LifecyclePhase `json:"phase"`
	Hash      string         `json:"hash,omitempty"`
	Reason    string         `json:"reason,omitempty"`
	UpdatedAt time.Time      `json:"updatedAt"`
}

// NewLifecycle starts an action instance in the idle phase.
func NewLifecycle(actionID string, kind EnvelopeKind) TransactionLifecycle {
	return TransactionLifecycle{ActionID: actionID, Kind: kind, Phase: PhaseIdle, UpdatedAt: time.Now().UTC()}
}

// Advance moves the lifecycle to the given phase. It returns an error when
// the transition would regress (e.g. success -> pending) or re-enter a
// terminal phase, leaving the lifecycle unchanged.
func (l *TransactionLifecycle) Advance(next LifecyclePhase) error {
	if l.Phase.Terminal() {
		return fmt.Errorf("lifecycle %s is terminal (%s), cannot advance to %s", l.ActionID, l.Phase, next)
	}
	if next.rank() <= l.Phase.rank() {
		return fmt.Errorf("lifecycle %s cannot regress from %s to %s", l.ActionID, l.Phase, next)
	}
	l.Phase = next
	l.UpdatedAt = time.Now().UTC()
	return nil
}

// Succeed advances to the success phase with the network hash.
func (l *TransactionLifecycle) Succeed(hash string) error {
	if err := l.Advance(PhaseSuccess); err != nil {
		return err
	}
	l.Hash = hash
	return nil
}

// Fail advances to the failed phase with a human-readable reason.
func (l *TransactionLifecycle) Fail(reason string) error {
	if err := l.Advance(PhaseFailed); err != nil {
		return err
	}
	l.Reason = reason
	return nil
}
