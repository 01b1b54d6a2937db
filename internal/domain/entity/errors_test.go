package entity

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorTagSurvivesWrapping(t *testing.T) {
	cases := []struct {
		err error
		tag string
	}{
		{fmt.Errorf("bridge down: %w", ErrWalletNotFound), "wallet_not_found"},
		{fmt.Errorf("user said no: %w", ErrConnectionRejected), "connection_rejected"},
		{fmt.Errorf("declined: %w", ErrUserRejected), "user_rejected"},
		{fmt.Errorf("no payload: %w", ErrSigningFailed), "signing_failed"},
		{fmt.Errorf("price 0: %w", ErrInvalidPrice), "validation"},
		{fmt.Errorf("amount -1: %w", ErrInvalidAmount), "validation"},
		{fmt.Errorf("addr: %w", ErrInvalidAddress), "validation"},
		{fmt.Errorf("loop: %w", ErrSelfSend), "validation"},
		{fmt.Errorf("code ZZZ: %w", ErrUnsupportedAsset), "validation"},
		{fmt.Errorf("trapped: %w", ErrSimulationFailed), "simulation_failed"},
		{fmt.Errorf("gave up: %w", ErrContractTransactionFailed), "contract_transaction_failed"},
		{errors.New("connection reset by peer"), "network"},
	}
	for _, c := range cases {
		if got := ErrorTag(c.err); got != c.tag {
			t.Fatalf("%v: expected tag %q, got %q", c.err, c.tag, got)
		}
	}
}

func TestIsRejectionMessage(t *testing.T) {
	yes := []string{
		"The user rejected this request",
		"request declined by user",
	}
	no := []string{
		"Rejected",  // wallets emit lower-case wording; match stays case-sensitive
		"timed out",
		"",
	}
	for _, msg := range yes {
		if !IsRejectionMessage(msg) {
			t.Fatalf("%q should classify as a rejection", msg)
		}
	}
	for _, msg := range no {
		if IsRejectionMessage(msg) {
			t.Fatalf("%q should not classify as a rejection", msg)
		}
	}
}

func TestDedupKey(t *testing.T) {
	withHash := SwapActivityRecord{TxHash: "abc", TimestampSeconds: 1, User: "GU"}
	if withHash.DedupKey() != "tx:abc" {
		t.Fatalf("unexpected key %q", withHash.DedupKey())
	}

	a := SwapActivityRecord{TimestampSeconds: 5, User: "GU", FromAsset: "XLM", ToAsset: "USDC"}
	b := a
	if a.DedupKey() != b.DedupKey() {
		t.Fatal("identical hashless records must share a key")
	}
	b.TimestampSeconds = 6
	if a.DedupKey() == b.DedupKey() {
		t.Fatal("different timestamps must produce different keys")
	}
}
