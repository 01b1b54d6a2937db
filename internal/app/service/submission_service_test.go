package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stellar/go/keypair"
	"github.com/stellar/go/network"
	"github.com/stellar/go/txnbuild"

	"swap_gateway/internal/domain/entity"
)

// signedTestEnvelope builds and locally signs a minimal payment envelope so
// the submission service can derive a real transaction hash from it.
func signedTestEnvelope(t *testing.T, kind entity.EnvelopeKind) entity.SignedEnvelope {
	t.Helper()
	kp := keypair.MustRandom()
	tx, err := txnbuild.NewTransaction(txnbuild.TransactionParams{
		SourceAccount:        &txnbuild.SimpleAccount{AccountID: kp.Address(), Sequence: 1},
		IncrementSequenceNum: true,
		Operations: []txnbuild.Operation{
			&txnbuild.Payment{
				Destination: keypair.MustRandom().Address(),
				Amount:      "1",
				Asset:       txnbuild.NativeAsset{},
			},
		},
		BaseFee:       txnbuild.MinBaseFee,
		Preconditions: txnbuild.Preconditions{TimeBounds: txnbuild.NewTimeout(300)},
	})
	if err != nil {
		t.Fatalf("failed to build test transaction: %v", err)
	}
	signed, err := tx.Sign(network.TestNetworkPassphrase, kp)
	if err != nil {
		t.Fatalf("failed to sign test transaction: %v", err)
	}
	xdrBase64, err := signed.Base64()
	if err != nil {
		t.Fatalf("failed to serialize test transaction: %v", err)
	}
	return entity.SignedEnvelope{XDR: xdrBase64, Kind: kind}
}

func TestSubmitClassicSuccess(t *testing.T) {
	ledger := &fakeLedger{
		submitXDR: func(ctx context.Context, signedXDR string) (string, error) {
			return "deadbeef", nil
		},
	}
	svc := NewSubmissionService(ledger, &fakeContract{}, testLogger{}, testConfig())

	lifecycle, err := svc.Submit(context.Background(), signedTestEnvelope(t, entity.EnvelopePayment))
	if err != nil {
		t.Fatalf("Submit returned error: %v", err)
	}
	if lifecycle.Phase != entity.PhaseSuccess || lifecycle.Hash != "deadbeef" {
		t.Fatalf("unexpected lifecycle: %+v", lifecycle)
	}

	stored, found := svc.Status(lifecycle.ActionID)
	if !found {
		t.Fatal("lifecycle not retrievable by action id")
	}
	if stored.Phase != entity.PhaseSuccess {
		t.Fatalf("stored lifecycle out of sync: %+v", stored)
	}
}

func TestSubmitClassicFailureIsTerminal(t *testing.T) {
	ledger := &fakeLedger{
		submitXDR: func(ctx context.Context, signedXDR string) (string, error) {
			return "", errors.New("tx_bad_seq")
		},
	}
	svc := NewSubmissionService(ledger, &fakeContract{}, testLogger{}, testConfig())

	lifecycle, err := svc.Submit(context.Background(), signedTestEnvelope(t, entity.EnvelopePayment))
	if err == nil {
		t.Fatal("expected submission error")
	}
	if lifecycle.Phase != entity.PhaseFailed {
		t.Fatalf("expected failed phase, got %+v", lifecycle)
	}
	if lifecycle.Reason == "" {
		t.Fatal("failed lifecycle must carry a reason")
	}
	// terminal: no further transition is possible
	if advErr := lifecycle.Advance(entity.PhasePending); advErr == nil {
		t.Fatal("terminal lifecycle accepted a transition")
	}
}

func TestSubmitContractPollsToSuccess(t *testing.T) {
	polls := 0
	contract := &fakeContract{
		deployed: true,
		send: func(ctx context.Context, signedXDR string) (string, error) {
			return "contracthash", nil
		},
		txStatus: func(ctx context.Context, hash string) (entity.ContractTxStatus, error) {
			polls++
			if polls == 1 {
				return entity.ContractTxNotFound, nil
			}
			return entity.ContractTxSuccess, nil
		},
	}
	svc := NewSubmissionService(&fakeLedger{}, contract, testLogger{}, testConfig())

	lifecycle, err := svc.Submit(context.Background(), signedTestEnvelope(t, entity.EnvelopeContractInvocation))
	if err != nil {
		t.Fatalf("Submit returned error: %v", err)
	}
	if lifecycle.Phase != entity.PhaseSuccess || lifecycle.Hash != "contracthash" {
		t.Fatalf("unexpected lifecycle: %+v", lifecycle)
	}
	if polls != 2 {
		t.Fatalf("expected 2 polls, got %d", polls)
	}
}

func TestSubmitContractPollCap(t *testing.T) {
	contract := &fakeContract{
		deployed: true,
		send: func(ctx context.Context, signedXDR string) (string, error) {
			return "contracthash", nil
		},
		txStatus: func(ctx context.Context, hash string) (entity.ContractTxStatus, error) {
			return entity.ContractTxNotFound, nil
		},
	}
	svc := NewSubmissionService(&fakeLedger{}, contract, testLogger{}, testConfig())

	lifecycle, err := svc.Submit(context.Background(), signedTestEnvelope(t, entity.EnvelopeContractInvocation))
	if !errors.Is(err, entity.ErrContractTransactionFailed) {
		t.Fatalf("expected ErrContractTransactionFailed, got %v", err)
	}
	if lifecycle.Phase != entity.PhaseFailed {
		t.Fatalf("expected failed phase after poll cap, got %+v", lifecycle)
	}
}

func TestSubmitContractSendFailure(t *testing.T) {
	contract := &fakeContract{
		deployed: true,
		send: func(ctx context.Context, signedXDR string) (string, error) {
			return "", errors.New("transaction rejected by RPC node")
		},
	}
	svc := NewSubmissionService(&fakeLedger{}, contract, testLogger{}, testConfig())

	lifecycle, err := svc.Submit(context.Background(), signedTestEnvelope(t, entity.EnvelopeContractInvocation))
	if !errors.Is(err, entity.ErrContractTransactionFailed) {
		t.Fatalf("expected ErrContractTransactionFailed, got %v", err)
	}
	if lifecycle.Phase != entity.PhaseFailed {
		t.Fatalf("expected failed phase, got %+v", lifecycle)
	}
}
