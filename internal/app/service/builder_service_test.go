package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stellar/go/keypair"
	"github.com/stellar/go/txnbuild"

	"swap_gateway/internal/domain/entity"
)

func builderFixture(t *testing.T, destinationExists bool) (*fakeLedger, string, string) {
	t.Helper()
	source := keypair.MustRandom().Address()
	destination := keypair.MustRandom().Address()

	ledger := &fakeLedger{
		loadAccount: func(ctx context.Context, address string) (entity.AccountState, error) {
			if address == source {
				return entity.AccountState{Address: address, Exists: true, Sequence: 100}, nil
			}
			return entity.AccountState{Address: address, Exists: destinationExists}, nil
		},
	}
	return ledger, source, destination
}

func decodeOps(t *testing.T, envelope entity.UnsignedEnvelope) []txnbuild.Operation {
	t.Helper()
	generic, err := txnbuild.TransactionFromXDR(envelope.XDR)
	if err != nil {
		t.Fatalf("built envelope does not parse: %v", err)
	}
	tx, ok := generic.Transaction()
	if !ok {
		t.Fatal("built envelope is not a simple transaction")
	}
	return tx.Operations()
}

func TestBuildPaymentToExistingAccount(t *testing.T) {
	ledger, source, destination := builderFixture(t, true)
	builder := NewEnvelopeBuilder(ledger, &fakeContract{}, testLogger{}, testConfig())

	envelope, err := builder.BuildPayment(context.Background(), source, destination, "12.5", "invoice 42")
	if err != nil {
		t.Fatalf("BuildPayment returned error: %v", err)
	}
	if envelope.Kind != entity.EnvelopePayment {
		t.Fatalf("unexpected kind %v", envelope.Kind)
	}

	ops := decodeOps(t, envelope)
	if len(ops) != 1 {
		t.Fatalf("expected 1 operation, got %d", len(ops))
	}
	payment, ok := ops[0].(*txnbuild.Payment)
	if !ok {
		t.Fatalf("expected a payment, got %T", ops[0])
	}
	if payment.Destination != destination {
		t.Fatalf("unexpected destination %q", payment.Destination)
	}
}

func TestBuildPaymentToAbsentAccountCreatesIt(t *testing.T) {
	ledger, source, destination := builderFixture(t, false)
	builder := NewEnvelopeBuilder(ledger, &fakeContract{}, testLogger{}, testConfig())

	envelope, err := builder.BuildPayment(context.Background(), source, destination, "5", "")
	if err != nil {
		t.Fatalf("BuildPayment returned error: %v", err)
	}

	ops := decodeOps(t, envelope)
	if _, ok := ops[0].(*txnbuild.CreateAccount); !ok {
		t.Fatalf("expected account creation for absent destination, got %T", ops[0])
	}
}

func TestBuildPaymentRechecksFundedDestination(t *testing.T) {
	source := keypair.MustRandom().Address()
	destination := keypair.MustRandom().Address()

	funded := false
	ledger := &fakeLedger{
		loadAccount: func(ctx context.Context, address string) (entity.AccountState, error) {
			if address == source {
				return entity.AccountState{Address: address, Exists: true, Sequence: 100}, nil
			}
			return entity.AccountState{Address: address, Exists: funded}, nil
		},
	}
	builder := NewEnvelopeBuilder(ledger, &fakeContract{}, testLogger{}, testConfig())
	ctx := context.Background()

	envelope, err := builder.BuildPayment(ctx, source, destination, "5", "")
	if err != nil {
		t.Fatalf("BuildPayment returned error: %v", err)
	}
	if _, ok := decodeOps(t, envelope)[0].(*txnbuild.CreateAccount); !ok {
		t.Fatal("expected account creation while destination is absent")
	}

	// the destination gets funded between builds; the next build must see it
	funded = true
	envelope, err = builder.BuildPayment(ctx, source, destination, "5", "")
	if err != nil {
		t.Fatalf("BuildPayment returned error: %v", err)
	}
	if _, ok := decodeOps(t, envelope)[0].(*txnbuild.Payment); !ok {
		t.Fatal("expected a payment once the destination exists")
	}
}

func TestBuildPaymentCachesExistingDestination(t *testing.T) {
	ledger, source, destination := builderFixture(t, true)
	destLoads := 0
	inner := ledger.loadAccount
	ledger.loadAccount = func(ctx context.Context, address string) (entity.AccountState, error) {
		if address == destination {
			destLoads++
		}
		return inner(ctx, address)
	}
	builder := NewEnvelopeBuilder(ledger, &fakeContract{}, testLogger{}, testConfig())
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := builder.BuildPayment(ctx, source, destination, "1", ""); err != nil {
			t.Fatalf("BuildPayment returned error: %v", err)
		}
	}
	if destLoads != 1 {
		t.Fatalf("expected a single destination lookup, got %d", destLoads)
	}
}

func TestBuildPaymentValidation(t *testing.T) {
	ledger, source, destination := builderFixture(t, true)
	builder := NewEnvelopeBuilder(ledger, &fakeContract{}, testLogger{}, testConfig())
	ctx := context.Background()

	if _, err := builder.BuildPayment(ctx, source, source, "1", ""); !errors.Is(err, entity.ErrSelfSend) {
		t.Fatalf("expected ErrSelfSend, got %v", err)
	}
	if _, err := builder.BuildPayment(ctx, source, "not-an-address", "1", ""); !errors.Is(err, entity.ErrInvalidAddress) {
		t.Fatalf("expected ErrInvalidAddress, got %v", err)
	}
	if _, err := builder.BuildPayment(ctx, source, destination, "-3", ""); !errors.Is(err, entity.ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount for negative amount, got %v", err)
	}
	if _, err := builder.BuildPayment(ctx, source, destination, "abc", ""); !errors.Is(err, entity.ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount for garbage, got %v", err)
	}
}

func TestBuildSwapOfferAddsTrustlineWhenMissing(t *testing.T) {
	cfg := testConfig()
	sell := cfg.Assets[0]
	buy := cfg.Assets[1]

	ledger, source, _ := builderFixture(t, true)
	builder := NewEnvelopeBuilder(ledger, &fakeContract{}, testLogger{}, cfg)

	envelope, err := builder.BuildSwapOffer(context.Background(), source, sell, buy, "10", "0.5")
	if err != nil {
		t.Fatalf("BuildSwapOffer returned error: %v", err)
	}
	if envelope.Kind != entity.EnvelopeSwapOffer {
		t.Fatalf("unexpected kind %v", envelope.Kind)
	}

	ops := decodeOps(t, envelope)
	if len(ops) != 2 {
		t.Fatalf("expected trustline + offer, got %d ops", len(ops))
	}
	if _, ok := ops[0].(*txnbuild.ChangeTrust); !ok {
		t.Fatalf("expected trustline first, got %T", ops[0])
	}
	offer, ok := ops[1].(*txnbuild.ManageSellOffer)
	if !ok {
		t.Fatalf("expected sell offer, got %T", ops[1])
	}
	if offer.OfferID != 0 {
		t.Fatalf("new offers must have id 0, got %d", offer.OfferID)
	}
}

func TestBuildSwapOfferSkipsTrustlineWhenPresent(t *testing.T) {
	cfg := testConfig()
	sell := cfg.Assets[0]
	buy := cfg.Assets[1]

	source := keypair.MustRandom().Address()
	ledger := &fakeLedger{
		loadAccount: func(ctx context.Context, address string) (entity.AccountState, error) {
			return entity.AccountState{
				Address:  address,
				Exists:   true,
				Sequence: 7,
				Balances: []entity.AssetBalance{{Asset: buy, Amount: "0.0000000"}},
			}, nil
		},
	}
	builder := NewEnvelopeBuilder(ledger, &fakeContract{}, testLogger{}, cfg)

	envelope, err := builder.BuildSwapOffer(context.Background(), source, sell, buy, "10", "0.5")
	if err != nil {
		t.Fatalf("BuildSwapOffer returned error: %v", err)
	}
	ops := decodeOps(t, envelope)
	if len(ops) != 1 {
		t.Fatalf("expected offer only, got %d ops", len(ops))
	}
}

func TestBuildSwapOfferRejectsBadPrice(t *testing.T) {
	cfg := testConfig()
	ledger, source, _ := builderFixture(t, true)
	builder := NewEnvelopeBuilder(ledger, &fakeContract{}, testLogger{}, cfg)

	for _, bad := range []string{"0", "-1", "abc", ""} {
		_, err := builder.BuildSwapOffer(context.Background(), source, cfg.Assets[0], cfg.Assets[1], "10", bad)
		if !errors.Is(err, entity.ErrInvalidPrice) {
			t.Fatalf("price %q: expected ErrInvalidPrice, got %v", bad, err)
		}
	}
}

func TestBuildContractInvocationSurfacesSimulationError(t *testing.T) {
	ledger, source, _ := builderFixture(t, true)
	contract := &fakeContract{
		deployed: true,
		simulate: func(ctx context.Context, envelopeXDR string) (entity.SimulationResult, error) {
			return entity.SimulationResult{Error: "host function trapped"}, nil
		},
	}
	builder := NewEnvelopeBuilder(ledger, contract, testLogger{}, testConfig())

	contractID := "CA3D5KRYM6CB7OWQ6TWYRR3Z4T7GNZLKERYNZGGA5SOAOPIFY6YQGAXE"
	_, err := builder.BuildContractInvocation(context.Background(), source, contractID, "record_swap", nil)
	if !errors.Is(err, entity.ErrSimulationFailed) {
		t.Fatalf("expected ErrSimulationFailed, got %v", err)
	}
}
