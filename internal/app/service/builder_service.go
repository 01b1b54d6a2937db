package service

import (
	"context"
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/stellar/go/amount"
	"github.com/stellar/go/price"
	"github.com/stellar/go/strkey"
	"github.com/stellar/go/txnbuild"
	"github.com/stellar/go/xdr"

	"swap_gateway/internal/app/port"
	"swap_gateway/internal/domain/entity"
	"swap_gateway/internal/infrastructure/configloader"
	"swap_gateway/internal/infrastructure/sorobanrpc"
)

// EnvelopeBuilderImpl implements port.EnvelopeBuilder. Destination existence
// checks are cached briefly so repeated previews of the same payment do not
// hammer the ledger API.
type EnvelopeBuilderImpl struct {
	ledger      port.LedgerGateway
	contract    port.ContractGateway
	logger      port.Logger
	destCache   *cache.Cache
	envelopeTTL time.Duration
}

// NewEnvelopeBuilder creates a new instance of EnvelopeBuilderImpl.
func NewEnvelopeBuilder(
	ledger port.LedgerGateway,
	contract port.ContractGateway,
	l port.Logger,
	cfg *configloader.Config,
) port.EnvelopeBuilder {
	cacheTTL := time.Duration(cfg.Performance.AccountCacheTTLSeconds) * time.Second
	return &EnvelopeBuilderImpl{
		ledger:      ledger,
		contract:    contract,
		logger:      l,
		destCache:   cache.New(cacheTTL, 2*cacheTTL),
		envelopeTTL: time.Duration(cfg.Submission.EnvelopeTimeoutSeconds) * time.Second,
	}
}

// BuildPayment emits a native-asset payment, or an account creation when the
// destination does not exist on the ledger yet.
func (b *EnvelopeBuilderImpl) BuildPayment(ctx context.Context, source, destination, amt, memo string) (entity.UnsignedEnvelope, error) {
	if !strkey.IsValidEd25519PublicKey(destination) {
		return entity.UnsignedEnvelope{}, fmt.Errorf("destination %q: %w", destination, entity.ErrInvalidAddress)
	}
	if destination == source {
		return entity.UnsignedEnvelope{}, entity.ErrSelfSend
	}
	if err := validateAmount(amt); err != nil {
		return entity.UnsignedEnvelope{}, err
	}

	sourceState, err := b.loadSource(ctx, source)
	if err != nil {
		return entity.UnsignedEnvelope{}, err
	}

	destExists, err := b.destinationExists(ctx, destination)
	if err != nil {
		return entity.UnsignedEnvelope{}, err
	}

	var op txnbuild.Operation
	if destExists {
		op = &txnbuild.Payment{
			Destination: destination,
			Amount:      amt,
			Asset:       txnbuild.NativeAsset{},
		}
	} else {
		b.logger.Info("Destination absent from ledger, building account creation instead",
			"destination", destination)
		op = &txnbuild.CreateAccount{
			Destination: destination,
			Amount:      amt,
		}
	}

	var txMemo txnbuild.Memo
	if memo != "" {
		txMemo = txnbuild.MemoText(memo)
	}

	xdrBase64, err := b.assemble(sourceState, []txnbuild.Operation{op}, txMemo, txnbuild.MinBaseFee)
	if err != nil {
		return entity.UnsignedEnvelope{}, err
	}
	return entity.UnsignedEnvelope{
		XDR:           xdrBase64,
		Kind:          entity.EnvelopePayment,
		SourceAccount: source,
		BuiltAt:       time.Now().UTC(),
	}, nil
}

// BuildSwapOffer emits a one-time sell offer, prepending a trustline
// operation when the buy asset is not yet trusted by the source account.
func (b *EnvelopeBuilderImpl) BuildSwapOffer(ctx context.Context, source string, sell, buy entity.AssetDescriptor, sellAmount, minPrice string) (entity.UnsignedEnvelope, error) {
	if err := validateAmount(sellAmount); err != nil {
		return entity.UnsignedEnvelope{}, err
	}
	offerPrice, err := price.Parse(minPrice)
	if err != nil || offerPrice.N <= 0 {
		return entity.UnsignedEnvelope{}, fmt.Errorf("price %q: %w", minPrice, entity.ErrInvalidPrice)
	}

	sourceState, err := b.loadSource(ctx, source)
	if err != nil {
		return entity.UnsignedEnvelope{}, err
	}

	var ops []txnbuild.Operation
	if !buy.IsNative() && !sourceState.HasTrustline(buy) {
		b.logger.Info("Adding trustline for buy asset", "asset", buy.CanonicalID(), "source", source)
		ops = append(ops, &txnbuild.ChangeTrust{
			Line:  txnbuild.CreditAsset{Code: buy.Code, Issuer: buy.Issuer}.MustToChangeTrustAsset(),
			Limit: txnbuild.MaxTrustlineLimit,
		})
	}
	ops = append(ops, &txnbuild.ManageSellOffer{
		Selling: toTxnbuildAsset(sell),
		Buying:  toTxnbuildAsset(buy),
		Amount:  sellAmount,
		Price:   offerPrice,
		OfferID: 0,
	})

	xdrBase64, err := b.assemble(sourceState, ops, nil, txnbuild.MinBaseFee)
	if err != nil {
		return entity.UnsignedEnvelope{}, err
	}
	return entity.UnsignedEnvelope{
		XDR:           xdrBase64,
		Kind:          entity.EnvelopeSwapOffer,
		SourceAccount: source,
		BuiltAt:       time.Now().UTC(),
	}, nil
}

// BuildContractInvocation constructs an invocation envelope, dry-runs it and
// merges the resolved resource footprint back in. The returned envelope is
// ready for signing without further simulation.
func (b *EnvelopeBuilderImpl) BuildContractInvocation(ctx context.Context, source, contractID, method string, args []xdr.ScVal) (entity.UnsignedEnvelope, error) {
	contractAddr, err := sorobanrpc.ContractScAddress(contractID)
	if err != nil {
		return entity.UnsignedEnvelope{}, fmt.Errorf("%v: %w", err, entity.ErrInvalidAddress)
	}

	sourceState, err := b.loadSource(ctx, source)
	if err != nil {
		return entity.UnsignedEnvelope{}, err
	}

	op := &txnbuild.InvokeHostFunction{
		HostFunction: xdr.HostFunction{
			Type: xdr.HostFunctionTypeHostFunctionTypeInvokeContract,
			InvokeContract: &xdr.InvokeContractArgs{
				ContractAddress: contractAddr,
				FunctionName:    xdr.ScSymbol(method),
				Args:            xdr.ScVec(args),
			},
		},
	}

	draftXDR, err := b.assemble(sourceState, []txnbuild.Operation{op}, nil, txnbuild.MinBaseFee)
	if err != nil {
		return entity.UnsignedEnvelope{}, err
	}

	sim, err := b.contract.Simulate(ctx, draftXDR)
	if err != nil {
		return entity.UnsignedEnvelope{}, fmt.Errorf("failed to simulate %s: %w", method, err)
	}
	if sim.Error != "" {
		return entity.UnsignedEnvelope{}, fmt.Errorf("%s dry run reported %q: %w", method, sim.Error, entity.ErrSimulationFailed)
	}

	if sim.TransactionData != "" {
		var sorobanData xdr.SorobanTransactionData
		if err := xdr.SafeUnmarshalBase64(sim.TransactionData, &sorobanData); err != nil {
			return entity.UnsignedEnvelope{}, fmt.Errorf("failed to decode simulated transaction data: %w", err)
		}
		op.Ext = xdr.TransactionExt{V: 1, SorobanData: &sorobanData}
	}
	for _, authB64 := range sim.AuthXDR {
		var auth xdr.SorobanAuthorizationEntry
		if err := xdr.SafeUnmarshalBase64(authB64, &auth); err != nil {
			return entity.UnsignedEnvelope{}, fmt.Errorf("failed to decode authorization entry: %w", err)
		}
		op.Auth = append(op.Auth, auth)
	}

	finalXDR, err := b.assemble(sourceState, []txnbuild.Operation{op}, nil, txnbuild.MinBaseFee+sim.MinResourceFee)
	if err != nil {
		return entity.UnsignedEnvelope{}, err
	}

	b.logger.Debug("Contract invocation built",
		"method", method, "contract", contractID, "resource_fee", sim.MinResourceFee)
	return entity.UnsignedEnvelope{
		XDR:           finalXDR,
		Kind:          entity.EnvelopeContractInvocation,
		SourceAccount: source,
		BuiltAt:       time.Now().UTC(),
	}, nil
}

// assemble wraps operations into a serialized unsigned transaction against
// the loaded source sequence.
func (b *EnvelopeBuilderImpl) assemble(sourceState entity.AccountState, ops []txnbuild.Operation, memo txnbuild.Memo, baseFee int64) (string, error) {
	tx, err := txnbuild.NewTransaction(txnbuild.TransactionParams{
		SourceAccount:        &txnbuild.SimpleAccount{AccountID: sourceState.Address, Sequence: sourceState.Sequence},
		IncrementSequenceNum: true,
		Operations:           ops,
		BaseFee:              baseFee,
		Memo:                 memo,
		Preconditions:        txnbuild.Preconditions{TimeBounds: txnbuild.NewTimeout(int64(b.envelopeTTL / time.Second))},
	})
	if err != nil {
		return "", fmt.Errorf("failed to build transaction: %w", err)
	}
	return tx.Base64()
}

// loadSource fetches the source account, which must already exist.
func (b *EnvelopeBuilderImpl) loadSource(ctx context.Context, source string) (entity.AccountState, error) {
	if !strkey.IsValidEd25519PublicKey(source) {
		return entity.AccountState{}, fmt.Errorf("source %q: %w", source, entity.ErrInvalidAddress)
	}
	state, err := b.ledger.LoadAccount(ctx, source)
	if err != nil {
		return entity.AccountState{}, fmt.Errorf("failed to load source account: %w", err)
	}
	if !state.Exists {
		return entity.AccountState{}, fmt.Errorf("source account %s does not exist on the ledger", source)
	}
	return state, nil
}

// destinationExists checks whether the destination account exists. Only
// positive results are cached: an existing account does not leave the ledger,
// but an absent one may be funded at any moment, so absence is re-checked on
// every build to keep the payment-vs-create-account choice current.
func (b *EnvelopeBuilderImpl) destinationExists(ctx context.Context, destination string) (bool, error) {
	if _, found := b.destCache.Get(destination); found {
		return true, nil
	}
	state, err := b.ledger.LoadAccount(ctx, destination)
	if err != nil {
		return false, fmt.Errorf("failed to check destination account: %w", err)
	}
	if state.Exists {
		b.destCache.SetDefault(destination, true)
	}
	return state.Exists, nil
}

// validateAmount rejects non-positive or malformed ledger amounts before any
// network call.
func validateAmount(amt string) error {
	parsed, err := amount.ParseInt64(amt)
	if err != nil {
		return fmt.Errorf("amount %q: %w", amt, entity.ErrInvalidAmount)
	}
	if parsed <= 0 {
		return fmt.Errorf("amount %q must be positive: %w", amt, entity.ErrInvalidAmount)
	}
	return nil
}

// toTxnbuildAsset maps an asset descriptor onto the transaction builder
// asset type.
func toTxnbuildAsset(a entity.AssetDescriptor) txnbuild.Asset {
	if a.IsNative() {
		return txnbuild.NativeAsset{}
	}
	return txnbuild.CreditAsset{Code: a.Code, Issuer: a.Issuer}
}
