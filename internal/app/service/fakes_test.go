package service

import (
	"context"

	"swap_gateway/internal/domain/entity"
	"swap_gateway/internal/infrastructure/configloader"
)

// testLogger satisfies port.Logger without producing output.
type testLogger struct{}

func (testLogger) Info(msg string, args ...any)  {}
func (testLogger) Debug(msg string, args ...any) {}
func (testLogger) Warn(msg string, args ...any)  {}
func (testLogger) Error(msg string, args ...any) {}

// fakeWallet implements port.WalletChannel through overridable functions.
type fakeWallet struct {
	ping          func(ctx context.Context) (bool, error)
	requestAccess func(ctx context.Context) (any, error)
	setAllowed    func(ctx context.Context) (bool, error)
	getAddress    func(ctx context.Context) (any, error)
	getPublicKey  func(ctx context.Context) (any, error)
	sign          func(ctx context.Context, envelopeXDR, passphrase string) (any, error)
	getNetwork    func(ctx context.Context) (any, error)
}

func (f *fakeWallet) Ping(ctx context.Context) (bool, error) {
	if f.ping == nil {
		return false, context.DeadlineExceeded
	}
	return f.ping(ctx)
}

func (f *fakeWallet) RequestAccess(ctx context.Context) (any, error) {
	return f.requestAccess(ctx)
}

func (f *fakeWallet) SetAllowed(ctx context.Context) (bool, error) {
	return f.setAllowed(ctx)
}

func (f *fakeWallet) GetAddress(ctx context.Context) (any, error) {
	return f.getAddress(ctx)
}

func (f *fakeWallet) GetPublicKey(ctx context.Context) (any, error) {
	return f.getPublicKey(ctx)
}

func (f *fakeWallet) SignTransaction(ctx context.Context, envelopeXDR, passphrase string) (any, error) {
	return f.sign(ctx, envelopeXDR, passphrase)
}

func (f *fakeWallet) GetNetworkPassphrase(ctx context.Context) (any, error) {
	if f.getNetwork == nil {
		return map[string]any{"networkPassphrase": "Test SDF Network ; September 2015"}, nil
	}
	return f.getNetwork(ctx)
}

// fakeLedger implements port.LedgerGateway through overridable functions.
type fakeLedger struct {
	loadAccount func(ctx context.Context, address string) (entity.AccountState, error)
	orderbook   func(ctx context.Context, selling, buying entity.AssetDescriptor, limit int) (entity.OrderbookSnapshot, error)
	submitXDR   func(ctx context.Context, signedXDR string) (string, error)
}

func (f *fakeLedger) LoadAccount(ctx context.Context, address string) (entity.AccountState, error) {
	return f.loadAccount(ctx, address)
}

func (f *fakeLedger) Orderbook(ctx context.Context, selling, buying entity.AssetDescriptor, limit int) (entity.OrderbookSnapshot, error) {
	return f.orderbook(ctx, selling, buying, limit)
}

func (f *fakeLedger) SubmitXDR(ctx context.Context, signedXDR string) (string, error) {
	return f.submitXDR(ctx, signedXDR)
}

// fakeContract implements port.ContractGateway through overridable functions.
type fakeContract struct {
	deployed    bool
	simulate    func(ctx context.Context, envelopeXDR string) (entity.SimulationResult, error)
	send        func(ctx context.Context, signedXDR string) (string, error)
	txStatus    func(ctx context.Context, hash string) (entity.ContractTxStatus, error)
	recentSwaps func(ctx context.Context, count int) ([]entity.SwapActivityRecord, error)
	swapCount   func(ctx context.Context) (uint64, error)
	swapEvents  func(ctx context.Context, cursor string, limit int) (entity.EventPage, error)
}

func (f *fakeContract) Simulate(ctx context.Context, envelopeXDR string) (entity.SimulationResult, error) {
	return f.simulate(ctx, envelopeXDR)
}

func (f *fakeContract) Send(ctx context.Context, signedXDR string) (string, error) {
	return f.send(ctx, signedXDR)
}

func (f *fakeContract) TransactionStatus(ctx context.Context, hash string) (entity.ContractTxStatus, error) {
	return f.txStatus(ctx, hash)
}

func (f *fakeContract) RecentSwaps(ctx context.Context, count int) ([]entity.SwapActivityRecord, error) {
	return f.recentSwaps(ctx, count)
}

func (f *fakeContract) SwapCount(ctx context.Context) (uint64, error) {
	return f.swapCount(ctx)
}

func (f *fakeContract) SwapEvents(ctx context.Context, cursor string, limit int) (entity.EventPage, error) {
	return f.swapEvents(ctx, cursor, limit)
}

func (f *fakeContract) Deployed() bool {
	return f.deployed
}

// testConfig returns a config with the defaults the services expect, without
// touching the filesystem.
func testConfig() *configloader.Config {
	return &configloader.Config{
		Network: configloader.NetworkConfig{Passphrase: "Test SDF Network ; September 2015"},
		WalletBridge: configloader.WalletBridgeConfig{
			RequestTimeoutMillis: 1000,
			Label:                "Freighter",
		},
		Assets: []entity.AssetDescriptor{
			{Code: "XLM", Decimals: 7},
			{Code: "USDC", Issuer: "GBBD47IF6LWK7P7MDEVSCWR7DPUWV3NY3DTQEVFL4NAT4AQH3ZLLFLA5", Decimals: 7},
		},
		Pricing: configloader.PricingConfig{
			DisplayDepth:          20,
			SimulationDepth:       50,
			PreviewDebounceMillis: 10,
		},
		Activity: configloader.ActivityConfig{
			PollIntervalSeconds: 1,
			MaxRecords:          3,
			EventPageLimit:      100,
		},
		Submission: configloader.SubmissionConfig{
			PollIntervalSeconds:    1,
			MaxPollAttempts:        2,
			EnvelopeTimeoutSeconds: 180,
			LifecycleTTLMinutes:    1,
		},
		Performance: configloader.PerformanceConfig{
			MaxConcurrentRoutines:  4,
			AccountCacheTTLSeconds: 1,
		},
	}
}
