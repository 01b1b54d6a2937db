package configloader

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"swap_gateway/internal/domain/entity"
)

// placeholderContractID is the sentinel value shipped in the default config
// before the swap-tracker contract is deployed. While it is in place, all
// contract calls short-circuit to empty/no-op results.
const placeholderContractID = "REPLACE_WITH_DEPLOYED_CONTRACT_ID"

// ServerConfig holds HTTP server configurations.
type ServerConfig struct {
	Port         string `yaml:"port"`
	ReadTimeout  int    `yaml:"readTimeoutSeconds"`
	WriteTimeout int    `yaml:"writeTimeoutSeconds"`
	IdleTimeout  int    `yaml:"idleTimeoutSeconds"`
}

// LoggingConfig holds logging-specific configurations.
type LoggingConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// HorizonConfig holds the REST ledger API endpoint configuration.
type HorizonConfig struct {
	BaseURL               string  `yaml:"baseURL"`
	RequestTimeoutSeconds int     `yaml:"requestTimeoutSeconds"`
	MaxRequestsPerSecond  float64 `yaml:"maxRequestsPerSecond"`
}

// SorobanRPCConfig holds the contract RPC endpoint configuration.
type SorobanRPCConfig struct {
	BaseURL              string `yaml:"baseURL"`
	RequestTimeoutMillis int64  `yaml:"requestTimeoutMillis"`
}

// WalletBridgeConfig holds the wallet bridge agent endpoint configuration.
type WalletBridgeConfig struct {
	BaseURL              string `yaml:"baseURL"`
	RequestTimeoutMillis int64  `yaml:"requestTimeoutMillis"`
	Label                string `yaml:"label"`
}

// NetworkConfig identifies the target network.
type NetworkConfig struct {
	Passphrase string `yaml:"passphrase"`
}

// SwapTrackerConfig holds the on-chain swap tracking contract configuration.
// ReaderAccount is any funded account used as the source of read-only
// simulation calls; it never signs anything.
type SwapTrackerConfig struct {
	ContractID    string `yaml:"contractId"`
	ReaderAccount string `yaml:"readerAccount"`
}

// PricingConfig holds orderbook pricing configuration.
type PricingConfig struct {
	DisplayDepth          int   `yaml:"displayDepth"`
	SimulationDepth       int   `yaml:"simulationDepth"`
	PreviewDebounceMillis int64 `yaml:"previewDebounceMillis"`
}

// ActivityConfig holds recent-activity feed configuration.
type ActivityConfig struct {
	PollIntervalSeconds int `yaml:"pollIntervalSeconds"`
	MaxRecords          int `yaml:"maxRecords"`
	EventPageLimit      int `yaml:"eventPageLimit"`
}

// SubmissionConfig holds transaction submission and finality-poll settings.
type SubmissionConfig struct {
	PollIntervalSeconds    int `yaml:"pollIntervalSeconds"`
	MaxPollAttempts        int `yaml:"maxPollAttempts"`
	EnvelopeTimeoutSeconds int `yaml:"envelopeTimeoutSeconds"`
	LifecycleTTLMinutes    int `yaml:"lifecycleTtlMinutes"`
}

// PerformanceConfig holds performance-related configurations.
type PerformanceConfig struct {
	MaxConcurrentRoutines  int `yaml:"max_concurrent_routines"`
	AccountCacheTTLSeconds int `yaml:"account_cache_ttl_seconds"`
}

// Config is the top-level configuration structure.
type Config struct {
	Server       ServerConfig             `yaml:"server"`
	Logging      LoggingConfig            `yaml:"logging"`
	Horizon      HorizonConfig            `yaml:"horizon"`
	SorobanRPC   SorobanRPCConfig         `yaml:"sorobanRpc"`
	WalletBridge WalletBridgeConfig       `yaml:"walletBridge"`
	Network      NetworkConfig            `yaml:"network"`
	Assets       []entity.AssetDescriptor `yaml:"assets"`
	SwapTracker  SwapTrackerConfig        `yaml:"swapTracker"`
	Pricing      PricingConfig            `yaml:"pricing"`
	Activity     ActivityConfig           `yaml:"activity"`
	Submission   SubmissionConfig         `yaml:"submission"`
	Performance  PerformanceConfig        `yaml:"performance"`
}

// Load reads the YAML configuration file from the given path and unmarshals it.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config data from %s: %w", path, err)
	}

	if cfg.Server.Port == "" {
		cfg.Server.Port = ":8080"
	}
	if cfg.Server.ReadTimeout <= 0 {
		cfg.Server.ReadTimeout = 15
	}
	if cfg.Server.WriteTimeout <= 0 {
		cfg.Server.WriteTimeout = 90 // contract finality polling can hold a request open
	}
	if cfg.Server.IdleTimeout <= 0 {
		cfg.Server.IdleTimeout = 60
	}

	if cfg.Horizon.BaseURL == "" {
		cfg.Horizon.BaseURL = "https://horizon-testnet.stellar.org"
	}
	if cfg.Horizon.RequestTimeoutSeconds <= 0 {
		cfg.Horizon.RequestTimeoutSeconds = 10
	}
	if cfg.Horizon.MaxRequestsPerSecond <= 0 {
		cfg.Horizon.MaxRequestsPerSecond = 10
	}

	if cfg.SorobanRPC.BaseURL == "" {
		cfg.SorobanRPC.BaseURL = "https://soroban-testnet.stellar.org"
	}
	if cfg.SorobanRPC.RequestTimeoutMillis <= 0 {
		cfg.SorobanRPC.RequestTimeoutMillis = 10000
	}

	if cfg.WalletBridge.RequestTimeoutMillis <= 0 {
		// Signing waits on a human; the bridge call must outlive the prompt.
		cfg.WalletBridge.RequestTimeoutMillis = 120000
	}
	if cfg.WalletBridge.Label == "" {
		cfg.WalletBridge.Label = "Freighter"
	}

	if cfg.Network.Passphrase == "" {
		cfg.Network.Passphrase = "Test SDF Network ; September 2015"
	}

	if cfg.SwapTracker.ContractID == "" {
		cfg.SwapTracker.ContractID = placeholderContractID
	}

	if cfg.Pricing.DisplayDepth <= 0 {
		cfg.Pricing.DisplayDepth = 20
	}
	if cfg.Pricing.SimulationDepth <= 0 {
		cfg.Pricing.SimulationDepth = 50
	}
	if cfg.Pricing.PreviewDebounceMillis <= 0 {
		cfg.Pricing.PreviewDebounceMillis = 500
	}

	if cfg.Activity.PollIntervalSeconds <= 0 {
		cfg.Activity.PollIntervalSeconds = 10
	}
	if cfg.Activity.MaxRecords <= 0 {
		cfg.Activity.MaxRecords = 50
	}
	if cfg.Activity.EventPageLimit <= 0 {
		cfg.Activity.EventPageLimit = 100
	}

	if cfg.Submission.PollIntervalSeconds <= 0 {
		cfg.Submission.PollIntervalSeconds = 2
	}
	if cfg.Submission.MaxPollAttempts <= 0 {
		cfg.Submission.MaxPollAttempts = 30
	}
	if cfg.Submission.EnvelopeTimeoutSeconds <= 0 {
		cfg.Submission.EnvelopeTimeoutSeconds = 180
	}
	if cfg.Submission.LifecycleTTLMinutes <= 0 {
		cfg.Submission.LifecycleTTLMinutes = 30
	}

	if cfg.Performance.MaxConcurrentRoutines <= 0 {
		cfg.Performance.MaxConcurrentRoutines = 10
	}
	if cfg.Performance.AccountCacheTTLSeconds <= 0 {
		cfg.Performance.AccountCacheTTLSeconds = 30
	}

	if len(cfg.Assets) == 0 {
		cfg.Assets = []entity.AssetDescriptor{{Code: "XLM", Decimals: 7}}
	}
	for _, asset := range cfg.Assets {
		if asset.Code == "" {
			return nil, fmt.Errorf("config %s: asset entry without a code", path)
		}
	}

	return &cfg, nil
}

// ContractDeployed reports whether a real contract id is configured rather
// than the shipping placeholder.
func (c *Config) ContractDeployed() bool {
	return c.SwapTracker.ContractID != "" && c.SwapTracker.ContractID != placeholderContractID
}

// FindAsset resolves a configured asset by code. The bool is false when the
// code is not part of the supported asset list.
func (c *Config) FindAsset(code string) (entity.AssetDescriptor, bool) {
	for _, a := range c.Assets {
		if a.Code == code {
			return a, true
		}
	}
	return entity.AssetDescriptor{}, false
}

// NativeAsset returns the configured native asset descriptor.
func (c *Config) NativeAsset() entity.AssetDescriptor {
	for _, a := range c.Assets {
		if a.IsNative() {
			return a
		}
	}
	return entity.AssetDescriptor{Code: "XLM", Decimals: 7}
}
