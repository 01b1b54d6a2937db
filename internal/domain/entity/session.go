package entity

// WalletCapabilities describes what the connected wallet bridge supports.
// Detected once per connection attempt; never persisted.
type WalletCapabilities struct {
	IsInstalled      bool `json:"isInstalled"`
	SupportsV2Access bool `json:"supportsV2Access"`
}

// ConnectionState is the wallet session state owned by the session service.
// It is mutated only through Connect/Disconnect/CheckConnection and is reset
// to the zero value on disconnect.
type ConnectionState struct {
	Address     string `json:"address,omitempty"`
	IsConnected bool   `json:"isConnected"`
	NetworkOK   bool   `json:"networkOk"`
	WalletLabel string `json:"walletLabel,omitempty"`
}
