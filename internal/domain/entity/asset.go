package entity

// AssetDescriptor identifies one asset the gateway is configured to handle.
// An empty Issuer denotes the network's native asset (XLM).
type AssetDescriptor struct {
	Code     string `json:"code" yaml:"code"`
	Issuer   string `json:"issuer,omitempty" yaml:"issuer,omitempty"`
	Decimals int32  `json:"decimals" yaml:"decimals"`
}

// IsNative reports whether the descriptor refers to the native asset.
func (a AssetDescriptor) IsNative() bool {
	return a.Issuer == ""
}

// CanonicalID returns a stable "CODE:ISSUER" identifier ("native" for the
// native asset), used as a map key and in log fields.
func (a AssetDescriptor) CanonicalID() string {
	if a.IsNative() {
		return "native"
	}
	return a.Code + ":" + a.Issuer
}

// AssetBalance is one balance line of a loaded account.
type AssetBalance struct {
	Asset  AssetDescriptor `json:"asset"`
	Amount string          `json:"amount"`
}
