package entity

// AccountState is the gateway's view of a ledger account at load time.
// Exists is false when the ledger reported the account as not found, which is
// a legitimate new-account state rather than an error.
type AccountState struct {
	Address  string         `json:"address"`
	Exists   bool           `json:"exists"`
	Sequence int64          `json:"sequence"`
	Balances []AssetBalance `json:"balances"`
}

// HasTrustline reports whether the account already holds a trustline for the
// given asset. The native asset needs no trustline.
func (s AccountState) HasTrustline(asset AssetDescriptor) bool {
	if asset.IsNative() {
		return true
	}
	for _, b := range s.Balances {
		if b.Asset.Code == asset.Code && b.Asset.Issuer == asset.Issuer {
			return true
		}
	}
	return false
}

// DisplayBalance is one valued balance line of the account overview.
// PriceNative and ValueNative are expressed in the native asset and are empty
// when no orderbook liquidity was available to value the position.
type DisplayBalance struct {
	Asset       AssetDescriptor `json:"asset"`
	Amount      string          `json:"amount"`
	PriceNative string          `json:"priceNative,omitempty"`
	ValueNative string          `json:"valueNative,omitempty"`
}

// AccountOverview is the balance display payload for one address.
type AccountOverview struct {
	Address  string           `json:"address"`
	Exists   bool             `json:"exists"`
	Balances []DisplayBalance `json:"balances"`
}
