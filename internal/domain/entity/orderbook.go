package entity

import "time"

// PriceLevel is one price point of the venue's order book with the amount
// available at that price. Both values are decimal strings as returned by
// the ledger API.
type PriceLevel struct {
	Price  string `json:"price"`
	Amount string `json:"amount"`
}

// OrderbookSnapshot is the current depth for one asset pair. It is ephemeral:
// refetched per pricing request and never cached beyond one response.
// Price semantics follow the venue convention: units of the selling asset per
// one unit of the buying asset.
type OrderbookSnapshot struct {
	BestAsk  string       `json:"bestAsk"`
	BestBid  string       `json:"bestBid"`
	AskDepth int          `json:"askDepth"`
	BidDepth int          `json:"bidDepth"`
	Bids     []PriceLevel `json:"bids,omitempty"`
	Asks     []PriceLevel `json:"asks,omitempty"`
}

// SwapPreview is the last applied debounced price preview. Generation ties
// the preview to the request that produced it; the pricing service drops any
// result whose generation is no longer current.
type SwapPreview struct {
	Sell       AssetDescriptor   `json:"sell"`
	Buy        AssetDescriptor   `json:"buy"`
	SellAmount string            `json:"sellAmount"`
	Receive    string            `json:"receive"`
	Snapshot   OrderbookSnapshot `json:"snapshot"`
	UpdatedAt  time.Time         `json:"updatedAt"`
	Generation uint64            `json:"-"`
}
