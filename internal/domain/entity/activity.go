package entity

import "fmt"

// SwapActivityRecord is one entry of the recent-swaps feed. Records are
// produced either locally (optimistic, inserted on local swap success) or
// from the on-chain event stream (authoritative).
type SwapActivityRecord struct {
	User             string `json:"user"`
	FromAsset        string `json:"fromAsset"`
	ToAsset          string `json:"toAsset"`
	Amount           string `json:"amount"`
	TimestampSeconds int64  `json:"timestampSeconds"`
	TxHash           string `json:"txHash,omitempty"`
	Local            bool   `json:"local,omitempty"`
}

// DedupKey identifies the same swap across the optimistic and confirmed
// sources. The transaction hash is the stable key; records that never saw a
// hash fall back to a composite of the visible fields.
func (r SwapActivityRecord) DedupKey() string {
	if r.TxHash != "" {
		return "tx:" + r.TxHash
	}
	return fmt.Sprintf("ts:%d:%s:%s:%s", r.TimestampSeconds, r.User, r.FromAsset, r.ToAsset)
}
