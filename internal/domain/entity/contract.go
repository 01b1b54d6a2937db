package entity

// SimulationResult carries the outcome of a dry-run contract invocation.
// The XDR fields stay base64-encoded; only the builder decodes them when
// merging the resource footprint into the final envelope.
type SimulationResult struct {
	ResultXDR       string
	TransactionData string
	AuthXDR         []string
	MinResourceFee  int64
	Error           string
	LatestLedger    int64
}

// ContractTxStatus is the terminal-status poll result for a submitted
// contract transaction.
type ContractTxStatus string

const (
	ContractTxNotFound ContractTxStatus = "NOT_FOUND"
	ContractTxSuccess  ContractTxStatus = "SUCCESS"
	ContractTxFailed   ContractTxStatus = "FAILED"
)

// EventPage is one page of decoded swap events from the ledger event stream
// together with the pagination cursor to resume from.
type EventPage struct {
	Records      []SwapActivityRecord
	Cursor       string
	LatestLedger int64
}
