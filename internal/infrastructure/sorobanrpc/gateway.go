package sorobanrpc

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/stellar/go/strkey"
	"github.com/stellar/go/txnbuild"
	"github.com/stellar/go/xdr"
	"go.uber.org/zap"

	"swap_gateway/internal/app/port"
	"swap_gateway/internal/domain/entity"
	"swap_gateway/internal/infrastructure/configloader"
)

// eventLookbackLedgers bounds the first getEvents query when no cursor has
// been observed yet (~10 minutes of ledgers).
const eventLookbackLedgers = 120

// Gateway implements port.ContractGateway for the swap-tracker contract.
// Read paths go through simulation only; nothing here submits a fee-bearing
// transaction except Send.
type Gateway struct {
	rpc           *Client
	logger        *zap.Logger
	contractID    string
	readerAccount string
	deployed      bool
	swapTopicXDR  string
}

// NewGateway creates a contract gateway. When the configured contract id is
// the shipping placeholder (or malformed), every read returns empty results
// and Send refuses to submit.
func NewGateway(cfg *configloader.Config, rpc *Client, logger *zap.Logger) port.ContractGateway {
	g := &Gateway{
		rpc:           rpc,
		logger:        logger.Named("SwapTrackerGateway"),
		contractID:    cfg.SwapTracker.ContractID,
		readerAccount: cfg.SwapTracker.ReaderAccount,
	}

	if cfg.ContractDeployed() {
		if _, err := strkey.Decode(strkey.VersionByteContract, g.contractID); err != nil {
			g.logger.Warn("Configured contract id is not a valid contract address, contract calls disabled",
				zap.String("contract_id", g.contractID), zap.Error(err))
		} else {
			g.deployed = true
		}
	}

	topic, err := xdr.MarshalBase64(SymbolVal("swap"))
	if err != nil {
		// SymbolVal over a constant cannot fail to marshal; keep the filter
		// empty rather than crash if the SDK ever changes.
		g.logger.Error("Failed to marshal swap event topic", zap.Error(err))
	}
	g.swapTopicXDR = topic
	return g
}

// Deployed implements port.ContractGateway.
func (g *Gateway) Deployed() bool {
	return g.deployed
}

// Simulate implements port.ContractGateway.
func (g *Gateway) Simulate(ctx context.Context, envelopeXDR string) (entity.SimulationResult, error) {
	resp, err := g.rpc.SimulateTransaction(ctx, envelopeXDR)
	if err != nil {
		return entity.SimulationResult{}, fmt.Errorf("simulation call failed: %w", err)
	}

	result := entity.SimulationResult{
		TransactionData: resp.TransactionData,
		Error:           resp.Error,
		LatestLedger:    resp.LatestLedger,
	}
	if resp.MinResourceFee != "" {
		fee, convErr := strconv.ParseInt(resp.MinResourceFee, 10, 64)
		if convErr != nil {
			return entity.SimulationResult{}, fmt.Errorf("malformed minResourceFee %q: %w", resp.MinResourceFee, convErr)
		}
		result.MinResourceFee = fee
	}
	if len(resp.Results) > 0 {
		result.ResultXDR = resp.Results[0].XDR
		result.AuthXDR = resp.Results[0].Auth
	}
	return result, nil
}

// Send implements port.ContractGateway.
func (g *Gateway) Send(ctx context.Context, signedXDR string) (string, error) {
	if !g.deployed {
		return "", fmt.Errorf("swap tracker contract is not deployed")
	}
	resp, err := g.rpc.SendTransaction(ctx, signedXDR)
	if err != nil {
		return "", fmt.Errorf("sendTransaction failed: %w", err)
	}
	if resp.Status == "ERROR" {
		return "", fmt.Errorf("transaction rejected by RPC node: %s", resp.ErrorResultXDR)
	}
	return resp.Hash, nil
}

// TransactionStatus implements port.ContractGateway.
func (g *Gateway) TransactionStatus(ctx context.Context, hash string) (entity.ContractTxStatus, error) {
	resp, err := g.rpc.GetTransaction(ctx, hash)
	if err != nil {
		return "", fmt.Errorf("getTransaction failed for %s: %w", hash, err)
	}
	switch resp.Status {
	case "SUCCESS":
		return entity.ContractTxSuccess, nil
	case "NOT_FOUND":
		return entity.ContractTxNotFound, nil
	default:
		return entity.ContractTxFailed, nil
	}
}

// RecentSwaps implements port.ContractGateway via a read-only simulation of
// get_recent_swaps. No transaction is submitted and no fee is paid.
func (g *Gateway) RecentSwaps(ctx context.Context, count int) ([]entity.SwapActivityRecord, error) {
	if !g.deployed {
		return nil, nil
	}
	if count <= 0 {
		return nil, nil
	}

	envelope, err := g.buildReadEnvelope("get_recent_swaps", []xdr.ScVal{U32Val(uint32(count))})
	if err != nil {
		return nil, err
	}
	sim, err := g.Simulate(ctx, envelope)
	if err != nil {
		return nil, err
	}
	if sim.Error != "" {
		return nil, fmt.Errorf("get_recent_swaps simulation reported: %s", sim.Error)
	}
	if sim.ResultXDR == "" {
		return nil, nil
	}
	return DecodeSwapRecords(sim.ResultXDR)
}

// SwapCount implements port.ContractGateway.
func (g *Gateway) SwapCount(ctx context.Context) (uint64, error) {
	if !g.deployed {
		return 0, nil
	}

	envelope, err := g.buildReadEnvelope("get_swap_count", nil)
	if err != nil {
		return 0, err
	}
	sim, err := g.Simulate(ctx, envelope)
	if err != nil {
		return 0, err
	}
	if sim.Error != "" {
		return 0, fmt.Errorf("get_swap_count simulation reported: %s", sim.Error)
	}
	if sim.ResultXDR == "" {
		return 0, nil
	}

	var val xdr.ScVal
	if err := xdr.SafeUnmarshalBase64(sim.ResultXDR, &val); err != nil {
		return 0, fmt.Errorf("failed to decode swap count: %w", err)
	}
	if val.Type != xdr.ScValTypeScvU64 || val.U64 == nil {
		return 0, fmt.Errorf("swap count is not a u64 (type %v)", val.Type)
	}
	return uint64(*val.U64), nil
}

// SwapEvents implements port.ContractGateway. Individual events that fail to
// decode are skipped; the page cursor still advances past them.
func (g *Gateway) SwapEvents(ctx context.Context, cursor string, limit int) (entity.EventPage, error) {
	if !g.deployed {
		return entity.EventPage{Cursor: cursor}, nil
	}

	pagination := map[string]any{"limit": limit}
	params := map[string]any{
		"filters": []map[string]any{{
			"type":        "contract",
			"contractIds": []string{g.contractID},
			"topics":      [][]string{{g.swapTopicXDR}},
		}},
		"pagination": pagination,
	}
	if cursor != "" {
		pagination["cursor"] = cursor
	} else {
		latest, err := g.rpc.GetLatestLedger(ctx)
		if err != nil {
			return entity.EventPage{Cursor: cursor}, fmt.Errorf("failed to resolve start ledger: %w", err)
		}
		start := latest.Sequence - eventLookbackLedgers
		if start < 1 {
			start = 1
		}
		params["startLedger"] = start
	}

	resp, err := g.rpc.GetEvents(ctx, params)
	if err != nil {
		return entity.EventPage{Cursor: cursor}, fmt.Errorf("getEvents failed: %w", err)
	}

	page := entity.EventPage{Cursor: cursor, LatestLedger: resp.LatestLedger}
	for _, ev := range resp.Events {
		record, decErr := DecodeSwapEvent(ev.Value, ev.TxHash)
		if decErr != nil {
			g.logger.Warn("Skipping undecodable swap event", zap.String("event_id", ev.ID), zap.Error(decErr))
			continue
		}
		page.Records = append(page.Records, record)
	}
	if resp.Cursor != "" {
		page.Cursor = resp.Cursor
	} else if len(resp.Events) > 0 {
		// Older RPC builds omit the page cursor; fall back to the last
		// event id, which is accepted as a cursor by getEvents.
		page.Cursor = resp.Events[len(resp.Events)-1].ID
	}
	return page, nil
}

// buildReadEnvelope wraps a contract call into a minimal unsigned envelope
// suitable for simulation. The reader account's real sequence is irrelevant
// for a dry run, so no account load is needed.
func (g *Gateway) buildReadEnvelope(method string, args []xdr.ScVal) (string, error) {
	contractAddr, err := ContractScAddress(g.contractID)
	if err != nil {
		return "", err
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

	tx, err := txnbuild.NewTransaction(txnbuild.TransactionParams{
		SourceAccount:        &txnbuild.SimpleAccount{AccountID: g.readerAccount, Sequence: 0},
		IncrementSequenceNum: true,
		Operations:           []txnbuild.Operation{op},
		BaseFee:              txnbuild.MinBaseFee,
		Preconditions:        txnbuild.Preconditions{TimeBounds: txnbuild.NewTimeout(int64(5 * time.Minute / time.Second))},
	})
	if err != nil {
		return "", fmt.Errorf("failed to build %s read envelope: %w", method, err)
	}
	return tx.Base64()
}
