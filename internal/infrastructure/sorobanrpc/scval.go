package sorobanrpc

import (
	"fmt"
	"math"

	"github.com/stellar/go/amount"
	"github.com/stellar/go/strkey"
	"github.com/stellar/go/xdr"

	"swap_gateway/internal/domain/entity"
)

// ScVal constructors and decoders for the swap-tracker contract boundary.
// Amounts cross this boundary as 7-decimal fixed point (scaled by 10^7).

// AccountAddressVal wraps a G... account address.
func AccountAddressVal(address string) (xdr.ScVal, error) {
	aid, err := xdr.AddressToAccountId(address)
	if err != nil {
		return xdr.ScVal{}, fmt.Errorf("invalid account address %s: %w", address, err)
	}
	scAddr := xdr.ScAddress{Type: xdr.ScAddressTypeScAddressTypeAccount, AccountId: &aid}
	return xdr.ScVal{Type: xdr.ScValTypeScvAddress, Address: &scAddr}, nil
}

// ContractScAddress decodes a C... contract id into an ScAddress.
func ContractScAddress(contractID string) (xdr.ScAddress, error) {
	raw, err := strkey.Decode(strkey.VersionByteContract, contractID)
	if err != nil {
		return xdr.ScAddress{}, fmt.Errorf("invalid contract id %s: %w", contractID, err)
	}
	var contractHash xdr.ContractId
	copy(contractHash[:], raw)
	return xdr.ScAddress{Type: xdr.ScAddressTypeScAddressTypeContract, ContractId: &contractHash}, nil
}

// StringVal wraps a UTF-8 string.
func StringVal(s string) xdr.ScVal {
	str := xdr.ScString(s)
	return xdr.ScVal{Type: xdr.ScValTypeScvString, Str: &str}
}

// SymbolVal wraps a short symbol.
func SymbolVal(s string) xdr.ScVal {
	sym := xdr.ScSymbol(s)
	return xdr.ScVal{Type: xdr.ScValTypeScvSymbol, Sym: &sym}
}

// I128Val wraps a signed 64-bit value as a sign-extended i128.
func I128Val(v int64) xdr.ScVal {
	parts := xdr.Int128Parts{
		Hi: xdr.Int64(v >> 63),
		Lo: xdr.Uint64(v),
	}
	return xdr.ScVal{Type: xdr.ScValTypeScvI128, I128: &parts}
}

// U64Val wraps an unsigned 64-bit value.
func U64Val(v uint64) xdr.ScVal {
	u := xdr.Uint64(v)
	return xdr.ScVal{Type: xdr.ScValTypeScvU64, U64: &u}
}

// U32Val wraps an unsigned 32-bit value.
func U32Val(v uint32) xdr.ScVal {
	u := xdr.Uint32(v)
	return xdr.ScVal{Type: xdr.ScValTypeScvU32, U32: &u}
}

// DecodeSwapRecords parses the base64 ScVal returned by get_recent_swaps:
// a vector of maps keyed by symbol (amount, from_asset, timestamp, to_asset,
// user).
func DecodeSwapRecords(resultXDR string) ([]entity.SwapActivityRecord, error) {
	var val xdr.ScVal
	if err := xdr.SafeUnmarshalBase64(resultXDR, &val); err != nil {
		return nil, fmt.Errorf("failed to decode swap records value: %w", err)
	}
	if val.Type != xdr.ScValTypeScvVec || val.Vec == nil || *val.Vec == nil {
		return nil, fmt.Errorf("swap records value is not a vector (type %v)", val.Type)
	}

	records := make([]entity.SwapActivityRecord, 0, len(**val.Vec))
	for i, item := range **val.Vec {
		record, err := decodeSwapRecordMap(item)
		if err != nil {
			return nil, fmt.Errorf("failed to decode swap record %d: %w", i, err)
		}
		records = append(records, record)
	}
	return records, nil
}

func decodeSwapRecordMap(val xdr.ScVal) (entity.SwapActivityRecord, error) {
	if val.Type != xdr.ScValTypeScvMap || val.Map == nil || *val.Map == nil {
		return entity.SwapActivityRecord{}, fmt.Errorf("record is not a map (type %v)", val.Type)
	}

	var record entity.SwapActivityRecord
	for _, pair := range **val.Map {
		key, ok := symbolKey(pair.Key)
		if !ok {
			continue
		}
		switch key {
		case "user":
			addr, err := scAddressString(pair.Val)
			if err != nil {
				return entity.SwapActivityRecord{}, err
			}
			record.User = addr
		case "from_asset":
			record.FromAsset = scString(pair.Val)
		case "to_asset":
			record.ToAsset = scString(pair.Val)
		case "amount":
			scaled, err := scI128ToInt64(pair.Val)
			if err != nil {
				return entity.SwapActivityRecord{}, err
			}
			record.Amount = amount.String(xdr.Int64(scaled))
		case "timestamp":
			if pair.Val.Type == xdr.ScValTypeScvU64 && pair.Val.U64 != nil {
				record.TimestampSeconds = int64(*pair.Val.U64)
			}
		}
	}
	return record, nil
}

// DecodeSwapEvent parses one swap_recorded event value: a vector of
// (user, from_asset, to_asset, amount, timestamp).
func DecodeSwapEvent(valueXDR, txHash string) (entity.SwapActivityRecord, error) {
	var val xdr.ScVal
	if err := xdr.SafeUnmarshalBase64(valueXDR, &val); err != nil {
		return entity.SwapActivityRecord{}, fmt.Errorf("failed to decode event value: %w", err)
	}
	if val.Type != xdr.ScValTypeScvVec || val.Vec == nil || *val.Vec == nil || len(**val.Vec) < 5 {
		return entity.SwapActivityRecord{}, fmt.Errorf("event value is not a 5-tuple")
	}

	fields := **val.Vec
	user, err := scAddressString(fields[0])
	if err != nil {
		return entity.SwapActivityRecord{}, err
	}
	scaled, err := scI128ToInt64(fields[3])
	if err != nil {
		return entity.SwapActivityRecord{}, err
	}

	record := entity.SwapActivityRecord{
		User:      user,
		FromAsset: scString(fields[1]),
		ToAsset:   scString(fields[2]),
		Amount:    amount.String(xdr.Int64(scaled)),
		TxHash:    txHash,
	}
	if fields[4].Type == xdr.ScValTypeScvU64 && fields[4].U64 != nil {
		record.TimestampSeconds = int64(*fields[4].U64)
	}
	return record, nil
}

func symbolKey(val xdr.ScVal) (string, bool) {
	if val.Type == xdr.ScValTypeScvSymbol && val.Sym != nil {
		return string(*val.Sym), true
	}
	return "", false
}

func scString(val xdr.ScVal) string {
	switch val.Type {
	case xdr.ScValTypeScvString:
		if val.Str != nil {
			return string(*val.Str)
		}
	case xdr.ScValTypeScvSymbol:
		if val.Sym != nil {
			return string(*val.Sym)
		}
	}
	return ""
}

func scAddressString(val xdr.ScVal) (string, error) {
	if val.Type != xdr.ScValTypeScvAddress || val.Address == nil {
		return "", fmt.Errorf("value is not an address (type %v)", val.Type)
	}
	return val.Address.String()
}

// scI128ToInt64 narrows an i128 amount. Values outside the int64 range are
// rejected rather than truncated.
func scI128ToInt64(val xdr.ScVal) (int64, error) {
	if val.Type != xdr.ScValTypeScvI128 || val.I128 == nil {
		return 0, fmt.Errorf("value is not an i128 (type %v)", val.Type)
	}
	parts := *val.I128
	switch {
	case parts.Hi == 0 && parts.Lo <= math.MaxInt64:
		return int64(parts.Lo), nil
	case parts.Hi == -1 && parts.Lo > math.MaxInt64:
		return int64(parts.Lo), nil
	default:
		return 0, fmt.Errorf("i128 amount out of int64 range (hi=%d)", parts.Hi)
	}
}
