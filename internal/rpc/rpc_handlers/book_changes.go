package rpc_handlers

import (
	"encoding/json"

	"github.com/LeJamon/goXRPLd/internal/rpc/rpc_types"
)

// BookChangesMethod handles the book_changes RPC method
// This method returns the changes to the order book for a specified ledger.
// It computes OHLCV (open, high, low, close, volume) data for all currency pairs
// that had offer changes in the ledger.
//
// Reference: rippled/src/xrpld/rpc/handlers/BookOffers.cpp (doBookChanges)
// Reference: rippled/src/xrpld/rpc/BookChanges.h (computeBookChanges)
type BookChangesMethod struct{}

func (m *BookChangesMethod) Handle(ctx *rpc_types.RpcContext, params json.RawMessage) (interface{}, *rpc_types.RpcError) {
	// TODO: Implement book_changes handler
	//
	// Request parameters:
	//   - ledger_hash (optional): A 20-byte hex string for the ledger version to use
	//   - ledger_index (optional): The ledger index of the ledger to use, or a shortcut string
	//
	// Response fields:
	//   - type: "bookChanges"
	//   - validated: boolean indicating if the ledger is validated
	//   - ledger_index: sequence number of the ledger
	//   - ledger_hash: hash of the ledger
	//   - ledger_time: close time of the ledger
	//   - changes: array of book change objects, each containing:
	//     - currency_a: first currency (e.g., "XRP_drops" or "USD/rIssuer...")
	//     - currency_b: second currency
	//     - volume_a: volume in currency_a
	//     - volume_b: volume in currency_b
	//     - high: highest exchange rate
	//     - low: lowest exchange rate
	//     - open: first exchange rate
	//     - close: last exchange rate
	//     - domain (optional): domain ID if present
	//
	// Implementation notes:
	// 1. Look up the specified ledger (or use current if not specified)
	// 2. Iterate through all transactions in the ledger
	// 3. For each transaction, examine AffectedNodes in metadata
	// 4. For ltOFFER nodes that are Modified or Deleted (not Created):
	//    - Compare FinalFields vs PreviousFields for TakerGets/TakerPays
	//    - Filter out offers explicitly cancelled (not crossed)
	//    - Compute delta in gets and pays
	//    - Calculate exchange rate and accumulate OHLCV data per currency pair
	// 5. Return aggregated book changes

	var request struct {
		rpc_types.LedgerSpecifier
	}

	if params != nil {
		if err := json.Unmarshal(params, &request); err != nil {
			return nil, rpc_types.RpcErrorInvalidParams("Invalid parameters: " + err.Error())
		}
	}

	// Check if ledger service is available
	if rpc_types.Services == nil || rpc_types.Services.Ledger == nil {
		return nil, rpc_types.RpcErrorInternal("Ledger service not available")
	}

	return nil, rpc_types.NewRpcError(rpc_types.RpcNOT_IMPL, "notImpl", "notImpl", "book_changes not yet implemented")
}

func (m *BookChangesMethod) RequiredRole() rpc_types.Role {
	return rpc_types.RoleGuest
}

func (m *BookChangesMethod) SupportedApiVersions() []int {
	return []int{rpc_types.ApiVersion1, rpc_types.ApiVersion2, rpc_types.ApiVersion3}
}
