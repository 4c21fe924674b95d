package rpc_handlers

import (
	"encoding/json"

	"github.com/LeJamon/goXRPLd/internal/rpc/rpc_types"
)

// RipplePathFindMethod handles the ripple_path_find RPC method
type RipplePathFindMethod struct{}

func (m *RipplePathFindMethod) Handle(ctx *rpc_types.RpcContext, params json.RawMessage) (interface{}, *rpc_types.RpcError) {
	var request struct {
		SourceAccount      string            `json:"source_account"`
		DestinationAccount string            `json:"destination_account"`
		DestinationAmount  json.RawMessage   `json:"destination_amount"`
		SendMax            json.RawMessage   `json:"send_max,omitempty"`
		SourceCurrencies   []json.RawMessage `json:"source_currencies,omitempty"`
		rpc_types.LedgerSpecifier
	}

	if params != nil {
		if err := json.Unmarshal(params, &request); err != nil {
			return nil, rpc_types.RpcErrorInvalidParams("Invalid parameters: " + err.Error())
		}
	}

	if request.SourceAccount == "" || request.DestinationAccount == "" {
		return nil, rpc_types.RpcErrorInvalidParams("source_account and destination_account are required")
	}

	if len(request.DestinationAmount) == 0 {
		return nil, rpc_types.RpcErrorInvalidParams("destination_amount is required")
	}

	// TODO: Implement payment path finding
	// 1. Parse source and destination accounts
	// 2. Parse destination amount and optional send_max limit
	// 3. Determine target ledger state
	// 4. Run path-finding algorithm to find payment paths:
	//    - Direct paths (if same currency)
	//    - Rippling paths through intermediary accounts
	//    - Order book paths through DEX
	//    - Combined paths using multiple mechanisms
	// 5. Calculate exchange rates and liquidity for each path
	// 6. Sort paths by cost (amount to send)
	// 7. Return viable paths with detailed step information

	response := map[string]interface{}{
		"source_account":      request.SourceAccount,
		"destination_account": request.DestinationAccount,
		"destination_amount":  request.DestinationAmount,
		"ledger_hash":         "PLACEHOLDER_LEDGER_HASH",
		"ledger_index":        1000,
		"alternatives": []interface{}{
			// TODO: Return actual payment paths
			// Each path should have structure:
			// {
			//   "paths_canonical": [
			//     [
			//       {
			//         "currency": "USD",
			//         "issuer": "rIssuer...",
			//         "type": 48,
			//         "type_hex": "0000000000000030"
			//       }
			//     ]
			//   ],
			//   "paths_computed": [
			//     [
			//       {
			//         "account": "rIntermediary...",
			//         "currency": "USD",
			//         "issuer": "rIssuer...",
			//         "type": 49,
			//         "type_hex": "0000000000000031"
			//       }
			//     ]
			//   ],
			//   "source_amount": "1100000000"
			// }
		},
		"validated": true,
	}

	return response, nil
}

func (m *RipplePathFindMethod) RequiredRole() rpc_types.Role {
	return rpc_types.RoleGuest
}

func (m *RipplePathFindMethod) SupportedApiVersions() []int {
	return []int{rpc_types.ApiVersion1, rpc_types.ApiVersion2, rpc_types.ApiVersion3}
}
