package rpc_handlers

import (
	"encoding/json"

	"github.com/LeJamon/goXRPLd/internal/rpc/rpc_types"
)

// NoRippleCheckMethod handles the noripple_check RPC method
type NoRippleCheckMethod struct{}

func (m *NoRippleCheckMethod) Handle(ctx *rpc_types.RpcContext, params json.RawMessage) (interface{}, *rpc_types.RpcError) {
	var request struct {
		rpc_types.AccountParam
		rpc_types.LedgerSpecifier
		Role         string `json:"role,omitempty"` // "gateway" or "user"
		Transactions bool   `json:"transactions,omitempty"`
		Limit        uint32 `json:"limit,omitempty"`
	}

	if params != nil {
		if err := json.Unmarshal(params, &request); err != nil {
			return nil, rpc_types.RpcErrorInvalidParams("Invalid parameters: " + err.Error())
		}
	}

	if request.Account == "" {
		return nil, rpc_types.RpcErrorInvalidParams("Missing required parameter: account")
	}

	// TODO: Implement NoRipple flag checking
	// 1. Validate account address and role (gateway or user)
	// 2. Determine target ledger
	// 3. Analyze trust lines for proper NoRipple flag settings
	// 4. Identify problematic trust lines that should have NoRipple set
	// 5. Generate suggested transactions to fix NoRipple issues if requested
	// 6. Return analysis results and recommendations

	response := map[string]interface{}{
		"account":  request.Account,
		"problems": []string{
			// TODO: List actual NoRipple problems found
		},
		"transactions": []interface{}{
			// TODO: Generate fix transactions if requested
		},
		"ledger_hash":  "PLACEHOLDER_LEDGER_HASH",
		"ledger_index": 1000,
		"validated":    true,
	}

	return response, nil
}

func (m *NoRippleCheckMethod) RequiredRole() rpc_types.Role {
	return rpc_types.RoleGuest
}

func (m *NoRippleCheckMethod) SupportedApiVersions() []int {
	return []int{rpc_types.ApiVersion1, rpc_types.ApiVersion2, rpc_types.ApiVersion3}
}
