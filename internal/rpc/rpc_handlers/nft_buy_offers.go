package rpc_handlers

import (
	"encoding/hex"
	"encoding/json"
	"strings"

	"github.com/LeJamon/goXRPLd/internal/rpc/rpc_types"
)

// NFT offers tuning constants matching rippled's Tuning.h
const (
	nftOffersMinLimit     uint32 = 50
	nftOffersDefaultLimit uint32 = 250
	nftOffersMaxLimit     uint32 = 500
)

// NftBuyOffersMethod handles the nft_buy_offers RPC method
// Reference: rippled NFTOffers.cpp doNFTBuyOffers
type NftBuyOffersMethod struct{}

func (m *NftBuyOffersMethod) Handle(ctx *rpc_types.RpcContext, params json.RawMessage) (interface{}, *rpc_types.RpcError) {
	var request struct {
		NFTokenID string `json:"nft_id"`
		rpc_types.LedgerSpecifier
		Limit  *uint32 `json:"limit,omitempty"`
		Marker string  `json:"marker,omitempty"`
	}

	if params != nil {
		if err := json.Unmarshal(params, &request); err != nil {
			return nil, rpc_types.RpcErrorInvalidParams("Invalid parameters: " + err.Error())
		}
	}

	// Check for missing nft_id parameter - matching rippled's missing_field_error
	if request.NFTokenID == "" {
		return nil, rpc_types.RpcErrorMissingField("nft_id")
	}

	// Validate and parse the NFT ID - must be a 64-character hex string (32 bytes)
	nftIDHex := strings.ToUpper(request.NFTokenID)
	if len(nftIDHex) != 64 {
		return nil, rpc_types.RpcErrorInvalidField("nft_id")
	}

	nftIDBytes, err := hex.DecodeString(nftIDHex)
	if err != nil {
		return nil, rpc_types.RpcErrorInvalidField("nft_id")
	}

	var nftID [32]byte
	copy(nftID[:], nftIDBytes)

	// Check if ledger service is available
	if rpc_types.Services == nil || rpc_types.Services.Ledger == nil {
		return nil, rpc_types.RpcErrorInternal("Ledger service not available")
	}

	// Determine ledger index to use
	ledgerIndex := "current"
	if request.LedgerIndex != "" {
		ledgerIndex = request.LedgerIndex.String()
	}

	// Parse and validate limit parameter matching rippled's readLimitField
	limit := nftOffersDefaultLimit
	if request.Limit != nil {
		limit = *request.Limit
		if limit < nftOffersMinLimit {
			limit = nftOffersMinLimit
		}
		if limit > nftOffersMaxLimit {
			limit = nftOffersMaxLimit
		}
	}

	// Validate marker if provided - must be a valid hex string
	marker := request.Marker
	if marker != "" {
		// Marker should be a 64-character hex string (offer index)
		if len(marker) != 64 {
			return nil, rpc_types.RpcErrorInvalidParams("Invalid marker")
		}
		if _, err := hex.DecodeString(marker); err != nil {
			return nil, rpc_types.RpcErrorInvalidParams("Invalid marker")
		}
	}

	// Get NFT buy offers from the ledger service
	result, err := rpc_types.Services.Ledger.GetNFTBuyOffers(nftID, ledgerIndex, limit, marker)
	if err != nil {
		// Check for specific error types
		if err.Error() == "ledger not found" {
			return nil, rpc_types.RpcErrorLgrNotFound("Ledger not found.")
		}
		if err.Error() == "object not found" || err.Error() == "directory not found" {
			return nil, rpc_types.RpcErrorObjectNotFound("The requested object was not found.")
		}
		if err.Error() == "invalid marker" {
			return nil, rpc_types.RpcErrorInvalidParams("Invalid marker")
		}
		return nil, rpc_types.RpcErrorInternal("Failed to get NFT buy offers: " + err.Error())
	}

	// Build offers array with proper field handling
	offers := make([]map[string]interface{}, len(result.Offers))
	for i, offer := range result.Offers {
		offerObj := map[string]interface{}{
			"nft_offer_index": offer.NFTOfferIndex,
			"flags":           offer.Flags,
			"owner":           offer.Owner,
			"amount":          offer.Amount,
		}

		// Add optional fields only if they have values
		if offer.Destination != "" {
			offerObj["destination"] = offer.Destination
		}
		if offer.Expiration > 0 {
			offerObj["expiration"] = offer.Expiration
		}

		offers[i] = offerObj
	}

	// Build response matching rippled format
	response := map[string]interface{}{
		"nft_id":       nftIDHex,
		"offers":       offers,
		"ledger_hash":  strings.ToUpper(FormatLedgerHash(result.LedgerHash)),
		"ledger_index": result.LedgerIndex,
		"validated":    result.Validated,
	}

	// Add limit and marker only if there are more results (pagination)
	if result.Marker != "" {
		response["limit"] = limit
		response["marker"] = result.Marker
	}

	return response, nil
}

func (m *NftBuyOffersMethod) RequiredRole() rpc_types.Role {
	return rpc_types.RoleGuest
}

func (m *NftBuyOffersMethod) SupportedApiVersions() []int {
	return []int{rpc_types.ApiVersion1, rpc_types.ApiVersion2, rpc_types.ApiVersion3}
}
