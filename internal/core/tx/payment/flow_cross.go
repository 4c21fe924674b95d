package payment

import (
	"fmt"

	"github.com/LeJamon/goXRPLd/internal/core/ledger/keylet"
	tx "github.com/LeJamon/goXRPLd/internal/core/tx"
	"github.com/LeJamon/goXRPLd/internal/core/tx/sle"
)

// FlowCrossResult contains the result of an offer crossing operation
type FlowCrossResult struct {
	// TakerGot is the amount the taker received (what they wanted to buy)
	TakerGot EitherAmount

	// TakerPaid is the GROSS amount the taker paid (debited from their balance, including transfer fees)
	// Use this to check if the taker fully consumed their offer (GROSS >= originalTakerGets)
	TakerPaid EitherAmount

	// TakerPaidNet is the NET amount delivered to matching offers (after transfer fees)
	// Use this to calculate the remaining offer amount (remaining = original - NET)
	TakerPaidNet EitherAmount

	// Sandbox contains the state changes from the crossing
	Sandbox *PaymentSandbox

	// RemovableOffers contains offer keys that should be removed
	RemovableOffers map[[32]byte]bool

	// Result is the transaction result code
	Result tx.Result
}

// FlowCross executes offer crossing for an OfferCreate transaction.
// This is equivalent to rippled's flowCross() in CreateOffer.cpp.
//
// Rippled's flowCross() calls the full flow() payment engine with src=dst=taker,
// which builds proper strands (DirectSteps + BookSteps + XRPEndpointSteps).
// For IOU-to-IOU crossing, it also adds an XRP bridge path.
//
// From the taker's (offer creator's) perspective:
//   - TakerGets = what the taker is SELLING (paying out)
//   - TakerPays = what the taker is BUYING (receiving)
//
// Parameters:
//   - view: The ledger view for reading/writing state
//   - takerAccount: The account creating the offer
//   - takerGets: Amount the taker is selling (what they'll pay)
//   - takerPays: Amount the taker wants to buy (what they'll receive)
//   - txHash: Current transaction hash for metadata
//   - ledgerSeq: Current ledger sequence
//   - passive: If true, only cross offers with STRICTLY better quality
//
// Returns: FlowCrossResult with the amounts traded and state changes
func FlowCross(
	view tx.LedgerView,
	takerAccount [20]byte,
	takerGets, takerPays tx.Amount,
	txHash [32]byte,
	ledgerSeq uint32,
	passive bool,
	sell bool,
	parentCloseTime uint32,
	reserveBase, reserveIncrement uint64,
	fixReducedOffersV1 bool,
	fixReducedOffersV2 bool,
) FlowCrossResult {

	// Create sandbox for tracking changes
	sandbox := NewPaymentSandbox(view)
	sandbox.SetTransactionContext(txHash, ledgerSeq)

	// Convert deliver amount (what taker wants to receive)
	// Reference: rippled CreateOffer.cpp - deliver = takerAmount.out = takerPays
	deliver := ToEitherAmount(takerPays)

	// === Calculate sendMax: the maximum the taker can actually spend ===
	// Reference: rippled CreateOffer.cpp flowCross() lines 329-367
	//
	// 1. Start with takerGets (the offer amount)
	// 2. MULTIPLY by transfer rate to get gross spend needed
	// 3. Limit to available balance
	//
	// sendMax = min(takerGets * transferRate, balance)
	inStartBalance := tx.AccountFunds(view, takerAccount, takerGets, true, reserveBase, reserveIncrement)

	sendMax := ToEitherAmount(takerGets)

	if !takerGets.IsNative() {
		issuerID, err := sle.DecodeAccountID(takerGets.Issuer)
		if err == nil && takerAccount != issuerID {
			transferRate := GetTransferRate(view, issuerID)
			if transferRate != QualityOne {
				sendMax = MulRatio(sendMax, transferRate, QualityOne, true)
			}
		}
	}

	// Calculate quality limit for offer crossing BEFORE capping sendMax to balance
	// AND before modifying deliver for tfSell.
	// Reference: rippled CreateOffer.cpp:
	//   Line 342-353: sendMax = takerAmount.in (+ transfer rate)
	//   Line 358: Quality threshold{takerAmount.out, sendMax};  // ORIGINAL amounts
	//   Line 362-364: if passive, ++threshold
	//   Line 367-368: if (sendMax > inStartBalance) sendMax = inStartBalance  // cap AFTER
	//   Line 382-401: if (tfSell) deliver = MAX  // AFTER threshold
	takerQuality := QualityFromAmounts(sendMax, deliver)

	// For passive offers, increment the quality threshold so we only cross
	// against offers with STRICTLY better quality (not equal)
	// Reference: rippled CreateOffer.cpp lines 362-364
	if passive {
		takerQuality = takerQuality.Increment()
	}

	// Now cap sendMax to available balance (AFTER threshold calculation)
	// Reference: rippled CreateOffer.cpp lines 367-368
	// Reference: rippled CreateOffer.cpp line 367-368
	availableBalance := ToEitherAmount(inStartBalance)
	if sendMax.Compare(availableBalance) > 0 {
		sendMax = availableBalance
	}

	// With tfSell, override deliver to MAX AFTER threshold and sendMax cap.
	// The taker wants to sell ALL their input even if they receive more than originally asked.
	// Reference: rippled CreateOffer.cpp lines 382-401 (after threshold at line 358, after cap at 367)
	if sell {
		if takerPays.IsNative() {
			// Reference: rippled STAmount::cMaxNative = 9000000000000000000
			deliver = NewXRPEitherAmount(9000000000000000000)
		} else {
			// Reference: rippled uses cMaxValue/2=4999999999999999, cMaxOffset=80
			deliver = NewIOUEitherAmount(tx.NewIssuedAmount(
				4999999999999999, 80,
				takerPays.Currency, takerPays.Issuer))
		}
	}

	// === Build proper strands using ToStrands ===
	// Reference: rippled flowCross() calls flow() with src=dst=taker, addDefaultPath=true
	// This builds complete strands with DirectSteps for IOU trust line transfers
	// and XRPEndpointSteps for XRP transfers, surrounding the BookStep.
	//
	// For IOU-IOU crossing, also add an XRP bridge path.
	// Reference: rippled CreateOffer.cpp lines 374-380
	var paths [][]PathStep
	if !takerPays.IsNative() && !takerGets.IsNative() {
		// XRP bridge path for IOU-to-IOU crossing
		paths = [][]PathStep{{
			{Currency: "XRP", Type: int(PathTypeCurrency)},
		}}
	}

	strands, strandResult := ToStrands(
		sandbox,
		takerAccount, // src (taker)
		takerAccount, // dst (taker - payment to self)
		takerPays,    // dstAmt (what we want to receive / deliver to self)
		&takerGets,   // srcAmt (what we're paying, for issue info)
		paths,        // explicit paths (XRP bridge for IOU-IOU)
		true,         // addDefaultPath
		true,         // offerCrossing - skip trust line checks, create lines on demand
	)

	fmt.Printf("[FlowCross] ToStrands result=%v numStrands=%d deliver=%v sendMax=%v\n", strandResult, len(strands), deliver, sendMax)
	for i, strand := range strands {
		fmt.Printf("[FlowCross] strand[%d] steps=%d\n", i, len(strand))
		for j, step := range strand {
			if accts := step.DirectStepAccts(); accts != nil {
				fmt.Printf("  [%d] DirectStep(%s->%s)\n", j, sle.EncodeAccountIDSafe(accts[0]), sle.EncodeAccountIDSafe(accts[1]))
			} else if book := step.BookStepBook(); book != nil {
				fmt.Printf("  [%d] BookStep(%v->%v)\n", j, book.In, book.Out)
			} else {
				fmt.Printf("  [%d] XRPEndpointStep\n", j)
			}
		}
	}
	if strandResult != tx.TesSUCCESS || len(strands) == 0 {
		// No valid strands - no crossing possible
		return FlowCrossResult{
			TakerGot:        zeroCrossAmount(takerPays),
			TakerPaid:       zeroCrossAmount(takerGets),
			TakerPaidNet:    zeroCrossAmount(takerGets),
			Sandbox:         sandbox,
			RemovableOffers: nil,
			Result:          tx.TecPATH_DRY,
		}
	}

	// Post-process strands for offer crossing:
	// 1. Set quality limits on BookSteps (per-offer quality filtering)
	// 2. Enable offer crossing mode on DirectSteps (ignores trust line limits/quality,
	//    allows trust line creation during crossing)
	// Reference: rippled uses DirectIOfferCrossingStep instead of DirectIPaymentStep
	configureStrandsForOfferCrossing(strands, &takerQuality, parentCloseTime, fixReducedOffersV1, fixReducedOffersV2)

	// Execute the flow
	// Reference: rippled flowCross passes partialPayment=!(txFlags & tfFillOrKill)
	// For now, always allow partial (FoK is handled by caller)
	result := Flow(sandbox, strands, deliver, true, &takerQuality, &sendMax)
	fmt.Printf("[FlowCross] Flow result: In=%v Out=%v Result=%v removable=%d\n", result.In, result.Out, result.Result, len(result.RemovableOffers))
	if result.Sandbox != nil {
		mods, ins, dels := result.Sandbox.DebugCounts()
		fmt.Printf("[FlowCross] Flow sandbox: mods=%d ins=%d dels=%d\n", mods, ins, dels)
	}

	// Apply the flow sandbox changes to our root sandbox
	// Reference: rippled CreateOffer.cpp line 711: psbFlow.apply(sb)
	if result.Sandbox != nil {
		result.Sandbox.Apply(sandbox)
	}
	{
		mods, ins, dels := sandbox.DebugCounts()
		fmt.Printf("[FlowCross] Root sandbox after apply: mods=%d ins=%d dels=%d\n", mods, ins, dels)
	}

	// Calculate GROSS and NET amounts for the taker's payment
	// result.In from Flow is the GROSS amount consumed from the taker
	// (what was debited from their balance, including transfer fees)
	// NET = GROSS Ã— QualityOne / transferRate
	takerPaidGross := result.In
	takerPaidNet := result.In

	if !takerGets.IsNative() {
		issuerID, err := sle.DecodeAccountID(takerGets.Issuer)
		if err == nil && takerAccount != issuerID {
			transferRate := GetTransferRate(view, issuerID)
			if transferRate != QualityOne && transferRate > 0 {
				takerPaidNet = MulRatio(result.In, QualityOne, transferRate, false)
			}
		}
	}

	return FlowCrossResult{
		TakerGot:        result.Out,
		TakerPaid:       takerPaidGross,
		TakerPaidNet:    takerPaidNet,
		Sandbox:         sandbox,
		RemovableOffers: result.RemovableOffers,
		Result:          result.Result,
	}
}

// configureStrandsForOfferCrossing sets up strands for offer crossing by:
// 1. Setting quality limits on BookSteps in DIRECT strands (single BookStep)
// 2. Enabling offer crossing mode on DirectSteps (ignores trust line limits/quality,
//    allows trust line creation during crossing)
//
// Quality limits are NOT set on individual BookSteps in BRIDGED strands (2 BookSteps)
// because the taker's quality is computed from the overall offer (e.g., EUR/USD), but
// individual legs have different dimensions (EUR/XRP and XRP/USD). The combined quality
// of the bridge is what matters, not individual leg quality.
//
// Reference: rippled uses DirectIOfferCrossingStep + quality threshold on BookStep
func configureStrandsForOfferCrossing(strands []Strand, qualityLimit *Quality, parentCloseTime uint32, fixReducedOffersV1 bool, fixReducedOffersV2 bool) {
	for _, strand := range strands {
		// Count BookSteps in the strand
		bookStepCount := 0
		for _, step := range strand {
			if _, ok := step.(*BookStep); ok {
				bookStepCount++
			}
		}

		for _, step := range strand {
			if bookStep, ok := step.(*BookStep); ok {
				// Only set per-BookStep quality limits for direct strands (1 BookStep).
				// Bridge strands (2 BookSteps) have incompatible quality dimensions.
				if bookStepCount == 1 {
					bookStep.qualityLimit = qualityLimit
				}
				bookStep.parentCloseTime = parentCloseTime
				bookStep.fixReducedOffersV1 = fixReducedOffersV1
				bookStep.fixReducedOffersV2 = fixReducedOffersV2
				// In offer crossing, the offer owner pays the transfer fee (not the path sender).
				// This makes DebtDirection() return Issues instead of Redeems, preventing the
				// following DirectStepI from incorrectly deducting the transfer rate from the
				// recipient's amount.
				// Reference: rippled BookOfferCrossingStep: ownerPaysTransferFee_ = true
				bookStep.ownerPaysTransferFee = true
			}
			if directStep, ok := step.(*DirectStepI); ok {
				directStep.offerCrossing = true
			}
		}
	}
}

// zeroCrossAmount returns a zero EitherAmount matching the type of the given amount
func zeroCrossAmount(amt tx.Amount) EitherAmount {
	if amt.IsNative() {
		return ZeroXRPEitherAmount()
	}
	return ZeroIOUEitherAmount(amt.Currency, amt.Issuer)
}

// GetTransferRate returns the transfer rate for an issuer account.
// Transfer rate is stored as a uint32 where QualityOne (1,000,000,000) means no fee.
// A value of 1,020,000,000 means a 2% transfer fee.
//
// Returns QualityOne if the issuer doesn't exist or has no transfer rate set.
func GetTransferRate(view tx.LedgerView, issuer [20]byte) uint32 {
	accountKey := keylet.Account(issuer)
	data, err := view.Read(accountKey)
	if err != nil || data == nil {
		return QualityOne
	}

	account, err := sle.ParseAccountRoot(data)
	if err != nil {
		return QualityOne
	}

	if account.TransferRate == 0 {
		return QualityOne
	}
	return account.TransferRate
}

// GetTransferRateByAddress returns the transfer rate for an issuer given its address string.
// This is a convenience wrapper around GetTransferRate.
func GetTransferRateByAddress(view tx.LedgerView, issuerAddress string) uint32 {
	if issuerAddress == "" {
		return QualityOne
	}

	issuerID, err := sle.DecodeAccountID(issuerAddress)
	if err != nil {
		return QualityOne
	}

	return GetTransferRate(view, issuerID)
}
